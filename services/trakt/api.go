package trakt

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const (
	apiHostFlag      = "trakt-api-host"
	apiSecureFlag    = "trakt-api-secure"
	clientIDFlag     = "trakt-client-id"
	clientSecretFlag = "trakt-client-secret"
)

const apiVersion = "2"

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   apiHostFlag,
			Usage:  "trakt api host",
			EnvVar: "TRAKT_API_HOST",
			Value:  "api.trakt.tv",
		},
		cli.BoolTFlag{
			Name:   apiSecureFlag,
			Usage:  "trakt api secure (https)",
			EnvVar: "TRAKT_API_SECURE",
		},
		cli.StringFlag{
			Name:   clientIDFlag,
			Usage:  "trakt client id",
			Value:  "",
			EnvVar: "TRAKT_CLIENT_ID",
		},
		cli.StringFlag{
			Name:   clientSecretFlag,
			Usage:  "trakt client secret",
			Value:  "",
			EnvVar: "TRAKT_CLIENT_SECRET",
		},
	)
}

type Api struct {
	url          string
	cl           *http.Client
	clientID     string
	clientSecret string
}

// New returns nil when no client id is configured; callers treat a missing
// ranking source as a fatal configuration error at the call site.
func New(c *cli.Context, cl *http.Client) *Api {
	clientID := c.String(clientIDFlag)
	if clientID == "" {
		return nil
	}
	protocol := "http"
	if c.BoolT(apiSecureFlag) {
		protocol = "https"
	}
	u := fmt.Sprintf("%v://%v", protocol, c.String(apiHostFlag))
	log.Infof("trakt api endpoint %v", u)
	return &Api{
		url:          u,
		cl:           cl,
		clientID:     clientID,
		clientSecret: c.String(clientSecretFlag),
	}
}

// RankedMovies fetches one page of a named movie ranking ("trending",
// "popular", ...). Both response shapes are normalized: trending wraps each
// movie in an envelope, popular returns bare movie objects.
func (api *Api) RankedMovies(ctx context.Context, list string, page, limit int) ([]Movie, error) {
	raw, err := api.ranked(ctx, "movies", list, page, limit)
	if err != nil {
		return nil, err
	}
	movies := make([]Movie, 0, len(raw))
	for _, r := range raw {
		var env struct {
			Movie *Movie `json:"movie"`
		}
		if err := json.Unmarshal(r, &env); err == nil && env.Movie != nil {
			movies = append(movies, *env.Movie)
			continue
		}
		var m Movie
		if err := json.Unmarshal(r, &m); err != nil {
			return nil, errors.Wrap(err, "decode movie")
		}
		movies = append(movies, m)
	}
	return movies, nil
}

func (api *Api) RankedShows(ctx context.Context, list string, page, limit int) ([]Show, error) {
	raw, err := api.ranked(ctx, "shows", list, page, limit)
	if err != nil {
		return nil, err
	}
	shows := make([]Show, 0, len(raw))
	for _, r := range raw {
		var env struct {
			Show *Show `json:"show"`
		}
		if err := json.Unmarshal(r, &env); err == nil && env.Show != nil {
			shows = append(shows, *env.Show)
			continue
		}
		var s Show
		if err := json.Unmarshal(r, &s); err != nil {
			return nil, errors.Wrap(err, "decode show")
		}
		shows = append(shows, s)
	}
	return shows, nil
}

// RelatedMovies returns items related to the movie addressed by slug.
func (api *Api) RelatedMovies(ctx context.Context, slug string, limit int) ([]Movie, error) {
	data, err := api.get(ctx, fmt.Sprintf("/movies/%v/related?limit=%v", slug, limit))
	if err != nil {
		return nil, err
	}
	var movies []Movie
	if err := json.Unmarshal(data, &movies); err != nil {
		return nil, errors.Wrap(err, "decode related movies")
	}
	return movies, nil
}

func (api *Api) RelatedShows(ctx context.Context, slug string, limit int) ([]Show, error) {
	data, err := api.get(ctx, fmt.Sprintf("/shows/%v/related?limit=%v", slug, limit))
	if err != nil {
		return nil, err
	}
	var shows []Show
	if err := json.Unmarshal(data, &shows); err != nil {
		return nil, errors.Wrap(err, "decode related shows")
	}
	return shows, nil
}

func (api *Api) ranked(ctx context.Context, kind, list string, page, limit int) ([]json.RawMessage, error) {
	path := fmt.Sprintf("/%v/%v?page=%v&limit=%v", kind, list, page, strconv.Itoa(limit))
	data, err := api.get(ctx, path)
	if err != nil {
		return nil, err
	}
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return nil, errors.Wrap(err, "decode ranked list")
	}
	return raw, nil
}

func (api *Api) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, "GET", api.url+path, nil)
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("trakt-api-version", apiVersion)
	req.Header.Set("trakt-api-key", api.clientID)

	resp, err := api.cl.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Errorf("trakt: unexpected status %v for %v", resp.StatusCode, path)
	}
	return io.ReadAll(resp.Body)
}

func (api *Api) post(ctx context.Context, path string, body any) (*http.Response, error) {
	data, err := json.Marshal(body)
	if err != nil {
		return nil, errors.Wrap(err, "encode request")
	}
	req, err := http.NewRequestWithContext(ctx, "POST", api.url+path, strings.NewReader(string(data)))
	if err != nil {
		return nil, errors.Wrap(err, "create request")
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := api.cl.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, "request failed")
	}
	return resp, nil
}
