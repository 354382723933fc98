package tmdb

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const (
	apiHostFlag     = "tmdb-api-host"
	apiSecureFlag   = "tmdb-api-secure"
	accessTokenFlag = "tmdb-access-token"
	languageFlag    = "tmdb-language"
)

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.StringFlag{
			Name:   apiHostFlag,
			Usage:  "tmdb api host",
			EnvVar: "TMDB_API_HOST",
			Value:  "api.themoviedb.org",
		},
		cli.BoolTFlag{
			Name:   apiSecureFlag,
			Usage:  "tmdb api secure (https)",
			EnvVar: "TMDB_API_SECURE",
		},
		cli.StringFlag{
			Name:   accessTokenFlag,
			Usage:  "tmdb api read access token",
			Value:  "",
			EnvVar: "TMDB_ACCESS_TOKEN",
		},
		cli.StringFlag{
			Name:   languageFlag,
			Usage:  "tmdb language",
			EnvVar: "TMDB_LANGUAGE",
			Value:  "en-US",
		},
	)
}

type Api struct {
	url         string
	cl          *http.Client
	accessToken string
	language    string
}

// New returns nil when no access token is configured; the enrichment layer
// then degrades to ranking-source data only.
func New(c *cli.Context, cl *http.Client) *Api {
	token := c.String(accessTokenFlag)
	if token == "" {
		return nil
	}
	protocol := "http"
	if c.BoolT(apiSecureFlag) {
		protocol = "https"
	}
	u := fmt.Sprintf("%v://%v/3", protocol, c.String(apiHostFlag))
	log.Infof("tmdb api endpoint %v", u)
	return &Api{
		url:         u,
		cl:          cl,
		accessToken: token,
		language:    c.String(languageFlag),
	}
}

func (api *Api) MovieDetails(ctx context.Context, id int64) (*MovieDetails, error) {
	var md MovieDetails
	if err := api.get(ctx, fmt.Sprintf("/movie/%v?language=%v", id, api.language), &md); err != nil {
		return nil, err
	}
	return &md, nil
}

func (api *Api) MovieReleases(ctx context.Context, id int64) (*MovieReleases, error) {
	var mr MovieReleases
	if err := api.get(ctx, fmt.Sprintf("/movie/%v/release_dates", id), &mr); err != nil {
		return nil, err
	}
	return &mr, nil
}

func (api *Api) MovieCredits(ctx context.Context, id int64) (*Credits, error) {
	var cr Credits
	if err := api.get(ctx, fmt.Sprintf("/movie/%v/credits?language=%v", id, api.language), &cr); err != nil {
		return nil, err
	}
	return &cr, nil
}

func (api *Api) ShowDetails(ctx context.Context, id int64) (*ShowDetails, error) {
	var sd ShowDetails
	if err := api.get(ctx, fmt.Sprintf("/tv/%v?language=%v", id, api.language), &sd); err != nil {
		return nil, err
	}
	return &sd, nil
}

func (api *Api) ShowContentRatings(ctx context.Context, id int64) (*ShowContentRatings, error) {
	var cr ShowContentRatings
	if err := api.get(ctx, fmt.Sprintf("/tv/%v/content_ratings", id), &cr); err != nil {
		return nil, err
	}
	return &cr, nil
}

func (api *Api) ShowCredits(ctx context.Context, id int64) (*Credits, error) {
	var cr Credits
	if err := api.get(ctx, fmt.Sprintf("/tv/%v/credits?language=%v", id, api.language), &cr); err != nil {
		return nil, err
	}
	return &cr, nil
}

func (api *Api) Collection(ctx context.Context, id int64) (*CollectionDetails, error) {
	var cd CollectionDetails
	if err := api.get(ctx, fmt.Sprintf("/collection/%v?language=%v", id, api.language), &cd); err != nil {
		return nil, err
	}
	return &cd, nil
}

func (api *Api) get(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, "GET", api.url+path, nil)
	if err != nil {
		return errors.Wrap(err, "create request")
	}
	req.Header.Set("Authorization", "Bearer "+api.accessToken)
	req.Header.Set("Content-Type", "application/json")

	resp, err := api.cl.Do(req)
	if err != nil {
		return errors.Wrap(err, "request failed")
	}
	defer func(Body io.ReadCloser) {
		_ = Body.Close()
	}(resp.Body)

	if resp.StatusCode != http.StatusOK {
		return errors.Errorf("tmdb: unexpected status %v for %v", resp.StatusCode, path)
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.Wrap(err, "decode response")
	}
	return nil
}
