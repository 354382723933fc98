package trakt

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/pkg/errors"
)

func testApi(srv *httptest.Server) *Api {
	return &Api{
		url:          srv.URL,
		cl:           srv.Client(),
		clientID:     "client-id",
		clientSecret: "client-secret",
	}
}

func TestRankedMoviesNormalizesEnvelopeShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movies/trending" {
			t.Errorf("unexpected path %v", r.URL.Path)
		}
		if r.Header.Get("trakt-api-key") != "client-id" {
			t.Errorf("missing api key header")
		}
		if r.Header.Get("trakt-api-version") != "2" {
			t.Errorf("missing api version header")
		}
		w.Write([]byte(`[
			{"watchers": 10, "movie": {"title": "Wrapped", "ids": {"trakt": 1, "tmdb": 100}}},
			{"watchers": 5, "movie": {"title": "Also Wrapped", "ids": {"trakt": 2}}}
		]`))
	}))
	defer srv.Close()

	movies, err := testApi(srv).RankedMovies(context.Background(), "trending", 1, 40)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if len(movies) != 2 {
		t.Fatalf("expected 2 movies, got %d", len(movies))
	}
	if movies[0].Title != "Wrapped" || movies[0].IDs.Trakt != 1 {
		t.Errorf("unexpected first movie: %+v", movies[0])
	}
	if movies[0].IDs.TMDB == nil || *movies[0].IDs.TMDB != 100 {
		t.Errorf("tmdb id lost in normalization")
	}
	if movies[1].IDs.TMDB != nil {
		t.Errorf("absent tmdb id should stay nil")
	}
}

func TestRankedMoviesNormalizesBareShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/movies/popular" {
			t.Errorf("unexpected path %v", r.URL.Path)
		}
		w.Write([]byte(`[
			{"title": "Bare", "year": 2020, "ids": {"trakt": 3, "tmdb": 300}}
		]`))
	}))
	defer srv.Close()

	movies, err := testApi(srv).RankedMovies(context.Background(), "popular", 1, 40)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if len(movies) != 1 || movies[0].Title != "Bare" {
		t.Fatalf("unexpected movies: %+v", movies)
	}
	if movies[0].Year == nil || *movies[0].Year != 2020 {
		t.Errorf("year lost in decoding")
	}
}

func TestRankedShowsNormalizesEnvelopeShape(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(`[{"watchers": 3, "show": {"title": "Show", "ids": {"trakt": 9, "tmdb": 900}}}]`))
	}))
	defer srv.Close()

	shows, err := testApi(srv).RankedShows(context.Background(), "trending", 1, 40)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if len(shows) != 1 || shows[0].Title != "Show" {
		t.Fatalf("unexpected shows: %+v", shows)
	}
}

func TestRankedMoviesErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
	}))
	defer srv.Close()

	if _, err := testApi(srv).RankedMovies(context.Background(), "trending", 1, 40); err == nil {
		t.Fatal("expected an error for a non-200 status")
	}
}

func TestExchangeDeviceCodeStatusMapping(t *testing.T) {
	cases := []struct {
		status int
		want   error
	}{
		{http.StatusBadRequest, ErrAuthorizationPending},
		{http.StatusTooManyRequests, ErrSlowDown},
		{http.StatusNotFound, ErrDeviceCodeExpired},
		{http.StatusGone, ErrDeviceCodeExpired},
	}
	for _, tc := range cases {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(tc.status)
		}))
		_, err := testApi(srv).ExchangeDeviceCode(context.Background(), "code")
		srv.Close()
		if !errors.Is(err, tc.want) {
			t.Errorf("status %d: expected %v, got %v", tc.status, tc.want, err)
		}
	}
}

func TestExchangeDeviceCodeSuccess(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/device/token" {
			t.Errorf("unexpected path %v", r.URL.Path)
		}
		w.Write([]byte(`{"access_token": "access", "refresh_token": "refresh", "expires_in": 7776000, "created_at": 1700000000}`))
	}))
	defer srv.Close()

	token, err := testApi(srv).ExchangeDeviceCode(context.Background(), "code")
	if err != nil {
		t.Fatalf("exchange failed: %v", err)
	}
	if token.AccessToken != "access" || token.ExpiresIn != 7776000 {
		t.Errorf("unexpected token: %+v", token)
	}
}

func TestDeviceCodeRequest(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/oauth/device/code" {
			t.Errorf("unexpected path %v", r.URL.Path)
		}
		w.Write([]byte(`{"device_code": "dc", "user_code": "ABCD", "verification_url": "https://trakt.tv/activate", "expires_in": 600, "interval": 5}`))
	}))
	defer srv.Close()

	dc, err := testApi(srv).DeviceCode(context.Background())
	if err != nil {
		t.Fatalf("device code request failed: %v", err)
	}
	if dc.UserCode != "ABCD" || dc.Interval != 5 {
		t.Errorf("unexpected device code: %+v", dc)
	}
}

func TestCurrentUserSendsBearerToken(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Authorization") != "Bearer access" {
			t.Errorf("missing bearer token, got %q", r.Header.Get("Authorization"))
		}
		w.Write([]byte(`{"username": "tester", "ids": {"slug": "tester"}}`))
	}))
	defer srv.Close()

	u, err := testApi(srv).CurrentUser(context.Background(), "access")
	if err != nil {
		t.Fatalf("user lookup failed: %v", err)
	}
	if u.Username != "tester" || u.IDs.Slug != "tester" {
		t.Errorf("unexpected user: %+v", u)
	}
}
