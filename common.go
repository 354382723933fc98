package main

import (
	"net/http"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"

	"github.com/strmhub-io/catalog/services/catalog"
	"github.com/strmhub-io/catalog/services/tmdb"
	"github.com/strmhub-io/catalog/services/trakt"
)

func configureCatalog(f []cli.Flag) []cli.Flag {
	f = trakt.RegisterFlags(f)
	f = tmdb.RegisterFlags(f)
	f = catalog.RegisterFlags(f)
	return f
}

// makeRefresher wires the ranking and metadata clients into a refresher. The
// ranking source is mandatory, the metadata source degrades to ranking-only
// records when unconfigured. The trakt client is returned so callers can
// share it instead of building a second one.
func makeRefresher(c *cli.Context, cl *http.Client, store catalog.Store) (*catalog.Refresher, *trakt.Api, error) {
	// Setting ranking source
	traktApi := trakt.New(c, cl)
	if traktApi == nil {
		return nil, nil, errors.New("trakt client id is empty")
	}

	// Setting metadata source
	var metadata catalog.MetadataSource
	tmdbApi := tmdb.New(c, cl)
	if tmdbApi == nil {
		log.Warn("metadata source not configured, records will be ranking-only")
	} else {
		metadata = tmdbApi
	}

	return catalog.NewRefresher(c, store, traktApi, metadata), traktApi, nil
}

func pgMigrateAndStore(c *cli.Context, pg *cs.PG) (catalog.Store, error) {
	if err := pgMigrate(c, pg, "up"); err != nil {
		return nil, err
	}
	return catalog.NewStore(pg), nil
}
