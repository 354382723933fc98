package catalog

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	"github.com/webtor-io/lazymap"

	"github.com/strmhub-io/catalog/models"
	"github.com/strmhub-io/catalog/services/tmdb"
	"github.com/strmhub-io/catalog/services/trakt"
)

const (
	listTTLFlag  = "catalog-list-ttl"
	itemTTLFlag  = "catalog-item-ttl"
	pageSizeFlag = "catalog-page-size"
)

// oversizeFactor controls how many ranked candidates are fetched relative to
// one UI page, so a few skipped candidates still leave a full list.
const oversizeFactor = 2

func RegisterFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.DurationFlag{
			Name:   listTTLFlag,
			Usage:  "how long a list generation stays fresh",
			Value:  24 * time.Hour,
			EnvVar: "CATALOG_LIST_TTL",
		},
		cli.DurationFlag{
			Name:   itemTTLFlag,
			Usage:  "how long item enrichment stays fresh",
			Value:  30 * 24 * time.Hour,
			EnvVar: "CATALOG_ITEM_TTL",
		},
		cli.IntFlag{
			Name:   pageSizeFlag,
			Usage:  "page size served to the ui",
			Value:  20,
			EnvVar: "CATALOG_PAGE_SIZE",
		},
	)
}

// RankingSource is the read-only ordered-candidates upstream.
type RankingSource interface {
	RankedMovies(ctx context.Context, list string, page, limit int) ([]trakt.Movie, error)
	RankedShows(ctx context.Context, list string, page, limit int) ([]trakt.Show, error)
	RelatedMovies(ctx context.Context, slug string, limit int) ([]trakt.Movie, error)
	RelatedShows(ctx context.Context, slug string, limit int) ([]trakt.Show, error)
}

// MetadataSource is the read-only per-item enrichment upstream.
type MetadataSource interface {
	MovieDetails(ctx context.Context, id int64) (*tmdb.MovieDetails, error)
	MovieReleases(ctx context.Context, id int64) (*tmdb.MovieReleases, error)
	MovieCredits(ctx context.Context, id int64) (*tmdb.Credits, error)
	ShowDetails(ctx context.Context, id int64) (*tmdb.ShowDetails, error)
	ShowContentRatings(ctx context.Context, id int64) (*tmdb.ShowContentRatings, error)
	ShowCredits(ctx context.Context, id int64) (*tmdb.Credits, error)
	Collection(ctx context.Context, id int64) (*tmdb.CollectionDetails, error)
}

// Refresher rebuilds list generations from the ranking source, enriching
// items through the metadata source as their own TTL requires. Concurrent
// refreshes of the same list are coalesced into one flight; different lists
// run in parallel.
type Refresher struct {
	store    Store
	ranking  RankingSource
	metadata MetadataSource // nil when unconfigured, enrichment degrades
	listTTL  time.Duration
	itemTTL  time.Duration
	pageSize int
	flights  *lazymap.LazyMap[bool]
	now      func() time.Time
}

func NewRefresher(c *cli.Context, store Store, ranking RankingSource, metadata MetadataSource) *Refresher {
	return newRefresher(store, ranking, metadata, c.Duration(listTTLFlag), c.Duration(itemTTLFlag), c.Int(pageSizeFlag))
}

func newRefresher(store Store, ranking RankingSource, metadata MetadataSource, listTTL, itemTTL time.Duration, pageSize int) *Refresher {
	return &Refresher{
		store:    store,
		ranking:  ranking,
		metadata: metadata,
		listTTL:  listTTL,
		itemTTL:  itemTTL,
		pageSize: pageSize,
		flights: lazymap.New[bool](&lazymap.Config{
			Expire:      30 * time.Second,
			ErrorExpire: 5 * time.Second,
		}),
		now: time.Now,
	}
}

// ListStale reports whether a list has no generation or one older than the
// list TTL.
func (s *Refresher) ListStale(ctx context.Context, kind Kind, list string) (bool, error) {
	at, err := s.listRefreshedAt(ctx, kind, list)
	if err != nil {
		return false, err
	}
	return at == nil || s.now().Sub(*at) > s.listTTL, nil
}

func (s *Refresher) listRefreshedAt(ctx context.Context, kind Kind, list string) (*time.Time, error) {
	switch kind {
	case KindWork:
		return s.store.WorkListRefreshedAt(ctx, list)
	case KindSeries:
		return s.store.SeriesListRefreshedAt(ctx, list)
	}
	return nil, errUnknownKind(kind)
}

// RefreshList rebuilds the generation for one list. A ranking-source failure
// aborts the whole refresh and leaves the previous generation committed;
// per-item metadata failures only degrade the affected item.
func (s *Refresher) RefreshList(ctx context.Context, kind Kind, list string) error {
	key := fmt.Sprintf("%v:%v", kind, list)
	_, err := s.flights.Get(key, func() (bool, error) {
		switch kind {
		case KindWork:
			return true, s.refreshWorkList(ctx, list)
		case KindSeries:
			return true, s.refreshSeriesList(ctx, list)
		}
		return false, errUnknownKind(kind)
	})
	return err
}

func (s *Refresher) refreshWorkList(ctx context.Context, list string) error {
	now := s.now()
	candidates, err := s.ranking.RankedMovies(ctx, list, 1, s.pageSize*oversizeFactor)
	if err != nil {
		return errors.Wrapf(err, "fetch ranked movies for list %v", list)
	}
	entries := make([]*models.WorkListEntry, 0, len(candidates))
	seen := make(map[int64]bool, len(candidates))
	for _, m := range candidates {
		if m.IDs.TMDB == nil {
			log.Warnf("skipping movie %q in list %v: no metadata id", m.Title, list)
			continue
		}
		id := *m.IDs.TMDB
		if seen[id] {
			log.Warnf("skipping duplicate movie %v in list %v", id, list)
			continue
		}
		seen[id] = true
		existing, err := s.store.GetWork(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil || now.Sub(existing.DetailFetchedAt) > s.itemTTL {
			if err := s.enrichWork(ctx, m, id, existing, now); err != nil {
				return err
			}
		} else if err := s.store.TouchWorks(ctx, []int64{id}, now); err != nil {
			return err
		}
		entries = append(entries, &models.WorkListEntry{
			WorkID:          id,
			ListName:        list,
			Position:        len(entries),
			ListRefreshedAt: now,
		})
	}
	if err := s.store.ReplaceWorkList(ctx, list, entries); err != nil {
		return errors.Wrapf(err, "replace generation for list %v", list)
	}
	log.Infof("refreshed work list %v with %v entries", list, len(entries))
	return nil
}

// enrichWork fetches metadata detail for one candidate and writes the merged
// record. A metadata failure keeps a prior record untouched, or falls back to
// a degraded ranking-only record when none exists.
func (s *Refresher) enrichWork(ctx context.Context, m trakt.Movie, id int64, prior *models.Work, now time.Time) error {
	var details *tmdb.MovieDetails
	if s.metadata != nil {
		var err error
		details, err = s.metadata.MovieDetails(ctx, id)
		if err != nil {
			log.WithError(err).Warnf("metadata fetch failed for movie %v", id)
			details = nil
		}
	}
	if details == nil {
		if prior != nil {
			// stale record beats no record
			return s.store.TouchWorks(ctx, []int64{id}, now)
		}
		w := MergeWork(m, nil, nil)
		w.ID = id
		w.DetailFetchedAt = now
		w.LastAccessedAt = now
		return s.store.UpsertWork(ctx, w)
	}

	releases, err := s.metadata.MovieReleases(ctx, id)
	if err != nil {
		log.WithError(err).Warnf("release dates fetch failed for movie %v", id)
		releases = nil
	}

	w := MergeWork(m, details, releases)
	w.DetailFetchedAt = now
	w.LastAccessedAt = now
	if err := s.store.UpsertWork(ctx, w); err != nil {
		return err
	}

	credits, err := s.metadata.MovieCredits(ctx, id)
	if err != nil {
		log.WithError(err).Warnf("credits fetch failed for movie %v", id)
		return nil
	}
	return s.store.ReplaceWorkCast(ctx, w.ID, MapWorkCredits(w.ID, credits))
}

func (s *Refresher) refreshSeriesList(ctx context.Context, list string) error {
	now := s.now()
	candidates, err := s.ranking.RankedShows(ctx, list, 1, s.pageSize*oversizeFactor)
	if err != nil {
		return errors.Wrapf(err, "fetch ranked shows for list %v", list)
	}
	entries := make([]*models.SeriesListEntry, 0, len(candidates))
	seen := make(map[int64]bool, len(candidates))
	for _, sh := range candidates {
		if sh.IDs.TMDB == nil {
			log.Warnf("skipping show %q in list %v: no metadata id", sh.Title, list)
			continue
		}
		id := *sh.IDs.TMDB
		if seen[id] {
			log.Warnf("skipping duplicate show %v in list %v", id, list)
			continue
		}
		seen[id] = true
		existing, err := s.store.GetSeries(ctx, id)
		if err != nil {
			return err
		}
		if existing == nil || now.Sub(existing.DetailFetchedAt) > s.itemTTL {
			if err := s.enrichSeries(ctx, sh, id, existing, now); err != nil {
				return err
			}
		} else if err := s.store.TouchSeries(ctx, []int64{id}, now); err != nil {
			return err
		}
		entries = append(entries, &models.SeriesListEntry{
			SeriesID:        id,
			ListName:        list,
			Position:        len(entries),
			ListRefreshedAt: now,
		})
	}
	if err := s.store.ReplaceSeriesList(ctx, list, entries); err != nil {
		return errors.Wrapf(err, "replace generation for list %v", list)
	}
	log.Infof("refreshed series list %v with %v entries", list, len(entries))
	return nil
}

func (s *Refresher) enrichSeries(ctx context.Context, sh trakt.Show, id int64, prior *models.Series, now time.Time) error {
	var details *tmdb.ShowDetails
	if s.metadata != nil {
		var err error
		details, err = s.metadata.ShowDetails(ctx, id)
		if err != nil {
			log.WithError(err).Warnf("metadata fetch failed for show %v", id)
			details = nil
		}
	}
	if details == nil {
		if prior != nil {
			return s.store.TouchSeries(ctx, []int64{id}, now)
		}
		sr := MergeSeries(sh, nil, nil)
		sr.ID = id
		sr.DetailFetchedAt = now
		sr.LastAccessedAt = now
		return s.store.UpsertSeries(ctx, sr)
	}

	ratings, err := s.metadata.ShowContentRatings(ctx, id)
	if err != nil {
		log.WithError(err).Warnf("content ratings fetch failed for show %v", id)
		ratings = nil
	}

	sr := MergeSeries(sh, details, ratings)
	sr.DetailFetchedAt = now
	sr.LastAccessedAt = now
	if err := s.store.UpsertSeries(ctx, sr); err != nil {
		return err
	}

	credits, err := s.metadata.ShowCredits(ctx, id)
	if err != nil {
		log.WithError(err).Warnf("credits fetch failed for show %v", id)
		return nil
	}
	return s.store.ReplaceSeriesCast(ctx, sr.ID, MapSeriesCredits(sr.ID, credits))
}
