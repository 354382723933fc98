package catalog

import (
	"context"

	"github.com/pkg/errors"
)

// Related returns titles related to the item addressed by slug. Items with an
// enriched cache record are served from it; the rest get a ranking-only view
// without being written to the cache.
func (s *Refresher) Related(ctx context.Context, kind Kind, slug string, limit int) ([]Item, error) {
	switch kind {
	case KindWork:
		return s.relatedWorks(ctx, slug, limit)
	case KindSeries:
		return s.relatedSeries(ctx, slug, limit)
	}
	return nil, errUnknownKind(kind)
}

func (s *Refresher) relatedWorks(ctx context.Context, slug string, limit int) ([]Item, error) {
	movies, err := s.ranking.RelatedMovies(ctx, slug, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch related movies for %v", slug)
	}
	items := make([]Item, 0, len(movies))
	for _, m := range movies {
		if m.IDs.TMDB != nil {
			w, err := s.store.GetWork(ctx, *m.IDs.TMDB)
			if err != nil {
				return nil, err
			}
			if w != nil {
				items = append(items, itemFromWork(w))
				continue
			}
		}
		items = append(items, itemFromWork(MergeWork(m, nil, nil)))
	}
	return items, nil
}

func (s *Refresher) relatedSeries(ctx context.Context, slug string, limit int) ([]Item, error) {
	shows, err := s.ranking.RelatedShows(ctx, slug, limit)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch related shows for %v", slug)
	}
	items := make([]Item, 0, len(shows))
	for _, sh := range shows {
		if sh.IDs.TMDB != nil {
			sr, err := s.store.GetSeries(ctx, *sh.IDs.TMDB)
			if err != nil {
				return nil, err
			}
			if sr != nil {
				items = append(items, itemFromSeries(sr))
				continue
			}
		}
		items = append(items, itemFromSeries(MergeSeries(sh, nil, nil)))
	}
	return items, nil
}
