package catalog

import (
	"context"
	"testing"
	"time"

	"github.com/strmhub-io/catalog/models"
	"github.com/strmhub-io/catalog/services/trakt"
)

func TestRelatedPrefersCachedRecords(t *testing.T) {
	store := newMockStore()
	overview := "cached overview"
	store.works[101] = &models.Work{
		ID:       101,
		Title:    "Cached Title",
		Overview: &overview,
		Rating:   8.5,
	}
	ranking := &mockRanking{
		relatedMovies: []trakt.Movie{
			rankedMovie("Upstream Title", 1, tmdbID(101)),
			rankedMovie("Uncached", 2, tmdbID(102)),
			rankedMovie("No Cross Ref", 3, nil),
		},
	}
	s := testRefresher(store, ranking, nil)

	items, err := s.Related(context.Background(), KindWork, "some-movie", 10)
	if err != nil {
		t.Fatalf("related failed: %v", err)
	}
	if len(items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(items))
	}
	if items[0].Title != "Cached Title" || items[0].Overview != overview {
		t.Errorf("cached record should win, got %+v", items[0])
	}
	if items[1].Title != "Uncached" || items[1].Ref != "102" {
		t.Errorf("unexpected uncached item: %+v", items[1])
	}
	if items[2].Title != "No Cross Ref" {
		t.Errorf("unexpected fallback item: %+v", items[2])
	}
}

func TestRelatedDoesNotWriteToCache(t *testing.T) {
	store := newMockStore()
	ranking := &mockRanking{
		relatedMovies: []trakt.Movie{rankedMovie("Transient", 1, tmdbID(101))},
	}
	s := newRefresher(store, ranking, nil, 24*time.Hour, 30*24*time.Hour, 20)

	if _, err := s.Related(context.Background(), KindWork, "some-movie", 10); err != nil {
		t.Fatalf("related failed: %v", err)
	}
	if len(store.works) != 0 {
		t.Errorf("related lookup must not populate the cache, got %d records", len(store.works))
	}
}

func TestRelatedSeries(t *testing.T) {
	store := newMockStore()
	ranking := &mockRanking{
		relatedShows: []trakt.Show{
			{Title: "Sibling Show", IDs: trakt.IDs{Trakt: 9, TMDB: tmdbID(201)}},
		},
	}
	s := testRefresher(store, ranking, nil)

	items, err := s.Related(context.Background(), KindSeries, "some-show", 10)
	if err != nil {
		t.Fatalf("related failed: %v", err)
	}
	if len(items) != 1 || items[0].Kind != KindSeries || items[0].Title != "Sibling Show" {
		t.Errorf("unexpected related series: %+v", items)
	}
}
