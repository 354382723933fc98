package catalog

import (
	"context"
	"testing"

	"github.com/strmhub-io/catalog/models"
	"github.com/strmhub-io/catalog/services/tmdb"
)

func TestCollectionMixesCachedAndBareMembers(t *testing.T) {
	store := newMockStore()
	store.works[101] = &models.Work{ID: 101, Title: "Cached Part", Rating: 7.0}
	metadata := &mockMetadata{
		collection: &tmdb.CollectionDetails{
			ID:   10,
			Name: "A Saga",
			Parts: []struct {
				ID    int64  `json:"id"`
				Title string `json:"title"`
			}{
				{ID: 101, Title: "Part One"},
				{ID: 102, Title: "Part Two"},
			},
		},
	}
	s := testRefresher(store, &mockRanking{}, metadata)

	view, err := s.Collection(context.Background(), 10)
	if err != nil {
		t.Fatalf("collection failed: %v", err)
	}
	if view.Name != "A Saga" || len(view.Items) != 2 {
		t.Fatalf("unexpected view: %+v", view)
	}
	if view.Items[0].Title != "Cached Part" {
		t.Errorf("cached record should win, got %q", view.Items[0].Title)
	}
	if view.Items[1].Title != "Part Two" || view.Items[1].Ref != "102" {
		t.Errorf("unexpected bare member: %+v", view.Items[1])
	}
}

func TestCollectionWithoutMetadataSource(t *testing.T) {
	s := testRefresher(newMockStore(), &mockRanking{}, nil)
	if _, err := s.Collection(context.Background(), 10); err == nil {
		t.Fatal("expected an error with no metadata source")
	}
}
