package catalog

import (
	"context"

	"github.com/pkg/errors"

	"github.com/strmhub-io/catalog/models"
)

// CollectionView is a film collection with its member items.
type CollectionView struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Overview string `json:"overview,omitempty"`
	Items    []Item `json:"items"`
}

// Collection resolves a collection through the metadata source. Members with
// an enriched cache record are served from it; the rest get a bare view with
// just the title.
func (s *Refresher) Collection(ctx context.Context, id int64) (*CollectionView, error) {
	if s.metadata == nil {
		return nil, errors.New("metadata source not configured")
	}
	cd, err := s.metadata.Collection(ctx, id)
	if err != nil {
		return nil, errors.Wrapf(err, "fetch collection %v", id)
	}
	view := &CollectionView{
		ID:    cd.ID,
		Name:  cd.Name,
		Items: make([]Item, 0, len(cd.Parts)),
	}
	if cd.Overview != nil {
		view.Overview = *cd.Overview
	}
	for _, part := range cd.Parts {
		w, err := s.store.GetWork(ctx, part.ID)
		if err != nil {
			return nil, err
		}
		if w != nil {
			view.Items = append(view.Items, itemFromWork(w))
			continue
		}
		view.Items = append(view.Items, Item{
			Ref:   models.CachedRef(part.ID).String(),
			Kind:  KindWork,
			Title: part.Title,
		})
	}
	return view, nil
}
