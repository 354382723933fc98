package catalog

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/strmhub-io/catalog/models"
)

// ErrItemNotFound means the reference resolves to nothing servable: either no
// cached record exists or the reference points at the playback server's id
// space, which the catalog does not hold.
var ErrItemNotFound = errors.New("item not found")

// CastCredit is the rendering view of one credited person, in billing order.
type CastCredit struct {
	Name        string `json:"name"`
	Character   string `json:"character,omitempty"`
	ProfilePath string `json:"profile_path,omitempty"`
}

// ItemDetail is the full view of one cached item.
type ItemDetail struct {
	Item
	OriginalTitle    string       `json:"original_title,omitempty"`
	OriginalLanguage string       `json:"original_language,omitempty"`
	Runtime          int          `json:"runtime,omitempty"`
	Status           string       `json:"status,omitempty"`
	SeasonCount      int          `json:"season_count,omitempty"`
	EpisodeCount     int          `json:"episode_count,omitempty"`
	CollectionID     int64        `json:"collection_id,omitempty"`
	CollectionName   string       `json:"collection_name,omitempty"`
	Cast             []CastCredit `json:"cast,omitempty"`
}

// Item resolves a reference to the detail view of a cached record. Native
// references belong to the playback server and are never served from here.
func (s *Pager) Item(ctx context.Context, kind Kind, ref models.ItemRef) (*ItemDetail, error) {
	if ref.Kind == models.ItemRefNative {
		return nil, ErrItemNotFound
	}
	switch kind {
	case KindWork:
		return s.workDetail(ctx, ref.CacheID)
	case KindSeries:
		return s.seriesDetail(ctx, ref.CacheID)
	}
	return nil, errUnknownKind(kind)
}

func (s *Pager) workDetail(ctx context.Context, id int64) (*ItemDetail, error) {
	w, err := s.store.GetWork(ctx, id)
	if err != nil {
		return nil, err
	}
	if w == nil {
		return nil, ErrItemNotFound
	}
	if err := s.store.TouchWorks(ctx, []int64{id}, time.Now()); err != nil {
		log.WithError(err).Warnf("touch failed for work %v", id)
	}
	d := &ItemDetail{
		Item:             itemFromWork(w),
		OriginalTitle:    w.OriginalTitle,
		OriginalLanguage: w.OriginalLanguage,
	}
	if w.Runtime != nil {
		d.Runtime = *w.Runtime
	}
	if w.CollectionID != nil {
		d.CollectionID = *w.CollectionID
	}
	if w.CollectionName != nil {
		d.CollectionName = *w.CollectionName
	}
	cast, err := s.store.WorkCast(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Cast = workCastCredits(cast)
	return d, nil
}

func (s *Pager) seriesDetail(ctx context.Context, id int64) (*ItemDetail, error) {
	sr, err := s.store.GetSeries(ctx, id)
	if err != nil {
		return nil, err
	}
	if sr == nil {
		return nil, ErrItemNotFound
	}
	if err := s.store.TouchSeries(ctx, []int64{id}, time.Now()); err != nil {
		log.WithError(err).Warnf("touch failed for series %v", id)
	}
	d := &ItemDetail{
		Item:             itemFromSeries(sr),
		OriginalTitle:    sr.OriginalName,
		OriginalLanguage: sr.OriginalLanguage,
		Status:           deref(sr.Status),
	}
	if sr.SeasonCount != nil {
		d.SeasonCount = *sr.SeasonCount
	}
	if sr.EpisodeCount != nil {
		d.EpisodeCount = *sr.EpisodeCount
	}
	cast, err := s.store.SeriesCast(ctx, id)
	if err != nil {
		return nil, err
	}
	d.Cast = seriesCastCredits(cast)
	return d, nil
}

func workCastCredits(members []*models.CastMember) []CastCredit {
	if len(members) == 0 {
		return nil
	}
	out := make([]CastCredit, len(members))
	for i, m := range members {
		out[i] = CastCredit{
			Name:        m.Name,
			Character:   deref(m.Character),
			ProfilePath: deref(m.ProfilePath),
		}
	}
	return out
}

func seriesCastCredits(members []*models.SeriesCastMember) []CastCredit {
	if len(members) == 0 {
		return nil
	}
	out := make([]CastCredit, len(members))
	for i, m := range members {
		out[i] = CastCredit{
			Name:        m.Name,
			Character:   deref(m.Character),
			ProfilePath: deref(m.ProfilePath),
		}
	}
	return out
}
