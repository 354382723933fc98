package catalog

import (
	"context"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"

	"github.com/strmhub-io/catalog/models"
)

// Item is the browse view of one list member, shaped for rendering rather
// than storage.
type Item struct {
	Ref           string   `json:"ref"`
	Kind          Kind     `json:"kind"`
	Title         string   `json:"title"`
	Overview      string   `json:"overview,omitempty"`
	ReleaseDate   string   `json:"release_date,omitempty"`
	PosterPath    string   `json:"poster_path,omitempty"`
	BackdropPath  string   `json:"backdrop_path,omitempty"`
	Rating        float64  `json:"rating"`
	Votes         int      `json:"votes"`
	Genres        []string `json:"genres,omitempty"`
	Certification string   `json:"certification,omitempty"`
}

// Page is one window of a list plus the cursor to request the next one.
type Page struct {
	Items      []Item `json:"items"`
	NextCursor int    `json:"next_cursor"`
	HasMore    bool   `json:"has_more"`
}

// listRefresher is the slice of Refresher the pager needs.
type listRefresher interface {
	ListStale(ctx context.Context, kind Kind, list string) (bool, error)
	RefreshList(ctx context.Context, kind Kind, list string) error
}

// Pager serves list windows out of the store, triggering list refreshes on
// its way: a stale or absent generation is rebuilt before the first window
// is served, a middle-aged one is rebuilt in the background.
type Pager struct {
	store     Store
	refresher listRefresher
	listTTL   time.Duration
	pageSize  int
	// background runs fn off the request path, replaceable in tests
	background func(fn func())
}

func NewPager(c *cli.Context, store Store, refresher *Refresher) *Pager {
	return newPager(store, refresher, c.Duration(listTTLFlag), c.Int(pageSizeFlag))
}

func newPager(store Store, refresher listRefresher, listTTL time.Duration, pageSize int) *Pager {
	return &Pager{
		store:     store,
		refresher: refresher,
		listTTL:   listTTL,
		pageSize:  pageSize,
		background: func(fn func()) {
			go fn()
		},
	}
}

// Load returns the window of a list starting at cursor. A negative cursor
// means paging before the first entry, which yields an empty terminal page.
func (s *Pager) Load(ctx context.Context, kind Kind, list string, cursor int) (*Page, error) {
	if cursor < 0 {
		return &Page{Items: []Item{}, NextCursor: 0, HasMore: false}, nil
	}
	if cursor == 0 {
		if err := s.ensureFresh(ctx, kind, list); err != nil {
			return nil, err
		}
	}
	switch kind {
	case KindWork:
		return s.loadWorks(ctx, list, cursor)
	case KindSeries:
		return s.loadSeries(ctx, list, cursor)
	}
	return nil, errUnknownKind(kind)
}

// ensureFresh refreshes the list when its generation is past the TTL. With a
// previous generation on hand a refresh failure is logged and the stale data
// served; with none it is surfaced. A generation past half the TTL is
// refreshed off the request path.
func (s *Pager) ensureFresh(ctx context.Context, kind Kind, list string) error {
	at, err := s.refreshedAt(ctx, kind, list)
	if err != nil {
		return err
	}
	stale, err := s.refresher.ListStale(ctx, kind, list)
	if err != nil {
		return err
	}
	if stale {
		if err := s.refresher.RefreshList(ctx, kind, list); err != nil {
			if at == nil {
				return err
			}
			log.WithError(err).Warnf("serving stale generation of %v list %v", kind, list)
		}
		return nil
	}
	if at != nil && time.Since(*at) > s.listTTL/2 {
		s.background(func() {
			if err := s.refresher.RefreshList(context.Background(), kind, list); err != nil {
				log.WithError(err).Warnf("background refresh of %v list %v failed", kind, list)
			}
		})
	}
	return nil
}

func (s *Pager) refreshedAt(ctx context.Context, kind Kind, list string) (*time.Time, error) {
	switch kind {
	case KindWork:
		return s.store.WorkListRefreshedAt(ctx, list)
	case KindSeries:
		return s.store.SeriesListRefreshedAt(ctx, list)
	}
	return nil, errUnknownKind(kind)
}

func (s *Pager) loadWorks(ctx context.Context, list string, cursor int) (*Page, error) {
	works, err := s.store.WorksForList(ctx, list, cursor, s.pageSize)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	ids := make([]int64, len(works))
	items := make([]Item, len(works))
	for i, w := range works {
		ids[i] = w.ID
		items[i] = itemFromWork(w)
	}
	if err := s.store.TouchWorks(ctx, ids, now); err != nil {
		log.WithError(err).Warnf("touch failed for list %v", list)
	}
	return &Page{
		Items:      items,
		NextCursor: cursor + len(items),
		HasMore:    len(items) == s.pageSize,
	}, nil
}

func (s *Pager) loadSeries(ctx context.Context, list string, cursor int) (*Page, error) {
	series, err := s.store.SeriesForList(ctx, list, cursor, s.pageSize)
	if err != nil {
		return nil, err
	}
	now := time.Now()
	ids := make([]int64, len(series))
	items := make([]Item, len(series))
	for i, sr := range series {
		ids[i] = sr.ID
		items[i] = itemFromSeries(sr)
	}
	if err := s.store.TouchSeries(ctx, ids, now); err != nil {
		log.WithError(err).Warnf("touch failed for list %v", list)
	}
	return &Page{
		Items:      items,
		NextCursor: cursor + len(items),
		HasMore:    len(items) == s.pageSize,
	}, nil
}

func itemFromWork(w *models.Work) Item {
	return Item{
		Ref:           models.CachedRef(w.ID).String(),
		Kind:          KindWork,
		Title:         w.Title,
		Overview:      deref(w.Overview),
		ReleaseDate:   deref(w.ReleaseDate),
		PosterPath:    deref(w.PosterPath),
		BackdropPath:  deref(w.BackdropPath),
		Rating:        w.Rating,
		Votes:         w.Votes,
		Genres:        WorkGenreNames(w.GenreIDs),
		Certification: deref(w.Certification),
	}
}

func itemFromSeries(sr *models.Series) Item {
	return Item{
		Ref:           models.CachedRef(sr.ID).String(),
		Kind:          KindSeries,
		Title:         sr.Name,
		Overview:      deref(sr.Overview),
		ReleaseDate:   deref(sr.FirstAirDate),
		PosterPath:    deref(sr.PosterPath),
		BackdropPath:  deref(sr.BackdropPath),
		Rating:        sr.Rating,
		Votes:         sr.Votes,
		Genres:        SeriesGenreNames(sr.GenreIDs),
		Certification: deref(sr.Certification),
	}
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
