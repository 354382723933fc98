package catalog

import (
	"context"
	"time"

	"github.com/pkg/errors"
	cs "github.com/webtor-io/common-services"

	"github.com/strmhub-io/catalog/models"
)

// Store is the single mutation path into the item store and list index. All
// writes go through it; no other component touches the tables directly.
type Store interface {
	GetWork(ctx context.Context, id int64) (*models.Work, error)
	UpsertWork(ctx context.Context, w *models.Work) error
	TouchWorks(ctx context.Context, ids []int64, at time.Time) error
	ReplaceWorkCast(ctx context.Context, workID int64, cast []*models.CastMember) error
	WorkCast(ctx context.Context, workID int64) ([]*models.CastMember, error)
	ReplaceWorkList(ctx context.Context, listName string, entries []*models.WorkListEntry) error
	WorkListRefreshedAt(ctx context.Context, listName string) (*time.Time, error)
	WorksForList(ctx context.Context, listName string, offset, limit int) ([]*models.Work, error)
	EvictWorks(ctx context.Context, retention time.Duration) (int, error)

	GetSeries(ctx context.Context, id int64) (*models.Series, error)
	UpsertSeries(ctx context.Context, s *models.Series) error
	TouchSeries(ctx context.Context, ids []int64, at time.Time) error
	ReplaceSeriesCast(ctx context.Context, seriesID int64, cast []*models.SeriesCastMember) error
	SeriesCast(ctx context.Context, seriesID int64) ([]*models.SeriesCastMember, error)
	ReplaceSeriesList(ctx context.Context, listName string, entries []*models.SeriesListEntry) error
	SeriesListRefreshedAt(ctx context.Context, listName string) (*time.Time, error)
	SeriesForList(ctx context.Context, listName string, offset, limit int) ([]*models.Series, error)
	EvictSeries(ctx context.Context, retention time.Duration) (int, error)
}

type pgStore struct {
	pg *cs.PG
}

func NewStore(pg *cs.PG) Store {
	return &pgStore{pg: pg}
}

var errDBNotInitialized = errors.New("db is nil")

func (s *pgStore) GetWork(ctx context.Context, id int64) (*models.Work, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errDBNotInitialized
	}
	return models.GetWorkByID(ctx, db, id)
}

func (s *pgStore) UpsertWork(ctx context.Context, w *models.Work) error {
	db := s.pg.Get()
	if db == nil {
		return errDBNotInitialized
	}
	return models.UpsertWork(ctx, db, w)
}

func (s *pgStore) TouchWorks(ctx context.Context, ids []int64, at time.Time) error {
	db := s.pg.Get()
	if db == nil {
		return errDBNotInitialized
	}
	return models.TouchWorks(ctx, db, ids, at)
}

func (s *pgStore) ReplaceWorkCast(ctx context.Context, workID int64, cast []*models.CastMember) error {
	db := s.pg.Get()
	if db == nil {
		return errDBNotInitialized
	}
	return models.ReplaceCastForWork(ctx, db, workID, cast)
}

func (s *pgStore) WorkCast(ctx context.Context, workID int64) ([]*models.CastMember, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errDBNotInitialized
	}
	return models.GetCastForWork(ctx, db, workID)
}

func (s *pgStore) ReplaceWorkList(ctx context.Context, listName string, entries []*models.WorkListEntry) error {
	db := s.pg.Get()
	if db == nil {
		return errDBNotInitialized
	}
	return models.ReplaceWorkListEntries(ctx, db, listName, entries)
}

func (s *pgStore) WorkListRefreshedAt(ctx context.Context, listName string) (*time.Time, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errDBNotInitialized
	}
	return models.GetWorkListRefreshedAt(ctx, db, listName)
}

func (s *pgStore) WorksForList(ctx context.Context, listName string, offset, limit int) ([]*models.Work, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errDBNotInitialized
	}
	return models.GetWorksForList(ctx, db, listName, offset, limit)
}

func (s *pgStore) EvictWorks(ctx context.Context, retention time.Duration) (int, error) {
	db := s.pg.Get()
	if db == nil {
		return 0, errDBNotInitialized
	}
	return models.EvictStaleWorks(ctx, db, retention)
}

func (s *pgStore) GetSeries(ctx context.Context, id int64) (*models.Series, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errDBNotInitialized
	}
	return models.GetSeriesByID(ctx, db, id)
}

func (s *pgStore) UpsertSeries(ctx context.Context, sr *models.Series) error {
	db := s.pg.Get()
	if db == nil {
		return errDBNotInitialized
	}
	return models.UpsertSeries(ctx, db, sr)
}

func (s *pgStore) TouchSeries(ctx context.Context, ids []int64, at time.Time) error {
	db := s.pg.Get()
	if db == nil {
		return errDBNotInitialized
	}
	return models.TouchSeries(ctx, db, ids, at)
}

func (s *pgStore) ReplaceSeriesCast(ctx context.Context, seriesID int64, cast []*models.SeriesCastMember) error {
	db := s.pg.Get()
	if db == nil {
		return errDBNotInitialized
	}
	return models.ReplaceCastForSeries(ctx, db, seriesID, cast)
}

func (s *pgStore) SeriesCast(ctx context.Context, seriesID int64) ([]*models.SeriesCastMember, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errDBNotInitialized
	}
	return models.GetCastForSeries(ctx, db, seriesID)
}

func (s *pgStore) ReplaceSeriesList(ctx context.Context, listName string, entries []*models.SeriesListEntry) error {
	db := s.pg.Get()
	if db == nil {
		return errDBNotInitialized
	}
	return models.ReplaceSeriesListEntries(ctx, db, listName, entries)
}

func (s *pgStore) SeriesListRefreshedAt(ctx context.Context, listName string) (*time.Time, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errDBNotInitialized
	}
	return models.GetSeriesListRefreshedAt(ctx, db, listName)
}

func (s *pgStore) SeriesForList(ctx context.Context, listName string, offset, limit int) ([]*models.Series, error) {
	db := s.pg.Get()
	if db == nil {
		return nil, errDBNotInitialized
	}
	return models.GetSeriesForList(ctx, db, listName, offset, limit)
}

func (s *pgStore) EvictSeries(ctx context.Context, retention time.Duration) (int, error) {
	db := s.pg.Get()
	if db == nil {
		return 0, errDBNotInitialized
	}
	return models.EvictStaleSeries(ctx, db, retention)
}
