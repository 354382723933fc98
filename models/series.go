package models

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"
)

// Series is the cached record for an episodic catalog item. Same key and
// bookkeeping rules as Work; the two kinds use disjoint genre taxonomies.
type Series struct {
	tableName struct{} `pg:"series,alias:s"`

	ID               int64     `pg:"series_id,pk"`
	Name             string    `pg:"name,notnull"`
	Overview         *string   `pg:"overview"`
	FirstAirDate     *string   `pg:"first_air_date"`
	LastAirDate      *string   `pg:"last_air_date"`
	PosterPath       *string   `pg:"poster_path"`
	BackdropPath     *string   `pg:"backdrop_path"`
	Rating           float64   `pg:"rating,notnull,use_zero"`
	Votes            int       `pg:"votes,notnull,use_zero"`
	GenreIDs         []int64   `pg:"genre_ids,array"`
	OriginalLanguage string    `pg:"original_language"`
	OriginalName     string    `pg:"original_name"`
	Popularity       float64   `pg:"popularity,use_zero"`
	Status           *string   `pg:"status"`
	SeasonCount      *int      `pg:"season_count"`
	EpisodeCount     *int      `pg:"episode_count"`
	Certification    *string   `pg:"certification"`
	TraktID          int64     `pg:"trakt_id,notnull"`
	TraktSlug        *string   `pg:"trakt_slug"`
	DetailFetchedAt  time.Time `pg:"detail_fetched_at,notnull"`
	LastAccessedAt   time.Time `pg:"last_accessed_at,notnull"`
}

func GetSeriesByID(ctx context.Context, db *pg.DB, id int64) (*Series, error) {
	s := &Series{}
	err := db.Model(s).
		Context(ctx).
		Where("series_id = ?", id).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return s, nil
}

func UpsertSeries(ctx context.Context, db *pg.DB, s *Series) error {
	_, err := db.Model(s).
		Context(ctx).
		OnConflict("(series_id) DO UPDATE").
		Set(`
			name = EXCLUDED.name,
			overview = EXCLUDED.overview,
			first_air_date = EXCLUDED.first_air_date,
			last_air_date = EXCLUDED.last_air_date,
			poster_path = EXCLUDED.poster_path,
			backdrop_path = EXCLUDED.backdrop_path,
			rating = EXCLUDED.rating,
			votes = EXCLUDED.votes,
			genre_ids = EXCLUDED.genre_ids,
			original_language = EXCLUDED.original_language,
			original_name = EXCLUDED.original_name,
			popularity = EXCLUDED.popularity,
			status = EXCLUDED.status,
			season_count = EXCLUDED.season_count,
			episode_count = EXCLUDED.episode_count,
			certification = EXCLUDED.certification,
			trakt_id = EXCLUDED.trakt_id,
			trakt_slug = EXCLUDED.trakt_slug,
			detail_fetched_at = GREATEST(s.detail_fetched_at, EXCLUDED.detail_fetched_at),
			last_accessed_at = EXCLUDED.last_accessed_at
		`).
		Insert()
	return err
}

func TouchSeries(ctx context.Context, db *pg.DB, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := db.Model((*Series)(nil)).
		Context(ctx).
		Set("last_accessed_at = ?", at).
		Where("series_id IN (?)", pg.In(ids)).
		Update()
	return err
}

func EvictStaleSeries(ctx context.Context, db *pg.DB, retention time.Duration) (int, error) {
	cutoff := time.Now().Add(-retention)
	res, err := db.Model((*Series)(nil)).
		Context(ctx).
		Where("last_accessed_at < ?", cutoff).
		Where("NOT EXISTS (SELECT 1 FROM series_list_entry sle WHERE sle.series_id = s.series_id)").
		Delete()
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}
