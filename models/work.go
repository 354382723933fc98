package models

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"
)

// Work is the cached record for a film-like catalog item. The primary key
// comes from the metadata source's id namespace, falling back to the ranking
// source's id when no metadata record was ever resolved. Once assigned it
// never changes.
type Work struct {
	tableName struct{} `pg:"work,alias:w"`

	ID               int64     `pg:"work_id,pk"`
	Title            string    `pg:"title,notnull"`
	Overview         *string   `pg:"overview"`
	ReleaseDate      *string   `pg:"release_date"`
	PosterPath       *string   `pg:"poster_path"`
	BackdropPath     *string   `pg:"backdrop_path"`
	Rating           float64   `pg:"rating,notnull,use_zero"`
	Votes            int       `pg:"votes,notnull,use_zero"`
	GenreIDs         []int64   `pg:"genre_ids,array"`
	OriginalLanguage string    `pg:"original_language"`
	OriginalTitle    string    `pg:"original_title"`
	Popularity       float64   `pg:"popularity,use_zero"`
	Runtime          *int      `pg:"runtime"`
	Certification    *string   `pg:"certification"`
	CollectionID     *int64    `pg:"collection_id"`
	CollectionName   *string   `pg:"collection_name"`
	TraktID          int64     `pg:"trakt_id,notnull"`
	TraktSlug        *string   `pg:"trakt_slug"`
	DetailFetchedAt  time.Time `pg:"detail_fetched_at,notnull"`
	LastAccessedAt   time.Time `pg:"last_accessed_at,notnull"`
}

func GetWorkByID(ctx context.Context, db *pg.DB, id int64) (*Work, error) {
	w := &Work{}
	err := db.Model(w).
		Context(ctx).
		Where("work_id = ?", id).
		Select()
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return w, nil
}

// UpsertWork inserts or overwrites a work record. detail_fetched_at is kept
// monotonically non-decreasing even if the caller passes an older timestamp.
func UpsertWork(ctx context.Context, db *pg.DB, w *Work) error {
	_, err := db.Model(w).
		Context(ctx).
		OnConflict("(work_id) DO UPDATE").
		Set(`
			title = EXCLUDED.title,
			overview = EXCLUDED.overview,
			release_date = EXCLUDED.release_date,
			poster_path = EXCLUDED.poster_path,
			backdrop_path = EXCLUDED.backdrop_path,
			rating = EXCLUDED.rating,
			votes = EXCLUDED.votes,
			genre_ids = EXCLUDED.genre_ids,
			original_language = EXCLUDED.original_language,
			original_title = EXCLUDED.original_title,
			popularity = EXCLUDED.popularity,
			runtime = EXCLUDED.runtime,
			certification = EXCLUDED.certification,
			collection_id = EXCLUDED.collection_id,
			collection_name = EXCLUDED.collection_name,
			trakt_id = EXCLUDED.trakt_id,
			trakt_slug = EXCLUDED.trakt_slug,
			detail_fetched_at = GREATEST(w.detail_fetched_at, EXCLUDED.detail_fetched_at),
			last_accessed_at = EXCLUDED.last_accessed_at
		`).
		Insert()
	return err
}

// TouchWorks bumps last_accessed_at for LRU tracking without touching the
// cached detail fields.
func TouchWorks(ctx context.Context, db *pg.DB, ids []int64, at time.Time) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := db.Model((*Work)(nil)).
		Context(ctx).
		Set("last_accessed_at = ?", at).
		Where("work_id IN (?)", pg.In(ids)).
		Update()
	return err
}

// EvictStaleWorks removes works whose last_accessed_at is older than the
// retention window. Cast rows and list entries follow via FK cascade.
func EvictStaleWorks(ctx context.Context, db *pg.DB, retention time.Duration) (int, error) {
	cutoff := time.Now().Add(-retention)
	res, err := db.Model((*Work)(nil)).
		Context(ctx).
		Where("last_accessed_at < ?", cutoff).
		Where("NOT EXISTS (SELECT 1 FROM work_list_entry wle WHERE wle.work_id = w.work_id)").
		Delete()
	if err != nil {
		return 0, err
	}
	return res.RowsAffected(), nil
}
