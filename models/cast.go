package models

import (
	"context"

	"github.com/go-pg/pg/v10"
)

// CastMember is one credited person on a work, fully owned by its parent
// record. The whole cast is replaced on refresh and cascade-deleted with the
// work; it is never patched row by row.
type CastMember struct {
	tableName struct{} `pg:"work_cast_member"`

	ID          int64   `pg:"work_cast_member_id,pk"`
	WorkID      int64   `pg:"work_id,notnull"`
	PersonID    int64   `pg:"person_id,notnull"`
	CreditID    string  `pg:"credit_id,notnull"`
	Name        string  `pg:"name,notnull"`
	Character   *string `pg:"character"`
	Ord         int     `pg:"ord,notnull,use_zero"`
	ProfilePath *string `pg:"profile_path"`
	Department  string  `pg:"department"`
	Job         *string `pg:"job"`
}

type SeriesCastMember struct {
	tableName struct{} `pg:"series_cast_member"`

	ID          int64   `pg:"series_cast_member_id,pk"`
	SeriesID    int64   `pg:"series_id,notnull"`
	PersonID    int64   `pg:"person_id,notnull"`
	CreditID    string  `pg:"credit_id,notnull"`
	Name        string  `pg:"name,notnull"`
	Character   *string `pg:"character"`
	Ord         int     `pg:"ord,notnull,use_zero"`
	ProfilePath *string `pg:"profile_path"`
	Department  string  `pg:"department"`
	Job         *string `pg:"job"`
}

func ReplaceCastForWork(ctx context.Context, db *pg.DB, workID int64, cast []*CastMember) error {
	tx, err := db.BeginContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Close()
	}()

	_, err = tx.Model((*CastMember)(nil)).
		Where("work_id = ?", workID).
		Context(ctx).
		Delete()
	if err != nil {
		return err
	}

	if len(cast) > 0 {
		_, err = tx.Model(&cast).
			Context(ctx).
			Insert()
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func ReplaceCastForSeries(ctx context.Context, db *pg.DB, seriesID int64, cast []*SeriesCastMember) error {
	tx, err := db.BeginContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Close()
	}()

	_, err = tx.Model((*SeriesCastMember)(nil)).
		Where("series_id = ?", seriesID).
		Context(ctx).
		Delete()
	if err != nil {
		return err
	}

	if len(cast) > 0 {
		_, err = tx.Model(&cast).
			Context(ctx).
			Insert()
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func GetCastForWork(ctx context.Context, db *pg.DB, workID int64) ([]*CastMember, error) {
	var cast []*CastMember
	err := db.Model(&cast).
		Context(ctx).
		Where("work_id = ?", workID).
		Order("ord ASC").
		Select()
	if err != nil {
		return nil, err
	}
	return cast, nil
}

func GetCastForSeries(ctx context.Context, db *pg.DB, seriesID int64) ([]*SeriesCastMember, error) {
	var cast []*SeriesCastMember
	err := db.Model(&cast).
		Context(ctx).
		Where("series_id = ?", seriesID).
		Order("ord ASC").
		Select()
	if err != nil {
		return nil, err
	}
	return cast, nil
}
