package models

import (
	"context"
	"time"

	"github.com/go-pg/pg/v10"
	"github.com/pkg/errors"
)

// WorkListEntry pins a work to a position within a named ranking ("trending",
// "popular", ...). Entries are replaced a whole generation at a time; every
// current entry of one list shares a single list_refreshed_at.
type WorkListEntry struct {
	tableName struct{} `pg:"work_list_entry,alias:wle"`

	WorkID          int64     `pg:"work_id,pk"`
	ListName        string    `pg:"list_name,pk"`
	Position        int       `pg:"position,notnull,use_zero"`
	ListRefreshedAt time.Time `pg:"list_refreshed_at,notnull"`
}

type SeriesListEntry struct {
	tableName struct{} `pg:"series_list_entry,alias:sle"`

	SeriesID        int64     `pg:"series_id,pk"`
	ListName        string    `pg:"list_name,pk"`
	Position        int       `pg:"position,notnull,use_zero"`
	ListRefreshedAt time.Time `pg:"list_refreshed_at,notnull"`
}

// ReplaceWorkListEntries swaps the generation for one list atomically: readers
// observe either the previous generation or the new one, never a mix.
func ReplaceWorkListEntries(ctx context.Context, db *pg.DB, listName string, entries []*WorkListEntry) error {
	tx, err := db.BeginContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Close()
	}()

	_, err = tx.Model((*WorkListEntry)(nil)).
		Where("list_name = ?", listName).
		Context(ctx).
		Delete()
	if err != nil {
		return err
	}

	if len(entries) > 0 {
		_, err = tx.Model(&entries).
			Context(ctx).
			Insert()
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

func ReplaceSeriesListEntries(ctx context.Context, db *pg.DB, listName string, entries []*SeriesListEntry) error {
	tx, err := db.BeginContext(ctx)
	if err != nil {
		return err
	}
	defer func() {
		_ = tx.Close()
	}()

	_, err = tx.Model((*SeriesListEntry)(nil)).
		Where("list_name = ?", listName).
		Context(ctx).
		Delete()
	if err != nil {
		return err
	}

	if len(entries) > 0 {
		_, err = tx.Model(&entries).
			Context(ctx).
			Insert()
		if err != nil {
			return err
		}
	}

	return tx.Commit()
}

// GetWorkListRefreshedAt returns the generation timestamp for a list, nil when
// the list has no entries.
func GetWorkListRefreshedAt(ctx context.Context, db *pg.DB, listName string) (*time.Time, error) {
	var at time.Time
	err := db.Model((*WorkListEntry)(nil)).
		Context(ctx).
		Column("list_refreshed_at").
		Where("list_name = ?", listName).
		Limit(1).
		Select(&at)
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &at, nil
}

func GetSeriesListRefreshedAt(ctx context.Context, db *pg.DB, listName string) (*time.Time, error) {
	var at time.Time
	err := db.Model((*SeriesListEntry)(nil)).
		Context(ctx).
		Column("list_refreshed_at").
		Where("list_name = ?", listName).
		Limit(1).
		Select(&at)
	if errors.Is(err, pg.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &at, nil
}

// GetWorksForList reads one page of the list/item join ordered by position.
func GetWorksForList(ctx context.Context, db *pg.DB, listName string, offset, limit int) ([]*Work, error) {
	var works []*Work
	err := db.Model(&works).
		Context(ctx).
		Join("INNER JOIN work_list_entry AS wle ON wle.work_id = w.work_id").
		Where("wle.list_name = ?", listName).
		OrderExpr("wle.position ASC").
		Offset(offset).
		Limit(limit).
		Select()
	if err != nil {
		return nil, err
	}
	return works, nil
}

func GetSeriesForList(ctx context.Context, db *pg.DB, listName string, offset, limit int) ([]*Series, error) {
	var series []*Series
	err := db.Model(&series).
		Context(ctx).
		Join("INNER JOIN series_list_entry AS sle ON sle.series_id = s.series_id").
		Where("sle.list_name = ?", listName).
		OrderExpr("sle.position ASC").
		Offset(offset).
		Limit(limit).
		Select()
	if err != nil {
		return nil, err
	}
	return series, nil
}
