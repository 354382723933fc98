package catalog

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
)

const (
	itemRetentionFlag = "catalog-item-retention"
)

func RegisterSweepFlags(f []cli.Flag) []cli.Flag {
	return append(f,
		cli.DurationFlag{
			Name:   itemRetentionFlag,
			Usage:  "how long an unreferenced item survives without being accessed",
			Value:  60 * 24 * time.Hour,
			EnvVar: "CATALOG_ITEM_RETENTION",
		},
	)
}

// Sweeper evicts cached items no list references and nothing has touched for
// the retention window.
type Sweeper struct {
	store     Store
	retention time.Duration
}

func NewSweeper(c *cli.Context, store Store) *Sweeper {
	return &Sweeper{
		store:     store,
		retention: c.Duration(itemRetentionFlag),
	}
}

func (s *Sweeper) Run(ctx context.Context) error {
	works, err := s.store.EvictWorks(ctx, s.retention)
	if err != nil {
		return errors.Wrap(err, "evict works")
	}
	series, err := s.store.EvictSeries(ctx, s.retention)
	if err != nil {
		return errors.Wrap(err, "evict series")
	}
	log.Infof("swept %v works and %v series past %v retention", works, series, s.retention)
	return nil
}
