package main

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"

	"github.com/strmhub-io/catalog/services/catalog"
)

const (
	listsFlag = "lists"
)

func makeRefreshCMD() cli.Command {
	refreshCMD := cli.Command{
		Name:    "refresh",
		Aliases: []string{"r"},
		Usage:   "Rebuilds list generations from the upstream sources",
		Action:  refresh,
	}
	configureRefresh(&refreshCMD)
	return refreshCMD
}

func configureRefresh(c *cli.Command) {
	c.Flags = append(c.Flags,
		cli.StringFlag{
			Name:   listsFlag,
			Usage:  "comma-separated kind:name pairs to refresh",
			Value:  "work:trending,work:popular,series:trending,series:popular",
			EnvVar: "CATALOG_LISTS",
		},
	)
	c.Flags = cs.RegisterPGFlags(c.Flags)
	c.Flags = configureCatalog(c.Flags)
}

func refresh(c *cli.Context) error {
	// Setting HTTP Client
	cl := http.DefaultClient

	// Setting DB
	pg := cs.NewPG(c)
	defer pg.Close()

	// Setting Migrations and Store
	store, err := pgMigrateAndStore(c, pg)
	if err != nil {
		return err
	}

	// Setting Refresher
	refresher, _, err := makeRefresher(c, cl, store)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	for _, spec := range strings.Split(c.String(listsFlag), ",") {
		kindName := strings.SplitN(strings.TrimSpace(spec), ":", 2)
		if len(kindName) != 2 {
			return errors.Errorf("malformed list spec %q, want kind:name", spec)
		}
		kind, err := catalog.ParseKind(kindName[0])
		if err != nil {
			return err
		}
		log.Infof("refreshing %v list %v", kind, kindName[1])
		if err := refresher.RefreshList(ctx, kind, kindName[1]); err != nil {
			return errors.Wrapf(err, "refresh %v list %v", kind, kindName[1])
		}
	}
	return nil
}
