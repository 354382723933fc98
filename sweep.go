package main

import (
	"context"
	"time"

	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"

	"github.com/strmhub-io/catalog/services/catalog"
)

func makeSweepCMD() cli.Command {
	sweepCMD := cli.Command{
		Name:    "sweep",
		Aliases: []string{"sw"},
		Usage:   "Evicts unreferenced cache records past retention",
		Action:  sweep,
	}
	configureSweep(&sweepCMD)
	return sweepCMD
}

func configureSweep(c *cli.Command) {
	c.Flags = cs.RegisterPGFlags(c.Flags)
	c.Flags = catalog.RegisterSweepFlags(c.Flags)
}

func sweep(c *cli.Context) error {
	// Setting DB
	pg := cs.NewPG(c)
	defer pg.Close()

	// Setting Migrations and Store
	store, err := pgMigrateAndStore(c, pg)
	if err != nil {
		return err
	}

	// Setting Sweeper
	sweeper := catalog.NewSweeper(c, store)

	ctx, cancel := context.WithTimeout(context.Background(), 1*time.Minute)
	defer cancel()

	return sweeper.Run(ctx)
}
