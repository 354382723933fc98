package main

import (
	"github.com/go-pg/migrations/v8"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"

	"github.com/strmhub-io/catalog/services/migration"
)

func makeMigrationCMD() cli.Command {
	migrateCMD := cli.Command{
		Name:    "migrate",
		Aliases: []string{"m"},
		Usage:   "Migrates database",
	}
	configureMigration(&migrateCMD)
	return migrateCMD
}

func configureMigration(c *cli.Command) {
	upCMD := cli.Command{
		Name:    "up",
		Usage:   "Runs all available migrations",
		Aliases: []string{"u"},
		Action: func(c *cli.Context) error {
			return pgMigrateCMD(c, "up")
		},
	}
	downCMD := cli.Command{
		Name:    "down",
		Usage:   "Reverts last migration",
		Aliases: []string{"d"},
		Action: func(c *cli.Context) error {
			return pgMigrateCMD(c, "down")
		},
	}
	resetCMD := cli.Command{
		Name:    "reset",
		Usage:   "Reverts all migrations",
		Aliases: []string{"r"},
		Action: func(c *cli.Context) error {
			return pgMigrateCMD(c, "reset")
		},
	}
	versionCMD := cli.Command{
		Name:    "version",
		Usage:   "Prints current db version",
		Aliases: []string{"v"},
		Action: func(c *cli.Context) error {
			return pgMigrateCMD(c, "version")
		},
	}
	c.Subcommands = []cli.Command{upCMD, downCMD, resetCMD, versionCMD}
	for k := range c.Subcommands {
		c.Subcommands[k].Flags = cs.RegisterPGFlags(c.Subcommands[k].Flags)
	}
}

func pgMigrateCMD(c *cli.Context, a ...string) error {
	// Setting DB
	pg := cs.NewPG(c)
	defer pg.Close()

	return pgMigrate(c, pg, a...)
}

func pgMigrate(_ *cli.Context, pg *cs.PG, a ...string) error {
	col := migrations.NewCollection()
	mgr := migration.NewPGMigration(pg, col)
	return mgr.Run(a...)
}
