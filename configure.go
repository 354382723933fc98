package main

import (
	"github.com/urfave/cli"
)

func configure(app *cli.App) {
	serveCMD := makeServeCMD()
	refreshCMD := makeRefreshCMD()
	sweepCMD := makeSweepCMD()
	migrationCMD := makeMigrationCMD()
	app.Commands = []cli.Command{serveCMD, refreshCMD, sweepCMD, migrationCMD}
}
