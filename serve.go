package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
	"github.com/urfave/cli"
	cs "github.com/webtor-io/common-services"

	wau "github.com/strmhub-io/catalog/handlers/auth"
	wl "github.com/strmhub-io/catalog/handlers/list"
	"github.com/strmhub-io/catalog/services/auth"
	"github.com/strmhub-io/catalog/services/catalog"
	w "github.com/strmhub-io/catalog/services/web"
)

func makeServeCMD() cli.Command {
	serveCMD := cli.Command{
		Name:    "serve",
		Aliases: []string{"s"},
		Usage:   "Serves web server",
		Action:  serve,
	}
	configureServe(&serveCMD)
	return serveCMD
}

func configureServe(c *cli.Command) {
	c.Flags = cs.RegisterPGFlags(c.Flags)
	c.Flags = cs.RegisterProbeFlags(c.Flags)
	c.Flags = cs.RegisterPprofFlags(c.Flags)
	c.Flags = w.RegisterFlags(c.Flags)
	c.Flags = configureCatalog(c.Flags)
	c.Flags = auth.RegisterFlags(c.Flags)
}

func serve(c *cli.Context) error {
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

	var servers []cs.Servable

	// Setting Probe
	probe := cs.NewProbe(c)
	if probe != nil {
		servers = append(servers, probe)
		defer probe.Close()
	}

	// Setting Pprof
	pprof := cs.NewPprof(c)
	if pprof != nil {
		servers = append(servers, pprof)
		defer pprof.Close()
	}

	// Setting Gin
	r := gin.Default()
	r.RedirectTrailingSlash = false

	// Setting Web
	web := w.New(c, r)
	servers = append(servers, web)
	defer web.Close()

	// Setting Refresher and Pager
	refresher, traktApi, err := makeRefresher(c, cl, store)
	if err != nil {
		return err
	}
	pager := catalog.NewPager(c, store, refresher)

	// Setting ListHandler
	wl.RegisterHandler(r, pager, refresher)

	// Setting Auth
	ctrl := auth.New(c, traktApi, auth.NewSessionStore(pg))

	// Setting AuthHandler
	wau.RegisterHandler(r, ctrl)

	// Setting Serve
	serve := cs.NewServe(servers...)

	// And SERVE!
	err = serve.Serve()
	if err != nil {
		log.WithError(err).Error("got server error")
	}
	return err
}
