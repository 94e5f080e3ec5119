package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/mbolis/quick-form/app"
	"github.com/mbolis/quick-form/config"
	"github.com/mbolis/quick-form/database"
	"github.com/mbolis/quick-form/httpx"
	"github.com/mbolis/quick-form/log"
	"github.com/mbolis/quick-form/routes"
)

func main() {
	cfg, err := config.ParseFlags()
	if err != nil {
		log.Fatal("main.config:", err)
	}
	if cfg.Debug {
		log.SetLevel(log.DebugLevel)
	}

	store, err := database.Open(cfg.DBUrl)
	if err != nil {
		log.Fatal("main.db.open:", err)
	}
	defer store.Close()

	if cfg.BootstrapUser != "" {
		owner, err := store.EnsureOwner(context.Background(), cfg.BootstrapUser, cfg.BootstrapPassword)
		if err != nil {
			log.Fatal("main.bootstrap_owner:", err)
		}
		log.Infof("owner %s ready", owner.Username)
	}

	bearerServer := httpx.NewBearerServer(store, cfg)
	handler := routes.Wire(app.New(store, cfg, bearerServer))

	err = runServer(cfg, handler)
	if !errors.Is(err, http.ErrServerClosed) {
		log.Fatal("main.server:", err)
	}
}

func runServer(cfg config.Config, handler http.Handler) error {
	srv := &http.Server{
		Addr:         cfg.Addr,
		Handler:      handler,
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	log.Info("Listening on " + cfg.Url())
	return srv.ListenAndServe()
}
