package app

import (
	"context"
	"sync"

	"github.com/go-chi/oauth"

	"github.com/mbolis/quick-form/airtable"
	"github.com/mbolis/quick-form/config"
	"github.com/mbolis/quick-form/database"
	"github.com/mbolis/quick-form/reconcile"
)

// External is the part of the external system API the routes use.
type External interface {
	Bases(ctx context.Context) ([]airtable.Base, error)
	Tables(ctx context.Context, baseID string) ([]airtable.Table, error)
	TableSchema(ctx context.Context, baseID, tableID string) (airtable.Table, error)
	CreateRecord(ctx context.Context, baseID, tableID string, fields map[string]any) (airtable.Record, error)
	DeleteRecord(ctx context.Context, baseID, tableID, recordID string) error
}

type App struct {
	*database.Store
	*oauth.BearerServer
	config.Config
	Reconciler *reconcile.Reconciler
	// External returns a client acting with an owner's access token.
	External func(accessToken string) External
}

func New(store *database.Store, cfg config.Config, bearer *oauth.BearerServer) App {
	// one client per token, so the rate limit holds across requests
	var mu sync.Mutex
	clients := map[string]*airtable.Client{}

	return App{
		Store:        store,
		BearerServer: bearer,
		Config:       cfg,
		Reconciler:   reconcile.New(store),
		External: func(accessToken string) External {
			mu.Lock()
			defer mu.Unlock()
			c, ok := clients[accessToken]
			if !ok {
				c = airtable.New(cfg.AirtableURL, accessToken, cfg.AirtableRPS)
				clients[accessToken] = c
			}
			return c
		},
	}
}
