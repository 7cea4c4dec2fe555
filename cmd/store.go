package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/ranksignal/accuracy-cli/internal/integration"
	"github.com/ranksignal/accuracy-cli/internal/store"
)

// initStore opens the configured report store. Callers own Close.
func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "accuracy.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, &cfg.Store.Pool)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// statusProvider builds the integration-status provider from the configured
// per-project source lists.
func statusProvider() *integration.StaticProvider {
	return integration.NewStaticProviderFromNames(
		cfg.Integration.ProjectSources,
		cfg.Integration.DefaultSources,
	)
}
