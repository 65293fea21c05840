package main

import (
	"context"

	"github.com/rotisserie/eris"

	"github.com/sells-group/portal-cli/internal/db"
	"github.com/sells-group/portal-cli/internal/store"
)

func initValuationStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.SQLitePath
		if dsn == "" {
			dsn = "portal.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, cfg.Store.Pool)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initFranchiseePool opens the Postgres pool the franchisee registry runs
// on. Registry operations (dedupe, merge, import) have no SQLite fallback.
func initFranchiseePool(ctx context.Context) (db.Pool, func(), error) {
	if cfg.Store.Driver != "postgres" {
		return nil, nil, eris.Errorf("franchisee operations require the postgres driver, got %q", cfg.Store.Driver)
	}
	pool, err := db.Connect(ctx, cfg.Store.DatabaseURL, cfg.Store.Pool)
	if err != nil {
		return nil, nil, err
	}
	return pool, pool.Close, nil
}
