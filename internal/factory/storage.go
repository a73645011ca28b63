package factory

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/rs/zerolog"

	"github.com/nooklet/nooklet/internal/config"
	storepkg "github.com/nooklet/nooklet/internal/store"
	storepg "github.com/nooklet/nooklet/internal/store/postgres"
	storesqlite "github.com/nooklet/nooklet/internal/store/sqlite"
)

// NewStore returns a store.Store for the configured driver.
// Launches async schema bootstrap; returns the store immediately for fast startup.
func NewStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (storepkg.Store, error) {
	switch cfg.DBDriver {
	case "postgres":
		if cfg.PostgresDSN == "" {
			return nil, fmt.Errorf("NOOKLET_POSTGRES_DSN is required when DB_DRIVER=postgres")
		}
		db, err := storepg.Open(cfg.PostgresDSN)
		if err != nil {
			return nil, err
		}
		bootstrapAsync(ctx, cfg, log, db, storepg.EnsureSchema)
		return storepg.NewWithDB(db), nil

	case "sqlite":
		db, err := storesqlite.Open(cfg.SQLitePath)
		if err != nil {
			return nil, err
		}
		// SQLite schema setup is cheap; do it inline so the first request
		// never races the bootstrap.
		if err := storesqlite.EnsureSchema(ctx, db); err != nil {
			_ = db.Close()
			return nil, err
		}
		return storesqlite.NewWithDB(db), nil

	default:
		return nil, fmt.Errorf("unknown DB_DRIVER: %s", cfg.DBDriver)
	}
}

func bootstrapAsync(ctx context.Context, cfg *config.Config, log zerolog.Logger, db *sql.DB, ensure func(context.Context, *sql.DB) error) {
	go func() {
		timeout := time.Duration(cfg.BootstrapTimeoutSeconds) * time.Second
		bctx, cancel := context.WithTimeout(ctx, timeout)
		defer cancel()

		if err := ensure(bctx, db); err != nil {
			log.Warn().Err(err).Str("driver", cfg.DBDriver).Msg("store schema bootstrap failed")
		} else {
			log.Debug().Str("driver", cfg.DBDriver).Msg("store schema bootstrap completed")
		}
	}()
}
