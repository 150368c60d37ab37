package app

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/qazi-erp/qazi-erp/internal/platform/db"
	"github.com/qazi-erp/qazi-erp/internal/store"
)

// OpenStore builds the configured Store. The returned close func releases
// the connection pool and is never nil.
func OpenStore(ctx context.Context, cfg *Config, logger *slog.Logger) (store.Store, func(), error) {
	switch cfg.StoreDriver {
	case StoreDriverPostgres:
		pool, err := db.New(ctx, cfg.PGDSN, db.Options{MaxConns: cfg.PGMaxConns, ApplicationName: "qazi"})
		if err != nil {
			return nil, func() {}, err
		}
		pg := store.NewPostgres(pool)
		if err := pg.Migrate(ctx); err != nil {
			pool.Close()
			return nil, func() {}, err
		}
		logger.Info("store ready", slog.String("driver", cfg.StoreDriver))
		return pg, pool.Close, nil
	case StoreDriverMemory:
		logger.Info("store ready", slog.String("driver", cfg.StoreDriver),
			slog.Duration("latency_min", cfg.MockLatencyMin), slog.Duration("latency_max", cfg.MockLatencyMax))
		return store.NewMemory(store.WithLatency(cfg.MockLatencyMin, cfg.MockLatencyMax)), func() {}, nil
	default:
		return nil, func() {}, fmt.Errorf("app: unknown store driver %q", cfg.StoreDriver)
	}
}
