package app

import (
	"context"
	"fmt"
	"time"

	"github.com/riskibarqy/esports-stats/internal/config"
	"github.com/riskibarqy/esports-stats/internal/domain/entity"
	"github.com/riskibarqy/esports-stats/internal/infrastructure/repository/cache"
	"github.com/riskibarqy/esports-stats/internal/infrastructure/repository/memory"
	"github.com/riskibarqy/esports-stats/internal/infrastructure/repository/postgres"
	basecache "github.com/riskibarqy/esports-stats/internal/platform/cache"
	"github.com/riskibarqy/esports-stats/internal/platform/logging"
	"github.com/uptrace/opentelemetry-go-extra/otelsql"
	"github.com/uptrace/opentelemetry-go-extra/otelsqlx"
)

const (
	dbPingTimeout  = 5 * time.Second
	dbMaxOpenConns = 10
	dbMaxIdleConns = 5
	dbConnLifetime = 30 * time.Minute
)

func openStore(cfg config.Config, logger *logging.Logger) (entity.Store, func() error, error) {
	var (
		store     entity.Store
		closeFunc = func() error { return nil }
	)

	switch cfg.StoreDriver {
	case config.StoreMemory:
		store = memory.NewStore()
	case config.StorePostgres:
		db, err := otelsqlx.Open("postgres", postgresDSN(cfg.DBURL, cfg.ServiceName, cfg.DBDisablePreparedBinary),
			otelsql.WithDBName(dsnDBName(cfg.DBURL)),
			otelsql.WithQueryFormatter(traceQuery),
		)
		if err != nil {
			return nil, nil, fmt.Errorf("open postgres: %w", err)
		}
		db.SetMaxOpenConns(dbMaxOpenConns)
		db.SetMaxIdleConns(dbMaxIdleConns)
		db.SetConnMaxLifetime(dbConnLifetime)

		ctx, cancel := context.WithTimeout(context.Background(), dbPingTimeout)
		defer cancel()
		if err := db.PingContext(ctx); err != nil {
			_ = db.Close()
			return nil, nil, fmt.Errorf("ping postgres: %w", err)
		}
		store = postgres.NewStore(db, logger)
		closeFunc = db.Close
	default:
		return nil, nil, fmt.Errorf("unsupported store driver %q", cfg.StoreDriver)
	}

	logger.Info("store opened", "driver", cfg.StoreDriver, "cache_enabled", cfg.CacheEnabled)
	if cfg.CacheEnabled {
		store = cache.NewStore(store, basecache.NewStore(cfg.CacheTTL))
	}
	return store, closeFunc, nil
}
