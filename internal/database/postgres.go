package database

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog"

	"github.com/stemsi/siakad-backend/internal/config"
	"github.com/stemsi/siakad-backend/internal/logger"
)

const (
	pgConnectTimeout   = 10 * time.Second
	pgMaxConnLifetime  = time.Hour
	pgMaxConnIdleTime  = 10 * time.Minute
	pgHealthCheckEvery = 30 * time.Second
)

// NewPostgresPool creates a pgx pool and waits for the first successful ping.
func NewPostgresPool(ctx context.Context, cfg *config.Config, log zerolog.Logger) (*pgxpool.Pool, error) {
	poolCfg, err := pgxpool.ParseConfig(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse database URL: %w", err)
	}

	if cfg.MaxDBConns > 0 {
		poolCfg.MaxConns = cfg.MaxDBConns
	}
	poolCfg.MaxConnLifetime = pgMaxConnLifetime
	poolCfg.MaxConnIdleTime = pgMaxConnIdleTime
	poolCfg.HealthCheckPeriod = pgHealthCheckEvery
	poolCfg.ConnConfig.ConnectTimeout = pgConnectTimeout
	poolCfg.ConnConfig.RuntimeParams["application_name"] = logger.ServiceName

	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("create pool: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, pgConnectTimeout)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	log.Info().
		Str("host", poolCfg.ConnConfig.Host).
		Str("database", poolCfg.ConnConfig.Database).
		Int32("max_conns", poolCfg.MaxConns).
		Msg("PostgreSQL connected")

	return pool, nil
}
