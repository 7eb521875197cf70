package database

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/stemsi/siakad-backend/internal/config"
	"github.com/stemsi/siakad-backend/internal/repository"
	"github.com/stemsi/siakad-backend/internal/repository/memory"
	"github.com/stemsi/siakad-backend/internal/session"
)

// Check reports whether a backing service is reachable.
type Check func(ctx context.Context) error

func alwaysUp(context.Context) error { return nil }

// OpenStore builds the record store selected by STORE_DRIVER.
// The returned close function releases the underlying connections.
func OpenStore(ctx context.Context, cfg *config.Config, log zerolog.Logger) (repository.Store, Check, func(), error) {
	if cfg.StoreDriver == "memory" {
		log.Warn().Msg("Using in-memory record store; data is lost on restart")
		return memory.New(), alwaysUp, func() {}, nil
	}

	pool, err := NewPostgresPool(ctx, cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	return repository.NewPgStore(pool), pool.Ping, pool.Close, nil
}

// OpenSessions builds the session registry selected by SESSION_DRIVER.
func OpenSessions(ctx context.Context, cfg *config.Config, log zerolog.Logger) (session.Registry, Check, func(), error) {
	if cfg.SessionDriver == "memory" {
		log.Warn().Msg("Using in-memory session registry; sessions are lost on restart")
		return session.NewMemoryRegistry(), alwaysUp, func() {}, nil
	}

	rdb, err := NewRedisClient(ctx, cfg, log)
	if err != nil {
		return nil, nil, nil, err
	}
	ping := func(ctx context.Context) error { return rdb.Ping(ctx).Err() }
	return session.NewRedisRegistry(rdb), ping, func() { _ = rdb.Close() }, nil
}
