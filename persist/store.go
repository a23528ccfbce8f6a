// Package persist implements the Persistence Adapter (A4, SPEC_FULL.md
// §6): a pgx-backed store for the "Chat" and "GameShipLock" persist keys,
// migrated with goose. Grounded on the teacher-pack's pgxpool/goose
// wiring idiom.
package persist

import (
	"context"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store wraps a pgx connection pool and implements core.Persist.
type Store struct {
	Pool *pgxpool.Pool
}

// Open connects to dsn, verifying the connection with a bounded ping the
// same way the teacher's NewDB does.
func Open(ctx context.Context, dsn string, maxConns, minConns int32, connMaxLifetime time.Duration) (*Store, error) {
	cfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, fmt.Errorf("parse dsn: %w", err)
	}
	cfg.MaxConns = maxConns
	cfg.MinConns = minConns
	cfg.MaxConnLifetime = connMaxLifetime

	pool, err := pgxpool.NewWithConfig(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to db: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := pool.Ping(pingCtx); err != nil {
		pool.Close()
		return nil, fmt.Errorf("ping db: %w", err)
	}

	return &Store{Pool: pool}, nil
}

func (s *Store) Close() {
	s.Pool.Close()
}

// Load implements core.Persist.
func (s *Store) Load(ctx context.Context, playerID int, arena, key string) ([]byte, bool, error) {
	var value []byte
	err := s.Pool.QueryRow(ctx,
		`SELECT value FROM player_persist WHERE player_id = $1 AND arena = $2 AND key = $3`,
		playerID, arena, key,
	).Scan(&value)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, false, nil
		}
		return nil, false, fmt.Errorf("load %s/%s for player %d: %w", arena, key, playerID, err)
	}
	return value, true, nil
}

// Save implements core.Persist, upserting the (player, arena, key) row.
func (s *Store) Save(ctx context.Context, playerID int, arena, key string, value []byte) error {
	_, err := s.Pool.Exec(ctx,
		`INSERT INTO player_persist (player_id, arena, key, value, updated_at)
		 VALUES ($1, $2, $3, $4, now())
		 ON CONFLICT (player_id, arena, key) DO UPDATE
		   SET value = EXCLUDED.value, updated_at = EXCLUDED.updated_at`,
		playerID, arena, key, value,
	)
	if err != nil {
		return fmt.Errorf("save %s/%s for player %d: %w", arena, key, playerID, err)
	}
	return nil
}
