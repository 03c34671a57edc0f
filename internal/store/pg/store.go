// Package pg implementa store.Store sobre PostgreSQL (pgxpool).
package pg

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/dropDatabas3/botmanage/internal/discord"
	"github.com/dropDatabas3/botmanage/internal/domain/types"
	"github.com/dropDatabas3/botmanage/internal/store"
)

type Store struct{ pool *pgxpool.Pool }

// Tuning opcional del pool.
type Config struct {
	MaxConns        int
	MinConns        int
	ConnMaxLifetime time.Duration
}

func New(ctx context.Context, dsn string, cfg Config) (*Store, error) {
	pcfg, err := pgxpool.ParseConfig(dsn)
	if err != nil {
		return nil, err
	}

	if cfg.MaxConns > 0 {
		pcfg.MaxConns = int32(cfg.MaxConns)
	}
	if cfg.MinConns > 0 {
		pcfg.MinConns = int32(cfg.MinConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		pcfg.MaxConnLifetime = cfg.ConnMaxLifetime
		pcfg.MaxConnIdleTime = cfg.ConnMaxLifetime
	}

	pool, err := pgxpool.NewWithConfig(ctx, pcfg)
	if err != nil {
		return nil, err
	}

	return &Store{pool: pool}, nil
}

// Pool expone el pool interno para usos avanzados (metrics/migraciones).
func (s *Store) Pool() *pgxpool.Pool {
	if s == nil {
		return nil
	}
	return s.pool
}

func (s *Store) Ping(ctx context.Context) error { return s.pool.Ping(ctx) }

// Close cierra el pool subyacente (idempotente).
func (s *Store) Close() {
	if s != nil && s.pool != nil {
		s.pool.Close()
	}
}

// La Config completa vive como JSONB; el guild_id va como columna
// propia para el PK y para que el upsert sea por guild.
const (
	qGetConfig = `SELECT data FROM guild_config WHERE guild_id = $1`

	qUpsertConfig = `
		INSERT INTO guild_config (guild_id, data, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (guild_id)
		DO UPDATE SET data = EXCLUDED.data, updated_at = now()`
)

func (s *Store) GetConfig(ctx context.Context, guildID discord.ID) (*types.Config, error) {
	var raw []byte
	err := s.pool.QueryRow(ctx, qGetConfig, int64(guildID)).Scan(&raw)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, store.ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	var cfg types.Config
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (s *Store) UpdateConfig(ctx context.Context, guildID discord.ID, cfg *types.Config) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return err
	}
	_, err = s.pool.Exec(ctx, qUpsertConfig, int64(guildID), raw)
	return err
}
