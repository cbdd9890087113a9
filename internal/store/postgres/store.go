package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Store provides Postgres persistence for engine entities. Puts are
// buffered and committed as one pgx batch on Flush, so all writes for one
// event land together.
type Store struct {
	pool    *pgxpool.Pool
	pending []pendingPut
}

type pendingPut struct {
	kind string
	key  string
	data []byte
}

func NewStore(ctx context.Context, dsn string) (*Store, error) {
	if dsn == "" {
		return nil, fmt.Errorf("pg dsn is required")
	}
	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return nil, err
	}
	return &Store{pool: pool}, nil
}

func (s *Store) Close() {
	if s.pool != nil {
		s.pool.Close()
	}
}

// Get reads an entity document. Buffered-but-unflushed writes are visible
// so a handler can read back what an earlier handler wrote for the same
// event.
func (s *Store) Get(ctx context.Context, kind, key string) ([]byte, bool, error) {
	for i := len(s.pending) - 1; i >= 0; i-- {
		if s.pending[i].kind == kind && s.pending[i].key == key {
			return s.pending[i].data, true, nil
		}
	}

	var data []byte
	row := s.pool.QueryRow(ctx, `SELECT data FROM entities WHERE kind=$1 AND key=$2`, kind, key)
	if err := row.Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, false, nil
		}
		return nil, false, err
	}
	return data, true, nil
}

func (s *Store) Put(_ context.Context, kind, key string, data []byte) error {
	s.pending = append(s.pending, pendingPut{kind: kind, key: key, data: data})
	return nil
}

// Flush upserts all buffered entities in one batch.
func (s *Store) Flush(ctx context.Context) error {
	if len(s.pending) == 0 {
		return nil
	}
	batch := &pgx.Batch{}
	for _, put := range s.pending {
		batch.Queue(`
			INSERT INTO entities (kind, key, data, created_at, updated_at)
			VALUES ($1, $2, $3, now(), now())
			ON CONFLICT (kind, key)
			DO UPDATE SET data = EXCLUDED.data, updated_at = now()
		`, put.kind, put.key, put.data)
	}

	br := s.pool.SendBatch(ctx, batch)
	defer br.Close()

	for range s.pending {
		if _, err := br.Exec(); err != nil {
			return err
		}
	}
	s.pending = s.pending[:0]
	return nil
}

// LoadState returns last_processed_ts for a name.
func (s *Store) LoadState(ctx context.Context, name string) (uint64, bool, error) {
	if name == "" {
		return 0, false, fmt.Errorf("state name required")
	}
	var ts uint64
	row := s.pool.QueryRow(ctx, `SELECT last_processed_ts FROM engine_state WHERE name=$1`, name)
	if err := row.Scan(&ts); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, false, nil
		}
		return 0, false, err
	}
	return ts, true, nil
}

// SaveState upserts last_processed_ts for a name.
func (s *Store) SaveState(ctx context.Context, name string, ts uint64) error {
	if name == "" {
		return fmt.Errorf("state name required")
	}
	_, err := s.pool.Exec(ctx, `
		INSERT INTO engine_state (name, last_processed_ts, updated_at)
		VALUES ($1, $2, now())
		ON CONFLICT (name) DO UPDATE
		SET last_processed_ts = EXCLUDED.last_processed_ts, updated_at = now()
	`, name, ts)
	return err
}
