package pgx

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/oesukam/r-incident-query-webapp/core"
	"github.com/oesukam/r-incident-query-webapp/extract"
)

// Store persists extraction results in Postgres so restarts and additional
// instances share the cache. Entries past the TTL are treated as absent and
// deleted on read.
type Store struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

var _ extract.Store = (*Store)(nil)

func NewStore(pool *pgxpool.Pool, ttl time.Duration) *Store {
	if ttl == 0 {
		ttl = 15 * time.Minute
	}
	return &Store{
		pool: pool,
		ttl:  ttl,
	}
}

const schema = `
CREATE TABLE IF NOT EXISTS incident_extractions (
	incident_id TEXT PRIMARY KEY,
	records     JSONB NOT NULL,
	cached_at   TIMESTAMPTZ NOT NULL DEFAULT now()
)`

// Migrate creates the extraction table if it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, schema); err != nil {
		return fmt.Errorf("create incident_extractions: %w", err)
	}
	return nil
}

func (s *Store) Get(ctx context.Context, incidentID string) ([]core.EmailRecord, error) {
	var payload []byte
	var cachedAt time.Time

	err := s.pool.QueryRow(ctx,
		`SELECT records, cached_at FROM incident_extractions WHERE incident_id = $1`,
		incidentID,
	).Scan(&payload, &cachedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, core.ErrNotCached
	}
	if err != nil {
		return nil, fmt.Errorf("read extraction: %w", err)
	}

	if time.Since(cachedAt) > s.ttl {
		if err := s.Delete(ctx, incidentID); err != nil {
			return nil, err
		}
		return nil, core.ErrNotCached
	}

	var records []core.EmailRecord
	if err := json.Unmarshal(payload, &records); err != nil {
		return nil, fmt.Errorf("decode extraction: %w", err)
	}
	return records, nil
}

func (s *Store) Set(ctx context.Context, incidentID string, records []core.EmailRecord) error {
	payload, err := json.Marshal(records)
	if err != nil {
		return fmt.Errorf("encode extraction: %w", err)
	}

	_, err = s.pool.Exec(ctx,
		`INSERT INTO incident_extractions (incident_id, records, cached_at)
		 VALUES ($1, $2, now())
		 ON CONFLICT (incident_id)
		 DO UPDATE SET records = EXCLUDED.records, cached_at = now()`,
		incidentID, payload,
	)
	if err != nil {
		return fmt.Errorf("write extraction: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, incidentID string) error {
	if _, err := s.pool.Exec(ctx,
		`DELETE FROM incident_extractions WHERE incident_id = $1`, incidentID,
	); err != nil {
		return fmt.Errorf("delete extraction: %w", err)
	}
	return nil
}

func (s *Store) Clear(ctx context.Context) error {
	if _, err := s.pool.Exec(ctx, `DELETE FROM incident_extractions`); err != nil {
		return fmt.Errorf("clear extractions: %w", err)
	}
	return nil
}
