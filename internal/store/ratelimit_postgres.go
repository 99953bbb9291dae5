package store

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// RateLimitPostgresStore is a PostgreSQL implementation of ratelimit.Store.
//
// Expected schema:
//
//	CREATE TABLE rate_limit_requests (
//	    client_id   text        NOT NULL,
//	    recorded_at timestamptz NOT NULL
//	);
//	CREATE INDEX rate_limit_requests_client_idx ON rate_limit_requests (client_id, recorded_at);
//	CREATE INDEX rate_limit_requests_recorded_idx ON rate_limit_requests (recorded_at);
type RateLimitPostgresStore struct {
	pool *pgxpool.Pool
}

// NewRateLimitPostgresStore creates a new PostgreSQL-backed rate limit store.
func NewRateLimitPostgresStore(pool *pgxpool.Pool) *RateLimitPostgresStore {
	return &RateLimitPostgresStore{pool: pool}
}

func (p *RateLimitPostgresStore) Record(ctx context.Context, clientID string, at time.Time) error {
	query := `
		INSERT INTO rate_limit_requests (client_id, recorded_at)
		VALUES ($1, $2)
	`

	_, err := p.pool.Exec(ctx, query, clientID, at)

	return err
}

func (p *RateLimitPostgresStore) CountSince(ctx context.Context, clientID string, since time.Time) (int64, error) {
	query := `
		SELECT count(*)
		FROM rate_limit_requests
		WHERE client_id = $1 AND recorded_at >= $2
	`

	var count int64

	if err := p.pool.QueryRow(ctx, query, clientID, since).Scan(&count); err != nil {
		return 0, err
	}

	return count, nil
}

func (p *RateLimitPostgresStore) OldestSince(ctx context.Context, clientID string, since time.Time) (time.Time, bool, error) {
	query := `
		SELECT recorded_at
		FROM rate_limit_requests
		WHERE client_id = $1 AND recorded_at >= $2
		ORDER BY recorded_at
		LIMIT 1
	`

	var oldest time.Time

	err := p.pool.QueryRow(ctx, query, clientID, since).Scan(&oldest)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return time.Time{}, false, nil
		}

		return time.Time{}, false, err
	}

	return oldest, true, nil
}

func (p *RateLimitPostgresStore) DeleteOlderThan(ctx context.Context, threshold time.Time) (int64, error) {
	query := `
		DELETE FROM rate_limit_requests
		WHERE recorded_at < $1
	`

	tag, err := p.pool.Exec(ctx, query, threshold)
	if err != nil {
		return 0, err
	}

	return tag.RowsAffected(), nil
}
