package store

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/serroba/admission-gate/internal/audit"
)

// Postgres is a PostgreSQL implementation of audit.Store.
//
// Expected schema:
//
//	CREATE TABLE rate_limit_denials (
//	    event_id    text        PRIMARY KEY,
//	    request_id  text,
//	    client_key  text        NOT NULL,
//	    client_ip   text,
//	    method      text        NOT NULL,
//	    path        text        NOT NULL,
//	    limit_max   integer     NOT NULL,
//	    window_size text        NOT NULL,
//	    retry_after bigint      NOT NULL,
//	    denied_at   timestamptz NOT NULL
//	);
type Postgres struct {
	pool *pgxpool.Pool
}

// NewPostgres creates a new PostgreSQL-backed audit store.
func NewPostgres(pool *pgxpool.Pool) *Postgres {
	return &Postgres{pool: pool}
}

func (p *Postgres) SaveDenial(ctx context.Context, event *audit.DenialEvent) error {
	query := `
		INSERT INTO rate_limit_denials
			(event_id, request_id, client_key, client_ip, method, path, limit_max, window_size, retry_after, denied_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (event_id) DO NOTHING
	`

	_, err := p.pool.Exec(ctx, query,
		event.EventID,
		event.RequestID,
		event.ClientKey,
		event.ClientIP,
		event.Method,
		event.Path,
		event.Limit,
		event.Window,
		event.RetryAfter,
		event.DeniedAt,
	)

	return err
}

// Compile-time check.
var _ audit.Store = (*Postgres)(nil)
