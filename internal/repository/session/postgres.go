package session

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-api/internal/domain"
)

type postgresRepo struct {
	pool *pgxpool.Pool
	ttl  time.Duration
}

// NewPostgres returns a Repository backed by the cart_sessions table. Every
// Put refreshes the slot's expiry by ttl; expired slots read as absent.
func NewPostgres(pool *pgxpool.Pool, ttl time.Duration) Repository {
	return &postgresRepo{pool: pool, ttl: ttl}
}

func (r *postgresRepo) Get(ctx context.Context, sessionID string) ([]byte, error) {
	const q = `
SELECT payload
FROM cart_sessions
WHERE session_id = $1 AND expires_at > now()
`
	var payload []byte
	if err := r.pool.QueryRow(ctx, q, sessionID).Scan(&payload); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return payload, nil
}

func (r *postgresRepo) Put(ctx context.Context, sessionID string, payload []byte) error {
	const q = `
INSERT INTO cart_sessions (session_id, payload, updated_at, expires_at)
VALUES ($1, $2, now(), $3)
ON CONFLICT (session_id)
DO UPDATE SET payload = EXCLUDED.payload, updated_at = now(), expires_at = EXCLUDED.expires_at
`
	expiresAt := time.Now().UTC().Add(r.ttl)
	_, err := r.pool.Exec(ctx, q, sessionID, payload, expiresAt)
	return err
}

func (r *postgresRepo) Delete(ctx context.Context, sessionID string) error {
	const q = `DELETE FROM cart_sessions WHERE session_id = $1`
	_, err := r.pool.Exec(ctx, q, sessionID)
	return err
}
