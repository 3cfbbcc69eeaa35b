package counter

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"

	"server/internal/infra"
	"server/internal/sqlinline"
)

// DefaultPostgresTTL bounds how long per-user daily counters linger. The key
// already carries the UTC date, so the expiry only exists for cleanup.
const DefaultPostgresTTL = 48 * time.Hour

// Postgres persists counters in the search_counters table. Increments are a
// single upsert, so concurrent requests for the same user cannot lose counts.
type Postgres struct {
	SQL infra.SQLExecutor
	TTL time.Duration
}

// NewPostgres wires a store over the shared SQL runner.
func NewPostgres(sql infra.SQLExecutor) *Postgres {
	return &Postgres{SQL: sql, TTL: DefaultPostgresTTL}
}

func (s *Postgres) Get(ctx context.Context, key string) (int, bool, error) {
	var n int
	err := s.SQL.QueryRow(ctx, sqlinline.QSelectCounter, key).Scan(&n)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return n, true, nil
}

func (s *Postgres) Set(ctx context.Context, key string, n int, ttl time.Duration) error {
	_, err := s.SQL.Exec(ctx, sqlinline.QUpsertCounter, key, n, s.expiry(ttl))
	return err
}

func (s *Postgres) IncrementOrCreate(ctx context.Context, key string) (int, error) {
	var n int
	if err := s.SQL.QueryRow(ctx, sqlinline.QIncrementCounter, key, s.expiry(s.TTL)).Scan(&n); err != nil {
		return 0, err
	}
	return n, nil
}

func (s *Postgres) Delete(ctx context.Context, key string) error {
	_, err := s.SQL.Exec(ctx, sqlinline.QDeleteCounter, key)
	return err
}

// DeleteExpired sweeps counters past their expiry. Called on startup.
func (s *Postgres) DeleteExpired(ctx context.Context) error {
	_, err := s.SQL.Exec(ctx, sqlinline.QDeleteExpiredCounters)
	return err
}

func (s *Postgres) expiry(ttl time.Duration) any {
	if ttl <= 0 {
		return nil
	}
	return time.Now().Add(ttl)
}
