package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type SyncStateRepository struct {
	db dbtx
}

func NewSyncStateRepository(pool *pgxpool.Pool) *SyncStateRepository {
	return &SyncStateRepository{db: pool}
}

func NewSyncStateRepositoryWithTx(tx pgx.Tx) *SyncStateRepository {
	return &SyncStateRepository{db: tx}
}

// GetTime returns the timestamp stored under key, or nil when absent or
// unparseable.
func (r *SyncStateRepository) GetTime(ctx context.Context, key string) (*time.Time, error) {
	var value string
	err := r.db.QueryRow(ctx, `SELECT value FROM sync_state WHERE key = $1`, key).Scan(&value)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	t, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return nil, nil
	}
	return &t, nil
}

// SetTime upserts the timestamp under key.
func (r *SyncStateRepository) SetTime(ctx context.Context, key string, t time.Time) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO sync_state (key, value, updated_at) VALUES ($1, $2, now())
		 ON CONFLICT (key) DO UPDATE SET value = EXCLUDED.value, updated_at = now()`,
		key, t.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("failed to set sync state %s: %w", key, err)
	}
	return nil
}
