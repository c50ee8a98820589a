package historystore

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/Jayesh25-trade/CineVibe/internal/domain/history"
)

const schema = `
	CREATE TABLE IF NOT EXISTS search_history (
		mood_key    TEXT PRIMARY KEY,
		id          TEXT NOT NULL,
		mood        TEXT NOT NULL,
		searched_at TIMESTAMPTZ NOT NULL
	);
	CREATE INDEX IF NOT EXISTS search_history_searched_at_idx ON search_history (searched_at DESC);
`

// PostgresStore implements history.Store using pgx.
type PostgresStore struct {
	pool *pgxpool.Pool
}

// NewPostgresStore constructs the store.
func NewPostgresStore(pool *pgxpool.Pool) *PostgresStore {
	return &PostgresStore{pool: pool}
}

// EnsureSchema creates the history table when missing.
func (s *PostgresStore) EnsureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, schema)
	return err
}

// Save upserts by mood key and trims to the newest limit rows.
func (s *PostgresStore) Save(ctx context.Context, item history.Item, limit int) error {
	return pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		if _, err := tx.Exec(ctx, `
			INSERT INTO search_history (mood_key, id, mood, searched_at)
			VALUES ($1, $2, $3, $4)
			ON CONFLICT (mood_key) DO UPDATE
			SET id = EXCLUDED.id, mood = EXCLUDED.mood, searched_at = EXCLUDED.searched_at
		`, history.Key(item.Mood), item.ID, item.Mood, item.Timestamp); err != nil {
			return err
		}
		if limit <= 0 {
			return nil
		}
		_, err := tx.Exec(ctx, `
			DELETE FROM search_history
			WHERE mood_key NOT IN (
				SELECT mood_key FROM search_history
				ORDER BY searched_at DESC
				LIMIT $1
			)
		`, limit)
		return err
	})
}

// Recent lists the newest rows first.
func (s *PostgresStore) Recent(ctx context.Context, limit int) ([]history.Item, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.pool.Query(ctx, `
		SELECT id, mood, searched_at
		FROM search_history
		ORDER BY searched_at DESC
		LIMIT $1
	`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]history.Item, 0, limit)
	for rows.Next() {
		var (
			item history.Item
			ts   time.Time
		)
		if err := rows.Scan(&item.ID, &item.Mood, &ts); err != nil {
			return nil, err
		}
		item.Timestamp = ts.UTC()
		out = append(out, item)
	}
	return out, rows.Err()
}

var _ history.Store = (*PostgresStore)(nil)
