package subscriber

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/RobinCoderZhao/happening-now/pkg/storage"
)

// Schema is the SQLite schema for subscribers.
const Schema = `
CREATE TABLE IF NOT EXISTS subscribers (
    id          TEXT PRIMARY KEY,
    email       TEXT NOT NULL UNIQUE,
    created_at  TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_subscribers_created ON subscribers(created_at);
`

// Store records subscriptions in SQLite. Re-subscribing an address that
// already exists is a no-op.
type Store struct {
	db *storage.DB
}

// NewStore creates a subscriber store and initializes its schema.
func NewStore(ctx context.Context, db *storage.DB) (*Store, error) {
	if err := db.Migrate(ctx, Schema); err != nil {
		return nil, fmt.Errorf("subscriber schema: %w", err)
	}
	return &Store{db: db}, nil
}

// Record implements Recorder.
func (s *Store) Record(ctx context.Context, sub Subscription) error {
	_, err := s.db.ExecContext(ctx,
		`INSERT OR IGNORE INTO subscribers (id, email, created_at) VALUES (?, ?, ?)`,
		sub.ID.String(), normalizeEmail(sub.Email), sub.CreatedAt.UTC().Format(time.RFC3339Nano))
	if err != nil {
		return fmt.Errorf("record subscription: %w", err)
	}
	return nil
}

// List returns all subscriptions, oldest first.
func (s *Store) List(ctx context.Context) ([]Subscription, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, email, created_at FROM subscribers ORDER BY created_at, email`)
	if err != nil {
		return nil, fmt.Errorf("list subscribers: %w", err)
	}
	defer rows.Close()

	var subs []Subscription
	for rows.Next() {
		var (
			id        string
			sub       Subscription
			createdAt string
		)
		if err := rows.Scan(&id, &sub.Email, &createdAt); err != nil {
			return nil, fmt.Errorf("scan subscriber: %w", err)
		}
		if sub.ID, err = uuid.Parse(id); err != nil {
			return nil, fmt.Errorf("parse subscriber id %q: %w", id, err)
		}
		if sub.CreatedAt, err = time.Parse(time.RFC3339Nano, createdAt); err != nil {
			return nil, fmt.Errorf("parse subscriber time %q: %w", createdAt, err)
		}
		subs = append(subs, sub)
	}
	return subs, rows.Err()
}

// Count returns the number of stored subscriptions.
func (s *Store) Count(ctx context.Context) (int, error) {
	var n int
	if err := s.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM subscribers`).Scan(&n); err != nil {
		return 0, fmt.Errorf("count subscribers: %w", err)
	}
	return n, nil
}

// Remove deletes a subscription by email. It reports whether a row was removed.
func (s *Store) Remove(ctx context.Context, email string) (bool, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM subscribers WHERE email = ?`, normalizeEmail(email))
	if err != nil {
		return false, fmt.Errorf("remove subscriber: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

func normalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
