// Package store persists privacy-conscious visitor metrics and contact
// messages in SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

var ErrNotFound = errors.New("store: not found")

const (
	StatusDelivered = "delivered"
	StatusFailed    = "failed"
)

// Visit is one tracked page view. Raw IPs are never stored.
type Visit struct {
	ID        int64     `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	UserAgent string    `json:"user_agent"`
	Path      string    `json:"path"`
	Timestamp time.Time `json:"timestamp"`
}

// ContactRecord is one accepted contact form submission and its outcome.
type ContactRecord struct {
	ID        string    `json:"id"`
	HashedIP  string    `json:"hashed_ip"`
	Name      string    `json:"name"`
	Email     string    `json:"email"`
	Body      string    `json:"body"`
	Status    string    `json:"status"`
	Error     string    `json:"error,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// Stats feeds the admin dashboard.
type Stats struct {
	TotalVisitors     int64           `json:"total_visitors"`
	UniqueVisitors    int64           `json:"unique_visitors"`
	VisitorsToday     int64           `json:"visitors_today"`
	VisitorsThisWeek  int64           `json:"visitors_this_week"`
	TotalMessages     int64           `json:"total_messages"`
	DeliveredMessages int64           `json:"delivered_messages"`
	FailedMessages    int64           `json:"failed_messages"`
	RecentVisitors    []Visit         `json:"recent_visitors"`
	RecentMessages    []ContactRecord `json:"recent_messages"`
}

// Store wraps the database handle.
type Store struct {
	db  *sql.DB
	now func() time.Time
}

// Open opens (creating if needed) the database at path and migrates it.
func Open(ctx context.Context, path string) (*Store, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// SQLite serialises writers anyway; one connection avoids SQLITE_BUSY.
	db.SetMaxOpenConns(1)

	s := &Store{db: db, now: time.Now}
	if err := s.migrate(ctx); err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) Close() error { return s.db.Close() }

var migrations = []string{
	`CREATE TABLE IF NOT EXISTS visitors (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		hashed_ip TEXT NOT NULL,
		user_agent TEXT NOT NULL DEFAULT '',
		path TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS visitors_created_at ON visitors(created_at)`,
	`CREATE TABLE IF NOT EXISTS contact_messages (
		id TEXT PRIMARY KEY,
		hashed_ip TEXT NOT NULL DEFAULT '',
		name TEXT NOT NULL,
		email TEXT NOT NULL,
		body TEXT NOT NULL,
		status TEXT NOT NULL,
		error TEXT NOT NULL DEFAULT '',
		created_at INTEGER NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS contact_messages_created_at ON contact_messages(created_at)`,
}

func (s *Store) migrate(ctx context.Context) error {
	var version int
	if err := s.db.QueryRowContext(ctx, `PRAGMA user_version`).Scan(&version); err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	for i := version; i < len(migrations); i++ {
		if _, err := s.db.ExecContext(ctx, migrations[i]); err != nil {
			return fmt.Errorf("migration %d: %w", i+1, err)
		}
		if _, err := s.db.ExecContext(ctx, fmt.Sprintf(`PRAGMA user_version = %d`, i+1)); err != nil {
			return fmt.Errorf("bump schema version: %w", err)
		}
	}
	return nil
}

// RecordVisit stores one page view. A zero timestamp means now.
func (s *Store) RecordVisit(ctx context.Context, v Visit) error {
	if v.Timestamp.IsZero() {
		v.Timestamp = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO visitors (hashed_ip, user_agent, path, created_at)
		VALUES (?, ?, ?, ?)
	`, v.HashedIP, v.UserAgent, v.Path, v.Timestamp.Unix())
	if err != nil {
		return fmt.Errorf("record visit: %w", err)
	}
	return nil
}

// RecordContact stores one submission outcome.
func (s *Store) RecordContact(ctx context.Context, r ContactRecord) error {
	if r.CreatedAt.IsZero() {
		r.CreatedAt = s.now()
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO contact_messages (id, hashed_ip, name, email, body, status, error, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, r.ID, r.HashedIP, r.Name, r.Email, r.Body, r.Status, r.Error, r.CreatedAt.Unix())
	if err != nil {
		return fmt.Errorf("record contact %s: %w", r.ID, err)
	}
	return nil
}

// Stats aggregates dashboard numbers.
func (s *Store) Stats(ctx context.Context) (*Stats, error) {
	now := s.now()
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	weekAgo := now.Add(-7 * 24 * time.Hour)

	stats := &Stats{}
	counts := []struct {
		dst   *int64
		query string
		args  []any
	}{
		{&stats.TotalVisitors, `SELECT COUNT(*) FROM visitors`, nil},
		{&stats.UniqueVisitors, `SELECT COUNT(DISTINCT hashed_ip) FROM visitors`, nil},
		{&stats.VisitorsToday, `SELECT COUNT(*) FROM visitors WHERE created_at >= ?`, []any{midnight.Unix()}},
		{&stats.VisitorsThisWeek, `SELECT COUNT(*) FROM visitors WHERE created_at >= ?`, []any{weekAgo.Unix()}},
		{&stats.TotalMessages, `SELECT COUNT(*) FROM contact_messages`, nil},
		{&stats.DeliveredMessages, `SELECT COUNT(*) FROM contact_messages WHERE status = ?`, []any{StatusDelivered}},
		{&stats.FailedMessages, `SELECT COUNT(*) FROM contact_messages WHERE status = ?`, []any{StatusFailed}},
	}
	for _, c := range counts {
		if err := s.db.QueryRowContext(ctx, c.query, c.args...).Scan(c.dst); err != nil {
			return nil, fmt.Errorf("stats: %w", err)
		}
	}

	var err error
	if stats.RecentVisitors, err = s.Visitors(ctx, 50); err != nil {
		return nil, err
	}
	if stats.RecentMessages, err = s.Messages(ctx, 10); err != nil {
		return nil, err
	}
	return stats, nil
}

// Visitors returns the most recent visits, newest first.
func (s *Store) Visitors(ctx context.Context, limit int) ([]Visit, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hashed_ip, user_agent, path, created_at
		FROM visitors
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list visitors: %w", err)
	}
	defer rows.Close()

	var visits []Visit
	for rows.Next() {
		var v Visit
		var ts int64
		if err := rows.Scan(&v.ID, &v.HashedIP, &v.UserAgent, &v.Path, &ts); err != nil {
			return nil, fmt.Errorf("scan visitor: %w", err)
		}
		v.Timestamp = time.Unix(ts, 0)
		visits = append(visits, v)
	}
	return visits, rows.Err()
}

// Messages returns the most recent contact messages, newest first.
func (s *Store) Messages(ctx context.Context, limit int) ([]ContactRecord, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, hashed_ip, name, email, body, status, error, created_at
		FROM contact_messages
		ORDER BY created_at DESC, rowid DESC
		LIMIT ?
	`, limit)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var records []ContactRecord
	for rows.Next() {
		var r ContactRecord
		var ts int64
		if err := rows.Scan(&r.ID, &r.HashedIP, &r.Name, &r.Email, &r.Body, &r.Status, &r.Error, &ts); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		r.CreatedAt = time.Unix(ts, 0)
		records = append(records, r)
	}
	return records, rows.Err()
}

// DeleteMessage removes one message by ID.
func (s *Store) DeleteMessage(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM contact_messages WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete message %s: %w", id, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// CleanupVisitors deletes visits recorded before cutoff.
func (s *Store) CleanupVisitors(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM visitors WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("cleanup visitors: %w", err)
	}
	return res.RowsAffected()
}

// CleanupMessages deletes contact messages received before cutoff.
func (s *Store) CleanupMessages(ctx context.Context, cutoff time.Time) (int64, error) {
	res, err := s.db.ExecContext(ctx, `DELETE FROM contact_messages WHERE created_at < ?`, cutoff.Unix())
	if err != nil {
		return 0, fmt.Errorf("cleanup messages: %w", err)
	}
	return res.RowsAffected()
}
