package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/arthurdotwork/songroom/internal/domain"
	_ "modernc.org/sqlite"
)

// SQLiteProfileStore keeps guest profiles in a local sqlite file, one row
// per room identifier.
type SQLiteProfileStore struct {
	db *sql.DB
}

func NewSQLiteProfileStore(path string) (*SQLiteProfileStore, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("sql.Open: %w", err)
	}

	if _, err := db.Exec(`
		PRAGMA journal_mode = WAL;
		PRAGMA busy_timeout = 5000;
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Exec: %w", err)
	}

	if _, err := db.Exec(`
		CREATE TABLE IF NOT EXISTS guest_profiles (
			room_id TEXT PRIMARY KEY,
			name    TEXT NOT NULL,
			user_id TEXT NOT NULL DEFAULT ''
		);
	`); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db.Exec: %w", err)
	}

	return &SQLiteProfileStore{db: db}, nil
}

func (s *SQLiteProfileStore) Profile(ctx context.Context, roomID string) (domain.GuestProfile, bool, error) {
	var profile domain.GuestProfile

	row := s.db.QueryRowContext(ctx, `SELECT name, user_id FROM guest_profiles WHERE room_id = ?`, roomID)
	if err := row.Scan(&profile.Name, &profile.UserID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.GuestProfile{}, false, nil
		}

		return domain.GuestProfile{}, false, fmt.Errorf("row.Scan: %w", err)
	}

	return profile, true, nil
}

func (s *SQLiteProfileStore) SaveProfile(ctx context.Context, roomID string, profile domain.GuestProfile) error {
	if _, err := s.db.ExecContext(ctx, `
		INSERT INTO guest_profiles (room_id, name, user_id) VALUES (?, ?, ?)
		ON CONFLICT(room_id) DO UPDATE SET name = excluded.name, user_id = excluded.user_id
	`, roomID, profile.Name, profile.UserID); err != nil {
		return fmt.Errorf("db.ExecContext: %w", err)
	}

	return nil
}

func (s *SQLiteProfileStore) Close() error {
	return s.db.Close()
}
