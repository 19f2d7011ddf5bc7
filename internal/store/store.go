package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"

	"github.com/mattn/go-sqlite3"
)

var (
	// ErrNotFound is returned when no user exists for the given id.
	ErrNotFound = errors.New("user not found")
	// ErrConflict is returned when creating a user whose id already exists.
	ErrConflict = errors.New("user already exists")
)

// User is a persisted favourite-coordinate record keyed by an external
// (Telegram) user id. Coordinates are nil until the user sets them.
type User struct {
	ID  int64    `json:"id"`
	Lat *float64 `json:"lat"`
	Lon *float64 `json:"lon"`
}

// UserStore provides access to the users table. A nil *UserStore is a valid
// receiver for none of the methods; callers must check for nil when the
// store failed to open at startup.
type UserStore struct {
	db  *sql.DB
	log *slog.Logger
}

const schema = `
CREATE TABLE IF NOT EXISTS users (
	id  INTEGER PRIMARY KEY,
	lat REAL,
	lon REAL
);`

// Open opens (or creates) the SQLite database at path and ensures the users
// table exists.
func Open(path string, log *slog.Logger) (*UserStore, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to ensure users table: %w", err)
	}

	return &UserStore{db: db, log: log}, nil
}

// Close closes the underlying database handle.
func (s *UserStore) Close() error {
	return s.db.Close()
}

// Ping reports whether the database connection is alive.
func (s *UserStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// GetUser returns the user record for id, or ErrNotFound.
func (s *UserStore) GetUser(ctx context.Context, id int64) (User, error) {
	user := User{ID: id}
	row := s.db.QueryRowContext(ctx, "SELECT id, lat, lon FROM users WHERE id = ?", id)
	if err := row.Scan(&user.ID, &user.Lat, &user.Lon); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return User{}, ErrNotFound
		}
		return User{}, fmt.Errorf("failed to query user %d: %w", id, err)
	}
	return user, nil
}

// CreateUser inserts a new record with null coordinates. It returns
// ErrConflict if the id is already taken; the existing record is untouched.
func (s *UserStore) CreateUser(ctx context.Context, id int64) (User, error) {
	_, err := s.db.ExecContext(ctx, "INSERT INTO users (id, lat, lon) VALUES (?, NULL, NULL)", id)
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.Code == sqlite3.ErrConstraint {
			return User{}, ErrConflict
		}
		return User{}, fmt.Errorf("failed to insert user %d: %w", id, err)
	}

	s.log.DebugContext(ctx, "user created", "id", id)
	return User{ID: id}, nil
}

// UpdateCoordinates sets the favourite coordinates of an existing user.
// It returns ErrNotFound without mutating anything if the id does not exist,
// distinguished from success by the affected-row count.
func (s *UserStore) UpdateCoordinates(ctx context.Context, id int64, lat, lon float64) (User, error) {
	res, err := s.db.ExecContext(ctx, "UPDATE users SET lat = ?, lon = ? WHERE id = ?", lat, lon, id)
	if err != nil {
		return User{}, fmt.Errorf("failed to update user %d: %w", id, err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return User{}, fmt.Errorf("failed to read affected rows: %w", err)
	}
	if affected == 0 {
		return User{}, ErrNotFound
	}

	s.log.DebugContext(ctx, "user coordinates updated", "id", id, "lat", lat, "lon", lon)
	return User{ID: id, Lat: &lat, Lon: &lon}, nil
}
