// Package store persists user accounts in SQLite.
package store

import (
	"context"
	"database/sql"
	"fmt"

	_ "github.com/mattn/go-sqlite3"

	"github.com/bigsmile-dental/denty/domain"
)

// UserStore defines the interface for account persistence.
type UserStore interface {
	CreateUser(ctx context.Context, user *domain.User) (int64, error)
	GetUserByEmail(ctx context.Context, email string) (*domain.User, error)
	FindUser(ctx context.Context, email, username string) (*domain.User, error)
	Close() error
}

// SQLiteStore implements UserStore using SQLite.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore creates a new SQLite store.
func NewSQLiteStore(dsn string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// migrate runs database migrations.
func (s *SQLiteStore) migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS users (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			email TEXT NOT NULL UNIQUE,
			username TEXT NOT NULL UNIQUE,
			password TEXT NOT NULL,
			created_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_users_email ON users(email)`,
	}

	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("migration failed: %w\n%s", err, m)
		}
	}

	return nil
}

// Close closes the database connection.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// CreateUser inserts a new account and returns its id.
func (s *SQLiteStore) CreateUser(ctx context.Context, user *domain.User) (int64, error) {
	res, err := s.db.ExecContext(ctx,
		`INSERT INTO users (email, username, password) VALUES (?, ?, ?)`,
		user.Email, user.Username, user.Password)
	if err != nil {
		return 0, err
	}
	return res.LastInsertId()
}

// GetUserByEmail retrieves an account by email. Returns nil when no
// account matches.
func (s *SQLiteStore) GetUserByEmail(ctx context.Context, email string) (*domain.User, error) {
	return s.queryUser(ctx,
		`SELECT id, email, username, password, created_at FROM users WHERE email = ?`, email)
}

// FindUser retrieves an account matching either email or username.
// Returns nil when no account matches.
func (s *SQLiteStore) FindUser(ctx context.Context, email, username string) (*domain.User, error) {
	return s.queryUser(ctx,
		`SELECT id, email, username, password, created_at FROM users WHERE email = ? OR username = ?`,
		email, username)
}

func (s *SQLiteStore) queryUser(ctx context.Context, query string, args ...interface{}) (*domain.User, error) {
	var user domain.User
	err := s.db.QueryRowContext(ctx, query, args...).
		Scan(&user.ID, &user.Email, &user.Username, &user.Password, &user.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &user, nil
}
