// Package store is the professor record collection: a key-indexed document
// store with unique constraints on email and phone, backed by SQLite.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

var (
	ErrNotFound       = errors.New("professor not found")
	ErrDuplicateEmail = errors.New("professor with this email already exists")
	ErrDuplicatePhone = errors.New("professor with this phone already exists")
)

const schema = `
CREATE TABLE IF NOT EXISTS professors (
	id            TEXT PRIMARY KEY,
	name          TEXT NOT NULL,
	email         TEXT NOT NULL UNIQUE,
	phone         TEXT NOT NULL UNIQUE,
	password_hash TEXT NOT NULL,
	created_at    TIMESTAMP NOT NULL,
	updated_at    TIMESTAMP NOT NULL
);
`

// Store provides CRUD over professor records.
type Store struct {
	db *sql.DB
}

// Open opens (and if needed creates) the professor database at dsn.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open database %s: %w", dsn, err)
	}

	if err := db.Ping(); err != nil {
		return nil, fmt.Errorf("failed to connect to database %s: %w", dsn, err)
	}

	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("failed to apply schema: %w", err)
	}

	return &Store{db: db}, nil
}

// Close closes the underlying database.
func (s *Store) Close() error {
	return s.db.Close()
}

// Create inserts a new professor. The record id is generated when empty and
// CreatedAt/UpdatedAt are stamped here.
func (s *Store) Create(ctx context.Context, p *Professor) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	p.CreatedAt = now
	p.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO professors (id, name, email, phone, password_hash, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, p.ID, p.Name, p.Email, p.Phone, p.PasswordHash, p.CreatedAt, p.UpdatedAt)
	if err != nil {
		return mapConstraintError(err)
	}
	return nil
}

// GetByID fetches a single professor by record id.
func (s *Store) GetByID(ctx context.Context, id string) (*Professor, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, password_hash, created_at, updated_at
		FROM professors WHERE id = ?
	`, id))
}

// GetByEmail fetches a single professor by the unique email field.
func (s *Store) GetByEmail(ctx context.Context, email string) (*Professor, error) {
	return s.scanOne(s.db.QueryRowContext(ctx, `
		SELECT id, name, email, phone, password_hash, created_at, updated_at
		FROM professors WHERE email = ?
	`, email))
}

// List returns all professors ordered by creation time.
func (s *Store) List(ctx context.Context) ([]*Professor, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, phone, password_hash, created_at, updated_at
		FROM professors ORDER BY created_at
	`)
	if err != nil {
		return nil, fmt.Errorf("failed to list professors: %w", err)
	}
	defer rows.Close()

	var professors []*Professor
	for rows.Next() {
		var p Professor
		if err := rows.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan professor: %w", err)
		}
		professors = append(professors, &p)
	}
	return professors, rows.Err()
}

// Update applies a partial update and returns the updated record.
func (s *Store) Update(ctx context.Context, id string, upd Update) (*Professor, error) {
	if upd.Empty() {
		return s.GetByID(ctx, id)
	}

	sets := []string{"updated_at = ?"}
	args := []any{time.Now().UTC()}

	if upd.Name != nil {
		sets = append(sets, "name = ?")
		args = append(args, *upd.Name)
	}
	if upd.Email != nil {
		sets = append(sets, "email = ?")
		args = append(args, *upd.Email)
	}
	if upd.Phone != nil {
		sets = append(sets, "phone = ?")
		args = append(args, *upd.Phone)
	}
	args = append(args, id)

	res, err := s.db.ExecContext(ctx,
		"UPDATE professors SET "+strings.Join(sets, ", ")+" WHERE id = ?", args...)
	if err != nil {
		return nil, mapConstraintError(err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return nil, err
	}
	if affected == 0 {
		return nil, ErrNotFound
	}

	return s.GetByID(ctx, id)
}

// Delete removes a professor and returns the deleted record.
func (s *Store) Delete(ctx context.Context, id string) (*Professor, error) {
	p, err := s.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if _, err := s.db.ExecContext(ctx, `DELETE FROM professors WHERE id = ?`, id); err != nil {
		return nil, fmt.Errorf("failed to delete professor %s: %w", id, err)
	}
	return p, nil
}

func (s *Store) scanOne(row *sql.Row) (*Professor, error) {
	var p Professor
	err := row.Scan(&p.ID, &p.Name, &p.Email, &p.Phone, &p.PasswordHash, &p.CreatedAt, &p.UpdatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to scan professor: %w", err)
	}
	return &p, nil
}

// mapConstraintError translates SQLite unique violations into the store's
// error vocabulary.
func mapConstraintError(err error) error {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique {
		msg := sqliteErr.Error()
		switch {
		case strings.Contains(msg, "professors.email"):
			return ErrDuplicateEmail
		case strings.Contains(msg, "professors.phone"):
			return ErrDuplicatePhone
		}
	}
	return err
}
