package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DB is the subset of *pgxpool.Pool the store needs.
type DB interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// PGStore is a PostgreSQL-backed profile store. Options are kept as JSONB in
// the table_profiles table.
type PGStore struct {
	db     DB
	logger *slog.Logger
}

// NewPGStore creates a PG-backed profile store.
func NewPGStore(db DB, logger *slog.Logger) *PGStore {
	if logger == nil {
		logger = slog.Default()
	}
	return &PGStore{
		db:     db,
		logger: logger.With("component", "profile-store"),
	}
}

// Init creates the table_profiles table if it doesn't exist.
func (s *PGStore) Init(ctx context.Context) error {
	_, err := s.db.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS table_profiles (
			id         UUID PRIMARY KEY,
			name       TEXT NOT NULL UNIQUE,
			options    JSONB NOT NULL,
			created_at TIMESTAMPTZ NOT NULL DEFAULT now(),
			updated_at TIMESTAMPTZ NOT NULL DEFAULT now()
		)
	`)
	if err != nil {
		return fmt.Errorf("create profiles table: %w", err)
	}
	return nil
}

const profileColumns = `id, name, options, created_at, updated_at`

func (s *PGStore) Put(ctx context.Context, p Profile) (Profile, error) {
	if err := ValidateName(p.Name); err != nil {
		return Profile{}, err
	}
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}

	optionsJSON, err := json.Marshal(p.Options)
	if err != nil {
		return Profile{}, fmt.Errorf("marshal options: %w", err)
	}

	row := s.db.QueryRow(ctx,
		`INSERT INTO table_profiles (id, name, options)
		 VALUES ($1, $2, $3)
		 ON CONFLICT (name) DO UPDATE
		 SET options = EXCLUDED.options, updated_at = now()
		 RETURNING `+profileColumns,
		p.ID, p.Name, optionsJSON,
	)
	stored, err := scanProfile(row)
	if err != nil {
		return Profile{}, fmt.Errorf("upsert profile %s: %w", p.Name, err)
	}

	s.logger.Info("profile stored", "name", stored.Name, "id", stored.ID)
	return stored, nil
}

func (s *PGStore) Get(ctx context.Context, name string) (Profile, error) {
	row := s.db.QueryRow(ctx,
		`SELECT `+profileColumns+` FROM table_profiles WHERE name = $1`, name)

	p, err := scanProfile(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return Profile{}, fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	if err != nil {
		return Profile{}, fmt.Errorf("get profile %s: %w", name, err)
	}
	return p, nil
}

func (s *PGStore) List(ctx context.Context) ([]Profile, error) {
	rows, err := s.db.Query(ctx,
		`SELECT `+profileColumns+` FROM table_profiles ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}

	profiles, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (Profile, error) {
		return scanProfile(row)
	})
	if err != nil {
		return nil, fmt.Errorf("list profiles: %w", err)
	}
	return profiles, nil
}

func (s *PGStore) Delete(ctx context.Context, name string) error {
	tag, err := s.db.Exec(ctx, `DELETE FROM table_profiles WHERE name = $1`, name)
	if err != nil {
		return fmt.Errorf("delete profile %s: %w", name, err)
	}
	if tag.RowsAffected() == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, name)
	}
	s.logger.Info("profile deleted", "name", name)
	return nil
}

func scanProfile(row pgx.Row) (Profile, error) {
	var (
		p           Profile
		optionsJSON []byte
	)
	if err := row.Scan(&p.ID, &p.Name, &optionsJSON, &p.CreatedAt, &p.UpdatedAt); err != nil {
		return Profile{}, err
	}
	if err := json.Unmarshal(optionsJSON, &p.Options); err != nil {
		return Profile{}, fmt.Errorf("decode options of %s: %w", p.Name, err)
	}
	p.CreatedAt = p.CreatedAt.UTC()
	p.UpdatedAt = p.UpdatedAt.UTC()
	return p, nil
}
