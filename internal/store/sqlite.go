package store

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	_ "modernc.org/sqlite"
)

// SQLiteStore implements Store on a local SQLite file.
type SQLiteStore struct {
	db     *sql.DB
	logger zerolog.Logger
	now    func() time.Time
}

// NewSQLiteStore opens (or creates) the database at path.
// Parent directories and the schema are created if needed.
func NewSQLiteStore(path string, logger zerolog.Logger) (*SQLiteStore, error) {
	logger = logger.With().Str("component", "store").Logger()

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("enabling WAL mode: %w", err)
	}
	if _, err := db.Exec("PRAGMA busy_timeout=5000"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("setting busy timeout: %w", err)
	}

	s := &SQLiteStore{db: db, logger: logger, now: time.Now}
	if err := s.createSchema(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("creating schema: %w", err)
	}

	logger.Debug().Str("path", path).Msg("SQLite store initialized")
	return s, nil
}

func (s *SQLiteStore) createSchema() error {
	schema := `
		CREATE TABLE IF NOT EXISTS configurations (
			id TEXT PRIMARY KEY,
			user_id TEXT NOT NULL,
			name TEXT NOT NULL,
			status TEXT NOT NULL,
			document TEXT NOT NULL DEFAULT '',
			draft TEXT NOT NULL DEFAULT '',
			created_at TEXT NOT NULL,
			updated_at TEXT NOT NULL
		);

		CREATE INDEX IF NOT EXISTS idx_configurations_user_updated
			ON configurations(user_id, updated_at);

		CREATE TABLE IF NOT EXISTS profiles (
			user_id TEXT PRIMARY KEY,
			email TEXT NOT NULL DEFAULT '',
			tier TEXT NOT NULL DEFAULT '',
			updated_at TEXT NOT NULL
		);
	`
	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

// SaveConfiguration upserts rec by ID. CreatedAt is kept from the existing
// row; UpdatedAt is always refreshed.
func (s *SQLiteStore) SaveConfiguration(ctx context.Context, rec *Record) error {
	if rec.ID == "" {
		rec.ID = uuid.NewString()
	}
	now := s.now().UTC().Truncate(time.Second)
	if rec.CreatedAt.IsZero() {
		var existing string
		err := s.db.QueryRowContext(ctx, `SELECT created_at FROM configurations WHERE id = ?`, rec.ID).Scan(&existing)
		switch {
		case err == sql.ErrNoRows:
			rec.CreatedAt = now
		case err != nil:
			return fmt.Errorf("looking up configuration: %w", err)
		default:
			if rec.CreatedAt, err = time.Parse(time.RFC3339, existing); err != nil {
				return fmt.Errorf("parsing created_at: %w", err)
			}
		}
	}
	rec.UpdatedAt = now

	query := `
		INSERT INTO configurations (id, user_id, name, status, document, draft, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			status = excluded.status,
			document = excluded.document,
			draft = excluded.draft,
			updated_at = excluded.updated_at
		WHERE configurations.user_id = excluded.user_id
	`
	res, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.UserID, rec.Name, rec.Status, rec.Document, rec.Draft,
		formatTime(rec.CreatedAt), formatTime(rec.UpdatedAt),
	)
	if err != nil {
		return fmt.Errorf("saving configuration: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("saving configuration %s: owned by another user", rec.ID)
	}

	s.logger.Debug().Str("id", rec.ID).Str("status", rec.Status).Msg("saved configuration")
	return nil
}

// UpdateConfiguration replaces an existing record.
func (s *SQLiteStore) UpdateConfiguration(ctx context.Context, rec *Record) error {
	rec.UpdatedAt = s.now().UTC().Truncate(time.Second)

	query := `
		UPDATE configurations
		SET name = ?, status = ?, document = ?, draft = ?, updated_at = ?
		WHERE id = ? AND user_id = ?
	`
	res, err := s.db.ExecContext(ctx, query,
		rec.Name, rec.Status, rec.Document, rec.Draft, formatTime(rec.UpdatedAt),
		rec.ID, rec.UserID,
	)
	if err != nil {
		return fmt.Errorf("updating configuration: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetConfiguration returns the user's record with the given ID.
func (s *SQLiteStore) GetConfiguration(ctx context.Context, userID, id string) (*Record, error) {
	query := `
		SELECT id, user_id, name, status, document, draft, created_at, updated_at
		FROM configurations
		WHERE id = ? AND user_id = ?
	`
	rec, err := scanRecord(s.db.QueryRowContext(ctx, query, id, userID))
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying configuration: %w", err)
	}
	return rec, nil
}

// ListConfigurations returns the user's records, newest first.
func (s *SQLiteStore) ListConfigurations(ctx context.Context, userID string) ([]*Record, error) {
	query := `
		SELECT id, user_id, name, status, document, draft, created_at, updated_at
		FROM configurations
		WHERE user_id = ?
		ORDER BY updated_at DESC, id ASC
	`
	rows, err := s.db.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("querying configurations: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var records []*Record
	for rows.Next() {
		rec, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("scanning configuration: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating configurations: %w", err)
	}
	return records, nil
}

// DeleteConfiguration removes the user's record. Returns ErrNotFound if absent.
func (s *SQLiteStore) DeleteConfiguration(ctx context.Context, userID, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM configurations WHERE id = ? AND user_id = ?`, id, userID)
	if err != nil {
		return fmt.Errorf("deleting configuration: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("checking rows affected: %w", err)
	}
	if n == 0 {
		return ErrNotFound
	}
	s.logger.Debug().Str("id", id).Msg("deleted configuration")
	return nil
}

// GetProfile returns the stored profile for userID.
func (s *SQLiteStore) GetProfile(ctx context.Context, userID string) (*Profile, error) {
	var p Profile
	var updatedAt string
	err := s.db.QueryRowContext(ctx,
		`SELECT user_id, email, tier, updated_at FROM profiles WHERE user_id = ?`, userID,
	).Scan(&p.UserID, &p.Email, &p.Tier, &updatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("querying profile: %w", err)
	}
	if p.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &p, nil
}

// UpsertProfile creates or replaces the profile for p.UserID.
func (s *SQLiteStore) UpsertProfile(ctx context.Context, p *Profile) error {
	p.UpdatedAt = s.now().UTC().Truncate(time.Second)
	query := `
		INSERT INTO profiles (user_id, email, tier, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			email = excluded.email,
			tier = excluded.tier,
			updated_at = excluded.updated_at
	`
	if _, err := s.db.ExecContext(ctx, query, p.UserID, p.Email, p.Tier, formatTime(p.UpdatedAt)); err != nil {
		return fmt.Errorf("saving profile: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanRecord(row rowScanner) (*Record, error) {
	var rec Record
	var createdAt, updatedAt string
	if err := row.Scan(
		&rec.ID, &rec.UserID, &rec.Name, &rec.Status,
		&rec.Document, &rec.Draft, &createdAt, &updatedAt,
	); err != nil {
		return nil, err
	}

	var err error
	if rec.CreatedAt, err = time.Parse(time.RFC3339, createdAt); err != nil {
		return nil, fmt.Errorf("parsing created_at: %w", err)
	}
	if rec.UpdatedAt, err = time.Parse(time.RFC3339, updatedAt); err != nil {
		return nil, fmt.Errorf("parsing updated_at: %w", err)
	}
	return &rec, nil
}

func formatTime(t time.Time) string {
	return t.UTC().Format(time.RFC3339)
}
