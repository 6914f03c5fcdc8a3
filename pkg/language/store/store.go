// Package store persists language descriptors in a SQL database. Queries use
// $n placeholders and ON CONFLICT upserts, which both PostgreSQL (lib/pq) and
// SQLite (mattn/go-sqlite3) accept.
package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/platinummonkey/langmgr/pkg/g2p"
	"github.com/platinummonkey/langmgr/pkg/language"
	"github.com/sirupsen/logrus"
)

// ErrNotFound is returned when no descriptor exists for an id
var ErrNotFound = errors.New("language descriptor not found")

const schema = `CREATE TABLE IF NOT EXISTS language_descriptors (
	id               TEXT PRIMARY KEY,
	enabled          BOOLEAN NOT NULL DEFAULT TRUE,
	discard_result   BOOLEAN NOT NULL DEFAULT FALSE,
	category         TEXT NOT NULL DEFAULT '',
	description      TEXT NOT NULL DEFAULT '',
	display_name     TEXT NOT NULL DEFAULT '',
	author           TEXT NOT NULL DEFAULT '',
	display_category TEXT NOT NULL DEFAULT '',
	selected_g2p     TEXT NOT NULL DEFAULT '',
	g2p_config       TEXT
)`

const selectColumns = `id, enabled, discard_result, category, description, display_name,
	author, display_category, selected_g2p, g2p_config`

// Store reads and writes descriptors
type Store struct {
	db  *sql.DB
	log *logrus.Logger
}

// New creates a store over db. The caller owns db.
func New(db *sql.DB, log *logrus.Logger) *Store {
	if log == nil {
		log = logrus.New()
	}
	return &Store{db: db, log: log}
}

// Open opens a database with driver and wraps it in a store. The driver must
// be registered by the caller's imports.
func Open(driver, dsn string, log *logrus.Logger) (*Store, error) {
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open %s database: %w", driver, err)
	}
	return New(db, log), nil
}

// Close closes the underlying database
func (s *Store) Close() error {
	return s.db.Close()
}

// Migrate creates the descriptor table if it does not exist
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("failed to create language_descriptors table: %w", err)
	}
	return nil
}

// Save inserts d or replaces the stored descriptor with the same id
func (s *Store) Save(ctx context.Context, d *language.Descriptor) error {
	if d.ID() == "" {
		return fmt.Errorf("%w: empty id", language.ErrInvalidDescriptor)
	}

	cfg, err := encodeConfig(d.G2PConfig())
	if err != nil {
		return err
	}

	query := `INSERT INTO language_descriptors (` + selectColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
		ON CONFLICT (id) DO UPDATE SET
			enabled = excluded.enabled,
			discard_result = excluded.discard_result,
			category = excluded.category,
			description = excluded.description,
			display_name = excluded.display_name,
			author = excluded.author,
			display_category = excluded.display_category,
			selected_g2p = excluded.selected_g2p,
			g2p_config = excluded.g2p_config`

	_, err = s.db.ExecContext(ctx, query,
		d.ID(), d.Enabled(), d.DiscardResult(), d.Category(), d.Description(), d.DisplayName(),
		d.Author(), d.DisplayCategory(), d.SelectedG2P(), cfg,
	)
	if err != nil {
		return fmt.Errorf("failed to save language %s: %w", d.ID(), err)
	}

	s.log.Debugf("Saved language descriptor: %s", d.ID())
	return nil
}

// Get loads the descriptor with id
func (s *Store) Get(ctx context.Context, id string) (*language.Descriptor, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM language_descriptors WHERE id = $1`, id)

	d, err := scanDescriptor(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get language %s: %w", id, err)
	}
	return d, nil
}

// List loads every descriptor ordered by id
func (s *Store) List(ctx context.Context) ([]*language.Descriptor, error) {
	rows, err := s.db.QueryContext(ctx,
		`SELECT `+selectColumns+` FROM language_descriptors ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list languages: %w", err)
	}
	defer rows.Close()

	var descriptors []*language.Descriptor
	for rows.Next() {
		d, err := scanDescriptor(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan language: %w", err)
		}
		descriptors = append(descriptors, d)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list languages: %w", err)
	}

	return descriptors, nil
}

// Delete removes the descriptor with id
func (s *Store) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, `DELETE FROM language_descriptors WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("failed to delete language %s: %w", id, err)
	}

	n, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete language %s: %w", id, err)
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	s.log.Debugf("Deleted language descriptor: %s", id)
	return nil
}

type scanner interface {
	Scan(dest ...interface{}) error
}

func scanDescriptor(row scanner) (*language.Descriptor, error) {
	var (
		spec    language.Spec
		enabled bool
		cfg     sql.NullString
	)

	err := row.Scan(
		&spec.ID, &enabled, &spec.DiscardResult, &spec.Category, &spec.Description, &spec.DisplayName,
		&spec.Author, &spec.DisplayCategory, &spec.SelectedG2P, &cfg,
	)
	if err != nil {
		return nil, err
	}
	spec.Enabled = &enabled

	if cfg.Valid && cfg.String != "" {
		if err := json.Unmarshal([]byte(cfg.String), &spec.G2PConfig); err != nil {
			return nil, fmt.Errorf("invalid g2p_config for %s: %w", spec.ID, err)
		}
	}

	return language.NewDescriptorFromSpec(spec), nil
}

func encodeConfig(cfg g2p.Config) (sql.NullString, error) {
	if cfg == nil {
		return sql.NullString{}, nil
	}
	data, err := json.Marshal(cfg)
	if err != nil {
		return sql.NullString{}, fmt.Errorf("failed to encode g2p config: %w", err)
	}
	return sql.NullString{String: string(data), Valid: true}, nil
}
