package catalog

import (
	"context"
	"database/sql"
	"embed"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/star/sattrack/internal/tle"
)

//go:embed schema.sql
var schemaFS embed.FS

// SQLiteStore persists the catalog in a SQLite database.
type SQLiteStore struct {
	db  *sql.DB
	now func() time.Time
}

// OpenSQLite opens (creating if needed) the database at path and ensures the
// schema exists.
func OpenSQLite(path string) (*SQLiteStore, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("creating database directory: %w", err)
	}

	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("opening database: %w", err)
	}

	// SQLite does not handle concurrent writers; a single connection
	// serializes the upsert path.
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging database: %w", err)
	}

	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("reading embedded schema: %w", err)
	}
	if _, err := db.Exec(string(schema)); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	return NewSQLiteStore(db), nil
}

// NewSQLiteStore wraps an existing database handle. The schema must already
// exist; tests use this with a mock driver.
func NewSQLiteStore(db *sql.DB) *SQLiteStore {
	return &SQLiteStore{db: db, now: time.Now}
}

// Close closes the underlying database.
func (s *SQLiteStore) Close() error { return s.db.Close() }

const upsertSQL = `
INSERT INTO satellites (
	catalog_id, object_id, name, epoch, inclination_deg, eccentricity,
	mean_motion, bstar, line1, line2, last_updated
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
ON CONFLICT(catalog_id) DO UPDATE SET
	object_id = excluded.object_id,
	name = excluded.name,
	epoch = excluded.epoch,
	inclination_deg = excluded.inclination_deg,
	eccentricity = excluded.eccentricity,
	mean_motion = excluded.mean_motion,
	bstar = excluded.bstar,
	line1 = excluded.line1,
	line2 = excluded.line2,
	last_updated = excluded.last_updated`

// Upsert inserts or fully replaces the row keyed by set.CatalogID.
func (s *SQLiteStore) Upsert(ctx context.Context, set tle.ElementSet) error {
	_, err := s.db.ExecContext(ctx, upsertSQL,
		set.CatalogID, set.ObjectID, set.Name, set.Epoch.UTC(),
		set.InclinationDeg, set.Eccentricity, set.MeanMotion, set.Bstar,
		set.Line1, set.Line2, s.now().UTC(),
	)
	if err != nil {
		return &StoreError{Op: "upsert", Err: err}
	}
	return nil
}

const selectColumns = `catalog_id, object_id, name, epoch, inclination_deg, eccentricity, mean_motion, bstar, line1, line2, last_updated`

// Get returns the entry for id, or ErrNotFound.
func (s *SQLiteStore) Get(ctx context.Context, id int) (*tle.ElementSet, error) {
	row := s.db.QueryRowContext(ctx,
		`SELECT `+selectColumns+` FROM satellites WHERE catalog_id = ?`, id)

	set, err := scanElementSet(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, &StoreError{Op: "get", Err: err}
	}
	return set, nil
}

// List returns entries ordered by catalog id ascending.
func (s *SQLiteStore) List(ctx context.Context, opts ListOptions) ([]tle.ElementSet, error) {
	query := `SELECT ` + selectColumns + ` FROM satellites`
	var args []any
	if !opts.UpdatedSince.IsZero() {
		query += ` WHERE last_updated >= ?`
		args = append(args, opts.UpdatedSince.UTC())
	}
	query += ` ORDER BY catalog_id ASC`
	if opts.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, opts.Limit)
	} else if opts.Offset > 0 {
		// SQLite requires LIMIT before OFFSET; -1 means unlimited.
		query += ` LIMIT -1`
	}
	if opts.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, opts.Offset)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	defer rows.Close()

	var sets []tle.ElementSet
	for rows.Next() {
		set, err := scanElementSet(rows)
		if err != nil {
			return nil, &StoreError{Op: "list", Err: err}
		}
		sets = append(sets, *set)
	}
	if err := rows.Err(); err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	return sets, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanElementSet(row rowScanner) (*tle.ElementSet, error) {
	var set tle.ElementSet
	err := row.Scan(
		&set.CatalogID, &set.ObjectID, &set.Name, &set.Epoch,
		&set.InclinationDeg, &set.Eccentricity, &set.MeanMotion, &set.Bstar,
		&set.Line1, &set.Line2, &set.LastUpdated,
	)
	if err != nil {
		return nil, err
	}
	set.Epoch = set.Epoch.UTC()
	set.LastUpdated = set.LastUpdated.UTC()
	return &set, nil
}
