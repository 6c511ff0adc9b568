/*
Package sqlite provides a SQLite-backed store for constant sets and the
calculation audit log.

PURPOSE:
  The calculator is pure and needs no storage. The service around it keeps
  two things: the constant sets operators upload (one per tax year, versioned
  on every update) and an append-only log of calculations served, so a
  figure quoted to an employee can be traced back to its inputs and rates.

KEY TABLES:
  constant_sets: Constant-set definitions in the factory JSON schema
  calculations:  Inputs, options and resulting breakdown of each calculation

APPEND-ONLY ENFORCEMENT:
  - No UPDATE statements on calculations
  - Constant sets are upserted; the version column counts revisions

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In-memory databases are limited to a
  single connection so every query sees the same schema.

USAGE:
  store, err := sqlite.New("./data/paycalc.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

SEE ALSO:
  - factory/constants.go: JSON schema stored in config_json
  - api/handlers.go: Reads and writes through this store
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/paycalc/generic"
)

// calcTimeLayout keeps a fixed width so created_at sorts as text.
const calcTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// Store persists constant sets and calculations using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database connection.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS constant_sets (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		tax_year INTEGER NOT NULL,
		province TEXT NOT NULL,
		config_json TEXT NOT NULL,
		version INTEGER NOT NULL DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_constant_sets_year
		ON constant_sets(tax_year, province);

	-- Calculations (append-only audit log)
	CREATE TABLE IF NOT EXISTS calculations (
		id TEXT PRIMARY KEY,
		constant_set_id TEXT NOT NULL,
		mode TEXT NOT NULL,
		taxable_weekly TEXT NOT NULL,
		non_taxable_weekly TEXT NOT NULL,
		union_dues_rate TEXT,
		breakdown_json TEXT NOT NULL,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_calculations_created
		ON calculations(created_at);
	CREATE INDEX IF NOT EXISTS idx_calculations_set
		ON calculations(constant_set_id);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// CONSTANT SETS
// =============================================================================

// ConstantSetRecord is a stored constant-set definition.
type ConstantSetRecord struct {
	ID         string
	Name       string
	TaxYear    int
	Province   string
	ConfigJSON string
	Version    int
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// SaveConstantSet inserts a set or replaces its definition, bumping version.
func (s *Store) SaveConstantSet(ctx context.Context, rec ConstantSetRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO constant_sets (id, name, tax_year, province, config_json, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			tax_year = excluded.tax_year,
			province = excluded.province,
			config_json = excluded.config_json,
			version = constant_sets.version + 1,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, query,
		rec.ID, rec.Name, rec.TaxYear, rec.Province, rec.ConfigJSON, now, now,
	)
	return err
}

// GetConstantSet returns nil, nil when the id is unknown.
func (s *Store) GetConstantSet(ctx context.Context, id string) (*ConstantSetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	row := s.db.QueryRowContext(ctx,
		"SELECT id, name, tax_year, province, config_json, version, created_at, updated_at FROM constant_sets WHERE id = ?",
		id,
	)
	rec, err := scanConstantSet(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &rec, nil
}

// ListConstantSets returns every stored set, newest tax year first.
func (s *Store) ListConstantSets(ctx context.Context) ([]ConstantSetRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, tax_year, province, config_json, version, created_at, updated_at FROM constant_sets ORDER BY tax_year DESC, id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var sets []ConstantSetRecord
	for rows.Next() {
		rec, err := scanConstantSet(rows)
		if err != nil {
			return nil, err
		}
		sets = append(sets, rec)
	}
	return sets, rows.Err()
}

// DeleteConstantSet removes a set. Past calculations keep their id.
func (s *Store) DeleteConstantSet(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM constant_sets WHERE id = ?", id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %q", generic.ErrConstantSetNotFound, id)
	}
	return nil
}

type scanner interface {
	Scan(dest ...any) error
}

func scanConstantSet(row scanner) (ConstantSetRecord, error) {
	var rec ConstantSetRecord
	var createdAt, updatedAt string
	if err := row.Scan(&rec.ID, &rec.Name, &rec.TaxYear, &rec.Province, &rec.ConfigJSON,
		&rec.Version, &createdAt, &updatedAt); err != nil {
		return ConstantSetRecord{}, err
	}
	rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	rec.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return rec, nil
}

// =============================================================================
// CALCULATIONS
// =============================================================================

// CalculationRecord is one served calculation.
type CalculationRecord struct {
	ID               string
	ConstantSetID    string
	Mode             string
	TaxableWeekly    decimal.Decimal
	NonTaxableWeekly decimal.Decimal
	UnionDuesRate    *decimal.Decimal // nil when the set's default was used
	BreakdownJSON    string
	CreatedAt        time.Time
}

// SaveCalculation appends a calculation to the audit log.
func (s *Store) SaveCalculation(ctx context.Context, rec CalculationRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	var dues sql.NullString
	if rec.UnionDuesRate != nil {
		dues = sql.NullString{String: rec.UnionDuesRate.String(), Valid: true}
	}

	createdAt := rec.CreatedAt
	if createdAt.IsZero() {
		createdAt = time.Now()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO calculations (id, constant_set_id, mode, taxable_weekly, non_taxable_weekly, union_dues_rate, breakdown_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`,
		rec.ID, rec.ConstantSetID, rec.Mode,
		rec.TaxableWeekly.String(), rec.NonTaxableWeekly.String(), dues,
		rec.BreakdownJSON, createdAt.UTC().Format(calcTimeLayout),
	)
	return err
}

// ListCalculations returns the most recent calculations, newest first.
// A non-empty constantSetID filters to that set.
func (s *Store) ListCalculations(ctx context.Context, constantSetID string, limit int) ([]CalculationRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 100
	}

	var where []string
	var args []any
	if constantSetID != "" {
		where = append(where, "constant_set_id = ?")
		args = append(args, constantSetID)
	}

	query := "SELECT id, constant_set_id, mode, taxable_weekly, non_taxable_weekly, union_dues_rate, breakdown_json, created_at FROM calculations"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []CalculationRecord
	for rows.Next() {
		var rec CalculationRecord
		var taxable, nonTaxable, createdAt string
		var dues sql.NullString
		if err := rows.Scan(&rec.ID, &rec.ConstantSetID, &rec.Mode, &taxable, &nonTaxable,
			&dues, &rec.BreakdownJSON, &createdAt); err != nil {
			return nil, err
		}
		rec.TaxableWeekly = generic.MustParseDecimal(taxable)
		rec.NonTaxableWeekly = generic.MustParseDecimal(nonTaxable)
		if dues.Valid {
			d := generic.MustParseDecimal(dues.String)
			rec.UnionDuesRate = &d
		}
		rec.CreatedAt, _ = time.Parse(calcTimeLayout, createdAt)
		out = append(out, rec)
	}
	return out, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"calculations", "constant_sets"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}
