// Package sqlite persists comparison registries to a local SQLite file.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3"

	"glycostat/domain/core"
	"glycostat/domain/stats"
	"glycostat/internal/errors"
)

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	run_id     TEXT PRIMARY KEY,
	created_at TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS comparisons (
	run_id     TEXT NOT NULL REFERENCES runs(run_id),
	name       TEXT NOT NULL,
	seq        INTEGER NOT NULL,
	group_a    TEXT NOT NULL,
	group_b    TEXT NOT NULL,
	z          REAL,
	raw_p      REAL,
	adjusted_p REAL,
	code       TEXT NOT NULL,
	PRIMARY KEY (run_id, name, seq)
);`

// RegistryStore implements ports.ResultStore on SQLite
type RegistryStore struct {
	db *sqlx.DB
}

// Open opens or creates the database at path and applies the schema
func Open(path string) (*RegistryStore, error) {
	db, err := sqlx.Open("sqlite3", path)
	if err != nil {
		return nil, errors.Wrapf(errors.WithCode(errors.CodeDatabaseError, err), "failed to open database %s", path)
	}
	// a single writer keeps the file consistent
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, errors.Wrapf(errors.WithCode(errors.CodeDatabaseError, err), "failed to create schema")
	}
	return &RegistryStore{db: db}, nil
}

type comparisonRow struct {
	Name      string          `db:"name"`
	GroupA    string          `db:"group_a"`
	GroupB    string          `db:"group_b"`
	Z         sql.NullFloat64 `db:"z"`
	RawP      sql.NullFloat64 `db:"raw_p"`
	AdjustedP sql.NullFloat64 `db:"adjusted_p"`
	Code      string          `db:"code"`
}

// SaveRegistry stores every named comparison list of a run in one transaction
func (s *RegistryStore) SaveRegistry(ctx context.Context, runID core.RunID, reg stats.Registry) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return s.dbErr(err, "failed to begin transaction")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `INSERT INTO runs (run_id, created_at) VALUES (?, ?)`, runID.String(), time.Now().UTC()); err != nil {
		return s.dbErr(err, fmt.Sprintf("failed to insert run %s", runID))
	}

	stmt, err := tx.PreparexContext(ctx, `
		INSERT INTO comparisons (run_id, name, seq, group_a, group_b, z, raw_p, adjusted_p, code)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return s.dbErr(err, "failed to prepare comparison insert")
	}
	defer stmt.Close()

	for _, name := range reg.Names() {
		for i, c := range reg[name] {
			if _, err := stmt.ExecContext(ctx, runID.String(), name, i, c.GroupA, c.GroupB,
				nullable(c.Z), nullable(c.RawP), nullable(c.AdjustedP), string(c.Code)); err != nil {
				return s.dbErr(err, fmt.Sprintf("failed to insert %s comparison %d", name, i))
			}
		}
	}

	if err := tx.Commit(); err != nil {
		return s.dbErr(err, "failed to commit registry")
	}
	return nil
}

// LoadRegistry rebuilds the registry saved for a run
func (s *RegistryStore) LoadRegistry(ctx context.Context, runID core.RunID) (stats.Registry, error) {
	var exists int
	if err := s.db.GetContext(ctx, &exists, `SELECT COUNT(*) FROM runs WHERE run_id = ?`, runID.String()); err != nil {
		return nil, s.dbErr(err, "failed to look up run")
	}
	if exists == 0 {
		return nil, errors.NotFound(fmt.Sprintf("run %s", runID))
	}

	var rows []comparisonRow
	err := s.db.SelectContext(ctx, &rows, `
		SELECT name, group_a, group_b, z, raw_p, adjusted_p, code
		FROM comparisons
		WHERE run_id = ?
		ORDER BY name, seq`, runID.String())
	if err != nil {
		return nil, s.dbErr(err, "failed to load comparisons")
	}

	reg := stats.Registry{}
	for _, r := range rows {
		reg[r.Name] = append(reg[r.Name], stats.PairwiseComparison{
			GroupA:    r.GroupA,
			GroupB:    r.GroupB,
			Z:         value(r.Z),
			RawP:      value(r.RawP),
			AdjustedP: value(r.AdjustedP),
			Code:      stats.SignificanceCode(r.Code),
		})
	}
	return reg, nil
}

// ListRuns returns saved run ids, oldest first
func (s *RegistryStore) ListRuns(ctx context.Context) ([]core.RunID, error) {
	var ids []string
	if err := s.db.SelectContext(ctx, &ids, `SELECT run_id FROM runs ORDER BY created_at, run_id`); err != nil {
		return nil, s.dbErr(err, "failed to list runs")
	}
	out := make([]core.RunID, len(ids))
	for i, id := range ids {
		out[i] = core.RunID(id)
	}
	return out, nil
}

// Close closes the database
func (s *RegistryStore) Close() error {
	return s.db.Close()
}

func (s *RegistryStore) dbErr(err error, msg string) error {
	return errors.Wrap(errors.WithCode(errors.CodeDatabaseError, err), msg)
}

// NaN is stored as NULL so "not computed" survives the round trip
func nullable(v float64) sql.NullFloat64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return sql.NullFloat64{}
	}
	return sql.NullFloat64{Float64: v, Valid: true}
}

func value(n sql.NullFloat64) float64 {
	if !n.Valid {
		return math.NaN()
	}
	return n.Float64
}
