// Package persistence stores extractor samples in SQLite so runs can be
// compared after the fact.
package persistence

import (
	"database/sql"
	"fmt"
	"log/slog"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"
)

// MemoryPath opens a private in-memory database.
const MemoryPath = ":memory:"

// DB wraps a SQLite connection for sample storage.
type DB struct {
	conn *sqlx.DB
}

// Run is one recorded simulation run.
type Run struct {
	ID          string `db:"id"`
	Scenario    string `db:"scenario"`
	StartedUnix int64  `db:"started"`
}

// Started returns the run start time.
func (r Run) Started() time.Time { return time.Unix(r.StartedUnix, 0).UTC() }

// Sample is one value of one column at a step. SQLite stores NaN as NULL;
// it is read back as NaN.
type Sample struct {
	Step  int64
	Time  float64
	Value float64
}

type sampleRow struct {
	Step  int64           `db:"step"`
	Time  float64         `db:"time"`
	Value sql.NullFloat64 `db:"value"`
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*DB, error) {
	dsn := path
	if path != MemoryPath {
		dsn = path + "?_journal_mode=WAL&_busy_timeout=5000"
	}
	conn, err := sqlx.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if path == MemoryPath {
		// Every pooled connection would get its own empty database.
		conn.SetMaxOpenConns(1)
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return db, nil
}

// Close closes the database connection.
func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		scenario TEXT NOT NULL,
		started INTEGER NOT NULL
	);

	CREATE TABLE IF NOT EXISTS samples (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL REFERENCES runs(id),
		step INTEGER NOT NULL,
		time REAL NOT NULL,
		column_name TEXT NOT NULL,
		value REAL
	);

	CREATE INDEX IF NOT EXISTS idx_samples_run_column ON samples(run_id, column_name, step);
	`
	_, err := db.conn.Exec(schema)
	return err
}

// StartRun registers a new run and returns its id.
func (db *DB) StartRun(scenario string) (uuid.UUID, error) {
	id := uuid.New()
	_, err := db.conn.Exec(
		"INSERT INTO runs (id, scenario, started) VALUES (?, ?, ?)",
		id.String(), scenario, time.Now().Unix(),
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("start run: %w", err)
	}
	slog.Debug("run started", "run", id, "scenario", scenario)
	return id, nil
}

// Runs lists recorded runs, oldest first.
func (db *DB) Runs() ([]Run, error) {
	var runs []Run
	err := db.conn.Select(&runs, "SELECT id, scenario, started FROM runs ORDER BY started, id")
	return runs, err
}

// RecordSamples appends one sampling point of a run.
func (db *DB) RecordSamples(run uuid.UUID, step int64, t float64, samples map[string]float64) error {
	if len(samples) == 0 {
		return nil
	}
	cols := make([]string, 0, len(samples))
	for c := range samples {
		cols = append(cols, c)
	}
	sort.Strings(cols)

	tx, err := db.conn.Beginx()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO samples (run_id, step, time, column_name, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, c := range cols {
		v := sql.NullFloat64{Float64: samples[c], Valid: !math.IsNaN(samples[c])}
		if _, err := stmt.Exec(run.String(), step, t, c, v); err != nil {
			return fmt.Errorf("record %s at step %d: %w", c, step, err)
		}
	}
	return tx.Commit()
}

// Samples returns a column of a run in step order.
func (db *DB) Samples(run uuid.UUID, column string) ([]Sample, error) {
	var rows []sampleRow
	err := db.conn.Select(&rows,
		"SELECT step, time, value FROM samples WHERE run_id = ? AND column_name = ? ORDER BY step, id",
		run.String(), column,
	)
	if err != nil {
		return nil, err
	}
	out := make([]Sample, len(rows))
	for i, r := range rows {
		out[i] = Sample{Step: r.Step, Time: r.Time, Value: math.NaN()}
		if r.Value.Valid {
			out[i].Value = r.Value.Float64
		}
	}
	return out, nil
}

// Columns lists the columns recorded for a run.
func (db *DB) Columns(run uuid.UUID) ([]string, error) {
	var cols []string
	err := db.conn.Select(&cols,
		"SELECT DISTINCT column_name FROM samples WHERE run_id = ? ORDER BY column_name",
		run.String(),
	)
	return cols, err
}

// Mean returns the average of the non-NaN values of a column, and how many
// values went into it.
func (db *DB) Mean(run uuid.UUID, column string) (float64, int, error) {
	var res struct {
		Mean  sql.NullFloat64 `db:"mean"`
		Count int             `db:"n"`
	}
	err := db.conn.Get(&res,
		"SELECT AVG(value) AS mean, COUNT(value) AS n FROM samples WHERE run_id = ? AND column_name = ?",
		run.String(), column,
	)
	if err != nil {
		return 0, 0, err
	}
	if !res.Mean.Valid {
		return math.NaN(), 0, nil
	}
	return res.Mean.Float64, res.Count, nil
}
