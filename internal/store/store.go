// Package store keeps run metadata and log rows in SQLite.
package store

import (
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "modernc.org/sqlite"

	"agentsim/internal/engine"
)

var ErrRunNotFound = errors.New("run not found")

const (
	StatusRunning = "running"
	StatusDone    = "done"
	StatusFailed  = "failed"
)

// Run is one row of the runs table.
type Run struct {
	ID         string     `db:"id" json:"id"`
	Netlist    string     `db:"netlist" json:"netlist"`
	Seed       int64      `db:"seed" json:"seed"`
	Strategy   string     `db:"strategy" json:"strategy"`
	Status     string     `db:"status" json:"status"`
	Ticks      int        `db:"ticks" json:"ticks"`
	Rows       int        `db:"log_rows" json:"rows"`
	Error      string     `db:"error" json:"error,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
	FinishedAt *time.Time `db:"finished_at" json:"finished_at,omitempty"`
}

// Row is one logged tick with its values keyed by column.
type Row struct {
	Tick   int                `json:"tick"`
	Values map[string]float64 `json:"values"`
}

// Store wraps a SQLite connection.
type Store struct {
	conn *sqlx.DB
}

// Open opens or creates a SQLite database at the given path.
func Open(path string) (*Store, error) {
	conn, err := sqlx.Open("sqlite", path+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	// One writer keeps SQLite happy under the API's concurrent requests.
	conn.SetMaxOpenConns(1)

	s := &Store{conn: conn}
	if err := s.migrate(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return s, nil
}

func (s *Store) Close() error {
	return s.conn.Close()
}

func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		netlist TEXT NOT NULL,
		seed INTEGER NOT NULL,
		strategy TEXT NOT NULL,
		status TEXT NOT NULL,
		ticks INTEGER NOT NULL DEFAULT 0,
		log_rows INTEGER NOT NULL DEFAULT 0,
		error TEXT NOT NULL DEFAULT '',
		created_at TIMESTAMP NOT NULL,
		finished_at TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS run_rows (
		run_id TEXT NOT NULL REFERENCES runs(id),
		tick INTEGER NOT NULL,
		position INTEGER NOT NULL,
		column_name TEXT NOT NULL,
		value REAL NOT NULL,
		PRIMARY KEY (run_id, tick, position)
	);
	`
	_, err := s.conn.Exec(schema)
	return err
}

func (s *Store) CreateRun(r Run) error {
	if r.Status == "" {
		r.Status = StatusRunning
	}
	if r.CreatedAt.IsZero() {
		r.CreatedAt = time.Now().UTC()
	}
	_, err := s.conn.NamedExec(`
		INSERT INTO runs (id, netlist, seed, strategy, status, ticks, log_rows, error, created_at)
		VALUES (:id, :netlist, :seed, :strategy, :status, :ticks, :log_rows, :error, :created_at)`, r)
	if err != nil {
		return fmt.Errorf("create run %s: %w", r.ID, err)
	}
	return nil
}

// FinishRun records the outcome of a run. A nil runErr marks it done.
func (s *Store) FinishRun(id string, ticks, rows int, runErr error) error {
	status, msg := StatusDone, ""
	if runErr != nil {
		status, msg = StatusFailed, runErr.Error()
	}
	res, err := s.conn.Exec(`
		UPDATE runs SET status = ?, ticks = ?, log_rows = ?, error = ?, finished_at = ?
		WHERE id = ?`, status, ticks, rows, msg, time.Now().UTC(), id)
	if err != nil {
		return fmt.Errorf("finish run %s: %w", id, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	return nil
}

func (s *Store) GetRun(id string) (*Run, error) {
	var r Run
	err := s.conn.Get(&r, `SELECT * FROM runs WHERE id = ?`, id)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("get run %s: %w", id, err)
	}
	return &r, nil
}

// ListRuns returns runs newest first.
func (s *Store) ListRuns(limit int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	var runs []Run
	if err := s.conn.Select(&runs, `SELECT * FROM runs ORDER BY created_at DESC LIMIT ?`, limit); err != nil {
		return nil, fmt.Errorf("list runs: %w", err)
	}
	return runs, nil
}

// Rows returns the logged rows of a run in tick order.
func (s *Store) Rows(runID string) ([]Row, error) {
	if _, err := s.GetRun(runID); err != nil {
		return nil, err
	}
	var cells []struct {
		Tick   int     `db:"tick"`
		Column string  `db:"column_name"`
		Value  float64 `db:"value"`
	}
	err := s.conn.Select(&cells, `
		SELECT tick, column_name, value FROM run_rows
		WHERE run_id = ? ORDER BY tick, position`, runID)
	if err != nil {
		return nil, fmt.Errorf("rows of %s: %w", runID, err)
	}

	var out []Row
	for _, c := range cells {
		if len(out) == 0 || out[len(out)-1].Tick != c.Tick {
			out = append(out, Row{Tick: c.Tick, Values: map[string]float64{}})
		}
		out[len(out)-1].Values[c.Column] = c.Value
	}
	return out, nil
}

// Recorder returns an engine.Recorder that stores each record under runID.
func (s *Store) Recorder(runID string) engine.Recorder {
	return &recorder{store: s, runID: runID}
}

type recorder struct {
	store *Store
	runID string
}

// Record writes all cells of one record in a single transaction.
func (r *recorder) Record(rec engine.Record) error {
	tx, err := r.store.conn.Beginx()
	if err != nil {
		return fmt.Errorf("%w: begin: %v", engine.ErrIO, err)
	}
	defer tx.Rollback()

	stmt, err := tx.Preparex(`INSERT INTO run_rows (run_id, tick, position, column_name, value) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("%w: prepare: %v", engine.ErrIO, err)
	}
	defer stmt.Close()

	for i, col := range rec.Columns {
		if _, err := stmt.Exec(r.runID, rec.Tick, i, col, rec.Values[i]); err != nil {
			return fmt.Errorf("%w: insert tick %d: %v", engine.ErrIO, rec.Tick, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("%w: commit: %v", engine.ErrIO, err)
	}
	return nil
}
