// Package storage provides SQLite-backed persistence for sampled
// episodes and their step records.
package storage

import (
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"github.com/pflow-xyz/go-ippddl/episode"
	"github.com/pflow-xyz/go-ippddl/eventlog"
)

// Store handles SQLite database operations for episode logging.
type Store struct {
	db *sql.DB
}

// Run is a persisted episode record.
type Run struct {
	ID          string     `json:"id"`
	Domain      string     `json:"domain"`
	Problem     string     `json:"problem"`
	Seed        int64      `json:"seed"`
	StartedAt   time.Time  `json:"started_at"`
	EndedAt     *time.Time `json:"ended_at,omitempty"`
	TotalSteps  int        `json:"total_steps"`
	ReachedGoal bool       `json:"reached_goal"`
}

// StepRecord is one persisted transition of a run.
type StepRecord struct {
	ID          int64   `json:"id"`
	RunID       string  `json:"run_id"`
	Step        int     `json:"step"`
	Action      string  `json:"action"`
	Probability float64 `json:"probability"`
	StateDigest string  `json:"state_digest"`
}

// New creates a Store backed by the database at dbPath. Use ":memory:"
// for an ephemeral store.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate: %w", err)
	}

	return store, nil
}

// migrate creates the database schema if it doesn't exist.
func (s *Store) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS runs (
		id TEXT PRIMARY KEY,
		domain TEXT NOT NULL,
		problem TEXT NOT NULL DEFAULT '',
		seed INTEGER NOT NULL DEFAULT 0,
		started_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
		ended_at DATETIME,
		total_steps INTEGER DEFAULT 0,
		reached_goal INTEGER DEFAULT 0
	);

	CREATE TABLE IF NOT EXISTS steps (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		run_id TEXT NOT NULL,
		step INTEGER NOT NULL,
		action TEXT NOT NULL,
		probability REAL NOT NULL DEFAULT 1,
		state_digest TEXT NOT NULL,
		FOREIGN KEY (run_id) REFERENCES runs(id)
	);

	CREATE INDEX IF NOT EXISTS idx_steps_run ON steps(run_id);
	CREATE INDEX IF NOT EXISTS idx_steps_run_step ON steps(run_id, step);
	CREATE INDEX IF NOT EXISTS idx_runs_domain ON runs(domain);
	`

	_, err := s.db.Exec(schema)
	return err
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying database connection for custom queries.
func (s *Store) DB() *sql.DB {
	return s.db
}

// SaveEpisode persists an episode and all of its steps in one
// transaction.
func (s *Store) SaveEpisode(ep *episode.Episode, domain, problem string, seed int64) error {
	tx, err := s.db.Begin()
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	_, err = tx.Exec(
		`INSERT INTO runs (id, domain, problem, seed, started_at, ended_at,
		 total_steps, reached_goal)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		ep.ID, domain, problem, seed, now, now, len(ep.Steps), ep.ReachedGoal,
	)
	if err != nil {
		tx.Rollback()
		return err
	}

	for _, step := range ep.Steps {
		_, err = tx.Exec(
			`INSERT INTO steps (run_id, step, action, probability, state_digest)
			 VALUES (?, ?, ?, ?, ?)`,
			ep.ID, step.Index, episode.Label(step.Action),
			step.Probability, step.Result.DigestHex(),
		)
		if err != nil {
			tx.Rollback()
			return err
		}
	}

	return tx.Commit()
}

// SaveLog persists every trace of an event log. Traces are stored as
// runs with no problem context.
func (s *Store) SaveLog(log *eventlog.Log, domain string) error {
	for _, trace := range log.Traces() {
		tx, err := s.db.Begin()
		if err != nil {
			return err
		}
		now := time.Now().UTC()
		_, err = tx.Exec(
			`INSERT INTO runs (id, domain, started_at, ended_at, total_steps, reached_goal)
			 VALUES (?, ?, ?, ?, ?, ?)`,
			trace.EpisodeID, domain, now, now, len(trace.Events), trace.ReachedGoal,
		)
		if err != nil {
			tx.Rollback()
			return err
		}
		for _, ev := range trace.Events {
			_, err = tx.Exec(
				`INSERT INTO steps (run_id, step, action, probability, state_digest)
				 VALUES (?, ?, ?, ?, ?)`,
				ev.EpisodeID, ev.Step, ev.Action, ev.Probability, ev.StateDigest,
			)
			if err != nil {
				tx.Rollback()
				return err
			}
		}
		if err := tx.Commit(); err != nil {
			return err
		}
	}
	return nil
}

// GetRun retrieves a run by ID.
func (s *Store) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT id, domain, problem, seed, started_at, ended_at, total_steps, reached_goal
		 FROM runs WHERE id = ?`, id,
	)

	var run Run
	var endedAt sql.NullTime
	err := row.Scan(&run.ID, &run.Domain, &run.Problem, &run.Seed,
		&run.StartedAt, &endedAt, &run.TotalSteps, &run.ReachedGoal)
	if err != nil {
		return nil, err
	}
	if endedAt.Valid {
		run.EndedAt = &endedAt.Time
	}
	return &run, nil
}

// ListRuns returns the most recent runs for a domain.
func (s *Store) ListRuns(domain string, limit int) ([]*Run, error) {
	rows, err := s.db.Query(
		`SELECT id, domain, problem, seed, started_at, ended_at, total_steps, reached_goal
		 FROM runs WHERE domain = ? ORDER BY started_at DESC LIMIT ?`, domain, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []*Run
	for rows.Next() {
		var run Run
		var endedAt sql.NullTime
		err := rows.Scan(&run.ID, &run.Domain, &run.Problem, &run.Seed,
			&run.StartedAt, &endedAt, &run.TotalSteps, &run.ReachedGoal)
		if err != nil {
			return nil, err
		}
		if endedAt.Valid {
			run.EndedAt = &endedAt.Time
		}
		runs = append(runs, &run)
	}
	return runs, rows.Err()
}

// GetSteps retrieves all steps for a run in step order.
func (s *Store) GetSteps(runID string) ([]*StepRecord, error) {
	rows, err := s.db.Query(
		`SELECT id, run_id, step, action, probability, state_digest
		 FROM steps WHERE run_id = ? ORDER BY step`, runID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var steps []*StepRecord
	for rows.Next() {
		var rec StepRecord
		err := rows.Scan(&rec.ID, &rec.RunID, &rec.Step, &rec.Action,
			&rec.Probability, &rec.StateDigest)
		if err != nil {
			return nil, err
		}
		steps = append(steps, &rec)
	}
	return steps, rows.Err()
}

// ActionCounts returns how often each action appears across all runs of
// a domain.
func (s *Store) ActionCounts(domain string) (map[string]int, error) {
	rows, err := s.db.Query(
		`SELECT steps.action, COUNT(*) FROM steps
		 JOIN runs ON runs.id = steps.run_id
		 WHERE runs.domain = ? GROUP BY steps.action`, domain,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	counts := make(map[string]int)
	for rows.Next() {
		var action string
		var count int
		if err := rows.Scan(&action, &count); err != nil {
			return nil, err
		}
		counts[action] = count
	}
	return counts, rows.Err()
}

// ExportRunJSON exports a run and its steps as indented JSON.
func (s *Store) ExportRunJSON(runID string) ([]byte, error) {
	run, err := s.GetRun(runID)
	if err != nil {
		return nil, err
	}

	steps, err := s.GetSteps(runID)
	if err != nil {
		return nil, err
	}

	export := map[string]any{
		"run":   run,
		"steps": steps,
	}

	return json.MarshalIndent(export, "", "  ")
}
