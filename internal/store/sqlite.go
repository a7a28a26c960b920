// Package store persists run history in a local SQLite database.
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/DavidJovino/deivao-recon/internal/recon"
)

// Schema v1. Timestamps are stored as RFC3339 text so reads do not
// depend on driver-side time parsing.
const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	domain TEXT NOT NULL,
	started_at TEXT NOT NULL,
	finished_at TEXT NOT NULL,
	raw_count INTEGER NOT NULL,
	active_count INTEGER NOT NULL,
	tools_used TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS subdomains (
	domain TEXT NOT NULL,
	host TEXT NOT NULL,
	first_seen TEXT NOT NULL DEFAULT CURRENT_TIMESTAMP,
	UNIQUE(domain, host)
);

CREATE TABLE IF NOT EXISTS tool_runs (
	run_id TEXT NOT NULL,
	tool TEXT NOT NULL,
	duration_ms INTEGER NOT NULL,
	exit_code INTEGER NOT NULL DEFAULT 0,
	lines INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL,
	FOREIGN KEY (run_id) REFERENCES runs(id)
);

CREATE INDEX IF NOT EXISTS idx_runs_domain ON runs(domain, started_at);
CREATE INDEX IF NOT EXISTS idx_subdomains_domain ON subdomains(domain);
CREATE INDEX IF NOT EXISTS idx_tool_runs_run ON tool_runs(run_id);
`

// Store wraps the history database. SQLite tolerates one writer at a
// time, so writes funnel through a mutex.
type Store struct {
	db *sql.DB
	mu sync.Mutex
}

// DefaultPath returns the history database location.
func DefaultPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "history.db"
	}
	return filepath.Join(home, ".config", "deivao-recon", "history.db")
}

// Open opens or creates the history database. An empty path means the
// default location.
func Open(path string) (*Store, error) {
	if path == "" {
		path = DefaultPath()
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, err
	}

	// WAL for concurrency, NORMAL sync is safe with WAL.
	db, err := sql.Open("sqlite3", path+"?_busy_timeout=10000&_journal_mode=WAL&_synchronous=NORMAL")
	if err != nil {
		return nil, err
	}
	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("applying schema: %w", err)
	}
	return &Store{db: db}, nil
}

func (s *Store) Close() error { return s.db.Close() }

// SaveRun persists one run with its tool outcomes in a single
// transaction.
func (s *Store) SaveRun(res *recon.Result) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return err
	}
	defer tx.Rollback()

	started := res.StartedAt.UTC()
	_, err = tx.Exec(`
		INSERT INTO runs (id, domain, started_at, finished_at, raw_count, active_count, tools_used)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`, res.RunID, res.Domain,
		started.Format(time.RFC3339), started.Add(res.Duration).Format(time.RFC3339),
		len(res.Subdomains), len(res.Active), strings.Join(res.ToolsUsed, ","))
	if err != nil {
		return err
	}

	stmt, err := tx.Prepare(`
		INSERT INTO tool_runs (run_id, tool, duration_ms, exit_code, lines, status)
		VALUES (?, ?, ?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}
	defer stmt.Close()

	for _, oc := range res.Tools {
		if _, err := stmt.Exec(res.RunID, oc.Tool, oc.Duration.Milliseconds(),
			oc.ExitCode, oc.Lines, outcomeStatus(oc)); err != nil {
			return err
		}
	}

	return tx.Commit()
}

// MarkSubdomains records hosts for a domain and returns the ones never
// seen before, preserving input order.
func (s *Store) MarkSubdomains(domain string, hosts []string) ([]string, error) {
	if len(hosts) == 0 {
		return nil, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return nil, err
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare("INSERT OR IGNORE INTO subdomains (domain, host) VALUES (?, ?)")
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	var fresh []string
	for _, host := range hosts {
		res, err := stmt.Exec(domain, host)
		if err != nil {
			return nil, err
		}
		if n, _ := res.RowsAffected(); n > 0 {
			fresh = append(fresh, host)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, err
	}
	return fresh, nil
}

// RunSummary is one row of run history.
type RunSummary struct {
	ID          string
	Domain      string
	StartedAt   time.Time
	FinishedAt  time.Time
	RawCount    int
	ActiveCount int
	ToolsUsed   []string
}

// RecentRuns lists the latest runs, newest first. An empty domain means
// every domain.
func (s *Store) RecentRuns(domain string, n int) ([]RunSummary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		SELECT id, domain, started_at, finished_at, raw_count, active_count, tools_used
		FROM runs`
	args := []interface{}{}
	if domain != "" {
		query += " WHERE domain = ?"
		args = append(args, domain)
	}
	query += " ORDER BY started_at DESC LIMIT ?"
	args = append(args, n)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []RunSummary
	for rows.Next() {
		var r RunSummary
		var started, finished, tools string
		if err := rows.Scan(&r.ID, &r.Domain, &started, &finished,
			&r.RawCount, &r.ActiveCount, &tools); err != nil {
			return nil, err
		}
		if r.StartedAt, err = time.Parse(time.RFC3339, started); err != nil {
			return nil, fmt.Errorf("run %s: bad started_at %q", r.ID, started)
		}
		if r.FinishedAt, err = time.Parse(time.RFC3339, finished); err != nil {
			return nil, fmt.Errorf("run %s: bad finished_at %q", r.ID, finished)
		}
		if tools != "" {
			r.ToolsUsed = strings.Split(tools, ",")
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

func outcomeStatus(oc recon.ToolOutcome) string {
	switch {
	case oc.TimedOut:
		return "timeout"
	case oc.Error != "":
		return "error"
	default:
		return "ok"
	}
}
