// Package store persists completed backtest runs to a local SQLite
// database (WAL mode, busy-timeout, foreign keys).
package store

import (
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"perpsim/internal/config"
)

// Store wraps the SQLite connection backing the run-history table.
type Store struct {
	db *sql.DB
}

// Open opens (and migrates) the SQLite database described by cfg.
func Open(cfg config.DatabaseConfig) (*Store, error) {
	dsn := cfg.Path
	if cfg.InMemory {
		dsn = ":memory:"
	} else if err := ensureDir(filepath.Dir(cfg.Path)); err != nil {
		return nil, err
	}

	conn, err := sql.Open("sqlite3", fmt.Sprintf("%s?_busy_timeout=5000&_foreign_keys=on", dsn))
	if err != nil {
		return nil, fmt.Errorf("store: opening sqlite database: %w", err)
	}

	conn.SetMaxOpenConns(cfg.MaxOpenConns)
	conn.SetMaxIdleConns(cfg.MaxIdleConns)
	conn.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	if _, err := conn.Exec("PRAGMA journal_mode=WAL;"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("store: setting WAL mode: %w", err)
	}
	if _, err := conn.Exec("PRAGMA synchronous=NORMAL;"); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("store: setting synchronous level: %w", err)
	}

	s := &Store{db: conn}
	if err := s.migrate(); err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

func (s *Store) migrate() error {
	const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id                  INTEGER PRIMARY KEY AUTOINCREMENT,
	coin                TEXT    NOT NULL,
	start_date          TEXT    NOT NULL,
	end_date            TEXT    NOT NULL,
	ir_hash             TEXT    NOT NULL,
	config_json         TEXT    NOT NULL,
	trade_count         INTEGER NOT NULL,
	equity_point_count  INTEGER NOT NULL,
	final_equity        REAL    NOT NULL,
	total_return_pct    REAL    NOT NULL,
	max_drawdown_pct    REAL    NOT NULL,
	sharpe_ratio        REAL    NOT NULL,
	win_rate            REAL    NOT NULL,
	created_at          TEXT    NOT NULL
);`
	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("store: migrating schema: %w", err)
	}
	return nil
}

// RunRecord is one completed backtest's persisted summary: metrics plus
// enough provenance (IR hash, config snapshot) to reproduce the run later.
type RunRecord struct {
	Coin              string
	StartDate         string
	EndDate           string
	IRHash            string
	ConfigJSON        string
	TradeCount        int
	EquityPointCount  int
	FinalEquity       float64
	TotalReturnPct    float64
	MaxDrawdownPct    float64
	SharpeRatio       float64
	WinRate           float64
	CreatedAt         time.Time
}

// InsertRun appends one completed run's summary, returning its assigned id.
func (s *Store) InsertRun(r RunRecord) (int64, error) {
	const stmt = `
INSERT INTO runs (
	coin, start_date, end_date, ir_hash, config_json,
	trade_count, equity_point_count, final_equity,
	total_return_pct, max_drawdown_pct, sharpe_ratio, win_rate, created_at
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`

	res, err := s.db.Exec(stmt,
		r.Coin, r.StartDate, r.EndDate, r.IRHash, r.ConfigJSON,
		r.TradeCount, r.EquityPointCount, r.FinalEquity,
		r.TotalReturnPct, r.MaxDrawdownPct, r.SharpeRatio, r.WinRate,
		r.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return 0, fmt.Errorf("store: inserting run: %w", err)
	}
	return res.LastInsertId()
}

// ListRuns returns the most recent runs for a coin, newest first, for a
// future `perpsim runs list` subcommand to read.
func (s *Store) ListRuns(coin string, limit int) ([]RunRecord, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := s.db.Query(`
SELECT coin, start_date, end_date, ir_hash, config_json,
       trade_count, equity_point_count, final_equity,
       total_return_pct, max_drawdown_pct, sharpe_ratio, win_rate, created_at
FROM runs WHERE coin = ? ORDER BY id DESC LIMIT ?`, coin, limit)
	if err != nil {
		return nil, fmt.Errorf("store: listing runs: %w", err)
	}
	defer rows.Close()

	var out []RunRecord
	for rows.Next() {
		var r RunRecord
		var createdAt string
		if err := rows.Scan(&r.Coin, &r.StartDate, &r.EndDate, &r.IRHash, &r.ConfigJSON,
			&r.TradeCount, &r.EquityPointCount, &r.FinalEquity,
			&r.TotalReturnPct, &r.MaxDrawdownPct, &r.SharpeRatio, &r.WinRate, &createdAt); err != nil {
			return nil, fmt.Errorf("store: scanning run row: %w", err)
		}
		if t, err := time.Parse(time.RFC3339, createdAt); err == nil {
			r.CreatedAt = t
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// DB returns the underlying *sql.DB, for callers that need raw access.
func (s *Store) DB() *sql.DB { return s.db }

// Close closes the database connection.
func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	return s.db.Close()
}

func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	if err := os.MkdirAll(path, 0o755); err != nil {
		return fmt.Errorf("store: creating directory %q: %w", path, err)
	}
	return nil
}
