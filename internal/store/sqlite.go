package store

import (
	"database/sql"
	"fmt"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteDB implements DB using SQLite.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (or creates) a SQLite database at path.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("store: open database: %w", err)
	}

	// WAL mode for concurrent readers while a run is being written.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("store: enable WAL mode: %w", err)
	}

	return &SQLiteDB{db: db}, nil
}

// Close closes the database connection.
func (s *SQLiteDB) Close() error {
	return s.db.Close()
}

// Migrate creates the schema.
func (s *SQLiteDB) Migrate() error {
	migrations := []string{
		`CREATE TABLE IF NOT EXISTS runs (
			id TEXT PRIMARY KEY,
			model TEXT NOT NULL,
			seed INTEGER NOT NULL,
			spins INTEGER NOT NULL,
			strategy TEXT NOT NULL DEFAULT '',
			realized_rtp REAL NOT NULL,
			hit_rate REAL NOT NULL,
			max_multiplier REAL NOT NULL,
			total_wagered REAL NOT NULL,
			total_returned REAL NOT NULL,
			report_json TEXT NOT NULL DEFAULT '{}',
			engine_version TEXT NOT NULL,
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_model ON runs(model, created_at)`,
	}
	for _, m := range migrations {
		if _, err := s.db.Exec(m); err != nil {
			return fmt.Errorf("store: migration failed: %w", err)
		}
	}
	return nil
}

// SaveRun inserts a run.
func (s *SQLiteDB) SaveRun(run *Run) error {
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}
	_, err := s.db.Exec(`INSERT INTO runs
		(id, model, seed, spins, strategy, realized_rtp, hit_rate, max_multiplier,
		 total_wagered, total_returned, report_json, engine_version, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.Model, run.Seed, run.Spins, run.Strategy,
		run.RealizedRTP, run.HitRate, run.MaxMultiplier,
		run.TotalWagered, run.TotalReturned, run.ReportJSON,
		run.EngineVersion, run.CreatedAt)
	if err != nil {
		return fmt.Errorf("store: save run: %w", err)
	}
	return nil
}

// GetRun fetches a run by ID.
func (s *SQLiteDB) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(`SELECT id, model, seed, spins, strategy, realized_rtp,
		hit_rate, max_multiplier, total_wagered, total_returned, report_json,
		engine_version, created_at FROM runs WHERE id = ?`, id)

	var run Run
	err := row.Scan(&run.ID, &run.Model, &run.Seed, &run.Spins, &run.Strategy,
		&run.RealizedRTP, &run.HitRate, &run.MaxMultiplier,
		&run.TotalWagered, &run.TotalReturned, &run.ReportJSON,
		&run.EngineVersion, &run.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, ErrRunNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("store: get run: %w", err)
	}
	return &run, nil
}

// ListRuns returns runs newest first.
func (s *SQLiteDB) ListRuns(limit, offset int) ([]Run, error) {
	if limit <= 0 {
		limit = 50
	}
	rows, err := s.db.Query(`SELECT id, model, seed, spins, strategy, realized_rtp,
		hit_rate, max_multiplier, total_wagered, total_returned, report_json,
		engine_version, created_at FROM runs
		ORDER BY created_at DESC LIMIT ? OFFSET ?`, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("store: list runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var run Run
		if err := rows.Scan(&run.ID, &run.Model, &run.Seed, &run.Spins, &run.Strategy,
			&run.RealizedRTP, &run.HitRate, &run.MaxMultiplier,
			&run.TotalWagered, &run.TotalReturned, &run.ReportJSON,
			&run.EngineVersion, &run.CreatedAt); err != nil {
			return nil, fmt.Errorf("store: scan run: %w", err)
		}
		runs = append(runs, run)
	}
	return runs, rows.Err()
}
