package store

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"
)

// SQLiteDB implements DB on a local sqlite file.
type SQLiteDB struct {
	db *sql.DB
}

// NewSQLiteDB opens (creating if needed) the database at path.
func NewSQLiteDB(path string) (*SQLiteDB, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// WAL keeps readers from blocking the writer during long searches.
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("failed to enable WAL mode: %w", err)
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
			rng_type TEXT NOT NULL,
			max_seeds INTEGER NOT NULL,
			config_json TEXT NOT NULL,
			seed_start INTEGER NOT NULL DEFAULT 0,
			seed_end INTEGER NOT NULL DEFAULT 0,
			status TEXT NOT NULL DEFAULT 'running',
			seeds_found INTEGER NOT NULL DEFAULT 0,
			seeds_processed INTEGER NOT NULL DEFAULT 0,
			eval_errors INTEGER NOT NULL DEFAULT 0,
			error TEXT NOT NULL DEFAULT '',
			created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
			completed_at DATETIME
		)`,
		`CREATE TABLE IF NOT EXISTS seeds (
			id INTEGER PRIMARY KEY AUTOINCREMENT,
			run_id TEXT NOT NULL,
			seed INTEGER NOT NULL,
			FOREIGN KEY (run_id) REFERENCES runs(id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_seeds_run_id ON seeds(run_id)`,
		`CREATE INDEX IF NOT EXISTS idx_runs_created_at ON runs(created_at DESC)`,
	}

	for _, migration := range migrations {
		if _, err := s.db.Exec(migration); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}

// SaveRun inserts a run, assigning an ID if empty.
func (s *SQLiteDB) SaveRun(run *Run) error {
	if run.ID == "" {
		run.ID = uuid.New().String()
	}
	if run.Status == "" {
		run.Status = StatusRunning
	}
	if run.CreatedAt.IsZero() {
		run.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.Exec(
		`INSERT INTO runs (
			id, rng_type, max_seeds, config_json, seed_start, seed_end,
			status, seeds_found, seeds_processed, eval_errors, error, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.RNGType, run.MaxSeeds, run.ConfigJSON, run.SeedStart, run.SeedEnd,
		run.Status, run.SeedsFound, run.SeedsProcessed, run.EvalErrors, run.Error,
		run.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save run: %w", err)
	}
	return nil
}

// UpdateRun updates a run's progress and terminal fields.
func (s *SQLiteDB) UpdateRun(run *Run) error {
	res, err := s.db.Exec(
		`UPDATE runs SET status = ?, seeds_found = ?, seeds_processed = ?,
			eval_errors = ?, error = ?, completed_at = ? WHERE id = ?`,
		run.Status, run.SeedsFound, run.SeedsProcessed,
		run.EvalErrors, run.Error, run.CompletedAt, run.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to update run: %w", err)
	}
	if n == 0 {
		return fmt.Errorf("run %s not found", run.ID)
	}
	return nil
}

// SaveSeeds inserts a run's matched seeds in one transaction.
func (s *SQLiteDB) SaveSeeds(runID string, seeds []int32) error {
	if len(seeds) == 0 {
		return nil
	}
	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO seeds (run_id, seed) VALUES (?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, seed := range seeds {
		if _, err := stmt.Exec(runID, seed); err != nil {
			return fmt.Errorf("failed to save seed %d: %w", seed, err)
		}
	}
	return tx.Commit()
}

// GetRun fetches one run.
func (s *SQLiteDB) GetRun(id string) (*Run, error) {
	row := s.db.QueryRow(
		`SELECT id, rng_type, max_seeds, config_json, seed_start, seed_end,
			status, seeds_found, seeds_processed, eval_errors, error,
			created_at, completed_at
		FROM runs WHERE id = ?`, id)

	var run Run
	var completedAt sql.NullTime
	err := row.Scan(
		&run.ID, &run.RNGType, &run.MaxSeeds, &run.ConfigJSON,
		&run.SeedStart, &run.SeedEnd, &run.Status, &run.SeedsFound,
		&run.SeedsProcessed, &run.EvalErrors, &run.Error,
		&run.CreatedAt, &completedAt,
	)
	if err == sql.ErrNoRows {
		return nil, fmt.Errorf("run %s not found", id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get run: %w", err)
	}
	if completedAt.Valid {
		run.CompletedAt = &completedAt.Time
	}
	return &run, nil
}

// GetSeeds pages through a run's matched seeds in insertion order.
func (s *SQLiteDB) GetSeeds(runID string, limit, offset int) ([]int32, error) {
	if limit <= 0 {
		limit = 100
	}
	rows, err := s.db.Query(
		`SELECT seed FROM seeds WHERE run_id = ? ORDER BY id LIMIT ? OFFSET ?`,
		runID, limit, offset)
	if err != nil {
		return nil, fmt.Errorf("failed to get seeds: %w", err)
	}
	defer rows.Close()

	var seeds []int32
	for rows.Next() {
		var seed int32
		if err := rows.Scan(&seed); err != nil {
			return nil, fmt.Errorf("failed to scan seed: %w", err)
		}
		seeds = append(seeds, seed)
	}
	return seeds, rows.Err()
}

// ListRuns pages through runs, newest first.
func (s *SQLiteDB) ListRuns(page, perPage int) (*RunsList, error) {
	if page < 1 {
		page = 1
	}
	if perPage < 1 || perPage > 200 {
		perPage = 50
	}

	var total int
	if err := s.db.QueryRow(`SELECT COUNT(*) FROM runs`).Scan(&total); err != nil {
		return nil, fmt.Errorf("failed to count runs: %w", err)
	}

	rows, err := s.db.Query(
		`SELECT id, rng_type, max_seeds, config_json, seed_start, seed_end,
			status, seeds_found, seeds_processed, eval_errors, error,
			created_at, completed_at
		FROM runs ORDER BY created_at DESC LIMIT ? OFFSET ?`,
		perPage, (page-1)*perPage)
	if err != nil {
		return nil, fmt.Errorf("failed to list runs: %w", err)
	}
	defer rows.Close()

	list := &RunsList{Page: page, PerPage: perPage, TotalCount: total}
	for rows.Next() {
		var run Run
		var completedAt sql.NullTime
		if err := rows.Scan(
			&run.ID, &run.RNGType, &run.MaxSeeds, &run.ConfigJSON,
			&run.SeedStart, &run.SeedEnd, &run.Status, &run.SeedsFound,
			&run.SeedsProcessed, &run.EvalErrors, &run.Error,
			&run.CreatedAt, &completedAt,
		); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		if completedAt.Valid {
			run.CompletedAt = &completedAt.Time
		}
		list.Runs = append(list.Runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	list.TotalPages = (total + perPage - 1) / perPage
	return list, nil
}
