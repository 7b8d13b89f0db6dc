// Package store persists search runs and their matched seeds.
package store

import "time"

// Run statuses.
const (
	StatusRunning  = "running"
	StatusComplete = "complete"
	StatusFailed   = "failed"
)

// DB is the persistence interface for runs and seeds.
type DB interface {
	Close() error
	Migrate() error
	SaveRun(run *Run) error
	UpdateRun(run *Run) error
	SaveSeeds(runID string, seeds []int32) error
	GetRun(id string) (*Run, error)
	GetSeeds(runID string, limit, offset int) ([]int32, error)
	ListRuns(page, perPage int) (*RunsList, error)
}

// Run is one search invocation, live or finished.
type Run struct {
	ID             string     `json:"id"`
	RNGType        string     `json:"rng_type"`
	MaxSeeds       int        `json:"max_seeds"`
	ConfigJSON     string     `json:"config_json"`
	SeedStart      int64      `json:"seed_start"`
	SeedEnd        int64      `json:"seed_end"`
	Status         string     `json:"status"`
	SeedsFound     int        `json:"seeds_found"`
	SeedsProcessed int64      `json:"seeds_processed"`
	EvalErrors     uint64     `json:"eval_errors"`
	Error          string     `json:"error,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

// RunsList is one page of runs.
type RunsList struct {
	Runs       []Run `json:"runs"`
	TotalCount int   `json:"totalCount"`
	Page       int   `json:"page"`
	PerPage    int   `json:"perPage"`
	TotalPages int   `json:"totalPages"`
}
