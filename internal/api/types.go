package api

import "encoding/json"

// SearchRequest is the body of both search endpoints. Config is a full
// finder configuration document (JSON form). SeedStart/SeedEnd narrow the
// scanned range; both default to the full space.
type SearchRequest struct {
	Config    json.RawMessage `json:"config"`
	SeedStart *int64          `json:"seed_start,omitempty"`
	SeedEnd   *int64          `json:"seed_end,omitempty"`
	TimeoutMs int             `json:"timeout_ms,omitempty"`
	Steps     int             `json:"steps,omitempty"`
	Locale    string          `json:"locale,omitempty"`
}

// SeedReport pairs a matched seed with its rendered explanation.
type SeedReport struct {
	Seed   int32  `json:"seed"`
	Report string `json:"report"`
}

// SearchResponse is the synchronous search result.
type SearchResponse struct {
	RunID      string       `json:"run_id"`
	Seeds      []int32      `json:"seeds"`
	Reports    []SeedReport `json:"reports"`
	Evaluated  int64        `json:"evaluated"`
	EvalErrors uint64       `json:"eval_errors"`
	EvalError  string       `json:"eval_error,omitempty"`
	TimedOut   bool         `json:"timed_out,omitempty"`
}

// AsyncSearchResponse acknowledges a background search.
type AsyncSearchResponse struct {
	RunID string `json:"run_id"`
}

// RunSeedsResponse is one page of a run's matched seeds.
type RunSeedsResponse struct {
	RunID   string       `json:"run_id"`
	Seeds   []int32      `json:"seeds"`
	Reports []SeedReport `json:"reports,omitempty"`
}

// HealthResponse reports service liveness.
type HealthResponse struct {
	Status        string `json:"status"`
	UptimeSeconds int64  `json:"uptime_seconds"`
	ActiveRuns    int    `json:"active_runs"`
}

// APIError is the structured error envelope.
type APIError struct {
	Type      string         `json:"type"`
	Message   string         `json:"message"`
	Context   map[string]any `json:"context,omitempty"`
	RequestID string         `json:"request_id,omitempty"`
}

func (e APIError) Error() string { return e.Message }
