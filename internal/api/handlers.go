package api

import (
	"context"
	"encoding/json"
	"fmt"
	"math"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/sdv-tools/seed-maker-go/internal/finder"
	"github.com/sdv-tools/seed-maker-go/internal/store"
)

// defaultSteps is the progress resolution for background searches.
const defaultSteps = 1000

// activeRun is the live view of a background search.
type activeRun struct {
	processed atomic.Int64
	total     int64
}

func (s *Server) reportCtx() finder.ReportContext {
	return finder.ReportContext{Data: s.data, Locale: s.locale}
}

// buildFinder turns a request into a configured Finder plus the persisted
// run skeleton.
func (s *Server) buildFinder(req *SearchRequest) (*finder.Finder, *store.Run, error) {
	if len(req.Config) == 0 {
		return nil, nil, fmt.Errorf("config is required")
	}
	cfg, err := finder.ParseConfig(req.Config)
	if err != nil {
		return nil, nil, err
	}

	start, end := int64(0), int64(math.MaxInt32)
	if req.SeedStart != nil {
		start = *req.SeedStart
	}
	if req.SeedEnd != nil {
		end = *req.SeedEnd
	}

	f, err := finder.New(s.data, cfg, finder.WithRange(start, end))
	if err != nil {
		return nil, nil, err
	}

	run := &store.Run{
		RNGType:    string(f.Variant()),
		MaxSeeds:   f.MaxSeeds(),
		ConfigJSON: string(req.Config),
		SeedStart:  start,
		SeedEnd:    end,
	}
	return f, run, nil
}

func (s *Server) renderReports(f *finder.Finder, seeds []int32) []SeedReport {
	reports := make([]SeedReport, 0, len(seeds))
	for _, seed := range seeds {
		var buf strings.Builder
		if err := f.Report(&buf, s.reportCtx(), seed); err != nil {
			// A report failure is local to this seed; keep the rest.
			s.logger.Warn("report failed", zap.Int32("seed", seed), zap.Error(err))
			reports = append(reports, SeedReport{Seed: seed, Report: fmt.Sprintf("report error: %v", err)})
			continue
		}
		reports = append(reports, SeedReport{Seed: seed, Report: buf.String()})
	}
	return reports
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, ErrTypeValidation, "invalid request body", map[string]any{"cause": err.Error()})
		return
	}

	f, run, err := s.buildFinder(&req)
	if err != nil {
		s.writeError(w, r, ErrTypeConfig, err.Error(), nil)
		return
	}

	ctx := r.Context()
	if req.TimeoutMs > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, time.Duration(req.TimeoutMs)*time.Millisecond)
		defer cancel()
	}

	s.metrics.SearchesStarted.Inc()
	s.metrics.ActiveSearches.Inc()
	res, runErr := f.Find(ctx)
	s.metrics.ActiveSearches.Dec()
	s.metrics.SeedsEvaluated.Add(float64(res.Evaluated))
	s.metrics.SeedsFound.Add(float64(len(res.Seeds)))

	timedOut := runErr != nil && ctx.Err() != nil
	if runErr != nil && !timedOut {
		s.metrics.SearchesCompleted.WithLabelValues("failed").Inc()
		s.writeError(w, r, ErrTypeInternal, runErr.Error(), nil)
		return
	}
	s.metrics.SearchesCompleted.WithLabelValues("complete").Inc()

	s.finishRun(run, res, timedOut)

	resp := SearchResponse{
		RunID:      run.ID,
		Seeds:      res.Seeds,
		Reports:    s.renderReports(f, res.Seeds),
		Evaluated:  res.Evaluated,
		EvalErrors: res.EvalErrors,
		TimedOut:   timedOut,
	}
	if res.FirstErr != nil {
		resp.EvalError = res.FirstErr.Error()
	}
	s.writeJSON(w, http.StatusOK, resp)
}

// finishRun persists a completed search. Persistence failures are logged,
// not returned: the caller already has the result in hand.
func (s *Server) finishRun(run *store.Run, res *finder.Result, timedOut bool) {
	run.Status = store.StatusComplete
	if timedOut {
		run.Status = store.StatusFailed
		run.Error = "timed out"
	}
	run.SeedsFound = len(res.Seeds)
	run.SeedsProcessed = res.Evaluated
	run.EvalErrors = res.EvalErrors
	if res.FirstErr != nil && run.Error == "" {
		run.Error = res.FirstErr.Error()
	}
	now := time.Now().UTC()
	run.CompletedAt = &now

	if err := s.db.SaveRun(run); err != nil {
		s.logger.Error("save run", zap.Error(err))
		return
	}
	if err := s.db.SaveSeeds(run.ID, res.Seeds); err != nil {
		s.logger.Error("save seeds", zap.String("run_id", run.ID), zap.Error(err))
	}
}

func (s *Server) handleSearchAsync(w http.ResponseWriter, r *http.Request) {
	var req SearchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.writeError(w, r, ErrTypeValidation, "invalid request body", map[string]any{"cause": err.Error()})
		return
	}

	f, run, err := s.buildFinder(&req)
	if err != nil {
		s.writeError(w, r, ErrTypeConfig, err.Error(), nil)
		return
	}
	if err := s.db.SaveRun(run); err != nil {
		s.writeError(w, r, ErrTypeInternal, "failed to persist run", map[string]any{"cause": err.Error()})
		return
	}

	steps := req.Steps
	if steps <= 0 {
		steps = defaultSteps
	}

	live := &activeRun{total: run.SeedEnd - run.SeedStart}
	s.runsMu.Lock()
	s.runs[run.ID] = live
	s.runsMu.Unlock()

	s.metrics.SearchesStarted.Inc()
	s.metrics.ActiveSearches.Inc()

	// The search is detached from the request context: it runs to
	// completion or cap like the engine promises, and the client polls.
	events := f.FindAsync(context.Background(), steps)
	go s.consumeRun(run, live, events)

	s.writeJSON(w, http.StatusAccepted, AsyncSearchResponse{RunID: run.ID})
}

func (s *Server) consumeRun(run *store.Run, live *activeRun, events <-chan finder.Progress) {
	defer func() {
		s.metrics.ActiveSearches.Dec()
		s.runsMu.Lock()
		delete(s.runs, run.ID)
		s.runsMu.Unlock()
	}()

	for ev := range events {
		if !ev.Complete {
			live.processed.Store(ev.Processed)
			continue
		}
		res := ev.Result
		s.metrics.SeedsEvaluated.Add(float64(res.Evaluated))
		s.metrics.SeedsFound.Add(float64(len(res.Seeds)))
		if ev.Err != nil {
			s.metrics.SearchesCompleted.WithLabelValues("failed").Inc()
			now := time.Now().UTC()
			run.Status = store.StatusFailed
			run.Error = ev.Err.Error()
			run.SeedsProcessed = res.Evaluated
			run.CompletedAt = &now
			if err := s.db.UpdateRun(run); err != nil {
				s.logger.Error("update run", zap.Error(err))
			}
			return
		}
		s.metrics.SearchesCompleted.WithLabelValues("complete").Inc()

		now := time.Now().UTC()
		run.Status = store.StatusComplete
		run.SeedsFound = len(res.Seeds)
		run.SeedsProcessed = res.Evaluated
		run.EvalErrors = res.EvalErrors
		if res.FirstErr != nil {
			run.Error = res.FirstErr.Error()
		}
		run.CompletedAt = &now
		if err := s.db.UpdateRun(run); err != nil {
			s.logger.Error("update run", zap.Error(err))
		}
		if err := s.db.SaveSeeds(run.ID, res.Seeds); err != nil {
			s.logger.Error("save seeds", zap.String("run_id", run.ID), zap.Error(err))
		}
	}
}

func (s *Server) handleGetRun(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.db.GetRun(id)
	if err != nil {
		s.writeError(w, r, ErrTypeNotFound, err.Error(), nil)
		return
	}

	// Overlay live progress for an in-flight run.
	s.runsMu.Lock()
	live, ok := s.runs[id]
	s.runsMu.Unlock()
	if ok && run.Status == store.StatusRunning {
		run.SeedsProcessed = live.processed.Load()
	}

	s.writeJSON(w, http.StatusOK, run)
}

func (s *Server) handleListRuns(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	perPage, _ := strconv.Atoi(r.URL.Query().Get("perPage"))
	list, err := s.db.ListRuns(page, perPage)
	if err != nil {
		s.writeError(w, r, ErrTypeInternal, err.Error(), nil)
		return
	}
	s.writeJSON(w, http.StatusOK, list)
}

func (s *Server) handleRunSeeds(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	run, err := s.db.GetRun(id)
	if err != nil {
		s.writeError(w, r, ErrTypeNotFound, err.Error(), nil)
		return
	}

	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
	seeds, err := s.db.GetSeeds(id, limit, offset)
	if err != nil {
		s.writeError(w, r, ErrTypeInternal, err.Error(), nil)
		return
	}

	resp := RunSeedsResponse{RunID: id, Seeds: seeds}

	if r.URL.Query().Get("reports") == "true" {
		cfg, err := finder.ParseConfig([]byte(run.ConfigJSON))
		if err == nil {
			if f, err := finder.New(s.data, cfg); err == nil {
				resp.Reports = s.renderReports(f, seeds)
			}
		}
	}

	s.writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleListPredictors(w http.ResponseWriter, r *http.Request) {
	names := finder.Kinds()
	sort.Strings(names)
	s.writeJSON(w, http.StatusOK, map[string][]string{"predictors": names})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.runsMu.Lock()
	active := len(s.runs)
	s.runsMu.Unlock()
	s.writeJSON(w, http.StatusOK, HealthResponse{
		Status:        "ok",
		UptimeSeconds: int64(time.Since(s.startTime).Seconds()),
		ActiveRuns:    active,
	})
}
