package finder

import (
	"context"
	"fmt"
	"io"
	"math"
	"runtime"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"

	"github.com/sdv-tools/seed-maker-go/internal/gamedata"
	"github.com/sdv-tools/seed-maker-go/internal/predict"
	"github.com/sdv-tools/seed-maker-go/internal/sdvrng"
)

// chunkSize is the width of one claimed sub-range. Large enough that
// claiming is cheap next to evaluation, small enough that the cap check at
// chunk boundaries stops workers promptly.
const chunkSize = 1 << 16

// Finder owns a built predictor graph and drives it across the seed space.
// Immutable after New; one Finder can serve many concurrent searches.
type Finder struct {
	maxSeeds   int
	gen        sdvrng.Generator
	initial    predict.GameState
	predictors []Predictor

	seedStart int64 // inclusive
	seedEnd   int64 // exclusive
	workers   int
}

// Option tweaks a Finder at construction.
type Option func(*Finder)

// WithRange narrows the scanned seed range to [start, end). Used by tests
// and the API's sub-range searches; the default is the full space.
func WithRange(start, end int64) Option {
	return func(f *Finder) {
		f.seedStart = start
		f.seedEnd = end
	}
}

// WithWorkers overrides the worker count.
func WithWorkers(n int) Option {
	return func(f *Finder) {
		if n > 0 {
			f.workers = n
		}
	}
}

// New builds a Finder from a validated configuration. All item, location,
// and enum resolution happens here; a Finder that constructs will not fail
// on configuration grounds during a scan.
func New(data *gamedata.GameData, cfg *Config, opts ...Option) (*Finder, error) {
	if cfg.MaxSeeds < 1 {
		return nil, fmt.Errorf("max_seeds must be >= 1")
	}
	if cfg.GameState.Day < 1 {
		return nil, fmt.Errorf("game_state.day must be >= 1")
	}
	if len(cfg.Predictors) == 0 {
		return nil, fmt.Errorf("at least one predictor is required")
	}
	gen, err := sdvrng.ForVariant(cfg.RNGType)
	if err != nil {
		return nil, err
	}

	b := &Builder{data: data, gen: gen}
	predictors := make([]Predictor, 0, len(cfg.Predictors))
	for i, raw := range cfg.Predictors {
		p, err := b.Build(raw)
		if err != nil {
			return nil, fmt.Errorf("predictors[%d]: %w", i, err)
		}
		predictors = append(predictors, p)
	}

	f := &Finder{
		maxSeeds:   cfg.MaxSeeds,
		gen:        gen,
		initial:    cfg.GameState.GameState(),
		predictors: predictors,
		seedStart:  0,
		seedEnd:    math.MaxInt32,
		workers:    runtime.GOMAXPROCS(0),
	}
	for _, opt := range opts {
		opt(f)
	}
	if f.seedStart < 0 || f.seedEnd > math.MaxInt32 || f.seedStart >= f.seedEnd {
		return nil, fmt.Errorf("invalid seed range [%d, %d)", f.seedStart, f.seedEnd)
	}
	return f, nil
}

// Variant reports the RNG variant the graph was built for.
func (f *Finder) Variant() sdvrng.Variant { return f.gen.Variant() }

// MaxSeeds reports the configured match cap.
func (f *Finder) MaxSeeds() int { return f.maxSeeds }

// StateFor derives the evaluation state for one candidate seed.
func (f *Finder) StateFor(seed int32) predict.GameState {
	state := f.initial
	state.GameID = uint32(seed)
	return state
}

// Matches runs the full top-level conjunction for one seed. Short-circuits
// on the first failing predictor; order the expensive ones last.
func (f *Finder) Matches(seed int32) (bool, error) {
	state := f.StateFor(seed)
	for _, p := range f.predictors {
		ok, err := p.Predict(state)
		if err != nil {
			return false, err
		}
		if !ok {
			return false, nil
		}
	}
	return true, nil
}

// Result is the outcome of one search.
type Result struct {
	// Seeds are the matching seeds, at most MaxSeeds, in no particular
	// order.
	Seeds []int32

	// Evaluated counts candidates processed, accumulated per completed
	// sub-range.
	Evaluated int64

	// EvalErrors counts candidates whose evaluation failed. Failed
	// candidates are treated as non-matching; FirstErr keeps the first
	// failure for diagnosis.
	EvalErrors uint64
	FirstErr   error
}

// Progress is one event on the streaming channel. Events with Complete
// unset carry a step-quantized count of seeds processed; the single final
// event has Complete set and carries the result. Processed totals are
// monotonically non-decreasing but bursty; the counter advances a whole
// step at a time, so it can overshoot the exact candidate count (the
// result's Evaluated field is exact).
type Progress struct {
	Processed int64
	Complete  bool
	Result    *Result
	Err       error
}

// Find scans the configured range synchronously and returns the collected
// matches. The scan ends when the range is exhausted or the cap is reached;
// cancelling ctx stops it at the next sub-range boundary and returns the
// partial result alongside ctx's error.
func (f *Finder) Find(ctx context.Context) (*Result, error) {
	res, _, err := f.run(ctx, nil, 0)
	return res, err
}

// FindAsync runs the same scan in the background, reporting progress on the
// returned channel. The space is divided into steps equal widths; crossing
// into a step advances the shared counter by the step width and emits one
// event. The channel is buffered for the worst-case event count, so a slow
// consumer never stalls the scan. The final event carries the result and
// closes the channel.
func (f *Finder) FindAsync(ctx context.Context, steps int) <-chan Progress {
	if steps < 1 {
		steps = 1
	}
	space := f.seedEnd - f.seedStart
	stepWidth := space / int64(steps)
	if stepWidth < 1 {
		stepWidth = 1
	}
	// Buffer for every possible event plus the terminal one, so a slow or
	// absent consumer never blocks a worker.
	events := (space+stepWidth-1)/stepWidth + 2
	out := make(chan Progress, events)
	go func() {
		defer close(out)
		// The terminal event carries the step counter's final value, so
		// Processed never moves backward relative to earlier events.
		res, processed, err := f.run(ctx, out, stepWidth)
		out <- Progress{Processed: processed, Complete: true, Result: res, Err: err}
	}()
	return out
}

type seedJob struct {
	start, end int64 // [start, end)
}

// collector is the shared match set: concurrent appends, a hard cap, and a
// lock-free full check workers consult before claiming more work.
type collector struct {
	mu    sync.Mutex
	max   int
	seeds []int32
	full  atomic.Bool
}

func (c *collector) add(seed int32) {
	if c.full.Load() {
		return
	}
	c.mu.Lock()
	if len(c.seeds) < c.max {
		c.seeds = append(c.seeds, seed)
		if len(c.seeds) == c.max {
			c.full.Store(true)
		}
	}
	c.mu.Unlock()
}

func (c *collector) collected() []int32 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]int32(nil), c.seeds...)
}

// run executes the scan. progress is nil in synchronous mode; when set,
// stepWidth is the quantum the shared progress counter advances by. The
// second return value is the counter's final value.
func (f *Finder) run(ctx context.Context, progress chan<- Progress, stepWidth int64) (*Result, int64, error) {
	col := &collector{max: f.maxSeeds}

	var (
		evaluated  atomic.Int64
		stepped    atomic.Int64
		evalErrs   atomic.Uint64
		firstErr   error
		firstErrMu sync.Mutex
	)

	recordErr := func(seed int64, err error) {
		evalErrs.Add(1)
		firstErrMu.Lock()
		if firstErr == nil {
			firstErr = fmt.Errorf("seed %d: %w", seed, err)
		}
		firstErrMu.Unlock()
	}

	jobs := make(chan seedJob, f.workers*2)
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		defer close(jobs)
		for cur := f.seedStart; cur < f.seedEnd; {
			if col.full.Load() {
				return nil
			}
			if err := gctx.Err(); err != nil {
				return err
			}
			end := cur + chunkSize
			if end > f.seedEnd {
				end = f.seedEnd
			}
			select {
			case jobs <- seedJob{start: cur, end: end}:
				cur = end
			case <-gctx.Done():
				return gctx.Err()
			}
		}
		return nil
	})

	for i := 0; i < f.workers; i++ {
		g.Go(func() error {
			for job := range jobs {
				if col.full.Load() || gctx.Err() != nil {
					// Drain without evaluating; the producer is already
					// winding down.
					continue
				}
				// A claimed sub-range runs to completion; surplus matches
				// are discarded by the collector.
				for seed := job.start; seed < job.end; seed++ {
					if stepWidth > 0 && (seed-f.seedStart)%stepWidth == 0 {
						cur := stepped.Add(stepWidth)
						progress <- Progress{Processed: cur}
					}
					ok, err := f.Matches(int32(seed))
					if err != nil {
						recordErr(seed, err)
						continue
					}
					if ok {
						col.add(int32(seed))
					}
				}
				evaluated.Add(job.end - job.start)
			}
			return nil
		})
	}

	err := g.Wait()

	res := &Result{
		Seeds:      col.collected(),
		Evaluated:  evaluated.Load(),
		EvalErrors: evalErrs.Load(),
		FirstErr:   firstErr,
	}
	return res, stepped.Load(), err
}

// Report writes the full explanation for one matched seed: every top-level
// predictor's report, in configuration order. Read-only over the graph and
// safe to call concurrently for different seeds.
func (f *Finder) Report(w io.Writer, rc ReportContext, seed int32) error {
	state := f.StateFor(seed)
	for _, p := range f.predictors {
		if err := p.Report(w, rc, state); err != nil {
			return fmt.Errorf("report seed %d: %w", seed, err)
		}
	}
	return nil
}
