package finder

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sdv-tools/seed-maker-go/internal/predict"
)

func init() {
	registerKind("day_range", buildDayRange)
}

type dayRangeConfig struct {
	StartDay   uint32          `json:"start_day"`
	EndDay     uint32          `json:"end_day"`
	MinMatches int             `json:"min_matches"`
	Child      json.RawMessage `json:"child"`
}

// DayRange runs a child predictor for every day in an inclusive interval
// and succeeds when the child matched at least MinMatches days. An inverted
// interval iterates zero days, so it only succeeds with MinMatches == 0.
type DayRange struct {
	startDay   uint32
	endDay     uint32
	minMatches int
	child      Predictor
}

func buildDayRange(b *Builder, raw json.RawMessage) (Predictor, error) {
	var cfg dayRangeConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	if cfg.StartDay == 0 {
		return nil, fmt.Errorf("start_day is required and must be >= 1")
	}
	if cfg.MinMatches < 0 {
		return nil, fmt.Errorf("min_matches must be >= 0")
	}
	if len(cfg.Child) == 0 {
		return nil, fmt.Errorf("child predictor is required")
	}
	child, err := b.Build(cfg.Child)
	if err != nil {
		return nil, err
	}
	return &DayRange{
		startDay:   cfg.StartDay,
		endDay:     cfg.EndDay,
		minMatches: cfg.MinMatches,
		child:      child,
	}, nil
}

// Predict implements Predictor.
func (p *DayRange) Predict(state predict.GameState) (bool, error) {
	matches := 0
	// Widened counter: the interval is inclusive, so a uint32 loop variable
	// would wrap past MaxUint32 and never terminate.
	for day := uint64(p.startDay); day <= uint64(p.endDay); day++ {
		ok, err := p.child.Predict(state.WithDay(uint32(day)))
		if err != nil {
			return false, err
		}
		if ok {
			matches++
		}
	}
	return matches >= p.minMatches, nil
}

// Report implements Predictor. It emits one labeled block per matching day.
func (p *DayRange) Report(w io.Writer, rc ReportContext, state predict.GameState) error {
	for day := uint64(p.startDay); day <= uint64(p.endDay); day++ {
		dayState := state.WithDay(uint32(day))
		ok, err := p.child.Predict(dayState)
		if err != nil {
			return err
		}
		if !ok {
			continue
		}
		if _, err := fmt.Fprintf(w, "Day %d ", day); err != nil {
			return err
		}
		if err := p.child.Report(w, rc, dayState); err != nil {
			return err
		}
	}
	return nil
}
