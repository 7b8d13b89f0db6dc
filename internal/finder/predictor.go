// Package finder is the seed finding core: predictors over a game state,
// combinators to compose them, a builder that turns declarative
// configuration into a predictor graph, and the parallel engine that drives
// that graph across the 32-bit seed space.
package finder

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sdv-tools/seed-maker-go/internal/gamedata"
	"github.com/sdv-tools/seed-maker-go/internal/predict"
	"github.com/sdv-tools/seed-maker-go/internal/sdvrng"
)

// ReportContext carries the catalog and locale a report may consult.
// Predict never touches it; only Report does.
type ReportContext struct {
	Data   *gamedata.GameData
	Locale *gamedata.Locale
}

// Predictor is a single seed-finding condition.
//
// Predict returns whether the state satisfies the condition. It must be
// pure: no retained state, no dependence on call order, safe for concurrent
// use from every search worker.
//
// Report writes a human-readable account of what the predictor observed for
// the state, not just pass/fail. Its underlying evaluation must match
// Predict's exactly; the engine filters with Predict and only ever reports
// seeds that already passed.
type Predictor interface {
	Predict(state predict.GameState) (bool, error)
	Report(w io.Writer, rc ReportContext, state predict.GameState) error
}

// Builder resolves predictor configurations against the game data and the
// RNG variant chosen for the whole search.
type Builder struct {
	data *gamedata.GameData
	gen  sdvrng.Generator
}

// builderFunc constructs one predictor kind from its raw config node.
type builderFunc func(b *Builder, raw json.RawMessage) (Predictor, error)

// kinds maps the "type" discriminator to a constructor. Populated by the
// per-kind init functions.
var kinds = map[string]builderFunc{}

func registerKind(name string, fn builderFunc) {
	if _, dup := kinds[name]; dup {
		panic(fmt.Sprintf("finder: duplicate predictor kind %q", name))
	}
	kinds[name] = fn
}

// Kinds lists the registered predictor kind names.
func Kinds() []string {
	names := make([]string, 0, len(kinds))
	for name := range kinds {
		names = append(names, name)
	}
	return names
}

// Build constructs a predictor from one tagged config node.
func (b *Builder) Build(raw json.RawMessage) (Predictor, error) {
	var head struct {
		Type string `json:"type"`
	}
	if err := json.Unmarshal(raw, &head); err != nil {
		return nil, fmt.Errorf("predictor config: %w", err)
	}
	if head.Type == "" {
		return nil, fmt.Errorf("predictor config missing \"type\"")
	}
	fn, ok := kinds[head.Type]
	if !ok {
		return nil, fmt.Errorf("unknown predictor type %q", head.Type)
	}
	p, err := fn(b, raw)
	if err != nil {
		return nil, fmt.Errorf("predictor %q: %w", head.Type, err)
	}
	return p, nil
}
