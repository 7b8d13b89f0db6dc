package finder

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sdv-tools/seed-maker-go/internal/predict"
	"github.com/sdv-tools/seed-maker-go/internal/sdvrng"
)

func init() {
	registerKind("night_event", buildNightEvent)
}

type nightEventConfig struct {
	Event string `json:"event"`
}

// NightEventPredictor matches the overnight event following the state's day.
type NightEventPredictor struct {
	event predict.NightEvent
	gen   sdvrng.Generator
}

func buildNightEvent(b *Builder, raw json.RawMessage) (Predictor, error) {
	var cfg nightEventConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	event, err := predict.ParseNightEvent(cfg.Event)
	if err != nil {
		return nil, err
	}
	return &NightEventPredictor{event: event, gen: b.gen}, nil
}

// Predict implements Predictor.
func (p *NightEventPredictor) Predict(state predict.GameState) (bool, error) {
	return predict.NightEventFor(p.gen, state) == p.event, nil
}

// Report implements Predictor.
func (p *NightEventPredictor) Report(w io.Writer, rc ReportContext, state predict.GameState) error {
	_, err := fmt.Fprintf(w, "Night Event: %s\n", predict.NightEventFor(p.gen, state))
	return err
}
