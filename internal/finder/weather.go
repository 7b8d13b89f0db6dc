package finder

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/sdv-tools/seed-maker-go/internal/gamedata"
	"github.com/sdv-tools/seed-maker-go/internal/predict"
	"github.com/sdv-tools/seed-maker-go/internal/sdvrng"
)

func init() {
	registerKind("weather", buildWeather)
}

type weatherConfig struct {
	IsRain     bool   `json:"is_rain"`
	IsStorm    bool   `json:"is_storm"`
	MaybeStorm bool   `json:"maybe_storm"`
	Location   string `json:"location,omitempty"`
}

// Weather matches a day's weather. is_rain accepts storms (a storm is
// rain); is_storm requires a locked-in storm; maybe_storm accepts any
// nonzero storm chance.
type Weather struct {
	isRain     bool
	isStorm    bool
	maybeStorm bool
	location   *gamedata.LocationContext
	gen        sdvrng.Generator
}

func buildWeather(b *Builder, raw json.RawMessage) (Predictor, error) {
	var cfg weatherConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	name := cfg.Location
	if name == "" {
		name = "Default"
	}
	loc, err := b.data.LocationContext(name)
	if err != nil {
		return nil, err
	}
	return &Weather{
		isRain:     cfg.IsRain,
		isStorm:    cfg.IsStorm,
		maybeStorm: cfg.MaybeStorm,
		location:   loc,
		gen:        b.gen,
	}, nil
}

// Predict implements Predictor.
func (p *Weather) Predict(state predict.GameState) (bool, error) {
	w := predict.Weather(p.gen, p.location, state)
	return (!p.isRain || w.Rain+w.Storm >= 1.0) &&
		(!p.isStorm || w.Storm >= 1.0) &&
		(!p.maybeStorm || w.Storm > 0.0), nil
}

// Report implements Predictor.
func (p *Weather) Report(w io.Writer, rc ReportContext, state predict.GameState) error {
	ch := predict.Weather(p.gen, p.location, state)
	parts := make([]string, 0, 7)
	for _, c := range []struct {
		chance float64
		name   string
	}{
		{ch.Sun, "Sun"},
		{ch.Rain, "Rain"},
		{ch.Wind, "Wind"},
		{ch.Storm, "Storm"},
		{ch.Snow, "Snow"},
		{ch.Festival, "Festival"},
		{ch.GreenRain, "Green Rain"},
	} {
		if c.chance > 0 {
			parts = append(parts, fmt.Sprintf("%2.1f%% %s", c.chance*100, c.name))
		}
	}
	_, err := fmt.Fprintf(w, "Weather: %s\n", strings.Join(parts, ", "))
	return err
}
