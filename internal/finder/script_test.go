package finder

import (
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/sdv-tools/seed-maker-go/internal/gamedata"
	"github.com/sdv-tools/seed-maker-go/internal/predict"
	"github.com/sdv-tools/seed-maker-go/internal/sdvrng"
)

func buildScriptPredictor(t *testing.T, source string) Predictor {
	t.Helper()
	gen, err := sdvrng.ForVariant("")
	if err != nil {
		t.Fatal(err)
	}
	b := &Builder{data: gamedata.Default(), gen: gen}
	raw, err := json.Marshal(map[string]string{"type": "script", "source": source})
	if err != nil {
		t.Fatal(err)
	}
	p, err := b.Build(raw)
	if err != nil {
		t.Fatal(err)
	}
	return p
}

func TestScriptPredict(t *testing.T) {
	p := buildScriptPredictor(t, `function predict(s) { return s.game_id % 1000 === 0; }`)

	tests := []struct {
		seed uint32
		want bool
	}{
		{0, true},
		{1000, true},
		{999, false},
		{123456, false},
		{2000000, true},
	}
	for _, tt := range tests {
		got, err := p.Predict(predict.GameState{GameID: tt.seed})
		if err != nil {
			t.Fatal(err)
		}
		if got != tt.want {
			t.Errorf("seed %d: got %v, want %v", tt.seed, got, tt.want)
		}
	}
}

func TestScriptSeesAllStateFields(t *testing.T) {
	p := buildScriptPredictor(t, `function predict(s) {
		return s.game_id === 42 &&
			s.multiplayer_id === 7 &&
			s.days_played === 12 &&
			s.daily_luck === 0.05 &&
			s.geodes_cracked === 3 &&
			s.deepest_mine_level === 80;
	}`)
	ok, err := p.Predict(predict.GameState{
		GameID:           42,
		MultiplayerID:    7,
		DaysPlayed:       12,
		DailyLuck:        0.05,
		GeodesCracked:    3,
		DeepestMineLevel: 80,
	})
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("script did not see the expected state fields")
	}
}

func TestScriptRequiresPredict(t *testing.T) {
	gen, err := sdvrng.ForVariant("")
	if err != nil {
		t.Fatal(err)
	}
	b := &Builder{data: gamedata.Default(), gen: gen}

	tests := []struct {
		name   string
		source string
	}{
		{"no predict function", `var x = 1;`},
		{"predict not a function", `var predict = 42;`},
		{"syntax error", `function predict(s) {`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, _ := json.Marshal(map[string]string{"type": "script", "source": tt.source})
			if _, err := b.Build(raw); err == nil {
				t.Fatal("expected build error")
			}
		})
	}
}

func TestScriptRuntimeErrorSurfaces(t *testing.T) {
	p := buildScriptPredictor(t, `function predict(s) { throw new Error("nope"); }`)
	if _, err := p.Predict(predict.GameState{GameID: 1}); err == nil {
		t.Fatal("expected evaluation error")
	}
}

func TestScriptHostAccessBlocked(t *testing.T) {
	for _, source := range []string{
		`function predict(s) { return require("fs") !== undefined; }`,
		`function predict(s) { return eval("1+1") === 2; }`,
		`function predict(s) { return new Function("return 2")() === 2; }`,
	} {
		p := buildScriptPredictor(t, source)
		ok, err := p.Predict(predict.GameState{GameID: 1})
		if err == nil && ok {
			t.Errorf("script %q reached a host facility", source)
		}
	}
}

func TestScriptReport(t *testing.T) {
	withReport := buildScriptPredictor(t, `
		function predict(s) { return true; }
		function report(s) { return "luck is " + s.daily_luck; }`)
	var buf strings.Builder
	if err := withReport.Report(&buf, ReportContext{}, predict.GameState{DailyLuck: 0.1}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "luck is 0.1") {
		t.Fatalf("report = %q", buf.String())
	}

	withoutReport := buildScriptPredictor(t, `function predict(s) { return true; }`)
	buf.Reset()
	if err := withoutReport.Report(&buf, ReportContext{}, predict.GameState{}); err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(buf.String(), "matched") {
		t.Fatalf("report = %q", buf.String())
	}
}

func TestScriptConcurrentUse(t *testing.T) {
	p := buildScriptPredictor(t, `function predict(s) { return s.game_id % 2 === 0; }`)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for w := 0; w < 8; w++ {
		wg.Add(1)
		go func(base uint32) {
			defer wg.Done()
			for i := uint32(0); i < 200; i++ {
				seed := base*1000 + i
				ok, err := p.Predict(predict.GameState{GameID: seed})
				if err != nil {
					errs <- err
					return
				}
				if ok != (seed%2 == 0) {
					errs <- fmt.Errorf("seed %d: got %v", seed, ok)
					return
				}
			}
		}(uint32(w))
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Fatal(err)
	}
}
