package finder

import (
	"encoding/json"
	"fmt"
	"io"
	"sync"

	"github.com/dop251/goja"

	"github.com/sdv-tools/seed-maker-go/internal/predict"
)

func init() {
	registerKind("script", buildScript)
}

type scriptConfig struct {
	Source string `json:"source"`
}

// Script evaluates a user-supplied JavaScript condition. The source must
// define predict(state) returning a boolean, and may define report(state)
// returning a string. state is a plain object with the game state fields.
//
// goja runtimes are not safe for concurrent use, so the predictor keeps a
// pool of runtimes, each primed once with the compiled program. The
// compiled program itself is shared.
type Script struct {
	prog *goja.Program
	pool sync.Pool
}

type scriptVM struct {
	rt      *goja.Runtime
	predict goja.Callable
	report  goja.Callable // nil when the script defines none
}

func buildScript(b *Builder, raw json.RawMessage) (Predictor, error) {
	var cfg scriptConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	if cfg.Source == "" {
		return nil, fmt.Errorf("source is required")
	}
	prog, err := goja.Compile("predictor", cfg.Source, true)
	if err != nil {
		return nil, fmt.Errorf("compile script: %w", err)
	}
	s := &Script{prog: prog}
	s.pool.New = func() any {
		vm, err := s.newVM()
		if err != nil {
			// Initialization already succeeded once at build time, so a
			// pool miss here means the script became nondeterministic.
			return err
		}
		return vm
	}
	// Prime one VM now so a script without predict() fails the build, not
	// the first evaluation.
	vm, err := s.newVM()
	if err != nil {
		return nil, err
	}
	s.pool.Put(vm)
	return s, nil
}

func (s *Script) newVM() (*scriptVM, error) {
	rt := goja.New()
	rt.SetFieldNameMapper(goja.TagFieldNameMapper("json", true))
	// No host access from predicates.
	for _, name := range []string{"require", "fetch", "XMLHttpRequest", "eval", "Function"} {
		_ = rt.Set(name, goja.Undefined())
	}
	if _, err := rt.RunProgram(s.prog); err != nil {
		return nil, fmt.Errorf("script init: %w", err)
	}
	predictFn, ok := goja.AssertFunction(rt.Get("predict"))
	if !ok {
		return nil, fmt.Errorf("script must define predict(state)")
	}
	vm := &scriptVM{rt: rt, predict: predictFn}
	if reportFn, ok := goja.AssertFunction(rt.Get("report")); ok {
		vm.report = reportFn
	}
	return vm, nil
}

func (s *Script) get() (*scriptVM, error) {
	switch v := s.pool.Get().(type) {
	case *scriptVM:
		return v, nil
	case error:
		return nil, v
	default:
		return nil, fmt.Errorf("script: bad pool entry %T", v)
	}
}

func stateObject(state predict.GameState) map[string]any {
	return map[string]any{
		"game_id":            int64(state.GameID),
		"multiplayer_id":     state.MultiplayerID,
		"days_played":        int64(state.DaysPlayed),
		"daily_luck":         state.DailyLuck,
		"geodes_cracked":     int64(state.GeodesCracked),
		"deepest_mine_level": int64(state.DeepestMineLevel),
	}
}

// Predict implements Predictor.
func (s *Script) Predict(state predict.GameState) (bool, error) {
	vm, err := s.get()
	if err != nil {
		return false, err
	}
	defer s.pool.Put(vm)

	v, err := vm.predict(goja.Undefined(), vm.rt.ToValue(stateObject(state)))
	if err != nil {
		return false, fmt.Errorf("script predict: %w", err)
	}
	return v.ToBoolean(), nil
}

// Report implements Predictor.
func (s *Script) Report(w io.Writer, rc ReportContext, state predict.GameState) error {
	vm, err := s.get()
	if err != nil {
		return err
	}
	defer s.pool.Put(vm)

	if vm.report == nil {
		_, err := fmt.Fprintln(w, "Script: matched")
		return err
	}
	v, err := vm.report(goja.Undefined(), vm.rt.ToValue(stateObject(state)))
	if err != nil {
		return fmt.Errorf("script report: %w", err)
	}
	_, err = fmt.Fprintf(w, "Script: %s\n", v.String())
	return err
}
