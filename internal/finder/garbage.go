package finder

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/sdv-tools/seed-maker-go/internal/gamedata"
	"github.com/sdv-tools/seed-maker-go/internal/predict"
	"github.com/sdv-tools/seed-maker-go/internal/sdvrng"
)

func init() {
	registerKind("garbage", buildGarbage)
}

type garbageConfig struct {
	Items []string `json:"items"`
}

// Garbage matches when every configured item shows up in some garbage can
// on the state's day.
type Garbage struct {
	items []gamedata.ItemID
	cans  []predict.GarbageCan
	gen   sdvrng.Generator
}

func buildGarbage(b *Builder, raw json.RawMessage) (Predictor, error) {
	var cfg garbageConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	if len(cfg.Items) == 0 {
		return nil, fmt.Errorf("items list is required")
	}
	items := make([]gamedata.ItemID, 0, len(cfg.Items))
	for _, s := range cfg.Items {
		item, err := gamedata.ParseItemID(s)
		if err != nil {
			return nil, err
		}
		if !b.data.HasItem(item) {
			return nil, fmt.Errorf("unknown item %q", s)
		}
		items = append(items, item)
	}
	cans, err := predict.AllCans(b.data)
	if err != nil {
		return nil, err
	}
	return &Garbage{items: items, cans: cans, gen: b.gen}, nil
}

// Predict implements Predictor.
func (p *Garbage) Predict(state predict.GameState) (bool, error) {
	found := make(map[gamedata.ItemID]bool, len(p.cans))
	for i := range p.cans {
		drop, _, err := predict.Garbage(p.gen, &p.cans[i], state)
		if err != nil {
			return false, err
		}
		if drop != nil {
			found[drop.Item] = true
		}
	}
	for _, item := range p.items {
		if !found[item] {
			return false, nil
		}
	}
	return true, nil
}

// Report implements Predictor. Lists every can that yields something, with
// the daily luck the drop needs.
func (p *Garbage) Report(w io.Writer, rc ReportContext, state predict.GameState) error {
	if _, err := fmt.Fprintln(w, "Garbage:"); err != nil {
		return err
	}
	for i := range p.cans {
		drop, minLuck, err := predict.Garbage(p.gen, &p.cans[i], state)
		if err != nil {
			return err
		}
		if drop == nil {
			continue
		}
		name, err := rc.Locale.DisplayName(rc.Data, drop.Item)
		if err != nil {
			return err
		}
		if _, err := fmt.Fprintf(w, "  %s: %d %s (minluck: %.3f)\n",
			p.cans[i].Location, drop.Quantity, name, minLuck); err != nil {
			return err
		}
	}
	return nil
}
