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
	registerKind("geode", buildGeode)
}

type geodeConfig struct {
	Item      string `json:"item"`
	Quantity  uint32 `json:"quantity"`
	GeodeType string `json:"geode_type"`
}

// GeodePredictor matches the contents of the next geode cracked: the
// configured item in at least the configured quantity.
type GeodePredictor struct {
	item     gamedata.ItemID
	quantity uint32
	geode    *predict.Geode
	gen      sdvrng.Generator
}

func buildGeode(b *Builder, raw json.RawMessage) (Predictor, error) {
	var cfg geodeConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return nil, err
	}
	item, err := gamedata.ParseItemID(cfg.Item)
	if err != nil {
		return nil, err
	}
	if !b.data.HasItem(item) {
		return nil, fmt.Errorf("unknown item %q", cfg.Item)
	}
	gt, err := predict.ParseGeodeType(cfg.GeodeType)
	if err != nil {
		return nil, err
	}
	geode, err := predict.NewGeode(gt, b.data)
	if err != nil {
		return nil, err
	}
	return &GeodePredictor{
		item:     item,
		quantity: cfg.Quantity,
		geode:    geode,
		gen:      b.gen,
	}, nil
}

// Predict implements Predictor.
func (p *GeodePredictor) Predict(state predict.GameState) (bool, error) {
	reward, err := predict.SingleGeode(p.gen, p.geode, state)
	if err != nil {
		return false, err
	}
	return reward.Item == p.item && reward.Quantity >= p.quantity, nil
}

// Report implements Predictor.
func (p *GeodePredictor) Report(w io.Writer, rc ReportContext, state predict.GameState) error {
	reward, err := predict.SingleGeode(p.gen, p.geode, state)
	if err != nil {
		return err
	}
	name, err := rc.Locale.DisplayName(rc.Data, reward.Item)
	if err != nil {
		return err
	}
	_, err = fmt.Fprintf(w, "%s: %d %s\n", p.geode.Type, reward.Quantity, name)
	return err
}
