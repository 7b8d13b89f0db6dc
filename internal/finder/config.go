package finder

import (
	"bytes"
	_ "embed"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"
	"gopkg.in/yaml.v3"

	"github.com/sdv-tools/seed-maker-go/internal/predict"
	"github.com/sdv-tools/seed-maker-go/internal/sdvrng"
)

//go:embed schema.json
var schemaSource string

var configSchema = jsonschema.MustCompileString("config.schema.json", schemaSource)

// StateConfig sets the initial game state every evaluation starts from. The
// engine substitutes the seed per candidate; everything else is fixed.
type StateConfig struct {
	MultiplayerID    int64   `json:"multiplayer_id"`
	Day              uint32  `json:"day"`
	DailyLuck        float64 `json:"daily_luck"`
	GeodesCracked    *uint32 `json:"geodes_cracked,omitempty"`
	DeepestMineLevel uint32  `json:"deepest_mine_level"`
}

// GameState converts the config to the initial state template. The geode
// counter defaults to 1: the game increments before consuming.
func (c StateConfig) GameState() predict.GameState {
	geodes := uint32(1)
	if c.GeodesCracked != nil {
		geodes = *c.GeodesCracked
	}
	return predict.GameState{
		MultiplayerID:    c.MultiplayerID,
		DaysPlayed:       c.Day,
		DailyLuck:        c.DailyLuck,
		GeodesCracked:    geodes,
		DeepestMineLevel: c.DeepestMineLevel,
	}
}

// Config is the declarative search description: the RNG variant, the match
// cap, the initial state, and the top-level predictor list (AND-ed in
// order).
type Config struct {
	RNGType    sdvrng.Variant    `json:"rng_type,omitempty"`
	MaxSeeds   int               `json:"max_seeds"`
	GameState  StateConfig       `json:"game_state"`
	Predictors []json.RawMessage `json:"predictors"`
}

// ParseConfig decodes a configuration document. JSON and YAML are both
// accepted; YAML is converted to JSON so the tagged predictor tree decodes
// one way. The document is validated against the embedded schema before any
// predictor is built.
func ParseConfig(data []byte) (*Config, error) {
	doc := bytes.TrimSpace(data)
	if len(doc) == 0 {
		return nil, fmt.Errorf("empty configuration")
	}
	if doc[0] != '{' {
		converted, err := yamlToJSON(doc)
		if err != nil {
			return nil, fmt.Errorf("parse yaml configuration: %w", err)
		}
		doc = converted
	}

	var v any
	if err := json.Unmarshal(doc, &v); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	if err := configSchema.Validate(v); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	var cfg Config
	if err := json.Unmarshal(doc, &cfg); err != nil {
		return nil, fmt.Errorf("parse configuration: %w", err)
	}
	return &cfg, nil
}

func yamlToJSON(data []byte) ([]byte, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, err
	}
	return json.Marshal(v)
}
