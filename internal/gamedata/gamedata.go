// Package gamedata holds the static game content the predictors resolve
// against: the object catalog, geode reward tables, garbage can tables, and
// location contexts. A trimmed dataset covering the predictable content is
// embedded; a full export unpacked from the game files can be loaded over it.
package gamedata

import (
	"embed"
	"encoding/json"
	"fmt"
	"os"
	"sort"
)

//go:embed data/base.json
var baseFS embed.FS

// Object is a catalog entry for a single item.
type Object struct {
	Name  string `json:"name"`
	Price int    `json:"price"`
}

// GeodeTable lists what a single geode kind can produce. Treasures are the
// kind-specific minerals and artifacts; ores are the common fallback pool.
type GeodeTable struct {
	Treasures []ItemID `json:"treasures"`
	Ores      []ItemID `json:"ores"`
}

// GarbageCanTable describes one of the town garbage cans.
type GarbageCanTable struct {
	BaseChance float64  `json:"base_chance"`
	Items      []ItemID `json:"items"`
}

// LocationContext carries the per-location weather model. Chance slices are
// indexed by season (spring, summer, fall, winter).
type LocationContext struct {
	RainChance     [4]float64 `json:"rain_chance"`
	SnowChance     [4]float64 `json:"snow_chance"`
	StormChance    float64    `json:"storm_chance"`
	AllowGreenRain bool       `json:"allow_green_rain"`
}

// GameData is the full loaded dataset. Immutable after load; shared
// read-only by every search worker.
type GameData struct {
	Objects          map[ItemID]Object            `json:"objects"`
	Geodes           map[string]GeodeTable        `json:"geodes"`
	GarbageCans      map[string]GarbageCanTable   `json:"garbage_cans"`
	LocationContexts map[string]LocationContext   `json:"location_contexts"`
	Locales          map[string]map[ItemID]string `json:"locales"`
}

// Default returns the embedded dataset.
func Default() *GameData {
	raw, err := baseFS.ReadFile("data/base.json")
	if err != nil {
		panic(fmt.Sprintf("gamedata: embedded dataset missing: %v", err))
	}
	data, err := decode(raw)
	if err != nil {
		panic(fmt.Sprintf("gamedata: embedded dataset invalid: %v", err))
	}
	return data
}

// Load reads a dataset export from disk. The file uses the same layout as
// the embedded dataset.
func Load(path string) (*GameData, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read game data: %w", err)
	}
	data, err := decode(raw)
	if err != nil {
		return nil, fmt.Errorf("parse game data %s: %w", path, err)
	}
	return data, nil
}

func decode(raw []byte) (*GameData, error) {
	var data GameData
	if err := json.Unmarshal(raw, &data); err != nil {
		return nil, err
	}
	if err := data.check(); err != nil {
		return nil, err
	}
	return &data, nil
}

// check verifies cross references so predictors can assume table entries
// resolve in the catalog.
func (d *GameData) check() error {
	if len(d.Objects) == 0 {
		return fmt.Errorf("no objects in catalog")
	}
	for kind, table := range d.Geodes {
		for _, id := range append(append([]ItemID{}, table.Treasures...), table.Ores...) {
			if _, ok := d.Objects[id]; !ok {
				return fmt.Errorf("geode table %q references unknown item %q", kind, id)
			}
		}
		if len(table.Treasures) == 0 {
			return fmt.Errorf("geode table %q has no treasures", kind)
		}
	}
	for loc, can := range d.GarbageCans {
		if len(can.Items) == 0 {
			return fmt.Errorf("garbage can %q has no items", loc)
		}
		for _, id := range can.Items {
			if _, ok := d.Objects[id]; !ok {
				return fmt.Errorf("garbage can %q references unknown item %q", loc, id)
			}
		}
	}
	if _, ok := d.LocationContexts["Default"]; !ok {
		return fmt.Errorf("missing Default location context")
	}
	return nil
}

// Object resolves an item in the catalog.
func (d *GameData) Object(id ItemID) (Object, error) {
	obj, ok := d.Objects[id]
	if !ok {
		return Object{}, fmt.Errorf("unknown item %q", id)
	}
	return obj, nil
}

// HasItem reports whether the catalog knows the item.
func (d *GameData) HasItem(id ItemID) bool {
	_, ok := d.Objects[id]
	return ok
}

// LocationContext resolves a named location context.
func (d *GameData) LocationContext(name string) (*LocationContext, error) {
	ctx, ok := d.LocationContexts[name]
	if !ok {
		return nil, fmt.Errorf("unknown location context %q", name)
	}
	return &ctx, nil
}

// GeodeTable resolves the reward table for a geode kind.
func (d *GameData) GeodeTable(kind string) (*GeodeTable, error) {
	table, ok := d.Geodes[kind]
	if !ok {
		return nil, fmt.Errorf("unknown geode kind %q", kind)
	}
	return &table, nil
}

// GarbageCanNames returns the can locations in a stable order, so prediction
// and reporting walk the cans identically on every call.
func (d *GameData) GarbageCanNames() []string {
	names := make([]string, 0, len(d.GarbageCans))
	for name := range d.GarbageCans {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
