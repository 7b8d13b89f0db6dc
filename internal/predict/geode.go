package predict

import (
	"fmt"

	"github.com/sdv-tools/seed-maker-go/internal/gamedata"
	"github.com/sdv-tools/seed-maker-go/internal/sdvrng"
)

// GeodeType enumerates the breakable geode kinds.
type GeodeType string

// Geode kinds accepted in configuration.
const (
	GeodeRegular GeodeType = "geode"
	GeodeFrozen  GeodeType = "frozen_geode"
	GeodeMagma   GeodeType = "magma_geode"
	GeodeOmni    GeodeType = "omni_geode"
	GeodeTrove   GeodeType = "trove"
	GeodeCoconut GeodeType = "coconut"
)

// ParseGeodeType validates a geode kind from configuration.
func ParseGeodeType(s string) (GeodeType, error) {
	switch GeodeType(s) {
	case GeodeRegular, GeodeFrozen, GeodeMagma, GeodeOmni, GeodeTrove, GeodeCoconut:
		return GeodeType(s), nil
	}
	return "", fmt.Errorf("unknown geode type %q", s)
}

// Geode binds a geode kind to its reward table.
type Geode struct {
	Type  GeodeType
	table *gamedata.GeodeTable
}

// NewGeode resolves the reward table for a geode kind.
func NewGeode(t GeodeType, data *gamedata.GameData) (*Geode, error) {
	table, err := data.GeodeTable(string(t))
	if err != nil {
		return nil, err
	}
	return &Geode{Type: t, table: table}, nil
}

// GeodeReward is the outcome of cracking one geode.
type GeodeReward struct {
	Item     gamedata.ItemID
	Quantity uint32
}

// SingleGeode predicts the contents of the next geode cracked in the given
// state. GeodesCracked is the post-increment counter, so the state as
// configured describes the geode about to be opened.
func SingleGeode(g sdvrng.Generator, geode *Geode, s GameState) (GeodeReward, error) {
	rng := g.New(int64(s.GeodesCracked), int64(s.GameID)/2, s.MultiplayerID/2)

	// The game burns a variable prefix of the stream before rolling
	// contents.
	for i := 0; i < 2; i++ {
		burn := rng.NextRange(1, 10)
		for j := int32(0); j < burn; j++ {
			rng.NextDouble()
		}
	}

	// Troves and coconuts only produce treasures.
	if geode.Type == GeodeTrove || geode.Type == GeodeCoconut {
		item := geode.table.Treasures[rng.Next(int32(len(geode.table.Treasures)))]
		return GeodeReward{Item: item, Quantity: 1}, nil
	}

	if rng.NextDouble() < 0.5 {
		// Ore path: odd stack sizes with rare jackpots.
		qty := uint32(rng.Next(3))*2 + 1
		if rng.NextDouble() < 0.1 {
			qty = 10
		}
		if rng.NextDouble() < 0.01 {
			qty = 20
		}
		if len(geode.table.Ores) == 0 {
			return GeodeReward{}, fmt.Errorf("geode %q has no ore table", geode.Type)
		}
		// Deeper mine progress opens the back of the ore list.
		limit := int32(len(geode.table.Ores))
		if s.DeepestMineLevel < 25 && limit > 3 {
			limit = 3
		}
		item := geode.table.Ores[rng.Next(limit)]
		return GeodeReward{Item: item, Quantity: qty}, nil
	}

	item := geode.table.Treasures[rng.Next(int32(len(geode.table.Treasures)))]
	return GeodeReward{Item: item, Quantity: 1}, nil
}
