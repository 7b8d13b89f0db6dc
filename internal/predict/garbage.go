package predict

import (
	"fmt"

	"github.com/sdv-tools/seed-maker-go/internal/gamedata"
	"github.com/sdv-tools/seed-maker-go/internal/sdvrng"
)

// GarbageCan is one town garbage can bound to its loot table.
type GarbageCan struct {
	Location string
	table    *gamedata.GarbageCanTable
}

// AllCans returns every garbage can in the dataset, in a stable order.
func AllCans(data *gamedata.GameData) ([]GarbageCan, error) {
	names := data.GarbageCanNames()
	if len(names) == 0 {
		return nil, fmt.Errorf("no garbage cans in game data")
	}
	cans := make([]GarbageCan, 0, len(names))
	for _, name := range names {
		table := data.GarbageCans[name]
		cans = append(cans, GarbageCan{Location: name, table: &table})
	}
	return cans, nil
}

// GarbageDrop is a successful garbage check.
type GarbageDrop struct {
	Item     gamedata.ItemID
	Quantity uint32
}

// Garbage predicts one can's contents for the state's day. Returns nil when
// the can yields nothing. The second result is the minimum daily luck at
// which this check would have succeeded, useful for reports.
func Garbage(g sdvrng.Generator, can *GarbageCan, s GameState) (*GarbageDrop, float64, error) {
	rng := g.New(int64(s.DaysPlayed), int64(s.GameID)/2, canSalt(can.Location))

	// Stream prefix burned by the game before the check roll.
	burn := rng.NextRange(0, 5)
	for i := int32(0); i < burn; i++ {
		rng.NextDouble()
	}

	roll := rng.NextDouble()
	chance := can.table.BaseChance + s.DailyLuck
	minLuck := roll - can.table.BaseChance

	if roll >= chance {
		return nil, minLuck, nil
	}

	idx := rng.Next(int32(len(can.table.Items)))
	item := can.table.Items[idx]
	if item == gamedata.DishOfTheDay {
		// The dish roll still resolves to the sentinel; the report layer
		// names it.
		return &GarbageDrop{Item: item, Quantity: 1}, minLuck, nil
	}
	qty := uint32(1)
	if rng.NextDouble() < 0.05 {
		qty = 2
	}
	return &GarbageDrop{Item: item, Quantity: qty}, minLuck, nil
}

func canSalt(location string) int64 {
	var salt int64 = 777
	for _, r := range location {
		salt = salt*31 + int64(r)
	}
	return salt
}
