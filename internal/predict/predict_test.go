package predict

import (
	"testing"

	"github.com/sdv-tools/seed-maker-go/internal/gamedata"
	"github.com/sdv-tools/seed-maker-go/internal/sdvrng"
)

var testGen = sdvrng.HashedGenerator{}

func defaultContext(t *testing.T) *gamedata.LocationContext {
	t.Helper()
	loc, err := gamedata.Default().LocationContext("Default")
	if err != nil {
		t.Fatal(err)
	}
	return loc
}

func TestCalendarMath(t *testing.T) {
	tests := []struct {
		days   uint32
		season Season
		day    uint32
		year   uint32
	}{
		{1, Spring, 1, 1},
		{28, Spring, 28, 1},
		{29, Summer, 1, 1},
		{56, Summer, 28, 1},
		{57, Fall, 1, 1},
		{85, Winter, 1, 1},
		{112, Winter, 28, 1},
		{113, Spring, 1, 2},
		{224, Winter, 28, 2},
		{225, Spring, 1, 3},
	}
	for _, tt := range tests {
		s := GameState{DaysPlayed: tt.days}
		if got := s.Season(); got != tt.season {
			t.Errorf("day %d: season = %v, want %v", tt.days, got, tt.season)
		}
		if got := s.DayOfMonth(); got != tt.day {
			t.Errorf("day %d: day of month = %d, want %d", tt.days, got, tt.day)
		}
		if got := s.Year(); got != tt.year {
			t.Errorf("day %d: year = %d, want %d", tt.days, got, tt.year)
		}
	}
}

func TestWithDayCopies(t *testing.T) {
	s := GameState{GameID: 5, DaysPlayed: 10, DailyLuck: 0.1}
	next := s.WithDay(20)
	if s.DaysPlayed != 10 {
		t.Fatal("WithDay mutated the receiver")
	}
	if next.DaysPlayed != 20 || next.GameID != 5 || next.DailyLuck != 0.1 {
		t.Fatalf("WithDay = %+v", next)
	}
}

func TestWeatherDeterministic(t *testing.T) {
	loc := defaultContext(t)
	for seed := uint32(0); seed < 50; seed++ {
		for day := uint32(1); day <= 56; day++ {
			s := GameState{GameID: seed * 1000, DaysPlayed: day}
			a := Weather(testGen, loc, s)
			b := Weather(testGen, loc, s)
			if a != b {
				t.Fatalf("seed %d day %d: %+v vs %+v", s.GameID, day, a, b)
			}
		}
	}
}

func TestWeatherOpeningDays(t *testing.T) {
	loc := defaultContext(t)
	for _, seed := range []uint32{0, 1, 999, 123456} {
		for day := uint32(1); day <= 2; day++ {
			if ch := Weather(testGen, loc, GameState{GameID: seed, DaysPlayed: day}); ch.Sun != 1 {
				t.Fatalf("seed %d day %d: %+v, want scripted sun", seed, day, ch)
			}
		}
		if ch := Weather(testGen, loc, GameState{GameID: seed, DaysPlayed: 3}); ch.Rain != 1 {
			t.Fatalf("seed %d day 3: %+v, want scripted rain", seed, ch)
		}
	}
}

func TestWeatherFestivalsPreempt(t *testing.T) {
	loc := defaultContext(t)
	// Spring 13 (egg festival) and Winter 8 (ice festival).
	for _, days := range []uint32{13, 84 + 8} {
		ch := Weather(testGen, loc, GameState{GameID: 77, DaysPlayed: days})
		if ch.Festival != 1 {
			t.Fatalf("day %d: %+v, want festival", days, ch)
		}
		if ch.Rain != 0 || ch.Snow != 0 || ch.Storm != 0 {
			t.Fatalf("day %d: festival day carries other weather: %+v", days, ch)
		}
	}
}

func TestWeatherNoStormsFirstMonth(t *testing.T) {
	loc := defaultContext(t)
	for seed := uint32(0); seed < 500; seed++ {
		for day := uint32(4); day <= 27; day++ {
			ch := Weather(testGen, loc, GameState{GameID: seed, DaysPlayed: day})
			if ch.Storm != 0 {
				t.Fatalf("seed %d day %d: storm chance %v in the first month", seed, day, ch.Storm)
			}
		}
	}
}

func TestWeatherChancesWellFormed(t *testing.T) {
	loc := defaultContext(t)
	for seed := uint32(0); seed < 200; seed++ {
		for day := uint32(1); day <= 112; day++ {
			ch := Weather(testGen, loc, GameState{GameID: seed * 31, DaysPlayed: day})
			for _, v := range []float64{ch.Sun, ch.Rain, ch.Wind, ch.Storm, ch.Snow, ch.Festival, ch.GreenRain} {
				if v < 0 || v > 1 {
					t.Fatalf("seed %d day %d: chance out of range: %+v", seed, day, ch)
				}
			}
			// A locked storm is always also rain.
			if ch.Storm >= 1 && ch.Rain < 1 {
				t.Fatalf("seed %d day %d: storm without rain: %+v", seed, day, ch)
			}
		}
	}
}

func TestWeatherGreenRainOncePerSummer(t *testing.T) {
	loc := defaultContext(t)
	if !loc.AllowGreenRain {
		t.Skip("context does not allow green rain in this dataset")
	}
	for seed := uint32(0); seed < 100; seed++ {
		greenDays := 0
		for day := uint32(29); day <= 56; day++ {
			ch := Weather(testGen, loc, GameState{GameID: seed * 17, DaysPlayed: day})
			if ch.GreenRain == 1 {
				greenDays++
			}
		}
		if greenDays > 1 {
			t.Fatalf("seed %d: %d green rain days in one summer", seed, greenDays)
		}
	}
}

func TestSingleGeodeDeterministic(t *testing.T) {
	data := gamedata.Default()
	geode, err := NewGeode(GeodeOmni, data)
	if err != nil {
		t.Fatal(err)
	}
	for seed := uint32(0); seed < 200; seed++ {
		s := GameState{GameID: seed, GeodesCracked: 1, DeepestMineLevel: 80}
		a, err := SingleGeode(testGen, geode, s)
		if err != nil {
			t.Fatal(err)
		}
		b, err := SingleGeode(testGen, geode, s)
		if err != nil {
			t.Fatal(err)
		}
		if a != b {
			t.Fatalf("seed %d: %+v vs %+v", seed, a, b)
		}
	}
}

func TestSingleGeodeRewardsFromTable(t *testing.T) {
	data := gamedata.Default()
	for _, kind := range []GeodeType{GeodeRegular, GeodeFrozen, GeodeMagma, GeodeOmni} {
		geode, err := NewGeode(kind, data)
		if err != nil {
			t.Fatal(err)
		}
		table, err := data.GeodeTable(string(kind))
		if err != nil {
			t.Fatal(err)
		}
		valid := make(map[gamedata.ItemID]bool)
		for _, id := range table.Treasures {
			valid[id] = true
		}
		for _, id := range table.Ores {
			valid[id] = true
		}
		for seed := uint32(0); seed < 500; seed++ {
			reward, err := SingleGeode(testGen, geode, GameState{
				GameID: seed, GeodesCracked: seed%50 + 1, DeepestMineLevel: 120,
			})
			if err != nil {
				t.Fatal(err)
			}
			if !valid[reward.Item] {
				t.Fatalf("%s seed %d: reward %q not in table", kind, seed, reward.Item)
			}
			switch reward.Quantity {
			case 1, 3, 5, 10, 20:
			default:
				t.Fatalf("%s seed %d: quantity %d", kind, seed, reward.Quantity)
			}
		}
	}
}

func TestTroveOnlyTreasures(t *testing.T) {
	data := gamedata.Default()
	for _, kind := range []GeodeType{GeodeTrove, GeodeCoconut} {
		geode, err := NewGeode(kind, data)
		if err != nil {
			t.Fatal(err)
		}
		table, err := data.GeodeTable(string(kind))
		if err != nil {
			t.Fatal(err)
		}
		treasures := make(map[gamedata.ItemID]bool)
		for _, id := range table.Treasures {
			treasures[id] = true
		}
		for seed := uint32(0); seed < 300; seed++ {
			reward, err := SingleGeode(testGen, geode, GameState{GameID: seed, GeodesCracked: 1})
			if err != nil {
				t.Fatal(err)
			}
			if !treasures[reward.Item] {
				t.Fatalf("%s seed %d: %q is not a treasure", kind, seed, reward.Item)
			}
			if reward.Quantity != 1 {
				t.Fatalf("%s seed %d: quantity %d, want 1", kind, seed, reward.Quantity)
			}
		}
	}
}

func TestShallowMinesLimitOres(t *testing.T) {
	data := gamedata.Default()
	geode, err := NewGeode(GeodeRegular, data)
	if err != nil {
		t.Fatal(err)
	}
	table, err := data.GeodeTable(string(GeodeRegular))
	if err != nil {
		t.Fatal(err)
	}
	if len(table.Ores) <= 3 {
		t.Skip("ore table too short to exercise the limit")
	}
	early := make(map[gamedata.ItemID]bool)
	for _, id := range table.Ores[:3] {
		early[id] = true
	}
	for _, id := range table.Treasures {
		early[id] = true
	}
	for seed := uint32(0); seed < 1000; seed++ {
		reward, err := SingleGeode(testGen, geode, GameState{
			GameID: seed, GeodesCracked: 1, DeepestMineLevel: 0,
		})
		if err != nil {
			t.Fatal(err)
		}
		if !early[reward.Item] {
			t.Fatalf("seed %d: %q requires deeper mine progress", seed, reward.Item)
		}
	}
}

func TestGarbageDeterministicAndMinLuck(t *testing.T) {
	data := gamedata.Default()
	cans, err := AllCans(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(cans) == 0 {
		t.Fatal("no cans")
	}
	for seed := uint32(0); seed < 100; seed++ {
		for i := range cans {
			s := GameState{GameID: seed * 7, DaysPlayed: 10, DailyLuck: 0.05}
			a, luckA, err := Garbage(testGen, &cans[i], s)
			if err != nil {
				t.Fatal(err)
			}
			b, luckB, err := Garbage(testGen, &cans[i], s)
			if err != nil {
				t.Fatal(err)
			}
			if luckA != luckB || (a == nil) != (b == nil) {
				t.Fatalf("can %s seed %d not deterministic", cans[i].Location, seed)
			}
			// minluck is the threshold: the drop happens exactly when the
			// day's luck exceeds it.
			if got := a != nil; got != (s.DailyLuck > luckA) {
				t.Fatalf("can %s seed %d: drop=%v but minluck %v with luck %v",
					cans[i].Location, seed, got, luckA, s.DailyLuck)
			}
		}
	}
}

func TestGarbageDropsFromTable(t *testing.T) {
	data := gamedata.Default()
	cans, err := AllCans(data)
	if err != nil {
		t.Fatal(err)
	}
	for i := range cans {
		valid := make(map[gamedata.ItemID]bool)
		for _, id := range data.GarbageCans[cans[i].Location].Items {
			valid[id] = true
		}
		for seed := uint32(0); seed < 300; seed++ {
			drop, _, err := Garbage(testGen, &cans[i], GameState{
				GameID: seed, DaysPlayed: 15, DailyLuck: 0.1,
			})
			if err != nil {
				t.Fatal(err)
			}
			if drop == nil {
				continue
			}
			if !valid[drop.Item] {
				t.Fatalf("can %s seed %d: drop %q not in table", cans[i].Location, seed, drop.Item)
			}
			if drop.Quantity != 1 && drop.Quantity != 2 {
				t.Fatalf("can %s seed %d: quantity %d", cans[i].Location, seed, drop.Quantity)
			}
			if drop.Item == gamedata.DishOfTheDay && drop.Quantity != 1 {
				t.Fatalf("dish of the day stacked to %d", drop.Quantity)
			}
		}
	}
}

func TestAllCansStableOrder(t *testing.T) {
	data := gamedata.Default()
	first, err := AllCans(data)
	if err != nil {
		t.Fatal(err)
	}
	second, err := AllCans(data)
	if err != nil {
		t.Fatal(err)
	}
	if len(first) != len(second) {
		t.Fatal("can count changed between calls")
	}
	for i := range first {
		if first[i].Location != second[i].Location {
			t.Fatalf("can order unstable: %q vs %q at %d", first[i].Location, second[i].Location, i)
		}
	}
}

func TestNightEventQuietOpening(t *testing.T) {
	for seed := uint32(0); seed < 2000; seed++ {
		for day := uint32(1); day < 5; day++ {
			if ev := NightEventFor(testGen, GameState{GameID: seed, DaysPlayed: day}); ev != EventNone {
				t.Fatalf("seed %d day %d: %s before day 5", seed, day, ev)
			}
		}
	}
}

func TestNightEventDeterministic(t *testing.T) {
	for seed := uint32(0); seed < 500; seed++ {
		s := GameState{GameID: seed, DaysPlayed: 20}
		if a, b := NightEventFor(testGen, s), NightEventFor(testGen, s); a != b {
			t.Fatalf("seed %d: %s vs %s", seed, a, b)
		}
	}
}

func TestNightEventCapsuleNeedsYearTwo(t *testing.T) {
	for seed := uint32(0); seed < 5000; seed++ {
		s := GameState{GameID: seed, DaysPlayed: 50} // year 1
		if ev := NightEventFor(testGen, s); ev == EventStrangeCapsule {
			t.Fatalf("seed %d: strange capsule in year 1", seed)
		}
	}
}

func TestParseNightEvent(t *testing.T) {
	for _, name := range []string{"fairy", "witch", "meteorite", "stone_owl", "strange_capsule"} {
		if _, err := ParseNightEvent(name); err != nil {
			t.Errorf("ParseNightEvent(%q): %v", name, err)
		}
	}
	for _, name := range []string{"none", "", "earthquake", "FAIRY"} {
		if _, err := ParseNightEvent(name); err == nil {
			t.Errorf("ParseNightEvent(%q) accepted", name)
		}
	}
}

func TestParseGeodeType(t *testing.T) {
	for _, name := range []string{"geode", "frozen_geode", "magma_geode", "omni_geode", "trove", "coconut"} {
		if _, err := ParseGeodeType(name); err != nil {
			t.Errorf("ParseGeodeType(%q): %v", name, err)
		}
	}
	if _, err := ParseGeodeType("golden_coconut"); err == nil {
		t.Error("ParseGeodeType accepted unknown kind")
	}
}
