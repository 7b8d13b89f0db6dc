package predict

import (
	"github.com/sdv-tools/seed-maker-go/internal/gamedata"
	"github.com/sdv-tools/seed-maker-go/internal/sdvrng"
)

// WeatherChances holds the per-condition probability for one day. A value
// of 1 means the condition is locked in; a fractional value means the
// condition is still subject to a later roll (storms upgrade from rain).
type WeatherChances struct {
	Sun       float64
	Rain      float64
	Wind      float64
	Storm     float64
	Snow      float64
	Festival  float64
	GreenRain float64
}

// festivalDays maps season to the festival days of that month.
var festivalDays = map[Season][]uint32{
	Spring: {13, 24},
	Summer: {11, 28},
	Fall:   {16, 27},
	Winter: {8, 25},
}

func isFestival(season Season, day uint32) bool {
	for _, d := range festivalDays[season] {
		if d == day {
			return true
		}
	}
	return false
}

// Weather predicts the weather for the state's day in the given location
// context.
func Weather(g sdvrng.Generator, loc *gamedata.LocationContext, s GameState) WeatherChances {
	season := s.Season()
	day := s.DayOfMonth()

	// Festivals preempt everything else.
	if isFestival(season, day) {
		return WeatherChances{Festival: 1}
	}

	// The opening days are scripted: sun, sun, rain.
	if s.DaysPlayed <= 2 {
		return WeatherChances{Sun: 1}
	}
	if s.DaysPlayed == 3 {
		return WeatherChances{Rain: 1, Storm: loc.StormChance}
	}

	// Green rain claims one summer day per year, rolled once per year.
	if loc.AllowGreenRain && season == Summer {
		yearRNG := g.New(int64(s.Year())*777, int64(s.GameID))
		greenDay := uint32(yearRNG.NextRange(5, 21))
		if day == greenDay {
			return WeatherChances{GreenRain: 1, Rain: 1}
		}
	}

	rng := g.New(int64(s.DaysPlayed), int64(s.GameID)/2, locationSalt(loc))
	roll := rng.NextDouble()

	if snow := loc.SnowChance[season]; snow > 0 && roll < snow {
		return WeatherChances{Snow: 1}
	}

	if rain := loc.RainChance[season]; rain > 0 && roll < rain {
		ch := WeatherChances{Rain: 1}
		stormRoll := rng.NextDouble()
		switch {
		case loc.StormChance <= 0 || s.DaysPlayed <= 27:
			// No storms in the first month.
		case stormRoll < loc.StormChance:
			ch.Storm = 1
		default:
			ch.Storm = loc.StormChance
		}
		return ch
	}

	// Windy days show up in spring and fall.
	if (season == Spring || season == Fall) && rng.NextDouble() < 0.18 {
		return WeatherChances{Wind: 1}
	}
	return WeatherChances{Sun: 1}
}

// locationSalt keeps distinct contexts on distinct RNG streams.
func locationSalt(loc *gamedata.LocationContext) int64 {
	var salt int64 = 7
	for _, c := range loc.RainChance {
		salt = salt*31 + int64(c*1000)
	}
	if loc.AllowGreenRain {
		salt++
	}
	return salt
}
