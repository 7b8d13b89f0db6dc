package predict

import (
	"fmt"

	"github.com/sdv-tools/seed-maker-go/internal/sdvrng"
)

// NightEvent enumerates the overnight farm events.
type NightEvent string

// Night events accepted in configuration. None is only ever an outcome.
const (
	EventNone           NightEvent = "none"
	EventFairy          NightEvent = "fairy"
	EventWitch          NightEvent = "witch"
	EventMeteorite      NightEvent = "meteorite"
	EventStoneOwl       NightEvent = "stone_owl"
	EventStrangeCapsule NightEvent = "strange_capsule"
)

// ParseNightEvent validates a night event name from configuration.
func ParseNightEvent(s string) (NightEvent, error) {
	switch NightEvent(s) {
	case EventFairy, EventWitch, EventMeteorite, EventStoneOwl, EventStrangeCapsule:
		return NightEvent(s), nil
	}
	return "", fmt.Errorf("unknown night event %q", s)
}

// NightEventFor predicts which event, if any, happens during the night
// following the state's day. The roll happens after the day ends, so the
// generator is keyed on the next day.
func NightEventFor(g sdvrng.Generator, s GameState) NightEvent {
	rng := g.New(int64(s.DaysPlayed)+1, int64(s.GameID)/2)

	// Nothing spawns during the opening stretch.
	if s.DaysPlayed < 5 {
		return EventNone
	}

	switch {
	case rng.NextDouble() < 0.01:
		return EventFairy
	case rng.NextDouble() < 0.008:
		return EventWitch
	case rng.NextDouble() < 0.01:
		return EventMeteorite
	case rng.NextDouble() < 0.0005:
		return EventStoneOwl
	case s.Year() > 1 && rng.NextDouble() < 0.008:
		return EventStrangeCapsule
	}
	return EventNone
}
