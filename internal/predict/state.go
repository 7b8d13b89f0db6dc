// Package predict implements the deterministic outcome functions: given a
// seed generator variant and a game state snapshot, compute what the game
// would do. Every function here is pure; the same inputs always produce the
// same outcome, which is what lets the search engine partition the seed
// space freely.
package predict

// GameState is the snapshot of inputs a prediction needs. It is a plain
// value; derive variations by copying, never by mutating a shared instance.
type GameState struct {
	// GameID is the world seed under evaluation.
	GameID uint32

	// MultiplayerID is the <UniqueMultiplayerID> from the save. Only geode
	// prediction consumes it.
	MultiplayerID int64

	// DaysPlayed starts at 1 on Spring 1, Year 1 and never resets.
	DaysPlayed uint32

	// DailyLuck is the day's luck in [-0.1, 0.1].
	DailyLuck float64

	// GeodesCracked is the geode counter after the increment the game
	// applies before rolling contents, so the first geode is 1.
	GeodesCracked uint32

	// DeepestMineLevel is the deepest elevator floor reached.
	DeepestMineLevel uint32
}

// WithDay returns a copy of the state with the day substituted.
func (s GameState) WithDay(day uint32) GameState {
	s.DaysPlayed = day
	return s
}

// Season is a season index.
type Season int

// Seasons in calendar order.
const (
	Spring Season = iota
	Summer
	Fall
	Winter
)

func (s Season) String() string {
	switch s {
	case Spring:
		return "Spring"
	case Summer:
		return "Summer"
	case Fall:
		return "Fall"
	case Winter:
		return "Winter"
	}
	return "Unknown"
}

// Season returns the season DaysPlayed falls in.
func (s GameState) Season() Season {
	if s.DaysPlayed == 0 {
		return Spring
	}
	return Season(((s.DaysPlayed - 1) / 28) % 4)
}

// DayOfMonth returns the 1-based day within the month.
func (s GameState) DayOfMonth() uint32 {
	if s.DaysPlayed == 0 {
		return 0
	}
	return (s.DaysPlayed-1)%28 + 1
}

// Year returns the 1-based year.
func (s GameState) Year() uint32 {
	if s.DaysPlayed == 0 {
		return 1
	}
	return (s.DaysPlayed-1)/112 + 1
}
