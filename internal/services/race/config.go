package race

import "time"

// Config holds race pacing settings
type Config struct {
	// CountdownTicks is the value the countdown starts from
	CountdownTicks int
	// TickInterval is the delay between countdown ticks
	TickInterval time.Duration
	// RaceTimeLimit force-finishes a race that has run this long
	RaceTimeLimit time.Duration
	// MinPlayers is the minimum roster size for a race to start
	MinPlayers int
}

// DefaultConfig returns the standard race pacing
func DefaultConfig() Config {
	return Config{
		CountdownTicks: 5,
		TickInterval:   time.Second,
		RaceTimeLimit:  60 * time.Second,
		MinPlayers:     2,
	}
}
