package factory

import (
	"time"

	"github.com/seedytypey/raceserver/internal/dependencies/mocks"
	"github.com/seedytypey/raceserver/internal/services/race"
	"github.com/seedytypey/raceserver/internal/storage/memory"
	"github.com/seedytypey/raceserver/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked
// dependencies and short race timings
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	raceCfg := race.Config{
		CountdownTicks: 3,
		TickInterval:   5 * time.Millisecond,
		RaceTimeLimit:  60 * time.Second,
		MinPlayers:     2,
	}

	app := newWithDependencies(store, mockClock, mockRandom, raceCfg, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}

// LoadTestQuotes loads a small quote list for testing
func (t *TestApp) LoadTestQuotes() error {
	return t.QuoteService.LoadQuotes([]string{
		"the quick brown fox jumps over the lazy dog",
		"pack my box with five dozen liquor jugs",
	})
}
