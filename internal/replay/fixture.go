package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"time"

	"github.com/jerryhoward/bytebeast/go-engine/internal/engine"
	"github.com/jerryhoward/bytebeast/go-engine/internal/feature"
	"github.com/jerryhoward/bytebeast/go-engine/internal/mood"
)

// #region fixture-types

// Fixture is the top-level JSON structure for a recorded tick sequence.
type Fixture struct {
	Description string `json:"description"`
	// StartBeast is the restored snapshot; zero value means a cold start at
	// the first tick's timestamp.
	StartBeast *engine.Beast `json:"start_beast,omitempty"`
	Ticks      []FixtureTick `json:"ticks"`
	// Expected pins per-tick moods for regression fixtures; empty means
	// the fixture only checks invariants and determinism.
	Expected []FixtureExpectation `json:"expected,omitempty"`
}

// FixtureTick is one recorded (sample, actions) pair.
type FixtureTick struct {
	Sample  feature.Sample       `json:"sample"`
	Actions []feature.ActionKind `json:"actions,omitempty"`
}

// FixtureExpectation pins the mood after a given tick index.
type FixtureExpectation struct {
	Tick int       `json:"tick"`
	Mood mood.Mood `json:"mood"`
}

// #endregion fixture-types

// #region load

// LoadFixture reads and validates a fixture file. Timestamps must be
// non-decreasing; the engine would reject anything else tick by tick, and
// a fixture carrying such a sequence is a recording bug worth failing on
// up front.
func LoadFixture(path string) (Fixture, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Fixture{}, fmt.Errorf("read fixture: %w", err)
	}

	var fix Fixture
	if err := json.Unmarshal(data, &fix); err != nil {
		return Fixture{}, fmt.Errorf("parse fixture: %w", err)
	}

	if len(fix.Ticks) == 0 {
		return Fixture{}, fmt.Errorf("fixture has no ticks")
	}
	var last time.Time
	for i, tick := range fix.Ticks {
		if tick.Sample.Timestamp.IsZero() {
			return Fixture{}, fmt.Errorf("tick %d has no timestamp", i)
		}
		if tick.Sample.Timestamp.Before(last) {
			return Fixture{}, fmt.Errorf("tick %d timestamp regresses", i)
		}
		last = tick.Sample.Timestamp
		for _, k := range tick.Actions {
			if !knownAction(k) {
				return Fixture{}, fmt.Errorf("tick %d: unknown action %q", i, k)
			}
		}
	}
	for _, exp := range fix.Expected {
		if exp.Tick < 0 || exp.Tick >= len(fix.Ticks) {
			return Fixture{}, fmt.Errorf("expectation references tick %d of %d", exp.Tick, len(fix.Ticks))
		}
	}
	return fix, nil
}

func knownAction(k feature.ActionKind) bool {
	for _, known := range feature.KnownActions {
		if k == known {
			return true
		}
	}
	return false
}

// #endregion load
