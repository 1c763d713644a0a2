// Package replay feeds recorded tick sequences through a fresh in-memory
// engine. It is the determinism and invariant harness: the same fixture
// must always produce the same beast, and no tick may leave state outside
// its documented bounds.
package replay

import (
	"fmt"

	"github.com/jerryhoward/bytebeast/go-engine/internal/engine"
	"github.com/jerryhoward/bytebeast/go-engine/internal/evolution"
	"github.com/jerryhoward/bytebeast/go-engine/internal/feature"
	"github.com/jerryhoward/bytebeast/go-engine/internal/mood"
)

// #region types

// TickOutcome records one replayed tick.
type TickOutcome struct {
	Tick    int
	Mood    mood.Mood
	Stage   int
	Path    evolution.Path
	Events  []evolution.Event
}

// Result summarizes a replay run.
type Result struct {
	Final    engine.Beast
	Outcomes []TickOutcome
	StageUps int
}

// #endregion types

// #region replay

// Replay runs the fixture through a fresh engine, checking state
// invariants after every tick. Operates entirely in-memory.
func Replay(fix Fixture, cfg engine.Config) (Result, error) {
	start := engine.DefaultBeast(fix.Ticks[0].Sample.Timestamp)
	if fix.StartBeast != nil {
		start = *fix.StartBeast
	}

	eng, err := engine.New(cfg, start)
	if err != nil {
		return Result{}, fmt.Errorf("build engine: %w", err)
	}

	var res Result
	for i, tick := range fix.Ticks {
		tr, err := eng.Tick(tick.Sample, feature.NewActionSet(tick.Actions...))
		if err != nil {
			return Result{}, fmt.Errorf("tick %d: %w", i, err)
		}
		if err := CheckInvariants(tr.Beast); err != nil {
			return Result{}, fmt.Errorf("tick %d: %w", i, err)
		}
		res.Outcomes = append(res.Outcomes, TickOutcome{
			Tick:   i,
			Mood:   tr.Beast.Mood,
			Stage:  tr.Beast.Evolution.Stage,
			Path:   tr.Beast.Evolution.Path,
			Events: tr.Events,
		})
		res.StageUps += len(tr.Events)
	}
	res.Final = eng.Beast()

	for _, exp := range fix.Expected {
		if got := res.Outcomes[exp.Tick].Mood; got != exp.Mood {
			return Result{}, fmt.Errorf("tick %d: expected mood %s, got %s", exp.Tick, exp.Mood, got)
		}
	}
	return res, nil
}

// #endregion replay

// #region invariants

// CheckInvariants verifies the documented bounds on a beast snapshot.
func CheckInvariants(b engine.Beast) error {
	for name, v := range b.Needs.Map() {
		if v < 0 || v > 100 {
			return fmt.Errorf("need %s out of bounds: %f", name, v)
		}
	}
	for name, v := range b.Traits.Map() {
		if v < 0 || v > 1 {
			return fmt.Errorf("trait %s out of bounds: %f", name, v)
		}
	}
	if b.Energy < 0 || b.Energy > 100 {
		return fmt.Errorf("energy out of bounds: %f", b.Energy)
	}
	if !b.Evolution.Path.Valid() {
		return fmt.Errorf("unknown evolution path %q", b.Evolution.Path)
	}
	if b.Evolution.Stage < 1 || b.Evolution.Stage > 4 {
		return fmt.Errorf("stage out of bounds: %d", b.Evolution.Stage)
	}
	if b.Evolution.Progress < 0 {
		return fmt.Errorf("negative progress: %f", b.Evolution.Progress)
	}
	if b.Mood == "" {
		return fmt.Errorf("empty mood")
	}
	return nil
}

// #endregion invariants
