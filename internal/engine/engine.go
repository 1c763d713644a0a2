// Package engine ties the per-tick pipeline together: needs, traits,
// rolling accumulators, mood, evolution and energy advance in a fixed
// order, once per arriving sample. The engine is single-threaded and
// deterministic: the same restored snapshot fed the same ordered sequence
// of (sample, actions) pairs always yields the same beast.
package engine

import (
	"errors"
	"fmt"
	"time"

	"github.com/jerryhoward/bytebeast/go-engine/internal/evolution"
	"github.com/jerryhoward/bytebeast/go-engine/internal/feature"
	"github.com/jerryhoward/bytebeast/go-engine/internal/mood"
	"github.com/jerryhoward/bytebeast/go-engine/internal/needs"
	"github.com/jerryhoward/bytebeast/go-engine/internal/rolling"
	"github.com/jerryhoward/bytebeast/go-engine/internal/tasks"
	"github.com/jerryhoward/bytebeast/go-engine/internal/traits"
)

// ErrOutOfOrder is returned when a sample's timestamp precedes the last
// applied tick. The tick is skipped and the beast is unchanged.
var ErrOutOfOrder = errors.New("sample timestamp precedes last applied tick")

// #region beast

// Beast is the externally visible snapshot: everything the rendering and
// persistence collaborators see.
type Beast struct {
	Mood      mood.Mood       `json:"mood"`
	Needs     needs.Needs     `json:"needs"`
	Traits    traits.Traits   `json:"traits"`
	Evolution evolution.State `json:"evolution"`
	Energy    float64         `json:"energy"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// DefaultBeast returns the first-boot beast: a calm hatchling with half-met
// needs, no personality and a full battery of spirit.
func DefaultBeast(now time.Time) Beast {
	return Beast{
		Mood:      mood.MoodCalm,
		Needs:     needs.Default(),
		Traits:    traits.Default(),
		Evolution: evolution.Default(),
		Energy:    100,
		UpdatedAt: now,
	}
}

// #endregion beast

// #region config

// Config composes every stage's tuning plus the engine-level energy rates.
// Loaded once; immutable for the engine's lifetime.
type Config struct {
	Thresholds feature.Thresholds `mapstructure:"thresholds"`
	Needs      needs.Config       `mapstructure:"needs"`
	Traits     traits.Config      `mapstructure:"traits"`
	Mood       mood.Config        `mapstructure:"mood"`
	Evolution  evolution.Config   `mapstructure:"evolution"`
	Rolling    rolling.Config     `mapstructure:"rolling"`
	Tasks      tasks.Config       `mapstructure:"tasks"`

	// Energy drains at BasalEnergyPerHour, three times as fast under
	// motion, and recharges at ChargeEnergyPerHour while charging.
	BasalEnergyPerHour  float64 `mapstructure:"basal_energy_per_hour"`
	ActiveEnergyPerHour float64 `mapstructure:"active_energy_per_hour"`
	ChargeEnergyPerHour float64 `mapstructure:"charge_energy_per_hour"`
}

// DefaultConfig returns the stock engine tuning.
func DefaultConfig() Config {
	return Config{
		Thresholds:          feature.DefaultThresholds(),
		Needs:               needs.DefaultConfig(),
		Traits:              traits.DefaultConfig(),
		Mood:                mood.DefaultConfig(),
		Evolution:           evolution.DefaultConfig(),
		Rolling:             rolling.DefaultConfig(),
		Tasks:               tasks.DefaultConfig(),
		BasalEnergyPerHour:  2,
		ActiveEnergyPerHour: 8,
		ChargeEnergyPerHour: 25,
	}
}

// Validate fails fast on invariant violations anywhere in the composed
// tuning. Configuration errors are operator errors, not runtime
// conditions.
func (c Config) Validate() error {
	if c.Thresholds.TempHotC <= c.Thresholds.TempColdC {
		return fmt.Errorf("hot threshold %f must exceed cold threshold %f",
			c.Thresholds.TempHotC, c.Thresholds.TempColdC)
	}
	if c.Thresholds.LuxBright <= c.Thresholds.LuxDark {
		return fmt.Errorf("bright threshold %f must exceed dark threshold %f",
			c.Thresholds.LuxBright, c.Thresholds.LuxDark)
	}
	if err := c.Mood.Validate(); err != nil {
		return fmt.Errorf("mood: %w", err)
	}
	if err := c.Evolution.Validate(); err != nil {
		return fmt.Errorf("evolution: %w", err)
	}
	if err := c.Rolling.Validate(); err != nil {
		return fmt.Errorf("rolling: %w", err)
	}
	return nil
}

// #endregion config

// #region engine

// Engine owns the beast and its rolling window. Not safe for concurrent
// use: one tick at a time, ticks run to completion.
type Engine struct {
	cfg   Config
	beast Beast
	agg   *rolling.Aggregator
	last  time.Time
}

// New restores an engine from a persisted beast snapshot. The rolling
// window starts cold; only the snapshot itself survives a restart.
func New(cfg Config, beast Beast) (*Engine, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &Engine{
		cfg:   cfg,
		beast: beast,
		agg:   rolling.New(cfg.Rolling, cfg.Thresholds),
		last:  beast.UpdatedAt,
	}, nil
}

// TickResult reports what one tick produced.
type TickResult struct {
	Beast       Beast
	MoodChanged bool
	Events      []evolution.Event
	Elapsed     time.Duration
}

// Tick applies one sample and its accompanying actions. Stages run in a
// fixed order because mood and evolution read needs and trait outputs
// computed earlier in the same tick. Out-of-order samples are rejected
// without touching state.
func (e *Engine) Tick(s feature.Sample, actions feature.ActionSet) (TickResult, error) {
	if !e.last.IsZero() && s.Timestamp.Before(e.last) {
		return TickResult{}, fmt.Errorf("%w: %s < %s", ErrOutOfOrder, s.Timestamp, e.last)
	}
	elapsed := time.Duration(0)
	if !e.last.IsZero() {
		elapsed = s.Timestamp.Sub(e.last)
	}

	prev := e.beast
	next := prev

	next.Needs = needs.Advance(prev.Needs, elapsed, s, actions, e.cfg.Thresholds, e.cfg.Needs)
	next.Traits = traits.Update(prev.Traits, actions, e.cfg.Traits)
	e.agg.Observe(s, actions, elapsed)

	next.Mood = mood.Classify(s, next.Needs, next.Traits, e.agg.Signals(), e.cfg.Thresholds, e.cfg.Mood)

	var events []evolution.Event
	next.Evolution, events = evolution.Advance(prev.Evolution, e.agg.Scores(), e.agg.FreshScores(), next.Traits, s.Timestamp, e.cfg.Evolution)

	next.Energy = e.advanceEnergy(prev.Energy, elapsed, s)
	next.UpdatedAt = s.Timestamp

	e.beast = next
	e.last = s.Timestamp
	return TickResult{
		Beast:       next,
		MoodChanged: next.Mood != prev.Mood,
		Events:      events,
		Elapsed:     elapsed,
	}, nil
}

// Beast returns the current snapshot.
func (e *Engine) Beast() Beast {
	return e.beast
}

// DailyTasks derives the micro-goals for the given day key from the
// current beast. The caller enforces once-per-day via the key.
func (e *Engine) DailyTasks(day string) []tasks.Task {
	return tasks.Generate(day, e.beast.Needs, e.beast.Traits, e.cfg.Tasks)
}

func (e *Engine) advanceEnergy(prev float64, elapsed time.Duration, s feature.Sample) float64 {
	hours := elapsed.Hours()
	if hours < 0 {
		hours = 0
	}
	next := prev
	if s.Available.Has(feature.FieldCharging) && s.Charging {
		next += e.cfg.ChargeEnergyPerHour * hours
	} else if e.cfg.Thresholds.Active(s) {
		next -= e.cfg.ActiveEnergyPerHour * hours
	} else {
		next -= e.cfg.BasalEnergyPerHour * hours
	}
	if next < 0 {
		next = 0
	}
	if next > 100 {
		next = 100
	}
	return next
}

// #endregion engine
