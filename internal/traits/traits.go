// Package traits maintains the beast's slow-moving personality axes. Each
// trait is an exponential moving average in [0,1]: a matching action pulls
// it toward 1, every other tick decays it toward 0.
package traits

import (
	"github.com/jerryhoward/bytebeast/go-engine/internal/feature"
)

// #region traits-type

// Traits holds the five personality axes.
type Traits struct {
	Playful    float64 `json:"playful"`
	Needy      float64 `json:"needy"`
	Rebellious float64 `json:"rebellious"`
	Social     float64 `json:"social"`
	Explorer   float64 `json:"explorer"`
}

// Default returns the first-boot traits. A hatchling starts with no
// personality at all; everything is learned.
func Default() Traits {
	return Traits{}
}

// Map returns the axes keyed by trait name, for serialization and display.
func (t Traits) Map() map[string]float64 {
	return map[string]float64{
		"playful":    t.Playful,
		"needy":      t.Needy,
		"rebellious": t.Rebellious,
		"social":     t.Social,
		"explorer":   t.Explorer,
	}
}

// #endregion traits-type

// #region config

// Config holds the EMA gains. Alpha is the pull applied by a matching
// action, DuelAlpha the weaker pull a duel applies to the social axis, and
// DecayPerTick the per-tick fade applied to every axis no action touched.
type Config struct {
	Alpha        float64 `mapstructure:"alpha"`
	DuelAlpha    float64 `mapstructure:"duel_alpha"`
	DecayPerTick float64 `mapstructure:"decay_per_tick"`
}

// DefaultConfig returns the stock EMA gains.
func DefaultConfig() Config {
	return Config{
		Alpha:        0.05,
		DuelAlpha:    0.02,
		DecayPerTick: 0.0005,
	}
}

// #endregion config

// #region update

// Update applies one tick of trait movement. Every axis either receives the
// pull of a matching action or the idle decay, never both. Pure: the caller
// persists the result.
func Update(prev Traits, actions feature.ActionSet, cfg Config) Traits {
	next := Traits{
		Playful:    step(prev.Playful, actions.Has(feature.ActionActiveMiniGame), cfg.Alpha, cfg.DecayPerTick),
		Needy:      step(prev.Needy, actions.Has(feature.ActionMissedCareWindow), cfg.Alpha, cfg.DecayPerTick),
		Rebellious: step(prev.Rebellious, actions.Has(feature.ActionRepeatedNeglect), cfg.Alpha, cfg.DecayPerTick),
		Explorer:   step(prev.Explorer, actions.Has(feature.ActionPlaceNovelty), cfg.Alpha, cfg.DecayPerTick),
	}

	// Social answers to two action kinds with different gains; an encounter
	// wins over a duel when both fire in one tick.
	switch {
	case actions.Has(feature.ActionPeerEncounter):
		next.Social = pull(prev.Social, cfg.Alpha)
	case actions.Has(feature.ActionDuelResult):
		next.Social = pull(prev.Social, cfg.DuelAlpha)
	default:
		next.Social = decay(prev.Social, cfg.DecayPerTick)
	}
	return next
}

func step(v float64, fired bool, alpha, decayRate float64) float64 {
	if fired {
		return pull(v, alpha)
	}
	return decay(v, decayRate)
}

// pull moves v toward 1 by factor alpha. With v in [0,1] and alpha in [0,1]
// the result stays in [0,1] without clamping.
func pull(v, alpha float64) float64 {
	return v*(1-alpha) + alpha
}

func decay(v, rate float64) float64 {
	return v * (1 - rate)
}

// #endregion update
