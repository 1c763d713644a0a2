// Package needs advances the beast's four care needs. Values are
// satisfaction levels in [0,100]: high means the need is met, low means a
// deficit. Drift is piecewise-linear in elapsed time; the clamp is the only
// nonlinearity.
package needs

import (
	"time"

	"github.com/jerryhoward/bytebeast/go-engine/internal/feature"
)

// #region needs-type

// Needs holds the four care levels.
type Needs struct {
	Hunger  float64 `json:"hunger"`
	Rest    float64 `json:"rest"`
	Social  float64 `json:"social"`
	Hygiene float64 `json:"hygiene"`
}

// Default returns the first-boot needs.
func Default() Needs {
	return Needs{Hunger: 50, Rest: 50, Social: 50, Hygiene: 50}
}

// Min returns the lowest of the four levels.
func (n Needs) Min() float64 {
	min := n.Hunger
	for _, v := range []float64{n.Rest, n.Social, n.Hygiene} {
		if v < min {
			min = v
		}
	}
	return min
}

// Map returns the levels keyed by need name, for serialization and display.
func (n Needs) Map() map[string]float64 {
	return map[string]float64{
		"hunger":  n.Hunger,
		"rest":    n.Rest,
		"social":  n.Social,
		"hygiene": n.Hygiene,
	}
}

// #endregion needs-type

// #region config

// Config holds per-need drift and recovery rates, all per hour of elapsed
// time.
type Config struct {
	HungerPerHour  float64 `mapstructure:"hunger_per_hour"`
	RestPerHour    float64 `mapstructure:"rest_per_hour"`
	SocialPerHour  float64 `mapstructure:"social_per_hour"`
	HygienePerHour float64 `mapstructure:"hygiene_per_hour"`

	// ActivityHungerFactor scales hunger drift while motion is active.
	ActivityHungerFactor float64 `mapstructure:"activity_hunger_factor"`
	// RichEnvHungerFactor scales hunger drift in bright, comfortable
	// surroundings.
	RichEnvHungerFactor float64 `mapstructure:"rich_env_hunger_factor"`
	// BrightRestFactor and ActivityRestFactor scale rest drift under light
	// and motion.
	BrightRestFactor   float64 `mapstructure:"bright_rest_factor"`
	ActivityRestFactor float64 `mapstructure:"activity_rest_factor"`

	RestRecoverPerHour    float64 `mapstructure:"rest_recover_per_hour"`
	HygieneRecoverPerHour float64 `mapstructure:"hygiene_recover_per_hour"`
	ExtremeHygienePerHour float64 `mapstructure:"extreme_hygiene_per_hour"`

	// EncounterSocialBoost is added once per tick when a peer encounter
	// action fires.
	EncounterSocialBoost float64 `mapstructure:"encounter_social_boost"`
}

// DefaultConfig returns the stock drift rates.
func DefaultConfig() Config {
	return Config{
		HungerPerHour:         2.0,
		RestPerHour:           1.5,
		SocialPerHour:         1.2,
		HygienePerHour:        0.4,
		ActivityHungerFactor:  1.5,
		RichEnvHungerFactor:   0.5,
		BrightRestFactor:      1.2,
		ActivityRestFactor:    1.3,
		RestRecoverPerHour:    6.0,
		HygieneRecoverPerHour: 2.0,
		ExtremeHygienePerHour: 4.0,
		EncounterSocialBoost:  25,
	}
}

// #endregion config

// #region advance

// Advance computes the next needs from the previous needs, the elapsed time
// since the last applied tick, the current sample, and this tick's actions.
// Pure: the caller persists the result. Unavailable sample fields contribute
// nothing; drift over elapsed time always applies.
func Advance(prev Needs, elapsed time.Duration, s feature.Sample, actions feature.ActionSet, th feature.Thresholds, cfg Config) Needs {
	hours := elapsed.Hours()
	if hours < 0 {
		hours = 0
	}
	next := prev

	// Hunger: activity burns it faster, a rich environment slows the drift.
	hungerRate := cfg.HungerPerHour
	if th.Active(s) {
		hungerRate *= cfg.ActivityHungerFactor
	}
	if th.Bright(s) && th.Comfortable(s) {
		hungerRate *= cfg.RichEnvHungerFactor
	}
	next.Hunger -= hungerRate * hours

	// Rest: drains under light and motion, recovers in dark, still rooms.
	restRate := cfg.RestPerHour
	if th.Bright(s) {
		restRate *= cfg.BrightRestFactor
	}
	if th.Active(s) {
		restRate *= cfg.ActivityRestFactor
	}
	next.Rest -= restRate * hours
	if th.Dark(s) && th.Still(s) {
		next.Rest += cfg.RestRecoverPerHour * hours
	}

	// Social: monotone drain, reset upward by encounters.
	next.Social -= cfg.SocialPerHour * hours
	if actions.Encounter() {
		next.Social += cfg.EncounterSocialBoost
	}

	// Hygiene: extremes wear it down, comfort restores it.
	if th.Hot(s) || th.Cold(s) || th.HumidityExtreme(s) || th.BatterySick(s) {
		next.Hygiene -= cfg.ExtremeHygienePerHour * hours
	} else {
		next.Hygiene -= cfg.HygienePerHour * hours
		if th.Comfortable(s) && s.Available.Has(feature.FieldHumidity) &&
			s.Humidity > 40 && s.Humidity < 70 {
			next.Hygiene += cfg.HygieneRecoverPerHour * hours
		}
	}

	return clampAll(next)
}

// #endregion advance

// #region clamp

func clampAll(n Needs) Needs {
	n.Hunger = clamp(n.Hunger)
	n.Rest = clamp(n.Rest)
	n.Social = clamp(n.Social)
	n.Hygiene = clamp(n.Hygiene)
	return n
}

func clamp(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 100 {
		return 100
	}
	return v
}

// #endregion clamp
