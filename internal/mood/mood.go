// Package mood classifies the beast's current mood from the sample, the
// needs, the traits and the short rolling history. Classification is an
// ordered rule list with first-match-wins semantics; the order is a product
// decision carried in configuration, not derived.
package mood

import (
	"fmt"
	"time"

	"github.com/jerryhoward/bytebeast/go-engine/internal/feature"
	"github.com/jerryhoward/bytebeast/go-engine/internal/needs"
	"github.com/jerryhoward/bytebeast/go-engine/internal/rolling"
	"github.com/jerryhoward/bytebeast/go-engine/internal/traits"
)

// #region mood-type

// Mood is one of the ten fixed beast moods.
type Mood string

const (
	MoodHot     Mood = "hot"
	MoodCold    Mood = "cold"
	MoodSick    Mood = "sick"
	MoodSleepy  Mood = "sleepy"
	MoodPlayful Mood = "playful"
	MoodHappy   Mood = "happy"
	MoodCurious Mood = "curious"
	MoodBored   Mood = "bored"
	MoodAnxious Mood = "anxious"
	MoodCalm    Mood = "calm"
)

// DefaultOrder is the stock rule precedence. Earlier wins.
var DefaultOrder = []Mood{
	MoodHot, MoodCold, MoodSick, MoodSleepy, MoodPlayful,
	MoodHappy, MoodCurious, MoodBored, MoodAnxious, MoodCalm,
}

// Emoji returns the display glyph for a mood.
func (m Mood) Emoji() string {
	if e, ok := emojis[m]; ok {
		return e
	}
	return "?"
}

var emojis = map[Mood]string{
	MoodHot:     "🥵",
	MoodCold:    "🥶",
	MoodSick:    "🤒",
	MoodSleepy:  "😴",
	MoodPlayful: "🤸",
	MoodHappy:   "😊",
	MoodCurious: "🧐",
	MoodBored:   "🥱",
	MoodAnxious: "😰",
	MoodCalm:    "😌",
}

// #endregion mood-type

// #region config

// Config tunes the rule thresholds and carries the precedence order.
type Config struct {
	// Order lists the rules in evaluation order. calm matches always, so
	// anything after it is unreachable.
	Order []Mood `mapstructure:"order"`
	// SustainedFor is the N in the "sustained >= N minutes" rules.
	SustainedFor time.Duration `mapstructure:"sustained_for"`
	// LowNeed is the satisfaction level under which any need reads as a
	// deficit for the anxious rule.
	LowNeed float64 `mapstructure:"low_need"`
	// NoveltyThreshold gates the curious rule; an explorer trait near 1
	// halves the bar.
	NoveltyThreshold float64 `mapstructure:"novelty_threshold"`
	// VolatilityThreshold gates the anxious rule.
	VolatilityThreshold float64 `mapstructure:"volatility_threshold"`
}

// DefaultConfig returns the stock thresholds and the fixed default order.
func DefaultConfig() Config {
	return Config{
		Order:               append([]Mood(nil), DefaultOrder...),
		SustainedFor:        10 * time.Minute,
		LowNeed:             20,
		NoveltyThreshold:    0.9,
		VolatilityThreshold: 10,
	}
}

// Validate rejects unknown rule names and empty orders.
func (c Config) Validate() error {
	if len(c.Order) == 0 {
		return fmt.Errorf("rule order is empty")
	}
	for _, m := range c.Order {
		if _, ok := rules[m]; !ok {
			return fmt.Errorf("unknown mood rule %q", m)
		}
	}
	if c.SustainedFor <= 0 {
		return fmt.Errorf("sustained_for must be positive, got %s", c.SustainedFor)
	}
	return nil
}

// #endregion config

// #region classify

type input struct {
	s   feature.Sample
	n   needs.Needs
	tr  traits.Traits
	sig rolling.Signals
	th  feature.Thresholds
	cfg Config
}

// rules maps each mood to its predicate. Evaluation order lives in
// Config.Order, not here.
var rules = map[Mood]func(input) bool{
	MoodHot:  func(in input) bool { return in.th.Hot(in.s) },
	MoodCold: func(in input) bool { return in.th.Cold(in.s) },
	MoodSick: func(in input) bool {
		return in.th.BatterySick(in.s) || in.sig.ExtremeFor >= in.cfg.SustainedFor
	},
	MoodSleepy: func(in input) bool {
		return in.sig.DarkStillFor >= in.cfg.SustainedFor
	},
	MoodPlayful: func(in input) bool {
		return in.th.ShakeBurst(in.s) || in.th.Active(in.s)
	},
	MoodHappy: func(in input) bool {
		return in.th.Bright(in.s) && in.th.Comfortable(in.s)
	},
	MoodCurious: func(in input) bool {
		// A born explorer needs less novelty to light up.
		bar := in.cfg.NoveltyThreshold * (1 - 0.5*in.tr.Explorer)
		return in.sig.Novelty >= bar
	},
	MoodBored: func(in input) bool {
		return in.sig.DullFor >= in.cfg.SustainedFor
	},
	MoodAnxious: func(in input) bool {
		return in.sig.Volatility >= in.cfg.VolatilityThreshold || in.n.Min() < in.cfg.LowNeed
	},
	MoodCalm: func(input) bool { return true },
}

// Classify returns exactly one mood. Pure and total: the first rule in the
// configured order whose predicate matches wins, and calm backstops a
// sample too sparse to match anything else.
func Classify(s feature.Sample, n needs.Needs, tr traits.Traits, sig rolling.Signals, th feature.Thresholds, cfg Config) Mood {
	in := input{s: s, n: n, tr: tr, sig: sig, th: th, cfg: cfg}
	for _, m := range cfg.Order {
		if rule, ok := rules[m]; ok && rule(in) {
			return m
		}
	}
	return MoodCalm
}

// #endregion classify
