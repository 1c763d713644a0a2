// Package evolution advances the beast along one of six environmental
// paths. Candidacy follows the per-tick qualifying credit, so a challenger
// that starts dominating is visible immediately, but a switch still takes a
// full dwell window of sustained dominance; progress follows the weighted
// argmax over long-window exposure scores. A short spike therefore never
// flips a beast that has lived in one environment for days, while a real
// change of environment wins exactly one dwell window after it begins.
package evolution

import (
	"fmt"
	"math"
	"time"

	"github.com/jerryhoward/bytebeast/go-engine/internal/traits"
)

// #region path

// Path names an evolution track.
type Path string

const (
	PathNone   Path = "none"
	PathSun    Path = "sun"
	PathShadow Path = "shadow"
	PathEmber  Path = "ember"
	PathFrost  Path = "frost"
	PathSocial Path = "social"
	PathLone   Path = "lone"
)

// Paths lists the real tracks in tie-break priority order. When two
// weighted scores and their affinity traits are both equal, the earlier
// path wins, so selection is deterministic.
var Paths = []Path{PathSun, PathShadow, PathEmber, PathFrost, PathSocial, PathLone}

// Valid reports whether p is a known path, including none.
func (p Path) Valid() bool {
	if p == PathNone {
		return true
	}
	for _, q := range Paths {
		if p == q {
			return true
		}
	}
	return false
}

// affinity returns the trait axis that flavors a path, used only to break
// exact score ties.
func affinity(p Path, tr traits.Traits) float64 {
	switch p {
	case PathSun:
		return tr.Playful
	case PathShadow:
		return tr.Needy
	case PathEmber:
		return tr.Rebellious
	case PathFrost:
		return tr.Explorer
	case PathSocial:
		return tr.Social
	case PathLone:
		return 1 - tr.Social
	}
	return 0
}

// #endregion path

// #region state

// State is the persisted evolution bookkeeping. Candidate, CandidateSince
// and LastSwitch survive restarts so the dwell window keeps counting across
// a reboot.
type State struct {
	Path     Path    `json:"path"`
	Stage    int     `json:"stage"`
	Progress float64 `json:"progress"`

	LastSwitch     time.Time `json:"last_switch,omitempty"`
	Candidate      Path      `json:"candidate,omitempty"`
	CandidateSince time.Time `json:"candidate_since,omitempty"`
}

// Default returns the first-boot evolution state.
func Default() State {
	return State{Path: PathNone, Stage: 1}
}

// Event records a stage-up and the ability it unlocks.
type Event struct {
	Path    Path      `json:"path"`
	Stage   int       `json:"stage"`
	Ability string    `json:"ability"`
	At      time.Time `json:"at"`
}

// #endregion state

// #region config

// Config holds the selection and progress tuning.
type Config struct {
	// Weights scale each path's raw exposure score before the argmax.
	Weights map[Path]float64 `mapstructure:"weights"`
	// MinScore is the weighted long-window score below which no leader is
	// named, so progress never accrues on noise.
	MinScore float64 `mapstructure:"min_score"`
	// DwellWindow is how long a challenger must out-earn every other path
	// tick by tick, and how long since the previous switch, before the
	// beast switches to it.
	DwellWindow time.Duration `mapstructure:"dwell_window"`
	// ProgressRate and ProgressScale shape the saturating per-tick gain
	// rate*tanh(lead/scale). Rate is sized for ten-second ticks.
	ProgressRate  float64 `mapstructure:"progress_rate"`
	ProgressScale float64 `mapstructure:"progress_scale"`
	// StageGoal is the progress level that triggers a stage-up.
	StageGoal float64 `mapstructure:"stage_goal"`
	MaxStage  int     `mapstructure:"max_stage"`
}

// DefaultConfig returns the stock tuning.
func DefaultConfig() Config {
	return Config{
		Weights: map[Path]float64{
			PathSun:    1.0,
			PathShadow: 1.0,
			PathEmber:  1.1,
			PathFrost:  1.1,
			PathSocial: 1.0,
			PathLone:   0.8,
		},
		MinScore:      5.0,
		DwellWindow:   6 * time.Hour,
		ProgressRate:  0.0006,
		ProgressScale: 120,
		StageGoal:     1.0,
		MaxStage:      4,
	}
}

// Validate rejects tunings the advance step cannot work with.
func (c Config) Validate() error {
	if c.ProgressScale <= 0 {
		return fmt.Errorf("progress_scale must be positive, got %f", c.ProgressScale)
	}
	if c.StageGoal <= 0 {
		return fmt.Errorf("stage_goal must be positive, got %f", c.StageGoal)
	}
	if c.MaxStage < 1 {
		return fmt.Errorf("max_stage must be at least 1, got %d", c.MaxStage)
	}
	if c.DwellWindow <= 0 {
		return fmt.Errorf("dwell_window must be positive, got %s", c.DwellWindow)
	}
	for _, p := range Paths {
		if _, ok := c.Weights[p]; !ok {
			return fmt.Errorf("missing weight for path %s", p)
		}
	}
	return nil
}

// #endregion config

// #region advance

// Advance applies one tick of path selection and progress. scores carries
// the long-window exposure per path and drives progress; fresh carries the
// credit each path earned on this tick alone and drives candidacy, so a
// challenger that dominates from some moment on switches exactly one dwell
// window later no matter how much history the incumbent has banked. tr
// breaks exact ties; now is the tick timestamp. Stage never decreases on
// the same path; a path switch restarts at stage 1. Pure: the caller
// persists the state and logs the events.
func Advance(prev State, scores, fresh map[Path]float64, tr traits.Traits, now time.Time, cfg Config) (State, []Event) {
	next := prev
	challenger := freshLeader(fresh, tr, cfg)

	switch {
	case challenger == PathNone, challenger == prev.Path:
		// Nothing qualifies right now, or the incumbent still earns its
		// keep; drop any candidacy.
		next.Candidate = PathNone
		next.CandidateSince = time.Time{}
	case challenger != prev.Candidate:
		// A different challenger took over; the dwell clock restarts.
		next.Candidate = challenger
		next.CandidateSince = now
	case now.Sub(prev.CandidateSince) >= cfg.DwellWindow &&
		(prev.LastSwitch.IsZero() || now.Sub(prev.LastSwitch) >= cfg.DwellWindow):
		// The challenger out-earned the incumbent for the whole window and
		// the previous switch is old enough.
		next.Path = challenger
		next.Stage = 1
		next.Progress = 0
		next.LastSwitch = now
		next.Candidate = PathNone
		next.CandidateSince = time.Time{}
	}

	leader, lead := pick(scores, tr, cfg)
	var events []Event
	if next.Path != PathNone && next.Path == leader {
		next.Progress += cfg.ProgressRate * math.Tanh(max0(lead)/cfg.ProgressScale)
		for next.Progress >= cfg.StageGoal && next.Stage < cfg.MaxStage {
			next.Progress -= cfg.StageGoal
			next.Stage++
			events = append(events, Event{
				Path:    next.Path,
				Stage:   next.Stage,
				Ability: abilityFor(next.Path, next.Stage),
				At:      now,
			})
		}
		// Terminal stage: progress saturates at the goal.
		if next.Stage >= cfg.MaxStage && next.Progress > cfg.StageGoal {
			next.Progress = cfg.StageGoal
		}
	}
	return next, events
}

// pick returns the weighted argmax path and its lead over the runner-up.
// Exact score ties fall to the higher affinity trait, then to the fixed
// priority order. PathNone when no weighted score reaches MinScore.
func pick(scores map[Path]float64, tr traits.Traits, cfg Config) (Path, float64) {
	best := PathNone
	bestScore, secondScore := math.Inf(-1), math.Inf(-1)
	for _, p := range Paths {
		w := cfg.Weights[p] * scores[p]
		switch {
		case w > bestScore || (w == bestScore && affinity(p, tr) > affinity(best, tr)):
			secondScore = bestScore
			best, bestScore = p, w
		case w > secondScore:
			secondScore = w
		}
	}
	if bestScore < cfg.MinScore {
		return PathNone, 0
	}
	return best, bestScore - secondScore
}

// freshLeader returns the path that earned the most weighted credit on the
// latest tick, or none when nothing earned anything. Ties break like pick.
func freshLeader(fresh map[Path]float64, tr traits.Traits, cfg Config) Path {
	best := PathNone
	bestScore := 0.0
	for _, p := range Paths {
		w := cfg.Weights[p] * fresh[p]
		if w > bestScore || (w == bestScore && w > 0 && affinity(p, tr) > affinity(best, tr)) {
			best, bestScore = p, w
		}
	}
	return best
}

func max0(v float64) float64 {
	if v < 0 {
		return 0
	}
	return v
}

// #endregion advance

// #region abilities

// abilityFor names the ability unlocked at a given path stage. Stage 1 is
// the hatchling form and unlocks nothing.
func abilityFor(p Path, stage int) string {
	names, ok := abilities[p]
	if !ok || stage < 2 || stage-2 >= len(names) {
		return ""
	}
	return names[stage-2]
}

var abilities = map[Path][]string{
	PathSun:    {"solar_flare", "dawn_chorus", "radiance"},
	PathShadow: {"night_sight", "silent_step", "umbra_veil"},
	PathEmber:  {"heat_shield", "cinder_dash", "wildfire"},
	PathFrost:  {"frost_armor", "glacier_grip", "whiteout"},
	PathSocial: {"pack_call", "rally_cry", "chorus_bond"},
	PathLone:   {"keen_focus", "long_watch", "still_mind"},
}

// #endregion abilities
