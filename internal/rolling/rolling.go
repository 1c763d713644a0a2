// Package rolling maintains the time-decayed accumulators behind evolution
// scoring and the short-horizon signals behind the sustained mood rules.
// Exponential decay stands in for a hard sliding window so no per-sample
// history has to be stored; data older than the window horizon contributes
// effectively nothing. The aggregator is in-memory only: after a restart
// the window starts cold.
package rolling

import (
	"fmt"
	"math"
	"time"

	"github.com/jerryhoward/bytebeast/go-engine/internal/evolution"
	"github.com/jerryhoward/bytebeast/go-engine/internal/feature"
)

// #region config

// Config tunes the window and novelty horizons.
type Config struct {
	// Window is the evolution scoring horizon. Accumulator half-life is a
	// quarter of it, so qualifying time ages out smoothly.
	Window time.Duration `mapstructure:"window"`
	// BucketHalfLife is how long a seen fingerprint/heading/color bucket
	// stays familiar.
	BucketHalfLife time.Duration `mapstructure:"bucket_half_life"`
	// NoveltyHalfLife is the decay of the novelty pulse the curious rule
	// reads.
	NoveltyHalfLife time.Duration `mapstructure:"novelty_half_life"`
	// MaxTickMinutes bounds one sample's contribution to any accumulator,
	// so a gap tick spanning hours cannot dominate the window.
	MaxTickMinutes float64 `mapstructure:"max_tick_minutes"`
	// LoneFactor is the fraction of tick time credited to the lone path
	// when no peer contact occurs.
	LoneFactor float64 `mapstructure:"lone_factor"`

	HeadingSectorDeg float64 `mapstructure:"heading_sector_deg"`
	CCTBandKelvin    float64 `mapstructure:"cct_band_kelvin"`
	// BucketEpsilon is the familiarity weight under which a bucket counts
	// as new again.
	BucketEpsilon float64 `mapstructure:"bucket_epsilon"`
}

// DefaultConfig returns the stock horizons.
func DefaultConfig() Config {
	return Config{
		Window:           48 * time.Hour,
		BucketHalfLife:   12 * time.Hour,
		NoveltyHalfLife:  30 * time.Minute,
		MaxTickMinutes:   5,
		LoneFactor:       0.5,
		HeadingSectorDeg: 45,
		CCTBandKelvin:    1000,
		BucketEpsilon:    0.05,
	}
}

// Validate rejects horizons the decay math cannot work with.
func (c Config) Validate() error {
	if c.Window <= 0 {
		return fmt.Errorf("window must be positive, got %s", c.Window)
	}
	if c.BucketHalfLife <= 0 || c.NoveltyHalfLife <= 0 {
		return fmt.Errorf("half-lives must be positive")
	}
	if c.MaxTickMinutes <= 0 {
		return fmt.Errorf("max_tick_minutes must be positive, got %f", c.MaxTickMinutes)
	}
	if c.HeadingSectorDeg <= 0 || c.CCTBandKelvin <= 0 {
		return fmt.Errorf("novelty bucket sizes must be positive")
	}
	return nil
}

// #endregion config

// #region signals

// Signals are the short-horizon observations the mood rules consult in
// addition to the instantaneous sample.
type Signals struct {
	// Novelty is the decayed pulse of newly seen environment buckets.
	Novelty float64
	// Volatility is the decayed magnitude of recent reading swings.
	Volatility float64
	// ExtremeFor is how long temperature/humidity/pressure extremity has
	// held without interruption.
	ExtremeFor time.Duration
	// DarkStillFor is how long dark-and-still has held.
	DarkStillFor time.Duration
	// DullFor is how long low motion with no novelty has held.
	DullFor time.Duration
}

// #endregion signals

// #region aggregator

// Aggregator holds the decaying accumulators. Not safe for concurrent use;
// the engine is its only writer.
type Aggregator struct {
	cfg Config
	th  feature.Thresholds

	minutes map[evolution.Path]float64
	fresh   map[evolution.Path]float64
	buckets map[string]float64

	novelty    float64
	volatility float64

	extremeRun   time.Duration
	darkStillRun time.Duration
	dullRun      time.Duration

	haveLast  bool
	lastTemp  float64
	lastLux   float64
	lastAvail feature.FieldSet
}

// New returns an empty aggregator. The window starts cold.
func New(cfg Config, th feature.Thresholds) *Aggregator {
	return &Aggregator{
		cfg:     cfg,
		th:      th,
		minutes: make(map[evolution.Path]float64, len(evolution.Paths)),
		buckets: make(map[string]float64),
	}
}

// Observe folds one tick into the accumulators. elapsed is the time since
// the previously applied tick; contribution is capped at MaxTickMinutes but
// decay always uses the full elapsed span, so long gaps age the window out
// instead of freezing it.
func (a *Aggregator) Observe(s feature.Sample, actions feature.ActionSet, elapsed time.Duration) {
	if elapsed < 0 {
		elapsed = 0
	}
	credit := elapsed.Minutes()
	if credit > a.cfg.MaxTickMinutes {
		credit = a.cfg.MaxTickMinutes
	}

	a.fresh = make(map[evolution.Path]float64, len(evolution.Paths))
	a.fresh[evolution.PathSun] = qualify(a.sunQualifies(s), credit)
	a.fresh[evolution.PathShadow] = qualify(a.th.Dark(s) && a.th.Still(s), credit)
	a.fresh[evolution.PathEmber] = qualify(a.th.Hot(s), credit)
	a.fresh[evolution.PathFrost] = qualify(a.th.Cold(s), credit)
	if actions.Encounter() {
		a.fresh[evolution.PathSocial] = credit
	} else {
		a.fresh[evolution.PathLone] = a.cfg.LoneFactor * credit
	}

	pathDecay := halfLifeDecay(elapsed, a.cfg.Window/4)
	for _, p := range evolution.Paths {
		a.minutes[p] = a.minutes[p]*pathDecay + a.fresh[p]
	}

	fresh := a.observeBuckets(s, elapsed)
	a.observeVolatility(s, elapsed)
	a.observeRuns(s, fresh, elapsed)
}

// Scores returns the current per-path qualifying minutes.
func (a *Aggregator) Scores() map[evolution.Path]float64 {
	out := make(map[evolution.Path]float64, len(a.minutes))
	for p, v := range a.minutes {
		out[p] = v
	}
	return out
}

// FreshScores returns the credit each path earned on the latest tick alone.
// Path candidacy reads these, so a challenger that starts dominating shows
// up immediately, long before the decayed window average moves.
func (a *Aggregator) FreshScores() map[evolution.Path]float64 {
	out := make(map[evolution.Path]float64, len(a.fresh))
	for p, v := range a.fresh {
		out[p] = v
	}
	return out
}

// Signals returns the short-horizon mood inputs.
func (a *Aggregator) Signals() Signals {
	return Signals{
		Novelty:      a.novelty,
		Volatility:   a.volatility,
		ExtremeFor:   a.extremeRun,
		DarkStillFor: a.darkStillRun,
		DullFor:      a.dullRun,
	}
}

// #endregion aggregator

// #region qualifiers

// sunQualifies requires bright light, a comfortable-to-warm temperature and
// real movement at once.
func (a *Aggregator) sunQualifies(s feature.Sample) bool {
	if !a.th.Bright(s) || !a.th.Active(s) {
		return false
	}
	if !s.Available.Has(feature.FieldTemp) {
		return false
	}
	return s.TempC > a.th.TempColdC+a.th.ComfortMarginC && s.TempC < a.th.TempHotC
}

func qualify(ok bool, credit float64) float64 {
	if ok {
		return credit
	}
	return 0
}

// #endregion qualifiers

// #region novelty

// observeBuckets decays bucket familiarity, registers this sample's
// buckets, and reports whether any of them was new. A new bucket fires a
// bounded novelty pulse.
func (a *Aggregator) observeBuckets(s feature.Sample, elapsed time.Duration) bool {
	decay := halfLifeDecay(elapsed, a.cfg.BucketHalfLife)
	for k, w := range a.buckets {
		w *= decay
		if w < a.cfg.BucketEpsilon/4 {
			delete(a.buckets, k)
		} else {
			a.buckets[k] = w
		}
	}
	a.novelty *= halfLifeDecay(elapsed, a.cfg.NoveltyHalfLife)

	fresh := false
	for _, k := range bucketKeys(s, a.cfg) {
		if a.buckets[k] < a.cfg.BucketEpsilon {
			fresh = true
			a.novelty += 1
		}
		a.buckets[k] = 1
	}
	return fresh
}

func bucketKeys(s feature.Sample, cfg Config) []string {
	var keys []string
	if s.Available.Has(feature.FieldFingerprint) && s.Fingerprint != "" {
		keys = append(keys, "fp:"+s.Fingerprint)
	}
	if s.Available.Has(feature.FieldHeading) {
		sector := int(math.Mod(math.Mod(s.HeadingDeg, 360)+360, 360) / cfg.HeadingSectorDeg)
		keys = append(keys, fmt.Sprintf("hd:%d", sector))
	}
	if s.Available.Has(feature.FieldCCT) {
		keys = append(keys, fmt.Sprintf("cct:%d", int(s.CCTKelvin/cfg.CCTBandKelvin)))
	}
	return keys
}

// #endregion novelty

// #region short-horizon

// observeVolatility folds the swing between consecutive readings into a
// decaying magnitude. Temperature swings are measured in degrees, light
// swings in units of 500 lux; an unstable pressure trend contributes its
// own magnitude in hPa/h.
func (a *Aggregator) observeVolatility(s feature.Sample, elapsed time.Duration) {
	a.volatility *= halfLifeDecay(elapsed, a.cfg.NoveltyHalfLife)
	if a.haveLast {
		if a.lastAvail.Has(feature.FieldTemp) && s.Available.Has(feature.FieldTemp) {
			a.volatility += math.Abs(s.TempC - a.lastTemp)
		}
		if a.lastAvail.Has(feature.FieldLux) && s.Available.Has(feature.FieldLux) {
			a.volatility += math.Abs(s.Lux-a.lastLux) / 500
		}
	}
	if a.th.PressureVolatile(s) {
		a.volatility += math.Abs(s.PressureTrend)
	}
	a.lastTemp, a.lastLux, a.lastAvail = s.TempC, s.Lux, s.Available
	a.haveLast = true
}

// observeRuns extends or resets the sustained-condition clocks. A gap
// sample carries no fields, so every run resets: sustained conditions
// cannot be claimed across missing data.
func (a *Aggregator) observeRuns(s feature.Sample, fresh bool, elapsed time.Duration) {
	a.extremeRun = run(a.extremeRun, elapsed,
		a.th.Hot(s) || a.th.Cold(s) || a.th.HumidityExtreme(s) || a.th.PressureVolatile(s))

	a.darkStillRun = run(a.darkStillRun, elapsed, a.th.Dark(s) && a.th.Still(s))

	lowMotion := s.Available.Has(feature.FieldMotion) && s.MotionRMSG < a.th.MotionActiveG
	a.dullRun = run(a.dullRun, elapsed, lowMotion && !fresh)
}

func run(cur, elapsed time.Duration, holds bool) time.Duration {
	if !holds {
		return 0
	}
	next := cur + elapsed
	if next > 24*time.Hour {
		next = 24 * time.Hour
	}
	return next
}

func halfLifeDecay(elapsed, halfLife time.Duration) float64 {
	if halfLife <= 0 {
		return 0
	}
	return math.Exp2(-elapsed.Seconds() / halfLife.Seconds())
}

// #endregion short-horizon
