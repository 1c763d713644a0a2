package rolling

import (
	"testing"
	"time"

	"github.com/jerryhoward/bytebeast/go-engine/internal/evolution"
	"github.com/jerryhoward/bytebeast/go-engine/internal/feature"
)

func sunSample(ts time.Time) feature.Sample {
	return feature.Sample{
		Lux:        9000,
		TempC:      22,
		MotionRMSG: 0.25,
		Timestamp:  ts,
		Available:  feature.AllFields,
	}
}

func TestObserveAccumulatesQualifyingMinutes(t *testing.T) {
	a := New(DefaultConfig(), feature.DefaultThresholds())
	start := time.Now()

	for i := 0; i < 60; i++ {
		a.Observe(sunSample(start.Add(time.Duration(i)*time.Minute)), nil, time.Minute)
	}

	scores := a.Scores()
	if scores[evolution.PathSun] < 50 {
		t.Fatalf("an hour of sun should accumulate close to 60 minutes, got %f", scores[evolution.PathSun])
	}
	if scores[evolution.PathEmber] != 0 || scores[evolution.PathFrost] != 0 {
		t.Fatalf("non-qualifying paths should stay at zero: %+v", scores)
	}
	// Without encounters lone accrues at its fractional rate.
	if scores[evolution.PathLone] <= 0 || scores[evolution.PathLone] >= scores[evolution.PathSun] {
		t.Fatalf("lone should trail sun: %+v", scores)
	}
}

func TestObserveDecayAgesOutOldExposure(t *testing.T) {
	cfg := DefaultConfig()
	a := New(cfg, feature.DefaultThresholds())
	start := time.Now()

	for i := 0; i < 60; i++ {
		a.Observe(sunSample(start.Add(time.Duration(i)*time.Minute)), nil, time.Minute)
	}
	before := a.Scores()[evolution.PathSun]

	// Two full windows of darkness: the old sun time must decay to ~0.
	dark := sunSample(start)
	dark.Lux = 0
	dark.MotionRMSG = 0
	steps := int(2 * cfg.Window / time.Hour)
	for i := 0; i < steps; i++ {
		dark.Timestamp = start.Add(time.Hour + time.Duration(i)*time.Hour)
		a.Observe(dark, nil, time.Hour)
	}

	after := a.Scores()[evolution.PathSun]
	if after > before/100 {
		t.Fatalf("stale exposure should age out: %f -> %f", before, after)
	}
}

func TestObserveGapContributionIsBounded(t *testing.T) {
	cfg := DefaultConfig()
	a := New(cfg, feature.DefaultThresholds())
	now := time.Now()

	// One tick spanning six hours credits at most MaxTickMinutes anywhere.
	a.Observe(sunSample(now), nil, 6*time.Hour)
	if got := a.Scores()[evolution.PathSun]; got > cfg.MaxTickMinutes {
		t.Fatalf("single sample dominated the window: %f minutes", got)
	}
}

func TestObserveSocialFromActions(t *testing.T) {
	a := New(DefaultConfig(), feature.DefaultThresholds())
	now := time.Now()

	meet := feature.NewActionSet(feature.ActionPeerEncounter)
	for i := 0; i < 30; i++ {
		a.Observe(sunSample(now.Add(time.Duration(i)*time.Minute)), meet, time.Minute)
	}

	scores := a.Scores()
	if scores[evolution.PathSocial] <= 0 {
		t.Fatal("encounters should feed the social path")
	}
	if scores[evolution.PathLone] != 0 {
		t.Fatalf("lone should not accrue while encounters fire, got %f", scores[evolution.PathLone])
	}
}

func TestFreshScoresReflectLatestTickOnly(t *testing.T) {
	a := New(DefaultConfig(), feature.DefaultThresholds())
	now := time.Now()

	a.Observe(sunSample(now), nil, time.Minute)
	if got := a.FreshScores()[evolution.PathSun]; got != 1 {
		t.Fatalf("a sunny minute should credit sun with one fresh minute, got %f", got)
	}

	hot := sunSample(now.Add(time.Minute))
	hot.TempC = 45
	a.Observe(hot, nil, time.Minute)

	fresh := a.FreshScores()
	if fresh[evolution.PathSun] != 0 {
		t.Fatalf("earlier sun must not linger in the fresh credit, got %f", fresh[evolution.PathSun])
	}
	if fresh[evolution.PathEmber] != 1 {
		t.Fatalf("the hot minute should credit ember, got %f", fresh[evolution.PathEmber])
	}
	// The decayed window still remembers the earlier exposure.
	if a.Scores()[evolution.PathSun] <= 0 {
		t.Fatal("window scores should keep the earlier sun time")
	}
}

func TestPressureInstabilityFeedsExtremityAndVolatility(t *testing.T) {
	a := New(DefaultConfig(), feature.DefaultThresholds())
	now := time.Now()

	s := sunSample(now)
	s.Humidity = 50
	s.PressureTrend = 5 // well past the stable band

	for i := 0; i < 12; i++ {
		s.Timestamp = now.Add(time.Duration(i) * time.Minute)
		a.Observe(s, nil, time.Minute)
	}

	sig := a.Signals()
	if sig.ExtremeFor < 10*time.Minute {
		t.Fatalf("an unstable pressure trend should count as sustained extremity, got %s", sig.ExtremeFor)
	}
	if sig.Volatility < 10 {
		t.Fatalf("an unstable pressure trend should raise volatility, got %f", sig.Volatility)
	}

	// A settled trend ends the run.
	s.PressureTrend = 0
	s.Timestamp = now.Add(12 * time.Minute)
	a.Observe(s, nil, time.Minute)
	if a.Signals().ExtremeFor != 0 {
		t.Fatalf("a settled trend should reset the extremity run, got %s", a.Signals().ExtremeFor)
	}
}

func TestNoveltyPulseOnNewBuckets(t *testing.T) {
	a := New(DefaultConfig(), feature.DefaultThresholds())
	now := time.Now()

	s := sunSample(now)
	s.Fingerprint = "net-a"
	a.Observe(s, nil, time.Minute)

	first := a.Signals().Novelty
	if first <= 0 {
		t.Fatal("first sight of a fingerprint should pulse novelty")
	}

	// The same environment again: familiar, pulse only decays.
	s.Timestamp = now.Add(time.Minute)
	a.Observe(s, nil, time.Minute)
	if a.Signals().Novelty >= first {
		t.Fatalf("repeat environment should not pulse: %f >= %f", a.Signals().Novelty, first)
	}

	// A new fingerprint pulses again.
	s.Fingerprint = "net-b"
	s.Timestamp = now.Add(2 * time.Minute)
	a.Observe(s, nil, time.Minute)
	if a.Signals().Novelty <= first/2 {
		t.Fatal("new fingerprint should pulse novelty again")
	}
}

func TestSustainedRunsResetOnGap(t *testing.T) {
	a := New(DefaultConfig(), feature.DefaultThresholds())
	now := time.Now()

	dark := sunSample(now)
	dark.Lux = 5
	dark.MotionRMSG = 0

	for i := 0; i < 30; i++ {
		dark.Timestamp = now.Add(time.Duration(i) * time.Minute)
		a.Observe(dark, nil, time.Minute)
	}
	if a.Signals().DarkStillFor < 29*time.Minute {
		t.Fatalf("dark-still run should span the half hour, got %s", a.Signals().DarkStillFor)
	}

	// A sensor gap cannot vouch for darkness; the run restarts.
	a.Observe(feature.Gap(now.Add(31*time.Minute)), nil, time.Minute)
	if a.Signals().DarkStillFor != 0 {
		t.Fatalf("gap should reset sustained runs, got %s", a.Signals().DarkStillFor)
	}
}

func TestVolatilityTracksSwings(t *testing.T) {
	a := New(DefaultConfig(), feature.DefaultThresholds())
	now := time.Now()

	s := sunSample(now)
	for i := 0; i < 10; i++ {
		// Alternate between two very different rooms.
		if i%2 == 0 {
			s.TempC, s.Lux = 18, 100
		} else {
			s.TempC, s.Lux = 30, 8000
		}
		s.Timestamp = now.Add(time.Duration(i) * time.Minute)
		a.Observe(s, nil, time.Minute)
	}
	swingy := a.Signals().Volatility

	b := New(DefaultConfig(), feature.DefaultThresholds())
	q := sunSample(now)
	for i := 0; i < 10; i++ {
		q.Timestamp = now.Add(time.Duration(i) * time.Minute)
		b.Observe(q, nil, time.Minute)
	}
	steady := b.Signals().Volatility

	if swingy <= steady {
		t.Fatalf("alternating rooms should read more volatile: %f <= %f", swingy, steady)
	}
}
