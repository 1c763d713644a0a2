package mood

import (
	"testing"
	"time"

	"github.com/jerryhoward/bytebeast/go-engine/internal/feature"
	"github.com/jerryhoward/bytebeast/go-engine/internal/needs"
	"github.com/jerryhoward/bytebeast/go-engine/internal/rolling"
	"github.com/jerryhoward/bytebeast/go-engine/internal/traits"
)

func baseline() (feature.Sample, needs.Needs, traits.Traits, rolling.Signals, feature.Thresholds, Config) {
	s := feature.Sample{
		Lux:        300,
		TempC:      22,
		Humidity:   50,
		MotionRMSG: 0.05,
		VBat:       3.9,
		Timestamp:  time.Now(),
		Available:  feature.AllFields,
	}
	return s, needs.Default(), traits.Default(), rolling.Signals{}, feature.DefaultThresholds(), DefaultConfig()
}

func TestClassifyPrecedenceHotBeatsHappy(t *testing.T) {
	s, n, tr, sig, th, cfg := baseline()

	// Matches both hot and happy; hot is earlier in the order.
	s.TempC = 32
	s.Lux = 9000

	if got := Classify(s, n, tr, sig, th, cfg); got != MoodHot {
		t.Fatalf("expected hot, got %s", got)
	}
}

func TestClassifyEachRule(t *testing.T) {
	cases := []struct {
		name string
		mod  func(*feature.Sample, *needs.Needs, *rolling.Signals)
		want Mood
	}{
		{"cold", func(s *feature.Sample, _ *needs.Needs, _ *rolling.Signals) {
			s.TempC = 5
		}, MoodCold},
		{"sick_battery", func(s *feature.Sample, _ *needs.Needs, _ *rolling.Signals) {
			s.VBat = 3.35
		}, MoodSick},
		{"sick_sustained_extreme", func(s *feature.Sample, _ *needs.Needs, sig *rolling.Signals) {
			s.Humidity = 95
			sig.ExtremeFor = 15 * time.Minute
		}, MoodSick},
		{"sleepy", func(s *feature.Sample, _ *needs.Needs, sig *rolling.Signals) {
			s.Lux = 5
			s.MotionRMSG = 0.0
			sig.DarkStillFor = 20 * time.Minute
		}, MoodSleepy},
		{"playful_motion", func(s *feature.Sample, _ *needs.Needs, _ *rolling.Signals) {
			s.MotionRMSG = 0.3
		}, MoodPlayful},
		{"playful_shake", func(s *feature.Sample, _ *needs.Needs, _ *rolling.Signals) {
			s.ShakeEvents = 3
		}, MoodPlayful},
		{"happy", func(s *feature.Sample, _ *needs.Needs, _ *rolling.Signals) {
			s.Lux = 9000
		}, MoodHappy},
		{"curious", func(_ *feature.Sample, _ *needs.Needs, sig *rolling.Signals) {
			sig.Novelty = 2
		}, MoodCurious},
		{"bored", func(_ *feature.Sample, _ *needs.Needs, sig *rolling.Signals) {
			sig.DullFor = 30 * time.Minute
		}, MoodBored},
		{"anxious_volatility", func(_ *feature.Sample, _ *needs.Needs, sig *rolling.Signals) {
			sig.Volatility = 25
		}, MoodAnxious},
		{"anxious_deficit", func(_ *feature.Sample, n *needs.Needs, _ *rolling.Signals) {
			n.Hunger = 5
		}, MoodAnxious},
		{"calm_default", func(_ *feature.Sample, _ *needs.Needs, _ *rolling.Signals) {}, MoodCalm},
	}

	for _, tc := range cases {
		s, n, tr, sig, th, cfg := baseline()
		tc.mod(&s, &n, &sig)
		if got := Classify(s, n, tr, sig, th, cfg); got != tc.want {
			t.Fatalf("%s: expected %s, got %s", tc.name, tc.want, got)
		}
	}
}

func TestClassifySparseSampleFallsBackToCalm(t *testing.T) {
	_, n, tr, sig, th, cfg := baseline()

	// A gap sample carries no fields: no rule can evaluate, calm wins.
	if got := Classify(feature.Gap(time.Now()), n, tr, sig, th, cfg); got != MoodCalm {
		t.Fatalf("expected calm for a field-less sample, got %s", got)
	}
}

func TestClassifyOrderIsConfigurable(t *testing.T) {
	s, n, tr, sig, th, cfg := baseline()
	s.TempC = 32
	s.Lux = 9000

	// Reversing happy above hot flips the verdict for the same sample.
	cfg.Order = []Mood{MoodHappy, MoodHot, MoodCalm}
	if got := Classify(s, n, tr, sig, th, cfg); got != MoodHappy {
		t.Fatalf("expected configured order to win, got %s", got)
	}
}

func TestClassifyExplorerLowersCuriousBar(t *testing.T) {
	s, n, tr, sig, th, cfg := baseline()
	sig.Novelty = cfg.NoveltyThreshold * 0.6

	if got := Classify(s, n, tr, sig, th, cfg); got != MoodCalm {
		t.Fatalf("mild novelty should not move a default beast, got %s", got)
	}

	tr.Explorer = 1.0
	if got := Classify(s, n, tr, sig, th, cfg); got != MoodCurious {
		t.Fatalf("a full explorer should read mild novelty as curious, got %s", got)
	}
}

func TestConfigValidate(t *testing.T) {
	if err := DefaultConfig().Validate(); err != nil {
		t.Fatalf("default config should validate: %v", err)
	}

	bad := DefaultConfig()
	bad.Order = []Mood{"grumpy"}
	if err := bad.Validate(); err == nil {
		t.Fatal("unknown rule name should be rejected")
	}

	empty := DefaultConfig()
	empty.Order = nil
	if err := empty.Validate(); err == nil {
		t.Fatal("empty order should be rejected")
	}
}
