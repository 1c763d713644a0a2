package engine

import (
	"testing"
	"time"

	"github.com/jerryhoward/bytebeast/go-engine/internal/evolution"
	"github.com/jerryhoward/bytebeast/go-engine/internal/feature"
	"github.com/jerryhoward/bytebeast/go-engine/internal/mood"
)

func sunSample(ts time.Time) feature.Sample {
	return feature.Sample{
		Lux:        9000,
		TempC:      22,
		Humidity:   50,
		MotionRMSG: 0.25,
		VBat:       3.9,
		Timestamp:  ts,
		Available:  feature.AllFields,
	}
}

func newEngine(t *testing.T, start time.Time) *Engine {
	t.Helper()
	e, err := New(DefaultConfig(), DefaultBeast(start))
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return e
}

func TestTickRejectsOutOfOrderSample(t *testing.T) {
	start := time.Now()
	e := newEngine(t, start)

	if _, err := e.Tick(sunSample(start.Add(time.Minute)), nil); err != nil {
		t.Fatalf("in-order tick failed: %v", err)
	}
	before := e.Beast()

	_, err := e.Tick(sunSample(start), nil)
	if err == nil {
		t.Fatal("out-of-order sample should be rejected")
	}
	if e.Beast() != before {
		t.Fatal("rejected tick must not touch state")
	}
}

func TestTickEqualTimestampAccepted(t *testing.T) {
	start := time.Now()
	e := newEngine(t, start)

	ts := start.Add(time.Minute)
	if _, err := e.Tick(sunSample(ts), nil); err != nil {
		t.Fatalf("first tick: %v", err)
	}
	// Non-decreasing, not strictly increasing: a same-stamp tick is legal
	// and advances nothing time-based.
	if _, err := e.Tick(sunSample(ts), nil); err != nil {
		t.Fatalf("same-timestamp tick should be accepted: %v", err)
	}
}

func TestTickDeterministicReplay(t *testing.T) {
	start := time.Unix(1700000000, 0).UTC()

	runOnce := func() Beast {
		e := newEngine(t, start)
		for i := 0; i < 500; i++ {
			s := sunSample(start.Add(time.Duration(i+1) * time.Minute))
			var acts feature.ActionSet
			if i%50 == 0 {
				acts = feature.NewActionSet(feature.ActionPeerEncounter)
			}
			if i%2 == 1 {
				s.Lux = 50
				s.MotionRMSG = 0.0
			}
			if _, err := e.Tick(s, acts); err != nil {
				t.Fatalf("tick %d: %v", i, err)
			}
		}
		return e.Beast()
	}

	if a, b := runOnce(), runOnce(); a != b {
		t.Fatalf("same sequence produced different beasts:\n%+v\n%+v", a, b)
	}
}

func TestTickGapSampleKeepsDecaying(t *testing.T) {
	start := time.Now()
	e := newEngine(t, start)

	if _, err := e.Tick(sunSample(start.Add(time.Minute)), nil); err != nil {
		t.Fatalf("first tick: %v", err)
	}
	before := e.Beast().Needs

	res, err := e.Tick(feature.Gap(start.Add(3*time.Hour)), nil)
	if err != nil {
		t.Fatalf("gap tick: %v", err)
	}
	if res.Beast.Needs.Social >= before.Social {
		t.Fatal("needs should keep drifting across a sensor gap")
	}
	if res.Beast.Mood != mood.MoodCalm && res.Beast.Mood != mood.MoodAnxious {
		t.Fatalf("a field-less sample should read calm (or anxious on deficit), got %s", res.Beast.Mood)
	}
}

func TestTickFortyEightHoursOfSun(t *testing.T) {
	start := time.Unix(1700000000, 0).UTC()
	e := newEngine(t, start)

	for i := 0; i < 48*60; i++ {
		s := sunSample(start.Add(time.Duration(i+1) * time.Minute))
		res, err := e.Tick(s, nil)
		if err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
		if res.Beast.Mood == mood.MoodSleepy {
			t.Fatalf("bright active beast read sleepy at tick %d", i)
		}
	}

	b := e.Beast()
	if b.Evolution.Path != evolution.PathSun {
		t.Fatalf("48h of sun should select the sun path, got %s", b.Evolution.Path)
	}
	if b.Evolution.Stage < 2 {
		t.Fatalf("48h of sun should reach at least stage 2, got %d", b.Evolution.Stage)
	}
	if b.Mood != mood.MoodPlayful && b.Mood != mood.MoodHappy {
		t.Fatalf("expected happy or playful in the sun, got %s", b.Mood)
	}
}

func TestTickSpikeDoesNotFlipPath(t *testing.T) {
	start := time.Unix(1700000000, 0).UTC()
	e := newEngine(t, start)

	for i := 0; i < 48*60; i++ {
		if _, err := e.Tick(sunSample(start.Add(time.Duration(i+1)*time.Minute)), nil); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	if e.Beast().Evolution.Path != evolution.PathSun {
		t.Fatalf("expected sun before the spike, got %s", e.Beast().Evolution.Path)
	}

	// One scorching tick amid two days of sun.
	hot := sunSample(start.Add(48*time.Hour + time.Minute))
	hot.TempC = 45
	if _, err := e.Tick(hot, nil); err != nil {
		t.Fatalf("spike tick: %v", err)
	}

	if got := e.Beast().Evolution.Path; got != evolution.PathSun {
		t.Fatalf("a one-tick ember spike flipped the path to %s", got)
	}
}

func TestTickSustainedHeatSwitchesPath(t *testing.T) {
	start := time.Unix(1700000000, 0).UTC()
	e := newEngine(t, start)

	for i := 0; i < 48*60; i++ {
		if _, err := e.Tick(sunSample(start.Add(time.Duration(i+1)*time.Minute)), nil); err != nil {
			t.Fatalf("tick %d: %v", i, err)
		}
	}
	if e.Beast().Evolution.Path != evolution.PathSun {
		t.Fatalf("expected sun before the heat, got %s", e.Beast().Evolution.Path)
	}

	// Two days of banked sun exposure must not delay the switch: one dwell
	// window plus one tick of sustained heat flips the path.
	for i := 0; i < 6*60+1; i++ {
		hot := sunSample(start.Add(48*time.Hour + time.Duration(i+1)*time.Minute))
		hot.TempC = 45
		if _, err := e.Tick(hot, nil); err != nil {
			t.Fatalf("hot tick %d: %v", i, err)
		}
	}

	ev := e.Beast().Evolution
	if ev.Path != evolution.PathEmber {
		t.Fatalf("sustained heat for the dwell window should switch to ember, still %s", ev.Path)
	}
	if ev.Stage != 1 {
		t.Fatalf("switch should restart at stage 1, got %d", ev.Stage)
	}
	if ev.Progress != 0 {
		t.Fatalf("switch should reset progress, got %f", ev.Progress)
	}
}

func TestTickEnergyChargesAndDrains(t *testing.T) {
	start := time.Now()
	e := newEngine(t, start)

	// Active beast off the charger drains energy.
	if _, err := e.Tick(sunSample(start.Add(time.Hour)), nil); err != nil {
		t.Fatalf("tick: %v", err)
	}
	drained := e.Beast().Energy
	if drained >= 100 {
		t.Fatalf("active hour should drain energy, got %f", drained)
	}

	charging := sunSample(start.Add(2 * time.Hour))
	charging.Charging = true
	if _, err := e.Tick(charging, nil); err != nil {
		t.Fatalf("tick: %v", err)
	}
	if e.Beast().Energy <= drained {
		t.Fatalf("charging hour should recover energy: %f -> %f", drained, e.Beast().Energy)
	}
}

func TestDailyTasksTargetDeficits(t *testing.T) {
	start := time.Unix(1700000000, 0).UTC()
	e := newEngine(t, start)

	// A long untended gap drags needs down into deficit territory.
	if _, err := e.Tick(feature.Gap(start.Add(40*time.Hour)), nil); err != nil {
		t.Fatalf("gap tick: %v", err)
	}

	list := e.DailyTasks("2026-08-29")
	if len(list) == 0 {
		t.Fatal("deficient beast should get tasks")
	}
	for _, task := range list {
		if task.Day != "2026-08-29" {
			t.Fatalf("task carries wrong day key %q", task.Day)
		}
	}
}

func TestNewRejectsBadConfig(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Thresholds.TempHotC = 5 // below cold bound

	if _, err := New(cfg, DefaultBeast(time.Now())); err == nil {
		t.Fatal("inverted temperature thresholds should fail fast")
	}
}
