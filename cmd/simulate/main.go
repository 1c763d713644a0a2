// simulate fabricates environment scenarios, runs them through a fresh
// engine and prints what kind of beast they produce. Useful for tuning
// thresholds and evolution weights without hardware.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"math"
	"os"
	"time"

	"github.com/jerryhoward/bytebeast/go-engine/internal/engine"
	"github.com/jerryhoward/bytebeast/go-engine/internal/feature"
	"github.com/jerryhoward/bytebeast/go-engine/internal/replay"
)

// #region main

func main() {
	scenario := flag.String("scenario", "day", "scenario: sun, shadow, ember, frost, social, day")
	hours := flag.Int("hours", 48, "simulated duration in hours")
	interval := flag.Duration("interval", time.Minute, "tick interval")
	out := flag.String("out", "", "also write the generated fixture to this path")
	flag.Parse()

	fix, err := build(*scenario, *hours, *interval)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(2)
	}

	if *out != "" {
		data, err := json.MarshalIndent(fix, "", "  ")
		if err != nil {
			fmt.Fprintf(os.Stderr, "marshal: %v\n", err)
			os.Exit(1)
		}
		if err := os.WriteFile(*out, data, 0o644); err != nil {
			fmt.Fprintf(os.Stderr, "write: %v\n", err)
			os.Exit(1)
		}
	}

	res, err := replay.Replay(fix, engine.DefaultConfig())
	if err != nil {
		fmt.Fprintf(os.Stderr, "simulation failed: %v\n", err)
		os.Exit(1)
	}

	b := res.Final
	fmt.Printf("scenario %q, %dh at %s per tick:\n", *scenario, *hours, *interval)
	fmt.Printf("  mood %s %s, path %s stage %d (progress %.2f), %d stage-ups\n",
		b.Mood, b.Mood.Emoji(), b.Evolution.Path, b.Evolution.Stage, b.Evolution.Progress, res.StageUps)
	fmt.Printf("  needs hunger=%.0f rest=%.0f social=%.0f hygiene=%.0f, energy %.0f\n",
		b.Needs.Hunger, b.Needs.Rest, b.Needs.Social, b.Needs.Hygiene, b.Energy)
}

// #endregion main

// #region scenarios

func build(scenario string, hours int, interval time.Duration) (replay.Fixture, error) {
	if hours <= 0 || interval <= 0 {
		return replay.Fixture{}, fmt.Errorf("hours and interval must be positive")
	}
	ticks := int(time.Duration(hours) * time.Hour / interval)
	start := time.Unix(1700000000, 0).UTC()

	fix := replay.Fixture{Description: fmt.Sprintf("synthetic %s scenario", scenario)}
	for i := 0; i < ticks; i++ {
		ts := start.Add(time.Duration(i) * interval)
		var tick replay.FixtureTick
		switch scenario {
		case "sun":
			tick.Sample = envSample(ts, 9000, 22, 0.25)
		case "shadow":
			tick.Sample = envSample(ts, 20, 18, 0.01)
		case "ember":
			tick.Sample = envSample(ts, 2000, 34, 0.05)
		case "frost":
			tick.Sample = envSample(ts, 2000, 4, 0.05)
		case "social":
			tick.Sample = envSample(ts, 800, 21, 0.1)
			if i%15 == 0 {
				tick.Actions = []feature.ActionKind{feature.ActionPeerEncounter}
			}
		case "day":
			tick.Sample = daylight(ts, start, i)
		default:
			return replay.Fixture{}, fmt.Errorf("unknown scenario %q", scenario)
		}
		fix.Ticks = append(fix.Ticks, tick)
	}
	return fix, nil
}

func envSample(ts time.Time, lux, temp, motion float64) feature.Sample {
	return feature.Sample{
		Lux:        lux,
		CCTKelvin:  4500,
		TempC:      temp,
		Humidity:   50,
		MotionRMSG: motion,
		VBat:       3.9,
		Timestamp:  ts,
		Available:  feature.AllFields,
	}
}

// daylight sweeps light and activity through a plausible home day.
func daylight(ts, start time.Time, i int) feature.Sample {
	hour := ts.Sub(start).Hours()
	phase := math.Mod(hour, 24) / 24 * 2 * math.Pi
	lux := 4500 * (1 - math.Cos(phase)) // dark at day boundaries, bright midday
	motion := 0.05
	if lux > 3000 {
		motion = 0.22
	}
	s := envSample(ts, lux, 19+4*math.Sin(phase), motion)
	s.CCTKelvin = 3000 + lux/4
	return s
}

// #endregion scenarios
