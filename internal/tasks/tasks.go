// Package tasks derives the beast's daily micro-goals from its current
// need deficits. Tasks are ephemeral: they live for one day and are never
// part of the persisted beast snapshot.
package tasks

import (
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	"github.com/jerryhoward/bytebeast/go-engine/internal/needs"
	"github.com/jerryhoward/bytebeast/go-engine/internal/traits"
)

// #region task

// Task is one daily micro-goal with a literal completion target.
type Task struct {
	ID          string `json:"id"`
	Day         string `json:"day"`
	Need        string `json:"need"`
	Description string `json:"description"`
	// Metric names the quantity the completion check counts; Target is the
	// amount that completes the task.
	Metric string  `json:"metric"`
	Target float64 `json:"target"`
}

// DayKey formats the idempotence key for a day boundary. The store refuses
// a second generation under the same key.
func DayKey(t time.Time) string {
	return t.Format("2006-01-02")
}

// #endregion task

// #region config

// Config tunes deficit detection and target sizing.
type Config struct {
	// DeficitThreshold is the satisfaction level under which a need earns
	// a task.
	DeficitThreshold float64 `mapstructure:"deficit_threshold"`
	// MinutesPerDeficitPoint sizes minute-based targets from the deficit.
	MinutesPerDeficitPoint float64 `mapstructure:"minutes_per_deficit_point"`
	// PlayfulTraitBar adds a bonus play task above this playfulness.
	PlayfulTraitBar float64 `mapstructure:"playful_trait_bar"`
	// ExplorerTraitBar adds a bonus exploration task above this curiosity.
	ExplorerTraitBar float64 `mapstructure:"explorer_trait_bar"`
}

// DefaultConfig returns the stock sizing.
func DefaultConfig() Config {
	return Config{
		DeficitThreshold:       40,
		MinutesPerDeficitPoint: 0.5,
		PlayfulTraitBar:        0.6,
		ExplorerTraitBar:       0.7,
	}
}

// #endregion config

// #region generate

// Generate derives the day's tasks from the current needs and traits.
// Deterministic apart from task IDs; callers enforce once-per-day via the
// day key.
func Generate(day string, n needs.Needs, tr traits.Traits, cfg Config) []Task {
	var out []Task
	add := func(need, metric, format string, deficit float64) {
		target := math.Ceil(deficit * cfg.MinutesPerDeficitPoint)
		if target < 1 {
			target = 1
		}
		out = append(out, Task{
			ID:          uuid.NewString(),
			Day:         day,
			Need:        need,
			Description: fmt.Sprintf(format, int(target)),
			Metric:      metric,
			Target:      target,
		})
	}

	if n.Hunger < cfg.DeficitThreshold {
		add("hunger", "bright_minutes", "graze in bright light for %d minutes", cfg.DeficitThreshold-n.Hunger)
	}
	if n.Rest < cfg.DeficitThreshold {
		add("rest", "quiet_minutes", "rest somewhere dark and quiet for %d minutes", cfg.DeficitThreshold-n.Rest)
	}
	if n.Social < cfg.DeficitThreshold {
		// Encounters are counted, not timed; one meeting per 20 deficit
		// points.
		deficit := cfg.DeficitThreshold - n.Social
		count := math.Ceil(deficit / 20)
		out = append(out, Task{
			ID:          uuid.NewString(),
			Day:         day,
			Need:        "social",
			Description: fmt.Sprintf("meet %d other beasts", int(count)),
			Metric:      "peer_encounters",
			Target:      count,
		})
	}
	if n.Hygiene < cfg.DeficitThreshold {
		add("hygiene", "comfort_minutes", "stay in comfortable air for %d minutes", cfg.DeficitThreshold-n.Hygiene)
	}

	if tr.Playful >= cfg.PlayfulTraitBar {
		out = append(out, Task{
			ID:          uuid.NewString(),
			Day:         day,
			Need:        "play",
			Description: "burn energy with 10 minutes of movement",
			Metric:      "motion_minutes",
			Target:      10,
		})
	}
	if tr.Explorer >= cfg.ExplorerTraitBar {
		out = append(out, Task{
			ID:          uuid.NewString(),
			Day:         day,
			Need:        "explore",
			Description: "visit somewhere new",
			Metric:      "novel_places",
			Target:      1,
		})
	}
	return out
}

// #endregion generate
