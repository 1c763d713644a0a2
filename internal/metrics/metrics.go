// Package metrics exposes the daemon's Prometheus instrumentation.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"

	"github.com/jerryhoward/bytebeast/go-engine/internal/engine"
	"github.com/jerryhoward/bytebeast/go-engine/internal/evolution"
	"github.com/jerryhoward/bytebeast/go-engine/internal/mood"
)

var (
	TicksTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bytebeast_ticks_total",
			Help: "Total engine ticks applied",
		},
	)

	TicksRejected = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bytebeast_ticks_rejected_total",
			Help: "Samples rejected for out-of-order timestamps",
		},
	)

	GapTicks = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bytebeast_gap_ticks_total",
			Help: "Synthesized gap ticks while the sensor feed stalled",
		},
	)

	MoodChanges = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bytebeast_mood_changes_total",
			Help: "Mood transitions across ticks",
		},
	)

	StageUps = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "bytebeast_stage_ups_total",
			Help: "Evolution stage advancements",
		},
	)

	CommitDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name: "bytebeast_snapshot_commit_seconds",
			Help: "Snapshot commit transaction duration in seconds",
		},
	)

	SnapshotClients = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bytebeast_snapshot_clients",
			Help: "Connected snapshot websocket clients",
		},
	)

	moodGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bytebeast_mood",
			Help: "Current mood, one-hot by mood label",
		},
		[]string{"mood"},
	)

	pathGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bytebeast_evolution_path",
			Help: "Current evolution path, one-hot by path label",
		},
		[]string{"path"},
	)

	stageGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bytebeast_evolution_stage",
			Help: "Current evolution stage",
		},
	)

	energyGauge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "bytebeast_energy",
			Help: "Current energy level",
		},
	)

	needGauge = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "bytebeast_need",
			Help: "Current need satisfaction by need label",
		},
		[]string{"need"},
	)
)

// ObserveBeast refreshes all snapshot-derived gauges.
func ObserveBeast(b engine.Beast) {
	for _, m := range mood.DefaultOrder {
		moodGauge.WithLabelValues(string(m)).Set(oneHot(b.Mood == m))
	}
	pathGauge.WithLabelValues(string(evolution.PathNone)).Set(oneHot(b.Evolution.Path == evolution.PathNone))
	for _, p := range evolution.Paths {
		pathGauge.WithLabelValues(string(p)).Set(oneHot(b.Evolution.Path == p))
	}
	stageGauge.Set(float64(b.Evolution.Stage))
	energyGauge.Set(b.Energy)
	for name, v := range b.Needs.Map() {
		needGauge.WithLabelValues(name).Set(v)
	}
}

func oneHot(on bool) float64 {
	if on {
		return 1
	}
	return 0
}
