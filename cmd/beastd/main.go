// beastd is the companion-device daemon: it ingests sensor samples and
// action events, advances the beast engine one tick at a time, persists
// every post-tick snapshot and publishes the beast to rendering clients.
package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"sync"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/robfig/cron/v3"
	"github.com/rs/zerolog"

	"github.com/jerryhoward/bytebeast/go-engine/internal/config"
	"github.com/jerryhoward/bytebeast/go-engine/internal/engine"
	"github.com/jerryhoward/bytebeast/go-engine/internal/feature"
	"github.com/jerryhoward/bytebeast/go-engine/internal/logging"
	"github.com/jerryhoward/bytebeast/go-engine/internal/metrics"
	"github.com/jerryhoward/bytebeast/go-engine/internal/publish"
	"github.com/jerryhoward/bytebeast/go-engine/internal/store"
	"github.com/jerryhoward/bytebeast/go-engine/internal/tasks"
)

// #region main

func main() {
	configPath := flag.String("config", "", "path to bytebeast.yaml")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		// Configuration errors are fatal by contract.
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log := logging.New(cfg.Log.Level, cfg.Log.Pretty)

	if err := run(cfg, log); err != nil {
		log.Fatal().Err(err).Msg("daemon failed")
	}
}

func run(cfg *config.Config, log zerolog.Logger) error {
	if err := os.MkdirAll(filepath.Dir(cfg.Daemon.DBPath), 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}
	st, err := store.NewStore(cfg.Daemon.DBPath)
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer st.Close()

	now := time.Now().UTC()
	beast, cold, err := st.Restore(now)
	if cold {
		// Never fatal: the beast hatches fresh, but the cold start is
		// surfaced loudly and recorded.
		storeLog := logging.Component(log, "store")
		storeLog.Warn().Err(err).Msg("cold start: no usable snapshot, hatching a fresh beast")
		if logErr := st.LogEvent("cold_start", map[string]string{"detail": errString(err)}); logErr != nil {
			storeLog.Error().Err(logErr).Msg("record cold start")
		}
	}

	eng, err := engine.New(cfg.Engine, beast)
	if err != nil {
		return fmt.Errorf("build engine: %w", err)
	}

	d := &daemon{
		cfg:      cfg,
		log:      log,
		store:    st,
		engine:   eng,
		hub:      publish.NewHub(logging.Component(log, "publish")),
		samples:  make(chan tickRequest, 16),
		actions:  make(chan feature.ActionKind, 64),
		snapshot: eng.Beast(),
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	srv := d.serve()
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = srv.Shutdown(shutdownCtx)
	}()

	sched := cron.New()
	if _, err := sched.AddFunc(cfg.Daemon.TaskCron, d.generateDailyTasks); err != nil {
		return fmt.Errorf("schedule daily tasks: %w", err)
	}
	if cfg.Daemon.RetentionDays > 0 {
		if _, err := sched.AddFunc("@hourly", d.pruneOldData); err != nil {
			return fmt.Errorf("schedule retention: %w", err)
		}
	}
	sched.Start()
	defer sched.Stop()

	// Catch up the day's tasks in case the daemon was down at the boundary.
	d.generateDailyTasks()

	log.Info().
		Str("listen", cfg.Daemon.ListenAddr).
		Str("db", cfg.Daemon.DBPath).
		Bool("cold_start", cold).
		Msg("beastd ready")

	d.loop(ctx)
	log.Info().Msg("beastd stopped")
	return nil
}

func errString(err error) string {
	if err == nil {
		return "empty database"
	}
	return err.Error()
}

// #endregion main

// #region daemon

type tickRequest struct {
	sample  feature.Sample
	actions []feature.ActionKind
}

type daemon struct {
	cfg    *config.Config
	log    zerolog.Logger
	store  *store.Store
	engine *engine.Engine
	hub    *publish.Hub

	samples chan tickRequest
	actions chan feature.ActionKind

	// snapshot is the last published beast; the only engine state the
	// HTTP and cron goroutines may read.
	mu       sync.RWMutex
	snapshot engine.Beast
}

func (d *daemon) published() engine.Beast {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.snapshot
}

// loop is the single writer of beast state: one tick at a time, each run
// to completion. When no sample arrives within the gap timeout it
// synthesizes a field-less gap tick so needs and accumulators keep
// decaying instead of freezing.
func (d *daemon) loop(ctx context.Context) {
	gap := time.NewTimer(d.cfg.Daemon.GapTimeout)
	defer gap.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case req := <-d.samples:
			d.applyTick(req.sample, req.actions)
			resetTimer(gap, d.cfg.Daemon.GapTimeout)
		case <-gap.C:
			metrics.GapTicks.Inc()
			d.applyTick(feature.Gap(time.Now().UTC()), nil)
			gap.Reset(d.cfg.Daemon.GapTimeout)
		}
	}
}

func (d *daemon) applyTick(s feature.Sample, kinds []feature.ActionKind) {
	kinds = append(kinds, d.drainActions()...)
	engineLog := logging.Component(d.log, "engine")
	res, err := d.engine.Tick(s, feature.NewActionSet(kinds...))
	if err != nil {
		if errors.Is(err, engine.ErrOutOfOrder) {
			metrics.TicksRejected.Inc()
			engineLog.Warn().
				Time("sample_ts", s.Timestamp).
				Msg("rejected out-of-order sample")
			return
		}
		engineLog.Error().Err(err).Msg("tick failed")
		return
	}
	metrics.TicksTotal.Inc()
	if res.MoodChanged {
		metrics.MoodChanges.Inc()
	}
	metrics.StageUps.Add(float64(len(res.Events)))
	metrics.ObserveBeast(res.Beast)

	commitStart := time.Now()
	if _, err := d.store.CommitTick(res.Beast, s, feature.NewActionSet(kinds...), res.Events); err != nil {
		// The previous snapshot stays authoritative; the engine carries on
		// in memory and the next commit retries from scratch.
		storeLog := logging.Component(d.log, "store")
		storeLog.Error().Err(err).Msg("snapshot commit failed")
	}
	metrics.CommitDuration.Observe(time.Since(commitStart).Seconds())

	evoLog := logging.Component(d.log, "evolution")
	for _, ev := range res.Events {
		evoLog.Info().
			Str("path", string(ev.Path)).
			Int("stage", ev.Stage).
			Str("ability", ev.Ability).
			Msg("stage up")
	}
	if res.MoodChanged {
		moodLog := logging.Component(d.log, "mood")
		moodLog.Debug().
			Str("mood", string(res.Beast.Mood)).
			Msg("mood changed")
	}

	d.mu.Lock()
	d.snapshot = res.Beast
	d.mu.Unlock()

	d.hub.Publish(res.Beast)
	metrics.SnapshotClients.Set(float64(d.hub.ClientCount()))
}

func (d *daemon) drainActions() []feature.ActionKind {
	var out []feature.ActionKind
	for {
		select {
		case k := <-d.actions:
			out = append(out, k)
		default:
			return out
		}
	}
}

func (d *daemon) generateDailyTasks() {
	day := tasks.DayKey(time.Now().UTC())
	snap := d.published()
	list := tasks.Generate(day, snap.Needs, snap.Traits, d.cfg.Engine.Tasks)
	tasksLog := logging.Component(d.log, "tasks")
	created, err := d.store.SaveDailyTasks(day, list)
	if err != nil {
		tasksLog.Error().Err(err).Msg("save daily tasks")
		return
	}
	if created {
		tasksLog.Info().
			Str("day", day).
			Int("count", len(list)).
			Msg("daily tasks generated")
	}
}

func (d *daemon) pruneOldData() {
	cutoff := time.Now().UTC().AddDate(0, 0, -d.cfg.Daemon.RetentionDays)
	storeLog := logging.Component(d.log, "store")
	n, err := d.store.Prune(cutoff)
	if err != nil {
		storeLog.Error().Err(err).Msg("prune old logs")
		return
	}
	if n > 0 {
		storeLog.Debug().
			Int64("rows", n).
			Time("cutoff", cutoff).
			Msg("pruned old log rows")
	}
}

func resetTimer(t *time.Timer, d time.Duration) {
	if !t.Stop() {
		select {
		case <-t.C:
		default:
		}
	}
	t.Reset(d)
}

// #endregion daemon

// #region http

// serve starts the HTTP surface: sample/action ingestion, the snapshot
// websocket, daily tasks, metrics and health.
func (d *daemon) serve() *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/v1/sample", d.handleSample)
	mux.HandleFunc("/v1/action", d.handleAction)
	mux.HandleFunc("/v1/beast", d.handleBeast)
	mux.HandleFunc("/v1/tasks", d.handleTasks)
	mux.Handle("/ws/beast", d.hub.Handler())
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	srv := &http.Server{Addr: d.cfg.Daemon.ListenAddr, Handler: mux}
	go func() {
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			d.log.Fatal().Err(err).Msg("http server failed")
		}
	}()
	return srv
}

func (d *daemon) handleSample(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Sample  feature.Sample       `json:"sample"`
		Actions []feature.ActionKind `json:"actions,omitempty"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("bad sample: %v", err), http.StatusBadRequest)
		return
	}
	if req.Sample.Timestamp.IsZero() {
		http.Error(w, "sample timestamp required", http.StatusBadRequest)
		return
	}
	select {
	case d.samples <- tickRequest{sample: req.Sample, actions: req.Actions}:
		w.WriteHeader(http.StatusAccepted)
	default:
		http.Error(w, "tick queue full", http.StatusServiceUnavailable)
	}
}

func (d *daemon) handleAction(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		http.Error(w, "POST only", http.StatusMethodNotAllowed)
		return
	}
	var req struct {
		Kind feature.ActionKind `json:"kind"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, fmt.Sprintf("bad action: %v", err), http.StatusBadRequest)
		return
	}
	known := false
	for _, k := range feature.KnownActions {
		if req.Kind == k {
			known = true
			break
		}
	}
	if !known {
		http.Error(w, fmt.Sprintf("unknown action kind %q", req.Kind), http.StatusBadRequest)
		return
	}
	select {
	case d.actions <- req.Kind:
		w.WriteHeader(http.StatusAccepted)
	default:
		http.Error(w, "action queue full", http.StatusServiceUnavailable)
	}
}

func (d *daemon) handleBeast(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(d.published())
}

func (d *daemon) handleTasks(w http.ResponseWriter, r *http.Request) {
	day := r.URL.Query().Get("day")
	if day == "" {
		day = tasks.DayKey(time.Now().UTC())
	}
	list, err := d.store.TasksFor(day)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(list)
}

// #endregion http
