// Package store persists the beast to SQLite: append-only snapshot
// versions with an active pointer, a sample/action log, an event log and
// the daily task memory. A tick commit is one transaction, so a crash
// mid-write leaves the previous snapshot authoritative.
package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	_ "modernc.org/sqlite"

	"github.com/jerryhoward/bytebeast/go-engine/internal/engine"
	"github.com/jerryhoward/bytebeast/go-engine/internal/evolution"
	"github.com/jerryhoward/bytebeast/go-engine/internal/feature"
	"github.com/jerryhoward/bytebeast/go-engine/internal/tasks"
)

// #region schema

const schema = `
CREATE TABLE IF NOT EXISTS beast_versions (
	version_id  TEXT PRIMARY KEY,
	parent_id   TEXT,
	beast_json  TEXT NOT NULL,
	mood        TEXT NOT NULL,
	path        TEXT NOT NULL,
	stage       INTEGER NOT NULL,
	tick_at     TEXT NOT NULL,
	created_at  TEXT NOT NULL,
	FOREIGN KEY (parent_id) REFERENCES beast_versions(version_id)
);

CREATE TABLE IF NOT EXISTS active_beast (
	id          INTEGER PRIMARY KEY CHECK (id = 1),
	version_id  TEXT NOT NULL,
	FOREIGN KEY (version_id) REFERENCES beast_versions(version_id)
);

CREATE TABLE IF NOT EXISTS sample_log (
	id           INTEGER PRIMARY KEY AUTOINCREMENT,
	version_id   TEXT NOT NULL,
	tick_at      TEXT NOT NULL,
	sample_json  TEXT NOT NULL,
	actions_json TEXT,
	FOREIGN KEY (version_id) REFERENCES beast_versions(version_id)
);

CREATE TABLE IF NOT EXISTS event_log (
	id          INTEGER PRIMARY KEY AUTOINCREMENT,
	version_id  TEXT,
	kind        TEXT NOT NULL,
	detail_json TEXT,
	created_at  TEXT NOT NULL
);

CREATE TABLE IF NOT EXISTS daily_tasks (
	day         TEXT PRIMARY KEY,
	tasks_json  TEXT NOT NULL,
	created_at  TEXT NOT NULL
);
`

// #endregion schema

// #region store-struct

// Snapshot is one persisted beast version.
type Snapshot struct {
	VersionID string
	ParentID  string
	Beast     engine.Beast
	TickAt    time.Time
	CreatedAt time.Time
}

// Store manages the beast database. The daemon's tick loop is its only
// writer.
type Store struct {
	db *sql.DB
}

// NewStore opens the SQLite database and runs migrations.
func NewStore(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open db: %w", err)
	}
	if _, err := db.Exec("PRAGMA journal_mode=WAL"); err != nil {
		return nil, fmt.Errorf("pragma: %w", err)
	}
	if _, err := db.Exec("PRAGMA foreign_keys=ON"); err != nil {
		return nil, fmt.Errorf("pragma fk: %w", err)
	}
	if _, err := db.Exec(schema); err != nil {
		return nil, fmt.Errorf("migrate: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the underlying database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// DB returns the underlying *sql.DB for read-only inspection tooling.
func (s *Store) DB() *sql.DB {
	return s.db
}

// #endregion store-struct

// #region restore

// Restore loads the active beast snapshot. A missing or unreadable
// snapshot is never fatal: the returned beast is then the first-boot
// default, cold is true, and err carries the cause (nil for a genuinely
// empty database). The caller logs cold starts; the rolling window always
// restarts empty either way.
func (s *Store) Restore(now time.Time) (engine.Beast, bool, error) {
	var versionID string
	err := s.db.QueryRow(`SELECT version_id FROM active_beast WHERE id = 1`).Scan(&versionID)
	if errors.Is(err, sql.ErrNoRows) {
		return engine.DefaultBeast(now), true, nil
	}
	if err != nil {
		return engine.DefaultBeast(now), true, fmt.Errorf("read active pointer: %w", err)
	}

	snap, err := s.GetVersion(versionID)
	if err != nil {
		return engine.DefaultBeast(now), true, fmt.Errorf("read active snapshot: %w", err)
	}
	return snap.Beast, false, nil
}

// GetVersion retrieves one snapshot by ID.
func (s *Store) GetVersion(id string) (Snapshot, error) {
	var snap Snapshot
	var parentID sql.NullString
	var beastJSON, tickStr, createdStr string

	err := s.db.QueryRow(
		`SELECT version_id, parent_id, beast_json, tick_at, created_at
		 FROM beast_versions WHERE version_id = ?`, id,
	).Scan(&snap.VersionID, &parentID, &beastJSON, &tickStr, &createdStr)
	if err != nil {
		return Snapshot{}, fmt.Errorf("get version %s: %w", id, err)
	}

	if parentID.Valid {
		snap.ParentID = parentID.String
	}
	if err := json.Unmarshal([]byte(beastJSON), &snap.Beast); err != nil {
		return Snapshot{}, fmt.Errorf("unmarshal beast: %w", err)
	}
	snap.TickAt, _ = time.Parse(time.RFC3339Nano, tickStr)
	snap.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
	return snap, nil
}

// #endregion restore

// #region commit

// CommitTick writes the post-tick beast, its source sample/actions and any
// stage-up events as one transaction, and moves the active pointer. Either
// everything lands or the previous snapshot stays authoritative.
func (s *Store) CommitTick(b engine.Beast, sample feature.Sample, actions feature.ActionSet, events []evolution.Event) (string, error) {
	beastJSON, err := json.Marshal(b)
	if err != nil {
		return "", fmt.Errorf("marshal beast: %w", err)
	}
	sampleJSON, err := json.Marshal(sample)
	if err != nil {
		return "", fmt.Errorf("marshal sample: %w", err)
	}

	id := uuid.New().String()
	now := time.Now().UTC().Format(time.RFC3339Nano)
	tickAt := b.UpdatedAt.UTC().Format(time.RFC3339Nano)

	tx, err := s.db.Begin()
	if err != nil {
		return "", fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var parentPtr interface{}
	var parent string
	err = tx.QueryRow(`SELECT version_id FROM active_beast WHERE id = 1`).Scan(&parent)
	if err == nil {
		parentPtr = parent
	} else if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("read active pointer: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO beast_versions (version_id, parent_id, beast_json, mood, path, stage, tick_at, created_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		id, parentPtr, string(beastJSON), string(b.Mood),
		string(b.Evolution.Path), b.Evolution.Stage, tickAt, now,
	)
	if err != nil {
		return "", fmt.Errorf("insert version: %w", err)
	}

	_, err = tx.Exec(
		`INSERT INTO active_beast (id, version_id) VALUES (1, ?)
		 ON CONFLICT(id) DO UPDATE SET version_id = excluded.version_id`, id,
	)
	if err != nil {
		return "", fmt.Errorf("set active: %w", err)
	}

	var actionsPtr interface{}
	if kinds := actions.Kinds(); len(kinds) > 0 {
		actionsJSON, err := json.Marshal(kinds)
		if err != nil {
			return "", fmt.Errorf("marshal actions: %w", err)
		}
		actionsPtr = string(actionsJSON)
	}
	_, err = tx.Exec(
		`INSERT INTO sample_log (version_id, tick_at, sample_json, actions_json) VALUES (?, ?, ?, ?)`,
		id, tickAt, string(sampleJSON), actionsPtr,
	)
	if err != nil {
		return "", fmt.Errorf("insert sample: %w", err)
	}

	for _, ev := range events {
		detail, err := json.Marshal(ev)
		if err != nil {
			return "", fmt.Errorf("marshal event: %w", err)
		}
		_, err = tx.Exec(
			`INSERT INTO event_log (version_id, kind, detail_json, created_at) VALUES (?, 'stage_up', ?, ?)`,
			id, string(detail), now,
		)
		if err != nil {
			return "", fmt.Errorf("insert event: %w", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return "", fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// LogEvent appends a standalone entry to the event log, outside any tick.
func (s *Store) LogEvent(kind string, detail any) error {
	var detailPtr interface{}
	if detail != nil {
		b, err := json.Marshal(detail)
		if err != nil {
			return fmt.Errorf("marshal detail: %w", err)
		}
		detailPtr = string(b)
	}
	_, err := s.db.Exec(
		`INSERT INTO event_log (kind, detail_json, created_at) VALUES (?, ?, ?)`,
		kind, detailPtr, time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("insert event: %w", err)
	}
	return nil
}

// #endregion commit

// #region history

// ListVersions returns the most recent snapshots, newest first.
func (s *Store) ListVersions(limit int) ([]Snapshot, error) {
	rows, err := s.db.Query(
		`SELECT version_id, parent_id, beast_json, tick_at, created_at
		 FROM beast_versions ORDER BY tick_at DESC, created_at DESC LIMIT ?`, limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list versions: %w", err)
	}
	defer rows.Close()

	var out []Snapshot
	for rows.Next() {
		var snap Snapshot
		var parentID sql.NullString
		var beastJSON, tickStr, createdStr string
		if err := rows.Scan(&snap.VersionID, &parentID, &beastJSON, &tickStr, &createdStr); err != nil {
			return nil, fmt.Errorf("scan version: %w", err)
		}
		if parentID.Valid {
			snap.ParentID = parentID.String
		}
		if err := json.Unmarshal([]byte(beastJSON), &snap.Beast); err != nil {
			return nil, fmt.Errorf("unmarshal beast: %w", err)
		}
		snap.TickAt, _ = time.Parse(time.RFC3339Nano, tickStr)
		snap.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdStr)
		out = append(out, snap)
	}
	return out, rows.Err()
}

// #endregion history

// #region daily-tasks

// SaveDailyTasks records the day's generated tasks under the day key.
// Returns false without writing when the day already has tasks: generation
// is idempotent per day boundary.
func (s *Store) SaveDailyTasks(day string, list []tasks.Task) (bool, error) {
	tasksJSON, err := json.Marshal(list)
	if err != nil {
		return false, fmt.Errorf("marshal tasks: %w", err)
	}
	res, err := s.db.Exec(
		`INSERT OR IGNORE INTO daily_tasks (day, tasks_json, created_at) VALUES (?, ?, ?)`,
		day, string(tasksJSON), time.Now().UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return false, fmt.Errorf("insert tasks: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("rows affected: %w", err)
	}
	return n > 0, nil
}

// TasksFor returns the tasks stored for a day key, or nil when the day has
// none.
func (s *Store) TasksFor(day string) ([]tasks.Task, error) {
	var tasksJSON string
	err := s.db.QueryRow(`SELECT tasks_json FROM daily_tasks WHERE day = ?`, day).Scan(&tasksJSON)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get tasks: %w", err)
	}
	var out []tasks.Task
	if err := json.Unmarshal([]byte(tasksJSON), &out); err != nil {
		return nil, fmt.Errorf("unmarshal tasks: %w", err)
	}
	return out, nil
}

// #endregion daily-tasks

// #region retention

// Prune drops sample and event log rows older than the cutoff and reports
// how many went. Snapshot versions stay: they are the beast's lineage, and
// the logs are what actually grows on-device.
func (s *Store) Prune(cutoff time.Time) (int64, error) {
	ts := cutoff.UTC().Format(time.RFC3339Nano)

	samples, err := s.db.Exec(`DELETE FROM sample_log WHERE tick_at < ?`, ts)
	if err != nil {
		return 0, fmt.Errorf("prune samples: %w", err)
	}
	events, err := s.db.Exec(`DELETE FROM event_log WHERE created_at < ?`, ts)
	if err != nil {
		return 0, fmt.Errorf("prune events: %w", err)
	}

	n, _ := samples.RowsAffected()
	m, _ := events.RowsAffected()
	return n + m, nil
}

// #endregion retention
