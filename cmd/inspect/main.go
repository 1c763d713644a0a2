// inspect is a read-only debugging tool for the beast database: it lists
// snapshot history, shows single versions in detail and dumps the event
// log and daily tasks.
package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/jerryhoward/bytebeast/go-engine/internal/store"
	"github.com/jerryhoward/bytebeast/go-engine/internal/tasks"
)

// #region main

func main() {
	dbPath := flag.String("db", "", "path to beast.db")
	last := flag.Int("last", 20, "show N most recent snapshots")
	version := flag.String("version", "", "show single snapshot detail")
	events := flag.Bool("events", false, "dump the event log instead of snapshots")
	tasksDay := flag.String("tasks", "", "show the tasks stored for a day (YYYY-MM-DD)")
	jsonOut := flag.Bool("json", false, "output as JSON instead of a table")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: inspect --db path/to/beast.db [--last N] [--version id] [--events] [--tasks day] [--json]")
		os.Exit(2)
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	switch {
	case *tasksDay != "":
		err = runTasksMode(st, *tasksDay, *jsonOut)
	case *events:
		err = runEventsMode(st, *last, *jsonOut)
	case *version != "":
		err = runDetailMode(st, *version)
	default:
		err = runListMode(st, *last, *jsonOut)
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

// #endregion main

// #region list-mode

func runListMode(st *store.Store, last int, jsonOut bool) error {
	snaps, err := st.ListVersions(last)
	if err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snaps)
	}

	fmt.Println("tick_at               mood     path     stage  energy  version")
	fmt.Println("--------------------  -------  -------  -----  ------  --------")
	for _, s := range snaps {
		fmt.Printf("%-20s  %-7s  %-7s  %5d  %6.1f  %.8s\n",
			s.TickAt.Format("2006-01-02 15:04:05"),
			s.Beast.Mood, s.Beast.Evolution.Path, s.Beast.Evolution.Stage,
			s.Beast.Energy, s.VersionID)
	}
	return nil
}

// #endregion list-mode

// #region detail-mode

func runDetailMode(st *store.Store, id string) error {
	snap, err := st.GetVersion(id)
	if err != nil {
		return err
	}
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(snap)
}

// #endregion detail-mode

// #region events-mode

type eventRow struct {
	ID        int64  `json:"id"`
	VersionID string `json:"version_id,omitempty"`
	Kind      string `json:"kind"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt string `json:"created_at"`
}

func runEventsMode(st *store.Store, last int, jsonOut bool) error {
	rows, err := st.DB().Query(
		`SELECT id, version_id, kind, detail_json, created_at
		 FROM event_log ORDER BY id DESC LIMIT ?`, last,
	)
	if err != nil {
		return err
	}
	defer rows.Close()

	var out []eventRow
	for rows.Next() {
		var row eventRow
		var versionID, detail sql.NullString
		if err := rows.Scan(&row.ID, &versionID, &row.Kind, &detail, &row.CreatedAt); err != nil {
			return err
		}
		row.VersionID = versionID.String
		row.Detail = detail.String
		out = append(out, row)
	}
	if err := rows.Err(); err != nil {
		return err
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(out)
	}
	for _, row := range out {
		fmt.Printf("%6d  %-24s  %-10s  %s\n", row.ID, row.CreatedAt, row.Kind, row.Detail)
	}
	return nil
}

// #endregion events-mode

// #region tasks-mode

func runTasksMode(st *store.Store, day string, jsonOut bool) error {
	list, err := st.TasksFor(day)
	if err != nil {
		return err
	}
	if list == nil {
		fmt.Printf("no tasks stored for %s\n", day)
		return nil
	}

	if jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(list)
	}
	for _, task := range list {
		printTask(task)
	}
	return nil
}

func printTask(t tasks.Task) {
	fmt.Printf("[%s] %-8s %s (%s >= %.0f)\n", t.Day, t.Need, t.Description, t.Metric, t.Target)
}

// #endregion tasks-mode
