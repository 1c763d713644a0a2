// fixture-export turns a stretch of the beast database's sample log into a
// replay fixture, so field recordings can be re-run and debugged offline.
package main

import (
	"database/sql"
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/jerryhoward/bytebeast/go-engine/internal/feature"
	"github.com/jerryhoward/bytebeast/go-engine/internal/replay"
	"github.com/jerryhoward/bytebeast/go-engine/internal/store"
)

func main() {
	dbPath := flag.String("db", "", "path to beast.db")
	out := flag.String("out", "fixture.json", "output fixture path")
	last := flag.Int("last", 1000, "export the N most recent ticks")
	desc := flag.String("desc", "", "fixture description")
	flag.Parse()

	if *dbPath == "" {
		fmt.Fprintln(os.Stderr, "usage: fixture-export --db path/to/beast.db [--out fixture.json] [--last N] [--desc text]")
		os.Exit(2)
	}

	st, err := store.NewStore(*dbPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "open db: %v\n", err)
		os.Exit(1)
	}
	defer st.Close()

	fix, err := export(st, *last, *desc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	data, err := json.MarshalIndent(fix, "", "  ")
	if err != nil {
		fmt.Fprintf(os.Stderr, "marshal: %v\n", err)
		os.Exit(1)
	}
	if err := os.WriteFile(*out, data, 0o644); err != nil {
		fmt.Fprintf(os.Stderr, "write: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("exported %d ticks to %s\n", len(fix.Ticks), *out)
}

// export reads the newest rows then reverses them into replay order.
func export(st *store.Store, last int, desc string) (replay.Fixture, error) {
	rows, err := st.DB().Query(
		`SELECT sample_json, actions_json FROM sample_log ORDER BY id DESC LIMIT ?`, last,
	)
	if err != nil {
		return replay.Fixture{}, fmt.Errorf("query sample log: %w", err)
	}
	defer rows.Close()

	var ticks []replay.FixtureTick
	for rows.Next() {
		var sampleJSON string
		var actionsJSON sql.NullString
		if err := rows.Scan(&sampleJSON, &actionsJSON); err != nil {
			return replay.Fixture{}, fmt.Errorf("scan: %w", err)
		}

		var tick replay.FixtureTick
		if err := json.Unmarshal([]byte(sampleJSON), &tick.Sample); err != nil {
			return replay.Fixture{}, fmt.Errorf("unmarshal sample: %w", err)
		}
		if actionsJSON.Valid {
			var kinds []feature.ActionKind
			if err := json.Unmarshal([]byte(actionsJSON.String), &kinds); err != nil {
				return replay.Fixture{}, fmt.Errorf("unmarshal actions: %w", err)
			}
			tick.Actions = kinds
		}
		ticks = append(ticks, tick)
	}
	if err := rows.Err(); err != nil {
		return replay.Fixture{}, err
	}
	if len(ticks) == 0 {
		return replay.Fixture{}, fmt.Errorf("sample log is empty")
	}

	for i, j := 0, len(ticks)-1; i < j; i, j = i+1, j-1 {
		ticks[i], ticks[j] = ticks[j], ticks[i]
	}
	return replay.Fixture{Description: desc, Ticks: ticks}, nil
}
