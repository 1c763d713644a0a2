// replay runs a recorded tick fixture through a fresh in-memory engine and
// reports the resulting beast, checking determinism and state invariants
// along the way.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"reflect"

	"github.com/jerryhoward/bytebeast/go-engine/internal/engine"
	"github.com/jerryhoward/bytebeast/go-engine/internal/replay"
)

// #region main

func main() {
	fixturePath := flag.String("fixture", "", "path to a replay fixture JSON file")
	jsonOut := flag.Bool("json", false, "output the result as JSON")
	verify := flag.Bool("verify", false, "replay twice and require identical results")
	moods := flag.Bool("moods", false, "print the per-tick mood timeline")
	flag.Parse()

	if *fixturePath == "" {
		fmt.Fprintln(os.Stderr, "usage: replay --fixture path/to/fixture.json [--json] [--verify] [--moods]")
		os.Exit(2)
	}

	fix, err := replay.LoadFixture(*fixturePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}

	cfg := engine.DefaultConfig()
	res, err := replay.Replay(fix, cfg)
	if err != nil {
		fmt.Fprintf(os.Stderr, "replay failed: %v\n", err)
		os.Exit(1)
	}

	if *verify {
		again, err := replay.Replay(fix, cfg)
		if err != nil {
			fmt.Fprintf(os.Stderr, "second replay failed: %v\n", err)
			os.Exit(1)
		}
		if res.Final != again.Final || !reflect.DeepEqual(res.Outcomes, again.Outcomes) {
			fmt.Fprintln(os.Stderr, "DIVERGED: two replays of the same fixture disagree")
			os.Exit(1)
		}
		fmt.Println("determinism verified: two runs identical")
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(res.Final); err != nil {
			fmt.Fprintf(os.Stderr, "encode: %v\n", err)
			os.Exit(1)
		}
		return
	}

	printSummary(fix, res, *moods)
}

// #endregion main

// #region output

func printSummary(fix replay.Fixture, res replay.Result, moods bool) {
	if fix.Description != "" {
		fmt.Printf("fixture: %s\n", fix.Description)
	}
	fmt.Printf("ticks: %d  stage-ups: %d\n\n", len(res.Outcomes), res.StageUps)

	if moods {
		fmt.Println("tick  mood      path     stage")
		fmt.Println("----  --------  -------  -----")
		last := ""
		for _, o := range res.Outcomes {
			line := fmt.Sprintf("%-8s  %-7s  %d", o.Mood, o.Path, o.Stage)
			if line == last {
				continue // collapse unchanged stretches
			}
			fmt.Printf("%4d  %s\n", o.Tick, line)
			last = line
		}
		fmt.Println()
	}

	b := res.Final
	fmt.Printf("final beast:\n")
	fmt.Printf("  mood:      %s %s\n", b.Mood, b.Mood.Emoji())
	fmt.Printf("  needs:     hunger=%.1f rest=%.1f social=%.1f hygiene=%.1f\n",
		b.Needs.Hunger, b.Needs.Rest, b.Needs.Social, b.Needs.Hygiene)
	fmt.Printf("  traits:    playful=%.2f needy=%.2f rebellious=%.2f social=%.2f explorer=%.2f\n",
		b.Traits.Playful, b.Traits.Needy, b.Traits.Rebellious, b.Traits.Social, b.Traits.Explorer)
	fmt.Printf("  evolution: path=%s stage=%d progress=%.2f\n",
		b.Evolution.Path, b.Evolution.Stage, b.Evolution.Progress)
	fmt.Printf("  energy:    %.1f\n", b.Energy)
}

// #endregion output
