package replay

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFixture(t *testing.T, fix Fixture) string {
	t.Helper()
	data, err := json.Marshal(fix)
	if err != nil {
		t.Fatalf("marshal fixture: %v", err)
	}
	path := filepath.Join(t.TempDir(), "fixture.json")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}
	return path
}

func TestLoadFixtureRoundTrip(t *testing.T) {
	fix := sunnyFixture(3)
	fix.Ticks[1].Actions = nil
	path := writeFixture(t, fix)

	got, err := LoadFixture(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if len(got.Ticks) != 3 {
		t.Fatalf("expected 3 ticks, got %d", len(got.Ticks))
	}
	if !got.Ticks[2].Sample.Timestamp.Equal(fix.Ticks[2].Sample.Timestamp) {
		t.Fatal("timestamps did not survive the round trip")
	}
}

func TestLoadFixtureRejectsRegressingTimestamps(t *testing.T) {
	fix := sunnyFixture(3)
	fix.Ticks[2].Sample.Timestamp = fix.Ticks[0].Sample.Timestamp.Add(-time.Hour)

	if _, err := LoadFixture(writeFixture(t, fix)); err == nil {
		t.Fatal("regressing timestamps should be rejected")
	}
}

func TestLoadFixtureRejectsUnknownAction(t *testing.T) {
	fix := sunnyFixture(2)
	fix.Ticks[0].Actions = append(fix.Ticks[0].Actions, "tickle")

	if _, err := LoadFixture(writeFixture(t, fix)); err == nil {
		t.Fatal("unknown action should be rejected")
	}
}

func TestLoadFixtureRejectsEmptyAndBadExpectation(t *testing.T) {
	if _, err := LoadFixture(writeFixture(t, Fixture{})); err == nil {
		t.Fatal("empty fixture should be rejected")
	}

	fix := sunnyFixture(2)
	fix.Expected = []FixtureExpectation{{Tick: 9, Mood: "calm"}}
	if _, err := LoadFixture(writeFixture(t, fix)); err == nil {
		t.Fatal("out-of-range expectation should be rejected")
	}
}
