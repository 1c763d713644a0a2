package traits

import (
	"testing"

	"github.com/jerryhoward/bytebeast/go-engine/internal/feature"
)

// seed is a beast a few weeks into its life, with some personality formed.
func seed() Traits {
	return Traits{Playful: 0.3, Needy: 0.2, Rebellious: 0.1, Social: 0.4, Explorer: 0.25}
}

func TestDefaultIsBlank(t *testing.T) {
	if Default() != (Traits{}) {
		t.Fatalf("hatchling traits should all be zero, got %+v", Default())
	}
}

func TestUpdateActionPullsTowardOne(t *testing.T) {
	cfg := DefaultConfig()
	prev := seed()

	next := Update(prev, feature.NewActionSet(feature.ActionActiveMiniGame), cfg)

	if next.Playful <= prev.Playful {
		t.Fatalf("mini-game should raise playful: %f -> %f", prev.Playful, next.Playful)
	}
	// Untouched axes decay.
	if next.Social >= prev.Social {
		t.Fatalf("social should decay without actions: %f -> %f", prev.Social, next.Social)
	}
}

func TestUpdateConvergesFromZero(t *testing.T) {
	cfg := DefaultConfig()
	cur := Default()
	actions := feature.NewActionSet(feature.ActionPeerEncounter)

	last := cur.Social
	for i := 0; i < 5000; i++ {
		cur = Update(cur, actions, cfg)
		if cur.Social < last {
			t.Fatalf("reinforced trait moved backward at step %d: %f -> %f", i, last, cur.Social)
		}
		last = cur.Social
	}

	if cur.Social < 0.99 {
		t.Fatalf("repeated encounters should converge social near 1, got %f", cur.Social)
	}
	if cur.Social > 1 {
		t.Fatalf("social exceeded 1: %f", cur.Social)
	}
}

func TestUpdateDecayNeverGoesNegative(t *testing.T) {
	cfg := DefaultConfig()
	cur := seed()

	last := cur.Playful
	for i := 0; i < 100000; i++ {
		cur = Update(cur, nil, cfg)
		if cur.Playful > last {
			t.Fatalf("unreinforced trait moved upward at step %d", i)
		}
		last = cur.Playful
	}

	for name, v := range cur.Map() {
		if v < 0 {
			t.Fatalf("%s decayed below zero: %f", name, v)
		}
	}
	if cur.Playful > 0.01 {
		t.Fatalf("playful should have faded, got %f", cur.Playful)
	}
}

func TestUpdateDuelUsesWeakerGain(t *testing.T) {
	cfg := DefaultConfig()
	prev := seed()

	duel := Update(prev, feature.NewActionSet(feature.ActionDuelResult), cfg)
	meet := Update(prev, feature.NewActionSet(feature.ActionPeerEncounter), cfg)

	if duel.Social <= prev.Social {
		t.Fatalf("duel should still raise social: %f -> %f", prev.Social, duel.Social)
	}
	if duel.Social >= meet.Social {
		t.Fatalf("duel gain should be weaker than encounter: %f >= %f", duel.Social, meet.Social)
	}
}

func TestUpdateIndependentAxes(t *testing.T) {
	cfg := DefaultConfig()
	prev := seed()

	actions := feature.NewActionSet(feature.ActionPlaceNovelty, feature.ActionMissedCareWindow)
	next := Update(prev, actions, cfg)

	if next.Explorer <= prev.Explorer {
		t.Fatalf("novelty should raise explorer: %f -> %f", prev.Explorer, next.Explorer)
	}
	if next.Needy <= prev.Needy {
		t.Fatalf("missed care should raise needy: %f -> %f", prev.Needy, next.Needy)
	}
	if next.Playful >= prev.Playful {
		t.Fatalf("playful should decay: %f -> %f", prev.Playful, next.Playful)
	}
}
