package feature

// #region action-kind

// ActionKind names a discrete event delivered alongside a sample. Actions
// originate outside the engine (UI buttons, power policy, the social
// collaborator) and are never polled from inside a tick.
type ActionKind string

const (
	ActionActiveMiniGame   ActionKind = "active_mini_game"
	ActionMissedCareWindow ActionKind = "missed_care_window"
	ActionRepeatedNeglect  ActionKind = "repeated_neglect"
	ActionPeerEncounter    ActionKind = "peer_encounter"
	ActionPlaceNovelty     ActionKind = "place_novelty"
	ActionDuelResult       ActionKind = "duel_result"
)

// KnownActions is the fixed action vocabulary.
var KnownActions = []ActionKind{
	ActionActiveMiniGame,
	ActionMissedCareWindow,
	ActionRepeatedNeglect,
	ActionPeerEncounter,
	ActionPlaceNovelty,
	ActionDuelResult,
}

// #endregion action-kind

// #region action-set

// ActionSet is the set of action kinds that fired this tick. Multiple kinds
// update their respective targets independently; duplicates of one kind
// within a tick collapse to a single firing.
type ActionSet map[ActionKind]bool

// NewActionSet builds a set from the given kinds.
func NewActionSet(kinds ...ActionKind) ActionSet {
	s := make(ActionSet, len(kinds))
	for _, k := range kinds {
		s[k] = true
	}
	return s
}

// Has reports whether kind fired this tick.
func (s ActionSet) Has(kind ActionKind) bool {
	return s != nil && s[kind]
}

// Encounter reports whether any peer contact action fired this tick.
func (s ActionSet) Encounter() bool {
	return s.Has(ActionPeerEncounter) || s.Has(ActionDuelResult)
}

// Kinds returns the fired kinds in the fixed vocabulary order.
func (s ActionSet) Kinds() []ActionKind {
	var out []ActionKind
	for _, k := range KnownActions {
		if s.Has(k) {
			out = append(out, k)
		}
	}
	return out
}

// #endregion action-set
