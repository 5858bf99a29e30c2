// Match status state machine.
//
// Valid status graph:
//
//	NEW ──► SAVED ──► ADDED_TO_CRM
//	 │        │
//	 │        └─────► DISMISSED
//	 ├──────────────► DISMISSED
//	 └──────────────► ADDED_TO_CRM
//
// DISMISSED and ADDED_TO_CRM are terminal. The pipeline only ever creates
// matches in NEW; every transition after that is driven by the dashboard UI.
package model

import "fmt"

// MatchStatus values mirror the match_status enum in PostgreSQL.
type MatchStatus string

const (
	MatchNew        MatchStatus = "new"
	MatchSaved      MatchStatus = "saved"
	MatchDismissed  MatchStatus = "dismissed"
	MatchAddedToCRM MatchStatus = "added_to_crm"
)

// validMatchTransitions lists every allowed (from → to) pair.
var validMatchTransitions = map[MatchStatus][]MatchStatus{
	MatchNew:   {MatchSaved, MatchDismissed, MatchAddedToCRM},
	MatchSaved: {MatchDismissed, MatchAddedToCRM},
	// DISMISSED and ADDED_TO_CRM are terminal — no outgoing transitions
}

// ParseMatchStatus converts a raw string to a MatchStatus, returning an error
// for unknown values.
func ParseMatchStatus(s string) (MatchStatus, error) {
	st := MatchStatus(s)
	switch st {
	case MatchNew, MatchSaved, MatchDismissed, MatchAddedToCRM:
		return st, nil
	}
	return "", fmt.Errorf("unknown match status %q", s)
}

// IsMatchTransitionAllowed returns true when moving from → to is permitted.
func IsMatchTransitionAllowed(from, to MatchStatus) bool {
	allowed, ok := validMatchTransitions[from]
	if !ok {
		return false // terminal state — no outgoing transitions
	}
	for _, s := range allowed {
		if s == to {
			return true
		}
	}
	return false
}
