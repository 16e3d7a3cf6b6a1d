package models

import (
	"time"
)

// DemandEntry is one parsed deck-list line: a requested name and how many
// copies the user wants. Repeated names stay as separate entries; the parser
// never merges lines.
type DemandEntry struct {
	RequestedName     string `json:"requested_name"`
	RequestedQuantity int    `json:"requested_quantity"`
}

// GroupState describes where a match group stands relative to its requested
// quantity.
type GroupState string

const (
	GroupUnresolved     GroupState = "unresolved" // no candidates at all
	GroupUnderAllocated GroupState = "under-allocated"
	GroupBalanced       GroupState = "balanced"
	GroupOverAllocated  GroupState = "over-allocated"
)

// MatchGroup pairs one demand entry with its ranked candidates and the
// current allocation of requested copies across them. Allocations is parallel
// to Candidates.
type MatchGroup struct {
	Index             int          `json:"index"`
	RequestedName     string       `json:"requested_name"`
	RequestedQuantity int          `json:"requested_quantity"`
	Candidates        []CardRecord `json:"candidates"`
	Allocations       []int        `json:"allocations"`
	Failed            bool         `json:"failed"`
	FailureMessage    string       `json:"failure_message,omitempty"`
}

// Allocated returns the total quantity assigned across all candidates.
func (g *MatchGroup) Allocated() int {
	total := 0
	for _, q := range g.Allocations {
		total += q
	}
	return total
}

// Remaining returns how many requested copies are still unassigned. Negative
// means over-allocated; the reconciler clamps writes so that never happens
// through SetAllocation.
func (g *MatchGroup) Remaining() int {
	return g.RequestedQuantity - g.Allocated()
}

// State derives the group's reconciliation state from Remaining.
func (g *MatchGroup) State() GroupState {
	if len(g.Candidates) == 0 {
		return GroupUnresolved
	}
	switch r := g.Remaining(); {
	case r > 0:
		return GroupUnderAllocated
	case r < 0:
		return GroupOverAllocated
	default:
		return GroupBalanced
	}
}

// OutcomeStatus is the per-submission result status.
type OutcomeStatus string

const (
	OutcomeSuccess OutcomeStatus = "success"
	OutcomeFailure OutcomeStatus = "error"
)

// SubmissionOutcome records one cart submission attempt for one
// (group, candidate, quantity) allocation.
type SubmissionOutcome struct {
	GroupIndex    int           `json:"group_index"`
	RequestedName string        `json:"requested_name"`
	MatchedName   string        `json:"matched_name,omitempty"`
	Quantity      int           `json:"quantity"`
	Status        OutcomeStatus `json:"status"`
	Message       string        `json:"message"`
}

// ImportResult accumulates the session's submission outcomes. NotFoundCount
// covers both unmatched groups and failed submissions, mirroring the summary
// line shown to the user.
type ImportResult struct {
	SuccessCount  int                 `json:"success"`
	NotFoundCount int                 `json:"not_found"`
	Outcomes      []SubmissionOutcome `json:"results"`
}

// ImportResultRecord persists a session's final result so the popup can fetch
// it after navigating away. Payload is the JSON-encoded ImportResult.
type ImportResultRecord struct {
	SessionID string    `json:"session_id" gorm:"primaryKey"`
	Payload   string    `json:"payload"`
	CreatedAt time.Time `json:"created_at"`
}

// ImportRequest starts an import session from raw deck-list text.
type ImportRequest struct {
	DeckList string `json:"deck_list" binding:"required"`
}

// SetAllocationRequest adjusts one candidate's allocated quantity.
type SetAllocationRequest struct {
	GroupIndex     int `json:"group_index"`
	CandidateIndex int `json:"candidate_index"`
	Quantity       int `json:"quantity"`
}

// SessionView is the API shape of an import session.
type SessionView struct {
	SessionID string        `json:"session_id"`
	Groups    []*MatchGroup `json:"groups"`
	CanSubmit bool          `json:"can_submit"`
}
