package deckimport

import (
	"fmt"
)

// SetAllocation assigns newQuantity of the group's requested copies to the
// candidate at candidateIndex. Writes are clamped, never rejected: a negative
// quantity becomes zero, and an increase past the group's remaining capacity
// is cut back so the group total never exceeds the requested quantity. The
// applied quantity is returned.
func (s *Session) SetAllocation(groupIndex, candidateIndex, newQuantity int) (int, error) {
	if groupIndex < 0 || groupIndex >= len(s.Groups) {
		return 0, fmt.Errorf("no such group %d", groupIndex)
	}
	group := s.Groups[groupIndex]
	if candidateIndex < 0 || candidateIndex >= len(group.Candidates) {
		return 0, fmt.Errorf("group %d has no candidate %d", groupIndex, candidateIndex)
	}

	if newQuantity < 0 {
		newQuantity = 0
	}

	previous := group.Allocations[candidateIndex]
	if increase := newQuantity - previous; increase > group.Remaining() {
		newQuantity = previous + group.Remaining()
	}

	group.Allocations[candidateIndex] = newQuantity
	return newQuantity, nil
}

// CanSubmit reports whether bulk submission is permitted: every group that
// has at least one candidate must be balanced. Groups with zero candidates
// never block submission; they are reported as not-found instead.
func (s *Session) CanSubmit() bool {
	for _, group := range s.Groups {
		if len(group.Candidates) == 0 {
			continue
		}
		if group.Remaining() != 0 {
			return false
		}
	}
	return true
}
