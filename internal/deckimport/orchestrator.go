package deckimport

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/koiseka/bm-companion/internal/cart"
	"github.com/koiseka/bm-companion/internal/metrics"
	"github.com/koiseka/bm-companion/internal/models"
)

// defaultSubmitDelay paces consecutive cart submissions. The storefront adds
// items through a session-mutating endpoint, so requests must never overlap
// and should not arrive back to back.
const defaultSubmitDelay = 100 * time.Millisecond

// Orchestrator drives bulk cart submission for one import session. It owns
// the processed-key map, the failed-group markers, and the accumulated
// result. It is not safe for concurrent use and is not meant to be: the whole
// import protocol is one logical thread that suspends only at network calls
// and inter-item delays.
type Orchestrator struct {
	cart  cart.Client
	delay time.Duration

	// processed maps an allocation key to its last known submission success.
	// Allocations that already succeeded are never resubmitted.
	processed map[string]bool
	failed    map[int]bool

	res *models.ImportResult
}

// workItem is one entry of the flattened submission worklist.
type workItem struct {
	requestedName string
	match         *models.CardRecord
	quantity      int
	groupIndex    int
}

// NewOrchestrator creates an orchestrator submitting through the given cart
// client. A delay of zero falls back to the default pacing.
func NewOrchestrator(c cart.Client, delay time.Duration) *Orchestrator {
	if delay <= 0 {
		delay = defaultSubmitDelay
	}
	return &Orchestrator{
		cart:      c,
		delay:     delay,
		processed: make(map[string]bool),
		failed:    make(map[int]bool),
		res:       &models.ImportResult{},
	}
}

// Result returns the accumulated session result. Nil only if no submission
// has run and no orchestrator state exists, which NewOrchestrator precludes.
func (o *Orchestrator) Result() *models.ImportResult {
	return o.res
}

// FailedGroups returns the indices of groups whose last submission failed.
func (o *Orchestrator) FailedGroups() []int {
	var indices []int
	for idx := range o.failed {
		indices = append(indices, idx)
	}
	return indices
}

// Submit flattens every positive allocation into an ordered worklist and
// submits it strictly sequentially, one item fully completing (plus the
// pacing delay) before the next starts. Allocations whose key is already
// marked successful are skipped, which makes re-running Submit after a full
// success a no-op. Groups with no candidates are emitted straight into the
// result as not-found without a submission attempt. A per-item failure is
// recorded and the worklist continues; nothing here aborts the batch.
func (o *Orchestrator) Submit(ctx context.Context, groups []*models.MatchGroup) *models.ImportResult {
	worklist := o.buildWorklist(groups)

	// Failures carried in from earlier runs are cleared by a success this
	// run; failures recorded during this run must survive the group's other
	// allocations succeeding.
	run := &runState{
		prevFailed: make(map[int]bool, len(o.failed)),
		failedNow:  make(map[int]bool),
	}
	for idx := range o.failed {
		run.prevFailed[idx] = true
	}

	for i, item := range worklist {
		if item.match == nil {
			o.recordNotFound(groups, item, run)
		} else {
			o.submitOne(ctx, groups, item, run)
		}

		if i < len(worklist)-1 {
			select {
			case <-ctx.Done():
				// Cooperative cancellation: the current item finished, stop
				// issuing new ones.
				return o.res
			case <-time.After(o.delay):
			}
		}
	}

	return o.res
}

// Retry re-invokes Submit restricted to the groups currently marked failed.
func (o *Orchestrator) Retry(ctx context.Context, groups []*models.MatchGroup) *models.ImportResult {
	var failedGroups []*models.MatchGroup
	for _, group := range groups {
		if o.failed[group.Index] {
			failedGroups = append(failedGroups, group)
		}
	}
	if len(failedGroups) == 0 {
		return o.res
	}
	return o.Submit(ctx, failedGroups)
}

func (o *Orchestrator) buildWorklist(groups []*models.MatchGroup) []workItem {
	var worklist []workItem
	for _, group := range groups {
		for ci := range group.Candidates {
			if group.Allocations[ci] <= 0 {
				continue
			}
			key := allocationKey(group.Candidates[ci].CatalogID, group.Index)
			if o.processed[key] {
				continue
			}
			worklist = append(worklist, workItem{
				requestedName: group.RequestedName,
				match:         &group.Candidates[ci],
				quantity:      group.Allocations[ci],
				groupIndex:    group.Index,
			})
		}

		if len(group.Candidates) == 0 {
			key := noMatchKey(group.Index)
			if o.processed[key] {
				continue
			}
			worklist = append(worklist, workItem{
				requestedName: group.RequestedName,
				quantity:      group.RequestedQuantity,
				groupIndex:    group.Index,
			})
		}
	}
	return worklist
}

// runState separates failures inherited from earlier runs, which a success
// this run may clear, from failures recorded during the current run, which
// must stand even when the group's other allocations succeed.
type runState struct {
	prevFailed map[int]bool
	failedNow  map[int]bool
}

func (o *Orchestrator) submitOne(ctx context.Context, groups []*models.MatchGroup, item workItem, run *runState) {
	key := allocationKey(item.match.CatalogID, item.groupIndex)

	result, err := o.cart.Submit(ctx, item.match.CatalogID, item.quantity, item.match.CatalogSKU)
	if err != nil {
		o.recordFailure(groups, item, fmt.Sprintf("Failed to add to cart: %v", err), run)
		o.processed[key] = false
		return
	}
	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = "unknown error"
		}
		o.recordFailure(groups, item, "Failed to add to cart: "+msg, run)
		o.processed[key] = false
		return
	}

	addedName := result.ProductName
	if addedName == "" {
		addedName = item.match.Name
	}
	o.recordSuccess(groups, item, "Added to cart: "+addedName, run)
	o.processed[key] = true
}

func (o *Orchestrator) recordSuccess(groups []*models.MatchGroup, item workItem, message string, run *runState) {
	// A success during retry clears the failed marker, the group's recorded
	// failure message, and the failure outcomes (and their not-found count
	// contribution) from earlier rounds. A failure recorded this run for the
	// same group is not cleared.
	if o.failed[item.groupIndex] && run.prevFailed[item.groupIndex] && !run.failedNow[item.groupIndex] {
		delete(o.failed, item.groupIndex)
		o.dropGroupFailureOutcomes(item.groupIndex)
		for _, group := range groups {
			if group.Index == item.groupIndex {
				group.Failed = false
				group.FailureMessage = ""
			}
		}
	}

	o.res.SuccessCount++
	o.res.Outcomes = append(o.res.Outcomes, models.SubmissionOutcome{
		GroupIndex:    item.groupIndex,
		RequestedName: item.requestedName,
		MatchedName:   item.match.Name,
		Quantity:      item.quantity,
		Status:        models.OutcomeSuccess,
		Message:       message,
	})
	metrics.CartSubmissionsTotal.WithLabelValues("success").Inc()
}

func (o *Orchestrator) recordFailure(groups []*models.MatchGroup, item workItem, message string, run *runState) {
	log.Printf("bulk import: group %d (%s): %s", item.groupIndex, item.requestedName, message)

	// Keep only the latest failure for a group so a retried failure doesn't
	// inflate the counts.
	o.dropGroupFailureOutcomes(item.groupIndex)
	o.failed[item.groupIndex] = true
	run.failedNow[item.groupIndex] = true
	o.markGroupFailed(groups, item.groupIndex, message)

	outcome := models.SubmissionOutcome{
		GroupIndex:    item.groupIndex,
		RequestedName: item.requestedName,
		Quantity:      item.quantity,
		Status:        models.OutcomeFailure,
		Message:       message,
	}
	if item.match != nil {
		outcome.MatchedName = item.match.Name
	}
	o.res.NotFoundCount++
	o.res.Outcomes = append(o.res.Outcomes, outcome)
	metrics.CartSubmissionsTotal.WithLabelValues("failure").Inc()
}

func (o *Orchestrator) recordNotFound(groups []*models.MatchGroup, item workItem, run *runState) {
	o.dropGroupFailureOutcomes(item.groupIndex)
	o.failed[item.groupIndex] = true
	run.failedNow[item.groupIndex] = true
	o.markGroupFailed(groups, item.groupIndex, "No match found for: "+item.requestedName)
	o.processed[noMatchKey(item.groupIndex)] = false

	o.res.NotFoundCount++
	o.res.Outcomes = append(o.res.Outcomes, models.SubmissionOutcome{
		GroupIndex:    item.groupIndex,
		RequestedName: item.requestedName,
		Quantity:      item.quantity,
		Status:        models.OutcomeFailure,
		Message:       "No match found for: " + item.requestedName,
	})
	metrics.CartSubmissionsTotal.WithLabelValues("not_found").Inc()
}

// dropGroupFailureOutcomes removes earlier failure outcomes for a group,
// decrementing the not-found count by each one removed.
func (o *Orchestrator) dropGroupFailureOutcomes(groupIndex int) {
	kept := o.res.Outcomes[:0]
	for _, outcome := range o.res.Outcomes {
		if outcome.GroupIndex == groupIndex && outcome.Status == models.OutcomeFailure {
			o.res.NotFoundCount--
			continue
		}
		kept = append(kept, outcome)
	}
	o.res.Outcomes = kept
}

func (o *Orchestrator) markGroupFailed(groups []*models.MatchGroup, groupIndex int, message string) {
	for _, group := range groups {
		if group.Index == groupIndex {
			group.Failed = true
			group.FailureMessage = message
		}
	}
}

func allocationKey(catalogID string, groupIndex int) string {
	return fmt.Sprintf("%s_%d", catalogID, groupIndex)
}

func noMatchKey(groupIndex int) string {
	return fmt.Sprintf("nomatch_%d", groupIndex)
}
