package deckimport

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/koiseka/bm-companion/internal/matcher"
	"github.com/koiseka/bm-companion/internal/models"
)

// matchYield is the pause between matching entries. Not a correctness
// requirement; it keeps anything observing the session responsive while a
// long list resolves.
const matchYield = 10 * time.Millisecond

// Session holds one bulk import: the parsed demand entries resolved to match
// groups, their allocation state, and the orchestrator's submission record.
// All state is touched from a single logical thread of control; the only
// suspension points are the match yield and the orchestrator's network calls.
type Session struct {
	ID     string
	Groups []*models.MatchGroup

	orch *Orchestrator
}

// NewSession matches every demand entry against the catalog and builds the
// session's match groups. Entries are processed one at a time, yielding
// between entries. By default the full requested quantity is allocated to the
// top-ranked candidate; groups with no candidates start (and stay) at
// remaining == requested.
func NewSession(ctx context.Context, entries []models.DemandEntry, catalog []models.CardRecord, orch *Orchestrator) *Session {
	s := &Session{
		ID:   uuid.New().String(),
		orch: orch,
	}

	for i, entry := range entries {
		candidates := matcher.FindDeckMatches(entry.RequestedName, catalog)
		group := &models.MatchGroup{
			Index:             i,
			RequestedName:     entry.RequestedName,
			RequestedQuantity: entry.RequestedQuantity,
			Candidates:        candidates,
			Allocations:       make([]int, len(candidates)),
		}
		if len(candidates) > 0 {
			group.Allocations[0] = entry.RequestedQuantity
		}
		s.Groups = append(s.Groups, group)

		if i < len(entries)-1 {
			select {
			case <-ctx.Done():
				return s
			case <-time.After(matchYield):
			}
		}
	}
	return s
}

// View returns the API shape of the session.
func (s *Session) View() models.SessionView {
	return models.SessionView{
		SessionID: s.ID,
		Groups:    s.Groups,
		CanSubmit: s.CanSubmit(),
	}
}

// Submit runs the orchestrator over the session's groups.
func (s *Session) Submit(ctx context.Context) *models.ImportResult {
	return s.orch.Submit(ctx, s.Groups)
}

// Retry resubmits only the groups marked failed by a previous Submit.
func (s *Session) Retry(ctx context.Context) *models.ImportResult {
	return s.orch.Retry(ctx, s.Groups)
}

// Result returns the accumulated submission result, nil before first Submit.
func (s *Session) Result() *models.ImportResult {
	return s.orch.Result()
}
