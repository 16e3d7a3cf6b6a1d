// Package deckimport implements the bulk import workflow: deck-list parsing,
// per-line candidate matching, quantity reconciliation across candidates,
// and the sequential cart submission protocol with retry.
package deckimport

import (
	"log"
	"strconv"
	"strings"

	"github.com/koiseka/bm-companion/internal/models"
)

const commentMarker = "//"

// ParseDeckList converts free-text deck-list input into demand entries, one
// per line. Empty lines and comment lines are skipped. A line without a
// leading quantity is a whole name requested once. Malformed lines are logged
// and skipped; partial success is the expected outcome.
func ParseDeckList(text string) []models.DemandEntry {
	if text == "" {
		return nil
	}

	var entries []models.DemandEntry
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, commentMarker) {
			continue
		}

		quantity, name, ok := splitQuantity(line)
		if !ok {
			// No quantity prefix: the whole line is the name.
			entries = append(entries, models.DemandEntry{
				RequestedName:     line,
				RequestedQuantity: 1,
			})
			continue
		}
		if quantity <= 0 || name == "" {
			log.Printf("deck import: skipping unusable line %q", line)
			continue
		}
		entries = append(entries, models.DemandEntry{
			RequestedName:     name,
			RequestedQuantity: quantity,
		})
	}
	return entries
}

// splitQuantity parses the "<digits>[x] <name>" prefix form. ok is false when
// the line doesn't carry a quantity prefix at all.
func splitQuantity(line string) (quantity int, name string, ok bool) {
	i := 0
	for i < len(line) && line[i] >= '0' && line[i] <= '9' {
		i++
	}
	if i == 0 {
		return 0, "", false
	}
	rest := line[i:]
	if len(rest) > 0 && (rest[0] == 'x' || rest[0] == 'X') {
		rest = rest[1:]
	}
	if len(rest) == 0 || (rest[0] != ' ' && rest[0] != '\t') {
		return 0, "", false
	}
	quantity, err := strconv.Atoi(line[:i])
	if err != nil {
		return 0, "", false
	}
	return quantity, strings.TrimSpace(rest), true
}
