// Package matcher resolves messy storefront product records to canonical
// catalog card entries. Identifier strategies run first because identifiers
// are unambiguous when present; fuzzy name comparison is the fallback.
// The matcher owns no mutable state: every function is pure over the catalog
// slice it is given.
package matcher

import (
	"sort"
	"strings"

	"github.com/koiseka/bm-companion/internal/models"
)

// deckMatchThreshold is the minimum similarity for a fuzzy bulk match.
const deckMatchThreshold = 0.80

// cosmeticQualifiers are finish/art words ignored by the token-overlap
// heuristic; they describe a printing, not a card.
var cosmeticQualifiers = map[string]bool{
	"foil": true, "art": true, "full": true, "showcase": true,
	"extended": true, "galaxy": true, "etched": true, "textured": true,
}

// ResolveByIdentifier finds the unique catalog record for a storefront
// product. Strategies run in precision order until one hits:
//  1. exact catalog ID equality
//  2. exact SKU equality
//  3. SKU embedded in the product ID (the storefront packs SKUs into IDs)
//  4. canonical ID equality against the product ID
//
// Only when every identifier strategy misses does it fall back to strict
// name resolution. Returns nil when nothing matches.
func ResolveByIdentifier(productID, productSKU, productName string, catalog []models.CardRecord) *models.CardRecord {
	if productID != "" {
		for i := range catalog {
			if catalog[i].CatalogID != "" && catalog[i].CatalogID == productID {
				return &catalog[i]
			}
		}
	}

	if productSKU != "" {
		for i := range catalog {
			if catalog[i].CatalogSKU != "" && catalog[i].CatalogSKU == productSKU {
				return &catalog[i]
			}
		}
	}

	if productID != "" {
		for i := range catalog {
			if catalog[i].CatalogSKU != "" && strings.Contains(productID, catalog[i].CatalogSKU) {
				return &catalog[i]
			}
		}
		for i := range catalog {
			if catalog[i].CanonicalID != "" && catalog[i].CanonicalID == productID {
				return &catalog[i]
			}
		}
	}

	if productName == "" {
		return nil
	}
	matches := FindProductMatches(productName, catalog)
	if len(matches) == 0 {
		return nil
	}
	return &matches[0]
}

// FindProductMatches resolves a single product title against the catalog,
// strictly. Exact name matches come first. If the query embeds a card number,
// only candidates carrying the same number qualify, and their de-numbered
// base names must contain one another; this keeps "Swamp #242 Foil" from
// matching the #7 art variant. Without a number the filter relaxes to
// substring containment, then to requiring every significant query word to
// appear in the candidate name.
//
// Malformed catalog entries (empty name) are skipped. No match returns an
// empty slice, never nil semantics the caller has to special-case.
func FindProductMatches(queryName string, catalog []models.CardRecord) []models.CardRecord {
	rawQuery := strings.ToLower(strings.TrimSpace(queryName))
	if rawQuery == "" {
		return nil
	}
	cleaned, queryNumber := NormalizeProductName(queryName)

	var matches []models.CardRecord
	seen := make(map[int]bool)
	add := func(i int) {
		if !seen[i] {
			seen[i] = true
			matches = append(matches, catalog[i])
		}
	}

	// Exact title matches always lead.
	for i := range catalog {
		if catalog[i].Name == "" {
			continue
		}
		cardName := strings.ToLower(strings.TrimSpace(catalog[i].Name))
		if cardName == rawQuery || cardName == cleaned {
			add(i)
		}
	}

	if queryNumber != "" {
		queryBase := stripCardNumber(cleaned)
		for i := range catalog {
			if catalog[i].Name == "" {
				continue
			}
			cardName := strings.ToLower(strings.TrimSpace(catalog[i].Name))
			if extractCardNumber(cardName) != queryNumber {
				continue
			}
			cardBase := stripCardNumber(cardName)
			if strings.Contains(cardBase, queryBase) || strings.Contains(queryBase, cardBase) {
				add(i)
			}
		}
		return matches
	}

	queryBase := stripCardNumber(cleaned)
	for i := range catalog {
		if catalog[i].Name == "" {
			continue
		}
		cardName := strings.ToLower(strings.TrimSpace(catalog[i].Name))
		// A number on exactly one side means a different printing, not a match.
		if extractCardNumber(cardName) != "" {
			continue
		}
		cardBase := stripCardNumber(cardName)
		if strings.Contains(cardBase, queryBase) || strings.Contains(queryBase, cardBase) {
			add(i)
		}
	}

	if len(matches) > 0 {
		return matches
	}

	significant := significantWords(queryBase)
	if len(significant) == 0 {
		return matches
	}
	for i := range catalog {
		if catalog[i].Name == "" {
			continue
		}
		cardName := strings.ToLower(strings.TrimSpace(catalog[i].Name))
		if extractCardNumber(cardName) != "" {
			continue
		}
		if containsAllWords(cardName, significant) {
			add(i)
		}
	}
	return matches
}

// FindDeckMatches resolves one deck-list name against the catalog, loosely.
// A candidate qualifies when its normalized base name equals the query,
// contains it (either direction), or scores above the similarity threshold.
// Results are ranked: fully identified records first, then exact title
// matches, then substring matches, then by descending similarity, with the
// catalog ID as the deterministic final tiebreak.
func FindDeckMatches(queryName string, catalog []models.CardRecord) []models.CardRecord {
	query := strings.ToLower(strings.TrimSpace(queryName))
	if query == "" {
		return nil
	}

	var matches []models.CardRecord
	for i := range catalog {
		if catalog[i].Name == "" {
			continue
		}
		base := NormalizeCatalogName(catalog[i].Name)
		if base == "" {
			continue
		}
		if base == query ||
			strings.Contains(base, query) || strings.Contains(query, base) ||
			Similarity(query, base) > deckMatchThreshold {
			matches = append(matches, catalog[i])
		}
	}

	sort.SliceStable(matches, func(a, b int) bool {
		ca, cb := matches[a], matches[b]

		if ca.HasFullIdentity() != cb.HasFullIdentity() {
			return ca.HasFullIdentity()
		}

		nameA := strings.ToLower(strings.TrimSpace(ca.Name))
		nameB := strings.ToLower(strings.TrimSpace(cb.Name))

		exactA, exactB := nameA == query, nameB == query
		if exactA != exactB {
			return exactA
		}

		containsA := strings.Contains(nameA, query) || strings.Contains(query, nameA)
		containsB := strings.Contains(nameB, query) || strings.Contains(query, nameB)
		if containsA != containsB {
			return containsA
		}

		simA, simB := Similarity(query, nameA), Similarity(query, nameB)
		if simA != simB {
			return simA > simB
		}

		return ca.CatalogID < cb.CatalogID
	})

	return matches
}

// IsBundle reports whether a product is a multi-card bundle. Bundles are
// excluded from matching entirely; their prices mean nothing per-card.
func IsBundle(productName, productSKU string) bool {
	return strings.Contains(productSKU, "-BNDL") || strings.Contains(productName, "Bundle")
}

// significantWords returns the query words worth requiring in a candidate:
// longer than two characters and not a cosmetic finish qualifier.
func significantWords(name string) []string {
	var words []string
	for _, w := range strings.Fields(name) {
		if len(w) > 2 && !cosmeticQualifiers[w] {
			words = append(words, w)
		}
	}
	return words
}

func containsAllWords(name string, words []string) bool {
	for _, w := range words {
		if !strings.Contains(name, w) {
			return false
		}
	}
	return true
}
