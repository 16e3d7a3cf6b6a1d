package matcher

import (
	"regexp"
	"strings"
)

var (
	// Set abbreviations and markers the storefront appends to card names.
	// Everything from the first such token onward is catalog noise, not part
	// of the card's base name.
	setTokenPattern = regexp.MustCompile(`(?i)\s+(?:#|SLP|FDN|UNF|SLD|PRM|DSC|2XM|ONE|AFR|STA|CHK|ICE|MIR|SCH|INR|J25)`)

	cardNumberPattern = regexp.MustCompile(`#(\d+)`)
	trailingFoil      = regexp.MustCompile(`(?i)\s+foil\*?$`)
	trailingFullArt   = regexp.MustCompile(`(?i)\s+full\s+art$`)
)

// NormalizeCatalogName reduces a catalog entry name to its comparable base
// form: lower-cased, trimmed, and cut at the first set-code or card-number
// marker. "Watery Grave UNF Galaxy Foil" and "Watery Grave" normalize to the
// same base name.
func NormalizeCatalogName(raw string) string {
	name := strings.ToLower(strings.TrimSpace(raw))
	if loc := setTokenPattern.FindStringIndex(name); loc != nil {
		name = name[:loc[0]]
	}
	return strings.TrimSpace(name)
}

// NormalizeProductName cleans a storefront product title for matching. It
// lower-cases and trims, strips trailing "foil"/"foil*" and "full art"
// qualifiers, and extracts an embedded "#<digits>" card number if present.
// The number is returned separately so numbered variants (basic land art
// versions, mostly) are never conflated.
func NormalizeProductName(raw string) (cleaned string, cardNumber string) {
	name := strings.ToLower(strings.TrimSpace(raw))

	if m := cardNumberPattern.FindStringSubmatch(name); m != nil {
		cardNumber = m[1]
	}

	name = trailingFoil.ReplaceAllString(name, "")
	name = trailingFullArt.ReplaceAllString(name, "")

	return strings.TrimSpace(name), cardNumber
}

// stripCardNumber removes an embedded "#<digits>" token so base names can be
// compared across numbered variants.
func stripCardNumber(name string) string {
	return strings.TrimSpace(cardNumberPattern.ReplaceAllString(name, ""))
}

// extractCardNumber returns the embedded "#<digits>" value, or "".
func extractCardNumber(name string) string {
	if m := cardNumberPattern.FindStringSubmatch(name); m != nil {
		return m[1]
	}
	return ""
}
