package models

import (
	"time"
)

// CardRecord is one entry of the storefront catalog feed. Names frequently
// embed set codes, card numbers and finish markers ("Swamp UNF #242 Foil"),
// which is why matching goes through the normalizer instead of raw equality.
type CardRecord struct {
	Name        string `json:"name"`
	CanonicalID string `json:"tcgplayerId"`
	CatalogID   string `json:"productId"`
	CatalogSKU  string `json:"productSku"`
	ImageURL    string `json:"productImg"`
}

// HasFullIdentity reports whether the record carries both a catalog ID and a
// SKU. Fully identified records rank above name-only records in bulk matching.
func (c CardRecord) HasFullIdentity() bool {
	return c.CatalogID != "" && c.CatalogSKU != ""
}

// CatalogRecord is the persisted form of a CardRecord, cached between feed
// refreshes so a restart doesn't force a refetch.
type CatalogRecord struct {
	CatalogID   string    `json:"catalog_id" gorm:"primaryKey"`
	Name        string    `json:"name" gorm:"not null;index"`
	CanonicalID string    `json:"canonical_id"`
	CatalogSKU  string    `json:"catalog_sku"`
	ImageURL    string    `json:"image_url"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Record converts the cached row back to the in-memory catalog form.
func (r CatalogRecord) Record() CardRecord {
	return CardRecord{
		Name:        r.Name,
		CanonicalID: r.CanonicalID,
		CatalogID:   r.CatalogID,
		CatalogSKU:  r.CatalogSKU,
		ImageURL:    r.ImageURL,
	}
}

// CatalogStatus summarizes the loaded catalog for the status endpoint.
type CatalogStatus struct {
	CardCount int        `json:"card_count"`
	FetchedAt *time.Time `json:"fetched_at,omitempty"`
	FeedURL   string     `json:"feed_url"`
}
