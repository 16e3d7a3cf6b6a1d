package models

// ExtractedProductInfo is the typed product identity produced by the page
// scraping collaborator. The core never touches page markup; it only sees
// this value.
type ExtractedProductInfo struct {
	ProductID   string `json:"product_id"`
	ProductSKU  string `json:"product_sku"`
	ProductName string `json:"product_name"`
	ProductImg  string `json:"product_img"`
	StorePrice  string `json:"store_price"`
}

// ResolveProductRequest is the price badge lookup payload.
type ResolveProductRequest struct {
	Product ExtractedProductInfo `json:"product" binding:"required"`
}

// ResolveProductResponse carries everything the badge needs: whether the
// product is in the catalog, the matched record, and a price quote when one
// is available.
type ResolveProductResponse struct {
	Matched     bool        `json:"matched"`
	Excluded    bool        `json:"excluded,omitempty"` // bundles are never matched
	Card        *CardRecord `json:"card,omitempty"`
	CanonicalID string      `json:"canonical_id,omitempty"`
	Price       string      `json:"price,omitempty"`
	PriceSource string      `json:"price_source,omitempty"`
}
