package models

import (
	"time"
)

// WishlistItem is a storefront product the user starred for later. One row
// per catalog ID; quantity is adjusted in place rather than duplicating rows.
type WishlistItem struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	CatalogID  string    `json:"catalog_id" gorm:"not null;uniqueIndex"`
	Name       string    `json:"name"`
	CatalogSKU string    `json:"catalog_sku"`
	ImageURL   string    `json:"image_url"`
	Price      string    `json:"price"`
	Quantity   int       `json:"quantity" gorm:"default:1"`
	AddedAt    time.Time `json:"added_at"`
}

// AddWishlistRequest adds or re-stars a product.
type AddWishlistRequest struct {
	CatalogID  string `json:"catalog_id" binding:"required"`
	Name       string `json:"name"`
	CatalogSKU string `json:"catalog_sku"`
	ImageURL   string `json:"image_url"`
	Price      string `json:"price"`
	Quantity   int    `json:"quantity"`
}

// UpdateWishlistRequest changes the quantity of a starred product.
type UpdateWishlistRequest struct {
	Quantity int `json:"quantity" binding:"required"`
}

// WishlistCartResult reports the outcome of pushing the whole wishlist to the
// cart: per-item counts, matching the popup's "Added N items. M failed."
type WishlistCartResult struct {
	Added  int `json:"added"`
	Failed int `json:"failed"`
}
