// Package wishlist stores starred storefront products and can push the whole
// list into the cart in one pass.
package wishlist

import (
	"context"
	"errors"
	"log"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/koiseka/bm-companion/internal/cart"
	"github.com/koiseka/bm-companion/internal/models"
)

// defaultCartDelay spaces out wishlist cart submissions so the storefront
// doesn't drop requests.
const defaultCartDelay = 300 * time.Millisecond

var ErrNotFound = errors.New("wishlist item not found")

type Service struct {
	db        *gorm.DB
	cart      cart.Client
	cartDelay time.Duration
}

func NewService(db *gorm.DB, cartClient cart.Client, cartDelay time.Duration) *Service {
	if cartDelay <= 0 {
		cartDelay = defaultCartDelay
	}
	return &Service{
		db:        db,
		cart:      cartClient,
		cartDelay: cartDelay,
	}
}

// List returns all wishlist items, newest first.
func (s *Service) List() ([]models.WishlistItem, error) {
	var items []models.WishlistItem
	if err := s.db.Order("added_at DESC").Find(&items).Error; err != nil {
		return nil, err
	}
	return items, nil
}

// Add stars a product. Re-adding an existing catalog ID bumps its quantity
// instead of creating a duplicate row.
func (s *Service) Add(req models.AddWishlistRequest) (*models.WishlistItem, error) {
	quantity := req.Quantity
	if quantity < 1 {
		quantity = 1
	}

	item := models.WishlistItem{
		CatalogID:  req.CatalogID,
		Name:       req.Name,
		CatalogSKU: req.CatalogSKU,
		ImageURL:   req.ImageURL,
		Price:      req.Price,
		Quantity:   quantity,
		AddedAt:    time.Now(),
	}

	err := s.db.Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "catalog_id"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"quantity": gorm.Expr("quantity + ?", quantity),
			"price":    req.Price,
		}),
	}).Create(&item).Error
	if err != nil {
		return nil, err
	}

	var saved models.WishlistItem
	if err := s.db.Where("catalog_id = ?", req.CatalogID).First(&saved).Error; err != nil {
		return nil, err
	}
	return &saved, nil
}

// UpdateQuantity sets a new quantity for an item. Values below 1 are clamped
// to 1; removing an item is an explicit Remove, not a zero quantity.
func (s *Service) UpdateQuantity(id uint, quantity int) (*models.WishlistItem, error) {
	if quantity < 1 {
		quantity = 1
	}

	var item models.WishlistItem
	if err := s.db.First(&item, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrNotFound
		}
		return nil, err
	}

	item.Quantity = quantity
	if err := s.db.Save(&item).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (s *Service) Remove(id uint) error {
	result := s.db.Delete(&models.WishlistItem{}, id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrNotFound
	}
	return nil
}

func (s *Service) Clear() error {
	return s.db.Where("1 = 1").Delete(&models.WishlistItem{}).Error
}

// AddAllToCart submits every wishlist item to the cart sequentially, with a
// delay between submissions. Items that make it into the cart are removed
// from the wishlist; failures stay so the user can retry.
func (s *Service) AddAllToCart(ctx context.Context) (*models.WishlistCartResult, error) {
	items, err := s.List()
	if err != nil {
		return nil, err
	}

	result := &models.WishlistCartResult{}
	for i, item := range items {
		if i > 0 {
			select {
			case <-ctx.Done():
				return result, ctx.Err()
			case <-time.After(s.cartDelay):
			}
		}

		res, err := s.cart.Submit(ctx, item.CatalogID, item.Quantity, item.CatalogSKU)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			// A transport error fails this item only; the rest of the list
			// still gets its attempt.
			log.Printf("Wishlist cart submission error for %s: %v", item.Name, err)
			result.Failed++
			continue
		}
		if !res.Success {
			log.Printf("Wishlist cart add failed for %s: %s", item.Name, res.Error)
			result.Failed++
			continue
		}

		result.Added++
		if err := s.db.Delete(&models.WishlistItem{}, item.ID).Error; err != nil {
			log.Printf("Failed to remove wishlist item %d after cart add: %v", item.ID, err)
		}
	}

	return result, nil
}
