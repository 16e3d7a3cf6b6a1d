package wishlist

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/koiseka/bm-companion/internal/cart"
	"github.com/koiseka/bm-companion/internal/models"
)

type fakeCart struct {
	calls   []string
	failIDs map[string]bool
	errIDs  map[string]error
}

func (f *fakeCart) Submit(ctx context.Context, catalogID string, quantity int, sku string) (*cart.Result, error) {
	f.calls = append(f.calls, catalogID)
	if err := f.errIDs[catalogID]; err != nil {
		return nil, err
	}
	if f.failIDs[catalogID] {
		return &cart.Result{Success: false, Error: "out of stock"}, nil
	}
	return &cart.Result{Success: true}, nil
}

func newTestService(t *testing.T, fc *fakeCart) *Service {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(filepath.Join(t.TempDir(), "test.db")), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}
	if err := db.AutoMigrate(&models.WishlistItem{}); err != nil {
		t.Fatalf("failed to migrate: %v", err)
	}
	return NewService(db, fc, time.Millisecond)
}

func TestAddAndList(t *testing.T) {
	s := newTestService(t, &fakeCart{})

	first, err := s.Add(models.AddWishlistRequest{CatalogID: "1001", Name: "Lightning Bolt"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if first.Quantity != 1 {
		t.Errorf("quantity = %d, want default 1", first.Quantity)
	}

	// Re-adding the same catalog ID bumps the quantity, no duplicate row.
	again, err := s.Add(models.AddWishlistRequest{CatalogID: "1001", Name: "Lightning Bolt", Quantity: 2})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if again.Quantity != 3 {
		t.Errorf("quantity after re-add = %d, want 3", again.Quantity)
	}

	if _, err := s.Add(models.AddWishlistRequest{CatalogID: "3001", Name: "Counterspell"}); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	items, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("List() = %d items, want 2", len(items))
	}
}

func TestUpdateQuantity(t *testing.T) {
	s := newTestService(t, &fakeCart{})

	item, err := s.Add(models.AddWishlistRequest{CatalogID: "1001", Name: "Lightning Bolt"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	updated, err := s.UpdateQuantity(item.ID, 4)
	if err != nil {
		t.Fatalf("UpdateQuantity() error = %v", err)
	}
	if updated.Quantity != 4 {
		t.Errorf("quantity = %d, want 4", updated.Quantity)
	}

	// Below one clamps to one.
	updated, err = s.UpdateQuantity(item.ID, -3)
	if err != nil {
		t.Fatalf("UpdateQuantity() error = %v", err)
	}
	if updated.Quantity != 1 {
		t.Errorf("quantity = %d, want 1", updated.Quantity)
	}

	if _, err := s.UpdateQuantity(9999, 1); !errors.Is(err, ErrNotFound) {
		t.Errorf("UpdateQuantity(missing) error = %v, want ErrNotFound", err)
	}
}

func TestRemove(t *testing.T) {
	s := newTestService(t, &fakeCart{})

	item, err := s.Add(models.AddWishlistRequest{CatalogID: "1001", Name: "Lightning Bolt"})
	if err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := s.Remove(item.ID); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := s.Remove(item.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("Remove(missing) error = %v, want ErrNotFound", err)
	}
}

func TestAddAllToCart(t *testing.T) {
	fc := &fakeCart{failIDs: map[string]bool{"3001": true}}
	s := newTestService(t, fc)

	for _, req := range []models.AddWishlistRequest{
		{CatalogID: "1001", Name: "Lightning Bolt"},
		{CatalogID: "3001", Name: "Counterspell"},
	} {
		if _, err := s.Add(req); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	result, err := s.AddAllToCart(context.Background())
	if err != nil {
		t.Fatalf("AddAllToCart() error = %v", err)
	}
	if result.Added != 1 || result.Failed != 1 {
		t.Errorf("result = %+v, want 1 added 1 failed", result)
	}
	if len(fc.calls) != 2 {
		t.Errorf("cart calls = %d, want 2", len(fc.calls))
	}

	// Successful items leave the wishlist, failed ones stay for a retry.
	items, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 1 || items[0].CatalogID != "3001" {
		t.Errorf("remaining items = %+v, want only the failed one", items)
	}
}

func TestAddAllToCartContinuesPastTransportError(t *testing.T) {
	fc := &fakeCart{errIDs: map[string]error{"3001": errors.New("connection refused")}}
	s := newTestService(t, fc)

	for _, req := range []models.AddWishlistRequest{
		{CatalogID: "1001", Name: "Lightning Bolt"},
		{CatalogID: "3001", Name: "Counterspell"},
		{CatalogID: "4002", Name: "Sol Ring"},
	} {
		if _, err := s.Add(req); err != nil {
			t.Fatalf("Add() error = %v", err)
		}
	}

	result, err := s.AddAllToCart(context.Background())
	if err != nil {
		t.Fatalf("AddAllToCart() error = %v", err)
	}
	if result.Added != 2 || result.Failed != 1 {
		t.Errorf("result = %+v, want 2 added 1 failed", result)
	}
	// Every item gets its attempt despite the mid-list error.
	if len(fc.calls) != 3 {
		t.Errorf("cart calls = %d, want 3", len(fc.calls))
	}

	items, err := s.List()
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(items) != 1 || items[0].CatalogID != "3001" {
		t.Errorf("remaining items = %+v, want only the errored one", items)
	}
}
