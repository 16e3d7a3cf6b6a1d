// Package catalog loads and caches the storefront card catalog. The feed is
// a single JSON batch; once loaded the catalog is read-only for the session.
package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"net/http"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/koiseka/bm-companion/internal/metrics"
	"github.com/koiseka/bm-companion/internal/models"
)

const (
	// cacheFreshness is how old the persisted catalog may be before a load
	// refetches the feed.
	cacheFreshness = 24 * time.Hour

	feedDefaultTimeout = 30 * time.Second
)

// Service owns the loaded catalog. Records are replaced wholesale on
// refresh, never mutated in place, so readers can hold a snapshot safely.
type Service struct {
	db      *gorm.DB
	client  *http.Client
	feedURL string

	mu        sync.RWMutex
	records   []models.CardRecord
	fetchedAt time.Time
}

// NewService creates a catalog service backed by the given database and
// feed URL.
func NewService(db *gorm.DB, feedURL string) *Service {
	return &Service{
		db: db,
		client: &http.Client{
			Timeout: feedDefaultTimeout,
		},
		feedURL: feedURL,
	}
}

// Load populates the in-memory catalog: from the persisted cache when it is
// fresh enough, otherwise from the feed. Safe to call repeatedly; a fresh
// in-memory catalog makes it a no-op.
func (s *Service) Load(ctx context.Context) error {
	s.mu.RLock()
	memFresh := len(s.records) > 0 && time.Since(s.fetchedAt) < cacheFreshness
	s.mu.RUnlock()
	if memFresh {
		return nil
	}

	if s.loadFromCache() {
		return nil
	}
	return s.Refresh(ctx)
}

// Refresh fetches the feed unconditionally and replaces both the in-memory
// catalog and the persisted cache.
func (s *Service) Refresh(ctx context.Context) error {
	records, err := s.fetchFeed(ctx)
	if err != nil {
		return err
	}

	now := time.Now()
	s.mu.Lock()
	s.records = records
	s.fetchedAt = now
	s.mu.Unlock()

	s.persist(records, now)
	metrics.CatalogSize.Set(float64(len(records)))
	metrics.CatalogRefreshesTotal.Inc()
	log.Printf("Catalog refreshed: %d cards loaded from feed", len(records))
	return nil
}

// Records returns the current catalog snapshot. Callers must treat it as
// read-only.
func (s *Service) Records() []models.CardRecord {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.records
}

// Status reports what's loaded for the status endpoint.
func (s *Service) Status() models.CatalogStatus {
	s.mu.RLock()
	defer s.mu.RUnlock()

	status := models.CatalogStatus{
		CardCount: len(s.records),
		FeedURL:   s.feedURL,
	}
	if !s.fetchedAt.IsZero() {
		t := s.fetchedAt
		status.FetchedAt = &t
	}
	return status
}

// StartRefresher re-checks catalog freshness periodically until the context
// is cancelled. Load no-ops while the catalog is fresh, so this only hits
// the feed once the cache ages out.
func (s *Service) StartRefresher(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if err := s.Load(ctx); err != nil {
				log.Printf("Catalog refresh failed: %v", err)
			}
		}
	}
}

// loadFromCache restores the catalog from the database if the cached rows
// are fresh. Returns false when there is no usable cache.
func (s *Service) loadFromCache() bool {
	if s.db == nil {
		return false
	}

	var rows []models.CatalogRecord
	if err := s.db.Find(&rows).Error; err != nil {
		log.Printf("Catalog cache read failed: %v", err)
		return false
	}
	if len(rows) == 0 {
		return false
	}
	if time.Since(rows[0].FetchedAt) >= cacheFreshness {
		return false
	}

	records := make([]models.CardRecord, 0, len(rows))
	for _, row := range rows {
		records = append(records, row.Record())
	}

	s.mu.Lock()
	s.records = records
	s.fetchedAt = rows[0].FetchedAt
	s.mu.Unlock()

	metrics.CatalogSize.Set(float64(len(records)))
	log.Printf("Catalog loaded from cache: %d cards", len(records))
	return true
}

// fetchFeed downloads and decodes the catalog feed. Entries without a
// catalog ID and without a name are dropped; they can never match anything.
func (s *Service) fetchFeed(ctx context.Context) ([]models.CardRecord, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.feedURL, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("catalog feed fetch failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("catalog feed returned %s", resp.Status)
	}

	var records []models.CardRecord
	if err := json.NewDecoder(resp.Body).Decode(&records); err != nil {
		return nil, fmt.Errorf("failed to decode catalog feed: %w", err)
	}

	filtered := records[:0]
	for _, r := range records {
		if r.CatalogID == "" && r.Name == "" {
			continue
		}
		filtered = append(filtered, r)
	}
	return filtered, nil
}

// persist replaces the cached catalog rows. Failures are logged, not
// returned; the in-memory catalog is already updated and a cache miss on the
// next start just refetches.
func (s *Service) persist(records []models.CardRecord, fetchedAt time.Time) {
	if s.db == nil {
		return
	}

	rows := make([]models.CatalogRecord, 0, len(records))
	for _, r := range records {
		if r.CatalogID == "" {
			continue
		}
		rows = append(rows, models.CatalogRecord{
			CatalogID:   r.CatalogID,
			Name:        r.Name,
			CanonicalID: r.CanonicalID,
			CatalogSKU:  r.CatalogSKU,
			ImageURL:    r.ImageURL,
			FetchedAt:   fetchedAt,
		})
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("1 = 1").Delete(&models.CatalogRecord{}).Error; err != nil {
			return err
		}
		if len(rows) == 0 {
			return nil
		}
		return tx.CreateInBatches(rows, 500).Error
	})
	if err != nil {
		log.Printf("Catalog cache write failed: %v", err)
	}
}
