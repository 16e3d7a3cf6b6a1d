// Package prices fetches third-party price quotes for canonical card
// identifiers. Quotes are cached and the upstream API is rate limited; the
// core never calls this on a hot path; it sits behind the product
// resolution endpoint.
package prices

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/time/rate"

	"github.com/koiseka/bm-companion/internal/metrics"
)

const (
	priceDefaultTimeout = 10 * time.Second
	quoteCacheSize      = 512
)

// Quote carries every finish variant the price API knows for a card. Empty
// strings mean no price for that variant; Available is false when the API
// had nothing at all.
type Quote struct {
	Available bool   `json:"available"`
	USD       string `json:"usd,omitempty"`
	USDFoil   string `json:"usd_foil,omitempty"`
	USDEtched string `json:"usd_etched,omitempty"`
	EUR       string `json:"eur,omitempty"`
	EURFoil   string `json:"eur_foil,omitempty"`
}

// Provider is the price collaborator: canonical identifier in, quote or
// "unavailable" out. Unavailable is data, not an error.
type Provider interface {
	Quote(ctx context.Context, canonicalID string) (*Quote, error)
}

// Client queries the card price API, pacing requests through a limiter and
// memoizing quotes per canonical ID.
type Client struct {
	client  *http.Client
	baseURL string
	limiter *rate.Limiter
	cache   *lru.Cache[string, *Quote]
}

// NewClient creates a price client for the given API base URL. The limiter
// allows a steady 10 requests per second with no bursting, which is the
// pacing the API asks integrators to respect.
func NewClient(baseURL string) *Client {
	cache, _ := lru.New[string, *Quote](quoteCacheSize)
	return &Client{
		client: &http.Client{
			Timeout: priceDefaultTimeout,
		},
		baseURL: strings.TrimRight(baseURL, "/"),
		limiter: rate.NewLimiter(rate.Every(100*time.Millisecond), 1),
		cache:   cache,
	}
}

// priceResponse is the API's card payload, reduced to the price block.
type priceResponse struct {
	Prices struct {
		USD       string `json:"usd"`
		USDFoil   string `json:"usd_foil"`
		USDEtched string `json:"usd_etched"`
		EUR       string `json:"eur"`
		EURFoil   string `json:"eur_foil"`
	} `json:"prices"`
}

// Quote fetches the price quote for a canonical identifier. A 404 from the
// API is an unavailable quote, not an error.
func (c *Client) Quote(ctx context.Context, canonicalID string) (*Quote, error) {
	if canonicalID == "" {
		return &Quote{}, nil
	}

	if cached, ok := c.cache.Get(canonicalID); ok {
		metrics.PriceLookupsTotal.WithLabelValues("cache").Inc()
		return cached, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, err
	}

	start := time.Now()
	url := fmt.Sprintf("%s/cards/tcgplayer/%s", c.baseURL, canonicalID)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		metrics.PriceLookupsTotal.WithLabelValues("error").Inc()
		return nil, err
	}
	defer resp.Body.Close()
	metrics.PriceLookupDuration.Observe(time.Since(start).Seconds())

	if resp.StatusCode == http.StatusNotFound {
		quote := &Quote{}
		c.cache.Add(canonicalID, quote)
		metrics.PriceLookupsTotal.WithLabelValues("unavailable").Inc()
		return quote, nil
	}
	if resp.StatusCode != http.StatusOK {
		metrics.PriceLookupsTotal.WithLabelValues("error").Inc()
		return nil, fmt.Errorf("price API returned %s", resp.Status)
	}

	var parsed priceResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, fmt.Errorf("failed to decode price response: %w", err)
	}

	quote := &Quote{
		Available: true,
		USD:       parsed.Prices.USD,
		USDFoil:   parsed.Prices.USDFoil,
		USDEtched: parsed.Prices.USDEtched,
		EUR:       parsed.Prices.EUR,
		EURFoil:   parsed.Prices.EURFoil,
	}
	c.cache.Add(canonicalID, quote)
	metrics.PriceLookupsTotal.WithLabelValues("api").Inc()
	return quote, nil
}

// SelectPrice picks the variant price matching the product's finish. Etched
// products (SKU "-EF" or "etched foil" in the name) prefer the etched price,
// regular foils prefer the foil price, everything else prefers the plain
// price. EUR prices are the last resort when no USD variant exists. The
// second return is false when the quote has nothing usable.
func SelectPrice(q *Quote, productName, productSKU string) (string, bool) {
	if q == nil || !q.Available {
		return "", false
	}

	lowerName := strings.ToLower(productName)
	lowerSKU := strings.ToLower(productSKU)

	var ordered []string
	switch {
	case strings.Contains(productSKU, "-EF") || strings.Contains(lowerName, "etched foil"):
		ordered = []string{q.USDEtched, q.USDFoil, q.USD}
	case strings.Contains(lowerName, "foil") || strings.Contains(lowerSKU, "-hf"):
		ordered = []string{q.USDFoil, q.USDEtched, q.USD}
	default:
		ordered = []string{q.USD, q.USDFoil, q.USDEtched}
	}
	ordered = append(ordered, q.EUR, q.EURFoil)

	for _, price := range ordered {
		if price != "" {
			return price, true
		}
	}
	return "", false
}
