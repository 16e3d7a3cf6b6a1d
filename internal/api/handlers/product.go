package handlers

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/koiseka/bm-companion/internal/catalog"
	"github.com/koiseka/bm-companion/internal/matcher"
	"github.com/koiseka/bm-companion/internal/metrics"
	"github.com/koiseka/bm-companion/internal/models"
	"github.com/koiseka/bm-companion/internal/prices"
)

type ProductHandler struct {
	catalogService *catalog.Service
	priceProvider  prices.Provider
}

func NewProductHandler(catalogService *catalog.Service, priceProvider prices.Provider) *ProductHandler {
	return &ProductHandler{
		catalogService: catalogService,
		priceProvider:  priceProvider,
	}
}

// ResolveProduct matches a scraped storefront product against the catalog and
// attaches a market price when the matched card has a canonical ID.
func (h *ProductHandler) ResolveProduct(c *gin.Context) {
	var req models.ResolveProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	product := req.Product

	// Bundles share identifiers with singles but are never card listings.
	if matcher.IsBundle(product.ProductName, product.ProductSKU) {
		metrics.MatchRequestsTotal.WithLabelValues("excluded").Inc()
		c.JSON(http.StatusOK, models.ResolveProductResponse{Matched: false, Excluded: true})
		return
	}

	card := matcher.ResolveByIdentifier(
		product.ProductID,
		product.ProductSKU,
		product.ProductName,
		h.catalogService.Records(),
	)
	if card == nil {
		metrics.MatchRequestsTotal.WithLabelValues("unmatched").Inc()
		c.JSON(http.StatusOK, models.ResolveProductResponse{Matched: false})
		return
	}
	metrics.MatchRequestsTotal.WithLabelValues("matched").Inc()

	resp := models.ResolveProductResponse{
		Matched:     true,
		Card:        card,
		CanonicalID: card.CanonicalID,
	}

	if card.CanonicalID != "" && h.priceProvider != nil {
		quote, err := h.priceProvider.Quote(c.Request.Context(), card.CanonicalID)
		if err != nil {
			// A missing price never fails the resolution.
			log.Printf("Price lookup failed for %s: %v", card.CanonicalID, err)
		} else if price, ok := prices.SelectPrice(quote, product.ProductName, product.ProductSKU); ok {
			resp.Price = price
			resp.PriceSource = "market"
		}
	}

	c.JSON(http.StatusOK, resp)
}
