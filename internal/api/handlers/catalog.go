package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/koiseka/bm-companion/internal/catalog"
)

type CatalogHandler struct {
	catalogService *catalog.Service
}

func NewCatalogHandler(catalogService *catalog.Service) *CatalogHandler {
	return &CatalogHandler{catalogService: catalogService}
}

func (h *CatalogHandler) GetStatus(c *gin.Context) {
	c.JSON(http.StatusOK, h.catalogService.Status())
}

// RefreshCatalog forces a feed refetch regardless of cache age.
func (h *CatalogHandler) RefreshCatalog(c *gin.Context) {
	if err := h.catalogService.Refresh(c.Request.Context()); err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, h.catalogService.Status())
}
