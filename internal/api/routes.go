package api

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/koiseka/bm-companion/internal/api/handlers"
	"github.com/koiseka/bm-companion/internal/cart"
	"github.com/koiseka/bm-companion/internal/catalog"
	"github.com/koiseka/bm-companion/internal/metrics"
	"github.com/koiseka/bm-companion/internal/prices"
	"github.com/koiseka/bm-companion/internal/wishlist"
)

func SetupRouter(catalogService *catalog.Service, priceProvider prices.Provider, cartClient cart.Client, wishlistService *wishlist.Service, submitDelay time.Duration) *gin.Engine {
	router := gin.Default()

	// CORS configuration - the extension's origin comes from the environment
	config := cors.DefaultConfig()
	if corsOrigins := os.Getenv("CORS_ALLOWED_ORIGINS"); corsOrigins != "" {
		config.AllowOrigins = strings.Split(corsOrigins, ",")
	} else {
		config.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	config.AllowCredentials = false
	router.Use(cors.New(config))
	router.Use(requestMetrics())

	// Initialize handlers
	productHandler := handlers.NewProductHandler(catalogService, priceProvider)
	importHandler := handlers.NewImportHandler(catalogService, cartClient, submitDelay)
	wishlistHandler := handlers.NewWishlistHandler(wishlistService)
	catalogHandler := handlers.NewCatalogHandler(catalogService)

	// API routes
	api := router.Group("/api")
	{
		// Product resolution
		products := api.Group("/products")
		{
			products.POST("/resolve", productHandler.ResolveProduct)
		}

		// Deck import sessions
		imports := api.Group("/import")
		{
			imports.POST("", importHandler.CreateSession)
			imports.GET("/:id", importHandler.GetSession)
			imports.PUT("/:id/allocations", importHandler.SetAllocation)
			imports.POST("/:id/submit", importHandler.SubmitSession)
			imports.POST("/:id/retry", importHandler.RetrySession)
			imports.GET("/:id/result", importHandler.GetResult)
		}

		// Wishlist routes
		wishlistGroup := api.Group("/wishlist")
		{
			wishlistGroup.GET("", wishlistHandler.GetWishlist)
			wishlistGroup.POST("", wishlistHandler.AddToWishlist)
			wishlistGroup.PUT("/:id", wishlistHandler.UpdateWishlistItem)
			wishlistGroup.DELETE("/:id", wishlistHandler.DeleteWishlistItem)
			wishlistGroup.DELETE("", wishlistHandler.ClearWishlist)
			wishlistGroup.POST("/cart", wishlistHandler.AddWishlistToCart)
		}

		// Catalog routes
		catalogGroup := api.Group("/catalog")
		{
			catalogGroup.GET("/status", catalogHandler.GetStatus)
			catalogGroup.POST("/refresh", catalogHandler.RefreshCatalog)
		}
	}

	// Health check
	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	// Prometheus scrape endpoint
	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// requestMetrics records request counts and latency per route. The route
// template is used, not the raw path, so session IDs don't explode the label
// cardinality.
func requestMetrics() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "" {
			path = "unmatched"
		}
		metrics.HTTPRequestsTotal.WithLabelValues(
			c.Request.Method, path, strconv.Itoa(c.Writer.Status()),
		).Inc()
		metrics.HTTPRequestDuration.WithLabelValues(
			c.Request.Method, path,
		).Observe(time.Since(start).Seconds())
	}
}
