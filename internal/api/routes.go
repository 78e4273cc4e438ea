package api

import (
	"strconv"
	"strings"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/slabworks/card-pos/backend/internal/api/handlers"
	"github.com/slabworks/card-pos/backend/internal/metrics"
	"github.com/slabworks/card-pos/backend/internal/services"
)

func SetupRouter(
	psaService *services.PSAService,
	searchService *services.SearchService,
	sessionManager *services.SessionManager,
	inventoryService *services.InventoryService,
	insightsService *services.InsightsService,
	certPrefetcher *services.DebouncedLookup,
	corsOrigins string,
) *gin.Engine {
	router := gin.Default()

	// CORS configuration - allow origins from environment or use defaults
	config := cors.DefaultConfig()
	if corsOrigins != "" {
		config.AllowOrigins = strings.Split(corsOrigins, ",")
	} else {
		config.AllowOrigins = []string{"http://localhost:5173", "http://localhost:3000"}
	}
	config.AllowMethods = []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}
	config.AllowHeaders = []string{"Origin", "Content-Type", "Accept", "Authorization"}
	config.AllowCredentials = false
	router.Use(cors.New(config))
	router.Use(metricsMiddleware())

	psaHandler := handlers.NewPSAHandler(psaService)
	productHandler := handlers.NewProductHandler(searchService)
	sessionHandler := handlers.NewSessionHandler(sessionManager, inventoryService, certPrefetcher)
	inventoryHandler := handlers.NewInventoryHandler(inventoryService, insightsService)
	insightsHandler := handlers.NewInsightsHandler(insightsService)

	api := router.Group("/api")
	{
		api.GET("/psa/:cert", psaHandler.LookupCert)

		api.GET("/products/search", productHandler.Search)

		sessions := api.Group("/sessions")
		{
			sessions.POST("", sessionHandler.OpenSession)
			sessions.GET("/:id", sessionHandler.GetSession)
			sessions.DELETE("/:id", sessionHandler.AbandonSession)
			sessions.POST("/:id/items", sessionHandler.AddItem)
			sessions.PUT("/:id/items/:lineId", sessionHandler.UpdateItem)
			sessions.DELETE("/:id/items/:lineId", sessionHandler.RemoveItem)
			sessions.DELETE("/:id/items", sessionHandler.ClearItems)
			sessions.POST("/:id/checkout", sessionHandler.Checkout)
		}

		inventory := api.Group("/inventory")
		{
			inventory.GET("", inventoryHandler.List)
			inventory.GET("/stats", inventoryHandler.GetStats)
			inventory.GET("/:id", inventoryHandler.GetItem)
			inventory.PUT("/:id", inventoryHandler.UpdateItem)
			inventory.POST("/:id/sell", inventoryHandler.SellItem)
		}

		insights := api.Group("/insights")
		{
			insights.GET("/sales", insightsHandler.GetSales)
			insights.GET("/sales/chart", insightsHandler.GetSalesChart)
		}
	}

	router.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{"status": "ok"})
	})

	router.GET("/metrics", gin.WrapH(promhttp.Handler()))

	return router
}

// metricsMiddleware records request counts and latency per route.
func metricsMiddleware() gin.HandlerFunc {
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
		metrics.HTTPRequestDuration.WithLabelValues(c.Request.Method, path).
			Observe(time.Since(start).Seconds())
	}
}
