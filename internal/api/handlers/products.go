package handlers

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/slabworks/card-pos/backend/internal/services"
)

type ProductHandler struct {
	searchService *services.SearchService
}

func NewProductHandler(search *services.SearchService) *ProductHandler {
	return &ProductHandler{searchService: search}
}

// Search runs the widening product search. An empty result set is a
// normal 200 response, never an error.
func (h *ProductHandler) Search(c *gin.Context) {
	name := strings.TrimSpace(c.Query("name"))
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "query parameter 'name' is required"})
		return
	}
	setName := strings.TrimSpace(c.Query("set"))
	number := strings.TrimSpace(c.Query("number"))

	limit := 0
	if l := c.Query("limit"); l != "" {
		if parsed, err := strconv.Atoi(l); err == nil {
			limit = parsed
		}
	}

	products, err := h.searchService.SearchProducts(c.Request.Context(), name, setName, number, limit)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"products":    products,
		"total_count": len(products),
	})
}
