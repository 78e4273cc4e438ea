package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/slabworks/card-pos/backend/internal/models"
	"github.com/slabworks/card-pos/backend/internal/services"
)

type InventoryHandler struct {
	inventory *services.InventoryService
	insights  *services.InsightsService
}

func NewInventoryHandler(inventory *services.InventoryService, insights *services.InsightsService) *InventoryHandler {
	return &InventoryHandler{inventory: inventory, insights: insights}
}

func (h *InventoryHandler) List(c *gin.Context) {
	game := models.Game(c.Query("game"))
	status := models.ItemStatus(c.Query("status"))

	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))

	items, total, err := h.inventory.List(game, status, limit, offset)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"items":       items,
		"total_count": total,
	})
}

func (h *InventoryHandler) GetItem(c *gin.Context) {
	item, err := h.inventory.Get(c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) UpdateItem(c *gin.Context) {
	var req models.UpdateInventoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request: " + err.Error()})
		return
	}

	item, err := h.inventory.Update(c.Param("id"), req)
	if err != nil {
		if errors.Is(err, services.ErrItemNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) SellItem(c *gin.Context) {
	var req models.SellItemRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.SoldPriceUSD < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "sold_price_usd is required and must be non-negative"})
		return
	}

	item, err := h.inventory.MarkSold(c.Param("id"), req.SoldPriceUSD)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrItemNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "item not found"})
		case errors.Is(err, services.ErrItemNotInStock):
			c.JSON(http.StatusConflict, gin.H{"error": "item is not in stock"})
		default:
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		}
		return
	}

	// Sales summaries are cached; a fresh sale should show up promptly.
	h.insights.InvalidateCache()

	c.JSON(http.StatusOK, item)
}

func (h *InventoryHandler) GetStats(c *gin.Context) {
	stats, err := h.inventory.Stats()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, stats)
}
