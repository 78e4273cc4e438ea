package handlers

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/slabworks/card-pos/backend/internal/services"
)

type InsightsHandler struct {
	insights *services.InsightsService
}

func NewInsightsHandler(insights *services.InsightsService) *InsightsHandler {
	return &InsightsHandler{insights: insights}
}

// GetSales returns the sales summary as JSON, or as an Excel workbook
// when format=xlsx.
func (h *InsightsHandler) GetSales(c *gin.Context) {
	days, _ := strconv.Atoi(c.Query("days"))

	summary, err := h.insights.SalesSummary(days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	if c.Query("format") == "xlsx" {
		data, err := services.ExportXLSX(summary)
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
			return
		}
		filename := fmt.Sprintf("sales-%s.xlsx", time.Now().Format("2006-01-02"))
		c.Header("Content-Disposition", "attachment; filename="+filename)
		c.Data(http.StatusOK, "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet", data)
		return
	}

	c.JSON(http.StatusOK, summary)
}

// GetSalesChart renders the daily revenue/cost chart as a standalone
// HTML page.
func (h *InsightsHandler) GetSalesChart(c *gin.Context) {
	days, _ := strconv.Atoi(c.Query("days"))

	summary, err := h.insights.SalesSummary(days)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}

	var buf bytes.Buffer
	if err := services.RenderSalesChart(summary, &buf); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
		return
	}
	c.Data(http.StatusOK, "text/html; charset=utf-8", buf.Bytes())
}
