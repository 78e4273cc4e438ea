package services

import (
	"fmt"
	"io"
	"time"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"
	gocache "github.com/patrickmn/go-cache"
	"github.com/xuri/excelize/v2"
	"gorm.io/gorm"

	"github.com/slabworks/card-pos/backend/internal/models"
)

const (
	insightsCacheTTL     = 5 * time.Minute
	insightsCacheCleanup = 10 * time.Minute
)

// InsightsService produces sales summaries over sold inventory, with a
// short-lived cache so dashboard polling doesn't hammer the database.
type InsightsService struct {
	db    *gorm.DB
	cache *gocache.Cache
}

func NewInsightsService(db *gorm.DB) *InsightsService {
	return &InsightsService{
		db:    db,
		cache: gocache.New(insightsCacheTTL, insightsCacheCleanup),
	}
}

// SalesSummary aggregates sold items over the trailing N days.
func (s *InsightsService) SalesSummary(days int) (*models.SalesSummary, error) {
	if days <= 0 {
		days = 30
	}

	cacheKey := fmt.Sprintf("sales:%d", days)
	if cached, ok := s.cache.Get(cacheKey); ok {
		return cached.(*models.SalesSummary), nil
	}

	since := time.Now().AddDate(0, 0, -days)
	summary := &models.SalesSummary{
		Days:        days,
		GeneratedAt: time.Now(),
	}

	type totalsRow struct {
		Count   int
		Revenue float64
		Cost    float64
	}
	var totals totalsRow
	err := s.db.Model(&models.InventoryItem{}).
		Select("COUNT(*) as count, COALESCE(SUM(sold_price_usd), 0) as revenue, COALESCE(SUM(cost_usd), 0) as cost").
		Where("status = ? AND sold_at >= ?", models.StatusSold, since).
		Scan(&totals).Error
	if err != nil {
		return nil, err
	}
	summary.ItemsSold = totals.Count
	summary.RevenueUSD = totals.Revenue
	summary.CostUSD = totals.Cost
	summary.MarginUSD = totals.Revenue - totals.Cost

	type gameRow struct {
		Game    string
		Count   int
		Revenue float64
	}
	var gameRows []gameRow
	err = s.db.Model(&models.InventoryItem{}).
		Select("game, COUNT(*) as count, COALESCE(SUM(sold_price_usd), 0) as revenue").
		Where("status = ? AND sold_at >= ?", models.StatusSold, since).
		Group("game").
		Order("revenue DESC").
		Scan(&gameRows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range gameRows {
		summary.ByGame = append(summary.ByGame, models.GameSales{
			Game:       models.Game(r.Game),
			ItemsSold:  r.Count,
			RevenueUSD: r.Revenue,
		})
	}

	type dayRow struct {
		Day     string
		Count   int
		Revenue float64
		Cost    float64
	}
	var dayRows []dayRow
	err = s.db.Model(&models.InventoryItem{}).
		Select("DATE(sold_at) as day, COUNT(*) as count, COALESCE(SUM(sold_price_usd), 0) as revenue, COALESCE(SUM(cost_usd), 0) as cost").
		Where("status = ? AND sold_at >= ?", models.StatusSold, since).
		Group("DATE(sold_at)").
		Order("day ASC").
		Scan(&dayRows).Error
	if err != nil {
		return nil, err
	}
	for _, r := range dayRows {
		summary.Daily = append(summary.Daily, models.DailySales{
			Date:       r.Day,
			ItemsSold:  r.Count,
			RevenueUSD: r.Revenue,
			CostUSD:    r.Cost,
		})
	}

	s.cache.Set(cacheKey, summary, gocache.DefaultExpiration)
	return summary, nil
}

// InvalidateCache drops cached summaries; called after a sale so the
// next dashboard read is current.
func (s *InsightsService) InvalidateCache() {
	s.cache.Flush()
}

// ExportXLSX renders a sales summary as an Excel workbook: a totals
// sheet and a per-day sheet.
func ExportXLSX(summary *models.SalesSummary) ([]byte, error) {
	f := excelize.NewFile()
	defer f.Close()

	const summarySheet = "Summary"
	if err := f.SetSheetName("Sheet1", summarySheet); err != nil {
		return nil, err
	}

	rows := [][]interface{}{
		{"Generated", summary.GeneratedAt.Format(time.RFC3339)},
		{"Window (days)", summary.Days},
		{"Items sold", summary.ItemsSold},
		{"Revenue (USD)", summary.RevenueUSD},
		{"Cost (USD)", summary.CostUSD},
		{"Margin (USD)", summary.MarginUSD},
		{},
		{"Game", "Items sold", "Revenue (USD)"},
	}
	for _, g := range summary.ByGame {
		rows = append(rows, []interface{}{string(g.Game), g.ItemsSold, g.RevenueUSD})
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(summarySheet, cell, &row); err != nil {
			return nil, err
		}
	}

	const dailySheet = "Daily"
	if _, err := f.NewSheet(dailySheet); err != nil {
		return nil, err
	}
	header := []interface{}{"Date", "Items sold", "Revenue (USD)", "Cost (USD)"}
	if err := f.SetSheetRow(dailySheet, "A1", &header); err != nil {
		return nil, err
	}
	for i, d := range summary.Daily {
		row := []interface{}{d.Date, d.ItemsSold, d.RevenueUSD, d.CostUSD}
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return nil, err
		}
		if err := f.SetSheetRow(dailySheet, cell, &row); err != nil {
			return nil, err
		}
	}

	buf, err := f.WriteToBuffer()
	if err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// RenderSalesChart writes an interactive HTML line chart of daily
// revenue and cost to w.
func RenderSalesChart(summary *models.SalesSummary, w io.Writer) error {
	line := charts.NewLine()
	line.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{
			Width:  "900px",
			Height: "500px",
		}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Sales",
			Subtitle: fmt.Sprintf("Trailing %d days", summary.Days),
		}),
		charts.WithTooltipOpts(opts.Tooltip{
			Show:    opts.Bool(true),
			Trigger: "axis",
		}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
	)

	dates := make([]string, 0, len(summary.Daily))
	revenue := make([]opts.LineData, 0, len(summary.Daily))
	cost := make([]opts.LineData, 0, len(summary.Daily))
	for _, d := range summary.Daily {
		dates = append(dates, d.Date)
		revenue = append(revenue, opts.LineData{Value: d.RevenueUSD})
		cost = append(cost, opts.LineData{Value: d.CostUSD})
	}

	line.SetXAxis(dates).
		AddSeries("Revenue", revenue).
		AddSeries("Cost", cost).
		SetSeriesOptions(charts.WithLineChartOpts(opts.LineChart{Smooth: opts.Bool(true)}))

	return line.Render(w)
}
