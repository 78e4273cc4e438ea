package models

import "time"

// DailySales is one day's slice of a sales summary.
type DailySales struct {
	Date       string  `json:"date"` // YYYY-MM-DD
	ItemsSold  int     `json:"items_sold"`
	RevenueUSD float64 `json:"revenue_usd"`
	CostUSD    float64 `json:"cost_usd"`
}

// GameSales aggregates sold items for a single game.
type GameSales struct {
	Game       Game    `json:"game"`
	ItemsSold  int     `json:"items_sold"`
	RevenueUSD float64 `json:"revenue_usd"`
}

// SalesSummary covers the trailing N days of sold inventory.
type SalesSummary struct {
	Days        int          `json:"days"`
	ItemsSold   int          `json:"items_sold"`
	RevenueUSD  float64      `json:"revenue_usd"`
	CostUSD     float64      `json:"cost_usd"`
	MarginUSD   float64      `json:"margin_usd"`
	ByGame      []GameSales  `json:"by_game"`
	Daily       []DailySales `json:"daily"`
	GeneratedAt time.Time    `json:"generated_at"`
}
