// Package metrics provides Prometheus metrics for the card POS backend.
// Scrape these at /metrics for Grafana dashboards and alerting.
package metrics

import (
	"log"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"gorm.io/gorm"
)

var (
	// HTTP Metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "path", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "pos_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	// PSA Lookup Metrics
	PSALookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_psa_lookups_total",
			Help: "PSA certificate lookups by result",
		},
		[]string{"result"}, // "success", "cached", "not_found", "timeout", "error"
	)

	PSALookupDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pos_psa_lookup_duration_seconds",
			Help:    "PSA lookup latency in seconds",
			Buckets: []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	// Product Search Metrics
	ProductSearchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_product_searches_total",
			Help: "Product search attempts by cascade step and result",
		},
		[]string{"step", "result"}, // step: "exact", "clean_name", "no_set", "clean_name_no_set"
	)

	SearchCascadeDepth = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "pos_search_cascade_depth",
			Help:    "Number of cascade steps attempted per product search",
			Buckets: []float64{1, 2, 3, 4},
		},
	)

	// Session Metrics
	SessionsOpen = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pos_sessions_open",
			Help: "Number of currently open purchase/trade sessions",
		},
	)

	StagedItemsTotal = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pos_staged_items_total",
			Help: "Line items staged across all open sessions",
		},
	)

	CheckoutsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pos_checkouts_total",
			Help: "Committed sessions by kind",
		},
		[]string{"kind"},
	)

	// Inventory Metrics
	InventoryItems = promauto.NewGaugeVec(
		prometheus.GaugeOpts{
			Name: "pos_inventory_items",
			Help: "Inventory items by status",
		},
		[]string{"status"},
	)

	InventoryCostUSD = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pos_inventory_cost_usd",
			Help: "Acquisition cost of in-stock inventory in USD",
		},
	)

	InventoryLabelUSD = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pos_inventory_label_value_usd",
			Help: "Front-label value of in-stock inventory in USD",
		},
	)
)

// UpdateInventoryMetrics refreshes inventory gauges from the database.
// Called after checkouts and periodically from the background refresher.
func UpdateInventoryMetrics(db *gorm.DB) {
	type statusRow struct {
		Status string
		Count  int64
	}
	var rows []statusRow
	if err := db.Table("inventory_items").
		Select("status, COUNT(*) as count").
		Group("status").
		Scan(&rows).Error; err != nil {
		log.Printf("metrics: failed to count inventory: %v", err)
		return
	}
	// Zero the known statuses first; a status absent from the GROUP BY
	// result (last in-stock item just sold) must not keep a stale value.
	InventoryItems.WithLabelValues("in_stock").Set(0)
	InventoryItems.WithLabelValues("sold").Set(0)
	for _, r := range rows {
		InventoryItems.WithLabelValues(r.Status).Set(float64(r.Count))
	}

	var cost, label float64
	db.Table("inventory_items").Where("status = ?", "in_stock").
		Select("COALESCE(SUM(cost_usd), 0)").Scan(&cost)
	db.Table("inventory_items").Where("status = ?", "in_stock").
		Select("COALESCE(SUM(label_price_usd), 0)").Scan(&label)
	InventoryCostUSD.Set(cost)
	InventoryLabelUSD.Set(label)
}
