// Command sales-report writes a sales summary workbook from an existing
// database, for end-of-month bookkeeping without hitting the server.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/slabworks/card-pos/backend/internal/config"
	"github.com/slabworks/card-pos/backend/internal/database"
	"github.com/slabworks/card-pos/backend/internal/services"
)

func main() {
	days := flag.Int("days", 30, "trailing window in days")
	out := flag.String("out", "", "output path (default sales-<days>d.xlsx)")
	flag.Parse()

	cfg := config.Load()
	if err := database.Initialize(cfg.DBPath); err != nil {
		log.Fatalf("Failed to initialize database: %v", err)
	}

	insights := services.NewInsightsService(database.GetDB())
	summary, err := insights.SalesSummary(*days)
	if err != nil {
		log.Fatalf("Failed to build sales summary: %v", err)
	}

	data, err := services.ExportXLSX(summary)
	if err != nil {
		log.Fatalf("Failed to render workbook: %v", err)
	}

	path := *out
	if path == "" {
		path = fmt.Sprintf("sales-%dd.xlsx", *days)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		log.Fatalf("Failed to write %s: %v", path, err)
	}

	log.Printf("Wrote %s: %d items sold, $%.2f revenue, $%.2f margin",
		path, summary.ItemsSold, summary.RevenueUSD, summary.MarginUSD)
}
