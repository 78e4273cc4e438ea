package services

import (
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/slabworks/card-pos/backend/internal/metrics"
	"github.com/slabworks/card-pos/backend/internal/models"
)

var (
	ErrEmptySession   = errors.New("session has no staged items")
	ErrItemNotFound   = errors.New("inventory item not found")
	ErrItemNotInStock = errors.New("inventory item is not in stock")
)

// InventoryService commits staged sessions to durable inventory and
// manages items from there on.
type InventoryService struct {
	db *gorm.DB
}

func NewInventoryService(db *gorm.DB) *InventoryService {
	return &InventoryService{db: db}
}

// Checkout commits a session: staged quantities expand into one
// inventory row per physical card, ledger-only fields (line id,
// quantity) are dropped, and a transaction header records the totals.
// Trade-out lines represent cards leaving the shop, so they contribute
// to the header's trade-out value instead of becoming inventory.
func (s *InventoryService) Checkout(session *Session, notes string) (*models.TransactionRecord, error) {
	items := session.Ledger.Items()
	if len(items) == 0 {
		return nil, ErrEmptySession
	}

	record := &models.TransactionRecord{
		ID:        uuid.New().String(),
		Kind:      session.Kind,
		Notes:     notes,
		CreatedAt: time.Now(),
	}

	var rows []models.InventoryItem
	for _, item := range items {
		record.TotalQuantity += item.Quantity
		record.TotalCostUSD += item.PurchasePrice * float64(item.Quantity)

		if item.TradeSide == models.TradeOut {
			record.TradeOutValueUSD += item.FrontLabelPrice * float64(item.Quantity)
			continue
		}

		for i := 0; i < item.Quantity; i++ {
			rows = append(rows, models.InventoryItem{
				ID:            uuid.New().String(),
				Game:          item.Game,
				CardName:      item.CardName,
				SetName:       item.SetName,
				Series:        item.Series,
				CardNumber:    item.CardNumber,
				BarcodeID:     item.BarcodeID,
				CertNumber:    item.CertNumber,
				Grade:         item.Grade,
				Condition:     item.Condition,
				ProductID:     item.ProductID,
				ProductURL:    item.ProductURL,
				ImageURL:      item.ImageURL,
				Rarity:        item.Rarity,
				CostUSD:       item.PurchasePrice,
				LabelPriceUSD: item.FrontLabelPrice,
				Status:        models.StatusInStock,
				AcquiredVia:   session.Kind,
				TransactionID: record.ID,
			})
		}
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(record).Error; err != nil {
			return err
		}
		if len(rows) > 0 {
			if err := tx.CreateInBatches(rows, 100).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("checkout failed: %w", err)
	}

	metrics.CheckoutsTotal.WithLabelValues(string(session.Kind)).Inc()
	metrics.UpdateInventoryMetrics(s.db)
	log.Printf("Inventory: committed %s %s (%d cards, $%.2f cost)",
		session.Kind, record.ID, record.TotalQuantity, record.TotalCostUSD)
	return record, nil
}

// List returns inventory items, newest first, optionally filtered by
// game and status.
func (s *InventoryService) List(game models.Game, status models.ItemStatus, limit, offset int) ([]models.InventoryItem, int64, error) {
	query := s.db.Model(&models.InventoryItem{})
	if game != "" {
		query = query.Where("game = ?", game)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if limit <= 0 || limit > 200 {
		limit = 50
	}

	var items []models.InventoryItem
	err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&items).Error
	return items, total, err
}

// Get fetches a single inventory item.
func (s *InventoryService) Get(id string) (*models.InventoryItem, error) {
	var item models.InventoryItem
	if err := s.db.First(&item, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrItemNotFound
		}
		return nil, err
	}
	return &item, nil
}

// Update applies price/condition/status edits to an item.
func (s *InventoryService) Update(id string, req models.UpdateInventoryRequest) (*models.InventoryItem, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}

	if req.LabelPriceUSD != nil && *req.LabelPriceUSD >= 0 {
		item.LabelPriceUSD = *req.LabelPriceUSD
	}
	if req.Condition != nil {
		item.Condition = *req.Condition
	}
	if req.Status != nil {
		item.Status = *req.Status
	}

	if err := s.db.Save(item).Error; err != nil {
		return nil, err
	}
	metrics.UpdateInventoryMetrics(s.db)
	return item, nil
}

// MarkSold finalizes a sale at the given price.
func (s *InventoryService) MarkSold(id string, soldPrice float64) (*models.InventoryItem, error) {
	item, err := s.Get(id)
	if err != nil {
		return nil, err
	}
	if item.Status != models.StatusInStock {
		return nil, ErrItemNotInStock
	}

	now := time.Now()
	item.Status = models.StatusSold
	item.SoldPriceUSD = soldPrice
	item.SoldAt = &now

	if err := s.db.Save(item).Error; err != nil {
		return nil, err
	}
	metrics.UpdateInventoryMetrics(s.db)
	log.Printf("Inventory: sold %s (%s) for $%.2f", item.CardName, item.ID, soldPrice)
	return item, nil
}

// Stats computes current inventory aggregates.
func (s *InventoryService) Stats() (*models.InventoryStats, error) {
	var stats models.InventoryStats

	var inStock, sold int64
	if err := s.db.Model(&models.InventoryItem{}).Where("status = ?", models.StatusInStock).Count(&inStock).Error; err != nil {
		return nil, err
	}
	if err := s.db.Model(&models.InventoryItem{}).Where("status = ?", models.StatusSold).Count(&sold).Error; err != nil {
		return nil, err
	}
	stats.ItemsInStock = int(inStock)
	stats.ItemsSold = int(sold)

	s.db.Model(&models.InventoryItem{}).Where("status = ?", models.StatusInStock).
		Select("COALESCE(SUM(cost_usd), 0)").Scan(&stats.StockCostUSD)
	s.db.Model(&models.InventoryItem{}).Where("status = ?", models.StatusInStock).
		Select("COALESCE(SUM(label_price_usd), 0)").Scan(&stats.StockLabelUSD)
	s.db.Model(&models.InventoryItem{}).Where("status = ?", models.StatusSold).
		Select("COALESCE(SUM(sold_price_usd), 0)").Scan(&stats.LifetimeSales)

	var soldCost float64
	s.db.Model(&models.InventoryItem{}).Where("status = ?", models.StatusSold).
		Select("COALESCE(SUM(cost_usd), 0)").Scan(&soldCost)
	stats.LifetimeMargin = stats.LifetimeSales - soldCost

	return &stats, nil
}
