package services

import (
	"errors"
	"testing"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/slabworks/card-pos/backend/internal/models"
)

func openTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("open test db: %v", err)
	}
	if err := db.AutoMigrate(&models.InventoryItem{}, &models.TransactionRecord{}); err != nil {
		t.Fatalf("migrate test db: %v", err)
	}
	return db
}

func stagedSession(kind models.SessionKind, items ...models.LineItem) *Session {
	mgr := NewSessionManager()
	session := mgr.Open(kind)
	for _, item := range items {
		session.Ledger.Add(item)
	}
	return session
}

func TestCheckoutExpandsQuantity(t *testing.T) {
	db := openTestDB(t)
	svc := NewInventoryService(db)

	session := stagedSession(models.SessionPurchase,
		models.LineItem{CardName: "Lugia V", Quantity: 3, PurchasePrice: 50, FrontLabelPrice: 90},
		models.LineItem{CardName: "Charizard", Quantity: 1, PurchasePrice: 200},
	)

	record, err := svc.Checkout(session, "weekend buy")
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	if record.TotalQuantity != 4 {
		t.Errorf("total quantity = %d, want 4", record.TotalQuantity)
	}
	if record.TotalCostUSD != 350 {
		t.Errorf("total cost = %v, want 350", record.TotalCostUSD)
	}
	if record.Notes != "weekend buy" {
		t.Errorf("notes = %q", record.Notes)
	}

	var count int64
	db.Model(&models.InventoryItem{}).Count(&count)
	if count != 4 {
		t.Errorf("inventory rows = %d, want one per physical card", count)
	}

	var ids []string
	db.Model(&models.InventoryItem{}).Where("card_name = ?", "Lugia V").Pluck("id", &ids)
	if len(ids) != 3 {
		t.Fatalf("Lugia V rows = %d, want 3", len(ids))
	}
	seen := map[string]bool{}
	for _, id := range ids {
		if seen[id] {
			t.Errorf("duplicate inventory id %q", id)
		}
		seen[id] = true
	}
}

func TestCheckoutEmptySession(t *testing.T) {
	db := openTestDB(t)
	svc := NewInventoryService(db)

	session := stagedSession(models.SessionPurchase)
	if _, err := svc.Checkout(session, ""); !errors.Is(err, ErrEmptySession) {
		t.Errorf("Checkout(empty) error = %v, want ErrEmptySession", err)
	}

	var count int64
	db.Model(&models.TransactionRecord{}).Count(&count)
	if count != 0 {
		t.Errorf("transaction rows = %d, want none", count)
	}
}

func TestCheckoutTradeOutLinesSkipInventory(t *testing.T) {
	db := openTestDB(t)
	svc := NewInventoryService(db)

	session := stagedSession(models.SessionTrade,
		models.LineItem{CardName: "Incoming", Quantity: 1, PurchasePrice: 40},
		models.LineItem{CardName: "Outgoing", Quantity: 2, FrontLabelPrice: 30, TradeSide: models.TradeOut},
	)

	record, err := svc.Checkout(session, "")
	if err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	if record.TradeOutValueUSD != 60 {
		t.Errorf("trade-out value = %v, want 60", record.TradeOutValueUSD)
	}
	if record.Kind != models.SessionTrade {
		t.Errorf("kind = %q, want trade", record.Kind)
	}

	var count int64
	db.Model(&models.InventoryItem{}).Count(&count)
	if count != 1 {
		t.Errorf("inventory rows = %d, want only the incoming card", count)
	}
	var item models.InventoryItem
	db.First(&item)
	if item.CardName != "Incoming" || item.AcquiredVia != models.SessionTrade {
		t.Errorf("item = %+v, want incoming card acquired via trade", item)
	}
}

func TestInventoryListFilters(t *testing.T) {
	db := openTestDB(t)
	svc := NewInventoryService(db)

	session := stagedSession(models.SessionPurchase,
		models.LineItem{CardName: "Pika", Game: models.GamePokemon, Quantity: 2},
		models.LineItem{CardName: "Luffy", Game: models.GameOnePiece, Quantity: 1},
	)
	if _, err := svc.Checkout(session, ""); err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}

	items, total, err := svc.List(models.GamePokemon, "", 0, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 2 || len(items) != 2 {
		t.Errorf("pokemon filter: total=%d len=%d, want 2/2", total, len(items))
	}

	items, total, err = svc.List("", models.StatusSold, 0, 0)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if total != 0 || len(items) != 0 {
		t.Errorf("sold filter: total=%d len=%d, want 0/0", total, len(items))
	}
}

func TestInventorySellFlow(t *testing.T) {
	db := openTestDB(t)
	svc := NewInventoryService(db)

	session := stagedSession(models.SessionPurchase,
		models.LineItem{CardName: "Lugia V", Quantity: 1, PurchasePrice: 50, FrontLabelPrice: 90},
	)
	if _, err := svc.Checkout(session, ""); err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}

	items, _, err := svc.List("", models.StatusInStock, 0, 0)
	if err != nil || len(items) != 1 {
		t.Fatalf("List() = %d items, err %v", len(items), err)
	}
	id := items[0].ID

	sold, err := svc.MarkSold(id, 120)
	if err != nil {
		t.Fatalf("MarkSold() error = %v", err)
	}
	if sold.Status != models.StatusSold || sold.SoldPriceUSD != 120 || sold.SoldAt == nil {
		t.Errorf("sold item = %+v, want sold at 120 with timestamp", sold)
	}

	if _, err := svc.MarkSold(id, 120); !errors.Is(err, ErrItemNotInStock) {
		t.Errorf("second MarkSold error = %v, want ErrItemNotInStock", err)
	}

	stats, err := svc.Stats()
	if err != nil {
		t.Fatalf("Stats() error = %v", err)
	}
	if stats.ItemsSold != 1 || stats.ItemsInStock != 0 {
		t.Errorf("stats counts = %+v", stats)
	}
	if stats.LifetimeSales != 120 || stats.LifetimeMargin != 70 {
		t.Errorf("stats money = sales %v margin %v, want 120/70", stats.LifetimeSales, stats.LifetimeMargin)
	}
}

func TestInventoryUpdate(t *testing.T) {
	db := openTestDB(t)
	svc := NewInventoryService(db)

	session := stagedSession(models.SessionPurchase,
		models.LineItem{CardName: "Lugia V", Quantity: 1, FrontLabelPrice: 90},
	)
	if _, err := svc.Checkout(session, ""); err != nil {
		t.Fatalf("Checkout() error = %v", err)
	}
	items, _, _ := svc.List("", "", 0, 0)
	id := items[0].ID

	price := 75.0
	cond := "LP"
	updated, err := svc.Update(id, models.UpdateInventoryRequest{LabelPriceUSD: &price, Condition: &cond})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.LabelPriceUSD != 75 || updated.Condition != "LP" {
		t.Errorf("updated item = %+v", updated)
	}

	negative := -10.0
	updated, err = svc.Update(id, models.UpdateInventoryRequest{LabelPriceUSD: &negative})
	if err != nil {
		t.Fatalf("Update() error = %v", err)
	}
	if updated.LabelPriceUSD != 75 {
		t.Errorf("negative price accepted: %v", updated.LabelPriceUSD)
	}

	if _, err := svc.Get("missing"); !errors.Is(err, ErrItemNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrItemNotFound", err)
	}
}
