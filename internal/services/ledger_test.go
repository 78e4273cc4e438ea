package services

import (
	"math"
	"testing"

	"github.com/brianvoe/gofakeit/v6"

	"github.com/slabworks/card-pos/backend/internal/models"
)

func TestLedgerAddDuplicateBarcode(t *testing.T) {
	ledger := NewStagedLedger()

	first, added := ledger.Add(models.LineItem{BarcodeID: "ABC123", CardName: "Lugia V", Quantity: 1})
	if !added {
		t.Fatal("first add reported duplicate")
	}

	// Same barcode modulo trim and case: silent no-op, first entry wins.
	second, added := ledger.Add(models.LineItem{BarcodeID: "  abc123 ", CardName: "Different Card", Quantity: 5})
	if added {
		t.Error("duplicate barcode created a new entry")
	}
	if second.LineID != first.LineID {
		t.Errorf("duplicate add returned line %q, want existing %q", second.LineID, first.LineID)
	}
	if second.CardName != "Lugia V" {
		t.Errorf("existing entry card = %q, want untouched original", second.CardName)
	}
	if got := ledger.TotalQuantity(); got != 1 {
		t.Errorf("TotalQuantity() = %d, want 1", got)
	}
}

func TestLedgerAddWithoutBarcodeAlwaysAppends(t *testing.T) {
	ledger := NewStagedLedger()
	ledger.Add(models.LineItem{CardName: "Raw Card A"})
	ledger.Add(models.LineItem{CardName: "Raw Card B"})
	if got := len(ledger.Items()); got != 2 {
		t.Errorf("items = %d, want 2", got)
	}
}

func TestLedgerAddSanitizesInput(t *testing.T) {
	ledger := NewStagedLedger()

	item, _ := ledger.Add(models.LineItem{
		CardName:        "Charizard",
		Quantity:        0,
		PurchasePrice:   math.NaN(),
		FrontLabelPrice: -5,
	})
	if item.Quantity != 1 {
		t.Errorf("quantity = %d, want 1", item.Quantity)
	}
	if item.PurchasePrice != 0 {
		t.Errorf("purchase price = %v, want 0", item.PurchasePrice)
	}
	if item.FrontLabelPrice != 0 {
		t.Errorf("front label price = %v, want 0", item.FrontLabelPrice)
	}
	if item.LineID == "" {
		t.Error("line id not assigned")
	}
}

func TestLedgerTotals(t *testing.T) {
	ledger := NewStagedLedger()
	ledger.Add(models.LineItem{CardName: "A", PurchasePrice: 10, Quantity: 2})
	ledger.Add(models.LineItem{CardName: "B", PurchasePrice: 5, Quantity: 1})

	if got := ledger.TotalQuantity(); got != 3 {
		t.Errorf("TotalQuantity() = %d, want 3", got)
	}
	if got := ledger.TotalCost(); got != 25 {
		t.Errorf("TotalCost() = %v, want 25", got)
	}
}

func TestLedgerUpdate(t *testing.T) {
	ledger := NewStagedLedger()
	item, _ := ledger.Add(models.LineItem{CardName: "Pikachu", PurchasePrice: 3, Quantity: 1})

	price := 4.5
	qty := 2
	if !ledger.Update(item.LineID, models.LineItemPatch{PurchasePrice: &price, Quantity: &qty}) {
		t.Fatal("Update returned false for known line")
	}
	got := ledger.Items()[0]
	if got.PurchasePrice != 4.5 || got.Quantity != 2 {
		t.Errorf("after update: price=%v qty=%d, want 4.5/2", got.PurchasePrice, got.Quantity)
	}
	if got.CardName != "Pikachu" {
		t.Errorf("unpatched field changed: card = %q", got.CardName)
	}

	if ledger.Update("no-such-line", models.LineItemPatch{Quantity: &qty}) {
		t.Error("Update returned true for unknown line")
	}
}

func TestLedgerUpdateBarcodeCollision(t *testing.T) {
	ledger := NewStagedLedger()
	ledger.Add(models.LineItem{BarcodeID: "ABC123", CardName: "Lugia V"})
	raw, _ := ledger.Add(models.LineItem{CardName: "Raw Card"})

	// Patching onto another line's barcode, modulo trim and case, is
	// silently skipped; the rest of the patch still applies.
	collide := " abc123 "
	name := "Renamed"
	if !ledger.Update(raw.LineID, models.LineItemPatch{BarcodeID: &collide, CardName: &name}) {
		t.Fatal("Update returned false for known line")
	}

	items := ledger.Items()
	if items[1].BarcodeID != "" {
		t.Errorf("colliding barcode applied: %q", items[1].BarcodeID)
	}
	if items[1].CardName != "Renamed" {
		t.Errorf("card name = %q, want rest of patch applied", items[1].CardName)
	}
	keys := map[string]int{}
	for _, item := range items {
		if key := barcodeKey(item.BarcodeID); key != "" {
			keys[key]++
		}
	}
	if keys["abc123"] != 1 {
		t.Errorf("normalized barcode abc123 held by %d lines, want 1", keys["abc123"])
	}

	// A fresh barcode is accepted.
	fresh := "XYZ789"
	ledger.Update(raw.LineID, models.LineItemPatch{BarcodeID: &fresh})
	if got := ledger.Items()[1].BarcodeID; got != "XYZ789" {
		t.Errorf("fresh barcode = %q, want XYZ789", got)
	}

	// Re-casing a line's own barcode is not a collision.
	recased := "abc123"
	first := ledger.Items()[0]
	ledger.Update(first.LineID, models.LineItemPatch{BarcodeID: &recased})
	if got := ledger.Items()[0].BarcodeID; got != "abc123" {
		t.Errorf("own-barcode recase = %q, want abc123", got)
	}
}

func TestLedgerUpdateZeroQuantityRemoves(t *testing.T) {
	ledger := NewStagedLedger()
	item, _ := ledger.Add(models.LineItem{CardName: "Pikachu", Quantity: 1})

	zero := 0
	if !ledger.Update(item.LineID, models.LineItemPatch{Quantity: &zero}) {
		t.Fatal("Update returned false")
	}
	if got := len(ledger.Items()); got != 0 {
		t.Errorf("items = %d, want line removed", got)
	}
}

func TestLedgerRemoveAndClear(t *testing.T) {
	ledger := NewStagedLedger()
	item, _ := ledger.Add(models.LineItem{CardName: "A"})
	ledger.Add(models.LineItem{CardName: "B"})

	if !ledger.Remove(item.LineID) {
		t.Error("Remove returned false for known line")
	}
	if ledger.Remove(item.LineID) {
		t.Error("Remove returned true for already-removed line")
	}

	ledger.Clear()
	if got := len(ledger.Items()); got != 0 {
		t.Errorf("items after clear = %d, want 0", got)
	}
	if got := ledger.TotalCost(); got != 0 {
		t.Errorf("TotalCost after clear = %v, want 0", got)
	}
}

func TestLedgerBulkAggregates(t *testing.T) {
	gofakeit.Seed(42)
	ledger := NewStagedLedger()

	wantQty := 0
	wantCost := 0.0
	for i := 0; i < 50; i++ {
		qty := gofakeit.Number(1, 4)
		price := float64(gofakeit.Number(1, 500))
		ledger.Add(models.LineItem{
			BarcodeID:     gofakeit.UUID(),
			CardName:      gofakeit.Name(),
			Quantity:      qty,
			PurchasePrice: price,
		})
		wantQty += qty
		wantCost += price * float64(qty)
	}

	if got := ledger.TotalQuantity(); got != wantQty {
		t.Errorf("TotalQuantity() = %d, want %d", got, wantQty)
	}
	if got := ledger.TotalCost(); got != wantCost {
		t.Errorf("TotalCost() = %v, want %v", got, wantCost)
	}
}

func TestSessionManagerOpenGetClose(t *testing.T) {
	mgr := NewSessionManager()

	session := mgr.Open(models.SessionTrade)
	if session.Kind != models.SessionTrade {
		t.Errorf("kind = %q, want trade", session.Kind)
	}

	got, ok := mgr.Get(session.ID)
	if !ok || got.ID != session.ID {
		t.Fatalf("Get(%q) = %v, %v", session.ID, got, ok)
	}

	mgr.Close(session.ID)
	if _, ok := mgr.Get(session.ID); ok {
		t.Error("session still present after Close")
	}
}

func TestSessionManagerCoercesUnknownKind(t *testing.T) {
	mgr := NewSessionManager()
	session := mgr.Open(models.SessionKind("consignment"))
	if session.Kind != models.SessionPurchase {
		t.Errorf("kind = %q, want purchase fallback", session.Kind)
	}
}

func TestSessionSummary(t *testing.T) {
	mgr := NewSessionManager()
	session := mgr.Open(models.SessionPurchase)
	session.Ledger.Add(models.LineItem{CardName: "A", PurchasePrice: 10, Quantity: 2})

	summary := session.Summary()
	if summary.ID != session.ID || summary.Kind != models.SessionPurchase {
		t.Errorf("summary identity = %q/%q", summary.ID, summary.Kind)
	}
	if summary.TotalQuantity != 2 || summary.TotalCost != 20 {
		t.Errorf("summary totals = %d/%v, want 2/20", summary.TotalQuantity, summary.TotalCost)
	}
	if len(summary.Items) != 1 {
		t.Errorf("summary items = %d, want 1", len(summary.Items))
	}
}
