package services

import (
	"math"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/slabworks/card-pos/backend/internal/metrics"
	"github.com/slabworks/card-pos/backend/internal/models"
)

// StagedLedger holds the line items of one open purchase or trade
// session, in insertion order. Every mutating operation is total:
// invalid input degrades to a no-op or a zeroed field, never an error.
type StagedLedger struct {
	mu    sync.Mutex
	items []models.LineItem
}

func NewStagedLedger() *StagedLedger {
	return &StagedLedger{}
}

// barcodeKey normalizes a barcode for duplicate detection.
func barcodeKey(barcode string) string {
	return strings.ToLower(strings.TrimSpace(barcode))
}

// barcodeTakenLocked reports whether a line other than lineID already
// holds the normalized barcode. Caller must hold l.mu.
func (l *StagedLedger) barcodeTakenLocked(barcode, lineID string) bool {
	key := barcodeKey(barcode)
	if key == "" {
		return false
	}
	for _, existing := range l.items {
		if existing.LineID != lineID && barcodeKey(existing.BarcodeID) == key {
			return true
		}
	}
	return false
}

// sanitizeNumber coerces malformed numeric input (NaN, Inf, negatives)
// to zero rather than rejecting the item.
func sanitizeNumber(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0
	}
	return v
}

// Add stages an item. If its barcode (trimmed, case-insensitive) already
// exists on some entry, the add is a silent no-op and the existing entry
// is returned untouched: each physical barcode is exactly one card, so
// duplicate scans must not bump quantity. Items without a barcode are
// always appended. The returned bool reports whether a new entry was
// created.
func (l *StagedLedger) Add(item models.LineItem) (models.LineItem, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if key := barcodeKey(item.BarcodeID); key != "" {
		for _, existing := range l.items {
			if barcodeKey(existing.BarcodeID) == key {
				return existing, false
			}
		}
	}

	item.LineID = uuid.New().String()
	if item.Quantity <= 0 {
		item.Quantity = 1
	}
	item.PurchasePrice = sanitizeNumber(item.PurchasePrice)
	item.FrontLabelPrice = sanitizeNumber(item.FrontLabelPrice)

	l.items = append(l.items, item)
	return item, true
}

// Update merges non-nil patch fields into the entry with the given line
// id. Unknown line ids are a no-op. Patching the barcode to a value
// another line already holds is silently skipped, same as a duplicate
// Add; the remaining patch fields still apply. Patching quantity to zero
// or below removes the entry: the staged count hit zero, so the line is
// gone.
func (l *StagedLedger) Update(lineID string, patch models.LineItemPatch) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.items {
		if l.items[i].LineID != lineID {
			continue
		}
		item := &l.items[i]
		if patch.BarcodeID != nil && !l.barcodeTakenLocked(*patch.BarcodeID, lineID) {
			item.BarcodeID = *patch.BarcodeID
		}
		if patch.CardName != nil {
			item.CardName = *patch.CardName
		}
		if patch.SetName != nil {
			item.SetName = *patch.SetName
		}
		if patch.CardNumber != nil {
			item.CardNumber = *patch.CardNumber
		}
		if patch.Game != nil {
			item.Game = *patch.Game
		}
		if patch.Grade != nil {
			item.Grade = *patch.Grade
		}
		if patch.Condition != nil {
			item.Condition = *patch.Condition
		}
		if patch.PurchasePrice != nil {
			item.PurchasePrice = sanitizeNumber(*patch.PurchasePrice)
		}
		if patch.FrontLabelPrice != nil {
			item.FrontLabelPrice = sanitizeNumber(*patch.FrontLabelPrice)
		}
		if patch.TradeSide != nil {
			item.TradeSide = *patch.TradeSide
		}
		if patch.Quantity != nil {
			if *patch.Quantity <= 0 {
				l.items = append(l.items[:i], l.items[i+1:]...)
				return true
			}
			item.Quantity = *patch.Quantity
		}
		return true
	}
	return false
}

// Remove deletes the entry with the given line id; no-op if absent.
func (l *StagedLedger) Remove(lineID string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	for i := range l.items {
		if l.items[i].LineID == lineID {
			l.items = append(l.items[:i], l.items[i+1:]...)
			return true
		}
	}
	return false
}

// Clear empties the ledger.
func (l *StagedLedger) Clear() {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.items = nil
}

// Items returns a copy of the staged entries in insertion order.
func (l *StagedLedger) Items() []models.LineItem {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]models.LineItem, len(l.items))
	copy(out, l.items)
	return out
}

// TotalQuantity and TotalCost are recomputed from current state on every
// read. No incremental bookkeeping, so no staleness to get wrong.

func (l *StagedLedger) TotalQuantity() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := 0
	for _, item := range l.items {
		total += item.Quantity
	}
	return total
}

func (l *StagedLedger) TotalCost() float64 {
	l.mu.Lock()
	defer l.mu.Unlock()
	total := 0.0
	for _, item := range l.items {
		total += item.PurchasePrice * float64(item.Quantity)
	}
	return total
}

// Session is one open purchase or trade, owning its staged ledger.
type Session struct {
	ID        string
	Kind      models.SessionKind
	CreatedAt time.Time
	Ledger    *StagedLedger
}

// Summary snapshots the session for API responses.
func (s *Session) Summary() models.SessionSummary {
	return models.SessionSummary{
		ID:            s.ID,
		Kind:          s.Kind,
		Items:         s.Ledger.Items(),
		TotalQuantity: s.Ledger.TotalQuantity(),
		TotalCost:     s.Ledger.TotalCost(),
		CreatedAt:     s.CreatedAt,
	}
}

// SessionManager tracks open sessions. Sessions are in-memory only; an
// uncommitted session does not survive a restart.
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewSessionManager() *SessionManager {
	return &SessionManager{sessions: make(map[string]*Session)}
}

func (m *SessionManager) Open(kind models.SessionKind) *Session {
	if kind != models.SessionTrade {
		kind = models.SessionPurchase
	}
	session := &Session{
		ID:        uuid.New().String(),
		Kind:      kind,
		CreatedAt: time.Now(),
		Ledger:    NewStagedLedger(),
	}

	m.mu.Lock()
	m.sessions[session.ID] = session
	m.mu.Unlock()

	m.updateMetrics()
	return session
}

func (m *SessionManager) Get(id string) (*Session, bool) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	s, ok := m.sessions[id]
	return s, ok
}

// Close drops a session from the registry. Called after checkout or an
// explicit abandon.
func (m *SessionManager) Close(id string) {
	m.mu.Lock()
	delete(m.sessions, id)
	m.mu.Unlock()
	m.updateMetrics()
}

// UpdateStagedMetrics recomputes the staged-items gauge. Cheap enough to
// run on every mutation.
func (m *SessionManager) UpdateStagedMetrics() {
	m.updateMetrics()
}

func (m *SessionManager) updateMetrics() {
	m.mu.RLock()
	open := len(m.sessions)
	staged := 0
	for _, s := range m.sessions {
		staged += s.Ledger.TotalQuantity()
	}
	m.mu.RUnlock()

	metrics.SessionsOpen.Set(float64(open))
	metrics.StagedItemsTotal.Set(float64(staged))
}
