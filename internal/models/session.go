package models

import "time"

// SessionKind distinguishes a straight purchase from a trade session.
type SessionKind string

const (
	SessionPurchase SessionKind = "purchase"
	SessionTrade    SessionKind = "trade"
)

// TradeSide marks which direction a line item moves in a trade session:
// "in" is a card the shop receives, "out" is a card given to the customer.
// Purchase sessions leave it empty.
type TradeSide string

const (
	TradeIn  TradeSide = "in"
	TradeOut TradeSide = "out"
)

// LineItem is one staged entry in an open purchase or trade session.
// LineID is generated, process-unique and never reused; BarcodeID is the
// business identifier and may be empty (raw cards without a label).
type LineItem struct {
	LineID          string    `json:"line_id"`
	BarcodeID       string    `json:"barcode_id,omitempty"`
	CertNumber      string    `json:"cert_number,omitempty"`
	CardName        string    `json:"card_name"`
	SetName         string    `json:"set_name,omitempty"`
	Series          string    `json:"series,omitempty"`
	CardNumber      string    `json:"card_number,omitempty"`
	Game            Game      `json:"game,omitempty"`
	Grade           string    `json:"grade,omitempty"`
	Condition       string    `json:"condition,omitempty"`
	ProductID       string    `json:"product_id,omitempty"`
	ProductURL      string    `json:"product_url,omitempty"`
	ImageURL        string    `json:"image_url,omitempty"`
	Rarity          string    `json:"rarity,omitempty"`
	PurchasePrice   float64   `json:"purchase_price"`
	FrontLabelPrice float64   `json:"front_label_price"`
	Quantity        int       `json:"quantity"`
	TradeSide       TradeSide `json:"trade_side,omitempty"`
}

// LineItemPatch is a partial update for a staged line item. Nil fields
// are left untouched.
type LineItemPatch struct {
	BarcodeID       *string    `json:"barcode_id"`
	CardName        *string    `json:"card_name"`
	SetName         *string    `json:"set_name"`
	CardNumber      *string    `json:"card_number"`
	Game            *Game      `json:"game"`
	Grade           *string    `json:"grade"`
	Condition       *string    `json:"condition"`
	PurchasePrice   *float64   `json:"purchase_price"`
	FrontLabelPrice *float64   `json:"front_label_price"`
	Quantity        *int       `json:"quantity"`
	TradeSide       *TradeSide `json:"trade_side"`
}

// SessionSummary is the API view of an open session: items in insertion
// order plus aggregates recomputed from current state on every read.
type SessionSummary struct {
	ID            string      `json:"id"`
	Kind          SessionKind `json:"kind"`
	Items         []LineItem  `json:"items"`
	TotalQuantity int         `json:"total_quantity"`
	TotalCost     float64     `json:"total_cost"`
	CreatedAt     time.Time   `json:"created_at"`
}

// AddItemResponse reports whether a staged add actually appended a new
// entry. A duplicate barcode is a silent no-op on the ledger; Added=false
// lets the caller surface its own duplicate warning.
type AddItemResponse struct {
	Added bool      `json:"added"`
	Item  *LineItem `json:"item,omitempty"`
}

type OpenSessionRequest struct {
	Kind SessionKind `json:"kind" binding:"required"`
}
