package models

import "time"

// ItemStatus tracks an inventory item through its shelf life.
type ItemStatus string

const (
	StatusInStock ItemStatus = "in_stock"
	StatusSold    ItemStatus = "sold"
)

// InventoryItem is one physical card in durable inventory. Checkout
// expands a staged line item's quantity into one row per physical card,
// so Quantity never appears here.
type InventoryItem struct {
	ID            string      `json:"id" gorm:"primaryKey"`
	Game          Game        `json:"game" gorm:"index"`
	CardName      string      `json:"card_name" gorm:"not null;index"`
	SetName       string      `json:"set_name"`
	Series        string      `json:"series"`
	CardNumber    string      `json:"card_number"`
	BarcodeID     string      `json:"barcode_id" gorm:"index"`
	CertNumber    string      `json:"cert_number" gorm:"index"`
	Grade         string      `json:"grade"`
	Condition     string      `json:"condition"`
	ProductID     string      `json:"product_id"`
	ProductURL    string      `json:"product_url"`
	ImageURL      string      `json:"image_url"`
	Rarity        string      `json:"rarity"`
	CostUSD       float64     `json:"cost_usd"`
	LabelPriceUSD float64     `json:"label_price_usd"`
	SoldPriceUSD  float64     `json:"sold_price_usd"`
	Status        ItemStatus  `json:"status" gorm:"default:'in_stock';index"`
	AcquiredVia   SessionKind `json:"acquired_via"`
	TransactionID string      `json:"transaction_id" gorm:"index"`
	SoldAt        *time.Time  `json:"sold_at"`
	CreatedAt     time.Time   `json:"created_at"`
	UpdatedAt     time.Time   `json:"updated_at"`
}

// TransactionRecord is the finalized header for a committed purchase or
// trade session. TradeOutValueUSD is the label value of cards given to
// the customer; zero for purchases.
type TransactionRecord struct {
	ID               string      `json:"id" gorm:"primaryKey"`
	Kind             SessionKind `json:"kind" gorm:"index"`
	TotalQuantity    int         `json:"total_quantity"`
	TotalCostUSD     float64     `json:"total_cost_usd"`
	TradeOutValueUSD float64     `json:"trade_out_value_usd"`
	Notes            string      `json:"notes"`
	CreatedAt        time.Time   `json:"created_at"`
}

type InventoryStats struct {
	ItemsInStock   int     `json:"items_in_stock"`
	ItemsSold      int     `json:"items_sold"`
	StockCostUSD   float64 `json:"stock_cost_usd"`
	StockLabelUSD  float64 `json:"stock_label_usd"`
	LifetimeSales  float64 `json:"lifetime_sales_usd"`
	LifetimeMargin float64 `json:"lifetime_margin_usd"`
}

type UpdateInventoryRequest struct {
	LabelPriceUSD *float64    `json:"label_price_usd"`
	Condition     *string     `json:"condition"`
	Status        *ItemStatus `json:"status"`
}

type SellItemRequest struct {
	SoldPriceUSD float64 `json:"sold_price_usd"`
}
