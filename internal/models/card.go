package models

// TCGProduct is a single result from the TCGplayer-style product search.
// Results are transient: they live only for the duration of a
// search-and-select interaction and are never persisted as-is.
type TCGProduct struct {
	ProductID  string `json:"product_id"`
	Name       string `json:"name"`
	CleanName  string `json:"clean_name,omitempty"`
	SetName    string `json:"set_name"`
	CardNumber string `json:"card_number"`
	ImageURL   string `json:"image_url"`
	CategoryID int    `json:"category_id"`
	URL        string `json:"url"`
	Rarity     string `json:"rarity,omitempty"`
}

// ProductSearchResult is the payload returned to clients for product searches.
// An empty Products slice is a normal outcome, not an error.
type ProductSearchResult struct {
	Products   []TCGProduct `json:"products"`
	TotalCount int          `json:"total_count"`
}

// ParsedCardIdentity is the normalized form of a PSA certificate record.
// SetName and TCGSetName deliberately diverge for One Piece: display uses
// the coded form ("A Fist Of Divine Speed - OP11") while product search
// uses the lexical form, because the search backend indexes that game by
// lexical set name.
type ParsedCardIdentity struct {
	CardName     string `json:"card_name"`
	SetName      string `json:"set_name"`
	Series       string `json:"series,omitempty"`
	SetCode      string `json:"set_code,omitempty"`
	TCGSetName   string `json:"tcg_set_name"`
	Game         Game   `json:"game,omitempty"`
	NumericGrade string `json:"numeric_grade,omitempty"`
	CardNumber   string `json:"card_number,omitempty"`
}
