package domain

import "github.com/shopspring/decimal"

type WishlistItem struct {
	ID      int             `json:"id"`
	Name    string          `json:"name"`
	Price   decimal.Decimal `json:"price"`
	Image   string          `json:"image,omitempty"`
	AddedAt int64           `json:"added_at"`
}

type WishlistState struct {
	Items []WishlistItem `json:"items"`
}
