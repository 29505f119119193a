package domain

import (
	"fmt"

	"github.com/shopspring/decimal"
)

// CartItem is a single line in the cart. ID is the composite product+variant
// key, so the same variant never occupies two lines.
type CartItem struct {
	ID        string          `json:"id"`
	ProductID int             `json:"product_id,omitempty"`
	VariantID int             `json:"variant_id,omitempty"`
	Name      string          `json:"name,omitempty"`
	Price     decimal.Decimal `json:"price"`
	Image     string          `json:"image,omitempty"`
	Size      string          `json:"size,omitempty"`
	Color     string          `json:"color,omitempty"`
	Quantity  int             `json:"quantity"`
}

// CartItemID builds the composite line key for a product+variant pair.
func CartItemID(productID, variantID int) string {
	return fmt.Sprintf("product-%d-variant-%d", productID, variantID)
}

type UndoKind string

const (
	UndoRemove   UndoKind = "remove"
	UndoQuantity UndoKind = "quantity"
)

// UndoAction records one reversible mutation. For UndoRemove, Item is the
// full removed line; for UndoQuantity, Item identifies the line and
// PreviousQuantity holds the value to restore.
type UndoAction struct {
	Kind             UndoKind `json:"kind"`
	Item             CartItem `json:"item"`
	PreviousQuantity int      `json:"previous_quantity,omitempty"`
}

// CartState is the full persisted cart: active lines, saved-for-later lines
// and the undo history. Items and SavedForLater are disjoint by ID.
type CartState struct {
	Items         []CartItem   `json:"items"`
	SavedForLater []CartItem   `json:"saved_for_later"`
	UndoStack     []UndoAction `json:"undo_stack"`
}

// DropUndoHistory sheds the least essential part of the state. The storage
// layer calls it when a serialized record exceeds the size cap.
func (s *CartState) DropUndoHistory() {
	s.UndoStack = nil
}
