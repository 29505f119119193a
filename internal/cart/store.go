package cart

import (
	"context"
	"sort"
	"sync"

	"madrush/storefront/internal/domain"
	"madrush/storefront/internal/storage"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/currency"
)

// RecordName is the storage key for the persisted cart state.
const RecordName = "cart-storage"

// maxUndoDepth bounds the undo stack at push time; the storage layer may
// additionally drop the whole history under record-size pressure.
const maxUndoDepth = 50

// Store is the single source of truth for cart contents. Every mutation is
// applied in memory, written through to storage, then announced to
// subscribers. Operations never return errors; failure modes degrade to a
// logged no-op.
type Store struct {
	mu          sync.Mutex
	state       domain.CartState
	records     *storage.Store
	currency    currency.Unit
	subscribers map[int]func()
	nextSubID   int
}

// New restores persisted state if a usable record exists, otherwise starts
// empty. Legacy records are normalized on the way in.
func New(ctx context.Context, records *storage.Store, cur currency.Unit) *Store {
	s := &Store{
		records:     records,
		currency:    cur,
		subscribers: make(map[int]func()),
	}

	if records != nil && records.Load(ctx, RecordName, &s.state) {
		s.normalize()
		log.Infof("🛒 Restored cart with %d items", len(s.state.Items))
	}

	return s
}

// normalize heals legacy records: prices below zero (or absent, which
// decodes as zero already) become 0 and quantities are floored at 1.
func (s *Store) normalize() {
	for _, items := range [][]domain.CartItem{s.state.Items, s.state.SavedForLater} {
		for i := range items {
			if items[i].Price.IsNegative() {
				items[i].Price = decimal.Zero
			}
			if items[i].Quantity < 1 {
				items[i].Quantity = 1
			}
		}
	}
}

// Subscribe registers fn to run after every committed mutation and returns
// the matching unsubscribe func. Notifications are synchronous, in call
// order, outside the store lock.
func (s *Store) Subscribe(fn func()) func() {
	s.mu.Lock()
	defer s.mu.Unlock()

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = fn

	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.subscribers, id)
	}
}

// AddItem puts one unit of the given product variant in the cart. An
// unknown variant ID is logged and ignored; the catalog reference may be
// stale. Adding an already-present variant increments its quantity, so the
// cart holds at most one line per product+variant pair. Additions are not
// undoable.
func (s *Store) AddItem(ctx context.Context, product domain.Product, variantID int) {
	variant, ok := product.Variant(variantID)
	if !ok {
		log.Errorf("Unknown variant %d for product %d (%s), cart unchanged",
			variantID, product.ID, product.Name)
		return
	}

	id := domain.CartItemID(product.ID, variantID)

	s.mu.Lock()
	if idx := indexByID(s.state.Items, id); idx >= 0 {
		s.state.Items[idx].Quantity++
	} else {
		s.state.Items = append(s.state.Items, domain.CartItem{
			ID:        id,
			ProductID: product.ID,
			VariantID: variantID,
			Name:      product.Name,
			Price:     variant.Price,
			Image:     product.PrimaryImage(),
			Size:      variant.Size,
			Color:     variant.Color,
			Quantity:  1,
		})
	}
	subs := s.commitLocked(ctx)
	s.mu.Unlock()

	notify(subs)
}

// RemoveItem drops the line with the given ID from either list and pushes a
// remove action so the item can be restored verbatim. Undo re-appends to
// the active cart; ordering is not preserved.
func (s *Store) RemoveItem(ctx context.Context, id string) {
	s.mu.Lock()
	var removed *domain.CartItem
	if idx := indexByID(s.state.Items, id); idx >= 0 {
		item := s.state.Items[idx]
		s.state.Items = deleteAt(s.state.Items, idx)
		removed = &item
	} else if idx := indexByID(s.state.SavedForLater, id); idx >= 0 {
		item := s.state.SavedForLater[idx]
		s.state.SavedForLater = deleteAt(s.state.SavedForLater, idx)
		removed = &item
	}

	if removed == nil {
		s.mu.Unlock()
		return
	}

	s.pushUndoLocked(domain.UndoAction{Kind: domain.UndoRemove, Item: *removed})
	subs := s.commitLocked(ctx)
	s.mu.Unlock()

	notify(subs)
}

// UpdateQuantity sets the line's quantity. Values below 1 are silently
// rejected; removal is an explicit operation, not a quantity of zero. The
// previous quantity is recorded for undo.
func (s *Store) UpdateQuantity(ctx context.Context, id string, quantity int) {
	if quantity < 1 {
		return
	}

	s.mu.Lock()
	idx := indexByID(s.state.Items, id)
	if idx < 0 {
		s.mu.Unlock()
		return
	}

	s.pushUndoLocked(domain.UndoAction{
		Kind:             domain.UndoQuantity,
		Item:             s.state.Items[idx],
		PreviousQuantity: s.state.Items[idx].Quantity,
	})
	s.state.Items[idx].Quantity = quantity
	subs := s.commitLocked(ctx)
	s.mu.Unlock()

	notify(subs)
}

// MoveToSaved moves a line from the active cart to the saved-for-later
// list. Moves are reversed by the inverse move, not by undo.
func (s *Store) MoveToSaved(ctx context.Context, id string) {
	s.move(ctx, id, true)
}

// MoveToCart moves a saved line back into the active cart.
func (s *Store) MoveToCart(ctx context.Context, id string) {
	s.move(ctx, id, false)
}

func (s *Store) move(ctx context.Context, id string, toSaved bool) {
	s.mu.Lock()
	from, to := &s.state.Items, &s.state.SavedForLater
	if !toSaved {
		from, to = to, from
	}

	idx := indexByID(*from, id)
	if idx < 0 || indexByID(*to, id) >= 0 {
		s.mu.Unlock()
		return
	}

	item := (*from)[idx]
	*from = deleteAt(*from, idx)
	*to = append(*to, item)
	subs := s.commitLocked(ctx)
	s.mu.Unlock()

	notify(subs)
}

// Undo reverses the most recent destructive mutation. A removed line is
// re-appended to the active cart; a quantity change restores the previous
// value if the line still exists. With an empty stack this is a no-op.
func (s *Store) Undo(ctx context.Context) {
	s.mu.Lock()
	n := len(s.state.UndoStack)
	if n == 0 {
		s.mu.Unlock()
		return
	}

	action := s.state.UndoStack[n-1]
	s.state.UndoStack = s.state.UndoStack[:n-1]

	switch action.Kind {
	case domain.UndoRemove:
		// The same variant may have been re-added (or re-saved) since the
		// remove; merge quantities so IDs stay unique across both lists.
		if idx := indexByID(s.state.Items, action.Item.ID); idx >= 0 {
			s.state.Items[idx].Quantity += action.Item.Quantity
		} else if idx := indexByID(s.state.SavedForLater, action.Item.ID); idx >= 0 {
			s.state.SavedForLater[idx].Quantity += action.Item.Quantity
		} else {
			s.state.Items = append(s.state.Items, action.Item)
		}
	case domain.UndoQuantity:
		if idx := indexByID(s.state.Items, action.Item.ID); idx >= 0 {
			s.state.Items[idx].Quantity = action.PreviousQuantity
		}
	}

	subs := s.commitLocked(ctx)
	s.mu.Unlock()

	notify(subs)
}

// Clear empties the cart, the saved list and the undo history in one step,
// e.g. after a successful checkout.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.state = domain.CartState{}
	subs := s.commitLocked(ctx)
	s.mu.Unlock()

	notify(subs)
}

// TotalCount sums quantities across active lines only.
func (s *Store) TotalCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	count := 0
	for _, item := range s.state.Items {
		count += item.Quantity
	}
	return count
}

// Total sums price*quantity across active lines only; saved-for-later lines
// never contribute.
func (s *Store) Total() domain.Money {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := decimal.Zero
	for _, item := range s.state.Items {
		total = total.Add(item.Price.Mul(decimal.NewFromInt(int64(item.Quantity))))
	}
	return domain.Money{Amount: total, Currency: s.currency}
}

// Items returns a snapshot of the active lines in display order.
func (s *Store) Items() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CartItem(nil), s.state.Items...)
}

// SavedForLater returns a snapshot of the saved lines in display order.
func (s *Store) SavedForLater() []domain.CartItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.CartItem(nil), s.state.SavedForLater...)
}

// UndoDepth reports how many actions are currently undoable.
func (s *Store) UndoDepth() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.state.UndoStack)
}

func (s *Store) pushUndoLocked(action domain.UndoAction) {
	s.state.UndoStack = append(s.state.UndoStack, action)
	if len(s.state.UndoStack) > maxUndoDepth {
		s.state.UndoStack = s.state.UndoStack[len(s.state.UndoStack)-maxUndoDepth:]
	}
}

// commitLocked writes the state through to storage and collects the
// subscribers to notify once the lock is released.
func (s *Store) commitLocked(ctx context.Context) []func() {
	if s.records != nil {
		s.records.Save(ctx, RecordName, &s.state)
	}

	ids := make([]int, 0, len(s.subscribers))
	for id := range s.subscribers {
		ids = append(ids, id)
	}
	sort.Ints(ids)

	subs := make([]func(), 0, len(ids))
	for _, id := range ids {
		subs = append(subs, s.subscribers[id])
	}
	return subs
}

func notify(subs []func()) {
	for _, fn := range subs {
		fn()
	}
}

func indexByID(items []domain.CartItem, id string) int {
	for i := range items {
		if items[i].ID == id {
			return i
		}
	}
	return -1
}

func deleteAt(items []domain.CartItem, idx int) []domain.CartItem {
	return append(items[:idx:idx], items[idx+1:]...)
}
