package wishlist

import (
	"context"
	"sort"
	"sync"
	"time"

	"madrush/storefront/internal/domain"
	"madrush/storefront/internal/storage"

	"github.com/shopspring/decimal"
	log "github.com/sirupsen/logrus"
)

// RecordName is the storage key for the persisted wishlist state.
const RecordName = "wishlist-storage"

// Store keeps the wishlist, one entry per product, persisted write-through
// like the cart. Adding an already-listed product is a no-op.
type Store struct {
	mu          sync.Mutex
	state       domain.WishlistState
	records     *storage.Store
	subscribers map[int]func()
	nextSubID   int
}

func New(ctx context.Context, records *storage.Store) *Store {
	s := &Store{
		records:     records,
		subscribers: make(map[int]func()),
	}

	if records != nil && records.Load(ctx, RecordName, &s.state) {
		log.Infof("Restored wishlist with %d items", len(s.state.Items))
	}

	return s
}

// Subscribe registers fn to run after every committed mutation and returns
// the matching unsubscribe func.
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

// Add lists a product. The price falls back to the first variant when the
// product itself carries none, then to zero.
func (s *Store) Add(ctx context.Context, product domain.Product) {
	s.mu.Lock()
	if s.containsLocked(product.ID) {
		s.mu.Unlock()
		return
	}

	price := product.Price
	if price.IsZero() && len(product.Variants) > 0 {
		price = product.Variants[0].Price
	}
	if price.IsNegative() {
		price = decimal.Zero
	}

	s.state.Items = append(s.state.Items, domain.WishlistItem{
		ID:      product.ID,
		Name:    product.Name,
		Price:   price,
		Image:   product.PrimaryImage(),
		AddedAt: time.Now().UnixMilli(),
	})
	subs := s.commitLocked(ctx)
	s.mu.Unlock()

	notify(subs)
}

// Remove delists the product; unknown IDs are a no-op.
func (s *Store) Remove(ctx context.Context, id int) {
	s.mu.Lock()
	idx := -1
	for i := range s.state.Items {
		if s.state.Items[i].ID == id {
			idx = i
			break
		}
	}
	if idx < 0 {
		s.mu.Unlock()
		return
	}

	s.state.Items = append(s.state.Items[:idx:idx], s.state.Items[idx+1:]...)
	subs := s.commitLocked(ctx)
	s.mu.Unlock()

	notify(subs)
}

// Contains reports whether the product is on the wishlist.
func (s *Store) Contains(id int) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.containsLocked(id)
}

// Items returns a snapshot in insertion order.
func (s *Store) Items() []domain.WishlistItem {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.WishlistItem(nil), s.state.Items...)
}

// Clear empties the wishlist.
func (s *Store) Clear(ctx context.Context) {
	s.mu.Lock()
	s.state = domain.WishlistState{}
	subs := s.commitLocked(ctx)
	s.mu.Unlock()

	notify(subs)
}

func (s *Store) containsLocked(id int) bool {
	for i := range s.state.Items {
		if s.state.Items[i].ID == id {
			return true
		}
	}
	return false
}

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
