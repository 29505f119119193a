package wishlist_test

import (
	"testing"

	"madrush/storefront/internal/domain"
	"madrush/storefront/internal/storage"
	"madrush/storefront/internal/wishlist"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newRecords(t *testing.T) *storage.Store {
	t.Helper()

	backend, err := storage.NewFileBackend(t.TempDir())
	require.NoError(t, err)

	recordCipher, err := storage.NewCipher("test-key")
	require.NoError(t, err)

	return storage.New(backend, recordCipher, 0)
}

func TestAdd_OncePerProduct(t *testing.T) {
	s := wishlist.New(t.Context(), newRecords(t))
	ctx := t.Context()

	product := domain.Product{ID: 7, Name: "Glitch Hoodie", Price: decimal.NewFromInt(900)}
	s.Add(ctx, product)
	s.Add(ctx, product)

	require.Len(t, s.Items(), 1)
	assert.True(t, s.Contains(7))
	assert.False(t, s.Contains(8))
}

func TestAdd_PriceFallsBackToFirstVariant(t *testing.T) {
	s := wishlist.New(t.Context(), newRecords(t))

	s.Add(t.Context(), domain.Product{
		ID:   3,
		Name: "Static Cap",
		Variants: []domain.ProductVariant{
			{ID: 30, Price: decimal.NewFromInt(250)},
			{ID: 31, Price: decimal.NewFromInt(300)},
		},
	})

	items := s.Items()
	require.Len(t, items, 1)
	assert.True(t, items[0].Price.Equal(decimal.NewFromInt(250)))
}

func TestAdd_NoPriceAnywhereDefaultsToZero(t *testing.T) {
	s := wishlist.New(t.Context(), newRecords(t))
	s.Add(t.Context(), domain.Product{ID: 4, Name: "Sticker Pack"})

	items := s.Items()
	require.Len(t, items, 1)
	assert.True(t, items[0].Price.IsZero())
	assert.NotZero(t, items[0].AddedAt)
}

func TestRemoveAndClear(t *testing.T) {
	s := wishlist.New(t.Context(), newRecords(t))
	ctx := t.Context()

	s.Add(ctx, domain.Product{ID: 1, Name: "A", Price: decimal.NewFromInt(10)})
	s.Add(ctx, domain.Product{ID: 2, Name: "B", Price: decimal.NewFromInt(20)})

	s.Remove(ctx, 1)
	assert.False(t, s.Contains(1))
	assert.True(t, s.Contains(2))

	s.Remove(ctx, 99) // unknown id is a no-op
	require.Len(t, s.Items(), 1)

	s.Clear(ctx)
	assert.Empty(t, s.Items())
}

func TestPersistence_SurvivesRestart(t *testing.T) {
	records := newRecords(t)
	ctx := t.Context()

	s := wishlist.New(ctx, records)
	s.Add(ctx, domain.Product{ID: 5, Name: "Neon Socks", Price: decimal.NewFromInt(120)})

	restored := wishlist.New(ctx, records)
	require.Len(t, restored.Items(), 1)
	assert.Equal(t, "Neon Socks", restored.Items()[0].Name)
}

func TestSubscribe(t *testing.T) {
	s := wishlist.New(t.Context(), newRecords(t))
	ctx := t.Context()

	var calls int
	unsubscribe := s.Subscribe(func() { calls++ })

	s.Add(ctx, domain.Product{ID: 1, Name: "A"})
	s.Remove(ctx, 1)
	assert.Equal(t, 2, calls)

	unsubscribe()
	s.Add(ctx, domain.Product{ID: 2, Name: "B"})
	assert.Equal(t, 2, calls)
}
