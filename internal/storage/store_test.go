package storage_test

import (
	"strings"
	"testing"

	"madrush/storefront/internal/domain"
	"madrush/storefront/internal/storage"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBackend(t *testing.T) storage.Backend {
	t.Helper()
	backend, err := storage.NewFileBackend(t.TempDir())
	require.NoError(t, err)
	return backend
}

func newCipher(t *testing.T, passphrase string) *storage.Cipher {
	t.Helper()
	c, err := storage.NewCipher(passphrase)
	require.NoError(t, err)
	return c
}

func TestCipher_RoundTrip(t *testing.T) {
	c := newCipher(t, "round-trip-key")
	plaintext := []byte(gofakeit.Sentence(12))

	ciphertext, err := c.Encrypt(plaintext)
	require.NoError(t, err)
	assert.NotContains(t, ciphertext, string(plaintext))

	decrypted, err := c.Decrypt(ciphertext)
	require.NoError(t, err)
	assert.Equal(t, plaintext, decrypted)
}

func TestCipher_RejectsTamperedRecord(t *testing.T) {
	c := newCipher(t, "tamper-key")

	ciphertext, err := c.Encrypt([]byte("payload"))
	require.NoError(t, err)

	_, err = c.Decrypt("AAAA" + ciphertext[4:])
	assert.Error(t, err)

	_, err = c.Decrypt("not base64 at all!!!")
	assert.Error(t, err)
}

func TestCipher_EmptyPassphrase(t *testing.T) {
	_, err := storage.NewCipher("")
	assert.Error(t, err)
}

func TestStore_SaveLoadRoundTrip(t *testing.T) {
	ctx := t.Context()
	store := storage.New(newBackend(t), newCipher(t, "key"), 0)

	state := domain.CartState{
		Items: []domain.CartItem{{
			ID:       "product-1-variant-10",
			Price:    decimal.NewFromInt(500),
			Quantity: 2,
		}},
	}
	store.Save(ctx, "cart-storage", &state)

	var loaded domain.CartState
	require.True(t, store.Load(ctx, "cart-storage", &loaded))
	require.Len(t, loaded.Items, 1)
	assert.Equal(t, "product-1-variant-10", loaded.Items[0].ID)
	assert.True(t, loaded.Items[0].Price.Equal(decimal.NewFromInt(500)))
}

func TestStore_MissingRecord(t *testing.T) {
	store := storage.New(newBackend(t), newCipher(t, "key"), 0)

	var loaded domain.CartState
	assert.False(t, store.Load(t.Context(), "cart-storage", &loaded))
}

func TestStore_CorruptedRecordIsDeleted(t *testing.T) {
	ctx := t.Context()
	backend := newBackend(t)
	store := storage.New(backend, newCipher(t, "key"), 0)

	require.NoError(t, backend.Set(ctx, "cart-storage", "garbage-that-is-not-ciphertext"))

	var loaded domain.CartState
	assert.False(t, store.Load(ctx, "cart-storage", &loaded))

	_, found, err := backend.Get(ctx, "cart-storage")
	require.NoError(t, err)
	assert.False(t, found, "corrupt record must be deleted")
}

func TestStore_ForeignKeyRecordIsDeleted(t *testing.T) {
	ctx := t.Context()
	backend := newBackend(t)

	writer := storage.New(backend, newCipher(t, "old-key"), 0)
	writer.Save(ctx, "cart-storage", &domain.CartState{})

	reader := storage.New(backend, newCipher(t, "new-key"), 0)
	var loaded domain.CartState
	assert.False(t, reader.Load(ctx, "cart-storage", &loaded))

	_, found, err := backend.Get(ctx, "cart-storage")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_OversizeDropsUndoHistory(t *testing.T) {
	ctx := t.Context()
	store := storage.New(newBackend(t), newCipher(t, "key"), 2048)

	state := domain.CartState{
		Items: []domain.CartItem{{ID: "product-1-variant-10", Quantity: 1}},
	}
	for i := 0; i < 50; i++ {
		state.UndoStack = append(state.UndoStack, domain.UndoAction{
			Kind: domain.UndoRemove,
			Item: domain.CartItem{ID: "product-1-variant-10", Name: strings.Repeat("x", 100)},
		})
	}
	store.Save(ctx, "cart-storage", &state)

	var loaded domain.CartState
	require.True(t, store.Load(ctx, "cart-storage", &loaded))
	assert.Empty(t, loaded.UndoStack, "undo history is the first thing to go under size pressure")
	assert.Len(t, loaded.Items, 1)
}

func TestStore_UntrimmablyOversizeRecordIsDeleted(t *testing.T) {
	ctx := t.Context()
	backend := newBackend(t)
	store := storage.New(backend, newCipher(t, "key"), 64)

	state := domain.CartState{
		Items: []domain.CartItem{{ID: "product-1-variant-10", Name: strings.Repeat("x", 500)}},
	}
	store.Save(ctx, "cart-storage", &state)

	_, found, err := backend.Get(ctx, "cart-storage")
	require.NoError(t, err)
	assert.False(t, found)
}

func TestStore_NilCipherDisablesPersistence(t *testing.T) {
	ctx := t.Context()
	backend := newBackend(t)
	store := storage.New(backend, nil, 0)

	store.Save(ctx, "cart-storage", &domain.CartState{})

	_, found, err := backend.Get(ctx, "cart-storage")
	require.NoError(t, err)
	assert.False(t, found, "nothing may be written without a cipher")

	var loaded domain.CartState
	assert.False(t, store.Load(ctx, "cart-storage", &loaded))
}

func TestStore_Remove(t *testing.T) {
	ctx := t.Context()
	backend := newBackend(t)
	store := storage.New(backend, newCipher(t, "key"), 0)

	store.Save(ctx, "cart-storage", &domain.CartState{})
	store.Remove(ctx, "cart-storage")

	var loaded domain.CartState
	assert.False(t, store.Load(ctx, "cart-storage", &loaded))
}

func TestFileBackend_DeleteMissingIsNoError(t *testing.T) {
	backend := newBackend(t)
	assert.NoError(t, backend.Delete(t.Context(), "never-written"))
}
