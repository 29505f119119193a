package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/redis/go-redis/v9"
)

// Backend is the raw keyed-record storage underneath the encrypted Store.
// Values are opaque ciphertext strings.
type Backend interface {
	Get(ctx context.Context, name string) (string, bool, error)
	Set(ctx context.Context, name, value string) error
	Delete(ctx context.Context, name string) error
}

type fileBackend struct {
	dir string
}

// NewFileBackend stores one file per record name under dir, creating dir if
// needed.
func NewFileBackend(dir string) (Backend, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return nil, fmt.Errorf("failed to create storage directory %s: %w", dir, err)
	}
	return &fileBackend{dir: dir}, nil
}

func (b *fileBackend) path(name string) string {
	return filepath.Join(b.dir, name+".dat")
}

func (b *fileBackend) Get(_ context.Context, name string) (string, bool, error) {
	data, err := os.ReadFile(b.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read record %s: %w", name, err)
	}
	return string(data), true, nil
}

func (b *fileBackend) Set(_ context.Context, name, value string) error {
	if err := os.WriteFile(b.path(name), []byte(value), 0o600); err != nil {
		return fmt.Errorf("failed to write record %s: %w", name, err)
	}
	return nil
}

func (b *fileBackend) Delete(_ context.Context, name string) error {
	err := os.Remove(b.path(name))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete record %s: %w", name, err)
	}
	return nil
}

type redisBackend struct {
	redisClient *redis.Client
	keyPrefix   string
}

// NewRedisBackend shares records through redis so several processes can see
// the same cart. Writes stay last-writer-wins, exactly like the file backend.
func NewRedisBackend(redisClient *redis.Client) Backend {
	return &redisBackend{
		redisClient: redisClient,
		keyPrefix:   "storefront:record:",
	}
}

func (b *redisBackend) Get(ctx context.Context, name string) (string, bool, error) {
	val, err := b.redisClient.Get(ctx, b.keyPrefix+name).Result()
	if err != nil {
		if err == redis.Nil {
			return "", false, nil
		}
		return "", false, fmt.Errorf("failed to read record %s: %w", name, err)
	}
	return val, true, nil
}

func (b *redisBackend) Set(ctx context.Context, name, value string) error {
	if err := b.redisClient.Set(ctx, b.keyPrefix+name, value, 0).Err(); err != nil {
		return fmt.Errorf("failed to write record %s: %w", name, err)
	}
	return nil
}

func (b *redisBackend) Delete(ctx context.Context, name string) error {
	if err := b.redisClient.Del(ctx, b.keyPrefix+name).Err(); err != nil {
		return fmt.Errorf("failed to delete record %s: %w", name, err)
	}
	return nil
}
