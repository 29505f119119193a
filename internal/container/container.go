package container

import (
	"context"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"madrush/storefront/internal/cart"
	"madrush/storefront/internal/checkout"
	"madrush/storefront/internal/client"
	"madrush/storefront/internal/config"
	"madrush/storefront/internal/domain"
	"madrush/storefront/internal/payment"
	"madrush/storefront/internal/storage"
	"madrush/storefront/internal/wishlist"

	"github.com/redis/go-redis/v9"
	log "github.com/sirupsen/logrus"
	"golang.org/x/text/currency"
)

// Container holds all initialized components
type Container struct {
	Config   *config.Config
	Records  *storage.Store
	Cart     *cart.Store
	Wishlist *wishlist.Store
	Client   client.StorefrontClient
	Poller   *payment.Poller
	Checkout *checkout.Service

	redis *redis.Client
}

// New creates a new container with all dependencies initialized
func New(cfg *config.Config) (*Container, error) {
	container := &Container{
		Config: cfg,
	}

	var recordCipher *storage.Cipher
	if cfg.Storage.EncryptionKey == "" {
		log.Error("FATAL: storage.encryption_key is not set - cart and wishlist persistence is disabled")
	} else {
		var err error
		recordCipher, err = storage.NewCipher(cfg.Storage.EncryptionKey)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize record cipher: %w", err)
		}
	}

	var backend storage.Backend
	switch cfg.Storage.Backend {
	case "redis":
		rdb := redis.NewClient(&redis.Options{
			Addr:     fmt.Sprintf("%s:%d", cfg.Redis.Host, cfg.Redis.Port),
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.Database,
		})

		// Test connection
		if _, err := rdb.Ping(context.Background()).Result(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}

		log.Info("✅ Connected to Redis successfully")
		container.redis = rdb
		backend = storage.NewRedisBackend(rdb)
	case "file", "":
		fileBackend, err := storage.NewFileBackend(cfg.Storage.Dir)
		if err != nil {
			return nil, fmt.Errorf("failed to initialize file storage: %w", err)
		}
		backend = fileBackend
	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}

	container.Records = storage.New(backend, recordCipher, cfg.Storage.MaxRecordBytes)

	cur, err := currency.ParseISO(cfg.API.Currency)
	if err != nil {
		return nil, fmt.Errorf("invalid currency %q: %w", cfg.API.Currency, err)
	}

	ctx := context.Background()
	container.Cart = cart.New(ctx, container.Records, cur)
	container.Wishlist = wishlist.New(ctx, container.Records)

	container.Client = client.NewStorefrontClient(cfg.API)
	container.Poller = payment.NewPoller(container.Client)
	container.Checkout = checkout.NewService(container.Cart, container.Client, container.Poller, payment.Options{
		MaxAttempts: cfg.Payment.MaxAttempts,
		Interval:    time.Duration(cfg.Payment.IntervalSeconds) * time.Second,
	})

	return container, nil
}

// Run loads the catalog and reports the restored cart state
func (c *Container) Run(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	var products []domain.Product
	var categories []domain.Category

	g.Go(func() error {
		var err error
		products, err = c.Client.Products(ctx)
		return err
	})

	g.Go(func() error {
		var err error
		categories, err = c.Client.Categories(ctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return fmt.Errorf("failed to load catalog: %w", err)
	}

	log.Infof("✅ Loaded %d products across %d categories", len(products), len(categories))
	log.Infof("🛒 Cart holds %d items, total %s", c.Cart.TotalCount(), c.Cart.Total())
	return nil
}

// Close performs cleanup when shutting down
func (c *Container) Close() error {
	log.Info("Shutting down container...")

	if c.redis != nil {
		if err := c.redis.Close(); err != nil {
			return fmt.Errorf("failed to close redis client: %w", err)
		}
	}

	log.Info("Container shut down successfully")
	return nil
}
