package client

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"madrush/storefront/internal/config"
	"madrush/storefront/internal/domain"

	log "github.com/sirupsen/logrus"
	"go.uber.org/ratelimit"
	"resty.dev/v3"
)

// StorefrontClient talks to the backend REST API. It is a thin typed
// wrapper: request shaping, rate limiting and error wrapping, no business
// logic.
type StorefrontClient interface {
	Products(ctx context.Context) ([]domain.Product, error)
	Product(ctx context.Context, id int) (*domain.Product, error)
	Categories(ctx context.Context) ([]domain.Category, error)
	BestSellers(ctx context.Context, rangeParam string) ([]domain.Product, error)
	Checkout(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutResponse, error)
	InitializePayment(ctx context.Context, req domain.InitializePaymentRequest) (*domain.InitializePaymentResponse, error)
	VerifyPayment(ctx context.Context, reference string) (*domain.VerifyResponse, error)
}

type storefrontClient struct {
	rl         ratelimit.Limiter
	httpClient *resty.Client
}

func NewStorefrontClient(cfg config.APIConfig) StorefrontClient {
	httpClient := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetTimeout(time.Duration(cfg.Timeout)*time.Second).
		SetRetryCount(cfg.MaxRetries).
		SetRetryWaitTime(2*time.Second).
		SetRetryMaxWaitTime(10*time.Second).
		SetHeader("Accept", "application/json")

	maxRPS := cfg.MaxRequestsPerSecond
	if maxRPS <= 0 {
		maxRPS = 10
	}

	return &storefrontClient{
		rl:         ratelimit.New(maxRPS),
		httpClient: httpClient,
	}
}

func (c *storefrontClient) Products(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	if err := c.get(ctx, "/api/products", nil, &products); err != nil {
		return nil, fmt.Errorf("failed to fetch products: %w", err)
	}

	log.Debugf("Fetched %d products", len(products))
	return products, nil
}

func (c *storefrontClient) Product(ctx context.Context, id int) (*domain.Product, error) {
	var product domain.Product
	if err := c.get(ctx, "/api/products/"+strconv.Itoa(id), nil, &product); err != nil {
		return nil, fmt.Errorf("failed to fetch product %d: %w", id, err)
	}
	return &product, nil
}

func (c *storefrontClient) Categories(ctx context.Context) ([]domain.Category, error) {
	var categories []domain.Category
	if err := c.get(ctx, "/api/products/categories", nil, &categories); err != nil {
		return nil, fmt.Errorf("failed to fetch categories: %w", err)
	}
	return categories, nil
}

func (c *storefrontClient) BestSellers(ctx context.Context, rangeParam string) ([]domain.Product, error) {
	query := map[string]string{"range": rangeParam}

	var products []domain.Product
	if err := c.get(ctx, "/api/products/best-sellers", query, &products); err != nil {
		return nil, fmt.Errorf("failed to fetch best sellers: %w", err)
	}
	return products, nil
}

func (c *storefrontClient) Checkout(ctx context.Context, req domain.CheckoutRequest) (*domain.CheckoutResponse, error) {
	var order domain.CheckoutResponse
	if err := c.post(ctx, "/api/orders/checkout", req, &order); err != nil {
		return nil, fmt.Errorf("failed to checkout: %w", err)
	}

	log.Infof("Checkout accepted, order %s (reference %s)", order.OrderNumber, order.Reference)
	return &order, nil
}

func (c *storefrontClient) InitializePayment(ctx context.Context, req domain.InitializePaymentRequest) (*domain.InitializePaymentResponse, error) {
	var resp domain.InitializePaymentResponse
	if err := c.post(ctx, "/api/payment/initialize", req, &resp); err != nil {
		return nil, fmt.Errorf("failed to initialize payment: %w", err)
	}
	return &resp, nil
}

func (c *storefrontClient) VerifyPayment(ctx context.Context, reference string) (*domain.VerifyResponse, error) {
	var resp domain.VerifyResponse
	if err := c.get(ctx, "/api/payment/verify/"+reference, nil, &resp); err != nil {
		return nil, fmt.Errorf("failed to verify payment %s: %w", reference, err)
	}
	return &resp, nil
}

func (c *storefrontClient) get(ctx context.Context, path string, query map[string]string, out any) error {
	c.rl.Take()

	req := c.httpClient.R().
		SetContext(ctx).
		SetResult(out)
	if len(query) > 0 {
		req.SetQueryParams(query)
	}

	resp, err := req.Get(path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("HTTP error: %d %s", resp.StatusCode(), resp.Status())
	}

	return nil
}

func (c *storefrontClient) post(ctx context.Context, path string, body, out any) error {
	c.rl.Take()

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(body).
		SetResult(out).
		Post(path)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	if resp.IsError() {
		return fmt.Errorf("HTTP error: %d %s", resp.StatusCode(), resp.Status())
	}

	return nil
}
