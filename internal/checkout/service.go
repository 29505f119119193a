package checkout

import (
	"context"
	"errors"
	"fmt"

	"madrush/storefront/internal/cart"
	"madrush/storefront/internal/client"
	"madrush/storefront/internal/domain"
	"madrush/storefront/internal/payment"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

var ErrEmptyCart = errors.New("cart is empty")

// PaymentError reports a checkout whose payment did not reach success,
// carrying the final poll status (failed, cancelled, timeout or aborted).
type PaymentError struct {
	Status   string
	Attempts int
}

func (e *PaymentError) Error() string {
	return fmt.Sprintf("payment not confirmed: %s after %d attempts", e.Status, e.Attempts)
}

type Customer struct {
	Name            string
	Email           string
	Phone           string
	ShippingAddress string
	PaymentMethod   string
}

// Service drives the order flow: snapshot the cart, place the order,
// initialize the payment and poll verification. The cart is cleared only
// after the payment is confirmed.
type Service struct {
	cart     *cart.Store
	client   client.StorefrontClient
	poller   *payment.Poller
	pollOpts payment.Options
}

// NewService wires the order flow. pollOpts carries the configured attempt
// budget and base interval; its Reference is set per order.
func NewService(cartStore *cart.Store, apiClient client.StorefrontClient, poller *payment.Poller, pollOpts payment.Options) *Service {
	return &Service{
		cart:     cartStore,
		client:   apiClient,
		poller:   poller,
		pollOpts: pollOpts,
	}
}

// PlaceOrder submits the current cart. Each call carries a fresh
// idempotency key, so a retried call is a new order attempt from the
// backend's point of view.
func (s *Service) PlaceOrder(ctx context.Context, customer Customer) (*domain.VerifyData, error) {
	items := s.cart.Items()
	if len(items) == 0 {
		return nil, ErrEmptyCart
	}

	lines := make([]domain.CheckoutLine, 0, len(items))
	for _, item := range items {
		lines = append(lines, domain.CheckoutLine{
			VariantID: item.VariantID,
			Quantity:  item.Quantity,
		})
	}

	order, err := s.client.Checkout(ctx, domain.CheckoutRequest{
		Cart:            lines,
		CustomerName:    customer.Name,
		CustomerEmail:   customer.Email,
		CustomerPhone:   customer.Phone,
		ShippingAddress: customer.ShippingAddress,
		PaymentMethod:   customer.PaymentMethod,
		IdempotencyKey:  uuid.NewString(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to place order: %w", err)
	}

	init, err := s.client.InitializePayment(ctx, domain.InitializePaymentRequest{
		Email:   customer.Email,
		Amount:  s.cart.Total().Amount,
		OrderID: order.OrderID,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize payment for order %s: %w", order.OrderNumber, err)
	}

	reference := init.Reference
	if reference == "" {
		reference = order.Reference
	}

	opts := s.pollOpts
	opts.Reference = reference
	result := s.poller.Poll(ctx, opts)
	if !result.Success {
		return nil, &PaymentError{Status: result.Status, Attempts: result.Attempts}
	}

	s.cart.Clear(ctx)
	log.Infof("✅ Order %s paid after %d verification attempts", result.Data.OrderNumber, result.Attempts)
	return result.Data, nil
}
