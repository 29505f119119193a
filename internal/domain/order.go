package domain

import "github.com/shopspring/decimal"

type CheckoutLine struct {
	VariantID int `json:"variant_id"`
	Quantity  int `json:"quantity"`
}

type CheckoutRequest struct {
	Cart            []CheckoutLine `json:"cart"`
	CustomerName    string         `json:"customer_name"`
	CustomerEmail   string         `json:"customer_email"`
	CustomerPhone   string         `json:"customer_phone"`
	ShippingAddress string         `json:"shipping_address"`
	PaymentMethod   string         `json:"payment_method"`
	IdempotencyKey  string         `json:"idempotency_key"`
}

type CheckoutResponse struct {
	OrderID     int             `json:"order_id"`
	OrderNumber string          `json:"order_number"`
	Reference   string          `json:"reference"`
	Amount      decimal.Decimal `json:"amount"`
}
