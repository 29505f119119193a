package domain

import "github.com/shopspring/decimal"

type PaymentStatus string

const (
	PaymentPending   PaymentStatus = "pending"
	PaymentSuccess   PaymentStatus = "success"
	PaymentFailed    PaymentStatus = "failed"
	PaymentCancelled PaymentStatus = "cancelled"
)

// Terminal reports whether the status ends a verification cycle.
func (s PaymentStatus) Terminal() bool {
	return s == PaymentSuccess || s == PaymentFailed || s == PaymentCancelled
}

type VerifyData struct {
	Status      PaymentStatus   `json:"status"`
	OrderNumber string          `json:"order_number,omitempty"`
	Reference   string          `json:"reference,omitempty"`
	Amount      decimal.Decimal `json:"amount,omitempty"`
}

type VerifyResponse struct {
	Status  bool        `json:"status"`
	Message string      `json:"message,omitempty"`
	Data    *VerifyData `json:"data,omitempty"`
}

type InitializePaymentRequest struct {
	Email       string          `json:"email"`
	Amount      decimal.Decimal `json:"amount"`
	OrderID     int             `json:"order_id"`
	CallbackURL string          `json:"callback_url,omitempty"`
}

type InitializePaymentResponse struct {
	Status           bool   `json:"status"`
	Message          string `json:"message,omitempty"`
	AuthorizationURL string `json:"authorization_url,omitempty"`
	AccessCode       string `json:"access_code,omitempty"`
	Reference        string `json:"reference,omitempty"`
}
