// Package payment talks to external payment collectors.
package payment

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentRequest struct {
	Amount      decimal.Decimal
	Currency    string
	Description string
	// OrderID is echoed back by the provider in the callback as merchant_order_id.
	OrderID       string
	CustomerPhone string // e.g. 254712345678
	CustomerName  string
	CustomerEmail string
	CallbackURL   string
}

type PaymentResponse struct {
	Reference         string
	Status            string
	ExpiresAt         time.Time
	CheckoutRequestID string // M-Pesa STK checkout request ID
}

type Provider interface {
	InitiatePayment(ctx context.Context, req PaymentRequest) (*PaymentResponse, error)
}
