// Package gateway opens and verifies online payments with a third-party
// payment provider.
package gateway

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

var (
	ErrMisconfigured      = errors.New("payment gateway credentials are not configured")
	ErrVerificationFailed = errors.New("payment verification failed")
	ErrGateway            = errors.New("payment gateway request failed")
	ErrUnsupportedAmount  = errors.New("amount cannot be charged by this gateway")
)

type OrderRequest struct {
	Amount   decimal.Decimal
	Currency string
	Receipt  string
	Notes    map[string]string
}

// Order is a remote order as reported by the provider. Amount is in the
// provider's minor unit.
type Order struct {
	ID          string `json:"orderId"`
	Amount      int64  `json:"amount"`
	Currency    string `json:"currency"`
	PublicKey   string `json:"keyId,omitempty"`
	Token       string `json:"token,omitempty"`
	RedirectURL string `json:"redirectUrl,omitempty"`
}

// Confirmation is what the client hands back after the hosted payment page.
type Confirmation struct {
	OrderID   string
	PaymentID string
	Signature string
}

type Gateway interface {
	Provider() string
	CreateOrder(ctx context.Context, req OrderRequest) (*Order, error)
	// Verify must return nil only when the payment is proven authentic.
	Verify(ctx context.Context, c Confirmation) error
}
