// Package gateway talks to the hosted-checkout providers: it creates payment
// links and turns provider callbacks into Notifications.
package gateway

import (
	"context"
	"errors"
	"time"

	"github.com/farellandr/admitpay/internal/payment"
	"github.com/shopspring/decimal"
)

var ErrLinkCreation = errors.New("payment link creation failed")

type Customer struct {
	Name  string
	Email string
	Phone string
}

type LinkRequest struct {
	ApplicationID uint
	Route         payment.Route
	Amount        decimal.Decimal
	Currency      string
	Reference     string
	Description   string
	Customer      Customer
	CallbackURL   string
	FailureURL    string
	ExpireBy      time.Time
}

type Link struct {
	ID     string
	URL    string
	Status string
}

type Gateway interface {
	Name() string
	CreatePaymentLink(ctx context.Context, req LinkRequest) (*Link, error)
}

// ToMinorUnits converts a major-unit amount (rupees) to the gateway's minor unit (paise).
func ToMinorUnits(amount decimal.Decimal) int64 {
	return amount.Shift(2).Round(0).IntPart()
}

func FromMinorUnits(minor int64) decimal.Decimal {
	return decimal.New(minor, -2)
}
