package gateway

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/farellandr/admitpay/internal/helpers"
	"github.com/farellandr/admitpay/internal/payment"
	"github.com/shopspring/decimal"
)

type xenditCallback struct {
	ID             string          `json:"id"`
	ExternalID     string          `json:"external_id"`
	Status         string          `json:"status"`
	Amount         decimal.Decimal `json:"amount"`
	PaidAmount     decimal.Decimal `json:"paid_amount"`
	Currency       string          `json:"currency"`
	PaymentMethod  string          `json:"payment_method"`
	PaymentChannel string          `json:"payment_channel"`
}

func ClassifyXenditStatus(status string) payment.Status {
	switch strings.ToUpper(status) {
	case "PAID", "SETTLED":
		return payment.StatusPaid
	case "EXPIRED":
		return payment.StatusCancelled
	}
	return payment.StatusNone
}

// ParseXenditCallback decodes an invoice callback whose token was already checked.
func ParseXenditCallback(body []byte) (*Notification, error) {
	var cb xenditCallback
	if err := json.Unmarshal(body, &cb); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if cb.ID == "" || cb.Status == "" {
		return nil, fmt.Errorf("%w: missing invoice id or status", ErrMalformedEvent)
	}

	amount := cb.PaidAmount
	if amount.IsZero() {
		amount = cb.Amount
	}
	method := cb.PaymentChannel
	if method == "" {
		method = cb.PaymentMethod
	}

	n := &Notification{
		Provider: ProviderXendit,
		EventID:  fmt.Sprintf("xendit:%s:%s", cb.ID, strings.ToUpper(cb.Status)),
		Event:    "invoice." + strings.ToLower(cb.Status),
		Outcome:  ClassifyXenditStatus(cb.Status),
		LinkID:   cb.ID,
		Amount:   ToMinorUnits(amount),
		Currency: cb.Currency,
		Method:   strings.ToLower(method),
		Status:   strings.ToLower(cb.Status),
		Payload:  body,
	}
	if id, err := helpers.ExtractApplicationID(cb.ExternalID); err == nil {
		n.ApplicationID = id
	}
	return n, nil
}
