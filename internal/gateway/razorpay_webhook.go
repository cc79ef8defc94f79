package gateway

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/farellandr/admitpay/internal/helpers"
	"github.com/farellandr/admitpay/internal/payment"
)

var ErrMalformedEvent = errors.New("malformed webhook event")

type razorpayEvent struct {
	Event     string `json:"event"`
	CreatedAt int64  `json:"created_at"`
	Payload   struct {
		Payment *struct {
			Entity razorpayPayment `json:"entity"`
		} `json:"payment"`
		PaymentLink *struct {
			Entity razorpayLink `json:"entity"`
		} `json:"payment_link"`
	} `json:"payload"`
}

type razorpayPayment struct {
	ID       string          `json:"id"`
	Amount   int64           `json:"amount"`
	Currency string          `json:"currency"`
	Method   string          `json:"method"`
	Status   string          `json:"status"`
	Notes    json.RawMessage `json:"notes"`
}

type razorpayLink struct {
	ID          string          `json:"id"`
	Amount      int64           `json:"amount"`
	AmountPaid  int64           `json:"amount_paid"`
	Currency    string          `json:"currency"`
	Status      string          `json:"status"`
	ReferenceID string          `json:"reference_id"`
	Notes       json.RawMessage `json:"notes"`
}

// ClassifyRazorpayEvent maps an event name onto a status bucket.
// StatusNone means the event leaves the payment status alone.
func ClassifyRazorpayEvent(event string) payment.Status {
	switch event {
	case "payment_link.paid", "payment.captured", "order.paid":
		return payment.StatusPaid
	case "payment.failed":
		return payment.StatusFailed
	case "payment_link.cancelled", "payment_link.expired":
		return payment.StatusCancelled
	}
	return payment.StatusNone
}

// ParseRazorpayWebhook decodes a verified webhook body. eventID is the
// X-Razorpay-Event-Id header and may be empty.
func ParseRazorpayWebhook(body []byte, eventID string) (*Notification, error) {
	var evt razorpayEvent
	if err := json.Unmarshal(body, &evt); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEvent, err)
	}
	if evt.Event == "" {
		return nil, fmt.Errorf("%w: missing event name", ErrMalformedEvent)
	}

	n := &Notification{
		Provider: ProviderRazorpay,
		Event:    evt.Event,
		Outcome:  ClassifyRazorpayEvent(evt.Event),
		Payload:  body,
	}

	if p := evt.Payload.Payment; p != nil {
		n.PaymentID = p.Entity.ID
		n.Amount = p.Entity.Amount
		n.Currency = p.Entity.Currency
		n.Method = p.Entity.Method
		n.Status = p.Entity.Status
		n.ApplicationID = applicationIDFromNotes(p.Entity.Notes)
	}
	if l := evt.Payload.PaymentLink; l != nil {
		n.LinkID = l.Entity.ID
		if n.Status == "" {
			n.Status = l.Entity.Status
		}
		if n.Amount == 0 {
			n.Amount = l.Entity.AmountPaid
			if n.Amount == 0 {
				n.Amount = l.Entity.Amount
			}
		}
		if n.Currency == "" {
			n.Currency = l.Entity.Currency
		}
		if n.ApplicationID == 0 {
			n.ApplicationID = applicationIDFromNotes(l.Entity.Notes)
		}
		if n.ApplicationID == 0 && l.Entity.ReferenceID != "" {
			if id, err := helpers.ExtractApplicationID(l.Entity.ReferenceID); err == nil {
				n.ApplicationID = id
			}
		}
	}

	n.EventID = strings.TrimSpace(eventID)
	if n.EventID == "" {
		n.EventID = fmt.Sprintf("%s:%s:%s", evt.Event, n.PaymentID, n.LinkID)
	}
	return n, nil
}

// Razorpay sends notes as an object, or as [] when empty.
func applicationIDFromNotes(raw json.RawMessage) uint {
	if len(raw) == 0 {
		return 0
	}
	var notes map[string]interface{}
	if err := json.Unmarshal(raw, &notes); err != nil {
		return 0
	}
	for _, key := range []string{"application_id", "applicationId"} {
		switch v := notes[key].(type) {
		case string:
			if id, err := strconv.ParseUint(strings.TrimSpace(v), 10, 64); err == nil {
				return uint(id)
			}
		case float64:
			if v > 0 {
				return uint(v)
			}
		}
	}
	return 0
}
