package gateway

import "github.com/farellandr/admitpay/internal/payment"

// Notification is a provider callback normalized for reconciliation.
type Notification struct {
	Provider      string
	EventID       string
	Event         string
	Outcome       payment.Status
	ApplicationID uint
	LinkID        string
	PaymentID     string
	Amount        int64
	Currency      string
	Method        string
	Status        string
	Payload       []byte
}

// ChangesStatus reports whether the event maps to a payment status bucket.
func (n *Notification) ChangesStatus() bool {
	return n.Outcome != payment.StatusNone
}
