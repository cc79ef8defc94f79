package payment

import (
	"database/sql/driver"
	"errors"
	"fmt"
)

type Status string

const (
	StatusNone        Status = ""
	StatusPending     Status = "pending"
	StatusLinkCreated Status = "payment_link_created"
	StatusPaid        Status = "paid"
	StatusFailed      Status = "failed"
	StatusCancelled   Status = "cancelled"
)

var ErrInvalidTransition = errors.New("invalid payment status transition")

var transitions = map[Status]map[Status]bool{
	StatusNone: {
		StatusPending: true,
	},
	StatusPending: {
		StatusPending:     true,
		StatusLinkCreated: true,
		StatusPaid:        true,
		StatusFailed:      true,
		StatusCancelled:   true,
	},
	StatusLinkCreated: {
		StatusLinkCreated: true,
		StatusPaid:        true,
		StatusFailed:      true,
		StatusCancelled:   true,
	},
	StatusFailed: {
		StatusLinkCreated: true,
		StatusPaid:        true,
		StatusFailed:      true,
		StatusCancelled:   true,
	},
	StatusCancelled: {
		StatusLinkCreated: true,
		StatusPaid:        true,
		StatusFailed:      true,
		StatusCancelled:   true,
	},
	StatusPaid: {
		StatusPaid: true,
	},
}

func ParseStatus(s string) (Status, error) {
	st := Status(s)
	if _, ok := transitions[st]; !ok {
		return StatusNone, fmt.Errorf("unknown payment status %q", s)
	}
	return st, nil
}

func (s Status) Valid() bool {
	_, ok := transitions[s]
	return ok
}

func (s Status) Terminal() bool {
	return s == StatusPaid
}

// CanTransition reports whether moving from s to next is allowed.
// Same-state moves are allowed where listed and treated as no-ops by callers.
func (s Status) CanTransition(next Status) bool {
	return transitions[s][next]
}

// Transition returns next, or ErrInvalidTransition wrapped with both states.
func (s Status) Transition(next Status) (Status, error) {
	if !s.CanTransition(next) {
		return s, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, s.label(), next.label())
	}
	return next, nil
}

func (s Status) label() string {
	if s == StatusNone {
		return "none"
	}
	return string(s)
}

func (s Status) Value() (driver.Value, error) {
	if s == StatusNone {
		return nil, nil
	}
	return string(s), nil
}

func (s *Status) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*s = StatusNone
	case string:
		*s = Status(v)
	case []byte:
		*s = Status(v)
	default:
		return fmt.Errorf("cannot scan %T into payment.Status", value)
	}
	return nil
}
