package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/farellandr/admitpay/internal/payment"
	"github.com/farellandr/admitpay/internal/repository"
)

const maxStatusAttempts = 3

// advanceStatus moves an application's payment status to next through the
// transition table, retrying the version compare-and-set on conflict.
// changed is false for same-state moves.
func advanceStatus(ctx context.Context, store *repository.Store, applicationID uint, next payment.Status) (prev payment.Status, changed bool, err error) {
	for attempt := 0; attempt < maxStatusAttempts; attempt++ {
		app, err := store.GetApplication(ctx, applicationID)
		if err != nil {
			return payment.StatusNone, false, err
		}
		prev = app.PaymentStatus
		if _, err := prev.Transition(next); err != nil {
			return prev, false, err
		}
		if prev == next {
			return prev, false, nil
		}

		err = store.SetPaymentStatus(ctx, applicationID, app.Version, next)
		if errors.Is(err, repository.ErrVersionConflict) {
			continue
		}
		if err != nil {
			return prev, false, err
		}
		return prev, true, nil
	}
	return prev, false, fmt.Errorf("application %d: %w after %d attempts", applicationID, repository.ErrVersionConflict, maxStatusAttempts)
}
