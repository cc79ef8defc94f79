package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/farellandr/admitpay/internal/gateway"
	"github.com/farellandr/admitpay/internal/mailer"
	"github.com/farellandr/admitpay/internal/models"
	"github.com/farellandr/admitpay/internal/payment"
	"github.com/farellandr/admitpay/internal/receipt"
	"github.com/farellandr/admitpay/internal/repository"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const eventLockTTL = 10 * time.Minute

type ReconcileResult struct {
	ApplicationID uint
	Matched       bool
	Duplicate     bool
	Previous      payment.Status
	Current       payment.Status
	Changed       bool
	Anomaly       error
	TokensUsed    int64
}

type ReceiptConfig struct {
	InstituteName string
	SupportEmail  string
}

type ReconcileService struct {
	store *repository.Store
	mail  mailer.Mailer
	lock  EventLock
	cfg   ReceiptConfig
	log   *zap.Logger
	now   func() time.Time
}

// NewReconcileService builds the webhook pipeline. lock may be nil.
func NewReconcileService(store *repository.Store, mail mailer.Mailer, lock EventLock, cfg ReceiptConfig, log *zap.Logger) *ReconcileService {
	return &ReconcileService{store: store, mail: mail, lock: lock, cfg: cfg, log: log, now: time.Now}
}

// Apply records a gateway notification against its application. Unmatched
// notifications are dead-lettered and reported with Matched false; they are
// not an error.
func (s *ReconcileService) Apply(ctx context.Context, n *gateway.Notification) (*ReconcileResult, error) {
	log := s.log.With(zap.String("provider", n.Provider), zap.String("event", n.Event), zap.String("event_id", n.EventID))

	lockKey := n.Provider + ":" + n.EventID
	if s.lock != nil {
		acquired, err := s.lock.Acquire(ctx, lockKey, eventLockTTL)
		switch {
		case err != nil:
			log.Warn("event lock unavailable, relying on database dedupe", zap.Error(err))
		case !acquired:
			log.Info("duplicate delivery skipped")
			return &ReconcileResult{ApplicationID: n.ApplicationID, Matched: true, Duplicate: true}, nil
		}
	}

	result, err := s.apply(ctx, n, log)
	if err != nil && s.lock != nil {
		if rerr := s.lock.Release(ctx, lockKey); rerr != nil {
			log.Warn("event lock not released", zap.Error(rerr))
		}
	}
	return result, err
}

func (s *ReconcileService) apply(ctx context.Context, n *gateway.Notification, log *zap.Logger) (*ReconcileResult, error) {
	app, reason, err := s.resolve(ctx, n)
	if err != nil {
		return nil, err
	}
	if app == nil {
		if err := s.deadLetter(ctx, n, reason); err != nil {
			return nil, err
		}
		log.Warn("webhook for unknown application", zap.String("reason", reason))
		return &ReconcileResult{ApplicationID: n.ApplicationID}, nil
	}

	log = log.With(zap.Uint("application_id", app.ID))
	result := &ReconcileResult{ApplicationID: app.ID, Matched: true}
	now := s.now().UTC()

	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		inserted, err := tx.AppendEvent(ctx, &models.PaymentEvent{
			ApplicationID:  app.ID,
			GatewayEventID: n.EventID,
			Provider:       n.Provider,
			Event:          n.Event,
			PaymentID:      n.PaymentID,
			LinkID:         n.LinkID,
			Amount:         n.Amount,
			Currency:       n.Currency,
			Method:         n.Method,
			Status:         n.Status,
			ReceivedAt:     now,
			WebhookPayload: string(n.Payload),
		})
		if err != nil {
			return fmt.Errorf("append payment event: %w", err)
		}
		if !inserted {
			result.Duplicate = true
			return nil
		}
		if !n.ChangesStatus() {
			return nil
		}

		prev, changed, err := advanceStatus(ctx, tx, app.ID, n.Outcome)
		result.Previous = prev
		switch {
		case errors.Is(err, payment.ErrInvalidTransition):
			result.Anomaly = err
			result.Current = prev
			return nil
		case err != nil:
			return err
		}
		result.Changed = changed
		result.Current = n.Outcome

		if n.Outcome == payment.StatusPaid {
			used, err := tx.MarkTokensUsed(ctx, app.ID, now)
			if err != nil {
				return fmt.Errorf("mark tokens used: %w", err)
			}
			result.TokensUsed = used
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	switch {
	case result.Duplicate:
		log.Info("duplicate webhook event ignored")
	case result.Anomaly != nil:
		log.Warn("payment status transition rejected", zap.Error(result.Anomaly))
	case result.Changed:
		log.Info("payment status updated", zap.String("from", string(result.Previous)), zap.String("to", string(result.Current)))
	}

	if result.Changed && result.Current == payment.StatusPaid {
		s.sendReceipt(ctx, app, n, now, log)
	}
	return result, nil
}

// resolve finds the application by notes first and by payment link id second.
func (s *ReconcileService) resolve(ctx context.Context, n *gateway.Notification) (*models.Application, string, error) {
	id := n.ApplicationID
	if id == 0 && n.LinkID != "" {
		token, err := s.store.FindTokenByLinkID(ctx, n.LinkID)
		switch {
		case err == nil:
			id = token.ApplicationID
		case !errors.Is(err, repository.ErrNotFound):
			return nil, "", err
		}
	}
	if id == 0 {
		return nil, "no application id in notes and no known payment link", nil
	}

	app, err := s.store.GetApplication(ctx, id)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, fmt.Sprintf("application %d not found", id), nil
	}
	if err != nil {
		return nil, "", err
	}
	return app, "", nil
}

func (s *ReconcileService) deadLetter(ctx context.Context, n *gateway.Notification, reason string) error {
	return s.store.RecordUnmatched(ctx, &models.UnmatchedWebhook{
		ID:             uuid.NewString(),
		Provider:       n.Provider,
		GatewayEventID: n.EventID,
		Event:          n.Event,
		Reason:         reason,
		Payload:        string(n.Payload),
		ReceivedAt:     s.now().UTC(),
	})
}

func (s *ReconcileService) sendReceipt(ctx context.Context, app *models.Application, n *gateway.Notification, paidAt time.Time, log *zap.Logger) {
	currency := n.Currency
	if currency == "" {
		currency = "INR"
	}
	amount := gateway.FromMinorUnits(n.Amount).StringFixed(2)

	pdf, err := receipt.Generate(receipt.Data{
		InstituteName: s.cfg.InstituteName,
		ApplicationID: app.ID,
		StudentName:   app.DisplayName(),
		Email:         app.ContactEmail(),
		Amount:        amount,
		Currency:      currency,
		PaymentID:     n.PaymentID,
		Method:        n.Method,
		PaidAt:        paidAt,
	})
	if err != nil {
		log.Error("receipt pdf not generated", zap.Error(err))
		return
	}

	subject, html, err := mailer.RenderReceipt(mailer.ReceiptEmail{
		Name:         app.DisplayName(),
		Amount:       amount,
		PaymentID:    n.PaymentID,
		PaidAt:       paidAt,
		SupportEmail: s.cfg.SupportEmail,
	})
	if err != nil {
		log.Error("receipt email not rendered", zap.Error(err))
		return
	}

	err = s.mail.Send(ctx, mailer.Message{
		To:      app.ContactEmail(),
		Subject: subject,
		HTML:    html,
		Attachments: []mailer.Attachment{{
			Name:        fmt.Sprintf("receipt-APP-%d.pdf", app.ID),
			ContentType: "application/pdf",
			Data:        pdf,
		}},
	})
	if err != nil {
		log.Error("receipt email not sent", zap.Error(err))
		return
	}
	log.Info("receipt emailed")
}
