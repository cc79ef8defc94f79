package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/farellandr/admitpay/internal/mailer"
	"github.com/farellandr/admitpay/internal/models"
	"github.com/farellandr/admitpay/internal/payment"
	"github.com/farellandr/admitpay/internal/repository"
	"go.uber.org/zap"
)

var (
	ErrApplicationNotFound = errors.New("application not found")
	ErrInvalidDecision     = errors.New("decision must be Approved or Rejected")
	ErrAlreadyPaid         = errors.New("application fee already paid")
	ErrNothingPayable      = errors.New("discount covers the whole course fee")
)

type ApprovalResult struct {
	Decision      string
	Fees          *Fees
	DirectToken   *models.PaymentToken
	GatewayToken  *models.PaymentToken
	DirectPayURL  string
	GatewayPayURL string
	RevokedTokens int64
	EmailSent     bool
}

type ApprovalConfig struct {
	Links         Links
	SupportEmail  string
	TokenValidity time.Duration
}

type ApprovalService struct {
	store  *repository.Store
	tokens *TokenService
	mail   mailer.Mailer
	cfg    ApprovalConfig
	log    *zap.Logger
	now    func() time.Time
}

func NewApprovalService(store *repository.Store, tokens *TokenService, mail mailer.Mailer, cfg ApprovalConfig, log *zap.Logger) *ApprovalService {
	if cfg.TokenValidity <= 0 {
		cfg.TokenValidity = DefaultTokenValidity
	}
	return &ApprovalService{store: store, tokens: tokens, mail: mail, cfg: cfg, log: log, now: time.Now}
}

// Decide records the decision before any token or mail work. Every unused
// token from an earlier decision is revoked with it, so only the links of the
// latest approval can be paid. A mail failure leaves the decision in place
// and is reported through EmailSent.
func (s *ApprovalService) Decide(ctx context.Context, applicationID uint, decision, approvedBy string) (*ApprovalResult, error) {
	if decision != models.ApprovalApproved && decision != models.ApprovalRejected {
		return nil, ErrInvalidDecision
	}

	app, err := s.store.GetApplication(ctx, applicationID)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrApplicationNotFound
	}
	if err != nil {
		return nil, err
	}

	result := &ApprovalResult{Decision: decision}
	if decision == models.ApprovalApproved {
		if app.PaymentStatus == payment.StatusPaid {
			return nil, ErrAlreadyPaid
		}
		fees, err := ComputeFees(app)
		if err != nil {
			return nil, err
		}
		if !fees.Payable.IsPositive() {
			return nil, ErrNothingPayable
		}
		result.Fees = &fees
	}

	now := s.now().UTC()
	err = s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.UpdateApproval(ctx, applicationID, decision, approvedBy, now); err != nil {
			return fmt.Errorf("update approval: %w", err)
		}
		revoked, err := tx.RevokeTokens(ctx, applicationID, now)
		if err != nil {
			return fmt.Errorf("revoke earlier tokens: %w", err)
		}
		result.RevokedTokens = revoked
		return nil
	})
	if err != nil {
		return nil, err
	}

	log := s.log.With(zap.Uint("application_id", applicationID), zap.String("decision", decision))
	if result.RevokedTokens > 0 {
		log.Info("earlier payment tokens revoked", zap.Int64("count", result.RevokedTokens))
	}

	if decision == models.ApprovalRejected {
		result.EmailSent = s.sendRejection(ctx, app, log)
		return result, nil
	}

	if result.DirectToken, err = s.tokens.Issue(ctx, applicationID, result.Fees.Payable, payment.RouteDirect, s.cfg.TokenValidity); err != nil {
		return nil, err
	}
	if result.GatewayToken, err = s.tokens.Issue(ctx, applicationID, result.Fees.Payable, payment.RouteRazorpay, s.cfg.TokenValidity); err != nil {
		return nil, err
	}
	result.DirectPayURL = s.cfg.Links.PayURL(result.DirectToken.Token, payment.RouteDirect)
	result.GatewayPayURL = s.cfg.Links.PayURL(result.GatewayToken.Token, payment.RouteRazorpay)

	if _, _, err := advanceStatus(ctx, s.store, applicationID, payment.StatusPending); err != nil {
		if !errors.Is(err, payment.ErrInvalidTransition) {
			return nil, fmt.Errorf("set payment status: %w", err)
		}
		log.Warn("payment status not reset on re-approval", zap.Error(err))
	}

	result.EmailSent = s.sendApproval(ctx, app, result, log)
	return result, nil
}

func (s *ApprovalService) sendApproval(ctx context.Context, app *models.Application, result *ApprovalResult, log *zap.Logger) bool {
	subject, html, err := mailer.RenderApproval(mailer.ApprovalEmail{
		Name:          app.DisplayName(),
		Program:       programName(app),
		TotalFee:      result.Fees.Total.StringFixed(2),
		Discount:      result.Fees.Discount.StringFixed(2),
		PayableAmount: result.Fees.Payable.StringFixed(2),
		DirectPayURL:  result.DirectPayURL,
		RazorPayURL:   result.GatewayPayURL,
		ExpiresAt:     result.GatewayToken.ExpiresAt,
		SupportEmail:  s.cfg.SupportEmail,
	})
	if err != nil {
		log.Error("render approval email", zap.Error(err))
		return false
	}
	return s.send(ctx, app.ContactEmail(), subject, html, log)
}

func (s *ApprovalService) sendRejection(ctx context.Context, app *models.Application, log *zap.Logger) bool {
	subject, html, err := mailer.RenderRejection(mailer.RejectionEmail{
		Name:         app.DisplayName(),
		SupportEmail: s.cfg.SupportEmail,
	})
	if err != nil {
		log.Error("render rejection email", zap.Error(err))
		return false
	}
	return s.send(ctx, app.ContactEmail(), subject, html, log)
}

func (s *ApprovalService) send(ctx context.Context, to, subject, html string, log *zap.Logger) bool {
	if err := s.mail.Send(ctx, mailer.Message{To: to, Subject: subject, HTML: html}); err != nil {
		log.Error("email not sent", zap.String("to", to), zap.Error(err))
		return false
	}
	return true
}

func programName(app *models.Application) string {
	for _, key := range []string{"program", "programme", "course", "course_name"} {
		if v, ok := app.ApplicationDetails[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
