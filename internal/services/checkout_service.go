package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/farellandr/admitpay/internal/gateway"
	"github.com/farellandr/admitpay/internal/helpers"
	"github.com/farellandr/admitpay/internal/models"
	"github.com/farellandr/admitpay/internal/payment"
	"github.com/farellandr/admitpay/internal/repository"
	"go.uber.org/zap"
)

const (
	ReasonMissingToken   = "Payment link is incomplete"
	ReasonInvalidType    = "Unsupported payment type"
	ReasonTokenNotFound  = "Invalid or unknown payment link"
	ReasonTokenExpired   = "This payment link has expired"
	ReasonTokenUsed      = "This payment link has already been used"
	ReasonRouteMismatch  = "This payment link is for a different payment method"
	ReasonTokenRevoked   = "This payment link has been replaced or withdrawn"
	ReasonGatewayFailure = "We could not start your payment, please try again later"
	ReasonInternal       = "Something went wrong, please try again later"

	StatusAlreadyPaid = "already_paid"
)

// Outcome is where the applicant's browser goes next.
type Outcome struct {
	RedirectURL string
	Reason      string
	AlreadyPaid bool
	Link        *gateway.Link
}

type CheckoutService struct {
	store    *repository.Store
	tokens   *TokenService
	gateways map[payment.Route]gateway.Gateway
	links    Links
	log      *zap.Logger
	now      func() time.Time
}

func NewCheckoutService(store *repository.Store, tokens *TokenService, gateways map[payment.Route]gateway.Gateway, links Links, log *zap.Logger) *CheckoutService {
	return &CheckoutService{store: store, tokens: tokens, gateways: gateways, links: links, log: log, now: time.Now}
}

// Begin resolves a pay link to a hosted checkout page. It never fails: every
// problem becomes a redirect to the error page with a reason.
func (s *CheckoutService) Begin(ctx context.Context, tokenValue, routeTag string) Outcome {
	if tokenValue == "" {
		return s.fail(ReasonMissingToken)
	}
	var route payment.Route
	if routeTag != "" {
		r, err := payment.ParseRoute(routeTag)
		if err != nil {
			return s.fail(ReasonInvalidType)
		}
		route = r
	}

	token, err := s.tokens.Lookup(ctx, tokenValue)
	if err != nil {
		if !errors.Is(err, ErrTokenNotFound) {
			s.log.Error("token lookup failed", zap.Error(err))
			return s.fail(ReasonInternal)
		}
		return s.fail(ReasonTokenNotFound)
	}
	log := s.log.With(zap.Uint("application_id", token.ApplicationID), zap.String("payment_type", string(token.PaymentType)))

	app, err := s.store.GetApplication(ctx, token.ApplicationID)
	if err != nil {
		log.Error("application for token not loaded", zap.Error(err))
		if errors.Is(err, repository.ErrNotFound) {
			return s.fail(ReasonTokenNotFound)
		}
		return s.fail(ReasonInternal)
	}
	if app.PaymentStatus == payment.StatusPaid {
		return Outcome{RedirectURL: s.links.SuccessURL(StatusAlreadyPaid), AlreadyPaid: true}
	}

	if err := s.tokens.Check(token, route); err != nil {
		return s.fail(checkReason(err))
	}

	gw, ok := s.gateways[token.PaymentType]
	if !ok {
		log.Error("no gateway configured for payment type")
		return s.fail(ReasonGatewayFailure)
	}

	now := s.now()
	link, err := gw.CreatePaymentLink(ctx, gateway.LinkRequest{
		ApplicationID: app.ID,
		Route:         token.PaymentType,
		Amount:        token.PayableAmount,
		Currency:      token.Currency,
		Reference:     helpers.BuildPaymentReference(app.ID, now),
		Description:   fmt.Sprintf("Course fee for application #%d", app.ID),
		Customer: gateway.Customer{
			Name:  app.DisplayName(),
			Email: app.ContactEmail(),
			Phone: app.ContactPhone(),
		},
		CallbackURL: s.links.SuccessURL(""),
		FailureURL:  s.links.ErrorURL("Payment was not completed"),
		ExpireBy:    token.ExpiresAt,
	})
	if err != nil {
		log.Error("payment link creation failed", zap.String("gateway", gw.Name()), zap.Error(err))
		return s.fail(ReasonGatewayFailure)
	}

	if err := s.recordLink(ctx, app, token, link, now); err != nil {
		log.Error("payment link not recorded", zap.String("link_id", link.ID), zap.Error(err))
		return s.fail(ReasonInternal)
	}

	log.Info("payment link created", zap.String("gateway", gw.Name()), zap.String("link_id", link.ID))
	return Outcome{RedirectURL: link.URL, Link: link}
}

func (s *CheckoutService) recordLink(ctx context.Context, app *models.Application, token *models.PaymentToken, link *gateway.Link, at time.Time) error {
	return s.store.Transaction(ctx, func(tx *repository.Store) error {
		if err := tx.SaveLink(ctx, token.ID, link.ID, link.URL, at.UTC()); err != nil {
			return err
		}
		_, _, err := advanceStatus(ctx, tx, app.ID, payment.StatusLinkCreated)
		if errors.Is(err, payment.ErrInvalidTransition) {
			s.log.Warn("payment status not moved to link created", zap.Uint("application_id", app.ID), zap.Error(err))
			return nil
		}
		return err
	})
}

func (s *CheckoutService) fail(reason string) Outcome {
	return Outcome{RedirectURL: s.links.ErrorURL(reason), Reason: reason}
}

func checkReason(err error) string {
	switch {
	case errors.Is(err, ErrTokenExpired):
		return ReasonTokenExpired
	case errors.Is(err, ErrTokenUsed):
		return ReasonTokenUsed
	case errors.Is(err, ErrRouteMismatch):
		return ReasonRouteMismatch
	case errors.Is(err, ErrTokenRevoked):
		return ReasonTokenRevoked
	}
	return ReasonInternal
}
