package services

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/farellandr/admitpay/internal/models"
	"github.com/farellandr/admitpay/internal/payment"
	"github.com/farellandr/admitpay/internal/repository"
	"github.com/shopspring/decimal"
)

const (
	DefaultTokenValidity = 7 * 24 * time.Hour
	tokenBytes           = 32
)

var (
	ErrTokenNotFound = errors.New("payment token not found")
	ErrTokenExpired  = errors.New("payment token expired")
	ErrTokenUsed     = errors.New("payment token already used")
	ErrRouteMismatch = errors.New("payment token issued for a different payment type")
	ErrTokenRevoked  = errors.New("payment token superseded by a later decision")
)

type TokenService struct {
	store    *repository.Store
	currency string
	now      func() time.Time
}

func NewTokenService(store *repository.Store, currency string) *TokenService {
	if currency == "" {
		currency = "INR"
	}
	return &TokenService{store: store, currency: currency, now: time.Now}
}

// Issue persists a fresh random token authorizing one payment of amount on route.
// A non-positive validity falls back to DefaultTokenValidity.
func (s *TokenService) Issue(ctx context.Context, applicationID uint, amount decimal.Decimal, route payment.Route, validity time.Duration) (*models.PaymentToken, error) {
	if validity <= 0 {
		validity = DefaultTokenValidity
	}
	value, err := generateToken()
	if err != nil {
		return nil, fmt.Errorf("generate token: %w", err)
	}

	now := s.now().UTC()
	token := &models.PaymentToken{
		Token:         value,
		ApplicationID: applicationID,
		PaymentType:   route,
		PayableAmount: amount,
		Currency:      s.currency,
		GeneratedAt:   now,
		ExpiresAt:     now.Add(validity),
	}
	if err := s.store.CreateToken(ctx, token); err != nil {
		return nil, fmt.Errorf("store %s token for application %d: %w", route, applicationID, err)
	}
	return token, nil
}

func (s *TokenService) Lookup(ctx context.Context, value string) (*models.PaymentToken, error) {
	if value == "" {
		return nil, ErrTokenNotFound
	}
	token, err := s.store.FindToken(ctx, value)
	if errors.Is(err, repository.ErrNotFound) {
		return nil, ErrTokenNotFound
	}
	return token, err
}

// Check applies the expiry, single-use, revocation and route rules, in that order.
func (s *TokenService) Check(token *models.PaymentToken, route payment.Route) error {
	switch {
	case token.Expired(s.now()):
		return ErrTokenExpired
	case token.TokenUsed:
		return ErrTokenUsed
	case token.Revoked():
		return ErrTokenRevoked
	case route != "" && token.PaymentType != route:
		return ErrRouteMismatch
	}
	return nil
}

func (s *TokenService) Validate(ctx context.Context, value string, route payment.Route) (*models.PaymentToken, error) {
	token, err := s.Lookup(ctx, value)
	if err != nil {
		return nil, err
	}
	if err := s.Check(token, route); err != nil {
		return nil, err
	}
	return token, nil
}

func generateToken() (string, error) {
	buf := make([]byte, tokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return hex.EncodeToString(buf), nil
}
