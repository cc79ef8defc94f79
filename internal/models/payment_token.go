package models

import (
	"time"

	"github.com/farellandr/admitpay/internal/payment"
	"github.com/shopspring/decimal"
)

type PaymentToken struct {
	ID            uint            `gorm:"primaryKey" json:"-"`
	Token         string          `gorm:"type:varchar(64);not null;uniqueIndex" json:"token"`
	ApplicationID uint            `gorm:"not null;index" json:"application_id"`
	PaymentType   payment.Route   `gorm:"type:varchar(16);not null" json:"payment_type"`
	PayableAmount decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"payable_amount"`
	Currency      string          `gorm:"type:varchar(8);not null;default:'INR'" json:"currency"`
	GeneratedAt   time.Time       `gorm:"not null" json:"generated_at"`
	ExpiresAt     time.Time       `gorm:"not null" json:"expires_at"`
	TokenUsed     bool            `gorm:"not null;default:false" json:"token_used"`
	UsedAt        *time.Time      `json:"used_at,omitempty"`
	RevokedAt     *time.Time      `gorm:"index" json:"revoked_at,omitempty"`
	LinkID        string          `gorm:"type:varchar(64);index" json:"payment_link_id,omitempty"`
	LinkURL       string          `json:"payment_link_url,omitempty"`
	LinkCreatedAt *time.Time      `json:"payment_link_created_at,omitempty"`
	LinkCount     int             `gorm:"not null;default:0" json:"payment_link_count"`
	CreatedAt     time.Time       `json:"-"`
	UpdatedAt     time.Time       `json:"-"`
}

func (t *PaymentToken) Expired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

// Revoked reports whether a later decision superseded the token.
func (t *PaymentToken) Revoked() bool {
	return t.RevokedAt != nil
}
