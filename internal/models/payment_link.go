package models

import "time"

// PaymentLink is one hosted checkout page created for a token. A token may
// own several; each stays resolvable for webhook matching.
type PaymentLink struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	TokenID   uint      `gorm:"not null;index" json:"-"`
	LinkID    string    `gorm:"type:varchar(64);not null;uniqueIndex" json:"payment_link_id"`
	URL       string    `gorm:"not null" json:"payment_link_url"`
	CreatedAt time.Time `gorm:"not null" json:"created_at"`
}
