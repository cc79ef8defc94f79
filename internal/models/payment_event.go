package models

import "time"

// PaymentEvent is one entry of an application's append-only payment history.
type PaymentEvent struct {
	ID             uint      `gorm:"primaryKey" json:"-"`
	ApplicationID  uint      `gorm:"not null;index" json:"application_id"`
	GatewayEventID string    `gorm:"type:varchar(191);not null;uniqueIndex" json:"gateway_event_id"`
	Provider       string    `gorm:"type:varchar(20);not null" json:"provider"`
	Event          string    `gorm:"type:varchar(100);not null" json:"event"`
	PaymentID      string    `gorm:"type:varchar(64)" json:"payment_id,omitempty"`
	LinkID         string    `gorm:"type:varchar(64)" json:"payment_link_id,omitempty"`
	Amount         int64     `json:"amount"`
	Currency       string    `gorm:"type:varchar(8)" json:"currency,omitempty"`
	Method         string    `gorm:"type:varchar(32)" json:"method,omitempty"`
	Status         string    `gorm:"type:varchar(32)" json:"status,omitempty"`
	ReceivedAt     time.Time `gorm:"not null;index" json:"received_at"`
	WebhookPayload string    `gorm:"type:text" json:"webhook_payload,omitempty"`
}

// UnmatchedWebhook keeps gateway events that could not be tied to an application.
type UnmatchedWebhook struct {
	ID             string    `gorm:"type:varchar(36);primaryKey" json:"id"`
	Provider       string    `gorm:"type:varchar(20);not null" json:"provider"`
	GatewayEventID string    `gorm:"type:varchar(191);index" json:"gateway_event_id"`
	Event          string    `gorm:"type:varchar(100)" json:"event"`
	Reason         string    `json:"reason"`
	Payload        string    `gorm:"type:text" json:"payload"`
	ReceivedAt     time.Time `gorm:"not null;index" json:"received_at"`
}
