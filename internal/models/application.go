package models

import (
	"time"

	"github.com/farellandr/admitpay/internal/payment"
)

const (
	ApprovalPending  = "Pending"
	ApprovalApproved = "Approved"
	ApprovalRejected = "Rejected"
)

// JSONMap is a free-form sub-document persisted as a JSON column.
type JSONMap map[string]interface{}

type Application struct {
	ID       uint   `gorm:"primaryKey" json:"id"`
	Email    string `gorm:"not null;index" json:"email"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`

	Basic              JSONMap `gorm:"serializer:json" json:"basic,omitempty"`
	Contact            JSONMap `gorm:"serializer:json" json:"contact,omitempty"`
	Account            JSONMap `gorm:"serializer:json" json:"account,omitempty"`
	AdminFilled        JSONMap `gorm:"serializer:json" json:"admin_filled,omitempty"`
	FinalFeePayment    JSONMap `gorm:"serializer:json" json:"final_fee_payment,omitempty"`
	ApplicationDetails JSONMap `gorm:"serializer:json" json:"application_details,omitempty"`

	ApprovalStatus string     `gorm:"not null;default:'Pending';index" json:"approval_status"`
	ApprovedBy     string     `json:"approved_by,omitempty"`
	ApprovedAt     *time.Time `json:"approved_at,omitempty"`

	PaymentStatus payment.Status `gorm:"type:varchar(32);index" json:"payment_status,omitempty"`
	Version       int            `gorm:"not null;default:1" json:"-"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// DisplayName falls back through the sub-documents the portal has used for the name.
func (a *Application) DisplayName() string {
	if a.FullName != "" {
		return a.FullName
	}
	for _, doc := range []JSONMap{a.Basic, a.Contact, a.Account} {
		for _, key := range []string{"full_name", "fullName", "name"} {
			if v, ok := doc[key].(string); ok && v != "" {
				return v
			}
		}
	}
	return "Applicant"
}

func (a *Application) ContactEmail() string {
	if a.Email != "" {
		return a.Email
	}
	for _, doc := range []JSONMap{a.Contact, a.Account, a.Basic} {
		if v, ok := doc["email"].(string); ok && v != "" {
			return v
		}
	}
	return ""
}

func (a *Application) ContactPhone() string {
	if a.Phone != "" {
		return a.Phone
	}
	for _, key := range []string{"phone", "mobile", "phone_number"} {
		if v, ok := a.Contact[key].(string); ok && v != "" {
			return v
		}
	}
	return ""
}
