package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// PurchaseStatus represents the status of a purchase attempt.
// A purchase starts pending and flips to approved exactly once when the
// gateway confirms the payment. Rejected or expired attempts stay pending.
type PurchaseStatus string

const (
	PurchaseStatusPending  PurchaseStatus = "pending"
	PurchaseStatusApproved PurchaseStatus = "approved"
)

// Purchase links a user to a tip through a gateway payment.
type Purchase struct {
	ID        uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID       `json:"user_id" gorm:"type:char(36);not null;index"`
	TipID     uuid.UUID       `json:"tip_id" gorm:"type:char(36);not null;index"`
	Amount    decimal.Decimal `json:"amount" gorm:"type:decimal(20,2);not null"`
	Status    PurchaseStatus  `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	PaymentID string          `json:"payment_id" gorm:"size:64;index"` // Gateway's external payment id
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
	Tip  Tip  `json:"-" gorm:"foreignKey:TipID"`
}

// BeforeCreate sets UUID before creating the record.
func (p *Purchase) BeforeCreate(tx *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
