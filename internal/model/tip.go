package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TipStatus reflects the real-world outcome of the tipped game.
type TipStatus string

const (
	TipStatusPending TipStatus = "pending"
	TipStatusGreen   TipStatus = "green"
	TipStatusRed     TipStatus = "red"
)

// Valid reports whether the status is one of the known outcomes.
func (s TipStatus) Valid() bool {
	switch s {
	case TipStatusPending, TipStatusGreen, TipStatusRed:
		return true
	}
	return false
}

// Tip represents the daily betting tip sold to users.
// ImageTip holds the full-resolution image, ImageTipBlur the obscured
// version served to users without access.
type Tip struct {
	ID           uuid.UUID       `json:"id" gorm:"type:char(36);primaryKey"`
	Game         string          `json:"game" gorm:"size:255;not null"`
	Description  string          `json:"description" gorm:"type:text;not null"`
	Odd          decimal.Decimal `json:"odd" gorm:"type:decimal(10,2);not null"`
	Price        decimal.Decimal `json:"price" gorm:"type:decimal(20,2);not null"`
	GameDate     time.Time       `json:"gameDate" gorm:"not null;index"`
	ImageTip     string          `json:"imageTip" gorm:"size:512;not null"`
	ImageTipBlur string          `json:"imageTipBlur" gorm:"size:512;not null"`
	Status       TipStatus       `json:"status" gorm:"type:varchar(20);not null;default:'pending';index"`
	CreatedAt    time.Time       `json:"created_at"`
	UpdatedAt    time.Time       `json:"updated_at"`

	// Relations
	Purchases []Purchase `json:"purchases,omitempty" gorm:"foreignKey:TipID"`
	FreeTips  []FreeTip  `json:"free_tips,omitempty" gorm:"foreignKey:TipID"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Tip) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
