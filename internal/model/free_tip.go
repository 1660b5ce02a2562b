package model

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// FreeTip grants a user access to a tip without a purchase, either by an
// explicit admin grant or by the cascade that runs when a tip goes red.
// A (user, tip) pair is granted at most once.
type FreeTip struct {
	ID        uuid.UUID `json:"id" gorm:"type:char(36);primaryKey"`
	UserID    uuid.UUID `json:"user_id" gorm:"type:char(36);not null;uniqueIndex:idx_free_tip_user_tip"`
	TipID     uuid.UUID `json:"tip_id" gorm:"type:char(36);not null;uniqueIndex:idx_free_tip_user_tip"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	User User `json:"-" gorm:"foreignKey:UserID"`
	Tip  Tip  `json:"-" gorm:"foreignKey:TipID"`
}

// BeforeCreate sets UUID before creating the record.
func (f *FreeTip) BeforeCreate(tx *gorm.DB) error {
	if f.ID == uuid.Nil {
		f.ID = uuid.New()
	}
	return nil
}
