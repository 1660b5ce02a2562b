package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"betips/internal/model"
)

// FreeTipRepository defines free tip persistence operations.
type FreeTipRepository interface {
	Create(ctx context.Context, freeTip *model.FreeTip) error
	// Exists reports whether a free tip already links user and tip.
	Exists(ctx context.Context, userID, tipID uuid.UUID) (bool, error)
	// FindRecipientUserIDs returns the ids of users holding a free tip on the tip.
	FindRecipientUserIDs(ctx context.Context, tipID uuid.UUID) ([]uuid.UUID, error)
	// ListByTip lists all free tips of a tip with the recipient user loaded.
	ListByTip(ctx context.Context, tipID uuid.UUID) ([]model.FreeTip, error)
	// CountForPendingTips counts a user's free tips whose tip is still pending.
	CountForPendingTips(ctx context.Context, userID uuid.UUID) (int64, error)
}

type freeTipRepository struct {
	db *gorm.DB
}

// NewFreeTipRepository creates a new free tip repository.
func NewFreeTipRepository(db *gorm.DB) FreeTipRepository {
	return &freeTipRepository{db: db}
}

func (r *freeTipRepository) Create(ctx context.Context, freeTip *model.FreeTip) error {
	return r.db.WithContext(ctx).Create(freeTip).Error
}

func (r *freeTipRepository) Exists(ctx context.Context, userID, tipID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.FreeTip{}).
		Where("user_id = ? AND tip_id = ?", userID, tipID).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *freeTipRepository) FindRecipientUserIDs(ctx context.Context, tipID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&model.FreeTip{}).
		Where("tip_id = ?", tipID).
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *freeTipRepository) ListByTip(ctx context.Context, tipID uuid.UUID) ([]model.FreeTip, error) {
	var freeTips []model.FreeTip
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("tip_id = ?", tipID).
		Find(&freeTips).Error; err != nil {
		return nil, err
	}
	return freeTips, nil
}

func (r *freeTipRepository) CountForPendingTips(ctx context.Context, userID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.FreeTip{}).
		Joins("JOIN tips ON tips.id = free_tips.tip_id").
		Where("free_tips.user_id = ? AND tips.status = ?", userID, model.TipStatusPending).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
