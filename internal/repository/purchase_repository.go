package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"betips/internal/model"
)

// PurchaseRepository defines purchase persistence operations.
type PurchaseRepository interface {
	Create(ctx context.Context, purchase *model.Purchase) error
	Update(ctx context.Context, purchase *model.Purchase) error
	FindByPaymentID(ctx context.Context, paymentID string) (*model.Purchase, error)
	// FindPendingByUserAndTip returns the pending purchase for the pair, if any.
	FindPendingByUserAndTip(ctx context.Context, userID, tipID uuid.UUID) (*model.Purchase, error)
	// HasApproved reports whether an approved purchase links user and tip.
	HasApproved(ctx context.Context, userID, tipID uuid.UUID) (bool, error)
	// FindApprovedUserIDs returns the ids of users with an approved purchase
	// of the tip.
	FindApprovedUserIDs(ctx context.Context, tipID uuid.UUID) ([]uuid.UUID, error)
	// ListByTip lists all purchases of a tip with the purchasing user loaded.
	ListByTip(ctx context.Context, tipID uuid.UUID) ([]model.Purchase, error)
	// ListApprovedByUser lists a user's approved purchases with tips loaded.
	ListApprovedByUser(ctx context.Context, userID uuid.UUID) ([]model.Purchase, error)
}

type purchaseRepository struct {
	db *gorm.DB
}

// NewPurchaseRepository creates a new purchase repository.
func NewPurchaseRepository(db *gorm.DB) PurchaseRepository {
	return &purchaseRepository{db: db}
}

func (r *purchaseRepository) Create(ctx context.Context, purchase *model.Purchase) error {
	return r.db.WithContext(ctx).Create(purchase).Error
}

func (r *purchaseRepository) Update(ctx context.Context, purchase *model.Purchase) error {
	return r.db.WithContext(ctx).Save(purchase).Error
}

func (r *purchaseRepository) FindByPaymentID(ctx context.Context, paymentID string) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := r.db.WithContext(ctx).Where("payment_id = ?", paymentID).First(&purchase).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) FindPendingByUserAndTip(ctx context.Context, userID, tipID uuid.UUID) (*model.Purchase, error) {
	var purchase model.Purchase
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND tip_id = ? AND status = ?", userID, tipID, model.PurchaseStatusPending).
		First(&purchase).Error; err != nil {
		return nil, err
	}
	return &purchase, nil
}

func (r *purchaseRepository) HasApproved(ctx context.Context, userID, tipID uuid.UUID) (bool, error) {
	var count int64
	if err := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Where("user_id = ? AND tip_id = ? AND status = ?", userID, tipID, model.PurchaseStatusApproved).
		Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *purchaseRepository) FindApprovedUserIDs(ctx context.Context, tipID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if err := r.db.WithContext(ctx).Model(&model.Purchase{}).
		Where("tip_id = ? AND status = ?", tipID, model.PurchaseStatusApproved).
		Distinct().
		Pluck("user_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

func (r *purchaseRepository) ListByTip(ctx context.Context, tipID uuid.UUID) ([]model.Purchase, error) {
	var purchases []model.Purchase
	if err := r.db.WithContext(ctx).
		Preload("User").
		Where("tip_id = ?", tipID).
		Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}

func (r *purchaseRepository) ListApprovedByUser(ctx context.Context, userID uuid.UUID) ([]model.Purchase, error) {
	var purchases []model.Purchase
	if err := r.db.WithContext(ctx).
		Preload("Tip").
		Where("user_id = ? AND status = ?", userID, model.PurchaseStatusApproved).
		Find(&purchases).Error; err != nil {
		return nil, err
	}
	return purchases, nil
}
