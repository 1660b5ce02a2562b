package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"betips/internal/model"
)

// TipRepository defines tip persistence operations.
type TipRepository interface {
	Create(ctx context.Context, tip *model.Tip) error
	Update(ctx context.Context, tip *model.Tip) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Tip, error)
	// FindCurrent returns the tip with the latest game date that is still at
	// or after the cutoff, or gorm.ErrRecordNotFound.
	FindCurrent(ctx context.Context, cutoff time.Time) (*model.Tip, error)
	// FindLatestByStatus returns the most recent tip in the given status.
	FindLatestByStatus(ctx context.Context, status model.TipStatus) (*model.Tip, error)
	// ListByStatuses lists tips in any of the given statuses, newest first.
	ListByStatuses(ctx context.Context, statuses []model.TipStatus) ([]model.Tip, error)
	// ListAll lists every tip, newest first.
	ListAll(ctx context.Context) ([]model.Tip, error)
	// ListForUser lists tips the user purchased (approved) or received free,
	// newest first.
	ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Tip, error)
}

type tipRepository struct {
	db *gorm.DB
}

// NewTipRepository creates a new tip repository.
func NewTipRepository(db *gorm.DB) TipRepository {
	return &tipRepository{db: db}
}

func (r *tipRepository) Create(ctx context.Context, tip *model.Tip) error {
	return r.db.WithContext(ctx).Create(tip).Error
}

func (r *tipRepository) Update(ctx context.Context, tip *model.Tip) error {
	return r.db.WithContext(ctx).Save(tip).Error
}

func (r *tipRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Tip, error) {
	var tip model.Tip
	if err := r.db.WithContext(ctx).Where("id = ?", id).First(&tip).Error; err != nil {
		return nil, err
	}
	return &tip, nil
}

func (r *tipRepository) FindCurrent(ctx context.Context, cutoff time.Time) (*model.Tip, error) {
	var tip model.Tip
	if err := r.db.WithContext(ctx).
		Where("game_date >= ?", cutoff).
		Order("game_date DESC").
		First(&tip).Error; err != nil {
		return nil, err
	}
	return &tip, nil
}

func (r *tipRepository) FindLatestByStatus(ctx context.Context, status model.TipStatus) (*model.Tip, error) {
	var tip model.Tip
	if err := r.db.WithContext(ctx).
		Where("status = ?", status).
		Order("game_date DESC").
		First(&tip).Error; err != nil {
		return nil, err
	}
	return &tip, nil
}

func (r *tipRepository) ListByStatuses(ctx context.Context, statuses []model.TipStatus) ([]model.Tip, error) {
	var tips []model.Tip
	if err := r.db.WithContext(ctx).
		Where("status IN ?", statuses).
		Order("game_date DESC").
		Find(&tips).Error; err != nil {
		return nil, err
	}
	return tips, nil
}

func (r *tipRepository) ListAll(ctx context.Context) ([]model.Tip, error) {
	var tips []model.Tip
	if err := r.db.WithContext(ctx).Order("game_date DESC").Find(&tips).Error; err != nil {
		return nil, err
	}
	return tips, nil
}

func (r *tipRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Tip, error) {
	var tips []model.Tip
	if err := r.db.WithContext(ctx).
		Where(
			"id IN (?) OR id IN (?)",
			r.db.Model(&model.Purchase{}).Select("tip_id").
				Where("user_id = ? AND status = ?", userID, model.PurchaseStatusApproved),
			r.db.Model(&model.FreeTip{}).Select("tip_id").Where("user_id = ?", userID),
		).
		Order("game_date DESC").
		Find(&tips).Error; err != nil {
		return nil, err
	}
	return tips, nil
}
