package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "betips/internal/errors"
	"betips/internal/model"
	"betips/internal/repository"
)

// Entitlement is the outcome of resolving a user's access to a tip. ImageURL
// carries the full-resolution image when unlocked, the blurred one otherwise.
type Entitlement struct {
	TipID    uuid.UUID `json:"id"`
	Unlocked bool      `json:"unlocked"`
	ImageURL string    `json:"image"`
	GameDate time.Time `json:"dateGame"`
}

// EntitlementService decides whether a user may see a tip's full content.
// A user is entitled iff an approved purchase or a free tip links them to
// the tip.
type EntitlementService interface {
	Resolve(ctx context.Context, userID *uuid.UUID, tipID uuid.UUID) (*Entitlement, error)
	Grant(ctx context.Context, userID, tipID uuid.UUID) (*model.FreeTip, error)
	EntitledUserIDs(ctx context.Context, tipID uuid.UUID) ([]uuid.UUID, error)
}

type entitlementService struct {
	tipRepo      repository.TipRepository
	purchaseRepo repository.PurchaseRepository
	freeTipRepo  repository.FreeTipRepository
}

// NewEntitlementService creates a new entitlement service.
func NewEntitlementService(
	tipRepo repository.TipRepository,
	purchaseRepo repository.PurchaseRepository,
	freeTipRepo repository.FreeTipRepository,
) EntitlementService {
	return &entitlementService{
		tipRepo:      tipRepo,
		purchaseRepo: purchaseRepo,
		freeTipRepo:  freeTipRepo,
	}
}

// Resolve returns the entitlement for the user and tip. A nil userID always
// resolves locked. Resolve has no side effects.
func (s *entitlementService) Resolve(ctx context.Context, userID *uuid.UUID, tipID uuid.UUID) (*Entitlement, error) {
	tip, err := s.tipRepo.FindByID(ctx, tipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTipNotFound
		}
		return nil, fmt.Errorf("find tip: %w", err)
	}

	entitlement := &Entitlement{
		TipID:    tip.ID,
		ImageURL: tip.ImageTipBlur,
		GameDate: tip.GameDate,
	}
	if userID == nil {
		return entitlement, nil
	}

	purchased, err := s.purchaseRepo.HasApproved(ctx, *userID, tipID)
	if err != nil {
		return nil, fmt.Errorf("check purchases: %w", err)
	}
	if !purchased {
		free, err := s.freeTipRepo.Exists(ctx, *userID, tipID)
		if err != nil {
			return nil, fmt.Errorf("check free tips: %w", err)
		}
		if !free {
			return entitlement, nil
		}
	}

	entitlement.Unlocked = true
	entitlement.ImageURL = tip.ImageTip
	return entitlement, nil
}

// Grant creates a free tip for the user. Granting the same (user, tip) pair
// twice is rejected; the unique index backs the check under concurrency.
func (s *entitlementService) Grant(ctx context.Context, userID, tipID uuid.UUID) (*model.FreeTip, error) {
	exists, err := s.freeTipRepo.Exists(ctx, userID, tipID)
	if err != nil {
		return nil, fmt.Errorf("check free tip: %w", err)
	}
	if exists {
		return nil, apperrors.ErrFreeTipExists
	}

	freeTip := &model.FreeTip{UserID: userID, TipID: tipID}
	if err := s.freeTipRepo.Create(ctx, freeTip); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, apperrors.ErrFreeTipExists
		}
		return nil, fmt.Errorf("create free tip: %w", err)
	}
	return freeTip, nil
}

// EntitledUserIDs returns the distinct users with access to the tip, the
// union of approved purchasers and free tip recipients.
func (s *entitlementService) EntitledUserIDs(ctx context.Context, tipID uuid.UUID) ([]uuid.UUID, error) {
	purchasers, err := s.purchaseRepo.FindApprovedUserIDs(ctx, tipID)
	if err != nil {
		return nil, fmt.Errorf("find approved purchasers: %w", err)
	}
	recipients, err := s.freeTipRepo.FindRecipientUserIDs(ctx, tipID)
	if err != nil {
		return nil, fmt.Errorf("find free tip recipients: %w", err)
	}

	seen := make(map[uuid.UUID]struct{}, len(purchasers)+len(recipients))
	ids := make([]uuid.UUID, 0, len(purchasers)+len(recipients))
	for _, id := range append(purchasers, recipients...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		ids = append(ids, id)
	}
	return ids, nil
}
