package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"betips/internal/model"
	"betips/internal/repository"
)

// UserOverview summarizes a user's activity for the admin panel.
type UserOverview struct {
	ID            uuid.UUID `json:"id"`
	Name          string    `json:"name"`
	Email         string    `json:"email"`
	TipsPurchased int       `json:"tipsPurchased"`
	TipsWithRed   int       `json:"tipsWithRed"`
	HasFreeTip    bool      `json:"hasFreeTip"`
}

// Audience member types shown on the admin tip detail.
const (
	AudienceTypeBuyer = "Comprador"
	AudienceTypeFree  = "Free"
)

// AudienceMember is a user linked to a tip, either buyer or free recipient.
type AudienceMember struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Email string    `json:"email"`
	Type  string    `json:"type"`
}

// UserService exposes the admin views over users.
type UserService interface {
	Overview(ctx context.Context) ([]UserOverview, error)
	TipAudience(ctx context.Context, tipID uuid.UUID) ([]AudienceMember, error)
}

type userService struct {
	userRepo     repository.UserRepository
	purchaseRepo repository.PurchaseRepository
	freeTipRepo  repository.FreeTipRepository
}

// NewUserService creates a new user service.
func NewUserService(
	userRepo repository.UserRepository,
	purchaseRepo repository.PurchaseRepository,
	freeTipRepo repository.FreeTipRepository,
) UserService {
	return &userService{
		userRepo:     userRepo,
		purchaseRepo: purchaseRepo,
		freeTipRepo:  freeTipRepo,
	}
}

// Overview lists every non-admin user with purchase counts, how many of
// their purchased tips went red, and whether a free tip on a pending tip is
// waiting for them.
func (s *userService) Overview(ctx context.Context) ([]UserOverview, error) {
	users, err := s.userRepo.ListByRole(ctx, model.RoleUser)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}

	overviews := make([]UserOverview, 0, len(users))
	for _, user := range users {
		purchases, err := s.purchaseRepo.ListApprovedByUser(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("list purchases for %s: %w", user.ID, err)
		}
		redCount := 0
		for _, purchase := range purchases {
			if purchase.Tip.Status == model.TipStatusRed {
				redCount++
			}
		}

		pendingFree, err := s.freeTipRepo.CountForPendingTips(ctx, user.ID)
		if err != nil {
			return nil, fmt.Errorf("count free tips for %s: %w", user.ID, err)
		}

		name := user.FullName
		if name == "" {
			name = "Sem nome"
		}
		overviews = append(overviews, UserOverview{
			ID:            user.ID,
			Name:          name,
			Email:         user.Email,
			TipsPurchased: len(purchases),
			TipsWithRed:   redCount,
			HasFreeTip:    pendingFree > 0,
		})
	}
	return overviews, nil
}

// TipAudience lists everyone linked to a tip, buyers first.
func (s *userService) TipAudience(ctx context.Context, tipID uuid.UUID) ([]AudienceMember, error) {
	purchases, err := s.purchaseRepo.ListByTip(ctx, tipID)
	if err != nil {
		return nil, fmt.Errorf("list purchases: %w", err)
	}
	freeTips, err := s.freeTipRepo.ListByTip(ctx, tipID)
	if err != nil {
		return nil, fmt.Errorf("list free tips: %w", err)
	}

	members := make([]AudienceMember, 0, len(purchases)+len(freeTips))
	for _, purchase := range purchases {
		members = append(members, AudienceMember{
			ID:    purchase.User.ID,
			Name:  purchase.User.FullName,
			Email: purchase.User.Email,
			Type:  AudienceTypeBuyer,
		})
	}
	for _, freeTip := range freeTips {
		members = append(members, AudienceMember{
			ID:    freeTip.User.ID,
			Name:  freeTip.User.FullName,
			Email: freeTip.User.Email,
			Type:  AudienceTypeFree,
		})
	}
	return members, nil
}
