package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"betips/internal/cache"
	apperrors "betips/internal/errors"
	"betips/internal/model"
	"betips/internal/repository"
)

const (
	// currentTipWindow keeps a tip listed as current until this long after
	// its game date, matching the product's fixed timezone offset.
	currentTipWindow = 3 * time.Hour

	currentTipCacheKey = "tip:current"
	currentTipCacheTTL = time.Minute
)

// CreateTipInput carries the admin form fields for a new tip. Odd, Price and
// GameDate arrive as strings and are validated here, before any persistence.
type CreateTipInput struct {
	Game         string
	Description  string
	Odd          string
	Price        string
	GameDate     string
	ImageTip     string
	ImageTipBlur string
}

// PublicTip is the unauthenticated projection of a tip.
type PublicTip struct {
	ID           uuid.UUID `json:"id"`
	ImageTipBlur string    `json:"imageTipBlur"`
	GameDate     time.Time `json:"gameDate"`
}

// HistoryEntry is a settled tip as shown on the history page.
type HistoryEntry struct {
	ID          uuid.UUID       `json:"id"`
	Game        string          `json:"game"`
	Description string          `json:"description"`
	Odd         decimal.Decimal `json:"odd"`
	GameDate    time.Time       `json:"gameDate"`
	Status      model.TipStatus `json:"status"`
}

// TipService handles the tip lifecycle.
type TipService interface {
	Create(ctx context.Context, input CreateTipInput, giveAccessToLastBuyers bool) (*model.Tip, error)
	SetStatus(ctx context.Context, tipID uuid.UUID, status model.TipStatus) (*model.Tip, error)
	Current(ctx context.Context) (*model.Tip, error)
	History(ctx context.Context) ([]HistoryEntry, error)
	PublicList(ctx context.Context) ([]PublicTip, error)
	ListAll(ctx context.Context) ([]model.Tip, error)
	ForUser(ctx context.Context, userID uuid.UUID) ([]model.Tip, error)
}

type tipService struct {
	tipRepo      repository.TipRepository
	freeTipRepo  repository.FreeTipRepository
	entitlements EntitlementService
	cache        *cache.Client
}

// NewTipService creates a new tip service.
func NewTipService(
	tipRepo repository.TipRepository,
	freeTipRepo repository.FreeTipRepository,
	entitlements EntitlementService,
	cache *cache.Client,
) TipService {
	return &tipService{
		tipRepo:      tipRepo,
		freeTipRepo:  freeTipRepo,
		entitlements: entitlements,
		cache:        cache,
	}
}

// Create validates and persists a new pending tip. With
// giveAccessToLastBuyers set, everyone entitled to the most recent red tip
// receives a free tip on the new one, skipping users who already have it.
func (s *tipService) Create(ctx context.Context, input CreateTipInput, giveAccessToLastBuyers bool) (*model.Tip, error) {
	tip, err := buildTip(input)
	if err != nil {
		return nil, err
	}

	if err := s.tipRepo.Create(ctx, tip); err != nil {
		return nil, fmt.Errorf("create tip: %w", err)
	}
	_ = s.cache.Delete(ctx, currentTipCacheKey)

	if giveAccessToLastBuyers {
		if err := s.grantToLastRedBuyers(ctx, tip.ID); err != nil {
			return nil, err
		}
	}
	return tip, nil
}

func buildTip(input CreateTipInput) (*model.Tip, error) {
	if input.Game == "" || input.Description == "" || input.Odd == "" ||
		input.Price == "" || input.GameDate == "" || input.ImageTip == "" ||
		input.ImageTipBlur == "" {
		return nil, apperrors.ErrValidation
	}

	odd, err := decimal.NewFromString(input.Odd)
	if err != nil {
		return nil, fmt.Errorf("%w: odd inválido", apperrors.ErrValidation)
	}
	price, err := decimal.NewFromString(input.Price)
	if err != nil {
		return nil, fmt.Errorf("%w: preço inválido", apperrors.ErrValidation)
	}
	gameDate, err := time.Parse(time.RFC3339, input.GameDate)
	if err != nil {
		return nil, fmt.Errorf("%w: data inválida", apperrors.ErrValidation)
	}

	return &model.Tip{
		Game:         input.Game,
		Description:  input.Description,
		Odd:          odd,
		Price:        price,
		GameDate:     gameDate,
		ImageTip:     input.ImageTip,
		ImageTipBlur: input.ImageTipBlur,
		Status:       model.TipStatusPending,
	}, nil
}

func (s *tipService) grantToLastRedBuyers(ctx context.Context, newTipID uuid.UUID) error {
	lastRed, err := s.tipRepo.FindLatestByStatus(ctx, model.TipStatusRed)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil
		}
		return fmt.Errorf("find last red tip: %w", err)
	}

	userIDs, err := s.entitlements.EntitledUserIDs(ctx, lastRed.ID)
	if err != nil {
		return err
	}
	for _, userID := range userIDs {
		if _, err := s.entitlements.Grant(ctx, userID, newTipID); err != nil {
			if errors.Is(err, apperrors.ErrFreeTipExists) {
				continue
			}
			return err
		}
	}
	return nil
}

// SetStatus transitions a tip among pending, green and red.
func (s *tipService) SetStatus(ctx context.Context, tipID uuid.UUID, status model.TipStatus) (*model.Tip, error) {
	if !status.Valid() {
		return nil, apperrors.ErrInvalidStatus
	}

	tip, err := s.tipRepo.FindByID(ctx, tipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrTipNotFound
		}
		return nil, fmt.Errorf("find tip: %w", err)
	}

	tip.Status = status
	if err := s.tipRepo.Update(ctx, tip); err != nil {
		return nil, fmt.Errorf("update tip: %w", err)
	}
	_ = s.cache.Delete(ctx, currentTipCacheKey)
	return tip, nil
}

// Current returns the upcoming tip, or nil when no tip qualifies. A tip
// stays current until currentTipWindow after its game date.
func (s *tipService) Current(ctx context.Context) (*model.Tip, error) {
	cutoff := time.Now().Add(-currentTipWindow)

	if data, _ := s.cache.Get(ctx, currentTipCacheKey); data != nil {
		var cached model.Tip
		if err := json.Unmarshal(data, &cached); err == nil && !cached.GameDate.Before(cutoff) {
			return &cached, nil
		}
	}

	tip, err := s.tipRepo.FindCurrent(ctx, cutoff)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			// Normal empty state, not an error.
			return nil, nil
		}
		return nil, fmt.Errorf("find current tip: %w", err)
	}
	if tip.GameDate.Before(cutoff) {
		return nil, nil
	}

	if payload, err := json.Marshal(tip); err == nil {
		_ = s.cache.Set(ctx, currentTipCacheKey, payload, currentTipCacheTTL)
	}
	return tip, nil
}

// History lists settled tips, newest first.
func (s *tipService) History(ctx context.Context) ([]HistoryEntry, error) {
	tips, err := s.tipRepo.ListByStatuses(ctx, []model.TipStatus{model.TipStatusGreen, model.TipStatusRed})
	if err != nil {
		return nil, fmt.Errorf("list history: %w", err)
	}

	entries := make([]HistoryEntry, 0, len(tips))
	for _, tip := range tips {
		entries = append(entries, HistoryEntry{
			ID:          tip.ID,
			Game:        tip.Game,
			Description: tip.Description,
			Odd:         tip.Odd,
			GameDate:    tip.GameDate,
			Status:      tip.Status,
		})
	}
	return entries, nil
}

// PublicList lists all tips in their blurred projection.
func (s *tipService) PublicList(ctx context.Context) ([]PublicTip, error) {
	tips, err := s.tipRepo.ListAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("list tips: %w", err)
	}

	public := make([]PublicTip, 0, len(tips))
	for _, tip := range tips {
		public = append(public, PublicTip{
			ID:           tip.ID,
			ImageTipBlur: tip.ImageTipBlur,
			GameDate:     tip.GameDate,
		})
	}
	return public, nil
}

// ListAll lists every tip for the admin panel, newest first.
func (s *tipService) ListAll(ctx context.Context) ([]model.Tip, error) {
	return s.tipRepo.ListAll(ctx)
}

// ForUser lists the tips the user has unlocked, newest first.
func (s *tipService) ForUser(ctx context.Context, userID uuid.UUID) ([]model.Tip, error) {
	return s.tipRepo.ListForUser(ctx, userID)
}
