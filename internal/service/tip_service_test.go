package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"betips/internal/cache"
	apperrors "betips/internal/errors"
	"betips/internal/model"
)

func validTipInput() CreateTipInput {
	return CreateTipInput{
		Game:         "Flamengo x Palmeiras",
		Description:  "Ambas marcam",
		Odd:          "1.85",
		Price:        "19.90",
		GameDate:     time.Now().Add(6 * time.Hour).Format(time.RFC3339),
		ImageTip:     "https://cdn.example.com/tip.png",
		ImageTipBlur: "https://cdn.example.com/tip-blur.png",
	}
}

func TestTipService_Create_Validation(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*CreateTipInput)
	}{
		{"missing game", func(in *CreateTipInput) { in.Game = "" }},
		{"missing description", func(in *CreateTipInput) { in.Description = "" }},
		{"missing image", func(in *CreateTipInput) { in.ImageTip = "" }},
		{"non numeric odd", func(in *CreateTipInput) { in.Odd = "abc" }},
		{"non numeric price", func(in *CreateTipInput) { in.Price = "free" }},
		{"malformed date", func(in *CreateTipInput) { in.GameDate = "tomorrow" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tipRepo := new(MockTipRepository)
			svc := NewTipService(tipRepo, new(MockFreeTipRepository), nil, (*cache.Client)(nil))

			input := validTipInput()
			tt.mutate(&input)

			tip, err := svc.Create(context.Background(), input, false)

			assert.ErrorIs(t, err, apperrors.ErrValidation)
			assert.Nil(t, tip)
			tipRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestTipService_Create(t *testing.T) {
	t.Run("persists pending tip", func(t *testing.T) {
		tipRepo := new(MockTipRepository)
		tipRepo.On("Create", mock.Anything, mock.MatchedBy(func(tip *model.Tip) bool {
			return tip.Game == "Flamengo x Palmeiras" &&
				tip.Status == model.TipStatusPending &&
				tip.Odd.Equal(decimal.RequireFromString("1.85")) &&
				tip.Price.Equal(decimal.RequireFromString("19.90"))
		})).Return(nil)

		svc := NewTipService(tipRepo, new(MockFreeTipRepository), nil, (*cache.Client)(nil))
		tip, err := svc.Create(context.Background(), validTipInput(), false)

		assert.NoError(t, err)
		assert.Equal(t, model.TipStatusPending, tip.Status)
		tipRepo.AssertExpectations(t)
	})

	t.Run("cascade grants access to last red tip audience", func(t *testing.T) {
		lastRedID := uuid.New()
		userA := uuid.New()
		userB := uuid.New()

		tipRepo := new(MockTipRepository)
		tipRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		tipRepo.On("FindLatestByStatus", mock.Anything, model.TipStatusRed).
			Return(&model.Tip{ID: lastRedID, Status: model.TipStatusRed}, nil)

		purchaseRepo := new(MockPurchaseRepository)
		purchaseRepo.On("FindApprovedUserIDs", mock.Anything, lastRedID).Return([]uuid.UUID{userA}, nil)
		freeTipRepo := new(MockFreeTipRepository)
		freeTipRepo.On("FindRecipientUserIDs", mock.Anything, lastRedID).Return([]uuid.UUID{userB}, nil)

		// userA already holds a free tip on the new one, userB does not.
		freeTipRepo.On("Exists", mock.Anything, userA, mock.Anything).Return(true, nil)
		freeTipRepo.On("Exists", mock.Anything, userB, mock.Anything).Return(false, nil)
		freeTipRepo.On("Create", mock.Anything, mock.MatchedBy(func(f *model.FreeTip) bool {
			return f.UserID == userB
		})).Return(nil)

		entitlements := NewEntitlementService(tipRepo, purchaseRepo, freeTipRepo)
		svc := NewTipService(tipRepo, freeTipRepo, entitlements, (*cache.Client)(nil))

		tip, err := svc.Create(context.Background(), validTipInput(), true)

		assert.NoError(t, err)
		assert.NotNil(t, tip)
		freeTipRepo.AssertExpectations(t)
		freeTipRepo.AssertNumberOfCalls(t, "Create", 1)
	})

	t.Run("cascade is a no-op without a red tip", func(t *testing.T) {
		tipRepo := new(MockTipRepository)
		tipRepo.On("Create", mock.Anything, mock.Anything).Return(nil)
		tipRepo.On("FindLatestByStatus", mock.Anything, model.TipStatusRed).
			Return(nil, gorm.ErrRecordNotFound)

		freeTipRepo := new(MockFreeTipRepository)
		entitlements := NewEntitlementService(tipRepo, new(MockPurchaseRepository), freeTipRepo)
		svc := NewTipService(tipRepo, freeTipRepo, entitlements, (*cache.Client)(nil))

		_, err := svc.Create(context.Background(), validTipInput(), true)

		assert.NoError(t, err)
		freeTipRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})
}

func TestTipService_SetStatus(t *testing.T) {
	tipID := uuid.New()

	t.Run("rejects unknown status", func(t *testing.T) {
		tipRepo := new(MockTipRepository)
		svc := NewTipService(tipRepo, new(MockFreeTipRepository), nil, (*cache.Client)(nil))

		tip, err := svc.SetStatus(context.Background(), tipID, model.TipStatus("won"))

		assert.ErrorIs(t, err, apperrors.ErrInvalidStatus)
		assert.Nil(t, tip)
		tipRepo.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("tip not found", func(t *testing.T) {
		tipRepo := new(MockTipRepository)
		tipRepo.On("FindByID", mock.Anything, tipID).Return(nil, gorm.ErrRecordNotFound)
		svc := NewTipService(tipRepo, new(MockFreeTipRepository), nil, (*cache.Client)(nil))

		_, err := svc.SetStatus(context.Background(), tipID, model.TipStatusGreen)

		assert.ErrorIs(t, err, apperrors.ErrTipNotFound)
	})

	t.Run("updates status", func(t *testing.T) {
		tipRepo := new(MockTipRepository)
		tipRepo.On("FindByID", mock.Anything, tipID).
			Return(&model.Tip{ID: tipID, Status: model.TipStatusPending}, nil)
		tipRepo.On("Update", mock.Anything, mock.MatchedBy(func(tip *model.Tip) bool {
			return tip.ID == tipID && tip.Status == model.TipStatusGreen
		})).Return(nil)
		svc := NewTipService(tipRepo, new(MockFreeTipRepository), nil, (*cache.Client)(nil))

		tip, err := svc.SetStatus(context.Background(), tipID, model.TipStatusGreen)

		assert.NoError(t, err)
		assert.Equal(t, model.TipStatusGreen, tip.Status)
		tipRepo.AssertExpectations(t)
	})
}

func TestTipService_Current(t *testing.T) {
	t.Run("returns nil when nothing upcoming", func(t *testing.T) {
		tipRepo := new(MockTipRepository)
		tipRepo.On("FindCurrent", mock.Anything, mock.Anything).Return(nil, gorm.ErrRecordNotFound)
		svc := NewTipService(tipRepo, new(MockFreeTipRepository), nil, (*cache.Client)(nil))

		tip, err := svc.Current(context.Background())

		assert.NoError(t, err)
		assert.Nil(t, tip)
	})

	t.Run("returns nil for a tip past the window", func(t *testing.T) {
		stale := &model.Tip{ID: uuid.New(), GameDate: time.Now().Add(-4 * time.Hour)}
		tipRepo := new(MockTipRepository)
		tipRepo.On("FindCurrent", mock.Anything, mock.Anything).Return(stale, nil)
		svc := NewTipService(tipRepo, new(MockFreeTipRepository), nil, (*cache.Client)(nil))

		tip, err := svc.Current(context.Background())

		assert.NoError(t, err)
		assert.Nil(t, tip)
	})

	t.Run("returns a tip still inside the window", func(t *testing.T) {
		recent := &model.Tip{ID: uuid.New(), GameDate: time.Now().Add(-2 * time.Hour)}
		tipRepo := new(MockTipRepository)
		tipRepo.On("FindCurrent", mock.Anything, mock.Anything).Return(recent, nil)
		svc := NewTipService(tipRepo, new(MockFreeTipRepository), nil, (*cache.Client)(nil))

		tip, err := svc.Current(context.Background())

		assert.NoError(t, err)
		assert.Equal(t, recent.ID, tip.ID)
	})
}

func TestTipService_History(t *testing.T) {
	tipRepo := new(MockTipRepository)
	settled := []model.Tip{
		{ID: uuid.New(), Game: "Jogo 1", Status: model.TipStatusGreen},
		{ID: uuid.New(), Game: "Jogo 2", Status: model.TipStatusRed},
	}
	tipRepo.On("ListByStatuses", mock.Anything, []model.TipStatus{model.TipStatusGreen, model.TipStatusRed}).
		Return(settled, nil)
	svc := NewTipService(tipRepo, new(MockFreeTipRepository), nil, (*cache.Client)(nil))

	entries, err := svc.History(context.Background())

	assert.NoError(t, err)
	assert.Len(t, entries, 2)
	assert.Equal(t, model.TipStatusGreen, entries[0].Status)
	assert.Equal(t, model.TipStatusRed, entries[1].Status)
}
