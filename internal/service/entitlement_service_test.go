package service

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	apperrors "betips/internal/errors"
	"betips/internal/model"
)

func TestEntitlementService_Resolve(t *testing.T) {
	tipID := uuid.New()
	userID := uuid.New()
	gameDate := time.Now().Add(2 * time.Hour)
	tip := &model.Tip{
		ID:           tipID,
		ImageTip:     "https://cdn.example.com/tip.png",
		ImageTipBlur: "https://cdn.example.com/tip-blur.png",
		GameDate:     gameDate,
	}

	tests := []struct {
		name         string
		userID       *uuid.UUID
		setupMocks   func(tipRepo *MockTipRepository, purchaseRepo *MockPurchaseRepository, freeTipRepo *MockFreeTipRepository)
		wantUnlocked bool
		wantImage    string
		wantErr      error
	}{
		{
			name:   "anonymous user resolves locked",
			userID: nil,
			setupMocks: func(tipRepo *MockTipRepository, purchaseRepo *MockPurchaseRepository, freeTipRepo *MockFreeTipRepository) {
				tipRepo.On("FindByID", mock.Anything, tipID).Return(tip, nil)
			},
			wantUnlocked: false,
			wantImage:    "https://cdn.example.com/tip-blur.png",
		},
		{
			name:   "approved purchase unlocks",
			userID: &userID,
			setupMocks: func(tipRepo *MockTipRepository, purchaseRepo *MockPurchaseRepository, freeTipRepo *MockFreeTipRepository) {
				tipRepo.On("FindByID", mock.Anything, tipID).Return(tip, nil)
				purchaseRepo.On("HasApproved", mock.Anything, userID, tipID).Return(true, nil)
			},
			wantUnlocked: true,
			wantImage:    "https://cdn.example.com/tip.png",
		},
		{
			name:   "free tip unlocks",
			userID: &userID,
			setupMocks: func(tipRepo *MockTipRepository, purchaseRepo *MockPurchaseRepository, freeTipRepo *MockFreeTipRepository) {
				tipRepo.On("FindByID", mock.Anything, tipID).Return(tip, nil)
				purchaseRepo.On("HasApproved", mock.Anything, userID, tipID).Return(false, nil)
				freeTipRepo.On("Exists", mock.Anything, userID, tipID).Return(true, nil)
			},
			wantUnlocked: true,
			wantImage:    "https://cdn.example.com/tip.png",
		},
		{
			name:   "no purchase and no free tip stays locked",
			userID: &userID,
			setupMocks: func(tipRepo *MockTipRepository, purchaseRepo *MockPurchaseRepository, freeTipRepo *MockFreeTipRepository) {
				tipRepo.On("FindByID", mock.Anything, tipID).Return(tip, nil)
				purchaseRepo.On("HasApproved", mock.Anything, userID, tipID).Return(false, nil)
				freeTipRepo.On("Exists", mock.Anything, userID, tipID).Return(false, nil)
			},
			wantUnlocked: false,
			wantImage:    "https://cdn.example.com/tip-blur.png",
		},
		{
			name:   "tip not found",
			userID: &userID,
			setupMocks: func(tipRepo *MockTipRepository, purchaseRepo *MockPurchaseRepository, freeTipRepo *MockFreeTipRepository) {
				tipRepo.On("FindByID", mock.Anything, tipID).Return(nil, gorm.ErrRecordNotFound)
			},
			wantErr: apperrors.ErrTipNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tipRepo := new(MockTipRepository)
			purchaseRepo := new(MockPurchaseRepository)
			freeTipRepo := new(MockFreeTipRepository)
			tt.setupMocks(tipRepo, purchaseRepo, freeTipRepo)

			svc := NewEntitlementService(tipRepo, purchaseRepo, freeTipRepo)
			entitlement, err := svc.Resolve(context.Background(), tt.userID, tipID)

			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				assert.Nil(t, entitlement)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, tipID, entitlement.TipID)
				assert.Equal(t, tt.wantUnlocked, entitlement.Unlocked)
				assert.Equal(t, tt.wantImage, entitlement.ImageURL)
				assert.True(t, gameDate.Equal(entitlement.GameDate))
			}
			tipRepo.AssertExpectations(t)
			purchaseRepo.AssertExpectations(t)
			freeTipRepo.AssertExpectations(t)
		})
	}
}

func TestEntitlementService_Grant(t *testing.T) {
	userID := uuid.New()
	tipID := uuid.New()

	t.Run("creates free tip", func(t *testing.T) {
		freeTipRepo := new(MockFreeTipRepository)
		freeTipRepo.On("Exists", mock.Anything, userID, tipID).Return(false, nil)
		freeTipRepo.On("Create", mock.Anything, mock.MatchedBy(func(f *model.FreeTip) bool {
			return f.UserID == userID && f.TipID == tipID
		})).Return(nil)

		svc := NewEntitlementService(new(MockTipRepository), new(MockPurchaseRepository), freeTipRepo)
		freeTip, err := svc.Grant(context.Background(), userID, tipID)

		assert.NoError(t, err)
		assert.Equal(t, userID, freeTip.UserID)
		assert.Equal(t, tipID, freeTip.TipID)
		freeTipRepo.AssertExpectations(t)
	})

	t.Run("rejects duplicate grant", func(t *testing.T) {
		freeTipRepo := new(MockFreeTipRepository)
		freeTipRepo.On("Exists", mock.Anything, userID, tipID).Return(true, nil)

		svc := NewEntitlementService(new(MockTipRepository), new(MockPurchaseRepository), freeTipRepo)
		freeTip, err := svc.Grant(context.Background(), userID, tipID)

		assert.ErrorIs(t, err, apperrors.ErrFreeTipExists)
		assert.Nil(t, freeTip)
		freeTipRepo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
	})

	t.Run("maps duplicate key from concurrent grant", func(t *testing.T) {
		freeTipRepo := new(MockFreeTipRepository)
		freeTipRepo.On("Exists", mock.Anything, userID, tipID).Return(false, nil)
		freeTipRepo.On("Create", mock.Anything, mock.Anything).Return(gorm.ErrDuplicatedKey)

		svc := NewEntitlementService(new(MockTipRepository), new(MockPurchaseRepository), freeTipRepo)
		_, err := svc.Grant(context.Background(), userID, tipID)

		assert.ErrorIs(t, err, apperrors.ErrFreeTipExists)
	})
}

func TestEntitlementService_EntitledUserIDs(t *testing.T) {
	tipID := uuid.New()
	buyer := uuid.New()
	recipient := uuid.New()
	both := uuid.New()

	purchaseRepo := new(MockPurchaseRepository)
	purchaseRepo.On("FindApprovedUserIDs", mock.Anything, tipID).Return([]uuid.UUID{buyer, both}, nil)
	freeTipRepo := new(MockFreeTipRepository)
	freeTipRepo.On("FindRecipientUserIDs", mock.Anything, tipID).Return([]uuid.UUID{both, recipient}, nil)

	svc := NewEntitlementService(new(MockTipRepository), purchaseRepo, freeTipRepo)
	ids, err := svc.EntitledUserIDs(context.Background(), tipID)

	assert.NoError(t, err)
	assert.ElementsMatch(t, []uuid.UUID{buyer, both, recipient}, ids)
	assert.Len(t, ids, 3)
}
