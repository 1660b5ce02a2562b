package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"betips/internal/gateway"
	"betips/internal/model"
)

// MockUserRepository is a mock implementation of repository.UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) Update(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByResetToken(ctx context.Context, token string, now time.Time) (*model.User, error) {
	args := m.Called(ctx, token, now)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) ListByRole(ctx context.Context, role string) ([]model.User, error) {
	args := m.Called(ctx, role)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

// MockTipRepository is a mock implementation of repository.TipRepository.
type MockTipRepository struct {
	mock.Mock
}

func (m *MockTipRepository) Create(ctx context.Context, tip *model.Tip) error {
	args := m.Called(ctx, tip)
	return args.Error(0)
}

func (m *MockTipRepository) Update(ctx context.Context, tip *model.Tip) error {
	args := m.Called(ctx, tip)
	return args.Error(0)
}

func (m *MockTipRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Tip, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tip), args.Error(1)
}

func (m *MockTipRepository) FindCurrent(ctx context.Context, cutoff time.Time) (*model.Tip, error) {
	args := m.Called(ctx, cutoff)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tip), args.Error(1)
}

func (m *MockTipRepository) FindLatestByStatus(ctx context.Context, status model.TipStatus) (*model.Tip, error) {
	args := m.Called(ctx, status)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Tip), args.Error(1)
}

func (m *MockTipRepository) ListByStatuses(ctx context.Context, statuses []model.TipStatus) ([]model.Tip, error) {
	args := m.Called(ctx, statuses)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tip), args.Error(1)
}

func (m *MockTipRepository) ListAll(ctx context.Context) ([]model.Tip, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tip), args.Error(1)
}

func (m *MockTipRepository) ListForUser(ctx context.Context, userID uuid.UUID) ([]model.Tip, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Tip), args.Error(1)
}

// MockPurchaseRepository is a mock implementation of repository.PurchaseRepository.
type MockPurchaseRepository struct {
	mock.Mock
}

func (m *MockPurchaseRepository) Create(ctx context.Context, purchase *model.Purchase) error {
	args := m.Called(ctx, purchase)
	return args.Error(0)
}

func (m *MockPurchaseRepository) Update(ctx context.Context, purchase *model.Purchase) error {
	args := m.Called(ctx, purchase)
	return args.Error(0)
}

func (m *MockPurchaseRepository) FindByPaymentID(ctx context.Context, paymentID string) (*model.Purchase, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) FindPendingByUserAndTip(ctx context.Context, userID, tipID uuid.UUID) (*model.Purchase, error) {
	args := m.Called(ctx, userID, tipID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) HasApproved(ctx context.Context, userID, tipID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, tipID)
	return args.Bool(0), args.Error(1)
}

func (m *MockPurchaseRepository) FindApprovedUserIDs(ctx context.Context, tipID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, tipID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockPurchaseRepository) ListByTip(ctx context.Context, tipID uuid.UUID) ([]model.Purchase, error) {
	args := m.Called(ctx, tipID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Purchase), args.Error(1)
}

func (m *MockPurchaseRepository) ListApprovedByUser(ctx context.Context, userID uuid.UUID) ([]model.Purchase, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.Purchase), args.Error(1)
}

// MockFreeTipRepository is a mock implementation of repository.FreeTipRepository.
type MockFreeTipRepository struct {
	mock.Mock
}

func (m *MockFreeTipRepository) Create(ctx context.Context, freeTip *model.FreeTip) error {
	args := m.Called(ctx, freeTip)
	return args.Error(0)
}

func (m *MockFreeTipRepository) Exists(ctx context.Context, userID, tipID uuid.UUID) (bool, error) {
	args := m.Called(ctx, userID, tipID)
	return args.Bool(0), args.Error(1)
}

func (m *MockFreeTipRepository) FindRecipientUserIDs(ctx context.Context, tipID uuid.UUID) ([]uuid.UUID, error) {
	args := m.Called(ctx, tipID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]uuid.UUID), args.Error(1)
}

func (m *MockFreeTipRepository) ListByTip(ctx context.Context, tipID uuid.UUID) ([]model.FreeTip, error) {
	args := m.Called(ctx, tipID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.FreeTip), args.Error(1)
}

func (m *MockFreeTipRepository) CountForPendingTips(ctx context.Context, userID uuid.UUID) (int64, error) {
	args := m.Called(ctx, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockGatewayClient is a mock implementation of gateway.Client.
type MockGatewayClient struct {
	mock.Mock
}

func (m *MockGatewayClient) CreatePixPayment(ctx context.Context, req gateway.CreatePaymentRequest) (*gateway.Payment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Payment), args.Error(1)
}

func (m *MockGatewayClient) CreateCardPayment(ctx context.Context, req gateway.CreatePaymentRequest) (*gateway.Payment, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Payment), args.Error(1)
}

func (m *MockGatewayClient) GetPayment(ctx context.Context, paymentID string) (*gateway.Payment, error) {
	args := m.Called(ctx, paymentID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*gateway.Payment), args.Error(1)
}

// MockTokenStore is a mock implementation of auth.TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) StoreRefreshToken(ctx context.Context, tokenID, userID, email string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, userID, email, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) GetRefreshToken(ctx context.Context, tokenID string) (string, string, error) {
	args := m.Called(ctx, tokenID)
	return args.String(0), args.String(1), args.Error(2)
}

func (m *MockTokenStore) DeleteRefreshToken(ctx context.Context, tokenID string) error {
	args := m.Called(ctx, tokenID)
	return args.Error(0)
}

// MockMailer is a mock implementation of mail.Mailer.
type MockMailer struct {
	mock.Mock
}

func (m *MockMailer) SendPasswordReset(toEmail, resetURL string) error {
	args := m.Called(toEmail, resetURL)
	return args.Error(0)
}
