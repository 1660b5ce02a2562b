package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	apperrors "betips/internal/errors"
	"betips/internal/gateway"
	"betips/internal/model"
	"betips/internal/repository"
)

const (
	paymentDescription = "Compra de Tip"
	// defaultCPF is sent when the buyer did not inform a document, as the
	// gateway requires one on every payment.
	defaultCPF = "12345678909"
)

// PixPaymentResult carries the QR payload the buyer scans to pay.
type PixPaymentResult struct {
	QRCode       string `json:"qr_code"`
	QRCodeBase64 string `json:"qr_code_base64"`
	PaymentID    string `json:"payment_id"`
}

// CardPaymentResult carries the gateway's verdict on a card charge.
type CardPaymentResult struct {
	Status    string `json:"status"`
	PaymentID string `json:"payment_id"`
}

// PaymentService orchestrates purchase attempts against the payment gateway.
//
// State machine per attempt: a purchase row is created pending alongside the
// gateway payment and flips to approved exactly once when the gateway
// confirms. Rejected or expired payments leave the row pending.
type PaymentService interface {
	CreatePixPayment(ctx context.Context, userID, tipID uuid.UUID, cpf string) (*PixPaymentResult, error)
	CreateCardPayment(ctx context.Context, userID, tipID uuid.UUID, cardToken, paymentMethodID string) (*CardPaymentResult, error)
	CheckStatus(ctx context.Context, paymentID string) (string, error)
	PendingPix(ctx context.Context, userID, tipID uuid.UUID) (*PixPaymentResult, error)
}

type paymentService struct {
	userRepo     repository.UserRepository
	tipRepo      repository.TipRepository
	purchaseRepo repository.PurchaseRepository
	gateway      gateway.Client
}

// NewPaymentService creates a new payment service.
func NewPaymentService(
	userRepo repository.UserRepository,
	tipRepo repository.TipRepository,
	purchaseRepo repository.PurchaseRepository,
	gatewayClient gateway.Client,
) PaymentService {
	return &paymentService{
		userRepo:     userRepo,
		tipRepo:      tipRepo,
		purchaseRepo: purchaseRepo,
		gateway:      gatewayClient,
	}
}

// splitFullName derives the gateway payer names from the user's full name:
// first token and remainder, with fallbacks for empty or single-token names.
func splitFullName(fullName string) (firstName, lastName string) {
	parts := strings.Fields(fullName)
	if len(parts) == 0 {
		return "User", "Test"
	}
	if len(parts) == 1 {
		return parts[0], "Test"
	}
	return parts[0], strings.Join(parts[1:], " ")
}

func (s *paymentService) loadParticipants(ctx context.Context, userID, tipID uuid.UUID) (*model.User, *model.Tip, error) {
	user, err := s.userRepo.FindByID(ctx, userID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrUserNotFound
		}
		return nil, nil, fmt.Errorf("find user: %w", err)
	}

	tip, err := s.tipRepo.FindByID(ctx, tipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil, apperrors.ErrTipNotFound
		}
		return nil, nil, fmt.Errorf("find tip: %w", err)
	}

	approved, err := s.purchaseRepo.HasApproved(ctx, userID, tipID)
	if err != nil {
		return nil, nil, fmt.Errorf("check purchases: %w", err)
	}
	if approved {
		return nil, nil, apperrors.ErrAlreadyPurchased
	}
	return user, tip, nil
}

// CreatePixPayment creates a PIX payment at the gateway, records the pending
// purchase and returns the QR payload for the buyer.
func (s *paymentService) CreatePixPayment(ctx context.Context, userID, tipID uuid.UUID, cpf string) (*PixPaymentResult, error) {
	user, tip, err := s.loadParticipants(ctx, userID, tipID)
	if err != nil {
		return nil, err
	}

	firstName, lastName := splitFullName(user.FullName)
	if cpf == "" {
		cpf = defaultCPF
	}

	payment, err := s.gateway.CreatePixPayment(ctx, gateway.CreatePaymentRequest{
		Amount: tip.Price,
		Payer: gateway.Payer{
			Email:     user.Email,
			FirstName: firstName,
			LastName:  lastName,
			CPF:       cpf,
		},
		Description:       paymentDescription,
		ExternalReference: fmt.Sprintf("%s-%s", userID, tipID),
	})
	if err != nil {
		return nil, apperrors.ErrGateway
	}
	if payment.QRCode == "" || payment.QRCodeBase64 == "" {
		return nil, apperrors.ErrGateway
	}

	purchase := &model.Purchase{
		UserID:    userID,
		TipID:     tipID,
		Amount:    tip.Price,
		Status:    model.PurchaseStatusPending,
		PaymentID: payment.ID,
	}
	if err := s.purchaseRepo.Create(ctx, purchase); err != nil {
		return nil, fmt.Errorf("create purchase: %w", err)
	}

	return &PixPaymentResult{
		QRCode:       payment.QRCode,
		QRCodeBase64: payment.QRCodeBase64,
		PaymentID:    payment.ID,
	}, nil
}

// CreateCardPayment charges a tokenized card at the gateway and records the
// purchase with the status the gateway reported.
func (s *paymentService) CreateCardPayment(ctx context.Context, userID, tipID uuid.UUID, cardToken, paymentMethodID string) (*CardPaymentResult, error) {
	user, tip, err := s.loadParticipants(ctx, userID, tipID)
	if err != nil {
		return nil, err
	}

	firstName, lastName := splitFullName(user.FullName)

	payment, err := s.gateway.CreateCardPayment(ctx, gateway.CreatePaymentRequest{
		Amount: tip.Price,
		Payer: gateway.Payer{
			Email:     user.Email,
			FirstName: firstName,
			LastName:  lastName,
			CPF:       defaultCPF,
		},
		Description:       paymentDescription,
		ExternalReference: fmt.Sprintf("%s-%s", userID, tipID),
		Token:             cardToken,
		PaymentMethodID:   paymentMethodID,
	})
	if err != nil {
		return nil, apperrors.ErrGateway
	}

	status := model.PurchaseStatusPending
	if payment.Status == gateway.StatusApproved {
		status = model.PurchaseStatusApproved
	}
	purchase := &model.Purchase{
		UserID:    userID,
		TipID:     tipID,
		Amount:    tip.Price,
		Status:    status,
		PaymentID: payment.ID,
	}
	if err := s.purchaseRepo.Create(ctx, purchase); err != nil {
		return nil, fmt.Errorf("create purchase: %w", err)
	}

	return &CardPaymentResult{Status: payment.Status, PaymentID: payment.ID}, nil
}

// CheckStatus polls the gateway for the payment's status. On approval the
// matching purchase flips to approved; re-checking an approved payment is a
// no-op, so concurrent polls stay benign.
func (s *paymentService) CheckStatus(ctx context.Context, paymentID string) (string, error) {
	payment, err := s.gateway.GetPayment(ctx, paymentID)
	if err != nil {
		return "", apperrors.ErrGateway
	}
	if payment.Status != gateway.StatusApproved {
		return payment.Status, nil
	}

	purchase, err := s.purchaseRepo.FindByPaymentID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return "", apperrors.ErrPurchaseNotFound
		}
		return "", fmt.Errorf("find purchase: %w", err)
	}

	if purchase.Status != model.PurchaseStatusApproved {
		purchase.Status = model.PurchaseStatusApproved
		if err := s.purchaseRepo.Update(ctx, purchase); err != nil {
			return "", fmt.Errorf("approve purchase: %w", err)
		}
	}
	return gateway.StatusApproved, nil
}

// PendingPix re-fetches the QR payload of the user's pending PIX purchase of
// a tip, so an interrupted checkout can resume.
func (s *paymentService) PendingPix(ctx context.Context, userID, tipID uuid.UUID) (*PixPaymentResult, error) {
	purchase, err := s.purchaseRepo.FindPendingByUserAndTip(ctx, userID, tipID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrPurchaseNotFound
		}
		return nil, fmt.Errorf("find pending purchase: %w", err)
	}
	if purchase.PaymentID == "" {
		return nil, apperrors.ErrPurchaseNotFound
	}

	payment, err := s.gateway.GetPayment(ctx, purchase.PaymentID)
	if err != nil {
		return nil, apperrors.ErrGateway
	}
	if payment.QRCode == "" || payment.QRCodeBase64 == "" {
		return nil, apperrors.ErrGateway
	}

	return &PixPaymentResult{
		QRCode:       payment.QRCode,
		QRCodeBase64: payment.QRCodeBase64,
		PaymentID:    payment.ID,
	}, nil
}
