package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"betips/internal/errors"
	"betips/internal/service"
)

// Payment types accepted by CreatePayment.
const (
	paymentTypePix  = "pix"
	paymentTypeCard = "card"
)

// PaymentHandler handles payment endpoints.
type PaymentHandler struct {
	paymentService service.PaymentService
}

// NewPaymentHandler creates a new payment handler.
func NewPaymentHandler(paymentService service.PaymentService) *PaymentHandler {
	return &PaymentHandler{paymentService: paymentService}
}

// CreatePaymentRequest starts a purchase attempt. CPF is used by PIX;
// Token and PaymentMethodID by card payments.
type CreatePaymentRequest struct {
	TipID           string `json:"tipId" validate:"required,uuid"`
	PaymentType     string `json:"payment_type" validate:"required,oneof=pix card"`
	CPF             string `json:"cpf"`
	Token           string `json:"token"`
	PaymentMethodID string `json:"payment_method_id"`
}

// StatusRequest asks for the current state of a gateway payment.
type StatusRequest struct {
	PaymentID string `json:"paymentId" validate:"required"`
}

// Create godoc
// @Summary Start a PIX or card payment for a tip
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreatePaymentRequest true "Payment data"
// @Success 200 {object} service.PixPaymentResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /payments [post]
func (h *PaymentHandler) Create(c echo.Context) error {
	principal, ok := PrincipalFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errors.ErrorResponse{Error: "Usuário não autenticado", Code: "UNAUTHENTICATED"})
	}

	var req CreatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.ErrorResponse{Error: errors.ErrValidation.Error(), Code: "INVALID_REQUEST"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.ErrorResponse{Error: errors.ErrValidation.Error(), Code: "VALIDATION_ERROR"})
	}

	tipID, err := uuid.Parse(req.TipID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errors.ErrorResponse{Error: "tipId inválido", Code: "INVALID_UUID"})
	}

	ctx := c.Request().Context()
	switch req.PaymentType {
	case paymentTypePix:
		result, err := h.paymentService.CreatePixPayment(ctx, principal.UserID, tipID, req.CPF)
		if err != nil {
			httpErr := errors.MapErrorToHTTP(err)
			return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
		return c.JSON(http.StatusOK, result)
	case paymentTypeCard:
		if req.Token == "" || req.PaymentMethodID == "" {
			return c.JSON(http.StatusBadRequest, errors.ErrorResponse{Error: errors.ErrValidation.Error(), Code: "VALIDATION_ERROR"})
		}
		result, err := h.paymentService.CreateCardPayment(ctx, principal.UserID, tipID, req.Token, req.PaymentMethodID)
		if err != nil {
			httpErr := errors.MapErrorToHTTP(err)
			return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
		}
		return c.JSON(http.StatusOK, result)
	default:
		return c.JSON(http.StatusBadRequest, errors.ErrorResponse{Error: "Tipo de pagamento inválido", Code: "INVALID_PAYMENT_TYPE"})
	}
}

// Status godoc
// @Summary Check a payment's status and unlock the purchase on approval
// @Tags payments
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body StatusRequest true "Payment id"
// @Success 200 {object} map[string]string
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /payments/status [post]
func (h *PaymentHandler) Status(c echo.Context) error {
	var req StatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.ErrorResponse{Error: errors.ErrValidation.Error(), Code: "INVALID_REQUEST"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.ErrorResponse{Error: "ID do pagamento é obrigatório", Code: "VALIDATION_ERROR"})
	}

	status, err := h.paymentService.CheckStatus(c.Request().Context(), req.PaymentID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, map[string]string{"status": status})
}

// Pending godoc
// @Summary Resume the caller's pending PIX payment for a tip
// @Tags payments
// @Produce json
// @Security BearerAuth
// @Param tipId query string true "Tip ID"
// @Success 200 {object} service.PixPaymentResult
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /payments/pending [get]
func (h *PaymentHandler) Pending(c echo.Context) error {
	principal, ok := PrincipalFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errors.ErrorResponse{Error: "Usuário não autenticado", Code: "UNAUTHENTICATED"})
	}

	tipID, err := uuid.Parse(c.QueryParam("tipId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errors.ErrorResponse{Error: "tipId inválido", Code: "INVALID_UUID"})
	}

	result, err := h.paymentService.PendingPix(c.Request().Context(), principal.UserID, tipID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, result)
}
