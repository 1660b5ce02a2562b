package errors

import (
	"errors"
	"net/http"
)

// User-facing messages stay in Portuguese to match the product; codes are
// stable identifiers for clients.
var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("Usuário não encontrado")
	// ErrTipNotFound is returned when a tip is not found.
	ErrTipNotFound = errors.New("Tip não encontrada")
	// ErrPurchaseNotFound is returned when no purchase matches the lookup.
	ErrPurchaseNotFound = errors.New("Compra não encontrada")
	// ErrEmailTaken is returned when registering an email that already exists.
	ErrEmailTaken = errors.New("Email já cadastrado")
	// ErrFreeTipExists is returned when a free tip was already granted.
	ErrFreeTipExists = errors.New("Tip grátis já foi liberada")
	// ErrAlreadyPurchased is returned when the user already owns the tip.
	ErrAlreadyPurchased = errors.New("Tip já foi comprada")
	// ErrInvalidStatus is returned for a status outside pending/green/red.
	ErrInvalidStatus = errors.New("Status inválido")
	// ErrValidation is returned when required fields are missing or malformed.
	ErrValidation = errors.New("Todos os campos são obrigatórios")
	// ErrInvalidResetToken is returned for an unknown or expired reset token.
	ErrInvalidResetToken = errors.New("Token inválido ou expirado")
	// ErrGateway is returned when the payment gateway call fails. The message
	// is generic on purpose so provider details never leak to the user.
	ErrGateway = errors.New("Erro ao processar pagamento")
)

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	switch {
	case errors.Is(err, ErrUserNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "USER_NOT_FOUND")
	case errors.Is(err, ErrTipNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "TIP_NOT_FOUND")
	case errors.Is(err, ErrPurchaseNotFound):
		return NewHTTPError(http.StatusNotFound, err.Error(), "PURCHASE_NOT_FOUND")
	case errors.Is(err, ErrEmailTaken):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "EMAIL_TAKEN")
	case errors.Is(err, ErrFreeTipExists):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "FREE_TIP_EXISTS")
	case errors.Is(err, ErrAlreadyPurchased):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "ALREADY_PURCHASED")
	case errors.Is(err, ErrInvalidStatus):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_STATUS")
	case errors.Is(err, ErrValidation):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "VALIDATION_ERROR")
	case errors.Is(err, ErrInvalidResetToken):
		return NewHTTPError(http.StatusBadRequest, err.Error(), "INVALID_RESET_TOKEN")
	case errors.Is(err, ErrGateway):
		return NewHTTPError(http.StatusInternalServerError, err.Error(), "GATEWAY_ERROR")
	default:
		return NewHTTPError(http.StatusInternalServerError, "Erro interno do servidor", "INTERNAL_ERROR")
	}
}
