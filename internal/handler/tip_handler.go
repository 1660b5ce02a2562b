package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"betips/internal/errors"
	"betips/internal/service"
)

// TipHandler handles the user-facing tip endpoints.
type TipHandler struct {
	tipService  service.TipService
	entitlement service.EntitlementService
}

// NewTipHandler creates a new tip handler.
func NewTipHandler(tipService service.TipService, entitlement service.EntitlementService) *TipHandler {
	return &TipHandler{tipService: tipService, entitlement: entitlement}
}

// List godoc
// @Summary List tips in their blurred public projection
// @Tags tips
// @Produce json
// @Success 200 {array} service.PublicTip
// @Failure 500 {object} errors.ErrorResponse
// @Router /tips [get]
func (h *TipHandler) List(c echo.Context) error {
	tips, err := h.tipService.PublicList(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, tips)
}

// Current godoc
// @Summary Get the tip currently on sale
// @Tags tips
// @Produce json
// @Success 200 {object} map[string]interface{}
// @Failure 500 {object} errors.ErrorResponse
// @Router /tips/current [get]
func (h *TipHandler) Current(c echo.Context) error {
	tip, err := h.tipService.Current(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	if tip == nil {
		// No tip on sale right now; an empty state, not an error.
		return c.JSON(http.StatusOK, echo.Map{"tip": nil})
	}
	return c.JSON(http.StatusOK, echo.Map{"tip": tip})
}

// History godoc
// @Summary List settled tips, newest first
// @Tags tips
// @Produce json
// @Success 200 {array} service.HistoryEntry
// @Failure 500 {object} errors.ErrorResponse
// @Router /tips/history [get]
func (h *TipHandler) History(c echo.Context) error {
	entries, err := h.tipService.History(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, entries)
}

// ForUser godoc
// @Summary List the caller's unlocked tips
// @Tags tips
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Tip
// @Failure 401 {object} errors.ErrorResponse
// @Router /tips/user [get]
func (h *TipHandler) ForUser(c echo.Context) error {
	principal, ok := PrincipalFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errors.ErrorResponse{Error: "Usuário não autenticado", Code: "UNAUTHENTICATED"})
	}

	tips, err := h.tipService.ForUser(c.Request().Context(), principal.UserID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, tips)
}

// Get godoc
// @Summary Get a tip with the image the caller is entitled to
// @Tags tips
// @Produce json
// @Security BearerAuth
// @Param tipId path string true "Tip ID"
// @Success 200 {object} service.Entitlement
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /tips/{tipId} [get]
func (h *TipHandler) Get(c echo.Context) error {
	principal, ok := PrincipalFromContext(c)
	if !ok {
		return c.JSON(http.StatusUnauthorized, errors.ErrorResponse{Error: "Usuário não autenticado", Code: "UNAUTHENTICATED"})
	}

	tipID, err := uuid.Parse(c.Param("tipId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errors.ErrorResponse{Error: "tipId inválido", Code: "INVALID_UUID"})
	}

	entitlement, err := h.entitlement.Resolve(c.Request().Context(), &principal.UserID, tipID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, entitlement)
}
