package handler

import (
	"net/http"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"

	"betips/internal/errors"
	"betips/internal/model"
	"betips/internal/service"
)

// AdminHandler handles the admin panel endpoints.
type AdminHandler struct {
	tipService  service.TipService
	userService service.UserService
	entitlement service.EntitlementService
}

// NewAdminHandler creates a new admin handler.
func NewAdminHandler(
	tipService service.TipService,
	userService service.UserService,
	entitlement service.EntitlementService,
) *AdminHandler {
	return &AdminHandler{
		tipService:  tipService,
		userService: userService,
		entitlement: entitlement,
	}
}

// CreateTipRequest carries the create-tip form. Odd and price arrive as
// strings so malformed numbers are rejected with a validation error instead
// of a bind failure.
type CreateTipRequest struct {
	Game                   string `json:"game" validate:"required"`
	Description            string `json:"description" validate:"required"`
	Odd                    string `json:"odd" validate:"required"`
	Price                  string `json:"price" validate:"required"`
	GameDate               string `json:"gameDate" validate:"required"`
	ImageTip               string `json:"imageTip" validate:"required"`
	ImageTipBlur           string `json:"imageTipBlur" validate:"required"`
	GiveAccessToLastBuyers bool   `json:"giveAccessToLastBuyers"`
}

// SetStatusRequest updates a tip's outcome.
type SetStatusRequest struct {
	Status string `json:"status" validate:"required"`
}

// GrantFreeTipRequest grants a user free access to a tip.
type GrantFreeTipRequest struct {
	UserID string `json:"user_id" validate:"required,uuid"`
	TipID  string `json:"tip_id" validate:"required,uuid"`
}

// ListTips godoc
// @Summary List all tips
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} model.Tip
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/tips [get]
func (h *AdminHandler) ListTips(c echo.Context) error {
	tips, err := h.tipService.ListAll(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, tips)
}

// CreateTip godoc
// @Summary Create a new tip
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateTipRequest true "Tip data"
// @Success 201 {object} model.Tip
// @Failure 400 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/tips [post]
func (h *AdminHandler) CreateTip(c echo.Context) error {
	var req CreateTipRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.ErrorResponse{Error: errors.ErrValidation.Error(), Code: "INVALID_REQUEST"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.ErrorResponse{Error: errors.ErrValidation.Error(), Code: "VALIDATION_ERROR"})
	}

	tip, err := h.tipService.Create(c.Request().Context(), service.CreateTipInput{
		Game:         req.Game,
		Description:  req.Description,
		Odd:          req.Odd,
		Price:        req.Price,
		GameDate:     req.GameDate,
		ImageTip:     req.ImageTip,
		ImageTipBlur: req.ImageTipBlur,
	}, req.GiveAccessToLastBuyers)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, tip)
}

// SetTipStatus godoc
// @Summary Update a tip's status (pending, green or red)
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param tipId path string true "Tip ID"
// @Param request body SetStatusRequest true "New status"
// @Success 200 {object} model.Tip
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /admin/tips/{tipId}/status [patch]
func (h *AdminHandler) SetTipStatus(c echo.Context) error {
	tipID, err := uuid.Parse(c.Param("tipId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errors.ErrorResponse{Error: "tipId inválido", Code: "INVALID_UUID"})
	}

	var req SetStatusRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.ErrorResponse{Error: errors.ErrValidation.Error(), Code: "INVALID_REQUEST"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.ErrorResponse{Error: errors.ErrInvalidStatus.Error(), Code: "INVALID_STATUS"})
	}

	tip, err := h.tipService.SetStatus(c.Request().Context(), tipID, model.TipStatus(req.Status))
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, tip)
}

// TipAudience godoc
// @Summary List the buyers and free recipients of a tip
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Param tipId path string true "Tip ID"
// @Success 200 {array} service.AudienceMember
// @Failure 400 {object} errors.ErrorResponse
// @Router /admin/tips/{tipId}/users [get]
func (h *AdminHandler) TipAudience(c echo.Context) error {
	tipID, err := uuid.Parse(c.Param("tipId"))
	if err != nil {
		return c.JSON(http.StatusBadRequest, errors.ErrorResponse{Error: "tipId inválido", Code: "INVALID_UUID"})
	}

	members, err := h.userService.TipAudience(c.Request().Context(), tipID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, members)
}

// ListUsers godoc
// @Summary List users with purchase and free tip summaries
// @Tags admin
// @Produce json
// @Security BearerAuth
// @Success 200 {array} service.UserOverview
// @Failure 403 {object} errors.ErrorResponse
// @Router /admin/users [get]
func (h *AdminHandler) ListUsers(c echo.Context) error {
	overviews, err := h.userService.Overview(c.Request().Context())
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusOK, overviews)
}

// GrantFreeTip godoc
// @Summary Grant a user free access to a tip
// @Tags admin
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body GrantFreeTipRequest true "User and tip"
// @Success 201 {object} model.FreeTip
// @Failure 400 {object} errors.ErrorResponse
// @Router /admin/free-tips [post]
func (h *AdminHandler) GrantFreeTip(c echo.Context) error {
	var req GrantFreeTipRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.ErrorResponse{Error: errors.ErrValidation.Error(), Code: "INVALID_REQUEST"})
	}
	if err := c.Validate(&req); err != nil {
		return c.JSON(http.StatusBadRequest, errors.ErrorResponse{Error: errors.ErrValidation.Error(), Code: "VALIDATION_ERROR"})
	}

	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errors.ErrorResponse{Error: "user_id inválido", Code: "INVALID_UUID"})
	}
	tipID, err := uuid.Parse(req.TipID)
	if err != nil {
		return c.JSON(http.StatusBadRequest, errors.ErrorResponse{Error: "tip_id inválido", Code: "INVALID_UUID"})
	}

	freeTip, err := h.entitlement.Grant(c.Request().Context(), userID, tipID)
	if err != nil {
		httpErr := errors.MapErrorToHTTP(err)
		return c.JSON(httpErr.StatusCode, httpErr.ToErrorResponse())
	}
	return c.JSON(http.StatusCreated, freeTip)
}
