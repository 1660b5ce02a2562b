package router

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"betips/internal/config"
	"betips/internal/errors"
	"betips/internal/handler"
	"betips/internal/model"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	authHandler *handler.AuthHandler,
	tipHandler *handler.TipHandler,
	paymentHandler *handler.PaymentHandler,
	adminHandler *handler.AdminHandler,
) {
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())

	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)
	api.POST("/auth/forgot-password", authHandler.ForgotPassword)
	api.POST("/auth/reset-password", authHandler.ResetPassword)
	api.GET("/auth/validate-reset-token", authHandler.ValidateResetToken)

	api.GET("/tips", tipHandler.List)
	api.GET("/tips/current", tipHandler.Current)
	api.GET("/tips/history", tipHandler.History)

	// Secured routes (require JWT authentication)
	secured := api.Group("", echojwt.WithConfig(echojwt.Config{
		SigningKey:  []byte(cfg.JWTSecret),
		TokenLookup: "header:" + echo.HeaderAuthorization,
	}))

	secured.GET("/tips/user", tipHandler.ForUser)
	secured.GET("/tips/:tipId", tipHandler.Get)

	secured.POST("/payments", paymentHandler.Create)
	secured.POST("/payments/status", paymentHandler.Status)
	secured.GET("/payments/pending", paymentHandler.Pending)

	// Admin routes (require the admin role on top of a valid JWT)
	admin := secured.Group("/admin", adminOnly)
	admin.GET("/tips", adminHandler.ListTips)
	admin.POST("/tips", adminHandler.CreateTip)
	admin.PATCH("/tips/:tipId/status", adminHandler.SetTipStatus)
	admin.GET("/tips/:tipId/users", adminHandler.TipAudience)
	admin.GET("/users", adminHandler.ListUsers)
	admin.POST("/free-tips", adminHandler.GrantFreeTip)
}

// adminOnly rejects callers whose token does not carry the admin role.
func adminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		principal, ok := handler.PrincipalFromContext(c)
		if !ok {
			return c.JSON(http.StatusUnauthorized, errors.ErrorResponse{Error: "Usuário não autenticado", Code: "UNAUTHENTICATED"})
		}
		if principal.Role != model.RoleAdmin {
			return c.JSON(http.StatusForbidden, errors.ErrorResponse{Error: "Não autorizado", Code: "FORBIDDEN"})
		}
		return next(c)
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
