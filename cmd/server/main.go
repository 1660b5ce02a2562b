package main

import (
	"log"
	"net/http"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"

	_ "betips/docs" // swagger docs

	"betips/internal/auth"
	"betips/internal/cache"
	"betips/internal/config"
	"betips/internal/db"
	"betips/internal/gateway"
	"betips/internal/handler"
	"betips/internal/mail"
	"betips/internal/model"
	"betips/internal/repository"
	"betips/internal/router"
	"betips/internal/service"
)

// @title Betips API
// @version 1.0
// @description Daily betting tip API with PIX and card payments via Mercado Pago.
// @host localhost:8080
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("no .env file found, using environment")
	}
	cfg := config.Load()

	e := echo.New()
	e.Use(middleware.RequestID())

	gormDB, err := db.NewMySQL(cfg.MySQLDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if err := gormDB.AutoMigrate(
		&model.User{},
		&model.Tip{},
		&model.Purchase{},
		&model.FreeTip{},
	); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	tipRepo := repository.NewTipRepository(gormDB)
	purchaseRepo := repository.NewPurchaseRepository(gormDB)
	freeTipRepo := repository.NewFreeTipRepository(gormDB)

	// Initialize auth and outbound clients
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)
	mailer := mail.NewSMTPMailer(cfg)
	gatewayClient := gateway.NewClient(cfg.MercadoPagoBaseURL, cfg.MercadoPagoToken)

	// Initialize services
	entitlementService := service.NewEntitlementService(tipRepo, purchaseRepo, freeTipRepo)
	tipService := service.NewTipService(tipRepo, freeTipRepo, entitlementService, cacheClient)
	paymentService := service.NewPaymentService(userRepo, tipRepo, purchaseRepo, gatewayClient)
	authService := service.NewAuthService(userRepo, jwtService, tokenStore, mailer, cfg.AppURL)
	userService := service.NewUserService(userRepo, purchaseRepo, freeTipRepo)

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	tipHandler := handler.NewTipHandler(tipService, entitlementService)
	paymentHandler := handler.NewPaymentHandler(paymentService)
	adminHandler := handler.NewAdminHandler(tipService, userService, entitlementService)

	// Register routes
	router.Register(
		e,
		cfg,
		authHandler,
		tipHandler,
		paymentHandler,
		adminHandler,
	)

	addr := ":" + cfg.ServerPort
	if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server start: %v", err)
	}
}
