package api

import (
	"time"

	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"
	"go.mongodb.org/mongo-driver/mongo"

	_ "github.com/literaryvoice/literary-voice/docs"
	"github.com/literaryvoice/literary-voice/internal/api/handler"
	"github.com/literaryvoice/literary-voice/internal/api/middleware"
	"github.com/literaryvoice/literary-voice/internal/core/service"
	mongostore "github.com/literaryvoice/literary-voice/internal/infrastructure/db/mongo"
	redisstore "github.com/literaryvoice/literary-voice/internal/infrastructure/db/redis"
)

// RouterConfig carries the secrets the router needs beyond its store handles.
type RouterConfig struct {
	JWTSecret string
	AdminKey  string
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(db *mongo.Database, rdb *redis.Client, cfg RouterConfig, log zerolog.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(log)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("literaryvoice"))

	// --- Dependencies ---
	accountRepo := mongostore.NewAccountRepository(db)
	transactionRepo := mongostore.NewTransactionRepository(db)
	idempotency := redisstore.NewChargeIdempotency(rdb)

	authService := service.NewAuthService(accountRepo, cfg.JWTSecret, 24*time.Hour)
	ledgerService := service.NewLedgerService(accountRepo, transactionRepo, idempotency, cfg.AdminKey, log)

	authHandler := handler.NewAuthHandler(authService)
	ledgerHandler := handler.NewLedgerHandler(ledgerService)
	authRequired := middleware.Auth(accountRepo, cfg.JWTSecret)

	// --- Public routes ---
	e.POST("/signup", authHandler.Signup)
	e.POST("/login", authHandler.Login)
	e.POST("/add_credits", ledgerHandler.AddCredits) // gated by admin key in body

	// --- Authenticated routes ---
	e.GET("/balance", ledgerHandler.Balance, authRequired)
	e.POST("/deduct", ledgerHandler.Deduct, authRequired)
	e.GET("/transactions", ledgerHandler.Transactions, authRequired)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(db, rdb)

	e.GET("/health", healthHandler.Liveness)
	e.GET("/health/ready", readinessHandler.Readiness)

	// --- Observability & docs ---
	e.GET("/metrics", echoprometheus.NewHandler())
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	return e
}
