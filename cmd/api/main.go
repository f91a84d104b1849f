package main

import (
	"fmt"
	"net/http"
	"os"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	"github.com/gnzdotmx/okane-track-sub000/internal/app"
	"github.com/gnzdotmx/okane-track-sub000/internal/config"
	_ "github.com/gnzdotmx/okane-track-sub000/internal/docs" // Import swagger docs
	"github.com/gnzdotmx/okane-track-sub000/internal/handlers"
	"github.com/gnzdotmx/okane-track-sub000/internal/logger"
	"github.com/gnzdotmx/okane-track-sub000/internal/middleware"
	"github.com/gnzdotmx/okane-track-sub000/internal/validator"
)

// @title           Okane Track API
// @version         1.0
// @description     Okane Track keeps account balances and yearly budgets reconciled with their transactions, imports and exports CSV statements, and converts between currencies.

// @host      localhost:8080
// @BasePath  /api/v1

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.

// @securityDefinitions.apikey APIKeyAuth
// @in header
// @name X-API-Key

func main() {
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if err := run(); err != nil {
		logger.Get().Fatalf("Fatal error: %v", err)
	}
}

func run() error {
	log := logger.Get()

	appConfig, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}

	a, err := app.Open(appConfig)
	if err != nil {
		return err
	}
	svc := a.Services

	validator.Register()

	importLimiter, err := middleware.NewLimiter(appConfig.ImportRateLimit)
	if err != nil {
		return fmt.Errorf("invalid IMPORT_RATE_LIMIT: %w", err)
	}

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(svc.Users, svc.Audit)
	accountHandler := handlers.NewAccountHandler(svc.Accounts, svc.Balances, svc.Audit)
	transactionHandler := handlers.NewTransactionHandler(svc.Transactions, svc.Audit)
	importHandler := handlers.NewImportHandler(svc.Imports, svc.Exports, svc.Audit)
	budgetHandler := handlers.NewBudgetHandler(svc.Budgets, svc.Audit)
	currencyHandler := handlers.NewCurrencyHandler(svc.Currencies, svc.Audit)
	reportHandler := handlers.NewReportHandler(svc.Reports)
	lookupHandler := handlers.NewLookupHandler(svc.Lookups)

	if appConfig.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogging())
	router.Use(middleware.ErrorHandler())
	router.Use(cors.New(corsConfig(appConfig.CORSAllowedOrigins)))

	// Swagger documentation
	router.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	router.GET("/api/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	v1 := router.Group("/api/v1")

	// Public routes
	auth := v1.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)

	// Scheduled rate refresh, authenticated by API key
	internal := v1.Group("/internal")
	internal.Use(middleware.APIKeyMiddleware(appConfig.RatesAPIKey))
	internal.POST("/rates", currencyHandler.UpdateRates)

	// Protected routes
	protected := v1.Group("/")
	protected.Use(middleware.AuthMiddleware())

	protected.GET("/profile", authHandler.GetProfile)
	protected.GET("/categories", lookupHandler.ListCategories)
	protected.GET("/expense-types", lookupHandler.ListExpenseTypes)
	protected.GET("/imports", importHandler.GetImportHistory)
	protected.GET("/reports/summary", reportHandler.Summary)

	accounts := protected.Group("/accounts")
	accounts.POST("", accountHandler.CreateAccount)
	accounts.GET("", accountHandler.GetUserAccounts)
	accounts.GET("/:id", accountHandler.GetAccountByID)
	accounts.POST("/:id/recalculate", accountHandler.RecalculateBalance)

	transactions := protected.Group("/transactions")
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetUserTransactions)
	transactions.POST("/import", middleware.RateLimit(importLimiter), importHandler.ImportTransactions)
	transactions.GET("/export", importHandler.ExportTransactions)
	transactions.GET("/:id", transactionHandler.GetTransactionByID)
	transactions.PUT("/:id", transactionHandler.UpdateTransaction)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	budgets := protected.Group("/budgets")
	budgets.POST("", budgetHandler.CreateBudget)
	budgets.GET("", budgetHandler.GetUserBudgets)
	budgets.POST("/recompute", budgetHandler.RecomputeBudgets)

	currencies := protected.Group("/currencies")
	currencies.GET("", currencyHandler.ListCurrencies)
	currencies.POST("", currencyHandler.CreateCurrency)
	currencies.GET("/convert", currencyHandler.Convert)
	currencies.POST("/rates", currencyHandler.UpdateRates)

	log.Infof("Starting Okane Track server on port %s", appConfig.Port)
	log.Infof("Swagger documentation available at http://localhost:%s/swagger/index.html", appConfig.Port)
	return router.Run(":" + appConfig.Port)
}

func corsConfig(origins []string) cors.Config {
	cfg := cors.DefaultConfig()
	cfg.AllowHeaders = append(cfg.AllowHeaders, "Authorization", "X-Request-ID", "X-File-Name")
	cfg.ExposeHeaders = []string{"X-Request-ID", "Content-Disposition"}

	if len(origins) == 0 {
		cfg.AllowAllOrigins = true
		return cfg
	}
	for _, o := range origins {
		if o == "*" {
			cfg.AllowAllOrigins = true
			return cfg
		}
	}
	cfg.AllowOrigins = origins
	return cfg
}
