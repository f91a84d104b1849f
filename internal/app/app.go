// Package app wires configuration, storage and services together for the
// server and the command line tool.
package app

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/gnzdotmx/okane-track-sub000/internal/config"
	"github.com/gnzdotmx/okane-track-sub000/internal/database"
	"github.com/gnzdotmx/okane-track-sub000/internal/exchange"
	"github.com/gnzdotmx/okane-track-sub000/internal/importer"
	"github.com/gnzdotmx/okane-track-sub000/internal/logger"
	"github.com/gnzdotmx/okane-track-sub000/internal/repository"
	"github.com/gnzdotmx/okane-track-sub000/internal/services"
)

// Services bundles every service the handlers and commands use.
type Services struct {
	Users        services.UserServicer
	Accounts     services.AccountServicer
	Balances     services.BalanceServicer
	Budgets      services.BudgetServicer
	Currencies   services.CurrencyServicer
	Transactions services.TransactionServicer
	Imports      services.ImportServicer
	Exports      services.ExportServicer
	Reports      services.ReportServicer
	Lookups      services.LookupServicer
	Audit        services.AuditServicer
}

// App holds an open database and the services built on it.
type App struct {
	Config   *config.Config
	DB       *gorm.DB
	Services *Services
}

// Open connects to the configured database, brings the schema up to date,
// seeds reference data and builds the services.
func Open(cfg *config.Config) (*App, error) {
	dbManager, err := database.NewManager(database.NewConfig(cfg))
	if err != nil {
		return nil, fmt.Errorf("failed to create database manager: %w", err)
	}

	if err := dbManager.RunMigrations(); err != nil {
		return nil, fmt.Errorf("failed to run database migrations: %w", err)
	}

	db := dbManager.DB()
	if err := database.Seed(db, cfg.BaseCurrency); err != nil {
		return nil, fmt.Errorf("failed to seed reference data: %w", err)
	}

	rules := importer.DefaultRules()
	if cfg.ImportRulesPath != "" {
		if rules, err = importer.LoadRulesFile(cfg.ImportRulesPath); err != nil {
			return nil, fmt.Errorf("failed to load import rules: %w", err)
		}
		logger.Get().Infow("loaded import rules", "path", cfg.ImportRulesPath)
	}

	return &App{
		Config:   cfg,
		DB:       db,
		Services: NewServices(db, NewFetcher(cfg), rules),
	}, nil
}

// NewFetcher builds the rate fetcher from the configured providers, primary
// first. Providers without a URL are skipped.
func NewFetcher(cfg *config.Config) *exchange.Fetcher {
	client := exchange.NewHTTPClient(cfg.RatesTimeout)

	var providers []exchange.Provider
	if cfg.RatesPrimaryURL != "" {
		providers = append(providers, exchange.NewHTTPProvider("primary", client, cfg.RatesPrimaryURL, cfg.RatesPrimaryPath))
	}
	if cfg.RatesSecondaryURL != "" {
		providers = append(providers, exchange.NewHTTPProvider("secondary", client, cfg.RatesSecondaryURL, cfg.RatesSecondaryPath))
	}
	return exchange.NewFetcher(providers...)
}

// NewServices builds the service graph on db.
func NewServices(db *gorm.DB, fetcher *exchange.Fetcher, rules *importer.Rules) *Services {
	store := repository.NewStore(db)
	balances := services.NewBalanceService(store)
	budgets := services.NewBudgetService(store)

	return &Services{
		Users:        services.NewUserService(store),
		Accounts:     services.NewAccountService(store),
		Balances:     balances,
		Budgets:      budgets,
		Currencies:   services.NewCurrencyService(store, fetcher),
		Transactions: services.NewTransactionService(store, balances, budgets),
		Imports:      services.NewImportService(store, rules, balances, budgets),
		Exports:      services.NewExportService(store),
		Reports:      services.NewReportService(store),
		Lookups:      services.NewLookupService(store),
		Audit:        services.NewAuditService(db),
	}
}
