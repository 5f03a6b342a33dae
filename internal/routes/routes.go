// Package routes defines the API routing configuration. It wires
// repositories into services and services into handlers, then binds
// the HTTP surface.
package routes

import (
	"payflow/internal/handlers"
	"payflow/internal/repositories"
	"payflow/internal/repositories/cache"
	"payflow/internal/services/account"
	"payflow/internal/services/paymentmethod"
	"payflow/internal/services/transfer"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, db *gorm.DB, cacheSvc *cache.Service, collector transfer.MetricsCollector) {
	accountRepo := repositories.NewAccountRepository(db)
	transferRepo := repositories.NewTransferRepository(db)
	methodRepo := repositories.NewPaymentMethodRepository(db)

	var accountCache account.Cache
	var transferCache transfer.AccountCache
	if cacheSvc != nil {
		accountCache = cacheSvc
		transferCache = cacheSvc
	}

	accountService := account.NewService(accountRepo, accountCache)
	methodService := paymentmethod.NewService(methodRepo, accountRepo)
	transferService := transfer.NewService(accountRepo, transferRepo, transferCache, collector)

	accountHandler := handlers.NewAccountHandler(accountService)
	methodHandler := handlers.NewPaymentMethodHandler(methodService)
	transferHandler := handlers.NewTransferHandler(transferService)
	healthHandler := handlers.NewHealthHandler(cacheSvc)

	app.Get("/", healthHandler.HealthCheck)

	accounts := app.Group("/accounts")
	accounts.Post("/", accountHandler.CreateAccount)
	accounts.Get("/", accountHandler.ListAccounts)
	accounts.Get("/:id", accountHandler.GetAccount)
	accounts.Patch("/:id", accountHandler.UpdateAccount)

	methods := app.Group("/methods")
	methods.Post("/", methodHandler.CreatePaymentMethod)
	methods.Get("/account/:accountId", methodHandler.ListAccountPaymentMethods)
	methods.Get("/:id", methodHandler.GetPaymentMethod)

	transfers := app.Group("/transfers")
	transfers.Post("/", transferHandler.CreateTransfer)
	transfers.Get("/account/:accountId", transferHandler.ListAccountTransfers)
	transfers.Get("/:id", transferHandler.GetTransfer)
}
