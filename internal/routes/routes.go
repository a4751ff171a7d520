// Package routes wires handlers, middleware, and services into the
// fiber app. The storage and cache dependencies are injected by the
// caller, which owns their lifecycle.
package routes

import (
	"messpay/internal/handlers"
	"messpay/internal/middleware"
	"messpay/internal/models"
	"messpay/internal/repositories"
	"messpay/internal/repositories/cache"
	"messpay/internal/services/ledger"
	"messpay/internal/services/skipcredit"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// Deps carries everything SetupRoutes needs to assemble the API.
type Deps struct {
	DB            *gorm.DB // nil when running on the memory store
	BalanceCache  *cache.BalanceCache
	LedgerService ledger.Service
	SkipService   skipcredit.Service
	MealCatalog   repositories.MealCatalog
}

// SetupRoutes configures all application routes.
func SetupRoutes(app *fiber.App, deps Deps) {
	walletHandler := handlers.NewWalletHandler(deps.LedgerService)
	mealHandler := handlers.NewMealHandler(deps.SkipService, deps.MealCatalog)
	adminHandler := handlers.NewAdminHandler(deps.LedgerService)
	healthHandler := handlers.NewHealthHandler(deps.DB, deps.BalanceCache)

	app.Get("/health", healthHandler.Check)

	api := app.Group("/api")
	protected := api.Use(middleware.Auth)

	wallet := protected.Group("/wallet")
	wallet.Get("/", walletHandler.GetWallet)
	wallet.Get("/history", walletHandler.History)
	wallet.Get("/reconcile", walletHandler.Reconcile)
	wallet.Post("/pay", walletHandler.PayVendor)
	wallet.Post("/withdraw", middleware.RequireRole(models.RoleVendor), walletHandler.Withdraw)

	meals := protected.Group("/meals")
	meals.Post("/:id/skip", middleware.RequireRole(models.RoleStudent), mealHandler.SkipMeal)

	admin := protected.Group("/admin", middleware.RequireRole(models.RoleAdmin))
	admin.Post("/adjust", adminHandler.Adjust)
	admin.Post("/accounts", adminHandler.CreateAccount)
	admin.Get("/accounts/:id/reconcile", adminHandler.ReconcileAccount)
}
