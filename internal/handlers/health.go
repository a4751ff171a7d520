package handlers

import (
	"messpay/internal/repositories/cache"
	"messpay/internal/utils"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

// HealthHandler reports liveness of the storage dependencies. Either
// dependency may be nil (memory store, cache disabled) and is then
// skipped.
type HealthHandler struct {
	db    *gorm.DB
	cache *cache.BalanceCache
}

func NewHealthHandler(db *gorm.DB, balanceCache *cache.BalanceCache) *HealthHandler {
	return &HealthHandler{db: db, cache: balanceCache}
}

func (h *HealthHandler) Check(c *fiber.Ctx) error {
	checks := fiber.Map{}

	if h.db != nil {
		sqlDB, err := h.db.DB()
		if err == nil {
			err = sqlDB.PingContext(c.Context())
		}
		if err != nil {
			checks["database"] = err.Error()
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unhealthy", "checks": checks})
		}
		checks["database"] = "ok"
	}

	if h.cache != nil {
		if err := h.cache.HealthCheck(c.Context()); err != nil {
			checks["redis"] = err.Error()
			return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{"status": "unhealthy", "checks": checks})
		}
		checks["redis"] = "ok"
	}

	return utils.Success(c, fiber.Map{"status": "ok", "checks": checks})
}
