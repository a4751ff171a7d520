package handlers

import (
	"errors"

	"messpay/internal/repositories"
	"messpay/internal/services/skipcredit"
	"messpay/internal/utils"

	"github.com/gofiber/fiber/v2"
)

// MealHandler accepts meal-skip requests. The caller only names the
// meal; price, cutoff, and the active flag come from the meal catalog,
// so a student cannot influence the credited amount.
type MealHandler struct {
	skipService skipcredit.Service
	catalog     repositories.MealCatalog
}

func NewMealHandler(skipService skipcredit.Service, catalog repositories.MealCatalog) *MealHandler {
	return &MealHandler{
		skipService: skipService,
		catalog:     catalog,
	}
}

// SkipMeal issues the skip credit for the caller and the given meal.
func (h *MealHandler) SkipMeal(c *fiber.Ctx) error {
	claims, err := extractUserClaims(c)
	if err != nil {
		return utils.Unauthorized(c, "invalid claims")
	}

	mealID := c.Params("id")
	if mealID == "" {
		return utils.BadRequest(c, "Meal id is required")
	}

	meal, err := h.catalog.GetMeal(c.Context(), mealID)
	if err != nil {
		if errors.Is(err, repositories.ErrMealNotFound) {
			return utils.NotFound(c, "Meal not found")
		}
		return utils.InternalError(c, "internal error")
	}

	entry, err := h.skipService.SkipCredit(c.Context(), claims.AccountID, meal)
	if err != nil {
		switch {
		case errors.Is(err, skipcredit.ErrAlreadyCredited):
			return utils.Conflict(c, "Meal already credited")
		case errors.Is(err, skipcredit.ErrCutoffPassed):
			return utils.BadRequest(c, "Meal cutoff has passed")
		case errors.Is(err, skipcredit.ErrMealInactive):
			return utils.BadRequest(c, "Meal is not active")
		default:
			return ledgerError(c, err)
		}
	}

	return utils.Success(c, fiber.Map{
		"status":         "success",
		"transaction_id": entry.TransactionID,
		"amount":         entry.Amount,
	})
}
