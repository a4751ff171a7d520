package repositories

import (
	"context"
	"errors"
	"fmt"

	"messpay/internal/models"

	"gorm.io/gorm"
)

// ErrMealNotFound is returned when no meal exists for the given id.
var ErrMealNotFound = errors.New("meal not found")

// MealCatalog reads meal metadata from the catalog table. The catalog
// collaborator owns the rows; this side only looks them up, so a skip
// request can never smuggle in its own price or cutoff.
type MealCatalog interface {
	GetMeal(ctx context.Context, id string) (models.Meal, error)
}

type mealCatalog struct {
	db *gorm.DB
}

// NewMealCatalog creates the PostgreSQL-backed meal catalog reader.
func NewMealCatalog(db *gorm.DB) MealCatalog {
	return &mealCatalog{db: db}
}

func (c *mealCatalog) GetMeal(ctx context.Context, id string) (models.Meal, error) {
	var meal models.Meal
	if err := c.db.WithContext(ctx).First(&meal, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.Meal{}, ErrMealNotFound
		}
		return models.Meal{}, fmt.Errorf("failed to get meal: %w", err)
	}
	return meal, nil
}
