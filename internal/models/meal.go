package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// Meal selection statuses
const (
	SelectionAttending = "attending"
	SelectionSkipped   = "skipped"
)

// Meal is the metadata the skip-credit engine needs about a serving:
// its credit value, the cutoff after which skipping earns nothing, and
// whether it is still active. Owned by the meal-catalog collaborator;
// read from its table here, never from request input.
type Meal struct {
	ID       string          `gorm:"primarykey" json:"id"`
	Date     string          `gorm:"not null;index" json:"date"` // YYYY-MM-DD
	Type     string          `gorm:"not null" json:"type"`       // breakfast, lunch, dinner
	Price    decimal.Decimal `gorm:"type:numeric(12,2);not null" json:"price"`
	Cutoff   time.Time       `gorm:"not null" json:"cutoff"`
	IsActive bool            `gorm:"not null;default:true" json:"is_active"`
}

// MealSelection records a student's attending/skipped choice for a meal.
// Owned by the meal-catalog collaborator; consumed read-only here.
type MealSelection struct {
	ID        string    `json:"id"`
	UserID    string    `json:"user_id"`
	MealID    string    `json:"meal_id"`
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}
