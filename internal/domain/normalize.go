package domain

import (
	"math"
	"strings"

	"github.com/shopspring/decimal"
)

// MaxCalories caps the calories of a single entry.
const MaxCalories = math.MaxInt32

// RoundCalories rounds v half-up to a whole number, clamping negatives and
// non-finite values to 0 and large values to MaxCalories.
func RoundCalories(v float64) int {
	if !isUsable(v) {
		return 0
	}
	d := decimal.NewFromFloat(v).Round(0)
	if d.GreaterThan(decimal.NewFromInt(MaxCalories)) {
		return MaxCalories
	}
	return int(d.IntPart())
}

// RoundMacro rounds v half-up to one decimal place, clamping negatives and
// non-finite values to 0.
func RoundMacro(v float64) float64 {
	if !isUsable(v) {
		return 0
	}
	return decimal.NewFromFloat(v).Round(1).InexactFloat64()
}

func isUsable(v float64) bool {
	return !math.IsNaN(v) && !math.IsInf(v, 0) && v > 0
}

// MealName trims name and falls back to DefaultMealName when nothing is left.
func MealName(name string) string {
	name = strings.TrimSpace(name)
	if name == "" {
		return DefaultMealName
	}
	return name
}

// Normalize returns a copy of d with every field inside its declared range.
func (d MealDraft) Normalize() MealDraft {
	return MealDraft{
		Name:     MealName(d.Name),
		Calories: min(max(d.Calories, 0), MaxCalories),
		Proteins: RoundMacro(d.Proteins),
		Fats:     RoundMacro(d.Fats),
		Carbs:    RoundMacro(d.Carbs),
		ImageURL: strings.TrimSpace(d.ImageURL),
	}
}

// Valid reports whether a stored entry carries the fields the ledger relies on.
func (m MealEntry) Valid() bool {
	return m.ID != "" && !m.Timestamp.IsZero()
}

// Sanitized clamps the numeric fields of a stored entry.
func (m MealEntry) Sanitized() MealEntry {
	m.Calories = min(max(m.Calories, 0), MaxCalories)
	m.Proteins = RoundMacro(m.Proteins)
	m.Fats = RoundMacro(m.Fats)
	m.Carbs = RoundMacro(m.Carbs)
	return m
}
