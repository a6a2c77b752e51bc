package domain

import "time"

// DefaultMealName is used when the recognizer (or a caller) provides no name.
const DefaultMealName = "Неизвестное блюдо"

// MealEntry is one logged food item. Entries are immutable once appended to the
// ledger; the JSON field names are the persisted layout.
type MealEntry struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	Calories  int       `json:"calories"`
	Proteins  float64   `json:"proteins"`
	Fats      float64   `json:"fats"`
	Carbs     float64   `json:"carbs"`
	Timestamp time.Time `json:"timestamp"`
	ImageURL  string    `json:"imageUrl,omitempty"`
}

// MealDraft is a meal that has not been assigned an ID or timestamp yet.
type MealDraft struct {
	Name     string
	Calories int
	Proteins float64
	Fats     float64
	Carbs    float64
	ImageURL string
}

// NutritionEstimate is the normalized output of a recognition backend.
type NutritionEstimate struct {
	Name     string  `json:"name"`
	Calories int     `json:"calories"`
	Proteins float64 `json:"proteins"`
	Fats     float64 `json:"fats"`
	Carbs    float64 `json:"carbs"`
}

// Draft converts the estimate into a ledger draft pointing at imageURL.
func (e NutritionEstimate) Draft(imageURL string) MealDraft {
	return MealDraft{
		Name:     e.Name,
		Calories: e.Calories,
		Proteins: e.Proteins,
		Fats:     e.Fats,
		Carbs:    e.Carbs,
		ImageURL: imageURL,
	}
}

// DailyStats is the derived per-day aggregate. It is never persisted.
type DailyStats struct {
	Date     string  `json:"date"`
	Calories int     `json:"calories"`
	Proteins float64 `json:"proteins"`
	Fats     float64 `json:"fats"`
	Carbs    float64 `json:"carbs"`
	Count    int     `json:"count"`
}
