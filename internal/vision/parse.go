package vision

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/vbonduro/mealcam/internal/domain"
)

type rawEstimate struct {
	Name     string  `json:"name"`
	Calories float64 `json:"calories"`
	Proteins float64 `json:"proteins"`
	Fats     float64 `json:"fats"`
	Carbs    float64 `json:"carbs"`
}

// ParseEstimate decodes the first JSON object in a model reply and normalizes
// it. Text before the object and anything after its closing brace is ignored;
// an object that does not decode cleanly is rejected rather than repaired.
func ParseEstimate(raw string) (*domain.NutritionEstimate, error) {
	start := strings.IndexByte(raw, '{')
	if start < 0 {
		return nil, ErrNoJSON
	}

	var est rawEstimate
	if err := json.NewDecoder(strings.NewReader(raw[start:])).Decode(&est); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedEstimate, err)
	}
	if est.Calories > domain.MaxCalories {
		return nil, fmt.Errorf("%w: calories %g out of range", ErrMalformedEstimate, est.Calories)
	}

	return &domain.NutritionEstimate{
		Name:     domain.MealName(est.Name),
		Calories: domain.RoundCalories(est.Calories),
		Proteins: domain.RoundMacro(est.Proteins),
		Fats:     domain.RoundMacro(est.Fats),
		Carbs:    domain.RoundMacro(est.Carbs),
	}, nil
}
