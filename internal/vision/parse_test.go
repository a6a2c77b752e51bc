package vision

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/mealcam/internal/domain"
)

func TestParseEstimate(t *testing.T) {
	tests := []struct {
		name     string
		raw      string
		expected *domain.NutritionEstimate
	}{
		{
			name:     "plain object",
			raw:      `{"name":"Омлет","calories":320,"proteins":21.5,"fats":24,"carbs":2.1}`,
			expected: &domain.NutritionEstimate{Name: "Омлет", Calories: 320, Proteins: 21.5, Fats: 24, Carbs: 2.1},
		},
		{
			name:     "negative clamped, missing defaulted, rounded",
			raw:      `{"calories": -5, "proteins": 10.25}`,
			expected: &domain.NutritionEstimate{Name: domain.DefaultMealName, Calories: 0, Proteins: 10.3, Fats: 0, Carbs: 0},
		},
		{
			name: "wrapped in prose and code fence",
			raw: "Вот результат:\n```json\n" +
				`{"name":"Салат","calories":150.6,"proteins":3,"fats":11.04,"carbs":8}` +
				"\n```\nПриятного аппетита!",
			expected: &domain.NutritionEstimate{Name: "Салат", Calories: 151, Proteins: 3, Fats: 11, Carbs: 8},
		},
		{
			name:     "null fields",
			raw:      `{"name":null,"calories":null,"proteins":1,"fats":null,"carbs":null}`,
			expected: &domain.NutritionEstimate{Name: domain.DefaultMealName, Proteins: 1},
		},
		{
			name:     "unknown keys ignored",
			raw:      `{"name":"Чай","calories":2,"sugar":0,"proteins":0,"fats":0,"carbs":0.4}`,
			expected: &domain.NutritionEstimate{Name: "Чай", Calories: 2, Carbs: 0.4},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEstimate(tt.raw)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, got)
		})
	}
}

func TestParseEstimate_Rejects(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		wantErr error
	}{
		{name: "empty", raw: "", wantErr: ErrNoJSON},
		{name: "prose only", raw: "Не могу распознать блюдо на фото.", wantErr: ErrNoJSON},
		{name: "truncated object", raw: `{"name":"Суп","calories":`, wantErr: ErrMalformedEstimate},
		{name: "string number", raw: `{"name":"Суп","calories":"200"}`, wantErr: ErrMalformedEstimate},
		{name: "array instead of object", raw: `{"name":["a","b"]}`, wantErr: ErrMalformedEstimate},
		{name: "calories beyond int64", raw: `{"name":"X","calories":1e19}`, wantErr: ErrMalformedEstimate},
		{name: "absurd calories", raw: `{"name":"X","calories":1e30}`, wantErr: ErrMalformedEstimate},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseEstimate(tt.raw)
			assert.Nil(t, got)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
