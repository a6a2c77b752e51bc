package vision

import (
	"context"
	"errors"
	"io"

	"github.com/vbonduro/mealcam/internal/domain"
)

// EstimatePrompt is the shared instruction sent with every photo.
const EstimatePrompt = `Проанализируй это фото еды и определи:
1. Название блюда/продукта
2. Примерное количество калорий (ккал)
3. Белки (г)
4. Жиры (г)
5. Углеводы (г)

Ответь ТОЛЬКО в формате JSON без дополнительного текста:
{
  "name": "название блюда",
  "calories": число,
  "proteins": число,
  "fats": число,
  "carbs": число
}

Если не можешь определить точные значения, укажи примерные на основе типичных порций.`

// MaxTokens bounds the model reply; a single JSON object needs far less.
const MaxTokens = 300

var (
	ErrNoJSON            = errors.New("response contains no JSON object")
	ErrMalformedEstimate = errors.New("response JSON is not a nutrition estimate")
	ErrEmptyResponse     = errors.New("model returned no content")
	ErrRateLimited       = errors.New("rate limited by recognition service")
)

// Recognizer estimates the nutritional content of a meal photo. Every failure
// is returned as a *domain.RecognitionError.
type Recognizer interface {
	Recognize(ctx context.Context, r io.Reader, mimeType, credential string) (*domain.NutritionEstimate, error)
}
