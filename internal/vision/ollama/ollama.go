package ollama

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/vbonduro/mealcam/internal/domain"
	"github.com/vbonduro/mealcam/internal/vision"
)

const backendName = "ollama"

type OllamaRecognizer struct {
	host   string
	model  string
	client *http.Client
}

func NewOllamaRecognizer(host, model string) *OllamaRecognizer {
	return &OllamaRecognizer{
		host:   host,
		model:  model,
		client: &http.Client{},
	}
}

// Recognize runs the estimate prompt against a local Ollama model. The
// credential is sent as a bearer token for hosts behind an authenticating
// proxy.
func (a *OllamaRecognizer) Recognize(ctx context.Context, r io.Reader, mimeType, credential string) (*domain.NutritionEstimate, error) {
	est, err := a.recognize(ctx, r, credential)
	if err != nil {
		return nil, &domain.RecognitionError{Backend: backendName, Err: err}
	}
	return est, nil
}

func (a *OllamaRecognizer) recognize(ctx context.Context, r io.Reader, credential string) (*domain.NutritionEstimate, error) {
	// Read image data
	imageData, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	if len(imageData) == 0 {
		return nil, fmt.Errorf("empty image")
	}

	// Build request; format=json constrains the model to a JSON reply.
	reqBody := map[string]interface{}{
		"model":  a.model,
		"prompt": vision.EstimatePrompt,
		"images": []string{base64.StdEncoding.EncodeToString(imageData)},
		"format": "json",
		"stream": false,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.host+"/api/generate", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if credential != "" {
		req.Header.Set("Authorization", "Bearer "+credential)
	}

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call ollama: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, fmt.Errorf("%w: ollama returned status %d", vision.ErrRateLimited, resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ollama returned status %d", resp.StatusCode)
	}

	var respBody struct {
		Response string `json:"response"`
	}

	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if respBody.Response == "" {
		return nil, vision.ErrEmptyResponse
	}

	return vision.ParseEstimate(respBody.Response)
}
