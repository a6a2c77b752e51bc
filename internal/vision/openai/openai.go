package openai

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"

	"github.com/vbonduro/mealcam/internal/domain"
	"github.com/vbonduro/mealcam/internal/vision"
)

const (
	backendName    = "openai"
	defaultBaseURL = "https://api.openai.com/v1"
)

// request types mirror the Chat Completions API structure.
type request struct {
	Model     string    `json:"model"`
	Messages  []message `json:"messages"`
	MaxTokens int       `json:"max_tokens"`
}

type message struct {
	Role    string `json:"role"`
	Content []part `json:"content"`
}

type part struct {
	Type     string    `json:"type"`
	Text     string    `json:"text,omitempty"`
	ImageURL *imageURL `json:"image_url,omitempty"`
}

type imageURL struct {
	URL string `json:"url"`
}

type response struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

type OpenAIRecognizer struct {
	model   string
	client  *http.Client
	baseURL string
}

func NewOpenAIRecognizer(model, baseURL string) *OpenAIRecognizer {
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	return &OpenAIRecognizer{
		model:   model,
		client:  &http.Client{},
		baseURL: baseURL,
	}
}

func (a *OpenAIRecognizer) Recognize(ctx context.Context, r io.Reader, mimeType, credential string) (*domain.NutritionEstimate, error) {
	est, err := a.recognize(ctx, r, mimeType, credential)
	if err != nil {
		return nil, &domain.RecognitionError{Backend: backendName, Err: err}
	}
	return est, nil
}

func (a *OpenAIRecognizer) recognize(ctx context.Context, r io.Reader, mimeType, credential string) (*domain.NutritionEstimate, error) {
	imageData, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	body := request{
		Model: a.model,
		Messages: []message{{
			Role: "user",
			Content: []part{
				{Type: "text", Text: vision.EstimatePrompt},
				{Type: "image_url", ImageURL: &imageURL{URL: dataURL(imageData, mimeType)}},
			},
		}},
		MaxTokens: vision.MaxTokens,
	}

	payload, err := json.Marshal(body)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, a.baseURL+"/chat/completions", bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+credential)

	resp, err := a.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call openai: %w", err)
	}
	defer func() {
		if err := resp.Body.Close(); err != nil {
			slog.Error("failed to close openai response body", "error", err)
		}
	}()

	if resp.StatusCode != http.StatusOK {
		return nil, statusError(resp)
	}

	var respBody response
	if err := json.NewDecoder(resp.Body).Decode(&respBody); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if len(respBody.Choices) == 0 || respBody.Choices[0].Message.Content == "" {
		return nil, vision.ErrEmptyResponse
	}

	return vision.ParseEstimate(respBody.Choices[0].Message.Content)
}

// statusError builds an error from a non-200 response, preferring the API's
// own error message.
func statusError(resp *http.Response) error {
	msg := http.StatusText(resp.StatusCode)
	errBody, err := io.ReadAll(io.LimitReader(resp.Body, 64*1024))
	if err != nil {
		slog.Warn("failed to read openai error body", "status", resp.StatusCode, "error", err)
	} else if len(errBody) > 0 {
		msg = string(errBody)
		var parsed errorResponse
		if json.Unmarshal(errBody, &parsed) == nil && parsed.Error.Message != "" {
			msg = parsed.Error.Message
		}
	}

	if resp.StatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%w: openai returned status %d: %s", vision.ErrRateLimited, resp.StatusCode, msg)
	}
	return fmt.Errorf("openai returned status %d: %s", resp.StatusCode, msg)
}

func dataURL(imageData []byte, mimeType string) string {
	if mimeType == "" {
		mimeType = "image/jpeg"
	}
	return "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(imageData)
}
