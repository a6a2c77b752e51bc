package claude

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/liushuangls/go-anthropic/v2"
	"github.com/vbonduro/mealcam/internal/domain"
	"github.com/vbonduro/mealcam/internal/vision"
)

const backendName = "claude"

type ClaudeRecognizer struct {
	model   string
	client  *http.Client
	baseURL string
}

// NewClaudeRecognizer returns a recognizer for the Anthropic Messages API. An
// empty baseURL keeps the SDK default.
func NewClaudeRecognizer(model, baseURL string) *ClaudeRecognizer {
	return &ClaudeRecognizer{
		model:   model,
		client:  &http.Client{},
		baseURL: baseURL,
	}
}

func (a *ClaudeRecognizer) Recognize(ctx context.Context, r io.Reader, mimeType, credential string) (*domain.NutritionEstimate, error) {
	est, err := a.recognize(ctx, r, mimeType, credential)
	if err != nil {
		return nil, &domain.RecognitionError{Backend: backendName, Err: err}
	}
	return est, nil
}

func (a *ClaudeRecognizer) recognize(ctx context.Context, r io.Reader, mimeType, credential string) (*domain.NutritionEstimate, error) {
	imageData, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}

	// The credential is supplied per call, so the client is too.
	opts := []anthropic.ClientOption{anthropic.WithHTTPClient(a.client)}
	if a.baseURL != "" {
		opts = append(opts, anthropic.WithBaseURL(a.baseURL))
	}
	client := anthropic.NewClient(credential, opts...)

	resp, err := client.CreateMessages(ctx, anthropic.MessagesRequest{
		Model:     anthropic.Model(a.model),
		MaxTokens: vision.MaxTokens,
		Messages: []anthropic.Message{{
			Role: anthropic.RoleUser,
			Content: []anthropic.MessageContent{
				anthropic.NewImageMessageContent(anthropic.NewMessageContentSource(
					anthropic.MessagesContentSourceTypeBase64,
					normaliseMIME(mimeType),
					base64.StdEncoding.EncodeToString(imageData),
				)),
				anthropic.NewTextMessageContent(vision.EstimatePrompt),
			},
		}},
	})
	if err != nil {
		var apiErr *anthropic.APIError
		if errors.As(err, &apiErr) && apiErr.IsRateLimitErr() {
			return nil, fmt.Errorf("%w: %v", vision.ErrRateLimited, err)
		}
		return nil, fmt.Errorf("failed to call claude: %w", err)
	}

	text := resp.GetFirstContentText()
	if text == "" {
		return nil, vision.ErrEmptyResponse
	}
	return vision.ParseEstimate(text)
}

// normaliseMIME maps browser MIME types to the values the Anthropic API accepts.
// Unknown types are coerced to jpeg; callers should validate MIME types before
// reaching this layer.
func normaliseMIME(mimeType string) string {
	switch mimeType {
	case "image/png", "image/gif", "image/webp":
		return mimeType
	default:
		return "image/jpeg"
	}
}
