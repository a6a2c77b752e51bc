package claude

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vbonduro/mealcam/internal/domain"
	"github.com/vbonduro/mealcam/internal/vision"
)

func messageResponse(text string) map[string]interface{} {
	return map[string]interface{}{
		"id":          "msg_test",
		"type":        "message",
		"role":        "assistant",
		"model":       "claude-test",
		"stop_reason": "end_turn",
		"content": []map[string]interface{}{
			{"type": "text", "text": text},
		},
		"usage": map[string]interface{}{"input_tokens": 10, "output_tokens": 20},
	}
}

func TestClaudeRecognize(t *testing.T) {
	var gotKey string
	var gotBody map[string]interface{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey = r.Header.Get("x-api-key")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)

		w.Header().Set("Content-Type", "application/json")
		if err := json.NewEncoder(w).Encode(messageResponse(`{"name":"Плов","calories":610,"proteins":22.04,"fats":25.5,"carbs":70}`)); err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
		}
	}))
	defer server.Close()

	rec := NewClaudeRecognizer("claude-test", server.URL)

	est, err := rec.Recognize(context.Background(), bytes.NewReader([]byte{0xFF, 0xD8}), "image/jpeg", "sk-ant-test")
	require.NoError(t, err)
	assert.Equal(t, &domain.NutritionEstimate{Name: "Плов", Calories: 610, Proteins: 22, Fats: 25.5, Carbs: 70}, est)

	assert.Equal(t, "sk-ant-test", gotKey)
	assert.Equal(t, "claude-test", gotBody["model"])
	assert.EqualValues(t, vision.MaxTokens, gotBody["max_tokens"])
}

func TestClaudeRecognizeRateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer server.Close()

	rec := NewClaudeRecognizer("claude-test", server.URL)

	_, err := rec.Recognize(context.Background(), bytes.NewReader([]byte{0xFF, 0xD8}), "image/jpeg", "sk-ant-test")

	var rerr *domain.RecognitionError
	require.ErrorAs(t, err, &rerr)
	assert.Equal(t, "claude", rerr.Backend)
	assert.ErrorIs(t, err, vision.ErrRateLimited)
}

func TestClaudeRecognizeMalformedReply(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(messageResponse(`{"name":"Суп","calories":"много"}`))
	}))
	defer server.Close()

	rec := NewClaudeRecognizer("claude-test", server.URL)

	_, err := rec.Recognize(context.Background(), bytes.NewReader([]byte{0xFF, 0xD8}), "image/jpeg", "sk-ant-test")
	assert.ErrorIs(t, err, vision.ErrMalformedEstimate)
}

func TestClaudeRecognizeReadError(t *testing.T) {
	rec := NewClaudeRecognizer("claude-test", "")

	_, err := rec.Recognize(context.Background(), &errReader{}, "image/jpeg", "sk-ant-test")

	var rerr *domain.RecognitionError
	assert.ErrorAs(t, err, &rerr)
}

func TestNormaliseMIME(t *testing.T) {
	assert.Equal(t, "image/png", normaliseMIME("image/png"))
	assert.Equal(t, "image/webp", normaliseMIME("image/webp"))
	assert.Equal(t, "image/jpeg", normaliseMIME("image/heic"))
	assert.Equal(t, "image/jpeg", normaliseMIME(""))
}

// errReader always returns an error on Read.
type errReader struct{}

func (e *errReader) Read(_ []byte) (int, error) {
	return 0, io.ErrUnexpectedEOF
}
