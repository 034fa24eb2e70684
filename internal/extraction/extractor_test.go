package extraction

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/trackwise/expense-voice/internal/domain/entity"
)

// fakeModelServer mimics the chat-completions endpoint, replying with the
// given message content.
func fakeModelServer(t *testing.T, content string, status int, delay time.Duration) *httptest.Server {
	t.Helper()
	return httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if delay > 0 {
			time.Sleep(delay)
		}
		if status != http.StatusOK {
			w.WriteHeader(status)
			_, _ = w.Write([]byte(`{"error":{"message":"boom"}}`))
			return
		}
		resp := map[string]any{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"model":   "gpt-4o-mini",
			"choices": []map[string]any{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]any{"role": "assistant", "content": content},
			}},
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(resp)
	}))
}

func newTestExtractor(t *testing.T, baseURL string, timeout time.Duration) *Extractor {
	t.Helper()
	prompts, err := NewPromptBuilder(DefaultPrompts())
	require.NoError(t, err)
	return NewExtractor(Config{
		APIKey:      "test-key",
		BaseURL:     baseURL + "/v1",
		Model:       "gpt-4o-mini",
		Temperature: 0.1,
		MaxTokens:   512,
		Timeout:     timeout,
	}, prompts, zap.NewNop())
}

func TestExtractor_Success(t *testing.T) {
	reply := `Here is the expense: {"amount":"300","category":"Food","description":"groceries","date":"2025-06-14","detectedLanguage":"en-US"}`
	srv := fakeModelServer(t, reply, http.StatusOK, 0)
	defer srv.Close()

	e := newTestExtractor(t, srv.URL, 5*time.Second)

	result, err := e.Extract(context.Background(), "I spent three hundred rupees on groceries yesterday", entity.LanguageAuto)
	require.NoError(t, err)
	assert.Equal(t, "300", result.Candidate.Amount)
	assert.Equal(t, "Food", result.Candidate.Category)
	assert.Equal(t, "groceries", result.Candidate.Description)
	assert.Equal(t, "en-US", result.DetectedLanguage)
}

func TestExtractor_BlankTranscriptNeverCallsModel(t *testing.T) {
	called := false
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		called = true
	}))
	defer srv.Close()

	e := newTestExtractor(t, srv.URL, 5*time.Second)

	_, err := e.Extract(context.Background(), "   ", "en-US")
	assert.ErrorIs(t, err, ErrInvalidInput)
	assert.False(t, called, "blank transcript must not reach the network")
}

func TestExtractor_ServerErrorIsNetworkError(t *testing.T) {
	srv := fakeModelServer(t, "", http.StatusInternalServerError, 0)
	defer srv.Close()

	e := newTestExtractor(t, srv.URL, 5*time.Second)

	_, err := e.Extract(context.Background(), "spent ten on coffee", "en-US")
	require.Error(t, err)

	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestExtractor_TimeoutIsNetworkError(t *testing.T) {
	srv := fakeModelServer(t, `{"amount":"1"}`, http.StatusOK, 300*time.Millisecond)
	defer srv.Close()

	e := newTestExtractor(t, srv.URL, 20*time.Millisecond)

	_, err := e.Extract(context.Background(), "spent ten on coffee", "en-US")
	require.Error(t, err)

	var netErr *NetworkError
	assert.ErrorAs(t, err, &netErr)
}

func TestExtractor_GarbageReplyIsParseError(t *testing.T) {
	srv := fakeModelServer(t, "I cannot help with that.", http.StatusOK, 0)
	defer srv.Close()

	e := newTestExtractor(t, srv.URL, 5*time.Second)

	_, err := e.Extract(context.Background(), "spent ten on coffee", "en-US")
	require.Error(t, err)

	var parseErr *ParseError
	require.ErrorAs(t, err, &parseErr)
	assert.Equal(t, "I cannot help with that.", parseErr.Raw)
}
