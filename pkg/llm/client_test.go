package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequestTimeout(t *testing.T) {
	tests := []struct {
		name     string
		envValue string
		expected time.Duration
	}{
		{"default timeout", "", 60 * time.Second},
		{"duration string", "90s", 90 * time.Second},
		{"duration minutes", "2m", 2 * time.Minute},
		{"plain seconds", "120", 120 * time.Second},
		{"invalid falls back to default", "invalid", 60 * time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.envValue != "" {
				t.Setenv("DEALCOACH_API_TIMEOUT", tt.envValue)
			}
			assert.Equal(t, tt.expected, requestTimeout())
		})
	}
}

func TestNewClientRequiresAPIKey(t *testing.T) {
	t.Setenv("OPENAI_API_KEY", "")
	_, err := NewClient("gpt-4o-mini")
	assert.Error(t, err)
}

func chatFixture(content string) ChatResponse {
	var resp ChatResponse
	resp.Choices = []Choice{{}}
	resp.Choices[0].Message.Role = "assistant"
	resp.Choices[0].Message.Content = content
	return resp
}

func TestChatReturnsFirstChoice(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req ChatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "json_object", req.ResponseFormat.Type)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(chatFixture(`{"sayThis":"ok"}`))
	}))
	defer srv.Close()

	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("DEALCOACH_API_BASE", srv.URL)

	client, err := NewClient("gpt-4o-mini")
	require.NoError(t, err)

	out, err := client.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, true)
	require.NoError(t, err)
	assert.Equal(t, `{"sayThis":"ok"}`, out)
}

func TestChatRetriesTransientFailures(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		json.NewEncoder(w).Encode(chatFixture("recovered"))
	}))
	defer srv.Close()

	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("DEALCOACH_API_BASE", srv.URL)

	client, err := NewClient("")
	require.NoError(t, err)

	out, err := client.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, false)
	require.NoError(t, err)
	assert.Equal(t, "recovered", out)
	assert.Equal(t, int32(2), atomic.LoadInt32(&calls))
}

func TestChatSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(ChatResponse{Error: &APIError{Message: "rate limited"}})
	}))
	defer srv.Close()

	t.Setenv("OPENAI_API_KEY", "test-key")
	t.Setenv("DEALCOACH_API_BASE", srv.URL)

	client, err := NewClient("")
	require.NoError(t, err)

	_, err = client.Chat(context.Background(), []Message{{Role: "user", Content: "hi"}}, false)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "rate limited")
}
