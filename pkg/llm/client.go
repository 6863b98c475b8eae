// Package llm is a minimal OpenAI-compatible chat-completions client. The
// coaching engine treats the model as an unreliable collaborator: every call
// has a timeout, transient HTTP failures are retried with backoff, and the
// caller is expected to have a deterministic fallback for everything else.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strconv"
	"time"
)

const defaultEndpoint = "https://api.openai.com/v1/chat/completions"

// Client talks to one chat-completions endpoint.
type Client struct {
	httpClient *http.Client
	endpoint   string
	apiKey     string
	model      string
	debug      bool
}

// NewClient builds a client from the environment. OPENAI_API_KEY is required;
// DEALCOACH_API_BASE overrides the endpoint for OpenAI-compatible providers.
func NewClient(model string) (*Client, error) {
	apiKey := os.Getenv("OPENAI_API_KEY")
	if apiKey == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY environment variable not set")
	}
	endpoint := os.Getenv("DEALCOACH_API_BASE")
	if endpoint == "" {
		endpoint = defaultEndpoint
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	return &Client{
		httpClient: &http.Client{Timeout: requestTimeout()},
		endpoint:   endpoint,
		apiKey:     apiKey,
		model:      model,
		debug:      os.Getenv("DEALCOACH_DEBUG") == "1",
	}, nil
}

// requestTimeout reads DEALCOACH_API_TIMEOUT as a duration string ("90s",
// "2m") or plain seconds ("90"). Defaults to 60s; a hung LLM call must never
// hang a coaching request.
func requestTimeout() time.Duration {
	raw := os.Getenv("DEALCOACH_API_TIMEOUT")
	if raw == "" {
		return 60 * time.Second
	}
	if d, err := time.ParseDuration(raw); err == nil {
		return d
	}
	if secs, err := strconv.Atoi(raw); err == nil {
		return time.Duration(secs) * time.Second
	}
	return 60 * time.Second
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.model }

// Chat sends one request and returns the first choice's content.
func (c *Client) Chat(ctx context.Context, messages []Message, jsonOutput bool) (string, error) {
	req := &ChatRequest{
		Model:    c.model,
		Messages: messages,
	}
	temp := 0.3
	req.Temperature = &temp
	if jsonOutput {
		req.ResponseFormat = &ResponseFormat{Type: "json_object"}
	}

	body, err := json.Marshal(req)
	if err != nil {
		return "", fmt.Errorf("failed to marshal request: %w", err)
	}
	if c.debug {
		fmt.Fprintf(os.Stderr, "[llm] request: %s\n", string(body))
	}

	httpReq, err := http.NewRequestWithContext(ctx, "POST", c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := doWithRetry(c.httpClient, httpReq, body)
	if err != nil {
		return "", fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("failed to read response: %w", err)
	}
	if c.debug {
		fmt.Fprintf(os.Stderr, "[llm] response: %s\n", string(respBody))
	}
	if resp.StatusCode != http.StatusOK {
		return "", fmt.Errorf("chat API returned status %d: %s", resp.StatusCode, truncate(string(respBody), 300))
	}

	var chatResp ChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return "", fmt.Errorf("failed to parse response: %w", err)
	}
	if chatResp.Error != nil {
		return "", fmt.Errorf("chat API error: %s", chatResp.Error.Message)
	}
	if len(chatResp.Choices) == 0 {
		return "", fmt.Errorf("chat API returned no choices")
	}
	return chatResp.Choices[0].Message.Content, nil
}

// doWithRetry executes the request with exponential backoff on transient
// failures: network errors, 408, 429 and 5xx.
func doWithRetry(client *http.Client, req *http.Request, body []byte) (*http.Response, error) {
	const maxRetries = 2
	const baseDelay = 200 * time.Millisecond

	var lastResp *http.Response
	var lastErr error

	for attempt := 0; attempt <= maxRetries; attempt++ {
		if attempt > 0 {
			req.Body = io.NopCloser(bytes.NewReader(body))
		}

		resp, err := client.Do(req)
		lastResp = resp
		lastErr = err

		if err != nil {
			if attempt < maxRetries {
				time.Sleep(backoffDelay(baseDelay, attempt))
				continue
			}
			return resp, err
		}

		switch resp.StatusCode {
		case 408, 429, 500, 502, 503, 504:
			if attempt < maxRetries {
				resp.Body.Close()
				time.Sleep(backoffDelay(baseDelay, attempt))
				continue
			}
		}
		return resp, nil
	}
	return lastResp, lastErr
}

func backoffDelay(base time.Duration, attempt int) time.Duration {
	delay := base * time.Duration(1<<attempt)
	jitter := time.Duration(time.Now().UnixNano() % int64(delay) / 2)
	return delay + jitter
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
