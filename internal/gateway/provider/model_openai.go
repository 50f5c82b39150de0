package provider

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"

	"braintrust/internal/logger"

	"github.com/tidwall/gjson"
)

const defaultBaseURL = "https://openrouter.ai/api/v1"

// OpenAIChatClient talks to any OpenAI-compatible /chat/completions endpoint.
// OpenRouter is the default target.
type OpenAIChatClient struct {
	BaseURL     string
	APIKey      string
	ModelName   string
	Temperature float64
	TopP        float64
	MaxTokens   int
	Timeout     time.Duration
	// MaxRetries bounds extra attempts on 429/5xx. Zero disables retries.
	MaxRetries int
	// SiteURL and SiteName become OpenRouter's HTTP-Referer and X-Title headers.
	SiteURL      string
	SiteName     string
	ExtraHeaders map[string]string
	// HTTPClient overrides the client built from Timeout.
	HTTPClient *http.Client

	once  sync.Once
	httpc *http.Client
}

func (c *OpenAIChatClient) ID() string {
	return "openai-compatible:" + c.ModelName
}

func (c *OpenAIChatClient) Model() string { return c.ModelName }

func (c *OpenAIChatClient) endpoint() string {
	url := strings.TrimRight(strings.TrimSpace(c.BaseURL), "/")
	if url == "" {
		url = defaultBaseURL
	}
	url = strings.TrimSuffix(url, "/chat/completions")
	return url + "/chat/completions"
}

func (c *OpenAIChatClient) client() *http.Client {
	if c.HTTPClient != nil {
		return c.HTTPClient
	}
	c.once.Do(func() {
		timeout := c.Timeout
		if timeout <= 0 {
			timeout = 120 * time.Second
		}
		c.httpc = &http.Client{Timeout: timeout}
	})
	return c.httpc
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	TopP        float64       `json:"top_p"`
	MaxTokens   int           `json:"max_tokens,omitempty"`
}

func (c *OpenAIChatClient) buildBody(payload ChatPayload) ([]byte, error) {
	messages := make([]chatMessage, 0, 2)
	if payload.System != "" {
		messages = append(messages, chatMessage{Role: "system", Content: payload.System})
	}
	messages = append(messages, chatMessage{Role: "user", Content: payload.User})
	return json.Marshal(chatRequest{
		Model:       c.ModelName,
		Messages:    messages,
		Temperature: c.Temperature,
		TopP:        c.TopP,
		MaxTokens:   c.MaxTokens,
	})
}

func (c *OpenAIChatClient) headers() map[string]string {
	h := map[string]string{"Content-Type": "application/json"}
	if c.APIKey != "" {
		h["Authorization"] = "Bearer " + c.APIKey
	}
	if c.SiteURL != "" {
		h["HTTP-Referer"] = c.SiteURL
	}
	if c.SiteName != "" {
		h["X-Title"] = c.SiteName
	}
	for k, v := range c.ExtraHeaders {
		h[k] = v
	}
	return h
}

// maskedHeaders hides credentials, keeping the last 4 characters.
func maskedHeaders(h map[string]string) map[string]string {
	out := make(map[string]string, len(h))
	for k, v := range h {
		lk := strings.ToLower(k)
		if strings.Contains(lk, "key") || strings.Contains(lk, "token") || strings.Contains(lk, "auth") {
			tail := ""
			if len(v) > 4 {
				tail = v[len(v)-4:]
			}
			v = "****" + tail
		}
		out[k] = v
	}
	return out
}

// Call sends one completion request. The context bounds the whole call,
// including any retry waits.
func (c *OpenAIChatClient) Call(ctx context.Context, payload ChatPayload) (Completion, error) {
	body, err := c.buildBody(payload)
	if err != nil {
		return Completion{}, fmt.Errorf("encode completion request: %w", err)
	}
	url := c.endpoint()
	headers := c.headers()
	logger.Debugf("[AI] POST %s model=%s tag=%s headers=%v", url, c.ModelName, payload.Tag, maskedHeaders(headers))
	logger.LogLLMBody(c.ModelName, string(body))

	retries := c.MaxRetries
	if retries < 0 {
		retries = 0
	}
	var lastErr error
	for attempt := 0; attempt <= retries; attempt++ {
		out, wait, err := c.do(ctx, url, headers, body)
		if err == nil {
			return out, nil
		}
		lastErr = err
		var apiErr *APIError
		if !errors.As(err, &apiErr) || !apiErr.Retryable() || attempt == retries {
			break
		}
		if wait <= 0 {
			wait = backoff(attempt)
		}
		logger.Infof("[AI] %s retrying in %s (attempt %d/%d): %v", payload.Tag, wait, attempt+1, retries, err)
		timer := time.NewTimer(wait)
		select {
		case <-ctx.Done():
			timer.Stop()
			return Completion{}, ctx.Err()
		case <-timer.C:
		}
	}
	return Completion{}, lastErr
}

// backoff doubles from 800ms and caps at 8s.
func backoff(attempt int) time.Duration {
	wait := (800 * time.Millisecond) << attempt
	if wait > 8*time.Second || wait <= 0 {
		wait = 8 * time.Second
	}
	return wait
}

// do performs a single attempt. The returned duration is the server's
// Retry-After hint, if any.
func (c *OpenAIChatClient) do(ctx context.Context, url string, headers map[string]string, body []byte) (Completion, time.Duration, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return Completion{}, 0, fmt.Errorf("build completion request: %w", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	resp, err := c.client().Do(req)
	if err != nil {
		return Completion{}, 0, fmt.Errorf("completion request failed: %w", err)
	}
	defer resp.Body.Close()
	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return Completion{}, 0, fmt.Errorf("read completion response: %w", err)
	}
	if resp.StatusCode/100 != 2 {
		msg := strings.TrimSpace(gjson.GetBytes(raw, "error.message").String())
		if msg == "" {
			msg = resp.Status
		}
		return Completion{}, retryAfter(resp.Header.Get("Retry-After")), &APIError{StatusCode: resp.StatusCode, Message: msg}
	}
	return parseCompletion(raw)
}

func parseCompletion(raw []byte) (Completion, time.Duration, error) {
	if !gjson.ValidBytes(raw) {
		return Completion{}, 0, fmt.Errorf("decode completion response: invalid JSON")
	}
	// Some routers report upstream failures inside a 200 body.
	if msg := gjson.GetBytes(raw, "error.message").String(); msg != "" {
		return Completion{}, 0, &APIError{StatusCode: int(gjson.GetBytes(raw, "error.code").Int()), Message: msg}
	}
	res := gjson.GetManyBytes(raw,
		"choices.0.message.content",
		"model",
		"usage.prompt_tokens",
		"usage.completion_tokens",
	)
	out := Completion{
		Content: res[0].String(),
		Model:   res[1].String(),
		Usage: Usage{
			PromptTokens:     int(res[2].Int()),
			CompletionTokens: int(res[3].Int()),
		},
	}
	if strings.TrimSpace(out.Content) == "" {
		return out, 0, ErrEmptyResponse
	}
	return out, 0, nil
}

func retryAfter(v string) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
