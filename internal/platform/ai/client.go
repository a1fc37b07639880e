package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math/rand"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/vaartalab/newsroom-backend/internal/config"
	"github.com/vaartalab/newsroom-backend/internal/platform/logger"
)

// ErrNoProvider means no provider in the configured order has credentials.
// Callers treat it as a skip condition, not a failure.
var ErrNoProvider = errors.New("no ai provider configured")

type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}

type GenerateRequest struct {
	System string
	Prompt string
	// Purpose tags the call in logs: "compose", "json_retry", "length_rebalance".
	Purpose string
	// JSONMode asks the provider to constrain output to a JSON object.
	JSONMode bool
}

type GenerateResult struct {
	Text  string
	Usage Usage
}

// Client is the single entry point the composition pipeline uses to reach a
// chat-completions provider. Both OpenAI and Gemini expose this wire shape.
type Client interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error)
	Provider() string
	Model() string
}

type client struct {
	log           *logger.Logger
	provider      string
	baseURL       string
	apiKey        string
	model         string
	fallbackModel string
	httpClient    *http.Client
	maxRetries    int
	temperature   *float64
}

// NewFromConfig walks the provider order and returns a client for the first
// provider that has an API key. ErrNoProvider when none do.
func NewFromConfig(cfg config.AIConfig, log *logger.Logger) (Client, error) {
	if log == nil {
		return nil, fmt.Errorf("logger required")
	}

	order := strings.Split(cfg.ProviderOrder, ",")
	if len(order) == 0 {
		order = []string{"openai", "gemini"}
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 90 * time.Second
	}

	temp := 0.2

	for _, name := range order {
		switch strings.ToLower(strings.TrimSpace(name)) {
		case "openai":
			if strings.TrimSpace(cfg.OpenAIKey) == "" {
				continue
			}
			return &client{
				log:           log.With("service", "AIClient", "provider", "openai"),
				provider:      "openai",
				baseURL:       strings.TrimRight(cfg.OpenAIBaseURL, "/"),
				apiKey:        strings.TrimSpace(cfg.OpenAIKey),
				model:         strings.TrimSpace(cfg.OpenAIModel),
				fallbackModel: strings.TrimSpace(cfg.FallbackModel),
				httpClient:    &http.Client{Timeout: timeout},
				maxRetries:    3,
				temperature:   &temp,
			}, nil
		case "gemini":
			if strings.TrimSpace(cfg.GeminiKey) == "" {
				continue
			}
			return &client{
				log:           log.With("service", "AIClient", "provider", "gemini"),
				provider:      "gemini",
				baseURL:       strings.TrimRight(cfg.GeminiBaseURL, "/"),
				apiKey:        strings.TrimSpace(cfg.GeminiKey),
				model:         strings.TrimSpace(cfg.GeminiModel),
				fallbackModel: strings.TrimSpace(cfg.FallbackModel),
				httpClient:    &http.Client{Timeout: timeout},
				maxRetries:    3,
				temperature:   &temp,
			}, nil
		}
	}
	return nil, ErrNoProvider
}

func (c *client) Provider() string { return c.provider }
func (c *client) Model() string    { return c.model }

type chatRequest struct {
	Model          string          `json:"model"`
	Messages       []Message       `json:"messages"`
	Temperature    *float64        `json:"temperature,omitempty"`
	ResponseFormat *responseFormat `json:"response_format,omitempty"`
}

type responseFormat struct {
	Type string `json:"type"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage struct {
		PromptTokens     int `json:"prompt_tokens"`
		CompletionTokens int `json:"completion_tokens"`
	} `json:"usage"`
}

func (c *client) Generate(ctx context.Context, req GenerateRequest) (GenerateResult, error) {
	body := chatRequest{
		Model:       c.model,
		Messages:    buildMessages(req),
		Temperature: c.temperature,
	}
	if req.JSONMode {
		body.ResponseFormat = &responseFormat{Type: "json_object"}
	}

	start := time.Now()
	resp, err := c.doChat(ctx, &body)
	if err != nil {
		if body.Temperature != nil && isUnsupportedTemperature(err) {
			body.Temperature = nil
			resp, err = c.doChat(ctx, &body)
		} else if isModelOrFormatRejected(err) && c.fallbackModel != "" && c.fallbackModel != body.Model {
			// Some OpenAI-compatible endpoints reject response_format or the
			// configured model outright. One retry on the fallback model,
			// JSON mode off; the extraction layer copes with fenced output.
			c.log.Warn("Model rejected request, retrying on fallback",
				"purpose", req.Purpose,
				"model", body.Model,
				"fallback", c.fallbackModel,
				"error", err.Error(),
			)
			body.Model = c.fallbackModel
			body.ResponseFormat = nil
			resp, err = c.doChat(ctx, &body)
		}
	}
	if err != nil {
		return GenerateResult{}, err
	}

	out := GenerateResult{
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}
	if len(resp.Choices) > 0 {
		out.Text = resp.Choices[0].Message.Content
	}

	c.log.Debug("Generation finished",
		"purpose", req.Purpose,
		"model", body.Model,
		"duration", time.Since(start).String(),
		"output_chars", len(out.Text),
	)
	return out, nil
}

func buildMessages(req GenerateRequest) []Message {
	msgs := make([]Message, 0, 2)
	if strings.TrimSpace(req.System) != "" {
		msgs = append(msgs, Message{Role: "system", Content: req.System})
	}
	msgs = append(msgs, Message{Role: "user", Content: req.Prompt})
	return msgs
}

func (c *client) doChat(ctx context.Context, body *chatRequest) (*chatResponse, error) {
	backoff := 1 * time.Second

	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		resp, raw, err := c.doOnce(ctx, body)
		if err == nil {
			var parsed chatResponse
			if uErr := json.Unmarshal(raw, &parsed); uErr != nil {
				return nil, fmt.Errorf("ai decode error: %w; raw=%s", uErr, truncateForLog(raw))
			}
			return &parsed, nil
		}

		if !isRetryableError(err) || attempt == c.maxRetries {
			return nil, err
		}

		sleepFor := retryAfterDuration(resp, backoff, 10*time.Second)
		sleepFor = jitterSleep(sleepFor)

		c.log.Warn("AI request retrying",
			"attempt", attempt+1,
			"max_retries", c.maxRetries,
			"sleep", sleepFor.String(),
			"error", err.Error(),
		)

		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(sleepFor):
		}
		backoff *= 2
	}

	return nil, fmt.Errorf("unreachable retry loop")
}

func (c *client) doOnce(ctx context.Context, body *chatRequest) (*http.Response, []byte, error) {
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(body); err != nil {
		return nil, nil, err
	}

	req, err := http.NewRequestWithContext(ctx, "POST", c.baseURL+"/chat/completions", &buf)
	if err != nil {
		return nil, nil, err
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, err
	}

	raw, readErr := io.ReadAll(resp.Body)
	_ = resp.Body.Close()
	if readErr != nil {
		return resp, nil, readErr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return resp, raw, &httpError{StatusCode: resp.StatusCode, Body: string(raw)}
	}
	return resp, raw, nil
}

type httpError struct {
	StatusCode int
	Body       string
}

func (e *httpError) Error() string {
	return fmt.Sprintf("ai http %d: %s", e.StatusCode, e.Body)
}

func (e *httpError) HTTPStatusCode() int {
	if e == nil {
		return 0
	}
	return e.StatusCode
}

func isRetryableHTTPStatus(code int) bool {
	if code == 408 || code == 429 {
		return true
	}
	return code >= 500 && code <= 599
}

func isRetryableError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return false
	}
	var netErr net.Error
	if errors.As(err, &netErr) {
		if netErr.Timeout() {
			return true
		}
	}
	var httpErr *httpError
	if errors.As(err, &httpErr) {
		return isRetryableHTTPStatus(httpErr.StatusCode)
	}
	// Plain transport errors (connection refused, reset) are worth a retry.
	var opErr *net.OpError
	return errors.As(err, &opErr)
}

func retryAfterDuration(resp *http.Response, fallback, max time.Duration) time.Duration {
	sleepFor := fallback
	if resp != nil {
		if ra := strings.TrimSpace(resp.Header.Get("Retry-After")); ra != "" {
			if secs, err := strconv.Atoi(ra); err == nil && secs > 0 {
				sleepFor = time.Duration(secs) * time.Second
			}
		}
	}
	if max > 0 && sleepFor > max {
		sleepFor = max
	}
	return sleepFor
}

func jitterSleep(base time.Duration) time.Duration {
	if base <= 0 {
		return 0
	}
	j := 0.2
	delta := base.Seconds() * j
	low := base.Seconds() - delta
	high := base.Seconds() + delta
	if low < 0 {
		low = 0
	}
	v := low + rand.Float64()*(high-low)
	return time.Duration(v * float64(time.Second))
}

func isUnsupportedTemperature(err error) bool {
	var httpErr *httpError
	if !errors.As(err, &httpErr) || httpErr.StatusCode != 400 {
		return false
	}
	msg := strings.ToLower(httpErr.Body)
	if !strings.Contains(msg, "temperature") {
		return false
	}
	return strings.Contains(msg, "unsupported") ||
		strings.Contains(msg, "does not support") ||
		strings.Contains(msg, "not supported") ||
		strings.Contains(msg, "only the default")
}

func isModelOrFormatRejected(err error) bool {
	var httpErr *httpError
	if !errors.As(err, &httpErr) {
		return false
	}
	if httpErr.StatusCode != 400 && httpErr.StatusCode != 404 {
		return false
	}
	msg := strings.ToLower(httpErr.Body)
	if strings.Contains(msg, "response_format") {
		return true
	}
	if strings.Contains(msg, "model") &&
		(strings.Contains(msg, "not found") ||
			strings.Contains(msg, "does not exist") ||
			strings.Contains(msg, "not supported") ||
			strings.Contains(msg, "invalid")) {
		return true
	}
	return false
}

func truncateForLog(raw []byte) string {
	const max = 512
	if len(raw) <= max {
		return string(raw)
	}
	return string(raw[:max]) + "..."
}
