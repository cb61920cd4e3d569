// Package livequery asks an OpenAI-compatible chat completions endpoint
// (Perplexity by default) for a weak-signal set.
package livequery

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"horizon-scanner/models"
	"horizon-scanner/normalize"
)

const (
	DefaultBaseURL     = "https://api.perplexity.ai"
	DefaultModel       = "sonar-pro"
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 16000
	DefaultTimeout     = 120 * time.Second
	DefaultTarget      = 20
)

var ErrEmptyResponse = errors.New("no content in API response")

// AuthError means the endpoint rejected the credential.
type AuthError struct {
	StatusCode int
	Err        error
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("invalid API key (status %d): %v", e.StatusCode, e.Err)
}
func (e *AuthError) Unwrap() error { return e.Err }

// RateLimitError means the endpoint throttled the request.
type RateLimitError struct {
	Err error
}

func (e *RateLimitError) Error() string { return fmt.Sprintf("rate limit exceeded: %v", e.Err) }
func (e *RateLimitError) Unwrap() error { return e.Err }

// RequestError covers other non-2xx statuses, transport failures and empty
// responses. StatusCode is 0 when no HTTP response was received.
type RequestError struct {
	StatusCode int
	Err        error
}

func (e *RequestError) Error() string {
	if e.StatusCode == 0 {
		return fmt.Sprintf("API request failed: %v", e.Err)
	}
	return fmt.Sprintf("API error %d: %v", e.StatusCode, e.Err)
}
func (e *RequestError) Unwrap() error { return e.Err }

// IsClientError reports whether err is one of the three client error kinds.
func IsClientError(err error) bool {
	var (
		authErr *AuthError
		rateErr *RateLimitError
		reqErr  *RequestError
	)
	return errors.As(err, &authErr) || errors.As(err, &rateErr) || errors.As(err, &reqErr)
}

type Config struct {
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration
	Target      int
}

func (c Config) withDefaults() Config {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Model == "" {
		c.Model = DefaultModel
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.Timeout == 0 {
		c.Timeout = DefaultTimeout
	}
	if c.Target == 0 {
		c.Target = DefaultTarget
	}
	return c
}

// Client issues single, unretried chat completion requests. The credential is
// passed per call because it lives in the mutable settings store.
type Client struct {
	cfg        Config
	httpClient *http.Client
	logger     *zap.Logger
	now        func() time.Time
}

func NewClient(cfg Config, logger *zap.Logger) *Client {
	cfg = cfg.withDefaults()
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
		now:        time.Now,
	}
}

func (c *Client) completions(credential string) *openai.Client {
	oc := openai.DefaultConfig(credential)
	oc.BaseURL = c.cfg.BaseURL
	oc.HTTPClient = c.httpClient
	return openai.NewClientWithConfig(oc)
}

// Query sends the system prompt and the assembled user prompt and returns the
// first choice's content.
func (c *Client) Query(ctx context.Context, params models.SearchParams, credential string, prompts Prompts) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: c.cfg.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: prompts.System},
			{Role: openai.ChatMessageRoleUser, Content: BuildUserPrompt(params, prompts, c.cfg.Target)},
		},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	}

	c.logger.Debug("Querying live endpoint",
		zap.String("model", c.cfg.Model),
		zap.String("domain", params.Domain),
		zap.Bool("api_key_present", credential != ""))

	resp, err := c.completions(credential).CreateChatCompletion(ctx, req)
	if err != nil {
		classified := classify(err)
		c.logger.Error("Live query failed", zap.Error(classified))
		return "", classified
	}
	if len(resp.Choices) == 0 || resp.Choices[0].Message.Content == "" {
		return "", &RequestError{StatusCode: http.StatusOK, Err: ErrEmptyResponse}
	}
	return resp.Choices[0].Message.Content, nil
}

// Search runs Query and normalizes its output.
func (c *Client) Search(ctx context.Context, params models.SearchParams, credential string, prompts Prompts) ([]models.Signal, error) {
	raw, err := c.Query(ctx, params, credential, prompts)
	if err != nil {
		return nil, err
	}
	return normalize.NormalizeAt(raw, c.now())
}

// TestCredential sends a minimal request to check that the key is accepted.
func (c *Client) TestCredential(ctx context.Context, credential string) error {
	_, err := c.completions(credential).CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model:     c.cfg.Model,
		Messages:  []openai.ChatCompletionMessage{{Role: openai.ChatMessageRoleUser, Content: "Test"}},
		MaxTokens: 10,
	})
	if err != nil {
		return classify(err)
	}
	return nil
}

func classify(err error) error {
	var (
		apiErr *openai.APIError
		reqErr *openai.RequestError
		status int
	)
	switch {
	case errors.As(err, &apiErr):
		status = apiErr.HTTPStatusCode
	case errors.As(err, &reqErr):
		status = reqErr.HTTPStatusCode
	}

	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return &AuthError{StatusCode: status, Err: err}
	case http.StatusTooManyRequests:
		return &RateLimitError{Err: err}
	default:
		return &RequestError{StatusCode: status, Err: err}
	}
}
