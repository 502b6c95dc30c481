package advisory

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"kasbon-backend/internal/domain/errs"
	"kasbon-backend/internal/logger"
)

const (
	DefaultAPIURL  = "https://api.openai.com/v1/chat/completions"
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 30 * time.Second

	serviceName = "advisory"
	maxTokens   = 300
)

type Config struct {
	APIKey  string
	APIURL  string
	Model   string
	Timeout time.Duration
}

// Client calls an OpenAI-compatible chat completion endpoint.
type Client struct {
	cfg        Config
	httpClient *http.Client
}

type chatRequest struct {
	Model     string        `json:"model"`
	Messages  []chatMessage `json:"messages"`
	MaxTokens int           `json:"max_tokens,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func NewClient(cfg Config) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: cfg.Timeout},
	}
}

func (c *Client) Enabled() bool { return c.cfg.APIKey != "" }

// Analyze asks for a short credit-risk opinion on a loan request.
func (c *Client) Analyze(ctx context.Context, in AnalysisInput) (string, error) {
	return c.generate(ctx, "analyze", analysisPrompt(in))
}

// Advise asks for short financial advice for an employee.
func (c *Client) Advise(ctx context.Context, in AdviceInput) (string, error) {
	return c.generate(ctx, "advise", advicePrompt(in))
}

func (c *Client) generate(ctx context.Context, op, prompt string) (string, error) {
	if !c.Enabled() {
		return "", ErrNoAPIKey
	}
	logger.ExternalServiceCall(serviceName, op, "model", c.cfg.Model)
	text, err := c.callLLM(ctx, prompt)
	logger.ExternalServiceResult(serviceName, op, err)
	return text, err
}

func (c *Client) callLLM(ctx context.Context, prompt string) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.Timeout)
	defer cancel()

	payload, err := json.Marshal(chatRequest{
		Model:     c.cfg.Model,
		Messages:  []chatMessage{{Role: "user", Content: prompt}},
		MaxTokens: maxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("%w: encode request: %v", errs.ErrExternalService, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("%w: build request: %v", errs.ErrExternalService, err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("%w: %v", errs.ErrExternalService, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 1<<20))
	if err != nil {
		return "", fmt.Errorf("%w: read response: %v", errs.ErrExternalService, err)
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", fmt.Errorf("%w: status %d", errs.ErrExternalService, resp.StatusCode)
	}

	var out chatResponse
	if err := json.Unmarshal(body, &out); err != nil {
		return "", fmt.Errorf("%w: decode response: %v", errs.ErrExternalService, err)
	}
	if len(out.Choices) == 0 || strings.TrimSpace(out.Choices[0].Message.Content) == "" {
		return "", ErrEmptyAnswer
	}
	return strings.TrimSpace(out.Choices[0].Message.Content), nil
}
