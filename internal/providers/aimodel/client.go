// Package aimodel is the universal text-generation client. Model IDs starting
// with "gemini-" go to the Generative Language API, everything else to the
// Anthropic Messages API, so callers pick a model and never a provider.
package aimodel

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"
)

const (
	defaultTimeout   = 60 * time.Second
	defaultRetries   = 3
	anthropicVersion = "2023-06-01"
)

type Options struct {
	GeminiAPIKey     string
	GeminiBaseURL    string
	AnthropicAPIKey  string
	AnthropicBaseURL string
	HTTPClient       *http.Client
	Retries          int
	Sleep            func(time.Duration)
}

type Client struct {
	geminiAPIKey     string
	geminiBaseURL    string
	anthropicAPIKey  string
	anthropicBaseURL string
	client           *http.Client
	retries          int
	sleep            func(time.Duration)
}

func New(opts Options) *Client {
	geminiBase := strings.TrimRight(opts.GeminiBaseURL, "/")
	if geminiBase == "" {
		geminiBase = "https://generativelanguage.googleapis.com/v1beta"
	}
	anthropicBase := strings.TrimRight(opts.AnthropicBaseURL, "/")
	if anthropicBase == "" {
		anthropicBase = "https://api.anthropic.com"
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	retries := opts.Retries
	if retries <= 0 {
		retries = defaultRetries
	}
	sleep := opts.Sleep
	if sleep == nil {
		sleep = time.Sleep
	}
	return &Client{
		geminiAPIKey:     opts.GeminiAPIKey,
		geminiBaseURL:    geminiBase,
		anthropicAPIKey:  opts.AnthropicAPIKey,
		anthropicBaseURL: anthropicBase,
		client:           client,
		retries:          retries,
		sleep:            sleep,
	}
}

// Generate runs one completion against the provider the model belongs to.
func (c *Client) Generate(ctx context.Context, model, prompt string, maxTokens int) (string, error) {
	if strings.HasPrefix(model, "gemini-") {
		return c.generateGemini(ctx, model, prompt, maxTokens)
	}
	return c.generateAnthropic(ctx, model, prompt, maxTokens)
}

// GenerateWithRetry retries transient failures with exponential backoff.
// The final attempt's error is returned as-is.
func (c *Client) GenerateWithRetry(ctx context.Context, model, prompt string, maxTokens int) (string, error) {
	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		text, err := c.Generate(ctx, model, prompt, maxTokens)
		if err == nil {
			return text, nil
		}
		lastErr = err
		if attempt == c.retries-1 {
			break
		}
		wait := time.Duration(1<<attempt)*time.Second + 500*time.Millisecond
		select {
		case <-ctx.Done():
			return "", ctx.Err()
		default:
		}
		c.sleep(wait)
	}
	return "", lastErr
}

type geminiRequest struct {
	Contents         []geminiContent        `json:"contents"`
	GenerationConfig geminiGenerationConfig `json:"generationConfig"`
}

type geminiContent struct {
	Role  string       `json:"role"`
	Parts []geminiPart `json:"parts"`
}

type geminiPart struct {
	Text string `json:"text,omitempty"`
}

type geminiGenerationConfig struct {
	MaxOutputTokens int     `json:"maxOutputTokens,omitempty"`
	Temperature     float64 `json:"temperature,omitempty"`
}

type geminiResponse struct {
	Candidates []struct {
		Content geminiContent `json:"content"`
	} `json:"candidates"`
}

func (c *Client) generateGemini(ctx context.Context, model, prompt string, maxTokens int) (string, error) {
	if c.geminiAPIKey == "" {
		return "", errors.New("gemini api key is not configured")
	}
	payload := geminiRequest{
		Contents: []geminiContent{{
			Role:  "user",
			Parts: []geminiPart{{Text: prompt}},
		}},
		GenerationConfig: geminiGenerationConfig{
			MaxOutputTokens: maxTokens,
			Temperature:     0.7,
		},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", err
	}
	endpoint := fmt.Sprintf("%s/models/%s:generateContent", c.geminiBaseURL, model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.geminiAPIKey)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("gemini: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("gemini: unexpected status %d", resp.StatusCode)
	}
	var out geminiResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("gemini: decode response: %w", err)
	}
	for _, cand := range out.Candidates {
		var sb strings.Builder
		for _, part := range cand.Content.Parts {
			sb.WriteString(part.Text)
		}
		if text := strings.TrimSpace(sb.String()); text != "" {
			return text, nil
		}
	}
	return "", errors.New("gemini: empty response")
}

type anthropicRequest struct {
	Model     string             `json:"model"`
	MaxTokens int                `json:"max_tokens"`
	Messages  []anthropicMessage `json:"messages"`
}

type anthropicMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type anthropicResponse struct {
	Content []struct {
		Type string `json:"type"`
		Text string `json:"text"`
	} `json:"content"`
}

func (c *Client) generateAnthropic(ctx context.Context, model, prompt string, maxTokens int) (string, error) {
	if c.anthropicAPIKey == "" {
		return "", errors.New("anthropic api key is not configured")
	}
	payload := anthropicRequest{
		Model:     model,
		MaxTokens: maxTokens,
		Messages:  []anthropicMessage{{Role: "user", Content: prompt}},
	}
	var buf bytes.Buffer
	if err := json.NewEncoder(&buf).Encode(payload); err != nil {
		return "", err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.anthropicBaseURL+"/v1/messages", &buf)
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-api-key", c.anthropicAPIKey)
	req.Header.Set("anthropic-version", anthropicVersion)

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("anthropic: %w", err)
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	if resp.StatusCode >= 300 {
		return "", fmt.Errorf("anthropic: unexpected status %d", resp.StatusCode)
	}
	var out anthropicResponse
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return "", fmt.Errorf("anthropic: decode response: %w", err)
	}
	for _, block := range out.Content {
		if text := strings.TrimSpace(block.Text); text != "" {
			return text, nil
		}
	}
	return "", errors.New("anthropic: empty response")
}
