// Package llm is a minimal OpenAI-compatible chat completions client. It
// intentionally supports only the single-shot, non-streaming call shape the
// document-generation pipelines need: one system prompt, one user prompt, an
// optional seed, and an optional JSON Schema response format.
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Config configures a Client.
type Config struct {
	BaseURL string
	APIKey  string
	Model   string
	Timeout time.Duration
}

// Client calls an OpenAI-compatible chat completions endpoint.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	timeout    time.Duration
	httpClient *http.Client
}

func New(cfg Config) *Client {
	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		model:      cfg.Model,
		timeout:    cfg.Timeout,
		httpClient: &http.Client{},
	}
}

// NewWithHTTPClient allows tests to inject a fake transport.
func NewWithHTTPClient(cfg Config, hc *http.Client) *Client {
	c := New(cfg)
	c.httpClient = hc
	return c
}

// Generate issues a single chat completion call and returns its content,
// ASCII-normalized, along with token usage.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (*GenerateResult, error) {
	body := chatCompletionRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: req.SystemPrompt},
			{Role: "user", Content: req.UserPrompt},
		},
		Temperature: req.Temperature,
		MaxTokens:   req.MaxTokens,
	}
	if req.Seed != 0 {
		seed := req.Seed
		body.Seed = &seed
	}
	if req.SchemaName != "" && req.Schema != nil {
		body.ResponseFormat = map[string]any{
			"type": "json_schema",
			"json_schema": map[string]any{
				"name":   req.SchemaName,
				"schema": req.Schema,
				"strict": true,
			},
		}
	}

	start := time.Now()
	var resp chatCompletionResponse
	if err := c.doJSON(ctx, http.MethodPost, "/chat/completions", body, &resp); err != nil {
		return nil, err
	}
	elapsed := time.Since(start)

	if len(resp.Choices) == 0 {
		return nil, fmt.Errorf("llm: response contained no choices")
	}

	return &GenerateResult{
		Content:          NormalizeASCII(resp.Choices[0].Message.Content),
		TokensUsed:       resp.Usage.TotalTokens,
		GenerationTimeMS: int(elapsed.Milliseconds()),
	}, nil
}

// doJSON encodes body, performs the request, and decodes a 2xx response
// into out. Non-2xx responses are returned as *HTTPError.
func (c *Client) doJSON(ctx context.Context, method, path string, body any, out any) error {
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			return fmt.Errorf("encode request body: %w", err)
		}
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, &buf)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	c.setHeaders(req)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("llm: request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response body: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return &HTTPError{StatusCode: resp.StatusCode, Body: string(respBody)}
	}

	if out != nil {
		if err := json.Unmarshal(respBody, out); err != nil {
			return fmt.Errorf("decode response body: %w", err)
		}
	}
	return nil
}

func (c *Client) setHeaders(req *http.Request) {
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
}

// NormalizeASCII decomposes accented characters (e.g. "é" -> "e") and drops
// any remaining non-ASCII runes, matching the upstream normalize_to_ascii
// behavior so generated text never carries characters a dental PMS might
// mangle.
func NormalizeASCII(s string) string {
	t := transform.Chain(norm.NFKD, runes.Remove(runes.In(unicode.Mn)))
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}

	var b strings.Builder
	b.Grow(len(out))
	for _, r := range out {
		if r <= unicode.MaxASCII {
			b.WriteRune(r)
		}
	}
	return b.String()
}
