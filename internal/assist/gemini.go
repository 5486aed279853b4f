// Package assist wraps the Gemini generateContent REST endpoint. Calls are
// stateless request/response: no caching, no retries, no conversation state.
package assist

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const (
	defaultBaseURL = "https://generativelanguage.googleapis.com"
	defaultModel   = "gemini-3-flash-preview"
)

// Client calls the generative-text API with a model identifier and a prompt.
type Client struct {
	baseURL    string
	apiKey     string
	model      string
	httpClient *http.Client
}

// NewClient creates a client for the hosted endpoint.
func NewClient(apiKey string) *Client {
	return &Client{
		baseURL:    defaultBaseURL,
		apiKey:     apiKey,
		model:      defaultModel,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

// NewClientWithBaseURL creates a client against a custom endpoint (tests).
func NewClientWithBaseURL(apiKey, baseURL string) *Client {
	c := NewClient(apiKey)
	c.baseURL = strings.TrimRight(baseURL, "/")
	return c
}

type generateRequest struct {
	Contents []content `json:"contents"`
}

type content struct {
	Parts []part `json:"parts"`
}

type part struct {
	Text string `json:"text"`
}

type generateResponse struct {
	Candidates []struct {
		Content content `json:"content"`
	} `json:"candidates"`
	Error *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// Generate sends a single prompt and returns the generated text.
func (c *Client) Generate(ctx context.Context, prompt string) (string, error) {
	body, err := json.Marshal(generateRequest{
		Contents: []content{{Parts: []part{{Text: prompt}}}},
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	url := fmt.Sprintf("%s/v1beta/models/%s:generateContent", c.baseURL, c.model)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("call text api: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("read response: %w", err)
	}

	var out generateResponse
	if err := json.Unmarshal(raw, &out); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		if out.Error != nil && out.Error.Message != "" {
			return "", fmt.Errorf("text api: %s", out.Error.Message)
		}
		return "", fmt.Errorf("text api: status %d", resp.StatusCode)
	}
	if len(out.Candidates) == 0 || len(out.Candidates[0].Content.Parts) == 0 {
		return "", fmt.Errorf("text api: empty response")
	}

	var sb strings.Builder
	for _, p := range out.Candidates[0].Content.Parts {
		sb.WriteString(p.Text)
	}
	return sb.String(), nil
}

// SermonOutline drafts a sermon outline for the given theme.
func (c *Client) SermonOutline(ctx context.Context, theme string) (string, error) {
	prompt := fmt.Sprintf(`Generate a detailed sermon outline for a church in Liberia. Theme: %s.
Include: Scripture references, 3 main points, and a closing prayer.
Tailor the tone to Living Faith Champions' Assembly (LFCA).`, theme)
	return c.Generate(ctx, prompt)
}

// Announcement drafts a church announcement from free-form event details.
func (c *Client) Announcement(ctx context.Context, eventDetails string) (string, error) {
	prompt := fmt.Sprintf(`Draft a professional church announcement based on these details: %s.
Make it suitable for social media and Sunday service announcements.`, eventDetails)
	return c.Generate(ctx, prompt)
}

// SummarizeFinances asks for a leadership-facing summary of financial data.
func (c *Client) SummarizeFinances(ctx context.Context, data any) (string, error) {
	encoded, err := json.Marshal(data)
	if err != nil {
		return "", fmt.Errorf("marshal finance data: %w", err)
	}
	prompt := fmt.Sprintf("Analyze this church financial data and provide a summary of trends and recommendations for the leadership: %s", encoded)
	return c.Generate(ctx, prompt)
}

// Chat answers an administrator query given dashboard context.
func (c *Client) Chat(ctx context.Context, query, contextText string) (string, error) {
	prompt := fmt.Sprintf(`You are a helpful Church Administrator Assistant for LFCA in Liberia.
Current Context: %s
User Query: %s`, contextText, query)
	return c.Generate(ctx, prompt)
}
