package summary

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"golang.org/x/oauth2"
)

// HTTPGenerator talks to an OpenAI-compatible chat completions endpoint.
type HTTPGenerator struct {
	client   *http.Client
	endpoint string
	model    string
}

type HTTPOptions struct {
	Endpoint string
	Model    string
	APIKey   string
	Timeout  time.Duration
}

func NewHTTPGenerator(ctx context.Context, opts HTTPOptions) (*HTTPGenerator, error) {
	endpoint := strings.TrimRight(strings.TrimSpace(opts.Endpoint), "/")
	if endpoint == "" {
		return nil, errors.New("summary endpoint is required")
	}
	if strings.TrimSpace(opts.Model) == "" {
		return nil, errors.New("summary model is required")
	}
	client := http.DefaultClient
	if opts.APIKey != "" {
		client = oauth2.NewClient(ctx, oauth2.StaticTokenSource(&oauth2.Token{AccessToken: opts.APIKey}))
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	withTimeout := *client
	withTimeout.Timeout = timeout
	return &HTTPGenerator{client: &withTimeout, endpoint: endpoint, model: opts.Model}, nil
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model          string            `json:"model"`
	Messages       []chatMessage     `json:"messages"`
	ResponseFormat map[string]string `json:"response_format"`
	Temperature    float64           `json:"temperature"`
}

type chatResponse struct {
	Choices []struct {
		Message chatMessage `json:"message"`
	} `json:"choices"`
}

func (g *HTTPGenerator) Generate(ctx context.Context, in Input) (Summary, error) {
	body, err := json.Marshal(chatRequest{
		Model: g.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: userPrompt(in)},
		},
		ResponseFormat: map[string]string{"type": "json_object"},
		Temperature:    0.4,
	})
	if err != nil {
		return Summary{}, fmt.Errorf("marshal request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint+"/chat/completions", bytes.NewReader(body))
	if err != nil {
		return Summary{}, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := g.client.Do(req)
	if err != nil {
		return Summary{}, fmt.Errorf("call generator: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return Summary{}, fmt.Errorf("generator returned %d: %s", resp.StatusCode, strings.TrimSpace(string(snippet)))
	}
	var parsed chatResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return Summary{}, fmt.Errorf("decode response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return Summary{}, errors.New("generator returned no choices")
	}
	return parseSummary(parsed.Choices[0].Message.Content)
}

func parseSummary(content string) (Summary, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	var s Summary
	if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &s); err != nil {
		return Summary{}, fmt.Errorf("parse summary: %w", err)
	}
	if strings.TrimSpace(s.Summary) == "" {
		return Summary{}, errors.New("generator returned an empty summary")
	}
	return s, nil
}
