// Package openai implements the LLM scoring capability used by the
// evaluator. Any failure here is recovered upstream by the rule-based
// fallback, so the client reports errors instead of guessing.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"

	"github.com/wltsai/stockpulse/internal/contracts"
	"github.com/wltsai/stockpulse/pkg/config"
	"github.com/wltsai/stockpulse/pkg/httputil"
	"github.com/wltsai/stockpulse/pkg/logger"
)

const systemPrompt = `You are a market-impact analyst for Taiwan-listed equities.
Given one news headline or exchange announcement, judge its directional
impact on the mentioned instrument. Respond with strict JSON only:
{"direction": -1|0|1, "severity": 1-5, "confidence": 0.0-1.0,
 "horizon": "short"|"medium"|"long", "rationale": "<one sentence>"}`

// Client calls the chat completions API to score event text
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	apiKey     string
	model      string
	baseURL    string
}

// NewClient creates a new scoring client
func NewClient(httpClient *httputil.Client, log *logger.Logger, cfg config.OpenAIConfig) *Client {
	model := cfg.Model
	if model == "" {
		model = "gpt-4o-mini"
	}
	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = "https://api.openai.com"
	}
	return &Client{
		httpClient: httpClient,
		logger:     log,
		apiKey:     cfg.APIKey,
		model:      model,
		baseURL:    baseURL,
	}
}

// Available returns true if the client is configured with an API key
func (c *Client) Available() bool {
	return c.apiKey != ""
}

// chatRequest is the chat completions request body
type chatRequest struct {
	Model          string        `json:"model"`
	Messages       []chatMessage `json:"messages"`
	MaxTokens      int           `json:"max_tokens,omitempty"`
	Temperature    float64       `json:"temperature"`
	ResponseFormat *respFormat   `json:"response_format,omitempty"`
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type respFormat struct {
	Type string `json:"type"`
}

// chatResponse is the subset of the chat completions response we read
type chatResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Model string `json:"model"`
}

// judgmentJSON mirrors the JSON the model is instructed to emit
type judgmentJSON struct {
	Direction  int     `json:"direction"`
	Severity   int     `json:"severity"`
	Confidence float64 `json:"confidence"`
	Horizon    string  `json:"horizon"`
	Rationale  string  `json:"rationale"`
}

// Score sends the composed event text to the model and parses the
// structured judgment out of the response.
func (c *Client) Score(ctx context.Context, text string) (contracts.Judgment, error) {
	if !c.Available() {
		return contracts.Judgment{}, fmt.Errorf("openai scorer not configured")
	}

	body := chatRequest{
		Model: c.model,
		Messages: []chatMessage{
			{Role: "system", Content: systemPrompt},
			{Role: "user", Content: text},
		},
		MaxTokens:      256,
		Temperature:    0,
		ResponseFormat: &respFormat{Type: "json_object"},
	}

	jsonBody, err := json.Marshal(body)
	if err != nil {
		return contracts.Judgment{}, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/v1/chat/completions", bytes.NewReader(jsonBody))
	if err != nil {
		return contracts.Judgment{}, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.apiKey)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return contracts.Judgment{}, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return contracts.Judgment{}, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		return contracts.Judgment{}, fmt.Errorf("API error (status %d): %s", resp.StatusCode, string(respBody))
	}

	var parsed chatResponse
	if err := json.Unmarshal(respBody, &parsed); err != nil {
		return contracts.Judgment{}, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(parsed.Choices) == 0 {
		return contracts.Judgment{}, fmt.Errorf("empty choices in response")
	}

	judgment, err := parseJudgment(parsed.Choices[0].Message.Content)
	if err != nil {
		return contracts.Judgment{}, err
	}

	c.logger.WithFields(map[string]interface{}{
		"model":     parsed.Model,
		"direction": judgment.Direction,
		"severity":  judgment.Severity,
	}).Debug("Scored event text")

	return judgment, nil
}

// parseJudgment decodes the model output, tolerating code fences some
// models wrap around JSON despite instructions.
func parseJudgment(content string) (contracts.Judgment, error) {
	content = strings.TrimSpace(content)
	content = strings.TrimPrefix(content, "```json")
	content = strings.TrimPrefix(content, "```")
	content = strings.TrimSuffix(content, "```")
	content = strings.TrimSpace(content)

	var j judgmentJSON
	if err := json.Unmarshal([]byte(content), &j); err != nil {
		return contracts.Judgment{}, fmt.Errorf("malformed judgment JSON: %w", err)
	}

	return contracts.Judgment{
		Direction:  j.Direction,
		Severity:   j.Severity,
		Confidence: j.Confidence,
		Horizon:    contracts.Horizon(j.Horizon),
		Rationale:  j.Rationale,
	}.Clamp(), nil
}
