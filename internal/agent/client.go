// Package agent talks to the hosted Tess agent endpoint that backs
// both candidate analysis and the recruiting chatbot.
package agent

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"talentscope/internal/config"
	"talentscope/internal/logger"
)

// executeRequest is the wire payload of the agent execute endpoint.
// wait_execution makes the API block until the completion is ready
// instead of returning a "starting" status with a null output.
type executeRequest struct {
	Texto         string `json:"texto"`
	Temperature   string `json:"temperature"`
	Model         string `json:"model"`
	MaxLength     int    `json:"maxlength"`
	Language      string `json:"language"`
	WaitExecution bool   `json:"wait_execution"`
}

// Client calls the remote agent over HTTP.
type Client struct {
	cfg        *config.AgentConfig
	httpClient *http.Client
}

// NewClient builds a client with the configured request timeout.
func NewClient(cfg *config.AgentConfig) *Client {
	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 100 * time.Second
	}
	return &Client{
		cfg:        cfg,
		httpClient: &http.Client{Timeout: timeout},
	}
}

// Configured reports whether the remote agent can be called at all.
func (c *Client) Configured() bool {
	return c.cfg.Configured()
}

// Execute sends text to the agent and returns the completion output.
// maxLength caps the reply token budget; zero falls back to the
// configured default.
func (c *Client) Execute(ctx context.Context, text string, maxLength int) (string, error) {
	if !c.Configured() {
		return "", fmt.Errorf("agent API key or agent id not configured")
	}
	if maxLength <= 0 {
		maxLength = c.cfg.MaxLength
	}

	payload := executeRequest{
		Texto:         text,
		Temperature:   c.cfg.Temperature,
		Model:         c.cfg.Model,
		MaxLength:     maxLength,
		Language:      c.cfg.Language,
		WaitExecution: true,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return "", fmt.Errorf("marshaling agent request: %w", err)
	}

	url := c.cfg.AgentExecuteURL()
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("building agent request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)
	req.Header.Set("Content-Type", "application/json")

	logger.Debug().
		Str("url", url).
		Int("text_chars", len(text)).
		Str("model", c.cfg.Model).
		Msg("calling remote agent")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("calling agent: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(io.LimitReader(resp.Body, 4<<20))
	if err != nil {
		return "", fmt.Errorf("reading agent response: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		snippet := respBody
		if len(snippet) > 200 {
			snippet = snippet[:200]
		}
		return "", fmt.Errorf("agent returned HTTP %d: %s", resp.StatusCode, snippet)
	}

	var data map[string]interface{}
	if err := json.Unmarshal(respBody, &data); err != nil {
		return "", fmt.Errorf("decoding agent response: %w", err)
	}

	output := ExtractOutput(data)
	if output == "" {
		return "", fmt.Errorf("agent returned an empty output")
	}
	return output, nil
}

// ExtractOutput digs the completion text out of the response envelope.
// The canonical location is responses[0].output; older envelope shapes
// are checked afterwards, and as a last resort the raw JSON comes back
// so a downstream text parser can still try its luck.
func ExtractOutput(data map[string]interface{}) string {
	if responses, ok := data["responses"].([]interface{}); ok && len(responses) > 0 {
		if first, ok := responses[0].(map[string]interface{}); ok {
			if output := stringValue(first["output"]); output != "" {
				return output
			}
		}
	}

	for _, key := range []string{"output", "result", "message", "response"} {
		if output := stringValue(data[key]); output != "" {
			return output
		}
	}

	if inner, ok := data["data"].(map[string]interface{}); ok {
		if output := stringValue(inner["output"]); output != "" {
			return output
		}
	}

	raw, err := json.Marshal(data)
	if err != nil {
		return ""
	}
	return string(raw)
}

func stringValue(v interface{}) string {
	s, ok := v.(string)
	if !ok {
		return ""
	}
	return s
}
