package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"os"
	"strings"
	"time"
)

const (
	// DefaultBaseURL is the OpenAI API endpoint. Any OpenAI-compatible
	// service works by overriding the base URL.
	DefaultBaseURL = "https://api.openai.com/v1"

	defaultTimeout = 90 * time.Second
)

// ClientConfig configures a Client. Nothing is read from ambient globals;
// tests inject a mock transport or point BaseURL at a local server.
type ClientConfig struct {
	BaseURL     string
	APIKey      string
	Model       string
	Temperature float64
	// HTTPClient is optional; a client with a 90s timeout is used when nil.
	HTTPClient *http.Client
	Debug      bool
}

// Client talks to an OpenAI-compatible chat-completions endpoint.
type Client struct {
	cfg    ClientConfig
	client *http.Client
}

// NewClient creates a completion client for the configured backend.
func NewClient(cfg ClientConfig) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	client := cfg.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: defaultTimeout}
	}
	return &Client{cfg: cfg, client: client}
}

type chatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type chatRequest struct {
	Model       string        `json:"model"`
	Messages    []chatMessage `json:"messages"`
	Temperature float64       `json:"temperature"`
	// Some OpenAI-compatible proxies default to streaming when the field is
	// omitted, so stream:false is sent explicitly.
	Stream bool `json:"stream"`
}

type chatResponse struct {
	Choices []struct {
		Message struct {
			Role    string `json:"role"`
			Content string `json:"content"`
		} `json:"message"`
		FinishReason string `json:"finish_reason"`
	} `json:"choices"`
	Usage *Usage `json:"usage"`
}

type errorResponse struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

// Complete sends one prompt to the backend and returns the raw response
// text with its cost estimate. A single attempt is made; any failure is
// returned as *Error.
func (c *Client) Complete(ctx context.Context, prompt string) (*CompletionResult, error) {
	reqBody := chatRequest{
		Model:       c.cfg.Model,
		Messages:    []chatMessage{{Role: "user", Content: prompt}},
		Temperature: c.cfg.Temperature,
		Stream:      false,
	}

	payload, err := json.Marshal(reqBody)
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("failed to encode request: %v", err)}
	}

	url := strings.TrimRight(c.cfg.BaseURL, "/") + "/chat/completions"
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("failed to build request: %v", err)}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	if c.cfg.Debug {
		fmt.Fprintf(os.Stderr, "[DEBUG] Backend: POST %s (model=%s, prompt=%d bytes)\n",
			url, c.cfg.Model, len(prompt))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, &Error{Message: fmt.Sprintf("request failed: %v", err)}
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to read response: %v", err)}
	}

	if resp.StatusCode != http.StatusOK {
		var apiErr errorResponse
		if err := json.Unmarshal(body, &apiErr); err == nil && apiErr.Error.Message != "" {
			return nil, &Error{StatusCode: resp.StatusCode, Message: apiErr.Error.Message}
		}
		return nil, &Error{StatusCode: resp.StatusCode, Message: strings.TrimSpace(string(body))}
	}

	var chat chatResponse
	if err := json.Unmarshal(body, &chat); err != nil {
		return nil, &Error{StatusCode: resp.StatusCode, Message: fmt.Sprintf("failed to parse response: %v", err)}
	}
	if len(chat.Choices) == 0 {
		return nil, &Error{StatusCode: resp.StatusCode, Message: "response contained no choices"}
	}

	result := &CompletionResult{
		Text:  chat.Choices[0].Message.Content,
		Usage: chat.Usage,
		Cost:  EstimateCost(c.cfg.Model, chat.Usage),
	}

	if c.cfg.Debug {
		fmt.Fprintf(os.Stderr, "[DEBUG] Backend: response %d bytes, cost %s\n",
			len(result.Text), result.Cost)
	}

	return result, nil
}
