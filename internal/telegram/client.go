package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultAPIURL = "https://api.telegram.org"

// Client is a minimal Telegram Bot API client covering the calls the bot
// needs: sending messages and long-polling for updates.
type Client struct {
	botToken string
	apiURL   string
	client   *http.Client
}

// NewClient creates a Bot API client for the given token.
func NewClient(botToken string) *Client {
	return &Client{
		botToken: botToken,
		apiURL:   defaultAPIURL,
		// Long polls hold the connection open; keep the client timeout
		// comfortably above the getUpdates timeout parameter.
		client: &http.Client{Timeout: 90 * time.Second},
	}
}

// NewClientWithURL is like NewClient but targets a custom API base URL.
// Used in tests against a local HTTP server.
func NewClientWithURL(botToken, apiURL string) *Client {
	c := NewClient(botToken)
	c.apiURL = strings.TrimSuffix(apiURL, "/")
	return c
}

type sendMessageRequest struct {
	ChatID    int64  `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode,omitempty"`
}

type getUpdatesRequest struct {
	Offset  int64 `json:"offset,omitempty"`
	Timeout int   `json:"timeout,omitempty"`
}

type apiResponse struct {
	OK          bool            `json:"ok"`
	Description string          `json:"description,omitempty"`
	Result      json.RawMessage `json:"result,omitempty"`
}

// SendMessage delivers text to the given chat rendered as Markdown.
func (c *Client) SendMessage(ctx context.Context, chatID int64, text string) error {
	payload := sendMessageRequest{
		ChatID:    chatID,
		Text:      text,
		ParseMode: "Markdown",
	}

	if _, err := c.callAPI(ctx, "sendMessage", payload); err != nil {
		return fmt.Errorf("sendMessage failed: %w", err)
	}
	return nil
}

// GetUpdates long-polls for new updates. Offset should be one past the last
// update ID already handled; timeout is the long-poll hold time in seconds.
func (c *Client) GetUpdates(ctx context.Context, offset int64, timeout int) ([]Update, error) {
	payload := getUpdatesRequest{
		Offset:  offset,
		Timeout: timeout,
	}

	result, err := c.callAPI(ctx, "getUpdates", payload)
	if err != nil {
		return nil, fmt.Errorf("getUpdates failed: %w", err)
	}

	var updates []Update
	if err := json.Unmarshal(result, &updates); err != nil {
		return nil, fmt.Errorf("failed to parse updates: %w", err)
	}
	return updates, nil
}

// callAPI posts a JSON payload to a Bot API method and returns the result.
func (c *Client) callAPI(ctx context.Context, method string, payload interface{}) (json.RawMessage, error) {
	url := fmt.Sprintf("%s/bot%s/%s", c.apiURL, c.botToken, method)

	jsonData, err := json.Marshal(payload)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal payload: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(jsonData)))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	responseBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	var apiResp apiResponse
	if err := json.Unmarshal(responseBody, &apiResp); err != nil {
		return nil, fmt.Errorf("failed to parse response (status %d): %w", resp.StatusCode, err)
	}

	if !apiResp.OK {
		return nil, fmt.Errorf("API error (status %d): %s", resp.StatusCode, apiResp.Description)
	}

	return apiResp.Result, nil
}
