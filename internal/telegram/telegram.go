package telegram

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
	"unicode/utf8"
)

const (
	timeout = 10 * time.Second

	// ParseModeMarkdown is the legacy Markdown dialect used for all messages.
	ParseModeMarkdown = "Markdown"

	// MaxMessageLength is the Bot API limit for a text message, in characters
	MaxMessageLength = 4096
)

var apiBaseURL = "https://api.telegram.org/bot"

// Client sends messages through the Telegram Bot API. One client serves any number of chats.
type Client struct {
	botToken   string
	httpClient *http.Client
}

// APIError is a request the Bot API answered with ok=false
type APIError struct {
	StatusCode  int
	Code        int
	Description string
	// RetryAfter is set when Telegram rate limits the bot
	RetryAfter time.Duration
}

func (e *APIError) Error() string {
	if e.RetryAfter > 0 {
		return fmt.Sprintf("telegram API error %d: %s (retry after %v)", e.Code, e.Description, e.RetryAfter)
	}
	return fmt.Sprintf("telegram API error %d: %s", e.Code, e.Description)
}

type sendMessageRequest struct {
	ChatID                string `json:"chat_id"`
	Text                  string `json:"text"`
	ParseMode             string `json:"parse_mode"`
	DisableWebPagePreview bool   `json:"disable_web_page_preview"`
}

type apiResponse struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
	Parameters  *struct {
		RetryAfter int `json:"retry_after"`
	} `json:"parameters"`
}

// NewClient creates a new Telegram client
func NewClient(botToken string) (*Client, error) {
	if botToken == "" {
		return nil, fmt.Errorf("bot token is required")
	}

	return &Client{
		botToken: botToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}, nil
}

// SendMessage sends a Markdown text message to chatID, which may be a numeric chat ID
// or a public channel username such as "@canal". Text longer than MaxMessageLength is cut.
func (c *Client) SendMessage(ctx context.Context, chatID, text string) error {
	if chatID == "" {
		return fmt.Errorf("chat ID is required")
	}
	if text == "" {
		return fmt.Errorf("message text is required")
	}

	body, err := json.Marshal(sendMessageRequest{
		ChatID:                chatID,
		Text:                  truncate(text, MaxMessageLength),
		ParseMode:             ParseModeMarkdown,
		DisableWebPagePreview: true,
	})
	if err != nil {
		return fmt.Errorf("marshaling payload: %w", err)
	}

	return c.call(ctx, "sendMessage", body)
}

// call POSTs a JSON body to a Bot API method and decodes the envelope
func (c *Client) call(ctx context.Context, method string, body []byte) error {
	url := fmt.Sprintf("%s%s/%s", apiBaseURL, c.botToken, method)

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("sending request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("reading response: %w", err)
	}

	var result apiResponse
	if err := json.Unmarshal(raw, &result); err != nil {
		if resp.StatusCode != http.StatusOK {
			return fmt.Errorf("telegram API error (status %d): %s", resp.StatusCode, string(raw))
		}
		return fmt.Errorf("parsing response: %w", err)
	}

	if !result.OK {
		apiErr := &APIError{
			StatusCode:  resp.StatusCode,
			Code:        result.ErrorCode,
			Description: result.Description,
		}
		if result.Parameters != nil {
			apiErr.RetryAfter = time.Duration(result.Parameters.RetryAfter) * time.Second
		}
		return apiErr
	}

	return nil
}

// truncate cuts s to at most limit characters, marking the cut with an ellipsis
func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	runes := []rune(s)
	return string(runes[:limit-1]) + "…"
}
