package telegram

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
)

// Client exposes the Bot API operations used by the application.
type Client interface {
	SendMessage(ctx context.Context, req SendMessageRequest) (*SendMessageResponse, error)
}

// APIClient is a resty-backed implementation of Client bound to one bot token.
type APIClient struct {
	httpClient *resty.Client
}

// NewClient builds a Telegram Bot API client for the given token.
func NewClient(baseURL, token string) *APIClient {
	base := strings.TrimSuffix(baseURL, "/")

	restyClient := resty.New()
	restyClient.
		SetBaseURL(fmt.Sprintf("%s/bot%s", base, token)).
		SetHeader("Content-Type", "application/json").
		SetTimeout(15 * time.Second)

	return &APIClient{httpClient: restyClient}
}

// SendMessageRequest represents a simplified sendMessage payload.
type SendMessageRequest struct {
	ChatID         int64
	Text           string
	Markdown       bool
	Keyboard       [][]string // reply keyboard rows; nil leaves the keyboard untouched
	RemoveKeyboard bool
}

// SendMessageResponse mirrors the successful Bot API envelope.
type SendMessageResponse struct {
	OK     bool `json:"ok"`
	Result struct {
		MessageID int64 `json:"message_id"`
	} `json:"result"`
}

// apiError represents a Bot API error payload.
type apiError struct {
	OK          bool   `json:"ok"`
	ErrorCode   int    `json:"error_code"`
	Description string `json:"description"`
}

type keyboardButton struct {
	Text string `json:"text"`
}

// SendMessage delivers a text message, optionally attaching or removing a
// reply keyboard.
func (c *APIClient) SendMessage(ctx context.Context, req SendMessageRequest) (*SendMessageResponse, error) {
	payload := map[string]any{
		"chat_id": req.ChatID,
		"text":    req.Text,
	}
	if req.Markdown {
		payload["parse_mode"] = "Markdown"
	}

	switch {
	case len(req.Keyboard) > 0:
		rows := make([][]keyboardButton, 0, len(req.Keyboard))
		for _, row := range req.Keyboard {
			buttons := make([]keyboardButton, 0, len(row))
			for _, label := range row {
				buttons = append(buttons, keyboardButton{Text: label})
			}
			rows = append(rows, buttons)
		}
		payload["reply_markup"] = map[string]any{
			"keyboard":        rows,
			"resize_keyboard": true,
		}
	case req.RemoveKeyboard:
		payload["reply_markup"] = map[string]any{"remove_keyboard": true}
	}

	result := new(SendMessageResponse)
	apiErr := new(apiError)

	resp, err := c.httpClient.R().
		SetContext(ctx).
		SetBody(payload).
		SetResult(result).
		SetError(apiErr).
		Post("/sendMessage")
	if err != nil {
		return nil, fmt.Errorf("send telegram message: %w", err)
	}

	if resp.StatusCode() >= http.StatusBadRequest {
		message := ""
		code := resp.StatusCode()
		if apiErr != nil {
			message = apiErr.Description
			if apiErr.ErrorCode != 0 {
				code = apiErr.ErrorCode
			}
		}
		return nil, fmt.Errorf("telegram api error: code=%d, description=%s", code, message)
	}

	return result, nil
}
