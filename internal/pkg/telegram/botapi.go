package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"storedash/internal/pkg/httpclient"
)

// DefaultBaseURL is the public Bot API host.
const DefaultBaseURL = "https://api.telegram.org"

// BotAPI is a direct Telegram Bot API client for pushes made outside an
// update context, such as the payment poller's admin notifications.
type BotAPI struct {
	client *httpclient.Client
}

// NewBotAPI creates a client for token against the public Bot API.
func NewBotAPI(token string) *BotAPI {
	return NewBotAPIWithBaseURL(DefaultBaseURL, token)
}

// NewBotAPIWithBaseURL targets a Bot API compatible server at baseURL.
func NewBotAPIWithBaseURL(baseURL, token string) *BotAPI {
	client := httpclient.New(baseURL+"/bot"+token).
		WithTimeout(15*time.Second).
		WithRetries(2, time.Second)
	return &BotAPI{client: client}
}

type apiReply struct {
	OK          bool   `json:"ok"`
	Description string `json:"description"`
	ErrorCode   int    `json:"error_code"`
}

// Call makes a raw API call and fails when Telegram answers ok:false.
func (b *BotAPI) Call(ctx context.Context, method string, params map[string]interface{}) error {
	resp, err := b.client.Request(ctx).
		SetHeader("Content-Type", "application/json").
		SetBody(params).
		Post("/" + method)
	if err != nil {
		return fmt.Errorf("telegram API call %s failed: %w", method, err)
	}

	var reply apiReply
	if err := json.Unmarshal(resp.Body(), &reply); err != nil {
		return fmt.Errorf("telegram API call %s: unreadable reply (HTTP %d)", method, resp.StatusCode())
	}
	if !reply.OK {
		return fmt.Errorf("telegram API call %s: %d %s", method, reply.ErrorCode, reply.Description)
	}
	return nil
}

// SendMessage sends an HTML text message.
func (b *BotAPI) SendMessage(ctx context.Context, chatID, text string, replyMarkup interface{}) error {
	params := map[string]interface{}{
		"chat_id":    chatID,
		"text":       text,
		"parse_mode": "HTML",
	}
	if replyMarkup != nil {
		params["reply_markup"] = replyMarkup
	}
	return b.Call(ctx, "sendMessage", params)
}

// SendPhoto sends a photo by file_id with an HTML caption.
func (b *BotAPI) SendPhoto(ctx context.Context, chatID, fileID, caption string, replyMarkup interface{}) error {
	params := map[string]interface{}{
		"chat_id":    chatID,
		"photo":      fileID,
		"caption":    caption,
		"parse_mode": "HTML",
	}
	if replyMarkup != nil {
		params["reply_markup"] = replyMarkup
	}
	return b.Call(ctx, "sendPhoto", params)
}
