// Package push delivers notifications to instant channels: Telegram chats
// and the desktop notification daemon.
package push

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"html"
	"io"
	"net/http"
	"time"

	"github.com/notexe/fittrack/internal/notify"
	"github.com/notexe/fittrack/internal/report"
)

const defaultTelegramURL = "https://api.telegram.org"

// Telegram sends notifications via the Telegram Bot API.
type Telegram struct {
	baseURL  string
	botToken string
	chatID   string
	client   *http.Client
}

// NewTelegram creates a new Telegram sender. An empty baseURL selects the
// public Bot API.
func NewTelegram(baseURL, botToken, chatID string) *Telegram {
	if baseURL == "" {
		baseURL = defaultTelegramURL
	}
	return &Telegram{
		baseURL:  baseURL,
		botToken: botToken,
		chatID:   chatID,
		client:   &http.Client{Timeout: 30 * time.Second},
	}
}

type telegramSendRequest struct {
	ChatID    string `json:"chat_id"`
	Text      string `json:"text"`
	ParseMode string `json:"parse_mode"`
}

type telegramResponse struct {
	OK          bool   `json:"ok"`
	Description string `json:"description,omitempty"`
}

// Send implements notify.Dispatcher.
func (t *Telegram) Send(ctx context.Context, n notify.Notification) error {
	title, body := report.Text(n)
	return t.SendMessage(ctx, "<b>"+html.EscapeString(title)+"</b>\n"+html.EscapeString(body))
}

// SendMessage sends an HTML formatted message to the configured chat.
func (t *Telegram) SendMessage(ctx context.Context, text string) error {
	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.botToken)

	payload := telegramSendRequest{
		ChatID:    t.chatID,
		Text:      text,
		ParseMode: "HTML",
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal telegram request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create telegram request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send telegram message: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read telegram response: %w", err)
	}

	var tgResp telegramResponse
	if err := json.Unmarshal(respBody, &tgResp); err != nil {
		return fmt.Errorf("failed to parse telegram response: %w", err)
	}

	if !tgResp.OK {
		return fmt.Errorf("telegram API error: %s", tgResp.Description)
	}

	return nil
}
