// Package telegram delivers operator notifications through the Telegram Bot
// API. Delivery is best-effort; callers treat failures as non-fatal.
package telegram

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"counterTradeBot/internal/ports"
)

const defaultBaseURL = "https://api.telegram.org"

// Notifier implements the ports.Notifier interface using the Telegram Bot API.
type Notifier struct {
	httpClient *http.Client
	baseURL    string
	botToken   string
	chatID     string
	logger     ports.Logger
}

// Config holds configuration for the Telegram notifier.
type Config struct {
	BotToken string
	ChatID   string
	BaseURL  string // Optional, for testing
	Logger   ports.Logger
}

// New creates a new Telegram notifier.
func New(cfg Config) (*Notifier, error) {
	if cfg.BotToken == "" || cfg.ChatID == "" {
		return nil, fmt.Errorf("%w: telegram bot token and chat id are required", ports.ErrConfigurationError)
	}
	if cfg.Logger == nil {
		return nil, fmt.Errorf("%w: logger is required for telegram notifier", ports.ErrConfigurationError)
	}

	baseURL := cfg.BaseURL
	if baseURL == "" {
		baseURL = defaultBaseURL
	}

	return &Notifier{
		httpClient: &http.Client{Timeout: 10 * time.Second},
		baseURL:    baseURL,
		botToken:   cfg.BotToken,
		chatID:     cfg.ChatID,
		logger:     cfg.Logger,
	}, nil
}

// Notify sends a text message to the configured chat.
func (n *Notifier) Notify(ctx context.Context, text string) error {
	op := "Notify"

	payload := map[string]string{
		"chat_id": n.chatID,
		"text":    text,
	}
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("%s failed: %w: %v", op, ports.ErrNotifyFailed, err)
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", n.baseURL, n.botToken)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, strings.NewReader(string(body)))
	if err != nil {
		return fmt.Errorf("%s failed: %w: %v", op, ports.ErrNotifyFailed, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := n.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s failed: %w: %v", op, ports.ErrNotifyFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		// Telegram returns a JSON error description; keep a short excerpt.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 256))
		return fmt.Errorf("%s failed: %w: status %d: %s", op, ports.ErrNotifyFailed, resp.StatusCode, string(snippet))
	}

	n.logger.Debug(ctx, op+": Notification delivered")
	return nil
}

// NoopNotifier satisfies ports.Notifier when no notification channel is
// configured.
type NoopNotifier struct{}

// Notify discards the message.
func (NoopNotifier) Notify(ctx context.Context, text string) error { return nil }
