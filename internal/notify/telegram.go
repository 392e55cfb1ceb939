package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/futuremakers/feedback-service/internal/config"
)

// TelegramNotifier delivers messages through the Telegram Bot API.
// When disabled it no-ops on every send, which keeps local development
// free of bot credentials.
type TelegramNotifier struct {
	enabled bool
	baseURL string
	token   string
	client  *http.Client
	logger  *zap.Logger
}

// NewTelegramFromConfig builds a notifier from the application configuration.
func NewTelegramFromConfig(cfg config.NotifyConfig, logger *zap.Logger) *TelegramNotifier {
	return &TelegramNotifier{
		enabled: cfg.Enabled,
		baseURL: cfg.TelegramAPI,
		token:   cfg.TelegramToken,
		client:  &http.Client{Timeout: 10 * time.Second},
		logger:  logger,
	}
}

type sendMessageRequest struct {
	ChatID string `json:"chat_id"`
	Text   string `json:"text"`
}

// Send posts one sendMessage call for the given chat ID.
func (t *TelegramNotifier) Send(ctx context.Context, recipientRef, text string) error {
	if !t.enabled {
		t.logger.Debug("notifier disabled; dropping message", zap.String("recipient", recipientRef))
		return nil
	}
	if recipientRef == "" {
		return fmt.Errorf("recipient reference is required")
	}

	body, err := json.Marshal(sendMessageRequest{ChatID: recipientRef, Text: text})
	if err != nil {
		return err
	}

	url := fmt.Sprintf("%s/bot%s/sendMessage", t.baseURL, t.token)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := t.client.Do(req)
	if err != nil {
		return fmt.Errorf("telegram send failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		payload, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return fmt.Errorf("telegram send failed: status %d: %s", resp.StatusCode, payload)
	}
	return nil
}
