package dispatch

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"
)

// Notifier pushes one rendered notification to the external chat transport.
// Implementations must return an error unless the transport confirmed
// receipt; the dispatcher only marks delivery on success.
type Notifier interface {
	Push(ctx context.Context, target, text string) error
}

// BotNotifier delivers via an HTTP bot API: one JSON POST per push, bounded
// by the client timeout so a slow transport cannot stall the batch.
type BotNotifier struct {
	Endpoint string
	Token    string
	Client   *http.Client
}

// NewBotNotifier builds a notifier with the given timeout.
func NewBotNotifier(endpoint, token string, timeout time.Duration) *BotNotifier {
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	return &BotNotifier{
		Endpoint: endpoint,
		Token:    token,
		Client:   &http.Client{Timeout: timeout},
	}
}

type pushPayload struct {
	Target string `json:"target"`
	Text   string `json:"text"`
}

func (b *BotNotifier) Push(ctx context.Context, target, text string) error {
	if b.Endpoint == "" {
		return fmt.Errorf("delivery endpoint not configured")
	}
	body, err := json.Marshal(pushPayload{Target: target, Text: text})
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.Endpoint, bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	if b.Token != "" {
		req.Header.Set("Authorization", "Bearer "+b.Token)
	}
	resp, err := b.Client.Do(req)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("delivery push: unexpected status %s", resp.Status)
	}
	return nil
}
