package dispatch

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/example/provider-matching/internal/models"
)

// WebhookDispatcher delivers match offers over WebSocket when the provider
// has a live session, falling back to an HTTP webhook otherwise.
type WebhookDispatcher struct {
	Endpoint string
	Client   *http.Client
	WS       *WSRegistry
}

func NewWebhookDispatcher(endpoint string, ws *WSRegistry) *WebhookDispatcher {
	return &WebhookDispatcher{Endpoint: endpoint, Client: &http.Client{Timeout: 3 * time.Second}, WS: ws}
}

func (d *WebhookDispatcher) Offer(providerID string, offer models.MatchOffer) error {
	if d.WS != nil {
		err := d.WS.Offer(providerID, offer)
		if err == nil {
			return nil
		}
		if !errors.Is(err, ErrNoSession) {
			return err
		}
	}
	if d.Endpoint == "" {
		return ErrNoSession
	}
	b, err := json.Marshal(offer)
	if err != nil {
		return err
	}
	resp, err := d.Client.Post(d.Endpoint, "application/json", bytes.NewReader(b))
	if err != nil {
		return fmt.Errorf("webhook post: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode >= 300 {
		return fmt.Errorf("webhook status %d", resp.StatusCode)
	}
	return nil
}
