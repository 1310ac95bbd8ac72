package relay

import (
	"context"
	"fmt"
	"time"

	"github.com/hyan/noteflow/internal/model"
	"github.com/hyan/noteflow/internal/source"
)

// Adapter implements source.MessageSource for the relay service.
type Adapter struct {
	client *Client
}

var _ source.MessageSource = (*Adapter)(nil)

// NewAdapter creates a relay message source.
func NewAdapter(client *Client) *Adapter {
	return &Adapter{client: client}
}

// Name returns the source identifier for the relay.
func (a *Adapter) Name() string {
	return "relay"
}

// Client exposes the underlying relay client so the localizer can
// build attachment fetch URLs.
func (a *Adapter) Client() *Client {
	return a.client
}

// Validate performs a verify-only fetch to check that the API key is
// accepted by the relay.
func (a *Adapter) Validate(ctx context.Context) (string, error) {
	if _, err := a.client.Messages(ctx, true); err != nil {
		return "", fmt.Errorf("validating relay connection: %w", err)
	}
	return "relay API key accepted", nil
}

// Fetch retrieves the pending messages in delivery order.
func (a *Adapter) Fetch(ctx context.Context, verifyOnly bool) ([]model.Message, error) {
	resp, err := a.client.Messages(ctx, verifyOnly)
	if err != nil {
		return nil, err
	}

	msgs := make([]model.Message, 0, len(resp))
	for _, m := range resp {
		msgs = append(msgs, model.Message{
			ID:        m.ID,
			Title:     m.Title,
			Content:   m.Content,
			CreatedAt: time.Unix(m.CreatedAt, 0),
		})
	}
	return msgs, nil
}
