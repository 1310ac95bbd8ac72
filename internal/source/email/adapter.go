package email

import (
	"context"
	"fmt"

	"github.com/hyan/noteflow/internal/model"
	"github.com/hyan/noteflow/internal/source"
)

// fetchLimit bounds how many unseen messages one poll pulls.
const fetchLimit = 50

// Adapter implements source.MessageSource for an IMAP mailbox. Each
// unseen mail becomes one message: subject as explicit title, text or
// HTML body as content, binary parts carried along so cid: references
// and attachment placeholders resolve locally.
type Adapter struct {
	client   *IMAPClient
	username string
}

var _ source.MessageSource = (*Adapter)(nil)

// NewAdapter creates a new email message source.
func NewAdapter(host, port, username, password string, useTLS bool) *Adapter {
	return &Adapter{
		client:   NewIMAPClient(host, port, username, password, useTLS),
		username: username,
	}
}

// Name returns the source identifier for email.
func (a *Adapter) Name() string {
	return "email"
}

// Validate verifies IMAP credentials by connecting, authenticating,
// and selecting INBOX.
func (a *Adapter) Validate(ctx context.Context) (string, error) {
	client, err := a.client.Connect(ctx)
	if err != nil {
		return "", fmt.Errorf("validating email connection: %w", err)
	}
	defer func() { _ = client.Logout().Wait() }()

	if _, err := client.Select("INBOX", nil).Wait(); err != nil {
		return "", fmt.Errorf("selecting INBOX: %w", err)
	}

	return a.username, nil
}

// Fetch retrieves unseen mailbox messages in delivery order. There is
// no server-side verify mode for IMAP, so verifyOnly degrades to a
// connection check with no fetch.
func (a *Adapter) Fetch(ctx context.Context, verifyOnly bool) ([]model.Message, error) {
	if verifyOnly {
		if _, err := a.Validate(ctx); err != nil {
			return nil, err
		}
		return nil, nil
	}

	parsed, err := a.client.FetchUnseen(ctx, fetchLimit)
	if err != nil {
		return nil, fmt.Errorf("fetching email messages: %w", err)
	}

	msgs := make([]model.Message, 0, len(parsed))
	for _, p := range parsed {
		msgs = append(msgs, toMessage(p))
	}
	return msgs, nil
}

// toMessage maps a parsed mail onto the ingestion message shape.
func toMessage(p ParsedMessage) model.Message {
	content := p.TextBody
	if content == "" {
		content = p.HTMLBody
	}

	msg := model.Message{
		ID:        int64(p.Envelope.UID),
		Title:     p.Envelope.Subject,
		Content:   content,
		CreatedAt: p.Envelope.Date,
	}
	for _, att := range p.Attachments {
		msg.Attachments = append(msg.Attachments, model.Attachment{
			Name: att.Name,
			Data: att.Data,
		})
	}
	return msg
}
