// Package relay talks to the account-bound message relay service: the
// message endpoint delivering pending notes and the attachment
// endpoint serving email-derived binary parts.
package relay

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/hyan/noteflow/internal/source"
)

const (
	messagePath    = "/api/message"
	attachmentPath = "/api/email_attach"
)

// Client is a thin HTTP client for the relay API. All requests are
// keyed by the account API key.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
}

// NewClient creates a relay client. The baseURL should be the root URL
// of the relay service.
func NewClient(baseURL, apiKey string) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		apiKey:  apiKey,
		httpClient: &http.Client{
			Timeout: 30 * time.Second,
		},
	}
}

// Messages fetches the ordered pending messages for the account. When
// verifyOnly is set the relay treats the call as a key check; any
// returned message is still delivered.
func (c *Client) Messages(ctx context.Context, verifyOnly bool) ([]respMessage, error) {
	q := url.Values{}
	q.Set("apikey", c.apiKey)
	if verifyOnly {
		q.Set("verify", "1")
	}

	body, err := c.get(ctx, messagePath, q)
	if err != nil {
		return nil, err
	}

	var msgs []respMessage
	if err := json.Unmarshal(body, &msgs); err != nil {
		return nil, fmt.Errorf("decoding message response: %w", err)
	}
	return msgs, nil
}

// AttachmentURL builds the fetch URL for a server-side attachment
// identified by name. The localizer downloads it like any other
// remote asset.
func (c *Client) AttachmentURL(name string) string {
	q := url.Values{}
	q.Set("apikey", c.apiKey)
	q.Set("filename", name)
	return c.baseURL + attachmentPath + "?" + q.Encode()
}

// get performs a GET request against the relay, mapping 401/403 to an
// AuthError so the pipeline can distinguish a rejected key from a
// transient failure.
func (c *Client) get(ctx context.Context, path string, q url.Values) ([]byte, error) {
	reqURL := c.baseURL + path + "?" + q.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("executing request GET %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	switch {
	case resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden:
		return nil, &source.AuthError{
			Source:  "relay",
			Message: fmt.Sprintf("API key rejected (HTTP %d)", resp.StatusCode),
		}
	case resp.StatusCode != http.StatusOK:
		return nil, fmt.Errorf("GET %s: HTTP %d: %s", path, resp.StatusCode, truncate(string(body), 200))
	}

	return body, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
