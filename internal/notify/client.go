package notify

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/voltline/voltline-backend/pkg/config"
	pkgerrors "github.com/voltline/voltline-backend/pkg/errors"
	"github.com/voltline/voltline-backend/pkg/logger"
)

// Notification function names exposed by the messaging service.
const (
	KindQuoteConfirmation  = "send-quote-confirmation"
	KindStatusNotification = "send-status-notification"
	KindWelcomeEmail       = "send-welcome-email"
	KindAdminInvitation    = "send-admin-invitation"
)

const responseBodyReadLimit int64 = 1024

// Client calls the notification functions over HTTP. Dispatch is
// fire-and-forget: delivery failures are logged and counted, never returned
// to callers.
type Client struct {
	httpClient *http.Client
	baseURL    string
	token      string
	timeout    time.Duration
	logg       *logger.Logger
	onFailure  func(kind string, err error)
}

// Option configures optional client behavior.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithFailureHook registers a callback invoked when a dispatch fails.
func WithFailureHook(hook func(kind string, err error)) Option {
	return func(c *Client) {
		if hook != nil {
			c.onFailure = hook
		}
	}
}

// NewClient builds the notification client. A config without base URL or
// token yields a disabled client whose dispatches only log.
func NewClient(cfg config.NotifyConfig, logg *logger.Logger, opts ...Option) (*Client, error) {
	if logg == nil {
		return nil, fmt.Errorf("logger required")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	client := &Client{
		httpClient: &http.Client{Timeout: timeout},
		baseURL:    strings.TrimRight(strings.TrimSpace(cfg.BaseURL), "/"),
		token:      strings.TrimSpace(cfg.Token),
		timeout:    timeout,
		logg:       logg,
	}

	for _, opt := range opts {
		if opt != nil {
			opt(client)
		}
	}
	return client, nil
}

// Enabled reports whether the client is configured to reach the messaging
// service.
func (c *Client) Enabled() bool {
	return c != nil && c.baseURL != "" && c.token != ""
}

// Dispatch sends the named notification in a detached goroutine. The caller
// never blocks on or observes the outcome.
func (c *Client) Dispatch(ctx context.Context, kind string, payload any) {
	if c == nil {
		return
	}
	ctx = c.logg.WithField(ctx, "notification", kind)

	if !c.Enabled() {
		c.logg.Info(ctx, "notification client disabled, skipping dispatch")
		return
	}

	go func() {
		// Detached from the request lifecycle on purpose.
		sendCtx, cancel := context.WithTimeout(context.Background(), c.timeout)
		defer cancel()

		if err := c.send(sendCtx, kind, payload); err != nil {
			c.logg.Error(ctx, "notification dispatch failed", err)
			if c.onFailure != nil {
				c.onFailure(kind, err)
			}
			return
		}
		c.logg.Info(ctx, "notification dispatched")
	}()
}

// SendQuoteConfirmation notifies the customer that their quote request was
// received.
func (c *Client) SendQuoteConfirmation(ctx context.Context, quoteRequestID string) {
	c.Dispatch(ctx, KindQuoteConfirmation, map[string]any{"quote_request_id": quoteRequestID})
}

// SendStatusNotification notifies the customer about a quote status change.
func (c *Client) SendStatusNotification(ctx context.Context, quoteRequestID, status string) {
	c.Dispatch(ctx, KindStatusNotification, map[string]any{
		"quote_request_id": quoteRequestID,
		"status":           status,
	})
}

// SendWelcomeEmail greets a freshly registered user. The user id rides along
// so the messaging service can resolve the account.
func (c *Client) SendWelcomeEmail(ctx context.Context, userID, email, fullName string) {
	c.Dispatch(ctx, KindWelcomeEmail, map[string]any{
		"user_id":   userID,
		"email":     email,
		"full_name": fullName,
	})
}

// SendAdminInvitation invites a new portal administrator.
func (c *Client) SendAdminInvitation(ctx context.Context, email string) {
	c.Dispatch(ctx, KindAdminInvitation, map[string]any{"email": email})
}

func (c *Client) send(ctx context.Context, kind string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "marshal notification payload")
	}

	url := fmt.Sprintf("%s/%s", c.baseURL, kind)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(body))
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "build notification request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.token)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "execute notification request")
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, responseBodyReadLimit))
		return pkgerrors.Wrap(pkgerrors.CodeDependency,
			fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(msg))),
			"notification request failed")
	}

	var apiResp struct {
		Success bool   `json:"success"`
		Error   string `json:"error"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&apiResp); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode notification response")
	}
	if apiResp.Error != "" {
		return pkgerrors.New(pkgerrors.CodeDependency, "notification rejected").
			WithDetails(map[string]any{"remote_error": apiResp.Error})
	}
	if !apiResp.Success {
		return pkgerrors.New(pkgerrors.CodeDependency, "notification reported failure")
	}
	return nil
}
