package notify

import (
	"bytes"
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/masonvale/notifyhub/internal/logging"
)

// Channel delivers rendered content to whatever sink is configured. Delivery
// is fire-and-forget from the dedup core's perspective: a channel error is
// logged but never triggers bus redelivery, because the reservation already
// stands.
type Channel interface {
	Deliver(ctx context.Context, c Content) error
}

// LogChannel writes notifications as structured log lines. This is the
// original sink behavior, kept behind the Channel interface so the dispatch
// core is testable without capturing log output.
type LogChannel struct {
	logger *logging.Logger
}

func NewLogChannel(logger *logging.Logger) *LogChannel {
	return &LogChannel{logger: logger}
}

func (c *LogChannel) Deliver(ctx context.Context, content Content) error {
	c.logger.WithContext(ctx).WithFields(map[string]any{
		"recipient": content.RecipientHint,
		"subject":   content.Subject,
		"body":      content.Body,
	}).Info("notification")
	return nil
}

const (
	sigHeader = "X-Notifyhub-Signature" // sha256=<hex>
	tsHeader  = "X-Notifyhub-Timestamp" // unix seconds
)

// HTTPChannel POSTs notifications as JSON to a sink URL, signing each request
// with HMAC-SHA256 over body||timestamp when a secret is configured.
type HTTPChannel struct {
	url    string
	secret string
	client *http.Client
}

func NewHTTPChannel(url, secret string, timeout time.Duration) *HTTPChannel {
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	return &HTTPChannel{
		url:    url,
		secret: secret,
		client: &http.Client{Timeout: timeout},
	}
}

func (c *HTTPChannel) Deliver(ctx context.Context, content Content) error {
	body, err := json.Marshal(content)
	if err != nil {
		return fmt.Errorf("marshal notification: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("build sink request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	if c.secret != "" {
		ts := strconv.FormatInt(time.Now().Unix(), 10)
		mac := hmac.New(sha256.New, []byte(c.secret))
		mac.Write(body)
		mac.Write([]byte(ts))
		req.Header.Set(tsHeader, ts)
		req.Header.Set(sigHeader, "sha256="+hex.EncodeToString(mac.Sum(nil)))
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("post to sink: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return fmt.Errorf("sink returned status %d", resp.StatusCode)
	}
	return nil
}
