// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package gateway is the HTTP client for the Green-API messaging gateway.
//
// Every method addresses one instance: requests go to
// {baseURL}/waInstance{id}/{method}/{token}. Failures are returned as *Error
// with a Kind chosen by transport outcome and HTTP status, so callers never
// inspect message text.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"golang.org/x/time/rate"

	"github.com/jeranaias/greenchat-tui/internal/metrics"
)

const (
	// DefaultBaseURL is the public gateway endpoint.
	DefaultBaseURL = "https://api.green-api.com"

	// DefaultTimeout bounds a single HTTP call.
	DefaultTimeout = 30 * time.Second

	// DefaultReceiveTimeout is the long-poll window of receiveNotification,
	// in seconds.
	DefaultReceiveTimeout = 5

	// MaxResponseSize caps how much of a response body is read.
	MaxResponseSize = 4 * 1024 * 1024

	// receiveMargin is added to the long-poll window when it exceeds the
	// client timeout.
	receiveMargin = 5 * time.Second

	maxMessageExcerpt = 200
)

// Client calls the gateway. It is safe for concurrent use.
type Client struct {
	baseURL        string
	httpClient     *http.Client
	limiter        *rate.Limiter
	receiveTimeout int
	logger         *slog.Logger
}

// NewClient creates a client for baseURL. An empty baseURL uses
// DefaultBaseURL.
func NewClient(baseURL string) *Client {
	if baseURL == "" {
		baseURL = DefaultBaseURL
	}
	return &Client{
		baseURL:        strings.TrimRight(baseURL, "/"),
		httpClient:     &http.Client{Timeout: DefaultTimeout},
		limiter:        rate.NewLimiter(rate.Inf, 1),
		receiveTimeout: DefaultReceiveTimeout,
		logger:         slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	c.httpClient = hc
	return c
}

// WithTimeout sets the per-request timeout.
func (c *Client) WithTimeout(d time.Duration) *Client {
	if d > 0 {
		c.httpClient.Timeout = d
	}
	return c
}

// WithRateLimit paces outgoing calls. perSec <= 0 disables pacing.
func (c *Client) WithRateLimit(perSec float64, burst int) *Client {
	if burst < 1 {
		burst = 1
	}
	if perSec <= 0 {
		c.limiter = rate.NewLimiter(rate.Inf, burst)
	} else {
		c.limiter = rate.NewLimiter(rate.Limit(perSec), burst)
	}
	return c
}

// WithReceiveTimeout sets the receiveNotification long-poll window in
// seconds (gateway accepts 5..60).
func (c *Client) WithReceiveTimeout(secs int) *Client {
	if secs > 0 {
		c.receiveTimeout = secs
	}
	return c
}

// WithLogger sets the logger used for request tracing.
func (c *Client) WithLogger(l *slog.Logger) *Client {
	if l != nil {
		c.logger = l
	}
	return c
}

// BaseURL returns the configured endpoint.
func (c *Client) BaseURL() string { return c.baseURL }

// GetSettings reads the instance settings. It is the first call of
// onboarding and fails with KindUnauthorized or KindRejected on bad
// credentials.
func (c *Client) GetSettings(ctx context.Context, inst Instance) (*Settings, error) {
	var out Settings
	if err := c.call(ctx, http.MethodGet, "getSettings", inst, "", nil, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// GetStateInstance returns the authorization state of the instance.
func (c *Client) GetStateInstance(ctx context.Context, inst Instance) (State, error) {
	var out struct {
		StateInstance State `json:"stateInstance"`
	}
	if err := c.call(ctx, http.MethodGet, "getStateInstance", inst, "", nil, nil, &out); err != nil {
		return "", err
	}
	return out.StateInstance, nil
}

// ReceiveNotification takes the next notification from the queue without
// removing it. It returns nil, nil when the queue is empty.
func (c *Client) ReceiveNotification(ctx context.Context, inst Instance) (*Notification, error) {
	q := url.Values{}
	q.Set("receiveTimeout", strconv.Itoa(c.receiveTimeout))

	var out *Notification
	if err := c.call(ctx, http.MethodGet, "receiveNotification", inst, "", q, nil, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteNotification acknowledges a notification by receipt id and returns
// the gateway's result flag.
func (c *Client) DeleteNotification(ctx context.Context, inst Instance, receiptID int64) (bool, error) {
	var out struct {
		Result bool `json:"result"`
	}
	suffix := "/" + strconv.FormatInt(receiptID, 10)
	if err := c.call(ctx, http.MethodDelete, "deleteNotification", inst, suffix, nil, nil, &out); err != nil {
		return false, err
	}
	return out.Result, nil
}

// SendMessage sends a text message to a phone number or chat id and returns
// the gateway message id.
func (c *Client) SendMessage(ctx context.Context, inst Instance, phone, text string) (string, error) {
	body := struct {
		ChatID  string `json:"chatId"`
		Message string `json:"message"`
	}{ChatID: ChatID(phone), Message: text}

	var out struct {
		IDMessage string `json:"idMessage"`
	}
	if err := c.call(ctx, http.MethodPost, "sendMessage", inst, "", nil, body, &out); err != nil {
		return "", err
	}
	return out.IDMessage, nil
}

// SetSettings applies a settings update and returns the gateway's
// saveSettings flag.
func (c *Client) SetSettings(ctx context.Context, inst Instance, update SettingsUpdate) (bool, error) {
	var out struct {
		SaveSettings bool `json:"saveSettings"`
	}
	if err := c.call(ctx, http.MethodPost, "setSettings", inst, "", nil, update, &out); err != nil {
		return false, err
	}
	return out.SaveSettings, nil
}

// GetChatHistory returns up to count recent messages of a chat, newest first.
func (c *Client) GetChatHistory(ctx context.Context, inst Instance, chatID string, count int) ([]HistoryMessage, error) {
	body := struct {
		ChatID string `json:"chatId"`
		Count  int    `json:"count,omitempty"`
	}{ChatID: ChatID(chatID), Count: count}

	var out []HistoryMessage
	if err := c.call(ctx, http.MethodPost, "getChatHistory", inst, "", nil, body, &out); err != nil {
		return nil, err
	}
	return out, nil
}

// endpoint builds the instance-scoped URL for a gateway method.
func (c *Client) endpoint(op string, inst Instance, suffix string, query url.Values) string {
	u := fmt.Sprintf("%s/waInstance%s/%s/%s%s",
		c.baseURL, url.PathEscape(inst.ID), op, url.PathEscape(inst.Token), suffix)
	if len(query) > 0 {
		u += "?" + query.Encode()
	}
	return u
}

// redactedEndpoint is endpoint with the token replaced by its fingerprint.
func (c *Client) redactedEndpoint(op string, inst Instance, suffix string) string {
	return fmt.Sprintf("%s/waInstance%s/%s/%s%s",
		c.baseURL, url.PathEscape(inst.ID), op, inst.Fingerprint(), suffix)
}

// clientFor returns the HTTP client for op. receiveNotification holds the
// connection for the whole long-poll window, so its timeout is raised to
// cover the window.
func (c *Client) clientFor(op string) *http.Client {
	if op != "receiveNotification" {
		return c.httpClient
	}
	window := time.Duration(c.receiveTimeout)*time.Second + receiveMargin
	if c.httpClient.Timeout == 0 || c.httpClient.Timeout >= window {
		return c.httpClient
	}
	hc := *c.httpClient
	hc.Timeout = window
	return &hc
}

// call performs one request and decodes the JSON response into out.
func (c *Client) call(ctx context.Context, method, op string, inst Instance, suffix string, query url.Values, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		return &Error{Op: op, Kind: KindRateLimited, Err: err}
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("gateway %s: encode request: %w", op, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.endpoint(op, inst, suffix, query), body)
	if err != nil {
		return fmt.Errorf("gateway %s: build request: %w", op, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	start := time.Now()
	resp, err := c.clientFor(op).Do(req)
	if err != nil {
		// The request URL carries the token.
		var uerr *url.Error
		if errors.As(err, &uerr) {
			uerr.URL = c.redactedEndpoint(op, inst, suffix)
		}
		if ctxErr := ctx.Err(); ctxErr != nil {
			c.observe(op, inst, 0, time.Since(start), "canceled")
			return ctxErr
		}
		c.observe(op, inst, 0, time.Since(start), KindUnreachable.String())
		return &Error{Op: op, Kind: KindUnreachable, Err: err}
	}
	defer resp.Body.Close()

	data, err := readResponse(resp)
	if err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil {
			return ctxErr
		}
		c.observe(op, inst, resp.StatusCode, time.Since(start), KindUnreachable.String())
		return &Error{Op: op, Status: resp.StatusCode, Kind: KindUnreachable, Err: err}
	}

	if resp.StatusCode >= 400 {
		kind := KindFromStatus(resp.StatusCode)
		c.observe(op, inst, resp.StatusCode, time.Since(start), kind.String())
		return &Error{Op: op, Status: resp.StatusCode, Kind: kind, Message: excerpt(data)}
	}

	if out != nil {
		if err := json.Unmarshal(data, out); err != nil {
			c.observe(op, inst, resp.StatusCode, time.Since(start), KindMalformed.String())
			return &Error{Op: op, Status: resp.StatusCode, Kind: KindMalformed, Message: excerpt(data), Err: err}
		}
	}

	c.observe(op, inst, resp.StatusCode, time.Since(start), "ok")
	return nil
}

// observe logs a finished call and records metrics. The token never appears;
// the instance is identified by id and token fingerprint.
func (c *Client) observe(op string, inst Instance, status int, d time.Duration, result string) {
	metrics.GatewayRequestsTotal.WithLabelValues(op, result).Inc()
	metrics.GatewayRequestDuration.WithLabelValues(op).Observe(d.Seconds())
	c.logger.Debug("gateway call",
		"op", op,
		"instance", inst.ID,
		"token", inst.Fingerprint(),
		"status", status,
		"result", result,
		"duration", d.Round(time.Millisecond),
	)
}

// readResponse reads at most MaxResponseSize bytes of the body.
func readResponse(resp *http.Response) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(resp.Body, MaxResponseSize+1))
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	if len(data) > MaxResponseSize {
		return nil, errors.New("response exceeded maximum size")
	}
	return data, nil
}

func excerpt(data []byte) string {
	s := strings.ToValidUTF8(strings.TrimSpace(string(data)), "\uFFFD")
	if r := []rune(s); len(r) > maxMessageExcerpt {
		s = string(r[:maxMessageExcerpt]) + "..."
	}
	return s
}
