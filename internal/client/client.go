// ABOUTME: HTTP client pipeline for the GitLab Insight backend API
// ABOUTME: Attaches the session token, normalizes envelopes, and classifies every failure once

package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime"
	"net"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/gitlab-insight/insight/internal/notify"
)

// DefaultTimeout applies to every request that does not set its own.
const DefaultTimeout = 30 * time.Second

// ResponseType declares how a successful response body is treated.
type ResponseType int

const (
	ResponseJSON ResponseType = iota
	ResponseBlob
)

// Request describes one call to the backend.
type Request struct {
	Method       string
	Path         string // relative to the API root, e.g. "/tasks"
	Query        url.Values
	Body         interface{} // JSON-encoded when non-nil
	Timeout      time.Duration
	ResponseType ResponseType
}

// Response is the raw result of a call that passed the pipeline.
type Response struct {
	StatusCode int
	Header     http.Header
	Body       []byte
}

// Filename returns the attachment filename from Content-Disposition, if any.
func (r *Response) Filename() string {
	cd := r.Header.Get("Content-Disposition")
	if cd == "" {
		return ""
	}
	_, params, err := mime.ParseMediaType(cd)
	if err != nil {
		return ""
	}
	return params["filename"]
}

// Envelope holds the fields every JSON response may carry.
type Envelope struct {
	Success *bool  `json:"success,omitempty"`
	Error   string `json:"error,omitempty"`
	Message string `json:"message,omitempty"`
}

// Session supplies the bearer token and is cleared when the backend rejects it.
type Session interface {
	Token() string
	Logout()
}

// Navigator moves the user to another view.
type Navigator interface {
	Push(path string)
}

// Client is the API client for the GitLab Insight backend. It is safe for
// concurrent use.
type Client struct {
	baseURL    string
	httpClient *http.Client
	timeout    time.Duration
	notifier   notify.Notifier
	loginPath  string

	mu        sync.RWMutex
	session   Session
	navigator Navigator
}

// Option configures a Client
type Option func(*Client)

// WithTimeout sets the default per-request timeout
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

// WithNotifier sets where failure messages are shown
func WithNotifier(n notify.Notifier) Option {
	return func(c *Client) {
		if n != nil {
			c.notifier = n
		}
	}
}

// WithTransport replaces the HTTP transport, e.g. with an SSH+SOCKS5 tunnel
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) {
		if rt != nil {
			c.httpClient.Transport = rt
		}
	}
}

// WithLoginPath sets where the user is sent after the session expires
func WithLoginPath(path string) Option {
	return func(c *Client) {
		c.loginPath = path
	}
}

// New creates a new API client rooted at baseURL (including the /api prefix)
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		// Deadlines come from the per-request context, not the client.
		httpClient: &http.Client{},
		timeout:    DefaultTimeout,
		notifier:   notify.Discard,
		loginPath:  "/",
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// BaseURL returns the API root requests are issued under
func (c *Client) BaseURL() string {
	return c.baseURL
}

// SetSession attaches the session whose token is sent with each request
func (c *Client) SetSession(s Session) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.session = s
}

// SetNavigator attaches the navigator used after a 401
func (c *Client) SetNavigator(n Navigator) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.navigator = n
}

// Do sends req through the pipeline. A nil error means a 2xx response that
// was not a business failure.
func (c *Client) Do(ctx context.Context, req Request) (*Response, error) {
	timeout := c.timeout
	if req.Timeout > 0 {
		timeout = req.Timeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, requestID, err := c.prepare(ctx, req)
	if err != nil {
		return nil, c.fail(&Error{Kind: KindRequest, Message: MsgRequestFailed, Err: err})
	}

	start := time.Now()
	slog.Debug("API request started",
		"request_id", requestID,
		"method", httpReq.Method,
		"path", req.Path,
	)

	httpResp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, c.fail(classifyTransport(ctx, err))
	}
	defer httpResp.Body.Close()

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, c.fail(classifyTransport(ctx, err))
	}

	slog.Debug("API request completed",
		"request_id", requestID,
		"method", httpReq.Method,
		"path", req.Path,
		"status", httpResp.StatusCode,
		"latency_ms", time.Since(start).Milliseconds(),
	)

	resp := &Response{
		StatusCode: httpResp.StatusCode,
		Header:     httpResp.Header,
		Body:       body,
	}
	if err := c.handle(req, resp); err != nil {
		return nil, err
	}
	return resp, nil
}

// DoJSON sends req and decodes the JSON body into out (which may be nil).
func (c *Client) DoJSON(ctx context.Context, req Request, out interface{}) error {
	resp, err := c.Do(ctx, req)
	if err != nil {
		return err
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(resp.Body, out); err != nil {
		return c.fail(&Error{
			Kind:       KindDecode,
			StatusCode: resp.StatusCode,
			Message:    MsgInvalidResponse,
			Err:        err,
		})
	}
	return nil
}

// prepare builds the outbound request. The token is read here, once, so a
// session change never affects a request already on the wire.
func (c *Client) prepare(ctx context.Context, req Request) (*http.Request, string, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}

	target := c.baseURL + req.Path
	if len(req.Query) > 0 {
		target += "?" + req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, method, target, body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to create request: %w", err)
	}

	requestID := uuid.NewString()
	httpReq.Header.Set("X-Request-ID", requestID)
	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	c.mu.RLock()
	session := c.session
	c.mu.RUnlock()
	if session != nil {
		if token := session.Token(); token != "" {
			httpReq.Header.Set("Authorization", "Bearer "+token)
		}
	}

	return httpReq, requestID, nil
}

// handle applies the inbound rules to a received response.
func (c *Client) handle(req Request, resp *Response) error {
	var env Envelope
	envErr := json.Unmarshal(resp.Body, &env)

	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		if req.ResponseType == ResponseBlob {
			return nil
		}
		if envErr == nil && env.Success != nil && !*env.Success {
			return c.fail(&Error{
				Kind:       KindBusiness,
				StatusCode: resp.StatusCode,
				Message:    firstNonEmpty(env.Error, env.Message, MsgRequestFailed),
				Detail:     firstNonEmpty(env.Error, env.Message),
			})
		}
		return nil
	}

	detail := firstNonEmpty(env.Error, env.Message)
	switch resp.StatusCode {
	case http.StatusUnauthorized:
		err := c.fail(&Error{Kind: KindUnauthorized, StatusCode: resp.StatusCode, Message: MsgSessionExpired, Detail: detail})
		c.expireSession()
		return err
	case http.StatusForbidden:
		return c.fail(&Error{Kind: KindForbidden, StatusCode: resp.StatusCode, Message: MsgForbidden, Detail: detail})
	case http.StatusNotFound:
		return c.fail(&Error{Kind: KindNotFound, StatusCode: resp.StatusCode, Message: MsgNotFound, Detail: detail})
	case http.StatusMethodNotAllowed:
		return c.fail(&Error{Kind: KindMethodNotAllowed, StatusCode: resp.StatusCode, Message: MsgMethodNotAllowed, Detail: detail})
	case http.StatusInternalServerError:
		return c.fail(&Error{
			Kind:       KindServer,
			StatusCode: resp.StatusCode,
			Message:    firstNonEmpty(env.Error, MsgServerError),
			Detail:     detail,
		})
	default:
		return c.fail(&Error{
			Kind:       KindHTTP,
			StatusCode: resp.StatusCode,
			Message:    firstNonEmpty(detail, MsgRequestFailed),
			Detail:     detail,
		})
	}
}

// expireSession clears the session and sends the user to the login view.
func (c *Client) expireSession() {
	c.mu.RLock()
	session, navigator := c.session, c.navigator
	c.mu.RUnlock()

	if session != nil {
		session.Logout()
	}
	if navigator != nil {
		navigator.Push(c.loginPath)
	}
}

// fail emits the single notification for a failed call and returns err.
func (c *Client) fail(err *Error) error {
	slog.Warn("API request failed", "kind", err.Kind.String(), "status", err.StatusCode, "message", err.Message)
	c.notifier.Notify(notify.LevelError, err.Message)
	return err
}

// classifyTransport maps a failure with no usable response to a typed error.
func classifyTransport(ctx context.Context, err error) *Error {
	if errors.Is(ctx.Err(), context.DeadlineExceeded) || errors.Is(err, context.DeadlineExceeded) {
		return &Error{Kind: KindTimeout, Message: MsgTimeout, Err: err}
	}
	if errors.Is(ctx.Err(), context.Canceled) || errors.Is(err, context.Canceled) {
		return &Error{Kind: KindCanceled, Message: MsgCanceled, Err: err}
	}
	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return &Error{Kind: KindTimeout, Message: MsgTimeout, Err: err}
	}
	return &Error{Kind: KindNetwork, Message: MsgNetwork, Err: err}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
