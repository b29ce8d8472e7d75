package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"console/internal/logging"
	"console/internal/types"
)

const (
	defaultTimeout   = 15 * time.Second
	maxResponseBytes = 32 << 20
)

type Options struct {
	BaseURL   string
	Token     string
	TokenPath string
	Timeout   time.Duration
	Logger    logging.Logger
}

// Client talks to the remote conversation service. Every call is bounded by
// the configured timeout; expiry surfaces as RemoteUnavailable.
type Client struct {
	baseURL   string
	tokenPath string
	http      *http.Client
	logger    logging.Logger
	now       func() time.Time

	mu          sync.Mutex
	token       string
	pinnedToken bool
}

func New(opts Options) *Client {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = defaultTimeout
	}
	logger := opts.Logger
	if logger == nil {
		logger = logging.Nop()
	}
	token := strings.TrimSpace(opts.Token)
	return &Client{
		baseURL:     strings.TrimRight(opts.BaseURL, "/"),
		tokenPath:   opts.TokenPath,
		token:       token,
		pinnedToken: token != "",
		http:        &http.Client{Timeout: timeout},
		logger:      logger.With(logging.F("component", "client")),
		now:         time.Now,
	}
}

func NewWithBaseURL(baseURL, token string) *Client {
	return New(Options{BaseURL: baseURL, Token: token})
}

func (c *Client) ListConversations(ctx context.Context, filter types.StatusFilter) ([]*types.Session, error) {
	path := "/conversations"
	if status := filter.Status(); status != "" {
		path += "?status=" + url.QueryEscape(string(status))
	}
	var sessions []*types.Session
	if err := c.doJSON(ctx, "list conversations", http.MethodGet, path, nil, true, &sessions); err != nil {
		return nil, err
	}
	return sessions, nil
}

func (c *Client) GetConversation(ctx context.Context, id string) (*types.Session, error) {
	id, err := requireID("get conversation", id)
	if err != nil {
		return nil, err
	}
	var session types.Session
	if err := c.doJSON(ctx, "get conversation", http.MethodGet, "/conversations/"+url.PathEscape(id), nil, true, &session); err != nil {
		return nil, err
	}
	return &session, nil
}

func (c *Client) TransferConversation(ctx context.Context, id string) error {
	id, err := requireID("transfer", id)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, "transfer", http.MethodPost, "/conversations/"+url.PathEscape(id)+"/transfer", struct{}{}, true, nil)
}

func (c *Client) CloseConversation(ctx context.Context, id string) error {
	id, err := requireID("close", id)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, "close", http.MethodPost, "/conversations/"+url.PathEscape(id)+"/close", struct{}{}, true, nil)
}

func (c *Client) DeleteConversation(ctx context.Context, id string) error {
	id, err := requireID("delete", id)
	if err != nil {
		return err
	}
	return c.doJSON(ctx, "delete", http.MethodDelete, "/conversations/"+url.PathEscape(id), nil, true, nil)
}

func (c *Client) SendMessage(ctx context.Context, phoneNumber, text string) error {
	if strings.TrimSpace(phoneNumber) == "" {
		return Rejected("send message", "phone number is required")
	}
	if strings.TrimSpace(text) == "" {
		return Rejected("send message", "message is empty")
	}
	req := SendMessageRequest{PhoneNumber: phoneNumber, Message: text}
	return c.doJSON(ctx, "send message", http.MethodPost, "/send-message", req, true, nil)
}

func (c *Client) DashboardStats(ctx context.Context) (*types.DashboardStats, error) {
	var stats types.DashboardStats
	if err := c.doJSON(ctx, "dashboard stats", http.MethodGet, "/dashboard/stats", nil, true, &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

// Login exchanges credentials for a bearer token, keeps it for subsequent
// calls and writes it to the token file when one is configured.
func (c *Client) Login(ctx context.Context, username, password string) (*LoginResponse, error) {
	if strings.TrimSpace(username) == "" || password == "" {
		return nil, Rejected("login", "username and password are required")
	}
	var resp LoginResponse
	req := LoginRequest{Username: strings.TrimSpace(username), Password: password}
	if err := c.doJSON(ctx, "login", http.MethodPost, "/auth/login", req, false, &resp); err != nil {
		return nil, err
	}
	if strings.TrimSpace(resp.AccessToken) == "" {
		return nil, malformed("login", errors.New("access_token missing"))
	}
	c.mu.Lock()
	c.token = strings.TrimSpace(resp.AccessToken)
	c.mu.Unlock()
	if c.tokenPath != "" {
		if err := writeTokenFile(c.tokenPath, resp.AccessToken); err != nil {
			return &resp, fmt.Errorf("save token: %w", err)
		}
	}
	return &resp, nil
}

func (c *Client) doJSON(ctx context.Context, op, method, path string, body any, requireAuth bool, out any) error {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(buf)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	requestID := logging.NewRequestID()
	req.Header.Set("X-Request-ID", requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if requireAuth {
		token, err := c.bearerToken(op)
		if err != nil {
			return err
		}
		req.Header.Set("Authorization", "Bearer "+token)
	}

	started := c.now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.logger.Warn("remote request failed",
			logging.F("op", op),
			logging.F("request_id", requestID),
			logging.F("duration", c.now().Sub(started)),
			logging.Err(err),
		)
		return unavailable(op, err)
	}
	defer resp.Body.Close()
	c.logger.Debug("remote request",
		logging.F("op", op),
		logging.F("method", method),
		logging.F("path", path),
		logging.F("status", resp.StatusCode),
		logging.F("request_id", requestID),
		logging.F("duration", c.now().Sub(started)),
	)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		apiErr := decodeAPIError(op, resp)
		if apiErr.Kind == KindUnauthorized {
			c.forgetToken()
		}
		return apiErr
	}
	if out == nil {
		return nil
	}
	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return unavailable(op, err)
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return malformed(op, errors.New("empty body"))
	}
	if err := json.Unmarshal(data, out); err != nil {
		return malformed(op, err)
	}
	return nil
}

func (c *Client) bearerToken(op string) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if strings.TrimSpace(c.token) == "" && !c.pinnedToken {
		token, err := readTokenFile(c.tokenPath)
		if err != nil {
			return "", unauthorized(op, "read token", err)
		}
		c.token = token
	}
	if strings.TrimSpace(c.token) == "" {
		return "", unauthorized(op, "no credential; run `console login`", nil)
	}
	if tokenExpired(c.token, c.now()) {
		return "", unauthorized(op, "credential expired; run `console login`", nil)
	}
	return c.token, nil
}

// forgetToken drops a file-sourced token so the next call re-reads the file,
// picking up a fresh login made from another terminal.
func (c *Client) forgetToken() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.pinnedToken {
		c.token = ""
	}
}

func decodeAPIError(op string, resp *http.Response) *Error {
	var payload errorPayload
	_ = json.NewDecoder(io.LimitReader(resp.Body, 64<<10)).Decode(&payload)
	message := strings.TrimSpace(payload.Error)
	if message == "" {
		message = detailMessage(payload.Detail)
	}
	if message == "" {
		message = resp.Status
	}
	return &Error{
		Kind:       kindForStatus(resp.StatusCode),
		Op:         op,
		StatusCode: resp.StatusCode,
		Message:    message,
	}
}

// detailMessage flattens FastAPI-style error details, which are either a
// string or a list of validation entries carrying a msg field.
func detailMessage(detail any) string {
	switch v := detail.(type) {
	case string:
		return strings.TrimSpace(v)
	case []any:
		parts := make([]string, 0, len(v))
		for _, entry := range v {
			if m, ok := entry.(map[string]any); ok {
				if msg, ok := m["msg"].(string); ok && strings.TrimSpace(msg) != "" {
					parts = append(parts, strings.TrimSpace(msg))
				}
			}
		}
		return strings.Join(parts, "; ")
	default:
		return ""
	}
}

func requireID(op, id string) (string, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return "", Rejected(op, "conversation id is required")
	}
	return id, nil
}
