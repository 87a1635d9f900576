package whatsapp

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"
	"time"

	"github.com/campushub/unichat-platform/pkg/logging"
)

const (
	defaultBaseURL   = "https://graph.facebook.com/v19.0"
	defaultUserAgent = "unichat-whatsapp/0.1"
)

// ClientConfig controls how the Cloud API client behaves.
type ClientConfig struct {
	BaseURL       string
	AccessToken   string
	PhoneNumberID string
	Timeout       time.Duration
	MaxRetries    int
	Backoff       time.Duration
	HTTPClient    *http.Client
	Logger        *logging.Logger
	UserAgent     string
}

// Client wraps the WhatsApp Cloud API messages endpoint.
type Client struct {
	accessToken   string
	baseURL       string
	phoneNumberID string
	httpClient    *http.Client
	maxRetries    int
	backoff       time.Duration
	logger        *logging.Logger
	userAgent     string
}

// NewClient creates a configured Client with sane defaults.
func NewClient(cfg ClientConfig) (*Client, error) {
	if strings.TrimSpace(cfg.AccessToken) == "" {
		return nil, errors.New("whatsapp: access token is required")
	}
	if strings.TrimSpace(cfg.PhoneNumberID) == "" {
		return nil, errors.New("whatsapp: phone number id is required")
	}
	baseURL := strings.TrimSpace(cfg.BaseURL)
	if baseURL == "" {
		baseURL = defaultBaseURL
	}
	baseURL = strings.TrimRight(baseURL, "/")
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = 10 * time.Second
		}
		httpClient = &http.Client{Timeout: timeout}
	}
	maxRetries := cfg.MaxRetries
	if maxRetries < 0 {
		maxRetries = 0
	}
	backoff := cfg.Backoff
	if backoff <= 0 {
		backoff = 250 * time.Millisecond
	}
	logger := cfg.Logger
	if logger == nil {
		logger = logging.Default()
	}
	userAgent := strings.TrimSpace(cfg.UserAgent)
	if userAgent == "" {
		userAgent = defaultUserAgent
	}
	return &Client{
		accessToken:   cfg.AccessToken,
		baseURL:       baseURL,
		phoneNumberID: cfg.PhoneNumberID,
		httpClient:    httpClient,
		maxRetries:    maxRetries,
		backoff:       backoff,
		logger:        logger,
		userAgent:     userAgent,
	}, nil
}

// SendText sends a plain text message.
func (c *Client) SendText(ctx context.Context, to, body string) (string, error) {
	if strings.TrimSpace(to) == "" {
		return "", errors.New("whatsapp: recipient required")
	}
	msg := textMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "text",
		Text:             textBody{Body: truncate(body, maxBodyLen)},
	}
	return c.send(ctx, msg)
}

// SendButtons sends an interactive reply-button message. The Cloud API
// allows at most three buttons.
func (c *Client) SendButtons(ctx context.Context, to, body string, replies []buttonReply) (string, error) {
	if strings.TrimSpace(to) == "" {
		return "", errors.New("whatsapp: recipient required")
	}
	if len(replies) == 0 || len(replies) > maxButtons {
		return "", fmt.Errorf("whatsapp: button count %d out of range", len(replies))
	}
	buttons := make([]button, 0, len(replies))
	for _, r := range replies {
		r.Title = truncate(r.Title, maxButtonTitleLen)
		buttons = append(buttons, button{Type: "reply", Reply: r})
	}
	msg := interactiveMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "interactive",
		Interactive: interactive{
			Type:   "button",
			Body:   textBody{Body: truncate(body, maxBodyLen)},
			Action: &interactiveAction{Buttons: buttons},
		},
	}
	return c.send(ctx, msg)
}

// SendList sends an interactive list message with a single section.
func (c *Client) SendList(ctx context.Context, to, body, menuLabel string, rows []row) (string, error) {
	if strings.TrimSpace(to) == "" {
		return "", errors.New("whatsapp: recipient required")
	}
	if len(rows) == 0 || len(rows) > maxListRows {
		return "", fmt.Errorf("whatsapp: list row count %d out of range", len(rows))
	}
	trimmed := make([]row, 0, len(rows))
	for _, r := range rows {
		r.Title = truncate(r.Title, maxRowTitleLen)
		r.Description = truncate(r.Description, maxRowDescLen)
		trimmed = append(trimmed, r)
	}
	if strings.TrimSpace(menuLabel) == "" {
		menuLabel = "Opções"
	}
	msg := interactiveMessage{
		MessagingProduct: "whatsapp",
		To:               to,
		Type:             "interactive",
		Interactive: interactive{
			Type:   "list",
			Body:   textBody{Body: truncate(body, maxBodyLen)},
			Action: &interactiveAction{
				Button:   truncate(menuLabel, maxButtonTitleLen),
				Sections: []section{{Rows: trimmed}},
			},
		},
	}
	return c.send(ctx, msg)
}

func (c *Client) send(ctx context.Context, msg any) (string, error) {
	body, err := json.Marshal(msg)
	if err != nil {
		return "", fmt.Errorf("whatsapp: marshal message: %w", err)
	}
	data, err := c.invoke(ctx, body)
	if err != nil {
		return "", err
	}
	var resp messageResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", fmt.Errorf("whatsapp: decode response: %w", err)
	}
	if len(resp.Messages) == 0 {
		return "", nil
	}
	return resp.Messages[0].ID, nil
}

func (c *Client) invoke(ctx context.Context, body []byte) ([]byte, error) {
	fullURL := c.baseURL + "/" + c.phoneNumberID + "/messages"
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, fullURL, bytes.NewReader(body))
		if err != nil {
			return nil, fmt.Errorf("whatsapp: build request: %w", err)
		}
		req.Header.Set("Authorization", "Bearer "+c.accessToken)
		req.Header.Set("User-Agent", c.userAgent)
		req.Header.Set("Content-Type", "application/json")
		resp, err := c.httpClient.Do(req)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			if !shouldRetry(0, err) || attempt == c.maxRetries {
				return nil, fmt.Errorf("whatsapp: http error: %w", err)
			}
			lastErr = err
			c.logRetry(attempt, 0, err)
			if sleepErr := c.sleep(ctx, attempt); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}
		data, readErr := io.ReadAll(resp.Body)
		resp.Body.Close()
		if readErr != nil {
			return nil, fmt.Errorf("whatsapp: read response: %w", readErr)
		}
		if resp.StatusCode >= 200 && resp.StatusCode < 300 {
			return data, nil
		}
		apiErr := decodeAPIError(resp.StatusCode, data)
		if attempt < c.maxRetries && shouldRetry(resp.StatusCode, nil) {
			lastErr = apiErr
			c.logRetry(attempt, resp.StatusCode, apiErr)
			if sleepErr := c.sleep(ctx, attempt); sleepErr != nil {
				return nil, sleepErr
			}
			continue
		}
		return nil, apiErr
	}
	if lastErr != nil {
		return nil, lastErr
	}
	return nil, errors.New("whatsapp: request failed without response")
}

func (c *Client) sleep(ctx context.Context, attempt int) error {
	delay := c.backoff * time.Duration(1<<attempt)
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

func (c *Client) logRetry(attempt int, status int, err error) {
	if c.logger == nil {
		return
	}
	c.logger.Warn("whatsapp retry",
		"attempt", attempt+1,
		"status", status,
		"error", err,
	)
}

func shouldRetry(status int, err error) bool {
	if err != nil {
		var netErr net.Error
		if errors.As(err, &netErr) && netErr.Timeout() {
			return true
		}
		return !errors.Is(err, context.Canceled)
	}
	if status == http.StatusTooManyRequests {
		return true
	}
	if status >= 500 && status <= 599 {
		return true
	}
	return false
}

type apiError struct {
	StatusCode int `json:"-"`
	Err        struct {
		Message   string `json:"message"`
		Type      string `json:"type"`
		Code      int    `json:"code"`
		FBTraceID string `json:"fbtrace_id"`
	} `json:"error"`
}

func (e *apiError) Error() string {
	if e.Err.Message != "" {
		return fmt.Sprintf("whatsapp: %s (status=%d code=%d)", e.Err.Message, e.StatusCode, e.Err.Code)
	}
	return fmt.Sprintf("whatsapp: http status %d", e.StatusCode)
}

func decodeAPIError(status int, body []byte) error {
	var parsed apiError
	if err := json.Unmarshal(body, &parsed); err != nil {
		parsed.Err.Message = string(body)
	}
	parsed.StatusCode = status
	return &parsed
}
