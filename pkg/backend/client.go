package backend

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"strings"

	"github.com/aretw0/botcraft/internal/logging"
	"github.com/goccy/go-json"
)

// Client talks to the bot backend.
type Client struct {
	baseURL string
	token   string
	http    *http.Client
	logger  *slog.Logger
}

// Option configures a Client.
type Option func(*Client)

// WithToken sets the bearer token for authenticated calls.
func WithToken(token string) Option {
	return func(c *Client) {
		c.token = token
	}
}

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithLogger sets the logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// New creates a client rooted at baseURL, e.g. http://localhost:8000.
func New(baseURL string, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    http.DefaultClient,
		logger:  logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Ingest creates a bot and queues its sources for processing.
func (c *Client) Ingest(ctx context.Context, req IngestRequest) (*IngestResponse, error) {
	if req.File == nil && req.CSV == nil && strings.TrimSpace(req.URL) == "" {
		return nil, ErrNoSource
	}

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if err := mw.WriteField("name", req.Name); err != nil {
		return nil, err
	}
	if req.URL != "" {
		if err := mw.WriteField("url", req.URL); err != nil {
			return nil, err
		}
	}
	if err := writeUpload(mw, "file", req.File); err != nil {
		return nil, err
	}
	if err := writeUpload(mw, "csvfile", req.CSV); err != nil {
		return nil, err
	}
	if err := mw.Close(); err != nil {
		return nil, err
	}

	var out IngestResponse
	if err := c.do(ctx, http.MethodPost, "/ingest", mw.FormDataContentType(), &buf, true, &out); err != nil {
		return nil, err
	}
	c.logger.Info("Bot ingested", "bot_id", out.BotID, "name", req.Name)
	return &out, nil
}

func writeUpload(mw *multipart.Writer, field string, u *Upload) error {
	if u == nil {
		return nil
	}
	part, err := mw.CreateFormFile(field, u.Filename)
	if err != nil {
		return err
	}
	_, err = io.Copy(part, u.Content)
	return err
}

// ListBots returns the caller's bots, newest first.
func (c *Client) ListBots(ctx context.Context) ([]Bot, error) {
	var bots []Bot
	if err := c.do(ctx, http.MethodGet, "/bots", "", nil, true, &bots); err != nil {
		return nil, err
	}
	return bots, nil
}

// Stats returns usage counters for the caller.
func (c *Client) Stats(ctx context.Context) (*Stats, error) {
	var s Stats
	if err := c.do(ctx, http.MethodGet, "/stats", "", nil, true, &s); err != nil {
		return nil, err
	}
	return &s, nil
}

// DeleteBot removes a bot and its knowledge.
func (c *Client) DeleteBot(ctx context.Context, botID string) error {
	return c.do(ctx, http.MethodDelete, "/bots/"+url.PathEscape(botID), "", nil, true, nil)
}

// Chat asks a bot a question. This endpoint is public.
func (c *Client) Chat(ctx context.Context, botID, question string) (string, error) {
	body, err := json.Marshal(chatRequest{BotID: botID, Question: question})
	if err != nil {
		return "", err
	}
	var out chatResponse
	if err := c.do(ctx, http.MethodPost, "/chat", "application/json", bytes.NewReader(body), false, &out); err != nil {
		return "", err
	}
	return out.Answer, nil
}

// ConnectTelegram registers a Telegram bot token as a channel for botID.
func (c *Client) ConnectTelegram(ctx context.Context, botID, telegramToken string) error {
	form := url.Values{"token": {telegramToken}}
	return c.do(ctx, http.MethodPost, "/bots/"+url.PathEscape(botID)+"/telegram",
		"application/x-www-form-urlencoded", strings.NewReader(form.Encode()), true, nil)
}

func (c *Client) do(ctx context.Context, method, path, contentType string, body io.Reader, auth bool, out any) error {
	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, body)
	if err != nil {
		return err
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	if auth && c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("backend %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return err
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		c.logger.Warn("Backend call failed", "method", method, "path", path, "status", resp.StatusCode)
		return &APIError{Status: resp.StatusCode, Detail: detail(data)}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(data, out); err != nil {
		return fmt.Errorf("backend %s %s: invalid response: %w", method, path, err)
	}
	return nil
}

func detail(body []byte) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	if s := strings.TrimSpace(string(body)); s != "" {
		return s
	}
	return "no response body"
}
