package client

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/aretw0/botcraft/internal/logging"
	"github.com/aretw0/botcraft/pkg/domain"
	"github.com/aretw0/botcraft/pkg/workflow"
	"github.com/goccy/go-json"
	"golang.org/x/sync/semaphore"
)

// maxResponseBytes caps how much of a response body is read.
const maxResponseBytes = 10 << 20

// maxDetailBytes caps a raw error body quoted in Result.Error.
const maxDetailBytes = 500

// Client sends workflows to the execution endpoint, one at a time.
type Client struct {
	endpoint string
	http     *http.Client
	timeout  time.Duration
	headers  http.Header
	types    map[string]string
	inflight *semaphore.Weighted
	hooks    domain.RunHooks
	logger   *slog.Logger
}

// New creates a client for the given execution endpoint URL.
func New(endpoint string, opts ...Option) *Client {
	c := &Client{
		endpoint: endpoint,
		http:     &http.Client{},
		timeout:  DefaultTimeout,
		headers:  make(http.Header),
		inflight: semaphore.NewWeighted(1),
		logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Endpoint returns the execution URL.
func (c *Client) Endpoint() string { return c.endpoint }

// Busy reports whether a run is currently outstanding.
func (c *Client) Busy() bool {
	if c.inflight.TryAcquire(1) {
		c.inflight.Release(1)
		return false
	}
	return true
}

// Run posts req and waits for the result.
// A call made while another run is outstanding returns at once with a busy
// error and sends nothing.
func (c *Client) Run(ctx context.Context, req workflow.Request) workflow.Result {
	if !c.inflight.TryAcquire(1) {
		c.logger.Warn("Run rejected: another run is in flight")
		return workflow.Result{Error: domain.ErrRunInFlight.Error()}
	}
	defer c.inflight.Release(1)

	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	ev := &domain.RunEvent{
		EventBase: domain.NewEventBase(domain.EventRunStarted),
		Nodes:     len(req.Nodes),
		Edges:     len(req.Edges),
	}
	if c.hooks.OnRunStart != nil {
		c.hooks.OnRunStart(ctx, ev)
	}

	var budget time.Duration
	if deadline, ok := ctx.Deadline(); ok {
		budget = time.Until(deadline)
	}

	start := time.Now()
	res := c.post(ctx, req, budget)

	done := *ev
	done.EventBase = domain.NewEventBase(domain.EventRunFinished)
	done.Duration = time.Since(start)
	done.Status = res.Status
	done.Error = res.Error
	if c.hooks.OnRunFinish != nil {
		c.hooks.OnRunFinish(ctx, &done)
	}

	if res.Failed() {
		c.logger.Error("Workflow run failed", "error", res.Error, "duration", done.Duration)
	} else {
		c.logger.Info("Workflow run finished", "status", res.Status, "duration", done.Duration)
	}
	return res
}

// post sends one request. budget is the time left before the effective
// deadline, whichever context set it.
func (c *Client) post(ctx context.Context, req workflow.Request, budget time.Duration) workflow.Result {
	body, err := req.Retag(c.types).Marshal()
	if err != nil {
		return workflow.ErrorResult("failed to encode workflow: %v", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return workflow.ErrorResult("invalid execution endpoint: %v", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Accept", "application/json")
	for k, vs := range c.headers {
		for _, v := range vs {
			httpReq.Header.Add(k, v)
		}
	}

	resp, err := c.http.Do(httpReq)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			if budget > 0 {
				return workflow.ErrorResult("execution timed out after %s", budget.Round(10*time.Millisecond))
			}
			return workflow.ErrorResult("execution timed out: %v", ctx.Err())
		}
		return workflow.ErrorResult("could not reach execution backend: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(io.LimitReader(resp.Body, maxResponseBytes))
	if err != nil {
		return workflow.ErrorResult("failed to read execution response: %v", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return workflow.ErrorResult("execution failed (%s): %s", resp.Status, errorDetail(data))
	}
	return workflow.Deserialize(data)
}

// errorDetail extracts a readable message from an error body.
// FastAPI style {"detail": ...} bodies are unwrapped.
func errorDetail(body []byte) string {
	var payload struct {
		Detail any `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && payload.Detail != nil {
		if s, ok := payload.Detail.(string); ok {
			return s
		}
		if b, err := json.Marshal(payload.Detail); err == nil {
			return string(b)
		}
	}
	text := strings.TrimSpace(string(body))
	if text == "" {
		return "no response body"
	}
	if len(text) > maxDetailBytes {
		cut := maxDetailBytes
		for cut > 0 && !utf8.RuneStart(text[cut]) {
			cut--
		}
		text = text[:cut] + "..."
	}
	return text
}
