package client

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/botcraft/pkg/domain"
)

// DefaultTimeout bounds a single execution request.
const DefaultTimeout = 60 * time.Second

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient replaces the underlying HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		if hc != nil {
			c.http = hc
		}
	}
}

// WithTimeout sets the per-run deadline. Zero disables it.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		c.timeout = d
	}
}

// WithLogger sets the logger for the client.
func WithLogger(logger *slog.Logger) Option {
	return func(c *Client) {
		c.logger = logger
	}
}

// WithRunHooks registers callbacks around each run.
func WithRunHooks(hooks domain.RunHooks) Option {
	return func(c *Client) {
		c.hooks = domain.MergeRunHooks(c.hooks, hooks)
	}
}

// WithTypeMapping renames node types on the wire, e.g. workflow.ReferenceTypes
// for backends that dispatch on "llm" and "search".
func WithTypeMapping(types map[string]string) Option {
	return func(c *Client) {
		c.types = types
	}
}

// WithHeader adds a header to every request, e.g. an Authorization token.
func WithHeader(key, value string) Option {
	return func(c *Client) {
		c.headers.Set(key, value)
	}
}
