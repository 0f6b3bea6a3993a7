// Package cli holds the wiring shared by the botcraft commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"github.com/aretw0/botcraft/internal/config"
	"github.com/aretw0/botcraft/internal/logging"
	"github.com/aretw0/botcraft/pkg/adapters/memory"
	"github.com/aretw0/botcraft/pkg/adapters/redis"
	"github.com/aretw0/botcraft/pkg/client"
	"github.com/aretw0/botcraft/pkg/domain"
	"github.com/aretw0/botcraft/pkg/persistence/middleware"
	"github.com/aretw0/botcraft/pkg/ports"
	"github.com/aretw0/botcraft/pkg/workflow"
	"golang.org/x/sync/errgroup"
)

// ShutdownTimeout bounds how long Serve waits for in-flight requests.
const ShutdownTimeout = 5 * time.Second

// NewLogger configures the application logger. Quiet discards everything,
// which keeps stdio transports clean.
func NewLogger(level string, quiet bool) *slog.Logger {
	if quiet {
		return logging.NewNop()
	}
	return logging.New(logging.ParseLevel(level))
}

// PrintSystemMessage prints a standardized system message.
func PrintSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

// NewRunner builds the execution client described by cfg.
func NewRunner(cfg *config.Config, logger *slog.Logger, hooks domain.RunHooks) *client.Client {
	opts := []client.Option{
		client.WithTimeout(cfg.RunTimeout),
		client.WithLogger(logger),
		client.WithRunHooks(hooks),
	}
	if cfg.BackendToken != "" {
		opts = append(opts, client.WithHeader("Authorization", "Bearer "+cfg.BackendToken))
	}
	if cfg.ReferenceTypes {
		opts = append(opts, client.WithTypeMapping(workflow.ReferenceTypes))
	}
	return client.New(cfg.ExecuteURL(), opts...)
}

// Store is the session persistence chosen by OpenStore.
type Store struct {
	ports.GraphStore
	// Locker is set when sessions are shared between processes.
	Locker ports.DistributedLocker
	Close  func() error
}

// OpenStore returns a Redis-backed store when cfg.RedisURL is set, otherwise
// an in-memory one. With cfg.EncryptionKey set, node secrets are encrypted at rest.
func OpenStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	s, err := openBaseStore(ctx, cfg, logger)
	if err != nil {
		return nil, err
	}
	if cfg.EncryptionKey == "" {
		return s, nil
	}
	mw, err := encryptionMiddleware(cfg)
	if err != nil {
		_ = s.Close()
		return nil, err
	}
	s.GraphStore = middleware.Chain(s.GraphStore, mw)
	logger.Info("Session encryption enabled", "fallback_keys", len(cfg.EncryptionFallbackKeys))
	return s, nil
}

func encryptionMiddleware(cfg *config.Config) (middleware.Middleware, error) {
	active, err := middleware.ParseKey(cfg.EncryptionKey)
	if err != nil {
		return nil, fmt.Errorf("invalid %s_ENCRYPTION_KEY: %w", config.Prefix, err)
	}
	ec := middleware.EncryptionConfig{ActiveKey: active}
	for i, k := range cfg.EncryptionFallbackKeys {
		key, err := middleware.ParseKey(k)
		if err != nil {
			return nil, fmt.Errorf("invalid %s_ENCRYPTION_FALLBACK_KEYS[%d]: %w", config.Prefix, i, err)
		}
		ec.FallbackKeys = append(ec.FallbackKeys, key)
	}
	return middleware.NewEncryptionMiddleware(ec)
}

func openBaseStore(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*Store, error) {
	if cfg.RedisURL == "" {
		logger.Info("Using in-memory session store")
		return &Store{GraphStore: memory.NewStore(), Close: func() error { return nil }}, nil
	}

	rs, err := redis.NewFromURL(cfg.RedisURL, redis.WithTTL(cfg.SessionTTL))
	if err != nil {
		return nil, err
	}
	if err := rs.Ping(ctx); err != nil {
		_ = rs.Close()
		return nil, fmt.Errorf("redis unreachable: %w", err)
	}
	logger.Info("Using redis session store", "prefix", rs.Prefix(), "ttl", cfg.SessionTTL)
	return &Store{
		GraphStore: rs,
		Locker:     redis.NewLocker(rs.Client(), rs.Prefix()),
		Close:      rs.Close,
	}, nil
}

// Serve runs the servers until ctx is cancelled or one of them fails,
// then shuts all of them down.
func Serve(ctx context.Context, logger *slog.Logger, servers ...*http.Server) error {
	g, ctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			logger.Info("Listening", "address", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return fmt.Errorf("%s: %w", srv.Addr, err)
			}
			return nil
		})
		g.Go(func() error {
			<-ctx.Done()
			shutdownCtx, cancel := context.WithTimeout(context.Background(), ShutdownTimeout)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				_ = srv.Close()
				return fmt.Errorf("graceful shutdown of %s did not complete: %w", srv.Addr, err)
			}
			return nil
		})
	}
	return g.Wait()
}
