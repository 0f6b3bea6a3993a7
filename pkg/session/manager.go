package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/aretw0/botcraft/internal/logging"
	"github.com/aretw0/botcraft/pkg/domain"
	"github.com/aretw0/botcraft/pkg/editor"
	"github.com/aretw0/botcraft/pkg/ports"
	"github.com/google/uuid"
)

// DefaultLockTTL bounds how long a distributed session lock may be held.
const DefaultLockTTL = 30 * time.Second

// lockEntry holds the mutex and the reference count.
type lockEntry struct {
	mu   sync.Mutex
	refs int
}

// Manager orchestrates session access, ensuring safe concurrent operations.
// It uses Reference Counting to garbage collect unused locks.
type Manager struct {
	store ports.GraphStore

	mu    sync.Mutex            // Global lock for the map
	locks map[string]*lockEntry // Map of active locks

	locker     ports.DistributedLocker // Optional distributed locker
	lockTTL    time.Duration
	logger     *slog.Logger
	editorOpts []editor.Option
	now        func() time.Time
	newID      func() string

	listenersMu sync.RWMutex
	listeners   []func(*domain.GraphDiff)
}

// Option configures the Manager.
type Option func(*Manager)

// WithLocker enables distributed locking.
func WithLocker(locker ports.DistributedLocker) Option {
	return func(m *Manager) {
		m.locker = locker
	}
}

// WithLockTTL overrides DefaultLockTTL.
func WithLockTTL(ttl time.Duration) Option {
	return func(m *Manager) {
		m.lockTTL = ttl
	}
}

// WithLogger configures a logger for the Manager.
func WithLogger(logger *slog.Logger) Option {
	return func(m *Manager) {
		m.logger = logger
	}
}

// WithEditorOptions are applied to every editor the Manager restores.
func WithEditorOptions(opts ...editor.Option) Option {
	return func(m *Manager) {
		m.editorOpts = append(m.editorOpts, opts...)
	}
}

// WithClock overrides the time source used for timestamps.
func WithClock(now func() time.Time) Option {
	return func(m *Manager) {
		m.now = now
	}
}

// WithIDFunc overrides session ID generation.
func WithIDFunc(fn func() string) Option {
	return func(m *Manager) {
		m.newID = fn
	}
}

// WithChangeListener registers fn as if by OnChange.
func WithChangeListener(fn func(*domain.GraphDiff)) Option {
	return func(m *Manager) {
		m.listeners = append(m.listeners, fn)
	}
}

// NewManager creates a new Session Manager with the given persistence store.
func NewManager(store ports.GraphStore, opts ...Option) *Manager {
	m := &Manager{
		store:   store,
		locks:   make(map[string]*lockEntry),
		lockTTL: DefaultLockTTL,
		logger:  logging.NewNop(),
		now:     time.Now,
		newID:   uuid.NewString,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// acquire gets or creates a lock entry and increments its reference count.
// The caller MUST Lock the entry.mu, and then call release(sessionID) after unlocking.
func (m *Manager) acquire(sessionID string) *lockEntry {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		entry = &lockEntry{}
		m.locks[sessionID] = entry
	}
	entry.refs++
	return entry
}

// release decrements the reference count and deletes the entry if it reaches zero.
func (m *Manager) release(sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, exists := m.locks[sessionID]
	if !exists {
		return
	}

	entry.refs--
	if entry.refs <= 0 {
		delete(m.locks, sessionID)
	}
}

// Create starts a new session. With starter set the graph is seeded with
// the default start-and-agent workflow, otherwise the canvas is empty.
func (m *Manager) Create(ctx context.Context, starter bool) (*domain.Session, error) {
	var e *editor.Editor
	if starter {
		e = editor.NewStarter(m.editorOpts...)
	} else {
		e = editor.New(nil, m.editorOpts...)
	}
	return m.CreateFrom(ctx, e.Snapshot())
}

// CreateFrom starts a new session holding a copy of doc.
// The document must describe a structurally valid graph.
func (m *Manager) CreateFrom(ctx context.Context, doc *domain.GraphDocument) (*domain.Session, error) {
	e, err := editor.Restore(doc, "", m.editorOpts...)
	if err != nil {
		return nil, err
	}

	now := m.now().UTC()
	session := &domain.Session{
		ID:        m.newID(),
		Graph:     *e.Snapshot(),
		CreatedAt: now,
		UpdatedAt: now,
	}

	err = m.WithLock(ctx, session.ID, func(ctx context.Context) error {
		return m.store.Save(ctx, session)
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	m.logger.Info("Session created", "session_id", session.ID, "nodes", len(session.Graph.Nodes))
	return session, nil
}

// Load retrieves an existing session from the store.
func (m *Manager) Load(ctx context.Context, sessionID string) (*domain.Session, error) {
	var session *domain.Session
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		var err error
		session, err = m.store.Load(ctx, sessionID)
		return err
	})
	return session, err
}

// Editor restores a detached editor for the session. Changes made to it are not persisted.
func (m *Manager) Editor(ctx context.Context, sessionID string) (*editor.Editor, error) {
	session, err := m.Load(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return editor.Restore(&session.Graph, session.Selected, m.editorOpts...)
}

// Save persists the session, replacing whatever was stored under its ID.
func (m *Manager) Save(ctx context.Context, session *domain.Session) error {
	return m.WithLock(ctx, session.ID, func(ctx context.Context) error {
		return m.store.Save(ctx, session)
	})
}

// Edit applies fn to the session's editor under the session lock.
// If fn fails nothing is persisted and its error is returned unchanged.
// The returned diff is nil when fn changed neither the graph nor the selection.
func (m *Manager) Edit(ctx context.Context, sessionID string, fn func(*editor.Editor) error) (*domain.Session, *domain.GraphDiff, error) {
	var (
		updated *domain.Session
		diff    *domain.GraphDiff
	)
	err := m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		current, err := m.store.Load(ctx, sessionID)
		if err != nil {
			return err
		}

		e, err := editor.Restore(&current.Graph, current.Selected, m.editorOpts...)
		if err != nil {
			return fmt.Errorf("stored graph is invalid: %w", err)
		}
		before := e.Snapshot()
		beforeSel, _ := e.Presentation().Selected()

		if err := fn(e); err != nil {
			return err
		}

		after := e.Snapshot()
		afterSel, _ := e.Presentation().Selected()

		diff = domain.DiffGraphs(sessionID, before, after)
		if beforeSel != afterSel {
			if diff == nil {
				diff = &domain.GraphDiff{SessionID: sessionID}
			}
			sel := afterSel
			diff.Selected = &sel
		}

		updated = current
		if diff == nil {
			return nil
		}

		updated.Graph = *after
		updated.Selected = afterSel
		updated.UpdatedAt = m.now().UTC()
		return m.store.Save(ctx, updated)
	})
	if err != nil {
		return nil, nil, err
	}

	if diff != nil {
		m.notify(diff)
	}
	return updated, diff, nil
}

// OnChange registers fn to receive every non-empty diff produced by Edit,
// after it has been persisted. Listeners run synchronously, in registration order.
func (m *Manager) OnChange(fn func(*domain.GraphDiff)) {
	m.listenersMu.Lock()
	defer m.listenersMu.Unlock()
	m.listeners = append(m.listeners, fn)
}

func (m *Manager) notify(diff *domain.GraphDiff) {
	m.listenersMu.RLock()
	defer m.listenersMu.RUnlock()
	for _, fn := range m.listeners {
		fn(diff)
	}
}

// Delete removes the session from the store.
func (m *Manager) Delete(ctx context.Context, sessionID string) error {
	return m.WithLock(ctx, sessionID, func(ctx context.Context) error {
		if _, err := m.store.Load(ctx, sessionID); err != nil {
			return err
		}
		return m.store.Delete(ctx, sessionID)
	})
}

// List delegates to the store.
func (m *Manager) List(ctx context.Context) ([]string, error) {
	return m.store.List(ctx)
}

// Store returns the underlying graph store.
func (m *Manager) Store() ports.GraphStore {
	return m.store
}

// WithLock executes a function while holding the lock for the session.
func (m *Manager) WithLock(ctx context.Context, sessionID string, fn func(context.Context) error) error {
	entry := m.acquire(sessionID)
	entry.mu.Lock()
	defer func() {
		entry.mu.Unlock()
		m.release(sessionID)
	}()

	if m.locker != nil {
		unlock, err := m.locker.Lock(ctx, sessionID, m.lockTTL)
		if err != nil {
			return fmt.Errorf("failed to acquire distributed lock: %w", err)
		}
		defer func() {
			if err := unlock(ctx); err != nil && !errors.Is(err, context.Canceled) {
				m.logger.Warn("Failed to release distributed lock (will expire via TTL)",
					"session_id", sessionID,
					"err", err,
				)
			}
		}()
	}

	return fn(ctx)
}
