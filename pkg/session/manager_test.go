package session_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/botcraft/pkg/adapters/memory"
	"github.com/aretw0/botcraft/pkg/domain"
	"github.com/aretw0/botcraft/pkg/editor"
	"github.com/aretw0/botcraft/pkg/ports"
	"github.com/aretw0/botcraft/pkg/session"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// SlowStore simulates latency to provoke race conditions if locking is missing.
type SlowStore struct {
	*memory.Store
}

func (s SlowStore) Save(ctx context.Context, sess *domain.Session) error {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	return s.Store.Save(ctx, sess)
}

func (s SlowStore) Load(ctx context.Context, id string) (*domain.Session, error) {
	time.Sleep(5 * time.Millisecond) // Simulate IO
	return s.Store.Load(ctx, id)
}

type countingLocker struct {
	mu       sync.Mutex
	locks    int
	unlocks  int
	lastTTL  time.Duration
	failWith error
}

func (l *countingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.failWith != nil {
		return nil, l.failWith
	}
	l.locks++
	l.lastTTL = ttl
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.unlocks++
		return nil
	}, nil
}

func fixedClock() func() time.Time {
	t0 := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	return func() time.Time { return t0 }
}

func TestManager_Create(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(memory.NewStore(), session.WithClock(fixedClock()))

	starter, err := mgr.Create(ctx, true)
	require.NoError(t, err)
	assert.NotEmpty(t, starter.ID)
	require.Len(t, starter.Graph.Nodes, 2)
	assert.Equal(t, domain.KindInput, starter.Graph.Nodes[0].Kind)
	assert.Equal(t, domain.KindAgent, starter.Graph.Nodes[1].Kind)
	assert.Len(t, starter.Graph.Edges, 1)
	assert.Equal(t, fixedClock()(), starter.CreatedAt)

	empty, err := mgr.Create(ctx, false)
	require.NoError(t, err)
	assert.Empty(t, empty.Graph.Nodes)
	assert.NotEqual(t, starter.ID, empty.ID)

	ids, err := mgr.List(ctx)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{starter.ID, empty.ID}, ids)
}

func TestManager_Edit(t *testing.T) {
	ctx := context.Background()
	var seen []*domain.GraphDiff
	mgr := session.NewManager(memory.NewStore(),
		session.WithIDFunc(func() string { return "s1" }),
		session.WithChangeListener(func(d *domain.GraphDiff) { seen = append(seen, d) }),
	)

	created, err := mgr.Create(ctx, true)
	require.NoError(t, err)
	agentID := created.Graph.Nodes[1].ID

	t.Run("field update persists and diffs", func(t *testing.T) {
		updated, diff, err := mgr.Edit(ctx, "s1", func(e *editor.Editor) error {
			if err := e.SelectNode(agentID); err != nil {
				return err
			}
			return e.UpdateSelectedNodeField(domain.FieldSystemInstruction, "Be brief.")
		})
		require.NoError(t, err)
		require.NotNil(t, diff)
		require.Len(t, diff.UpdatedNodes, 1)
		assert.Equal(t, "Be brief.", diff.UpdatedNodes[0].Data[domain.FieldSystemInstruction])
		require.NotNil(t, diff.Selected)
		assert.Equal(t, agentID, *diff.Selected)
		assert.Equal(t, agentID, updated.Selected)

		loaded, err := mgr.Load(ctx, "s1")
		require.NoError(t, err)
		assert.Equal(t, "Be brief.", loaded.Graph.Nodes[1].Data[domain.FieldSystemInstruction])
		assert.Equal(t, agentID, loaded.Selected)
	})

	t.Run("no-op edit yields nil diff", func(t *testing.T) {
		before := len(seen)
		_, diff, err := mgr.Edit(ctx, "s1", func(e *editor.Editor) error { return nil })
		require.NoError(t, err)
		assert.Nil(t, diff)
		assert.Len(t, seen, before)
	})

	t.Run("failed edit is not persisted", func(t *testing.T) {
		boom := errors.New("boom")
		_, _, err := mgr.Edit(ctx, "s1", func(e *editor.Editor) error {
			e.DeleteSelected()
			return boom
		})
		assert.ErrorIs(t, err, boom)

		loaded, err := mgr.Load(ctx, "s1")
		require.NoError(t, err)
		assert.Len(t, loaded.Graph.Nodes, 2)
	})

	t.Run("delete cascades into diff", func(t *testing.T) {
		_, diff, err := mgr.Edit(ctx, "s1", func(e *editor.Editor) error {
			e.DeleteSelected()
			return nil
		})
		require.NoError(t, err)
		require.NotNil(t, diff)
		assert.Equal(t, []string{agentID}, diff.RemovedNodes)
		assert.Len(t, diff.RemovedEdges, 1)
		require.NotNil(t, diff.Selected)
		assert.Empty(t, *diff.Selected)
	})

	t.Run("unknown session", func(t *testing.T) {
		_, _, err := mgr.Edit(ctx, "missing", func(e *editor.Editor) error { return nil })
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	assert.Len(t, seen, 2)
}

func TestManager_EditorOptionsApplied(t *testing.T) {
	ctx := context.Background()
	var added []string
	mgr := session.NewManager(memory.NewStore(),
		session.WithIDFunc(func() string { return "s" }),
		session.WithEditorOptions(editor.WithHooks(domain.EditorHooks{
			OnNodeAdded: func(ev *domain.NodeEvent) { added = append(added, ev.NodeID) },
		})),
	)
	_, err := mgr.Create(ctx, false)
	require.NoError(t, err)

	_, diff, err := mgr.Edit(ctx, "s", func(e *editor.Editor) error {
		_, err := e.AddNodeFromPalette(domain.KindTool)
		return err
	})
	require.NoError(t, err)
	require.Len(t, diff.AddedNodes, 1)
	assert.Equal(t, []string{diff.AddedNodes[0].ID}, added)
}

func TestManager_Locking(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(SlowStore{memory.NewStore()}, session.WithIDFunc(func() string { return "race" }))
	_, err := mgr.Create(ctx, false)
	require.NoError(t, err)

	var wg sync.WaitGroup
	const writers = 10
	for i := 0; i < writers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := mgr.Edit(ctx, "race", func(e *editor.Editor) error {
				_, err := e.AddNodeFromPalette(domain.KindAgent)
				return err
			})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	// Read-modify-write without locking would lose nodes.
	loaded, err := mgr.Load(ctx, "race")
	require.NoError(t, err)
	assert.Len(t, loaded.Graph.Nodes, writers)
}

func TestManager_DistributedLocker(t *testing.T) {
	ctx := context.Background()
	locker := &countingLocker{}
	mgr := session.NewManager(memory.NewStore(),
		session.WithLocker(locker),
		session.WithLockTTL(5*time.Second),
		session.WithIDFunc(func() string { return "d" }),
	)

	_, err := mgr.Create(ctx, false)
	require.NoError(t, err)
	_, err = mgr.Load(ctx, "d")
	require.NoError(t, err)

	assert.Equal(t, 2, locker.locks)
	assert.Equal(t, 2, locker.unlocks)
	assert.Equal(t, 5*time.Second, locker.lastTTL)

	locker.failWith = errors.New("redis down")
	_, err = mgr.Load(ctx, "d")
	assert.ErrorContains(t, err, "failed to acquire distributed lock")
}

func TestManager_Delete(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(memory.NewStore(), session.WithIDFunc(func() string { return "x" }))
	_, err := mgr.Create(ctx, true)
	require.NoError(t, err)

	require.NoError(t, mgr.Delete(ctx, "x"))
	assert.ErrorIs(t, mgr.Delete(ctx, "x"), domain.ErrSessionNotFound)

	_, err = mgr.Editor(ctx, "x")
	assert.ErrorIs(t, err, domain.ErrSessionNotFound)
}

func TestManager_CreateFrom(t *testing.T) {
	ctx := context.Background()
	mgr := session.NewManager(memory.NewStore())

	doc := &domain.GraphDocument{
		Nodes: []domain.NodeRecord{{ID: "a", Kind: domain.KindAgent, Data: map[string]string{domain.FieldLabel: "A"}}},
	}
	created, err := mgr.CreateFrom(ctx, doc)
	require.NoError(t, err)
	assert.Equal(t, "a", created.Graph.Nodes[0].ID)

	doc.Nodes[0].Data[domain.FieldLabel] = "changed"
	loaded, err := mgr.Load(ctx, created.ID)
	require.NoError(t, err)
	assert.Equal(t, "A", loaded.Graph.Nodes[0].Data[domain.FieldLabel])

	_, err = mgr.CreateFrom(ctx, &domain.GraphDocument{
		Nodes: []domain.NodeRecord{{ID: "a", Kind: domain.KindAgent}},
		Edges: []domain.Edge{{Source: "a", Target: "ghost"}},
	})
	assert.Error(t, err)
}
