package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/botcraft/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func contractSession(id string) *domain.Session {
	now := time.Now().UTC().Truncate(time.Second)
	return &domain.Session{
		ID: id,
		Graph: domain.GraphDocument{
			Nodes: []domain.NodeRecord{
				{ID: "in", Kind: domain.KindInput, Position: domain.Position{X: 50, Y: 250}, Data: map[string]string{"label": "Start", "initialPrompt": "ping"}},
				{ID: "ag", Kind: domain.KindAgent, Position: domain.Position{X: 350, Y: 250}, Data: map[string]string{"label": "Agent", "systemInstruction": "", "promptTemplate": "{input}"}},
			},
			Edges: []domain.Edge{{Source: "in", Target: "ag"}},
		},
		Selected:  "ag",
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// RunGraphStoreContract runs a suite of tests to verify that a GraphStore implementation
// adheres to the defined interface contract.
func RunGraphStoreContract(t *testing.T, store GraphStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		session := contractSession(sessionID)

		err := store.Save(ctx, session)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, session.Graph, loaded.Graph)
		assert.Equal(t, "ag", loaded.Selected)
		assert.True(t, session.UpdatedAt.Equal(loaded.UpdatedAt))
	})

	t.Run("Stored Copy Is Isolated", func(t *testing.T) {
		session := contractSession(sessionID)
		require.NoError(t, store.Save(ctx, session))

		session.Graph.Nodes[0].Data["label"] = "mutated after save"
		session.Graph.Edges = nil

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "Start", loaded.Graph.Nodes[0].Data["label"])
		assert.Len(t, loaded.Graph.Edges, 1)
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		require.NoError(t, store.Save(ctx, contractSession(sessionID)))

		err := store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")

		assert.NoError(t, store.Delete(ctx, sessionID), "Deleting twice is not an error")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, contractSession(id1))
		_ = store.Save(ctx, contractSession(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
