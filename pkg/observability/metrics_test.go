package observability_test

import (
	"context"
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/aretw0/botcraft/pkg/domain"
	"github.com/aretw0/botcraft/pkg/observability"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEditorHooks(t *testing.T) {
	m := observability.New(false)
	h := m.EditorHooks()

	h.OnNodeAdded(&domain.NodeEvent{Kind: domain.KindAgent})
	h.OnNodeAdded(&domain.NodeEvent{Kind: domain.KindAgent})
	h.OnNodeRemoved(&domain.NodeEvent{Kind: domain.KindTool})
	h.OnEdgeAdded(&domain.EdgeEvent{})

	expected := `
# HELP botcraft_node_mutations_total Node changes made through the editor.
# TYPE botcraft_node_mutations_total counter
botcraft_node_mutations_total{kind="agent",op="add"} 2
botcraft_node_mutations_total{kind="tool",op="remove"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "botcraft_node_mutations_total"))

	expectedEdges := `
# HELP botcraft_edge_mutations_total Edge changes made through the editor.
# TYPE botcraft_edge_mutations_total counter
botcraft_edge_mutations_total{op="add"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expectedEdges), "botcraft_edge_mutations_total"))
}

func TestRunHooks(t *testing.T) {
	m := observability.New(false)
	h := m.RunHooks()
	ctx := context.Background()

	h.OnRunStart(ctx, &domain.RunEvent{Nodes: 3})
	h.OnRunFinish(ctx, &domain.RunEvent{Nodes: 3, Duration: time.Second, Status: "success"})
	h.OnRunStart(ctx, &domain.RunEvent{Nodes: 1})
	h.OnRunFinish(ctx, &domain.RunEvent{Nodes: 1, Error: "execution failed"})

	expected := `
# HELP botcraft_workflow_runs_total Workflow executions by outcome.
# TYPE botcraft_workflow_runs_total counter
botcraft_workflow_runs_total{outcome="error"} 1
botcraft_workflow_runs_total{outcome="success"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "botcraft_workflow_runs_total"))

	n, err := testutil.GatherAndCount(m.Registry(), "botcraft_workflow_run_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	expectedGauge := `
# HELP botcraft_workflow_runs_in_flight Executions currently awaiting a response.
# TYPE botcraft_workflow_runs_in_flight gauge
botcraft_workflow_runs_in_flight 0
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expectedGauge), "botcraft_workflow_runs_in_flight"))
}

func TestHandler(t *testing.T) {
	m := observability.New(true)
	m.EditorHooks().OnEdgeRemoved(&domain.EdgeEvent{})

	srv := httptest.NewServer(m.Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)

	assert.Contains(t, string(body), `botcraft_edge_mutations_total{op="remove"} 1`)
	assert.Contains(t, string(body), "go_goroutines")
}
