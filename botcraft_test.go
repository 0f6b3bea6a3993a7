package botcraft_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/aretw0/botcraft"
	"github.com/aretw0/botcraft/pkg/client"
	"github.com/aretw0/botcraft/pkg/domain"
	"github.com/aretw0/botcraft/pkg/editor"
	"github.com/aretw0/botcraft/pkg/workflow"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingRunner struct {
	got   []workflow.Request
	reply workflow.Result
}

func (r *recordingRunner) Run(_ context.Context, req workflow.Request) workflow.Result {
	r.got = append(r.got, req)
	return r.reply
}

func TestStudio_RunStarter(t *testing.T) {
	runner := &recordingRunner{reply: workflow.Result{Output: "done"}}
	studio := botcraft.New(botcraft.WithRunner(runner))

	res := studio.Run(context.Background(), "")
	require.False(t, res.Failed(), res.Error)
	assert.Equal(t, "done", res.Output)

	require.Len(t, runner.got, 1)
	req := runner.got[0]
	assert.Len(t, req.Nodes, 2)
	assert.Len(t, req.Edges, 1)
	assert.Equal(t, "Find the latest AI news and email it to me.", req.InitialInput)
}

func TestStudio_RunRejectsUnrunnableGraph(t *testing.T) {
	runner := &recordingRunner{}
	studio := botcraft.New(botcraft.WithRunner(runner), botcraft.WithEditor(editor.New(nil)))

	res := studio.Run(context.Background(), "hi")
	assert.True(t, res.Failed())
	assert.Contains(t, res.Error, workflow.ErrEmptyWorkflow.Error())
	assert.Empty(t, runner.got, "nothing is sent for an invalid graph")

	// Missing required field on an email node
	_, err := studio.Editor().AddNodeFromPalette(domain.KindInput)
	require.NoError(t, err)
	_, err = studio.Editor().AddNodeFromPalette(domain.KindEmailAction)
	require.NoError(t, err)

	res = studio.Run(context.Background(), "hi")
	assert.Contains(t, res.Error, domain.FieldReceiverEmail)
	assert.Empty(t, runner.got)
}

func TestSubmit_NoRunner(t *testing.T) {
	studio := botcraft.New()
	res := studio.Run(context.Background(), "")
	assert.Equal(t, "no execution backend configured", res.Error)
}

func TestStudio_WorkflowAndPlan(t *testing.T) {
	studio := botcraft.New()

	req := studio.Workflow("override")
	assert.Equal(t, "override", req.InitialInput)

	plan, err := studio.Plan()
	require.NoError(t, err)
	require.Len(t, plan.Steps, 2)
	assert.Equal(t, plan.Entry, plan.Steps[0].NodeID)
}

func TestStudio_WithClient(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req workflow.Request
		if !assert.NoError(t, json.NewDecoder(r.Body).Decode(&req)) {
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]any{"result": "echo: " + req.InitialInput})
	}))
	defer srv.Close()

	studio := botcraft.New(botcraft.WithRunner(client.New(srv.URL)))
	res := studio.Run(context.Background(), "ping")
	require.False(t, res.Failed(), res.Error)
	assert.Equal(t, "echo: ping", res.Output)
}

func TestVersion(t *testing.T) {
	assert.NotEmpty(t, botcraft.Version)
	assert.NotContains(t, botcraft.Version, "\n")
}
