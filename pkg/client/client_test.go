package client

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"
	"unicode/utf8"

	"github.com/aretw0/botcraft/pkg/domain"
	"github.com/aretw0/botcraft/pkg/workflow"
	"github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRequest() workflow.Request {
	return workflow.Request{
		Nodes: []workflow.Node{
			{ID: "1", Type: "input", Data: map[string]any{"label": "Start", "initialPrompt": "ping"}},
			{ID: "2", Type: "agent", Data: map[string]any{"label": "Agent"}},
		},
		Edges:        []workflow.Edge{{Source: "1", Target: "2"}},
		InitialInput: "ping",
	}
}

func TestRun_Success(t *testing.T) {
	var got workflow.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.Equal(t, "Bearer t0k", r.Header.Get("Authorization"))
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"success","result":"pong","full_history":["a"]}`))
	}))
	defer srv.Close()

	c := New(srv.URL, WithHeader("Authorization", "Bearer t0k"))
	res := c.Run(context.Background(), sampleRequest())

	assert.False(t, res.Failed(), res.Error)
	assert.Equal(t, "pong", res.Output)
	assert.Equal(t, "success", res.Status)
	assert.Equal(t, []any{"a"}, res.History)
	assert.Equal(t, sampleRequest(), got)
}

func TestRun_TypeMapping(t *testing.T) {
	var got workflow.Request
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		assert.NoError(t, json.Unmarshal(body, &got))
		_, _ = w.Write([]byte(`{"status":"success","result":"pong"}`))
	}))
	defer srv.Close()

	req := sampleRequest()
	res := New(srv.URL, WithTypeMapping(workflow.ReferenceTypes)).Run(context.Background(), req)

	require.False(t, res.Failed(), res.Error)
	require.Len(t, got.Nodes, 2)
	assert.Equal(t, "input", got.Nodes[0].Type)
	assert.Equal(t, "llm", got.Nodes[1].Type)
	assert.Equal(t, "agent", req.Nodes[1].Type, "caller's request is untouched")
}

func TestRun_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		_, _ = w.Write([]byte(`{"detail":"GEMINI_API_KEY not set"}`))
	}))
	defer srv.Close()

	res := New(srv.URL).Run(context.Background(), sampleRequest())

	require.True(t, res.Failed())
	assert.Contains(t, res.Error, "500")
	assert.Contains(t, res.Error, "GEMINI_API_KEY not set")
	assert.Equal(t, res.Error, res.Display())
}

func TestRun_ServerErrorWithoutJSON(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	}))
	defer srv.Close()

	res := New(srv.URL).Run(context.Background(), sampleRequest())

	require.True(t, res.Failed())
	assert.Contains(t, res.Error, "upstream exploded")
}

func TestRun_UnparseableBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`<html>oops</html>`))
	}))
	defer srv.Close()

	res := New(srv.URL).Run(context.Background(), sampleRequest())

	assert.True(t, res.Failed())
	assert.NotEmpty(t, res.Error)
}

func TestRun_TransportError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	url := srv.URL
	srv.Close()

	res := New(url).Run(context.Background(), sampleRequest())

	assert.True(t, res.Failed())
	assert.Contains(t, res.Error, "could not reach")
}

func TestRun_Timeout(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	res := New(srv.URL, WithTimeout(50*time.Millisecond)).Run(context.Background(), sampleRequest())

	assert.True(t, res.Failed())
	assert.Contains(t, res.Error, "timed out")
}

func TestRun_TimeoutReportsEffectiveDeadline(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	for name, c := range map[string]*Client{
		"no client timeout":     New(srv.URL, WithTimeout(0)),
		"longer client timeout": New(srv.URL, WithTimeout(time.Hour)),
	} {
		t.Run(name, func(t *testing.T) {
			ctx, cancel := context.WithTimeout(context.Background(), 80*time.Millisecond)
			defer cancel()

			res := c.Run(ctx, sampleRequest())

			require.True(t, res.Failed())
			assert.Contains(t, res.Error, "timed out after 80ms")
		})
	}
}

func TestErrorDetail_TruncatesOnRuneBoundary(t *testing.T) {
	body := strings.Repeat("a", maxDetailBytes-1) + strings.Repeat("é", 10)

	got := errorDetail([]byte(body))

	assert.True(t, utf8.ValidString(got))
	assert.Equal(t, strings.Repeat("a", maxDetailBytes-1)+"...", got)
}

func TestRun_SingleFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		close(entered)
		<-release
		_, _ = w.Write([]byte(`{"result":"first"}`))
	}))
	defer srv.Close()

	c := New(srv.URL)
	var first workflow.Result
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		first = c.Run(context.Background(), sampleRequest())
	}()

	<-entered
	assert.True(t, c.Busy())
	second := c.Run(context.Background(), sampleRequest())
	assert.True(t, second.Failed())
	assert.Equal(t, domain.ErrRunInFlight.Error(), second.Error)

	close(release)
	wg.Wait()

	assert.Equal(t, "first", first.Output)
	assert.Equal(t, int32(1), calls.Load())
	assert.False(t, c.Busy())
}

func TestRun_Hooks(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":"success","result":"ok"}`))
	}))
	defer srv.Close()

	var started, finished *domain.RunEvent
	c := New(srv.URL, WithRunHooks(domain.RunHooks{
		OnRunStart:  func(_ context.Context, ev *domain.RunEvent) { started = ev },
		OnRunFinish: func(_ context.Context, ev *domain.RunEvent) { finished = ev },
	}))
	c.Run(context.Background(), sampleRequest())

	require.NotNil(t, started)
	require.NotNil(t, finished)
	assert.Equal(t, domain.EventRunStarted, started.Type)
	assert.Equal(t, 2, started.Nodes)
	assert.Equal(t, 1, started.Edges)
	assert.Equal(t, domain.EventRunFinished, finished.Type)
	assert.Equal(t, "success", finished.Status)
	assert.Empty(t, finished.Error)
}
