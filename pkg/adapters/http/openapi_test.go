package http

import (
	"net/http"
	"strings"
	"testing"

	"github.com/aretw0/botcraft/pkg/adapters/memory"
	"github.com/aretw0/botcraft/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetSwagger(t *testing.T) {
	doc, err := GetSwagger()
	require.NoError(t, err)
	assert.Equal(t, "0.1.0", doc.Info.Version)
}

func TestEveryRouteIsDocumented(t *testing.T) {
	doc, err := GetSwagger()
	require.NoError(t, err)

	s := NewServer(session.NewManager(memory.NewStore()))
	count := 0
	err = chi.Walk(s.routes(), func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		count++
		item := doc.Paths.Find(route)
		if !assert.NotNil(t, item, "route %s is not in openapi.yaml", route) {
			return nil
		}
		assert.NotNil(t, item.GetOperation(strings.ToUpper(method)), "%s %s is not in openapi.yaml", method, route)
		return nil
	})
	require.NoError(t, err)
	assert.Equal(t, doc.Paths.Len(), countPaths(s.routes()), "every documented path is routed")
	assert.Greater(t, count, 15)
}

func countPaths(r chi.Routes) int {
	seen := map[string]bool{}
	_ = chi.Walk(r, func(_, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		seen[route] = true
		return nil
	})
	return len(seen)
}
