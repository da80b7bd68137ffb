// Package testserver runs the full HTTP stack over an in-memory database for
// functional tests.
package testserver

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/deckline/internal/app"
	"github.com/rpggio/deckline/internal/config"
	"github.com/rpggio/deckline/internal/transport"
	"github.com/stretchr/testify/require"
)

type TestServer struct {
	Server   *httptest.Server
	App      *app.App
	Token    string
	TenantID string
}

// New starts a server whose only API key maps token to tenantID. Deck
// autosave waits quietPeriod; zero keeps the configured default.
func New(t *testing.T, token, tenantID string, quietPeriod time.Duration, opts ...app.Option) *TestServer {
	t.Helper()

	cfg := config.Default()
	cfg.DB.Path = fmt.Sprintf("file:%s?mode=memory&cache=shared", strings.ReplaceAll(t.Name(), "/", "_"))
	cfg.Auth.Enabled = true
	if quietPeriod > 0 {
		cfg.Autosave.QuietPeriod = quietPeriod
	}

	a, err := app.New(context.Background(), cfg, nil, opts...)
	require.NoError(t, err)

	mcpServer := a.MCPServer("http")
	mcpHandler := sdkmcp.NewStreamableHTTPHandler(
		func(*http.Request) *sdkmcp.Server { return mcpServer },
		&sdkmcp.StreamableHTTPOptions{Stateless: true, JSONResponse: true},
	)

	router := transport.NewRouter(a.Handler(), transport.Options{
		Auth:     transport.AuthMiddleware(a.APIKeys),
		Outlines: a.Outlines,
		MCP:      mcpHandler,
	})
	server := httptest.NewServer(router)

	ts := &TestServer{
		Server:   server,
		App:      a,
		Token:    token,
		TenantID: tenantID,
	}

	require.NoError(t, ts.AddAPIKey(token, tenantID))

	t.Cleanup(func() {
		server.Close()
		_ = a.Close(context.Background())
	})

	return ts
}

func (ts *TestServer) AddAPIKey(token, tenantID string) error {
	return ts.App.APIKeys.Add(context.Background(), token, tenantID, "test")
}
