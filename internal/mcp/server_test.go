package mcp

import (
	"context"
	"encoding/json"
	"testing"

	sdkmcp "github.com/modelcontextprotocol/go-sdk/mcp"
	"github.com/rpggio/deckline/internal/domain/outline"
	"github.com/stretchr/testify/require"
)

func connectInMemory(t *testing.T, cfg Config) *sdkmcp.ClientSession {
	t.Helper()
	ctx := context.Background()

	server := NewServer(cfg)
	serverTransport, clientTransport := sdkmcp.NewInMemoryTransports()
	serverSession, err := server.Connect(ctx, serverTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = serverSession.Close() })

	client := sdkmcp.NewClient(&sdkmcp.Implementation{Name: "test-client", Version: "1.0.0"}, nil)
	session, err := client.Connect(ctx, clientTransport, nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = session.Close() })
	return session
}

func TestServer_ToolsOverStdioTenant(t *testing.T) {
	ctx := context.Background()
	outlines := outline.NewService(outline.NewRegistry(nil, "", nil), nil, nil)
	session := connectInMemory(t, Config{
		Services:      Services{Outlines: outlines},
		TransportMode: "stdio",
		DefaultTenant: "local",
	})

	tools, err := session.ListTools(ctx, nil)
	require.NoError(t, err)
	require.Len(t, tools.Tools, len(buildToolCatalog()))

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "insert_card",
		Arguments: map[string]any{"title": "Opening"},
	})
	require.NoError(t, err)
	require.False(t, res.IsError)

	var change CardChangeResponse
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].(*sdkmcp.TextContent).Text), &change))
	require.True(t, change.Changed)
	require.Equal(t, "Opening", change.Card.Title)

	snap, err := outlines.Snapshot(ctx, "local")
	require.NoError(t, err)
	require.Len(t, snap.Outlines, 1)
}

func TestServer_ToolErrorsAreResults(t *testing.T) {
	ctx := context.Background()
	outlines := outline.NewService(outline.NewRegistry(nil, "", nil), nil, nil)
	session := connectInMemory(t, Config{Services: Services{Outlines: outlines}, TransportMode: "stdio"})

	res, err := session.CallTool(ctx, &sdkmcp.CallToolParams{
		Name:      "replace_outlines",
		Arguments: map[string]any{"outlines": []map[string]any{{"title": "no id"}}},
	})
	require.NoError(t, err)
	require.True(t, res.IsError)

	var apiErr APIError
	require.NoError(t, json.Unmarshal([]byte(res.Content[0].(*sdkmcp.TextContent).Text), &apiErr))
	require.Equal(t, "INVALID_INPUT", apiErr.Code)
}

func TestServer_DocResources(t *testing.T) {
	ctx := context.Background()
	session := connectInMemory(t, Config{TransportMode: "stdio"})

	for _, doc := range docResources {
		res, err := session.ReadResource(ctx, &sdkmcp.ReadResourceParams{URI: doc.URI})
		require.NoError(t, err)
		require.Len(t, res.Contents, 1)
		require.Equal(t, doc.Content, res.Contents[0].Text)
	}
}
