package functional_test

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"
	"github.com/rpggio/deckline/internal/app"
	"github.com/rpggio/deckline/internal/testserver"
	"github.com/stretchr/testify/require"
)

type rpcResponse struct {
	JSONRPC string          `json:"jsonrpc"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *rpcError       `json:"error,omitempty"`
	ID      any             `json:"id,omitempty"`
}

type rpcError struct {
	Code    int            `json:"code"`
	Message string         `json:"message"`
	Data    map[string]any `json:"data,omitempty"`
}

type card struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Order int    `json:"order"`
}

type outlineResult struct {
	Prompt   string `json:"prompt"`
	Outlines []card `json:"outlines"`
}

type cardChange struct {
	Changed  bool   `json:"changed"`
	Card     *card  `json:"card"`
	Outlines []card `json:"outlines"`
}

type deckResult struct {
	ProjectID string `json:"project_id"`
	Changed   bool   `json:"changed"`
	Slides    []card `json:"slides"`
	Status    struct {
		Pending   bool   `json:"pending"`
		LastError string `json:"last_error"`
	} `json:"save_status"`
}

type cannedGenerator struct{}

func (cannedGenerator) GenerateOutlines(_ context.Context, prompt string, count int) ([]string, error) {
	titles := []string{"Why " + prompt, "How it works", "Results", "Next steps"}
	if count < len(titles) {
		titles = titles[:count]
	}
	return titles, nil
}

func post(t *testing.T, ts *testserver.TestServer, path string, payload any) *http.Response {
	t.Helper()
	body, err := json.Marshal(payload)
	require.NoError(t, err)

	req, err := http.NewRequest(http.MethodPost, ts.Server.URL+path, bytes.NewBuffer(body))
	require.NoError(t, err)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json, text/event-stream")
	req.Header.Set("Authorization", "Bearer "+ts.Token)

	resp, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	return resp
}

func rpcCall(t *testing.T, ts *testserver.TestServer, path, method string, params any) rpcResponse {
	t.Helper()

	payload := map[string]any{
		"jsonrpc": "2.0",
		"method":  method,
		"id":      1,
	}
	if params != nil {
		payload["params"] = params
	}

	resp := post(t, ts, path, payload)
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		bodyBytes, _ := io.ReadAll(resp.Body)
		t.Fatalf("Expected status 200, got %d. Body: %s", resp.StatusCode, string(bodyBytes))
	}

	var result rpcResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	return result
}

// initializeSession performs the MCP initialize handshake
func initializeSession(t *testing.T, ts *testserver.TestServer) {
	t.Helper()

	resp := rpcCall(t, ts, "/mcp", "initialize", map[string]any{
		"protocolVersion": "2025-06-18",
		"capabilities":    map[string]any{},
		"clientInfo": map[string]any{
			"name":    "test-client",
			"version": "1.0.0",
		},
	})
	require.Nil(t, resp.Error, "Initialize failed: %v", resp.Error)
}

// toolCall makes a tools/call request and returns the text payload and
// whether the tool reported an error.
func toolCall(t *testing.T, ts *testserver.TestServer, toolName string, args any) (json.RawMessage, bool) {
	t.Helper()

	params := map[string]any{
		"name": toolName,
	}
	if args != nil {
		params["arguments"] = args
	}

	resp := rpcCall(t, ts, "/mcp", "tools/call", params)
	require.Nil(t, resp.Error, "RPC error: %v", resp.Error)

	var toolResult struct {
		Content []struct {
			Type string `json:"type"`
			Text string `json:"text"`
		} `json:"content"`
		IsError bool `json:"isError"`
	}
	require.NoError(t, json.Unmarshal(resp.Result, &toolResult))
	require.NotEmpty(t, toolResult.Content)
	return json.RawMessage(toolResult.Content[0].Text), toolResult.IsError
}

func callTool(t *testing.T, ts *testserver.TestServer, toolName string, args any, out any) {
	t.Helper()
	text, isError := toolCall(t, ts, toolName, args)
	require.False(t, isError, "Tool error: %s", text)
	if out != nil {
		require.NoError(t, json.Unmarshal(text, out))
	}
}

func titles(cards []card) []string {
	out := make([]string, len(cards))
	for i, c := range cards {
		out[i] = c.Title
	}
	return out
}

func TestFunctional_Authentication(t *testing.T) {
	ts := testserver.New(t, "token", "tenant1", 0)

	for _, path := range []string{"/mcp", "/rpc"} {
		req, err := http.NewRequest(http.MethodPost, ts.Server.URL+path, bytes.NewBufferString(`{"jsonrpc":"2.0","method":"tools/call","params":{"name":"get_outline"},"id":1}`))
		require.NoError(t, err)
		req.Header.Set("Content-Type", "application/json")

		resp, err := http.DefaultClient.Do(req)
		require.NoError(t, err)
		resp.Body.Close()
		require.Equal(t, http.StatusUnauthorized, resp.StatusCode, path)
	}

	resp, err := http.Get(ts.Server.URL + "/health")
	require.NoError(t, err)
	resp.Body.Close()
	require.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestFunctional_OutlineEditing(t *testing.T) {
	ts := testserver.New(t, "token", "tenant1", 0)
	initializeSession(t, ts)

	var out outlineResult
	callTool(t, ts, "set_prompt", map[string]any{"prompt": "Team offsite"}, &out)
	require.Equal(t, "Team offsite", out.Prompt)
	require.Empty(t, out.Outlines)

	var change cardChange
	callTool(t, ts, "insert_card", map[string]any{"title": "Agenda"}, &change)
	callTool(t, ts, "insert_card", map[string]any{"title": "Logistics"}, &change)
	callTool(t, ts, "add_outline", map[string]any{"title": "Welcome"}, &change)
	require.Equal(t, []string{"Welcome", "Agenda", "Logistics"}, titles(change.Outlines))

	callTool(t, ts, "insert_card", map[string]any{"title": "Icebreaker", "after": 1}, &change)
	require.Equal(t, []string{"Welcome", "Icebreaker", "Agenda", "Logistics"}, titles(change.Outlines))
	for i, c := range change.Outlines {
		require.Equal(t, i+1, c.Order)
	}
	welcome := change.Outlines[0]
	logistics := change.Outlines[3]

	callTool(t, ts, "move_card", map[string]any{"id": logistics.ID, "target": 0}, &change)
	require.True(t, change.Changed)
	require.Equal(t, []string{"Logistics", "Welcome", "Icebreaker", "Agenda"}, titles(change.Outlines))

	// Pointer in the lower half of row 2 drops after it.
	callTool(t, ts, "drag_card", map[string]any{
		"id":          logistics.ID,
		"hover_index": 2,
		"pointer_y":   130,
		"row_top":     100,
		"row_height":  40,
	}, &change)
	require.True(t, change.Changed)
	require.Equal(t, []string{"Welcome", "Icebreaker", "Logistics", "Agenda"}, titles(change.Outlines))

	callTool(t, ts, "edit_card", map[string]any{"id": welcome.ID, "title": "Hello"}, &change)
	require.Equal(t, "Hello", change.Outlines[0].Title)
	require.Equal(t, welcome.ID, change.Outlines[0].ID)

	callTool(t, ts, "delete_card", map[string]any{"id": "missing"}, &change)
	require.False(t, change.Changed)
	require.Len(t, change.Outlines, 4)

	callTool(t, ts, "delete_card", map[string]any{"id": welcome.ID}, &change)
	require.True(t, change.Changed)
	require.Equal(t, []string{"Icebreaker", "Logistics", "Agenda"}, titles(change.Outlines))

	callTool(t, ts, "get_outline", nil, &out)
	require.Equal(t, "Team offsite", out.Prompt)
	require.Equal(t, []string{"Icebreaker", "Logistics", "Agenda"}, titles(out.Outlines))

	callTool(t, ts, "reset_outline", nil, &out)
	require.Empty(t, out.Prompt)
	require.Empty(t, out.Outlines)
}

func TestFunctional_TenantsAreIsolated(t *testing.T) {
	ts := testserver.New(t, "token", "tenant1", 0)
	callTool(t, ts, "add_outline", map[string]any{"title": "Mine"}, nil)

	require.NoError(t, ts.AddAPIKey("other", "tenant2"))
	other := *ts
	other.Token = "other"

	var out outlineResult
	callTool(t, &other, "get_outline", nil, &out)
	require.Empty(t, out.Outlines)
}

func TestFunctional_GenerationWithoutModel(t *testing.T) {
	ts := testserver.New(t, "token", "tenant1", 0)
	callTool(t, ts, "add_outline", map[string]any{"title": "Keep me"}, nil)

	text, isError := toolCall(t, ts, "generate_outlines", map[string]any{"prompt": "Anything"})
	require.True(t, isError)
	require.Contains(t, string(text), "GENERATOR_UNAVAILABLE")

	var out outlineResult
	callTool(t, ts, "get_outline", nil, &out)
	require.Equal(t, []string{"Keep me"}, titles(out.Outlines))
}

func TestFunctional_OutlineToDeck(t *testing.T) {
	ts := testserver.New(t, "token", "tenant1", 50*time.Millisecond, app.WithGenerator(cannedGenerator{}))

	var out outlineResult
	callTool(t, ts, "generate_outlines", map[string]any{"prompt": "solar", "count": 3}, &out)
	require.Equal(t, "solar", out.Prompt)
	require.Equal(t, []string{"Why solar", "How it works", "Results"}, titles(out.Outlines))

	var proj struct {
		ID     string `json:"id"`
		Title  string `json:"title"`
		Slides []card `json:"slides"`
	}
	callTool(t, ts, "create_project", map[string]any{}, &proj)
	require.NotEmpty(t, proj.ID)
	require.Equal(t, "Why solar", proj.Title)
	require.Len(t, proj.Slides, 3)

	var list []struct {
		ID string `json:"id"`
	}
	callTool(t, ts, "list_projects", nil, &list)
	require.Len(t, list, 1)

	var deck deckResult
	callTool(t, ts, "open_deck", map[string]any{"project_id": proj.ID}, &deck)
	require.Equal(t, []string{"Why solar", "How it works", "Results"}, titles(deck.Slides))

	callTool(t, ts, "move_slide", map[string]any{"project_id": proj.ID, "id": proj.Slides[2].ID, "target": 0}, &deck)
	require.True(t, deck.Changed)
	require.True(t, deck.Status.Pending)

	callTool(t, ts, "insert_slide", map[string]any{"project_id": proj.ID, "title": "Q&A"}, &deck)
	callTool(t, ts, "edit_slide", map[string]any{"project_id": proj.ID, "id": proj.Slides[0].ID, "title": "Why now"}, &deck)
	callTool(t, ts, "delete_slide", map[string]any{"project_id": proj.ID, "id": proj.Slides[1].ID}, &deck)
	require.Equal(t, []string{"Results", "Why now", "Q&A"}, titles(deck.Slides))

	require.Eventually(t, func() bool {
		var status struct {
			Pending bool `json:"pending"`
		}
		callTool(t, ts, "save_status", map[string]any{"project_id": proj.ID}, &status)
		return !status.Pending
	}, 5*time.Second, 25*time.Millisecond)

	var saved struct {
		Slides []card `json:"slides"`
	}
	callTool(t, ts, "get_project", map[string]any{"id": proj.ID}, &saved)
	require.Equal(t, []string{"Results", "Why now", "Q&A"}, titles(saved.Slides))

	var entries []struct {
		Type      string `json:"type"`
		ProjectID string `json:"project_id"`
	}
	callTool(t, ts, "get_recent_activity", map[string]any{"project_id": proj.ID, "type": "document_saved"}, &entries)
	require.NotEmpty(t, entries)
	require.Equal(t, proj.ID, entries[0].ProjectID)

	var closed map[string]bool
	callTool(t, ts, "close_deck", map[string]any{"project_id": proj.ID}, &closed)
	require.True(t, closed["closed"])
}

func TestFunctional_ToolErrors(t *testing.T) {
	ts := testserver.New(t, "token", "tenant1", 0)

	text, isError := toolCall(t, ts, "open_deck", map[string]any{"project_id": "nope"})
	require.True(t, isError)
	require.Contains(t, string(text), "PROJECT_NOT_FOUND")

	text, isError = toolCall(t, ts, "create_project", map[string]any{})
	require.True(t, isError)
	require.Contains(t, string(text), "EMPTY_OUTLINES")
}

func TestFunctional_JSONRPCEndpoint(t *testing.T) {
	ts := testserver.New(t, "token", "tenant1", 0)

	resp := rpcCall(t, ts, "/rpc", "add_outline", map[string]any{"title": "Over RPC"})
	require.Nil(t, resp.Error)
	var change cardChange
	require.NoError(t, json.Unmarshal(resp.Result, &change))
	require.Equal(t, "Over RPC", change.Card.Title)

	resp = rpcCall(t, ts, "/rpc", "does_not_exist", nil)
	require.NotNil(t, resp.Error)
	require.Equal(t, -32601, resp.Error.Code)

	resp = rpcCall(t, ts, "/rpc", "get_project", map[string]any{"id": "nope"})
	require.NotNil(t, resp.Error)
	require.Equal(t, -32000, resp.Error.Code)
	require.Equal(t, "PROJECT_NOT_FOUND", resp.Error.Data["code"])
}

func TestFunctional_OutlineWebSocket(t *testing.T) {
	ts := testserver.New(t, "token", "tenant1", 0)

	url := "ws" + strings.TrimPrefix(ts.Server.URL, "http") + "/ws"
	header := http.Header{"Authorization": []string{"Bearer " + ts.Token}}
	conn, _, err := websocket.DefaultDialer.Dial(url, header)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	var msg struct {
		Type    string `json:"type"`
		Outline struct {
			Outlines []card `json:"outlines"`
		} `json:"outline"`
	}
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(5*time.Second)))
	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, "outline", msg.Type)
	require.Empty(t, msg.Outline.Outlines)

	callTool(t, ts, "add_outline", map[string]any{"title": "Live"}, nil)

	require.NoError(t, conn.ReadJSON(&msg))
	require.Equal(t, []string{"Live"}, titles(msg.Outline.Outlines))
}
