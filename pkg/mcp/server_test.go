package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reelgate/reelgate/pkg/budget"
	"github.com/reelgate/reelgate/pkg/ledger"
	"github.com/reelgate/reelgate/pkg/models"
	"github.com/reelgate/reelgate/pkg/pricing"
)

func newTestServer(t *testing.T) (*Server, *ledger.SQLiteLedger) {
	t.Helper()
	l, err := ledger.Open(filepath.Join(t.TempDir(), "mcp_test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { l.Close() })

	guard, err := budget.New(5000, pricing.DefaultTable(), l, zerolog.Nop())
	require.NoError(t, err)
	return New(guard, l, "test", zerolog.Nop()), l
}

func sendAndReceive(t *testing.T, srv *Server, req Request) Response {
	t.Helper()
	line, err := json.Marshal(req)
	require.NoError(t, err)
	line = append(line, '\n')

	var out bytes.Buffer
	require.NoError(t, srv.Run(context.Background(), bytes.NewReader(line), &out))

	var resp Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp), "raw: %s", out.String())
	return resp
}

func callTool(t *testing.T, srv *Server, name string, args any) ToolCallResult {
	t.Helper()
	rawArgs, err := json.Marshal(args)
	require.NoError(t, err)
	params, err := json.Marshal(ToolCallParams{Name: name, Arguments: rawArgs})
	require.NoError(t, err)

	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`1`),
		Method:  "tools/call",
		Params:  params,
	})
	require.Nil(t, resp.Error)

	data, err := json.Marshal(resp.Result)
	require.NoError(t, err)
	var result ToolCallResult
	require.NoError(t, json.Unmarshal(data, &result))
	return result
}

func TestInitialize(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`1`),
		Method:  "initialize",
	})
	require.Nil(t, resp.Error)

	data, _ := json.Marshal(resp.Result)
	var init InitializeResult
	require.NoError(t, json.Unmarshal(data, &init))
	assert.Equal(t, "reelgate", init.ServerInfo.Name)
	assert.Equal(t, "test", init.ServerInfo.Version)
}

func TestToolsList(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`1`),
		Method:  "tools/list",
	})
	require.Nil(t, resp.Error)

	data, _ := json.Marshal(resp.Result)
	var list ToolsListResult
	require.NoError(t, json.Unmarshal(data, &list))

	names := make([]string, 0, len(list.Tools))
	for _, tool := range list.Tools {
		names = append(names, tool.Name)
	}
	assert.ElementsMatch(t, []string{"reelgate_estimate", "reelgate_budget", "reelgate_ledger"}, names)
}

func TestUnknownMethod(t *testing.T) {
	srv, _ := newTestServer(t)
	resp := sendAndReceive(t, srv, Request{
		JSONRPC: "2.0",
		ID:      json.RawMessage(`1`),
		Method:  "resources/list",
	})
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeMethodNotFound, resp.Error.Code)
}

func TestEstimateTool(t *testing.T) {
	srv, _ := newTestServer(t)

	result := callTool(t, srv, "reelgate_estimate", map[string]any{
		"duration_seconds": 60,
		"tier":             "low",
	})
	require.False(t, result.IsError)
	require.Len(t, result.Content, 1)
	assert.Contains(t, result.Content[0].Text, "$1.20")
	assert.Contains(t, result.Content[0].Text, "would be approved")
}

func TestEstimateToolUnknownTier(t *testing.T) {
	srv, _ := newTestServer(t)

	result := callTool(t, srv, "reelgate_estimate", map[string]any{
		"duration_seconds": 60,
		"tier":             "ultra",
	})
	assert.True(t, result.IsError)
}

func TestBudgetTool(t *testing.T) {
	srv, l := newTestServer(t)
	now := time.Now().UTC()
	require.NoError(t, l.Append(context.Background(), models.LedgerEntry{
		ID:              uuid.NewString(),
		Period:          models.PeriodOf(now),
		CreatedAt:       now,
		DurationSeconds: 60,
		Tier:            models.TierLow,
		PromptChars:     10,
		Amount:          120,
		Authorized:      true,
		Status:          models.StatusSubmitted,
		JobID:           "job-1",
	}))

	result := callTool(t, srv, "reelgate_budget", map[string]any{})
	require.False(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "Spent: $1.20")
	assert.Contains(t, result.Content[0].Text, "Remaining: $48.80")
}

func TestLedgerTool(t *testing.T) {
	srv, l := newTestServer(t)
	now := time.Now().UTC()
	require.NoError(t, l.Append(context.Background(), models.LedgerEntry{
		ID:              uuid.NewString(),
		Period:          models.PeriodOf(now),
		CreatedAt:       now,
		DurationSeconds: 90,
		Tier:            models.TierHigh,
		PromptChars:     10,
		Amount:          450,
		Authorized:      false,
		Status:          models.StatusRejected,
	}))

	result := callTool(t, srv, "reelgate_ledger", map[string]any{"limit": 5})
	require.False(t, result.IsError)
	assert.Contains(t, result.Content[0].Text, "rejected")
	assert.Contains(t, result.Content[0].Text, "$4.50")
}

func TestUnknownTool(t *testing.T) {
	srv, _ := newTestServer(t)
	result := callTool(t, srv, "reelgate_teleport", map[string]any{})
	assert.True(t, result.IsError)
}

func TestParseError(t *testing.T) {
	srv, _ := newTestServer(t)

	var out bytes.Buffer
	require.NoError(t, srv.Run(context.Background(), bytes.NewReader([]byte("{broken\n")), &out))

	var resp Response
	require.NoError(t, json.Unmarshal(out.Bytes(), &resp))
	require.NotNil(t, resp.Error)
	assert.Equal(t, CodeParseError, resp.Error.Code)
}
