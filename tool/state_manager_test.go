package tool

import (
	"testing"

	"github.com/hupe1980/brigade/core"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stateManagerCtx() *core.ToolContext {
	return core.NewToolContext(dummyRunContext(), "fc-state-1")
}

// -------------------- Metadata --------------------

func TestStateManagerTool_Metadata(t *testing.T) {
	sm := NewStateManagerTool()

	assert.Equal(t, "state_manager", sm.Name())
	assert.Contains(t, sm.Description(), "get_state")

	params := sm.Parameters()
	props, ok := params["properties"].(map[string]any)
	require.True(t, ok)
	assert.Contains(t, props, "operation")
	assert.Contains(t, props, "key")
	assert.Contains(t, props, "agent_name")
	assert.Equal(t, []string{"operation"}, params["required"])
}

// -------------------- Dispatch --------------------

func TestStateManagerTool_DispatchErrors(t *testing.T) {
	sm := NewStateManagerTool()
	tc := stateManagerCtx()

	_, err := sm.Call(tc, map[string]any{})
	assert.ErrorContains(t, err, "operation parameter is required")

	_, err = sm.Call(tc, map[string]any{"operation": "reboot"})
	assert.ErrorContains(t, err, "unknown operation: reboot")
}

func TestStateManagerTool_MissingParameters(t *testing.T) {
	sm := NewStateManagerTool()
	tc := stateManagerCtx()

	cases := []struct {
		operation string
		missing   string
	}{
		{"get_state", "key"},
		{"set_state", "key"},
		{"transfer_agent", "agent_name"},
		{"save_artifact", "artifact_id"},
		{"load_artifact", "artifact_id"},
		{"search_memory", "query"},
		{"store_memory", "content"},
	}

	for _, c := range cases {
		t.Run(c.operation, func(t *testing.T) {
			_, err := sm.Call(tc, map[string]any{"operation": c.operation})
			require.Error(t, err)
			assert.Contains(t, err.Error(), c.missing+" parameter is required")
		})
	}
}

// -------------------- State --------------------

func TestStateManagerTool_StateRoundTrip(t *testing.T) {
	sm := NewStateManagerTool()
	tc := stateManagerCtx()

	res, err := sm.Call(tc, map[string]any{"operation": "set_state", "key": "table", "value": "t42"})
	require.NoError(t, err)
	set, ok := res.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, set["success"])

	res, err = sm.Call(tc, map[string]any{"operation": "get_state", "key": "table"})
	require.NoError(t, err)
	got, ok := res.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, true, got["exists"])
	assert.Equal(t, "t42", got["value"])

	// The mutation is also staged as an event delta.
	assert.Equal(t, "t42", tc.Actions().StateDelta["table"])
}

func TestStateManagerTool_GetStateMissingKey(t *testing.T) {
	sm := NewStateManagerTool()
	tc := stateManagerCtx()

	res, err := sm.Call(tc, map[string]any{"operation": "get_state", "key": "nope"})
	require.NoError(t, err)
	got, ok := res.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, false, got["exists"])
	assert.Nil(t, got["value"])
}

// -------------------- Flow Control --------------------

func TestStateManagerTool_FlowControl(t *testing.T) {
	sm := NewStateManagerTool()
	tc := stateManagerCtx()

	_, err := sm.Call(tc, map[string]any{"operation": "transfer_agent", "agent_name": "waiter_agent"})
	require.NoError(t, err)
	require.NotNil(t, tc.Actions().TransferToAgent)
	assert.Equal(t, "waiter_agent", *tc.Actions().TransferToAgent)

	_, err = sm.Call(tc, map[string]any{"operation": "escalate"})
	require.NoError(t, err)
	require.NotNil(t, tc.Actions().Escalate)
	assert.True(t, *tc.Actions().Escalate)

	_, err = sm.Call(tc, map[string]any{"operation": "skip_summarization"})
	require.NoError(t, err)
	require.NotNil(t, tc.Actions().SkipSummarization)
	assert.True(t, *tc.Actions().SkipSummarization)
}

// -------------------- Artifacts --------------------

func TestStateManagerTool_ArtifactRoundTrip(t *testing.T) {
	sm := NewStateManagerTool()
	tc := stateManagerCtx()

	res, err := sm.Call(tc, map[string]any{
		"operation":   "save_artifact",
		"artifact_id": "receipt-1",
		"data":        "2x margherita",
	})
	require.NoError(t, err)
	saved, ok := res.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, len("2x margherita"), saved["size"])

	res, err = sm.Call(tc, map[string]any{"operation": "load_artifact", "artifact_id": "receipt-1"})
	require.NoError(t, err)
	loaded, ok := res.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "2x margherita", loaded["data"])

	res, err = sm.Call(tc, map[string]any{"operation": "list_artifacts"})
	require.NoError(t, err)
	listed, ok := res.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1, listed["count"])
	assert.Contains(t, listed["artifacts"], "receipt-1")
}

func TestStateManagerTool_LoadArtifactNotFound(t *testing.T) {
	sm := NewStateManagerTool()
	tc := stateManagerCtx()

	_, err := sm.Call(tc, map[string]any{"operation": "load_artifact", "artifact_id": "ghost"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "failed to load artifact")
}

// -------------------- Memory --------------------

func TestStateManagerTool_MemoryRoundTrip(t *testing.T) {
	sm := NewStateManagerTool()
	tc := stateManagerCtx()

	_, err := sm.Call(tc, map[string]any{
		"operation": "store_memory",
		"content":   "guest prefers window seats",
		"metadata":  map[string]any{"topic": "seating"},
	})
	require.NoError(t, err)

	_, err = sm.Call(tc, map[string]any{
		"operation": "store_memory",
		"content":   "guest is allergic to peanuts",
	})
	require.NoError(t, err)

	res, err := sm.Call(tc, map[string]any{"operation": "search_memory", "query": "guest"})
	require.NoError(t, err)
	found, ok := res.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 2, found["count"])

	// Limit arrives as a JSON number and must truncate the result set.
	res, err = sm.Call(tc, map[string]any{"operation": "search_memory", "query": "guest", "limit": float64(1)})
	require.NoError(t, err)
	found, ok = res.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 1, found["count"])
}

// -------------------- Session History --------------------

func TestStateManagerTool_SessionHistory(t *testing.T) {
	sm := NewStateManagerTool()
	runCtx := dummyRunContext()
	runCtx.Session.AddEvent(core.NewMessageEvent("captain_agent", "Welcome to the restaurant."))
	runCtx.Session.AddEvent(core.NewFunctionCallEvent("captain_agent", "get_menu", `{}`))
	tc := core.NewToolContext(runCtx, "fc-state-2")

	res, err := sm.Call(tc, map[string]any{"operation": "get_session_history"})
	require.NoError(t, err)
	hist, ok := res.(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 2, hist["count"])

	events, ok := hist["events"].([]map[string]any)
	require.True(t, ok)
	require.Len(t, events, 2)
	assert.Contains(t, events[0]["content_summary"], "Welcome to the restaurant.")
	assert.Contains(t, events[1]["content_summary"], "function_call: get_menu")
}
