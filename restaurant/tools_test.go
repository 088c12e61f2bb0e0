package restaurant

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/brigade/artifact"
	"github.com/hupe1980/brigade/core"
	"github.com/hupe1980/brigade/logging"
	"github.com/hupe1980/brigade/memory"
	"github.com/hupe1980/brigade/tool"
)

func newTestToolContext(t *testing.T) *core.ToolContext {
	t.Helper()

	runCtx := core.NewRunContext(
		context.Background(),
		"test-session",
		"test-run",
		core.AgentInfo{Name: "waiter_agent", Type: "model"},
		core.Content{Role: "user", Parts: []core.Part{core.TextPart{Text: "hello"}}},
		0,
		make(chan core.Event, 10),
		make(chan struct{}, 1),
		core.NewSession("test-session"),
		nil,
		artifact.NewInMemoryStore(),
		memory.NewInMemoryStore(),
		logging.NoOpLogger{},
	)

	return core.NewToolContext(runCtx, "call-1")
}

func TestTools_CoversEveryBackendOperation(t *testing.T) {
	tools := Tools(newTestBackend(t))
	require.Len(t, tools, 14)

	names := make(map[string]bool, len(tools))
	for _, tl := range tools {
		names[tl.Name()] = true
		assert.NotEmpty(t, tl.Description(), tl.Name())
	}

	for _, want := range []string{
		"get_customer", "get_reservations", "create_reservation",
		"check_table_availability", "assign_table", "release_table",
		"get_menu", "get_customer_orders", "create_order",
		"get_order_status", "update_order_status",
		"generate_bill", "process_payment", "add_to_tab",
	} {
		assert.True(t, names[want], "missing tool %s", want)
	}
}

func TestTools_CallRoutesToBackend(t *testing.T) {
	tools := Tools(newTestBackend(t))
	toolCtx := newTestToolContext(t)

	find := func(name string) tool.Tool {
		for _, tl := range tools {
			if tl.Name() == name {
				return tl
			}
		}
		t.Fatalf("tool %s not registered", name)
		return nil
	}

	t.Run("string args", func(t *testing.T) {
		result, err := find("get_customer").Call(toolCtx, map[string]any{"name": "", "phone": "555-0101"})
		require.NoError(t, err)

		assert.Equal(t, "found", result.(map[string]any)["status"])
	})

	t.Run("numeric args arrive as float64", func(t *testing.T) {
		result, err := find("check_table_availability").Call(toolCtx, map[string]any{"party_size": float64(8)})
		require.NoError(t, err)

		assert.Equal(t, 1, result.(map[string]any)["count"])
	})

	t.Run("order items are rebuilt from decoded JSON", func(t *testing.T) {
		result, err := find("create_order").Call(toolCtx, map[string]any{
			"customer_id": "c1",
			"table_id":    "t3",
			"items": []any{
				map[string]any{"name": "Espresso", "quantity": float64(2)},
				map[string]any{"name": "Tiramisu"},
			},
		})
		require.NoError(t, err)

		order := result.(map[string]any)["order"].(Order)
		require.Len(t, order.Items, 2)
		assert.Equal(t, 2, order.Items[0].Quantity)
		assert.Equal(t, 1, order.Items[1].Quantity)
		assert.Equal(t, 16.00, order.Total)
	})
}

func TestArgCoercion(t *testing.T) {
	args := map[string]any{
		"s":     "text",
		"f":     float64(3),
		"i":     2,
		"other": true,
	}

	assert.Equal(t, "text", stringArg(args, "s"))
	assert.Equal(t, "", stringArg(args, "missing"))
	assert.Equal(t, 3, intArg(args, "f", 0))
	assert.Equal(t, 2, intArg(args, "i", 0))
	assert.Equal(t, 7, intArg(args, "missing", 7))
	assert.Equal(t, 7, intArg(args, "other", 7))
	assert.Equal(t, 3.0, floatArg(args, "f"))
	assert.Equal(t, 2.0, floatArg(args, "i"))
	assert.Equal(t, 0.0, floatArg(args, "missing"))
}

func TestOrderItemsArg(t *testing.T) {
	items := orderItemsArg(map[string]any{
		"items": []any{
			map[string]any{"name": "Espresso", "quantity": float64(2)},
			"not an object",
			map[string]any{"name": "Tiramisu"},
		},
	}, "items")

	require.Len(t, items, 2)
	assert.Equal(t, OrderItem{Name: "Espresso", Quantity: 2}, items[0])
	assert.Equal(t, OrderItem{Name: "Tiramisu", Quantity: 1}, items[1])
}

func TestGuestNotesTool(t *testing.T) {
	toolCtx := newTestToolContext(t)
	notes := GuestNotesTool()

	t.Run("record then recall", func(t *testing.T) {
		result, err := notes.Call(toolCtx, map[string]any{"action": "record", "note": "prefers window seats"})
		require.NoError(t, err)
		assert.Equal(t, "recorded", result.(map[string]any)["status"])

		result, err = notes.Call(toolCtx, map[string]any{"action": "recall", "query": "window"})
		require.NoError(t, err)

		recalled := result.(map[string]any)
		assert.Equal(t, 1, recalled["count"])
		assert.Contains(t, recalled["notes"].([]string), "prefers window seats")
	})

	t.Run("record requires a note", func(t *testing.T) {
		_, err := notes.Call(toolCtx, map[string]any{"action": "record"})
		require.Error(t, err)
	})

	t.Run("unknown action", func(t *testing.T) {
		_, err := notes.Call(toolCtx, map[string]any{"action": "forget"})
		require.Error(t, err)
		assert.Contains(t, err.Error(), "forget")
	})
}

func TestBillArtifactTool(t *testing.T) {
	toolCtx := newTestToolContext(t)

	result, err := BillArtifactTool().Call(toolCtx, map[string]any{
		"bill_id": "b42",
		"text":    "Subtotal 49.00\nTax 3.92\nTotal 52.92",
	})
	require.NoError(t, err)
	assert.Equal(t, "bill-b42", result.(map[string]any)["artifact_id"])

	data, err := toolCtx.LoadArtifact("bill-b42")
	require.NoError(t, err)
	assert.Contains(t, string(data), "Total 52.92")

	t.Run("bill_id is required", func(t *testing.T) {
		_, err := BillArtifactTool().Call(toolCtx, map[string]any{"text": "x"})
		require.Error(t, err)
	})
}
