package workflow

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validConfig = `
workflows:
  - role: captain_agent
    ordered: true
    terminal: transfer_to_agent
    steps:
      - name: get_customer
        silent: true
      - name: get_reservations
        directive: "call get_reservations with customer_id='{{.Value}}'"
        degraded: "call get_reservations with the id from get_customer"
        extract:
          from: get_customer
          field: customer.id
      - name: transfer_to_agent
  - role: waiter_agent
    state_prefix: service
    header: "Call these first:"
    footer: "Only then respond."
    steps:
      - name: get_customer_orders
      - name: get_menu
`

func TestLoadConfig(t *testing.T) {
	gates, err := LoadConfig([]byte(validConfig))
	require.NoError(t, err)
	require.Len(t, gates, 2)

	captain := gates[0]
	assert.Equal(t, "captain_agent", captain.Role)
	assert.Equal(t, "captain", captain.StatePrefix) // derived from the role
	assert.True(t, captain.Ordered)
	assert.Equal(t, "transfer_to_agent", captain.Terminal)
	require.Len(t, captain.Steps, 3)
	assert.True(t, captain.Steps[0].Silent)
	require.NotNil(t, captain.Steps[1].Extract)
	assert.Equal(t, "get_customer", captain.Steps[1].Extract.From)
	assert.Equal(t, "customer.id", captain.Steps[1].Extract.Field)

	waiter := gates[1]
	assert.Equal(t, "service", waiter.StatePrefix) // explicit prefix wins
	assert.False(t, waiter.Ordered)
	assert.Equal(t, "Call these first:", waiter.Header)
	assert.Equal(t, "Only then respond.", waiter.Footer)
}

func TestLoadConfig_RejectsUnknownFields(t *testing.T) {
	doc := `
workflows:
  - role: captain_agent
    orderd: true
    steps:
      - name: get_customer
`
	_, err := LoadConfig([]byte(doc))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "orderd")
}

func TestLoadConfig_Validation(t *testing.T) {
	tests := []struct {
		name    string
		doc     string
		wantErr string
	}{
		{
			name:    "missing role",
			doc:     "workflows:\n  - steps:\n      - name: get_menu\n",
			wantErr: "role is required",
		},
		{
			name:    "no steps",
			doc:     "workflows:\n  - role: waiter_agent\n",
			wantErr: "at least one step",
		},
		{
			name:    "unnamed step",
			doc:     "workflows:\n  - role: waiter_agent\n    steps:\n      - directive: x\n",
			wantErr: "has no name",
		},
		{
			name:    "duplicate step",
			doc:     "workflows:\n  - role: waiter_agent\n    steps:\n      - name: get_menu\n      - name: get_menu\n",
			wantErr: "duplicate step",
		},
		{
			name:    "extract without from",
			doc:     "workflows:\n  - role: captain_agent\n    steps:\n      - name: get_reservations\n        extract:\n          field: customer.id\n",
			wantErr: "extract.from is required",
		},
		{
			name:    "extract without field",
			doc:     "workflows:\n  - role: captain_agent\n    steps:\n      - name: get_reservations\n        extract:\n          from: get_customer\n",
			wantErr: "extract.field is required",
		},
		{
			name:    "terminal not a step",
			doc:     "workflows:\n  - role: captain_agent\n    ordered: true\n    terminal: assign_table\n    steps:\n      - name: get_customer\n",
			wantErr: "terminal assign_table is not a step",
		},
		{
			name:    "terminal on unordered gate",
			doc:     "workflows:\n  - role: waiter_agent\n    terminal: get_menu\n    steps:\n      - name: get_menu\n",
			wantErr: "terminal requires an ordered workflow",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadConfig([]byte(tt.doc))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "workflows.yaml")
	require.NoError(t, os.WriteFile(path, []byte(validConfig), 0o600))

	gates, err := LoadConfigFile(path)
	require.NoError(t, err)
	assert.Len(t, gates, 2)

	_, err = LoadConfigFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
