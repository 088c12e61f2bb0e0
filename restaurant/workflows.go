package restaurant

import (
	_ "embed"

	"github.com/hupe1980/brigade/workflow"
)

//go:embed workflows.yaml
var defaultWorkflows []byte

// DefaultWorkflows returns the gates the restaurant ships with: the
// captain's ordered arrival sequence and the waiter's pre-greeting set.
func DefaultWorkflows() ([]*workflow.Gate, error) {
	return workflow.LoadConfig(defaultWorkflows)
}
