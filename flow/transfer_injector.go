package flow

import (
	"fmt"
	"strings"

	"github.com/hupe1980/brigade/core"
	"github.com/hupe1980/brigade/model"
	"github.com/hupe1980/brigade/tool"
)

const transferToolName = "transfer_to_agent"

// TransferToolInjector advertises the transfer tool to the model whenever the
// agent can hand off to sub-agents. Execution of the tool is handled by the
// flow's registry; this processor only shapes the outgoing request.
type TransferToolInjector struct{}

// NewTransferToolInjector constructs the injector processor.
func NewTransferToolInjector() *TransferToolInjector {
	return &TransferToolInjector{}
}

// Name returns the processor's identifier.
func (p *TransferToolInjector) Name() string {
	return "TransferToolInjector"
}

// ProcessRequest appends the transfer tool definition to the request unless
// it is already present. The definition lists the reachable sub-agents so the
// model can pick a valid target.
func (p *TransferToolInjector) ProcessRequest(_ *core.RunContext, req *model.Request, agent FlowAgent) error {
	if !agent.IsTransferEnabled() {
		return nil
	}

	subAgents := agent.GetSubAgents()
	if len(subAgents) == 0 {
		return nil
	}

	for _, td := range req.Tools {
		if td.Function.Name == transferToolName {
			return nil
		}
	}

	transferTool := tool.NewTransferToAgentTool()

	names := make([]string, 0, len(subAgents))
	for _, sub := range subAgents {
		names = append(names, sub.GetName())
	}

	req.Tools = append(req.Tools, model.ToolDefinition{
		Type: "function",
		Function: model.FunctionDefinition{
			Name:        transferTool.Name(),
			Description: fmt.Sprintf("%s Available agents: %s", transferTool.Description(), strings.Join(names, ", ")),
			Parameters:  transferTool.Parameters(),
		},
	})

	return nil
}
