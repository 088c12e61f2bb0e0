package flow

// MultiAgentFlow orchestrates an agent that may perform tool calls and
// transfer control to sub-agents, enabling hierarchical / branching flows.
// MultiAgentFlow extends BaseFlow by selecting processors suitable for
// multi-agent graph execution.
type MultiAgentFlow struct{ *BaseFlow }

// NewMultiAgentFlow creates a new auto flow with default processors.
func NewMultiAgentFlow(agent FlowAgent) *MultiAgentFlow {
	baseFlow := NewBaseFlow(agent)

	// Add default processors for advanced functionality
	baseFlow.AddRequestProcessor(NewInstructionsProcessor())
	baseFlow.AddRequestProcessor(NewContentsProcessor())
	// Inject transfer_to_agent tool definition dynamically when applicable
	baseFlow.AddRequestProcessor(NewTransferToolInjector())

	// Agent-registered processors run after the defaults so they observe the
	// fully assembled request.
	for _, p := range agent.GetRequestProcessors() {
		baseFlow.AddRequestProcessor(p)
	}

	return &MultiAgentFlow{BaseFlow: baseFlow}
}
