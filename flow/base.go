package flow

import (
	"fmt"

	"github.com/hupe1980/brigade/core"
	"github.com/hupe1980/brigade/model"
	"github.com/hupe1980/brigade/tool"
)

// BaseFlow is a minimal single‑agent flow implementation that supports a
// request -> LLM -> (optional tool loop) cycle with pluggable pre/post processors.
type BaseFlow struct {
	agent              FlowAgent
	requestProcessors  []RequestProcessor
	responseProcessors []ResponseProcessor
	executor           FunctionExecutor
}

// NewBaseFlow creates a new basic single-agent flow. Function calls execute
// through a parallel executor that preserves call order on emit and reports
// finished calls to the agent's tool observers.
func NewBaseFlow(agent FlowAgent) *BaseFlow {
	return &BaseFlow{
		agent:              agent,
		requestProcessors:  []RequestProcessor{},
		responseProcessors: []ResponseProcessor{},
		executor: NewParallelFunctionExecutor(FunctionExecutorConfig{
			PreserveOrder: true,
			Observers:     agent.GetToolObservers(),
		}),
	}
}

// AddRequestProcessor appends a request processor; order of registration defines execution order.
func (f *BaseFlow) AddRequestProcessor(processor RequestProcessor) {
	f.requestProcessors = append(f.requestProcessors, processor)
}

// AddResponseProcessor appends a response processor executed after each model chunk.
func (f *BaseFlow) AddResponseProcessor(processor ResponseProcessor) {
	f.responseProcessors = append(f.responseProcessors, processor)
}

// Execute launches the flow asynchronously and returns a channel of Events.
// The channel is closed when a final response is emitted or an unrecoverable
// error occurs. Callers should range over the returned channel.
func (f *BaseFlow) Execute(runCtx *core.RunContext) (<-chan core.Event, error) {
	eventChan := make(chan core.Event, 100)

	go func() {
		defer close(eventChan)

		for {
			last := f.runOnce(runCtx, eventChan)
			if last == nil {
				break
			}
			// A hand-off ends this agent's participation in the run; the
			// agent layer dispatches the transfer target.
			if last.Actions.TransferToAgent != nil && *last.Actions.TransferToAgent != "" {
				break
			}
			// If we just emitted a function response, we want another LLM turn
			if len(last.GetFunctionResponses()) > 0 {
				continue
			}
			if last.IsPartial() {
				runCtx.LogWarn("flow.partial.final", "agent", f.agent.GetName())
				break
			}
			if last.IsFinalResponse() {
				break
			}
		}
	}()

	return eventChan, nil
}

// emitError converts an internal error to a system Event.
func (f *BaseFlow) emitError(eventChan chan<- core.Event, runCtx *core.RunContext, err error) {
	ev := core.NewEvent(runCtx.RunID, "system")
	msg := err.Error()
	ev.ErrorMessage = &msg
	eventChan <- ev
}

// toolRegistry builds the executable tool set for this turn. The transfer
// tool rides along whenever the agent can actually hand off to a sub-agent,
// matching the definition the transfer injector advertises to the model.
func (f *BaseFlow) toolRegistry() map[string]tool.Tool {
	tools := f.agent.GetTools()

	registry := make(map[string]tool.Tool, len(tools)+1)
	for name, t := range tools {
		registry[name] = t
	}

	if f.agent.IsTransferEnabled() && len(f.agent.GetSubAgents()) > 0 {
		registry[transferToolName] = tool.NewTransferToAgentTool()
	}

	return registry
}

// runOnce performs one model turn (including any tool executions) and returns
// the last emitted Event (final or intermediate). A nil return signals termination.
func (f *BaseFlow) runOnce(runCtx *core.RunContext, eventChan chan<- core.Event) *core.Event {
	// Refresh session snapshot so request processors see latest conversation (including tool responses)
	if runCtx.SessionStore != nil {
		if latest, err := runCtx.SessionStore.Get(runCtx.SessionID); err == nil && latest != nil {
			runCtx.Session = latest
		}
	}

	// Create a new model request
	req := new(model.Request)

	// Build tool definitions before processors run so processors observe and
	// may extend the advertised tool set. The executable registry is a
	// superset: it also carries the transfer tool when hand-off applies.
	registry := f.toolRegistry()
	if tools := f.agent.GetTools(); len(tools) > 0 {
		toolDefinitions := make([]model.ToolDefinition, 0, len(tools))
		for _, t := range tools {
			toolDefinitions = append(toolDefinitions, model.ToolDefinition{
				Type: "function",
				Function: model.FunctionDefinition{
					Name:        t.Name(),
					Description: t.Description(),
					Parameters:  t.Parameters(),
				},
			})
		}

		req.Tools = toolDefinitions
	}

	// Run request processors
	for _, processor := range f.requestProcessors {
		if err := processor.ProcessRequest(runCtx, req, f.agent); err != nil {
			f.emitError(eventChan, runCtx, fmt.Errorf("request processor %s failed: %w", processor.Name(), err))
			return nil
		}
	}

	// Enforce the per-run model call budget before hitting the provider.
	if runCtx.Limiter != nil {
		if err := runCtx.Limiter.Increment(); err != nil {
			f.emitError(eventChan, runCtx, err)
			return nil
		}
	}

	// Execute LLM request
	llm := f.agent.GetLLM()

	respCh, errCh := llm.Generate(runCtx.Context, *req)

	var lastEvent *core.Event

	// emit forwards an event and, for non-partial events, waits for the
	// runner to persist it before the flow continues.
	emit := func(ev core.Event) error {
		select {
		case eventChan <- ev:
		case <-runCtx.Context.Done():
			return runCtx.Context.Err()
		}

		if !ev.IsPartial() && runCtx.Resume != nil {
			select {
			case <-runCtx.Context.Done():
				return runCtx.Context.Err()
			case <-runCtx.Resume:
			}
		}

		return nil
	}

loop:
	for {
		select {
		case resp, ok := <-respCh:
			if !ok {
				break loop
			}

			// Apply response processors
			for _, processor := range f.responseProcessors {
				if err := processor.ProcessResponse(runCtx, &resp, f.agent); err != nil {
					f.emitError(eventChan, runCtx, fmt.Errorf("response processor %s failed: %w", processor.Name(), err))
					return nil
				}
			}

			// Emit processed event
			ev := core.NewEvent(runCtx.RunID, f.agent.GetName())
			ev.Content = &resp.Content
			ev.Partial = &resp.Partial

			// Mark turn complete if this is a final assistant response with no pending tool calls
			if !resp.Partial && len(ev.GetFunctionCalls()) == 0 {
				complete := true
				ev.TurnComplete = &complete
			}

			lastEvent = &ev

			if err := emit(ev); err != nil {
				return lastEvent
			}

			// Hand function calls to the executor, which emits one response
			// event per call.
			if fnCalls := ev.GetFunctionCalls(); len(fnCalls) > 0 {
				f.executor.Execute(runCtx, f.agent, registry, fnCalls, func(respEv core.Event) error {
					lastEvent = &respEv
					return emit(respEv)
				})
			}
		case err, ok := <-errCh:
			if ok {
				runCtx.LogError("flow.model.error", "agent", f.agent.GetName(), "error", err.Error())
				f.emitError(eventChan, runCtx, fmt.Errorf("model generation failed: %w", err))
				return nil
			}

			break loop
		}
	}

	return lastEvent
}
