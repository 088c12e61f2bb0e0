package workflow

import (
	"fmt"

	"github.com/hupe1980/brigade/core"
	"github.com/hupe1980/brigade/logging"
)

// StateKey returns the session-state key recording completion of a workflow
// step, e.g. StateKey("captain", "get_customer") -> "captain_get_customer_called".
func StateKey(prefix, step string) string {
	return fmt.Sprintf("%s_%s_called", prefix, step)
}

// Tracker records workflow step completion in session state as tool calls
// finish. It implements flow.ToolObserver and is registered on the function
// executor; the staged state flows through the emitted function response
// event into the session store.
type Tracker struct {
	gates  []*Gate
	logger logging.Logger
}

// NewTracker creates a tracker covering the given gates.
func NewTracker(gates []*Gate, logger logging.Logger) *Tracker {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	return &Tracker{gates: gates, logger: logger}
}

// Name returns the observer's identifier.
func (t *Tracker) Name() string {
	return "WorkflowTracker"
}

// AfterToolCall marks the finished tool as a completed step for every gate
// bound to the calling agent. Errors never surface from here; a tracking miss
// is repaired by Reconcile on the next gate evaluation.
func (t *Tracker) AfterToolCall(toolCtx *core.ToolContext, toolName string, _ map[string]any, _ any) {
	agent := toolCtx.AgentName()

	for _, g := range t.gates {
		if g.Role != agent || !g.HasStep(toolName) {
			continue
		}

		key := StateKey(g.StatePrefix, toolName)
		toolCtx.SetState(key, true)

		t.logger.Debug(
			"workflow.step.recorded",
			"agent", agent,
			"step", toolName,
			"key", key,
		)
	}
}

// Reconcile computes the completion map for a gate from session state plus a
// full replay of the event log. State alone is never trusted: it can be wiped
// by a restart or lose a delta, while the log keeps every recorded call. A
// step counts as complete when its state key is true or the log holds a
// function call or response for it. Reconcile never writes back; the gate
// evaluation path is read-only on sessions.
func Reconcile(sess *core.Session, g *Gate) map[string]bool {
	completed := make(map[string]bool, len(g.Steps))
	if sess == nil {
		return completed
	}

	events := sess.GetEvents()

	for _, s := range g.Steps {
		if v, ok := sess.GetState(StateKey(g.StatePrefix, s.Name)); ok {
			if b, isBool := v.(bool); isBool && b {
				completed[s.Name] = true
				continue
			}
		}

		if _, ok := FindLast(events, Or(ByFunctionCall(s.Name), ByFunctionResponse(s.Name))); ok {
			completed[s.Name] = true
		}
	}

	return completed
}
