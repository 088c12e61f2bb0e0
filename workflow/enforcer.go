package workflow

import (
	"errors"

	"github.com/hupe1980/brigade/core"
	"github.com/hupe1980/brigade/flow"
	"github.com/hupe1980/brigade/logging"
	"github.com/hupe1980/brigade/model"
)

// Enforcer evaluates workflow gates before each model turn and injects a
// corrective directive into the outgoing request when a gate fails. It
// implements flow.RequestProcessor and is registered on the flow alongside
// the instruction and content processors.
//
// Gates are looked up by the EXECUTING agent's name, not the run's root
// identity: after a transfer the delegate is the one whose obligations
// matter. The enforcer never mutates the session and never returns an error
// for a failing gate - a blocked agent still gets its turn, carrying the
// directive.
type Enforcer struct {
	gates  map[string][]*Gate
	logger logging.Logger
}

// NewEnforcer creates an enforcer over the given gates, indexed by role.
func NewEnforcer(gates []*Gate, logger logging.Logger) *Enforcer {
	if logger == nil {
		logger = logging.NoOpLogger{}
	}

	byRole := make(map[string][]*Gate)
	for _, g := range gates {
		byRole[g.Role] = append(byRole[g.Role], g)
	}

	return &Enforcer{gates: byRole, logger: logger}
}

// Name implements flow.RequestProcessor.
func (e *Enforcer) Name() string {
	return "WorkflowEnforcer"
}

// ProcessRequest implements flow.RequestProcessor. At most one directive is
// injected per evaluation; the first failing gate wins.
func (e *Enforcer) ProcessRequest(runCtx *core.RunContext, req *model.Request, agent flow.FlowAgent) error {
	role := agent.GetName()

	bound := e.gates[role]
	if len(bound) == 0 {
		e.logger.Debug(
			"workflow.gate.skip",
			"agent", role,
			"reason", ErrUnknownAgentContext.Error(),
		)
		return nil
	}

	for _, g := range bound {
		decision := g.Evaluate(runCtx.Session, req)
		if decision.Pass {
			e.logger.Debug("workflow.gate.pass", "agent", role, "ordered", g.Ordered)
			continue
		}

		if decision.Directive == "" {
			// A silent blocking step: observed, not enforced.
			next := ""
			if decision.Next != nil {
				next = decision.Next.Name
			}
			e.logger.Debug("workflow.gate.blocked_silent", "agent", role, "next", next)
			break
		}

		if errors.Is(decision.Err, ErrAmbiguousArgumentSource) {
			e.logger.Warn(
				"workflow.extraction.degraded",
				"agent", role,
				"step", decision.Next.Name,
				"source", decision.Next.Extract.From,
				"field", decision.Next.Extract.Field,
			)
		}

		Inject(req, decision.Directive)

		next := ""
		if decision.Next != nil {
			next = decision.Next.Name
		}

		e.logger.Info(
			"workflow.directive.injected",
			"agent", role,
			"ordered", g.Ordered,
			"next", next,
			"next_index", decision.NextIndex,
			"missing", len(decision.Missing),
		)

		break
	}

	return nil
}

// Inject prepends the directive to the request contents as a user block so
// the model reads it before the conversation. The request's instructions and
// the session itself are left untouched.
func Inject(req *model.Request, directive string) {
	if req == nil || directive == "" {
		return
	}

	content := core.Content{
		Role:  "user",
		Parts: []core.Part{core.TextPart{Text: directive}},
	}

	req.Contents = append([]core.Content{content}, req.Contents...)
}
