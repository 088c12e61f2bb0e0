package evaluation

import (
	"fmt"
	"strings"
	"time"
)

// StepAudit is the per-step outcome of an audit.
type StepAudit struct {
	// Step is the tool name the gate requires.
	Step string
	// Completed reports whether the step counts as done (state or log).
	Completed bool
	// Calls counts the function-call events observed for the step.
	Calls int
	// LastSeen is the timestamp of the most recent observation, zero when
	// the step never appears in the log.
	LastSeen time.Time
}

// GateAudit is the per-gate outcome of an audit.
type GateAudit struct {
	// Role is the agent name the gate binds to.
	Role string
	// Ordered mirrors the gate's evaluation mode.
	Ordered bool
	// Steps holds one entry per gate step, in gate order.
	Steps []StepAudit
	// CompletedCount is the number of completed steps.
	CompletedCount int
	// Finished reports whether the workflow ran to its end: the terminal
	// handoff for ordered gates, all steps for unordered ones.
	Finished bool
	// Violations lists observed deviations in transcript order.
	Violations []string
}

// Compliant reports whether the transcript showed no deviation for this
// gate. An unfinished workflow can still be compliant; it just stopped.
func (ga GateAudit) Compliant() bool { return len(ga.Violations) == 0 }

// SessionAudit is the audit result for one session across all gates.
type SessionAudit struct {
	SessionID  string
	EventCount int
	Gates      []GateAudit
}

// Compliant reports whether every gate was compliant.
func (sa *SessionAudit) Compliant() bool {
	for _, g := range sa.Gates {
		if !g.Compliant() {
			return false
		}
	}
	return true
}

// String renders the audit as indented text for logs and CLI output.
func (sa *SessionAudit) String() string {
	var b strings.Builder

	fmt.Fprintf(&b, "audit session=%s events=%d compliant=%t\n", sa.SessionID, sa.EventCount, sa.Compliant())

	for _, g := range sa.Gates {
		mode := "set"
		if g.Ordered {
			mode = "ordered"
		}

		fmt.Fprintf(&b, "  %s (%s) steps=%d/%d finished=%t\n", g.Role, mode, g.CompletedCount, len(g.Steps), g.Finished)

		for _, s := range g.Steps {
			mark := " "
			if s.Completed {
				mark = "x"
			}
			fmt.Fprintf(&b, "    [%s] %s", mark, s.Step)
			if s.Calls > 0 {
				fmt.Fprintf(&b, " calls=%d", s.Calls)
			}
			b.WriteByte('\n')
		}

		for _, v := range g.Violations {
			fmt.Fprintf(&b, "    ! %s\n", v)
		}
	}

	return b.String()
}
