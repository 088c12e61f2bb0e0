package evaluation

import (
	"fmt"
	"strings"

	"github.com/hupe1980/brigade/core"
	"github.com/hupe1980/brigade/logging"
	"github.com/hupe1980/brigade/workflow"
)

// AuditorOptions configures an Auditor.
type AuditorOptions struct {
	// Logger receives per-gate debug output. Defaults to a no-op logger.
	Logger logging.Logger
}

// Auditor replays sessions against a fixed set of workflow gates. It is
// stateless and safe for concurrent use.
type Auditor struct {
	gates  []*workflow.Gate
	logger logging.Logger
}

// NewAuditor creates an auditor covering the given gates.
func NewAuditor(gates []*workflow.Gate, optFns ...func(o *AuditorOptions)) *Auditor {
	opts := AuditorOptions{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &Auditor{gates: gates, logger: opts.Logger}
}

// Audit loads a session from the store and audits it.
func (a *Auditor) Audit(store core.SessionStore, sessionID string) (*SessionAudit, error) {
	if store == nil {
		return nil, fmt.Errorf("session store is nil")
	}

	sess, err := store.Get(sessionID)
	if err != nil {
		return nil, fmt.Errorf("load session %q: %w", sessionID, err)
	}

	return a.AuditSession(sess), nil
}

// AuditSession audits an already-loaded session. A nil session yields an
// empty audit. The session is never written to.
func (a *Auditor) AuditSession(sess *core.Session) *SessionAudit {
	audit := &SessionAudit{}
	if sess == nil {
		return audit
	}

	audit.SessionID = sess.ID
	events := sess.GetEvents()
	audit.EventCount = len(events)

	for _, g := range a.gates {
		ga := a.auditGate(sess, events, g)
		audit.Gates = append(audit.Gates, ga)

		a.logger.Debug(
			"audit.gate",
			"session_id", sess.ID,
			"role", g.Role,
			"completed", ga.CompletedCount,
			"finished", ga.Finished,
			"violations", len(ga.Violations),
		)
	}

	return audit
}

// auditGate collects per-step observations for one gate and derives the
// gate-level verdict. Completion uses the same state-plus-log reconciliation
// the live enforcer uses, so audit and enforcement never disagree on whether
// a step counts as done.
func (a *Auditor) auditGate(sess *core.Session, events []core.Event, g *workflow.Gate) GateAudit {
	ga := GateAudit{Role: g.Role, Ordered: g.Ordered}

	completed := workflow.Reconcile(sess, g)

	firstSeen := make([]int, len(g.Steps))
	for i, s := range g.Steps {
		observed := workflow.Or(workflow.ByFunctionCall(s.Name), workflow.ByFunctionResponse(s.Name))
		firstSeen[i] = firstIndex(events, observed)

		sa := StepAudit{
			Step:      s.Name,
			Completed: completed[s.Name],
			Calls:     len(workflow.FindAll(events, workflow.ByFunctionCall(s.Name))),
		}
		if last, ok := workflow.FindLast(events, observed); ok {
			sa.LastSeen = last.Timestamp
		}

		if sa.Completed {
			ga.CompletedCount++
		}

		ga.Steps = append(ga.Steps, sa)
	}

	if g.Ordered {
		ga.Finished = completed[terminalStep(g)]
		ga.Violations = orderedViolations(g, completed, firstSeen)
	} else {
		ga.Finished = ga.CompletedCount == len(g.Steps)
		ga.Violations = prematureReplyViolations(g, events, firstSeen)
	}

	return ga
}

// terminalStep resolves the handoff step of an ordered gate, defaulting to
// the last configured step.
func terminalStep(g *workflow.Gate) string {
	if g.Terminal != "" {
		return g.Terminal
	}
	if len(g.Steps) > 0 {
		return g.Steps[len(g.Steps)-1].Name
	}
	return ""
}

// orderedViolations flags steps observed out of workflow order. A step is in
// violation when an earlier step never appears in the log (and is not
// completed through state) or first appears after it. One violation per step,
// naming the first offending predecessor.
//
// The live gate lets a terminal handoff pass over skipped steps; the audit
// still reports those skips, since surfacing them is the point.
func orderedViolations(g *workflow.Gate, completed map[string]bool, firstSeen []int) []string {
	var violations []string

	for j := 1; j < len(g.Steps); j++ {
		if firstSeen[j] < 0 {
			continue
		}

		for i := 0; i < j; i++ {
			if firstSeen[i] < 0 {
				if !completed[g.Steps[i].Name] {
					violations = append(violations, fmt.Sprintf("%s ran but earlier step %s never ran", g.Steps[j].Name, g.Steps[i].Name))
					break
				}
				// Completed through state alone; no log position to compare.
				continue
			}
			if firstSeen[i] > firstSeen[j] {
				violations = append(violations, fmt.Sprintf("%s ran before %s", g.Steps[j].Name, g.Steps[i].Name))
				break
			}
		}
	}

	return violations
}

// prematureReplyViolations flags an unordered gate's agent replying before
// its prerequisite calls. The first plain text reply by the role marks the
// cutoff; every step not observed before it is a violation.
func prematureReplyViolations(g *workflow.Gate, events []core.Event, firstSeen []int) []string {
	spoke := firstIndex(events, plainReplyBy(g.Role))
	if spoke < 0 {
		return nil
	}

	var violations []string
	for i, s := range g.Steps {
		if firstSeen[i] < 0 || firstSeen[i] > spoke {
			violations = append(violations, fmt.Sprintf("%s replied before calling %s", g.Role, s.Name))
		}
	}

	return violations
}

// plainReplyBy matches a completed text reply by the named agent carrying no
// tool work. These are the utterances an unordered gate's prerequisites must
// precede.
func plainReplyBy(author string) workflow.EventPredicate {
	return workflow.And(
		workflow.ByAuthor(author),
		func(ev core.Event) bool {
			if ev.IsPartial() || ev.Content == nil {
				return false
			}
			if len(ev.GetFunctionCalls()) > 0 || len(ev.GetFunctionResponses()) > 0 {
				return false
			}
			for _, p := range ev.Content.Parts {
				if tp, ok := p.(core.TextPart); ok && strings.TrimSpace(tp.Text) != "" {
					return true
				}
			}
			return false
		},
	)
}

// firstIndex returns the log index of the first event matching pred, -1 when
// none does.
func firstIndex(events []core.Event, pred workflow.EventPredicate) int {
	for i, ev := range events {
		if pred(ev) {
			return i
		}
	}
	return -1
}
