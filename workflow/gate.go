package workflow

import (
	"fmt"
	"strings"

	"github.com/hupe1980/brigade/core"
	"github.com/hupe1980/brigade/model"
)

// Extraction describes how to pull the argument for a step out of the
// transcript: the most recent response of the producing step is searched for
// the named field.
type Extraction struct {
	// From names the tool whose response carries the value.
	From string `yaml:"from"`
	// Field is a gjson path into the response payload, e.g. "customer.id".
	Field string `yaml:"field"`
}

// Step is a single required tool call within a gate.
type Step struct {
	// Name is the tool name the agent must call.
	Name string `yaml:"name"`
	// Directive is the template rendered when this step blocks an ordered
	// gate. {{.Value}} is the extracted argument, {{.Tool}} the step name.
	// Empty uses a generic instruction.
	Directive string `yaml:"directive,omitempty"`
	// Degraded replaces Directive when argument extraction fails.
	Degraded string `yaml:"degraded,omitempty"`
	// Extract configures argument extraction for the directive.
	Extract *Extraction `yaml:"extract,omitempty"`
	// Silent suppresses the directive while this step blocks an ordered
	// gate. The agent's own instructions are trusted to reach it;
	// enforcement starts with the steps after it.
	Silent bool `yaml:"silent,omitempty"`
}

// Gate declares the tool-call obligations of one agent role. A single type
// covers both shapes: an unordered prerequisite set (Ordered false) and a
// strict sequential workflow (Ordered true). All behavior is configuration;
// roles, steps and extraction rules are data, not subclasses.
type Gate struct {
	// Role is the agent name this gate binds to.
	Role string `yaml:"role"`
	// StatePrefix prefixes the session-state completion keys. Defaults to
	// Role when empty (see config loading).
	StatePrefix string `yaml:"state_prefix"`
	// Ordered selects sequential evaluation with the strict-prefix rule.
	Ordered bool `yaml:"ordered"`
	// Steps are the required tool calls, in workflow order when Ordered.
	Steps []Step `yaml:"steps"`
	// Terminal names the handoff step that ends the workflow. Once it is
	// observed the gate passes even when earlier steps were skipped.
	// Defaults to the last step. Ordered mode only.
	Terminal string `yaml:"terminal,omitempty"`
	// Header and Footer frame the unordered directive text.
	Header string `yaml:"header,omitempty"`
	Footer string `yaml:"footer,omitempty"`
}

// Decision is the outcome of a gate evaluation.
type Decision struct {
	// Pass reports whether the agent may proceed without injection.
	Pass bool
	// Missing lists every incomplete step (unordered mode).
	Missing []Step
	// Next is the first blocking step (ordered mode).
	Next *Step
	// NextIndex is the index of Next within Steps, -1 when passing.
	NextIndex int
	// Directive is the imperative text to inject when Pass is false.
	Directive string
	// Err classifies the outcome via the package sentinels. It is
	// informational; callers log it and proceed.
	Err error
}

// HasStep reports whether the gate requires the named tool.
func (g *Gate) HasStep(name string) bool {
	for _, s := range g.Steps {
		if s.Name == name {
			return true
		}
	}
	return false
}

// terminalStep resolves the configured terminal step, defaulting to the last
// step of the workflow.
func (g *Gate) terminalStep() string {
	if g.Terminal != "" {
		return g.Terminal
	}
	if len(g.Steps) > 0 {
		return g.Steps[len(g.Steps)-1].Name
	}
	return ""
}

// Evaluate checks the gate against the session transcript and the outgoing
// request. It is read-only on the session and deterministic for a given
// (events, state, request) triple.
//
// The request grants a bypass: when its pending output already carries a
// function call the agent is mid tool-work for this turn, and injecting a
// directive would duplicate instructions the model is already acting on.
func (g *Gate) Evaluate(sess *core.Session, req *model.Request) Decision {
	if req != nil && pendingToolWork(req.Contents) {
		return Decision{Pass: true, NextIndex: -1}
	}

	completed := Reconcile(sess, g)

	if g.Ordered {
		return g.evaluateOrdered(sess, completed)
	}

	return g.evaluateSet(completed)
}

// evaluateSet passes only when every step is complete; the failing decision
// names ALL missing steps so the directive can enumerate them.
func (g *Gate) evaluateSet(completed map[string]bool) Decision {
	var missing []Step
	for _, s := range g.Steps {
		if !completed[s.Name] {
			missing = append(missing, s)
		}
	}

	if len(missing) == 0 {
		return Decision{Pass: true, NextIndex: -1}
	}

	names := make([]string, len(missing))
	for i, s := range missing {
		names[i] = s.Name
	}

	return Decision{
		Missing:   missing,
		NextIndex: -1,
		Directive: g.renderSetDirective(missing),
		Err:       fmt.Errorf("%w: %s", ErrMissingPrerequisite, strings.Join(names, ", ")),
	}
}

// evaluateOrdered applies the strict-prefix rule: the next required step is
// the FIRST incomplete one scanning from the start, and a later completed
// step never unblocks an earlier gap. The single exception is the terminal
// step: once the handoff is observed the workflow counts as finished,
// skipped steps included.
func (g *Gate) evaluateOrdered(sess *core.Session, completed map[string]bool) Decision {
	if t := g.terminalStep(); t != "" && completed[t] {
		return Decision{Pass: true, NextIndex: -1}
	}

	next := -1
	for i, s := range g.Steps {
		if !completed[s.Name] {
			next = i
			break
		}
	}

	if next == -1 {
		return Decision{Pass: true, NextIndex: -1}
	}

	step := g.Steps[next]
	if step.Silent {
		return Decision{Next: &step, NextIndex: next, Err: fmt.Errorf("%w: %s", ErrMissingPrerequisite, step.Name)}
	}
	directive, err := g.renderStepDirective(sess, step)

	return Decision{
		Next:      &step,
		NextIndex: next,
		Directive: directive,
		Err:       err,
	}
}

// pendingToolWork reports whether the trailing assistant content of the
// request already carries a function call. Trailing tool-role contents
// (responses being fed back) sit after the calls that produced them and are
// skipped; anything else ends the scan.
func pendingToolWork(contents []core.Content) bool {
	for i := len(contents) - 1; i >= 0; i-- {
		c := contents[i]

		switch c.Role {
		case "tool":
			continue
		case "assistant":
			for _, p := range c.Parts {
				if _, ok := p.(core.FunctionCallPart); ok {
					return true
				}
			}
			return false
		default:
			return false
		}
	}

	return false
}
