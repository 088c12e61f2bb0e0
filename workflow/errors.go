package workflow

import "errors"

// Sentinel errors classifying gate outcomes. They drive logging and directive
// selection only; gates are fail-open and never abort a turn on any of them.
// Match with errors.Is - decisions may wrap more than one.
var (
	// ErrMissingPrerequisite indicates one or more required steps have not
	// been completed yet. The decision carries a corrective directive.
	ErrMissingPrerequisite = errors.New("missing prerequisite")

	// ErrAmbiguousArgumentSource indicates the argument for the next step
	// could not be extracted from the transcript (producing call absent or
	// field missing). The directive degrades to text without the value.
	ErrAmbiguousArgumentSource = errors.New("ambiguous argument source")

	// ErrUnknownAgentContext indicates no gate is bound to the agent.
	// Evaluation is skipped entirely (no-op pass).
	ErrUnknownAgentContext = errors.New("unknown agent context")
)
