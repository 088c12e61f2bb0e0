// Package runner implements the orchestration layer for Brigade.
//
// The Runner owns the turn loop from the outside in: it appends the user
// message to the session, builds the run context, starts the root agent,
// and drains the agent's event stream. For every non-partial event it
// applies side-effects (state deltas via the session store), persists the
// event, delivers it to the caller, and signals the agent to resume. That
// persist-before-resume handshake is what lets request processors re-read
// the session each model turn and observe the tool responses of the
// previous one.
//
// # Responsibilities (abridged)
//   - Run lifecycle: ids, cancellation, Start/Stop of the root agent
//   - Event processing & side-effect application (session state, artifacts)
//   - Session history persistence
//   - Event fan-out to callers (streaming channel + error channel)
//
// See runner.go for the operational implementation details.
package runner
