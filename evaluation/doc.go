// Package evaluation audits recorded sessions against workflow gates.
//
// The workflow package enforces compliance live, inside the request pipeline.
// This package answers the after-the-fact question: did a finished
// conversation actually follow its workflow? An Auditor replays a session's
// event log read-only and reports per gate which steps ran, how often, and
// where the transcript deviated: steps executed out of order, a handoff that
// skipped prerequisites, or an agent replying before its required calls.
//
// Audits never mutate the session and never block anything; they are meant
// for offline review, regression tests and operator tooling.
package evaluation
