// Package workflow enforces tool-call workflows on conversational agents.
//
// Agents are expected to perform certain tool calls before free-form
// conversation: an unordered prerequisite set (call these tools first) or an
// ordered sequence (call A, then B with a value produced by A, then C). The
// package observes completed tool calls, tracks step completion in session
// state, and evaluates a Gate before each model turn. When a gate fails it
// produces an imperative directive that the Enforcer prepends to the outgoing
// model request.
//
// Enforcement is fail-open by design: a failing gate injects text, it never
// aborts the turn. Agents without configured gates pass untouched.
package workflow
