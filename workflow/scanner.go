package workflow

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/hupe1980/brigade/core"
)

// EventPredicate reports whether an event matches a scanning criterion.
// Predicates must tolerate events with nil content or empty parts.
type EventPredicate func(core.Event) bool

// ByFunctionCall matches events carrying a function call with the given name.
func ByFunctionCall(name string) EventPredicate {
	return func(ev core.Event) bool {
		for _, fc := range ev.GetFunctionCalls() {
			if fc.Name == name {
				return true
			}
		}
		return false
	}
}

// ByFunctionResponse matches events carrying a function response with the
// given name.
func ByFunctionResponse(name string) EventPredicate {
	return func(ev core.Event) bool {
		for _, fr := range ev.GetFunctionResponses() {
			if fr.Name == name {
				return true
			}
		}
		return false
	}
}

// ByAnyFunctionCall matches events carrying at least one function call,
// regardless of name.
func ByAnyFunctionCall() EventPredicate {
	return func(ev core.Event) bool {
		return len(ev.GetFunctionCalls()) > 0
	}
}

// ByAuthor matches events authored by the named agent or role.
func ByAuthor(author string) EventPredicate {
	return func(ev core.Event) bool {
		return ev.Author == author
	}
}

// And combines predicates; all must match.
func And(preds ...EventPredicate) EventPredicate {
	return func(ev core.Event) bool {
		for _, p := range preds {
			if !p(ev) {
				return false
			}
		}
		return true
	}
}

// Or combines predicates; at least one must match.
func Or(preds ...EventPredicate) EventPredicate {
	return func(ev core.Event) bool {
		for _, p := range preds {
			if p(ev) {
				return true
			}
		}
		return false
	}
}

// FindAll returns every event matching pred, preserving log order. An empty
// or nil log yields an empty slice.
func FindAll(events []core.Event, pred EventPredicate) []core.Event {
	matches := []core.Event{}
	for _, ev := range events {
		if pred(ev) {
			matches = append(matches, ev)
		}
	}
	return matches
}

// FindLast returns the most recent event matching pred. The boolean reports
// whether any event matched.
func FindLast(events []core.Event, pred EventPredicate) (core.Event, bool) {
	for i := len(events) - 1; i >= 0; i-- {
		if pred(events[i]) {
			return events[i], true
		}
	}
	return core.Event{}, false
}

// LastResponsePayload returns the payload of the most recent function
// response for the named tool. The payload may be nil when the response
// recorded an error without a result.
func LastResponsePayload(events []core.Event, toolName string) (any, bool) {
	ev, ok := FindLast(events, ByFunctionResponse(toolName))
	if !ok {
		return nil, false
	}

	var payload any
	found := false
	for _, fr := range ev.GetFunctionResponses() {
		if fr.Name == toolName {
			payload = fr.Response
			found = true
		}
	}

	return payload, found
}

// ExtractField pulls a string representation of a named field out of a
// response payload. Payloads arrive as maps from in-process tools and as JSON
// strings from RPC-backed ones; both are normalized to JSON and queried with
// a gjson path (dotted paths reach into nested objects, e.g. "customer.id").
// Returns false when the payload cannot be interpreted or the field is
// missing or empty.
func ExtractField(payload any, path string) (string, bool) {
	if payload == nil || path == "" {
		return "", false
	}

	var raw []byte

	switch v := payload.(type) {
	case string:
		if !gjson.Valid(v) {
			return "", false
		}
		raw = []byte(v)
	case []byte:
		if !gjson.ValidBytes(v) {
			return "", false
		}
		raw = v
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return "", false
		}
		raw = b
	}

	result := gjson.GetBytes(raw, path)
	if !result.Exists() {
		return "", false
	}

	s := result.String()
	if s == "" {
		return "", false
	}

	return s, true
}
