package workflow

import (
	"fmt"
	"strings"

	"github.com/hupe1980/brigade/core"
	"github.com/hupe1980/brigade/internal/util"
)

// Generic directive texts used when a gate or step carries no custom ones.
const (
	defaultHeader      = "CRITICAL: Before doing anything else, you MUST first call these tools:"
	defaultFooter      = "Do NOT respond until you have called ALL of these tools. Call them now."
	defaultStepFormat  = "CRITICAL: You MUST immediately call `%s`. Call the tool now."
	degradedStepFormat = "CRITICAL: You MUST immediately call `%s` using the result of the previous %s call. Call the tool now."
	degradedSoloFormat = "CRITICAL: You MUST immediately call `%s`. The required input could not be determined automatically. Call the tool now."
)

// renderSetDirective enumerates every missing step of an unordered gate as a
// bullet list framed by the gate's header and footer.
func (g *Gate) renderSetDirective(missing []Step) string {
	header := g.Header
	if header == "" {
		header = defaultHeader
	}

	footer := g.Footer
	if footer == "" {
		footer = defaultFooter
	}

	var b strings.Builder
	b.WriteString(header)
	b.WriteString("\n")
	for _, s := range missing {
		b.WriteString("- ")
		b.WriteString(s.Name)
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(footer)

	return b.String()
}

// renderStepDirective produces the directive for the blocking step of an
// ordered gate. When the step declares an extraction rule the producing
// step's latest response is searched for the value; on failure the directive
// degrades to text without it and the returned error additionally wraps
// ErrAmbiguousArgumentSource.
func (g *Gate) renderStepDirective(sess *core.Session, step Step) (string, error) {
	blockErr := fmt.Errorf("%w: %s", ErrMissingPrerequisite, step.Name)

	if step.Extract == nil {
		return g.renderTemplate(step, ""), blockErr
	}

	var events []core.Event
	if sess != nil {
		events = sess.GetEvents()
	}

	payload, found := LastResponsePayload(events, step.Extract.From)
	if found {
		if value, ok := ExtractField(payload, step.Extract.Field); ok {
			return g.renderTemplate(step, value), blockErr
		}
		// Tools are free to flatten their responses; a path like
		// "customer.id" should still match a top-level "id".
		if leaf := leafField(step.Extract.Field); leaf != step.Extract.Field {
			if value, ok := ExtractField(payload, leaf); ok {
				return g.renderTemplate(step, value), blockErr
			}
		}
	}

	degraded := step.Degraded
	if degraded == "" {
		if step.Extract.From != "" {
			degraded = fmt.Sprintf(degradedStepFormat, step.Name, step.Extract.From)
		} else {
			degraded = fmt.Sprintf(degradedSoloFormat, step.Name)
		}
	}

	return degraded, fmt.Errorf("%w: %s: %w", ErrMissingPrerequisite, step.Name, ErrAmbiguousArgumentSource)
}

// leafField returns the last segment of a dotted gjson path.
func leafField(field string) string {
	if i := strings.LastIndex(field, "."); i >= 0 {
		return field[i+1:]
	}
	return field
}

// renderTemplate fills the step's directive template with the extracted
// value. A missing or broken template falls back to the generic instruction;
// directives must always materialize.
func (g *Gate) renderTemplate(step Step, value string) string {
	if step.Directive == "" {
		return fmt.Sprintf(defaultStepFormat, step.Name)
	}

	rendered, err := util.RenderTemplate(step.Directive, map[string]any{
		"Value": value,
		"Tool":  step.Name,
	})
	if err != nil || rendered == "" {
		return fmt.Sprintf(defaultStepFormat, step.Name)
	}

	return rendered
}
