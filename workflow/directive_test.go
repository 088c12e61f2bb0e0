package workflow

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/hupe1980/brigade/internal/testutil"
)

func TestRenderSetDirective_Defaults(t *testing.T) {
	g := &Gate{Role: "waiter_agent", StatePrefix: "waiter"}
	missing := []Step{{Name: "get_customer_orders"}, {Name: "get_menu"}}

	got := g.renderSetDirective(missing)

	want := "CRITICAL: Before doing anything else, you MUST first call these tools:\n" +
		"- get_customer_orders\n" +
		"- get_menu\n\n" +
		"Do NOT respond until you have called ALL of these tools. Call them now."
	assert.Equal(t, want, got)
}

func TestRenderStepDirective_NoTemplate(t *testing.T) {
	g := &Gate{Role: "captain_agent", StatePrefix: "captain", Ordered: true}

	got, err := g.renderStepDirective(nil, Step{Name: "assign_table"})

	assert.Equal(t, "CRITICAL: You MUST immediately call `assign_table`. Call the tool now.", got)
	assert.ErrorIs(t, err, ErrMissingPrerequisite)
}

func TestRenderStepDirective_BrokenTemplateFallsBack(t *testing.T) {
	g := &Gate{Role: "captain_agent", StatePrefix: "captain", Ordered: true}

	got, _ := g.renderStepDirective(nil, Step{Name: "assign_table", Directive: "call {{.Missing"})

	assert.Equal(t, "CRITICAL: You MUST immediately call `assign_table`. Call the tool now.", got)
}

func TestRenderStepDirective_ToolPlaceholder(t *testing.T) {
	g := &Gate{Role: "captain_agent", StatePrefix: "captain", Ordered: true}

	got, _ := g.renderStepDirective(nil, Step{Name: "assign_table", Directive: "Seat the guest: call {{.Tool}} now."})

	assert.Equal(t, "Seat the guest: call assign_table now.", got)
}

func TestRenderStepDirective_DefaultDegradedTexts(t *testing.T) {
	g := &Gate{Role: "captain_agent", StatePrefix: "captain", Ordered: true}
	sess := testutil.NewSessionBuilder("test-session").Build()

	step := Step{
		Name:      "get_reservations",
		Directive: "call with {{.Value}}",
		Extract:   &Extraction{From: "get_customer", Field: "customer.id"},
	}

	got, err := g.renderStepDirective(sess, step)

	assert.Equal(t, "CRITICAL: You MUST immediately call `get_reservations` using the result of the previous get_customer call. Call the tool now.", got)
	assert.ErrorIs(t, err, ErrAmbiguousArgumentSource)
}

func TestLeafField(t *testing.T) {
	assert.Equal(t, "id", leafField("customer.id"))
	assert.Equal(t, "id", leafField("result.customer.id"))
	assert.Equal(t, "id", leafField("id"))
	assert.Equal(t, "", leafField(""))
}
