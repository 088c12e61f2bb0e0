package brigade_test

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/brigade"
	"github.com/hupe1980/brigade/core"
	"github.com/hupe1980/brigade/flow"
	"github.com/hupe1980/brigade/model"
	"github.com/hupe1980/brigade/restaurant"
)

// requestSpy records a snapshot of every model request the agent sends, after
// all other processors (including the workflow enforcer) have run.
type requestSpy struct {
	mu    sync.Mutex
	calls []model.Request
}

func (s *requestSpy) Name() string { return "RequestSpy" }

func (s *requestSpy) ProcessRequest(_ *core.RunContext, req *model.Request, _ flow.FlowAgent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	contents := make([]core.Content, len(req.Contents))
	copy(contents, req.Contents)
	s.calls = append(s.calls, model.Request{Instructions: req.Instructions, Contents: contents})

	return nil
}

func (s *requestSpy) snapshot() []model.Request {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make([]model.Request, len(s.calls))
	copy(out, s.calls)

	return out
}

func newScriptedApp(t *testing.T) (*brigade.Brigade, *model.MockModel, *requestSpy) {
	t.Helper()

	store := restaurant.NewStore(t.TempDir())
	require.NoError(t, store.Seed())

	llm := model.NewMockModel("scripted", "mock")

	captain, err := restaurant.Staff(llm, restaurant.NewLocalBackend(store))
	require.NoError(t, err)

	spy := &requestSpy{}
	captain.AddRequestProcessor(spy)

	return brigade.New(captain), llm, spy
}

func contentText(c core.Content) string {
	var b strings.Builder
	for _, p := range c.Parts {
		if tp, ok := p.(core.TextPart); ok {
			b.WriteString(tp.Text)
		}
	}

	return b.String()
}

// A returning guest is looked up in turn one; when the agent then fails to
// check reservations on its own, the next model request must open with the
// injected reservation directive carrying the extracted customer id.
func TestBrigade_DirectiveReachesTheModel(t *testing.T) {
	app, llm, spy := newScriptedApp(t)

	llm.ScriptFunctionCall("call-1", "get_customer", `{"phone":"555-0101"}`)
	llm.ScriptText("Welcome back, James!")
	llm.ScriptText("One moment while I check.")

	ctx := context.Background()

	_, events, err := app.RunText(ctx, "dinner-1", "Hi! I'm James Smith, phone 555-0101.")
	require.NoError(t, err)

	var sawLookup bool
	for _, ev := range events {
		for _, fr := range ev.GetFunctionResponses() {
			if fr.Name == "get_customer" {
				sawLookup = true
			}
		}
	}
	assert.True(t, sawLookup, "turn one should execute the customer lookup")

	_, _, err = app.RunText(ctx, "dinner-1", "Do I have a reservation?")
	require.NoError(t, err)

	calls := spy.snapshot()
	require.Len(t, calls, 3)

	// Model call 1: the lookup step blocks silently, nothing is injected.
	require.NotEmpty(t, calls[0].Contents)
	assert.Equal(t, "system", calls[0].Contents[0].Role)

	// Model call 2: the agent is mid tool-work, the gate stands aside.
	require.NotEmpty(t, calls[1].Contents)
	assert.Equal(t, "system", calls[1].Contents[0].Role)

	// Model call 3: the reservation directive leads the request.
	require.NotEmpty(t, calls[2].Contents)
	injected := calls[2].Contents[0]
	assert.Equal(t, "user", injected.Role)

	text := contentText(injected)
	assert.Contains(t, text, "get_reservations")
	assert.Contains(t, text, "customer_id='c1'")

	require.Greater(t, len(calls[2].Contents), 1)
	assert.Equal(t, "system", calls[2].Contents[1].Role)
}

// The directive lives only in the outgoing request; the persisted session
// transcript stays clean and the tracker's state key survives the turn.
func TestBrigade_SessionStaysClean(t *testing.T) {
	app, llm, _ := newScriptedApp(t)

	llm.ScriptFunctionCall("call-1", "get_customer", `{"phone":"555-0101"}`)
	llm.ScriptText("Welcome back, James!")
	llm.ScriptText("One moment while I check.")

	ctx := context.Background()

	_, _, err := app.RunText(ctx, "dinner-2", "Hi! I'm James Smith, phone 555-0101.")
	require.NoError(t, err)

	_, _, err = app.RunText(ctx, "dinner-2", "Do I have a reservation?")
	require.NoError(t, err)

	sess, err := app.SessionStore().Get("dinner-2")
	require.NoError(t, err)

	v, ok := sess.GetState("captain_get_customer_called")
	require.True(t, ok, "tracker should persist the completion key")
	assert.Equal(t, true, v)

	for _, ev := range sess.GetEvents() {
		if ev.Content == nil {
			continue
		}

		for _, p := range ev.Content.Parts {
			if tp, ok := p.(core.TextPart); ok {
				assert.NotContains(t, tp.Text, "CRITICAL:", "directives must not be persisted")
			}
		}
	}
}

// Without scripted turns the mock echoes the prompt; the facade still runs a
// full turn through the captain, gates included.
func TestBrigade_RunTextConversation(t *testing.T) {
	app, _, spy := newScriptedApp(t)

	runID, events, err := app.RunText(context.Background(), "chat-1", "Good evening!")
	require.NoError(t, err)
	assert.NotEmpty(t, runID)
	require.NotEmpty(t, events)

	final := events[len(events)-1]
	require.NotNil(t, final.Content)
	assert.Contains(t, contentText(*final.Content), "Mock response to:")

	require.Len(t, spy.snapshot(), 1)
}
