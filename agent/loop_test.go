package agent

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/hupe1980/brigade/core"
	"github.com/hupe1980/brigade/logging"
)

// escalatingAgent emits regular events until its escalation threshold is hit.
type escalatingAgent struct {
	BaseAgent
	runCount   int
	escalateOn int
}

func newEscalatingAgent(name string, escalateOn int) *escalatingAgent {
	return &escalatingAgent{BaseAgent: NewBaseAgent(name), escalateOn: escalateOn}
}

func (a *escalatingAgent) Run(runCtx *core.RunContext) error {
	a.runCount++

	ev := core.NewEvent(runCtx.RunID, a.Name())

	if a.runCount >= a.escalateOn {
		escalate := true
		ev.Actions.Escalate = &escalate
		ev.Content = &core.Content{
			Role:  "assistant",
			Parts: []core.Part{core.TextPart{Text: "Task exceeds my capabilities, escalating"}},
		}
	} else {
		ev.Content = &core.Content{
			Role:  "assistant",
			Parts: []core.Part{core.TextPart{Text: fmt.Sprintf("Working on iteration %d", a.runCount)}},
		}
	}

	if err := runCtx.EmitEvent(ev); err != nil {
		return err
	}

	return runCtx.WaitForResume()
}

// countingAgent emits one event per run; from doneOn onward the text is "DONE".
type countingAgent struct {
	BaseAgent
	runCount int
	doneOn   int
}

func newCountingAgent(name string, doneOn int) *countingAgent {
	return &countingAgent{BaseAgent: NewBaseAgent(name), doneOn: doneOn}
}

func (a *countingAgent) Run(runCtx *core.RunContext) error {
	a.runCount++

	text := fmt.Sprintf("iteration %d", a.runCount)
	if a.doneOn > 0 && a.runCount >= a.doneOn {
		text = "DONE"
	}

	ev := core.NewEvent(runCtx.RunID, a.Name())
	ev.Content = &core.Content{Role: "assistant", Parts: []core.Part{core.TextPart{Text: text}}}

	if err := runCtx.EmitEvent(ev); err != nil {
		return err
	}

	return runCtx.WaitForResume()
}

// failingAgent errors on every run without emitting anything.
type failingAgent struct {
	BaseAgent
	runCount int
}

func newFailingAgent(name string) *failingAgent {
	return &failingAgent{BaseAgent: NewBaseAgent(name)}
}

func (a *failingAgent) Run(_ *core.RunContext) error {
	a.runCount++
	return fmt.Errorf("boom %d", a.runCount)
}

func newLoopRunContext(t *testing.T, emit chan core.Event) *core.RunContext {
	t.Helper()

	return core.NewRunContext(
		context.Background(), "test-session", "test-run",
		core.AgentInfo{Name: "TestLoop", Type: "loop"},
		core.Content{Role: "user", Parts: []core.Part{core.TextPart{Text: "go"}}},
		0,
		emit, nil, core.NewSession("test-session"),
		nil, nil, nil, logging.NoOpLogger{},
	)
}

// runLoop executes the agent while collecting every event it forwards.
func runLoop(t *testing.T, loopAgent *LoopAgent) ([]core.Event, error) {
	t.Helper()

	emitChan := make(chan core.Event, 64)
	runCtx := newLoopRunContext(t, emitChan)

	var events []core.Event
	var wg sync.WaitGroup
	wg.Add(1)

	go func() {
		defer wg.Done()
		for ev := range emitChan {
			events = append(events, ev)
		}
	}()

	err := loopAgent.Run(runCtx)

	close(emitChan)
	wg.Wait()

	return events, err
}

func TestNewLoopAgent_Defaults(t *testing.T) {
	child := newCountingAgent("child", 0)
	agent := NewLoopAgent("TestLoop", child)

	assert.Equal(t, "TestLoop", agent.Name())
	assert.Equal(t, 100, agent.maxIters)
	assert.True(t, agent.stopOnError)
	assert.Nil(t, agent.predicate)
}

func TestLoopAgent_EscalationHandling(t *testing.T) {
	tests := []struct {
		name               string
		escalateOn         int
		maxIters           int
		expectedIterations int
		shouldEscalate     bool
	}{
		{
			name:               "escalates on iteration 2",
			escalateOn:         2,
			maxIters:           5,
			expectedIterations: 2,
			shouldEscalate:     true,
		},
		{
			name:               "never escalates, completes all iterations",
			escalateOn:         0,
			maxIters:           3,
			expectedIterations: 3,
			shouldEscalate:     false,
		},
		{
			name:               "escalates immediately",
			escalateOn:         1,
			maxIters:           5,
			expectedIterations: 1,
			shouldEscalate:     true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var child core.Agent
			var runCount *int

			if tt.shouldEscalate {
				a := newEscalatingAgent("escalator", tt.escalateOn)
				child, runCount = a, &a.runCount
			} else {
				a := newCountingAgent("regular", 0)
				child, runCount = a, &a.runCount
			}

			loopAgent := NewLoopAgent("TestLoop", child, WithMaxIters(tt.maxIters))

			events, err := runLoop(t, loopAgent)
			require.NoError(t, err)

			assert.Len(t, events, tt.expectedIterations)
			assert.Equal(t, tt.expectedIterations, *runCount)

			if tt.shouldEscalate {
				require.NotEmpty(t, events)
				last := events[len(events)-1]
				require.NotNil(t, last.Actions.Escalate)
				assert.True(t, *last.Actions.Escalate)
			}
		})
	}
}

func TestLoopAgent_PredicateStopsLoop(t *testing.T) {
	child := newCountingAgent("worker", 3)

	loopAgent := NewLoopAgent(
		"TestLoop", child,
		WithMaxIters(10),
		WithPredicate(func(output string) bool { return strings.Contains(output, "DONE") }),
	)

	events, err := runLoop(t, loopAgent)
	require.NoError(t, err)

	assert.Equal(t, 3, child.runCount)
	assert.Len(t, events, 3)
}

func TestLoopAgent_StopOnError(t *testing.T) {
	t.Run("stops on first error by default", func(t *testing.T) {
		child := newFailingAgent("flaky")
		loopAgent := NewLoopAgent("TestLoop", child, WithMaxIters(5))

		_, err := runLoop(t, loopAgent)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "loop iteration 1 failed")
		assert.Equal(t, 1, child.runCount)
	})

	t.Run("continues when stop on error is disabled", func(t *testing.T) {
		child := newFailingAgent("flaky")
		loopAgent := NewLoopAgent("TestLoop", child, WithMaxIters(3), WithStopOnError(false))

		_, err := runLoop(t, loopAgent)
		require.NoError(t, err)
		assert.Equal(t, 3, child.runCount)
	})
}

func TestCreateEscalationEvent(t *testing.T) {
	content := &core.Content{
		Role:  "assistant",
		Parts: []core.Part{core.TextPart{Text: "Cannot complete task, escalating"}},
	}

	event := CreateEscalationEvent("run-123", "TestAgent", content)

	assert.Equal(t, "TestAgent", event.Author)
	assert.Equal(t, "run-123", event.RunID)
	require.NotNil(t, event.Actions.Escalate)
	assert.True(t, *event.Actions.Escalate)
	assert.Equal(t, content, event.Content)
	assert.NotEmpty(t, event.ID)
	assert.False(t, event.Timestamp.IsZero())
}
