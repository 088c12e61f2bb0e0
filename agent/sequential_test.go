package agent

import (
	"context"
	"testing"

	"github.com/hupe1980/brigade/core"
	"github.com/hupe1980/brigade/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func newSequentialRunContext(t *testing.T, agentName string) *core.RunContext {
	t.Helper()

	sess := core.NewSession("test-session")

	return core.NewRunContext(
		context.Background(), "test-session", "test-run",
		core.AgentInfo{Name: agentName, Type: "sequential"},
		core.Content{Role: "user", Parts: []core.Part{core.TextPart{Text: "test input"}}},
		0,
		make(chan core.Event, 10), make(chan struct{}, 1), sess,
		nil, nil, nil, logging.NoOpLogger{},
	)
}

// SequentialAgent Test Cases
func TestNewSequentialAgent(t *testing.T) {
	child1 := NewMockAgent("Child 1")
	child2 := NewMockAgent("Child 2")

	agent := NewSequentialAgent("Sequential Agent", child1, child2)

	assert.NotNil(t, agent)
	assert.Equal(t, "Sequential Agent", agent.Name())
	assert.Len(t, agent.children, 2)
	assert.Equal(t, child1, agent.children[0])
	assert.Equal(t, child2, agent.children[1])
}

func TestSequentialAgent_Run_Success(t *testing.T) {
	child1 := NewMockAgent("Child 1")
	child2 := NewMockAgent("Child 2")
	child3 := NewMockAgent("Child 3")

	agent := NewSequentialAgent("Sequential Agent", child1, child2, child3)

	runCtx := newSequentialRunContext(t, "Sequential Agent")

	child1.On("Run", runCtx).Return(nil)
	child2.On("Run", runCtx).Return(nil)
	child3.On("Run", runCtx).Return(nil)

	err := agent.Run(runCtx)

	assert.NoError(t, err)
	child1.AssertExpectations(t)
	child2.AssertExpectations(t)
	child3.AssertExpectations(t)
}

func TestSequentialAgent_Run_FirstChildError(t *testing.T) {
	child1 := NewMockAgent("Child 1")
	child2 := NewMockAgent("Child 2")

	agent := NewSequentialAgent("Sequential Agent", child1, child2)

	runCtx := newSequentialRunContext(t, "Sequential Agent")

	expectedErr := assert.AnError
	child1.On("Run", runCtx).Return(expectedErr)

	err := agent.Run(runCtx)

	assert.Error(t, err)
	assert.ErrorIs(t, err, expectedErr) // Check that the original error is wrapped
	child1.AssertExpectations(t)
	child2.AssertNotCalled(t, "Run")
}

func TestSequentialAgent_Run_NoChildren(t *testing.T) {
	agent := NewSequentialAgent("Sequential Agent")

	runCtx := newSequentialRunContext(t, "Sequential Agent")

	err := agent.Run(runCtx)
	assert.NoError(t, err)
}

func TestSequentialAgent_ContextPropagation(t *testing.T) {
	child1 := NewMockAgent("Child 1")
	child2 := NewMockAgent("Child 2")

	agent := NewSequentialAgent("Sequential Agent", child1, child2)

	runCtx := newSequentialRunContext(t, "Sequential Agent")

	child1.On("Run", mock.MatchedBy(func(ctx *core.RunContext) bool {
		return ctx == runCtx
	})).Return(nil)

	child2.On("Run", mock.MatchedBy(func(ctx *core.RunContext) bool {
		return ctx == runCtx
	})).Return(nil)

	err := agent.Run(runCtx)

	assert.NoError(t, err)
	child1.AssertExpectations(t)
	child2.AssertExpectations(t)
}
