// Package brigade provides a high-level façade over the Runner and service
// abstractions (sessions, artifacts, memory & logging) enabling rapid
// construction of multi-agent systems with workflow enforcement. Most
// applications interact with this package by:
//  1. Building an agent tree (model, sequential, custom) with its tools
//  2. Creating a Brigade via New(root) (optionally overriding default in-memory services)
//  3. Running turns asynchronously (Run) or synchronously (RunSync)
//
// The façade delegates orchestration to runner.Runner while keeping setup and
// usage ergonomics concise. All defaults are safe for local development and
// testing; production deployments typically supply durable store implementations
// and a structured logger.
package brigade

import (
	"context"

	"github.com/hupe1980/brigade/artifact"
	"github.com/hupe1980/brigade/core"
	"github.com/hupe1980/brigade/logging"
	"github.com/hupe1980/brigade/memory"
	"github.com/hupe1980/brigade/runner"
	"github.com/hupe1980/brigade/session"
)

// Options configures the Brigade instance.
type Options struct {
	// EventBufferSize sets the channel buffer size for event processing.
	// Larger buffers reduce blocking but increase memory usage.
	EventBufferSize int

	// MaxModelCalls caps model calls per run as a loop guard. Zero means
	// unlimited.
	MaxModelCalls int

	// Stores (defaults to in-memory implementations if not provided)
	SessionStore  core.SessionStore
	ArtifactStore core.ArtifactStore
	MemoryStore   core.MemoryStore

	// Logger (defaults to NoOp logger if nil)
	Logger logging.Logger
}

// Brigade is the high-level façade aggregating the runner and its services.
type Brigade struct {
	opts   Options
	runner *runner.Runner
}

// New creates a Brigade around the given root agent. Any unset service is
// initialized with an in-memory implementation.
func New(root core.Agent, optFns ...func(o *Options)) *Brigade {
	opts := Options{
		EventBufferSize: 100,
		MaxModelCalls:   100,
		SessionStore:    session.NewInMemoryStore(),
		ArtifactStore:   artifact.NewInMemoryStore(),
		MemoryStore:     memory.NewInMemoryStore(),
		Logger:          logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	r := runner.New(root, func(o *runner.Options) {
		o.EventBufferSize = opts.EventBufferSize
		o.MaxModelCalls = opts.MaxModelCalls
		o.SessionStore = opts.SessionStore
		o.ArtifactStore = opts.ArtifactStore
		o.MemoryStore = opts.MemoryStore
		o.Logger = opts.Logger
	})

	return &Brigade{opts: opts, runner: r}
}

// Run starts an asynchronous turn returning event & error channels.
func (b *Brigade) Run(
	ctx context.Context,
	sessionID string,
	userContent core.Content,
) (string, <-chan core.Event, <-chan error, error) {
	return b.runner.Run(ctx, sessionID, userContent)
}

// RunSync is a synchronous helper that drains the async channels, accumulates
// events and returns the run ID.
func (b *Brigade) RunSync(
	ctx context.Context,
	sessionID string,
	userContent core.Content,
) (string, []core.Event, error) {
	return b.runner.RunSync(ctx, sessionID, userContent)
}

// RunText wraps plain user text into Content and runs it synchronously.
func (b *Brigade) RunText(ctx context.Context, sessionID, text string) (string, []core.Event, error) {
	content := core.Content{Role: "user", Parts: []core.Part{core.TextPart{Text: text}}}
	return b.runner.RunSync(ctx, sessionID, content)
}

// Runner exposes the underlying runner for advanced control (cancellation).
func (b *Brigade) Runner() *runner.Runner { return b.runner }

// SessionStore returns the configured session store, mainly so callers can
// inspect or seed conversation state.
func (b *Brigade) SessionStore() core.SessionStore { return b.opts.SessionStore }

// ArtifactStore returns the configured artifact store.
func (b *Brigade) ArtifactStore() core.ArtifactStore { return b.opts.ArtifactStore }

// MemoryStore returns the configured memory store.
func (b *Brigade) MemoryStore() core.MemoryStore { return b.opts.MemoryStore }
