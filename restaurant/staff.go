package restaurant

import (
	"fmt"

	"github.com/hupe1980/brigade/agent"
	"github.com/hupe1980/brigade/logging"
	"github.com/hupe1980/brigade/model"
	"github.com/hupe1980/brigade/workflow"
)

// StaffOptions configures the restaurant crew.
type StaffOptions struct {
	// Gates overrides the embedded workflow configuration.
	Gates []*workflow.Gate

	Logger logging.Logger
}

// Staff builds the full crew and returns the captain, the root of the
// hierarchy: captain -> waiter -> {chef -> server, cashier}. Every agent
// carries the complete backend toolset plus the notes and bill helpers;
// their instructions scope what they actually reach for. All of them share
// one Tracker and one Enforcer, so gated roles are enforced and everyone
// else passes through untouched.
func Staff(llm model.Model, backend Backend, optFns ...func(o *StaffOptions)) (*agent.ModelAgent, error) {
	opts := StaffOptions{Logger: logging.NoOpLogger{}}
	for _, fn := range optFns {
		fn(&opts)
	}

	gates := opts.Gates
	if gates == nil {
		var err error

		gates, err = DefaultWorkflows()
		if err != nil {
			return nil, fmt.Errorf("load default workflows: %w", err)
		}
	}

	toolbox := append(Tools(backend), GuestNotesTool(), BillArtifactTool())

	newStaffAgent := func(name, description, instruction string) *agent.ModelAgent {
		a := agent.NewModelAgent(name, llm, func(o *agent.ModelAgentOptions) {
			o.Instruction = agent.NewInstructionFromText(instruction)
		})
		a.SetDescription(description)
		a.RegisterTools(toolbox...)

		return a
	}

	captain := newStaffAgent("captain_agent", "Greets arriving customers, manages reservations and seats them at a table.", captainInstruction)
	waiter := newStaffAgent("waiter_agent", "Takes orders, coordinates the kitchen and handles billing and payment.", waiterInstruction)
	chef := newStaffAgent("chef_agent", "Prepares orders in the kitchen and passes them to the server.", chefInstruction)
	server := newStaffAgent("server_agent", "Delivers ready orders to the table and hands the customer back to the waiter.", serverInstruction)
	cashier := newStaffAgent("cashier_agent", "Generates bills and returns them to the waiter.", cashierInstruction)

	if err := chef.SetSubAgents(server); err != nil {
		return nil, fmt.Errorf("wire chef: %w", err)
	}

	if err := waiter.SetSubAgents(chef, cashier); err != nil {
		return nil, fmt.Errorf("wire waiter: %w", err)
	}

	if err := captain.SetSubAgents(waiter); err != nil {
		return nil, fmt.Errorf("wire captain: %w", err)
	}

	tracker := workflow.NewTracker(gates, opts.Logger)
	enforcer := workflow.NewEnforcer(gates, opts.Logger)

	for _, a := range []*agent.ModelAgent{captain, waiter, chef, server, cashier} {
		a.AddRequestProcessor(enforcer)
		a.AddToolObserver(tracker)
	}

	return captain, nil
}
