// Package restaurant is the demo application for Brigade's workflow
// enforcement: a fine dining restaurant run by a crew of agents.
//
// The captain greets and seats customers, the waiter takes orders, the chef
// and server work the kitchen pass, and the cashier settles bills. Every
// agent is an LLM with the full backend toolset, and the workflow package
// keeps them honest: the captain cannot skip the reservation check, the
// waiter cannot greet before fetching history and menu.
//
// The package provides:
//
//   - Backend: the restaurant database operations (customers, reservations,
//     tables, menu, orders, bills), with a file-backed LocalBackend and a
//     JSON-RPC RPCBackend for a shared server
//   - Tools: the backend wrapped as function tools for the agents
//   - Staff: the wired agent hierarchy with gates attached
//   - DefaultWorkflows: the embedded gate configuration
//
// Usage:
//
//	backend := restaurant.NewLocalBackend(restaurant.NewStore("data"))
//	captain, err := restaurant.Staff(llm, backend)
//
// The server subpackage exposes a Backend over HTTP for multi-process
// setups.
package restaurant
