package restaurant

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/hupe1980/brigade/core"
	"github.com/hupe1980/brigade/logging"
)

// RPCBackendOptions configures the remote backend client.
type RPCBackendOptions struct {
	HTTPClient *http.Client
	Logger     logging.Logger
}

// RPCBackend implements Backend against a backend server over JSON-RPC 2.0.
// It is the deployment where the database runs as its own process and
// several restaurant instances share it.
type RPCBackend struct {
	url    string
	client *http.Client
	logger logging.Logger
}

var _ Backend = (*RPCBackend)(nil)

// NewRPCBackend creates a client for the backend server at url, typically
// something like "http://localhost:8089/rpc".
func NewRPCBackend(url string, optFns ...func(o *RPCBackendOptions)) *RPCBackend {
	opts := RPCBackendOptions{
		HTTPClient: &http.Client{Timeout: 30 * time.Second},
		Logger:     logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &RPCBackend{url: url, client: opts.HTTPClient, logger: opts.Logger}
}

func (b *RPCBackend) call(ctx context.Context, method string, params any) (map[string]any, error) {
	rawParams, err := json.Marshal(params)
	if err != nil {
		return nil, fmt.Errorf("marshal %s params: %w", method, err)
	}

	body, err := json.Marshal(RPCRequest{
		JSONRPC: "2.0",
		ID:      core.NewID(),
		Method:  method,
		Params:  rawParams,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal %s request: %w", method, err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, b.url, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build %s request: %w", method, err)
	}

	req.Header.Set("Content-Type", "application/json")

	resp, err := b.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("call %s: unexpected status %d", method, resp.StatusCode)
	}

	var rpcResp RPCResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return nil, fmt.Errorf("decode %s response: %w", method, err)
	}

	if rpcResp.Error != nil {
		b.logger.Warn("backend.rpc.error", "method", method, "code", rpcResp.Error.Code, "message", rpcResp.Error.Message)
		return nil, fmt.Errorf("call %s: %w", method, rpcResp.Error)
	}

	var result map[string]any
	if len(rpcResp.Result) > 0 {
		if err := json.Unmarshal(rpcResp.Result, &result); err != nil {
			return nil, fmt.Errorf("decode %s result: %w", method, err)
		}
	}

	return result, nil
}

// GetCustomer looks up or creates a customer on the remote backend.
func (b *RPCBackend) GetCustomer(ctx context.Context, name, phone string) (map[string]any, error) {
	return b.call(ctx, "get_customer", map[string]any{"name": name, "phone": phone})
}

// GetReservations lists reservations matching the filters.
func (b *RPCBackend) GetReservations(ctx context.Context, customerID, date string) (map[string]any, error) {
	return b.call(ctx, "get_reservations", map[string]any{"customer_id": customerID, "date": date})
}

// CreateReservation books a table in advance.
func (b *RPCBackend) CreateReservation(ctx context.Context, customerID, date, timeSlot string, partySize int) (map[string]any, error) {
	return b.call(ctx, "create_reservation", map[string]any{
		"customer_id": customerID,
		"date":        date,
		"time":        timeSlot,
		"party_size":  partySize,
	})
}

// CheckTableAvailability lists free tables seating the party.
func (b *RPCBackend) CheckTableAvailability(ctx context.Context, partySize int) (map[string]any, error) {
	return b.call(ctx, "check_table_availability", map[string]any{"party_size": partySize})
}

// AssignTable seats a customer at a table.
func (b *RPCBackend) AssignTable(ctx context.Context, customerID, tableID string) (map[string]any, error) {
	return b.call(ctx, "assign_table", map[string]any{"customer_id": customerID, "table_id": tableID})
}

// ReleaseTable frees an occupied table of the given capacity.
func (b *RPCBackend) ReleaseTable(ctx context.Context, capacity int) (map[string]any, error) {
	return b.call(ctx, "release_table", map[string]any{"capacity": capacity})
}

// GetMenu fetches the menu, optionally filtered by category.
func (b *RPCBackend) GetMenu(ctx context.Context, category string) (map[string]any, error) {
	return b.call(ctx, "get_menu", map[string]any{"category": category})
}

// GetCustomerOrders fetches a customer's order history.
func (b *RPCBackend) GetCustomerOrders(ctx context.Context, customerID string, limit int) (map[string]any, error) {
	return b.call(ctx, "get_customer_orders", map[string]any{"customer_id": customerID, "limit": limit})
}

// CreateOrder submits a new order.
func (b *RPCBackend) CreateOrder(ctx context.Context, customerID, tableID string, items []OrderItem) (map[string]any, error) {
	return b.call(ctx, "create_order", map[string]any{
		"customer_id": customerID,
		"table_id":    tableID,
		"items":       items,
	})
}

// GetOrderStatus fetches the status of an order.
func (b *RPCBackend) GetOrderStatus(ctx context.Context, orderID string) (map[string]any, error) {
	return b.call(ctx, "get_order_status", map[string]any{"order_id": orderID})
}

// UpdateOrderStatus moves an order through the kitchen pipeline.
func (b *RPCBackend) UpdateOrderStatus(ctx context.Context, orderID, status string) (map[string]any, error) {
	return b.call(ctx, "update_order_status", map[string]any{"order_id": orderID, "status": status})
}

// GenerateBill totals the customer's billable orders.
func (b *RPCBackend) GenerateBill(ctx context.Context, customerID string) (map[string]any, error) {
	return b.call(ctx, "generate_bill", map[string]any{"customer_id": customerID})
}

// ProcessPayment settles a bill.
func (b *RPCBackend) ProcessPayment(ctx context.Context, billID, paymentMethod string) (map[string]any, error) {
	return b.call(ctx, "process_payment", map[string]any{"bill_id": billID, "payment_method": paymentMethod})
}

// AddToTab records an amount on the customer's tab.
func (b *RPCBackend) AddToTab(ctx context.Context, customerID string, amount float64) (map[string]any, error) {
	return b.call(ctx, "add_to_tab", map[string]any{"customer_id": customerID, "amount": amount})
}
