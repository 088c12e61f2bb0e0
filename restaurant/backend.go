package restaurant

import (
	"context"
	"fmt"
	"math"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/hupe1980/brigade/core"
	"github.com/hupe1980/brigade/logging"
)

// Backend exposes the restaurant's database operations. Every operation
// returns a map with a "status" discriminator ("found", "created", "success"
// or "error" plus "message") so results can be fed to a model verbatim;
// errors are reserved for infrastructure failures, not domain misses.
//
// LocalBackend works on JSON files, RPCBackend forwards to a backend server
// over JSON-RPC. Agents do not care which one they hold.
type Backend interface {
	GetCustomer(ctx context.Context, name, phone string) (map[string]any, error)
	GetReservations(ctx context.Context, customerID, date string) (map[string]any, error)
	CreateReservation(ctx context.Context, customerID, date, timeSlot string, partySize int) (map[string]any, error)
	CheckTableAvailability(ctx context.Context, partySize int) (map[string]any, error)
	AssignTable(ctx context.Context, customerID, tableID string) (map[string]any, error)
	ReleaseTable(ctx context.Context, capacity int) (map[string]any, error)
	GetMenu(ctx context.Context, category string) (map[string]any, error)
	GetCustomerOrders(ctx context.Context, customerID string, limit int) (map[string]any, error)
	CreateOrder(ctx context.Context, customerID, tableID string, items []OrderItem) (map[string]any, error)
	GetOrderStatus(ctx context.Context, orderID string) (map[string]any, error)
	UpdateOrderStatus(ctx context.Context, orderID, status string) (map[string]any, error)
	GenerateBill(ctx context.Context, customerID string) (map[string]any, error)
	ProcessPayment(ctx context.Context, billID, paymentMethod string) (map[string]any, error)
	AddToTab(ctx context.Context, customerID string, amount float64) (map[string]any, error)
}

// OrderStatuses are the states an order moves through.
var OrderStatuses = []string{"pending", "preparing", "ready", "served"}

// taxRate applied when generating bills.
const taxRate = 0.08

// LocalBackendOptions configures a LocalBackend.
type LocalBackendOptions struct {
	Logger logging.Logger
}

// LocalBackend implements Backend directly on a Store. A single mutex covers
// each operation's load-modify-save cycle, including the ones touching two
// collections.
type LocalBackend struct {
	mu     sync.Mutex
	store  *Store
	logger logging.Logger
}

// NewLocalBackend creates a backend over the given store.
func NewLocalBackend(store *Store, optFns ...func(o *LocalBackendOptions)) *LocalBackend {
	opts := LocalBackendOptions{
		Logger: logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &LocalBackend{store: store, logger: opts.Logger}
}

// GetCustomer finds a customer by phone, then by case-insensitive name
// substring, and creates a new record when neither matches.
func (b *LocalBackend) GetCustomer(_ context.Context, name, phone string) (map[string]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var customers []Customer
	if err := b.store.Load(customersFile, &customers); err != nil {
		return nil, err
	}

	for _, c := range customers {
		if phone != "" && c.Phone == phone {
			b.logger.Info("backend.customer.found", "customer_id", c.ID, "match", "phone")
			return map[string]any{"status": "found", "customer": c}, nil
		}

		if name != "" && strings.Contains(strings.ToLower(c.Name), strings.ToLower(name)) {
			b.logger.Info("backend.customer.found", "customer_id", c.ID, "match", "name")
			return map[string]any{"status": "found", "customer": c}, nil
		}
	}

	customer := Customer{
		ID:        newEntityID(),
		Name:      name,
		Phone:     phone,
		CreatedAt: nowStamp(),
	}

	customers = append(customers, customer)
	if err := b.store.Save(customersFile, customers); err != nil {
		return nil, err
	}

	b.logger.Info("backend.customer.created", "customer_id", customer.ID)

	return map[string]any{"status": "created", "customer": customer}, nil
}

// GetReservations lists reservations, optionally filtered by customer and
// date (YYYY-MM-DD). Empty filters match everything.
func (b *LocalBackend) GetReservations(_ context.Context, customerID, date string) (map[string]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var reservations []Reservation
	if err := b.store.Load(reservationsFile, &reservations); err != nil {
		return nil, err
	}

	results := []Reservation{}
	for _, r := range reservations {
		if customerID != "" && r.CustomerID != customerID {
			continue
		}

		if date != "" && r.Date != date {
			continue
		}

		results = append(results, r)
	}

	b.logger.Debug("backend.reservations.listed", "customer_id", customerID, "count", len(results))

	return map[string]any{"status": "success", "reservations": results}, nil
}

// CreateReservation books a confirmed slot for a customer.
func (b *LocalBackend) CreateReservation(_ context.Context, customerID, date, timeSlot string, partySize int) (map[string]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var reservations []Reservation
	if err := b.store.Load(reservationsFile, &reservations); err != nil {
		return nil, err
	}

	reservation := Reservation{
		ID:         newEntityID(),
		CustomerID: customerID,
		Date:       date,
		Time:       timeSlot,
		PartySize:  partySize,
		Status:     "confirmed",
		CreatedAt:  nowStamp(),
	}

	reservations = append(reservations, reservation)
	if err := b.store.Save(reservationsFile, reservations); err != nil {
		return nil, err
	}

	b.logger.Info("backend.reservation.created", "reservation_id", reservation.ID, "customer_id", customerID)

	return map[string]any{"status": "created", "reservation": reservation}, nil
}

// CheckTableAvailability lists available tables seating at least partySize.
func (b *LocalBackend) CheckTableAvailability(_ context.Context, partySize int) (map[string]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var tables []Table
	if err := b.store.Load(tablesFile, &tables); err != nil {
		return nil, err
	}

	available := []Table{}
	for _, t := range tables {
		if t.Status == "available" && t.Capacity >= partySize {
			available = append(available, t)
		}
	}

	b.logger.Debug("backend.tables.checked", "party_size", partySize, "available", len(available))

	return map[string]any{
		"status":           "success",
		"available_tables": available,
		"count":            len(available),
	}, nil
}

// AssignTable seats a customer at an available table.
func (b *LocalBackend) AssignTable(_ context.Context, customerID, tableID string) (map[string]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var tables []Table
	if err := b.store.Load(tablesFile, &tables); err != nil {
		return nil, err
	}

	for i := range tables {
		if tables[i].ID != tableID {
			continue
		}

		if tables[i].Status != "available" {
			return map[string]any{"status": "error", "message": "Table is not available"}, nil
		}

		seatedAt := nowStamp()
		tables[i].Status = "occupied"
		tables[i].CustomerID = &customerID
		tables[i].SeatedAt = &seatedAt

		if err := b.store.Save(tablesFile, tables); err != nil {
			return nil, err
		}

		b.logger.Info("backend.table.assigned", "table_id", tableID, "customer_id", customerID)

		return map[string]any{"status": "success", "table": tables[i]}, nil
	}

	return map[string]any{"status": "error", "message": "Table not found"}, nil
}

// ReleaseTable frees the first occupied table with the given capacity.
func (b *LocalBackend) ReleaseTable(_ context.Context, capacity int) (map[string]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var tables []Table
	if err := b.store.Load(tablesFile, &tables); err != nil {
		return nil, err
	}

	for i := range tables {
		if tables[i].Capacity != capacity || tables[i].Status != "occupied" {
			continue
		}

		tables[i].Status = "available"
		tables[i].CustomerID = nil
		tables[i].SeatedAt = nil

		if err := b.store.Save(tablesFile, tables); err != nil {
			return nil, err
		}

		b.logger.Info("backend.table.released", "table_id", tables[i].ID, "capacity", capacity)

		return map[string]any{"status": "success", "table": tables[i]}, nil
	}

	return map[string]any{
		"status":  "error",
		"message": fmt.Sprintf("No occupied table found with capacity %d", capacity),
	}, nil
}

// GetMenu lists menu items, optionally filtered by category
// (case-insensitive).
func (b *LocalBackend) GetMenu(_ context.Context, category string) (map[string]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var menu Menu
	if err := b.store.Load(menuFile, &menu); err != nil {
		return nil, err
	}

	items := menu.Items
	if items == nil {
		items = []MenuItem{}
	}

	if category != "" {
		filtered := []MenuItem{}
		for _, item := range items {
			if strings.EqualFold(item.Category, category) {
				filtered = append(filtered, item)
			}
		}
		items = filtered
	}

	return map[string]any{"status": "success", "items": items}, nil
}

// GetCustomerOrders lists a customer's orders, newest first, capped at limit.
// A non-positive limit falls back to 5.
func (b *LocalBackend) GetCustomerOrders(_ context.Context, customerID string, limit int) (map[string]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if limit <= 0 {
		limit = 5
	}

	var orders []Order
	if err := b.store.Load(ordersFile, &orders); err != nil {
		return nil, err
	}

	matched := []Order{}
	for _, o := range orders {
		if o.CustomerID == customerID {
			matched = append(matched, o)
		}
	}

	sort.SliceStable(matched, func(i, j int) bool {
		return matched[i].CreatedAt > matched[j].CreatedAt
	})

	if len(matched) > limit {
		matched = matched[:limit]
	}

	return map[string]any{"status": "success", "orders": matched}, nil
}

// CreateOrder prices the requested items against the menu and files a pending
// order. Items not on the menu are dropped silently; quantities default to 1.
func (b *LocalBackend) CreateOrder(_ context.Context, customerID, tableID string, items []OrderItem) (map[string]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var menu Menu
	if err := b.store.Load(menuFile, &menu); err != nil {
		return nil, err
	}

	var orders []Order
	if err := b.store.Load(ordersFile, &orders); err != nil {
		return nil, err
	}

	lines := []OrderItem{}
	total := 0.0

	for _, item := range items {
		menuItem, ok := findMenuItem(menu.Items, item.Name)
		if !ok {
			b.logger.Warn("backend.order.unknown_item", "item", item.Name)
			continue
		}

		qty := item.Quantity
		if qty <= 0 {
			qty = 1
		}

		lines = append(lines, OrderItem{Name: menuItem.Name, Price: menuItem.Price, Quantity: qty})
		total += menuItem.Price * float64(qty)
	}

	order := Order{
		ID:         newEntityID(),
		CustomerID: customerID,
		TableID:    tableID,
		Items:      lines,
		Total:      round2(total),
		Status:     "pending",
		CreatedAt:  nowStamp(),
	}

	orders = append(orders, order)
	if err := b.store.Save(ordersFile, orders); err != nil {
		return nil, err
	}

	b.logger.Info("backend.order.created", "order_id", order.ID, "customer_id", customerID, "total", order.Total)

	return map[string]any{"status": "created", "order": order}, nil
}

// GetOrderStatus looks up a single order.
func (b *LocalBackend) GetOrderStatus(_ context.Context, orderID string) (map[string]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var orders []Order
	if err := b.store.Load(ordersFile, &orders); err != nil {
		return nil, err
	}

	for _, o := range orders {
		if o.ID == orderID {
			return map[string]any{"status": "success", "order": o}, nil
		}
	}

	return map[string]any{"status": "error", "message": "Order not found"}, nil
}

// UpdateOrderStatus moves an order to a new status
// (pending/preparing/ready/served).
func (b *LocalBackend) UpdateOrderStatus(_ context.Context, orderID, status string) (map[string]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var orders []Order
	if err := b.store.Load(ordersFile, &orders); err != nil {
		return nil, err
	}

	for i := range orders {
		if orders[i].ID != orderID {
			continue
		}

		orders[i].Status = status
		orders[i].UpdatedAt = nowStamp()

		if err := b.store.Save(ordersFile, orders); err != nil {
			return nil, err
		}

		b.logger.Info("backend.order.status", "order_id", orderID, "new_status", status)

		return map[string]any{"status": "success", "order": orders[i]}, nil
	}

	return map[string]any{"status": "error", "message": "Order not found"}, nil
}

// GenerateBill sums the customer's served and ready orders and adds tax.
func (b *LocalBackend) GenerateBill(_ context.Context, customerID string) (map[string]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var orders []Order
	if err := b.store.Load(ordersFile, &orders); err != nil {
		return nil, err
	}

	var bills []Bill
	if err := b.store.Load(billsFile, &bills); err != nil {
		return nil, err
	}

	orderIDs := []string{}
	subtotal := 0.0

	for _, o := range orders {
		if o.CustomerID != customerID {
			continue
		}

		if o.Status != "served" && o.Status != "ready" {
			continue
		}

		orderIDs = append(orderIDs, o.ID)
		subtotal += o.Total
	}

	if len(orderIDs) == 0 {
		return map[string]any{"status": "error", "message": "No orders to bill"}, nil
	}

	bill := Bill{
		ID:         newEntityID(),
		CustomerID: customerID,
		Orders:     orderIDs,
		Subtotal:   round2(subtotal),
		Tax:        round2(subtotal * taxRate),
		Total:      round2(subtotal * (1 + taxRate)),
		Status:     "pending",
		CreatedAt:  nowStamp(),
	}

	bills = append(bills, bill)
	if err := b.store.Save(billsFile, bills); err != nil {
		return nil, err
	}

	b.logger.Info("backend.bill.generated", "bill_id", bill.ID, "customer_id", customerID, "total", bill.Total)

	return map[string]any{"status": "success", "bill": bill}, nil
}

// ProcessPayment marks a bill paid and bumps the customer's visit count.
func (b *LocalBackend) ProcessPayment(_ context.Context, billID, paymentMethod string) (map[string]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var bills []Bill
	if err := b.store.Load(billsFile, &bills); err != nil {
		return nil, err
	}

	var customers []Customer
	if err := b.store.Load(customersFile, &customers); err != nil {
		return nil, err
	}

	for i := range bills {
		if bills[i].ID != billID {
			continue
		}

		if bills[i].Status == "paid" {
			return map[string]any{"status": "error", "message": "Bill already paid"}, nil
		}

		bills[i].Status = "paid"
		bills[i].PaymentMethod = paymentMethod
		bills[i].PaidAt = nowStamp()

		for j := range customers {
			if customers[j].ID == bills[i].CustomerID {
				customers[j].TotalVisits++
				break
			}
		}

		if err := b.store.Save(billsFile, bills); err != nil {
			return nil, err
		}

		if err := b.store.Save(customersFile, customers); err != nil {
			return nil, err
		}

		b.logger.Info("backend.payment.processed", "bill_id", billID, "method", paymentMethod)

		return map[string]any{
			"status":  "success",
			"message": "Payment processed successfully",
			"bill":    bills[i],
		}, nil
	}

	return map[string]any{"status": "error", "message": "Bill not found"}, nil
}

// AddToTab adds an amount to a customer's running tab.
func (b *LocalBackend) AddToTab(_ context.Context, customerID string, amount float64) (map[string]any, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	var customers []Customer
	if err := b.store.Load(customersFile, &customers); err != nil {
		return nil, err
	}

	for i := range customers {
		if customers[i].ID != customerID {
			continue
		}

		customers[i].TabBalance = round2(customers[i].TabBalance + amount)

		if err := b.store.Save(customersFile, customers); err != nil {
			return nil, err
		}

		b.logger.Info("backend.tab.updated", "customer_id", customerID, "balance", customers[i].TabBalance)

		return map[string]any{
			"status":      "success",
			"tab_balance": customers[i].TabBalance,
			"customer":    customers[i],
		}, nil
	}

	return map[string]any{"status": "error", "message": "Customer not found"}, nil
}

func findMenuItem(items []MenuItem, name string) (MenuItem, bool) {
	for _, item := range items {
		if strings.EqualFold(item.Name, name) {
			return item, true
		}
	}

	return MenuItem{}, false
}

// newEntityID returns a short id for stored entities, readable in transcripts.
func newEntityID() string {
	return core.NewID()[:8]
}

func nowStamp() string {
	return time.Now().UTC().Format(time.RFC3339)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
