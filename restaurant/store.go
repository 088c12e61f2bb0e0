package restaurant

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Collection file names inside the store's data directory.
const (
	customersFile    = "customers.json"
	reservationsFile = "reservations.json"
	tablesFile       = "tables.json"
	menuFile         = "menu.json"
	ordersFile       = "orders.json"
	billsFile        = "bills.json"
)

// Customer is a guest record. Returning guests are matched by phone or name;
// unknown guests are created on first contact.
type Customer struct {
	ID          string  `json:"id"`
	Name        string  `json:"name"`
	Phone       string  `json:"phone"`
	CreatedAt   string  `json:"created_at"`
	TotalVisits int     `json:"total_visits"`
	TabBalance  float64 `json:"tab_balance"`
}

// Reservation is a booked slot for a customer.
type Reservation struct {
	ID         string `json:"id"`
	CustomerID string `json:"customer_id"`
	Date       string `json:"date"`
	Time       string `json:"time"`
	PartySize  int    `json:"party_size"`
	Status     string `json:"status"`
	CreatedAt  string `json:"created_at"`
}

// Table is a physical table. CustomerID and SeatedAt are null while the
// table is available.
type Table struct {
	ID         string  `json:"id"`
	Capacity   int     `json:"capacity"`
	Status     string  `json:"status"`
	CustomerID *string `json:"customer_id"`
	SeatedAt   *string `json:"seated_at"`
}

// MenuItem is a single dish or drink on the menu.
type MenuItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price"`
	Category string  `json:"category"`
}

// Menu wraps the item list; the menu collection is an object, not an array.
type Menu struct {
	Items []MenuItem `json:"items"`
}

// OrderItem is a priced line of an order.
type OrderItem struct {
	Name     string  `json:"name"`
	Price    float64 `json:"price,omitempty"`
	Quantity int     `json:"quantity"`
}

// Order is a kitchen order. Status moves pending -> preparing -> ready -> served.
type Order struct {
	ID         string      `json:"id"`
	CustomerID string      `json:"customer_id"`
	TableID    string      `json:"table_id"`
	Items      []OrderItem `json:"items"`
	Total      float64     `json:"total"`
	Status     string      `json:"status"`
	CreatedAt  string      `json:"created_at"`
	UpdatedAt  string      `json:"updated_at,omitempty"`
}

// Bill aggregates a customer's billable orders plus tax.
type Bill struct {
	ID            string   `json:"id"`
	CustomerID    string   `json:"customer_id"`
	Orders        []string `json:"orders"`
	Subtotal      float64  `json:"subtotal"`
	Tax           float64  `json:"tax"`
	Total         float64  `json:"total"`
	Status        string   `json:"status"`
	CreatedAt     string   `json:"created_at"`
	PaymentMethod string   `json:"payment_method,omitempty"`
	PaidAt        string   `json:"paid_at,omitempty"`
}

// Store reads and writes the restaurant collections as JSON files, one file
// per collection. Collections are demo sized, so every operation loads and
// saves a file whole; callers serialize access (see LocalBackend).
type Store struct {
	dir string
}

// NewStore creates a store rooted at the given data directory. The directory
// is created lazily on first save.
func NewStore(dir string) *Store {
	return &Store{dir: dir}
}

// Load decodes the named collection into v. A missing file leaves v at its
// zero value, so an empty store behaves like empty collections.
func (s *Store) Load(name string, v any) error {
	data, err := os.ReadFile(filepath.Join(s.dir, name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}

		return fmt.Errorf("load %s: %w", name, err)
	}

	if err := json.Unmarshal(data, v); err != nil {
		return fmt.Errorf("decode %s: %w", name, err)
	}

	return nil
}

// Save writes the named collection, creating the data directory if needed.
func (s *Store) Save(name string, v any) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create data dir: %w", err)
	}

	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("encode %s: %w", name, err)
	}

	if err := os.WriteFile(filepath.Join(s.dir, name), data, 0o644); err != nil {
		return fmt.Errorf("save %s: %w", name, err)
	}

	return nil
}

// Seed writes demo data for every collection file that does not exist yet.
// Existing files are left alone, so a seeded store survives restarts.
func (s *Store) Seed() error {
	seeds := []struct {
		name string
		data any
	}{
		{customersFile, seedCustomers()},
		{tablesFile, seedTables()},
		{menuFile, seedMenu()},
	}

	for _, seed := range seeds {
		if _, err := os.Stat(filepath.Join(s.dir, seed.name)); err == nil {
			continue
		}

		if err := s.Save(seed.name, seed.data); err != nil {
			return err
		}
	}

	return nil
}

func seedCustomers() []Customer {
	return []Customer{
		{
			ID:          "c1",
			Name:        "James Smith",
			Phone:       "555-0101",
			CreatedAt:   "2025-01-05T18:30:00Z",
			TotalVisits: 4,
			TabBalance:  0,
		},
		{
			ID:          "c2",
			Name:        "Maria Garcia",
			Phone:       "555-0102",
			CreatedAt:   "2025-02-14T19:00:00Z",
			TotalVisits: 1,
			TabBalance:  12.50,
		},
	}
}

func seedTables() []Table {
	tables := make([]Table, 0, 6)
	for i, capacity := range []int{2, 2, 4, 4, 6, 8} {
		tables = append(tables, Table{
			ID:       fmt.Sprintf("t%d", i+1),
			Capacity: capacity,
			Status:   "available",
		})
	}

	return tables
}

func seedMenu() Menu {
	return Menu{Items: []MenuItem{
		{Name: "Bruschetta", Price: 8.50, Category: "appetizers"},
		{Name: "Calamari", Price: 12.00, Category: "appetizers"},
		{Name: "Margherita Pizza", Price: 16.00, Category: "mains"},
		{Name: "Grilled Salmon", Price: 24.50, Category: "mains"},
		{Name: "Ribeye Steak", Price: 38.00, Category: "mains"},
		{Name: "Mushroom Risotto", Price: 19.00, Category: "mains"},
		{Name: "Tiramisu", Price: 9.00, Category: "desserts"},
		{Name: "Cheesecake", Price: 8.00, Category: "desserts"},
		{Name: "House Red Wine", Price: 9.50, Category: "drinks"},
		{Name: "Espresso", Price: 3.50, Category: "drinks"},
	}}
}
