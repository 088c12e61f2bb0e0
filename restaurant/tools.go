package restaurant

import (
	"github.com/hupe1980/brigade/core"
	"github.com/hupe1980/brigade/tool"
)

type getCustomerArgs struct {
	Name  string `json:"name" description:"Customer's full name"`
	Phone string `json:"phone" description:"Customer's phone number"`
}

type getReservationsArgs struct {
	CustomerID string `json:"customer_id,omitempty" description:"Customer ID to filter by"`
	Date       string `json:"date,omitempty" description:"Date to filter by (YYYY-MM-DD)"`
}

type createReservationArgs struct {
	CustomerID string `json:"customer_id" description:"ID of the customer making the reservation"`
	Date       string `json:"date" description:"Reservation date (YYYY-MM-DD)"`
	Time       string `json:"time" description:"Reservation time (HH:MM)"`
	PartySize  int    `json:"party_size" description:"Number of guests"`
}

type checkTableAvailabilityArgs struct {
	PartySize int `json:"party_size" description:"Number of guests needing seats"`
}

type assignTableArgs struct {
	CustomerID string `json:"customer_id" description:"ID of the customer"`
	TableID    string `json:"table_id" description:"ID of the table to assign"`
}

type releaseTableArgs struct {
	Capacity int `json:"capacity" description:"Capacity of the occupied table to release"`
}

type getMenuArgs struct {
	Category string `json:"category,omitempty" description:"Optional category filter (appetizers, mains, desserts, drinks)"`
}

type getCustomerOrdersArgs struct {
	CustomerID string `json:"customer_id" description:"ID of the customer"`
	Limit      int    `json:"limit,omitempty" description:"Maximum number of orders to return (default 5)"`
}

type createOrderArgs struct {
	CustomerID string      `json:"customer_id" description:"ID of the customer"`
	TableID    string      `json:"table_id" description:"ID of the table"`
	Items      []OrderItem `json:"items" description:"Items to order, each with name and quantity"`
}

type getOrderStatusArgs struct {
	OrderID string `json:"order_id" description:"ID of the order"`
}

type updateOrderStatusArgs struct {
	OrderID string `json:"order_id" description:"ID of the order"`
	Status  string `json:"status" description:"New status (pending, preparing, ready, served)"`
}

type generateBillArgs struct {
	CustomerID string `json:"customer_id" description:"ID of the customer"`
}

type processPaymentArgs struct {
	BillID        string `json:"bill_id" description:"ID of the bill to pay"`
	PaymentMethod string `json:"payment_method" description:"Payment method (cash, card, tab)"`
}

type addToTabArgs struct {
	CustomerID string  `json:"customer_id" description:"ID of the customer"`
	Amount     float64 `json:"amount" description:"Amount to add to the tab"`
}

// Tools wraps each backend operation as a function tool. Every member of the
// staff carries the full set; their instructions scope which ones they reach
// for.
func Tools(b Backend) []tool.Tool {
	return []tool.Tool{
		tool.NewFunctionToolFromStruct(
			"get_customer",
			"Get a customer by name and phone number. Creates the customer if not found.",
			getCustomerArgs{},
			func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
				return b.GetCustomer(toolCtx.Context(), stringArg(args, "name"), stringArg(args, "phone"))
			},
		),
		tool.NewFunctionToolFromStruct(
			"get_reservations",
			"Get reservations for a customer or date.",
			getReservationsArgs{},
			func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
				return b.GetReservations(toolCtx.Context(), stringArg(args, "customer_id"), stringArg(args, "date"))
			},
		),
		tool.NewFunctionToolFromStruct(
			"create_reservation",
			"Create a new reservation for a customer.",
			createReservationArgs{},
			func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
				return b.CreateReservation(
					toolCtx.Context(),
					stringArg(args, "customer_id"),
					stringArg(args, "date"),
					stringArg(args, "time"),
					intArg(args, "party_size", 0),
				)
			},
		),
		tool.NewFunctionToolFromStruct(
			"check_table_availability",
			"Check available tables for a given party size.",
			checkTableAvailabilityArgs{},
			func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
				return b.CheckTableAvailability(toolCtx.Context(), intArg(args, "party_size", 0))
			},
		),
		tool.NewFunctionToolFromStruct(
			"assign_table",
			"Assign a table to a customer.",
			assignTableArgs{},
			func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
				return b.AssignTable(toolCtx.Context(), stringArg(args, "customer_id"), stringArg(args, "table_id"))
			},
		),
		tool.NewFunctionToolFromStruct(
			"release_table",
			"Release the first occupied table with the given capacity.",
			releaseTableArgs{},
			func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
				return b.ReleaseTable(toolCtx.Context(), intArg(args, "capacity", 0))
			},
		),
		tool.NewFunctionToolFromStruct(
			"get_menu",
			"Get the restaurant menu, optionally filtered by category.",
			getMenuArgs{},
			func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
				return b.GetMenu(toolCtx.Context(), stringArg(args, "category"))
			},
		),
		tool.NewFunctionToolFromStruct(
			"get_customer_orders",
			"Get a customer's previous orders, newest first.",
			getCustomerOrdersArgs{},
			func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
				return b.GetCustomerOrders(toolCtx.Context(), stringArg(args, "customer_id"), intArg(args, "limit", 5))
			},
		),
		tool.NewFunctionToolFromStruct(
			"create_order",
			"Create a new order for a customer. Items are priced from the menu.",
			createOrderArgs{},
			func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
				return b.CreateOrder(
					toolCtx.Context(),
					stringArg(args, "customer_id"),
					stringArg(args, "table_id"),
					orderItemsArg(args, "items"),
				)
			},
		),
		tool.NewFunctionToolFromStruct(
			"get_order_status",
			"Get the status of an order.",
			getOrderStatusArgs{},
			func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
				return b.GetOrderStatus(toolCtx.Context(), stringArg(args, "order_id"))
			},
		),
		tool.NewFunctionToolFromStruct(
			"update_order_status",
			"Update the status of an order (pending, preparing, ready, served).",
			updateOrderStatusArgs{},
			func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
				return b.UpdateOrderStatus(toolCtx.Context(), stringArg(args, "order_id"), stringArg(args, "status"))
			},
		),
		tool.NewFunctionToolFromStruct(
			"generate_bill",
			"Generate a bill for a customer's served and ready orders.",
			generateBillArgs{},
			func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
				return b.GenerateBill(toolCtx.Context(), stringArg(args, "customer_id"))
			},
		),
		tool.NewFunctionToolFromStruct(
			"process_payment",
			"Process payment for a bill.",
			processPaymentArgs{},
			func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
				return b.ProcessPayment(toolCtx.Context(), stringArg(args, "bill_id"), stringArg(args, "payment_method"))
			},
		),
		tool.NewFunctionToolFromStruct(
			"add_to_tab",
			"Add an amount to a customer's tab for later payment.",
			addToTabArgs{},
			func(toolCtx *core.ToolContext, args map[string]any) (any, error) {
				return b.AddToTab(toolCtx.Context(), stringArg(args, "customer_id"), floatArg(args, "amount"))
			},
		),
	}
}

func stringArg(args map[string]any, key string) string {
	s, _ := args[key].(string)
	return s
}

// intArg tolerates the float64 that JSON decoding produces for numbers.
func intArg(args map[string]any, key string, fallback int) int {
	switch v := args[key].(type) {
	case float64:
		return int(v)
	case int:
		return v
	default:
		return fallback
	}
}

func floatArg(args map[string]any, key string) float64 {
	switch v := args[key].(type) {
	case float64:
		return v
	case int:
		return float64(v)
	default:
		return 0
	}
}

// orderItemsArg rebuilds order items from the decoded argument list. Prices
// are assigned by the backend from the menu, never taken from the model.
func orderItemsArg(args map[string]any, key string) []OrderItem {
	raw, _ := args[key].([]any)

	items := make([]OrderItem, 0, len(raw))
	for _, entry := range raw {
		m, ok := entry.(map[string]any)
		if !ok {
			continue
		}

		items = append(items, OrderItem{
			Name:     stringArg(m, "name"),
			Quantity: intArg(m, "quantity", 1),
		})
	}

	return items
}
