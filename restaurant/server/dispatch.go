package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/hupe1980/brigade/restaurant"
)

type unknownMethodError struct{ method string }

func (e *unknownMethodError) Error() string { return fmt.Sprintf("unknown method %q", e.method) }

type badParamsError struct {
	method string
	err    error
}

func (e *badParamsError) Error() string {
	return fmt.Sprintf("invalid params for %s: %v", e.method, e.err)
}

func (e *badParamsError) Unwrap() error { return e.err }

func errIsUnknownMethod(err error) bool {
	var target *unknownMethodError
	return errors.As(err, &target)
}

func errIsBadParams(err error) bool {
	var target *badParamsError
	return errors.As(err, &target)
}

// unmarshalParams tolerates absent params, leaving v at its zero value.
func unmarshalParams(method string, raw json.RawMessage, v any) error {
	if len(raw) == 0 {
		return nil
	}

	if err := json.Unmarshal(raw, v); err != nil {
		return &badParamsError{method: method, err: err}
	}

	return nil
}

func (s *Server) dispatch(ctx context.Context, method string, params json.RawMessage) (map[string]any, error) {
	switch method {
	case "get_customer":
		var p struct {
			Name  string `json:"name"`
			Phone string `json:"phone"`
		}
		if err := unmarshalParams(method, params, &p); err != nil {
			return nil, err
		}

		return s.backend.GetCustomer(ctx, p.Name, p.Phone)

	case "get_reservations":
		var p struct {
			CustomerID string `json:"customer_id"`
			Date       string `json:"date"`
		}
		if err := unmarshalParams(method, params, &p); err != nil {
			return nil, err
		}

		return s.backend.GetReservations(ctx, p.CustomerID, p.Date)

	case "create_reservation":
		var p struct {
			CustomerID string `json:"customer_id"`
			Date       string `json:"date"`
			Time       string `json:"time"`
			PartySize  int    `json:"party_size"`
		}
		if err := unmarshalParams(method, params, &p); err != nil {
			return nil, err
		}

		return s.backend.CreateReservation(ctx, p.CustomerID, p.Date, p.Time, p.PartySize)

	case "check_table_availability":
		var p struct {
			PartySize int `json:"party_size"`
		}
		if err := unmarshalParams(method, params, &p); err != nil {
			return nil, err
		}

		return s.backend.CheckTableAvailability(ctx, p.PartySize)

	case "assign_table":
		var p struct {
			CustomerID string `json:"customer_id"`
			TableID    string `json:"table_id"`
		}
		if err := unmarshalParams(method, params, &p); err != nil {
			return nil, err
		}

		return s.backend.AssignTable(ctx, p.CustomerID, p.TableID)

	case "release_table":
		var p struct {
			Capacity int `json:"capacity"`
		}
		if err := unmarshalParams(method, params, &p); err != nil {
			return nil, err
		}

		return s.backend.ReleaseTable(ctx, p.Capacity)

	case "get_menu":
		var p struct {
			Category string `json:"category"`
		}
		if err := unmarshalParams(method, params, &p); err != nil {
			return nil, err
		}

		return s.backend.GetMenu(ctx, p.Category)

	case "get_customer_orders":
		var p struct {
			CustomerID string `json:"customer_id"`
			Limit      int    `json:"limit"`
		}
		if err := unmarshalParams(method, params, &p); err != nil {
			return nil, err
		}

		return s.backend.GetCustomerOrders(ctx, p.CustomerID, p.Limit)

	case "create_order":
		var p struct {
			CustomerID string                 `json:"customer_id"`
			TableID    string                 `json:"table_id"`
			Items      []restaurant.OrderItem `json:"items"`
		}
		if err := unmarshalParams(method, params, &p); err != nil {
			return nil, err
		}

		return s.backend.CreateOrder(ctx, p.CustomerID, p.TableID, p.Items)

	case "get_order_status":
		var p struct {
			OrderID string `json:"order_id"`
		}
		if err := unmarshalParams(method, params, &p); err != nil {
			return nil, err
		}

		return s.backend.GetOrderStatus(ctx, p.OrderID)

	case "update_order_status":
		var p struct {
			OrderID string `json:"order_id"`
			Status  string `json:"status"`
		}
		if err := unmarshalParams(method, params, &p); err != nil {
			return nil, err
		}

		return s.backend.UpdateOrderStatus(ctx, p.OrderID, p.Status)

	case "generate_bill":
		var p struct {
			CustomerID string `json:"customer_id"`
		}
		if err := unmarshalParams(method, params, &p); err != nil {
			return nil, err
		}

		return s.backend.GenerateBill(ctx, p.CustomerID)

	case "process_payment":
		var p struct {
			BillID        string `json:"bill_id"`
			PaymentMethod string `json:"payment_method"`
		}
		if err := unmarshalParams(method, params, &p); err != nil {
			return nil, err
		}

		return s.backend.ProcessPayment(ctx, p.BillID, p.PaymentMethod)

	case "add_to_tab":
		var p struct {
			CustomerID string  `json:"customer_id"`
			Amount     float64 `json:"amount"`
		}
		if err := unmarshalParams(method, params, &p); err != nil {
			return nil, err
		}

		return s.backend.AddToTab(ctx, p.CustomerID, p.Amount)

	default:
		return nil, &unknownMethodError{method: method}
	}
}
