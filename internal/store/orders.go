package store

import (
	"context"
	"fmt"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/errs"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/ir"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/model"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/queryir"
)

var (
	orderColumns     = queryir.Cols("id", "user_id", "total_price", "order_date", "pickup_time", "payment_method", "payment_status", "status")
	orderLineColumns = queryir.Cols("id", "order_id", "menu_id", "quantity", "unit_price")
)

func scanOrder(s scanner) (model.Order, error) {
	var (
		o                  model.Order
		orderDate, pickup  string
		method, pay, state string
	)
	if err := s.Scan(&o.ID, &o.UserID, &o.TotalPrice, &orderDate, &pickup, &method, &pay, &state); err != nil {
		return model.Order{}, err
	}
	var err error
	if o.OrderDate, err = model.ParseTime(orderDate); err != nil {
		return model.Order{}, fmt.Errorf("order %d order_date: %w", o.ID, err)
	}
	if o.PickupTime, err = model.ParseTime(pickup); err != nil {
		return model.Order{}, fmt.Errorf("order %d pickup_time: %w", o.ID, err)
	}
	o.PaymentMethod = model.PaymentMethod(method)
	o.PaymentStatus = model.PaymentStatus(pay)
	o.Status = model.OrderStatus(state)
	return o, nil
}

func scanOrderLine(s scanner) (model.OrderLine, error) {
	var l model.OrderLine
	err := s.Scan(&l.ID, &l.OrderID, &l.MenuID, &l.Quantity, &l.UnitPrice)
	return l, err
}

// ListOrders returns orders matching f.
func (r Reader) ListOrders(ctx context.Context, f Filter) ([]model.Order, error) {
	q := queryir.Select{From: string(TableOrders), Columns: orderColumns, Filter: f.Where, OrderBy: f.Order}
	orders := []model.Order{}
	err := r.selectRows(ctx, "store.list_orders", q, f.Params, func(s scanner) error {
		o, err := scanOrder(s)
		if err != nil {
			return err
		}
		orders = append(orders, o)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return orders, nil
}

// OrdersByUser returns a user's orders, newest first.
func (r Reader) OrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return r.ListOrders(ctx, Filter{
		Where: queryir.Equals{Field: "user_id", Value: ir.IRInt(userID)},
		Order: []queryir.Order{queryir.Desc("order_date"), queryir.Desc("id")},
	})
}

// GetOrder returns the order with the given id.
func (r Reader) GetOrder(ctx context.Context, id int64) (model.Order, error) {
	orders, err := r.ListOrders(ctx, ByID(id))
	if err != nil {
		return model.Order{}, err
	}
	if len(orders) == 0 {
		return model.Order{}, notFound("store.get_order", "order", id)
	}
	return orders[0], nil
}

// ListOrderLines returns order lines matching f.
func (r Reader) ListOrderLines(ctx context.Context, f Filter) ([]model.OrderLine, error) {
	q := queryir.Select{From: string(TableOrderLines), Columns: orderLineColumns, Filter: f.Where, OrderBy: f.Order}
	lines := []model.OrderLine{}
	err := r.selectRows(ctx, "store.list_order_lines", q, f.Params, func(s scanner) error {
		l, err := scanOrderLine(s)
		if err != nil {
			return err
		}
		lines = append(lines, l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// OrderLines returns the lines of one order in insertion order.
func (r Reader) OrderLines(ctx context.Context, orderID int64) ([]model.OrderLine, error) {
	return r.ListOrderLines(ctx, Filter{Where: queryir.Equals{Field: "order_id", Value: ir.IRInt(orderID)}})
}

var orderLineDetailQuery = queryir.Join{
	Left: queryir.Select{
		From:    string(TableOrderLines),
		Columns: orderLineColumns,
		Filter:  queryir.Param{Field: "order_id", Name: "order_id"},
	},
	Right: queryir.Select{
		From: string(TableMenus),
		Columns: []queryir.Column{
			{Field: "name", As: "menu_name"},
			{Field: "image_ref", As: "menu_image"},
		},
	},
	On: queryir.On{Left: "menu_id", Right: "id"},
}

// OrderLineDetails returns the lines of one order joined with menu names.
func (r Reader) OrderLineDetails(ctx context.Context, orderID int64) ([]model.OrderLineDetail, error) {
	details := []model.OrderLineDetail{}
	err := r.selectRows(ctx, "store.order_line_details", orderLineDetailQuery, map[string]any{"order_id": orderID}, func(s scanner) error {
		var d model.OrderLineDetail
		if err := s.Scan(&d.ID, &d.OrderID, &d.MenuID, &d.Quantity, &d.UnitPrice, &d.MenuName, &d.MenuImage); err != nil {
			return err
		}
		details = append(details, d)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return details, nil
}

// InsertOrder inserts an order header and returns its id.
func (tx *Tx) InsertOrder(ctx context.Context, o model.Order) (int64, error) {
	id, err := tx.insert(ctx, "store.insert_order", `
		INSERT INTO orders (user_id, total_price, order_date, pickup_time, payment_method, payment_status, status)
		VALUES (?, ?, ?, ?, ?, ?, ?)
	`,
		o.UserID,
		o.TotalPrice.String(),
		model.FormatTime(o.OrderDate),
		model.FormatTime(o.PickupTime),
		string(o.PaymentMethod),
		string(o.PaymentStatus),
		string(o.Status),
	)
	if err != nil {
		return 0, err
	}
	tx.touch(TableOrders)
	return id, nil
}

// InsertOrderLine inserts an order line and returns its id.
func (tx *Tx) InsertOrderLine(ctx context.Context, l model.OrderLine) (int64, error) {
	id, err := tx.insert(ctx, "store.insert_order_line", `
		INSERT INTO order_lines (order_id, menu_id, quantity, unit_price)
		VALUES (?, ?, ?, ?)
	`, l.OrderID, l.MenuID, l.Quantity, l.UnitPrice.String())
	if err != nil {
		return 0, err
	}
	tx.touch(TableOrderLines)
	return id, nil
}

// TransitionOrderStatus moves an order from one status to another.
// The update is guarded on the current status, so a concurrent transition
// cannot be overwritten. Fails with NotFound for a missing order and
// InvalidTransition when the order is not in status from.
func (tx *Tx) TransitionOrderStatus(ctx context.Context, id int64, from, to model.OrderStatus) error {
	if !from.CanTransition(to) {
		return errs.Newf(errs.InvalidTransition, "store.transition_order_status", "%s -> %s is not allowed", from, to)
	}
	n, err := tx.exec(ctx, "store.transition_order_status",
		`UPDATE orders SET status = ? WHERE id = ? AND status = ?`, string(to), id, string(from))
	if err != nil {
		return err
	}
	if n == 0 {
		o, err := tx.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		return errs.Newf(errs.InvalidTransition, "store.transition_order_status",
			"order %d is %s, cannot move to %s", id, o.Status, to)
	}
	tx.touch(TableOrders)
	return nil
}

// TransitionPaymentStatus moves an order's payment status, guarded the same
// way as TransitionOrderStatus.
func (tx *Tx) TransitionPaymentStatus(ctx context.Context, id int64, from, to model.PaymentStatus) error {
	if !from.CanTransition(to) {
		return errs.Newf(errs.InvalidTransition, "store.transition_payment_status", "%s -> %s is not allowed", from, to)
	}
	n, err := tx.exec(ctx, "store.transition_payment_status",
		`UPDATE orders SET payment_status = ? WHERE id = ? AND payment_status = ?`, string(to), id, string(from))
	if err != nil {
		return err
	}
	if n == 0 {
		o, err := tx.GetOrder(ctx, id)
		if err != nil {
			return err
		}
		return errs.Newf(errs.InvalidTransition, "store.transition_payment_status",
			"order %d payment is %s, cannot move to %s", id, o.PaymentStatus, to)
	}
	tx.touch(TableOrders)
	return nil
}

// DeleteOrder removes an order and its lines.
func (tx *Tx) DeleteOrder(ctx context.Context, id int64) error {
	n, err := tx.exec(ctx, "store.delete_order", `DELETE FROM orders WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("store.delete_order", "order", id)
	}
	tx.touchCascade(TableOrders)
	return nil
}
