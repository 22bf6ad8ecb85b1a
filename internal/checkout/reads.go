package checkout

import (
	"context"
	"strconv"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/ir"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/liveq"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/model"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/store"
)

// Order returns one order header.
func (s *Service) Order(ctx context.Context, orderID int64) (model.Order, error) {
	return s.store.GetOrder(ctx, orderID)
}

// OrdersByUser returns a user's orders, newest first.
func (s *Service) OrdersByUser(ctx context.Context, userID int64) ([]model.Order, error) {
	return s.store.OrdersByUser(ctx, userID)
}

// OrderLines returns an order's lines with menu names and images.
func (s *Service) OrderLines(ctx context.Context, orderID int64) ([]model.OrderLineDetail, error) {
	return s.store.OrderLineDetails(ctx, orderID)
}

// Detail is an order with its lines.
type Detail struct {
	Order model.Order             `json:"order"`
	Lines []model.OrderLineDetail `json:"lines"`
}

// Detail returns an order and its lines.
func (s *Service) Detail(ctx context.Context, orderID int64) (Detail, error) {
	o, err := s.store.GetOrder(ctx, orderID)
	if err != nil {
		return Detail{}, err
	}
	lines, err := s.store.OrderLineDetails(ctx, orderID)
	if err != nil {
		return Detail{}, err
	}
	return Detail{Order: o, Lines: lines}, nil
}

// OrdersQuery is the live form of OrdersByUser.
func (s *Service) OrdersQuery(userID int64) liveq.Definition {
	return liveq.Definition{
		Name:   "orders.by_user",
		Params: ir.IRObject{"user_id": ir.IRInt(userID)},
		Tables: []store.Table{store.TableOrders},
		Eval: func(ctx context.Context) (any, error) {
			return s.OrdersByUser(ctx, userID)
		},
	}
}

// OrderQuery is the live form of Order.
func (s *Service) OrderQuery(orderID int64) liveq.Definition {
	return liveq.Definition{
		Name:   "orders.get",
		Params: ir.IRObject{"order_id": ir.IRInt(orderID)},
		Tables: []store.Table{store.TableOrders},
		Eval: func(ctx context.Context) (any, error) {
			return s.Order(ctx, orderID)
		},
	}
}

// OrderLinesQuery is the live form of OrderLines. Menu edits change the
// joined name and image.
func (s *Service) OrderLinesQuery(orderID int64) liveq.Definition {
	return liveq.Definition{
		Name:   "orders.lines",
		Params: ir.IRObject{"order_id": ir.IRInt(orderID)},
		Tables: []store.Table{store.TableOrderLines, store.TableMenus},
		Eval: func(ctx context.Context) (any, error) {
			return s.OrderLines(ctx, orderID)
		},
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
