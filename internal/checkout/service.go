package checkout

import (
	"context"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/cart"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/errs"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/liveq"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/model"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/store"
)

// DefaultPickupDelay is the gap between placing an order and its pickup time.
const DefaultPickupDelay = 15 * time.Minute

// Clock supplies order timestamps.
type Clock interface {
	Now() time.Time
}

type systemClock struct{}

func (systemClock) Now() time.Time { return time.Now() }

// Service performs checkouts and order transitions.
type Service struct {
	store       *store.Store
	locks       *cart.UserLocks
	clock       Clock
	ids         liveq.IDGenerator
	pickupDelay time.Duration
	logger      *slog.Logger

	// beforeLine runs before each order line insert. Tests use it to fail
	// a checkout midway.
	beforeLine func(index int) error
}

// Option configures a Service.
type Option func(*Service)

// WithClock overrides the wall clock.
func WithClock(c Clock) Option {
	return func(s *Service) {
		if c != nil {
			s.clock = c
		}
	}
}

// WithPickupDelay overrides DefaultPickupDelay.
func WithPickupDelay(d time.Duration) Option {
	return func(s *Service) {
		if d > 0 {
			s.pickupDelay = d
		}
	}
}

// WithLocks shares the cart's per-user locks. Checkout must use the same lock
// table as the cart aggregator for the same store.
func WithLocks(l *cart.UserLocks) Option {
	return func(s *Service) {
		if l != nil {
			s.locks = l
		}
	}
}

// WithIDGenerator overrides checkout correlation ids.
func WithIDGenerator(g liveq.IDGenerator) Option {
	return func(s *Service) {
		if g != nil {
			s.ids = g
		}
	}
}

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Service over st.
func New(st *store.Store, opts ...Option) *Service {
	s := &Service{
		store:       st,
		locks:       cart.NewUserLocks(),
		clock:       systemClock{},
		ids:         liveq.UUIDv7Generator{},
		pickupDelay: DefaultPickupDelay,
		logger:      slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Request is a checkout submission.
type Request struct {
	UserID int64

	// ConfirmedTotal is the total the user saw and accepted. It must equal
	// the cart total at current menu prices.
	ConfirmedTotal decimal.Decimal

	PaymentMethod model.PaymentMethod
}

// Receipt is the committed order.
type Receipt struct {
	Order model.Order       `json:"order"`
	Lines []model.OrderLine `json:"lines"`
}

// Checkout converts req.UserID's cart into an order.
//
// Fails with EmptyCart when the cart has no lines, TotalMismatch when the cart
// total differs from req.ConfirmedTotal and InvalidArgument for an unknown
// payment method. None of these mutate anything.
func (s *Service) Checkout(ctx context.Context, req Request) (Receipt, error) {
	const op = "checkout"

	if !req.PaymentMethod.Valid() {
		return Receipt{}, errs.Newf(errs.InvalidArgument, op, "unknown payment method %q", req.PaymentMethod)
	}

	log := s.logger.With("checkout_id", s.ids.Generate(), "user_id", req.UserID)

	unlock := s.locks.Lock(req.UserID)
	defer unlock()

	now := s.clock.Now().UTC().Truncate(time.Second)

	var receipt Receipt
	err := s.store.Write(ctx, func(tx *store.Tx) error {
		snapshot, err := tx.PricedCart(ctx, req.UserID)
		if err != nil {
			return err
		}
		if len(snapshot) == 0 {
			return errs.New(errs.EmptyCart, op, "cart is empty").
				WithDetail("user_id", itoa(req.UserID))
		}

		total := model.SumLines(snapshot)
		if !total.Equal(req.ConfirmedTotal) {
			return errs.New(errs.TotalMismatch, op, "cart total changed since it was confirmed").
				WithDetail("confirmed", req.ConfirmedTotal.String()).
				WithDetail("actual", total.String())
		}

		order := model.Order{
			UserID:        req.UserID,
			TotalPrice:    total,
			OrderDate:     now,
			PickupTime:    now.Add(s.pickupDelay),
			PaymentMethod: req.PaymentMethod,
			PaymentStatus: model.PaymentPending,
			Status:        model.StatusPending,
		}
		if order.ID, err = tx.InsertOrder(ctx, order); err != nil {
			return err
		}

		lines := make([]model.OrderLine, 0, len(snapshot))
		for i, item := range snapshot {
			if s.beforeLine != nil {
				if err := s.beforeLine(i); err != nil {
					return err
				}
			}
			line := model.OrderLine{
				OrderID:   order.ID,
				MenuID:    item.MenuID,
				Quantity:  item.Quantity,
				UnitPrice: item.UnitPrice,
			}
			if line.ID, err = tx.InsertOrderLine(ctx, line); err != nil {
				return err
			}
			lines = append(lines, line)
		}

		if _, err := tx.DeleteCartLinesByUser(ctx, req.UserID); err != nil {
			return err
		}

		receipt = Receipt{Order: order, Lines: lines}
		return nil
	})
	if err != nil {
		switch errs.CodeOf(err) {
		case errs.EmptyCart, errs.TotalMismatch, errs.Cancelled:
			log.Info("checkout rejected", "code", errs.CodeOf(err), "error", err)
		default:
			log.Error("checkout failed", "error", err)
		}
		return Receipt{}, err
	}

	log.Info("checkout committed",
		"order_id", receipt.Order.ID,
		"total", receipt.Order.TotalPrice.String(),
		"lines", len(receipt.Lines))
	return receipt, nil
}

// Complete moves an order from Pending to Completed.
func (s *Service) Complete(ctx context.Context, orderID int64) (model.Order, error) {
	return s.transition(ctx, "order.complete", orderID, func(tx *store.Tx) error {
		return tx.TransitionOrderStatus(ctx, orderID, model.StatusPending, model.StatusCompleted)
	})
}

// Cancel moves an order from Pending to Cancelled.
func (s *Service) Cancel(ctx context.Context, orderID int64) (model.Order, error) {
	return s.transition(ctx, "order.cancel", orderID, func(tx *store.Tx) error {
		return tx.TransitionOrderStatus(ctx, orderID, model.StatusPending, model.StatusCancelled)
	})
}

// MarkPaid moves an order's payment from Pending to Paid.
func (s *Service) MarkPaid(ctx context.Context, orderID int64) (model.Order, error) {
	return s.transition(ctx, "order.mark_paid", orderID, func(tx *store.Tx) error {
		return tx.TransitionPaymentStatus(ctx, orderID, model.PaymentPending, model.PaymentPaid)
	})
}

// CancelPayment moves an order's payment from Pending to Cancelled.
func (s *Service) CancelPayment(ctx context.Context, orderID int64) (model.Order, error) {
	return s.transition(ctx, "order.cancel_payment", orderID, func(tx *store.Tx) error {
		return tx.TransitionPaymentStatus(ctx, orderID, model.PaymentPending, model.PaymentCancelled)
	})
}

// transition applies fn and returns the order as committed.
func (s *Service) transition(ctx context.Context, op string, orderID int64, fn func(*store.Tx) error) (model.Order, error) {
	var order model.Order
	err := s.store.Write(ctx, func(tx *store.Tx) error {
		if err := fn(tx); err != nil {
			return err
		}
		var err error
		order, err = tx.GetOrder(ctx, orderID)
		return err
	})
	if err != nil {
		if errs.Is(err, errs.InvalidTransition) || errs.Is(err, errs.NotFound) {
			s.logger.Info("order transition rejected", "op", op, "order_id", orderID, "error", err)
		}
		return model.Order{}, err
	}

	s.logger.Info("order transitioned",
		"op", op,
		"order_id", orderID,
		"status", order.Status,
		"payment_status", order.PaymentStatus)
	return order, nil
}
