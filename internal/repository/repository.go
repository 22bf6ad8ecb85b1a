package repository

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/shopspring/decimal"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/account"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/cart"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/catalog"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/checkout"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/liveq"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/model"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/store"
)

// Options configures a Repository. The zero value is production defaults.
type Options struct {
	Logger      *slog.Logger
	Clock       checkout.Clock
	PickupDelay time.Duration
	IDs         liveq.IDGenerator // subscription and checkout ids
	BcryptCost  int
}

// Repository exposes cart, checkout, order, catalog and account operations
// over one store.
type Repository struct {
	store  *store.Store
	engine *liveq.Engine
	owned  bool
	logger *slog.Logger

	Accounts *account.Service
	Catalog  *catalog.Service
	Cart     *cart.Aggregator
	Orders   *checkout.Service
}

// Open opens the database at path and builds a Repository that closes it.
func Open(path string, opts Options) (*Repository, error) {
	st, err := store.Open(path)
	if err != nil {
		return nil, err
	}
	r := New(st, opts)
	r.owned = true
	return r, nil
}

// New builds a Repository over an open store. The caller keeps ownership of
// st.
func New(st *store.Store, opts Options) *Repository {
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}

	locks := cart.NewUserLocks()

	var engineOpts []liveq.Option
	engineOpts = append(engineOpts, liveq.WithLogger(logger))
	if opts.IDs != nil {
		engineOpts = append(engineOpts, liveq.WithIDGenerator(opts.IDs))
	}

	accountOpts := []account.Option{account.WithLogger(logger)}
	if opts.BcryptCost != 0 {
		accountOpts = append(accountOpts, account.WithCost(opts.BcryptCost))
	}

	return &Repository{
		store:    st,
		engine:   liveq.New(st, engineOpts...),
		logger:   logger,
		Accounts: account.New(st, accountOpts...),
		Catalog:  catalog.New(st, logger),
		Cart:     cart.New(st, cart.WithLocks(locks), cart.WithLogger(logger)),
		Orders: checkout.New(st,
			checkout.WithLocks(locks),
			checkout.WithClock(opts.Clock),
			checkout.WithPickupDelay(opts.PickupDelay),
			checkout.WithIDGenerator(opts.IDs),
			checkout.WithLogger(logger)),
	}
}

// Store returns the underlying store.
func (r *Repository) Store() *store.Store {
	return r.store
}

// Engine returns the live query engine.
func (r *Repository) Engine() *liveq.Engine {
	return r.engine
}

// Close ends every subscription and, when the Repository opened the store,
// closes it.
func (r *Repository) Close() error {
	r.engine.Close()
	if r.owned {
		return r.store.Close()
	}
	return nil
}

// SeedCatalog seeds cat into an empty database. A nil cat seeds the built-in
// catalog.
func (r *Repository) SeedCatalog(ctx context.Context, cat *catalog.Catalog) (bool, error) {
	if cat == nil {
		var err error
		if cat, err = catalog.Default(); err != nil {
			return false, err
		}
	}
	return catalog.SeedIfEmpty(ctx, r.store, cat, r.logger)
}

// AddToCart adds quantity of a menu to a user's cart, merging with an
// existing line for the same menu. Returns the line id.
func (r *Repository) AddToCart(ctx context.Context, userID, menuID int64, quantity int, note string) (int64, error) {
	return r.Cart.AddToCart(ctx, userID, menuID, quantity, note)
}

// SetQuantity sets a cart line's quantity; zero or less removes the line.
func (r *Repository) SetQuantity(ctx context.Context, cartID int64, quantity int) error {
	return r.Cart.SetQuantity(ctx, cartID, quantity)
}

// UpdateNote replaces a cart line's note.
func (r *Repository) UpdateNote(ctx context.Context, cartID int64, note string) error {
	return r.Cart.UpdateNote(ctx, cartID, note)
}

// RemoveLine deletes a cart line.
func (r *Repository) RemoveLine(ctx context.Context, cartID int64) error {
	return r.Cart.RemoveLine(ctx, cartID)
}

// ClearCart empties a user's cart.
func (r *Repository) ClearCart(ctx context.Context, userID int64) (int64, error) {
	return r.Cart.ClearUser(ctx, userID)
}

// ListCart returns a user's cart lines priced at current menu prices.
func (r *Repository) ListCart(ctx context.Context, userID int64) ([]model.PricedCartLine, error) {
	return r.Cart.Lines(ctx, userID)
}

// CartView returns lines, count and total.
func (r *Repository) CartView(ctx context.Context, userID int64) (cart.View, error) {
	return r.Cart.View(ctx, userID)
}

// CartTotal returns the live-priced cart total.
func (r *Repository) CartTotal(ctx context.Context, userID int64) (decimal.Decimal, error) {
	return r.Cart.Total(ctx, userID)
}

// CartCount returns the number of cart lines.
func (r *Repository) CartCount(ctx context.Context, userID int64) (int, error) {
	return r.Cart.Count(ctx, userID)
}

// Checkout converts a user's cart into an order. confirmed is the total the
// user accepted.
func (r *Repository) Checkout(ctx context.Context, userID int64, confirmed decimal.Decimal, method model.PaymentMethod) (checkout.Receipt, error) {
	return r.Orders.Checkout(ctx, checkout.Request{
		UserID:         userID,
		ConfirmedTotal: confirmed,
		PaymentMethod:  method,
	})
}

// CompleteOrder marks a pending order completed.
func (r *Repository) CompleteOrder(ctx context.Context, orderID int64) (model.Order, error) {
	return r.Orders.Complete(ctx, orderID)
}

// CancelOrder marks a pending order cancelled.
func (r *Repository) CancelOrder(ctx context.Context, orderID int64) (model.Order, error) {
	return r.Orders.Cancel(ctx, orderID)
}

// MarkPaid marks a pending payment paid.
func (r *Repository) MarkPaid(ctx context.Context, orderID int64) (model.Order, error) {
	return r.Orders.MarkPaid(ctx, orderID)
}

// CancelPayment marks a pending payment cancelled.
func (r *Repository) CancelPayment(ctx context.Context, orderID int64) (model.Order, error) {
	return r.Orders.CancelPayment(ctx, orderID)
}

// ListOrders returns a user's orders, newest first.
func (r *Repository) ListOrders(ctx context.Context, userID int64) ([]model.Order, error) {
	return r.Orders.OrdersByUser(ctx, userID)
}

// OrderDetail returns an order with its lines.
func (r *Repository) OrderDetail(ctx context.Context, orderID int64) (checkout.Detail, error) {
	return r.Orders.Detail(ctx, orderID)
}

// OrderHistory returns every order of a user, newest first, with its lines.
func (r *Repository) OrderHistory(ctx context.Context, userID int64) ([]checkout.Detail, error) {
	orders, err := r.Orders.OrdersByUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	out := make([]checkout.Detail, 0, len(orders))
	for _, o := range orders {
		lines, err := r.Orders.OrderLines(ctx, o.ID)
		if err != nil {
			return nil, err
		}
		out = append(out, checkout.Detail{Order: o, Lines: lines})
	}
	return out, nil
}

// Push is one typed live query update.
type Push[T any] struct {
	Seq   int64
	Value T
	Err   error
}

// watch subscribes def and adapts its untyped results to T.
func watch[T any](ctx context.Context, e *liveq.Engine, def liveq.Definition, fn func(Push[T])) (T, *liveq.Subscription, error) {
	var zero T

	v, sub, err := e.Subscribe(ctx, def, func(u liveq.Update) {
		p := Push[T]{Seq: u.Seq, Err: u.Err}
		if u.Err == nil {
			t, ok := u.Value.(T)
			if !ok {
				p.Err = fmt.Errorf("%s: unexpected result type %T", def.Name, u.Value)
			}
			p.Value = t
		}
		fn(p)
	})
	if err != nil {
		return zero, nil, err
	}

	initial, ok := v.(T)
	if !ok {
		sub.Unsubscribe()
		return zero, nil, fmt.Errorf("%s: unexpected result type %T", def.Name, v)
	}
	return initial, sub, nil
}

// WatchCart streams a user's cart view.
func (r *Repository) WatchCart(ctx context.Context, userID int64, fn func(Push[cart.View])) (cart.View, *liveq.Subscription, error) {
	return watch(ctx, r.engine, r.Cart.ViewQuery(userID), fn)
}

// WatchCartLines streams a user's priced cart lines.
func (r *Repository) WatchCartLines(ctx context.Context, userID int64, fn func(Push[[]model.PricedCartLine])) ([]model.PricedCartLine, *liveq.Subscription, error) {
	return watch(ctx, r.engine, r.Cart.LinesQuery(userID), fn)
}

// WatchCartTotal streams a user's cart total.
func (r *Repository) WatchCartTotal(ctx context.Context, userID int64, fn func(Push[decimal.Decimal])) (decimal.Decimal, *liveq.Subscription, error) {
	return watch(ctx, r.engine, r.Cart.TotalQuery(userID), fn)
}

// WatchCartCount streams a user's cart line count.
func (r *Repository) WatchCartCount(ctx context.Context, userID int64, fn func(Push[int])) (int, *liveq.Subscription, error) {
	return watch(ctx, r.engine, r.Cart.CountQuery(userID), fn)
}

// WatchOrders streams a user's order list.
func (r *Repository) WatchOrders(ctx context.Context, userID int64, fn func(Push[[]model.Order])) ([]model.Order, *liveq.Subscription, error) {
	return watch(ctx, r.engine, r.Orders.OrdersQuery(userID), fn)
}

// WatchOrder streams one order header.
func (r *Repository) WatchOrder(ctx context.Context, orderID int64, fn func(Push[model.Order])) (model.Order, *liveq.Subscription, error) {
	return watch(ctx, r.engine, r.Orders.OrderQuery(orderID), fn)
}

// WatchOrderLines streams an order's lines with menu details.
func (r *Repository) WatchOrderLines(ctx context.Context, orderID int64, fn func(Push[[]model.OrderLineDetail])) ([]model.OrderLineDetail, *liveq.Subscription, error) {
	return watch(ctx, r.engine, r.Orders.OrderLinesQuery(orderID), fn)
}

// WatchTenants streams the tenant list.
func (r *Repository) WatchTenants(ctx context.Context, fn func(Push[[]model.Tenant])) ([]model.Tenant, *liveq.Subscription, error) {
	return watch(ctx, r.engine, r.Catalog.TenantsQuery(), fn)
}

// WatchMenusByTenant streams a tenant's menus.
func (r *Repository) WatchMenusByTenant(ctx context.Context, tenantID int64, fn func(Push[[]model.Menu])) ([]model.Menu, *liveq.Subscription, error) {
	return watch(ctx, r.engine, r.Catalog.MenusByTenantQuery(tenantID), fn)
}

// WatchSearch streams the menus whose name contains q.
func (r *Repository) WatchSearch(ctx context.Context, q string, fn func(Push[[]model.Menu])) ([]model.Menu, *liveq.Subscription, error) {
	return watch(ctx, r.engine, r.Catalog.SearchQuery(q), fn)
}

// WatchCategories streams the distinct menu categories.
func (r *Repository) WatchCategories(ctx context.Context, fn func(Push[[]string])) ([]string, *liveq.Subscription, error) {
	return watch(ctx, r.engine, r.Catalog.CategoriesQuery(), fn)
}
