package cart

import (
	"context"
	"log/slog"

	"github.com/shopspring/decimal"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/errs"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/model"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/store"
)

// Aggregator owns cart mutations and cart reads.
type Aggregator struct {
	store  *store.Store
	locks  *UserLocks
	logger *slog.Logger
}

// Option configures an Aggregator.
type Option func(*Aggregator)

// WithLogger sets the logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.logger = l
		}
	}
}

// WithLocks shares a lock table with other cart writers (checkout).
func WithLocks(l *UserLocks) Option {
	return func(a *Aggregator) {
		if l != nil {
			a.locks = l
		}
	}
}

// New creates an Aggregator over s.
func New(s *store.Store, opts ...Option) *Aggregator {
	a := &Aggregator{
		store:  s,
		locks:  NewUserLocks(),
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Locks returns the aggregator's lock table.
func (a *Aggregator) Locks() *UserLocks {
	return a.locks
}

// AddToCart adds quantity of menuID to userID's cart and returns the id of
// the affected line.
//
// An existing line for the same menu absorbs the quantity; its note is
// replaced only when note is non-empty. Missing user or menu is a
// ConstraintViolation.
func (a *Aggregator) AddToCart(ctx context.Context, userID, menuID int64, quantity int, note string) (int64, error) {
	const op = "cart.add"

	if quantity < 1 {
		return 0, errs.Newf(errs.ConstraintViolation, op, "quantity must be at least 1, got %d", quantity)
	}

	unlock := a.locks.Lock(userID)
	defer unlock()

	var (
		id     int64
		merged bool
	)
	err := a.store.Write(ctx, func(tx *store.Tx) error {
		if err := requireRefs(ctx, tx, op, userID, menuID); err != nil {
			return err
		}

		line, found, err := tx.FindCartLine(ctx, userID, menuID)
		if err != nil {
			return err
		}
		if !found {
			id, err = tx.InsertCartLine(ctx, model.CartLine{
				UserID:   userID,
				MenuID:   menuID,
				Quantity: quantity,
				Note:     note,
			})
			return err
		}

		line.Quantity += quantity
		if note != "" {
			line.Note = note
		}
		id, merged = line.ID, true
		return tx.UpdateCartLine(ctx, line)
	})
	if err != nil {
		return 0, err
	}

	a.logger.Debug("cart line added",
		"user_id", userID,
		"menu_id", menuID,
		"cart_id", id,
		"quantity", quantity,
		"merged", merged)
	return id, nil
}

// requireRefs reports a missing user or menu as a ConstraintViolation.
func requireRefs(ctx context.Context, tx *store.Tx, op string, userID, menuID int64) error {
	if _, err := tx.GetUser(ctx, userID); err != nil {
		if errs.Is(err, errs.NotFound) {
			return errs.Newf(errs.ConstraintViolation, op, "user %d does not exist", userID).
				WithDetail("user_id", itoa(userID))
		}
		return err
	}
	if _, err := tx.GetMenu(ctx, menuID); err != nil {
		if errs.Is(err, errs.NotFound) {
			return errs.Newf(errs.ConstraintViolation, op, "menu %d does not exist", menuID).
				WithDetail("menu_id", itoa(menuID))
		}
		return err
	}
	return nil
}

// SetQuantity sets a line's quantity. A quantity of zero or less removes the
// line, so a stored line never holds less than one item.
func (a *Aggregator) SetQuantity(ctx context.Context, cartID int64, quantity int) error {
	return a.mutateLine(ctx, "cart.set_quantity", cartID, func(tx *store.Tx, line model.CartLine) error {
		if quantity <= 0 {
			return tx.DeleteCartLine(ctx, line.ID)
		}
		line.Quantity = quantity
		return tx.UpdateCartLine(ctx, line)
	})
}

// UpdateNote replaces a line's note.
func (a *Aggregator) UpdateNote(ctx context.Context, cartID int64, note string) error {
	return a.mutateLine(ctx, "cart.update_note", cartID, func(tx *store.Tx, line model.CartLine) error {
		line.Note = note
		return tx.UpdateCartLine(ctx, line)
	})
}

// RemoveLine deletes one line.
func (a *Aggregator) RemoveLine(ctx context.Context, cartID int64) error {
	return a.mutateLine(ctx, "cart.remove", cartID, func(tx *store.Tx, line model.CartLine) error {
		return tx.DeleteCartLine(ctx, line.ID)
	})
}

// mutateLine locks the line owner's cart and applies fn to the line as read
// inside the write.
func (a *Aggregator) mutateLine(ctx context.Context, op string, cartID int64, fn func(*store.Tx, model.CartLine) error) error {
	owner, err := a.store.GetCartLine(ctx, cartID)
	if err != nil {
		return err
	}

	unlock := a.locks.Lock(owner.UserID)
	defer unlock()

	err = a.store.Write(ctx, func(tx *store.Tx) error {
		line, err := tx.GetCartLine(ctx, cartID)
		if err != nil {
			return err
		}
		return fn(tx, line)
	})
	if err != nil {
		return err
	}

	a.logger.Debug("cart line changed", "op", op, "cart_id", cartID, "user_id", owner.UserID)
	return nil
}

// ClearUser empties userID's cart and returns how many lines were removed.
func (a *Aggregator) ClearUser(ctx context.Context, userID int64) (int64, error) {
	unlock := a.locks.Lock(userID)
	defer unlock()

	var n int64
	err := a.store.Write(ctx, func(tx *store.Tx) error {
		var err error
		n, err = tx.DeleteCartLinesByUser(ctx, userID)
		return err
	})
	if err != nil {
		return 0, err
	}

	a.logger.Debug("cart cleared", "user_id", userID, "removed", n)
	return n, nil
}

// Lines returns userID's cart priced at current menu prices.
func (a *Aggregator) Lines(ctx context.Context, userID int64) ([]model.PricedCartLine, error) {
	return a.store.PricedCart(ctx, userID)
}

// Count returns the number of lines in userID's cart.
func (a *Aggregator) Count(ctx context.Context, userID int64) (int, error) {
	return a.store.CountCartLines(ctx, userID)
}

// Total returns Σ quantity × current menu price over userID's cart. An empty
// cart totals zero.
func (a *Aggregator) Total(ctx context.Context, userID int64) (decimal.Decimal, error) {
	lines, err := a.store.PricedCart(ctx, userID)
	if err != nil {
		return decimal.Zero, err
	}
	return model.SumLines(lines), nil
}

// View is a cart as the presentation layer shows it.
type View struct {
	UserID int64                  `json:"user_id"`
	Lines  []model.PricedCartLine `json:"lines"`
	Count  int                    `json:"count"`
	Total  decimal.Decimal        `json:"total"`
}

// View returns lines, count and total from a single read.
func (a *Aggregator) View(ctx context.Context, userID int64) (View, error) {
	lines, err := a.store.PricedCart(ctx, userID)
	if err != nil {
		return View{}, err
	}
	return View{
		UserID: userID,
		Lines:  lines,
		Count:  len(lines),
		Total:  model.SumLines(lines),
	}, nil
}
