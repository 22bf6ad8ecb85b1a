package cart

import (
	"context"
	"strconv"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/ir"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/liveq"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/store"
)

// Priced reads depend on menus as well: a price or name edit changes them.
var (
	pricedTables = []store.Table{store.TableCarts, store.TableMenus}
	countTables  = []store.Table{store.TableCarts}
)

func userParams(userID int64) ir.IRObject {
	return ir.IRObject{"user_id": ir.IRInt(userID)}
}

// LinesQuery is the live form of Lines.
func (a *Aggregator) LinesQuery(userID int64) liveq.Definition {
	return liveq.Definition{
		Name:   "cart.lines",
		Params: userParams(userID),
		Tables: pricedTables,
		Eval: func(ctx context.Context) (any, error) {
			return a.Lines(ctx, userID)
		},
	}
}

// CountQuery is the live form of Count.
func (a *Aggregator) CountQuery(userID int64) liveq.Definition {
	return liveq.Definition{
		Name:   "cart.count",
		Params: userParams(userID),
		Tables: countTables,
		Eval: func(ctx context.Context) (any, error) {
			return a.Count(ctx, userID)
		},
	}
}

// TotalQuery is the live form of Total.
func (a *Aggregator) TotalQuery(userID int64) liveq.Definition {
	return liveq.Definition{
		Name:   "cart.total",
		Params: userParams(userID),
		Tables: pricedTables,
		Eval: func(ctx context.Context) (any, error) {
			return a.Total(ctx, userID)
		},
	}
}

// ViewQuery is the live form of View.
func (a *Aggregator) ViewQuery(userID int64) liveq.Definition {
	return liveq.Definition{
		Name:   "cart.view",
		Params: userParams(userID),
		Tables: pricedTables,
		Eval: func(ctx context.Context) (any, error) {
			return a.View(ctx, userID)
		},
	}
}

func itoa(n int64) string {
	return strconv.FormatInt(n, 10)
}
