package harness

import (
	"context"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/account"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/ir"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/model"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/repository"
)

// action runs one scenario step. A nil result records no result object.
type action func(ctx context.Context, r *repository.Repository, args ir.IRObject) (any, error)

// argError marks a malformed step, as opposed to a domain failure.
type argError struct {
	key string
	msg string
}

func (e *argError) Error() string {
	return fmt.Sprintf("arg %q: %s", e.key, e.msg)
}

var actions = map[string]action{
	"account.register": func(ctx context.Context, r *repository.Repository, args ir.IRObject) (any, error) {
		return r.Accounts.Register(ctx, account.Registration{
			Username: optString(args, "username"),
			Email:    optString(args, "email"),
			Password: optString(args, "password"),
			FullName: optString(args, "full_name"),
			Phone:    optString(args, "phone"),
		})
	},
	"account.delete": func(ctx context.Context, r *repository.Repository, args ir.IRObject) (any, error) {
		id, err := intArg(args, "user_id")
		if err != nil {
			return nil, err
		}
		return nil, r.Accounts.Delete(ctx, id)
	},

	"catalog.set_price": func(ctx context.Context, r *repository.Repository, args ir.IRObject) (any, error) {
		id, err := intArg(args, "menu_id")
		if err != nil {
			return nil, err
		}
		price, err := decimalArg(args, "price")
		if err != nil {
			return nil, err
		}
		return r.Catalog.SetPrice(ctx, id, price)
	},
	"catalog.delete_menu": func(ctx context.Context, r *repository.Repository, args ir.IRObject) (any, error) {
		id, err := intArg(args, "menu_id")
		if err != nil {
			return nil, err
		}
		return nil, r.Catalog.DeleteMenu(ctx, id)
	},
	"catalog.delete_tenant": func(ctx context.Context, r *repository.Repository, args ir.IRObject) (any, error) {
		id, err := intArg(args, "tenant_id")
		if err != nil {
			return nil, err
		}
		return nil, r.Catalog.DeleteTenant(ctx, id)
	},

	"cart.add": func(ctx context.Context, r *repository.Repository, args ir.IRObject) (any, error) {
		user, err := intArg(args, "user_id")
		if err != nil {
			return nil, err
		}
		menu, err := intArg(args, "menu_id")
		if err != nil {
			return nil, err
		}
		qty, err := optInt(args, "quantity", 1)
		if err != nil {
			return nil, err
		}
		id, err := r.AddToCart(ctx, user, menu, int(qty), optString(args, "note"))
		if err != nil {
			return nil, err
		}
		return map[string]int64{"cart_id": id}, nil
	},
	"cart.set_quantity": func(ctx context.Context, r *repository.Repository, args ir.IRObject) (any, error) {
		id, err := intArg(args, "cart_id")
		if err != nil {
			return nil, err
		}
		qty, err := intArg(args, "quantity")
		if err != nil {
			return nil, err
		}
		return nil, r.SetQuantity(ctx, id, int(qty))
	},
	"cart.note": func(ctx context.Context, r *repository.Repository, args ir.IRObject) (any, error) {
		id, err := intArg(args, "cart_id")
		if err != nil {
			return nil, err
		}
		return nil, r.UpdateNote(ctx, id, optString(args, "note"))
	},
	"cart.remove": func(ctx context.Context, r *repository.Repository, args ir.IRObject) (any, error) {
		id, err := intArg(args, "cart_id")
		if err != nil {
			return nil, err
		}
		return nil, r.RemoveLine(ctx, id)
	},
	"cart.clear": func(ctx context.Context, r *repository.Repository, args ir.IRObject) (any, error) {
		user, err := intArg(args, "user_id")
		if err != nil {
			return nil, err
		}
		n, err := r.ClearCart(ctx, user)
		if err != nil {
			return nil, err
		}
		return map[string]int64{"removed": n}, nil
	},
	"cart.view": func(ctx context.Context, r *repository.Repository, args ir.IRObject) (any, error) {
		user, err := intArg(args, "user_id")
		if err != nil {
			return nil, err
		}
		return r.CartView(ctx, user)
	},
	"cart.total": func(ctx context.Context, r *repository.Repository, args ir.IRObject) (any, error) {
		user, err := intArg(args, "user_id")
		if err != nil {
			return nil, err
		}
		total, err := r.CartTotal(ctx, user)
		if err != nil {
			return nil, err
		}
		return map[string]decimal.Decimal{"total": total}, nil
	},
	"cart.count": func(ctx context.Context, r *repository.Repository, args ir.IRObject) (any, error) {
		user, err := intArg(args, "user_id")
		if err != nil {
			return nil, err
		}
		n, err := r.CartCount(ctx, user)
		if err != nil {
			return nil, err
		}
		return map[string]int{"count": n}, nil
	},

	"checkout": func(ctx context.Context, r *repository.Repository, args ir.IRObject) (any, error) {
		user, err := intArg(args, "user_id")
		if err != nil {
			return nil, err
		}
		total, err := decimalArg(args, "confirmed_total")
		if err != nil {
			return nil, err
		}
		return r.Checkout(ctx, user, total, model.PaymentMethod(optString(args, "payment_method")))
	},
	"order.get": func(ctx context.Context, r *repository.Repository, args ir.IRObject) (any, error) {
		id, err := intArg(args, "order_id")
		if err != nil {
			return nil, err
		}
		return r.OrderDetail(ctx, id)
	},
	"order.complete":       orderTransition((*repository.Repository).CompleteOrder),
	"order.cancel":         orderTransition((*repository.Repository).CancelOrder),
	"order.pay":            orderTransition((*repository.Repository).MarkPaid),
	"order.cancel_payment": orderTransition((*repository.Repository).CancelPayment),
}

func orderTransition(fn func(*repository.Repository, context.Context, int64) (model.Order, error)) action {
	return func(ctx context.Context, r *repository.Repository, args ir.IRObject) (any, error) {
		id, err := intArg(args, "order_id")
		if err != nil {
			return nil, err
		}
		return fn(r, ctx, id)
	}
}

// Actions lists the action names scenarios may use.
func Actions() []string {
	names := make([]string, 0, len(actions))
	for name := range actions {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func intArg(args ir.IRObject, key string) (int64, error) {
	v, ok := args[key]
	if !ok {
		return 0, &argError{key: key, msg: "required"}
	}
	n, ok := v.(ir.IRInt)
	if !ok {
		return 0, &argError{key: key, msg: fmt.Sprintf("must be an integer, got %T", v)}
	}
	return int64(n), nil
}

func optInt(args ir.IRObject, key string, def int64) (int64, error) {
	if _, ok := args[key]; !ok {
		return def, nil
	}
	return intArg(args, key)
}

func optString(args ir.IRObject, key string) string {
	if s, ok := args[key].(ir.IRString); ok {
		return string(s)
	}
	return ""
}

// decimalArg accepts a decimal string ("12500.50") or an integer.
func decimalArg(args ir.IRObject, key string) (decimal.Decimal, error) {
	switch v := args[key].(type) {
	case ir.IRString:
		d, err := decimal.NewFromString(string(v))
		if err != nil {
			return decimal.Zero, &argError{key: key, msg: err.Error()}
		}
		return d, nil
	case ir.IRInt:
		return decimal.NewFromInt(int64(v)), nil
	case nil:
		return decimal.Zero, &argError{key: key, msg: "required"}
	default:
		return decimal.Zero, &argError{key: key, msg: fmt.Sprintf("must be a decimal string, got %T", v)}
	}
}
