package checkout

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/cart"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/model"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/store"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/testutil"
)

var orderTime = time.Date(2025, 3, 1, 12, 30, 45, 0, time.UTC)

type env struct {
	store *store.Store
	cart  *cart.Aggregator
	svc   *Service
	clock *testutil.FixedClock

	user        int64
	gudeg, soto int64
}

func setup(t *testing.T) *env {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	e := &env{store: s, clock: testutil.NewFixedClock(orderTime)}
	ctx := context.Background()
	err = s.Write(ctx, func(tx *store.Tx) error {
		var err error
		if e.user, err = tx.InsertUser(ctx, model.User{Username: "andin", Email: "andin@example.com", Password: "x"}); err != nil {
			return err
		}
		tenant, err := tx.InsertTenant(ctx, model.Tenant{Name: "Nasi Gudeg Jogja"})
		if err != nil {
			return err
		}
		if e.gudeg, err = tx.InsertMenu(ctx, model.Menu{TenantID: tenant, Name: "Nasi Gudeg", Price: decimal.NewFromInt(15000), ImageRef: "menu_nasi_gudeg"}); err != nil {
			return err
		}
		e.soto, err = tx.InsertMenu(ctx, model.Menu{TenantID: tenant, Name: "Soto Ayam", Price: decimal.NewFromInt(12000)})
		return err
	})
	require.NoError(t, err)

	locks := cart.NewUserLocks()
	e.cart = cart.New(s, cart.WithLocks(locks))
	e.svc = New(s,
		WithLocks(locks),
		WithClock(e.clock),
		WithIDGenerator(testutil.NewSequenceGenerator("checkout")))
	return e
}

func (e *env) add(t *testing.T, menuID int64, qty int) {
	t.Helper()
	_, err := e.cart.AddToCart(context.Background(), e.user, menuID, qty, "")
	require.NoError(t, err)
}

func (e *env) setPrice(t *testing.T, menuID, price int64) {
	t.Helper()
	ctx := context.Background()
	err := e.store.Write(ctx, func(tx *store.Tx) error {
		m, err := tx.GetMenu(ctx, menuID)
		if err != nil {
			return err
		}
		m.Price = decimal.NewFromInt(price)
		return tx.UpdateMenu(ctx, m)
	})
	require.NoError(t, err)
}

func (e *env) count(t *testing.T, table store.Table) int {
	t.Helper()
	n, err := e.store.Count(context.Background(), table, store.Filter{})
	require.NoError(t, err)
	return n
}

func rupiah(n int64) decimal.Decimal {
	return decimal.NewFromInt(n)
}
