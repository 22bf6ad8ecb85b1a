package checkout

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/errs"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/liveq"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/model"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/store"
)

func TestCheckout_HappyPath(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	e.add(t, e.gudeg, 2)
	total, err := e.cart.Total(ctx, e.user)
	require.NoError(t, err)
	assert.Equal(t, "30000", total.String())

	e.add(t, e.gudeg, 1)
	total, err = e.cart.Total(ctx, e.user)
	require.NoError(t, err)
	assert.Equal(t, "45000", total.String())

	r, err := e.svc.Checkout(ctx, Request{UserID: e.user, ConfirmedTotal: rupiah(45000), PaymentMethod: model.PaymentQRIS})
	require.NoError(t, err)

	assert.NotZero(t, r.Order.ID)
	assert.Equal(t, "45000", r.Order.TotalPrice.String())
	assert.Equal(t, model.StatusPending, r.Order.Status)
	assert.Equal(t, model.PaymentPending, r.Order.PaymentStatus)
	assert.Equal(t, model.PaymentQRIS, r.Order.PaymentMethod)
	require.Len(t, r.Lines, 1)
	assert.Equal(t, 3, r.Lines[0].Quantity)
	assert.Equal(t, "15000", r.Lines[0].UnitPrice.String())
	assert.Equal(t, r.Order.ID, r.Lines[0].OrderID)

	lines, err := e.cart.Lines(ctx, e.user)
	require.NoError(t, err)
	assert.Empty(t, lines)
	total, err = e.cart.Total(ctx, e.user)
	require.NoError(t, err)
	assert.True(t, total.IsZero())

	stored, err := e.svc.Order(ctx, r.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, r.Order.ID, stored.ID)
	assert.Equal(t, "45000", stored.TotalPrice.String())
	assert.Equal(t, orderTime, stored.OrderDate)
	assert.Equal(t, orderTime.Add(DefaultPickupDelay), stored.PickupTime)
}

func TestCheckout_Timestamps(t *testing.T) {
	e := setup(t)
	e.clock.Set(orderTime.Add(750 * time.Millisecond))
	e.svc.pickupDelay = 20 * time.Minute
	e.add(t, e.soto, 1)

	r, err := e.svc.Checkout(context.Background(), Request{UserID: e.user, ConfirmedTotal: rupiah(12000), PaymentMethod: model.PaymentCash})
	require.NoError(t, err)

	assert.Equal(t, orderTime, r.Order.OrderDate, "order date is truncated to seconds")
	assert.Equal(t, orderTime.Add(20*time.Minute), r.Order.PickupTime)
}

func TestCheckout_EmptyCart(t *testing.T) {
	e := setup(t)
	before := e.store.Seq()

	_, err := e.svc.Checkout(context.Background(), Request{UserID: e.user, ConfirmedTotal: rupiah(0), PaymentMethod: model.PaymentCash})

	assert.ErrorIs(t, err, errs.ErrEmptyCart)
	assert.Equal(t, before, e.store.Seq())
	assert.Equal(t, 0, e.count(t, store.TableOrders))
}

func TestCheckout_TotalMismatchLeavesCart(t *testing.T) {
	e := setup(t)
	e.add(t, e.gudeg, 2)
	before := e.store.Seq()

	_, err := e.svc.Checkout(context.Background(), Request{UserID: e.user, ConfirmedTotal: rupiah(29000), PaymentMethod: model.PaymentCash})

	require.True(t, errs.Is(err, errs.TotalMismatch), "got %v", err)
	var e2 *errs.Error
	require.True(t, errors.As(err, &e2))
	assert.Equal(t, "29000", e2.Details["confirmed"])
	assert.Equal(t, "30000", e2.Details["actual"])

	assert.Equal(t, before, e.store.Seq())
	assert.Equal(t, 1, e.count(t, store.TableCarts))
	assert.Equal(t, 0, e.count(t, store.TableOrders))
}

func TestCheckout_StaleTotalAfterPriceChange(t *testing.T) {
	e := setup(t)
	e.add(t, e.gudeg, 1)
	e.setPrice(t, e.gudeg, 16000)

	_, err := e.svc.Checkout(context.Background(), Request{UserID: e.user, ConfirmedTotal: rupiah(15000), PaymentMethod: model.PaymentCash})
	assert.True(t, errs.Is(err, errs.TotalMismatch))

	_, err = e.svc.Checkout(context.Background(), Request{UserID: e.user, ConfirmedTotal: rupiah(16000), PaymentMethod: model.PaymentCash})
	assert.NoError(t, err)
}

func TestCheckout_DecimalScaleDoesNotMatter(t *testing.T) {
	e := setup(t)
	e.add(t, e.soto, 1)

	confirmed, err := decimalFromString("12000.00")
	require.NoError(t, err)
	_, err = e.svc.Checkout(context.Background(), Request{UserID: e.user, ConfirmedTotal: confirmed, PaymentMethod: model.PaymentTransfer})
	assert.NoError(t, err)
}

func TestCheckout_UnknownPaymentMethod(t *testing.T) {
	e := setup(t)
	e.add(t, e.soto, 1)

	_, err := e.svc.Checkout(context.Background(), Request{UserID: e.user, ConfirmedTotal: rupiah(12000), PaymentMethod: "Bitcoin"})
	assert.True(t, errs.Is(err, errs.InvalidArgument))
	assert.Equal(t, 1, e.count(t, store.TableCarts))
}

func TestCheckout_FailureMidwayRollsBack(t *testing.T) {
	e := setup(t)
	e.add(t, e.gudeg, 2)
	e.add(t, e.soto, 1)
	before := e.store.Seq()

	boom := errs.New(errs.StoreFailure, "test", "disk full")
	e.svc.beforeLine = func(i int) error {
		if i == 1 {
			return boom
		}
		return nil
	}

	_, err := e.svc.Checkout(context.Background(), Request{UserID: e.user, ConfirmedTotal: rupiah(42000), PaymentMethod: model.PaymentCash})
	require.ErrorIs(t, err, boom)
	assert.True(t, errs.Is(err, errs.StoreFailure))

	assert.Equal(t, 0, e.count(t, store.TableOrders))
	assert.Equal(t, 0, e.count(t, store.TableOrderLines))
	lines, err := e.store.CartLines(context.Background(), e.user)
	require.NoError(t, err)
	require.Len(t, lines, 2)
	assert.Equal(t, 2, lines[0].Quantity)
	assert.Equal(t, 1, lines[1].Quantity)
	assert.Equal(t, before, e.store.Seq(), "rolled back checkout publishes nothing")
}

func TestCheckout_CancelledContext(t *testing.T) {
	e := setup(t)
	e.add(t, e.soto, 1)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.svc.Checkout(ctx, Request{UserID: e.user, ConfirmedTotal: rupiah(12000), PaymentMethod: model.PaymentCash})
	assert.True(t, errs.Is(err, errs.Cancelled), "got %v", err)
	assert.Equal(t, 1, e.count(t, store.TableCarts))
}

func TestCheckout_PriceIsFrozen(t *testing.T) {
	e := setup(t)
	e.setPrice(t, e.gudeg, 10000)
	e.add(t, e.gudeg, 1)

	r, err := e.svc.Checkout(context.Background(), Request{UserID: e.user, ConfirmedTotal: rupiah(10000), PaymentMethod: model.PaymentCash})
	require.NoError(t, err)

	e.setPrice(t, e.gudeg, 20000)

	lines, err := e.svc.OrderLines(context.Background(), r.Order.ID)
	require.NoError(t, err)
	require.Len(t, lines, 1)
	assert.Equal(t, "10000", lines[0].UnitPrice.String())
	assert.Equal(t, "Nasi Gudeg", lines[0].MenuName)
	assert.Equal(t, "menu_nasi_gudeg", lines[0].MenuImage)

	o, err := e.svc.Order(context.Background(), r.Order.ID)
	require.NoError(t, err)
	assert.Equal(t, "10000", o.TotalPrice.String())
}

func TestCheckout_WaitsForUserLock(t *testing.T) {
	e := setup(t)
	e.add(t, e.soto, 1)

	unlock := e.cart.Locks().Lock(e.user)
	done := make(chan error, 1)
	go func() {
		_, err := e.svc.Checkout(context.Background(), Request{UserID: e.user, ConfirmedTotal: rupiah(12000), PaymentMethod: model.PaymentCash})
		done <- err
	}()

	select {
	case err := <-done:
		t.Fatalf("checkout ran while the cart was locked: %v", err)
	case <-time.After(50 * time.Millisecond):
	}

	unlock()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("checkout did not finish after unlock")
	}
}

func TestCheckout_PushesToLiveQueries(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	e.add(t, e.gudeg, 1)

	eng := liveq.New(e.store)
	defer eng.Close()

	orders := make(chan liveq.Update, 4)
	initial, sub, err := eng.Subscribe(ctx, e.svc.OrdersQuery(e.user), func(u liveq.Update) { orders <- u })
	require.NoError(t, err)
	defer sub.Unsubscribe()
	assert.Empty(t, initial)

	counts := make(chan liveq.Update, 4)
	_, csub, err := eng.Subscribe(ctx, e.cart.CountQuery(e.user), func(u liveq.Update) { counts <- u })
	require.NoError(t, err)
	defer csub.Unsubscribe()

	r, err := e.svc.Checkout(ctx, Request{UserID: e.user, ConfirmedTotal: rupiah(15000), PaymentMethod: model.PaymentCash})
	require.NoError(t, err)

	select {
	case u := <-orders:
		require.NoError(t, u.Err)
		list := u.Value.([]model.Order)
		require.Len(t, list, 1)
		assert.Equal(t, r.Order.ID, list[0].ID)
	case <-time.After(2 * time.Second):
		t.Fatal("no orders push")
	}

	select {
	case u := <-counts:
		assert.Equal(t, 0, u.Value)
	case <-time.After(2 * time.Second):
		t.Fatal("no cart count push")
	}
}
