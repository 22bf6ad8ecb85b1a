package checkout

import (
	"context"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/errs"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/model"
)

func decimalFromString(s string) (decimal.Decimal, error) {
	return decimal.NewFromString(s)
}

func placeOrder(t *testing.T, e *env) model.Order {
	t.Helper()
	e.add(t, e.soto, 1)
	r, err := e.svc.Checkout(context.Background(), Request{UserID: e.user, ConfirmedTotal: rupiah(12000), PaymentMethod: model.PaymentCash})
	require.NoError(t, err)
	return r.Order
}

func TestTransitions_Status(t *testing.T) {
	tests := []struct {
		name  string
		first func(*Service, context.Context, int64) (model.Order, error)
		want  model.OrderStatus
	}{
		{"complete", (*Service).Complete, model.StatusCompleted},
		{"cancel", (*Service).Cancel, model.StatusCancelled},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := setup(t)
			ctx := context.Background()
			o := placeOrder(t, e)

			got, err := tt.first(e.svc, ctx, o.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got.Status)
			assert.Equal(t, model.PaymentPending, got.PaymentStatus, "payment is independent")

			// Both outcomes are terminal.
			_, err = e.svc.Complete(ctx, o.ID)
			assert.True(t, errs.Is(err, errs.InvalidTransition), "got %v", err)
			_, err = e.svc.Cancel(ctx, o.ID)
			assert.True(t, errs.Is(err, errs.InvalidTransition), "got %v", err)

			stored, err := e.svc.Order(ctx, o.ID)
			require.NoError(t, err)
			assert.Equal(t, tt.want, stored.Status)
		})
	}
}

func TestTransitions_Payment(t *testing.T) {
	e := setup(t)
	ctx := context.Background()
	o := placeOrder(t, e)

	got, err := e.svc.MarkPaid(ctx, o.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentPaid, got.PaymentStatus)
	assert.Equal(t, model.StatusPending, got.Status)

	_, err = e.svc.CancelPayment(ctx, o.ID)
	assert.True(t, errs.Is(err, errs.InvalidTransition))

	other := placeOrder(t, e)
	got, err = e.svc.CancelPayment(ctx, other.ID)
	require.NoError(t, err)
	assert.Equal(t, model.PaymentCancelled, got.PaymentStatus)

	_, err = e.svc.MarkPaid(ctx, other.ID)
	assert.True(t, errs.Is(err, errs.InvalidTransition))
}

func TestTransitions_MissingOrder(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	_, err := e.svc.Complete(ctx, 404)
	assert.True(t, errs.Is(err, errs.NotFound), "got %v", err)
	_, err = e.svc.MarkPaid(ctx, 404)
	assert.True(t, errs.Is(err, errs.NotFound), "got %v", err)
}

func TestDetailAndOrdersByUser(t *testing.T) {
	e := setup(t)
	ctx := context.Background()

	first := placeOrder(t, e)
	e.clock.Advance(time.Hour)
	second := placeOrder(t, e)

	list, err := e.svc.OrdersByUser(ctx, e.user)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, second.ID, list[0].ID, "newest first")
	assert.Equal(t, first.ID, list[1].ID)

	d, err := e.svc.Detail(ctx, first.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, d.Order.ID)
	require.Len(t, d.Lines, 1)
	assert.Equal(t, "Soto Ayam", d.Lines[0].MenuName)

	_, err = e.svc.Detail(ctx, 999)
	assert.True(t, errs.Is(err, errs.NotFound))
}
