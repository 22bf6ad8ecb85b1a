package errs

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestError_Format(t *testing.T) {
	err := New(EmptyCart, "checkout", "cart is empty")
	assert.Equal(t, "checkout: EMPTY_CART: cart is empty", err.Error())

	err = New(TotalMismatch, "checkout", "confirmed total differs").
		WithDetail("expected", "45000").
		WithDetail("actual", "30000")
	assert.Equal(t, "checkout: TOTAL_MISMATCH: confirmed total differs (actual=30000, expected=45000)", err.Error())
}

func TestError_WrapKeepsCause(t *testing.T) {
	err := Wrap(Cancelled, "cart.add", context.Canceled)
	assert.True(t, errors.Is(err, context.Canceled))
	assert.True(t, errors.Is(err, ErrCancelled))
	assert.False(t, errors.Is(err, ErrStoreFailure))
}

func TestWrap_PreservesExistingCode(t *testing.T) {
	inner := New(NotFound, "store.get_menu", "menu 7")
	err := Wrap(StoreFailure, "cart.add", inner)
	assert.Equal(t, NotFound, err.Code)
}

func TestIs_ThroughFmtWrapping(t *testing.T) {
	err := fmt.Errorf("outer: %w", New(ConstraintViolation, "store.insert_cart", "menu missing"))
	assert.True(t, Is(err, ConstraintViolation))
	assert.True(t, errors.Is(err, ErrConstraintViolation))
	assert.False(t, Is(err, NotFound))
}

func TestCodeOf(t *testing.T) {
	assert.Equal(t, Code(""), CodeOf(nil))
	assert.Equal(t, StoreFailure, CodeOf(errors.New("disk on fire")))
	assert.Equal(t, EmptyCart, CodeOf(fmt.Errorf("x: %w", ErrEmptyCart)))
}
