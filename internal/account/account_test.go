package account

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/errs"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/store"
)

func setup(t *testing.T) (*store.Store, *Service) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s, New(s, WithCost(bcrypt.MinCost))
}

var andin = Registration{
	Username: "andin",
	Email:    "  Andin@Example.COM ",
	Password: "rahasia123",
	FullName: "Andin Putri",
	Phone:    "08123456789",
}

func TestRegister(t *testing.T) {
	_, svc := setup(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, andin)
	require.NoError(t, err)

	assert.NotZero(t, u.ID)
	assert.Equal(t, "andin@example.com", u.Email)
	assert.NotEqual(t, andin.Password, u.Password, "password must be hashed")
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.Password), []byte(andin.Password)))

	got, err := svc.Get(ctx, u.ID)
	require.NoError(t, err)
	assert.Equal(t, u, got)
}

func TestRegister_DuplicateEmail(t *testing.T) {
	s, svc := setup(t)
	ctx := context.Background()

	_, err := svc.Register(ctx, andin)
	require.NoError(t, err)
	seq := s.Seq()

	dup := andin
	dup.Username = "andin2"
	dup.Email = "ANDIN@example.com"
	_, err = svc.Register(ctx, dup)
	assert.True(t, errs.Is(err, errs.ConstraintViolation), "got %v", err)
	assert.Equal(t, seq, s.Seq())
}

func TestRegister_Validation(t *testing.T) {
	_, svc := setup(t)

	tests := []struct {
		name string
		edit func(*Registration)
	}{
		{"no username", func(r *Registration) { r.Username = " " }},
		{"no email", func(r *Registration) { r.Email = "" }},
		{"bad email", func(r *Registration) { r.Email = "andin" }},
		{"no password", func(r *Registration) { r.Password = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			r := andin
			tt.edit(&r)
			_, err := svc.Register(context.Background(), r)
			assert.True(t, errs.Is(err, errs.InvalidArgument), "got %v", err)
		})
	}
}

func TestGetByEmailAndCheckPassword(t *testing.T) {
	_, svc := setup(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, andin)
	require.NoError(t, err)

	got, err := svc.GetByEmail(ctx, "ANDIN@example.com")
	require.NoError(t, err)
	assert.Equal(t, u.ID, got.ID)

	_, err = svc.GetByEmail(ctx, "nobody@example.com")
	assert.True(t, errs.Is(err, errs.NotFound))

	ok, err := svc.CheckPassword(ctx, "andin@example.com", "rahasia123")
	require.NoError(t, err)
	assert.Equal(t, u.ID, ok.ID)

	_, err = svc.CheckPassword(ctx, "andin@example.com", "salah")
	assert.True(t, errs.Is(err, errs.InvalidArgument))
	_, err = svc.CheckPassword(ctx, "nobody@example.com", "rahasia123")
	assert.True(t, errs.Is(err, errs.InvalidArgument))
}

func TestUpdateProfile(t *testing.T) {
	_, svc := setup(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, andin)
	require.NoError(t, err)

	updated, err := svc.UpdateProfile(ctx, u.ID, Profile{Username: "andinp", FullName: "Andin P.", Phone: "0811"})
	require.NoError(t, err)
	assert.Equal(t, "andinp", updated.Username)
	assert.Equal(t, u.Email, updated.Email, "email is not editable")
	assert.Equal(t, u.Password, updated.Password)

	_, err = svc.UpdateProfile(ctx, 999, Profile{Username: "x"})
	assert.True(t, errs.Is(err, errs.NotFound))
	_, err = svc.UpdateProfile(ctx, u.ID, Profile{})
	assert.True(t, errs.Is(err, errs.InvalidArgument))
}

func TestDelete(t *testing.T) {
	_, svc := setup(t)
	ctx := context.Background()

	u, err := svc.Register(ctx, andin)
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, u.ID))
	_, err = svc.Get(ctx, u.ID)
	assert.True(t, errs.Is(err, errs.NotFound))
	assert.True(t, errs.Is(svc.Delete(ctx, u.ID), errs.NotFound))
}
