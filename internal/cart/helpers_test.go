package cart

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/model"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/store"
)

type fixture struct {
	user, otherUser int64
	tenant          int64
	gudeg, soto     int64
}

func setup(t *testing.T) (*store.Store, *Aggregator, fixture) {
	t.Helper()
	s, err := store.Open(filepath.Join(t.TempDir(), "test.db"))
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })

	var f fixture
	ctx := context.Background()
	err = s.Write(ctx, func(tx *store.Tx) error {
		var err error
		if f.user, err = tx.InsertUser(ctx, model.User{Username: "andin", Email: "andin@example.com", Password: "x"}); err != nil {
			return err
		}
		if f.otherUser, err = tx.InsertUser(ctx, model.User{Username: "budi", Email: "budi@example.com", Password: "x"}); err != nil {
			return err
		}
		if f.tenant, err = tx.InsertTenant(ctx, model.Tenant{Name: "Warung Bu Sari"}); err != nil {
			return err
		}
		if f.gudeg, err = tx.InsertMenu(ctx, model.Menu{TenantID: f.tenant, Name: "Nasi Gudeg", Price: decimal.NewFromInt(15000)}); err != nil {
			return err
		}
		f.soto, err = tx.InsertMenu(ctx, model.Menu{TenantID: f.tenant, Name: "Soto Ayam", Price: decimal.NewFromInt(12000)})
		return err
	})
	require.NoError(t, err)

	return s, New(s), f
}

func setPrice(t *testing.T, s *store.Store, menuID int64, price int64) {
	t.Helper()
	ctx := context.Background()
	err := s.Write(ctx, func(tx *store.Tx) error {
		m, err := tx.GetMenu(ctx, menuID)
		if err != nil {
			return err
		}
		m.Price = decimal.NewFromInt(price)
		return tx.UpdateMenu(ctx, m)
	})
	require.NoError(t, err)
}
