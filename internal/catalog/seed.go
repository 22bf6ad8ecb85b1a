package catalog

import (
	"context"
	"log/slog"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/store"
)

// SeedResult counts the rows a seed inserted.
type SeedResult struct {
	Tenants int `json:"tenants"`
	Menus   int `json:"menus"`
}

// Seed inserts every tenant and menu of cat in one write. Rows are inserted
// in file order, so on an empty database ids follow the file.
func Seed(ctx context.Context, st *store.Store, cat *Catalog) (SeedResult, error) {
	var res SeedResult
	err := st.Write(ctx, func(tx *store.Tx) error {
		for _, entry := range cat.Tenants {
			tenantID, err := tx.InsertTenant(ctx, entry.Tenant)
			if err != nil {
				return err
			}
			res.Tenants++
			for _, m := range entry.Menus {
				m.TenantID = tenantID
				if _, err := tx.InsertMenu(ctx, m); err != nil {
					return err
				}
				res.Menus++
			}
		}
		return nil
	})
	if err != nil {
		return SeedResult{}, err
	}
	return res, nil
}

// SeedIfEmpty seeds cat only when the database has no tenants. It reports
// whether anything was inserted.
func SeedIfEmpty(ctx context.Context, st *store.Store, cat *Catalog, logger *slog.Logger) (bool, error) {
	if logger == nil {
		logger = slog.Default()
	}

	n, err := st.Count(ctx, store.TableTenants, store.Filter{})
	if err != nil {
		return false, err
	}
	if n > 0 {
		logger.Debug("catalog already present, skipping seed", "tenants", n)
		return false, nil
	}

	res, err := Seed(ctx, st, cat)
	if err != nil {
		return false, err
	}
	logger.Info("catalog seeded", "tenants", res.Tenants, "menus", res.Menus)
	return true, nil
}
