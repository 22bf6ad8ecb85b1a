package catalog

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/errs"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/ir"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/liveq"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/model"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/queryir"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/store"
)

// Service reads and edits the catalog.
type Service struct {
	store  *store.Store
	logger *slog.Logger
}

// New creates a Service over st. A nil logger means slog.Default().
func New(st *store.Store, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{store: st, logger: logger}
}

var byName = []queryir.Order{queryir.Asc("name")}

// ListTenants returns every tenant ordered by name.
func (s *Service) ListTenants(ctx context.Context) ([]model.Tenant, error) {
	return s.store.ListTenants(ctx, store.Filter{Order: byName})
}

// GetTenant returns one tenant.
func (s *Service) GetTenant(ctx context.Context, id int64) (model.Tenant, error) {
	return s.store.GetTenant(ctx, id)
}

// GetMenu returns one menu.
func (s *Service) GetMenu(ctx context.Context, id int64) (model.Menu, error) {
	return s.store.GetMenu(ctx, id)
}

// ListMenusByTenant returns a tenant's menus ordered by name. An unknown
// tenant has no menus.
func (s *Service) ListMenusByTenant(ctx context.Context, tenantID int64) ([]model.Menu, error) {
	return s.store.ListMenus(ctx, store.Filter{
		Where: queryir.Equals{Field: "tenant_id", Value: ir.IRInt(tenantID)},
		Order: byName,
	})
}

// SearchMenus returns menus whose name contains q, ordered by name. A blank
// query matches every menu.
func (s *Service) SearchMenus(ctx context.Context, q string) ([]model.Menu, error) {
	q = strings.TrimSpace(q)
	if q == "" {
		return s.store.ListMenus(ctx, store.Filter{Order: byName})
	}
	return s.store.ListMenus(ctx, store.Filter{
		Where:  queryir.Contains{Field: "name", Name: "q"},
		Order:  byName,
		Params: map[string]any{"q": q},
	})
}

// MenusByCategory returns the menus in category c ordered by name.
func (s *Service) MenusByCategory(ctx context.Context, c string) ([]model.Menu, error) {
	return s.store.ListMenus(ctx, store.Filter{
		Where: queryir.Equals{Field: "category", Value: ir.IRString(c)},
		Order: byName,
	})
}

// Categories returns the distinct menu categories.
func (s *Service) Categories(ctx context.Context) ([]string, error) {
	return s.store.Categories(ctx)
}

// AddTenant inserts a tenant and returns its id.
func (s *Service) AddTenant(ctx context.Context, t model.Tenant) (int64, error) {
	const op = "catalog.add_tenant"
	if strings.TrimSpace(t.Name) == "" {
		return 0, errs.New(errs.InvalidArgument, op, "tenant name is required")
	}

	var id int64
	err := s.store.Write(ctx, func(tx *store.Tx) error {
		var err error
		id, err = tx.InsertTenant(ctx, t)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("tenant added", "tenant_id", id, "name", t.Name)
	return id, nil
}

// AddMenu inserts a menu under an existing tenant and returns its id.
func (s *Service) AddMenu(ctx context.Context, m model.Menu) (int64, error) {
	const op = "catalog.add_menu"
	if err := validateMenu(op, m); err != nil {
		return 0, err
	}

	var id int64
	err := s.store.Write(ctx, func(tx *store.Tx) error {
		var err error
		id, err = tx.InsertMenu(ctx, m)
		return err
	})
	if err != nil {
		return 0, err
	}
	s.logger.Info("menu added", "menu_id", id, "tenant_id", m.TenantID, "name", m.Name)
	return id, nil
}

// UpdateMenu replaces a menu's fields. Cart totals follow the new price;
// existing order lines keep theirs.
func (s *Service) UpdateMenu(ctx context.Context, m model.Menu) error {
	const op = "catalog.update_menu"
	if err := validateMenu(op, m); err != nil {
		return err
	}
	return s.store.Write(ctx, func(tx *store.Tx) error {
		return tx.UpdateMenu(ctx, m)
	})
}

// SetPrice changes one menu's price and returns the updated menu.
func (s *Service) SetPrice(ctx context.Context, menuID int64, price decimal.Decimal) (model.Menu, error) {
	const op = "catalog.set_price"
	if !price.IsPositive() {
		return model.Menu{}, errs.Newf(errs.InvalidArgument, op, "price must be positive, got %s", price)
	}

	var m model.Menu
	err := s.store.Write(ctx, func(tx *store.Tx) error {
		var err error
		if m, err = tx.GetMenu(ctx, menuID); err != nil {
			return err
		}
		m.Price = price
		return tx.UpdateMenu(ctx, m)
	})
	if err != nil {
		return model.Menu{}, err
	}
	s.logger.Info("menu price changed", "menu_id", menuID, "price", price.String())
	return m, nil
}

// DeleteMenu removes a menu with its cart lines and order lines.
func (s *Service) DeleteMenu(ctx context.Context, id int64) error {
	err := s.store.Write(ctx, func(tx *store.Tx) error {
		return tx.DeleteMenu(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("menu deleted", "menu_id", id)
	return nil
}

// DeleteTenant removes a tenant, its menus and everything that references
// them.
func (s *Service) DeleteTenant(ctx context.Context, id int64) error {
	err := s.store.Write(ctx, func(tx *store.Tx) error {
		return tx.DeleteTenant(ctx, id)
	})
	if err != nil {
		return err
	}
	s.logger.Info("tenant deleted", "tenant_id", id)
	return nil
}

func validateMenu(op string, m model.Menu) error {
	if strings.TrimSpace(m.Name) == "" {
		return errs.New(errs.InvalidArgument, op, "menu name is required")
	}
	if !m.Price.IsPositive() {
		return errs.Newf(errs.InvalidArgument, op, "price must be positive, got %s", m.Price)
	}
	return nil
}

// TenantsQuery is the live form of ListTenants.
func (s *Service) TenantsQuery() liveq.Definition {
	return liveq.Definition{
		Name:   "catalog.tenants",
		Tables: []store.Table{store.TableTenants},
		Eval: func(ctx context.Context) (any, error) {
			return s.ListTenants(ctx)
		},
	}
}

// MenusByTenantQuery is the live form of ListMenusByTenant.
func (s *Service) MenusByTenantQuery(tenantID int64) liveq.Definition {
	return liveq.Definition{
		Name:   "catalog.menus_by_tenant",
		Params: ir.IRObject{"tenant_id": ir.IRInt(tenantID)},
		Tables: []store.Table{store.TableMenus},
		Eval: func(ctx context.Context) (any, error) {
			return s.ListMenusByTenant(ctx, tenantID)
		},
	}
}

// SearchQuery is the live form of SearchMenus.
func (s *Service) SearchQuery(q string) liveq.Definition {
	return liveq.Definition{
		Name:   "catalog.search",
		Params: ir.IRObject{"q": ir.IRString(q)},
		Tables: []store.Table{store.TableMenus},
		Eval: func(ctx context.Context) (any, error) {
			return s.SearchMenus(ctx, q)
		},
	}
}

// CategoriesQuery is the live form of Categories.
func (s *Service) CategoriesQuery() liveq.Definition {
	return liveq.Definition{
		Name:   "catalog.categories",
		Tables: []store.Table{store.TableMenus},
		Eval: func(ctx context.Context) (any, error) {
			return s.Categories(ctx)
		},
	}
}
