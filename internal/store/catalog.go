package store

import (
	"context"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/model"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/queryir"
)

var (
	tenantColumns = queryir.Cols("id", "name", "description", "location", "image_ref")
	menuColumns   = queryir.Cols("id", "tenant_id", "name", "description", "price", "category", "image_ref")
)

func scanTenant(s scanner) (model.Tenant, error) {
	var t model.Tenant
	err := s.Scan(&t.ID, &t.Name, &t.Description, &t.Location, &t.ImageRef)
	return t, err
}

func scanMenu(s scanner) (model.Menu, error) {
	var m model.Menu
	err := s.Scan(&m.ID, &m.TenantID, &m.Name, &m.Description, &m.Price, &m.Category, &m.ImageRef)
	return m, err
}

// ListTenants returns tenants matching f.
func (r Reader) ListTenants(ctx context.Context, f Filter) ([]model.Tenant, error) {
	q := queryir.Select{From: string(TableTenants), Columns: tenantColumns, Filter: f.Where, OrderBy: f.Order}
	tenants := []model.Tenant{}
	err := r.selectRows(ctx, "store.list_tenants", q, f.Params, func(s scanner) error {
		t, err := scanTenant(s)
		if err != nil {
			return err
		}
		tenants = append(tenants, t)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return tenants, nil
}

// GetTenant returns the tenant with the given id.
func (r Reader) GetTenant(ctx context.Context, id int64) (model.Tenant, error) {
	tenants, err := r.ListTenants(ctx, ByID(id))
	if err != nil {
		return model.Tenant{}, err
	}
	if len(tenants) == 0 {
		return model.Tenant{}, notFound("store.get_tenant", "tenant", id)
	}
	return tenants[0], nil
}

// ListMenus returns menus matching f.
func (r Reader) ListMenus(ctx context.Context, f Filter) ([]model.Menu, error) {
	q := queryir.Select{From: string(TableMenus), Columns: menuColumns, Filter: f.Where, OrderBy: f.Order}
	menus := []model.Menu{}
	err := r.selectRows(ctx, "store.list_menus", q, f.Params, func(s scanner) error {
		m, err := scanMenu(s)
		if err != nil {
			return err
		}
		menus = append(menus, m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return menus, nil
}

// GetMenu returns the menu with the given id.
func (r Reader) GetMenu(ctx context.Context, id int64) (model.Menu, error) {
	menus, err := r.ListMenus(ctx, ByID(id))
	if err != nil {
		return model.Menu{}, err
	}
	if len(menus) == 0 {
		return model.Menu{}, notFound("store.get_menu", "menu", id)
	}
	return menus[0], nil
}

// Categories returns the distinct menu categories in ascending order.
func (r Reader) Categories(ctx context.Context) ([]string, error) {
	q := queryir.Select{
		From:     string(TableMenus),
		Columns:  queryir.Cols("category"),
		OrderBy:  []queryir.Order{queryir.Asc("category")},
		Distinct: true,
	}
	categories := []string{}
	err := r.selectRows(ctx, "store.categories", q, nil, func(s scanner) error {
		var c string
		if err := s.Scan(&c); err != nil {
			return err
		}
		categories = append(categories, c)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return categories, nil
}

// InsertTenant inserts t and returns its id.
func (tx *Tx) InsertTenant(ctx context.Context, t model.Tenant) (int64, error) {
	id, err := tx.insert(ctx, "store.insert_tenant", `
		INSERT INTO tenants (name, description, location, image_ref)
		VALUES (?, ?, ?, ?)
	`, t.Name, t.Description, t.Location, t.ImageRef)
	if err != nil {
		return 0, err
	}
	tx.touch(TableTenants)
	return id, nil
}

// UpdateTenant overwrites the tenant with id t.ID.
func (tx *Tx) UpdateTenant(ctx context.Context, t model.Tenant) error {
	n, err := tx.exec(ctx, "store.update_tenant", `
		UPDATE tenants SET name = ?, description = ?, location = ?, image_ref = ?
		WHERE id = ?
	`, t.Name, t.Description, t.Location, t.ImageRef, t.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("store.update_tenant", "tenant", t.ID)
	}
	tx.touch(TableTenants)
	return nil
}

// DeleteTenant removes a tenant with its menus and every cart line and
// order line referencing those menus.
func (tx *Tx) DeleteTenant(ctx context.Context, id int64) error {
	n, err := tx.exec(ctx, "store.delete_tenant", `DELETE FROM tenants WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("store.delete_tenant", "tenant", id)
	}
	tx.touchCascade(TableTenants)
	return nil
}

// InsertMenu inserts m and returns its id. The tenant must exist.
func (tx *Tx) InsertMenu(ctx context.Context, m model.Menu) (int64, error) {
	id, err := tx.insert(ctx, "store.insert_menu", `
		INSERT INTO menus (tenant_id, name, description, price, category, image_ref)
		VALUES (?, ?, ?, ?, ?, ?)
	`, m.TenantID, m.Name, m.Description, m.Price.String(), m.Category, m.ImageRef)
	if err != nil {
		return 0, err
	}
	tx.touch(TableMenus)
	return id, nil
}

// UpdateMenu overwrites the menu with id m.ID. Order lines keep the price
// they were created with.
func (tx *Tx) UpdateMenu(ctx context.Context, m model.Menu) error {
	n, err := tx.exec(ctx, "store.update_menu", `
		UPDATE menus SET tenant_id = ?, name = ?, description = ?, price = ?, category = ?, image_ref = ?
		WHERE id = ?
	`, m.TenantID, m.Name, m.Description, m.Price.String(), m.Category, m.ImageRef, m.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("store.update_menu", "menu", m.ID)
	}
	tx.touch(TableMenus)
	return nil
}

// DeleteMenu removes a menu and every cart line and order line referencing it.
// Order headers are kept.
func (tx *Tx) DeleteMenu(ctx context.Context, id int64) error {
	n, err := tx.exec(ctx, "store.delete_menu", `DELETE FROM menus WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("store.delete_menu", "menu", id)
	}
	tx.touchCascade(TableMenus)
	return nil
}
