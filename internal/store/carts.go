package store

import (
	"context"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/ir"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/model"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/queryir"
)

var cartColumns = queryir.Cols("id", "user_id", "menu_id", "quantity", "note")

func scanCartLine(s scanner) (model.CartLine, error) {
	var l model.CartLine
	err := s.Scan(&l.ID, &l.UserID, &l.MenuID, &l.Quantity, &l.Note)
	return l, err
}

// ListCartLines returns cart lines matching f.
func (r Reader) ListCartLines(ctx context.Context, f Filter) ([]model.CartLine, error) {
	q := queryir.Select{From: string(TableCarts), Columns: cartColumns, Filter: f.Where, OrderBy: f.Order}
	lines := []model.CartLine{}
	err := r.selectRows(ctx, "store.list_cart_lines", q, f.Params, func(s scanner) error {
		l, err := scanCartLine(s)
		if err != nil {
			return err
		}
		lines = append(lines, l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// GetCartLine returns the cart line with the given id.
func (r Reader) GetCartLine(ctx context.Context, id int64) (model.CartLine, error) {
	lines, err := r.ListCartLines(ctx, ByID(id))
	if err != nil {
		return model.CartLine{}, err
	}
	if len(lines) == 0 {
		return model.CartLine{}, notFound("store.get_cart_line", "cart line", id)
	}
	return lines[0], nil
}

// FindCartLine returns the line for (userID, menuID) if there is one.
func (r Reader) FindCartLine(ctx context.Context, userID, menuID int64) (l model.CartLine, found bool, err error) {
	lines, err := r.ListCartLines(ctx, Filter{
		Where: queryir.And{Predicates: []queryir.Predicate{
			queryir.Equals{Field: "user_id", Value: ir.IRInt(userID)},
			queryir.Equals{Field: "menu_id", Value: ir.IRInt(menuID)},
		}},
	})
	if err != nil || len(lines) == 0 {
		return model.CartLine{}, false, err
	}
	return lines[0], true, nil
}

// CartLines returns a user's cart lines in insertion order.
func (r Reader) CartLines(ctx context.Context, userID int64) ([]model.CartLine, error) {
	return r.ListCartLines(ctx, Filter{Where: queryir.Equals{Field: "user_id", Value: ir.IRInt(userID)}})
}

// pricedCartQuery joins a user's cart lines with their menus' current prices.
var pricedCartQuery = queryir.Join{
	Left: queryir.Select{
		From:    string(TableCarts),
		Columns: cartColumns,
		Filter:  queryir.Param{Field: "user_id", Name: "user_id"},
	},
	Right: queryir.Select{
		From: string(TableMenus),
		Columns: []queryir.Column{
			{Field: "name", As: "menu_name"},
			{Field: "price", As: "unit_price"},
			{Field: "image_ref", As: "menu_image"},
		},
	},
	On: queryir.On{Left: "menu_id", Right: "id"},
}

// PricedCart returns a user's cart lines, each with its menu's name, image
// and current price, in insertion order.
func (r Reader) PricedCart(ctx context.Context, userID int64) ([]model.PricedCartLine, error) {
	lines := []model.PricedCartLine{}
	err := r.selectRows(ctx, "store.priced_cart", pricedCartQuery, map[string]any{"user_id": userID}, func(s scanner) error {
		var l model.PricedCartLine
		if err := s.Scan(&l.ID, &l.UserID, &l.MenuID, &l.Quantity, &l.Note, &l.MenuName, &l.UnitPrice, &l.MenuImage); err != nil {
			return err
		}
		lines = append(lines, l)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return lines, nil
}

// CountCartLines returns the number of lines in a user's cart.
func (r Reader) CountCartLines(ctx context.Context, userID int64) (int, error) {
	return r.Count(ctx, TableCarts, Filter{Where: queryir.Equals{Field: "user_id", Value: ir.IRInt(userID)}})
}

// InsertCartLine inserts l and returns its id. The user and menu must exist
// and (UserID, MenuID) must not already have a line.
func (tx *Tx) InsertCartLine(ctx context.Context, l model.CartLine) (int64, error) {
	id, err := tx.insert(ctx, "store.insert_cart_line", `
		INSERT INTO carts (user_id, menu_id, quantity, note)
		VALUES (?, ?, ?, ?)
	`, l.UserID, l.MenuID, l.Quantity, l.Note)
	if err != nil {
		return 0, err
	}
	tx.touch(TableCarts)
	return id, nil
}

// UpdateCartLine sets the quantity and note of the line with id l.ID.
func (tx *Tx) UpdateCartLine(ctx context.Context, l model.CartLine) error {
	n, err := tx.exec(ctx, "store.update_cart_line", `
		UPDATE carts SET quantity = ?, note = ? WHERE id = ?
	`, l.Quantity, l.Note, l.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("store.update_cart_line", "cart line", l.ID)
	}
	tx.touch(TableCarts)
	return nil
}

// DeleteCartLine removes one cart line.
func (tx *Tx) DeleteCartLine(ctx context.Context, id int64) error {
	n, err := tx.exec(ctx, "store.delete_cart_line", `DELETE FROM carts WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("store.delete_cart_line", "cart line", id)
	}
	tx.touch(TableCarts)
	return nil
}

// DeleteCartLinesByUser empties a user's cart and returns how many lines
// were removed. An empty cart is not an error.
func (tx *Tx) DeleteCartLinesByUser(ctx context.Context, userID int64) (int64, error) {
	n, err := tx.exec(ctx, "store.delete_cart_lines_by_user", `DELETE FROM carts WHERE user_id = ?`, userID)
	if err != nil {
		return 0, err
	}
	if n > 0 {
		tx.touch(TableCarts)
	}
	return n, nil
}
