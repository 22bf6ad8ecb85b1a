package store

import (
	"context"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/ir"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/model"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/queryir"
)

var userColumns = queryir.Cols("id", "username", "email", "password", "full_name", "phone")

func scanUser(s scanner) (model.User, error) {
	var u model.User
	err := s.Scan(&u.ID, &u.Username, &u.Email, &u.Password, &u.FullName, &u.Phone)
	return u, err
}

func (r Reader) listUsers(ctx context.Context, op string, f Filter) ([]model.User, error) {
	q := queryir.Select{From: string(TableUsers), Columns: userColumns, Filter: f.Where, OrderBy: f.Order}
	users := []model.User{}
	err := r.selectRows(ctx, op, q, f.Params, func(s scanner) error {
		u, err := scanUser(s)
		if err != nil {
			return err
		}
		users = append(users, u)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return users, nil
}

// GetUser returns the user with the given id.
func (r Reader) GetUser(ctx context.Context, id int64) (model.User, error) {
	users, err := r.listUsers(ctx, "store.get_user", ByID(id))
	if err != nil {
		return model.User{}, err
	}
	if len(users) == 0 {
		return model.User{}, notFound("store.get_user", "user", id)
	}
	return users[0], nil
}

// FindUserByEmail looks a user up by exact email. found is false when no
// user has that email.
func (r Reader) FindUserByEmail(ctx context.Context, email string) (u model.User, found bool, err error) {
	users, err := r.listUsers(ctx, "store.find_user_by_email", Filter{
		Where: queryir.Equals{Field: "email", Value: ir.IRString(email)},
	})
	if err != nil || len(users) == 0 {
		return model.User{}, false, err
	}
	return users[0], true, nil
}

// InsertUser inserts u and returns its id. u.ID is ignored.
func (tx *Tx) InsertUser(ctx context.Context, u model.User) (int64, error) {
	id, err := tx.insert(ctx, "store.insert_user", `
		INSERT INTO users (username, email, password, full_name, phone)
		VALUES (?, ?, ?, ?, ?)
	`, u.Username, u.Email, u.Password, u.FullName, u.Phone)
	if err != nil {
		return 0, err
	}
	tx.touch(TableUsers)
	return id, nil
}

// UpdateUser overwrites every column of the user with id u.ID.
func (tx *Tx) UpdateUser(ctx context.Context, u model.User) error {
	n, err := tx.exec(ctx, "store.update_user", `
		UPDATE users SET username = ?, email = ?, password = ?, full_name = ?, phone = ?
		WHERE id = ?
	`, u.Username, u.Email, u.Password, u.FullName, u.Phone, u.ID)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("store.update_user", "user", u.ID)
	}
	tx.touch(TableUsers)
	return nil
}

// DeleteUser removes a user with their cart lines, orders and order lines.
func (tx *Tx) DeleteUser(ctx context.Context, id int64) error {
	n, err := tx.exec(ctx, "store.delete_user", `DELETE FROM users WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound("store.delete_user", "user", id)
	}
	tx.touchCascade(TableUsers)
	return nil
}
