package store

import (
	"context"
	"database/sql"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/errs"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/ir"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/queryir"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/querysql"
)

// querier is satisfied by *sql.DB and *sql.Tx.
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// Reader executes read queries either directly against the database or
// inside a transaction.
type Reader struct {
	q querier
}

// Filter narrows and orders a list read.
type Filter struct {
	Where  queryir.Predicate
	Order  []queryir.Order
	Params map[string]any
}

// ByID matches a single primary key.
func ByID(id int64) Filter {
	return Filter{Where: queryir.Equals{Field: "id", Value: ir.IRInt(id)}}
}

// scanner is satisfied by *sql.Rows and *sql.Row.
type scanner interface {
	Scan(dest ...any) error
}

// selectRows compiles q and calls scan for each row.
func (r Reader) selectRows(ctx context.Context, op string, q queryir.Query, params map[string]any, scan func(scanner) error) error {
	query, args, err := querysql.Compile(q, params)
	if err != nil {
		return errs.Wrap(errs.InvalidArgument, op, err)
	}

	rows, err := r.q.QueryContext(ctx, query, args...)
	if err != nil {
		return classify(ctx, op, err)
	}
	defer rows.Close()

	for rows.Next() {
		if err := scan(rows); err != nil {
			return classify(ctx, op, err)
		}
	}
	return classify(ctx, op, rows.Err())
}

// Count returns the number of rows in table matching f.
func (r Reader) Count(ctx context.Context, table Table, f Filter) (int, error) {
	q := queryir.Select{From: string(table), Filter: f.Where, Count: true}
	query, args, err := querysql.Compile(q, f.Params)
	if err != nil {
		return 0, errs.Wrap(errs.InvalidArgument, "store.count", err)
	}

	var n int
	if err := r.q.QueryRowContext(ctx, query, args...).Scan(&n); err != nil {
		return 0, classify(ctx, "store.count", err)
	}
	return n, nil
}

// exec runs a mutation and returns rows affected.
func (r Reader) exec(ctx context.Context, op, query string, args ...any) (int64, error) {
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, classify(ctx, op, err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return 0, classify(ctx, op, err)
	}
	return n, nil
}

// insert runs an INSERT and returns the new row id.
func (r Reader) insert(ctx context.Context, op, query string, args ...any) (int64, error) {
	res, err := r.q.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, classify(ctx, op, err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, classify(ctx, op, err)
	}
	return id, nil
}
