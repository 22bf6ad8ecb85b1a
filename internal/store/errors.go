package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/mattn/go-sqlite3"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/errs"
)

// classify maps driver errors onto the errs taxonomy.
// Errors that already carry a code pass through.
func classify(ctx context.Context, op string, err error) error {
	if err == nil {
		return nil
	}

	var coded *errs.Error
	if errors.As(err, &coded) {
		return err
	}

	switch {
	case errors.Is(err, sql.ErrNoRows):
		return errs.Wrap(errs.NotFound, op, err)
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return errs.Wrap(errs.Cancelled, op, err)
	case ctx != nil && ctx.Err() != nil:
		// database/sql reports a transaction aborted by its context as ErrTxDone.
		return errs.Wrap(errs.Cancelled, op, err)
	}

	var sqErr sqlite3.Error
	if errors.As(err, &sqErr) && sqErr.Code == sqlite3.ErrConstraint {
		return &errs.Error{
			Code:    errs.ConstraintViolation,
			Op:      op,
			Message: constraintMessage(sqErr),
			Err:     err,
		}
	}

	return errs.Wrap(errs.StoreFailure, op, err)
}

func constraintMessage(e sqlite3.Error) string {
	switch e.ExtendedCode {
	case sqlite3.ErrConstraintForeignKey:
		return "referenced row does not exist"
	case sqlite3.ErrConstraintUnique, sqlite3.ErrConstraintPrimaryKey:
		return "duplicate key"
	case sqlite3.ErrConstraintCheck:
		return "value out of range"
	case sqlite3.ErrConstraintNotNull:
		return "missing required value"
	}
	return "constraint failed"
}

func notFound(op, what string, id int64) error {
	return errs.Newf(errs.NotFound, op, "%s %d not found", what, id)
}
