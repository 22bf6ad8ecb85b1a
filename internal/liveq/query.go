package liveq

import (
	"context"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/ir"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/store"
)

// Definition describes a live query.
type Definition struct {
	// Name identifies the read, e.g. "cart.total".
	Name string

	// Params distinguishes instances of the same read, e.g. {"user_id": 1}.
	Params ir.IRObject

	// Tables lists every table whose modification can change the result.
	Tables []store.Table

	// Eval computes the current result. It must return a JSON-marshalable
	// value without floats. Results are shared between subscribers and must
	// be treated as read-only.
	Eval func(ctx context.Context) (any, error)
}

// Signature identifies the definition in the registry.
func (d Definition) Signature() (string, error) {
	return ir.QuerySignature(d.Name, d.Params)
}

// Update is one push to a subscriber.
type Update struct {
	// Seq is the commit sequence the value reflects (at least).
	Seq int64

	// Value is the recomputed result. Nil when Err is set.
	Value any

	// Err reports a failed re-evaluation. The subscription stays active.
	Err error
}

// Handler receives pushes for one subscription, one at a time.
type Handler func(Update)

// Source is the store surface the engine needs.
type Source interface {
	Observe(fn store.Observer) (cancel func())
	Seq() int64
}
