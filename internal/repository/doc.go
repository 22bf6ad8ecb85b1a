// Package repository is the facade the presentation layer talks to.
//
// A Repository is built around one explicitly opened store. It wires the cart
// aggregator and checkout service to a shared per-user lock table, owns the
// live query engine, and exposes typed Watch methods so callers never handle
// query definitions or untyped results.
package repository
