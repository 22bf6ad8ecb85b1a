// Package queryir describes store reads as data.
//
// A Query names its tables explicitly, which is what lets the live query
// engine know which commits can change a result: Tables(q) is the dependency
// set of a query. Backends compile the IR; internal/querysql targets SQLite.
//
// The fragment is deliberately small: single-table selects, inner equi-joins
// of two selects, and conjunctions of equality and substring predicates.
// Every select carries an explicit column list and an ordering so results are
// deterministic.
package queryir
