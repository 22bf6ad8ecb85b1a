package store

import (
	"database/sql"
	"slices"
)

// Table names a persisted entity table.
type Table string

const (
	TableUsers      Table = "users"
	TableTenants    Table = "tenants"
	TableMenus      Table = "menus"
	TableCarts      Table = "carts"
	TableOrders     Table = "orders"
	TableOrderLines Table = "order_lines"
)

// AllTables lists every table in dependency order.
var AllTables = []Table{TableUsers, TableTenants, TableMenus, TableCarts, TableOrders, TableOrderLines}

// cascades lists the tables a delete on the key table can reach.
var cascades = map[Table][]Table{
	TableUsers:   {TableCarts, TableOrders, TableOrderLines},
	TableTenants: {TableMenus, TableCarts, TableOrderLines},
	TableMenus:   {TableCarts, TableOrderLines},
	TableOrders:  {TableOrderLines},
}

// Change describes one committed write.
type Change struct {
	// Seq increases by one per committed write that touched a table.
	Seq int64

	// Tables lists every table the write may have modified, sorted.
	Tables []Table
}

// Touches reports whether the change modified any of tables.
func (c Change) Touches(tables ...Table) bool {
	for _, t := range tables {
		if slices.Contains(c.Tables, t) {
			return true
		}
	}
	return false
}

// Tx is a write transaction. Its embedded Reader reads inside the transaction
// and sees the transaction's own uncommitted writes.
type Tx struct {
	Reader

	tx      *sql.Tx
	touched map[Table]bool
}

// touch records a modified table.
func (tx *Tx) touch(t Table) {
	tx.touched[t] = true
}

// touchCascade records a delete on t and every table it cascades into.
func (tx *Tx) touchCascade(t Table) {
	tx.touch(t)
	for _, dep := range cascades[t] {
		tx.touch(dep)
	}
}

// Touched returns the modified tables, sorted.
func (tx *Tx) Touched() []Table {
	tables := make([]Table, 0, len(tx.touched))
	for t := range tx.touched {
		tables = append(tables, t)
	}
	slices.Sort(tables)
	return tables
}
