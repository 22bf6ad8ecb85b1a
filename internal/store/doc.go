// Package store provides SQLite-backed storage for the kantin entities:
// users, tenants, menus, carts, orders and order lines.
//
// # Referential integrity
//
// Foreign keys are enforced and every dependent row cascades with its parent:
//   - Tenant → Menu → Cart, OrderLine
//   - User → Cart, Order → OrderLine
//
// A cascade runs inside the DELETE statement, so it commits or rolls back
// with the transaction that issued it.
//
// # Writes and change notification
//
// All mutations go through Store.Write, which runs a function inside one
// transaction. Writes are serialized. After a successful commit the store
// assigns the next commit sequence number and hands a Change (sequence plus
// every table the transaction touched, cascades included) to each observer
// before the next write may begin, so observers see changes in commit order.
//
// # Deterministic reads
//
// List reads are built as queryir queries and compiled by querysql; every row
// query orders by its declared keys and then by id. Empty results are empty
// slices, never nil.
//
// # Database configuration
//
//   - WAL mode: Concurrent reads during writes
//   - synchronous=NORMAL: Balance durability/performance
//   - busy_timeout=5000: Wait for locks up to 5 seconds
//   - foreign_keys=ON: Enforce referential integrity
package store
