// Package checkout converts a user's cart into an order and drives the order
// state machines afterwards.
//
// Checkout is one store write: read the priced cart, verify the caller's
// confirmed total, insert the order header and its lines with frozen unit
// prices, then empty the cart. Any failure rolls the whole write back, leaving
// the cart exactly as it was.
//
// Order status moves Pending → Completed or Pending → Cancelled. Payment
// status moves Pending → Paid or Pending → Cancelled, independently.
package checkout
