// Package cart implements the cart line merge policy and the per-user cart
// aggregates (line count and live-priced total).
//
// Every mutation runs inside one store write while holding the user's lock
// from UserLocks, so read-modify-write merges for the same user never
// interleave. Checkout takes the same lock for the duration of its write.
package cart
