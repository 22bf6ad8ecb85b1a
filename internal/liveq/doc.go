// Package liveq is the reactive query engine: it keeps subscribers' views of
// store reads current as writes commit.
//
// A Definition names a read, its parameters and the tables it depends on.
// Subscribing evaluates it once and returns the initial result; afterwards
// every committed write touching one of those tables schedules a
// re-evaluation, and each subscriber is pushed the new result if it differs
// structurally from the last result that subscriber saw.
//
// # Registry
//
// Live queries are keyed by signature (name plus canonical parameters). Any
// number of subscriptions share one live query and one evaluation per change.
// The live query is dropped when its last subscription ends.
//
// # Ordering and delivery
//
// Each live query has a single worker that evaluates it, so results are
// produced in commit order. Commits that arrive while an evaluation is pending
// are coalesced: the next evaluation reads the latest state and is tagged with
// the highest commit sequence it reflects. A push is never older than one
// delivered before it.
//
// Each subscription owns an unbounded FIFO and a goroutine that runs its
// handler. The writer only enqueues; a slow handler delays its own
// subscription and nothing else.
//
// Unsubscribe is idempotent and may race with an in-flight push: the push
// either completes as the final delivery or is dropped.
package liveq
