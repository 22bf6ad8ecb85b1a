package liveq

import (
	"sync"
	"sync/atomic"
)

type initResult struct {
	value any
	fp    string
	seq   int64
	err   error
}

// Subscription is one caller's registration on a live query.
type Subscription struct {
	id   string
	lq   *liveQuery
	fn   Handler
	init chan initResult

	mu      sync.Mutex
	ready   bool
	lastFP  string
	started bool

	queue  *updateQueue
	closed atomic.Bool
	once   sync.Once
	done   chan struct{}
}

func newSubscription(id string, lq *liveQuery, fn Handler) *Subscription {
	return &Subscription{
		id:    id,
		lq:    lq,
		fn:    fn,
		init:  make(chan initResult, 1),
		queue: newUpdateQueue(),
		done:  make(chan struct{}),
	}
}

// ID returns the subscription id.
func (s *Subscription) ID() string {
	return s.id
}

// Done is closed once the handler will not be called again.
func (s *Subscription) Done() <-chan struct{} {
	return s.done
}

func (s *Subscription) initialize(r initResult) {
	s.mu.Lock()
	if r.err == nil {
		s.ready = true
		s.lastFP = r.fp
	}
	s.mu.Unlock()

	select {
	case s.init <- r:
	default:
	}
}

// offer queues u unless it is structurally equal to the last result pushed
// to this subscription. Errors are always queued and clear the last result, so
// the next successful evaluation is pushed even if it matches the one before
// the error.
func (s *Subscription) offer(u Update, fp string) {
	if s.closed.Load() {
		return
	}

	s.mu.Lock()
	if !s.ready {
		s.mu.Unlock()
		return
	}
	if u.Err != nil {
		s.lastFP = ""
	} else {
		if fp == s.lastFP {
			s.mu.Unlock()
			return
		}
		s.lastFP = fp
	}
	s.mu.Unlock()

	s.queue.Enqueue(u)
}

func (s *Subscription) start() {
	s.mu.Lock()
	if s.started {
		s.mu.Unlock()
		return
	}
	s.started = true
	s.mu.Unlock()

	go s.deliver()
}

func (s *Subscription) deliver() {
	defer close(s.done)

	for {
		u, ok := s.queue.Dequeue()
		if !ok || s.closed.Load() {
			return
		}
		s.fn(u)
	}
}

// Unsubscribe ends the subscription. It does not wait for an in-flight
// handler call, so it may be called from inside the handler. Idempotent.
func (s *Subscription) Unsubscribe() {
	s.once.Do(func() {
		s.closed.Store(true)
		s.queue.Close()
		s.lq.engine.detach(s)

		s.mu.Lock()
		started := s.started
		s.started = true
		s.mu.Unlock()
		if !started {
			close(s.done)
		}
	})
}
