package liveq

import (
	"context"
	"log/slog"
	"slices"
	"sync"

	"github.com/andinnnputrii/FastKantin-MobileApp/internal/errs"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/ir"
	"github.com/andinnnputrii/FastKantin-MobileApp/internal/store"
)

// Engine owns the live query registry for one store.
type Engine struct {
	src    Source
	ids    IDGenerator
	logger *slog.Logger

	mu     sync.Mutex
	live   map[string]*liveQuery
	closed bool

	// ctx is passed to every evaluation and cancelled by Close.
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	stopObserving func()
}

// Option configures an Engine.
type Option func(*Engine)

// WithLogger sets the engine logger. Defaults to slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(e *Engine) {
		if l != nil {
			e.logger = l
		}
	}
}

// WithIDGenerator overrides subscription id generation (tests use fixed ids).
func WithIDGenerator(g IDGenerator) Option {
	return func(e *Engine) {
		if g != nil {
			e.ids = g
		}
	}
}

// New creates an engine observing src.
func New(src Source, opts ...Option) *Engine {
	ctx, cancel := context.WithCancel(context.Background())
	e := &Engine{
		src:    src,
		ids:    UUIDv7Generator{},
		logger: slog.Default(),
		live:   make(map[string]*liveQuery),
		ctx:    ctx,
		cancel: cancel,
	}
	for _, opt := range opts {
		opt(e)
	}
	e.stopObserving = src.Observe(e.onChange)
	return e
}

// onChange runs synchronously inside the committing writer. It only marks
// live queries dirty and wakes their workers.
func (e *Engine) onChange(ch store.Change) {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, lq := range e.live {
		if ch.Touches(lq.def.Tables...) {
			lq.invalidate(ch.Seq)
		}
	}
}

// Subscribe registers fn for def and returns the initial result.
//
// The subscription shares a live query with every other subscription of the
// same signature. fn is never called with the initial result, only with later
// results that differ from the last one this subscription saw.
func (e *Engine) Subscribe(ctx context.Context, def Definition, fn Handler) (any, *Subscription, error) {
	const op = "liveq.subscribe"

	if def.Eval == nil {
		return nil, nil, errs.New(errs.InvalidArgument, op, "definition has no evaluator")
	}
	if fn == nil {
		return nil, nil, errs.New(errs.InvalidArgument, op, "handler is nil")
	}
	sig, err := def.Signature()
	if err != nil {
		return nil, nil, errs.Wrap(errs.InvalidArgument, op, err)
	}

	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return nil, nil, errs.New(errs.Cancelled, op, "engine closed")
	}
	lq, ok := e.live[sig]
	if !ok {
		lq = newLiveQuery(e, sig, def)
		e.live[sig] = lq
		e.wg.Add(1)
		go lq.run()
	}
	sub := newSubscription(e.ids.Generate(), lq, fn)
	lq.add(sub)
	e.mu.Unlock()

	select {
	case res := <-sub.init:
		if res.err != nil {
			sub.Unsubscribe()
			return nil, nil, res.err
		}
		sub.start()
		e.logger.Debug("live query subscribed",
			"query", def.Name,
			"subscription", sub.id,
			"seq", res.seq)
		return res.value, sub, nil
	case <-ctx.Done():
		sub.Unsubscribe()
		return nil, nil, errs.Wrap(errs.Cancelled, op, ctx.Err())
	case <-e.ctx.Done():
		sub.Unsubscribe()
		return nil, nil, errs.New(errs.Cancelled, op, "engine closed")
	}
}

// detach removes s from its live query and drops the live query once it has
// no subscriptions left.
func (e *Engine) detach(s *Subscription) {
	e.mu.Lock()
	defer e.mu.Unlock()

	lq := s.lq
	if lq.remove(s) && e.live[lq.sig] == lq {
		delete(e.live, lq.sig)
		close(lq.stop)
	}
}

// Stats reports registry occupancy.
type Stats struct {
	Queries       int
	Subscriptions int
}

// Stats returns the current number of live queries and subscriptions.
func (e *Engine) Stats() Stats {
	e.mu.Lock()
	defer e.mu.Unlock()

	var st Stats
	for _, lq := range e.live {
		st.Queries++
		st.Subscriptions += len(lq.snapshot())
	}
	return st
}

// Close ends every subscription and waits for live query workers to exit.
// Safe to call more than once.
func (e *Engine) Close() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.closed = true
	var subs []*Subscription
	for _, lq := range e.live {
		subs = append(subs, lq.snapshot()...)
	}
	e.mu.Unlock()

	e.stopObserving()
	for _, s := range subs {
		s.Unsubscribe()
	}
	e.cancel()
	e.wg.Wait()
}

// liveQuery is one registry entry: a definition, its subscribers and the
// worker that evaluates it.
type liveQuery struct {
	engine *Engine
	sig    string
	def    Definition

	mu      sync.Mutex
	subs    []*Subscription
	fresh   []*Subscription // awaiting their initial result
	dirty   bool
	pending int64 // highest invalidating commit

	wake chan struct{}
	stop chan struct{}
}

func newLiveQuery(e *Engine, sig string, def Definition) *liveQuery {
	return &liveQuery{
		engine: e,
		sig:    sig,
		def:    def,
		wake:   make(chan struct{}, 1),
		stop:   make(chan struct{}),
	}
}

func (lq *liveQuery) add(s *Subscription) {
	lq.mu.Lock()
	lq.subs = append(lq.subs, s)
	lq.fresh = append(lq.fresh, s)
	lq.mu.Unlock()
	lq.poke()
}

// remove reports whether the live query is now empty.
func (lq *liveQuery) remove(s *Subscription) bool {
	lq.mu.Lock()
	defer lq.mu.Unlock()

	lq.subs = slices.DeleteFunc(lq.subs, func(x *Subscription) bool { return x == s })
	lq.fresh = slices.DeleteFunc(lq.fresh, func(x *Subscription) bool { return x == s })
	return len(lq.subs) == 0
}

func (lq *liveQuery) snapshot() []*Subscription {
	lq.mu.Lock()
	defer lq.mu.Unlock()
	return slices.Clone(lq.subs)
}

func (lq *liveQuery) invalidate(seq int64) {
	lq.mu.Lock()
	lq.dirty = true
	if seq > lq.pending {
		lq.pending = seq
	}
	lq.mu.Unlock()
	lq.poke()
}

func (lq *liveQuery) poke() {
	select {
	case lq.wake <- struct{}{}:
	default:
	}
}

func (lq *liveQuery) run() {
	defer lq.engine.wg.Done()

	for {
		select {
		case <-lq.stop:
			return
		case <-lq.engine.ctx.Done():
			return
		case <-lq.wake:
		}
		lq.evaluate()
	}
}

// evaluate drains pending work with a single evaluation. Every commit that
// arrived before the drain is reflected in the result.
func (lq *liveQuery) evaluate() {
	lq.mu.Lock()
	fresh := lq.fresh
	lq.fresh = nil
	dirty := lq.dirty
	pending := lq.pending
	lq.dirty = false
	lq.mu.Unlock()

	if !dirty && len(fresh) == 0 {
		return
	}

	seq := lq.engine.src.Seq()
	if pending > seq {
		seq = pending
	}

	value, err := lq.def.Eval(lq.engine.ctx)
	var fp string
	if err == nil {
		fp, err = ir.Fingerprint(value)
		if err != nil {
			err = errs.Wrap(errs.InvalidArgument, "liveq.fingerprint", err)
		}
	}
	if err != nil {
		value = nil
	}

	for _, s := range fresh {
		s.initialize(initResult{value: value, fp: fp, seq: seq, err: err})
	}
	if !dirty {
		return
	}

	if err != nil {
		lq.engine.logger.Warn("live query evaluation failed",
			"query", lq.def.Name,
			"seq", seq,
			"error", err)
	}

	for _, s := range lq.snapshot() {
		s.offer(Update{Seq: seq, Value: value, Err: err}, fp)
	}
}
