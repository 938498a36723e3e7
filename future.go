package gridchain

import (
	"context"
	"sync"
)

// Future is a one-shot completion handle for a value or an error.
// Construct with NewFuture, Completed or Go; the zero value is not usable.
type Future struct {
	mu      sync.Mutex
	done    bool
	value   any
	err     error
	waiters []func(any, error)
	ch      chan struct{}
}

// NewFuture returns a pending future. Exactly one Complete resolves it.
func NewFuture() *Future {
	return &Future{ch: make(chan struct{})}
}

// Completed returns a future that is already resolved.
func Completed(v any, err error) *Future {
	f := NewFuture()
	f.Complete(v, err)
	return f
}

// Go runs fn on a new goroutine and completes the returned future with its result.
// A panic in fn completes the future with an error.
func Go(fn func() (any, error)) *Future {
	f := NewFuture()
	go func() {
		var (
			v   any
			err error
		)
		func() {
			defer func() {
				if r := recover(); r != nil {
					v, err = nil, panicError(r)
				}
			}()
			v, err = fn()
		}()
		f.Complete(v, err)
	}()
	return f
}

// Complete resolves the future. Only the first call wins; it reports whether
// this call resolved it. Callbacks run on the calling goroutine after the lock
// is released.
func (f *Future) Complete(v any, err error) bool {
	f.mu.Lock()
	if f.done {
		f.mu.Unlock()
		return false
	}
	f.done = true
	f.value, f.err = v, err
	waiters := f.waiters
	f.waiters = nil
	close(f.ch)
	f.mu.Unlock()

	for _, w := range waiters {
		w(v, err)
	}
	return true
}

// OnComplete registers fn. If the future is already resolved fn runs immediately
// on the calling goroutine.
func (f *Future) OnComplete(fn func(any, error)) {
	if v, err, done := f.registerUnlessDone(fn); done {
		fn(v, err)
	}
}

// registerUnlessDone either returns the resolved result (done=true) or registers
// fn for later. It never runs fn itself, so the caller can keep looping on its
// own stack instead of recursing into fn.
func (f *Future) registerUnlessDone(fn func(any, error)) (any, error, bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.done {
		return f.value, f.err, true
	}
	f.waiters = append(f.waiters, fn)
	return nil, nil, false
}

// Result peeks without blocking.
func (f *Future) Result() (v any, err error, ok bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.value, f.err, f.done
}

// Done is closed once the future resolves.
func (f *Future) Done() <-chan struct{} { return f.ch }

// Await blocks until the future resolves or ctx is done. Giving up on the wait
// does not cancel the underlying work.
func (f *Future) Await(ctx context.Context) (any, error) {
	select {
	case <-f.ch:
		f.mu.Lock()
		defer f.mu.Unlock()
		return f.value, f.err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
