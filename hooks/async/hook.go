// Package asynchook moves hook delivery off the pipeline's goroutines.
//
//	raw := sloghooks.New(slog.Default(), sloghooks.Options{SuspendedEvery: 100})
//	hooks := asynchook.New(raw, 1, 1000) // 1 worker; queue 1000 events
//	defer hooks.Close()
//
//	p, _ := gridchain.New(gridchain.Options{Stages: stages, Hooks: hooks})
package asynchook

import (
	"sync"
	"sync/atomic"

	"github.com/unkn0wn-root/gridchain"
)

// Hooks queues every event for a small worker pool and drops events when the
// queue is full, so a slow sink never stalls an invocation.
type Hooks struct {
	inner   gridchain.Hooks
	q       chan func()
	wg      sync.WaitGroup
	once    sync.Once
	dropped atomic.Uint64
}

var _ gridchain.Hooks = (*Hooks)(nil)

func New(inner gridchain.Hooks, workers, qlen int) *Hooks {
	if workers <= 0 {
		workers = 1
	}
	if qlen <= 0 {
		qlen = 1024
	}

	h := &Hooks{inner: gridchain.HooksOr(inner), q: make(chan func(), qlen)}
	h.wg.Add(workers)
	for i := 0; i < workers; i++ {
		go func() {
			defer h.wg.Done()
			for f := range h.q {
				f()
			}
		}()
	}
	return h
}

// Close drains the queue and stops the workers. Events after Close are dropped.
func (h *Hooks) Close() {
	h.once.Do(func() {
		close(h.q)
		h.wg.Wait()
	})
}

// Dropped is the number of events lost to a full queue.
func (h *Hooks) Dropped() uint64 { return h.dropped.Load() }

func (h *Hooks) try(f func()) {
	defer func() {
		// send on closed queue
		if recover() != nil {
			h.dropped.Add(1)
		}
	}()
	select {
	case h.q <- f:
	default:
		h.dropped.Add(1)
	}
}

func (h *Hooks) StageFailed(s string, p gridchain.Phase, err error) {
	h.try(func() { h.inner.StageFailed(s, p, err) })
}
func (h *Hooks) CommandFailed(c string, err error) { h.try(func() { h.inner.CommandFailed(c, err) }) }
func (h *Hooks) Suspended(s string, p gridchain.Phase) {
	h.try(func() { h.inner.Suspended(s, p) })
}
func (h *Hooks) ShortCircuited(s string) { h.try(func() { h.inner.ShortCircuited(s) }) }
func (h *Hooks) ContractViolated(e *gridchain.ContractViolation) {
	h.try(func() { h.inner.ContractViolated(e) })
}
func (h *Hooks) EntryLoaded(k string) { h.try(func() { h.inner.EntryLoaded(k) }) }
func (h *Hooks) StoreWriteFailed(k string, err error) {
	h.try(func() { h.inner.StoreWriteFailed(k, err) })
}
