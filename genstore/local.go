package genstore

import (
	"context"
	"sync"
	"time"
)

type generation struct {
	n       uint64
	touched time.Time
}

// Local keeps generations in-process. With a sweep interval and retention it
// runs a background loop that forgets keys not bumped within retention; a
// forgotten key reads as 0 again.
type Local struct {
	mu   sync.RWMutex
	gens map[string]generation

	stop chan struct{}
	wg   sync.WaitGroup
	once sync.Once
}

var _ GenStore = (*Local)(nil)

func NewLocal(sweep, retention time.Duration) *Local {
	s := &Local{gens: make(map[string]generation)}
	if sweep > 0 && retention > 0 {
		s.stop = make(chan struct{})
		s.wg.Add(1)
		go s.sweepLoop(sweep, retention)
	}
	return s
}

func (s *Local) sweepLoop(every, retention time.Duration) {
	defer s.wg.Done()
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-t.C:
			s.Cleanup(retention)
		case <-s.stop:
			return
		}
	}
}

func (s *Local) Current(_ context.Context, key string) (uint64, error) {
	s.mu.RLock()
	g := s.gens[key]
	s.mu.RUnlock()
	return g.n, nil
}

func (s *Local) Bump(_ context.Context, key string) (uint64, error) {
	now := time.Now()
	s.mu.Lock()
	g := s.gens[key]
	g.n++
	g.touched = now
	s.gens[key] = g
	s.mu.Unlock()
	return g.n, nil
}

func (s *Local) Cleanup(retention time.Duration) {
	if retention <= 0 {
		return
	}
	cutoff := time.Now().Add(-retention)
	s.mu.Lock()
	for k, g := range s.gens {
		if g.touched.Before(cutoff) {
			delete(s.gens, k)
		}
	}
	s.mu.Unlock()
}

// Close stops the sweep loop. Safe to call more than once.
func (s *Local) Close(context.Context) error {
	s.once.Do(func() {
		if s.stop != nil {
			close(s.stop)
			s.wg.Wait()
		}
	})
	return nil
}
