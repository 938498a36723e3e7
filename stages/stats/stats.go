// Package stats counts what passes through the pipeline.
package stats

import (
	"sync/atomic"
	"time"

	"github.com/unkn0wn-root/gridchain"
)

type startKey struct{}

// Stage records one sample per invocation. Put it near the front of the
// pipeline so its after hook sees the final outcome of the inner stages.
type Stage struct {
	invocations atomic.Int64
	hits        atomic.Int64
	misses      atomic.Int64
	stores      atomic.Int64
	removes     atomic.Int64
	failures    atomic.Int64
	nanos       atomic.Int64
	now         func() time.Time
}

// Snapshot is a point-in-time copy of the counters.
type Snapshot struct {
	Invocations int64
	Hits        int64
	Misses      int64
	Stores      int64
	Removes     int64
	Failures    int64
	AvgLatency  time.Duration
}

func New() *Stage { return &Stage{now: time.Now} }

func (s *Stage) Name() string { return "stats" }

func (s *Stage) BeforeCommand(pc *gridchain.PipelineContext, _ gridchain.Command) gridchain.Step {
	pc.Set(startKey{}, s.now())
	return gridchain.Next()
}

func (s *Stage) AfterCommand(pc *gridchain.PipelineContext, cmd gridchain.Command, _ any, err error) gridchain.Step {
	s.invocations.Add(1)
	if start, ok := pc.Value(startKey{}).(time.Time); ok {
		s.nanos.Add(int64(s.now().Sub(start)))
	}
	if err != nil {
		s.failures.Add(1)
		return gridchain.Next()
	}
	for _, e := range pc.Invocation().Entries() {
		switch {
		case e.IsDirty() && e.IsRemovalPending():
			s.removes.Add(1)
		case e.IsDirty():
			s.stores.Add(1)
		case !cmd.NeedsExistingValues():
		case e.HasValue():
			s.hits.Add(1)
		default:
			s.misses.Add(1)
		}
	}
	return gridchain.Next()
}

func (s *Stage) Snapshot() Snapshot {
	snap := Snapshot{
		Invocations: s.invocations.Load(),
		Hits:        s.hits.Load(),
		Misses:      s.misses.Load(),
		Stores:      s.stores.Load(),
		Removes:     s.removes.Load(),
		Failures:    s.failures.Load(),
	}
	if snap.Invocations > 0 {
		snap.AvgLatency = time.Duration(s.nanos.Load() / snap.Invocations)
	}
	return snap
}

func (s *Stage) Reset() {
	for _, c := range []*atomic.Int64{&s.invocations, &s.hits, &s.misses, &s.stores, &s.removes, &s.failures, &s.nanos} {
		c.Store(0)
	}
}
