// Package loader provides the stage that pulls missing entries from a
// persistent store into the invocation before the command runs.
package loader

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/unkn0wn-root/gridchain"
)

// Store is the read side of a persistent store.
type Store interface {
	// Load returns (value, meta, true, nil) on hit and ok=false on miss.
	Load(ctx context.Context, key string) (v any, meta gridchain.Metadata, ok bool, err error)
}

type Options struct {
	Store Store

	// Owner decides the locality of entries the loader creates itself.
	// Defaults to Primary for every key.
	Owner func(key string) gridchain.Locality

	// Coalesce shares one store round trip between concurrent loads of a key.
	// The shared load is detached from the cancellation of whichever
	// invocation started it; each caller still stops waiting on its own ctx.
	Coalesce bool
	// LoadTimeout bounds a shared load. Zero leaves it to the store.
	LoadTimeout time.Duration
	// Async loads on a separate goroutine and suspends the invocation meanwhile.
	Async bool
	// DisableStatistics turns off the Loads/Misses counters.
	DisableStatistics bool

	Logger gridchain.Logger
	Hooks  gridchain.Hooks
}

// Stage loads every key a command addresses that is not yet in the invocation.
// It is a no-op after the command.
type Stage struct {
	gridchain.NopStage

	store Store
	owner func(string) gridchain.Locality
	async   bool
	stats   bool
	timeout time.Duration
	group   *singleflight.Group
	log   gridchain.Logger
	hooks gridchain.Hooks

	loads  atomic.Int64
	misses atomic.Int64
}

func New(opts Options) (*Stage, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("loader: store is required")
	}
	s := &Stage{
		store:   opts.Store,
		owner:   opts.Owner,
		async:   opts.Async,
		stats:   !opts.DisableStatistics,
		timeout: opts.LoadTimeout,
		log:     gridchain.LoggerOr(opts.Logger),
		hooks:   gridchain.HooksOr(opts.Hooks),
	}
	if s.owner == nil {
		s.owner = func(string) gridchain.Locality { return gridchain.Primary }
	}
	if opts.Coalesce {
		s.group = &singleflight.Group{}
	}
	return s, nil
}

func (s *Stage) Name() string { return "loader" }

// Loads is the number of keys found in the store.
func (s *Stage) Loads() int64 { return s.loads.Load() }

// Misses is the number of keys the store did not have.
func (s *Stage) Misses() int64 { return s.misses.Load() }

func (s *Stage) ResetStatistics() {
	s.loads.Store(0)
	s.misses.Store(0)
}

func (s *Stage) BeforeCommand(pc *gridchain.PipelineContext, cmd gridchain.Command) gridchain.Step {
	flags := gridchain.FlagsOf(cmd)
	if !cmd.NeedsExistingValues() || flags.Has(gridchain.SkipCacheLoad) {
		return gridchain.Next()
	}

	ic := pc.Invocation()
	var pending []*gridchain.Entry
	for _, key := range gridchain.KeysOf(cmd) {
		e := ic.LookupEntry(key)
		if e == nil {
			e = gridchain.NewEntry(key)
			e.SetLocality(s.owner(key))
			ic.PutEntry(e)
		}
		if s.skip(e, flags) {
			continue
		}
		pending = append(pending, e)
	}
	if len(pending) == 0 {
		return gridchain.Next()
	}

	ctx, log := pc.Context(), pc.Logger()
	if s.async {
		return gridchain.Await(gridchain.Go(func() (any, error) {
			return gridchain.Continue, s.loadAll(ctx, log, pending)
		}))
	}
	if err := s.loadAll(ctx, log, pending); err != nil {
		return gridchain.Fail(err)
	}
	return gridchain.Next()
}

func (s *Stage) skip(e *gridchain.Entry, flags gridchain.Flags) bool {
	switch {
	case e.HasValue(), e.Loaded(), e.SkipLookup(), e.IsDirty():
		return true
	case !flags.Has(gridchain.SkipOwnershipCheck) && !e.Locality().ReadsExisting():
		return true
	}
	return false
}

type loaded struct {
	v    any
	meta gridchain.Metadata
	ok   bool
}

func (s *Stage) loadAll(ctx context.Context, log gridchain.Logger, entries []*gridchain.Entry) error {
	for _, e := range entries {
		res, err := s.load(ctx, e.Key())
		if err != nil {
			return fmt.Errorf("loader: load %q: %w", e.Key(), err)
		}
		if res.ok {
			e.RecordOldValue(res.v, res.meta, true)
			s.count(&s.loads)
			s.hooks.EntryLoaded(e.Key())
			log.Debug("entry loaded", gridchain.Fields{"key": e.Key(), "version": res.meta.Version})
		} else {
			if !e.HasOldValue() {
				e.RecordOldValue(nil, gridchain.Metadata{}, false)
			}
			s.count(&s.misses)
		}
		e.SetLoaded()
	}
	return nil
}

func (s *Stage) load(ctx context.Context, key string) (loaded, error) {
	if s.group == nil {
		v, meta, ok, err := s.store.Load(ctx, key)
		return loaded{v, meta, ok}, err
	}
	ch := s.group.DoChan(key, func() (any, error) {
		shared := context.WithoutCancel(ctx)
		if s.timeout > 0 {
			var cancel context.CancelFunc
			shared, cancel = context.WithTimeout(shared, s.timeout)
			defer cancel()
		}
		v, meta, ok, err := s.store.Load(shared, key)
		return loaded{v, meta, ok}, err
	})
	select {
	case r := <-ch:
		if r.Err != nil {
			return loaded{}, r.Err
		}
		return r.Val.(loaded), nil
	case <-ctx.Done():
		return loaded{}, ctx.Err()
	}
}

func (s *Stage) count(c *atomic.Int64) {
	if s.stats {
		c.Add(1)
	}
}
