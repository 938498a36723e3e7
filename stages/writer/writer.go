// Package writer writes committed entries through to the persistent store.
package writer

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"

	"github.com/unkn0wn-root/gridchain"
)

// Store is the write side of a persistent store.
type Store interface {
	Save(ctx context.Context, key string, v any, meta gridchain.Metadata) error
	Delete(ctx context.Context, key string) error
}

type Options struct {
	Store Store
	// Async writes on a separate goroutine; the invocation resumes once every
	// write has finished.
	Async  bool
	Logger gridchain.Logger
	Hooks  gridchain.Hooks
}

// Stage persists every dirty entry this node owns once the command has
// succeeded, unless the command carries SkipCacheStore.
type Stage struct {
	gridchain.NopStage

	store Store
	async bool
	log   gridchain.Logger
	hooks gridchain.Hooks

	stores  atomic.Int64
	removes atomic.Int64
}

func New(opts Options) (*Stage, error) {
	if opts.Store == nil {
		return nil, fmt.Errorf("writer: store is required")
	}
	return &Stage{
		store: opts.Store,
		async: opts.Async,
		log:   gridchain.LoggerOr(opts.Logger),
		hooks: gridchain.HooksOr(opts.Hooks),
	}, nil
}

func (s *Stage) Name() string { return "writer" }

// Stores is the number of values written to the store.
func (s *Stage) Stores() int64 { return s.stores.Load() }

// Removes is the number of keys deleted from the store.
func (s *Stage) Removes() int64 { return s.removes.Load() }

func (s *Stage) AfterCommand(pc *gridchain.PipelineContext, cmd gridchain.Command, _ any, err error) gridchain.Step {
	flags := gridchain.FlagsOf(cmd)
	if err != nil || flags.Has(gridchain.SkipCacheStore) {
		return gridchain.Next()
	}
	var dirty []*gridchain.Entry
	for _, e := range pc.Invocation().Entries() {
		if !e.IsDirty() {
			continue
		}
		if !flags.Has(gridchain.SkipOwnershipCheck) && !e.Locality().IsOwner() {
			continue
		}
		dirty = append(dirty, e)
	}
	if len(dirty) == 0 {
		return gridchain.Next()
	}

	ctx := pc.Context()
	if s.async {
		return gridchain.Await(gridchain.Go(func() (any, error) {
			return gridchain.Continue, s.writeAll(ctx, dirty)
		}))
	}
	if werr := s.writeAll(ctx, dirty); werr != nil {
		return gridchain.Fail(werr)
	}
	return gridchain.Next()
}

// writeAll attempts every entry and joins the failures.
func (s *Stage) writeAll(ctx context.Context, entries []*gridchain.Entry) error {
	var errs []error
	for _, e := range entries {
		var err error
		if e.IsRemovalPending() {
			if err = s.store.Delete(ctx, e.Key()); err == nil {
				s.removes.Add(1)
			}
		} else {
			if err = s.store.Save(ctx, e.Key(), e.Value(), e.Metadata()); err == nil {
				s.stores.Add(1)
			}
		}
		if err != nil {
			s.hooks.StoreWriteFailed(e.Key(), err)
			s.log.Warn("write-through failed", gridchain.Fields{"key": e.Key(), "err": err.Error()})
			errs = append(errs, fmt.Errorf("writer: %q: %w", e.Key(), err))
		}
	}
	return errors.Join(errs...)
}
