// Package versioning stamps every committed write with the next generation of
// its key.
package versioning

import (
	"context"
	"fmt"

	"github.com/unkn0wn-root/gridchain"
	"github.com/unkn0wn-root/gridchain/genstore"
)

type Options struct {
	Gens genstore.GenStore
	// Async bumps on a separate goroutine. Useful when Gens is remote.
	Async bool
}

// Stage bumps the generation of every dirty entry after a successful command
// and records it in Entry.Metadata().Version. Removals are bumped too, which
// makes copies still held by another store read as stale.
type Stage struct {
	gridchain.NopStage
	gens  genstore.GenStore
	async bool
}

func New(opts Options) (*Stage, error) {
	if opts.Gens == nil {
		return nil, fmt.Errorf("versioning: generation store is required")
	}
	return &Stage{gens: opts.Gens, async: opts.Async}, nil
}

func (s *Stage) Name() string { return "versioning" }

func (s *Stage) AfterCommand(pc *gridchain.PipelineContext, _ gridchain.Command, _ any, err error) gridchain.Step {
	if err != nil {
		return gridchain.Next()
	}
	var dirty []*gridchain.Entry
	for _, e := range pc.Invocation().Entries() {
		if e.IsDirty() && e.Locality().IsOwner() {
			dirty = append(dirty, e)
		}
	}
	if len(dirty) == 0 {
		return gridchain.Next()
	}
	ctx := pc.Context()
	if s.async {
		return gridchain.Await(gridchain.Go(func() (any, error) {
			return nil, s.bump(ctx, dirty)
		}))
	}
	if err := s.bump(ctx, dirty); err != nil {
		return gridchain.Fail(err)
	}
	return gridchain.Next()
}

func (s *Stage) bump(ctx context.Context, entries []*gridchain.Entry) error {
	for _, e := range entries {
		n, err := s.gens.Bump(ctx, e.Key())
		if err != nil {
			return fmt.Errorf("versioning: bump %q: %w", e.Key(), err)
		}
		meta := e.Metadata()
		meta.Version = n
		e.SetMetadata(meta)
	}
	return nil
}
