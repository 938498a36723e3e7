// Package wrapping moves entries between the data container and the
// invocation: it wraps every addressed key before the command and commits the
// written ones after a successful command.
package wrapping

import (
	"context"
	"fmt"

	"github.com/unkn0wn-root/gridchain"
)

// Container is the in-memory data container.
type Container interface {
	Load(ctx context.Context, key string) (any, gridchain.Metadata, bool, error)
	Save(ctx context.Context, key string, v any, meta gridchain.Metadata) error
	Delete(ctx context.Context, key string) error
}

type Options struct {
	Container Container
	// Owner assigns each key's locality. Defaults to Primary.
	Owner  func(key string) gridchain.Locality
	Logger gridchain.Logger
}

type Stage struct {
	c     Container
	owner func(string) gridchain.Locality
	log   gridchain.Logger
}

func New(opts Options) (*Stage, error) {
	if opts.Container == nil {
		return nil, fmt.Errorf("wrapping: container is required")
	}
	s := &Stage{c: opts.Container, owner: opts.Owner, log: gridchain.LoggerOr(opts.Logger)}
	if s.owner == nil {
		s.owner = func(string) gridchain.Locality { return gridchain.Primary }
	}
	return s, nil
}

func (s *Stage) Name() string { return "wrapping" }

// BeforeCommand creates the entry of every addressed key and records what the
// container holds for it. Blind writes and keys this node must not read are
// marked SkipLookup so later stages do not fetch them either.
func (s *Stage) BeforeCommand(pc *gridchain.PipelineContext, cmd gridchain.Command) gridchain.Step {
	ic := pc.Invocation()
	for _, key := range gridchain.KeysOf(cmd) {
		e := ic.LookupEntry(key)
		if e == nil {
			e = gridchain.NewEntry(key)
			e.SetLocality(s.owner(key))
			ic.PutEntry(e)
		}
		if e.HasOldValue() || e.IsDirty() {
			continue
		}
		if !cmd.NeedsExistingValues() || !e.Locality().ReadsExisting() {
			e.SetSkipLookup(true)
			continue
		}
		v, meta, ok, err := s.c.Load(pc.Context(), key)
		if err != nil {
			return gridchain.Fail(fmt.Errorf("wrapping: read %q: %w", key, err))
		}
		e.RecordOldValue(v, meta, ok)
	}
	return gridchain.Next()
}

// AfterCommand commits dirty entries this node owns, and keeps entries loaded
// from the persistent store in the container. Failed commands commit nothing.
func (s *Stage) AfterCommand(pc *gridchain.PipelineContext, _ gridchain.Command, _ any, err error) gridchain.Step {
	if err != nil {
		return gridchain.Next()
	}
	ctx := pc.Context()
	for _, e := range pc.Invocation().Entries() {
		if !e.Locality().IsOwner() {
			continue
		}
		var cerr error
		switch {
		case e.IsDirty() && e.IsRemovalPending():
			cerr = s.c.Delete(ctx, e.Key())
		case e.IsDirty(), e.Loaded() && e.HasValue():
			cerr = s.c.Save(ctx, e.Key(), e.Value(), e.Metadata())
		default:
			continue
		}
		if cerr != nil {
			return gridchain.Fail(fmt.Errorf("wrapping: commit %q: %w", e.Key(), cerr))
		}
	}
	return gridchain.Next()
}
