package gridchain

import (
	"context"
	"fmt"
	"strings"
)

// Command is one cache operation. It is immutable for the duration of an
// invocation; Perform reads and writes through the InvocationContext only.
type Command interface {
	Perform(ctx context.Context, ic InvocationContext) (any, error)
	// NeedsExistingValues reports whether Perform inspects prior state. Blind
	// writes return false so stages can skip loading.
	NeedsExistingValues() bool
}

// AsyncCommand is a Command whose execution may itself suspend. When implemented,
// the pipeline calls PerformAsync instead of Perform.
type AsyncCommand interface {
	Command
	PerformAsync(ctx context.Context, ic InvocationContext) *Future
}

// Keyed commands address one or more keys.
type Keyed interface {
	Keys() []string
}

// FlagAffected commands carry behaviour flags.
type FlagAffected interface {
	Flags() Flags
}

type Flags uint32

const (
	// SkipCacheLoad: never consult the persistent store.
	SkipCacheLoad Flags = 1 << iota
	// SkipCacheStore: never write through to the persistent store.
	SkipCacheStore
	// SkipOwnershipCheck: load/store regardless of key locality.
	SkipOwnershipCheck
)

func (f Flags) Has(x Flags) bool { return f&x == x }

func (f Flags) String() string {
	if f == 0 {
		return "none"
	}
	var parts []string
	for _, n := range []struct {
		flag Flags
		name string
	}{
		{SkipCacheLoad, "skip_cache_load"},
		{SkipCacheStore, "skip_cache_store"},
		{SkipOwnershipCheck, "skip_ownership_check"},
	} {
		if f.Has(n.flag) {
			parts = append(parts, n.name)
		}
	}
	return strings.Join(parts, "|")
}

// FlagsOf returns cmd's flags, or zero when it carries none.
func FlagsOf(cmd Command) Flags {
	if fa, ok := cmd.(FlagAffected); ok {
		return fa.Flags()
	}
	return 0
}

// KeysOf returns the keys cmd addresses, or nil for keyless commands.
func KeysOf(cmd Command) []string {
	if k, ok := cmd.(Keyed); ok {
		return k.Keys()
	}
	return nil
}

// Named lets commands and stages choose the name used in logs and hooks.
type Named interface {
	Name() string
}

// NameOf returns v's Name, or its type name without the package path.
func NameOf(v any) string {
	if n, ok := v.(Named); ok {
		return n.Name()
	}
	s := fmt.Sprintf("%T", v)
	s = strings.TrimLeft(s, "*")
	if i := strings.LastIndexByte(s, '.'); i >= 0 {
		s = s[i+1:]
	}
	return s
}
