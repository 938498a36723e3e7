package gridchain

import (
	"fmt"
)

// Options configure a Pipeline. Stages is the ordered list fixed for the
// lifetime of the cache; the rest have sensible defaults.
type Options struct {
	Stages []Stage

	Logger Logger // if nil, NopLogger is used
	Hooks  Hooks  // if nil, NopHooks is used
}

// New builds a pipeline over a private copy of opts.Stages.
func New(opts Options) (*Pipeline, error) {
	a := &arena{
		stages: make([]Stage, len(opts.Stages)),
		names:  make([]string, len(opts.Stages)),
	}
	seen := make(map[string]int, len(opts.Stages))
	for i, s := range opts.Stages {
		if s == nil {
			return nil, fmt.Errorf("gridchain: stage %d is nil", i)
		}
		name := NameOf(s)
		if n := seen[name]; n > 0 {
			name = fmt.Sprintf("%s#%d", name, n)
		}
		seen[NameOf(s)]++
		a.stages[i] = s
		a.names[i] = name
	}

	p := &Pipeline{
		arena: a,
		log:   LoggerOr(opts.Logger),
		hooks: HooksOr(opts.Hooks),
	}
	p.log.Debug("pipeline built", Fields{"stages": p.Stages()})
	return p, nil
}

// MustNew is like New but panics on error. Handy in tests and examples.
func MustNew(opts Options) *Pipeline {
	p, err := New(opts)
	if err != nil {
		panic(err)
	}
	return p
}
