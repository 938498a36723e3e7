package gridchain

import (
	"context"

	"github.com/google/uuid"
)

// arena is the immutable stage list shared by a pipeline and all of its contexts.
type arena struct {
	stages []Stage
	names  []string
}

// PipelineContext is the cursor of one invocation over the pipeline's stages.
//
// The cursor i moves forward while BeforeCommand hooks run and backward while
// AfterCommand hooks run. It is the only continuation state: after a suspension
// the pipeline resumes from wherever i points. A context belongs to exactly one
// invocation and may be handed between goroutines, never shared by them.
type PipelineContext struct {
	ctx   context.Context
	arena *arena
	start int
	end   int
	i     int
	// running is the arena index of the stage whose hook is executing, or -1.
	running int

	ic     InvocationContext
	id     uuid.UUID
	log    Logger
	locals map[any]any
}

// Context returns the context.Context of the invocation.
func (pc *PipelineContext) Context() context.Context { return pc.ctx }

// SetContext replaces the invocation's context.Context for the stages and the
// command that run after the caller (e.g. to parent I/O under a span).
func (pc *PipelineContext) SetContext(ctx context.Context) {
	if ctx != nil {
		pc.ctx = ctx
	}
}

// Invocation returns the domain context bound to this invocation.
func (pc *PipelineContext) Invocation() InvocationContext { return pc.ic }

// ID identifies the invocation in logs and traces.
func (pc *PipelineContext) ID() uuid.UUID { return pc.id }

// Logger returns the pipeline logger bound to this invocation's id.
func (pc *PipelineContext) Logger() Logger { return pc.log }

// Set stores per-invocation state for a stage. Use an unexported key type.
func (pc *PipelineContext) Set(key, v any) {
	if pc.locals == nil {
		pc.locals = make(map[any]any, 2)
	}
	pc.locals[key] = v
}

func (pc *PipelineContext) Value(key any) any { return pc.locals[key] }

// NextInterceptor returns the stage at the cursor and advances it. ok is false
// once every stage of the view has been passed: the command runs next.
func (pc *PipelineContext) NextInterceptor() (s Stage, ok bool) {
	if pc.i >= pc.end {
		return nil, false
	}
	s = pc.arena.stages[pc.i]
	pc.i++
	return s, true
}

// PreviousInterceptor steps the cursor back and returns the stage there. ok is
// false once the cursor is back at the start of the view: unwinding is complete.
func (pc *PipelineContext) PreviousInterceptor() (s Stage, ok bool) {
	if pc.i <= pc.start {
		return nil, false
	}
	pc.i--
	return pc.arena.stages[pc.i], true
}

// SubContext returns a context over the same stage list that starts right after
// the stage currently running, in either of its hooks. Re-entering a command
// with it skips the running stage and every stage before it. Outside a stage
// hook the view starts at the cursor. Locals are not shared; the invocation
// context and id are.
func (pc *PipelineContext) SubContext() *PipelineContext {
	start := pc.i
	if pc.running >= 0 {
		start = pc.running + 1
	}
	return &PipelineContext{
		ctx:     pc.ctx,
		arena:   pc.arena,
		start:   start,
		end:     pc.end,
		i:       start,
		running: -1,
		ic:      pc.ic,
		id:      pc.id,
		log:     pc.log,
	}
}

// Position is the cursor relative to the start of the view.
func (pc *PipelineContext) Position() int { return pc.i - pc.start }

// Len is the number of stages in the view.
func (pc *PipelineContext) Len() int { return pc.end - pc.start }

func (pc *PipelineContext) stageName(i int) string { return pc.arena.names[i] }
