package gridchain

import (
	"context"

	"github.com/google/uuid"
)

// Pipeline threads commands through a fixed, ordered stage list. It owns no
// goroutines: an invocation runs on the caller's goroutine until a stage
// suspends, then on whichever goroutine completes the pending step.
type Pipeline struct {
	arena *arena
	log   Logger
	hooks Hooks
}

// NewContext binds a fresh cursor and invocation id to ic (a new Invocation when nil).
func (p *Pipeline) NewContext(ctx context.Context, ic InvocationContext) *PipelineContext {
	if ctx == nil {
		ctx = context.Background()
	}
	if ic == nil {
		ic = NewInvocation()
	}
	id := uuid.New()
	return &PipelineContext{
		ctx:     ctx,
		arena:   p.arena,
		end:     len(p.arena.stages),
		running: -1,
		ic:      ic,
		id:      id,
		log:     p.log.With(Fields{"invocation": id.String()}),
	}
}

// Invoke runs cmd through the stages of pc and returns the future of its result.
// The future may already be complete when Invoke returns.
func (p *Pipeline) Invoke(cmd Command, pc *PipelineContext) *Future {
	if pc == nil || pc.arena != p.arena {
		violate("Invoke", "context was not created by this pipeline")
	}
	inv := &invocation{p: p, pc: pc, cmd: cmd, out: NewFuture()}
	inv.run()
	return inv.out
}

// Execute invokes cmd with a fresh context over ic and waits for the result.
// Cancelling ctx abandons the wait, not the invocation.
func (p *Pipeline) Execute(ctx context.Context, cmd Command, ic InvocationContext) (any, error) {
	return p.Invoke(cmd, p.NewContext(ctx, ic)).Await(ctx)
}

// Len is the number of registered stages.
func (p *Pipeline) Len() int { return len(p.arena.stages) }

// Stages returns the registered stage names in order.
func (p *Pipeline) Stages() []string {
	out := make([]string, len(p.arena.names))
	copy(out, p.arena.names)
	return out
}

// invocation is the state of one Invoke call. Only one goroutine touches it at a
// time: the invoker until the first suspension, then each completer in turn.
type invocation struct {
	p   *Pipeline
	pc  *PipelineContext
	cmd Command
	out *Future

	unwinding bool
	result    any
	err       error
}

// run is the trampoline. Synchronous outcomes and futures that are already
// complete are consumed in place; only a future that is still pending parks the
// invocation, and its completion re-enters run on the completer's goroutine.
// Stack depth therefore stays constant however many stages resolve synchronously.
func (inv *invocation) run() {
	for {
		var (
			phase Phase
			name  string
			st    Step
		)
		if !inv.unwinding {
			if s, ok := inv.pc.NextInterceptor(); ok {
				phase, name = PhaseBefore, inv.pc.stageName(inv.pc.i-1)
				st = inv.callBefore(s, name)
			} else {
				phase, name = PhasePerform, NameOf(inv.cmd)
				st = inv.callPerform(name)
			}
		} else {
			s, ok := inv.pc.PreviousInterceptor()
			if !ok {
				inv.complete()
				return
			}
			// the cursor now points at s; a resumed after step continues from
			// here, so s is never stepped over twice.
			phase, name = PhaseAfter, inv.pc.stageName(inv.pc.i)
			st = inv.callAfter(s, name)
		}

		if st.fut != nil {
			// Suspended fires before the continuation is registered. A future
			// completing in between is consumed in place below.
			if st.Pending() {
				inv.p.hooks.Suspended(name, phase)
			}
			v, err, done := st.fut.registerUnlessDone(func(v any, err error) {
				inv.apply(phase, name, v, err)
				inv.run()
			})
			if !done {
				// inv may already be running elsewhere; only locals from here on.
				return
			}
			st = Resolved(v, err)
		}
		inv.apply(phase, name, st.value, st.err)
	}
}

// apply folds one resolved outcome into the invocation state.
func (inv *invocation) apply(phase Phase, name string, v any, err error) {
	switch phase {
	case PhaseBefore:
		switch classify(v, err) {
		case outcomeContinue:
		case outcomeValue:
			inv.p.hooks.ShortCircuited(name)
			inv.startUnwind(v, nil)
		case outcomeFailure:
			inv.stageFailed(name, phase, err)
			inv.startUnwind(nil, err)
		}

	case PhasePerform:
		if err == nil && v == Continue {
			cv := &ContractViolation{Op: "Perform", Detail: name + " returned Continue"}
			inv.p.hooks.ContractViolated(cv)
			v, err = nil, cv
		}
		if err != nil {
			inv.p.hooks.CommandFailed(name, err)
			v = nil
		}
		inv.startUnwind(v, err)

	case PhaseAfter:
		switch classify(v, err) {
		case outcomeContinue:
		case outcomeValue:
			inv.result, inv.err = v, nil
		case outcomeFailure:
			inv.stageFailed(name, phase, err)
			inv.result, inv.err = nil, err
		}
	}
}

func (inv *invocation) startUnwind(v any, err error) {
	inv.unwinding = true
	inv.result, inv.err = v, err
}

func (inv *invocation) stageFailed(name string, phase Phase, err error) {
	inv.p.hooks.StageFailed(name, phase, err)
	inv.pc.log.Debug("stage failed", Fields{"stage": name, "phase": string(phase), "err": err})
}

func (inv *invocation) complete() {
	inv.pc.running = -1
	if inv.err != nil {
		inv.pc.log.Debug("invocation failed", Fields{"command": NameOf(inv.cmd), "err": inv.err})
	}
	inv.out.Complete(inv.result, inv.err)
}

// The call* helpers are the failure boundary: a panic becomes a failed step and
// takes the same unwind path as a returned failure.

func (inv *invocation) callBefore(s Stage, name string) (st Step) {
	inv.pc.running = inv.pc.i - 1
	defer inv.recoverInto(&st, name, PhaseBefore)
	return s.BeforeCommand(inv.pc, inv.cmd)
}

func (inv *invocation) callAfter(s Stage, name string) (st Step) {
	inv.pc.running = inv.pc.i
	defer inv.recoverInto(&st, name, PhaseAfter)
	return s.AfterCommand(inv.pc, inv.cmd, inv.result, inv.err)
}

func (inv *invocation) callPerform(name string) (st Step) {
	inv.pc.running = -1
	defer inv.recoverInto(&st, name, PhasePerform)
	ctx := inv.pc.Context()
	if ac, ok := inv.cmd.(AsyncCommand); ok {
		return Await(ac.PerformAsync(ctx, inv.pc.ic))
	}
	v, err := inv.cmd.Perform(ctx, inv.pc.ic)
	return Step{value: v, err: err}
}

func (inv *invocation) recoverInto(st *Step, name string, phase Phase) {
	if r := recover(); r != nil {
		*st = Step{err: inv.p.fault(name, phase, r)}
	}
}

func (p *Pipeline) fault(name string, phase Phase, r any) error {
	if cv, ok := r.(*ContractViolation); ok {
		p.hooks.ContractViolated(cv)
		p.log.Error("contract violation", Fields{"source": name, "phase": string(phase), "err": cv.Error()})
		return cv
	}
	err := panicError(r)
	p.log.Warn("panic recovered", Fields{"source": name, "phase": string(phase), "err": err.Error()})
	if phase == PhasePerform {
		return &CommandError{Command: name, Err: err}
	}
	return &StageError{Stage: name, Phase: phase, Err: err}
}
