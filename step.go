package gridchain

type sentinel struct{ name string }

func (s *sentinel) String() string { return "gridchain." + s.name }

// Continue is the reserved "no special result, proceed" value. Stages that only
// have a future to return complete it with Continue (or nil) to let the traversal
// go on. It never becomes the result of an invocation.
var Continue any = &sentinel{name: "Continue"}

// Step is the maybe-pending outcome of a stage hook.
type Step struct {
	value any
	err   error
	fut   *Future
}

// Next proceeds with the traversal.
func Next() Step { return Step{} }

// Return carries a value. Nil and Continue are treated as Next. A future or a
// step is not a value: suspend with Await instead.
func Return(v any) Step {
	switch v.(type) {
	case *Future:
		violate("Return", "future passed as a value; use Await")
	case Step:
		violate("Return", "step passed as a value")
	}
	return Step{value: v}
}

// Fail carries a failure. A nil error is a stage bug.
func Fail(err error) Step {
	if err == nil {
		violate("Fail", "nil error")
	}
	return Step{err: err}
}

// Await suspends the traversal until f completes.
func Await(f *Future) Step {
	if f == nil {
		violate("Await", "nil future")
	}
	return Step{fut: f}
}

// Resolved builds a step from a (value, error) pair.
func Resolved(v any, err error) Step { return Step{value: v, err: err} }

// Pending reports whether the step is still waiting on its future.
func (s Step) Pending() bool {
	if s.fut == nil {
		return false
	}
	_, _, ok := s.fut.Result()
	return !ok
}

type outcomeKind uint8

const (
	outcomeContinue outcomeKind = iota
	outcomeValue
	outcomeFailure
)

// classify maps a resolved (value, error) pair onto the stage outcome it stands for.
// Synchronous steps and completed futures go through the same function, which is
// what keeps the two indistinguishable downstream.
func classify(v any, err error) outcomeKind {
	switch {
	case err != nil:
		return outcomeFailure
	case v == nil || v == Continue:
		return outcomeContinue
	default:
		return outcomeValue
	}
}
