package gridchain

import (
	"errors"
	"fmt"
)

// ErrContractViolation matches every *ContractViolation via errors.Is.
var ErrContractViolation = errors.New("gridchain: contract violation")

// ContractViolation reports a stage or command bug: reading a derived Entry
// predicate before the old value is known, leaking Continue as a result, failing
// with a nil error. It is raised by panic and surfaces as the invocation's error.
type ContractViolation struct {
	Op     string
	Detail string
}

func (e *ContractViolation) Error() string {
	return fmt.Sprintf("gridchain: contract violation in %s: %s", e.Op, e.Detail)
}

func (e *ContractViolation) Is(target error) bool { return target == ErrContractViolation }

func violate(op, detail string) {
	panic(&ContractViolation{Op: op, Detail: detail})
}

// StageError wraps a panic raised inside a stage hook. Errors returned through
// Fail or a failed future are propagated unwrapped.
type StageError struct {
	Stage string
	Phase Phase
	Err   error
}

func (e *StageError) Error() string {
	return fmt.Sprintf("gridchain: stage %s failed in %s: %v", e.Stage, e.Phase, e.Err)
}

func (e *StageError) Unwrap() error { return e.Err }

// CommandError wraps a panic raised inside Command.Perform.
type CommandError struct {
	Command string
	Err     error
}

func (e *CommandError) Error() string {
	return fmt.Sprintf("gridchain: command %s failed: %v", e.Command, e.Err)
}

func (e *CommandError) Unwrap() error { return e.Err }

func panicError(r any) error {
	switch v := r.(type) {
	case error:
		return v
	default:
		return fmt.Errorf("panic: %v", v)
	}
}
