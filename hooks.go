package gridchain

// Hooks lightweight callbacks for high-signal events.
// Implementations MUST be cheap and non-blocking.
// The pipeline and the bundled stages call them on hot paths, possibly from the
// goroutine that completed a pending step.
type Hooks interface {
	// A stage hook failed (returned failure, failed future or panic).
	StageFailed(stage string, phase Phase, err error)

	// Command.Perform failed.
	CommandFailed(command string, err error)

	// A stage returned a pending step and the invocation parked.
	Suspended(stage string, phase Phase)

	// A stage ended the forward phase with a value; the command did not run.
	ShortCircuited(stage string)

	// A contract violation surfaced as an invocation failure.
	ContractViolated(err *ContractViolation)

	// The loader pulled key from the persistent store into the invocation.
	EntryLoaded(key string)

	// A write-through to the persistent store failed for key.
	StoreWriteFailed(key string, err error)
}

// NopHooks is the default no-op
type NopHooks struct{}

func (NopHooks) StageFailed(string, Phase, error)     {}
func (NopHooks) CommandFailed(string, error)          {}
func (NopHooks) Suspended(string, Phase)              {}
func (NopHooks) ShortCircuited(string)                {}
func (NopHooks) ContractViolated(*ContractViolation) {}
func (NopHooks) EntryLoaded(string)                   {}
func (NopHooks) StoreWriteFailed(string, error)       {}
