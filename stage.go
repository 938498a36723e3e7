package gridchain

// Stage is a cross-cutting concern hooked around command execution.
//
// A stage is registered once and shared by every concurrent invocation, so it
// must keep no per-invocation state in its own fields: anything an invocation
// needs goes into the PipelineContext (Set/Value) or into Entries.
// Hooks may be resumed on any goroutine and must not hold locks across a
// pending Step.
type Stage interface {
	// BeforeCommand runs in registration order. A non-continue value ends the
	// forward phase without running the command or the remaining stages.
	BeforeCommand(pc *PipelineContext, cmd Command) Step
	// AfterCommand runs in reverse order for every stage whose BeforeCommand
	// ran. Next keeps (result, err); Return replaces the result and clears err;
	// Fail replaces err.
	AfterCommand(pc *PipelineContext, cmd Command, result any, err error) Step
}

// NopStage can be embedded by stages that implement only one hook.
type NopStage struct{}

func (NopStage) BeforeCommand(*PipelineContext, Command) Step           { return Next() }
func (NopStage) AfterCommand(*PipelineContext, Command, any, error) Step { return Next() }

// Phase names the step of an invocation that produced an event.
type Phase string

const (
	PhaseBefore  Phase = "before"
	PhasePerform Phase = "perform"
	PhaseAfter   Phase = "after"
)
