// Package gridchain implements the command-dispatch core of an in-memory data grid:
// every cache operation is a Command that travels through an ordered, shared list of
// Stages before and after it is applied.
//
// Components:
//   - Command: one operation (get, put, remove, invalidate...) with Perform and a
//     NeedsExistingValues hint.
//   - Stage: a cross-cutting concern (loading, writing, versioning, stats, tracing)
//     with BeforeCommand/AfterCommand hooks that return a maybe-pending Step.
//   - PipelineContext: the per-invocation cursor over the stage list. The cursor is
//     the continuation; nothing else is captured across a suspension.
//   - Pipeline: drives the forward phase, runs the command, then unwinds the after
//     phase in reverse. Invoke returns a Future.
//   - Entry: per-key old/new value record scoped to one invocation.
//
// Flow:
//
//	p, _ := gridchain.New(gridchain.Options{Stages: []gridchain.Stage{loader, writer}})
//	pc := p.NewContext(ctx, gridchain.NewInvocation())
//	v, err := p.Invoke(commands.Get{Key: "k"}, pc).Await(ctx)
//
// Stage outcomes:
//
//	Next()        proceed (same as Return(nil) or Return(Continue))
//	Return(v)     before: short-circuit with v. after: replace the result
//	Fail(err)     failure; unwinds with err
//	Await(f)      suspend until f completes, then classify its (value, err) as above
//
// Synchronous outcomes and already-completed futures are handled in a loop; a
// pending future parks the invocation and the goroutine completing it resumes the
// loop. No goroutine or recursion is added per stage.
package gridchain
