// Package executor provides sandboxed execution of short code snippets.
//
// The executor package is the code-execution engine: it detects the
// language of a snippet, screens it against a deny-list of dangerous
// patterns, runs it in a subprocess placed in its own process group
// with a hard wall-clock deadline, and bounds the captured output.
// Blocking subprocess work happens on a small fixed-size worker pool so
// callers are never blocked on child I/O and the host never sees an
// unbounded number of spawned processes.
//
// The screening step is a best-effort filter, not a hardened sandbox:
// there is no container, VM, or seccomp isolation, and the deny-list is
// bypassable by construction. Callers needing real isolation must wrap
// this engine in one.
//
// Usage:
//
//	svc, err := executor.NewService(logger, executor.Config{Workers: 2})
//	if err != nil {
//	    log.Fatal(err)
//	}
//	svc.Start()
//	defer svc.Close()
//
//	result := svc.Execute(ctx, executor.Request{Code: "print('hi')"})
package executor
