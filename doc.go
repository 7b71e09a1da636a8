// Package flowdag executes a directed acyclic graph of tasks, skipping
// any task whose declared targets compare unchanged since its last
// successful run, and propagating failure to every task downstream of one
// that failed instead of running it. Only targets are fingerprinted: a
// change to a task's Depends alone does not make it run again.
//
// Runners
//   - SerialLocalRunner: one task at a time, in this goroutine.
//   - ParallelLocalRunner: a fixed-size in-process worker pool. Like
//     SerialLocalRunner it runs callable actions and TrackedFunction
//     dependencies in-process.
//   - GridRunner: N named pools, each goroutine- or process-backed,
//     routed to by task. Process-backed pools only accept shell-command
//     actions, since a Go func value cannot be shipped to a subprocess.
//   - DryRunner: prints what a run would do without executing anything.
//
// Dependency and target objects (tracked files, directories, glob
// patterns, executables, strings, functions, and references to other
// tasks) live in the target package and are shared by every runner.
package flowdag
