// Package orchestrator runs one hot-reload build cycle.
//
// A run probes whether the game process is alive and picks a mode once:
//
//   - ColdStart: clean stale libraries and debug symbols, reset and
//     increment the counter, build the library, build the host executable
//     and stage the runtime dependency.
//   - HotReload: increment the counter from its current value and rebuild
//     only the library under a fresh symbol file name.
//
// The first failing step aborts the run with a classified error. Metrics,
// journal and notification side effects never fail a run.
package orchestrator
