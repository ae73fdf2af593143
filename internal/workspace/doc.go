// Package workspace owns the on-disk build layout: the output directory that
// receives the library, executable and staged runtime dependency, and the
// debug-symbol directory that holds one versioned symbol file per build plus
// the build counter.
//
// A cold start (no running game process) resets the layout: stale libraries
// matching the configured pattern are removed from the output directory, every
// symbol file is removed and the counter goes back to zero. Nothing else in the
// output directory is touched, so the executable and the staged dependency
// survive between cold starts.
package workspace
