// Package watch re-runs a build whenever source files change.
//
// Two change sources are supported: fsnotify events on every directory
// below the root (debounced), and a gocron duration job comparing tree
// fingerprints for filesystems that do not deliver notifications. In both
// cases runs are executed one at a time on the goroutine that called Run;
// changes seen while a run is in progress collapse into a single follow-up
// run.
package watch
