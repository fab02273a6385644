// Package daemon wires the workflow manager into a long-running process.
//
// A file lock under the log directory guards against concurrent daemon
// instances; Start acquires the lock and launches the processing loops, Stop
// tears them down and releases it.
package daemon
