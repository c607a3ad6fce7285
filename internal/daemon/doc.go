// Package daemon owns the lifecycle of the long-running subburn server.
//
// A Daemon holds a flock-based single-instance lock in the state directory,
// runs startup maintenance (stale job directories, expired logs and cached
// transcripts), and serves the HTTP API on the configured bind address until
// its context is cancelled. Request handling lives in internal/api; process
// wiring (logger, pipeline collaborators, signals) lives in internal/daemonrun.
package daemon
