// Package preflight runs the environment checks behind `subburn check` and
// server startup: directory permissions, free disk space in the job
// workspace, external tools, the blob store and provider credentials.
package preflight
