// Package daemonrun wires configuration into a running subburn server:
// logger construction, pipeline collaborators (transcription client,
// transcript cache, blob store), the HTTP router, and signal handling.
//
// NewPipeline is shared with the CLI so one-shot commands and the server
// build the subtitle service identically.
package daemonrun
