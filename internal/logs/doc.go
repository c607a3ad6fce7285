// Package logs reads the server's daily JSON log files.
//
// Tail returns the last N records (or everything after a byte offset) with
// bounded memory, optionally waiting for new records in follow mode. A Filter
// narrows the output to one embed job, one API request, a minimum level or an
// event type, matching the standardized keys written by internal/logging.
package logs
