// Package transcriptcache persists provider transcripts in SQLite so repeated
// requests for the same media skip the remote transcription round trip.
//
// Entries are keyed by a caller-supplied source key (typically the media URL
// or the SHA-256 of a local file) and store the provider transcript ID next to
// the JSON-encoded utterances. Busy databases are retried with a short
// exponential backoff.
package transcriptcache
