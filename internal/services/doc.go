// Package services defines shared utilities consumed by the pipeline service,
// the HTTP API and external integrations.
//
// Key responsibilities:
//   - Context helpers that stamp job IDs, stage names, and correlation
//     identifiers for logging.
//   - Structured error markers plus the Wrap helper, and the HTTPStatus and
//     ErrorType mappings the API layer uses to report failures.
//
// Use these helpers when wiring new collaborators so error handling and
// observability stay uniform across the pipeline.
package services
