// Package config loads, normalizes, and validates subburn configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// ASSEMBLYAI_API_KEY and SUBBURN_S3_ACCESS_KEY. The Config type centralizes
// every knob the server and CLI need so work directories, storage credentials
// and subtitle styling are discovered in one pass.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
