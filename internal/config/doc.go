// Package config loads, normalizes, and validates plex-meta-migrator
// configuration data.
//
// It supplies repository defaults, expands user paths (including tilde
// shortcuts), reads TOML files, and honours environment fallbacks such as
// PLEX_CREDS_FILE. The Config type centralizes every knob the CLI needs:
// source and destination server endpoints, credential cache location,
// matching behaviour, logging, and the run-history store.
//
// Always obtain settings through this package so downstream code receives
// sanitized paths, canonical log formats, and clear validation errors.
package config
