// Package plex supplies the HTTP clients for both sides of a migration.
//
// ServerClient talks to a Plex Media Server directly: library sections, item
// listings with media part file paths, item details with locked-field flags,
// metadata edits, image uploads, and playlists. AccountClient talks to
// plex.tv for username/password sign-in and for discovering the servers an
// account can reach. Cached credentials live in a flock-guarded JSON file so
// repeat runs skip the sign-in step.
//
// Reuse these clients when adding new Plex-related behaviours instead of
// reinventing HTTP glue elsewhere.
package plex
