// Package migrate copies locked metadata fields and playlists between two
// Plex libraries.
//
// A metadata run builds per-item plans from the source item's locked fields,
// then either previews them (dry run) or applies them against the destination
// server: scalar fields via metadata edits, tag collections via tag-list
// edits, and images by re-uploading from a token-bearing source URL. Every
// copied field is locked on the destination, mirroring the source.
package migrate
