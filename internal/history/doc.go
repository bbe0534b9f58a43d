// Package history persists a log of migration runs in SQLite.
//
// Each run records its mode, whether it was a dry run, the libraries
// involved, and the matched/migrated/copied/error totals. The CLI's history
// command reads recent runs back for display.
package history
