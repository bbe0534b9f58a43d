// Package logging constructs the slog loggers used across the CLI.
//
// Output format (console text or JSON) and level come from application
// config. Helpers exist for attaching standardized component fields and for
// a no-op logger in tests.
package logging
