// Package logging builds the slog loggers used across newsdesk and provides
// shared attribute helpers and field name constants so log output stays
// consistent between the daemon and the CLI.
package logging
