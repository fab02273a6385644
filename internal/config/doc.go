// Package config loads, normalizes, and validates the TOML configuration
// shared by the newsdesk daemon and CLI.
package config
