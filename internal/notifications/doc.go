// Package notifications delivers pipeline events via ntfy.
//
// The default implementation publishes to the topic configured in config.toml
// and gracefully degrades to a no-op when notifications are disabled. Pipeline
// code depends only on the Service interface, so alternative transports can be
// plugged in without touching callers.
package notifications
