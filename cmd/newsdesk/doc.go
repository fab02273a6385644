// Package main hosts the newsdesk CLI entrypoint and command graph.
//
// The Cobra-based command tree covers daemon startup, one-shot ingest and
// analysis runs, archive resolution, preference management, and configuration
// scaffolding. It centralizes configuration resolution and store access so
// subcommands can focus on user experience instead of wiring.
//
// Keep this package lean: add new functionality by extending the internal
// packages first, then surface it through dedicated commands or flags here.
package main
