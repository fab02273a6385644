// Package workflow runs the background processing loops.
//
// The Manager owns three loops: ingest sweeps the configured feeds for new
// content, batch drains unprocessed content through AI analysis in fixed-size
// batches, and maintenance prunes stale rate limit counters. Each loop backs
// off on errors and shuts down when the daemon context is cancelled. When the
// daily AI request limit is exhausted the batch loop pauses until the next UTC
// day instead of retrying.
package workflow
