// Package batch selects unprocessed content, validates batch sizes, drives
// the analysis orchestrator once per run under a single-flight guard, and
// persists the resulting exposures with a deterministic per-item fallback.
package batch
