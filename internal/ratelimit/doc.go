// Package ratelimit provides per-model admission control over two independent
// quota dimensions: a process-local requests-per-minute token bucket and a
// persisted requests-per-day counter incremented atomically in the store.
package ratelimit
