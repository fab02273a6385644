// Package store manages newsdesk persistence backed by SQLite: ingested
// content, exposures, keyword weights, per-day rate limit counters, and daily
// archives. All timestamps are stored as UTC RFC3339Nano strings; calendar-day
// keys use the YYYY-MM-DD form produced by DayKey.
package store
