// Package recommend scores processed content against per-category keyword
// weights and resolves the idempotent per-user-per-day archive of ranked
// exposures.
package recommend
