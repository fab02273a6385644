// Package ingest polls RSS/Atom feeds, extracts readable article text, and
// stores new entries as unprocessed content items.
package ingest
