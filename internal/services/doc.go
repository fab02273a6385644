// Package services defines the shared error taxonomy used by the AI pipeline
// and its callers to classify failures without exception-style control flow.
package services
