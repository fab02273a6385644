// Package gemini wraps the Gemini generateContent API: the ordered model
// catalog with quota limits, a JSON-mode HTTP client, prompt builders, and
// schema-enforcing response decoding.
package gemini
