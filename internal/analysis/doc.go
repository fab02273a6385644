// Package analysis drives content analysis across the ranked model catalog,
// degrading gracefully when individual models are quota-limited or return
// unparseable output.
package analysis
