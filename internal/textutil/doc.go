// Package textutil contains small text helpers shared by ingestion and batch
// processing.
package textutil
