// Package entity defines the domain models for the symbollist feature.
package entity

// Symbol is one ticker in the scan universe.
// Inactive symbols are kept for history but skipped by ingest and scan.
type Symbol struct {
	Code     string
	Name     string
	Exchange string
	Active   bool
	SortKey  int
}
