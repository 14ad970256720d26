// Package models contains shared data models used across the prospector codebase.
package models

import "strings"

// ResultRecord is one discovered business. Every field is optional; nil
// means the scraper found nothing for it. Email may hold a comma-joined
// list when a business exposes several addresses.
type ResultRecord struct {
	Name    *string `json:"name,omitempty"`
	Phone   *string `json:"phone,omitempty"`
	Website *string `json:"website,omitempty"`
	Email   *string `json:"email,omitempty"`
	Rating  *string `json:"rating,omitempty"`
	Reviews *string `json:"reviews,omitempty"`
}

// Backends historically filled missing fields with placeholder text
// instead of omitting them. Normalization strips these at the boundary so
// the core only ever sees nil for absence.
var sentinelValues = map[string]bool{
	"":           true,
	"n/a":        true,
	"none":       true,
	"none found": true,
}

// NormalizeField maps a raw backend string to an optional value, treating
// known placeholder text as absent.
func NormalizeField(raw string) *string {
	trimmed := strings.TrimSpace(raw)
	if sentinelValues[strings.ToLower(trimmed)] {
		return nil
	}
	return &trimmed
}

// FieldOrEmpty unwraps an optional field for display and serialization.
func FieldOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

// CloneResults deep-copies a result snapshot. Stored snapshots are
// immutable; callers always hand out copies, never the backing array.
func CloneResults(records []ResultRecord) []ResultRecord {
	if records == nil {
		return nil
	}
	out := make([]ResultRecord, len(records))
	copy(out, records)
	for i := range out {
		out[i].Name = cloneField(out[i].Name)
		out[i].Phone = cloneField(out[i].Phone)
		out[i].Website = cloneField(out[i].Website)
		out[i].Email = cloneField(out[i].Email)
		out[i].Rating = cloneField(out[i].Rating)
		out[i].Reviews = cloneField(out[i].Reviews)
	}
	return out
}

func cloneField(v *string) *string {
	if v == nil {
		return nil
	}
	s := *v
	return &s
}
