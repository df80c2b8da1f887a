package model

// AuditResult is the outcome of one audit run.
type AuditResult struct {
	AuditID       string     `json:"audit_id"`
	Conflicts     []Conflict `json:"conflicts"`
	Slots         []MealSlot `json:"slots"`
	Traces        []Trace    `json:"traces,omitempty"`
	ConflictCount int        `json:"conflict_count"`
}
