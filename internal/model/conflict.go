package model

import "unicode/utf8"

// ConflictType classifies why a dish was flagged.
type ConflictType string

// Conflict type constants.
const (
	ConflictAllergy           ConflictType = "allergy"
	ConflictAversion          ConflictType = "aversion"
	ConflictDietTypeViolation ConflictType = "diet_type_violation"
	ConflictMedical           ConflictType = "medical_conflict"
)

// MinConflictNameLength is the shortest dish name that can be located in markup.
const MinConflictNameLength = 2

// ConflictTypes lists every accepted conflict type.
func ConflictTypes() []ConflictType {
	return []ConflictType{
		ConflictAllergy,
		ConflictAversion,
		ConflictDietTypeViolation,
		ConflictMedical,
	}
}

// IsValid reports whether t is one of the fixed conflict types.
func (t ConflictType) IsValid() bool {
	switch t {
	case ConflictAllergy, ConflictAversion, ConflictDietTypeViolation, ConflictMedical:
		return true
	}
	return false
}

// Marker describes how a conflict type is rendered in markup.
type Marker struct {
	Label      string
	Color      string
	Background string
}

// Marker returns the display label and colours for the conflict type.
func (t ConflictType) Marker() Marker {
	switch t {
	case ConflictAllergy:
		return Marker{Label: "ALLERGY", Color: "#DC2626", Background: "#FEE2E2"}
	case ConflictDietTypeViolation:
		return Marker{Label: "DIET VIOLATION", Color: "#B45309", Background: "#FEFCE8"}
	case ConflictAversion:
		return Marker{Label: "AVERSION", Color: "#EA580C", Background: "#FFF7ED"}
	case ConflictMedical:
		return Marker{Label: "MEDICAL", Color: "#C2410C", Background: "#FFF7ED"}
	default:
		return Marker{Label: "CONFLICT", Color: "#EA580C", Background: "#FFF7ED"}
	}
}

// Conflict is one dish flagged by the classifier.
type Conflict struct {
	DishName              string       `json:"dish_name"`
	ConflictingIngredient string       `json:"conflicting_ingredient"`
	Type                  ConflictType `json:"conflict_type"`
	Reason                string       `json:"reason"`
}

// Locatable reports whether the dish name is long enough to be searched for.
func (c Conflict) Locatable() bool {
	return utf8.RuneCountInString(c.DishName) >= MinConflictNameLength
}

// Trace records one successful in-markup replacement.
type Trace struct {
	Slot        string       `json:"slot"`
	DishName    string       `json:"dish_name"`
	MatchedText string       `json:"matched_text"`
	Type        ConflictType `json:"conflict_type"`
	Fallback    bool         `json:"fallback,omitempty"`
}
