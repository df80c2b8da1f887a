// Package model defines the core domain models used throughout the application.
package model

// MealSlot is one labeled section of a diet plan, e.g. "Breakfast".
// HTML is authoritative and is never modified in place.
type MealSlot struct {
	Title string `json:"title"`
	HTML  string `json:"html"`
}

// DietTemplate is a named diet plan made of ordered meal slots.
type DietTemplate struct {
	ID     string     `json:"id"`
	Name   string     `json:"name"`
	Status string     `json:"status"`
	Note   string     `json:"note,omitempty"`
	Slots  []MealSlot `json:"slots"`
}

// CloneSlots returns a copy of the slots so callers can modify the result
// without touching the originals.
func CloneSlots(slots []MealSlot) []MealSlot {
	if slots == nil {
		return nil
	}
	out := make([]MealSlot, len(slots))
	copy(out, slots)
	return out
}
