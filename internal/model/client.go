package model

import "strings"

// DietPreference is the client's declared diet type.
type DietPreference string

// Diet preference constants.
const (
	DietVeg        DietPreference = "Veg"
	DietNonVeg     DietPreference = "NonVeg"
	DietEggetarian DietPreference = "Eggetarian"
	DietVegan      DietPreference = "Vegan"
)

// ParseDietPreference maps the many spellings used upstream onto a diet type.
// Unknown or empty values default to Veg.
func ParseDietPreference(raw string) DietPreference {
	s := strings.ToLower(strings.TrimSpace(raw))
	switch {
	case strings.Contains(s, "non"):
		return DietNonVeg
	case strings.Contains(s, "egg"):
		return DietEggetarian
	case strings.Contains(s, "vegan"):
		return DietVegan
	default:
		return DietVeg
	}
}

// ClientProfile holds the dietary constraints the audit checks against.
type ClientProfile struct {
	UserID                string         `json:"user_id"`
	FirstName             string         `json:"first_name"`
	LastName              string         `json:"last_name"`
	Email                 string         `json:"email"`
	MobileNumber          string         `json:"mobile_number"`
	Gender                string         `json:"gender"`
	DietPreference        DietPreference `json:"diet_preference"`
	Allergies             []string       `json:"allergies"`
	MedicalConditions     []string       `json:"medical_conditions"`
	FoodAversions         []string       `json:"food_aversions"`
	Age                   int            `json:"age"`
	CurrentWeight         float64        `json:"current_weight"`
	TargetWeight          float64        `json:"target_weight"`
	ProgramStartWeight    float64        `json:"program_start_weight"`
	AssessmentStartWeight float64        `json:"assessment_start_weight"`
}

// FullName joins first and last name.
func (p ClientProfile) FullName() string {
	return strings.TrimSpace(p.FirstName + " " + p.LastName)
}

// ProfileOverride carries manual corrections applied on top of a fetched profile.
// Nil fields leave the fetched value untouched.
type ProfileOverride struct {
	Allergies         []string        `json:"allergies,omitempty"`
	MedicalConditions []string        `json:"medical_conditions,omitempty"`
	FoodAversions     []string        `json:"food_aversions,omitempty"`
	DietPreference    *DietPreference `json:"diet_preference,omitempty"`
}

// Apply returns a copy of p with the override applied.
func (o *ProfileOverride) Apply(p ClientProfile) ClientProfile {
	if o == nil {
		return p
	}
	if o.Allergies != nil {
		p.Allergies = o.Allergies
	}
	if o.MedicalConditions != nil {
		p.MedicalConditions = o.MedicalConditions
	}
	if o.FoodAversions != nil {
		p.FoodAversions = o.FoodAversions
	}
	if o.DietPreference != nil {
		p.DietPreference = *o.DietPreference
	}
	return p
}
