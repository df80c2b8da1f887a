package model

// DishEntry is one atomic food item extracted from a slot.
type DishEntry struct {
	MealLabel string `json:"meal_label"`
	RawLine   string `json:"raw_line"`
	ShortName string `json:"short_name"`
}

// EnrichedDish is a dish name with its likely ingredients.
type EnrichedDish struct {
	Name        string   `json:"name"`
	Ingredients []string `json:"ingredients"`
}

// Recipe is one entry of the recipe catalogue.
type Recipe struct {
	ID          string   `json:"id"`
	Name        string   `json:"name"`
	Description string   `json:"description,omitempty"`
	Category    string   `json:"category,omitempty"`
	SubCategory string   `json:"sub_category,omitempty"`
	Cuisine     string   `json:"cuisine,omitempty"`
	RecipeType  string   `json:"recipe_type,omitempty"`
	Ingredients []string `json:"ingredients,omitempty"`
	Image       string   `json:"image,omitempty"`
	URL         string   `json:"url,omitempty"`
}
