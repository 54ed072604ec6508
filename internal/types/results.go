package types

// RecipeIdeaCount is the exact number of recipe ideas in every DietResult
const RecipeIdeaCount = 5

// InventoryResult is the outcome of the inventory filtering stage
type InventoryResult struct {
	UsableItems []string `json:"usable_items"`
	Message     string   `json:"message"`
	// Degraded is set when the result was computed locally after the
	// completion call failed.
	Degraded bool `json:"-"`
}

// DietResult is the outcome of the diet filtering stage
type DietResult struct {
	CompatibleItems []string `json:"compatible_items"`
	RecipeIdeas     []string `json:"suggested_recipe_ideas"`
	Degraded        bool     `json:"-"`
}

// AskResult merges both stages for POST /ask
type AskResult struct {
	UsableItems  []string `json:"usable_items"`
	DietFiltered []string `json:"diet_filtered"`
	Suggestions  []string `json:"suggestions"`
}
