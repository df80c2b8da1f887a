package upstream

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/Veraticus/plate-audit/internal/common"
	"github.com/Veraticus/plate-audit/internal/model"
)

// DefaultRecipeLimit is the catalogue page size when none is given.
const DefaultRecipeLimit = 50

// RecipePage is one page of the recipe catalogue.
type RecipePage struct {
	Recipes    []model.Recipe `json:"recipes"`
	TotalCount int            `json:"total_count"`
}

// FetchRecipes lists one page of the recipe catalogue.
func (c *Client) FetchRecipes(ctx context.Context, page, limit int) (RecipePage, error) {
	if c.cfg.RecipeURL == "" {
		return RecipePage{}, fmt.Errorf("%w: upstream.recipe_url", common.ErrMissingConfig)
	}
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultRecipeLimit
	}

	endpoint := RecipeListURL(c.cfg.RecipeURL)
	var payload any
	err := c.do(ctx, http.MethodPost, endpoint, c.cfg.TemplateSource,
		map[string]int{"page": page, "limit": limit}, &payload)
	if err != nil {
		return RecipePage{}, err
	}

	items, total := recipeItems(payload)
	result := RecipePage{
		Recipes:    make([]model.Recipe, 0, len(items)),
		TotalCount: total,
	}
	for _, item := range items {
		if raw := asObject(item); raw != nil {
			result.Recipes = append(result.Recipes, mapRecipe(raw))
		}
	}

	c.logger.Debug("recipes fetched",
		"page", page,
		"count", len(result.Recipes),
		"total", result.TotalCount)

	return result, nil
}

// RecipeListURL is the inverse of BatchSearchURL: a batch-search endpoint is
// mapped back to the /all listing.
func RecipeListURL(recipeURL string) string {
	if idx := strings.LastIndex(recipeURL, "/batch-search"); idx >= 0 {
		return recipeURL[:idx] + "/all"
	}
	return recipeURL
}

// recipeItems accepts [{data:[...], totalCount}], the unwrapped object and a
// bare list of recipes.
func recipeItems(payload any) ([]any, int) {
	wrapper := payload
	if list, ok := payload.([]any); ok {
		if len(list) == 0 {
			return nil, 0
		}
		first := asObject(list[0])
		if first == nil || first["data"] == nil {
			return list, len(list)
		}
		wrapper = first
	}

	obj := asObject(wrapper)
	if obj == nil {
		return nil, 0
	}
	items, _ := obj["data"].([]any)
	return items, int(asNumber(obj["totalCount"]))
}

func mapRecipe(raw map[string]any) model.Recipe {
	recipe := model.Recipe{
		ID:          asString(firstValue(raw, "id", "_id")),
		Name:        asString(firstValue(raw, "title", "name", "recipe_name")),
		Description: asString(firstValue(raw, "description", "short_description")),
		Category:    asString(raw["category"]),
		SubCategory: asString(raw["sub_category"]),
		Cuisine:     asString(raw["cuisine"]),
		RecipeType:  asString(raw["recipe_type"]),
		Image:       asString(firstValue(raw, "image", "image_url")),
		URL:         asString(firstValue(raw, "web_url", "url")),
	}
	if recipe.Name == "" {
		recipe.Name = "Untitled Recipe"
	}
	if list, ok := raw["ingredients"].([]any); ok {
		for _, v := range list {
			if s, err := listItem(v); err == nil && strings.TrimSpace(s) != "" {
				recipe.Ingredients = append(recipe.Ingredients, strings.TrimSpace(s))
			}
		}
	}
	return recipe
}
