package upstream

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/Veraticus/plate-audit/internal/extract"
)

// Enrich looks up likely ingredients for dish names. Results are keyed by the
// requested name. Cached names are never re-requested, and the remainder go
// out in one batch bounded by the enrichment timeout. Any failure degrades to
// fewer results and is logged, never returned.
func (c *Client) Enrich(ctx context.Context, names []string) map[string][]string {
	result := make(map[string][]string, len(names))
	if len(names) == 0 {
		return result
	}

	keys := make([]string, len(names))
	for i, name := range names {
		keys[i] = extract.NormalizeKey(name)
	}

	cached, err := c.cache.Lookup(ctx, keys)
	if err != nil {
		c.logger.Warn("ingredient cache lookup failed", "error", err)
		cached = nil
	}

	byKey := make(map[string]string, len(names))
	var uncached []string
	for i, name := range names {
		if ingredients, ok := cached[keys[i]]; ok {
			result[name] = ingredients
			continue
		}
		if _, seen := byKey[keys[i]]; !seen {
			byKey[keys[i]] = name
			uncached = append(uncached, name)
		}
	}

	if len(result) > 0 {
		c.logger.Debug("ingredient cache hits", "count", len(result))
	}
	if len(uncached) == 0 {
		return result
	}
	if c.cfg.RecipeURL == "" {
		c.logger.Warn("recipe enrichment skipped, upstream.recipe_url not set")
		return result
	}

	fetched := c.fetchIngredients(ctx, uncached)

	toStore := make(map[string][]string, len(fetched))
	for dishName, ingredients := range fetched {
		key := extract.NormalizeKey(dishName)
		toStore[key] = ingredients

		original, ok := byKey[key]
		if !ok {
			original = dishName
		}
		result[original] = ingredients
	}

	if len(toStore) > 0 {
		if err := c.cache.Store(ctx, toStore); err != nil {
			c.logger.Warn("ingredient cache store failed", "error", err)
		}
	}

	c.logger.Info("dishes enriched",
		"enriched", len(result),
		"requested", len(names))

	return result
}

func (c *Client) fetchIngredients(ctx context.Context, queries []string) map[string][]string {
	ctx, cancel := context.WithTimeout(ctx, c.cfg.EnrichmentTimeout)
	defer cancel()

	endpoint := BatchSearchURL(c.cfg.RecipeURL)
	var payload any
	err := c.do(ctx, http.MethodPost, endpoint, "", map[string]any{"queries": queries}, &payload)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			c.logger.Warn("recipe enrichment timed out", "timeout", c.cfg.EnrichmentTimeout)
		} else {
			c.logger.Warn("recipe enrichment failed", "error", err)
		}
		return nil
	}

	return parseEnrichment(payload)
}

// parseEnrichment reads an array, {results:[...]} or {data:[...]} of
// {name|dish_name|query, ingredients|ingredient_list}. Items without
// ingredients are dropped.
func parseEnrichment(payload any) map[string][]string {
	var items []any
	switch t := payload.(type) {
	case []any:
		items = t
	case map[string]any:
		if results, ok := t["results"].([]any); ok {
			items = results
		} else if data, ok := t["data"].([]any); ok {
			items = data
		}
	}

	out := make(map[string][]string, len(items))
	for _, item := range items {
		obj := asObject(item)
		if obj == nil {
			continue
		}
		name, _ := firstValue(obj, "name", "dish_name", "query").(string)
		list, ok := firstValue(obj, "ingredients", "ingredient_list").([]any)
		if strings.TrimSpace(name) == "" || !ok {
			continue
		}

		ingredients := make([]string, 0, len(list))
		for _, v := range list {
			if s := strings.TrimSpace(asString(v)); s != "" {
				ingredients = append(ingredients, s)
			}
		}
		if len(ingredients) > 0 {
			out[name] = ingredients
		}
	}
	return out
}

// BatchSearchURL derives the batch endpoint from the configured recipe URL:
// a trailing /all becomes /batch-search, and any other last segment is
// replaced unless the URL already points at batch-search.
func BatchSearchURL(recipeURL string) string {
	switch {
	case strings.Contains(recipeURL, "batch-search"):
		return recipeURL
	case strings.HasSuffix(recipeURL, "/all"):
		return strings.TrimSuffix(recipeURL, "/all") + "/batch-search"
	default:
		idx := strings.LastIndex(recipeURL, "/")
		if idx < 0 {
			return recipeURL
		}
		return recipeURL[:idx] + "/batch-search"
	}
}
