package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/plate-audit/internal/model"
)

// MinShortNameLength is the length a short name must exceed to be kept.
const MinShortNameLength = 2

var (
	asides     = regexp.MustCompile(`[(\[{].*?[)\]}]`)
	whitespace = regexp.MustCompile(`\s+`)
)

// Dish derives a dish entry from one candidate line. The second return value
// is false when the line does not name a usable dish.
func Dish(line, mealLabel string) (model.DishEntry, bool) {
	cleaned := CleanLine(line)

	short := ShortName(cleaned)
	if utf8.RuneCountInString(short) <= MinShortNameLength {
		return model.DishEntry{}, false
	}

	return model.DishEntry{
		MealLabel: mealLabel,
		RawLine:   cleaned,
		ShortName: short,
	}, true
}

// CleanLine removes bracketed asides and collapses whitespace.
func CleanLine(line string) string {
	line = asides.ReplaceAllString(line, "")
	return strings.TrimSpace(whitespace.ReplaceAllString(line, " "))
}

// ShortName returns the text before the first comma, whitespace-collapsed.
func ShortName(line string) string {
	if idx := strings.Index(line, ","); idx >= 0 {
		line = line[:idx]
	}
	return strings.TrimSpace(whitespace.ReplaceAllString(line, " "))
}

// Slots extracts dish entries from every slot, in slot order.
func Slots(slots []model.MealSlot) []model.DishEntry {
	var entries []model.DishEntry
	for _, slot := range slots {
		for _, line := range Normalize(slot.HTML) {
			if entry, ok := Dish(line, slot.Title); ok {
				entries = append(entries, entry)
			}
		}
	}
	return entries
}

// UniqueNames returns the distinct short names, compared case-insensitively,
// in first-seen order.
func UniqueNames(entries []model.DishEntry) []string {
	seen := make(map[string]bool, len(entries))
	names := make([]string, 0, len(entries))
	for _, entry := range entries {
		key := NormalizeKey(entry.ShortName)
		if seen[key] {
			continue
		}
		seen[key] = true
		names = append(names, entry.ShortName)
	}
	return names
}

// NormalizeKey is the lookup key used for dish names in caches and responses.
func NormalizeKey(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}
