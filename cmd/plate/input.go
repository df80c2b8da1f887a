package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/Veraticus/plate-audit/internal/model"
)

var unsafeFileChars = regexp.MustCompile(`[^a-z0-9]+`)

// readSlots loads a JSON array of {"title","html"} objects.
func readSlots(path string) ([]model.MealSlot, error) {
	var slots []model.MealSlot
	if err := readJSON(path, &slots); err != nil {
		return nil, err
	}
	return slots, nil
}

// readConflicts loads a JSON conflict list. Both a bare array and an object
// with a conflicts field are accepted.
func readConflicts(path string) ([]model.Conflict, error) {
	var raw json.RawMessage
	if err := readJSON(path, &raw); err != nil {
		return nil, err
	}

	var conflicts []model.Conflict
	if err := json.Unmarshal(raw, &conflicts); err != nil {
		var wrapped struct {
			Conflicts []model.Conflict `json:"conflicts"`
		}
		if err := json.Unmarshal(raw, &wrapped); err != nil {
			return nil, fmt.Errorf("failed to parse conflicts in %s: %w", path, err)
		}
		conflicts = wrapped.Conflicts
	}

	for _, c := range conflicts {
		if !c.Type.IsValid() {
			return nil, fmt.Errorf("conflict %q has unknown type %q", c.DishName, c.Type)
		}
	}
	return conflicts, nil
}

func readJSON(path string, target any) error {
	data, err := os.ReadFile(path) //nolint:gosec // path is supplied by the user on purpose
	if err != nil {
		return fmt.Errorf("failed to read %s: %w", path, err)
	}
	if err := json.Unmarshal(data, target); err != nil {
		return fmt.Errorf("failed to parse %s: %w", path, err)
	}
	return nil
}

// writeSlots writes one HTML file per slot into dir and returns the paths.
func writeSlots(dir string, slots []model.MealSlot) ([]string, error) {
	if err := os.MkdirAll(dir, 0750); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}

	paths := make([]string, 0, len(slots))
	for i, slot := range slots {
		path := filepath.Join(dir, slotFileName(i, slot.Title))
		if err := os.WriteFile(path, []byte(slot.HTML), 0600); err != nil {
			return paths, fmt.Errorf("failed to write %s: %w", path, err)
		}
		paths = append(paths, path)
	}
	return paths, nil
}

// slotFileName builds a stable, filesystem-safe name like "02-mid-morning.html".
func slotFileName(index int, title string) string {
	slug := strings.Trim(unsafeFileChars.ReplaceAllString(strings.ToLower(title), "-"), "-")
	if slug == "" {
		slug = "slot"
	}
	return fmt.Sprintf("%02d-%s.html", index+1, slug)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}
	return nil
}
