package llm

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/Veraticus/plate-audit/internal/common"
	"github.com/Veraticus/plate-audit/internal/model"
)

// cleanMarkdownWrapper strips a ```json fence and any prose around the JSON value.
func cleanMarkdownWrapper(content string) string {
	content = strings.TrimSpace(content)

	if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.Index(content, "\n"); idx >= 0 {
			content = content[idx+1:]
		} else {
			content = strings.TrimPrefix(content, "json")
		}
		content = strings.TrimSuffix(strings.TrimSpace(content), "```")
		content = strings.TrimSpace(content)
	}

	start := strings.IndexAny(content, "{[")
	if start < 0 {
		return content
	}
	closer := byte('}')
	if content[start] == '[' {
		closer = ']'
	}
	end := strings.LastIndexByte(content, closer)
	if end < start {
		return content[start:]
	}
	return content[start : end+1]
}

// parseConflicts decodes {"conflicts": [...]} or a bare array of conflicts and
// rejects unknown conflict types.
func parseConflicts(content string) ([]model.Conflict, error) {
	content = cleanMarkdownWrapper(content)
	if content == "" {
		return nil, fmt.Errorf("%w: empty response", common.ErrClassificationFailed)
	}

	var conflicts []model.Conflict
	if strings.HasPrefix(content, "[") {
		if err := json.Unmarshal([]byte(content), &conflicts); err != nil {
			return nil, fmt.Errorf("%w: failed to parse JSON response: %w", common.ErrClassificationFailed, err)
		}
	} else {
		var wrapped struct {
			Conflicts *[]model.Conflict `json:"conflicts"`
		}
		if err := json.Unmarshal([]byte(content), &wrapped); err != nil {
			return nil, fmt.Errorf("%w: failed to parse JSON response: %w", common.ErrClassificationFailed, err)
		}
		if wrapped.Conflicts == nil {
			return nil, fmt.Errorf("%w: response has no conflicts field", common.ErrClassificationFailed)
		}
		conflicts = *wrapped.Conflicts
	}

	for i := range conflicts {
		c := &conflicts[i]
		c.DishName = strings.TrimSpace(c.DishName)
		c.ConflictingIngredient = strings.TrimSpace(c.ConflictingIngredient)
		c.Type = model.ConflictType(strings.ToLower(strings.TrimSpace(string(c.Type))))

		if !c.Type.IsValid() {
			return nil, fmt.Errorf("%w: conflict %d (%q) has type %q",
				common.ErrUnknownConflictType, i, c.DishName, c.Type)
		}
	}

	if conflicts == nil {
		conflicts = []model.Conflict{}
	}
	return conflicts, nil
}
