package upstream

import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
)

// The upstream services disagree on field names and value types, so payloads
// are decoded into generic JSON values and mapped field by field.

// truthy mirrors how the services mark a field as absent: null, false, 0 and
// "" all mean "not set".
func truthy(v any) bool {
	switch t := v.(type) {
	case nil:
		return false
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != ""
	default:
		return true
	}
}

// firstValue returns the first set value among keys.
func firstValue(obj map[string]any, keys ...string) any {
	for _, key := range keys {
		if v, ok := obj[key]; ok && truthy(v) {
			return v
		}
	}
	return nil
}

func asString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		encoded, err := json.Marshal(t)
		if err != nil {
			return fmt.Sprint(t)
		}
		return string(encoded)
	}
}

func asNumber(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err != nil {
			return 0
		}
		return f
	default:
		return 0
	}
}

func asObject(v any) map[string]any {
	obj, _ := v.(map[string]any)
	return obj
}

// parseList accepts arrays of strings or labelled objects, comma-separated
// strings and single numbers. Objects and booleans are rejected because a
// silently empty allergy list is worse than a failed audit.
func parseList(v any) ([]string, error) {
	if !truthy(v) {
		return []string{}, nil
	}

	switch t := v.(type) {
	case []any:
		out := make([]string, 0, len(t))
		for i, item := range t {
			value, err := listItem(item)
			if err != nil {
				return nil, fmt.Errorf("item %d: %w", i, err)
			}
			if value = strings.TrimSpace(value); value != "" {
				out = append(out, value)
			}
		}
		return out, nil

	case string:
		out := []string{}
		for _, part := range strings.Split(t, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
		return out, nil

	case float64:
		return []string{asString(t)}, nil

	default:
		return nil, fmt.Errorf("expected array or string, got %T", v)
	}
}

func listItem(item any) (string, error) {
	switch t := item.(type) {
	case nil:
		return "", nil
	case string:
		return t, nil
	case float64, bool:
		return asString(t), nil
	case map[string]any:
		if label := firstValue(t, "name", "label", "value"); label != nil {
			return asString(label), nil
		}
		return asString(t), nil
	default:
		return "", fmt.Errorf("unsupported list item %T", item)
	}
}
