package cli

import (
	"fmt"
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Veraticus/plate-audit/internal/model"
)

// FormatAuditSummary renders an audit result for terminal display.
func FormatAuditSummary(result model.AuditResult) string {
	var sections []string

	sections = append(sections, FormatTitle("Meal Plan Audit"))
	sections = append(sections, SubtleStyle.Render("Audit "+result.AuditID))

	if result.ConflictCount == 0 {
		sections = append(sections, FormatSuccess("No conflicts found"))
		return strings.Join(sections, "\n")
	}

	sections = append(sections, FormatWarning(fmt.Sprintf("%d conflict(s) found", result.ConflictCount)))
	sections = append(sections, "", formatConflictTable(result.Conflicts))

	if missed := unlocated(result); len(missed) > 0 {
		sections = append(sections, "", FormatInfo("Not found in the plan markup: "+strings.Join(missed, ", ")))
	}

	return strings.Join(sections, "\n")
}

func formatConflictTable(conflicts []model.Conflict) string {
	ordered := make([]model.Conflict, len(conflicts))
	copy(ordered, conflicts)
	sort.SliceStable(ordered, func(i, j int) bool {
		return typeRank(ordered[i].Type) < typeRank(ordered[j].Type)
	})

	headers := []string{"Type", "Dish", "Ingredient", "Reason"}
	rows := make([][]string, 0, len(ordered))
	for _, c := range ordered {
		rows = append(rows, []string{string(c.Type), c.DishName, c.ConflictingIngredient, c.Reason})
	}

	widths := make([]int, len(headers))
	for i, h := range headers {
		widths[i] = lipgloss.Width(h)
	}
	for _, row := range rows {
		for i, cell := range row {
			widths[i] = max(widths[i], lipgloss.Width(cell))
		}
	}

	var b strings.Builder
	cells := make([]string, len(headers))
	for i, h := range headers {
		cells[i] = TableCellStyle.Width(widths[i] + 2).Render(h)
	}
	b.WriteString(TableHeaderStyle.Render(lipgloss.JoinHorizontal(lipgloss.Top, cells...)))

	for r, row := range rows {
		for i, cell := range row {
			style := TableCellStyle.Width(widths[i] + 2)
			if i == 0 {
				cells[i] = style.Render(ConflictStyle(ordered[r].Type).Render(ordered[r].Type.Marker().Label))
				continue
			}
			cells[i] = style.Render(cell)
		}
		b.WriteString("\n")
		b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, cells...))
	}
	return b.String()
}

// typeRank orders allergies first, then the other types.
func typeRank(t model.ConflictType) int {
	for i, ct := range model.ConflictTypes() {
		if ct == t {
			return i
		}
	}
	return len(model.ConflictTypes())
}

// unlocated lists conflicting dishes that produced no highlight.
func unlocated(result model.AuditResult) []string {
	found := make(map[string]bool, len(result.Traces))
	for _, tr := range result.Traces {
		found[tr.DishName] = true
	}
	var missed []string
	for _, c := range result.Conflicts {
		if !found[c.DishName] {
			missed = append(missed, c.DishName)
			found[c.DishName] = true
		}
	}
	return missed
}

// FormatDishes renders extracted dishes grouped by meal label.
func FormatDishes(entries []model.DishEntry) string {
	if len(entries) == 0 {
		return FormatInfo("No dishes found")
	}

	var b strings.Builder
	current := ""
	for i, e := range entries {
		if i == 0 || e.MealLabel != current {
			if i > 0 {
				b.WriteString("\n")
			}
			current = e.MealLabel
			b.WriteString(BoldStyle.Render(current))
			b.WriteString("\n")
		}
		b.WriteString("  • ")
		b.WriteString(e.ShortName)
		if e.RawLine != e.ShortName {
			b.WriteString(SubtleStyle.Render("  (" + e.RawLine + ")"))
		}
		b.WriteString("\n")
	}
	return strings.TrimRight(b.String(), "\n")
}

// FormatAuditFailure renders a failed audit's error code, message and details.
func FormatAuditFailure(code, message, details string) string {
	line := fmt.Sprintf("%s: %s", code, message)
	if details != "" {
		line += " (" + details + ")"
	}
	return FormatError(line)
}
