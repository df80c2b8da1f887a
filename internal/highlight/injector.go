package highlight

import (
	"fmt"
	"html"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/Veraticus/plate-audit/internal/common"
	"github.com/Veraticus/plate-audit/internal/model"
)

const markerStyle = "color: %s; background-color: %s; font-weight: bold; padding: 1px 4px; border-radius: 2px;"

// Injector wraps flagged dish names in slot markup.
type Injector struct {
	logger *slog.Logger
}

// NewInjector creates an injector. A nil logger uses slog.Default().
func NewInjector(logger *slog.Logger) *Injector {
	return &Injector{logger: common.LoggerOrDefault(logger)}
}

// Apply highlights conflicts in every slot. The input slots are not modified.
func (inj *Injector) Apply(slots []model.MealSlot, conflicts []model.Conflict) ([]model.MealSlot, []model.Trace) {
	ordered := SortBySpecificity(conflicts)
	out := make([]model.MealSlot, 0, len(slots))
	var traces []model.Trace

	for _, slot := range slots {
		updated, slotTraces := inj.applyOrdered(slot, ordered)
		out = append(out, updated)
		traces = append(traces, slotTraces...)
	}

	return out, traces
}

// ApplySlot highlights conflicts in a single slot.
func (inj *Injector) ApplySlot(slot model.MealSlot, conflicts []model.Conflict) (model.MealSlot, []model.Trace) {
	return inj.applyOrdered(slot, SortBySpecificity(conflicts))
}

func (inj *Injector) applyOrdered(slot model.MealSlot, conflicts []model.Conflict) (model.MealSlot, []model.Trace) {
	content := slot.HTML
	var traces []model.Trace

	for _, c := range conflicts {
		if !c.Locatable() {
			continue
		}

		updated, matched, fallback := inj.applyConflict(content, c)
		if len(matched) == 0 {
			inj.logger.Debug("dish not found in slot",
				"slot", slot.Title,
				"dish", c.DishName)
			continue
		}

		content = updated
		for _, text := range matched {
			trace := model.Trace{
				Slot:        slot.Title,
				DishName:    c.DishName,
				MatchedText: text,
				Type:        c.Type,
				Fallback:    fallback,
			}
			traces = append(traces, trace)
			inj.logger.Debug("dish highlighted",
				"slot", trace.Slot,
				"dish", trace.DishName,
				"matched", trace.MatchedText,
				"type", trace.Type,
				"fallback", trace.Fallback)
		}
	}

	slot.HTML = content
	return slot, traces
}

// applyConflict tries the full name first and the pre-comma fallback second.
func (inj *Injector) applyConflict(content string, c model.Conflict) (string, []string, bool) {
	frag := parseFragment(content)

	if out, matched := inj.wrapName(frag, c.DishName, c); len(matched) > 0 {
		return out, matched, false
	}

	short := FallbackName(c.DishName)
	if short == "" {
		return content, nil, false
	}
	out, matched := inj.wrapName(frag, short, c)
	return out, matched, true
}

func (inj *Injector) wrapName(frag fragment, name string, c model.Conflict) (string, []string) {
	re, err := Compile(name)
	if err != nil {
		inj.logger.Warn("skipping unmatchable dish name",
			"dish", name,
			"error", err)
		return frag.src, nil
	}

	spans := findAccepted(frag, re)
	if len(spans) == 0 {
		return frag.src, nil
	}

	open := openMarker(c)
	var b strings.Builder
	matched := make([]string, 0, len(spans))
	last := 0

	for _, sp := range spans {
		start, end := sp[0], sp[1]
		b.WriteString(frag.src[last:start])
		matched = append(matched, frag.src[start:end])

		if frag.balanced(start, end) {
			b.WriteString(open)
			b.WriteString(frag.src[start:end])
			b.WriteString("</span>")
		} else {
			pos := start
			for _, run := range frag.textRuns(start, end) {
				b.WriteString(frag.src[pos:run[0]])
				b.WriteString(open)
				b.WriteString(frag.src[run[0]:run[1]])
				b.WriteString("</span>")
				pos = run[1]
			}
			b.WriteString(frag.src[pos:end])
		}
		last = end
	}
	b.WriteString(frag.src[last:])

	return b.String(), matched
}

// findAccepted returns the non-overlapping matches of re that are legal to
// wrap, scanning left to right.
func findAccepted(frag fragment, re *regexp.Regexp) [][2]int {
	var out [][2]int
	pos := 0

	for pos < len(frag.src) {
		loc := re.FindStringIndex(frag.src[pos:])
		if loc == nil {
			break
		}
		start, end := pos+loc[0], pos+loc[1]

		if end > start && frag.accepts(start, end) {
			out = append(out, [2]int{start, end})
			pos = end
			continue
		}

		_, size := utf8.DecodeRuneInString(frag.src[start:])
		pos = start + max(size, 1)
	}

	return out
}

func openMarker(c model.Conflict) string {
	m := c.Type.Marker()
	title := fmt.Sprintf("%s: contains %s", m.Label, c.ConflictingIngredient)
	return fmt.Sprintf(`<span %s="%s" style="%s" title="%s">`,
		MarkerAttr,
		html.EscapeString(string(c.Type)),
		fmt.Sprintf(markerStyle, m.Color, m.Background),
		html.EscapeString(title))
}

// CountMarkers returns the number of marker elements in content.
func CountMarkers(content string) int {
	count := 0
	for _, s := range parseFragment(content).spans {
		if s.kind == tagSpan && !s.closing && s.marker {
			count++
		}
	}
	return count
}
