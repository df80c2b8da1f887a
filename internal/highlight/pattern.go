// Package highlight re-locates flagged dish names inside meal slot markup and
// wraps them in category markers without breaking the surrounding structure.
package highlight

import (
	"fmt"
	"regexp"
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/Veraticus/plate-audit/internal/model"
)

// inlineTags may interrupt a dish name and still count as whitespace.
// Block tags are deliberately absent so a match never spans two blocks.
var inlineTags = map[string]bool{
	"b":      true,
	"strong": true,
	"i":      true,
	"em":     true,
	"span":   true,
	"font":   true,
	"u":      true,
	"small":  true,
	"big":    true,
	"mark":   true,
}

// separatorPattern matches whatever may stand in for a literal space.
const separatorPattern = `(?:\s+|&nbsp;|&#160;|&#x20;|<br\s*/?>|</?(?:b|strong|i|em|span|font|u|small|big|mark)\b[^>]*>)+`

// entityAlternatives lists the encodings accepted for HTML-special characters.
var entityAlternatives = map[rune]string{
	'&':  `(?:&|&amp;|&#38;|&#x26;)`,
	'<':  `(?:<|&lt;|&#60;|&#x3c;)`,
	'>':  `(?:>|&gt;|&#62;|&#x3e;)`,
	'"':  `(?:"|&quot;|&#34;|&#x22;)`,
	'\'': `(?:'|&apos;|&#39;|&#x27;)`,
}

// BuildPattern turns a plain dish name into a markup-tolerant expression.
func BuildPattern(name string) string {
	var b strings.Builder
	inSpace := false

	for _, r := range strings.TrimSpace(name) {
		if unicode.IsSpace(r) {
			if !inSpace {
				b.WriteString(separatorPattern)
			}
			inSpace = true
			continue
		}
		inSpace = false

		if alt, ok := entityAlternatives[r]; ok {
			b.WriteString(alt)
			continue
		}
		b.WriteString(regexp.QuoteMeta(string(r)))
	}

	return b.String()
}

// Compile builds the case-insensitive expression for name.
func Compile(name string) (*regexp.Regexp, error) {
	if strings.TrimSpace(name) == "" {
		return nil, fmt.Errorf("empty dish name")
	}
	return regexp.Compile("(?i)" + BuildPattern(name))
}

// FallbackName returns the part of name before its first comma, or "" when
// that part is not a usable, distinct alternative.
func FallbackName(name string) string {
	short := name
	if idx := strings.Index(name, ","); idx >= 0 {
		short = name[:idx]
	}
	short = strings.TrimSpace(short)

	if short == strings.TrimSpace(name) || utf8.RuneCountInString(short) <= 2 {
		return ""
	}
	return short
}

// SortBySpecificity returns the conflicts ordered by dish name length, longest
// first, so a longer name claims its span before any shorter name inside it.
func SortBySpecificity(conflicts []model.Conflict) []model.Conflict {
	sorted := make([]model.Conflict, len(conflicts))
	copy(sorted, conflicts)
	sort.SliceStable(sorted, func(i, j int) bool {
		return len(sorted[i].DishName) > len(sorted[j].DishName)
	})
	return sorted
}
