// Package extract turns meal slot markup into dish entries.
//
// Extraction is lossy on purpose: the stripped text only feeds the classifier
// and the enrichment lookup. Highlighting always works on the original markup.
package extract

import (
	"regexp"
	"strings"
	"unicode/utf8"
)

// MinLineLength is the length a candidate line must exceed to be kept.
const MinLineLength = 3

// Pre-compiled regular expressions for the normalisation pipeline.
var (
	headingElements = regexp.MustCompile(`(?is)<h[1-6][^>]*>.*?</h[1-6]\s*>`)
	scriptElements  = regexp.MustCompile(`(?is)<script[^>]*>.*?</script\s*>`)
	styleElements   = regexp.MustCompile(`(?is)<style[^>]*>.*?</style\s*>`)
	htmlComments    = regexp.MustCompile(`(?s)<!--.*?-->`)
	brTags          = regexp.MustCompile(`(?i)<br\s*/?>`)
	blockTags       = regexp.MustCompile(`(?i)</?(?:p|div|li|ul|ol|td|tr|table)\b[^>]*>`)
	allTags         = regexp.MustCompile(`<[^>]+>`)
	otherEntities   = regexp.MustCompile(`&#?\w+;`)
	urls            = regexp.MustCompile(`(?i)https?://\S+`)
	callsToAction   = regexp.MustCompile(`(?i)\s*[\[(](?:Buy|Order|View|Click|Read|Recipe|Link|Watch).+?[\])]`)
	quantities      = regexp.MustCompile(`(?i)\s*-\s*\d+\s*(?:grams|g|ml|calories|kcal)\b`)
	horizontalSpace = regexp.MustCompile(`[ \t\r\f\v\x{00A0}]+`)
	lineSeparators  = regexp.MustCompile(`(?i)\n|\s+OR\s+|\s+[/+]\s*|\s*[/+]\s+`)
)

// namedEntities are decoded to their character; every other entity becomes a space.
var namedEntities = strings.NewReplacer(
	"&amp;", "&",
	"&lt;", "<",
	"&gt;", ">",
	"&nbsp;", " ",
)

// Normalize strips markup and boilerplate from a slot fragment and splits it
// into candidate dish lines. Malformed markup degrades to best-effort text.
func Normalize(fragment string) []string {
	if strings.TrimSpace(fragment) == "" {
		return nil
	}

	text := stripMarkup(fragment)
	text = stripNoise(text)

	var lines []string
	for _, candidate := range lineSeparators.Split(text, -1) {
		candidate = strings.TrimSpace(candidate)
		if utf8.RuneCountInString(candidate) > MinLineLength {
			lines = append(lines, candidate)
		}
	}
	return lines
}

// stripMarkup converts markup into newline separated plain text.
func stripMarkup(content string) string {
	content = headingElements.ReplaceAllString(content, "\n")
	content = scriptElements.ReplaceAllString(content, "")
	content = styleElements.ReplaceAllString(content, "")
	content = htmlComments.ReplaceAllString(content, "")

	content = brTags.ReplaceAllString(content, "\n")
	content = blockTags.ReplaceAllString(content, "\n")
	content = allTags.ReplaceAllString(content, "")

	content = namedEntities.Replace(content)
	return otherEntities.ReplaceAllString(content, " ")
}

// stripNoise removes links, call-to-action asides and quantity annotations.
func stripNoise(text string) string {
	text = urls.ReplaceAllString(text, "")
	text = callsToAction.ReplaceAllString(text, "")
	text = quantities.ReplaceAllString(text, "")
	return horizontalSpace.ReplaceAllString(text, " ")
}
