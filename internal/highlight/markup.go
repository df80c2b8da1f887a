package highlight

import (
	"html"
	"sort"
	"strings"

	xhtml "golang.org/x/net/html"
)

// MarkerAttr tags every wrapper element this package produces.
const MarkerAttr = "data-diet-flag"

type spanKind int

const (
	textSpan spanKind = iota
	tagSpan
	otherSpan
)

// span is one token of the fragment with its byte range and the element
// context it starts in.
type span struct {
	name        string
	start       int
	end         int
	kind        spanKind
	anchorDepth int
	markerDepth int
	closing     bool
	selfClosing bool
	marker      bool
}

// fragment is a tokenised view over markup. It never rewrites the source.
type fragment struct {
	src   string
	spans []span
}

// rawTextElements hold text that is never rendered as dish content.
var rawTextElements = map[string]bool{
	"script":   true,
	"style":    true,
	"textarea": true,
	"title":    true,
}

// voidElements never take a closing tag.
var voidElements = map[string]bool{
	"br":  true,
	"hr":  true,
	"img": true,
	"wbr": true,
}

func parseFragment(src string) fragment {
	f := fragment{src: src}
	z := xhtml.NewTokenizer(strings.NewReader(src))

	var (
		offset      int
		anchorDepth int
		markerDepth int
		spanStack   []bool
		inRawText   bool
	)

	for {
		tt := z.Next()
		if tt == xhtml.ErrorToken {
			break
		}
		size := len(z.Raw())
		s := span{
			start:       offset,
			end:         offset + size,
			anchorDepth: anchorDepth,
			markerDepth: markerDepth,
		}
		offset += size

		switch tt {
		case xhtml.TextToken:
			s.kind = textSpan
			if inRawText {
				s.kind = otherSpan
			}
			inRawText = false

		case xhtml.StartTagToken, xhtml.EndTagToken, xhtml.SelfClosingTagToken:
			s.kind = tagSpan
			s.closing = tt == xhtml.EndTagToken
			s.selfClosing = tt == xhtml.SelfClosingTagToken
			name, hasAttr := z.TagName()
			s.name = string(name)
			for hasAttr {
				var key []byte
				key, _, hasAttr = z.TagAttr()
				if string(key) == MarkerAttr {
					s.marker = true
				}
			}
			inRawText = tt == xhtml.StartTagToken && rawTextElements[s.name]

			switch {
			case s.name == "a" && tt == xhtml.StartTagToken:
				anchorDepth++
			case s.name == "a" && s.closing && anchorDepth > 0:
				anchorDepth--
			case s.name == "span" && tt == xhtml.StartTagToken:
				spanStack = append(spanStack, s.marker)
				if s.marker {
					markerDepth++
				}
			case s.name == "span" && s.closing && len(spanStack) > 0:
				if spanStack[len(spanStack)-1] {
					markerDepth--
					s.marker = true
				}
				spanStack = spanStack[:len(spanStack)-1]
			}

		default:
			s.kind = otherSpan
			inRawText = false
		}

		f.spans = append(f.spans, s)
	}

	if offset < len(src) {
		f.spans = append(f.spans, span{start: offset, end: len(src), kind: otherSpan})
	}

	return f
}

// spanAt returns the index of the span containing byte offset pos.
func (f fragment) spanAt(pos int) int {
	idx := sort.Search(len(f.spans), func(i int) bool {
		return f.spans[i].end > pos
	})
	if idx == len(f.spans) || f.spans[idx].start > pos {
		return -1
	}
	return idx
}

// accepts reports whether [start, end) is a legal span to wrap: both ends in
// visible text outside links and existing markers, and only inline formatting
// tags in between.
func (f fragment) accepts(start, end int) bool {
	first := f.spanAt(start)
	last := f.spanAt(end - 1)
	if first < 0 || last < 0 {
		return false
	}

	if !f.isFreeText(first) || !f.isFreeText(last) {
		return false
	}
	if f.splitsReference(first, start) || f.splitsReference(last, end) {
		return false
	}

	for i := first + 1; i < last; i++ {
		s := f.spans[i]
		switch s.kind {
		case textSpan:
			continue
		case tagSpan:
			if s.marker || !(inlineTags[s.name] || s.name == "br") {
				return false
			}
		default:
			return false
		}
	}
	return true
}

func (f fragment) isFreeText(i int) bool {
	s := f.spans[i]
	return s.kind == textSpan && s.anchorDepth == 0 && s.markerDepth == 0
}

// splitsReference reports whether byte offset pos falls between the & and ;
// of a character reference inside span i.
func (f fragment) splitsReference(i, pos int) bool {
	s := f.spans[i]

	amp := -1
	for j := pos - 1; j >= s.start; j-- {
		c := f.src[j]
		if c == '&' {
			amp = j
			break
		}
		if !isReferenceByte(c) {
			return false
		}
	}
	if amp < 0 {
		return false
	}

	for j := pos; j < s.end; j++ {
		c := f.src[j]
		if c == ';' {
			return true
		}
		if !isReferenceByte(c) {
			return false
		}
	}
	return false
}

func isReferenceByte(c byte) bool {
	return c == '#' || c >= '0' && c <= '9' || c >= 'a' && c <= 'z' || c >= 'A' && c <= 'Z'
}

// balanced reports whether the tags inside [start, end) open and close in
// matching pairs.
func (f fragment) balanced(start, end int) bool {
	var stack []string
	for _, s := range f.spans {
		if s.end <= start || s.start >= end || s.kind != tagSpan {
			continue
		}
		if s.selfClosing || voidElements[s.name] {
			continue
		}
		if !s.closing {
			stack = append(stack, s.name)
			continue
		}
		if len(stack) == 0 || stack[len(stack)-1] != s.name {
			return false
		}
		stack = stack[:len(stack)-1]
	}
	return len(stack) == 0
}

// textRuns returns the visible text ranges inside [start, end).
func (f fragment) textRuns(start, end int) [][2]int {
	var runs [][2]int
	for _, s := range f.spans {
		if s.end <= start || s.start >= end || s.kind != textSpan {
			continue
		}
		from, to := max(s.start, start), min(s.end, end)
		if strings.TrimSpace(html.UnescapeString(f.src[from:to])) == "" {
			continue
		}
		runs = append(runs, [2]int{from, to})
	}
	return runs
}
