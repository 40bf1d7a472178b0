// Package textnorm canonicalizes raw timetable cell text.
// Spreadsheet exports mix full-width and half-width characters, use several
// dash and parenthesis variants, and often carry OCR line breaks in the
// middle of numeric ranges. All parsing stages share the canonical form
// produced here so that cache keys, the deterministic parser and the
// semantic payload all see the same text.
package textnorm

import (
	"regexp"
	"strings"

	"golang.org/x/text/width"
)

var (
	// Digits split by a line break with an embedded dash: "4\n-\n15" -> "4-15".
	brokenRangeRe = regexp.MustCompile(`(\d+)\s*[\n\r]*[-~～]\s*[\n\r]*\s*(\d+)`)
	// Digits split by a bare line break: "1\n03" -> "103".
	brokenDigitsRe = regexp.MustCompile(`(\d+)\s*[\n\r]+\s*(\d+)`)

	canonKeyRe = regexp.MustCompile(`[:：;；]`)
)

var punctReplacer = strings.NewReplacer(
	"（", "(",
	"）", ")",
	"：", ":",
	"—", "-",
	"－", "-",
)

// Normalize produces the canonical form of arbitrary cell text: full-width
// digits, letters and punctuation folded to half-width, parenthesis, colon
// and dash variants unified, and numeric tokens broken across OCR line
// breaks rejoined. The result is trimmed. Pure function, no side effects.
func Normalize(s string) string {
	if s == "" {
		return ""
	}
	s = width.Narrow.String(s)
	s = punctReplacer.Replace(s)
	s = brokenRangeRe.ReplaceAllString(s, "$1-$2")
	s = brokenDigitsRe.ReplaceAllString(s, "$1$2")
	s = strings.ReplaceAll(s, "～", "-")
	return strings.TrimSpace(s)
}

// CanonicalCellKey derives the dedupe/cache key for one raw cell. Beyond
// Normalize it folds the diamond field separator into a slash-delimited form
// and treats colon and semicolon variants as slashes, so cells that differ
// only in delimiter style share one key.
func CanonicalCellKey(cell string) string {
	s := Normalize(strings.TrimSpace(cell))
	s = strings.ReplaceAll(s, "◇", " / ")
	return canonKeyRe.ReplaceAllString(s, "/")
}

// Views holds the three parallel renderings of a cell that the semantic
// parser sends upstream, plus the rune offsets of line breaks in Original.
// Original keeps the line breaks (CRLF/CR folded to "\n"), Marked makes
// them visible with a sentinel glyph, and Preprocessed joins word fragments
// split by a single line break and turns the remaining breaks into " / "
// delimiters.
type Views struct {
	Original     string `json:"original"`
	Marked       string `json:"marked"`
	Preprocessed string `json:"preprocessed"`
	LineBreaks   []int  `json:"lineBreaks"`
}

// LineBreakMark is the sentinel glyph substituted for "\n" in Views.Marked.
const LineBreakMark = "⏎"

var (
	joinAcrossBreakRe = regexp.MustCompile(`([A-Za-z0-9\p{Han}])\n([A-Za-z0-9\p{Han}])`)
	breakRunRe        = regexp.MustCompile(`\n+`)
	slashSpacingRe    = regexp.MustCompile(`\s*/\s*`)
)

// NewViews builds the three parallel views of a raw cell. LineBreaks are
// rune offsets into Original.
func NewViews(raw string) Views {
	original := strings.ReplaceAll(raw, "\r\n", "\n")
	original = strings.ReplaceAll(original, "\r", "\n")

	var lineBreaks []int
	for i, r := range []rune(original) {
		if r == '\n' {
			lineBreaks = append(lineBreaks, i)
		}
	}

	marked := strings.ReplaceAll(original, "\n", LineBreakMark)

	// Regexp replacement does not revisit the joined text, so adjacent
	// breaks like "a\nb\nc" need a second pass.
	preprocessed := original
	for {
		next := joinAcrossBreakRe.ReplaceAllString(preprocessed, "$1$2")
		if next == preprocessed {
			break
		}
		preprocessed = next
	}
	preprocessed = breakRunRe.ReplaceAllString(preprocessed, " / ")
	preprocessed = slashSpacingRe.ReplaceAllString(preprocessed, " / ")
	preprocessed = strings.TrimSpace(preprocessed)

	return Views{
		Original:     original,
		Marked:       marked,
		Preprocessed: preprocessed,
		LineBreaks:   lineBreaks,
	}
}

// Flatten removes all line breaks from the original view. The semantic
// post-processing repairs check merged fields against this form.
func (v Views) Flatten() string {
	return strings.ReplaceAll(v.Original, "\n", "")
}
