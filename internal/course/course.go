// Package course defines the unified course record produced by both the
// rule-based and the semantic extraction paths, plus the field
// standardization applied to every record before it leaves the pipeline.
package course

import (
	"regexp"
	"strings"

	"github.com/schedulellm/schedulellm-go/internal/location"
	"github.com/schedulellm/schedulellm-go/internal/stringutil"
)

// UnknownName is the display name assigned when no course name could be
// derived from a cell.
const UnknownName = "未知课程"

// Record is a single extracted course occurrence. Both extraction paths
// emit this shape; Standardize must run on every record before output.
type Record struct {
	RawName     string   `json:"rawName"`
	DisplayName string   `json:"displayName"`
	Weeks       []int    `json:"weeks"`
	WeeksRaw    string   `json:"weeksRaw"`
	Location    string   `json:"location"`
	Building    string   `json:"building"`
	Room        string   `json:"room"`
	ClassName   string   `json:"className"`
	PeriodRange string   `json:"periodRange"`
	Teacher     string   `json:"teacher"`
	Confidence  float64  `json:"confidence"`
	RawStr      string   `json:"rawStr"`
	Repairs     []Repair `json:"repairs,omitempty"`
}

// Repair records a single field-level fix applied after extraction, such
// as merging a line-break-split course name or moving a stray building
// letter into the room number. Kept on the record for audit review.
type Repair struct {
	Field      string  `json:"field"`
	From       string  `json:"from"`
	To         string  `json:"to"`
	Reason     string  `json:"reason"`
	Confidence float64 `json:"confidence,omitempty"`
}

var (
	firstBracketRe = regexp.MustCompile(`^(.*?[\[(（][^()（）]*[)）])`)
	trailingJunkRe = regexp.MustCompile(`[\s\-_/]+$`)
	leadingParenRe = regexp.MustCompile(`^[\(（]`)
	closingParenRe = regexp.MustCompile(`[\)）]$`)
)

// SimplifyName trims a course name down to its subject part. Everything
// after the first balanced bracket pair is dropped, trailing delimiters
// are stripped, and all whitespace is removed.
func SimplifyName(name string) string {
	if name == "" {
		return ""
	}

	s := name
	if m := firstBracketRe.FindStringSubmatch(name); m != nil {
		s = m[1]
	}

	s = trailingJunkRe.ReplaceAllString(s, "")
	return stringutil.StripSpaces(s)
}

// Standardize normalizes every free-text field of a record in place:
// the display name loses bracket tails and whitespace, the class name
// loses wrapping parens and is uppercased, and the location is resolved
// into its building and room components.
func Standardize(r *Record) {
	if r.DisplayName != "" {
		r.DisplayName = SimplifyName(r.DisplayName)
	}

	if r.ClassName != "" {
		cn := leadingParenRe.ReplaceAllString(r.ClassName, "")
		cn = closingParenRe.ReplaceAllString(cn, "")
		r.ClassName = strings.ToUpper(stringutil.StripSpaces(cn))
	}

	res := location.Resolve(r.Location)
	r.Location = res.Location
	r.Building = res.Building
	r.Room = res.Room

	r.Teacher = stringutil.StripSpaces(r.Teacher)
}

// ComputeConfidence scores a record by field completeness. The score is
// additive so that partially extracted records still rank above empty
// ones: name 0.3, weeks 0.3, location 0.2, class name 0.1, periods 0.1.
func ComputeConfidence(r Record) float64 {
	var c float64
	if r.DisplayName != "" && r.DisplayName != UnknownName {
		c += 0.3
	}
	if len(r.Weeks) > 0 {
		c += 0.3
	}
	if r.Location != "" && r.Location != location.Placeholder {
		c += 0.2
	}
	if r.ClassName != "" {
		c += 0.1
	}
	if r.PeriodRange != "" {
		c += 0.1
	}
	return c
}
