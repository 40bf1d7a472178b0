// Package parser implements the rule-based extraction path: a cell of
// raw timetable text is segmented into independent course entries, and
// each entry is split into fields by delimiter position and token shape.
//
// The parser is deterministic and never returns an error. Cells it
// cannot fully understand produce low-confidence records instead; the
// resolver decides whether those are good enough or the semantic path
// should be consulted.
package parser

import (
	"regexp"
	"strings"

	"github.com/schedulellm/schedulellm-go/internal/course"
	"github.com/schedulellm/schedulellm-go/internal/stringutil"
	"github.com/schedulellm/schedulellm-go/internal/textnorm"
	"github.com/schedulellm/schedulellm-go/internal/weekrange"
)

var (
	angleOpenRe  = regexp.MustCompile(`[《〈]`)
	angleCloseRe = regexp.MustCompile(`[》〉]`)
	splitWeekRe  = regexp.MustCompile(`(\d+\s*[-~]\s*\d+|\d+)\s*[\r\n]+\s*周`)

	// entryRe anchors the start of a course entry: a name-ish run
	// followed by a slash, an optional numeric code, an optional period
	// range, and a week expression.
	entryRe = regexp.MustCompile(`(^|[\r\n]+)\s*([^/\r\n]{2,}?)\s*/\s*(?:\d{6,}\s*/\s*)?(?:[\(（]?\s*\d+\s*[-~]\s*\d+\s*节[\)）]?\s*)?(?:\d+\s*[-~]\s*\d+|\d+)\s*周`)

	weekRe      = regexp.MustCompile(`(\d+[-~]\d+|\d+)周`)
	lineBreakRe = regexp.MustCompile(`[\r\n]+`)
	delimRe     = regexp.MustCompile(`[:：;；]`)

	peopleCountRe  = regexp.MustCompile(`人数?[:：°\s]*\d+|\d+\s*人`)
	classLikeRe    = regexp.MustCompile(`(\d+|专业)[\s\S]*?[班级]`)
	bareClassRe    = regexp.MustCompile(`^[A-Za-z0-9\p{Han}]+班$`)
	locKeywordRe   = regexp.MustCompile(`[楼室馆区教厅场苑基地中心工程]`)
	locBlacklistRe = regexp.MustCompile(`专业|导论|概论|基础|原理|必修|选修|考查|考试|讲课`)
	strongSuffixRe = regexp.MustCompile(`[楼室馆区教厅场苑基地中心]$`)
	bareRoomRe     = regexp.MustCompile(`^\d{3,4}$`)
	pureDigitRe    = regexp.MustCompile(`^\d+$`)

	periodRangeRe = regexp.MustCompile(`(\d+)\s*[-~]\s*(\d+)\s*节`)
	periodParenRe = regexp.MustCompile(`\(([^)]*?)节\)`)
)

// ParseCell runs the full rule-based path on one cell: normalize,
// segment, extract, standardize. The returned slice is empty when the
// cell contains no recognizable entries.
func ParseCell(cell string) []course.Record {
	clean := preprocess(cell)
	if clean == "" {
		return nil
	}

	segments := Segment(clean)
	records := make([]course.Record, 0, len(segments))
	for _, seg := range segments {
		records = append(records, Extract(seg))
	}
	return records
}

func preprocess(cell string) string {
	s := textnorm.Normalize(cell)
	s = strings.ReplaceAll(s, "◇", " / ")
	s = angleOpenRe.ReplaceAllString(s, "(")
	s = angleCloseRe.ReplaceAllString(s, ")")
	s = splitWeekRe.ReplaceAllString(s, "${1}周")
	return s
}

// Segment splits preprocessed cell text into independent course entries.
// Entry anchors of the form "name / ... N周" take priority; when fewer
// than two anchors are found the text is re-joined line by line, cutting
// a new entry each time a second week expression appears.
func Segment(clean string) []string {
	var starts []int
	for _, m := range entryRe.FindAllStringSubmatchIndex(clean, -1) {
		start := m[0]
		if m[2] >= 0 {
			start += m[3] - m[2]
		}
		starts = append(starts, start)
	}

	if len(starts) > 1 {
		segments := make([]string, 0, len(starts))
		for i, start := range starts {
			end := len(clean)
			if i+1 < len(starts) {
				end = starts[i+1]
			}
			if seg := strings.TrimSpace(clean[start:end]); seg != "" {
				segments = append(segments, seg)
			}
		}
		return segments
	}

	return segmentByLines(clean)
}

// segmentByLines buffers lines until a second week expression shows up,
// gluing a space between fragments unless the buffer already ends with a
// delimiter.
func segmentByLines(clean string) []string {
	var segments []string
	var buffer string
	bufferHasWeek := false

	for _, line := range strings.Split(clean, "\n") {
		line = strings.TrimSpace(strings.TrimSuffix(line, "\r"))
		if line == "" {
			continue
		}

		lineHasWeek := weekRe.MatchString(line)
		if lineHasWeek && bufferHasWeek {
			segments = append(segments, buffer)
			buffer = line
			continue
		}

		buffer = strings.TrimSpace(buffer)
		if buffer != "" && !strings.HasSuffix(buffer, "/") {
			buffer += " " + line
		} else {
			buffer += line
		}
		if lineHasWeek {
			bufferHasWeek = true
		}
	}
	if buffer != "" {
		segments = append(segments, buffer)
	}
	return segments
}

// Extract turns one course entry into a standardized record. Fields are
// located relative to the week expression: everything before it is the
// name, everything after is classified token by token into class names,
// locations, and leftovers.
func Extract(segment string) course.Record {
	s := lineBreakRe.ReplaceAllString(segment, "")

	// Slashless entries like "软件工程 1-16周 N608" get delimiters
	// synthesized around the week expression so the split still works.
	if !strings.Contains(s, "/") && weekRe.MatchString(s) {
		s = weekRe.ReplaceAllString(s, " / ${0} / ")
	}
	s = delimRe.ReplaceAllString(s, "/")

	var parts []string
	for _, p := range strings.Split(s, "/") {
		if p = strings.TrimSpace(p); p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) == 0 {
		parts = []string{""}
	}

	rec := course.Record{RawStr: segment, Weeks: []int{}}

	weekPartIdx := -1
	for i, p := range parts {
		if weekRe.MatchString(p) {
			weekPartIdx = i
			break
		}
	}

	if weekPartIdx == -1 {
		rec.RawName = parts[0]
		rec.DisplayName = parts[0]
		if len(parts) > 1 {
			rec.Location = parts[1]
		}
		if len(parts) > 2 {
			rec.ClassName = parts[2]
		}
		finish(&rec)
		return rec
	}

	rec.WeeksRaw = parts[weekPartIdx]
	rec.Weeks = weekrange.Decode(parts[weekPartIdx])

	if weekPartIdx > 0 {
		rec.RawName = parts[0]
	} else {
		// Week expression sits inside the first part; the name is
		// whatever precedes it.
		loc := weekRe.FindStringIndex(parts[0])
		name := strings.TrimSpace(parts[0][:loc[0]])
		if name == "" {
			name = course.UnknownName
		}
		rec.RawName = name
	}
	rec.DisplayName = rec.RawName

	var locs []string
	prevWasBuildingOnly := false
	for _, p := range parts[weekPartIdx+1:] {
		token := strings.TrimSpace(p)
		if token == "" {
			continue
		}

		isPeopleCount := peopleCountRe.MatchString(token)
		isClassLike := (classLikeRe.MatchString(token) || bareClassRe.MatchString(token)) && !isPeopleCount

		if isClassLike {
			if rec.ClassName != "" {
				rec.ClassName += "," + token
			} else {
				rec.ClassName = token
			}
			prevWasBuildingOnly = false
			continue
		}

		isLocationKeyword := locKeywordRe.MatchString(token)
		hitsBlacklist := locBlacklistRe.MatchString(token)
		hasDigit := stringutil.HasDigit(token)
		hasLetter := stringutil.HasASCIILetter(token)
		isPureDigit := pureDigitRe.MatchString(token)

		// Pure 3-4 digit tokens count as rooms only right after a
		// building-only token; otherwise they are head counts, course
		// codes, or credits.
		isStandaloneRoom := prevWasBuildingOnly && bareRoomRe.MatchString(token)

		var isLocation bool
		switch {
		case hasLetter && hasDigit:
			isLocation = true
		case isStandaloneRoom:
			isLocation = true
		case strongSuffixRe.MatchString(token):
			isLocation = true
		case isLocationKeyword && !hitsBlacklist:
			isLocation = true
		}
		if isPureDigit && !isStandaloneRoom {
			isLocation = false
		}

		if isLocation {
			locs = append(locs, token)
			prevWasBuildingOnly = isLocationKeyword && !hasDigit
		} else {
			prevWasBuildingOnly = false
		}
	}
	rec.Location = strings.Join(locs, " ")

	if m := periodRangeRe.FindStringSubmatch(parts[weekPartIdx]); m != nil {
		rec.PeriodRange = m[1] + "-" + m[2]
	} else if m := periodParenRe.FindStringSubmatch(parts[weekPartIdx]); m != nil {
		rec.PeriodRange = m[1]
	}

	finish(&rec)
	return rec
}

func finish(rec *course.Record) {
	rec.Confidence = course.ComputeConfidence(*rec)
	course.Standardize(rec)
}
