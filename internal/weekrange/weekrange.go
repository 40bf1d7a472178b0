// Package weekrange decodes week-specification strings such as "1-16周",
// "1-16周(单)" or "2-6周,8-12周(双)" into concrete week numbers.
package weekrange

import (
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/schedulellm/schedulellm-go/internal/textnorm"
)

// MaxWeek is the sanity bound for decoded week numbers. Tokens whose start
// or end exceeds it are skipped, the rest of the string is still scanned.
// Semesters never run past 30 teaching weeks.
const MaxWeek = 30

var (
	periodParenRe = regexp.MustCompile(`\([^)]*节\)`)
	segmentRe     = regexp.MustCompile(`[,，;；]`)
	// One week token: start, optional -end, optional week marker, optional
	// odd/even marker in parens or immediately adjacent.
	tokenRe = regexp.MustCompile(`(\d+)(?:-(\d+))?(?:周|W|w)?(?:\(?([单双])\)?)?`)
)

// Decode parses a week specification into a sorted, deduplicated slice of
// week numbers using the default MaxWeek bound. It never fails: malformed
// input yields an empty slice.
func Decode(s string) []int {
	return DecodeMax(s, MaxWeek)
}

// DecodeMax is Decode with an explicit upper sanity bound.
//
// Every segment (comma/semicolon separated) is scanned for all numeric
// tokens rather than just the first, because segments may carry unrelated
// numbers such as course codes. A token with neither an explicit week
// marker nor a range dash is skipped for the same reason.
func DecodeMax(s string, maxWeek int) []int {
	if strings.TrimSpace(s) == "" {
		return []int{}
	}

	clean := textnorm.Normalize(s)
	// Period annotations like "(1-2节)" carry numbers that are not weeks.
	clean = periodParenRe.ReplaceAllString(clean, "")
	clean = strings.Join(strings.Fields(clean), "")

	weeks := make(map[int]struct{})
	for _, segment := range segmentRe.Split(clean, -1) {
		if segment == "" {
			continue
		}
		for _, m := range tokenRe.FindAllStringSubmatch(segment, -1) {
			if m[0] == "" {
				continue
			}
			hasWeekMark := strings.ContainsAny(m[0], "周Ww")
			hasRange := m[2] != ""
			if !hasWeekMark && !hasRange {
				continue
			}

			start, err := strconv.Atoi(m[1])
			if err != nil || start <= 0 || start > maxWeek {
				continue
			}
			end := start
			if hasRange {
				end, err = strconv.Atoi(m[2])
				if err != nil || end <= 0 || end > maxWeek {
					continue
				}
			}

			for week := start; week <= end; week++ {
				switch m[3] {
				case "单":
					if week%2 == 0 {
						continue
					}
				case "双":
					if week%2 != 0 {
						continue
					}
				}
				weeks[week] = struct{}{}
			}
		}
	}

	result := make([]int, 0, len(weeks))
	for week := range weeks {
		result = append(result, week)
	}
	sort.Ints(result)
	return result
}

// Serialize renders a week set back into its canonical compact string form
// ("1-8周,11-16周"). Every segment carries the week marker so that the skip
// rule in DecodeMax never discards an isolated week. Decoding the result
// yields the same set.
func Serialize(weeks []int) string {
	if len(weeks) == 0 {
		return ""
	}
	sorted := append([]int(nil), weeks...)
	sort.Ints(sorted)

	var parts []string
	start, prev := sorted[0], sorted[0]
	flush := func() {
		if start == prev {
			parts = append(parts, strconv.Itoa(start)+"周")
		} else {
			parts = append(parts, strconv.Itoa(start)+"-"+strconv.Itoa(prev)+"周")
		}
	}
	for _, w := range sorted[1:] {
		if w == prev {
			continue
		}
		if w == prev+1 {
			prev = w
			continue
		}
		flush()
		start, prev = w, w
	}
	flush()
	return strings.Join(parts, ",")
}
