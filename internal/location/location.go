// Package location decomposes free-form classroom strings into building and
// room parts. Input like "桂林洋一教203" mixes campus names, building
// shorthand and room numbers with no delimiter, so the resolver scans a
// fixed table of room-token pattern families, scores every candidate and
// keeps the best one.
package location

import (
	"regexp"
	"strings"
	"unicode"

	"github.com/schedulellm/schedulellm-go/internal/textnorm"
)

// Placeholder is the human-facing value used when no location is known.
const Placeholder = "待通知"

// Resolution is the decomposed form of a location string. Location is the
// human-facing value; Building and Room may be empty. When both are set,
// Location is their concatenation unless Building already ends with Room.
type Resolution struct {
	Location string
	Building string
	Room     string
}

// candidate is one substring considered as the room token.
type candidate struct {
	idx   int // byte offset into the cleaned string
	value string
	kind  string
	score int
}

// Room-token pattern families, ordered by priority. Each entry is a
// (pattern, outcome, score) row; ties between equal scores are broken by
// the earliest offset.
// The first two families encode the 2-digit+CJK boundary (a class-cohort
// label like "21软件" right after the room) inside the pattern so the
// matcher can shorten the room token to fit it, e.g. "N60821软件" keeps
// room "N608".
var candidateFamilies = []struct {
	re          *regexp.Regexp
	kind        string
	base        int
	rejectDigit bool // reject when the next byte is a digit
}{
	{regexp.MustCompile(`([A-Za-z]{1,3}\d{2,4})\d{2}\p{Han}`), "alphaNum_yearMajor", 30, false},
	{regexp.MustCompile(`(\d{3,4})\d{2}\p{Han}`), "num_yearMajor", 24, false},
	{regexp.MustCompile(`([A-Za-z]{1,3}\d{2,4})`), "alphaNum", 18, true},
	{regexp.MustCompile(`(\d{3,4})`), "num", 14, true},
	{regexp.MustCompile(`(\d{1,4}[A-Za-z]{1,2})`), "numAlpha", 12, true},
}

var (
	synonymRe    = regexp.MustCompile(`(校区|场地|地点|场所)[：:]\s*`)
	campusTailRe = regexp.MustCompile(`校区[：:]?`)
	yearMajorRe  = regexp.MustCompile(`^\d{2}\p{Han}`)
	trailDigitRe = regexp.MustCompile(`\d{3,4}$`)
	pureDigitRe  = regexp.MustCompile(`^\d+$`)

	doubledLetterRe = regexp.MustCompile(`^([A-Za-z])(\d)`)
)

// campusNoise lists campus-name fragments that add nothing to the physical
// location and are dropped before decomposition. This is a fixed lexical
// table, not a knowledge base.
var campusNoise = []string{"桂林洋", "府城", "龙昆南", "校区"}

// Resolve decomposes a free-form location string. Empty input yields the
// Placeholder with empty building and room.
func Resolve(loc string) Resolution {
	if strings.TrimSpace(loc) == "" {
		return Resolution{Location: Placeholder}
	}

	s := textnorm.Normalize(loc)
	s = strings.ReplaceAll(s, "实验实训中心", "实训楼")
	s = synonymRe.ReplaceAllString(s, "")
	for _, noise := range campusNoise {
		s = strings.ReplaceAll(s, noise+"校区", "")
		s = strings.ReplaceAll(s, noise, "")
	}
	s = campusTailRe.ReplaceAllString(s, "")
	s = strings.Join(strings.Fields(s), "")

	best := bestCandidate(s)

	var building, room string
	if best != nil {
		room = best.value
		building = s[:best.idx]
	} else {
		building = s
	}

	building, room = RepairPair(building, room)

	full := building + room
	if full == "" {
		full = Placeholder
	}
	if building != "" && room != "" && strings.HasSuffix(building, room) {
		// Room already embedded in the building text; avoid "一教203203".
		full = building
	}

	return Resolution{Location: full, Building: building, Room: room}
}

func bestCandidate(s string) *candidate {
	var best *candidate
	for _, family := range candidateFamilies {
		for _, m := range family.re.FindAllStringSubmatchIndex(s, -1) {
			v := s[m[2]:m[3]]
			rest := s[m[3]:]

			if family.rejectDigit && len(rest) > 0 && rest[0] >= '0' && rest[0] <= '9' {
				continue
			}
			if len([]rune(v)) > 10 {
				continue
			}
			if pureDigitRe.MatchString(v) && len(v) < 3 {
				continue
			}

			score := family.base
			if isASCIILetter(rune(v[0])) {
				score += 3
			}
			if trailDigitRe.MatchString(v) {
				score++
			}
			if yearMajorRe.MatchString(rest) {
				score += 4
			}

			c := &candidate{idx: m[2], value: v, kind: family.kind, score: score}
			if best == nil || c.score > best.score || (c.score == best.score && c.idx < best.idx) {
				best = c
			}
		}
	}
	return best
}

// RepairPair applies the duplicate-letter repairs to a building/room pair:
// a doubled leading letter in the room ("SS103") collapses to one, and a
// building that ends with the room's leading letter ("教S" + "S103") loses
// that trailing letter. Either argument may be empty.
func RepairPair(building, room string) (string, string) {
	if room == "" {
		return building, room
	}

	if len(room) >= 3 && room[0] == room[1] && isASCIILetter(rune(room[0])) && room[2] >= '0' && room[2] <= '9' {
		room = room[1:]
	}

	if m := doubledLetterRe.FindStringSubmatch(room); m != nil && building != "" &&
		strings.HasSuffix(building, m[1]) {
		building = building[:len(building)-1]
	}

	return building, room
}

// Merge joins a building/room pair into one location string after applying
// RepairPair, collapsing the room when the building already ends with it.
// Used by the semantic path when the model returns both parts.
func Merge(building, room string) string {
	b := strings.Join(strings.Fields(building), "")
	r := strings.Join(strings.Fields(room), "")
	if b == "" || r == "" {
		return b + r
	}
	b, r = RepairPair(b, r)
	if strings.HasSuffix(b, r) {
		return b
	}
	return b + r
}

func isASCIILetter(r rune) bool {
	return r < unicode.MaxASCII && unicode.IsLetter(r)
}
