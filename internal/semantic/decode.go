// Package semantic provides the LLM-backed extraction path.
// This file decodes and postprocesses model output. Models are treated
// as unreliable narrators: week arrays are recomputed locally, fields
// are re-normalized, and two recurring mistakes (major prefix misread as
// a class name, building letter doubled into the room) are repaired.
package semantic

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/schedulellm/schedulellm-go/internal/location"
	"github.com/schedulellm/schedulellm-go/internal/weekrange"
)

var (
	genericNameRe = regexp.MustCompile(`^(导论|概论|基础|原理|实验|实训|课程设计)$`)
	classMarkerRe = regexp.MustCompile(`[班级届]`)
	digitRe       = regexp.MustCompile(`\d`)
	majorTailRe   = regexp.MustCompile(`专业$`)
	openParenRe   = regexp.MustCompile(`^[\(（]`)
	closeParenRe  = regexp.MustCompile(`[\)）]$`)

	punctLight = strings.NewReplacer("　", " ", " ", " ", "（", "(", "）", ")", "：", ":")
)

func normalizeSpaces(s string) string {
	return strings.Join(strings.Fields(punctLight.Replace(s)), " ")
}

func normalizeNoSpaces(s string) string {
	return strings.Join(strings.Fields(punctLight.Replace(s)), "")
}

// decodeResult parses the model content into a Result and applies local
// postprocessing against the original cell text.
func decodeResult(content, rawText string) (*Result, error) {
	s := strings.TrimSpace(content)
	s = strings.TrimPrefix(s, "```json")
	s = strings.TrimSuffix(s, "```")
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, ErrEmptyResponse
	}

	var result Result
	if err := json.Unmarshal([]byte(s), &result); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidJSON, err)
	}
	if result.Courses == nil {
		result.Courses = []CourseResult{}
	}

	postprocess(&result, rawText)
	return &result, nil
}

func postprocess(result *Result, rawText string) {
	for i := range result.Courses {
		c := &result.Courses[i]

		// The model's expanded week array is the least reliable field;
		// recompute it whenever the raw string survived.
		if c.RawWeeks != "" {
			if weeks := weekrange.Decode(c.RawWeeks); len(weeks) > 0 {
				c.Weeks = weeks
			}
		}
		if c.Weeks == nil {
			c.Weeks = []int{}
		}

		c.ClassName = closeParenRe.ReplaceAllString(
			openParenRe.ReplaceAllString(normalizeNoSpaces(c.ClassName), ""), "")
		c.Room = normalizeNoSpaces(c.Room)
		c.Building = normalizeSpaces(c.Building)
		c.Location = normalizeSpaces(c.Location)
		c.Name = normalizeSpaces(c.Name)
		c.Teacher = normalizeSpaces(c.Teacher)

		repairMajorSuffix(result, c, rawText)

		c.Building, c.Room = location.RepairPair(c.Building, c.Room)
	}
}

// repairMajorSuffix merges "X专业" class names back into generic course
// names like 导论 or 概论 when the merged form occurs verbatim in the
// original cell. The merge never invents characters, so it only fires on
// an exact flat-text match.
func repairMajorSuffix(result *Result, c *CourseResult, rawText string) {
	if !genericNameRe.MatchString(c.Name) {
		return
	}
	if !majorTailRe.MatchString(c.ClassName) ||
		classMarkerRe.MatchString(c.ClassName) ||
		digitRe.MatchString(c.ClassName) {
		return
	}

	orig := strings.ReplaceAll(strings.ReplaceAll(rawText, "\r\n", "\n"), "\r", "\n")
	flat := strings.ReplaceAll(orig, "\n", "")
	merged := c.ClassName + c.Name
	if !strings.Contains(flat, merged) {
		return
	}

	idxC := runeIndex(orig, c.ClassName, 0)
	idxN := -1
	if idxC >= 0 {
		idxN = runeIndex(orig, c.Name, idxC)
	} else {
		idxN = runeIndex(orig, c.Name, 0)
	}

	var spans [][]int
	if idxC >= 0 && idxN >= 0 {
		c.NameSpan = []int{idxC, idxN + len([]rune(c.Name))}
		spans = [][]int{
			{idxC, idxC + len([]rune(c.ClassName))},
			{idxN, idxN + len([]rune(c.Name))},
		}
	}

	c.Name = merged
	c.ClassName = ""

	result.Repairs = append(result.Repairs, RepairNote{
		From:       "post",
		To:         "post",
		Reason:     "修复“专业”前缀被误判为班级，合并为完整课程名",
		Confidence: 0.9,
		Spans:      spans,
	})
}

// runeIndex returns the rune offset of the first occurrence of sub in s
// at or after rune offset from, or -1. Offsets are in runes so they line
// up with the lineBreaks indices sent to the model.
func runeIndex(s, sub string, from int) int {
	runes := []rune(s)
	if from < 0 || from > len(runes) {
		return -1
	}
	byteIdx := strings.Index(string(runes[from:]), sub)
	if byteIdx < 0 {
		return -1
	}
	return from + len([]rune(string(runes[from:])[:byteIdx]))
}
