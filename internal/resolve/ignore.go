package resolve

import "regexp"

// ignorePatterns identify non-course cells: weekday headers, period
// labels, time-of-day rows, and sheet metadata. Matching cells never
// reach either extraction path.
var ignorePatterns = []*regexp.Regexp{
	// Days: 星期一, 周一 (whitespace tolerated)
	regexp.MustCompile(`(星期|周)[\s\n]*[一二三四五六日天]`),
	// Periods: 1-2节, 第九节, 第-二节 (hyphen after 第 tolerated)
	regexp.MustCompile(`第\s*-*\s*[一二三四五六七八九十\d]+\s*[-~+～至,\s]*\s*[一二三四五六七八九十\d]*\s*节`),
	// Titles and metadata
	regexp.MustCompile(`学年|学期|课表|教工号|打印时间|注一|内容顺序`),
	// Time of day: 上午, 下午, 晚上, 早晨
	regexp.MustCompile(`^(上|下|晚|早|午)[\s\n]*(午|晚|晨|间|上)$`),
	// Header label
	regexp.MustCompile(`^节次$`),
}

// IsIgnorable reports whether a cell is layout or metadata rather than
// course content.
func IsIgnorable(cell string) bool {
	for _, p := range ignorePatterns {
		if p.MatchString(cell) {
			return true
		}
	}
	return false
}
