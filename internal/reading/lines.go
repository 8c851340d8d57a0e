package reading

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"

	"scribe/internal/faults"
)

// BlockLines is the number of non-empty lines a complete reading carries.
const BlockLines = 5

// Block holds the five key lines of a reading in display order.
type Block struct {
	Gregorian  string
	Lunar      string
	StemBranch string
	VoidBranch string
	SolarTerms string
}

// Gregorian is the parsed civil date line. Weekday is 1 (Monday) through 7
// (Sunday), or 0 when the line carried no recognizable weekday.
type Gregorian struct {
	Year       string
	Month      string
	Day        string
	HourMinute string
	Weekday    int
}

// Lunar is the parsed lunar date line. Month and Day are 0 when the numerals
// could not be read.
type Lunar struct {
	Year  string
	Month int
	Day   int
	Time  string
}

// Pillars holds the four year/month/day/hour tokens shared by the stem-branch
// and void-branch lines.
type Pillars struct {
	Year  string
	Month string
	Day   string
	Time  string
}

var (
	gregorianLabel  = regexp.MustCompile(`^\s*公历\s*[：:]\s*`)
	lunarLabel      = regexp.MustCompile(`^\s*农历\s*[：:]\s*`)
	stemBranchLabel = regexp.MustCompile(`^\s*干支\s*[：:]\s*`)
	voidBranchLabel = regexp.MustCompile(`^\s*旬空\s*[：:]\s*`)

	gregorianPattern = regexp.MustCompile(`(\d{4})\s*年\s*(\d{1,2})\s*月\s*(\d{1,2})\s*日\s*([0-2]?\d)[:：](\d{2})\s*(.*)$`)
	clockPattern     = regexp.MustCompile(`([0-2]?\d)[:：](\d{2})`)
	weekdayPattern   = regexp.MustCompile(`(?:星期|周)\s*([一二三四五六日天])`)

	lunarYearPattern  = regexp.MustCompile(`^(.*?)年`)
	lunarMonthPattern = regexp.MustCompile(`年(.*?)月`)
	lunarDayPattern   = regexp.MustCompile(`月(.*?)(?:[\s\p{Zs}]|$)`)
	parenPattern      = regexp.MustCompile(`[(（].*?[)）]`)
	lunarDaySize      = regexp.MustCompile(`^[大小]`)

	whitespaceRun = regexp.MustCompile(`[\s\p{Zs}]+`)
)

var weekdayNumbers = map[string]int{
	"一": 1, "二": 2, "三": 3, "四": 4, "五": 5, "六": 6, "日": 7, "天": 7,
}

// NonEmptyLines splits text on line breaks and keeps the lines that contain
// anything besides whitespace, right-trimmed.
func NonEmptyLines(text string) []string {
	raw := strings.Split(normalizeNewlines(text), "\n")
	lines := make([]string, 0, len(raw))
	for _, line := range raw {
		line = strings.TrimRightFunc(line, unicode.IsSpace)
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines = append(lines, line)
	}
	return lines
}

// SplitBlock picks the five key lines out of a capture.
func SplitBlock(text string) (Block, error) {
	lines := NonEmptyLines(text)
	if len(lines) < BlockLines {
		return Block{}, faults.Incomplete("reading has %d non-empty lines, need %d", len(lines), BlockLines)
	}
	return Block{
		Gregorian:  lines[0],
		Lunar:      lines[1],
		StemBranch: lines[2],
		VoidBranch: lines[3],
		SolarTerms: lines[4],
	}, nil
}

// ParseGregorian reads `公历：2025年10月8日8:42 星期三`. When the full pattern
// does not match only the clock time is kept.
func ParseGregorian(line string) Gregorian {
	text := strings.TrimSpace(gregorianLabel.ReplaceAllString(line, ""))
	if m := gregorianPattern.FindStringSubmatch(text); m != nil {
		return Gregorian{
			Year:       m[1],
			Month:      m[2],
			Day:        m[3],
			HourMinute: formatClock(m[4], m[5]),
			Weekday:    ParseWeekday(m[6]),
		}
	}
	if m := clockPattern.FindStringSubmatch(text); m != nil {
		return Gregorian{HourMinute: formatClock(m[1], m[2])}
	}
	return Gregorian{}
}

// ParseWeekday maps 星期一..星期日 (or 周一..周天) to 1..7.
func ParseWeekday(text string) int {
	m := weekdayPattern.FindStringSubmatch(text)
	if m == nil {
		return 0
	}
	return weekdayNumbers[m[1]]
}

// ParseLunar reads `农历：乙巳(蛇)年八月十七 申时`.
func ParseLunar(line string) Lunar {
	text := strings.TrimSpace(lunarLabel.ReplaceAllString(line, ""))

	var out Lunar
	if m := lunarYearPattern.FindStringSubmatch(text); m != nil {
		out.Year = strings.TrimSpace(parenPattern.ReplaceAllString(m[1], ""))
	}
	if m := lunarMonthPattern.FindStringSubmatch(text); m != nil {
		out.Month = ParseNumeral(m[1])
	}
	if m := lunarDayPattern.FindStringSubmatch(text); m != nil {
		out.Day = ParseNumeral(lunarDaySize.ReplaceAllString(m[1], ""))
	}
	if fields := strings.Fields(text); len(fields) > 0 {
		out.Time = fields[len(fields)-1]
	}
	return out
}

// ParseStemBranch reads the four stem-branch pillars.
func ParseStemBranch(line string) Pillars {
	return parsePillars(stemBranchLabel.ReplaceAllString(line, ""))
}

// ParseVoidBranch reads the four void-branch pairs.
func ParseVoidBranch(line string) Pillars {
	return parsePillars(voidBranchLabel.ReplaceAllString(line, ""))
}

func parsePillars(text string) Pillars {
	parts := splitWhitespace(text)
	for len(parts) < 4 {
		parts = append(parts, "")
	}
	return Pillars{Year: parts[0], Month: parts[1], Day: parts[2], Time: parts[3]}
}

// ParseSolarTerms splits `寒露10月8日8:42  霜降10月23日11:52` into its two terms.
func ParseSolarTerms(line string) (string, string) {
	parts := splitWhitespace(line)
	switch len(parts) {
	case 0:
		return "", ""
	case 1:
		return parts[0], ""
	default:
		return parts[0], parts[1]
	}
}

func splitWhitespace(text string) []string {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil
	}
	return whitespaceRun.Split(text, -1)
}

func formatClock(hour, minute string) string {
	h := 0
	for _, r := range hour {
		h = h*10 + int(r-'0')
	}
	return fmt.Sprintf("%02d:%s", h, minute)
}

func normalizeNewlines(text string) string {
	return strings.ReplaceAll(text, "\r\n", "\n")
}
