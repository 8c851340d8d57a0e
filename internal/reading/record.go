package reading

import (
	"crypto/md5"
	"encoding/hex"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// Ledger column names, in canonical order.
const (
	ColSequence       = "序号"
	ColWrittenAt      = "excel写入时间"
	ColContentHash    = "哈希值"
	ColGregorianYear  = "公历-年"
	ColGregorianMonth = "公历-月"
	ColGregorianDay   = "公历-日"
	ColGregorianTime  = "公历-时"
	ColGregorianWeek  = "公历-星期"
	ColLunarYear      = "农历-年"
	ColLunarMonth     = "农历-月"
	ColLunarDay       = "农历-日"
	ColLunarTime      = "农历-时"
	ColStemYear       = "干支-年"
	ColStemMonth      = "干支-月"
	ColStemDay        = "干支-日"
	ColStemTime       = "干支-时"
	ColVoidYear       = "旬空-年"
	ColVoidMonth      = "旬空-月"
	ColVoidDay        = "旬空-日"
	ColVoidTime       = "旬空-时"
	ColSolarTerm1     = "时间1"
	ColSolarTerm2     = "时间2"
	ColMonthPosition  = "月卦身"
	ColBodyPosition   = "世身"
	ColEightFestivals = "八节"
	ColSpirits        = "神煞"
	ColFullText       = "卦象文本"
	ColIntroSummary   = "卦象文本简介"
	ColName           = "卦象名字"
	ColPrimaryAbbrev  = "本卦简称"
	ColChangedAbbrev  = "变卦简称"
)

// Columns is the canonical header of a fresh ledger.
var Columns = []string{
	ColSequence, ColWrittenAt, ColContentHash,
	ColGregorianYear, ColGregorianMonth, ColGregorianDay, ColGregorianTime, ColGregorianWeek,
	ColLunarYear, ColLunarMonth, ColLunarDay, ColLunarTime,
	ColStemYear, ColStemMonth, ColStemDay, ColStemTime,
	ColVoidYear, ColVoidMonth, ColVoidDay, ColVoidTime,
	ColSolarTerm1, ColSolarTerm2,
	ColMonthPosition, ColBodyPosition, ColEightFestivals, ColSpirits,
	ColFullText, ColIntroSummary,
	ColName, ColPrimaryAbbrev, ColChangedAbbrev,
}

// WrittenAtLayout formats the write-timestamp column.
const WrittenAtLayout = "2006-01-02 15:04:05"

var weekdayNames = [...]string{"星期日", "星期一", "星期二", "星期三", "星期四", "星期五", "星期六"}

// Record is one accepted capture. Sequence stays zero until the ledger
// assigns it.
type Record struct {
	Sequence    int
	WrittenAt   time.Time
	ContentHash string

	Gregorian  Gregorian
	Lunar      Lunar
	StemBranch Pillars
	VoidBranch Pillars
	SolarTerm1 string
	SolarTerm2 string

	Intro    Intro
	FullText string
}

// Cell is a single column/value pair destined for the ledger.
type Cell struct {
	Column string
	Value  any
}

// ContentHash returns the hex md5 of the raw capture text.
func ContentHash(text string) string {
	sum := md5.Sum([]byte(text))
	return hex.EncodeToString(sum[:])
}

// Assemble parses a raw capture and its intro text into a Record stamped
// with writtenAt. The content hash always covers the raw text, so replacing
// the first line with the write time never defeats deduplication.
func Assemble(primaryText, introText string, writtenAt time.Time) (*Record, error) {
	block, err := SplitBlock(primaryText)
	if err != nil {
		return nil, err
	}
	term1, term2 := ParseSolarTerms(block.SolarTerms)
	return &Record{
		WrittenAt:   writtenAt,
		ContentHash: ContentHash(primaryText),
		Gregorian:   ParseGregorian(block.Gregorian),
		Lunar:       ParseLunar(block.Lunar),
		StemBranch:  ParseStemBranch(block.StemBranch),
		VoidBranch:  ParseVoidBranch(block.VoidBranch),
		SolarTerm1:  term1,
		SolarTerm2:  term2,
		Intro:       ParseIntro(introText),
		FullText:    ReplaceFirstLine(primaryText, FormatGregorianLine(writtenAt)),
	}, nil
}

// FormatGregorianLine renders the canonical first line for t, for example
// `公历： 2025年10月8日08:42 星期三`.
func FormatGregorianLine(t time.Time) string {
	return fmt.Sprintf("公历： %d年%d月%d日%s %s", t.Year(), int(t.Month()), t.Day(), t.Format("15:04"), weekdayNames[t.Weekday()])
}

// ReplaceFirstLine swaps the first non-empty line of text for line, or
// prepends line when text has none.
func ReplaceFirstLine(text, line string) string {
	lines := strings.Split(normalizeNewlines(text), "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) != "" {
			lines[i] = line
			return strings.Join(lines, "\n")
		}
	}
	return strings.Join(append([]string{line}, lines...), "\n")
}

// WithSequence returns a copy of r carrying the ledger-assigned sequence.
func (r *Record) WithSequence(seq int) *Record {
	cp := *r
	cp.Sequence = seq
	return &cp
}

// Name is the hexagram name from the intro block.
func (r *Record) Name() string { return r.Intro.Name }

// FallbackKey is the parameter lookup key rebuilt from the abbreviations.
func (r *Record) FallbackKey() string { return r.Intro.FallbackKey() }

// Cells lists every record column in canonical order. The sequence column is
// omitted until one has been assigned.
func (r *Record) Cells() []Cell {
	cells := make([]Cell, 0, len(Columns))
	if r.Sequence > 0 {
		cells = append(cells, Cell{ColSequence, r.Sequence})
	}
	weekday := ""
	if r.Gregorian.Weekday > 0 {
		weekday = strconv.Itoa(r.Gregorian.Weekday)
	}
	return append(cells,
		Cell{ColWrittenAt, r.WrittenAt.Format(WrittenAtLayout)},
		Cell{ColContentHash, r.ContentHash},
		Cell{ColGregorianYear, r.Gregorian.Year},
		Cell{ColGregorianMonth, r.Gregorian.Month},
		Cell{ColGregorianDay, r.Gregorian.Day},
		Cell{ColGregorianTime, r.Gregorian.HourMinute},
		Cell{ColGregorianWeek, weekday},
		Cell{ColLunarYear, r.Lunar.Year},
		Cell{ColLunarMonth, r.Lunar.Month},
		Cell{ColLunarDay, r.Lunar.Day},
		Cell{ColLunarTime, r.Lunar.Time},
		Cell{ColStemYear, r.StemBranch.Year},
		Cell{ColStemMonth, r.StemBranch.Month},
		Cell{ColStemDay, r.StemBranch.Day},
		Cell{ColStemTime, r.StemBranch.Time},
		Cell{ColVoidYear, r.VoidBranch.Year},
		Cell{ColVoidMonth, r.VoidBranch.Month},
		Cell{ColVoidDay, r.VoidBranch.Day},
		Cell{ColVoidTime, r.VoidBranch.Time},
		Cell{ColSolarTerm1, r.SolarTerm1},
		Cell{ColSolarTerm2, r.SolarTerm2},
		Cell{ColMonthPosition, r.Intro.MonthPosition},
		Cell{ColBodyPosition, r.Intro.BodyPosition},
		Cell{ColEightFestivals, r.Intro.EightFestivals},
		Cell{ColSpirits, r.Intro.Spirits},
		Cell{ColFullText, r.FullText},
		Cell{ColIntroSummary, r.Intro.Summary},
		Cell{ColName, r.Intro.Name},
		Cell{ColPrimaryAbbrev, r.Intro.PrimaryAbbrev},
		Cell{ColChangedAbbrev, r.Intro.ChangedAbbrev},
	)
}

// Field returns the display value of a named column, or "" when the record
// has no such column.
func (r *Record) Field(column string) string {
	if column == ColSequence {
		if r.Sequence > 0 {
			return strconv.Itoa(r.Sequence)
		}
		return ""
	}
	for _, c := range r.Cells() {
		if c.Column == column {
			return strings.TrimSpace(fmt.Sprint(c.Value))
		}
	}
	return ""
}
