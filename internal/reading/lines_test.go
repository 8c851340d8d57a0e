package reading

import (
	"testing"

	"github.com/google/go-cmp/cmp"

	"scribe/internal/faults"
)

func TestSplitBlockNeedsFiveLines(t *testing.T) {
	text := "公历：2025年10月8日8:42 星期三\n\n农历：乙巳年八月十七 辰时\n干支：乙巳 丙戌 庚子 庚辰\n旬空：寅卯 午未 辰巳 申酉\n"
	if _, err := SplitBlock(text); !faults.Is(err, faults.IncompleteBlock) {
		t.Fatalf("expected incomplete block, got %v", err)
	}
	block, err := SplitBlock(text + "寒露10月8日8:42  霜降10月23日11:52")
	if err != nil {
		t.Fatalf("SplitBlock: %v", err)
	}
	if block.Lunar != "农历：乙巳年八月十七 辰时" {
		t.Fatalf("unexpected lunar line %q", block.Lunar)
	}
}

func TestParseGregorian(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Gregorian
	}{
		{"full", "公历：2025年10月8日8:42 星期三", Gregorian{"2025", "10", "8", "08:42", 3}},
		{"full-width colon and sunday", "公历： 2024年2月4日16：05 周天", Gregorian{"2024", "2", "4", "16:05", 7}},
		{"no weekday", "公历：2024年12月31日23:59", Gregorian{"2024", "12", "31", "23:59", 0}},
		{"clock only", "公历：某日 9:07", Gregorian{HourMinute: "09:07"}},
		{"nothing", "公历：", Gregorian{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParseGregorian(tt.line)); diff != "" {
				t.Fatalf("ParseGregorian mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestParseLunar(t *testing.T) {
	tests := []struct {
		name string
		line string
		want Lunar
	}{
		{"zodiac annotation", "农历：乙巳(蛇)年八月十七 辰时", Lunar{"乙巳", 8, 17, "辰时"}},
		{"full-width parens", "农历：甲辰（龙）年正月初十 子时", Lunar{"甲辰", 1, 10, "子时"}},
		{"big month qualifier", "农历：甲辰年腊月大廿三 亥时", Lunar{"甲辰", 0, 23, "亥时"}},
		{"leap month", "农历：乙巳年闰六月小初一 午时", Lunar{"乙巳", 6, 1, "午时"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if diff := cmp.Diff(tt.want, ParseLunar(tt.line)); diff != "" {
				t.Fatalf("ParseLunar mismatch (-want +got):\n%s", diff)
			}
		})
	}
}

func TestLunarDaySizeStripsOneLeadingQualifier(t *testing.T) {
	for in, want := range map[string]string{
		"大廿三":  "廿三",
		"小初一":  "初一",
		"大小初五": "小初五",
		"初五大":  "初五大",
	} {
		if got := lunarDaySize.ReplaceAllString(in, ""); got != want {
			t.Fatalf("strip %q = %q, want %q", in, got, want)
		}
	}
}

func TestParsePillarsPadsAndTruncates(t *testing.T) {
	if got, want := ParseStemBranch("干支：乙巳  丙戌\t庚子 庚辰"), (Pillars{"乙巳", "丙戌", "庚子", "庚辰"}); got != want {
		t.Fatalf("ParseStemBranch = %+v, want %+v", got, want)
	}
	if got, want := ParseVoidBranch("旬空：寅卯 午未"), (Pillars{Year: "寅卯", Month: "午未"}); got != want {
		t.Fatalf("ParseVoidBranch = %+v, want %+v", got, want)
	}
	if got, want := ParseVoidBranch("旬空：a b c d e"), (Pillars{"a", "b", "c", "d"}); got != want {
		t.Fatalf("ParseVoidBranch = %+v, want %+v", got, want)
	}
}

func TestParseSolarTerms(t *testing.T) {
	first, second := ParseSolarTerms("  寒露10月8日8:42   霜降10月23日11:52 ")
	if first != "寒露10月8日8:42" || second != "霜降10月23日11:52" {
		t.Fatalf("unexpected terms %q / %q", first, second)
	}
	first, second = ParseSolarTerms("寒露10月8日8:42")
	if first != "寒露10月8日8:42" || second != "" {
		t.Fatalf("unexpected single term %q / %q", first, second)
	}
}

func TestParseIntro(t *testing.T) {
	text := "观之否；月卦身酉；世身在四爻；八节：寒露\r\n神煞：驿马-寅 桃花-酉\n"
	want := Intro{
		Name:           "观之否",
		MonthPosition:  "酉",
		BodyPosition:   "四爻",
		EightFestivals: "八节：寒露",
		Spirits:        "驿马-寅 桃花-酉",
		Summary:        "观之否；月卦身酉；世身在四爻；八节：寒露\r\n神煞：驿马-寅 桃花-酉",
		PrimaryAbbrev:  "观",
		ChangedAbbrev:  "否",
	}
	if diff := cmp.Diff(want, ParseIntro(text)); diff != "" {
		t.Fatalf("ParseIntro mismatch (-want +got):\n%s", diff)
	}
	if got := ParseIntro(text).FallbackKey(); got != "观之否" {
		t.Fatalf("FallbackKey = %q", got)
	}
	if got := ParseIntro("乾为天"); got.PrimaryAbbrev != "" || got.ChangedAbbrev != "" || got.FallbackKey() != "" {
		t.Fatalf("unexpected abbreviations for unchanged hexagram: %+v", got)
	}
	if got := ParseIntro("   "); got != (Intro{}) {
		t.Fatalf("expected empty intro, got %+v", got)
	}
}
