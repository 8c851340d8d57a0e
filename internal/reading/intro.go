package reading

import (
	"regexp"
	"strings"
)

// Intro is the parsed hexagram intro panel.
type Intro struct {
	Name           string
	MonthPosition  string
	BodyPosition   string
	EightFestivals string
	Spirits        string
	Summary        string
	PrimaryAbbrev  string
	ChangedAbbrev  string
}

// nameSeparator joins the primary and changed hexagram in a name like 观之否.
const nameSeparator = "之"

var (
	introFieldSeparator = regexp.MustCompile(`[；;]`)
	spiritsLabel        = regexp.MustCompile(`^\s*神煞\s*[：:]\s*`)
)

// ParseIntro reads an intro block such as
//
//	观之否；月卦身酉；世身在四爻；八节：寒露
//	神煞：驿马-亥 桃花-午
func ParseIntro(text string) Intro {
	summary := strings.TrimSpace(text)
	if summary == "" {
		return Intro{}
	}
	lines := strings.Split(normalizeNewlines(summary), "\n")

	var parts []string
	for _, part := range introFieldSeparator.Split(lines[0], -1) {
		if part = strings.TrimSpace(part); part != "" {
			parts = append(parts, part)
		}
	}
	field := func(i int) string {
		if i < len(parts) {
			return parts[i]
		}
		return ""
	}

	out := Intro{
		Name:           field(0),
		MonthPosition:  strings.TrimSpace(strings.TrimPrefix(field(1), "月卦身")),
		BodyPosition:   strings.TrimSpace(strings.TrimPrefix(field(2), "世身在")),
		EightFestivals: field(3),
		Summary:        summary,
	}
	if len(lines) > 1 {
		out.Spirits = spiritsLabel.ReplaceAllString(strings.TrimSpace(lines[1]), "")
	}
	if primary, changed, ok := strings.Cut(out.Name, nameSeparator); ok {
		out.PrimaryAbbrev = primary
		out.ChangedAbbrev = changed
	}
	return out
}

// FallbackKey rebuilds a hexagram name from its abbreviations. It is empty
// when neither abbreviation is known.
func (i Intro) FallbackKey() string {
	if i.PrimaryAbbrev == "" && i.ChangedAbbrev == "" {
		return ""
	}
	return i.PrimaryAbbrev + nameSeparator + i.ChangedAbbrev
}
