package reading

import "strings"

// numeralValues is the calendar-numeral alphabet. 初 is the first-half-of-month
// prefix; 正 is the first month.
var numeralValues = map[rune]int{
	'〇': 0, '零': 0,
	'一': 1, '二': 2, '三': 3, '四': 4, '五': 5,
	'六': 6, '七': 7, '八': 8, '九': 9,
	'十': 10, '廿': 20, '卅': 30,
	'初': 0, '正': 1,
}

// ParseNumeral converts a run of calendar numerals (八, 十七, 廿三, 初十, 正)
// to an integer. Runes outside the alphabet are ignored; anything left
// unrecognized yields 0.
func ParseNumeral(s string) int {
	var runes []rune
	for _, r := range strings.TrimSpace(s) {
		if _, ok := numeralValues[r]; ok {
			runes = append(runes, r)
		}
	}
	if len(runes) == 0 {
		return 0
	}

	if len(runes) == 1 {
		switch runes[0] {
		case '十', '廿', '卅':
			return numeralValues[runes[0]]
		}
	}

	switch runes[0] {
	case '初':
		if len(runes) < 2 {
			return 0
		}
		if runes[1] == '十' {
			return 10
		}
		return digitValue(runes[1:2])
	case '廿', '卅':
		return numeralValues[runes[0]] + digitValue(runes[1:2])
	}

	if i := indexRune(runes, '十'); i >= 0 {
		tens := 1
		if i > 0 {
			tens = digitValue(runes[:i])
		}
		return tens*10 + digitValue(runes[i+1:])
	}
	return digitValue(runes)
}

// digitValue maps exactly one digit rune to its value; any other run is 0.
func digitValue(runes []rune) int {
	if len(runes) != 1 {
		return 0
	}
	switch runes[0] {
	case '十', '廿', '卅':
		return 0
	}
	return numeralValues[runes[0]]
}

func indexRune(runes []rune, target rune) int {
	for i, r := range runes {
		if r == target {
			return i
		}
	}
	return -1
}
