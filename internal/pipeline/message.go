package pipeline

import (
	"strconv"
	"strings"

	"scribe/internal/reading"
)

const (
	recordedPrefix = "记录完成 ✅"
	paramPrefix    = "参数"
)

// DefaultFields is printed when the host configures none.
var DefaultFields = []string{reading.ColName}

// ComposeLine renders the completion line for rec, for example
// `记录完成 ✅ 卦象名字：观之否 | 序号：12`. Parameter columns (参数N) read from
// params.
func ComposeLine(fields []string, rec *reading.Record, params []string) string {
	parts := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.TrimSpace(f)
		if f == "" {
			continue
		}
		parts = append(parts, f+"："+fieldValue(f, rec, params))
	}
	if len(parts) == 0 {
		return recordedPrefix
	}
	return recordedPrefix + " " + strings.Join(parts, " | ")
}

func fieldValue(field string, rec *reading.Record, params []string) string {
	if n, ok := strings.CutPrefix(field, paramPrefix); ok {
		if i, err := strconv.Atoi(n); err == nil {
			if i >= 1 && i <= len(params) {
				return strings.TrimSpace(params[i-1])
			}
			return ""
		}
	}
	return rec.Field(field)
}
