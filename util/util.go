package util

import "strings"

// ParseCommaSeparated splits a comma-separated flag value into trimmed,
// non-empty fields, used for parsing tag lists on the command line.
func ParseCommaSeparated(raw string) []string {
	res := make([]string, 0, 8)

	split := strings.FieldsFunc(raw, func(r rune) bool { return r == ',' })
	for _, s := range split {
		if l := strings.TrimSpace(s); len(l) > 0 {
			res = append(res, l)
		}
	}

	return res
}
