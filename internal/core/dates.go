// Date text conversion between the spreadsheet's day-first format
// (DD/MM/YYYY) and ISO (YYYY-MM-DD).
//
// Parsing is deliberately permissive: the functions split on the separator
// without validating ranges, matching the tolerance of the spreadsheet
// source data. Malformed non-empty input produces best-effort output.
package core

import "strings"

// DateToISO converts "DD/MM/YYYY" to "YYYY-MM-DD", zero-padding day and
// month. Empty input yields empty output. The ISO form sorts
// lexicographically in chronological order, which the record caches rely on.
func DateToISO(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	parts := strings.Split(s, "/")
	day := pad2(part(parts, 0))
	month := pad2(part(parts, 1))
	year := part(parts, 2)
	return year + "-" + month + "-" + day
}

// DateFromISO converts "YYYY-MM-DD" to "DD/MM/YYYY", zero-padding day and
// month. Empty input yields empty output.
func DateFromISO(s string) string {
	s = strings.TrimSpace(s)
	if s == "" {
		return ""
	}
	parts := strings.Split(s, "-")
	year := part(parts, 0)
	month := pad2(part(parts, 1))
	day := pad2(part(parts, 2))
	return day + "/" + month + "/" + year
}

// MonthYearOf extracts the month and year from a date in either
// representation. The month comes back un-padded ("1".."12") because it is
// used as a cache bucketing key.
func MonthYearOf(s string) (month, year string) {
	s = strings.TrimSpace(s)
	if s == "" {
		return "", ""
	}
	if strings.Contains(s, "-") {
		parts := strings.Split(s, "-")
		return unpad(part(parts, 1)), part(parts, 0)
	}
	parts := strings.Split(s, "/")
	return unpad(part(parts, 1)), part(parts, 2)
}

func part(parts []string, i int) string {
	if i < 0 || i >= len(parts) {
		return ""
	}
	return strings.TrimSpace(parts[i])
}

func pad2(s string) string {
	if len(s) == 1 {
		return "0" + s
	}
	return s
}

func unpad(s string) string {
	trimmed := strings.TrimLeft(s, "0")
	if trimmed == "" && s != "" {
		return "0"
	}
	return trimmed
}
