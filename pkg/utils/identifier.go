package utils

import "strings"

// BacktickIdentifier adds backticks around an identifier, quoting each part of
// a dotted name separately. Parts that are already backticked are kept.
//
// Examples:
//   - "table" -> "`table`"
//   - "database.table" -> "`database`.`table`"
//   - "`my.table`" -> "`my.table`"
//   - "" -> ""
func BacktickIdentifier(name string) string {
	if name == "" || IsBackticked(name) {
		return name
	}

	parts := strings.Split(name, ".")
	for i, part := range parts {
		if !IsBackticked(part) {
			parts[i] = "`" + strings.ReplaceAll(part, "`", "``") + "`"
		}
	}

	return strings.Join(parts, ".")
}

// IsBackticked checks if a string is a single identifier wrapped in backticks.
//
// Examples:
//   - "`table`" -> true
//   - "table" -> false
//   - "`db`.`table`" -> false
func IsBackticked(s string) bool {
	return len(s) >= 2 && s[0] == '`' && s[len(s)-1] == '`' && !strings.Contains(s[1:len(s)-1], "`")
}

// StripBackticks removes backticks from an identifier.
func StripBackticks(s string) string {
	return strings.ReplaceAll(s, "`", "")
}
