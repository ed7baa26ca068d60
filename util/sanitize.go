package util

import (
	"strings"
	"unicode"
)

// unsafeFilenameChars are removed from local download paths. Path separators
// other than the backslash survive so nested keys become nested directories.
const unsafeFilenameChars = `\:*?<>|`

// SanitizeFilename strips characters that are invalid in local file names on
// common filesystems, plus control characters.
func SanitizeFilename(s string) string {
	return strings.Map(func(r rune) rune {
		if unicode.IsControl(r) || strings.ContainsRune(unsafeFilenameChars, r) {
			return -1
		}
		return r
	}, s)
}

// SanitizeEnvValue cleans an environment variable value by removing surrounding
// quotes and trimming whitespace.
func SanitizeEnvValue(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 {
		if (s[0] == '"' && s[len(s)-1] == '"') || (s[0] == '\'' && s[len(s)-1] == '\'') {
			s = s[1 : len(s)-1]
		}
	}
	return strings.TrimSpace(s)
}
