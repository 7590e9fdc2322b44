package validators

import "strings"

// SanitizeString trims whitespace, drops control characters and path
// separators, and caps the result at maxLen bytes. Callers pass user-supplied
// strings that end up in storage object names or log fields.
func SanitizeString(input string, maxLen int) string {
	cleaned := strings.Map(func(r rune) rune {
		if r < 0x20 || r == 0x7f || r == '/' || r == '\\' {
			return -1
		}
		return r
	}, strings.TrimSpace(input))

	if maxLen > 0 && len(cleaned) > maxLen {
		return cleaned[:maxLen]
	}
	return cleaned
}
