package util

import "strings"

// MaskSecret keeps the first visible bytes of a credential and hides the
// rest. Short values are hidden entirely.
func MaskSecret(s string, visible int) string {
	if len(s) <= visible {
		return "***"
	}
	return s[:visible] + "***"
}

// SanitizeEnvValue trims whitespace and one pair of matching quotes, the
// way values copied out of a .env file tend to arrive.
func SanitizeEnvValue(s string) string {
	s = strings.TrimSpace(s)
	if len(s) >= 2 && (s[0] == '"' || s[0] == '\'') && s[len(s)-1] == s[0] {
		s = s[1 : len(s)-1]
	}
	return strings.TrimSpace(s)
}
