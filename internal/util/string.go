package util

import "strings"

// TruncateString truncates a string to maxRunes characters (rune-based, not byte-based)
// If truncated, appends "..." to the result
func TruncateString(s string, maxRunes int) string {
	runes := []rune(s)
	if len(runes) <= maxRunes {
		return s
	}
	return string(runes[:maxRunes]) + "..."
}

// Normalize performs basic string normalization (lowercase + trim)
func Normalize(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}

// CanonicalHeader normalizes a spreadsheet header into its canonical key form:
// case-folded with whitespace, hyphens and underscores removed. "Fee Range",
// "fee_range" and "FeeRange" all map to "feerange".
func CanonicalHeader(header string) string {
	header = Normalize(header)
	if header == "" {
		return ""
	}

	var builder strings.Builder
	for _, r := range header {
		switch r {
		case ' ', '\t', '-', '_':
			continue
		default:
			builder.WriteRune(r)
		}
	}
	return builder.String()
}

// Slugify converts a display name to URL-friendly slug format: lowercase,
// spaces to hyphens, punctuation dropped, repeated hyphens collapsed.
func Slugify(name string) string {
	name = Normalize(name)

	var builder strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			builder.WriteRune(r)
		case r == ' ' || r == '-' || r == '_':
			builder.WriteRune('-')
		}
	}

	slug := builder.String()
	for strings.Contains(slug, "--") {
		slug = strings.ReplaceAll(slug, "--", "-")
	}
	return strings.Trim(slug, "-")
}

// SplitCSV splits comma-separated text into trimmed segments, discarding
// empty ones. Empty input yields an empty (non-nil) slice.
func SplitCSV(value string) []string {
	result := make([]string, 0)
	if strings.TrimSpace(value) == "" {
		return result
	}
	for _, part := range strings.Split(value, ",") {
		if trimmed := strings.TrimSpace(part); trimmed != "" {
			result = append(result, trimmed)
		}
	}
	return result
}

// UniqueStrings removes duplicates while preserving first-seen order.
func UniqueStrings(values []string) []string {
	seen := make(map[string]struct{}, len(values))
	result := make([]string, 0, len(values))
	for _, v := range values {
		if _, exists := seen[v]; !exists {
			seen[v] = struct{}{}
			result = append(result, v)
		}
	}
	return result
}
