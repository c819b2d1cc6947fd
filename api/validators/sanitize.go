package validators

import "strings"

// SanitizeString trims whitespace, strips control and markup characters, and
// clamps the value. Filter and sort inputs pass through here before reaching
// a query builder.
func SanitizeString(input string, maxLen int) string {
	trimmed := strings.TrimSpace(input)

	var b strings.Builder
	b.Grow(len(trimmed))
	for _, r := range trimmed {
		if r < 0x20 || r == 0x7f {
			continue
		}
		switch r {
		case '<', '>', ';', '\'', '"', '\\':
			continue
		}
		b.WriteRune(r)
	}

	out := b.String()
	if maxLen > 0 && len(out) > maxLen {
		out = out[:maxLen]
	}
	return out
}
