package guard

import (
	"strings"
	"unicode/utf8"
)

// MaxInputRunes caps every piece of operator-supplied text.
const MaxInputRunes = 1000

// Sanitize normalizes operator input before it reaches any store or remote
// shell: C0 and C1 control characters (U+0000-U+001F, U+007F-U+009F) are
// stripped, the result is truncated to MaxInputRunes runes and surrounding
// whitespace is trimmed. Applying Sanitize twice yields the same output.
func Sanitize(text string) string {
	var b strings.Builder
	b.Grow(len(text))
	for _, r := range text {
		if r <= 0x1f || (r >= 0x7f && r <= 0x9f) {
			continue
		}
		b.WriteRune(r)
	}

	out := b.String()
	if utf8.RuneCountInString(out) > MaxInputRunes {
		out = string([]rune(out)[:MaxInputRunes])
	}
	return strings.TrimSpace(out)
}
