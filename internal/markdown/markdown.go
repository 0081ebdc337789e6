package markdown

import "strings"

// Taken from https://core.telegram.org/bots/api#markdownv2-style.
const specialCharsV2 = `_*[]()~` + "`" + `>#+-=|{}.!\`

var specialV2 = func() [256]bool {
	var m [256]bool
	for _, c := range []byte(specialCharsV2) {
		m[c] = true
	}
	return m
}()

// EscapeV2 escapes text for Telegram's MarkdownV2 parse mode.
func EscapeV2(input string) string {
	charsToEscape := 0
	for i := range len(input) {
		if specialV2[input[i]] {
			charsToEscape++
		}
	}
	if charsToEscape == 0 {
		return input
	}

	var b strings.Builder
	b.Grow(len(input) + charsToEscape)

	for i := range len(input) {
		c := input[i]
		if specialV2[c] {
			b.WriteByte('\\')
		}
		b.WriteByte(c)
	}

	return b.String()
}

func BoldV2(text string) string {
	return "*" + EscapeV2(text) + "*"
}

func ItalicV2(text string) string {
	return "_" + EscapeV2(text) + "_"
}
