package tui

import (
	"strings"
	"unicode/utf8"
)

// maxInputLen is the maximum number of runes allowed in a form field.
const maxInputLen = 256

// maskRune replaces each rune of a hidden field.
const maskRune = "•"

// editRune processes a keystroke for inline text editing.
// Handles backspace (rune-aware) and single printable characters.
// Returns the text unchanged for non-printable keys (enter, esc, etc.).
// Input is clamped to maxInputLen runes.
func editRune(text string, key string) string {
	switch key {
	case "backspace":
		if len(text) > 0 {
			runes := []rune(text)
			return string(runes[:len(runes)-1])
		}
		return text
	default:
		if utf8.RuneCountInString(key) == 1 {
			if utf8.RuneCountInString(text) >= maxInputLen {
				return text
			}
			return text + key
		}
		return text
	}
}

// field is one labelled line of a form.
type field struct {
	label       string
	value       string
	placeholder string
	secret      bool
}

// display returns the value as it should be drawn. Secret fields are
// masked unless reveal is set.
func (f field) display(reveal bool) string {
	if f.secret && !reveal {
		return strings.Repeat(maskRune, utf8.RuneCountInString(f.value))
	}
	return f.value
}

// renderField draws a form line with a cursor when focused.
func renderField(f field, focused, reveal bool) string {
	cursor := "  "
	label := metaStyle.Render(f.label)
	if focused {
		cursor = inputPromptStyle.Render("> ")
		label = selectedStyle.Render(f.label)
	}
	value := f.display(reveal)
	switch {
	case value == "" && !focused:
		value = inputPlaceholderStyle.Render(f.placeholder)
	case focused:
		value = normalStyle.Render(value) + accentStyle.Render("█")
	default:
		value = dimStyle.Render(value)
	}
	return cursor + label + "  " + value
}

// truncateToHeight limits output to maxLines newline-delimited lines.
// Returns the original string if it fits or maxLines is <= 0.
func truncateToHeight(s string, maxLines int) string {
	if maxLines <= 0 {
		return s
	}
	n := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			n++
			if n >= maxLines {
				return s[:i+1]
			}
		}
	}
	return s
}
