package utils

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"golang.org/x/text/unicode/norm"
)

type SanitizeOptions struct {
	FieldLabel    string
	MaxLength     int
	MinLength     int
	AllowNewlines bool
}

var (
	whitespaceRun = regexp.MustCompile(`\s+`)
	crlf          = regexp.MustCompile(`\r\n?`)
	tabRun        = regexp.MustCompile(`\t+`)

	// Pictographic blocks rejected in diner-provided text. Not an
	// exhaustive Extended_Pictographic table, but covers the emoji
	// planes actually typed on phone keyboards.
	emojiTable = &unicode.RangeTable{
		R16: []unicode.Range16{
			{Lo: 0x2600, Hi: 0x27BF, Stride: 1}, // misc symbols, dingbats
		},
		R32: []unicode.Range32{
			{Lo: 0x1F1E6, Hi: 0x1F1FF, Stride: 1}, // regional indicators
			{Lo: 0x1F300, Hi: 0x1F5FF, Stride: 1},
			{Lo: 0x1F600, Hi: 0x1F64F, Stride: 1},
			{Lo: 0x1F680, Hi: 0x1F6FF, Stride: 1},
			{Lo: 0x1F900, Hi: 0x1F9FF, Stride: 1},
			{Lo: 0x1FA70, Hi: 0x1FAFF, Stride: 1},
		},
	}
)

// SanitizePlainText normalizes (NFKC), collapses whitespace, trims and
// validates a free-text field. Control characters and emoji are always
// rejected; newlines only pass when AllowNewlines is set.
func SanitizePlainText(value string, opts SanitizeOptions) (string, error) {
	label := opts.FieldLabel
	if label == "" {
		label = "field"
	}

	normalized := norm.NFKC.String(value)
	if !opts.AllowNewlines && strings.ContainsAny(normalized, "\r\n") {
		return "", &ValidationError{Message: fmt.Sprintf("%s cannot contain line breaks", label)}
	}
	if opts.AllowNewlines {
		normalized = crlf.ReplaceAllString(normalized, "\n")
		normalized = tabRun.ReplaceAllString(normalized, " ")
	} else {
		normalized = whitespaceRun.ReplaceAllString(normalized, " ")
	}
	normalized = strings.TrimSpace(normalized)

	if opts.MinLength > 0 && utf8.RuneCountInString(normalized) < opts.MinLength {
		return "", &ValidationError{Message: fmt.Sprintf("%s is required", label)}
	}
	if opts.MaxLength > 0 && utf8.RuneCountInString(normalized) > opts.MaxLength {
		return "", &ValidationError{Message: fmt.Sprintf("%s must be at most %d characters", label, opts.MaxLength)}
	}
	for _, r := range normalized {
		if r != '\n' && (r < 0x20 || r == 0x7F) {
			return "", &ValidationError{Message: fmt.Sprintf("%s contains invalid characters", label)}
		}
		if unicode.Is(emojiTable, r) {
			return "", &ValidationError{Message: fmt.Sprintf("%s cannot contain emoji", label)}
		}
	}

	return normalized, nil
}

// SanitizeOptional treats nil and empty input as absent, returning nil.
func SanitizeOptional(value *string, opts SanitizeOptions) (*string, error) {
	if value == nil || *value == "" {
		return nil, nil
	}
	cleaned, err := SanitizePlainText(*value, opts)
	if err != nil {
		return nil, err
	}
	if cleaned == "" {
		return nil, nil
	}
	return &cleaned, nil
}
