package utils

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSanitizePlainTextCollapsesWhitespace(t *testing.T) {
	got, err := SanitizePlainText("  no   onions\t please  ", SanitizeOptions{MaxLength: 500})
	require.NoError(t, err)
	assert.Equal(t, "no onions please", got)
}

func TestSanitizePlainTextNormalizesCompatibilityForms(t *testing.T) {
	// fullwidth input normalizes to plain ASCII under NFKC
	got, err := SanitizePlainText("ｎｏ ｏｎｉｏｎｓ", SanitizeOptions{MaxLength: 500})
	require.NoError(t, err)
	assert.Equal(t, "no onions", got)
}

func TestSanitizePlainTextRejectsLineBreaksByDefault(t *testing.T) {
	_, err := SanitizePlainText("peanuts\nshellfish", SanitizeOptions{FieldLabel: "allergy notes", MaxLength: 500})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "line breaks")

	_, err = SanitizePlainText("peanuts\r\nshellfish", SanitizeOptions{FieldLabel: "allergy notes", MaxLength: 500})
	assert.Error(t, err)
}

func TestSanitizePlainTextAllowsLineBreaksWhenOptedIn(t *testing.T) {
	got, err := SanitizePlainText("no onions\r\nbring cutlery", SanitizeOptions{MaxLength: 500, AllowNewlines: true})
	require.NoError(t, err)
	assert.Equal(t, "no onions\nbring cutlery", got)
}

func TestSanitizePlainTextRejectsControlCharacters(t *testing.T) {
	_, err := SanitizePlainText("no\x00onions", SanitizeOptions{MaxLength: 500})
	assert.Error(t, err)

	_, err = SanitizePlainText("no\x1bonions", SanitizeOptions{MaxLength: 500})
	assert.Error(t, err)
}

func TestSanitizePlainTextRejectsEmoji(t *testing.T) {
	for _, s := range []string{
		"extra salsa \U0001F336",
		"\U0001F600 thanks",
		"flag \U0001F1F2\U0001F1FD",
	} {
		_, err := SanitizePlainText(s, SanitizeOptions{MaxLength: 500})
		assert.Error(t, err, s)
	}
}

func TestSanitizePlainTextLengthBounds(t *testing.T) {
	_, err := SanitizePlainText(strings.Repeat("a", 501), SanitizeOptions{FieldLabel: "notes", MaxLength: 500})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "at most 500")

	got, err := SanitizePlainText(strings.Repeat("a", 500), SanitizeOptions{MaxLength: 500})
	require.NoError(t, err)
	assert.Len(t, got, 500)

	_, err = SanitizePlainText("   ", SanitizeOptions{FieldLabel: "name", MinLength: 1})
	assert.Error(t, err)
}

func TestSanitizeOptionalTreatsEmptyAsAbsent(t *testing.T) {
	got, err := SanitizeOptional(nil, SanitizeOptions{MaxLength: 500})
	require.NoError(t, err)
	assert.Nil(t, got)

	empty := ""
	got, err = SanitizeOptional(&empty, SanitizeOptions{MaxLength: 500})
	require.NoError(t, err)
	assert.Nil(t, got)

	blank := "   "
	got, err = SanitizeOptional(&blank, SanitizeOptions{MaxLength: 500})
	require.NoError(t, err)
	assert.Nil(t, got)

	value := " peanuts "
	got, err = SanitizeOptional(&value, SanitizeOptions{MaxLength: 500})
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "peanuts", *got)
}
