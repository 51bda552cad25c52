package handlers

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSanitizeEmail(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "john@example.com", SanitizeEmail("  John@Example.COM "))
	assert.Equal(t, "", SanitizeEmail(strings.Repeat("a", MaxEmailLength)+"@example.com"))
}

func TestSanitizePassword(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "secret-pass", SanitizePassword(" secret-pass "))
	assert.Equal(t, "", SanitizePassword(strings.Repeat("x", MaxPasswordLength+1)))
}

func TestSanitizeName_StripsMarkup(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "John", SanitizeName("John"))
	assert.Equal(t, "John", SanitizeName("Jo<b>h</b>n"))
	assert.NotContains(t, SanitizeName(`Jo<script>alert("xss")</script>hn`), "<script>")
}

func TestSanitizeName_AllMarkupKeepsEscapedValue(t *testing.T) {
	t.Parallel()

	got := SanitizeName(`<script>alert("xss")</script>`)
	assert.NotEmpty(t, got)
	assert.NotContains(t, got, "<script>")
}

func TestSanitizeName_Truncates(t *testing.T) {
	t.Parallel()

	got := SanitizeName(strings.Repeat("a", MaxNameLength+50))
	assert.Len(t, got, MaxNameLength)
}
