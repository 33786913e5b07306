package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRemoveProhibitedCharacters(t *testing.T) {
	assert.Equal(t, "abc", RemoveProhibitedCharacters("a\x00b\x1fc"))
	assert.Equal(t, "a\nb\tc", RemoveProhibitedCharacters("a\nb\tc"))
	assert.Equal(t, "ab", RemoveProhibitedCharacters("a\x7fb"))
	assert.Equal(t, "обычный текст", RemoveProhibitedCharacters("обычный текст"))
}

func TestSanitizeDescription_KeepsAllowedTags(t *testing.T) {
	out := SanitizeDescription("Текст<br>ещё<ul><li>один</li><li>два</li></ul>")
	assert.Equal(t, "Текст<br/>ещё<ul><li>один</li><li>два</li></ul>", out)
}

func TestSanitizeDescription_OrderedListBecomesUnordered(t *testing.T) {
	out := SanitizeDescription("<ol><li>один</li></ol>")
	assert.Equal(t, "<ul><li>один</li></ul>", out)
}

func TestSanitizeDescription_HeadingsBecomeBreaks(t *testing.T) {
	out := SanitizeDescription("<h1>Заголовок</h1>текст")
	// the leading break is trimmed, the trailing one separates the text
	assert.Equal(t, "Заголовок<br/>текст", out)
}

func TestSanitizeDescription_UnknownTagsUnwrapped(t *testing.T) {
	out := SanitizeDescription(`<div><span style="color:red">красный</span> текст</div>`)
	assert.Equal(t, "красный текст", out)
}

func TestSanitizeDescription_Paragraphs(t *testing.T) {
	out := SanitizeDescription("<p>первый</p><p>второй</p>")
	assert.Equal(t, "первый<br/><br/>второй<br/>", out)
}
