package services

import (
	"strings"

	"golang.org/x/net/html"
)

// RemoveProhibitedCharacters strips control characters marketplaces reject
// from free-text fields. Newlines and tabs survive.
func RemoveProhibitedCharacters(s string) string {
	return strings.Map(func(r rune) rune {
		if r == '\n' || r == '\t' {
			return r
		}
		if r < 0x20 || r == 0x7F {
			return -1
		}
		return r
	}, s)
}

// SanitizeDescription reduces offer description markup to the subset the
// marketplace renders: br, ul and li pass through, ol becomes ul, headings
// and paragraphs turn into line breaks, every other tag is unwrapped with
// its text kept.
func SanitizeDescription(description string) string {
	cleaned := RemoveProhibitedCharacters(description)
	tokenizer := html.NewTokenizer(strings.NewReader(cleaned))

	var out strings.Builder
	for {
		tokenType := tokenizer.Next()
		if tokenType == html.ErrorToken {
			break
		}

		switch tokenType {
		case html.TextToken:
			out.Write(tokenizer.Text())
		case html.StartTagToken, html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "br":
				out.WriteString("<br/>")
			case "ul":
				out.WriteString("<ul>")
			case "ol":
				out.WriteString("<ul>")
			case "li":
				out.WriteString("<li>")
			case "h1", "h2", "h3", "p":
				out.WriteString("<br/>")
			}
		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			switch string(name) {
			case "ul", "ol":
				out.WriteString("</ul>")
			case "li":
				out.WriteString("</li>")
			case "h1", "h2", "h3", "p":
				out.WriteString("<br/>")
			}
		}
	}

	result := strings.TrimSpace(out.String())
	result = strings.TrimPrefix(result, "<br/>")
	return strings.TrimSpace(result)
}
