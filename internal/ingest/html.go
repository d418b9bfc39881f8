package ingest

import (
	"fmt"
	"html"
	"io"
	"net/url"
	"regexp"
	"strings"

	readability "github.com/go-shiori/go-readability"
	"github.com/microcosm-cc/bluemonday"
)

var (
	tagRe       = regexp.MustCompile(`(?i)</?[a-z][a-z0-9]*(?:\s[^<>]*)?/?>`)
	lineBreakRe = regexp.MustCompile(`(?i)<br\s*/?>|</(?:p|li|div|h[1-6]|tr)>`)
)

var strict = bluemonday.StrictPolicy()

// StripTags removes inline HTML from an AI response, turning block ends and
// <br> into newlines. Text without tags is returned unchanged.
func StripTags(text string) string {
	if !tagRe.MatchString(text) {
		return text
	}
	withBreaks := lineBreakRe.ReplaceAllString(text, "$0\n")
	return html.UnescapeString(strict.Sanitize(withBreaks))
}

// FromHTML extracts the readable text of a saved web page, such as a
// chatbot answer exported from a browser. pageURL may be nil.
func FromHTML(r io.Reader, pageURL *url.URL) (string, error) {
	if pageURL == nil {
		pageURL = &url.URL{}
	}
	article, err := readability.FromReader(r, pageURL)
	if err != nil {
		return "", fmt.Errorf("extracting readable content: %w", err)
	}
	text := strings.TrimSpace(article.TextContent)
	if text == "" {
		return "", fmt.Errorf("no readable content in page")
	}
	return text, nil
}
