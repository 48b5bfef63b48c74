// Package richtext reads the HTML produced by the admin console's rich text
// editor.
package richtext

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

// blockTags end a line of plain text.
const blockTags = "p, div, h1, h2, h3, h4, h5, h6, li, blockquote, pre, br"

// PlainText returns the visible text of an HTML fragment with block elements
// separated by newlines and runs of spaces collapsed.
func PlainText(fragment string) string {
	if !strings.Contains(fragment, "<") {
		return collapse(fragment)
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return collapse(fragment)
	}

	doc.Find("script, style").Remove()
	doc.Find(blockTags).Each(func(_ int, s *goquery.Selection) {
		if goquery.NodeName(s) == "br" {
			s.ReplaceWithNodes(newline())
			return
		}
		s.AppendNodes(newline())
	})

	lines := strings.Split(doc.Text(), "\n")
	out := lines[:0]
	for _, line := range lines {
		if l := collapse(line); l != "" {
			out = append(out, l)
		}
	}
	return strings.Join(out, "\n")
}

// IsBlank reports whether html has no visible text, as with an editor's
// empty "<p><br></p>" value.
func IsBlank(fragment string) bool {
	return PlainText(fragment) == ""
}

// Excerpt returns at most n runes of the plain text, cut at a word boundary
// where possible and suffixed with "..." when shortened.
func Excerpt(fragment string, n int) string {
	text := strings.Join(strings.Fields(PlainText(fragment)), " ")
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	cut := string(r[:n])
	if i := strings.LastIndex(cut, " "); i > n/2 {
		cut = cut[:i]
	}
	return strings.TrimSpace(cut) + "..."
}

func newline() *html.Node {
	return &html.Node{Type: html.TextNode, Data: "\n"}
}

func collapse(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
