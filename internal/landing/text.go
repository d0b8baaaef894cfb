package landing

import (
	stdhtml "html"
	"math"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/microcosm-cc/bluemonday"
	"golang.org/x/net/html"
)

const (
	wordsPerMinute = 200
	// Added to every estimate to account for code blocks and images.
	readingTimeBase = 5
)

var strictPolicy = bluemonday.StrictPolicy()

// StripMarkup removes every tag from s and decodes entities.
func StripMarkup(s string) string {
	if s == "" {
		return ""
	}
	return stdhtml.UnescapeString(strictPolicy.Sanitize(s))
}

// ReadingTime estimates minutes to read the given HTML content. Zero means
// the post carries no content and no estimate should be shown.
func ReadingTime(content string) int {
	if strings.TrimSpace(content) == "" {
		return 0
	}
	words := 0
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(content))
	if err != nil {
		words = len(strings.Fields(StripMarkup(content)))
	} else {
		for _, n := range doc.Nodes {
			words += countWords(n)
		}
	}
	return readingTimeBase + int(math.Ceil(float64(words)/wordsPerMinute))
}

// countWords counts words per text node so adjacent blocks such as
// "<p>a</p><p>b</p>" do not run together.
func countWords(n *html.Node) int {
	switch {
	case n.Type == html.TextNode:
		return len(strings.Fields(n.Data))
	case n.Type == html.ElementNode && (n.Data == "script" || n.Data == "style"):
		return 0
	}
	total := 0
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		total += countWords(c)
	}
	return total
}

// Excerpt returns the first n words of the plain text of s, without the
// "Table of Contents" label some CMS plugins inject into excerpts.
func Excerpt(s string, n int) string {
	text := strings.Replace(StripMarkup(s), "Table of Contents", "", 1)
	words := strings.Fields(text)
	if n <= 0 || len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + "..."
}
