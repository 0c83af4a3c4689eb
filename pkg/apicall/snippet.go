package apicall

import (
	"bytes"
	"net/http"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

const maxSnippetLen = 512

// bodySnippet renders a short, log-friendly view of a response body.
// HTML error pages are reduced to their title.
func bodySnippet(header http.Header, body []byte) string {
	if len(bytes.TrimSpace(body)) == 0 {
		return ""
	}
	if isHTML(header, body) {
		if title := htmlTitle(body); title != "" {
			return truncate(title)
		}
	}
	return truncate(strings.TrimSpace(string(body)))
}

func isHTML(header http.Header, body []byte) bool {
	if ct := strings.ToLower(header.Get("Content-Type")); ct != "" {
		return strings.Contains(ct, "html")
	}
	return strings.Contains(strings.ToLower(http.DetectContentType(body)), "html")
}

func htmlTitle(body []byte) string {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return ""
	}
	title := strings.TrimSpace(doc.Find("title").First().Text())
	if title == "" {
		title = strings.TrimSpace(doc.Find("h1").First().Text())
	}
	return strings.Join(strings.Fields(title), " ")
}

func truncate(s string) string {
	if len(s) > maxSnippetLen {
		return s[:maxSnippetLen] + "..."
	}
	return s
}
