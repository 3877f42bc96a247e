package wiki

import (
	"fmt"
	"strings"

	"github.com/DjordjeVuckovic/wiki-hunter/pkg/stringsutil"
	"github.com/PuerkitoBio/goquery"
)

const (
	SnippetMaxLength = 200
	snippetEllipsis  = "..."
	dateLength       = 10
)

// FormatSnippet strips the search-match markup from an API snippet and
// truncates the plain text to SnippetMaxLength characters.
func FormatSnippet(raw string) string {
	text := raw
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(raw))
	if err == nil {
		text = doc.Text()
	}

	truncated, cut := stringsutil.TruncateRunes(text, SnippetMaxLength)
	if cut {
		return truncated + snippetEllipsis
	}
	return truncated
}

// FormatDate turns an ISO-8601 timestamp into YYYY.MM.DD without any timezone conversion.
func FormatDate(timestamp string) string {
	day, _ := stringsutil.TruncateRunes(timestamp, dateLength)
	return strings.ReplaceAll(day, "-", ".")
}

// PageURL is the canonical link for a page id on the given wiki host.
func PageURL(host string, id int64) string {
	return fmt.Sprintf("https://%s/?curid=%d", host, id)
}
