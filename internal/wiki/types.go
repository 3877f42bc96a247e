package wiki

import (
	"time"

	"github.com/DjordjeVuckovic/wiki-hunter/pkg/pagination"
)

// Hit is one raw record of list=search as returned by the API
type Hit struct {
	PageID    int64  `json:"pageid"`
	Title     string `json:"title"`
	Snippet   string `json:"snippet"`
	Timestamp string `json:"timestamp"`
}

// Page is a single search response: the hits in API order plus the continuation, if any
type Page = pagination.Page[Hit]

// Result is a hit with its display fields derived. It is never modified after NewResult.
type Result struct {
	ID             int64
	Title          string
	RawSnippet     string
	DisplaySnippet string
	LastModified   string
	DisplayDate    string
}

func NewResult(h Hit) Result {
	return Result{
		ID:             h.PageID,
		Title:          h.Title,
		RawSnippet:     h.Snippet,
		DisplaySnippet: FormatSnippet(h.Snippet),
		LastModified:   h.Timestamp,
		DisplayDate:    FormatDate(h.Timestamp),
	}
}

// NewResults derives display fields for a whole page, keeping the API order
func NewResults(hits []Hit) []Result {
	results := make([]Result, 0, len(hits))
	for _, h := range hits {
		results = append(results, NewResult(h))
	}
	return results
}

// RequestStats describes one completed (or failed) call to the search endpoint
type RequestStats struct {
	Query      string
	Offset     int
	StatusCode int
	Hits       int
	Latency    time.Duration
	Err        error
}

type apiResponse struct {
	Query struct {
		Search []Hit `json:"search"`
	} `json:"query"`
	Continue *pagination.Continuation `json:"continue,omitempty"`
}
