package session

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/DjordjeVuckovic/wiki-hunter/internal/wiki"
	"github.com/DjordjeVuckovic/wiki-hunter/pkg/pagination"
)

type reply struct {
	page *wiki.Page
	err  error
}

type call struct {
	ctx    context.Context
	query  string
	cursor *pagination.Continuation
	reply  chan reply
}

func (c *call) resolve(page *wiki.Page, err error) {
	c.reply <- reply{page: page, err: err}
}

// fakeSearcher hands every call to the test, which decides when and how it completes.
// The context is deliberately ignored so stale responses can arrive late.
type fakeSearcher struct {
	calls chan *call
	count atomic.Int32
}

func newFakeSearcher() *fakeSearcher {
	return &fakeSearcher{calls: make(chan *call, 16)}
}

func (f *fakeSearcher) Search(ctx context.Context, query string, cursor *pagination.Continuation) (*wiki.Page, error) {
	f.count.Add(1)
	c := &call{ctx: ctx, query: query, cursor: cursor, reply: make(chan reply, 1)}
	f.calls <- c
	r := <-c.reply
	return r.page, r.err
}

func (f *fakeSearcher) next(t *testing.T) *call {
	t.Helper()
	select {
	case c := <-f.calls:
		return c
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for a search call")
		return nil
	}
}

func (f *fakeSearcher) assertNoCall(t *testing.T) {
	t.Helper()
	select {
	case c := <-f.calls:
		t.Fatalf("unexpected search call: query=%q cursor=%v", c.query, c.cursor)
	case <-time.After(20 * time.Millisecond):
	}
}

func hits(prefix string, n int) []wiki.Hit {
	out := make([]wiki.Hit, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, wiki.Hit{
			PageID:    int64(i + 1),
			Title:     fmt.Sprintf("%s %d", prefix, i+1),
			Snippet:   fmt.Sprintf(`<span class="searchmatch">%s</span> %d`, prefix, i+1),
			Timestamp: "2024-01-15T12:34:56Z",
		})
	}
	return out
}

func page(items []wiki.Hit, nextOffset int) *wiki.Page {
	if nextOffset == 0 {
		return pagination.NewPage(items, nil)
	}
	return pagination.NewPage(items, &pagination.Continuation{Offset: nextOffset, Token: "-||"})
}

func titles(results []wiki.Result) []string {
	out := make([]string, 0, len(results))
	for _, r := range results {
		out = append(out, r.Title)
	}
	return out
}
