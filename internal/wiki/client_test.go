package wiki

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"sync"
	"testing"

	"github.com/DjordjeVuckovic/wiki-hunter/internal/apperr"
	"github.com/DjordjeVuckovic/wiki-hunter/pkg/pagination"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const onePage = `{
  "batchcomplete": "",
  "continue": {"sroffset": 15, "continue": "-||"},
  "query": {"search": [
    {"ns": 0, "title": "Test Page", "pageid": 1, "snippet": "Test snippet", "timestamp": "2024-01-01T00:00:00Z"}
  ]}
}`

const lastPage = `{"query": {"search": [
  {"title": "Second Page", "pageid": 2, "snippet": "Second snippet", "timestamp": "2024-01-02T00:00:00Z"}
]}}`

func newTestServer(t *testing.T, handler http.HandlerFunc) (*Client, *httptest.Server) {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c, err := NewClient(srv.URL+"/w/api.php", WithHttpClient(srv.Client()))
	require.NoError(t, err)
	return c, srv
}

func TestClient_Search_FirstPage(t *testing.T) {
	var got url.Values
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/w/api.php", r.URL.Path)
		got = r.URL.Query()
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(onePage))
	})

	page, err := c.Search(context.Background(), "test", nil)
	require.NoError(t, err)

	assert.Equal(t, "json", got.Get("format"))
	assert.Equal(t, "query", got.Get("action"))
	assert.Equal(t, "*", got.Get("origin"))
	assert.Equal(t, "search", got.Get("list"))
	assert.Equal(t, "test", got.Get("srsearch"))
	assert.Equal(t, "15", got.Get("srlimit"))
	assert.False(t, got.Has("sroffset"))

	require.Len(t, page.Items, 1)
	assert.Equal(t, int64(1), page.Items[0].PageID)
	assert.Equal(t, "Test Page", page.Items[0].Title)
	assert.Equal(t, "Test snippet", page.Items[0].Snippet)
	assert.Equal(t, "2024-01-01T00:00:00Z", page.Items[0].Timestamp)
	require.True(t, page.HasMore())
	assert.Equal(t, 15, page.Next.Offset)
	assert.Equal(t, "-||", page.Next.Token)
}

func TestClient_Search_WithCursor(t *testing.T) {
	var got url.Values
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		got = r.URL.Query()
		_, _ = w.Write([]byte(lastPage))
	})

	page, err := c.Search(context.Background(), "test", &pagination.Continuation{Offset: 15, Token: "-||"})
	require.NoError(t, err)

	assert.Equal(t, "15", got.Get("sroffset"))
	require.Len(t, page.Items, 1)
	assert.False(t, page.HasMore())
}

func TestClient_Search_EmptyResults(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"query":{"search":[]}}`))
	})

	page, err := c.Search(context.Background(), "zzzz", nil)
	require.NoError(t, err)
	assert.Empty(t, page.Items)
	assert.False(t, page.HasMore())
}

func TestClient_Search_NonSuccessStatus(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	})

	page, err := c.Search(context.Background(), "xyz", nil)
	require.Error(t, err)
	assert.Nil(t, page)

	var te *apperr.TransportError
	require.True(t, errors.As(err, &te))
	assert.Equal(t, http.StatusInternalServerError, te.StatusCode)
	assert.False(t, apperr.IsCancelled(err))
}

func TestClient_Search_MalformedBody(t *testing.T) {
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{not json`))
	})

	_, err := c.Search(context.Background(), "xyz", nil)
	require.Error(t, err)
	assert.True(t, apperr.IsTransport(err))
}

func TestClient_Search_ConnectionFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := NewClient(base)
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "xyz", nil)
	require.Error(t, err)
	assert.True(t, apperr.IsTransport(err))
}

func TestClient_Search_Cancelled(t *testing.T) {
	release := make(chan struct{})
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	})
	defer close(release)

	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() {
		_, err := c.Search(ctx, "slow", nil)
		errCh <- err
	}()
	cancel()

	err := <-errCh
	require.Error(t, err)
	assert.True(t, apperr.IsCancelled(err))
	assert.True(t, errors.Is(err, context.Canceled))
	assert.False(t, apperr.IsTransport(err))
}

func TestClient_Observer(t *testing.T) {
	var mu sync.Mutex
	var seen []RequestStats
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("srsearch") == "bad" {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(onePage))
	}))
	defer srv.Close()

	c, err := NewClient(srv.URL, WithObserver(func(s RequestStats) {
		mu.Lock()
		defer mu.Unlock()
		seen = append(seen, s)
	}))
	require.NoError(t, err)

	_, err = c.Search(context.Background(), "good", &pagination.Continuation{Offset: 30})
	require.NoError(t, err)
	_, err = c.Search(context.Background(), "bad", nil)
	require.Error(t, err)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, seen, 2)
	assert.Equal(t, "good", seen[0].Query)
	assert.Equal(t, 30, seen[0].Offset)
	assert.Equal(t, 1, seen[0].Hits)
	assert.Equal(t, http.StatusOK, seen[0].StatusCode)
	assert.NoError(t, seen[0].Err)
	assert.Equal(t, http.StatusServiceUnavailable, seen[1].StatusCode)
	assert.Error(t, seen[1].Err)
}

func TestNewClient_Options(t *testing.T) {
	c, err := NewClient("", WithPageSize(0), WithUserAgent(""))
	require.NoError(t, err)
	assert.Equal(t, "ja.wikipedia.org", c.Host())
	assert.Equal(t, pagination.PageDefaultSize, c.PageSize())
	assert.Equal(t, DefaultUserAgent, c.userAgent)

	c, err = NewClient("https://en.wikipedia.org/w/api.php", WithPageSize(10_000), WithUserAgent("ua"))
	require.NoError(t, err)
	assert.Equal(t, "en.wikipedia.org", c.Host())
	assert.Equal(t, pagination.PageMaxSize, c.PageSize())
	assert.Equal(t, "ua", c.userAgent)
}

func TestNewClient_InvalidURL(t *testing.T) {
	_, err := NewClient("not a url")
	require.Error(t, err)

	var ve *apperr.ValidationError
	assert.True(t, errors.As(err, &ve))
}

func TestClient_SendsUserAgent(t *testing.T) {
	var ua string
	c, _ := newTestServer(t, func(w http.ResponseWriter, r *http.Request) {
		ua = r.Header.Get("User-Agent")
		_, _ = w.Write([]byte(lastPage))
	})

	_, err := c.Search(context.Background(), "q", nil)
	require.NoError(t, err)
	assert.Equal(t, DefaultUserAgent, ua)
}
