package wiki

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/DjordjeVuckovic/wiki-hunter/internal/apperr"
	"github.com/DjordjeVuckovic/wiki-hunter/pkg/pagination"
)

const (
	DefaultBaseURL   = "https://ja.wikipedia.org/w/api.php"
	DefaultUserAgent = "wiki-hunter/1.0 (https://github.com/DjordjeVuckovic/wiki-hunter)"

	defaultTimeout = 30 * time.Second
)

type ClientOption func(client *Client)

type Client struct {
	base      url.URL
	http      *http.Client
	pageSize  int
	userAgent string
	observer  func(RequestStats)
}

func NewClient(baseUrl string, opts ...ClientOption) (*Client, error) {
	if baseUrl == "" {
		baseUrl = DefaultBaseURL
	}
	base, err := url.Parse(baseUrl)
	if err != nil {
		return nil, apperr.NewValidationWrap("invalid wiki api url", err)
	}
	if base.Scheme == "" || base.Host == "" {
		return nil, apperr.NewValidation("wiki api url must be absolute")
	}

	client := &Client{
		base: *base,
		http: &http.Client{
			Timeout: defaultTimeout,
		},
		pageSize:  pagination.PageDefaultSize,
		userAgent: DefaultUserAgent,
	}

	for _, cfg := range opts {
		cfg(client)
	}

	return client, nil
}

func WithHttpClient(httpClient *http.Client) ClientOption {
	return func(client *Client) {
		client.http = httpClient
	}
}

func WithPageSize(size int) ClientOption {
	return func(client *Client) {
		if size <= 0 {
			size = pagination.PageDefaultSize
		}
		if size > pagination.PageMaxSize {
			size = pagination.PageMaxSize
		}
		client.pageSize = size
	}
}

func WithUserAgent(ua string) ClientOption {
	return func(client *Client) {
		if ua != "" {
			client.userAgent = ua
		}
	}
}

// WithObserver registers a hook invoked after every request, successful or not
func WithObserver(fn func(RequestStats)) ClientOption {
	return func(client *Client) {
		client.observer = fn
	}
}

// Host is the wiki host pages link to, e.g. ja.wikipedia.org
func (c *Client) Host() string {
	return c.base.Host
}

func (c *Client) PageSize() int {
	return c.pageSize
}

// Search fetches one page of results. A nil cursor requests the first page.
// It issues exactly one GET and never retries.
func (c *Client) Search(ctx context.Context, query string, cursor *pagination.Continuation) (*Page, error) {
	params := url.Values{}
	params.Set("format", "json")
	params.Set("action", "query")
	params.Set("origin", "*")
	params.Set("list", "search")
	params.Set("srlimit", strconv.Itoa(c.pageSize))
	params.Set("srsearch", query)

	offset := 0
	if cursor != nil && cursor.Offset > 0 {
		offset = cursor.Offset
		params.Set("sroffset", cursor.Param())
	}

	reqURL := c.base
	reqURL.RawQuery = params.Encode()

	start := time.Now()
	var resp apiResponse
	status, err := c.do(ctx, reqURL.String(), &resp)

	c.observe(RequestStats{
		Query:      query,
		Offset:     offset,
		StatusCode: status,
		Hits:       len(resp.Query.Search),
		Latency:    time.Since(start),
		Err:        err,
	})

	if err != nil {
		return nil, err
	}

	slog.Debug("Wiki search completed", "query", query, "offset", offset, "hits", len(resp.Query.Search), "has_more", resp.Continue != nil)

	return pagination.NewPage(resp.Query.Search, resp.Continue), nil
}

func (c *Client) do(ctx context.Context, reqURL string, respData any) (int, error) {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, reqURL, nil)
	if err != nil {
		return 0, apperr.NewTransport(fmt.Errorf("create request: %w", err))
	}

	request.Header.Set("Accept", "application/json")
	request.Header.Set("User-Agent", c.userAgent)

	resp, err := c.http.Do(request)
	if err != nil {
		return 0, classify(ctx, err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return resp.StatusCode, classify(ctx, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return resp.StatusCode, apperr.NewTransportStatus(resp.StatusCode, string(respBody))
	}

	if err := json.Unmarshal(respBody, respData); err != nil {
		return resp.StatusCode, apperr.NewTransport(fmt.Errorf("unmarshal response: %w", err))
	}

	return resp.StatusCode, nil
}

// classify separates caller-initiated cancellation from transport failures
func classify(ctx context.Context, err error) error {
	if errors.Is(ctx.Err(), context.Canceled) {
		return apperr.NewCancelled(ctx.Err())
	}
	return apperr.NewTransport(err)
}

func (c *Client) observe(stats RequestStats) {
	if c.observer != nil {
		c.observer(stats)
	}
}
