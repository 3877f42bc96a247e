// Package session implements the search-session state machine: query submission,
// cancellation of superseded requests, continuation tracking and result accumulation.
package session

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/DjordjeVuckovic/wiki-hunter/internal/apperr"
	"github.com/DjordjeVuckovic/wiki-hunter/internal/wiki"
	"github.com/DjordjeVuckovic/wiki-hunter/pkg/pagination"
)

// Searcher fetches one page of results. *wiki.Client satisfies it.
type Searcher interface {
	Search(ctx context.Context, query string, cursor *pagination.Continuation) (*wiki.Page, error)
}

// Messages are the fixed user-facing error texts
type Messages struct {
	SearchFailed   string `yaml:"search_failed"`
	LoadMoreFailed string `yaml:"load_more_failed"`
}

func DefaultMessages() Messages {
	return Messages{
		SearchFailed:   "wikipediaにうまくアクセスできないようです、、",
		LoadMoreFailed: "追加の結果を読み込めませんでした。",
	}
}

// Snapshot is a read-only copy of the session state handed to views
type Snapshot struct {
	Query        string
	Results      []wiki.Result
	Status       Status
	ErrorMessage string
	HasMore      bool
	Searched     bool
}

type Option func(*Session)

func WithMessages(m Messages) Option {
	return func(s *Session) {
		def := DefaultMessages()
		if m.SearchFailed == "" {
			m.SearchFailed = def.SearchFailed
		}
		if m.LoadMoreFailed == "" {
			m.LoadMoreFailed = def.LoadMoreFailed
		}
		s.messages = m
	}
}

func WithLogger(l *slog.Logger) Option {
	return func(s *Session) {
		if l != nil {
			s.logger = l
		}
	}
}

// Session owns one user's ongoing search. Submit and LoadMore never block:
// they update state and hand the network call to a goroutine whose completion
// is applied only if its generation is still current.
type Session struct {
	searcher Searcher
	messages Messages
	logger   *slog.Logger

	mu           sync.Mutex
	query        string
	results      []wiki.Result
	cursor       *pagination.Continuation
	status       Status
	errorMessage string
	searched     bool

	generation  uint64
	cancel      context.CancelFunc
	loadingMore bool
	closed      bool

	subscribers map[int]chan Snapshot
	nextSubID   int

	inflight sync.WaitGroup
}

func New(searcher Searcher, opts ...Option) *Session {
	s := &Session{
		searcher:    searcher,
		messages:    DefaultMessages(),
		logger:      slog.Default(),
		status:      Idle,
		subscribers: make(map[int]chan Snapshot),
	}

	for _, opt := range opts {
		opt(s)
	}

	return s
}

// Submit starts a new search for query, superseding whatever is in flight.
// Blank queries are ignored.
func (s *Session) Submit(query string) {
	if strings.TrimSpace(query) == "" {
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	s.cancelActiveLocked()
	s.generation++
	gen := s.generation

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.query = query
	s.results = []wiki.Result{}
	s.cursor = nil
	s.errorMessage = ""
	s.loadingMore = false
	s.searched = true
	s.status = Loading
	s.publishLocked()

	s.inflight.Add(1)
	go s.runSearch(ctx, gen, query)
}

// LoadMore fetches the next page. It is dropped when there is no continuation,
// a page is already being fetched, or no query has been submitted.
func (s *Session) LoadMore() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed || s.cursor == nil || s.loadingMore || strings.TrimSpace(s.query) == "" {
		return
	}

	gen := s.generation
	cursor := *s.cursor
	query := s.query

	ctx, cancel := context.WithCancel(context.Background())
	s.cancel = cancel

	s.loadingMore = true
	s.errorMessage = ""
	s.status = LoadingMore
	s.publishLocked()

	s.inflight.Add(1)
	go s.runLoadMore(ctx, gen, query, &cursor)
}

func (s *Session) runSearch(ctx context.Context, gen uint64, query string) {
	defer s.inflight.Done()

	page, err := s.searcher.Search(ctx, query, nil)
	var results []wiki.Result
	if err == nil {
		results = wiki.NewResults(page.Items)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.currentLocked(gen) {
		s.logger.Debug("Discarding superseded search response", "query", query, "error", err)
		return
	}
	s.releaseLocked()

	if err != nil {
		if apperr.IsCancelled(err) {
			s.logger.Debug("Search cancelled", "query", query)
			return
		}
		s.logger.Error("Search failed", "query", query, "error", err)
		s.results = []wiki.Result{}
		s.status = Errored
		s.errorMessage = s.messages.SearchFailed
		s.publishLocked()
		return
	}

	s.results = results
	s.cursor = page.Next
	if len(results) == 0 {
		s.status = Empty
	} else {
		s.status = Ready
	}
	s.publishLocked()
}

func (s *Session) runLoadMore(ctx context.Context, gen uint64, query string, cursor *pagination.Continuation) {
	defer s.inflight.Done()

	page, err := s.searcher.Search(ctx, query, cursor)
	var more []wiki.Result
	if err == nil {
		more = wiki.NewResults(page.Items)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.currentLocked(gen) {
		s.logger.Debug("Discarding superseded page", "query", query, "offset", cursor.Offset, "error", err)
		return
	}
	s.releaseLocked()
	s.loadingMore = false
	s.status = Ready

	if err != nil {
		if apperr.IsCancelled(err) {
			s.logger.Debug("Load more cancelled", "query", query, "offset", cursor.Offset)
		} else {
			s.logger.Warn("Load more failed", "query", query, "offset", cursor.Offset, "error", err)
			s.errorMessage = s.messages.LoadMoreFailed
		}
		s.publishLocked()
		return
	}

	s.results = append(s.results, more...)
	s.cursor = page.Next
	s.publishLocked()
}

// Snapshot returns the current state. Results must be treated as read-only.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

// Subscribe returns a channel that receives the latest snapshot after every
// transition. Intermediate snapshots are dropped when the reader falls behind.
// The channel is closed by the returned cancel func or by Close.
func (s *Session) Subscribe() (<-chan Snapshot, func()) {
	s.mu.Lock()
	defer s.mu.Unlock()

	ch := make(chan Snapshot, 1)
	if s.closed {
		close(ch)
		return ch, func() {}
	}

	id := s.nextSubID
	s.nextSubID++
	s.subscribers[id] = ch

	return ch, func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		if sub, ok := s.subscribers[id]; ok {
			delete(s.subscribers, id)
			close(sub)
		}
	}
}

// Close tears the session down: the active request is cancelled and any
// completion still on its way is ignored.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.closed = true
	s.cancelActiveLocked()
	s.generation++

	for id, ch := range s.subscribers {
		delete(s.subscribers, id)
		close(ch)
	}
}

// Wait blocks until every request started so far has completed
func (s *Session) Wait() {
	s.inflight.Wait()
}

func (s *Session) currentLocked(gen uint64) bool {
	return !s.closed && gen == s.generation
}

func (s *Session) cancelActiveLocked() {
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
}

// releaseLocked frees the context of a request that completed on its own
func (s *Session) releaseLocked() {
	s.cancelActiveLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	return Snapshot{
		Query:        s.query,
		Results:      s.results[:len(s.results):len(s.results)],
		Status:       s.status,
		ErrorMessage: s.errorMessage,
		HasMore:      s.cursor != nil,
		Searched:     s.searched,
	}
}

func (s *Session) publishLocked() {
	if len(s.subscribers) == 0 {
		return
	}

	snap := s.snapshotLocked()
	for _, ch := range s.subscribers {
		select {
		case <-ch:
		default:
		}
		select {
		case ch <- snap:
		default:
		}
	}
}
