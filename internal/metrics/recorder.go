package metrics

import (
	"sync"
	"time"

	"github.com/DjordjeVuckovic/wiki-hunter/internal/apperr"
	"github.com/DjordjeVuckovic/wiki-hunter/internal/wiki"
)

// Summary aggregates every request a Recorder has observed
type Summary struct {
	Requests  int          `json:"requests"`
	Failures  int          `json:"failures"`
	Cancelled int          `json:"cancelled"`
	Hits      int          `json:"hits"`
	Latency   LatencyStats `json:"latency"`
}

// Recorder collects wiki.RequestStats; plug Observe into wiki.WithObserver.
// Cancelled requests are counted but excluded from latency.
type Recorder struct {
	mu        sync.Mutex
	durations []time.Duration
	failures  int
	cancelled int
	hits      int
}

func NewRecorder() *Recorder {
	return &Recorder{}
}

func (r *Recorder) Observe(stats wiki.RequestStats) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if apperr.IsCancelled(stats.Err) {
		r.cancelled++
		return
	}
	if stats.Err != nil {
		r.failures++
	}
	r.hits += stats.Hits
	r.durations = append(r.durations, stats.Latency)
}

func (r *Recorder) Summary() Summary {
	r.mu.Lock()
	defer r.mu.Unlock()

	return Summary{
		Requests:  len(r.durations) + r.cancelled,
		Failures:  r.failures,
		Cancelled: r.cancelled,
		Hits:      r.hits,
		Latency:   ComputeLatencyStats(r.durations),
	}
}
