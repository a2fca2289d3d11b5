package diag

import (
	"sort"
	"sync"

	"jukebot/pkg/types"
)

// DefaultCapacity bounds the outcome ring when the config does not.
const DefaultCapacity = 50

// Recorder keeps the last N resolution outcomes in a fixed ring.
// It implements the resolver's outcome sink; all methods are safe for
// concurrent use.
type Recorder struct {
	mu   sync.RWMutex
	buf  []types.ResolutionOutcome
	head int // next write position
	n    int // filled entries
}

// NewRecorder builds a Recorder holding capacity outcomes; capacity <= 0
// applies the default.
func NewRecorder(capacity int) *Recorder {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Recorder{buf: make([]types.ResolutionOutcome, capacity)}
}

// Record stores one outcome, evicting the oldest when full.
func (r *Recorder) Record(o types.ResolutionOutcome) {
	r.mu.Lock()
	r.buf[r.head] = o
	r.head = (r.head + 1) % len(r.buf)
	if r.n < len(r.buf) {
		r.n++
	}
	r.mu.Unlock()
}

// Len returns the number of stored outcomes.
func (r *Recorder) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.n
}

// Capacity returns the ring size.
func (r *Recorder) Capacity() int { return len(r.buf) }

// Recent returns up to n outcomes, newest first. n <= 0 returns all.
func (r *Recorder) Recent(n int) []types.ResolutionOutcome {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if n <= 0 || n > r.n {
		n = r.n
	}
	out := make([]types.ResolutionOutcome, 0, n)
	for i := 0; i < n; i++ {
		idx := (r.head - 1 - i + len(r.buf)) % len(r.buf)
		out = append(out, r.buf[idx])
	}
	return out
}

// Summary aggregates the stored outcomes.
func (r *Recorder) Summary() types.ResolutionSummary {
	r.mu.RLock()
	defer r.mu.RUnlock()

	s := types.ResolutionSummary{
		Count:          r.n,
		Capacity:       len(r.buf),
		WinsByBackend:  map[string]int{},
		FailuresByKind: map[string]int{},
	}
	if r.n == 0 {
		return s
	}

	durations := make([]int64, 0, r.n)
	latencySum := map[string]int64{}
	var durationSum int64
	for i := 0; i < r.n; i++ {
		// oldest to newest
		idx := (r.head - r.n + i + len(r.buf)) % len(r.buf)
		o := r.buf[idx]
		durations = append(durations, o.DurationMS)
		durationSum += o.DurationMS
		if o.HedgeLaunched {
			s.HedgeLaunches++
		}
		if o.HedgeSuppressed {
			s.HedgeSuppressions++
		}
		if o.Failed() {
			s.Failures++
			s.FailuresByKind[string(o.ErrKind)]++
		} else {
			s.Successes++
			s.WinsByBackend[string(o.Winner)]++
			latencySum[string(o.Winner)] += o.DurationMS
			if o.HedgeLaunched {
				s.LastHedgeWinner = string(o.Winner)
			}
		}
		if i == 0 {
			s.OldestUnixMS = o.StartedAtUnixMS
		}
		s.NewestUnixMS = o.StartedAtUnixMS
	}
	s.SuccessRate = float64(s.Successes) / float64(s.Count)
	s.AvgDurationMS = durationSum / int64(s.Count)
	s.AvgWinnerLatencyMS = map[string]int64{}
	for backend, sum := range latencySum {
		s.AvgWinnerLatencyMS[backend] = sum / int64(s.WinsByBackend[backend])
	}
	sort.Slice(durations, func(i, j int) bool { return durations[i] < durations[j] })
	p95 := (len(durations)*95+99)/100 - 1
	if p95 < 0 {
		p95 = 0
	}
	s.P95DurationMS = durations[p95]
	return s
}
