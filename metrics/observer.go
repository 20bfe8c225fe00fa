package metrics

import (
	"errors"
	"sync/atomic"
	"time"

	"github.com/poiesic/subseek/core"
	"github.com/poiesic/subseek/search"
)

// Skip reasons.
const (
	ReasonUnreadable = "unreadable"
	ReasonMalformed  = "malformed"
	ReasonOther      = "other"
)

// SearchObserver records one search into the collectors.
// Create one per search with Metrics.Observer.
type SearchObserver struct {
	metrics    *Metrics
	candidates atomic.Int64
}

var _ search.SearchMonitor = (*SearchObserver)(nil)

// Observer returns a monitor for a single search.
func (m *Metrics) Observer() *SearchObserver {
	return &SearchObserver{metrics: m}
}

func (o *SearchObserver) Start(core.Query) {}

func (o *SearchObserver) AfterEnumeration(int) {}

func (o *SearchObserver) DocumentSkipped(_ string, err error) {
	o.metrics.documentsSkipped.WithLabelValues(skipReason(err)).Inc()
}

func (o *SearchObserver) DocumentScanned(_ string, _ int, candidates int) {
	o.metrics.documentsScanned.Inc()
	o.candidates.Add(int64(candidates))
}

func (o *SearchObserver) Finish(result *search.Result, elapsed time.Duration) {
	outcome := OutcomeHits
	if result.NoMatches() {
		outcome = OutcomeNoMatches
	}
	o.metrics.searchesTotal.WithLabelValues(outcome).Inc()
	o.metrics.searchDuration.Observe(elapsed.Seconds())
	o.metrics.searchCandidates.Observe(float64(o.candidates.Load()))
}

func (o *SearchObserver) Failed(error) {
	o.metrics.searchesTotal.WithLabelValues(OutcomeError).Inc()
}

func skipReason(err error) string {
	switch {
	case errors.Is(err, core.ErrDocumentMalformed):
		return ReasonMalformed
	case errors.Is(err, core.ErrDocumentUnreadable):
		return ReasonUnreadable
	default:
		return ReasonOther
	}
}
