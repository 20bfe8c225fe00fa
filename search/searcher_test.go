package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/poiesic/subseek/core"
	"github.com/poiesic/subseek/storage"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRef struct {
	doc   *core.Document
	err   error
	loads *int
	mu    *sync.Mutex
}

func (r fakeRef) Name() string { return r.doc.Name }

func (r fakeRef) Load(_ context.Context) (*core.Document, error) {
	if r.loads != nil {
		r.mu.Lock()
		*r.loads++
		r.mu.Unlock()
	}
	if r.err != nil {
		return nil, r.err
	}
	return r.doc, nil
}

type fakeCorpus struct {
	refs  []storage.DocumentRef
	err   error
	loads int
	mu    sync.Mutex
}

func (c *fakeCorpus) Documents(_ context.Context) ([]storage.DocumentRef, error) {
	if c.err != nil {
		return nil, c.err
	}
	return c.refs, nil
}

func (c *fakeCorpus) Close() error { return nil }

func (c *fakeCorpus) add(doc *core.Document, err error) {
	c.refs = append(c.refs, fakeRef{doc: doc, err: err, loads: &c.loads, mu: &c.mu})
}

func newCorpus(docs ...*core.Document) *fakeCorpus {
	c := &fakeCorpus{}
	for _, d := range docs {
		c.add(d, nil)
	}
	return c
}

func doc(name string, texts ...string) *core.Document {
	d := &core.Document{Name: name}
	for i, text := range texts {
		d.Fragments = append(d.Fragments, core.Fragment{
			Timestamp:  fmt.Sprintf("00:00:%02d", i),
			Similarity: 0.5,
			Text:       text,
		})
	}
	return d
}

func newTestSearcher(t *testing.T, corpus storage.Corpus, opts ...Option) *Searcher {
	t.Helper()
	s, err := NewSearcher(corpus, opts...)
	require.NoError(t, err)
	t.Cleanup(s.Release)
	return s
}

func params(query string, minRatio float64) core.SearchParams {
	p := core.DefaultSearchParams(query)
	p.MinMatchRatio = minRatio
	return p
}

func TestNewSearcher(t *testing.T) {
	corpus := newCorpus()

	t.Run("valid configuration", func(t *testing.T) {
		s, err := NewSearcher(corpus)
		require.NoError(t, err)
		defer s.Release()
		assert.Equal(t, DefaultChunkSize, s.chunkSize)
	})

	t.Run("with options", func(t *testing.T) {
		s, err := NewSearcher(corpus, WithPoolSize(2), WithChunkSize(8), WithLogger(slog.Default()))
		require.NoError(t, err)
		defer s.Release()
		assert.Equal(t, 2, s.documentPool.Cap())
		assert.Equal(t, 2, s.fragmentPool.Cap())
		assert.Equal(t, 8, s.chunkSize)
	})

	t.Run("pool size is clamped to 1", func(t *testing.T) {
		s, err := NewSearcher(corpus, WithPoolSize(0))
		require.NoError(t, err)
		defer s.Release()
		assert.Equal(t, 1, s.documentPool.Cap())
	})

	t.Run("with nil logger falls back to default", func(t *testing.T) {
		s, err := NewSearcher(corpus, WithLogger(nil))
		require.NoError(t, err)
		defer s.Release()
		assert.NotNil(t, s.logger)
	})

	t.Run("invalid chunk size", func(t *testing.T) {
		_, err := NewSearcher(corpus, WithChunkSize(0))
		assert.Equal(t, ErrInvalidChunkSize, err)
	})

	t.Run("nil corpus", func(t *testing.T) {
		_, err := NewSearcher(nil)
		assert.Equal(t, ErrCorpusRequired, err)
	})
}

func TestSearch_TwoDocumentScenario(t *testing.T) {
	corpus := newCorpus(
		doc("a.json", "the quick brown fox"),
		doc("b.json", "a quick fox jumps"),
	)
	s := newTestSearcher(t, corpus)

	p := params("quick fox", 50)
	p.MinOriginalSimilarity = 0
	result, err := s.Search(context.Background(), p)
	require.NoError(t, err)
	require.False(t, result.NoMatches())
	require.Len(t, result.Hits, 2)

	assert.Equal(t, "b.json", result.Hits[0].DocumentName)
	assert.InDelta(t, 18.0/26.0*100, result.Hits[0].MatchRatio, 1e-9)
	assert.True(t, result.Hits[0].ExactMatch)

	assert.Equal(t, "a.json", result.Hits[1].DocumentName)
	assert.InDelta(t, 18.0/28.0*100, result.Hits[1].MatchRatio, 1e-9)
	assert.True(t, result.Hits[1].ExactMatch)

	assert.Equal(t, 2, result.Documents)
	assert.Equal(t, 0, result.Skipped)
}

func TestSearch_CandidateFields(t *testing.T) {
	corpus := newCorpus(&core.Document{
		Name: "ep1.json",
		Fragments: []core.Fragment{
			{Timestamp: "00:01:02,003", Similarity: 0.75, Text: "Fox"},
		},
	})
	s := newTestSearcher(t, corpus)

	result, err := s.Search(context.Background(), params("FOX", 50))
	require.NoError(t, err)
	require.Len(t, result.Hits, 1)

	hit := result.Hits[0]
	assert.Equal(t, "ep1.json", hit.DocumentName)
	assert.Equal(t, "00:01:02,003", hit.Timestamp)
	assert.Equal(t, 0.75, hit.OriginalSimilarity)
	assert.Equal(t, "Fox", hit.Text)
	assert.Equal(t, 100.0, hit.MatchRatio)
	assert.True(t, hit.ExactMatch)
}

func TestSearch_NoMatches(t *testing.T) {
	corpus := newCorpus(doc("a.json", "completely unrelated words"))
	s := newTestSearcher(t, corpus)

	result, err := s.Search(context.Background(), params("zzz", 90))
	require.NoError(t, err)
	assert.True(t, result.NoMatches())
	assert.Empty(t, result.Hits)
	assert.Equal(t, 1, result.Documents)
}

func TestSearch_OriginalSimilarityFilter(t *testing.T) {
	corpus := newCorpus(&core.Document{
		Name: "a.json",
		Fragments: []core.Fragment{
			{Timestamp: "1", Similarity: 0.2, Text: "fox"},
			{Timestamp: "2", Similarity: 0.8, Text: "fox"},
			{Timestamp: "3", Similarity: 0.5, Text: "fox"},
		},
	})
	s := newTestSearcher(t, corpus)

	p := params("fox", 50)
	p.MinOriginalSimilarity = 0.5
	result, err := s.Search(context.Background(), p)
	require.NoError(t, err)
	require.Len(t, result.Hits, 2)
	for _, hit := range result.Hits {
		assert.GreaterOrEqual(t, hit.OriginalSimilarity, 0.5)
	}
}

func TestSearch_ValidationHappensBeforeScanning(t *testing.T) {
	tests := []struct {
		name    string
		params  core.SearchParams
		wantErr error
	}{
		{name: "zero max results", params: func() core.SearchParams {
			p := params("fox", 50)
			p.MaxResults = core.Limit(0)
			return p
		}(), wantErr: core.ErrInvalidThreshold},
		{name: "ratio above 100", params: params("fox", 150), wantErr: core.ErrInvalidThreshold},
		{name: "similarity above 1", params: func() core.SearchParams {
			p := params("fox", 50)
			p.MinOriginalSimilarity = 2
			return p
		}(), wantErr: core.ErrInvalidThreshold},
		{name: "empty query", params: params("   ", 50), wantErr: core.ErrEmptyQuery},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			corpus := newCorpus(doc("a.json", "fox"))
			s := newTestSearcher(t, corpus)

			result, err := s.Search(context.Background(), tt.params)
			assert.ErrorIs(t, err, tt.wantErr)
			assert.Nil(t, result)
			assert.Equal(t, 0, corpus.loads, "corpus must not be touched")
		})
	}
}

func TestSearch_CorpusUnavailable(t *testing.T) {
	t.Run("plain error is wrapped", func(t *testing.T) {
		corpus := &fakeCorpus{err: errors.New("no such directory")}
		s := newTestSearcher(t, corpus)

		_, err := s.Search(context.Background(), params("fox", 50))
		assert.ErrorIs(t, err, core.ErrCorpusUnavailable)
	})

	t.Run("already wrapped error is kept", func(t *testing.T) {
		corpus := &fakeCorpus{err: fmt.Errorf("%w: gone", core.ErrCorpusUnavailable)}
		s := newTestSearcher(t, corpus)

		_, err := s.Search(context.Background(), params("fox", 50))
		require.ErrorIs(t, err, core.ErrCorpusUnavailable)
		assert.Equal(t, "corpus unavailable: gone", err.Error())
	})
}

func TestSearch_BrokenDocumentIsIsolated(t *testing.T) {
	corpus := newCorpus(doc("good-1.json", "fox"))
	corpus.add(doc("broken.json"), fmt.Errorf("%w: unexpected end of JSON", core.ErrDocumentMalformed))
	corpus.add(doc("gone.json"), fmt.Errorf("%w: permission denied", core.ErrDocumentUnreadable))
	corpus.add(doc("good-2.json", "a fox"), nil)
	s := newTestSearcher(t, corpus)

	result, err := s.Search(context.Background(), params("fox", 50))
	require.NoError(t, err)
	require.Len(t, result.Hits, 2)
	assert.Equal(t, "good-1.json", result.Hits[0].DocumentName)
	assert.Equal(t, "good-2.json", result.Hits[1].DocumentName)
	assert.Equal(t, 4, result.Documents)
	assert.Equal(t, 2, result.Skipped)
}

func TestSearch_MonotonicFiltering(t *testing.T) {
	corpus := newCorpus(
		doc("a.json", "the quick brown fox", "fox", "quick", "an unrelated sentence"),
		doc("b.json", "a quick fox jumps", "quack fix", "brown"),
		doc("c.json", "foxes are quick", "q", "kciuq xof"),
	)
	s := newTestSearcher(t, corpus)

	key := func(h core.RankedResult) string { return h.DocumentName + "|" + h.Timestamp }
	thresholds := []float64{0, 20, 40, 60, 80, 100}

	var previous map[string]bool
	for _, threshold := range thresholds {
		result, err := s.Search(context.Background(), params("quick fox", threshold))
		require.NoError(t, err)

		current := make(map[string]bool, len(result.Hits))
		for _, h := range result.Hits {
			current[key(h)] = true
			assert.GreaterOrEqual(t, h.MatchRatio, threshold)
		}
		for k := range current {
			if previous != nil {
				assert.True(t, previous[k], "%s at %v missing from lower threshold", k, threshold)
			}
		}
		previous = current
	}
}

func TestSearch_CapRespected(t *testing.T) {
	corpus := newCorpus(
		doc("a.json", "fox", "fox a", "fox ab"),
		doc("b.json", "fox abc", "fox abcd"),
	)
	s := newTestSearcher(t, corpus)

	for _, limit := range []int{1, 3, 5, 8} {
		p := params("fox", 0)
		p.MaxResults = core.Limit(limit)
		result, err := s.Search(context.Background(), p)
		require.NoError(t, err)
		assert.Len(t, result.Hits, min(limit, 5), "limit %d", limit)
	}
}

func TestSearch_RankingOrder(t *testing.T) {
	corpus := newCorpus(
		doc("a.json", "the quick brown fox", "fox quick", "quick"),
		doc("b.json", "a quick fox jumps", "kciuq xof", "quick fox"),
	)
	s := newTestSearcher(t, corpus)

	result, err := s.Search(context.Background(), params("quick fox", 0))
	require.NoError(t, err)
	require.NotEmpty(t, result.Hits)

	for i := 0; i < len(result.Hits)-1; i++ {
		r1, r2 := result.Hits[i], result.Hits[i+1]
		assert.GreaterOrEqual(t, r1.MatchRatio, r2.MatchRatio)
		if r1.MatchRatio == r2.MatchRatio && r2.ExactMatch {
			assert.True(t, r1.ExactMatch)
		}
	}
	assert.Equal(t, "quick fox", result.Hits[0].Text)
}

func TestSearch_ChunkedDocumentsMatchUnchunked(t *testing.T) {
	texts := []string{"fox", "quick fox", "box", "fix", "quick", "the fox", "foxy", "xof", "f o x"}
	corpus := newCorpus(doc("a.json", texts...), doc("b.json", texts[:3]...))

	whole := newTestSearcher(t, corpus)
	chunked := newTestSearcher(t, corpus, WithChunkSize(2), WithPoolSize(2))

	want, err := whole.Search(context.Background(), params("fox", 30))
	require.NoError(t, err)
	got, err := chunked.Search(context.Background(), params("fox", 30))
	require.NoError(t, err)

	assert.Equal(t, want.Hits, got.Hits)
}

func TestSearch_ConcurrentSearches(t *testing.T) {
	corpus := newCorpus(doc("a.json", "quick fox"), doc("b.json", "slow fox"))
	s := newTestSearcher(t, corpus, WithPoolSize(2))

	var wg sync.WaitGroup
	for range 8 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			result, err := s.Search(context.Background(), params("fox", 30))
			assert.NoError(t, err)
			assert.Len(t, result.Hits, 2)
		}()
	}
	wg.Wait()
}

type recordingMonitor struct {
	mu        sync.Mutex
	started   bool
	documents int
	skipped   []string
	scanned   []string
	finished  *Result
	failed    error
}

func (m *recordingMonitor) Start(_ core.Query) { m.started = true }

func (m *recordingMonitor) AfterEnumeration(documents int) { m.documents = documents }

func (m *recordingMonitor) DocumentSkipped(name string, _ error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.skipped = append(m.skipped, name)
}

func (m *recordingMonitor) DocumentScanned(name string, _ int, _ int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.scanned = append(m.scanned, name)
}

func (m *recordingMonitor) Finish(result *Result, _ time.Duration) { m.finished = result }

func (m *recordingMonitor) Failed(err error) { m.failed = err }

func TestSearchWithMonitor(t *testing.T) {
	corpus := newCorpus(doc("a.json", "fox"), doc("b.json", "dog"))
	corpus.add(doc("c.json"), core.ErrDocumentMalformed)
	s := newTestSearcher(t, corpus)

	t.Run("successful search", func(t *testing.T) {
		monitor := &recordingMonitor{}
		result, err := s.SearchWithMonitor(context.Background(), params("fox", 50), monitor)
		require.NoError(t, err)

		assert.True(t, monitor.started)
		assert.Equal(t, 3, monitor.documents)
		assert.ElementsMatch(t, []string{"c.json"}, monitor.skipped)
		assert.ElementsMatch(t, []string{"a.json", "b.json"}, monitor.scanned)
		assert.Same(t, result, monitor.finished)
		assert.NoError(t, monitor.failed)
	})

	t.Run("failed search", func(t *testing.T) {
		monitor := &recordingMonitor{}
		_, err := s.SearchWithMonitor(context.Background(), params("", 50), monitor)
		require.Error(t, err)

		assert.False(t, monitor.started)
		assert.ErrorIs(t, monitor.failed, core.ErrEmptyQuery)
		assert.Nil(t, monitor.finished)
	})
}
