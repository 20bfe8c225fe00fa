// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/subseek/core"
	"github.com/poiesic/subseek/storage"
)

// DefaultChunkSize is the default number of fragments scored by one worker task.
const DefaultChunkSize = 256

// Searcher scans a corpus for fragments similar to a query.
// A Searcher is safe for concurrent use; searches share its worker pools.
type Searcher struct {
	corpus       storage.Corpus
	documentPool *ants.Pool
	fragmentPool *ants.Pool
	chunkSize    int
	logger       *slog.Logger
}

// Option configures a Searcher.
type Option func(*Searcher) error

// WithPoolSize sets the size of both worker pools.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *Searcher) error {
		if size < 1 {
			size = 1
		}

		// Release old pools
		s.releasePools()

		documentPool, err := ants.NewPool(size)
		if err != nil {
			return err
		}

		fragmentPool, err := ants.NewPool(size)
		if err != nil {
			documentPool.Release()
			return err
		}

		s.documentPool = documentPool
		s.fragmentPool = fragmentPool
		return nil
	}
}

// WithChunkSize sets how many fragments of one document are scored per task.
// Documents with at most this many fragments are scored by their document task.
// Default is DefaultChunkSize.
func WithChunkSize(size int) Option {
	return func(s *Searcher) error {
		if size < 1 {
			return ErrInvalidChunkSize
		}
		s.chunkSize = size
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Searcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewSearcher creates a new searcher over corpus.
func NewSearcher(corpus storage.Corpus, opts ...Option) (*Searcher, error) {
	if corpus == nil {
		return nil, ErrCorpusRequired
	}

	s := &Searcher{
		corpus:    corpus,
		chunkSize: DefaultChunkSize,
		logger:    slog.Default(),
	}

	// Default pools first so options may replace them
	if err := WithPoolSize(runtime.NumCPU())(s); err != nil {
		return nil, err
	}

	for _, opt := range opts {
		if err := opt(s); err != nil {
			s.Release()
			return nil, err
		}
	}

	return s, nil
}

// Result is the outcome of a search that completed.
type Result struct {
	Query  core.Query
	Params core.SearchParams
	Hits   []core.RankedResult

	Documents int // Documents enumerated
	Skipped   int // Documents that could not be loaded
}

// NoMatches reports whether the search completed without any hit.
// It is not an error: the caller may suggest looser thresholds instead.
func (r *Result) NoMatches() bool {
	return len(r.Hits) == 0
}

// Search runs params against the whole corpus.
func (s *Searcher) Search(ctx context.Context, params core.SearchParams) (*Result, error) {
	return s.SearchWithMonitor(ctx, params, nil)
}

// SearchWithMonitor runs params against the whole corpus with monitoring.
//
// Query and threshold errors are returned before the corpus is touched. The
// search fails only if the corpus cannot be enumerated; documents that cannot
// be loaded are skipped and counted in Result.Skipped.
func (s *Searcher) SearchWithMonitor(ctx context.Context, params core.SearchParams, monitor SearchMonitor) (*Result, error) {
	// Use noop monitor if none provided
	if monitor == nil {
		monitor = &noopMonitor{}
	}
	start := time.Now()

	query, err := params.Prepare()
	if err != nil {
		monitor.Failed(err)
		return nil, err
	}
	monitor.Start(query)

	refs, err := s.corpus.Documents(ctx)
	if err != nil {
		if !errors.Is(err, core.ErrCorpusUnavailable) {
			err = fmt.Errorf("%w: %w", core.ErrCorpusUnavailable, err)
		}
		s.logger.Error("error enumerating corpus", "err", err)
		monitor.Failed(err)
		return nil, err
	}
	monitor.AfterEnumeration(len(refs))

	candidates, skipped := s.scan(ctx, refs, query, params, monitor)
	hits := Rank(candidates, query, params.MaxResults)

	result := &Result{
		Query:     query,
		Params:    params,
		Hits:      hits,
		Documents: len(refs),
		Skipped:   skipped,
	}
	s.logger.Debug("search finished",
		"query", query.Raw,
		"documents", len(refs),
		"skipped", skipped,
		"candidates", len(candidates),
		"hits", len(hits))
	monitor.Finish(result, time.Since(start))

	return result, nil
}

// Release releases the worker pools.
// The searcher should not be used after calling Release.
func (s *Searcher) Release() {
	s.releasePools()
}

func (s *Searcher) releasePools() {
	if s.documentPool != nil {
		s.documentPool.Release()
		s.documentPool = nil
	}
	if s.fragmentPool != nil {
		s.fragmentPool.Release()
		s.fragmentPool = nil
	}
}
