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
	"slices"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/subseek/core"
	"github.com/poiesic/subseek/storage"
)

// scan scores every document on the document pool.
// Each task owns one slot of the result, so no locking is needed; slots are
// concatenated in enumeration order once all tasks are done.
func (s *Searcher) scan(ctx context.Context, refs []storage.DocumentRef, query core.Query,
	params core.SearchParams, monitor SearchMonitor) ([]core.Candidate, int) {
	slots := make([][]core.Candidate, len(refs))
	failed := make([]bool, len(refs))
	comparison := query.ComparisonString()

	var wg sync.WaitGroup
	for i, ref := range refs {
		wg.Add(1)
		task := func() {
			defer wg.Done()
			slots[i], failed[i] = s.scanDocument(ctx, ref, comparison, params, monitor)
		}
		s.submit(s.documentPool, task, "document", ref.Name())
	}
	wg.Wait()

	skipped := 0
	for _, f := range failed {
		if f {
			skipped++
		}
	}
	return slices.Concat(slots...), skipped
}

// scanDocument loads one document and scores its fragments.
// Returns true as second value when the document had to be skipped.
func (s *Searcher) scanDocument(ctx context.Context, ref storage.DocumentRef, comparison string,
	params core.SearchParams, monitor SearchMonitor) ([]core.Candidate, bool) {
	name := ref.Name()

	doc, err := ref.Load(ctx)
	if err != nil {
		s.logger.Warn("skipping document", "document", name, "err", err)
		monitor.DocumentSkipped(name, err)
		return nil, true
	}

	fragments := doc.Fragments
	var candidates []core.Candidate
	if len(fragments) <= s.chunkSize {
		candidates = scoreFragments(name, fragments, comparison, params)
	} else {
		chunks := (len(fragments) + s.chunkSize - 1) / s.chunkSize
		parts := make([][]core.Candidate, chunks)

		var wg sync.WaitGroup
		for c := range chunks {
			lo := c * s.chunkSize
			hi := min(lo+s.chunkSize, len(fragments))
			wg.Add(1)
			task := func() {
				defer wg.Done()
				parts[c] = scoreFragments(name, fragments[lo:hi], comparison, params)
			}
			s.submit(s.fragmentPool, task, "document", name)
		}
		wg.Wait()
		candidates = slices.Concat(parts...)
	}

	monitor.DocumentScanned(name, len(fragments), len(candidates))
	return candidates, false
}

// submit runs task on pool, or inline if the pool refuses it.
func (s *Searcher) submit(pool *ants.Pool, task func(), args ...any) {
	if err := pool.Submit(task); err != nil {
		s.logger.Warn("worker pool rejected task, running inline", append(args, "err", err)...)
		task()
	}
}

// scoreFragments applies both thresholds to fragments.
func scoreFragments(name string, fragments []core.Fragment, comparison string, params core.SearchParams) []core.Candidate {
	var candidates []core.Candidate
	for _, f := range fragments {
		if !(f.Similarity >= params.MinOriginalSimilarity) {
			continue
		}
		ratio := Similarity(comparison, f.Text)
		if ratio < params.MinMatchRatio {
			continue
		}
		candidates = append(candidates, core.Candidate{
			DocumentName:       name,
			Timestamp:          f.Timestamp,
			OriginalSimilarity: f.Similarity,
			Text:               f.Text,
			MatchRatio:         ratio,
		})
	}
	return candidates
}
