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
	"cmp"
	"slices"

	"github.com/poiesic/subseek/core"
)

type rankEntry struct {
	candidate   core.Candidate
	containsAll bool
}

// Rank orders candidates by match ratio, highest first, and truncates the
// result to maxResults when it is not nil.
//
// Among equal ratios, candidates whose text contains every query term come
// first. Remaining ties keep their input order; no further key is applied.
func Rank(candidates []core.Candidate, query core.Query, maxResults *int) []core.RankedResult {
	entries := make([]rankEntry, len(candidates))
	for i, c := range candidates {
		entries[i] = rankEntry{
			candidate:   c,
			containsAll: containsAllTerms(c.Text, query.Terms),
		}
	}

	slices.SortStableFunc(entries, func(a, b rankEntry) int {
		if c := cmp.Compare(b.candidate.MatchRatio, a.candidate.MatchRatio); c != 0 {
			return c
		}
		switch {
		case a.containsAll == b.containsAll:
			return 0
		case a.containsAll:
			return -1
		default:
			return 1
		}
	})

	if maxResults != nil {
		if limit := max(*maxResults, 0); len(entries) > limit {
			entries = entries[:limit]
		}
	}

	results := make([]core.RankedResult, len(entries))
	for i, e := range entries {
		results[i] = core.RankedResult{
			Candidate:  e.candidate,
			ExactMatch: containsAllTerms(e.candidate.Text, query.Terms),
		}
	}

	return results
}
