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

package core

import (
	"encoding/binary"
	"strings"

	"github.com/go-crypt/x/blake2b"
)

// ID is a content-derived identifier.
type ID uint64

// IDFromContent generates a deterministic ID from content using BLAKE2b hashing.
func IDFromContent(content []byte) ID {
	h, _ := blake2b.New(8, nil) // 8 bytes = 64 bits
	h.Write(content)
	sum := h.Sum(nil)
	return ID(binary.LittleEndian.Uint64(sum))
}

// Fragment is one timestamped line of a subtitle document.
type Fragment struct {
	Timestamp  string
	Similarity float64 // Precomputed relevance score supplied with the corpus
	Text       string
}

// Document is a named, ordered sequence of fragments.
type Document struct {
	Name      string
	Fragments []Fragment
}

// Query is a normalized search request.
type Query struct {
	Raw   string
	Terms []string // Lower-cased, non-empty
	Multi bool     // Raw contained a space or an encoded space
}

// ComparisonString returns the text scored against each fragment.
func (q Query) ComparisonString() string {
	if q.Multi {
		return strings.Join(q.Terms, " ")
	}
	if len(q.Terms) == 0 {
		return ""
	}
	return q.Terms[0]
}

// Candidate is a fragment that passed both thresholds.
type Candidate struct {
	DocumentName       string
	Timestamp          string
	OriginalSimilarity float64
	Text               string
	MatchRatio         float64
}

// RankedResult is a candidate that survived ranking and truncation.
type RankedResult struct {
	Candidate
	ExactMatch bool // Every query term occurs in Text, ignoring case
}
