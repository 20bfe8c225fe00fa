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


// Package search implements fuzzy matching of queries against a subtitle corpus.
//
// A search runs in three stages:
//   - the raw query is normalized into lower-cased terms (core.ParseQuery)
//   - every document is scanned in parallel, and each fragment that passes the
//     similarity pre-filter is scored with an LCS ratio (Similarity)
//   - the candidates are ordered and truncated once, after all workers finish (Rank)
//
// There is no index: every search reads every document.
package search
