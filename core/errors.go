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

import "errors"

var (
	// ErrEmptyQuery indicates the query has no terms after normalization.
	ErrEmptyQuery = errors.New("query cannot be empty")

	// ErrInvalidThreshold indicates a threshold or result limit is out of range.
	ErrInvalidThreshold = errors.New("invalid threshold")

	// ErrCorpusUnavailable indicates the corpus cannot be enumerated at all.
	ErrCorpusUnavailable = errors.New("corpus unavailable")

	// ErrDocumentUnreadable indicates a single document could not be read.
	ErrDocumentUnreadable = errors.New("document unreadable")

	// ErrDocumentMalformed indicates a single document could not be decoded.
	ErrDocumentMalformed = errors.New("document malformed")
)
