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


// Package storage defines how subseek reads documents.
//
// A Corpus enumerates DocumentRefs, and each ref loads its own document on
// demand so that a failure in one document never affects the others. Two
// implementations exist:
//
//   - jsondir: a folder of JSON subtitle files, read as-is on every search
//   - badger: an imported copy of a corpus kept in BadgerDB
//
// # Errors
//
// Enumeration failures wrap core.ErrCorpusUnavailable. Per-document failures
// wrap core.ErrDocumentUnreadable or core.ErrDocumentMalformed; searches treat
// those as "skip this document", never as a failed request.
//
// # Thread Safety
//
// Corpora and refs must support concurrent Load calls from many goroutines.
// Documents returned by Load are owned by the caller.
package storage
