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


// Package importer copies a corpus into a document store.
//
// The typical source is a folder of JSON subtitle files and the typical
// destination a BadgerDB store, so that a large corpus is decoded once
// instead of on every search:
//
//	source, _ := jsondir.Open("subtitle")
//	store, _ := badger.OpenDocumentStore("subseek.db")
//	imp, _ := importer.NewImporter(source, store, importer.DefaultConfig(), os.Stderr)
//	stats, err := imp.Run(ctx)
//
// Documents are read in batches. Writes are retried with exponential backoff.
// Documents whose encoded content is unchanged are not rewritten, and source
// documents that cannot be read or decoded are skipped and counted.
package importer
