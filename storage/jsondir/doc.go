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


// Package jsondir reads a corpus straight from a folder of JSON subtitle files.
//
// Every regular file with a .json extension is one document, named after the
// file. A document is a JSON array of fragments:
//
//	[
//	  {"timestamp": "00:00:01,000", "similarity": 0.82, "text": "..."},
//	  ...
//	]
//
// Unknown fields are ignored. Files are re-read on every search, so edits to
// the folder show up on the next query.
package jsondir
