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


// Package protocol implements the line-oriented request and JSON response
// formats used by the query command and the HTTP API.
//
// A request is a single line of key=value pairs joined by '&':
//
//	query=quick%20fox&min_ratio=60&min_similarity=0.2&max_results=10
//
// Hits are written one JSON object per line. A search without hits writes a
// single envelope with remediation suggestions, and a failed request writes
// {"status":"error","message":...}.
package protocol
