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


// Package httpapi serves searches over HTTP.
//
// Routes:
//
//	GET /search?query=&min_ratio=&min_similarity=&max_results=
//	GET /healthz
//	GET /metrics (when metrics are enabled)
//
// /search answers with the same envelope as the query command, with the hits
// in "data". Invalid requests get 400 and an unavailable corpus gets 503.
package httpapi
