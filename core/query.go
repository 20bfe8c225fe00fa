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

import "strings"

// encodedSpace is the URL-encoded form of a space that callers may pass through unchanged.
const encodedSpace = "%20"

// ParseQuery lower-cases and tokenizes a raw query.
//
// A query containing a space or an encoded space is split on whitespace into
// several terms. Anything else is kept whole as a single term.
func ParseQuery(raw string) (Query, error) {
	lowered := strings.ToLower(raw)
	multi := strings.Contains(lowered, " ") || strings.Contains(lowered, encodedSpace)

	var terms []string
	if multi {
		terms = strings.Fields(strings.ReplaceAll(lowered, encodedSpace, " "))
	} else if strings.TrimSpace(lowered) != "" {
		terms = []string{lowered}
	}

	if len(terms) == 0 {
		return Query{}, ErrEmptyQuery
	}

	return Query{
		Raw:   raw,
		Terms: terms,
		Multi: multi,
	}, nil
}
