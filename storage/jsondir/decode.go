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


package jsondir

import (
	"fmt"

	"github.com/poiesic/subseek/core"
	"github.com/tidwall/gjson"
)

// Decode parses the JSON content of one subtitle file.
// Any structural problem returns an error wrapping core.ErrDocumentMalformed.
func Decode(name string, data []byte) (*core.Document, error) {
	if !gjson.ValidBytes(data) {
		return nil, malformed(name, "invalid JSON")
	}

	root := gjson.ParseBytes(data)
	if !root.IsArray() {
		return nil, malformed(name, "expected an array of fragments, got %s", root.Type)
	}

	doc := &core.Document{Name: name}
	var decodeErr error
	index := 0
	root.ForEach(func(_, value gjson.Result) bool {
		fragment, err := decodeFragment(value)
		if err != nil {
			decodeErr = malformed(name, "fragment %d: %v", index, err)
			return false
		}
		doc.Fragments = append(doc.Fragments, fragment)
		index++
		return true
	})
	if decodeErr != nil {
		return nil, decodeErr
	}

	return doc, nil
}

func decodeFragment(value gjson.Result) (core.Fragment, error) {
	if !value.IsObject() {
		return core.Fragment{}, fmt.Errorf("expected an object, got %s", value.Type)
	}

	timestamp, err := field(value, "timestamp", gjson.String)
	if err != nil {
		return core.Fragment{}, err
	}
	similarity, err := field(value, "similarity", gjson.Number)
	if err != nil {
		return core.Fragment{}, err
	}
	text, err := field(value, "text", gjson.String)
	if err != nil {
		return core.Fragment{}, err
	}

	return core.Fragment{
		Timestamp:  timestamp.String(),
		Similarity: similarity.Float(),
		Text:       text.String(),
	}, nil
}

func field(object gjson.Result, name string, want gjson.Type) (gjson.Result, error) {
	value := object.Get(name)
	if !value.Exists() {
		return value, fmt.Errorf("missing field %q", name)
	}
	if value.Type != want {
		return value, fmt.Errorf("field %q: expected %s, got %s", name, want, value.Type)
	}
	return value, nil
}

func malformed(name, format string, args ...any) error {
	return fmt.Errorf("%w: %s: %s", core.ErrDocumentMalformed, name, fmt.Sprintf(format, args...))
}
