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

package storage

import (
	"fmt"

	"github.com/mus-format/mus-go"
	"github.com/mus-format/mus-go/ord"
	"github.com/mus-format/mus-go/varint"
	"github.com/poiesic/subseek/core"
)

// minFragmentSize is the smallest possible encoding of a fragment: two empty
// strings and a one-byte float.
const minFragmentSize = 3

// FragmentMUS is the MUS serializer for core.Fragment.
var FragmentMUS mus.Serializer[core.Fragment] = fragmentSer{}

type fragmentSer struct{}

func (s fragmentSer) Marshal(v core.Fragment, bs []byte) (n int) {
	n = ord.String.Marshal(v.Timestamp, bs)
	n += varint.Float64.Marshal(v.Similarity, bs[n:])
	n += ord.String.Marshal(v.Text, bs[n:])
	return
}

func (s fragmentSer) Unmarshal(bs []byte) (v core.Fragment, n int, err error) {
	v.Timestamp, n, err = ord.String.Unmarshal(bs)
	if err != nil {
		return
	}
	var n1 int
	v.Similarity, n1, err = varint.Float64.Unmarshal(bs[n:])
	n += n1
	if err != nil {
		return
	}
	v.Text, n1, err = ord.String.Unmarshal(bs[n:])
	n += n1
	return
}

func (s fragmentSer) Size(v core.Fragment) (size int) {
	return ord.String.Size(v.Timestamp) +
		varint.Float64.Size(v.Similarity) +
		ord.String.Size(v.Text)
}

func (s fragmentSer) Skip(bs []byte) (n int, err error) {
	n, err = ord.String.Skip(bs)
	if err != nil {
		return
	}
	var n1 int
	n1, err = varint.Float64.Skip(bs[n:])
	n += n1
	if err != nil {
		return
	}
	n1, err = ord.String.Skip(bs[n:])
	n += n1
	return
}

// MarshalID serializes an ID to bytes.
func MarshalID(id core.ID) []byte {
	buf := make([]byte, varint.Uint64.Size(uint64(id)))
	varint.Uint64.Marshal(uint64(id), buf)
	return buf
}

// UnmarshalID deserializes an ID from bytes.
func UnmarshalID(data []byte) (core.ID, error) {
	v, _, err := varint.Uint64.Unmarshal(data)
	if err != nil {
		return 0, fmt.Errorf("%w: id: %w", ErrSerializationFailed, err)
	}
	return core.ID(v), nil
}

// MarshalDocument encodes a document as its name followed by its fragments.
func MarshalDocument(doc *core.Document) []byte {
	size := ord.String.Size(doc.Name) + varint.PositiveInt.Size(len(doc.Fragments))
	for _, f := range doc.Fragments {
		size += FragmentMUS.Size(f)
	}

	buf := make([]byte, size)
	n := ord.String.Marshal(doc.Name, buf)
	n += varint.PositiveInt.Marshal(len(doc.Fragments), buf[n:])
	for _, f := range doc.Fragments {
		n += FragmentMUS.Marshal(f, buf[n:])
	}
	return buf
}

// UnmarshalDocument decodes a document written by MarshalDocument.
// The fragment count is checked against the remaining input before
// allocating, so corrupt lengths fail instead of exhausting memory.
func UnmarshalDocument(data []byte) (*core.Document, error) {
	name, n, err := ord.String.Unmarshal(data)
	if err != nil {
		return nil, fmt.Errorf("%w: name: %w", ErrSerializationFailed, err)
	}

	count, n1, err := varint.PositiveInt.Unmarshal(data[n:])
	n += n1
	if err != nil {
		return nil, fmt.Errorf("%w: fragment count: %w", ErrSerializationFailed, err)
	}
	if count < 0 || count > (len(data)-n)/minFragmentSize {
		return nil, fmt.Errorf("%w: fragment count %d exceeds payload", ErrSerializationFailed, count)
	}

	doc := &core.Document{
		Name:      name,
		Fragments: make([]core.Fragment, count),
	}
	for i := range doc.Fragments {
		doc.Fragments[i], n1, err = FragmentMUS.Unmarshal(data[n:])
		n += n1
		if err != nil {
			return nil, fmt.Errorf("%w: fragment %d: %w", ErrSerializationFailed, i, err)
		}
	}

	if n != len(data) {
		return nil, fmt.Errorf("%w: %w: %d bytes", ErrSerializationFailed, ErrTrailingData, len(data)-n)
	}

	return doc, nil
}
