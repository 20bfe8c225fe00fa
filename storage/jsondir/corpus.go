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
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/subseek/core"
	"github.com/poiesic/subseek/storage"
)

// DefaultDir is the folder searched when no folder is configured.
const DefaultDir = "subtitle"

// Extension selects which files in the folder are documents.
const Extension = ".json"

// Corpus implements storage.Corpus over a folder of JSON files.
type Corpus struct {
	dir    string
	logger *slog.Logger
}

var _ storage.Corpus = (*Corpus)(nil)

// Option configures a Corpus.
type Option func(*Corpus) error

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(c *Corpus) error {
		if logger == nil {
			logger = slog.Default()
		}
		c.logger = logger
		return nil
	}
}

// Open returns a corpus reading dir. An empty dir means DefaultDir.
// The folder is not touched until Documents is called.
func Open(dir string, opts ...Option) (*Corpus, error) {
	if dir == "" {
		dir = DefaultDir
	}
	c := &Corpus{
		dir:    dir,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(c); err != nil {
			return nil, err
		}
	}
	return c, nil
}

// Dir returns the folder the corpus reads.
func (c *Corpus) Dir() string {
	return c.dir
}

// Documents lists the .json files of the folder in name order.
func (c *Corpus) Documents(ctx context.Context) ([]storage.DocumentRef, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	entries, err := os.ReadDir(c.dir)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrCorpusUnavailable, err)
	}

	refs := make([]storage.DocumentRef, 0, len(entries))
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != Extension {
			continue
		}
		refs = append(refs, &fileRef{
			name: entry.Name(),
			path: filepath.Join(c.dir, entry.Name()),
		})
	}

	c.logger.Debug("enumerated corpus", "dir", c.dir, "documents", len(refs), "entries", len(entries))
	return refs, nil
}

// Close is a no-op; files are opened and closed per load.
func (c *Corpus) Close() error {
	return nil
}

type fileRef struct {
	name string
	path string
}

func (r *fileRef) Name() string {
	return r.name
}

func (r *fileRef) Load(ctx context.Context) (*core.Document, error) {
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrDocumentUnreadable, r.name, err)
	}
	data, err := os.ReadFile(r.path)
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %w", core.ErrDocumentUnreadable, r.name, err)
	}
	return Decode(r.name, data)
}
