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


package subseek

import (
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/poiesic/subseek/core"
	"github.com/poiesic/subseek/importer"
	"github.com/poiesic/subseek/search"
	"github.com/poiesic/subseek/storage"
	"github.com/poiesic/subseek/storage/badger"
	"github.com/poiesic/subseek/storage/jsondir"
)

// ErrNoStore is returned when an operation needs a BadgerDB store but the
// engine reads a folder.
var ErrNoStore = errors.New("engine has no document store")

// Engine owns the corpus that searches run against.
type Engine struct {
	corpus storage.Corpus
	store  *badger.DocumentStore
	folder string
	logger *slog.Logger
}

// EngineOption configures an Engine.
type EngineOption func(*engineOptions)

type engineOptions struct {
	dir    string
	store  string
	create bool
	logger *slog.Logger
}

// WithDirectory reads documents from a folder of JSON files.
// Default is jsondir.DefaultDir.
func WithDirectory(dir string) EngineOption {
	return func(o *engineOptions) {
		o.dir = dir
	}
}

// WithStore reads documents from a BadgerDB store at path.
// Takes precedence over WithDirectory.
func WithStore(path string) EngineOption {
	return func(o *engineOptions) {
		o.store = path
	}
}

// WithCreateStore creates the BadgerDB store given to WithStore if it does
// not exist yet. Without it a missing store is reported as
// core.ErrCorpusUnavailable.
func WithCreateStore() EngineOption {
	return func(o *engineOptions) {
		o.create = true
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) EngineOption {
	return func(o *engineOptions) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Open opens the configured corpus.
func Open(opts ...EngineOption) (*Engine, error) {
	options := &engineOptions{
		dir:    jsondir.DefaultDir,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(options)
	}

	if options.store != "" {
		store, err := badger.OpenDocumentStore(options.store,
			badger.WithBackendLogger(options.logger),
			badger.WithCreate(options.create))
		if err != nil {
			return nil, fmt.Errorf("%w: %w", core.ErrCorpusUnavailable, err)
		}
		return &Engine{
			corpus: store,
			store:  store,
			folder: options.store,
			logger: options.logger,
		}, nil
	}

	corpus, err := jsondir.Open(options.dir, jsondir.WithLogger(options.logger))
	if err != nil {
		return nil, err
	}
	return &Engine{
		corpus: corpus,
		folder: corpus.Dir(),
		logger: options.logger,
	}, nil
}

// Close releases the corpus.
func (e *Engine) Close() error {
	if err := e.corpus.Close(); err != nil {
		e.logger.Error("error closing corpus", "err", err)
		return err
	}
	return nil
}

// Corpus returns the corpus searches run against.
func (e *Engine) Corpus() storage.Corpus {
	return e.corpus
}

// Store returns the document store, or nil when the engine reads a folder.
func (e *Engine) Store() storage.DocumentStore {
	if e.store == nil {
		return nil
	}
	return e.store
}

// Folder names the corpus location reported in responses.
func (e *Engine) Folder() string {
	return e.folder
}

// NewSearcher creates a searcher over the engine's corpus.
func (e *Engine) NewSearcher(opts ...search.Option) (*search.Searcher, error) {
	return search.NewSearcher(e.corpus, append([]search.Option{search.WithLogger(e.logger)}, opts...)...)
}

// NewImporter creates an importer copying source into the engine's store.
func (e *Engine) NewImporter(source storage.Corpus, config *importer.Config, progress io.Writer) (*importer.Importer, error) {
	if e.store == nil {
		return nil, ErrNoStore
	}
	return importer.NewImporter(source, e.store, config, progress, importer.WithLogger(e.logger))
}
