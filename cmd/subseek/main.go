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


package main

import (
	"fmt"
	"io"
	"log"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/poiesic/subseek"
	"github.com/poiesic/subseek/config"
	"github.com/poiesic/subseek/core"
	"github.com/poiesic/subseek/httpapi"
	"github.com/poiesic/subseek/importer"
	"github.com/poiesic/subseek/metrics"
	"github.com/poiesic/subseek/protocol"
	"github.com/poiesic/subseek/search"
	"github.com/poiesic/subseek/storage/jsondir"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/urfave/cli/v2"
)

const configKey = "config"

func main() {
	if err := newApp(os.Stdin, os.Stdout).Run(os.Args); err != nil {
		log.Fatal(err)
	}
}

func newApp(stdin io.Reader, stdout io.Writer) *cli.App {
	return &cli.App{
		Name:   "subseek",
		Usage:  "Fuzzy search over timestamped subtitle fragments",
		Reader: stdin,
		Writer: stdout,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "info",
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to a YAML configuration file",
				EnvVars: []string{"SUBSEEK_CONFIG"},
			},
		},
		Before: setup,
		Action: queryCommand,
		Commands: []*cli.Command{
			{
				Name:   "query",
				Usage:  "Read one request line from stdin and write JSON results to stdout",
				Action: queryCommand,
				Flags:  corpusFlags(),
			},
			{
				Name:   "search",
				Usage:  "Search the corpus for a query",
				Action: searchCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:     "query",
						Aliases:  []string{"q"},
						Usage:    "Text to search for",
						Required: true,
					},
					&cli.Float64Flag{
						Name:  "min-ratio",
						Usage: "Minimum match ratio (0-100)",
						Value: core.DefaultMinMatchRatio,
					},
					&cli.Float64Flag{
						Name:  "min-similarity",
						Usage: "Minimum original similarity of a fragment (0-1)",
						Value: core.DefaultMinOriginalSimilarity,
					},
					&cli.IntFlag{
						Name:  "max-results",
						Usage: "Maximum number of results (unlimited when not set)",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of search workers (default: number of CPUs)",
					},
					&cli.StringFlag{
						Name:  "format",
						Usage: "Output format (json, text)",
						Value: "json",
					},
				}, corpusFlags()...),
			},
			{
				Name:   "import",
				Usage:  "Import a folder of JSON subtitle files into a BadgerDB store",
				Action: importCommand,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "corpus",
						Usage: "Folder of JSON subtitle files to import",
					},
					&cli.StringFlag{
						Name:  "store",
						Usage: "Path to BadgerDB database directory",
					},
					&cli.IntFlag{
						Name:  "batch-size",
						Usage: "Number of documents to read in each batch",
						Value: importer.DefaultBatchSize,
					},
					&cli.IntFlag{
						Name:  "report-interval",
						Usage: "Report progress every N documents",
						Value: 100,
					},
					&cli.IntFlag{
						Name:  "max-retries",
						Usage: "Maximum attempts for each write",
						Value: 3,
					},
					&cli.DurationFlag{
						Name:  "retry-delay",
						Usage: "Base delay for exponential backoff",
						Value: 100 * time.Millisecond,
					},
					&cli.BoolFlag{
						Name:  "prune",
						Usage: "Remove stored documents that are no longer in the folder",
					},
				},
			},
			{
				Name:   "serve",
				Usage:  "Serve searches over HTTP",
				Action: serveCommand,
				Flags: append([]cli.Flag{
					&cli.StringFlag{
						Name:  "addr",
						Usage: "Address to listen on",
					},
					&cli.IntFlag{
						Name:  "pool-size",
						Usage: "Number of search workers (default: number of CPUs)",
					},
					&cli.BoolFlag{
						Name:  "metrics",
						Usage: "Expose Prometheus metrics on /metrics",
						Value: true,
					},
				}, corpusFlags()...),
			},
		},
	}
}

func corpusFlags() []cli.Flag {
	return []cli.Flag{
		&cli.StringFlag{
			Name:  "corpus",
			Usage: "Folder of JSON subtitle files (default: subtitle)",
		},
		&cli.StringFlag{
			Name:  "store",
			Usage: "Path to an existing BadgerDB store written by the import command; takes precedence over --corpus",
		},
	}
}

// setup loads the configuration and configures logging.
func setup(c *cli.Context) error {
	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]any{}
	}
	c.App.Metadata[configKey] = &cfg

	// The config file level applies unless the flag was given
	if !c.IsSet("log-level") {
		if err := c.Set("log-level", cfg.Logging.Level); err != nil {
			return err
		}
	}
	return setupLogger(c)
}

func setupLogger(c *cli.Context) error {
	// Get log level from flag and normalize to lowercase
	levelStr := strings.ToLower(c.String("log-level"))

	// Map string to slog.Level
	var level slog.Level
	switch levelStr {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		return fmt.Errorf("invalid log level %q: must be one of debug, info, warn, error", levelStr)
	}

	// Configure slog with the specified level
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)

	return nil
}

// loadedConfig returns the configuration loaded by setup, or the defaults.
func loadedConfig(c *cli.Context) *config.Config {
	if cfg, ok := c.App.Metadata[configKey].(*config.Config); ok {
		return cfg
	}
	cfg := config.DefaultConfig()
	return &cfg
}

// openEngine opens the corpus selected by flags, falling back to the config.
func openEngine(c *cli.Context, cfg *config.Config) (*subseek.Engine, error) {
	dir := cfg.Corpus.Dir
	if c.IsSet("corpus") {
		dir = c.String("corpus")
	}
	store := cfg.Corpus.Store
	if c.IsSet("store") {
		store = c.String("store")
	}

	opts := []subseek.EngineOption{subseek.WithDirectory(dir)}
	if store != "" {
		opts = append(opts, subseek.WithStore(store))
	}
	return subseek.Open(opts...)
}

func newSearcher(c *cli.Context, cfg *config.Config, engine *subseek.Engine) (*search.Searcher, error) {
	poolSize := cfg.Search.PoolSize
	if c.IsSet("pool-size") {
		poolSize = c.Int("pool-size")
	}
	opts := []search.Option{search.WithChunkSize(cfg.Search.ChunkSize)}
	if poolSize > 0 {
		opts = append(opts, search.WithPoolSize(poolSize))
	}
	return engine.NewSearcher(opts...)
}

// queryCommand answers a single request line read from stdin.
// Failures are reported as a JSON error envelope on stdout.
func queryCommand(c *cli.Context) error {
	out := c.App.Writer
	cfg := loadedConfig(c)

	params, err := protocol.ReadRequest(c.App.Reader)
	if err != nil {
		return protocol.WriteError(out, err)
	}

	engine, err := openEngine(c, cfg)
	if err != nil {
		return protocol.WriteError(out, err)
	}
	defer engine.Close()

	searcher, err := newSearcher(c, cfg, engine)
	if err != nil {
		return protocol.WriteError(out, err)
	}
	defer searcher.Release()

	result, err := searcher.Search(c.Context, params)
	if err != nil {
		return protocol.WriteError(out, err)
	}
	return protocol.WriteResult(out, result, engine.Folder())
}

func searchCommand(c *cli.Context) error {
	cfg := loadedConfig(c)

	params := cfg.SearchParams(c.String("query"))
	if c.IsSet("min-ratio") {
		params.MinMatchRatio = c.Float64("min-ratio")
	}
	if c.IsSet("min-similarity") {
		params.MinOriginalSimilarity = c.Float64("min-similarity")
	}
	if c.IsSet("max-results") {
		params.MaxResults = core.Limit(c.Int("max-results"))
	}

	format := c.String("format")
	if format != "json" && format != "text" {
		return fmt.Errorf("invalid format %q: must be json or text", format)
	}

	engine, err := openEngine(c, cfg)
	if err != nil {
		return fmt.Errorf("failed to open corpus: %w", err)
	}
	defer engine.Close()

	searcher, err := newSearcher(c, cfg, engine)
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}
	defer searcher.Release()

	result, err := searcher.Search(c.Context, params)
	if err != nil {
		return fmt.Errorf("search failed: %w", err)
	}

	if format == "json" {
		return protocol.WriteResult(c.App.Writer, result, engine.Folder())
	}
	writeText(c.App.Writer, result)
	return nil
}

func writeText(w io.Writer, result *search.Result) {
	if result.NoMatches() {
		fmt.Fprintf(w, "No matches for %q\n", result.Params.Query)
		for _, s := range protocol.Suggestions(result.Params) {
			fmt.Fprintf(w, "  - %s\n", s)
		}
		return
	}

	fmt.Fprintf(w, "Found %d hits in %d documents\n", len(result.Hits), result.Documents)
	for i, hit := range result.Hits {
		marker := " "
		if hit.ExactMatch {
			marker = "*"
		}
		fmt.Fprintf(w, "%d: %s %5.1f%% %s [%s] %s\n",
			i, marker, hit.MatchRatio, hit.DocumentName, hit.Timestamp, hit.Text)
	}
}

func importCommand(c *cli.Context) error {
	cfg := loadedConfig(c)

	storePath := cfg.Corpus.Store
	if c.IsSet("store") {
		storePath = c.String("store")
	}
	if storePath == "" {
		return fmt.Errorf("store path is required")
	}
	dir := cfg.Corpus.Dir
	if c.IsSet("corpus") {
		dir = c.String("corpus")
	}

	importConfig := &importer.Config{
		BatchSize:      c.Int("batch-size"),
		ReportInterval: c.Int("report-interval"),
		MaxRetries:     c.Int("max-retries"),
		RetryDelay:     c.Duration("retry-delay"),
		Prune:          c.Bool("prune") || cfg.Import.Prune,
	}
	if !c.IsSet("batch-size") {
		importConfig.BatchSize = cfg.Import.BatchSize
	}
	if !c.IsSet("report-interval") {
		importConfig.ReportInterval = cfg.Import.ReportInterval
	}
	if !c.IsSet("max-retries") {
		importConfig.MaxRetries = cfg.Import.MaxRetries
	}
	if !c.IsSet("retry-delay") {
		importConfig.RetryDelay = cfg.RetryDelay()
	}

	// Validate config
	if importConfig.BatchSize <= 0 {
		return fmt.Errorf("batch-size must be greater than 0")
	}
	if importConfig.ReportInterval <= 0 {
		return fmt.Errorf("report-interval must be greater than 0")
	}
	if importConfig.MaxRetries <= 0 {
		return fmt.Errorf("max-retries must be greater than 0")
	}

	source, err := jsondir.Open(dir)
	if err != nil {
		return fmt.Errorf("failed to open corpus: %w", err)
	}

	engine, err := subseek.Open(subseek.WithStore(storePath), subseek.WithCreateStore())
	if err != nil {
		return fmt.Errorf("failed to open store: %w", err)
	}
	defer engine.Close()

	imp, err := engine.NewImporter(source, importConfig, c.App.ErrWriter)
	if err != nil {
		return fmt.Errorf("failed to create importer: %w", err)
	}

	errOut := c.App.ErrWriter
	fmt.Fprintf(errOut, "Corpus: %s\n", dir)
	fmt.Fprintf(errOut, "Store: %s\n", storePath)
	fmt.Fprintln(errOut)

	if _, err := imp.Run(c.Context); err != nil {
		return fmt.Errorf("import failed: %w", err)
	}
	return nil
}

func serveCommand(c *cli.Context) error {
	cfg := loadedConfig(c)

	addr := cfg.HTTP.Addr
	if c.IsSet("addr") {
		addr = c.String("addr")
	}

	engine, err := openEngine(c, cfg)
	if err != nil {
		return fmt.Errorf("failed to open corpus: %w", err)
	}
	defer engine.Close()

	searcher, err := newSearcher(c, cfg, engine)
	if err != nil {
		return fmt.Errorf("failed to create searcher: %w", err)
	}
	defer searcher.Release()

	opts := []httpapi.Option{httpapi.WithFolder(engine.Folder())}
	if c.Bool("metrics") {
		reg := prometheus.NewRegistry()
		reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
		m, err := metrics.New(reg)
		if err != nil {
			return fmt.Errorf("failed to register metrics: %w", err)
		}
		opts = append(opts, httpapi.WithMetrics(m, reg))
	}

	server, err := httpapi.NewServer(searcher, opts...)
	if err != nil {
		return fmt.Errorf("failed to create server: %w", err)
	}

	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	return server.ListenAndServe(ctx, addr,
		time.Duration(cfg.HTTP.ReadTimeoutSec)*time.Second,
		time.Duration(cfg.HTTP.WriteTimeoutSec)*time.Second,
		time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
}
