// Package main is the Tana CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/hyperjump/tana/internal/cli"
	"github.com/hyperjump/tana/internal/config"
	"github.com/hyperjump/tana/internal/explore"
	"github.com/hyperjump/tana/internal/explore/providers"
	"github.com/hyperjump/tana/internal/export"
	"github.com/hyperjump/tana/internal/index"
	"github.com/hyperjump/tana/internal/models"
	"github.com/hyperjump/tana/internal/server"
	"github.com/hyperjump/tana/internal/storage"
	"github.com/hyperjump/tana/pkg/utils"
	"go.uber.org/zap"
)

var version = "dev"

const (
	defaultConfigPath = "/usr/local/etc/tana/config.yaml"
	defaultServerURL  = "http://localhost:3001"
)

// loadConfig loads config from path. When path is the default, it first looks for
// config.yaml in the current directory (for development); if that exists it is used,
// so that "tana server" from the project dir uses the project's config (including debug).
// Returns the config and the path that was actually loaded (for watching, etc.).
func loadConfig(path string) (*config.Config, string, error) {
	if path == defaultConfigPath {
		if cwd, cwdErr := os.Getwd(); cwdErr == nil {
			fallback := filepath.Join(cwd, "config.yaml")
			if _, statErr := os.Stat(fallback); statErr == nil {
				cfg, loadErr := config.Load(fallback)
				if loadErr != nil {
					return nil, "", loadErr
				}
				return cfg, fallback, nil
			}
		}
	}
	cfg, err := config.Load(path)
	if err != nil {
		return nil, "", err
	}
	return cfg, path, nil
}

// writeStarterConfig saves a config with all defaults to path and returns it,
// so a first run works without hand-writing a file.
func writeStarterConfig(path string) (*config.Config, error) {
	cfg := &config.Config{}
	config.ApplyDefaults(cfg)
	if err := config.Save(path, cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	command := os.Args[1]
	switch command {
	case "server":
		runServer()
	case "explore":
		runExplore()
	case "add":
		runAdd()
	case "list":
		runList()
	case "stats":
		runStats()
	case "export":
		runExport()
	case "version", "--version", "-v":
		fmt.Printf("tana version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging (request flow, provider calls)")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
	if err != nil && *configPath == defaultConfigPath && errors.Is(err, os.ErrNotExist) {
		// First run: write a starter config so the server comes up with defaults.
		cfg, err = writeStarterConfig(defaultConfigPath)
		resolvedConfigPath = defaultConfigPath
	}
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	debugMode := cfg.Debug || *debug
	logger, err := utils.NewLogger(debugMode)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("config loaded",
		zap.String("config_path", resolvedConfigPath),
		zap.Bool("debug", debugMode),
	)

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	watcher := config.NewWatcher(resolvedConfigPath, func(updated *config.Config) {
		// Credentials apply without a restart; path or port changes need one.
		components.TMDB.SetAPIKey(updated.Providers.TMDB.APIKey)
	}, logger)
	if err := watcher.Start(watchCtx); err != nil {
		logger.Warn("config watch unavailable", zap.Error(err))
	}
	defer watcher.Stop()

	srv := server.NewServer(components.Explore, components.Storage, components.Index, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// printExploreUsage prints explore subcommand usage and provider hints.
func printExploreUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: tana explore -type <category> [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. Multi-word queries work with or without quotes.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
The category picks which catalogs are asked:
  anime             AniList
  movie, series     TMDB (needs an API key in config or TMDB_API_KEY)
  manga             MangaDex and AniList
  book              Open Library
  light_novel       Open Library and AniList

Examples:
  tana explore -type anime "attack on titan"
  tana explore -type anime attack on titan      # same as above
  tana explore -type book -output json dune
  tana explore -type manga -server "" berserk   # query providers directly
`)
}

// buildQuery joins all positional args with spaces so multi-word queries
// work the same with or without shell quoting (e.g. "attack on titan" vs attack on titan).
func buildQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// reorderArgs moves any flags (and their values) that appear after the
// positional arguments to the front of the slice so that flag.Parse() sees
// them. Go's flag package stops at the first non-flag argument, so
// "tana explore \"query\" -type anime" would otherwise leave -type unparsed.
func reorderArgs(args []string) []string {
	for i, a := range args {
		if len(a) > 0 && a[0] == '-' {
			if i == 0 {
				return args
			}
			reordered := make([]string, 0, len(args))
			reordered = append(reordered, args[i:]...)
			reordered = append(reordered, args[:i]...)
			return reordered
		}
	}
	return args
}

// parseTags splits a comma-separated tag list, dropping blanks.
func parseTags(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	tags := make([]string, 0, len(parts))
	for _, p := range parts {
		if tag := strings.TrimSpace(p); tag != "" {
			tags = append(tags, tag)
		}
	}
	return tags
}

// parseOutputFormat maps the -output flag to a cli format, exiting on values
// the writers do not support.
func parseOutputFormat(name string) cli.OutputFormat {
	switch name {
	case "json":
		return cli.OutputJSON
	case "text":
		return cli.OutputText
	default:
		fmt.Printf("Unknown output format %q; use text or json\n", name)
		os.Exit(1)
		return cli.OutputText
	}
}

func runExplore() {
	exploreArgs := reorderArgs(os.Args[2:])
	fs := flag.NewFlagSet("explore", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = query providers directly)")
	category := fs.String("type", "", "search category: anime, movie, series, manga, book, light_novel")
	outputFormat := fs.String("output", "text", "output format: text (human-readable) or json (parseable)")
	fs.Usage = func() { printExploreUsage(fs) }
	_ = fs.Parse(exploreArgs)

	if fs.NArg() < 1 {
		printExploreUsage(fs)
		os.Exit(1)
	}
	queryStr := buildQuery(fs.Args())
	if queryStr == "" || *category == "" {
		printExploreUsage(fs)
		os.Exit(1)
	}
	format := parseOutputFormat(*outputFormat)

	if *serverURL != "" {
		// Use the HTTP API when the server is running (avoids holding the
		// index and database open from two processes).
		candidates, err := exploreViaHTTP(*serverURL, queryStr, *category)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Explore failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteCandidates(os.Stdout, candidates, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Direct provider access (when the server is not running).
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	svc, _ := buildExplore(cfg, logger)
	candidates, err := svc.Search(context.Background(), &models.ExploreQuery{
		Query:    queryStr,
		Category: models.MediaCategory(*category),
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Explore failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteCandidates(os.Stdout, candidates, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runAdd() {
	addArgs := reorderArgs(os.Args[2:])
	fs := flag.NewFlagSet("add", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = write to storage directly)")
	mediaType := fs.String("type", "", "media type: movie, series, anime, manga, book, light_novel, webtoon")
	status := fs.String("status", "", "status (default: plan_to_watch or plan_to_read by type)")
	score := fs.Float64("score", -1, "your score on the 0-10 scale")
	progress := fs.Int("progress", 0, "episodes or chapters consumed")
	total := fs.Int("total", 0, "total episodes or chapters (0 = unknown)")
	tags := fs.String("tags", "", "comma-separated tags")
	notes := fs.String("notes", "", "free-form note")
	favorite := fs.Bool("favorite", false, "mark as favorite")
	_ = fs.Parse(addArgs)

	if fs.NArg() < 1 || *mediaType == "" {
		fmt.Println("Usage: tana add -type <type> [flags] <title>")
		os.Exit(1)
	}
	title := buildQuery(fs.Args())
	mt := models.MediaType(*mediaType)
	if !mt.Valid() {
		fmt.Printf("Unknown media type %q\n", *mediaType)
		os.Exit(1)
	}

	item := &models.MediaItem{
		Title:     title,
		MediaType: mt,
		Status:    models.Status(*status),
		Progress:  *progress,
		Tags:      parseTags(*tags),
		Favorite:  *favorite,
	}
	if item.Status == "" {
		item.Status = models.StatusPlanToWatch
		if !mt.Watchable() {
			item.Status = models.StatusPlanToRead
		}
	}
	if *score >= 0 {
		item.Score = score
	}
	if *total > 0 {
		item.TotalUnits = total
	}
	if *notes != "" {
		item.Notes = notes
	}

	if *serverURL != "" {
		added, err := addViaHTTP(*serverURL, item)
		if err != nil {
			fmt.Printf("Add failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Added: %s (%s)\n", added.Title, added.ID)
		return
	}

	// Direct storage access (when the server is not running).
	item.ID = uuid.NewString()
	if err := item.Validate(); err != nil {
		fmt.Printf("Invalid item: %v\n", err)
		os.Exit(1)
	}
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	ctx := context.Background()
	if err := components.Storage.CreateItem(ctx, item); err != nil {
		fmt.Printf("Add failed: %v\n", err)
		os.Exit(1)
	}
	if err := components.Index.Index(ctx, item); err != nil {
		fmt.Printf("Warning: item stored but not indexed: %v\n", err)
	}
	fmt.Printf("Added: %s (%s)\n", item.Title, item.ID)
}

func runList() {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = read storage directly)")
	mediaType := fs.String("type", "", "filter by media type")
	status := fs.String("status", "", "filter by status")
	tag := fs.String("tag", "", "filter by tag")
	favorite := fs.Bool("favorite", false, "only favorites")
	limit := fs.Int("limit", 0, "maximum number of items (0 = all)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format := parseOutputFormat(*outputFormat)
	if *mediaType != "" && !models.MediaType(*mediaType).Valid() {
		fmt.Fprintf(os.Stderr, "Unknown media type %q\n", *mediaType)
		os.Exit(1)
	}
	if *status != "" && !models.Status(*status).Valid() {
		fmt.Fprintf(os.Stderr, "Unknown status %q\n", *status)
		os.Exit(1)
	}

	if *serverURL != "" {
		params := url.Values{}
		if *mediaType != "" {
			params.Set("type", *mediaType)
		}
		if *status != "" {
			params.Set("status", *status)
		}
		if *tag != "" {
			params.Set("tag", *tag)
		}
		if *favorite {
			params.Set("favorite", "true")
		}
		if *limit > 0 {
			params.Set("limit", strconv.Itoa(*limit))
		}
		items, err := listViaHTTP(*serverURL, params)
		if err != nil {
			fmt.Fprintf(os.Stderr, "List failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteItems(os.Stdout, items, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

	// Direct storage access (when the server is not running).
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	filter := storage.ListFilter{
		MediaType: models.MediaType(*mediaType),
		Status:    models.Status(*status),
		Tag:       *tag,
	}
	if *favorite {
		fav := true
		filter.Favorite = &fav
	}
	items, err := components.Storage.ListItems(context.Background(), filter, 0, *limit)
	if err != nil {
		fmt.Fprintf(os.Stderr, "List failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteItems(os.Stdout, items, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runStats() {
	fs := flag.NewFlagSet("stats", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = read storage directly)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	format := parseOutputFormat(*outputFormat)

	var stats *models.Stats
	if *serverURL != "" {
		s, err := statsViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Stats failed: %v\n", err)
			os.Exit(1)
		}
		stats = s
	} else {
		cfg, _, err := loadConfig(*configPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to load config: %v\n", err)
			os.Exit(1)
		}
		logger, err := utils.NewLogger(cfg.Debug)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Failed to create logger: %v\n", err)
			os.Exit(1)
		}
		defer logger.Sync()
		components, err := initializeComponents(cfg, logger)
		if err != nil {
			logger.Fatal("Failed to initialize", zap.Error(err))
		}
		defer components.Close()
		s, err := components.Storage.Stats(context.Background())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Stats failed: %v\n", err)
			os.Exit(1)
		}
		stats = s
	}
	if err := cli.WriteStats(os.Stdout, stats, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func runExport() {
	fs := flag.NewFlagSet("export", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	serverURL := fs.String("server", defaultServerURL, "server URL (empty = read storage directly)")
	outPath := fs.String("o", "library.xlsx", "output file path")
	_ = fs.Parse(os.Args[2:])

	f, err := os.Create(*outPath)
	if err != nil {
		fmt.Printf("Failed to create %s: %v\n", *outPath, err)
		os.Exit(1)
	}
	defer f.Close()

	if *serverURL != "" {
		if err := exportViaHTTP(*serverURL, f); err != nil {
			fmt.Printf("Export failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Exported library to %s\n", *outPath)
		return
	}

	// Direct storage access (when the server is not running).
	cfg, _, err := loadConfig(*configPath)
	if err != nil {
		fmt.Printf("Failed to load config: %v\n", err)
		os.Exit(1)
	}
	logger, err := utils.NewLogger(cfg.Debug)
	if err != nil {
		fmt.Printf("Failed to create logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize", zap.Error(err))
	}
	defer components.Close()

	items, err := components.Storage.ListItems(context.Background(), storage.ListFilter{}, 0, 0)
	if err != nil {
		fmt.Printf("Export failed: %v\n", err)
		os.Exit(1)
	}
	if err := export.WriteXLSX(f, items); err != nil {
		fmt.Printf("Export failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Exported %d item(s) to %s\n", len(items), *outPath)
}

// getJSON performs a GET against the server API and decodes the response body.
func getJSON(rawURL string, out interface{}) error {
	resp, err := http.Get(rawURL)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode response: %w", err)
	}
	return nil
}

func exploreViaHTTP(serverURL, query, category string) ([]models.Candidate, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("type", category)
	var candidates []models.Candidate
	if err := getJSON(serverURL+"/api/explore?"+params.Encode(), &candidates); err != nil {
		return nil, err
	}
	return candidates, nil
}

func listViaHTTP(serverURL string, params url.Values) ([]*models.MediaItem, error) {
	u := serverURL + "/api/items"
	if len(params) > 0 {
		u += "?" + params.Encode()
	}
	var items []*models.MediaItem
	if err := getJSON(u, &items); err != nil {
		return nil, err
	}
	return items, nil
}

func statsViaHTTP(serverURL string) (*models.Stats, error) {
	var stats models.Stats
	if err := getJSON(serverURL+"/api/stats", &stats); err != nil {
		return nil, err
	}
	return &stats, nil
}

func addViaHTTP(serverURL string, item *models.MediaItem) (*models.MediaItem, error) {
	body, err := json.Marshal(item)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/items", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var added models.MediaItem
	if err := json.NewDecoder(resp.Body).Decode(&added); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &added, nil
}

func exportViaHTTP(serverURL string, w io.Writer) error {
	resp, err := http.Get(serverURL + "/api/export")
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	if _, err := io.Copy(w, resp.Body); err != nil {
		return fmt.Errorf("write failed: %w", err)
	}
	return nil
}

// Components holds initialized services.
type Components struct {
	Storage storage.Storage
	Index   index.ItemIndex
	TMDB    *providers.TMDB
	Explore *explore.Service
}

func (c *Components) Close() {
	if c.Index != nil {
		_ = c.Index.Close()
	}
	if c.Storage != nil {
		_ = c.Storage.Close()
	}
}

func initializeComponents(cfg *config.Config, logger *zap.Logger) (*Components, error) {
	store, err := storage.NewSQLiteStorage(cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize storage: %w", err)
	}
	idx, err := index.NewBleveIndex(cfg.Storage.IndexPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to initialize index: %w", err)
	}
	if err := rebuildIndexIfEmpty(context.Background(), store, idx, logger); err != nil {
		logger.Warn("index rebuild failed", zap.Error(err))
	}
	svc, tmdb := buildExplore(cfg, logger)
	return &Components{
		Storage: store,
		Index:   idx,
		TMDB:    tmdb,
		Explore: svc,
	}, nil
}

// rebuildIndexIfEmpty repopulates a fresh index from storage, so deleting the
// index directory is a safe way to recover from corruption.
func rebuildIndexIfEmpty(ctx context.Context, store storage.Storage, idx index.ItemIndex, logger *zap.Logger) error {
	docs, err := idx.DocCount()
	if err != nil {
		return err
	}
	count, err := store.CountItems(ctx)
	if err != nil {
		return err
	}
	if docs > 0 || count == 0 {
		return nil
	}
	items, err := store.ListItems(ctx, storage.ListFilter{}, 0, int(count))
	if err != nil {
		return err
	}
	if err := idx.Rebuild(ctx, items); err != nil {
		return err
	}
	logger.Info("search index rebuilt", zap.Int("items", len(items)))
	return nil
}

// buildExplore wires the provider adapters and the explore service. The TMDB
// adapter is returned separately so config reloads can swap its key in place.
func buildExplore(cfg *config.Config, logger *zap.Logger) (*explore.Service, *providers.TMDB) {
	userAgent := cfg.Providers.MangaDex.UserAgent
	if userAgent == "" {
		userAgent = "tana/" + version
	}
	tmdb := providers.NewTMDB("", cfg.Providers.TMDB.APIKey, limiterFor(cfg, providers.NameTMDB), logger)
	svc := explore.NewService(&cfg.Explore, logger,
		providers.NewAniList("", limiterFor(cfg, providers.NameAniList), logger),
		tmdb,
		providers.NewMangaDex("", userAgent, limiterFor(cfg, providers.NameMangaDex), logger),
		providers.NewOpenLibrary("", limiterFor(cfg, providers.NameOpenLibrary), logger),
	)
	return svc, tmdb
}

// limiterFor builds the provider's rate limiter, honoring any override from
// config and falling back to the built-in defaults.
func limiterFor(cfg *config.Config, name string) *providers.RateLimiter {
	if rl, ok := cfg.Providers.RateLimits[name]; ok {
		return providers.NewRateLimiterWithConfig(providers.RateLimitConfig{
			RequestsPerSecond: rl.RequestsPerSecond,
			BurstSize:         rl.BurstSize,
		})
	}
	return providers.NewRateLimiter(name)
}

func printUsage() {
	fmt.Println(`tana - personal media tracker with cross-provider search

Usage:
  tana server [flags]             Start the HTTP server
  tana explore [flags] <query>    Search external catalogs
  tana add [flags] <title>        Add an item to the library
  tana list [flags]               List library items
  tana stats [flags]              Show library statistics
  tana export [flags]             Export the library to an xlsx spreadsheet
  tana version                    Show version
  tana help                       Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/tana/config.yaml)
  --debug            Enable debug logging (request flow, provider calls)

Explore Flags:
  --type string      Search category: anime, movie, series, manga, book, light_novel (required)
  --server string    Server URL (default: http://localhost:3001). Use empty (--server "") to query providers directly.
  --output string    Output format: text or json (default: text)
  --config string    Config file path (for direct mode)

Add Flags:
  --type string      Media type: movie, series, anime, manga, book, light_novel, webtoon (required)
  --status string    Status (default: plan_to_watch or plan_to_read by type)
  --score float      Your score on the 0-10 scale
  --progress int     Episodes or chapters consumed
  --total int        Total episodes or chapters
  --tags string      Comma-separated tags
  --notes string     Free-form note
  --favorite         Mark as favorite
  --server string    Server URL. Use empty (--server "") to write to storage directly.

List Flags:
  --type string      Filter by media type
  --status string    Filter by status
  --tag string       Filter by tag
  --favorite         Only favorites
  --limit int        Maximum number of items (0 = all)
  --output string    Output format: text or json (default: text)
  --server string    Server URL. Use empty (--server "") to read storage directly.

Stats Flags:
  --output string    Output format: text or json (default: text)
  --server string    Server URL. Use empty (--server "") to read storage directly.

Export Flags:
  -o string          Output file path (default: library.xlsx)
  --server string    Server URL. Use empty (--server "") to read storage directly.

Examples:
  tana server
  tana explore -type anime "attack on titan"
  tana explore -type movie -output json "blade runner"
  tana add -type movie -status completed -score 9 "Blade Runner 2049"
  tana list -type manga -status reading
  tana stats
  tana export -o library.xlsx`)
}
