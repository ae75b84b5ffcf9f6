// Package main is the Pasal CLI entry point.
package main

import (
	"bytes"
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/mnakhyar/pasal/internal/cli"
	"github.com/mnakhyar/pasal/internal/config"
	"github.com/mnakhyar/pasal/internal/fulltext"
	"github.com/mnakhyar/pasal/internal/ingest"
	"github.com/mnakhyar/pasal/internal/models"
	"github.com/mnakhyar/pasal/internal/search"
	"github.com/mnakhyar/pasal/internal/server"
	"github.com/mnakhyar/pasal/internal/storage"
	"github.com/mnakhyar/pasal/internal/watcher"
	"github.com/mnakhyar/pasal/pkg/utils"
)

var version = "dev"

const defaultConfigPath = "/usr/local/etc/pasal/config.yaml"

// loadConfig loads config from path. When path is the default, a config.yaml
// in the current directory takes precedence so running from the project dir
// picks up the project's config. Returns the config and the path actually
// loaded.
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

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}
	switch os.Args[1] {
	case "server":
		runServer()
	case "search":
		runSearch()
	case "ingest":
		runIngest()
	case "status":
		runStatus()
	case "version", "--version", "-v":
		fmt.Printf("pasal version %s\n", version)
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Printf("Unknown command: %s\n", os.Args[1])
		printUsage()
		os.Exit(1)
	}
}

// Components holds initialized services.
type Components struct {
	Storage    storage.Storage
	Works      fulltext.WorkIndex
	Provisions fulltext.ProvisionIndex
	Engine     *search.Engine
	Ingestor   *ingest.Ingestor
}

func (c *Components) Close() {
	if c.Provisions != nil {
		_ = c.Provisions.Close()
	}
	if c.Works != nil {
		_ = c.Works.Close()
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
	works, err := fulltext.NewBleveWorkIndex(cfg.Storage.WorkIndexPath)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to open work index: %w", err)
	}
	provisions, err := fulltext.NewBleveProvisionIndex(cfg.Storage.ProvisionIndexPath)
	if err != nil {
		_ = works.Close()
		_ = store.Close()
		return nil, fmt.Errorf("failed to open provision index: %w", err)
	}

	ctx := context.Background()
	if err := ingest.SeedRegulationTypes(ctx, store); err != nil {
		_ = provisions.Close()
		_ = works.Close()
		_ = store.Close()
		return nil, fmt.Errorf("failed to seed regulation types: %w", err)
	}

	engine, err := search.NewEngine(ctx, store, works, provisions, &cfg.Search, logger)
	if err != nil {
		_ = provisions.Close()
		_ = works.Close()
		_ = store.Close()
		return nil, err
	}
	ingestor := ingest.NewIngestor(store, works, provisions, logger)

	return &Components{
		Storage:    store,
		Works:      works,
		Provisions: provisions,
		Engine:     engine,
		Ingestor:   ingestor,
	}, nil
}

func runServer() {
	fs := flag.NewFlagSet("server", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	debug := fs.Bool("debug", false, "enable debug logging")
	_ = fs.Parse(os.Args[2:])

	cfg, resolvedConfigPath, err := loadConfig(*configPath)
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
		zap.Bool("debug", debugMode))

	components, err := initializeComponents(cfg, logger)
	if err != nil {
		logger.Fatal("Failed to initialize components", zap.Error(err))
	}
	defer components.Close()

	watchCtx, watchCancel := context.WithCancel(context.Background())
	defer watchCancel()
	var corpusWatch *watcher.Watcher
	if cfg.Corpus.Watch && len(cfg.Corpus.Directories) > 0 {
		ing := components.Ingestor
		corpusWatch = watcher.New(
			cfg.Corpus.Directories,
			func(path string) {
				if _, err := ing.IngestFile(context.Background(), path); err != nil {
					logger.Warn("corpus ingest failed", zap.String("path", path), zap.Error(err))
				}
			},
			func(path string) {
				// A deleted file does not identify its work; removal stays an
				// explicit API/CLI operation.
				logger.Info("corpus file removed, work kept", zap.String("path", path))
			},
			logger,
		)
		if err := corpusWatch.Start(watchCtx); err != nil {
			logger.Fatal("Failed to start corpus watcher", zap.Error(err))
		}
		corpusWatch.SyncExisting()
	}

	srv := server.NewServer(components.Engine, components.Ingestor, components.Storage, cfg, logger)
	go func() {
		if err := srv.Start(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("Server failed", zap.Error(err))
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)
	<-sigChan

	logger.Info("Shutting down...")
	if corpusWatch != nil {
		corpusWatch.Stop()
	}
	watchCancel()
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	_ = srv.Stop(ctx)
}

// buildSearchQuery joins all positional args with spaces so multi-word
// queries work the same with or without shell quoting.
func buildSearchQuery(args []string) string {
	return strings.TrimSpace(strings.Join(args, " "))
}

// searchArgsReorder moves flags (and their values) that appear after the
// query to the front so flag.Parse() sees them. Go's flag package stops at
// the first non-flag argument.
func searchArgsReorder(args []string) []string {
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

func printSearchUsage(fs *flag.FlagSet) {
	fmt.Fprintf(fs.Output(), "Usage: pasal search [flags] <query>\n\n")
	fmt.Fprintf(fs.Output(), "Query is all remaining arguments joined by spaces. A citation like\n")
	fmt.Fprintf(fs.Output(), "\"UU 13 2003\" resolves the regulation directly; anything else runs\n")
	fmt.Fprintf(fs.Output(), "title and content search.\n\n")
	fs.PrintDefaults()
	fmt.Fprintf(fs.Output(), `
Examples:
  pasal search UU 13 2003
  pasal search upah minimum
  pasal search --type UU --year 2003 pesangon
  pasal search --output json "perjanjian kerja"
`)
}

func runSearch() {
	searchArgs := searchArgsReorder(os.Args[2:])

	fs := flag.NewFlagSet("search", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (direct mode)")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = direct storage access)")
	matchCount := fs.Int("match-count", 0, "number of matching nodes to collect (0 = server default)")
	typeFilter := fs.String("type", "", "filter by regulation type code (e.g. UU, PP)")
	yearFilter := fs.String("year", "", "filter by year")
	statusFilter := fs.String("status", "", "filter by legal status (berlaku, diubah, dicabut, tidak_berlaku)")
	page := fs.Int("page", 1, "result page")
	perPage := fs.Int("per-page", 10, "groups per page")
	outputFormat := fs.String("output", "text", "output format: text or json")
	fs.Usage = func() { printSearchUsage(fs) }
	_ = fs.Parse(searchArgs)

	queryStr := buildSearchQuery(fs.Args())
	if queryStr == "" {
		printSearchUsage(fs)
		os.Exit(1)
	}

	format := cli.OutputText
	switch *outputFormat {
	case "json":
		format = cli.OutputJSON
	case "text":
	default:
		fmt.Printf("Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}

	query := &models.SearchQuery{
		Query:      queryStr,
		MatchCount: *matchCount,
		Filter: models.SearchFilter{
			Type:   *typeFilter,
			Year:   *yearFilter,
			Status: *statusFilter,
		},
		Page:    *page,
		PerPage: *perPage,
	}

	if *serverURL != "" {
		// Use the HTTP API when the server is running (avoids a bleve/sqlite
		// lock conflict with the server process).
		response, err := searchViaHTTP(*serverURL, query)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
			os.Exit(1)
		}
		if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
		return
	}

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

	ctx := context.Background()
	flat, err := components.Engine.Search(ctx, query)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	response, err := components.Engine.Group(ctx, flat, query.Page, query.PerPage)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Search failed: %v\n", err)
		os.Exit(1)
	}
	if err := cli.WriteSearchResults(os.Stdout, response, format); err != nil {
		fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
		os.Exit(1)
	}
}

func searchViaHTTP(serverURL string, query *models.SearchQuery) (*models.GroupedResponse, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, err
	}
	resp, err := http.Post(serverURL+"/api/v1/search", "application/json", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var response models.GroupedResponse
	if err := json.NewDecoder(resp.Body).Decode(&response); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &response, nil
}

func runIngest() {
	fs := flag.NewFlagSet("ingest", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path")
	_ = fs.Parse(os.Args[2:])

	if fs.NArg() < 1 {
		fmt.Println("Usage: pasal ingest [flags] <file-or-directory>")
		os.Exit(1)
	}
	path := fs.Arg(0)

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
	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Failed to stat path: %v\n", err)
		os.Exit(1)
	}
	if info.IsDir() {
		n, err := components.Ingestor.IngestDirectory(ctx, path)
		if err != nil {
			fmt.Printf("Ingesting directory failed: %v\n", err)
			os.Exit(1)
		}
		fmt.Printf("Ingested %d regulation(s) from %s\n", n, path)
		return
	}
	workID, err := components.Ingestor.IngestFile(ctx, path)
	if err != nil {
		fmt.Printf("Ingest failed: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Regulation ingested: %s\n", workID)
}

// statusResponse is the shape of the GET /api/v1/status response.
type statusResponse struct {
	Works          int64  `json:"works"`
	Nodes          int64  `json:"nodes"`
	DiskUsageBytes *int64 `json:"disk_usage_bytes,omitempty"`
}

func runStatus() {
	fs := flag.NewFlagSet("status", flag.ExitOnError)
	configPath := fs.String("config", defaultConfigPath, "config file path (direct mode)")
	serverURL := fs.String("server", "http://localhost:8080", "server URL (empty = direct storage)")
	outputFormat := fs.String("output", "text", "output format: text or json")
	_ = fs.Parse(os.Args[2:])

	var status statusResponse
	if *serverURL != "" {
		res, err := statusViaHTTP(*serverURL)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Status failed: %v\n", err)
			os.Exit(1)
		}
		status = *res
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
			fmt.Fprintf(os.Stderr, "Failed to initialize: %v\n", err)
			os.Exit(1)
		}
		defer components.Close()

		ctx := context.Background()
		works, err := components.Storage.CountWorks(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count works failed: %v\n", err)
			os.Exit(1)
		}
		nodes, err := components.Storage.CountNodes(ctx)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Count nodes failed: %v\n", err)
			os.Exit(1)
		}
		status = statusResponse{Works: works, Nodes: nodes}
		diskBytes, err := storage.DiskUsageBytes(
			cfg.Storage.DatabasePath,
			cfg.Storage.WorkIndexPath,
			cfg.Storage.ProvisionIndexPath,
		)
		if err == nil {
			status.DiskUsageBytes = &diskBytes
		}
	}

	switch *outputFormat {
	case "json":
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(status); err != nil {
			fmt.Fprintf(os.Stderr, "Output failed: %v\n", err)
			os.Exit(1)
		}
	case "text":
		fmt.Printf("works:            %d   # count of regulations\n", status.Works)
		fmt.Printf("nodes:            %d   # count of document nodes\n", status.Nodes)
		if status.DiskUsageBytes != nil {
			fmt.Printf("disk_usage_bytes: %d   # database + indices on disk\n", *status.DiskUsageBytes)
		}
	default:
		fmt.Fprintf(os.Stderr, "Unknown output format %q; use text or json\n", *outputFormat)
		os.Exit(1)
	}
}

func statusViaHTTP(serverURL string) (*statusResponse, error) {
	resp, err := http.Get(serverURL + "/api/v1/status")
	if err != nil {
		return nil, fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		b, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("server returned %d: %s", resp.StatusCode, string(b))
	}
	var s statusResponse
	if err := json.NewDecoder(resp.Body).Decode(&s); err != nil {
		return nil, fmt.Errorf("decode response: %w", err)
	}
	return &s, nil
}

func printUsage() {
	fmt.Println(`pasal - Indonesian legal regulation search engine

Usage:
  pasal server [flags]            Start the HTTP server
  pasal search [flags] <query>    Search regulations (citation or free text)
  pasal ingest [flags] <path>     Ingest a regulation JSON file or directory
  pasal status [flags]            Show corpus/storage status
  pasal version                   Show version
  pasal help                      Show this help

Server Flags:
  --config string    Config file path (default: /usr/local/etc/pasal/config.yaml)
  --debug            Enable debug logging

Search Flags:
  --config string    Config file path (for direct storage mode)
  --server string    Server URL (default: http://localhost:8080). Use --server "" for direct storage.
  --match-count int  Number of matching nodes to collect
  --type string      Filter by regulation type code (UU, PP, PERPRES, ...)
  --year string      Filter by year
  --status string    Filter by legal status
  --page int         Result page (default: 1)
  --per-page int     Groups per page (default: 10)
  --output string    Output format: text or json

Examples:
  pasal server
  pasal search UU 13 2003
  pasal search upah minimum
  pasal search --type PP --year 2021 pengupahan
  pasal ingest ./corpus/uu-13-2003.json
  pasal status --output json`)
}
