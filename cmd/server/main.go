// This Source Code Form is subject to the terms of the Mozilla Public
// License, v. 2.0. If a copy of the MPL was not distributed with this
// file, You can obtain one at https://mozilla.org/MPL/2.0/.

package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	mcpserver "github.com/mark3labs/mcp-go/server"
	"github.com/rs/zerolog"
	gormlogger "gorm.io/gorm/logger"

	"github.com/tejzpr/learnmap/internal/config"
	"github.com/tejzpr/learnmap/internal/database"
	"github.com/tejzpr/learnmap/internal/experience"
	"github.com/tejzpr/learnmap/internal/logger"
	"github.com/tejzpr/learnmap/internal/rebuild"
	"github.com/tejzpr/learnmap/internal/server"
	"github.com/tejzpr/learnmap/internal/storage"
	"github.com/tejzpr/learnmap/internal/store"
	"github.com/tejzpr/learnmap/internal/tools"
	"github.com/tejzpr/learnmap/pkg/scheduler"
)

// Version is set at build time via ldflags (e.g. goreleaser -X main.Version={{.Version}}).
var Version string

func main() {
	// Define command-line flags
	httpMode := flag.Bool("http", false, "Run in HTTP server mode (default: stdio for MCP)")
	rebuildDB := flag.Bool("rebuild", false, "Import the file store into the database and exit")
	forceRebuild := flag.Bool("force", false, "Clear the database before importing (requires --rebuild)")
	configPath := flag.String("config", "", "Path to config file")
	storageType := flag.String("storage", "", "Storage backend (file, database or memory)")
	storeRoot := flag.String("root", "", "Record directory for the file store")
	dbType := flag.String("db-type", "", "Database type (sqlite or postgres)")
	dbPath := flag.String("db-path", "", "Database path (for sqlite)")
	dbDSN := flag.String("db-dsn", "", "Database DSN (for postgres)")
	port := flag.Int("port", 0, "Server port (HTTP mode only)")
	logLevel := flag.String("log-level", "", "Log level (debug, info, warn, error)")
	showVersion := flag.Bool("version", false, "Print version and exit")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Learnmap MCP Server\n\n")
		fmt.Fprintf(os.Stderr, "Usage: %s [options]\n\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "Server Mode:\n")
		fmt.Fprintf(os.Stderr, "  %s                    Start MCP server (stdio)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --http             Start HTTP server (JSON API and MCP at /mcp)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nDatabase Rebuild:\n")
		fmt.Fprintf(os.Stderr, "  %s --rebuild          Import file store records into the database\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --rebuild --force  Clear the database first\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nOptions:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  LEARNMAP_STORAGE_TYPE        Storage backend\n")
		fmt.Fprintf(os.Stderr, "  LEARNMAP_STORAGE_ROOT_PATH   File store directory\n")
		fmt.Fprintf(os.Stderr, "  LEARNMAP_DATABASE_TYPE       Database type (sqlite or postgres)\n")
		fmt.Fprintf(os.Stderr, "  LEARNMAP_DATABASE_POSTGRES_DSN  PostgreSQL connection string\n")
		fmt.Fprintf(os.Stderr, "  LEARNMAP_SERVER_PORT         Server port (HTTP mode only)\n")
		fmt.Fprintf(os.Stderr, "  LEARNMAP_LOGGING_LEVEL       Log level\n")
	}

	flag.Parse()

	if *showVersion {
		fmt.Println(versionString())
		return
	}

	// Validate flag combinations
	if *forceRebuild && !*rebuildDB {
		fatal("--force can only be used with --rebuild")
	}
	if *rebuildDB && *httpMode {
		fatal("--rebuild and --http cannot be used together")
	}

	// Load configuration
	cfg, err := loadConfig(*configPath)
	if err != nil {
		fatal(err.Error())
	}

	// Apply CLI flag overrides (highest priority)
	applyCLIOverrides(cfg, cliOverrides{
		httpMode:    *httpMode,
		storageType: *storageType,
		storeRoot:   *storeRoot,
		dbType:      *dbType,
		dbPath:      *dbPath,
		dbDSN:       *dbDSN,
		port:        *port,
		logLevel:    *logLevel,
	})
	if err := cfg.Validate(); err != nil {
		fatal(err.Error())
	}

	// CRITICAL: MCP servers must ONLY output JSON-RPC to stdout
	log := logger.New(cfg.Logging.Level)
	log.Info().Str("version", versionString()).Str("storage", cfg.Storage.Type).Msg("starting learnmap")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// REBUILD MODE: Run import and exit
	if *rebuildDB {
		if err := runRebuildMode(ctx, cfg, log, *forceRebuild); err != nil {
			log.Fatal().Err(err).Msg("rebuild failed")
		}
		return
	}

	b, err := openBackend(cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}
	defer func() {
		if err := b.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close storage")
		}
	}()

	toolCtx, err := newToolContext(ctx, cfg, b, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to initialize")
	}
	mcpServer := server.NewMCPServer(toolCtx)

	// SERVER MODE
	if cfg.Server.Transport == config.TransportHTTP {
		runHTTPMode(ctx, cfg, mcpServer, log)
		return
	}
	runStdioMode(mcpServer, log)
}

// newToolContext builds the indexing store over the backend and loads every stored record
func newToolContext(ctx context.Context, cfg *config.Config, b *backend, log zerolog.Logger) (*tools.ToolContext, error) {
	decoderOpts := []experience.DecoderOption{experience.WithLogger(log)}
	if cfg.Decoder.Strict {
		decoderOpts = append(decoderOpts, experience.Strict())
	}
	decoder := experience.NewDecoder(decoderOpts...)

	st := store.New(b.storage, store.WithLogger(log), store.WithDecoder(decoder))

	loaded, err := st.Load(ctx)
	var batchErr *experience.DecodeError
	if err != nil && !errors.As(err, &batchErr) {
		return nil, err
	}
	if batchErr != nil {
		log.Warn().Int("failed", len(batchErr.Failures)).Msg("some stored records could not be loaded")
	}
	log.Info().Int("records", loaded).Msg("store ready")

	toolCtx, err := tools.NewToolContextFromConfig(st, cfg, log)
	if err != nil {
		return nil, err
	}
	toolCtx.Decoder = decoder
	toolCtx.History = b.history
	return toolCtx, nil
}

// runRebuildMode imports every record of the file store into the database
func runRebuildMode(ctx context.Context, cfg *config.Config, log zerolog.Logger, force bool) error {
	from, err := storage.NewFileStore(cfg.Storage.RootPath, storage.WithFileLogger(log))
	if err != nil {
		return err
	}

	to, err := database.Open(databaseConfig(cfg))
	if err != nil {
		return err
	}
	defer to.Close()

	log.Info().
		Str("from", cfg.Storage.RootPath).
		Str("database", cfg.Database.Type).
		Bool("force", force).
		Msg("starting rebuild")

	result, err := rebuild.Import(ctx, from, to, rebuild.Options{Force: force, Logger: log})
	if err != nil {
		return err
	}

	for _, e := range result.Errors {
		log.Warn().Str("error", e).Msg("record not imported")
	}
	log.Info().
		Int("processed", result.Processed).
		Int("imported", result.Imported).
		Int("skipped", result.Skipped).
		Msg("rebuild completed")
	return nil
}

// runStdioMode runs the server in stdio mode for MCP clients
func runStdioMode(mcpServer *server.MCPServer, log zerolog.Logger) {
	log.Info().Strs("tools", mcpServer.ToolNames()).Msg("MCP server ready (stdio mode)")
	if err := mcpserver.ServeStdio(mcpServer.GetMCPServer()); err != nil {
		log.Fatal().Err(err).Msg("MCP server error")
	}
}

// runHTTPMode runs the JSON API and the streamable MCP endpoint until ctx is cancelled
func runHTTPMode(ctx context.Context, cfg *config.Config, mcpServer *server.MCPServer, log zerolog.Logger) {
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	httpServer := &http.Server{
		Addr:              addr,
		Handler:           server.NewHTTPServer(mcpServer).Router(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Error().Err(err).Msg("HTTP shutdown failed")
		}
	}()

	// Start background reload so hand-authored record files are picked up
	if cfg.Storage.ReloadInterval > 0 {
		st := mcpServer.ToolContext().Store
		reloader := scheduler.NewScheduler("reload", time.Duration(cfg.Storage.ReloadInterval)*time.Minute, func(ctx context.Context) error {
			_, err := st.Load(ctx)
			var batchErr *experience.DecodeError
			if errors.As(err, &batchErr) {
				return nil
			}
			return err
		}, log)
		reloader.Start(ctx)
		defer reloader.Stop()
		log.Info().Int("minutes", cfg.Storage.ReloadInterval).Msg("background reload started")
	}

	log.Info().Str("addr", addr).Strs("tools", mcpServer.ToolNames()).Msg("HTTP server starting")
	if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Fatal().Err(err).Msg("server failed")
	}
	log.Info().Msg("HTTP server stopped")
}

// loadConfig reads the config file. A broken explicit path is fatal, the
// default location falls back to built-in defaults.
func loadConfig(path string) (*config.Config, error) {
	if path != "" {
		cfg, err := config.LoadFromPath(path)
		if err != nil {
			return nil, fmt.Errorf("failed to load config from %s: %w", path, err)
		}
		return cfg, nil
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to load default config: %v\nUsing built-in defaults\n", err)
		return config.DefaultConfig(), nil
	}
	return cfg, nil
}

type cliOverrides struct {
	httpMode    bool
	storageType string
	storeRoot   string
	dbType      string
	dbPath      string
	dbDSN       string
	port        int
	logLevel    string
}

// applyCLIOverrides applies command-line flag overrides to configuration
func applyCLIOverrides(cfg *config.Config, o cliOverrides) {
	if o.httpMode {
		cfg.Server.Transport = config.TransportHTTP
	}
	if o.storageType != "" {
		cfg.Storage.Type = o.storageType
	}
	if o.storeRoot != "" {
		cfg.Storage.RootPath = o.storeRoot
	}
	if o.dbType != "" {
		cfg.Database.Type = o.dbType
	}
	if o.dbPath != "" {
		cfg.Database.SQLitePath = o.dbPath
	}
	if o.dbDSN != "" {
		cfg.Database.PostgresDSN = o.dbDSN
	}
	if o.port > 0 {
		cfg.Server.Port = o.port
	}
	if o.logLevel != "" {
		cfg.Logging.Level = o.logLevel
	}
}

func versionString() string {
	if Version == "" {
		return "dev"
	}
	return Version
}

// fatal reports a startup error before the logger exists
func fatal(msg string) {
	fmt.Fprintf(os.Stderr, "ERROR: %s\n", msg)
	os.Exit(1)
}

// databaseConfig maps the database section, silencing GORM's stdout logger
func databaseConfig(cfg *config.Config) *database.Config {
	return &database.Config{
		Type:        cfg.Database.Type,
		SQLitePath:  cfg.Database.SQLitePath,
		PostgresDSN: cfg.Database.PostgresDSN,
		LogLevel:    gormlogger.Silent, // CRITICAL: Silence GORM stdout output for MCP
	}
}
