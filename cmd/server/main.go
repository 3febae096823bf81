package main

import (
	"bufio"
	"context"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"
	"time"

	"modsentry/internal/database/boltstore"
	"modsentry/internal/database/sqlitestore"
	"modsentry/internal/handlers"
	"modsentry/internal/ingest"
	"modsentry/internal/metrics"
	"modsentry/internal/modlog"
	"modsentry/internal/reddit"
	"modsentry/internal/report"
	"modsentry/internal/routing"
	"modsentry/internal/subconfig"
	"modsentry/internal/tracing"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
)

func main() {
	// Configure zerolog
	// Set log level from environment (default: info)
	logLevel := os.Getenv("LOG_LEVEL")
	switch logLevel {
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info", "":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	default:
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	}

	// Use pretty console logging in development, JSON in production
	if os.Getenv("LOG_FORMAT") == "json" {
		// Production: JSON logs
		log.Logger = zerolog.New(os.Stdout).With().Timestamp().Logger()
	} else {
		// Development: pretty console logs
		log.Logger = log.Output(zerolog.ConsoleWriter{
			Out:        os.Stdout,
			TimeFormat: time.RFC3339,
		})
	}

	log.Info().Msg("Starting ModSentry")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Initialize tracing; the exporter endpoint comes from the standard
	// OTEL_EXPORTER_OTLP_ENDPOINT variable.
	tp, err := tracing.Init(ctx)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to initialize tracing")
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := tp.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Failed to shut down tracer provider")
		}
	}()

	// Get port from env or use default
	port := os.Getenv("PORT")
	if port == "" {
		port = "18920"
	}

	// Open the configured storage backend
	logStore, configStore, entryCounts, closeStore := openStore()
	defer closeStore()

	// Reddit API client with metrics-instrumented transport
	creds := reddit.Credentials{
		ClientID:     os.Getenv("REDDIT_CLIENT_ID"),
		ClientSecret: os.Getenv("REDDIT_CLIENT_SECRET"),
		Username:     os.Getenv("REDDIT_USERNAME"),
		Password:     os.Getenv("REDDIT_PASSWORD"),
		UserAgent:    os.Getenv("REDDIT_USER_AGENT"),
	}
	if creds.ClientID == "" || creds.ClientSecret == "" {
		log.Fatal().Msg("REDDIT_CLIENT_ID and REDDIT_CLIENT_SECRET are required")
	}
	if creds.UserAgent == "" {
		creds.UserAgent = "modsentry/1.0"
	}

	client := reddit.NewClient(reddit.Options{Credentials: creds})
	transport := reddit.NewInstrumentedTransport(client, metrics.PromSink{})
	api := reddit.NewAPI(transport)
	log.Info().Str("base_url", client.BaseURL()).Msg("Reddit client initialized")

	// Optional watch file seeds communities to poll before the bot's
	// moderator listing includes them
	var watched []string
	if path := os.Getenv("MODSENTRY_SUBREDDITS_FILE"); path != "" {
		watched, err = loadWatchedSubreddits(path)
		if err != nil {
			log.Fatal().Err(err).Str("file", path).Msg("Failed to load watched subreddits")
		}
		log.Info().
			Int("count", len(watched)).
			Str("file", path).
			Strs("subreddits", watched).
			Msg("Loaded watched subreddits from file")
	}

	// Start the mod log ingest poller
	pollInterval := 5 * time.Minute
	if v := os.Getenv("POLL_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			log.Fatal().Err(err).Str("value", v).Msg("Invalid POLL_INTERVAL")
		}
		pollInterval = d
	}

	poller := ingest.NewPoller(api, logStore, ingest.Config{
		Interval:        pollInterval,
		ExtraSubreddits: watched,
	})
	poller.Start(ctx)
	defer poller.Stop()

	// Periodic gauge collection
	metrics.StartCollector(ctx, metrics.StatsSource{
		EntryCountBySubreddit: entryCounts,
		RateLimitRemaining:    client.RateLimitRemaining,
	}, time.Minute)

	// Determine the defaults posture: development shows every report field
	dev := os.Getenv("MODSENTRY_DEV") == "true"

	generator := report.NewGenerator(logStore)
	resolver := subconfig.NewCachedResolver(
		subconfig.NewResolver(configStore, subconfig.Defaults(dev)), 0)
	stopCacheCleanup := resolver.StartCleanupRoutine(10 * time.Minute)
	defer stopCacheCleanup()

	h := handlers.NewHandler(generator, resolver, logStore)

	// Setup router with middleware
	handler := routing.SetupRouter(routing.Config{
		Handlers: h,
		Logger:   log.Logger,
	})

	server := &http.Server{
		Addr:              "0.0.0.0:" + port,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("Server shutdown failed")
		}
	}()

	log.Info().
		Str("address", server.Addr).
		Str("url", "http://localhost:"+port).
		Bool("dev", dev).
		Dur("poll_interval", pollInterval).
		Msg("Starting HTTP server")

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal().Err(err).Msg("Server failed to start")
	}

	log.Info().Msg("Server stopped")
}

// openStore opens the backend selected by MODSENTRY_DB (bolt or sqlite,
// default bolt) and returns the log store, config store, a gauge count
// source and a close function.
func openStore() (modlog.Store, subconfig.Store, func() map[string]int, func()) {
	backend := os.Getenv("MODSENTRY_DB")
	if backend == "" {
		backend = "bolt"
	}

	dbPath := os.Getenv("MODSENTRY_DB_PATH")
	if dbPath == "" {
		dataDir := os.Getenv("XDG_DATA_HOME")
		if dataDir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				log.Fatal().Err(err).Msg("Failed to get home directory")
			}
			dataDir = filepath.Join(home, ".local", "share")
		}
		dbPath = filepath.Join(dataDir, "modsentry", "modsentry.db")
	}

	switch backend {
	case "bolt":
		store, err := boltstore.Open(boltstore.Options{Path: dbPath})
		if err != nil {
			log.Fatal().Err(err).Str("path", dbPath).Msg("Failed to open database")
		}
		log.Info().Str("backend", "bolt").Str("path", dbPath).Msg("Database opened")

		logs := store.ModLogStore()
		counts := func() map[string]int {
			m, err := logs.CountBySubreddit()
			if err != nil {
				log.Warn().Err(err).Msg("Failed to count stored entries")
				return nil
			}
			return m
		}
		return logs, store.ConfigStore(), counts, func() {
			if err := store.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close database")
			}
		}

	case "sqlite":
		db, err := sqlitestore.Open(dbPath)
		if err != nil {
			log.Fatal().Err(err).Str("path", dbPath).Msg("Failed to open database")
		}
		log.Info().Str("backend", "sqlite").Str("path", dbPath).Msg("Database opened")

		logs := sqlitestore.NewModLogStore(db)
		counts := func() map[string]int {
			m, err := logs.CountBySubreddit()
			if err != nil {
				log.Warn().Err(err).Msg("Failed to count stored entries")
				return nil
			}
			return m
		}
		return logs, sqlitestore.NewConfigStore(db), counts, func() {
			if err := db.Close(); err != nil {
				log.Warn().Err(err).Msg("Failed to close database")
			}
		}

	default:
		log.Fatal().Str("backend", backend).Msg("Unknown MODSENTRY_DB backend, expected bolt or sqlite")
		return nil, nil, nil, nil
	}
}

// loadWatchedSubreddits reads one subreddit name per line from path,
// skipping blank lines and '#' comments.
func loadWatchedSubreddits(path string) ([]string, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var names []string
	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		names = append(names, strings.TrimPrefix(line, "r/"))
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return names, nil
}
