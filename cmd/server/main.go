// Package main runs the address risk service:
// - Classification API: sanctions → chain introspection → token
//   security oracle → model analysis, behind a TTL verdict cache
// - Verdict stream: WebSocket push of finalized verdicts
// - Audit trail: scan history and addressbook in PostgreSQL, scan
//   events in ClickHouse
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"chainguard/internal/cache"
	"chainguard/internal/chain"
	"chainguard/internal/classifier"
	"chainguard/internal/domain"
	"chainguard/internal/llm"
	"chainguard/internal/oracle"
	"chainguard/internal/sanctions"
	"chainguard/internal/storage"
	chstore "chainguard/internal/storage/clickhouse"
	"chainguard/internal/storage/memory"
	"chainguard/internal/storage/migrations"
	pgstore "chainguard/internal/storage/postgres"
	"chainguard/internal/stream"
)

const (
	eventFlushInterval = 5 * time.Second
	eventFlushBatch    = 100
	retentionInterval  = time.Hour
)

// Server holds all components of the risk service.
type Server struct {
	verdicts *cache.Service
	registry *sanctions.Registry
	hub      *stream.Hub
	stores   *allStores

	tier      domain.Tier
	chainID   int
	retention string

	events  chan *domain.ScanEvent
	started time.Time
	logger  *log.Logger
}

// allStores holds the storage implementations behind the API.
type allStores struct {
	history     storage.ScanHistoryStore
	addressbook storage.AddressbookStore
	events      storage.ScanEventStore
}

func main() {
	loadEnvFile()

	// Parse flags (env vars as defaults)
	listenAddr := flag.String("listen-addr", envOr("LISTEN_ADDR", ":8080"), "HTTP listen address")
	rpcEndpoint := flag.String("rpc-endpoint", os.Getenv("ETH_RPC_ENDPOINT"), "Ethereum JSON-RPC HTTP endpoint")
	explorerURL := flag.String("explorer-url", envOr("EXPLORER_API_URL", "https://api.etherscan.io/api"), "Block explorer API URL")
	explorerKey := flag.String("explorer-key", os.Getenv("EXPLORER_API_KEY"), "Block explorer API key (empty disables source lookup)")
	oracleURL := flag.String("oracle-url", envOr("ORACLE_BASE_URL", oracle.DefaultBaseURL), "Token security oracle base URL")
	llmBaseURL := flag.String("llm-base-url", os.Getenv("LLM_BASE_URL"), "Model API base URL (empty disables model analysis)")
	llmAPIKey := flag.String("llm-api-key", os.Getenv("LLM_API_KEY"), "Model API key")
	llmModel := flag.String("llm-model", envOr("LLM_MODEL", "gpt-4o-mini"), "Model name")
	chainName := flag.String("chain", envOr("CHAIN", "ethereum"), "Chain to classify on (ethereum, bsc, polygon, ...)")
	tier := flag.String("tier", envOr("TIER", "free"), "Subscription tier (free, paid)")
	demoMode := flag.Bool("demo-mode", false, "Demo mode: full verdicts without gating")
	noSanctions := flag.Bool("no-sanctions", false, "Disable the sanctions registry lookup")
	cacheTTL := flag.Duration("cache-ttl", cache.DefaultTTL, "Verdict cache TTL")
	cacheSize := flag.Int("cache-size", cache.DefaultMaxSize, "Verdict cache max entries")
	retention := flag.String("retention", envOr("HISTORY_RETENTION", domain.RetentionNever), "History retention (never, 1week, 1month, 3months, 1year)")
	postgresDSN := flag.String("postgres-dsn", os.Getenv("POSTGRES_DSN"), "PostgreSQL connection string")
	clickhouseDSN := flag.String("clickhouse-dsn", os.Getenv("CLICKHOUSE_DSN"), "ClickHouse connection string")
	useMemory := flag.Bool("use-memory", false, "Use in-memory storage instead of PostgreSQL/ClickHouse")
	verbose := flag.Bool("verbose", false, "Verbose pipeline logging")

	flag.Parse()

	logger := log.New(os.Stdout, "[server] ", log.LstdFlags|log.Lshortfile)

	if *rpcEndpoint == "" {
		logger.Fatal("--rpc-endpoint is required")
	}
	if !*useMemory && (*postgresDSN == "" || *clickhouseDSN == "") {
		logger.Fatal("--postgres-dsn and --clickhouse-dsn are required (use --use-memory for in-memory storage)")
	}
	if t := domain.Tier(*tier); !t.IsValid() {
		logger.Fatalf("invalid --tier %q", *tier)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Sanctions registry ships with the binary.
	var registry *sanctions.Registry
	if !*noSanctions {
		var err error
		registry, err = sanctions.Load()
		if err != nil {
			logger.Fatalf("load sanctions registry: %v", err)
		}
		logger.Printf("Sanctions registry loaded: %d entries", registry.Size())
	}

	stores, cleanup, err := createStores(ctx, *postgresDSN, *clickhouseDSN, *useMemory)
	if err != nil {
		logger.Fatalf("Failed to create stores: %v", err)
	}
	defer cleanup()

	chainID := oracle.ChainID(*chainName)

	var explorer chain.SourceProvider
	if *explorerKey != "" {
		explorer = chain.NewExplorerClient(*explorerURL, *explorerKey)
	}

	var model llm.Completer
	if *llmBaseURL != "" {
		model = llm.NewHTTPClient(*llmBaseURL, *llmAPIKey, *llmModel)
	}

	pipeline := classifier.New(classifier.Options{
		Registry:         registry,
		Node:             chain.NewHTTPClient(*rpcEndpoint),
		Explorer:         explorer,
		Oracle:           oracle.NewHTTPClient(*oracleURL),
		Model:            model,
		ChainID:          chainID,
		Tier:             domain.Tier(*tier),
		DemoMode:         *demoMode,
		DisableSanctions: *noSanctions,
		Verbose:          *verbose,
	})

	server := &Server{
		verdicts: cache.New(cache.Options{
			Classifier: pipeline,
			TTL:        *cacheTTL,
			MaxSize:    *cacheSize,
		}),
		registry:  registry,
		hub:       stream.NewHub(),
		stores:    stores,
		tier:      domain.Tier(*tier),
		chainID:   chainID,
		retention: *retention,
		events:    make(chan *domain.ScanEvent, 1024),
		started:   time.Now(),
		logger:    logger,
	}

	go server.runEventFlusher(ctx)
	go server.runRetentionLoop(ctx)

	httpSrv := &http.Server{
		Addr:    *listenAddr,
		Handler: server.routes(),
	}

	done := make(chan struct{})
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		sig := <-sigCh
		logger.Printf("Received signal %v, shutting down...", sig)
		cancel()

		shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer shutdownCancel()
		if err := httpSrv.Shutdown(shutdownCtx); err != nil {
			logger.Printf("HTTP shutdown: %v", err)
		}
		server.hub.Close()
		close(done)
	}()

	logger.Printf("Listening on %s (chain=%s tier=%s)", *listenAddr, chain.Name(chainID), *tier)
	if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		logger.Fatalf("HTTP server error: %v", err)
	}

	<-done
	logger.Println("Shutdown complete")
}

// createStores creates the storage backends.
func createStores(ctx context.Context, postgresDSN, clickhouseDSN string, useMemory bool) (*allStores, func(), error) {
	if useMemory {
		stores := &allStores{
			history:     memory.NewScanHistoryStore(),
			addressbook: memory.NewAddressbookStore(),
			events:      memory.NewScanEventStore(),
		}
		return stores, func() {}, nil
	}

	pool, err := pgstore.NewPool(ctx, postgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	chConn, err := migrations.RunClickhouseMigrations(ctx, clickhouseDSN)
	if err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
	}

	stores := &allStores{
		history:     pgstore.NewScanHistoryStore(pool),
		addressbook: pgstore.NewAddressbookStore(pool),
		events:      chstore.NewScanEventStore(chConn),
	}

	cleanup := func() {
		chConn.Close()
		pool.Close()
	}
	return stores, cleanup, nil
}

// runEventFlusher batches scan events and writes them in bulk.
func (s *Server) runEventFlusher(ctx context.Context) {
	ticker := time.NewTicker(eventFlushInterval)
	defer ticker.Stop()

	batch := make([]*domain.ScanEvent, 0, eventFlushBatch)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		flushCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		if err := s.stores.events.InsertBulk(flushCtx, batch); err != nil {
			s.logger.Printf("flush %d scan events: %v", len(batch), err)
		}
		cancel()
		batch = batch[:0]
	}

	for {
		select {
		case <-ctx.Done():
			flush()
			return
		case ev := <-s.events:
			batch = append(batch, ev)
			if len(batch) >= eventFlushBatch {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// runRetentionLoop prunes scan history per the retention policy.
func (s *Server) runRetentionLoop(ctx context.Context) {
	if s.retention == domain.RetentionNever {
		return
	}

	ticker := time.NewTicker(retentionInterval)
	defer ticker.Stop()

	for {
		cutoff := domain.RetentionCutoffMs(s.retention, time.Now().UnixMilli())
		if cutoff > 0 {
			removed, err := s.stores.history.DeleteOlderThan(ctx, cutoff)
			if err != nil {
				s.logger.Printf("history cleanup: %v", err)
			} else if removed > 0 {
				s.logger.Printf("history cleanup: removed %d entries older than %s", removed, s.retention)
			}
		}

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

// recordEvent queues a scan event, dropping it if the buffer is full.
func (s *Server) recordEvent(ev *domain.ScanEvent) {
	select {
	case s.events <- ev:
	default:
		s.logger.Println("event buffer full, dropping scan event")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// loadEnvFile loads environment variables from .env file if it exists.
func loadEnvFile() {
	data, err := os.ReadFile(".env")
	if err != nil {
		return
	}

	for _, line := range strings.Split(string(data), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}

		parts := strings.SplitN(line, "=", 2)
		if len(parts) != 2 {
			continue
		}

		key := strings.TrimSpace(parts[0])
		value := strings.TrimSpace(parts[1])

		if os.Getenv(key) == "" {
			os.Setenv(key, value)
		}
	}
}
