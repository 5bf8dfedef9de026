// ABOUTME: Entry point for the VulnTrack vulnerability ingestion service.
// ABOUTME: Handles initialization, configuration parsing, and starts the HTTP server.

package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/openhomesec/VulnTrack/internal/engine"
	"github.com/openhomesec/VulnTrack/internal/enrich"
	"github.com/openhomesec/VulnTrack/internal/metrics"
	"github.com/openhomesec/VulnTrack/internal/providers"
	"github.com/openhomesec/VulnTrack/internal/server"
	"github.com/openhomesec/VulnTrack/internal/store"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	config := parseConfig()

	// Set up structured logging
	logger := logrus.New()
	logger.SetFormatter(&logrus.JSONFormatter{})
	logger.SetLevel(logrus.InfoLevel)

	// Set debug level if requested
	if os.Getenv("LOG_LEVEL") == "debug" {
		logger.SetLevel(logrus.DebugLevel)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Handle shutdown gracefully
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		<-sigChan
		logger.Info("Received shutdown signal")
		cancel()
	}()

	app, err := NewApp(config, logger)
	if err != nil {
		logger.WithError(err).Fatal("Failed to create application")
	}

	if err := app.Start(ctx); err != nil {
		logger.WithError(err).Fatal("Failed to start application")
	}
}

func parseConfig() *engine.Config {
	// Optional .env file for local development
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("Failed to load .env file: %v", err)
	}

	config := &engine.Config{}

	flag.IntVar(&config.Port, "port", 8080, "Port to serve the HTTP API on")
	flag.StringVar(&config.DatabaseDSN, "db-dsn", "", "PostgreSQL DSN for the vulnerability database")
	flag.StringVar(&config.NVDEndpoint, "nvd-endpoint", "", "Override for the NVD API endpoint")
	flag.StringVar(&config.SourceFile, "source-file", "", "Path to an NVD-format JSON file to use instead of the live API")
	flag.DurationVar(&config.CacheTTL, "cache-ttl", 15*time.Minute, "TTL for cached source responses")
	flag.BoolVar(&config.MockMode, "mock", false, "Enable mock providers for local testing (no external API calls)")
	flag.Parse()

	// Override with environment variables if set
	if envPort := os.Getenv("PORT"); envPort != "" {
		if n, err := fmt.Sscanf(envPort, "%d", &config.Port); err != nil || n != 1 {
			log.Printf("Invalid PORT environment variable: %s", envPort)
		}
	}
	if envDSN := os.Getenv("DB_DSN"); envDSN != "" {
		config.DatabaseDSN = envDSN
	}
	if envEndpoint := os.Getenv("NVD_ENDPOINT"); envEndpoint != "" {
		config.NVDEndpoint = envEndpoint
	}
	if envSourceFile := os.Getenv("SOURCE_FILE"); envSourceFile != "" {
		config.SourceFile = envSourceFile
	}
	if envTTL := os.Getenv("CACHE_TTL"); envTTL != "" {
		if ttl, err := time.ParseDuration(envTTL); err == nil {
			config.CacheTTL = ttl
		}
	}
	if envMock := os.Getenv("MOCK_MODE"); envMock == "true" || envMock == "1" {
		config.MockMode = true
	}
	config.OpenAIAPIKey = os.Getenv("OPENAI_API_KEY")

	// Validate configuration
	if config.DatabaseDSN == "" {
		log.Fatal("Database DSN is required (set -db-dsn or DB_DSN)")
	}

	return config
}

type App struct {
	config *engine.Config
	logger *logrus.Logger
	engine *engine.Engine
	store  *store.Store
	mtx    *metrics.Metrics
}

func NewApp(config *engine.Config, logger *logrus.Logger) (*App, error) {
	logger.WithFields(logrus.Fields{
		"port":      config.Port,
		"cache_ttl": config.CacheTTL,
		"mock_mode": config.MockMode,
	}).Info("Initializing VulnTrack")

	st, err := store.Open(config.DatabaseDSN, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if err := st.Migrate(); err != nil {
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	// Create providers using factory
	providerConfig := &providers.ProviderConfig{
		MockMode:     config.MockMode,
		SourceFile:   config.SourceFile,
		NVDEndpoint:  config.NVDEndpoint,
		OpenAIAPIKey: config.OpenAIAPIKey,
	}

	vulnSource, err := providers.CreateVulnerabilitySource(providerConfig, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to create vulnerability source: %w", err)
	}

	generator := providers.CreateGenerator(providerConfig, logger)

	mtx := metrics.New()
	enricher := enrich.New(generator, logger, mtx.GenerationFailures)
	vulnEngine := engine.NewEngine(vulnSource, st, enricher, mtx, config, logger)

	return &App{
		config: config,
		logger: logger,
		engine: vulnEngine,
		store:  st,
		mtx:    mtx,
	}, nil
}

func (a *App) Start(ctx context.Context) error {
	devices := server.NewDevicesHandler(a.store, a.logger)
	categories := server.NewCategoriesHandler(a.store, a.logger)
	vulnerabilities := server.NewVulnerabilitiesHandler(a.engine, a.logger)

	mux := http.NewServeMux()
	mux.Handle("GET /vulnerabilities", a.securityMiddleware(vulnerabilities))
	mux.Handle("POST /devices", a.securityMiddleware(http.HandlerFunc(devices.Create)))
	mux.Handle("GET /devices", a.securityMiddleware(http.HandlerFunc(devices.List)))
	mux.Handle("DELETE /devices/{id}", a.securityMiddleware(http.HandlerFunc(devices.Delete)))
	mux.Handle("POST /categories", a.securityMiddleware(http.HandlerFunc(categories.Create)))
	mux.Handle("GET /categories", a.securityMiddleware(http.HandlerFunc(categories.List)))
	mux.Handle("DELETE /categories/{id}", a.securityMiddleware(http.HandlerFunc(categories.Delete)))
	mux.Handle("GET /metrics", a.securityMiddleware(a.mtx.Handler()))
	mux.Handle("GET /health", a.securityMiddleware(http.HandlerFunc(a.healthHandler)))

	httpServer := &http.Server{
		Addr:              fmt.Sprintf(":%d", a.config.Port),
		Handler:           mux,
		ReadTimeout:       10 * time.Second,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      60 * time.Second, // Narrative generation can make ingestion slow
		IdleTimeout:       60 * time.Second,
		MaxHeaderBytes:    1 << 20, // 1 MB
	}

	go func() {
		<-ctx.Done()
		a.logger.Info("Shutting down HTTP server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		httpServer.Shutdown(shutdownCtx)
	}()

	a.logger.WithField("port", a.config.Port).Info("Starting HTTP server")

	if err := httpServer.ListenAndServe(); err != http.ErrServerClosed {
		return err
	}

	return nil
}

func (a *App) securityMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// Security headers
		w.Header().Set("X-Content-Type-Options", "nosniff")
		w.Header().Set("X-Frame-Options", "DENY")
		w.Header().Set("X-XSS-Protection", "1; mode=block")
		w.Header().Set("Referrer-Policy", "strict-origin-when-cross-origin")
		w.Header().Set("Content-Security-Policy", "default-src 'none'; script-src 'none'; object-src 'none'; frame-ancestors 'none'")

		// Log the request
		a.logger.WithFields(logrus.Fields{
			"method":     r.Method,
			"path":       r.URL.Path,
			"remote_ip":  r.RemoteAddr,
			"user_agent": r.UserAgent(),
		}).Debug("HTTP request received")

		next.ServeHTTP(w, r)
	})
}

func (a *App) healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status":"ok"}`)
}
