package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"connectrpc.com/connect"
	"github.com/gorilla/mux"
	"github.com/spf13/cobra"
	"github.com/ulule/limiter/v3"
	"github.com/ulule/limiter/v3/drivers/store/memory"
	"golang.org/x/net/http2"
	"golang.org/x/net/http2/h2c"
	"golang.org/x/sync/errgroup"

	"github.com/mmynk/tripledger/internal/auth"
	"github.com/mmynk/tripledger/internal/config"
	"github.com/mmynk/tripledger/internal/events"
	"github.com/mmynk/tripledger/internal/ledger"
	"github.com/mmynk/tripledger/internal/metrics"
	"github.com/mmynk/tripledger/internal/middleware"
	"github.com/mmynk/tripledger/internal/rest"
	"github.com/mmynk/tripledger/internal/service"
	"github.com/mmynk/tripledger/internal/storage"
	memstore "github.com/mmynk/tripledger/internal/storage/memory"
	"github.com/mmynk/tripledger/internal/storage/sqlite"
	"github.com/mmynk/tripledger/pkg/api/ledgerv1/ledgerv1connect"
	"github.com/mmynk/tripledger/pkg/logging"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP server (default)",
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logging.SetupWithOptions(cfg.LogLevel, cfg.LogFormat)

	if cfg.UsesDefaultSecret() {
		slog.Warn("JWT_SECRET is not set, using the built-in development secret")
	}

	store, err := openStore(cfg)
	if err != nil {
		slog.Error("Failed to initialize storage", "error", err)
		return err
	}
	defer store.Close()

	publisher, err := openPublisher(cfg)
	if err != nil {
		slog.Error("Failed to connect to message broker", "error", err)
		return err
	}
	defer publisher.Close()

	recorder, err := metrics.NewPrometheusRecorder("tripledger")
	if err != nil {
		return fmt.Errorf("create metrics recorder: %w", err)
	}

	l, err := ledger.New(store,
		ledger.WithPublisher(publisher),
		ledger.WithMetrics(recorder),
		ledger.WithLogger(slog.Default()),
		ledger.WithBalanceCacheSize(cfg.BalanceCacheSize),
	)
	if err != nil {
		return fmt.Errorf("create ledger: %w", err)
	}

	handler, err := newHandler(cfg, service.NewLedgerService(l, cfg.AuthRequired), recorder)
	if err != nil {
		return err
	}

	addr := fmt.Sprintf(":%d", cfg.Port)
	server := &http.Server{
		Addr: addr,
		// h2c lets Connect clients use HTTP/2 without TLS.
		Handler:           h2c.NewHandler(handler, &http2.Server{}),
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		slog.Info("Server starting", "address", addr, "url", fmt.Sprintf("http://localhost%s", addr))
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		slog.Info("Shutting down", "timeout", cfg.ShutdownTimeout)
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		slog.Error("Server failed", "error", err)
		return err
	}
	slog.Info("Server stopped")
	return nil
}

func openStore(cfg *config.Config) (storage.Store, error) {
	if cfg.StorageBackend == config.BackendMemory {
		slog.Warn("Using in-memory storage, data is lost on restart")
		return memstore.New(), nil
	}
	store, err := sqlite.New(cfg.DBPath)
	if err != nil {
		return nil, err
	}
	slog.Info("Storage initialized", "database", cfg.DBPath)
	return store, nil
}

func openPublisher(cfg *config.Config) (events.Publisher, error) {
	if cfg.AMQPURL == "" {
		return events.Nop{}, nil
	}
	p, err := events.NewAMQPPublisher(cfg.AMQPURL, cfg.AMQPExchange)
	if err != nil {
		return nil, err
	}
	slog.Info("Publishing events", "exchange", cfg.AMQPExchange)
	return p, nil
}

// newHandler assembles the HTTP surface: Connect service, REST gateway,
// health and metrics endpoints, wrapped in logging, CORS and rate limiting.
func newHandler(cfg *config.Config, svc *service.LedgerService, recorder *metrics.PrometheusRecorder) (http.Handler, error) {
	jwtManager := auth.NewJWTManager(cfg.JWTSecret, cfg.JWTTTL)

	authInterceptor := middleware.OptionalAuth(jwtManager)
	if cfg.AuthRequired {
		authInterceptor = middleware.RequireAuth(jwtManager)
	}

	router := mux.NewRouter()
	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
	}).Methods(http.MethodGet)
	router.Handle("/metrics", recorder.Handler()).Methods(http.MethodGet)

	connectPath, connectHandler := ledgerv1connect.NewLedgerServiceHandler(svc,
		connect.WithInterceptors(authInterceptor, middleware.LoggingInterceptor()),
	)
	router.PathPrefix(connectPath).Handler(connectHandler)

	api := router.NewRoute().Subrouter()
	api.Use(middleware.HTTPAuth(jwtManager, cfg.AuthRequired))
	rest.Register(api, svc)

	var handler http.Handler = router
	if cfg.RateLimit != "" {
		rate, err := cfg.Rate()
		if err != nil {
			return nil, err
		}
		handler = middleware.RateLimit(limiter.New(memory.NewStore(), rate))(handler)
	}
	return middleware.Logging(recorder)(middleware.CORS(handler)), nil
}
