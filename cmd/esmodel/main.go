package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/jmoiron/sqlx"
	"github.com/redis/rueidis"
	"go.uber.org/zap"

	"github.com/kailas-cloud/esmodel"
	"github.com/kailas-cloud/esmodel/internal/adapter/mongoadapter"
	"github.com/kailas-cloud/esmodel/internal/adapter/redisadapter"
	"github.com/kailas-cloud/esmodel/internal/adapter/sqladapter"
	"github.com/kailas-cloud/esmodel/internal/config"
	logpkg "github.com/kailas-cloud/esmodel/internal/logger"
	"github.com/kailas-cloud/esmodel/internal/metrics"
	chiTransport "github.com/kailas-cloud/esmodel/internal/transport/chi"
	"github.com/kailas-cloud/esmodel/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting esmodel API server",
		zap.String("build", version.String()),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("search_driver", cfg.Search.Driver),
		zap.Strings("search_addrs", cfg.Search.Addrs),
		zap.Int("models", len(cfg.Models)),
	)

	ctx := context.Background()

	// Storage backends the models live in
	src, err := connectSources(ctx, cfg)
	if err != nil {
		logger.Fatal("Failed to connect storage", zap.Error(err))
	}
	defer src.close(ctx)

	metrics.RegisterSearchMetrics()

	opts := []esmodel.Option{
		searchDriver(cfg.Search),
		esmodel.WithMaxRetries(cfg.Search.MaxRetries),
		esmodel.WithReadinessTimeout(time.Duration(cfg.Search.ReadinessTimeout) * time.Second),
		esmodel.WithPaginator(esmodel.Paginator(cfg.Paginate.Backend)),
		esmodel.WithRefresh(esmodel.Refresh(cfg.Search.Refresh)),
		esmodel.WithLogger(logger.Named("esmodel")),
	}
	if cfg.Search.Username != "" {
		opts = append(opts, esmodel.WithBasicAuth(cfg.Search.Username, cfg.Search.Password))
	}
	if cfg.Search.APIKey != "" {
		opts = append(opts, esmodel.WithAPIKey(cfg.Search.APIKey))
	}
	opts = append(opts, src.healthChecks()...)

	client, err := esmodel.New(ctx, opts...)
	if err != nil {
		logger.Fatal("Search engine not ready", zap.Error(err))
	}
	defer client.Close()
	logger.Info("Connected to search engine")

	for _, mc := range cfg.Models {
		source, err := src.modelSource(ctx, cfg, mc)
		if err != nil {
			logger.Fatal("Failed to build model source", zap.String("model", mc.Name), zap.Error(err))
		}
		m, err := client.Register(mc.Name, source, modelOptions(mc)...)
		if err != nil {
			logger.Fatal("Failed to register model", zap.String("model", mc.Name), zap.Error(err))
		}
		logger.Info("Model registered",
			zap.String("model", m.Name()),
			zap.String("index", m.IndexName()),
			zap.String("adapter", m.Adapter()),
		)
	}

	server := chiTransport.NewServer(client, logger).
		WithMaxPerPage(cfg.Paginate.MaxPerPage).
		WithBatchSize(cfg.Import.BatchSize)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

func searchDriver(sc config.SearchConfig) esmodel.Option {
	if sc.Driver == config.DriverOpenSearch {
		return esmodel.WithOpenSearch(sc.Addrs...)
	}
	return esmodel.WithElasticsearch(sc.Addrs...)
}

func modelOptions(mc config.ModelConfig) []esmodel.ModelOption {
	var opts []esmodel.ModelOption
	if mc.Index != "" {
		opts = append(opts, esmodel.WithIndexName(mc.Index))
	}
	if mc.Type != "" {
		opts = append(opts, esmodel.WithDocumentType(mc.Type))
	}
	if mc.Settings != nil {
		opts = append(opts, esmodel.WithSettings(mc.Settings))
	}
	if mc.Mappings != nil {
		opts = append(opts, esmodel.WithMappings(mc.Mappings))
	}
	return opts
}

// sources holds the storage connections shared by the models.
type sources struct {
	postgres *sqlx.DB
	redis    rueidis.Client
	mongo    []*esmodel.MongoCollection
	useMongo bool
}

func connectSources(_ context.Context, cfg config.Config) (*sources, error) {
	s := &sources{useMongo: cfg.Uses(config.SourceMongo)}
	if cfg.Uses(config.SourcePostgres) {
		db, err := sqladapter.Connect(cfg.Sources.Postgres.DSN)
		if err != nil {
			return nil, err
		}
		s.postgres = db
	}
	if cfg.Uses(config.SourceRedis) {
		rc, err := redisadapter.Connect(redisadapter.Config{
			Addrs:    cfg.Sources.Redis.Addrs,
			Username: cfg.Sources.Redis.Username,
			Password: cfg.Sources.Redis.Password,
			DB:       cfg.Sources.Redis.DB,
		})
		if err != nil {
			return nil, fmt.Errorf("connect redis: %w", err)
		}
		s.redis = rc
	}
	return s, nil
}

func (s *sources) modelSource(ctx context.Context, cfg config.Config, mc config.ModelConfig) (any, error) {
	switch mc.Source {
	case config.SourcePostgres:
		return &esmodel.SQLTable{
			DB:         s.postgres,
			Name:       mc.Table,
			PrimaryKey: mc.PrimaryKey,
			Columns:    mc.Columns,
		}, nil
	case config.SourceMongo:
		coll, err := mongoadapter.Connect(ctx, cfg.Sources.Mongo.URI, cfg.Sources.Mongo.Database, mc.Collection)
		if err != nil {
			return nil, err
		}
		c := &esmodel.MongoCollection{Coll: coll}
		s.mongo = append(s.mongo, c)
		return c, nil
	case config.SourceRedis:
		return &esmodel.RedisKeyspace{Client: s.redis, Prefix: mc.Prefix}, nil
	default:
		return nil, fmt.Errorf("unknown source %q", mc.Source)
	}
}

// healthChecks reports every connected backend in /health.
func (s *sources) healthChecks() []esmodel.Option {
	var opts []esmodel.Option
	if s.postgres != nil {
		opts = append(opts, esmodel.WithHealthCheck("postgres", s.postgres.PingContext))
	}
	if s.redis != nil {
		rc := s.redis
		opts = append(opts, esmodel.WithHealthCheck("redis", func(ctx context.Context) error {
			return rc.Do(ctx, rc.B().Ping().Build()).Error()
		}))
	}
	if s.useMongo {
		// collections connect lazily as models register
		opts = append(opts, esmodel.WithHealthCheck("mongo", func(ctx context.Context) error {
			for _, c := range s.mongo {
				if err := c.Coll.Database().Client().Ping(ctx, nil); err != nil {
					return err
				}
			}
			return nil
		}))
	}
	return opts
}

func (s *sources) close(ctx context.Context) {
	if s.postgres != nil {
		_ = s.postgres.Close()
	}
	if s.redis != nil {
		s.redis.Close()
	}
	for _, c := range s.mongo {
		_ = c.Coll.Database().Client().Disconnect(ctx)
	}
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.CodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			}
			if m := chi.URLParam(r, "model"); m != "" {
				fields = append(fields, zap.String("model", m))
			}
			reqLogger.Info("http_request", fields...)
		})
	}
}
