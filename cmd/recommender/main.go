// cmd/recommender/main.go
package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"college-recommender/internal/api"
	"college-recommender/internal/common/config"
	"college-recommender/internal/common/database"
	"college-recommender/internal/common/logger"
	"college-recommender/internal/common/observability"
	"college-recommender/internal/index"
	"college-recommender/internal/models"
	applyranking "college-recommender/internal/pipeline/apply-ranking"
	retrievecandidates "college-recommender/internal/pipeline/retrieve-candidates"
	scorecandidates "college-recommender/internal/pipeline/score-candidates"
	verifyclaims "college-recommender/internal/pipeline/verify-claims"
	"college-recommender/internal/recommender"
	"college-recommender/internal/sources"
	"college-recommender/internal/store"
	"college-recommender/pkg/catalog"
)

// retryWithBackoff attempts to execute a function with exponential backoff
func retryWithBackoff(operation func() error, maxRetries int, initialDelay time.Duration, log *zap.Logger, operationName string) error {
	var err error
	delay := initialDelay

	for i := 0; i < maxRetries; i++ {
		err = operation()
		if err == nil {
			return nil
		}

		if i < maxRetries-1 {
			log.Warn(fmt.Sprintf("%s failed, retrying...", operationName),
				zap.Error(err),
				zap.Int("attempt", i+1),
				zap.Int("maxRetries", maxRetries),
				zap.Duration("nextRetryIn", delay),
			)
			time.Sleep(delay)
			delay *= 2 // Exponential backoff
		}
	}

	return fmt.Errorf("%s failed after %d attempts: %w", operationName, maxRetries, err)
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "config load failed: %v\n", err)
		os.Exit(1)
	}

	zapLog := logger.New(cfg.Logging.Level, cfg.Logging.Format)
	defer zapLog.Sync()
	log := logger.NewZapAdapter(zapLog)

	zapLog.Info("Starting recommendation service...",
		zap.String("name", cfg.App.Name),
		zap.String("environment", cfg.App.Environment),
	)

	obs := observability.New("college-recommender")
	defer obs.Shutdown()

	tracer, err := observability.NewTracer("college-recommender", os.Getenv("JAEGER_ENDPOINT"))
	if err != nil {
		zapLog.Fatal("tracer initialization failed", zap.Error(err))
	}
	defer tracer.Shutdown()

	ctx := context.Background()

	// --- Init PostgreSQL with retry ---
	var pg *database.PostgresClient
	err = retryWithBackoff(func() error {
		var err error
		pg, err = database.NewPostgres(cfg.Database.Postgres)
		if err != nil {
			return err
		}
		return pg.Ping(ctx)
	}, 15, 2*time.Second, zapLog, "PostgreSQL connection")

	if err != nil {
		zapLog.Fatal("postgres failed after retries", zap.Error(err))
	}
	defer pg.Close()
	zapLog.Info("PostgreSQL connected successfully")

	// --- Init Elasticsearch with retry ---
	var esClient *database.ElasticsearchClient
	err = retryWithBackoff(func() error {
		var err error
		esClient, err = database.NewElasticsearch(cfg.Database.Elasticsearch)
		if err != nil {
			return err
		}
		return esClient.Ping()
	}, 15, 2*time.Second, zapLog, "Elasticsearch connection")

	if err != nil {
		zapLog.Fatal("elasticsearch failed after retries", zap.Error(err))
	}
	zapLog.Info("Elasticsearch connected successfully")

	// --- Init Redis with retry ---
	var redis *database.RedisClient
	err = retryWithBackoff(func() error {
		var err error
		redis, err = database.NewRedis(cfg.Database.Redis)
		if err != nil {
			return err
		}
		return redis.Ping(ctx)
	}, 10, 2*time.Second, zapLog, "Redis connection")

	if err != nil {
		zapLog.Fatal("redis failed after retries", zap.Error(err))
	}
	defer redis.Close()
	zapLog.Info("Redis connected successfully")

	// --- Load the authoritative source catalog ---
	cat, err := catalog.Load(cfg.Sources.CatalogPath)
	if err != nil {
		zapLog.Fatal("source catalog load failed",
			zap.String("path", cfg.Sources.CatalogPath),
			zap.Error(err),
		)
	}

	registry, err := buildRegistry(cat, cfg, redis, log)
	if err != nil {
		zapLog.Fatal("source registry build failed", zap.Error(err))
	}
	zapLog.Info("Source registry built", zap.Int("sources", registry.Size()))

	// --- Wire the pipeline stages ---
	candidateIndex := index.NewElasticsearchIndex(esClient.Client, cfg.Retrieval.IndexName, log)
	collegeStore := store.NewPostgresStore(pg.DB, log)

	retriever := retrievecandidates.NewHandler(
		&retrievecandidates.Config{
			DefaultK: cfg.Retrieval.DefaultK,
			MaxK:     cfg.Retrieval.MaxK,
			Timeout:  config.GetDuration(cfg.Retrieval.Timeout),
		},
		candidateIndex, collegeStore, log,
	)

	verifier := verifyclaims.NewHandler(
		&verifyclaims.Config{
			SourceTimeout:       config.GetDuration(cfg.Verification.SourceTimeout),
			PoolSize:            cfg.Verification.PoolSize,
			PercentageTolerance: cfg.Verification.PercentageTolerance,
			SalaryTolerance:     cfg.Verification.SalaryTolerance,
			SeatsTolerance:      float64(cfg.Verification.SeatsTolerance),
			MaxSeatClaims:       cfg.Verification.MaxSeatClaims,
			FieldImportance:     fieldImportance(cfg.Verification.FieldImportance),
		},
		registry, log,
	)

	scorer := scorecandidates.NewHandler(
		&scorecandidates.Config{
			NeutralDefault:         cfg.Scoring.NeutralDefault,
			SalaryCeiling:          cfg.Scoring.SalaryCeiling,
			UnverifiedRatingWeight: cfg.Scoring.UnverifiedRatingWeight,
			ProximitySameState:     cfg.Scoring.ProximitySameState,
			ProximityFloor:         cfg.Scoring.ProximityFloor,
		},
		log,
	)

	ranker := applyranking.NewHandler(
		&applyranking.Config{DefaultK: cfg.Retrieval.DefaultK},
		log,
	)

	service := recommender.NewService(
		recommender.Config{
			SessionTTL:  config.GetDuration(cfg.Server.SessionTTL),
			MaxSessions: cfg.Server.MaxSessions,
		},
		retriever, verifier, scorer, ranker,
		tracer, obs, log,
	)

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         cfg.Server.Address,
		Handler:      api.NewServer(service, log).Routes(),
		ReadTimeout:  config.GetDuration(cfg.Server.ReadTimeout),
		WriteTimeout: config.GetDuration(cfg.Server.WriteTimeout),
	}

	go func() {
		zapLog.Info("HTTP server listening", zap.String("address", cfg.Server.Address))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zapLog.Fatal("HTTP server failed", zap.Error(err))
		}
	}()

	// --- Graceful Shutdown ---
	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM)
	<-sigCh

	zapLog.Info("Shutdown signal received, draining requests...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		zapLog.Error("HTTP server shutdown failed", zap.Error(err))
	}

	zapLog.Info("Recommendation service stopped gracefully")
}

// buildRegistry turns catalog entries into source clients, each wrapped with
// the Redis record cache.
func buildRegistry(cat *catalog.SourceCatalog, cfg *config.Config, redis *database.RedisClient, log logger.Logger) (*sources.Registry, error) {
	cacheTTL := config.GetDuration(cfg.Verification.CacheTTL)
	builder := sources.NewRegistry()

	for _, entry := range cat.Sources {
		fieldTypes := make([]models.FieldType, len(entry.FieldTypes))
		for i, ft := range entry.FieldTypes {
			fieldTypes[i] = models.FieldType(ft)
		}

		var client sources.Client
		switch entry.Kind {
		case catalog.KindHTTP:
			timeout := config.GetDuration(entry.TimeoutMS)
			if timeout == 0 {
				timeout = config.GetDuration(cfg.Verification.SourceTimeout)
			}
			client = sources.NewHTTPClient(sources.HTTPClientOptions{
				Name:        entry.Name,
				BaseURL:     entry.BaseURL,
				Reliability: entry.Reliability,
				FieldTypes:  fieldTypes,
				Timeout:     timeout,
			}, log)
		case catalog.KindStatic:
			dataPath := filepath.Join(cfg.Sources.DataDir, entry.DataFile)
			static, err := sources.NewStaticClient(entry.Name, entry.Reliability, fieldTypes, dataPath)
			if err != nil {
				return nil, fmt.Errorf("static source %q: %w", entry.ID, err)
			}
			client = static
		default:
			return nil, fmt.Errorf("source %q has unsupported kind %q", entry.ID, entry.Kind)
		}

		builder.Add(sources.NewCachedClient(client, redis.Client, cacheTTL, log), entry.Priority)
	}

	return builder.Build(), nil
}

func fieldImportance(raw map[string]float64) map[models.FieldType]float64 {
	out := make(map[models.FieldType]float64, len(raw))
	for k, v := range raw {
		out[models.FieldType(k)] = v
	}
	return out
}
