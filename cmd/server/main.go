package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/stemsi/examprep-backend/internal/config"
	"github.com/stemsi/examprep-backend/internal/database"
	"github.com/stemsi/examprep-backend/internal/handler"
	"github.com/stemsi/examprep-backend/internal/logger"
	"github.com/stemsi/examprep-backend/internal/repository"
	"github.com/stemsi/examprep-backend/internal/router"
	"github.com/stemsi/examprep-backend/internal/service"
	"github.com/stemsi/examprep-backend/internal/validator"
	"github.com/stemsi/examprep-backend/internal/worker"
)

// stores bundles the storage collaborators chosen by STORE_DRIVER.
type stores struct {
	banks    repository.BankStore
	exams    repository.ExamStore
	activity repository.ActivityLogStore
}

func main() {
	// ─── Load Configuration ────────────────────────────────────────────
	cfg := config.Load()

	// ─── Initialize Logger ─────────────────────────────────────────────
	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("store", cfg.StoreDriver).
		Str("log_level", cfg.LogLevel).
		Msg("Starting ExamPrep Backend")

	// ─── Initialize Validator ──────────────────────────────────────────
	validator.Setup()

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// ─── Storage ───────────────────────────────────────────────────────
	var (
		pool *pgxpool.Pool
		st   stores
	)
	switch cfg.StoreDriver {
	case config.StoreDriverMemory:
		mem := repository.NewMemoryStore()
		st = stores{banks: mem, exams: mem, activity: mem}
		log.Warn().Msg("Using in-memory store, data is lost on restart")
	case config.StoreDriverPostgres:
		var err error
		pool, err = database.NewPostgresPool(ctx, cfg, log)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
		}
		defer pool.Close()
		st = stores{
			banks:    repository.NewBankRepository(pool),
			exams:    repository.NewExamRepository(pool),
			activity: repository.NewActivityLogRepository(pool),
		}
	default:
		log.Fatal().Str("store", cfg.StoreDriver).Msg("Unknown STORE_DRIVER, expected postgres or memory")
	}

	// ─── Connect to Redis ──────────────────────────────────────────────
	// Required with PostgreSQL. The memory store falls back to in-process
	// locks and reports when Redis is unreachable.
	rdb, err := database.NewRedisClient(ctx, cfg, log)
	if err != nil {
		if cfg.StoreDriver != config.StoreDriverMemory {
			log.Fatal().Err(err).Msg("Failed to connect to Redis")
		}
		log.Warn().Err(err).Msg("Redis unavailable, using in-process locks and reports")
		rdb = nil
	}
	if rdb != nil {
		defer rdb.Close()
	}

	// ─── Initialize Services ──────────────────────────────────────────
	var (
		locker    service.ScopeLocker
		reports   service.ReportCache
		publisher service.ActivityPublisher
	)
	if rdb != nil {
		locker = service.NewRedisScopeLocker(rdb, cfg.ScopeLockTTL)
		reports = service.NewRedisReportCache(rdb)
		publisher = service.NewQueueActivityPublisher(rdb, log)
	} else {
		locker = service.NewLocalScopeLocker()
		reports = service.NewMemoryReportCache()
		publisher = service.NewStoreActivityPublisher(st.activity, log)
	}

	importService := service.NewImportService(st.banks, st.exams, locker, publisher, cfg, log)
	distributionService := service.NewDistributionService(st.banks, st.exams, locker, reports, publisher, log)
	examService := service.NewExamService(st.exams, log)
	activityService := service.NewActivityService(st.activity)

	// ─── Initialize Handlers ──────────────────────────────────────────
	handlers := &router.Handlers{
		Import:       handler.NewImportHandler(importService, log),
		Bank:         handler.NewBankHandler(importService, log),
		Exam:         handler.NewExamHandler(examService, log),
		Distribution: handler.NewDistributionHandler(distributionService, log),
		Activity:     handler.NewActivityHandler(activityService, log),
		System:       handler.NewSystemHandler(pool, rdb, cfg.StoreDriver, log),
	}

	// ─── Start Background Workers ─────────────────────────────────────
	workerCtx, workerCancel := context.WithCancel(context.Background())
	workerDone := startWorkers(workerCtx, st, rdb, log)

	// ─── Setup Router ──────────────────────────────────────────────────
	r := router.SetupRouter(handlers, cfg)

	// ─── Create HTTP Server ────────────────────────────────────────────
	srv := &http.Server{
		Addr:              ":" + cfg.ServerPort,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// ─── Start Server in Goroutine ─────────────────────────────────────
	go func() {
		log.Info().Str("addr", ":"+cfg.ServerPort).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	// ─── Graceful Shutdown ─────────────────────────────────────────────
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	// 1. Stop accepting new HTTP requests (5s timeout).
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	// 2. Stop background workers and wait for their final flush.
	workerCancel()
	<-workerDone

	log.Info().Msg("Shutdown complete")
}

// startWorkers runs the activity log worker when entries go through Redis.
// The returned channel closes once the worker has flushed and stopped.
func startWorkers(ctx context.Context, st stores, rdb *redis.Client, log zerolog.Logger) <-chan struct{} {
	done := make(chan struct{})
	if rdb == nil {
		close(done)
		return done
	}

	w := worker.NewActivityLogWorker(st.activity, rdb, log)
	go func() {
		defer close(done)
		w.Start(ctx)
	}()
	return done
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
