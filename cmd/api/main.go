//	@title			Shelf API
//	@version		1.0
//	@description	Book catalog, file storage and reading-progress service.
//
//	@host		localhost:8080
//	@BasePath	/api

package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/shelf/service/internal/book"
	"github.com/shelf/service/internal/config"
	"github.com/shelf/service/internal/db"
	"github.com/shelf/service/internal/download"
	"github.com/shelf/service/internal/history"
	"github.com/shelf/service/internal/metrics"
	"github.com/shelf/service/internal/reconcile"
	"github.com/shelf/service/internal/server"
	"github.com/shelf/service/internal/storage"
	"github.com/shelf/service/internal/upload"

	_ "github.com/shelf/service/docs/swagger"
)

func main() {
	cfg := config.Load()

	pool, err := db.Connect(cfg.DatabaseURL)
	if err != nil {
		log.Fatalf("database connection failed: %v", err)
	}
	defer pool.Close()

	if err := db.Migrate(cfg.DatabaseURL); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	store, err := storage.NewMinioStorage(
		cfg.StorageEndpoint,
		cfg.StorageAccessKey,
		cfg.StorageSecretKey,
		cfg.StorageUseSSL,
	)
	if err != nil {
		log.Fatalf("object storage init failed: %v", err)
	}

	buckets := storage.Buckets{Books: cfg.BookBucket, Covers: cfg.CoverBucket}
	initCtx, cancelInit := context.WithTimeout(context.Background(), 30*time.Second)
	err = storage.EnsureAll(initCtx, store, buckets)
	cancelInit()
	if err != nil {
		log.Fatalf("object storage buckets: %v", err)
	}

	telemetry := metrics.New()

	// Wire dependencies: repository → service → handler
	bookRepo := book.NewRepository(pool)
	bookSvc := book.NewService(bookRepo)

	historyRepo := history.NewRepository(pool)
	historySvc := history.NewService(historyRepo)

	uploadSvc := upload.NewService(bookRepo, store, buckets)
	uploadSvc.SetObserver(telemetry)
	downloadSvc := download.NewService(store, buckets)

	router := server.NewRouter(server.Handlers{
		Books:    book.NewHandler(bookSvc),
		History:  history.NewHandler(historySvc),
		Upload:   upload.NewHandler(uploadSvc, cfg.UploadMemoryLimit),
		Download: download.NewHandler(downloadSvc),
		Metrics:  telemetry,
	}, cfg.CORSAllowedOrigins)

	appCtx, stopApp := context.WithCancel(context.Background())
	defer stopApp()

	sweeper := reconcile.NewSweeper(store, bookRepo, buckets, cfg.OrphanGracePeriod)
	sweeper.SetObserver(telemetry)
	if err := sweeper.Start(appCtx, cfg.OrphanSweepSchedule); err != nil {
		log.Fatalf("orphan sweeper: %v", err)
	}

	// Downloads stream whole books, so writes get more room than reads.
	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       5 * time.Minute,
		WriteTimeout:      5 * time.Minute,
		IdleTimeout:       60 * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		log.Printf("server listening on :%s (env=%s)", cfg.Port, cfg.AppEnv)
		log.Printf("swagger UI at http://localhost:%s/swagger/", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	<-quit
	log.Println("shutting down gracefully...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Printf("forced shutdown: %v", err)
	}
	stopApp()
	sweeper.Stop()

	log.Println("server stopped")
}
