package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/ce-fello/festival-teams-service/src/internal/api"
	"github.com/ce-fello/festival-teams-service/src/internal/config"
	"github.com/ce-fello/festival-teams-service/src/internal/i18n"
	"github.com/ce-fello/festival-teams-service/src/internal/service"
	"github.com/ce-fello/festival-teams-service/src/internal/storage"
	"github.com/ce-fello/festival-teams-service/src/internal/store"

	_ "github.com/lib/pq"
	"go.uber.org/zap"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

func main() {
	logger, _ := zap.NewProduction()
	defer func(logger *zap.Logger) {
		_ = logger.Sync()
	}(logger)
	sugar := logger.Sugar()

	cfg, err := config.Load()
	if err != nil {
		sugar.Fatalf("config: %v", err)
	}

	var repo store.Repository
	switch cfg.StoreDriver {
	case config.StoreMemory:
		sugar.Warn("using in-memory store, data is lost on restart")
		repo = store.NewMemoryStore(logger)
	default:
		db, err := connectDBWithRetry(cfg.DatabaseURL, 15, 2*time.Second, sugar)
		if err != nil {
			sugar.Fatalf("failed to connect to db: %v", err)
		}
		defer func(db *sql.DB) {
			if err := db.Close(); err != nil {
				sugar.Errorf("failed to close db: %v", err)
			}
		}(db)

		if err := runMigrations(db, cfg.MigrationsDir, sugar); err != nil {
			sugar.Fatalf("migrations failed: %v", err)
		}
		sugar.Info("migrations applied")
		repo = store.NewRepositories(db, logger)
	}

	var uploader storage.FileUploader
	if cfg.S3.Enabled() {
		uploader, err = storage.NewS3Uploader(context.Background(), storage.S3UploaderConfig{
			Endpoint:        cfg.S3.Endpoint,
			Region:          cfg.S3.Region,
			AccessKeyID:     cfg.S3.AccessKeyID,
			SecretAccessKey: cfg.S3.SecretAccessKey,
			BucketName:      cfg.S3.Bucket,
			PublicBaseURL:   cfg.S3.PublicBaseURL,
		})
		if err != nil {
			sugar.Fatalf("s3 uploader: %v", err)
		}
	} else {
		sugar.Warn("S3 is not configured, file uploads are disabled")
	}

	svc := service.NewService(repo, uploader, logger, service.WithStoreTimeout(cfg.StoreTimeout))
	h := api.NewHandler(svc, logger, cfg.RequestTimeout)
	r := api.NewRouter(h, api.RouterConfig{
		JWTSecret:   []byte(cfg.JWTSecret),
		CORSOrigins: cfg.CORSOrigins,
		Catalog:     i18n.Default(cfg.DefaultLanguage),
	})

	srv := &http.Server{
		Addr:         ":" + strconv.Itoa(cfg.Port),
		Handler:      r,
		ReadTimeout:  30 * time.Second,
		WriteTimeout: cfg.RequestTimeout + 10*time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sugar.Infof("listening on %s", srv.Addr)
		if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			sugar.Fatalf("server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)
	<-quit
	sugar.Infof("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		sugar.Errorf("server forced to shutdown: %v", err)
	}
	sugar.Info("server stopped")
}

func connectDBWithRetry(dsn string, attempts int, delay time.Duration, sugar *zap.SugaredLogger) (*sql.DB, error) {
	var db *sql.DB
	var err error

	for i := 0; i < attempts; i++ {
		db, err = sql.Open("postgres", dsn)
		if err == nil {
			if err = db.Ping(); err == nil {
				return db, nil
			}
			_ = db.Close()
		}
		sugar.Warnf("db ping error: %v (attempt %d/%d)", err, i+1, attempts)
		time.Sleep(delay)
	}
	return nil, fmt.Errorf("db connect failed: %w", err)
}

func runMigrations(db *sql.DB, migrationsDir string, sugar *zap.SugaredLogger) error {
	sugar.Infof("running migrations from %s", migrationsDir)

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		return fmt.Errorf("migration driver: %w", err)
	}

	m, err := migrate.NewWithDatabaseInstance(
		"file://"+migrationsDir,
		"postgres",
		driver,
	)
	if err != nil {
		return fmt.Errorf("migration init: %w", err)
	}

	err = m.Up()
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("migration up: %w", err)
	}

	if errors.Is(err, migrate.ErrNoChange) {
		sugar.Info("no new migrations, already up to date")
	}

	return nil
}
