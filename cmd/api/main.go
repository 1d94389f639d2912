package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jackc/pgx/v5/pgxpool"
	app "github.com/mohammadpnp/crm-import/internal/application/organization"
	"github.com/mohammadpnp/crm-import/internal/bootstrap"
	"github.com/mohammadpnp/crm-import/internal/config"
	infradb "github.com/mohammadpnp/crm-import/internal/infrastructure/db"
	infrafile "github.com/mohammadpnp/crm-import/internal/infrastructure/file"
	"github.com/mohammadpnp/crm-import/internal/infrastructure/repository"
	"github.com/mohammadpnp/crm-import/internal/logging"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

func main() {
	cfg, err := config.Load(".env", ".env.local")
	if err != nil {
		logging.New(os.Stderr, "error", "text").Fatalf("invalid configuration: %v", err)
	}

	log := logging.New(os.Stdout, cfg.LogLevel, cfg.LogFormat)

	db, err := gorm.Open(postgres.Open(cfg.Database.URL), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect database: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		log.Fatalf("failed to access database handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(cfg.Database.MaxOpenConns)
	sqlDB.SetMaxIdleConns(cfg.Database.MaxIdleConns)

	if cfg.Database.EnsureSchema {
		if err := infradb.EnsureSchema(context.Background(), db); err != nil {
			log.Fatalf("failed to prepare schema: %v", err)
		}
	}

	pool, err := pgxpool.New(context.Background(), cfg.Database.URL)
	if err != nil {
		log.Fatalf("failed to create pgx pool: %v", err)
	}
	defer pool.Close()

	uploads := infrafile.NewLocalSource(cfg.Import.BaseDir)
	server := bootstrap.NewHTTPServer(bootstrap.ServerDeps{
		DB:          db,
		Pool:        pool,
		Uploads:     uploads,
		Logger:      log,
		MetricsPath: cfg.MetricsPath,
	})

	workerCtx, stopWorkers := context.WithCancel(context.Background())
	defer stopWorkers()

	worker := app.NewImportWorker(
		repository.NewImportJobRepository(db),
		uploads,
		repository.NewRecordStore(db),
		repository.NewImportErrorRepository(pool),
		app.ImportWorkerConfig{
			Workers:           cfg.Import.Workers,
			BatchSize:         cfg.Import.BatchSize,
			PollInterval:      cfg.Import.PollInterval,
			LeaseDuration:     cfg.Import.LeaseDuration,
			HeartbeatInterval: cfg.Import.HeartbeatInterval,
		},
		log,
	)
	worker.Start(workerCtx)

	go func() {
		if err := server.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	stopWorkers()

	ctx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTTL)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("graceful shutdown failed: %v", err)
	}
}
