package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/brandlens/brandlens/internal/application"
	appanalysis "github.com/brandlens/brandlens/internal/application/analysis"
	"github.com/brandlens/brandlens/internal/config"
	"github.com/brandlens/brandlens/internal/domain/reports"
	aiclient "github.com/brandlens/brandlens/internal/infra/ai/openai"
	mysqlp "github.com/brandlens/brandlens/internal/infra/db/mysql"
	postgresp "github.com/brandlens/brandlens/internal/infra/db/postgres"
	"github.com/brandlens/brandlens/internal/infra/httpserver"
	"github.com/brandlens/brandlens/internal/infra/storage"
	"github.com/brandlens/brandlens/internal/logging"
)

func main() {
	// path config.yaml
	path := "config.yaml"
	if v := os.Getenv("CONFIG_PATH"); v != "" {
		path = v
	}

	// load config
	cfg, err := config.Load(path)
	if err != nil {
		log.Fatalf("config load error: %v", err)
	}

	logger := logging.New(cfg.Logging.Level)
	ctx := context.Background()

	// init report store
	store, err := storage.NewFSStore(cfg.Reports.RootDir)
	if err != nil {
		log.Fatalf("report store init error: %v", err)
	}

	// init upstream client
	gen := aiclient.NewClient(
		cfg.OpenAI.APIKey,
		cfg.OpenAI.Model,
		cfg.OpenAI.MaxTokens,
		cfg.OpenAI.Temperature,
		logger,
	)

	// optional history audit trail
	var history reports.History
	switch cfg.History.Driver {
	case "mysql":
		db, err := mysqlp.Connect(ctx, cfg.MySQLDSN())
		if err != nil {
			log.Fatalf("mysql connect error: %v", err)
		}
		defer db.Close()
		history = mysqlp.NewHistoryRepository(db)
	case "postgres":
		db, err := postgresp.Connect(ctx, cfg.PostgresDSN())
		if err != nil {
			log.Fatalf("postgres connect error: %v", err)
		}
		defer db.Close()
		history = postgresp.NewHistoryRepository(db)
	case "":
		// disabled
	default:
		log.Fatalf("unknown history driver: %s", cfg.History.Driver)
	}

	// optional archive mirror
	var archiver reports.Archiver
	if cfg.Archive.Endpoint != "" {
		a, err := storage.NewArchiveStore(ctx,
			cfg.Archive.Endpoint,
			cfg.Archive.Region,
			cfg.Archive.BucketName,
			cfg.Archive.AccessKey,
			cfg.Archive.SecretKey,
			cfg.Archive.UseSSL,
		)
		if err != nil {
			log.Fatalf("archive init error: %v", err)
		}
		archiver = a
	}

	// init service
	svc := &appanalysis.Service{
		Generator: gen,
		Store:     store,
		Archiver:  archiver,
		History:   history,
		Clock:     application.SystemClock{},
		Log:       logger,
	}

	// init router
	handler := httpserver.NewRouter(svc, store, gen, history, logger, httpserver.Options{
		APIKeys:           cfg.Auth.APIKeys,
		AllowedOrigins:    cfg.CORS.AllowedOrigins,
		RateLimitCapacity: cfg.RateLimit.Capacity,
		RateLimitRefill:   cfg.RateLimit.RefillRate,
		Production:        cfg.Production(),
		ReportRoot:        store.Root(),
	})

	addr := fmt.Sprintf(":%d", cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // generation calls are slow
		IdleTimeout:  60 * time.Second,
	}

	// run server
	go func() {
		logger.Info("server listening", "addr", addr)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server error: %v", err)
		}
	}()

	// graceful shutdown
	stop := make(chan os.Signal, 1)
	signal.Notify(stop, os.Interrupt, syscall.SIGTERM)
	<-stop
	logger.Info("shutting down server")

	ctx2, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx2); err != nil {
		logger.Error("shutdown error", "error", err)
	}
}
