package main

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/labstack/gommon/log"

	"manifest/cmd"
)

const shutdownTimeout = 10 * time.Second

func main() {
	if err := godotenv.Load(".env"); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Fatalf("Error loading .env file: %v", err)
	}

	configs, err := cmd.LoadConfig(os.Getenv)
	if err != nil {
		log.Fatalf("invalid configuration: %v", err)
	}
	logger := cmd.NewLogger(configs.LogLevel, os.Stdout)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	redisClient, err := cmd.OpenRedis(ctx, configs)
	if err != nil {
		log.Fatalf("%v", err)
	}
	gormDB, err := cmd.OpenDatabase(ctx, configs, logger)
	if err != nil {
		log.Fatalf("%v", err)
	}

	app, err := cmd.NewCompositionRoot(configs, logger, redisClient, gormDB)
	if err != nil {
		log.Fatalf("failed to build application: %v", err)
	}
	if err := app.Store().Load(ctx); err != nil {
		log.Fatalf("failed to load manifest: %v", err)
	}

	jobManager := app.JobManager()
	if err := jobManager.StartAll(); err != nil {
		log.Fatalf("failed to start jobs: %v", err)
	}

	e, err := app.HTTPServer()
	if err != nil {
		log.Fatalf("failed to build http server: %v", err)
	}

	go func() {
		if err := e.Start(fmt.Sprintf("0.0.0.0:%s", configs.HTTPPort)); err != nil && !errors.Is(err, http.ErrServerClosed) {
			e.Logger.Fatal(err)
		}
	}()
	logger.Info("manifest service started", "port", configs.HTTPPort)

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		logger.Error("http shutdown failed", "error", err)
	}
	jobManager.StopAll()
	if err := app.Shutdown(shutdownCtx); err != nil {
		logger.Error("shutdown failed", "error", err)
	}
}
