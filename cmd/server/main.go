package main

import (
	"context"
	"flag"
	"log"
	"os"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"github.com/honeycarbs/scoutdesk/internal/app"
	"github.com/honeycarbs/scoutdesk/internal/config"
	"github.com/honeycarbs/scoutdesk/pkg/logging"
	"github.com/honeycarbs/scoutdesk/pkg/shutdown"
)

func main() {
	configPath := flag.String("config", os.Getenv("SCOUTDESK_CONFIG"), "optional YAML config file")
	flag.Parse()

	_ = godotenv.Load()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}

	logger := logging.New(cfg.Log.Level, cfg.Log.Format)
	defer func() { _ = logger.Sync() }()

	a, cleanup, err := app.InitializeApp(context.Background(), cfg, logger)
	if err != nil {
		logger.Error("failed to initialize server", "err", err)
		os.Exit(1)
	}

	go shutdown.Graceful(
		[]os.Signal{os.Interrupt, syscall.SIGTERM, syscall.SIGQUIT, syscall.SIGHUP},
		10*time.Second,
		logger,
		a.HTTP,
	)

	logger.Info("scoutdesk server initialized and starting", "addr", cfg.Addr())

	if err := a.HTTP.Run(); err != nil {
		logger.Error("server exited with error", "err", err)
	} else {
		logger.Info("server stopped")
	}
	cleanup()
}
