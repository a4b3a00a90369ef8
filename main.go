package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"chatguard/internal/auditlog"
	"chatguard/internal/config"
	"chatguard/internal/moderation"
	"chatguard/internal/normalize"
	"chatguard/internal/server"
	"chatguard/internal/telegram"
)

func main() {
	logger, err := zap.NewDevelopment()
	if err != nil {
		panic(err) // Should not happen in development
	}
	defer func() {
		_ = logger.Sync() // Flushes buffer, if any
	}()

	// Load configuration
	cfgPath := "configs/config.yml"
	if len(os.Args) > 1 {
		cfgPath = os.Args[1]
	}
	cfg, err := config.LoadConfig(cfgPath)
	if err != nil {
		logger.Fatal("Failed to load config", zap.Error(err))
	}

	// Audit sink: losing it is fatal, so it is opened before anything else.
	audit, err := auditlog.NewWriter(cfg.AuditLog.Path)
	if err != nil {
		logger.Fatal("Failed to open audit log", zap.Error(err))
	}
	defer audit.Close()

	query := auditlog.NewQuery(cfg.AuditLog.Path, cfg.AuditLog.DisplayTruncate)

	// Moderation pipeline
	norm := normalize.New(cfg.Moderation.Confusables)
	filter := moderation.NewFilter(norm, cfg.Moderation.BannedPhrases)

	client, err := telegram.NewClient(
		cfg.Telegram.Token,
		time.Duration(cfg.Telegram.RequestTimeout)*time.Second,
		logger,
	)
	if err != nil {
		logger.Fatal("Failed to connect to Telegram", zap.Error(err))
	}

	// Admin roster is snapshotted once; it is not refreshed during the run.
	roster, err := moderation.SnapshotRoster(client, cfg.Moderation.ValidChats)
	if err != nil {
		logger.Fatal("Failed to snapshot admin roster", zap.Error(err))
	}

	if err := audit.Record(auditlog.Lifecycle("bot started")); err != nil {
		logger.Fatal("Audit log is unwritable", zap.Error(err))
	}
	if err := audit.Record(auditlog.Lifecycle("admin snapshot: " + roster.Describe())); err != nil {
		logger.Fatal("Audit log is unwritable", zap.Error(err))
	}

	engine := moderation.NewEngine(
		cfg.Moderation.ValidChats,
		roster,
		filter,
		client,
		client,
		audit,
		logger,
	)

	bot := telegram.NewBot(client, engine, roster, audit, query, cfg.Telegram.UpdateTimeout, logger)

	// Context for graceful shutdown
	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	// Ops server (health + metrics) in a goroutine
	if cfg.Server.Port != "" {
		srv := server.NewServer(logger)
		go srv.Run(cfg.Server.Port)
	}

	if err := bot.Start(ctx); err != nil {
		logger.Error("Telegram bot failed", zap.Error(err))
	}

	logger.Info("Application stopped.")
}
