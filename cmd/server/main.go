package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"velanspaces/internal/events"
	"velanspaces/internal/handler"
	"velanspaces/internal/httpserver"
	"velanspaces/internal/repository"
	"velanspaces/internal/service/auth"
	"velanspaces/internal/service/project"
	"velanspaces/internal/service/roster"
	"velanspaces/internal/service/storage"
	"velanspaces/pkg/config"
	"velanspaces/pkg/db"
	"velanspaces/pkg/logger"
	"velanspaces/pkg/mq"
	"velanspaces/pkg/outbox"
	pkgredis "velanspaces/pkg/redis"
	"velanspaces/pkg/util"
)

func main() {
	log := logger.NewLogger()
	defer log.Sync()

	cfg, err := config.Load(config.GetConfigEnv(), "config")
	if err != nil {
		log.Fatal("Failed to load config", zap.Error(err))
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer pool.Close()

	rdb := pkgredis.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	publisher, err := mq.NewPublisher(cfg.MQ.URL)
	if err != nil {
		log.Fatal("Failed to connect to message queue", zap.Error(err))
	}
	defer publisher.Close()

	// Outbox events committed with their transactions flow to the exchange
	// from here; the consumer below brings them back in for SSE fanout.
	outboxRepo := outbox.NewRepository(pool)
	dispatcher := outbox.NewDispatcher(outboxRepo, publisher, log)
	go dispatcher.Start(ctx)

	hub := events.NewHub(log)
	consumer, err := mq.NewConsumer(cfg.MQ.URL, "dashboard.sse", "#", log)
	if err != nil {
		log.Fatal("Failed to start event consumer", zap.Error(err))
	}
	defer consumer.Close()
	consumer.SetHandler(hub.HandleMessage)
	go func() {
		if err := consumer.StartConsuming(); err != nil {
			log.Error("Event consumer stopped", zap.Error(err))
		}
	}()

	projectRepo := repository.NewProjectRepository(pool, outboxRepo, log)
	timelineRepo := repository.NewTimelineRepository(pool, outboxRepo, log)
	roomRepo := repository.NewRoomRepository(pool, outboxRepo, log)
	updateRepo := repository.NewUpdateRepository(pool, outboxRepo, log)
	designRepo := repository.NewDesignRepository(pool, outboxRepo, log)
	settlementRepo := repository.NewSettlementRepository(pool, outboxRepo, log)
	rosterRepo := repository.NewRosterRepository(pool, outboxRepo, log)
	fileRepo := repository.NewFileRepository(pool, log)

	authSvc := auth.NewService(projectRepo, rosterRepo, cfg.JWT, cfg.Auth, log)
	projectSvc := project.NewService(projectRepo, timelineRepo, roomRepo, updateRepo, designRepo, settlementRepo, log)
	rosterSvc := roster.NewService(rosterRepo, rdb, log)
	storageSvc := storage.NewService(fileRepo, cfg.Storage, log)

	deduper := util.NewDeduper(rdb, 24*time.Hour)

	handlers := httpserver.Handlers{
		Auth:       handler.NewAuthHandler(authSvc, log),
		Project:    handler.NewProjectHandler(projectSvc, log),
		Timeline:   handler.NewTimelineHandler(projectSvc, log),
		Feed:       handler.NewFeedHandler(projectSvc, deduper, log),
		Design:     handler.NewDesignHandler(projectSvc, log),
		Settlement: handler.NewSettlementHandler(projectSvc, log),
		Room:       handler.NewRoomHandler(projectSvc, log),
		Roster:     handler.NewRosterHandler(rosterSvc, log),
		File:       handler.NewFileHandler(storageSvc, log),
		Events:     handler.NewEventsHandler(hub, log),
	}

	router := httpserver.NewRouter(handlers, pool, cfg.JWT.Secret, log)
	server := httpserver.NewServer(":"+cfg.Server.Port, router, log)

	go func() {
		if err := server.Start(); err != nil {
			log.Fatal("Server failed", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down")
	cancel()
	consumer.Stop()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error("Forced shutdown", zap.Error(err))
	}
	log.Info("Stopped")
}
