package main

import (
	"SwipeVault/config"
	"SwipeVault/internal/repo"
	"SwipeVault/internal/service"
	"SwipeVault/internal/storage"
	"SwipeVault/internal/worker"
	"SwipeVault/pkg/logger"
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

func main() {
	_ = godotenv.Load()
	config.InitConfig()
	logger.Init(config.AppConfig.LogLevel, config.AppConfig.LogFile)
	repo.InitMysql()
	repo.InitRedis()
	storage.InitR2()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := repo.EnableKeyspaceNotifications(ctx); err != nil {
		log.Printf("enable redis keyspace notifications failed: %v", err)
	} else {
		ready := make(chan struct{})
		go repo.ListenRedisExpired(ctx, repo.Redis, ready)
		<-ready
	}

	go runOrphanSweeper(ctx)

	log.Println("ingest worker started")
	if err := worker.RunIngestWorker(ctx); err != nil {
		log.Fatalf("ingest worker stopped: %v", err)
	}
}

func runOrphanSweeper(ctx context.Context) {
	ticker := time.NewTicker(1 * time.Hour)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reaped, err := service.SweepOrphanedFiles(ctx)
			if err != nil {
				logrus.WithError(err).Warn("orphan sweep failed")
				continue
			}
			if reaped > 0 {
				logrus.WithField("reaped", reaped).Info("orphan sweep reaped files")
			}
		}
	}
}
