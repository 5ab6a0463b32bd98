package main

import (
	"SwipeVault/config"
	"SwipeVault/internal/repo"
	"SwipeVault/internal/storage"
	"SwipeVault/pkg/logger"
	"SwipeVault/router"
	"context"
	"log"

	"github.com/joho/godotenv"
)

// main initializes services and starts the HTTP server.
func main() {
	_ = godotenv.Load()
	config.InitConfig()
	logger.Init(config.AppConfig.LogLevel, config.AppConfig.LogFile)
	repo.InitMysql()
	repo.InitRedis()
	storage.InitR2()

	ctx := context.Background()
	if err := repo.EnableKeyspaceNotifications(ctx); err != nil {
		log.Printf("enable redis keyspace notifications failed: %v", err)
	} else {
		ready := make(chan struct{})
		go repo.ListenRedisExpired(ctx, repo.Redis, ready)
		<-ready
	}

	router := router.InitRouter()

	router.Run(":8000")
}
