package main

import (
	"time"

	"go.uber.org/zap"

	"taskboard/config"
	"taskboard/internal/api"
	"taskboard/internal/db"
	redisclient "taskboard/internal/redis"
	"taskboard/internal/report"
	"taskboard/internal/repository"
	"taskboard/pkg/logger"
)

func main() {
	// Load config
	cfg := config.Load()

	log := logger.NewLogger()
	defer log.Sync()

	// Init DB
	dbConn, err := db.NewConnection(cfg.DB, log)
	if err != nil {
		log.Fatal("DB initialization failed", zap.Error(err))
	}
	defer dbConn.Close()

	// Init Redis (display-name cache)
	rdb := redisclient.NewRedisClient(cfg.Redis)
	defer rdb.Close()

	// Init Repositories
	projectRepo := repository.NewProjectRepository(dbConn, log)
	workItemRepo := repository.NewWorkItemRepository(dbConn, log)
	userRepo := repository.NewUserRepository(dbConn, log)

	// Init report engine
	nameTTL := time.Duration(cfg.Report.NameCacheTTLMinutes) * time.Minute
	resolver := report.NewNameResolver(userRepo, rdb, nameTTL, log)
	reportSvc := report.NewService(projectRepo, workItemRepo, resolver, log, cfg.Report.Workers)

	// Router
	reportHandler := api.NewReportHandler(reportSvc, log)
	router := api.NewRouter(reportHandler, cfg.JWT.Secret)

	// Start API server
	if err := router.Run(cfg.Server.Port); err != nil {
		log.Fatal("server start failed", zap.Error(err))
	}
}
