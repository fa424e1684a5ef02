package main

import (
	"log"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"herohub/internal/mirror"
	"herohub/pkg/utils"
)

// mirror-server serves HEROHUB_MIRROR_FILE in the open provider's layout:
//
//	API_BASE_URL=http://localhost:9000 HEROHUB_PROVIDER=open api-server
func main() {
	cfg, err := utils.LoadConfig()
	if err != nil {
		log.Fatalf("config: %v", err)
	}
	logger, err := utils.NewLogger(cfg.LogLevel)
	if err != nil {
		log.Fatalf("logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.Recovery(), utils.GinLogger(logger))
	mirror.NewHandler(cfg.MirrorFile, logger).RegisterRoutes(router)

	logger.Info("mirror-server listening",
		zap.String("addr", cfg.MirrorAddr),
		zap.String("file", cfg.MirrorFile),
	)
	if err := router.Run(cfg.MirrorAddr); err != nil {
		logger.Fatal("mirror-server stopped", zap.Error(err))
	}
}
