package main

import (
	"log"

	config "review-insight-api/configs"
	"review-insight-api/pkg/server"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
)

func main() {
	// .envファイルを読み込み
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found or could not be loaded: %v", err)
	}

	// 設定の読み込み
	cfg := config.LoadConfig()
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	r, err := server.Bootstrap(cfg)
	if err != nil {
		log.Fatalf("サーバーの初期化に失敗しました: %v", err)
	}

	addr := ":" + cfg.Port
	log.Printf("Starting Review Insight API server on %s", addr)
	if err := r.Run(addr); err != nil {
		log.Fatal("Failed to start server:", err)
	}
}
