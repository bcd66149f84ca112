//go:build ignore

package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	config "review-insight-api/configs"
	"review-insight-api/pkg/server"
	"review-insight-api/pkg/services"

	"github.com/joho/godotenv"
)

// go run scripts/clean_review_index.go <datasetID>
func main() {
	if len(os.Args) != 2 {
		log.Fatal("usage: go run scripts/clean_review_index.go <datasetID>")
	}
	datasetID := os.Args[1]
	log.Println("🧹 レビュー索引のクリーンアップを開始します...")

	// .env.localファイルを優先的に読み込み（本番環境用）
	if err := godotenv.Load(".env.local"); err != nil {
		log.Printf("Warning: .env.local file not found, trying .env: %v", err)
		if err := godotenv.Load(); err != nil {
			log.Printf("Warning: .env file not found: %v", err)
		}
	}

	cfg := config.LoadConfig()
	log.Printf("接続先Qdrant: %s (collection=%s)", cfg.QdrantURL, cfg.QdrantCollection)

	_, embedder := server.NewLLMClients(cfg)
	if embedder == nil {
		log.Fatalf("LLM_PROVIDER=%s では索引を扱えません", cfg.LLMProvider)
	}
	index, err := services.NewReviewIndex(embedder, cfg.QdrantURL, cfg.QdrantAPIKey, cfg.QdrantCollection)
	if err != nil {
		log.Fatalf("レビュー索引の初期化に失敗: %v", err)
	}

	// 確認プロンプト
	fmt.Printf("\n❓ データセット %s のレビューを索引から削除してもよろしいですか？ (yes/no): ", datasetID)
	var response string
	fmt.Scanln(&response)

	if strings.ToLower(response) != "yes" {
		log.Println("❌ 削除をキャンセルしました")
		os.Exit(0)
	}

	if err := index.DeleteDataset(context.Background(), datasetID); err != nil {
		log.Fatalf("⚠️ 削除失敗: %v", err)
	}
	log.Println("✅ 削除しました")
}
