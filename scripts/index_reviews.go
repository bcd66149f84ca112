//go:build ignore

package main

import (
	"context"
	"log"
	"os"
	"path/filepath"
	"time"

	config "review-insight-api/configs"
	"review-insight-api/pkg/server"
	"review-insight-api/pkg/services"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// go run scripts/index_reviews.go <reviews.xlsx> [datasetID]
func main() {
	if len(os.Args) < 2 {
		log.Fatal("usage: go run scripts/index_reviews.go <reviews.xlsx|reviews.csv> [datasetID]")
	}
	log.Println("🚀 レビューの索引登録を開始します...")

	// .envファイルを読み込み
	if err := godotenv.Load(); err != nil {
		log.Printf("Warning: .env file not found: %v", err)
	}

	cfg := config.LoadConfig()
	if cfg.QdrantURL == "" {
		log.Fatal("QDRANT_URL が未設定です")
	}

	_, embedder := server.NewLLMClients(cfg)
	if embedder == nil {
		log.Fatalf("LLM_PROVIDER=%s では埋め込みが使えません（openai または azure を指定してください）", cfg.LLMProvider)
	}

	index, err := services.NewReviewIndex(embedder, cfg.QdrantURL, cfg.QdrantAPIKey, cfg.QdrantCollection)
	if err != nil {
		log.Fatalf("レビュー索引の初期化に失敗: %v", err)
	}

	path := os.Args[1]
	data, err := os.ReadFile(path)
	if err != nil {
		log.Fatalf("ファイルの読み込みに失敗: %v", err)
	}

	aggregated, err := services.NewReviewPipeline(nil).ProcessFile(filepath.Base(path), data)
	if err != nil {
		log.Fatalf("レビューの解析に失敗: %v", err)
	}

	datasetID := uuid.New().String()
	if len(os.Args) > 2 {
		datasetID = os.Args[2]
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Minute)
	defer cancel()

	n, err := index.IndexReviews(ctx, datasetID, aggregated.Reviews)
	if err != nil {
		log.Fatalf("索引登録に失敗: %v", err)
	}

	log.Println("==================================================")
	log.Printf("📊 索引登録完了")
	log.Printf("  データセットID: %s", datasetID)
	log.Printf("  レビュー: %d件中 %d件を登録", len(aggregated.Reviews), n)
	log.Println("==================================================")
}
