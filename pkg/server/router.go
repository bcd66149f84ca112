// Package server はGinルーターの組み立てを cmd/server とサーバーレス関数で共有します。
package server

import (
	"net/http"

	config "review-insight-api/configs"
	"review-insight-api/pkg/handlers"
	"review-insight-api/pkg/llm"
	"review-insight-api/pkg/services"
	"review-insight-api/pkg/store"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
)

// Dependencies 外部接続を伴う依存。Completer と Index はnilなら無効
type Dependencies struct {
	Completer llm.ChatCompleter
	Sessions  store.SessionStore
	Prompt    *config.SystemPromptConfig
	Index     *services.ReviewIndex
}

// NewRouter すべてのルートを登録したエンジンを返す
func NewRouter(cfg *config.Config, deps Dependencies) *gin.Engine {
	r := gin.Default()

	// サービスの初期化
	monitoringService := services.NewMonitoringService()
	datasets := services.NewDatasetStore()
	pipeline := services.NewReviewPipeline(nil)
	chatService := services.NewChatService(deps.Completer, deps.Sessions, datasets, deps.Prompt)

	// ハンドラーの初期化
	reviewHandler := handlers.NewReviewHandler(pipeline, datasets, services.NewAppleImportService(cfg.AppleImportURL), monitoringService, cfg.MaxUploadMB)
	if deps.Index != nil {
		reviewHandler.SetReviewIndex(deps.Index)
		chatService.SetReviewSearcher(deps.Index)
	}
	chatHandler := handlers.NewChatHandler(chatService)
	adminHandler := handlers.NewAdminHandler(cfg)
	monitoringHandler := handlers.NewMonitoringHandler(monitoringService)

	// ミドルウェアの登録
	r.Use(monitoringService.LoggingMiddleware())
	r.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Origin", "Content-Type", "X-API-KEY"},
	}))

	// ヘルスチェックエンドポイント
	r.GET("/health", adminHandler.HealthCheck)

	v1 := r.Group("/api/v1")
	v1.Use(handlers.APIKeyAuth(cfg.APIKey), adminHandler.MaintenanceMiddleware())
	{
		v1.GET("/hello", func(c *gin.Context) {
			c.JSON(http.StatusOK, gin.H{"message": "Hello from Review Insight API!"})
		})

		// 管理者向けAPI
		admin := v1.Group("/admin")
		{
			admin.GET("/health-status", adminHandler.GetHealthStatus)
			admin.POST("/maintenance/start", adminHandler.StartMaintenance)
			admin.POST("/maintenance/stop", adminHandler.StopMaintenance)
		}

		// モニタリングAPI
		v1.GET("/monitoring/logs", monitoringHandler.GetLogs)

		// レビュー分析API
		reviews := v1.Group("/reviews")
		{
			reviews.POST("/upload", reviewHandler.UploadReviews)
			reviews.POST("/import/apple", reviewHandler.ImportAppleReviews)
			reviews.GET("/datasets", reviewHandler.ListDatasets)
			reviews.GET("/datasets/:id", reviewHandler.GetDataset)
			reviews.DELETE("/datasets/:id", reviewHandler.DeleteDataset)
			reviews.GET("/datasets/:id/filter", reviewHandler.FilterReviews)
			reviews.GET("/datasets/:id/anomalies", reviewHandler.DetectAnomalies)
		}

		// チャットAPI
		v1.POST("/chat", chatHandler.Chat)
		v1.DELETE("/chat/:sessionId", chatHandler.ClearSession)
	}

	return r
}
