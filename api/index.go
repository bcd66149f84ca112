package handler

import (
	"log"
	"net/http"
	"sync"

	config "review-insight-api/configs"
	"review-insight-api/pkg/server"

	"github.com/gin-gonic/gin"
)

var (
	app     *gin.Engine
	initErr error
	once    sync.Once
)

// setupApp はGinアプリケーションを初期化します。
// サーバーレス環境では、リクエストごとに初期化が走らないようsync.Onceで一度だけ実行します。
// データセットはインスタンスのメモリ上にしか残らないため、CHAT_STORE=sqlite でも履歴はインスタンスごとです。
func setupApp() (*gin.Engine, error) {
	once.Do(func() {
		// .envファイルはVercelの環境変数設定から読み込まれるため、ここではgodotenvを呼び出しません。
		cfg := config.LoadConfig()
		gin.SetMode(gin.ReleaseMode)

		app, initErr = server.Bootstrap(cfg)
		if initErr != nil {
			log.Printf("❌ [setupApp] 初期化に失敗しました: %v", initErr)
			return
		}
		log.Printf("🟢 [setupApp] Gin application initialized")
	})
	return app, initErr
}

// Handler はVercelのエントリーポイントです。
func Handler(w http.ResponseWriter, r *http.Request) {
	engine, err := setupApp()
	if err != nil {
		http.Error(w, `{"success":false,"error":"server initialization failed"}`, http.StatusInternalServerError)
		return
	}
	engine.ServeHTTP(w, r)
}
