package server

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	config "review-insight-api/configs"
	"review-insight-api/pkg/store"

	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMain(m *testing.M) {
	// テスト環境の設定
	gin.SetMode(gin.TestMode)

	// .envファイルを読み込み（テスト環境では無視される可能性がある）
	godotenv.Load("../../.env")

	os.Exit(m.Run())
}

func testRouter(apiKey string) *gin.Engine {
	cfg := &config.Config{APIKey: apiKey, AdminUsername: "admin", AdminPassword: "pw", MaxUploadMB: 5, AppleImportURL: "http://127.0.0.1:0"}
	return NewRouter(cfg, Dependencies{Sessions: store.NewMemorySessionStore(), Prompt: config.DefaultSystemPrompt()})
}

func TestRouterSetup(t *testing.T) {
	r := testRouter("")

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	req, _ = http.NewRequest("GET", "/api/v1/hello", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterRequiresAPIKey(t *testing.T) {
	r := testRouter("secret")

	req, _ := http.NewRequest("GET", "/api/v1/reviews/datasets", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusUnauthorized, w.Code)

	req, _ = http.NewRequest("GET", "/api/v1/reviews/datasets", nil)
	req.Header.Set("X-API-KEY", "secret")
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	// ヘルスチェックはキー不要
	req, _ = http.NewRequest("GET", "/health", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRouterUploadAndMonitoring(t *testing.T) {
	r := testRouter("")

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "reviews.csv")
	require.NoError(t, err)
	part.Write([]byte("Rating,Review\n5,Great app\n2,Too many ads\n"))
	require.NoError(t, mw.Close())

	req, _ := http.NewRequest("POST", "/api/v1/reviews/upload", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	req, _ = http.NewRequest("GET", "/api/v1/monitoring/logs?period=1h", nil)
	w = httptest.NewRecorder()
	r.ServeHTTP(w, req)
	require.Equal(t, http.StatusOK, w.Code)

	var dashboard map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &dashboard))
	endpoints := dashboard["endpoints"].(map[string]interface{})
	assert.Equal(t, float64(1), endpoints["/api/v1/reviews/upload"])
	assert.Equal(t, float64(2), dashboard["ingestion"].(map[string]interface{})["reviewsIngested"])
}

func TestNewSessionStore(t *testing.T) {
	s, err := NewSessionStore(&config.Config{ChatStore: "memory"})
	require.NoError(t, err)
	assert.IsType(t, &store.MemorySessionStore{}, s)

	s, err = NewSessionStore(&config.Config{ChatStore: "sqlite", SQLitePath: filepath.Join(t.TempDir(), "chat.db")})
	require.NoError(t, err)
	assert.IsType(t, &store.GormSessionStore{}, s)
}

func TestNewLLMClients(t *testing.T) {
	completer, embedder := NewLLMClients(&config.Config{LLMProvider: "openai"})
	assert.Nil(t, completer)
	assert.Nil(t, embedder)

	completer, embedder = NewLLMClients(&config.Config{LLMProvider: "openai", OpenAIAPIKey: "k", OpenAIModel: "gpt-4o-mini"})
	require.NotNil(t, completer)
	assert.NotNil(t, embedder)
	assert.Equal(t, "gpt-4o-mini", completer.Model())

	completer, embedder = NewLLMClients(&config.Config{LLMProvider: "gemini", GeminiAPIKey: "g", GeminiModel: "gemini-1.5-flash"})
	require.NotNil(t, completer)
	assert.Nil(t, embedder)
}

func TestBootstrap(t *testing.T) {
	cfg := &config.Config{ChatStore: "memory", LLMProvider: "openai", MaxUploadMB: 5}
	r, err := Bootstrap(cfg)
	require.NoError(t, err)

	req, _ := http.NewRequest("GET", "/health", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	assert.Equal(t, http.StatusOK, w.Code)

	_, err = Bootstrap(&config.Config{SystemPromptPath: filepath.Join(t.TempDir(), "missing.yaml")})
	assert.Error(t, err)
}
