package config

import (
	"os"
	"strconv"
)

// Config holds the application configuration
type Config struct {
	Port          string
	Environment   string
	APIKey        string
	AdminUsername string
	AdminPassword string

	// LLM (チャット用)
	LLMProvider           string // "openai", "azure", "gemini"
	OpenAIAPIKey          string
	OpenAIBaseURL         string
	OpenAIModel           string
	OpenAIEmbeddingModel  string
	AzureOpenAIAPIVersion string
	GeminiAPIKey          string
	GeminiModel           string

	// system_prompt.yaml のパス（空なら組み込み）
	SystemPromptPath string

	// チャットセッションの保存先
	ChatStore  string // "memory" or "sqlite"
	SQLitePath string

	// Qdrant（レビュー検索、任意）
	QdrantURL        string
	QdrantAPIKey     string
	QdrantCollection string

	// Apple App Store Connect インポート用バックエンド
	AppleImportURL string

	MaxUploadMB int
}

// LoadConfig loads configuration from environment variables
func LoadConfig() *Config {
	return &Config{
		Port:                  getEnv("PORT", "8080"),
		Environment:           getEnv("ENVIRONMENT", "development"),
		APIKey:                getEnv("API_KEY", ""),
		AdminUsername:         getEnv("ADMIN_USERNAME", "admin"),
		AdminPassword:         getEnv("ADMIN_PASSWORD", ""),
		LLMProvider:           getEnv("LLM_PROVIDER", "openai"),
		OpenAIAPIKey:          getEnv("OPENAI_API_KEY", ""),
		OpenAIBaseURL:         getEnv("OPENAI_BASE_URL", "https://api.openai.com/v1"),
		OpenAIModel:           getEnv("OPENAI_MODEL", "gpt-4o-mini"),
		OpenAIEmbeddingModel:  getEnv("OPENAI_EMBEDDING_MODEL", "text-embedding-3-small"),
		AzureOpenAIAPIVersion: getEnv("AZURE_OPENAI_API_VERSION", "2024-02-01"),
		GeminiAPIKey:          getEnv("GEMINI_API_KEY", ""),
		GeminiModel:           getEnv("GEMINI_MODEL", "gemini-1.5-flash"),
		SystemPromptPath:      getEnv("SYSTEM_PROMPT_PATH", ""),
		ChatStore:             getEnv("CHAT_STORE", "memory"),
		SQLitePath:            getEnv("SQLITE_PATH", "review_chat.db"),
		QdrantURL:             getEnv("QDRANT_URL", ""),
		QdrantAPIKey:          getEnv("QDRANT_API_KEY", ""),
		QdrantCollection:      getEnv("QDRANT_COLLECTION", "review_insight_reviews"),
		AppleImportURL:        getEnv("APPLE_IMPORT_URL", "http://localhost:3001/api/apple/reviews"),
		MaxUploadMB:           getEnvInt("MAX_UPLOAD_MB", 20),
	}
}

// getEnv gets an environment variable with a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt 数値の環境変数を取得（不正な値はデフォルト）
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil && n > 0 {
			return n
		}
	}
	return defaultValue
}
