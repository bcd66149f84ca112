package server

import (
	"fmt"
	"log"

	config "review-insight-api/configs"
	"review-insight-api/pkg/llm"
	"review-insight-api/pkg/services"
	"review-insight-api/pkg/store"

	"github.com/gin-gonic/gin"
)

// Bootstrap 設定から依存を初期化してルーターを作る。
// Qdrantの接続に失敗した場合は索引なしで起動します。
func Bootstrap(cfg *config.Config) (*gin.Engine, error) {
	prompt, err := config.LoadSystemPrompt(cfg.SystemPromptPath)
	if err != nil {
		return nil, fmt.Errorf("システムプロンプトの読み込みに失敗しました: %w", err)
	}

	sessions, err := NewSessionStore(cfg)
	if err != nil {
		return nil, fmt.Errorf("チャット履歴ストアの初期化に失敗しました: %w", err)
	}

	completer, embedder := NewLLMClients(cfg)

	var index *services.ReviewIndex
	if cfg.QdrantURL != "" && embedder != nil {
		index, err = services.NewReviewIndex(embedder, cfg.QdrantURL, cfg.QdrantAPIKey, cfg.QdrantCollection)
		if err != nil {
			log.Printf("⚠️ レビュー索引を無効にします: %v", err)
			index = nil
		}
	}

	log.Printf("🟢 [Bootstrap] llm=%s, chatStore=%s, qdrant=%v", cfg.LLMProvider, cfg.ChatStore, index != nil)
	return NewRouter(cfg, Dependencies{
		Completer: completer,
		Sessions:  sessions,
		Prompt:    prompt,
		Index:     index,
	}), nil
}

// NewSessionStore CHAT_STORE=sqlite ならGORM、それ以外はメモリ
func NewSessionStore(cfg *config.Config) (store.SessionStore, error) {
	if cfg.ChatStore == "sqlite" {
		return store.NewGormSessionStore(cfg.SQLitePath)
	}
	return store.NewMemorySessionStore(), nil
}

// NewLLMClients 設定されたプロバイダのクライアントを返す。APIキーがなければnil
func NewLLMClients(cfg *config.Config) (llm.ChatCompleter, llm.Embedder) {
	switch cfg.LLMProvider {
	case "gemini":
		if cfg.GeminiAPIKey == "" {
			log.Println("⚠️ GEMINI_API_KEY が未設定のためチャットは無効です")
			return nil, nil
		}
		// Geminiクライアントは埋め込みを提供しないためレビュー索引は使わない
		return llm.NewGeminiClient("", cfg.GeminiAPIKey, cfg.GeminiModel), nil
	case "azure":
		if cfg.OpenAIAPIKey == "" {
			log.Println("⚠️ OPENAI_API_KEY が未設定のためチャットは無効です")
			return nil, nil
		}
		c := llm.NewAzureOpenAIClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.AzureOpenAIAPIVersion, cfg.OpenAIModel, cfg.OpenAIEmbeddingModel)
		return c, c
	default:
		if cfg.OpenAIAPIKey == "" {
			log.Println("⚠️ OPENAI_API_KEY が未設定のためチャットは無効です")
			return nil, nil
		}
		c := llm.NewOpenAIClient(cfg.OpenAIBaseURL, cfg.OpenAIAPIKey, cfg.OpenAIModel, cfg.OpenAIEmbeddingModel)
		return c, c
	}
}
