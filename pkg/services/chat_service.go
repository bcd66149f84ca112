package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	config "review-insight-api/configs"
	"review-insight-api/pkg/llm"
	"review-insight-api/pkg/models"
	"review-insight-api/pkg/store"

	"github.com/google/uuid"
)

const (
	chatHistoryLimit   = 10
	relatedReviewLimit = 5
)

var (
	// ErrDatasetNotFound 指定されたデータセットが存在しない
	ErrDatasetNotFound = errors.New("dataset not found")
	// ErrLLMNotConfigured APIキーなどが未設定でLLMを呼び出せない
	ErrLLMNotConfigured = errors.New("llm not configured")
)

// ReviewSearcher 質問に近いレビューを返す（ReviewIndexが実装）
type ReviewSearcher interface {
	Search(ctx context.Context, datasetID, query string, topK uint64) ([]string, error)
}

// ChatService はデータセットの集計結果をコンテキストにしてLLMと会話します。
type ChatService struct {
	completer llm.ChatCompleter
	sessions  store.SessionStore
	datasets  *DatasetStore
	prompt    *config.SystemPromptConfig
	searcher  ReviewSearcher
	now       func() time.Time
}

// NewChatService promptがnilなら組み込みのシステムプロンプトを使う
func NewChatService(completer llm.ChatCompleter, sessions store.SessionStore, datasets *DatasetStore, prompt *config.SystemPromptConfig) *ChatService {
	if prompt == nil {
		prompt = config.DefaultSystemPrompt()
	}
	return &ChatService{
		completer: completer,
		sessions:  sessions,
		datasets:  datasets,
		prompt:    prompt,
		now:       time.Now,
	}
}

// SetReviewSearcher ベクトル検索を有効にする
func (s *ChatService) SetReviewSearcher(searcher ReviewSearcher) {
	s.searcher = searcher
}

// Ask 質問に答え、ユーザーとアシスタントの発言を履歴に保存します。
func (s *ChatService) Ask(ctx context.Context, req models.ChatRequest) (*models.ChatResponse, error) {
	message := strings.TrimSpace(req.Message)
	if message == "" {
		return nil, fmt.Errorf("メッセージが空です")
	}

	sessionID := req.SessionID
	if sessionID == "" {
		sessionID = uuid.New().String()
	}

	var data *models.AggregatedData
	if req.DatasetID != "" {
		ds, ok := s.datasets.Get(req.DatasetID)
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrDatasetNotFound, req.DatasetID)
		}
		data = ds.Data
	}

	history, err := s.sessions.History(ctx, sessionID, chatHistoryLimit)
	if err != nil {
		return nil, err
	}

	var answer, model string
	var related []string

	if ok, canned := s.prompt.CheckSpecialCommand(message); ok {
		answer = canned
		model = "builtin"
	} else {
		if s.completer == nil {
			return nil, ErrLLMNotConfigured
		}

		if s.searcher != nil && req.DatasetID != "" {
			related, err = s.searcher.Search(ctx, req.DatasetID, message, relatedReviewLimit)
			if err != nil {
				log.Printf("⚠️ [チャット] 関連レビューの検索に失敗（続行します）: %v", err)
				related = nil
			}
		}

		messages := make([]llm.ChatMessage, 0, len(history)+2)
		messages = append(messages, llm.ChatMessage{Role: llm.RoleSystem, Content: s.systemPrompt(data, related)})
		for _, h := range history {
			messages = append(messages, llm.ChatMessage{Role: h.Role, Content: h.Content})
		}
		messages = append(messages, llm.ChatMessage{Role: llm.RoleUser, Content: message})

		answer, err = s.completer.Complete(ctx, messages)
		if err != nil {
			return nil, fmt.Errorf("AI応答の生成に失敗: %w", err)
		}
		model = s.completer.Model()
	}

	now := s.now().UTC()
	turns := []models.ChatMessage{
		{SessionID: sessionID, Role: llm.RoleUser, Content: message, CreatedAt: now},
		{SessionID: sessionID, Role: llm.RoleAssistant, Content: answer, CreatedAt: now},
	}
	for _, t := range turns {
		if err := s.sessions.Append(ctx, t); err != nil {
			return nil, err
		}
	}

	log.Printf("💬 [チャット] session=%s dataset=%s history=%d related=%d", sessionID, req.DatasetID, len(history), len(related))

	return &models.ChatResponse{
		Response:       answer,
		SessionID:      sessionID,
		DatasetID:      req.DatasetID,
		Model:          model,
		HistoryCount:   len(history),
		RelatedReviews: related,
		Timestamp:      now,
	}, nil
}

// ClearSession セッションの履歴を削除
func (s *ChatService) ClearSession(ctx context.Context, sessionID string) error {
	return s.sessions.Clear(ctx, sessionID)
}

func (s *ChatService) systemPrompt(data *models.AggregatedData, related []string) string {
	var b strings.Builder
	b.WriteString(s.prompt.BuildSystemPrompt())

	if data == nil {
		b.WriteString("No review dataset is selected. Ask the user to upload a review export first if the question needs data.\n")
		return b.String()
	}

	b.WriteString(BuildChatContext(data))
	if len(related) > 0 {
		b.WriteString("\n## Reviews most related to the question\n")
		for _, text := range related {
			b.WriteString("- ")
			b.WriteString(truncateRunes(strings.ReplaceAll(text, "\n", " "), maxContextReviewRune))
			b.WriteString("\n")
		}
	}
	return b.String()
}
