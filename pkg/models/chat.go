package models

import "time"

// ChatRequest represents an incoming chat request
type ChatRequest struct {
	Message   string `json:"message" binding:"required"`
	SessionID string `json:"sessionId,omitempty"` // セッションIDで会話を紐付け
	DatasetID string `json:"datasetId,omitempty"` // 参照するレビューデータセット
}

// ChatResponse represents the response from the chat API
type ChatResponse struct {
	Response       string    `json:"response"`
	SessionID      string    `json:"sessionId"`
	DatasetID      string    `json:"datasetId,omitempty"`
	Model          string    `json:"model"`
	HistoryCount   int       `json:"historyCount"`             // 使用した過去の会話数
	RelatedReviews []string  `json:"relatedReviews,omitempty"` // ベクトル検索でヒットしたレビュー
	Timestamp      time.Time `json:"timestamp"`
}

// ChatMessage チャット履歴の1エントリー
type ChatMessage struct {
	SessionID string    `json:"sessionId"`
	Role      string    `json:"role"` // "user" or "assistant"
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"createdAt"`
}
