// Package store はチャットセッション履歴の保存先を提供します。
package store

import (
	"context"
	"sync"

	"review-insight-api/pkg/models"
)

// SessionStore はセッションIDごとのチャット履歴リポジトリです。
type SessionStore interface {
	Append(ctx context.Context, msg models.ChatMessage) error
	// History 直近limit件を古い順で返す（limit<=0 は全件）
	History(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error)
	Clear(ctx context.Context, sessionID string) error
}

// MemorySessionStore プロセス内に保持する実装
type MemorySessionStore struct {
	sessions map[string][]models.ChatMessage
	mu       sync.RWMutex
}

// NewMemorySessionStore は新しいMemorySessionStoreを生成します。
func NewMemorySessionStore() *MemorySessionStore {
	return &MemorySessionStore{
		sessions: make(map[string][]models.ChatMessage),
	}
}

func (s *MemorySessionStore) Append(_ context.Context, msg models.ChatMessage) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sessions[msg.SessionID] = append(s.sessions[msg.SessionID], msg)
	return nil
}

func (s *MemorySessionStore) History(_ context.Context, sessionID string, limit int) ([]models.ChatMessage, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	msgs := s.sessions[sessionID]
	if limit > 0 && len(msgs) > limit {
		msgs = msgs[len(msgs)-limit:]
	}
	out := make([]models.ChatMessage, len(msgs))
	copy(out, msgs)
	return out, nil
}

func (s *MemorySessionStore) Clear(_ context.Context, sessionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sessions, sessionID)
	return nil
}
