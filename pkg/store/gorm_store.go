package store

import (
	"context"
	"fmt"
	"log"
	"time"

	"review-insight-api/pkg/models"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

// chatMessageRecord chat_messages テーブルの1行
type chatMessageRecord struct {
	ID        uint      `gorm:"primaryKey"`
	SessionID string    `gorm:"index;size:64"`
	Role      string    `gorm:"size:16"`
	Content   string    `gorm:"type:text"`
	CreatedAt time.Time `gorm:"index"`
}

func (chatMessageRecord) TableName() string {
	return "chat_messages"
}

// GormSessionStore gormでSQLiteに保存する実装
type GormSessionStore struct {
	db *gorm.DB
}

// NewGormSessionStore SQLiteファイルを開いてテーブルを作成します。
func NewGormSessionStore(path string) (*GormSessionStore, error) {
	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return nil, fmt.Errorf("SQLiteへの接続に失敗: %w", err)
	}
	log.Printf("💾 [チャット履歴] SQLite %s に接続しました", path)
	return NewGormSessionStoreWithDB(db)
}

// NewGormSessionStoreWithDB 既存の接続を使う
func NewGormSessionStoreWithDB(db *gorm.DB) (*GormSessionStore, error) {
	if err := db.AutoMigrate(&chatMessageRecord{}); err != nil {
		return nil, fmt.Errorf("chat_messages テーブルの作成に失敗: %w", err)
	}
	return &GormSessionStore{db: db}, nil
}

func (s *GormSessionStore) Append(ctx context.Context, msg models.ChatMessage) error {
	rec := chatMessageRecord{
		SessionID: msg.SessionID,
		Role:      msg.Role,
		Content:   msg.Content,
		CreatedAt: msg.CreatedAt,
	}
	if err := s.db.WithContext(ctx).Create(&rec).Error; err != nil {
		return fmt.Errorf("チャット履歴の保存に失敗: %w", err)
	}
	return nil
}

func (s *GormSessionStore) History(ctx context.Context, sessionID string, limit int) ([]models.ChatMessage, error) {
	var records []chatMessageRecord
	q := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Order("id desc")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&records).Error; err != nil {
		return nil, fmt.Errorf("チャット履歴の取得に失敗: %w", err)
	}

	// 新しい順で取得したので古い順に並べ直す
	msgs := make([]models.ChatMessage, 0, len(records))
	for i := len(records) - 1; i >= 0; i-- {
		r := records[i]
		msgs = append(msgs, models.ChatMessage{
			SessionID: r.SessionID,
			Role:      r.Role,
			Content:   r.Content,
			CreatedAt: r.CreatedAt,
		})
	}
	return msgs, nil
}

func (s *GormSessionStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.db.WithContext(ctx).Where("session_id = ?", sessionID).Delete(&chatMessageRecord{}).Error; err != nil {
		return fmt.Errorf("チャット履歴の削除に失敗: %w", err)
	}
	return nil
}
