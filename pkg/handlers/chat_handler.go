package handlers

import (
	"errors"
	"log"
	"net/http"

	"review-insight-api/pkg/models"
	"review-insight-api/pkg/services"

	"github.com/gin-gonic/gin"
)

// ChatHandler はデータセットについてのチャットのハンドラです。
type ChatHandler struct {
	chat *services.ChatService
}

// NewChatHandler は新しいChatHandlerを生成します。
func NewChatHandler(chat *services.ChatService) *ChatHandler {
	return &ChatHandler{chat: chat}
}

// Chat 質問を受け取りAIの回答を返す
func (h *ChatHandler) Chat(c *gin.Context) {
	var req models.ChatRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "リクエストの形式が正しくありません: " + err.Error()})
		return
	}

	resp, err := h.chat.Ask(c.Request.Context(), req)
	if err != nil {
		switch {
		case errors.Is(err, services.ErrDatasetNotFound):
			c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "データセットが見つかりません。"})
		case errors.Is(err, services.ErrLLMNotConfigured):
			c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "error": "AIサービスが設定されていません。"})
		default:
			log.Printf("❌ [チャット] %v", err)
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": "AI応答の生成に失敗しました。"})
		}
		return
	}

	c.JSON(http.StatusOK, resp)
}

// ClearSession セッションの会話履歴を削除
func (h *ChatHandler) ClearSession(c *gin.Context) {
	sessionID := c.Param("sessionId")
	if err := h.chat.ClearSession(c.Request.Context(), sessionID); err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "sessionId": sessionID})
}
