// Package llm はチャット用のホスト型LLM（OpenAI / Azure OpenAI / Google Generative AI）へのRESTクライアントです。
package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// メッセージのロール
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// ChatMessage チャットメッセージ
type ChatMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// ChatCompleter はメッセージ列から応答テキストを生成します。
type ChatCompleter interface {
	Complete(ctx context.Context, messages []ChatMessage) (string, error)
	Model() string
}

// Embedder はテキストのベクトル表現を生成します。
type Embedder interface {
	CreateEmbedding(ctx context.Context, text string) ([]float32, error)
}

const defaultTimeout = 60 * time.Second

func newHTTPClient() *http.Client {
	return &http.Client{Timeout: defaultTimeout}
}

// postJSON はJSONをPOSTし、200以外はerrorExtractorでメッセージを取り出してエラーにします。
func postJSON(ctx context.Context, client *http.Client, url string, headers map[string]string, requestData, responseData interface{}, errorExtractor func([]byte) string) error {
	requestBody, err := json.Marshal(requestData)
	if err != nil {
		return fmt.Errorf("リクエストのJSON化に失敗: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewBuffer(requestBody))
	if err != nil {
		return fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}

	resp, err := client.Do(req)
	if err != nil {
		return fmt.Errorf("HTTPリクエストの実行に失敗: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("レスポンスの読み取りに失敗: %w", err)
	}

	if resp.StatusCode != http.StatusOK {
		if msg := errorExtractor(body); msg != "" {
			return fmt.Errorf("APIエラー (status: %d): %s", resp.StatusCode, msg)
		}
		return fmt.Errorf("APIエラー (status: %d): %s", resp.StatusCode, string(body))
	}

	if err := json.Unmarshal(body, responseData); err != nil {
		return fmt.Errorf("レスポンスのJSON解析に失敗: %w", err)
	}
	return nil
}
