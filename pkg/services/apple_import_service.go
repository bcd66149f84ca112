package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"mime/multipart"
	"net/http"
	"time"

	"review-insight-api/pkg/models"
)

// AppleImportService はApp Store Connectのレビューを取得するバックエンドを呼び出します。
// JWTの署名はバックエンド側で行うため、ここでは資格情報と.p8ファイルを転送するだけです。
type AppleImportService struct {
	endpoint   string
	httpClient *http.Client
}

// NewAppleImportService は新しいAppleImportServiceを生成します。
func NewAppleImportService(endpoint string) *AppleImportService {
	return &AppleImportService{
		endpoint:   endpoint,
		httpClient: &http.Client{Timeout: 2 * time.Minute},
	}
}

// FetchReviews 生のレビュー行を返す。success=false や2xx以外はエラー
func (s *AppleImportService) FetchReviews(ctx context.Context, req models.AppleImportRequest) (*models.AppleImportResponse, error) {
	if req.AppID == "" || req.IssuerID == "" || req.KeyID == "" {
		return nil, fmt.Errorf("appId, issuerId, keyId は必須です")
	}
	if len(req.PrivateKey) == 0 {
		return nil, fmt.Errorf("秘密鍵ファイル(.p8)が空です")
	}

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	fields := []struct{ name, value string }{
		{"appId", req.AppID},
		{"issuerId", req.IssuerID},
		{"keyId", req.KeyID},
		{"country", req.Country},
	}
	for _, f := range fields {
		if f.value == "" {
			continue
		}
		if err := w.WriteField(f.name, f.value); err != nil {
			return nil, fmt.Errorf("フォームの作成に失敗: %w", err)
		}
	}
	fileName := req.KeyFileName
	if fileName == "" {
		fileName = fmt.Sprintf("AuthKey_%s.p8", req.KeyID)
	}
	part, err := w.CreateFormFile("privateKey", fileName)
	if err != nil {
		return nil, fmt.Errorf("フォームの作成に失敗: %w", err)
	}
	if _, err := part.Write(req.PrivateKey); err != nil {
		return nil, fmt.Errorf("フォームの作成に失敗: %w", err)
	}
	if err := w.Close(); err != nil {
		return nil, fmt.Errorf("フォームの作成に失敗: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, s.endpoint, &body)
	if err != nil {
		return nil, fmt.Errorf("HTTPリクエストの作成に失敗: %w", err)
	}
	httpReq.Header.Set("Content-Type", w.FormDataContentType())

	log.Printf("🍎 [Appleインポート] appId=%s country=%s のレビューを取得します", req.AppID, req.Country)
	resp, err := s.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("インポート用バックエンドへの接続に失敗: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("レスポンスの読み取りに失敗: %w", err)
	}

	var result models.AppleImportResponse
	decodeErr := json.Unmarshal(raw, &result)

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		if decodeErr == nil && result.Error != "" {
			return nil, fmt.Errorf("インポートに失敗 (status %d): %s", resp.StatusCode, result.Error)
		}
		return nil, fmt.Errorf("インポートに失敗 (status %d): %s", resp.StatusCode, string(raw))
	}
	if decodeErr != nil {
		return nil, fmt.Errorf("レスポンスのJSONデコードに失敗: %w", decodeErr)
	}
	if !result.Success {
		msg := result.Error
		if msg == "" {
			msg = "unknown error"
		}
		return nil, fmt.Errorf("インポートに失敗: %s", msg)
	}

	log.Printf("✅ [Appleインポート] %d 件取得 (cache=%v)", len(result.Reviews), result.FromCache)
	return &result, nil
}
