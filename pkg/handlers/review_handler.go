package handlers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"review-insight-api/pkg/models"
	"review-insight-api/pkg/services"

	"github.com/gin-gonic/gin"
)

const invalidFileMessage = "please provide a valid Excel file"

// ReviewHandler はレビューファイルの取り込みとデータセット操作のハンドラです。
type ReviewHandler struct {
	pipeline       *services.ReviewPipeline
	datasets       *services.DatasetStore
	apple          *services.AppleImportService
	monitoring     *services.MonitoringService
	index          *services.ReviewIndex
	maxUploadBytes int64
}

// NewReviewHandler は新しいReviewHandlerを生成します。
func NewReviewHandler(pipeline *services.ReviewPipeline, datasets *services.DatasetStore, apple *services.AppleImportService, monitoring *services.MonitoringService, maxUploadMB int) *ReviewHandler {
	if maxUploadMB <= 0 {
		maxUploadMB = 20
	}
	return &ReviewHandler{
		pipeline:       pipeline,
		datasets:       datasets,
		apple:          apple,
		monitoring:     monitoring,
		maxUploadBytes: int64(maxUploadMB) << 20,
	}
}

// SetReviewIndex 取り込み後にQdrantへ索引する
func (h *ReviewHandler) SetReviewIndex(index *services.ReviewIndex) {
	h.index = index
}

// UploadReviews multipartの file を解析して集計結果をデータセットとして登録します。
func (h *ReviewHandler) UploadReviews(c *gin.Context) {
	start := time.Now()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	file, header, err := c.Request.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{
				"success": false,
				"error":   fmt.Sprintf("ファイルサイズが上限(%dMB)を超えています。", h.maxUploadBytes>>20),
			})
			return
		}
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "ファイルの取得に失敗しました。"})
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "ファイルの読み込みに失敗しました。"})
		return
	}

	log.Printf("📂 [アップロード] %s (%d bytes)", header.Filename, len(data))
	aggregated, err := h.pipeline.ProcessFile(header.Filename, data)
	if err != nil {
		h.recordIngestion("upload", header.Filename, 0, start, err)
		if errors.Is(err, services.ErrInvalidSpreadsheet) {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": invalidFileMessage})
			return
		}
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "error": err.Error()})
		return
	}

	ds := h.datasets.Put("upload", header.Filename, aggregated)
	h.recordIngestion("upload", header.Filename, aggregated.Summary.TotalReviews, start, nil)
	h.indexInBackground(ds)

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"datasetId": ds.ID,
		"fileName":  ds.FileName,
		"data":      aggregated,
	})
}

// ImportAppleReviews App Store Connectの資格情報と.p8ファイルを受け取り、取得したレビューを集計します。
func (h *ReviewHandler) ImportAppleReviews(c *gin.Context) {
	start := time.Now()
	c.Request.Body = http.MaxBytesReader(c.Writer, c.Request.Body, h.maxUploadBytes)

	req := models.AppleImportRequest{
		AppID:    c.PostForm("appId"),
		IssuerID: c.PostForm("issuerId"),
		KeyID:    c.PostForm("keyId"),
		Country:  c.PostForm("country"),
	}
	if req.AppID == "" || req.IssuerID == "" || req.KeyID == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "appId, issuerId, keyId は必須です。"})
		return
	}

	file, header, err := c.Request.FormFile("privateKey")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "秘密鍵ファイル(.p8)が必要です。"})
		return
	}
	defer file.Close()
	if req.PrivateKey, err = io.ReadAll(file); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "秘密鍵ファイルの読み込みに失敗しました。"})
		return
	}
	req.KeyFileName = header.Filename

	source := fmt.Sprintf("App Store %s", req.AppID)
	res, err := h.apple.FetchReviews(c.Request.Context(), req)
	if err != nil {
		h.recordIngestion("apple", source, 0, start, err)
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "error": err.Error()})
		return
	}

	// App Store Connect 由来であることを行に残し、プラットフォーム判定に使わせる。
	// null の要素は空行として扱う（デフォルト値のレビューになる）
	for i, row := range res.Reviews {
		if row == nil {
			row = models.RawRow{}
			res.Reviews[i] = row
		}
		if _, ok := row["source"]; !ok {
			row["source"] = "App Store Connect"
		}
	}
	aggregated := h.pipeline.Aggregate(h.pipeline.ProcessRows(res.Reviews))
	ds := h.datasets.Put("apple", source, aggregated)
	h.recordIngestion("apple", source, aggregated.Summary.TotalReviews, start, nil)
	h.indexInBackground(ds)

	c.JSON(http.StatusOK, gin.H{
		"success":   true,
		"datasetId": ds.ID,
		"fileName":  ds.FileName,
		"fromCache": res.FromCache,
		"sources":   res.Sources,
		"data":      aggregated,
	})
}

// ListDatasets 登録済みデータセットの一覧
func (h *ReviewHandler) ListDatasets(c *gin.Context) {
	list := h.datasets.List()
	c.JSON(http.StatusOK, gin.H{"success": true, "count": len(list), "datasets": list})
}

// GetDataset データセットの集計結果を返す
func (h *ReviewHandler) GetDataset(c *gin.Context) {
	ds, ok := h.datasets.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "データセットが見つかりません。"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "dataset": ds})
}

// DetectAnomalies レビュー件数・否定率の急変を検出（?granularity=daily|weekly|monthly）
func (h *ReviewHandler) DetectAnomalies(c *gin.Context) {
	ds, ok := h.datasets.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "データセットが見つかりません。"})
		return
	}

	granularity := c.DefaultQuery("granularity", services.GranularityWeekly)
	anomalies, err := services.DetectReviewAnomalies(ds.Data.TimeSeriesData, granularity)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":     true,
		"granularity": granularity,
		"count":       len(anomalies),
		"anomalies":   anomalies,
	})
}

// DeleteDataset データセットを削除
func (h *ReviewHandler) DeleteDataset(c *gin.Context) {
	id := c.Param("id")
	if !h.datasets.Delete(id) {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "データセットが見つかりません。"})
		return
	}

	if h.index != nil {
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
			defer cancel()
			if err := h.index.DeleteDataset(ctx, id); err != nil {
				log.Printf("⚠️ [レビュー索引] データセット %s の削除に失敗: %v", id, err)
			}
		}()
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "message": "データセットを削除しました。"})
}

// FilterReviews データセットのレビューを条件で絞り込む
func (h *ReviewHandler) FilterReviews(c *gin.Context) {
	ds, ok := h.datasets.Get(c.Param("id"))
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "error": "データセットが見つかりません。"})
		return
	}

	var filter models.ReviewFilter
	if err := c.ShouldBindQuery(&filter); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "クエリパラメータが不正です: " + err.Error()})
		return
	}
	if filter.MinRating > 0 && filter.MaxRating > 0 && filter.MinRating > filter.MaxRating {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "error": "minRating は maxRating 以下にしてください。"})
		return
	}

	matched := services.FilterReviews(ds.Data.Reviews, filter)
	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"filter":  filter,
		"total":   len(matched),
		"reviews": matched,
	})
}

func (h *ReviewHandler) recordIngestion(source, fileName string, reviews int, start time.Time, err error) {
	if h.monitoring == nil {
		return
	}
	entry := services.IngestionEntry{
		Source:   source,
		FileName: fileName,
		Reviews:  reviews,
		Duration: time.Since(start),
	}
	if err != nil {
		entry.Error = err.Error()
	}
	h.monitoring.RecordIngestion(entry)
}

func (h *ReviewHandler) indexInBackground(ds *models.Dataset) {
	if h.index == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
		defer cancel()
		if _, err := h.index.IndexReviews(ctx, ds.ID, ds.Data.Reviews); err != nil {
			log.Printf("⚠️ [レビュー索引] データセット %s の索引に失敗: %v", ds.ID, err)
		}
	}()
}
