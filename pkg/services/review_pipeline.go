package services

import (
	"log"
	"time"

	"review-insight-api/pkg/models"
)

// ReviewPipeline 正規化 -> 感情判定 -> キーワード/カテゴリ抽出 -> 集計 を行います。
// 状態を持たないため同じ入力に対して何度実行しても同じ結果になります。
type ReviewPipeline struct {
	normalizer *Normalizer
	aggregator *Aggregator
}

// NewReviewPipeline 時計を指定して作成（nilなら time.Now）
func NewReviewPipeline(now func() time.Time) *ReviewPipeline {
	return &ReviewPipeline{
		normalizer: NewNormalizer(now),
		aggregator: NewAggregator(now),
	}
}

// ProcessRow 1行をすべての属性が埋まったReviewに変換
func (p *ReviewPipeline) ProcessRow(row models.RawRow, index int) models.Review {
	review := p.normalizer.Normalize(row, index)
	LabelSentiment(row, &review)
	review.Keywords = ExtractKeywords(review.Content)
	review.Category = Categorize(review.Content)
	return review
}

// ProcessRows 行配列をReview配列に変換
func (p *ReviewPipeline) ProcessRows(rows []models.RawRow) []models.Review {
	reviews := make([]models.Review, 0, len(rows))
	for i, row := range rows {
		reviews = append(reviews, p.ProcessRow(row, i))
	}
	return reviews
}

// Aggregate レビュー配列を集計
func (p *ReviewPipeline) Aggregate(reviews []models.Review) *models.AggregatedData {
	return p.aggregator.Aggregate(reviews)
}

// ProcessFile ファイルを読み込んで集計まで行います。ファイル自体が読めない場合のみエラーを返します。
func (p *ReviewPipeline) ProcessFile(fileName string, data []byte) (*models.AggregatedData, error) {
	start := time.Now()

	rows, err := ParseSpreadsheet(fileName, data)
	if err != nil {
		log.Printf("❌ [レビュー解析] ファイルの読み込みに失敗: %v", err)
		return nil, err
	}

	reviews := p.ProcessRows(rows)
	aggregated := p.Aggregate(reviews)

	log.Printf("📊 [レビュー解析] %s: %d件, 平均評価 %.2f, 所要時間 %v",
		fileName, aggregated.Summary.TotalReviews, aggregated.Summary.AvgRating, time.Since(start))
	return aggregated, nil
}
