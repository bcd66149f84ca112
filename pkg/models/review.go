package models

import (
	"encoding/json"
	"time"
)

// RawRow はスプレッドシートの1行（ヘッダー名 -> セル値）です。
// 列名はエクスポート元（App Store / Google Play など）によって異なります。
type RawRow map[string]interface{}

// 感情ラベル
const (
	SentimentPositive = "Positive"
	SentimentNeutral  = "Neutral"
	SentimentNegative = "Negative"
)

// カテゴリ
const (
	CategoryBugReport      = "Bug Report"
	CategoryFeatureRequest = "Feature Request"
	CategoryPerformance    = "Performance"
	CategoryUIUX           = "UI/UX"
	CategoryGeneral        = "General"
)

// プラットフォーム
const (
	PlatformIOS     = "iOS"
	PlatformAndroid = "Android"
	PlatformUnknown = "Unknown"
)

// Review は正規化済みのレビュー1件です。
type Review struct {
	ID       int       `json:"id"` // バッチ内の連番（再インポートで変わる）
	Rating   int       `json:"rating"`
	Title    string    `json:"title"`
	Content  string    `json:"content"`
	Body     string    `json:"body"`
	Author   string    `json:"author"`
	Date     time.Time `json:"date"`
	Version  string    `json:"version"`
	Device   string    `json:"device"`
	OS       string    `json:"os"`
	Country  string    `json:"country"`
	Language string    `json:"language"`
	Response string    `json:"response"`
	Platform string    `json:"platform"`

	Sentiment      string   `json:"sentiment"`
	SentimentScore float64  `json:"sentimentScore"`
	PositiveWords  []string `json:"positiveWords"`
	NegativeWords  []string `json:"negativeWords"`

	Keywords []string `json:"keywords"`
	Category string   `json:"category"`

	// Extra どのエイリアスにも該当しなかった列（デバッグ用にそのまま保持）
	Extra map[string]interface{} `json:"extra,omitempty"`
}

// Summary 集計のサマリー
type Summary struct {
	TotalReviews int         `json:"totalReviews"`
	AvgRating    float64     `json:"avgRating"`
	Distribution map[int]int `json:"distribution"`
	LastUpdated  time.Time   `json:"lastUpdated"`
}

// TimeSeriesPoint 日別の集計
type TimeSeriesPoint struct {
	Date       string         `json:"date"` // YYYY-MM-DD (UTC)
	Count      int            `json:"count"`
	AvgRating  float64        `json:"avgRating"`
	Sentiments map[string]int `json:"sentiments"`
}

// KeywordCount キーワードと出現回数
type KeywordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// AggregatedData はレビュー配列から作られる集計スナップショットです。
// ネストした構造はすべて非nilで返します（描画側でnullチェック不要）。
type AggregatedData struct {
	Summary               Summary           `json:"summary"`
	RatingDistribution    map[int]int       `json:"ratingDistribution"`
	SentimentDistribution map[string]int    `json:"sentimentDistribution"`
	SentimentBreakdown    map[string]int    `json:"sentimentBreakdown"`
	CategoryDistribution  map[string]int    `json:"categoryDistribution"`
	PlatformDistribution  map[string]int    `json:"platformDistribution"`
	TimeSeriesData        []TimeSeriesPoint `json:"timeSeriesData"`
	TopKeywords           []KeywordCount    `json:"topKeywords"`
	Reviews               []Review          `json:"reviews"`
	ResponseRate          int               `json:"responseRate"`
}

// Dataset アップロード/インポート1回分の結果
type Dataset struct {
	ID        string          `json:"id"`
	Source    string          `json:"source"` // "upload" or "apple"
	FileName  string          `json:"fileName,omitempty"`
	CreatedAt time.Time       `json:"createdAt"`
	Data      *AggregatedData `json:"data"`
}

// DatasetInfo 一覧表示用（レビュー本体を含まない）
type DatasetInfo struct {
	ID           string    `json:"id"`
	Source       string    `json:"source"`
	FileName     string    `json:"fileName,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
	TotalReviews int       `json:"totalReviews"`
	AvgRating    float64   `json:"avgRating"`
}

// ReviewFilter トピックフィルタの条件（ゼロ値は条件なし）
type ReviewFilter struct {
	Keyword   string `form:"keyword" json:"keyword,omitempty"`
	Category  string `form:"category" json:"category,omitempty"`
	Platform  string `form:"platform" json:"platform,omitempty"`
	Sentiment string `form:"sentiment" json:"sentiment,omitempty"`
	MinRating int    `form:"minRating" json:"minRating,omitempty"`
	MaxRating int    `form:"maxRating" json:"maxRating,omitempty"`
}

// AppleImportRequest App Store Connect インポートの資格情報
type AppleImportRequest struct {
	AppID       string
	IssuerID    string
	KeyID       string
	Country     string
	PrivateKey  []byte
	KeyFileName string
}

// AppleImportResponse インポート用バックエンドのレスポンス
type AppleImportResponse struct {
	Success   bool            `json:"success"`
	Reviews   []RawRow        `json:"reviews"`
	FromCache bool            `json:"fromCache"`
	Sources   json.RawMessage `json:"sources,omitempty"`
	Error     string          `json:"error,omitempty"`
}

// ReviewAnomaly 期間ごとのレビュー件数・否定率の急変
type ReviewAnomaly struct {
	Period        string  `json:"period"` // 2024-03-01, 2024-W09, 2024-03
	Metric        string  `json:"metric"` // "volume" or "negativeShare"
	ActualValue   float64 `json:"actualValue"`
	ExpectedValue float64 `json:"expectedValue"` // 直前ウィンドウの移動平均
	Deviation     float64 `json:"deviation"`
	ZScore        float64 `json:"zScore"`
	AnomalyType   string  `json:"anomalyType"` // "急増" or "急減"
	Severity      string  `json:"severity"`    // "low", "medium", "high", "critical"
}
