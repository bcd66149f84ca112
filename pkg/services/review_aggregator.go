package services

import (
	"math"
	"sort"
	"strings"
	"time"

	"review-insight-api/pkg/models"
)

const maxTopKeywords = 20

// Aggregator はレビュー配列を集計スナップショットに変換します。
type Aggregator struct {
	now func() time.Time
}

// NewAggregator lastUpdated に使う時計を指定して作成（nilなら time.Now）
func NewAggregator(now func() time.Time) *Aggregator {
	if now == nil {
		now = time.Now
	}
	return &Aggregator{now: now}
}

type dayBucket struct {
	count      int
	ratingSum  int
	ratedCount int
	sentiments map[string]int
}

// Aggregate は1パスで各分布・日別系列・キーワード頻度を集計します。
// 空の入力でもすべてのネスト構造をゼロ値で埋めて返します。入力スライスは変更しません。
func (a *Aggregator) Aggregate(reviews []models.Review) *models.AggregatedData {
	ratingDist := newRatingDistribution()
	summaryDist := newRatingDistribution()
	sentimentDist := newSentimentCounts()
	categoryDist := make(map[string]int)
	platformDist := make(map[string]int)
	days := make(map[string]*dayBucket)
	keywordCounts := make(map[string]int)
	var keywordOrder []string

	ratingSum, ratedCount, responded := 0, 0, 0

	for _, r := range reviews {
		if r.Rating >= 1 && r.Rating <= 5 {
			ratingDist[r.Rating]++
			summaryDist[r.Rating]++
		}
		if r.Rating > 0 {
			ratingSum += r.Rating
			ratedCount++
		}

		sentimentDist[r.Sentiment]++
		categoryDist[r.Category]++
		platformDist[r.Platform]++

		if strings.TrimSpace(r.Response) != "" {
			responded++
		}

		for _, kw := range r.Keywords {
			if keywordCounts[kw] == 0 {
				keywordOrder = append(keywordOrder, kw)
			}
			keywordCounts[kw]++
		}

		// 日付が不正なレビューは日別系列にのみ含めない
		if r.Date.IsZero() {
			continue
		}
		key := r.Date.UTC().Format("2006-01-02")
		b, ok := days[key]
		if !ok {
			b = &dayBucket{sentiments: newSentimentCounts()}
			days[key] = b
		}
		b.count++
		b.sentiments[r.Sentiment]++
		if r.Rating > 0 {
			b.ratingSum += r.Rating
			b.ratedCount++
		}
	}

	avgRating := 0.0
	if ratedCount > 0 {
		avgRating = round2(float64(ratingSum) / float64(ratedCount))
	}

	responseRate := 0
	if len(reviews) > 0 {
		responseRate = int(math.Round(float64(responded) / float64(len(reviews)) * 100))
	}

	return &models.AggregatedData{
		Summary: models.Summary{
			TotalReviews: len(reviews),
			AvgRating:    avgRating,
			Distribution: summaryDist,
			LastUpdated:  a.now().UTC(),
		},
		RatingDistribution:    ratingDist,
		SentimentDistribution: sentimentDist,
		SentimentBreakdown: map[string]int{
			"positive": sentimentDist[models.SentimentPositive],
			"neutral":  sentimentDist[models.SentimentNeutral],
			"negative": sentimentDist[models.SentimentNegative],
		},
		CategoryDistribution: categoryDist,
		PlatformDistribution: platformDist,
		TimeSeriesData:       buildTimeSeries(days),
		TopKeywords:          topKeywords(keywordOrder, keywordCounts, maxTopKeywords),
		Reviews:              sortByDateDesc(reviews),
		ResponseRate:         responseRate,
	}
}

func newRatingDistribution() map[int]int {
	return map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0}
}

func newSentimentCounts() map[string]int {
	return map[string]int{
		models.SentimentPositive: 0,
		models.SentimentNeutral:  0,
		models.SentimentNegative: 0,
	}
}

func buildTimeSeries(days map[string]*dayBucket) []models.TimeSeriesPoint {
	keys := make([]string, 0, len(days))
	for k := range days {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	series := make([]models.TimeSeriesPoint, 0, len(keys))
	for _, k := range keys {
		b := days[k]
		avg := 0.0
		if b.ratedCount > 0 {
			avg = round2(float64(b.ratingSum) / float64(b.ratedCount))
		}
		series = append(series, models.TimeSeriesPoint{
			Date:       k,
			Count:      b.count,
			AvgRating:  avg,
			Sentiments: b.sentiments,
		})
	}
	return series
}

// topKeywords 出現回数の降順（同数は初出順）で上位n件
func topKeywords(order []string, counts map[string]int, n int) []models.KeywordCount {
	sorted := make([]string, len(order))
	copy(sorted, order)
	sort.SliceStable(sorted, func(i, j int) bool {
		return counts[sorted[i]] > counts[sorted[j]]
	})
	if len(sorted) > n {
		sorted = sorted[:n]
	}

	result := make([]models.KeywordCount, 0, len(sorted))
	for _, w := range sorted {
		result = append(result, models.KeywordCount{Word: w, Count: counts[w]})
	}
	return result
}

func sortByDateDesc(reviews []models.Review) []models.Review {
	sorted := make([]models.Review, len(reviews))
	copy(sorted, reviews)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.After(sorted[j].Date)
	})
	return sorted
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
