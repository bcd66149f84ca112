package services

import (
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	"review-insight-api/pkg/models"
)

// 集計粒度
const (
	GranularityDaily   = "daily"
	GranularityWeekly  = "weekly"
	GranularityMonthly = "monthly"
)

const (
	MetricVolume        = "volume"
	MetricNegativeShare = "negativeShare"
)

var ErrUnknownGranularity = errors.New("unknown granularity")

type trendWindow struct {
	size      int
	threshold float64 // 移動平均からの乖離率
}

var trendWindows = map[string]trendWindow{
	GranularityDaily:   {size: 7, threshold: 0.5},
	GranularityWeekly:  {size: 4, threshold: 0.4},
	GranularityMonthly: {size: 3, threshold: 0.3},
}

type trendPeriod struct {
	key      string
	count    int
	negative int
}

// DetectReviewAnomalies 日別系列を粒度ごとに集約し、直前ウィンドウの移動平均から大きく外れた期間を返します。
// 件数（volume）と否定的レビューの割合（negativeShare）の2指標を見ます。
func DetectReviewAnomalies(series []models.TimeSeriesPoint, granularity string) ([]models.ReviewAnomaly, error) {
	if granularity == "" {
		granularity = GranularityWeekly
	}
	window, ok := trendWindows[granularity]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownGranularity, granularity)
	}

	periods := groupSeries(series, granularity)
	anomalies := []models.ReviewAnomaly{}
	if len(periods) <= window.size {
		log.Printf("[傾向分析] データが少なく、移動平均を計算できません（%d期間 <= %d）", len(periods), window.size)
		return anomalies, nil
	}

	volume := make([]float64, len(periods))
	negShare := make([]float64, len(periods))
	for i, p := range periods {
		volume[i] = float64(p.count)
		if p.count > 0 {
			negShare[i] = float64(p.negative) / float64(p.count)
		}
	}

	anomalies = append(anomalies, movingAverageAnomalies(periods, volume, MetricVolume, window)...)
	anomalies = append(anomalies, movingAverageAnomalies(periods, negShare, MetricNegativeShare, window)...)

	log.Printf("[傾向分析] 粒度 %s: %d期間から %d 件の急変を検出しました", granularity, len(periods), len(anomalies))
	return anomalies, nil
}

func movingAverageAnomalies(periods []trendPeriod, values []float64, metric string, w trendWindow) []models.ReviewAnomaly {
	var out []models.ReviewAnomaly
	for i := w.size; i < len(values); i++ {
		window := values[i-w.size : i]
		mean := calculateMean(window)
		deviation := values[i] - mean
		if mean <= 0 || math.Abs(deviation) <= mean*w.threshold {
			continue
		}

		anomalyType := "急増"
		if deviation < 0 {
			anomalyType = "急減"
		}

		var zScore float64
		if sd := calculateStandardDeviation(window); sd > 0 {
			zScore = deviation / sd
		}

		out = append(out, models.ReviewAnomaly{
			Period:        periods[i].key,
			Metric:        metric,
			ActualValue:   round2(values[i]),
			ExpectedValue: round2(mean),
			Deviation:     round2(math.Abs(deviation)),
			ZScore:        round2(zScore),
			AnomalyType:   anomalyType,
			Severity:      anomalySeverity(math.Abs(zScore), zScore == 0),
		})
	}
	return out
}

// groupSeries 日別系列（日付昇順）を期間キーごとに合算
func groupSeries(series []models.TimeSeriesPoint, granularity string) []trendPeriod {
	var periods []trendPeriod
	index := make(map[string]int)

	for _, p := range series {
		t, err := time.Parse("2006-01-02", p.Date)
		if err != nil {
			log.Printf("[警告] 日付のパースに失敗: %s", p.Date)
			continue
		}
		key := periodKey(t, granularity)
		i, ok := index[key]
		if !ok {
			i = len(periods)
			index[key] = i
			periods = append(periods, trendPeriod{key: key})
		}
		periods[i].count += p.Count
		periods[i].negative += p.Sentiments[models.SentimentNegative]
	}
	return periods
}

func periodKey(t time.Time, granularity string) string {
	switch granularity {
	case GranularityWeekly:
		year, week := t.ISOWeek()
		return fmt.Sprintf("%d-W%02d", year, week)
	case GranularityMonthly:
		return t.Format("2006-01")
	default:
		return t.Format("2006-01-02")
	}
}

// anomalySeverity ウィンドウ内のばらつきがない（標準偏差0）場合の急変は常にhigh
func anomalySeverity(absZScore float64, flatWindow bool) string {
	switch {
	case flatWindow:
		return "high"
	case absZScore > 4.0:
		return "critical"
	case absZScore > 3.0:
		return "high"
	case absZScore > 2.0:
		return "medium"
	}
	return "low"
}

func calculateMean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}

// calculateStandardDeviation 母標準偏差
func calculateStandardDeviation(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	mean := calculateMean(values)
	sumSquaredDiff := 0.0
	for _, v := range values {
		diff := v - mean
		sumSquaredDiff += diff * diff
	}
	return math.Sqrt(sumSquaredDiff / float64(len(values)))
}
