package report

import (
	"bytes"
	"strings"
	"testing"

	"review-insight-api/pkg/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleData() *models.AggregatedData {
	return &models.AggregatedData{
		Summary:               models.Summary{TotalReviews: 4, AvgRating: 3.25},
		RatingDistribution:    map[int]int{1: 1, 2: 0, 3: 1, 4: 0, 5: 2},
		SentimentDistribution: map[string]int{"Positive": 2, "Neutral": 1, "Negative": 1},
		PlatformDistribution:  map[string]int{"iOS": 3, "Android": 1},
		CategoryDistribution:  map[string]int{"General": 2, "Bug Report": 1, "Performance": 1},
		TopKeywords: []models.KeywordCount{
			{Word: "crash", Count: 3},
			{Word: "widget", Count: 2},
			{Word: "battery", Count: 1},
		},
		ResponseRate: 25,
	}
}

func TestSummaryTable(t *testing.T) {
	out := SummaryTable(sampleData())
	assert.Contains(t, out, "Total reviews")
	assert.Contains(t, out, "3.25")
	assert.Contains(t, out, "25%")
}

func TestRatingTableOrder(t *testing.T) {
	out := RatingTable(sampleData())
	five := strings.Index(out, "★★★★★")
	one := strings.LastIndex(out, "│ ★ ")
	require.NotEqual(t, -1, five)
	require.NotEqual(t, -1, one)
	assert.Less(t, five, one)
	assert.Contains(t, out, "50.0%")
}

func TestDistributionTableSortedByCount(t *testing.T) {
	out := DistributionTable("Category", sampleData().CategoryDistribution, 4)
	general := strings.Index(out, "General")
	bug := strings.Index(out, "Bug Report")
	perf := strings.Index(out, "Performance")
	assert.Less(t, general, bug)
	assert.Less(t, bug, perf)
	assert.Contains(t, strings.ToUpper(out), "TOTAL")
}

func TestKeywordTableLimit(t *testing.T) {
	out := KeywordTable(sampleData().TopKeywords, 2)
	assert.Contains(t, out, "crash")
	assert.Contains(t, out, "widget")
	assert.NotContains(t, out, "battery")
}

func TestRenderEmpty(t *testing.T) {
	var buf bytes.Buffer
	data := &models.AggregatedData{
		RatingDistribution:    map[int]int{1: 0, 2: 0, 3: 0, 4: 0, 5: 0},
		SentimentDistribution: map[string]int{"Positive": 0, "Neutral": 0, "Negative": 0},
	}
	require.NoError(t, Render(&buf, data, 10))
	assert.Contains(t, buf.String(), "0.0%")
	assert.Contains(t, strings.ToUpper(buf.String()), "TOP KEYWORDS")
}

func TestAnomalyTable(t *testing.T) {
	out := AnomalyTable("daily", []models.ReviewAnomaly{
		{Period: "2024-03-08", Metric: "volume", ActualValue: 10, ExpectedValue: 2, AnomalyType: "急増", Severity: "high"},
	})
	assert.Contains(t, out, "2024-03-08")
	assert.Contains(t, out, "急増")
	assert.Contains(t, strings.ToUpper(out), "ANOMALIES (DAILY)")

	assert.Contains(t, AnomalyTable("weekly", nil), "none")
}
