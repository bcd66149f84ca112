// Package report は集計結果をターミナル向けの表にします。
package report

import (
	"fmt"
	"io"
	"sort"
	"strings"

	"review-insight-api/pkg/models"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"
)

// Render すべての表を順に書き出す
func Render(w io.Writer, data *models.AggregatedData, topKeywords int) error {
	sections := []string{
		SummaryTable(data),
		RatingTable(data),
		DistributionTable("Sentiment", data.SentimentDistribution, data.Summary.TotalReviews),
		DistributionTable("Platform", data.PlatformDistribution, data.Summary.TotalReviews),
		DistributionTable("Category", data.CategoryDistribution, data.Summary.TotalReviews),
		KeywordTable(data.TopKeywords, topKeywords),
	}
	_, err := io.WriteString(w, strings.Join(sections, "\n\n")+"\n")
	return err
}

func newTable(title string) table.Writer {
	t := table.NewWriter()
	t.SetTitle(title)
	t.SetStyle(table.StyleLight)
	return t
}

// SummaryTable 件数・平均評価・返信率
func SummaryTable(data *models.AggregatedData) string {
	t := newTable("Summary")
	t.AppendRows([]table.Row{
		{"Total reviews", data.Summary.TotalReviews},
		{"Average rating", fmt.Sprintf("%.2f", data.Summary.AvgRating)},
		{"Response rate", fmt.Sprintf("%d%%", data.ResponseRate)},
		{"Days covered", len(data.TimeSeriesData)},
	})
	return t.Render()
}

// RatingTable 星ごとの件数（5→1）
func RatingTable(data *models.AggregatedData) string {
	t := newTable("Ratings")
	t.AppendHeader(table.Row{"Stars", "Count", "Share"})
	for star := 5; star >= 1; star-- {
		count := data.RatingDistribution[star]
		t.AppendRow(table.Row{strings.Repeat("★", star), count, share(count, data.Summary.TotalReviews)})
	}
	t.SetColumnConfigs([]table.ColumnConfig{
		{Number: 2, Align: text.AlignRight},
		{Number: 3, Align: text.AlignRight},
	})
	return t.Render()
}

// DistributionTable 件数の多い順（同数は名前順）
func DistributionTable(title string, counts map[string]int, total int) string {
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	t := newTable(title)
	t.AppendHeader(table.Row{title, "Count", "Share"})
	for _, k := range keys {
		t.AppendRow(table.Row{k, counts[k], share(counts[k], total)})
	}
	t.AppendFooter(table.Row{"Total", total, ""})
	return t.Render()
}

// KeywordTable 上位n件のキーワード（n<=0 なら全件）
func KeywordTable(keywords []models.KeywordCount, n int) string {
	t := newTable("Top keywords")
	t.AppendHeader(table.Row{"#", "Keyword", "Count"})
	for i, kw := range keywords {
		if n > 0 && i >= n {
			break
		}
		t.AppendRow(table.Row{i + 1, kw.Word, kw.Count})
	}
	return t.Render()
}

func share(count, total int) string {
	if total == 0 {
		return "0.0%"
	}
	return fmt.Sprintf("%.1f%%", float64(count)/float64(total)*100)
}

// AnomalyTable 件数・否定率の急変一覧
func AnomalyTable(granularity string, anomalies []models.ReviewAnomaly) string {
	t := newTable(fmt.Sprintf("Anomalies (%s)", granularity))
	t.AppendHeader(table.Row{"Period", "Metric", "Actual", "Expected", "Type", "Severity"})
	for _, a := range anomalies {
		t.AppendRow(table.Row{a.Period, a.Metric, a.ActualValue, a.ExpectedValue, a.AnomalyType, a.Severity})
	}
	if len(anomalies) == 0 {
		t.AppendRow(table.Row{"-", "none", "", "", "", ""})
	}
	return t.Render()
}
