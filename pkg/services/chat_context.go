package services

import (
	"fmt"
	"sort"
	"strings"

	"review-insight-api/pkg/models"
)

const (
	maxContextReviews    = 20
	maxContextReviewRune = 300
	maxContextKeywords   = 10
)

// BuildChatContext は集計結果をLLMに渡すテキストにまとめます。
func BuildChatContext(data *models.AggregatedData) string {
	if data == nil {
		return ""
	}

	var b strings.Builder
	s := data.Summary

	b.WriteString("## Review dataset summary\n")
	b.WriteString(fmt.Sprintf("- Total reviews: %d\n", s.TotalReviews))
	b.WriteString(fmt.Sprintf("- Average rating: %.2f / 5\n", s.AvgRating))
	b.WriteString(fmt.Sprintf("- Developer response rate: %d%%\n", data.ResponseRate))

	b.WriteString("\n## Rating distribution\n")
	for star := 5; star >= 1; star-- {
		count := data.RatingDistribution[star]
		b.WriteString(fmt.Sprintf("- %d stars: %d (%s)\n", star, count, percentOf(count, s.TotalReviews)))
	}

	b.WriteString("\n## Sentiment\n")
	for _, label := range []string{models.SentimentPositive, models.SentimentNeutral, models.SentimentNegative} {
		count := data.SentimentDistribution[label]
		b.WriteString(fmt.Sprintf("- %s: %d (%s)\n", label, count, percentOf(count, s.TotalReviews)))
	}

	b.WriteString("\n## Platform mix\n")
	writeCountMap(&b, data.PlatformDistribution, s.TotalReviews)

	b.WriteString("\n## Categories\n")
	writeCountMap(&b, data.CategoryDistribution, s.TotalReviews)

	if len(data.TopKeywords) > 0 {
		words := make([]string, 0, maxContextKeywords)
		for i, kw := range data.TopKeywords {
			if i >= maxContextKeywords {
				break
			}
			words = append(words, fmt.Sprintf("%s (%d)", kw.Word, kw.Count))
		}
		b.WriteString("\n## Top keywords\n")
		b.WriteString(strings.Join(words, ", "))
		b.WriteString("\n")
	}

	if len(data.Reviews) > 0 {
		b.WriteString("\n## Recent reviews\n")
		for i, r := range data.Reviews {
			if i >= maxContextReviews {
				break
			}
			text := r.Content
			if text == "" {
				text = r.Title
			}
			b.WriteString(fmt.Sprintf("- [%d★ %s %s %s] %s\n",
				r.Rating, r.Platform, r.Sentiment, r.Date.Format("2006-01-02"), truncateRunes(text, maxContextReviewRune)))
		}
	}

	return b.String()
}

// writeCountMap 件数の多い順（同数はキー順）に出力
func writeCountMap(b *strings.Builder, counts map[string]int, total int) {
	if len(counts) == 0 {
		b.WriteString("- (none)\n")
		return
	}
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
	for _, k := range keys {
		b.WriteString(fmt.Sprintf("- %s: %d (%s)\n", k, counts[k], percentOf(counts[k], total)))
	}
}

func percentOf(count, total int) string {
	if total == 0 {
		return "0%"
	}
	return fmt.Sprintf("%.0f%%", float64(count)/float64(total)*100)
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n]) + "…"
}
