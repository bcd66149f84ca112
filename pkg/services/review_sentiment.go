package services

import (
	"log"
	"math"
	"strings"
	"unicode"

	"review-insight-api/pkg/models"
)

// 明示的な感情列を使った場合の固定スコア
const (
	explicitPositiveScore = 2
	explicitNegativeScore = -2
)

var (
	negativeLabelMarkers = []string{"negative", "neg", "bad", "angry", "unfavorable", "dislike"}
	positiveLabelMarkers = []string{"positive", "pos", "good", "happy", "favorable", "like"}
	neutralLabelMarkers  = []string{"neutral", "mixed", "okay", "moderate"}
)

// TextSentiment レキシコンによるスコアリング結果
type TextSentiment struct {
	Score    float64
	Positive []string
	Negative []string
}

// ScoreText テキストをトークン化し、レキシコンのスコアを合計します。否定語の直後はスコアを反転。
func ScoreText(text string) TextSentiment {
	result := TextSentiment{Positive: []string{}, Negative: []string{}}

	tokens := sentimentTokens(text)
	for i, tok := range tokens {
		score, ok := sentimentLexicon[tok]
		if !ok {
			continue
		}
		if i > 0 && sentimentNegators[tokens[i-1]] {
			score = -score
		}
		result.Score += float64(score)
		if score > 0 {
			result.Positive = append(result.Positive, tok)
		} else if score < 0 {
			result.Negative = append(result.Negative, tok)
		}
	}
	return result
}

func sentimentTokens(text string) []string {
	lowered := strings.ToLower(text)
	cleaned := strings.Map(func(r rune) rune {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '\'' || r == '-' {
			return r
		}
		return ' '
	}, lowered)

	fields := strings.Fields(cleaned)
	tokens := make([]string, 0, len(fields))
	for _, f := range fields {
		f = strings.Trim(f, "'-")
		if f != "" {
			tokens = append(tokens, f)
		}
	}
	return tokens
}

// NormalizeSentimentLabel 感情列の値を3値に正規化します。認識できない値はNeutralでrecognized=false。
// 数値は 1 / -1 / 0 のみ認識し（"2" や "0.5" は未認識）、文字列は否定系 -> 肯定系 -> 中立系の順に部分一致で判定します
// （"unfavorable" や "dislike" を肯定と誤判定しないため）。
func NormalizeSentimentLabel(value string) (label string, recognized bool) {
	s := strings.ToLower(strings.TrimSpace(value))

	switch s {
	case "1", "+1":
		return models.SentimentPositive, true
	case "-1":
		return models.SentimentNegative, true
	case "0":
		return models.SentimentNeutral, true
	}

	switch {
	case containsAny(s, negativeLabelMarkers):
		return models.SentimentNegative, true
	case containsAny(s, positiveLabelMarkers):
		return models.SentimentPositive, true
	case containsAny(s, neutralLabelMarkers):
		return models.SentimentNeutral, true
	}
	return models.SentimentNeutral, false
}

// SentimentFromRating 評価値のみで判定（4以上: Positive、1〜2: Negative）。評価なし(0)はNeutral。
func SentimentFromRating(rating int) string {
	switch {
	case rating >= 4:
		return models.SentimentPositive
	case rating >= 1 && rating <= 2:
		return models.SentimentNegative
	default:
		return models.SentimentNeutral
	}
}

// categorizeScore スコアが小さい（|score| < 0.5）場合は評価値にフォールバック
func categorizeScore(score float64, rating int) string {
	if math.Abs(score) < 0.5 {
		return SentimentFromRating(rating)
	}
	switch {
	case score >= 1:
		return models.SentimentPositive
	case score <= -1:
		return models.SentimentNegative
	case score > 0:
		return models.SentimentPositive
	case score < 0:
		return models.SentimentNegative
	}
	return models.SentimentNeutral
}

// LabelSentiment は明示的な感情列 -> 本文のレキシコン判定 -> 評価値 の順で感情を設定します。
func LabelSentiment(row models.RawRow, review *models.Review) {
	review.PositiveWords = []string{}
	review.NegativeWords = []string{}

	if _, v, ok := resolveField(row, sortedKeys(row), FieldAliases[FieldSentiment]); ok {
		raw := toString(v)
		label, recognized := NormalizeSentimentLabel(raw)
		if !recognized {
			log.Printf("⚠️ [感情判定] 認識できない感情ラベル %q をNeutralとして扱います (review=%d)", raw, review.ID)
		}
		review.Sentiment = label
		switch label {
		case models.SentimentPositive:
			review.SentimentScore = explicitPositiveScore
		case models.SentimentNegative:
			review.SentimentScore = explicitNegativeScore
		default:
			review.SentimentScore = 0
		}
		return
	}

	if strings.TrimSpace(review.Content) != "" {
		scored := ScoreText(review.Content)
		review.SentimentScore = scored.Score
		review.PositiveWords = scored.Positive
		review.NegativeWords = scored.Negative
		review.Sentiment = categorizeScore(scored.Score, review.Rating)
		return
	}

	review.SentimentScore = 0
	review.Sentiment = SentimentFromRating(review.Rating)
}
