package services

import (
	"testing"

	"review-insight-api/pkg/models"

	"github.com/stretchr/testify/assert"
)

func TestNormalizeSentimentLabel(t *testing.T) {
	cases := []struct {
		in         string
		want       string
		recognized bool
	}{
		{"positive", models.SentimentPositive, true},
		{"Very Positive", models.SentimentPositive, true},
		{"happy", models.SentimentPositive, true},
		{"unfavorable", models.SentimentNegative, true},
		{"dislike", models.SentimentNegative, true},
		{"NEG", models.SentimentNegative, true},
		{"mixed", models.SentimentNeutral, true},
		{"1", models.SentimentPositive, true},
		{" +1 ", models.SentimentPositive, true},
		{"-1", models.SentimentNegative, true},
		{"2", models.SentimentNeutral, false},
		{"0.5", models.SentimentNeutral, false},
		{"-0.4", models.SentimentNeutral, false},
		{"0", models.SentimentNeutral, true},
		{"banana", models.SentimentNeutral, false},
		{"", models.SentimentNeutral, false},
	}
	for _, c := range cases {
		label, ok := NormalizeSentimentLabel(c.in)
		assert.Equal(t, c.want, label, "input %q", c.in)
		assert.Equal(t, c.recognized, ok, "input %q", c.in)
	}
}

func TestScoreTextNegation(t *testing.T) {
	scored := ScoreText("Great app, not good at syncing")
	assert.Equal(t, float64(0), scored.Score)
	assert.Equal(t, []string{"great"}, scored.Positive)
	assert.Equal(t, []string{"good"}, scored.Negative)

	scored = ScoreText("")
	assert.Equal(t, float64(0), scored.Score)
	assert.NotNil(t, scored.Positive)
	assert.NotNil(t, scored.Negative)
}

func TestSentimentFromRating(t *testing.T) {
	assert.Equal(t, models.SentimentPositive, SentimentFromRating(5))
	assert.Equal(t, models.SentimentPositive, SentimentFromRating(4))
	assert.Equal(t, models.SentimentNeutral, SentimentFromRating(3))
	assert.Equal(t, models.SentimentNegative, SentimentFromRating(2))
	assert.Equal(t, models.SentimentNegative, SentimentFromRating(1))
	assert.Equal(t, models.SentimentNeutral, SentimentFromRating(0))
}

func TestLabelSentimentExplicitColumnWins(t *testing.T) {
	row := models.RawRow{"Rating": 1, "Sentiment": "positive", "Review": "terrible"}
	review := models.Review{Rating: 1, Content: "terrible"}

	LabelSentiment(row, &review)
	assert.Equal(t, models.SentimentPositive, review.Sentiment)
	assert.Equal(t, float64(2), review.SentimentScore)
	assert.Empty(t, review.PositiveWords)
	assert.Empty(t, review.NegativeWords)
}

func TestLabelSentimentUnknownLabelIsNeutral(t *testing.T) {
	row := models.RawRow{"Tone": "sarcastic", "Review": "Great"}
	review := models.Review{Rating: 5, Content: "Great"}

	LabelSentiment(row, &review)
	assert.Equal(t, models.SentimentNeutral, review.Sentiment)
	assert.Equal(t, float64(0), review.SentimentScore)
}

func TestLabelSentimentFromText(t *testing.T) {
	review := models.Review{Rating: 5, Content: "Terrible update, it crashes constantly"}
	LabelSentiment(models.RawRow{}, &review)

	assert.Equal(t, models.SentimentNegative, review.Sentiment)
	assert.Equal(t, float64(-5), review.SentimentScore)
	assert.Equal(t, []string{"terrible", "crashes"}, review.NegativeWords)
}

func TestLabelSentimentFallsBackToRating(t *testing.T) {
	// レキシコンに該当しない本文は評価値で判定
	review := models.Review{Rating: 5, Content: "Opened it yesterday"}
	LabelSentiment(models.RawRow{}, &review)
	assert.Equal(t, models.SentimentPositive, review.Sentiment)

	review = models.Review{Rating: 2}
	LabelSentiment(models.RawRow{}, &review)
	assert.Equal(t, models.SentimentNegative, review.Sentiment)
	assert.Equal(t, float64(0), review.SentimentScore)

	review = models.Review{}
	LabelSentiment(models.RawRow{}, &review)
	assert.Equal(t, models.SentimentNeutral, review.Sentiment)
}
