package services

import (
	"testing"

	"review-insight-api/pkg/models"

	"github.com/stretchr/testify/assert"
)

func TestExtractKeywordsFrequencyOrder(t *testing.T) {
	got := ExtractKeywords("Battery drain! The battery drain is bad, drain everywhere. Widget.")
	assert.Equal(t, []string{"drain", "battery", "bad", "everywhere", "widget"}, got)
}

func TestExtractKeywordsLimit(t *testing.T) {
	got := ExtractKeywords("alpha bravo charlie delta echo foxtrot golf hotel india juliet")
	assert.Len(t, got, 8)
	assert.Equal(t, "alpha", got[0])
}

func TestExtractKeywordsFiltersNoise(t *testing.T) {
	assert.Equal(t, []string{"general"}, ExtractKeywords(""))
	assert.Equal(t, []string{"general"}, ExtractKeywords("it is an app, 2024 123"))
	assert.Equal(t, []string{"general"}, ExtractKeywords("!!! ???"))
}

func TestExtractKeywordsFoldsAccents(t *testing.T) {
	got := ExtractKeywords("Café crème")
	assert.Equal(t, []string{"cafe", "creme"}, got)
}

func TestCategorize(t *testing.T) {
	cases := []struct {
		text string
		want string
	}{
		{"Crashes and it is slow", models.CategoryBugReport},
		{"Please add a dark mode", models.CategoryFeatureRequest},
		{"Loading takes forever", models.CategoryPerformance},
		{"Love the new layout", models.CategoryUIUX},
		{"Love it", models.CategoryGeneral},
		{"", models.CategoryGeneral},
		{"SLOW SLOW SLOW", models.CategoryPerformance},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, Categorize(c.text), "text %q", c.text)
	}
}
