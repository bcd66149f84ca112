package services

import (
	"encoding/json"
	"testing"
	"time"

	"review-insight-api/pkg/models"

	"github.com/stretchr/testify/assert"
)

func fixedClock() time.Time {
	return time.Date(2024, 3, 20, 9, 0, 0, 0, time.UTC)
}

func TestNormalizeEmptyRow(t *testing.T) {
	n := NewNormalizer(fixedClock)
	review := n.Normalize(models.RawRow{}, 3)

	assert.Equal(t, 3, review.ID)
	assert.Equal(t, 0, review.Rating)
	assert.Equal(t, "", review.Title)
	assert.Equal(t, "", review.Content)
	assert.Equal(t, "", review.Body)
	assert.Equal(t, "Anonymous", review.Author)
	assert.Equal(t, "Unknown", review.Version)
	assert.Equal(t, "Unknown", review.Device)
	assert.Equal(t, "Unknown", review.OS)
	assert.Equal(t, "Unknown", review.Country)
	assert.Equal(t, "English", review.Language)
	assert.Equal(t, "", review.Response)
	assert.Equal(t, fixedClock(), review.Date)
	assert.Equal(t, models.PlatformUnknown, review.Platform)
	assert.Nil(t, review.Extra)
}

func TestNormalizeAliasPriority(t *testing.T) {
	n := NewNormalizer(fixedClock)

	review := n.Normalize(models.RawRow{"Review": "first", "Content": "second"}, 0)
	assert.Equal(t, "first", review.Content)

	// 空の列は飛ばして次の候補を使う
	review = n.Normalize(models.RawRow{"Review": "   ", "Content": "second"}, 0)
	assert.Equal(t, "second", review.Content)

	// 大文字小文字・前後空白を無視
	review = n.Normalize(models.RawRow{" star rating ": "4", "REVIEWER": "kai"}, 0)
	assert.Equal(t, 4, review.Rating)
	assert.Equal(t, "kai", review.Author)
}

func TestNormalizeBodyFallsBackToContent(t *testing.T) {
	n := NewNormalizer(fixedClock)

	review := n.Normalize(models.RawRow{"Text": "hello"}, 0)
	assert.Equal(t, "hello", review.Body)

	review = n.Normalize(models.RawRow{"Review Body": "long body", "Title": "t"}, 0)
	assert.Equal(t, "long body", review.Content)
	assert.Equal(t, "long body", review.Body)
}

func TestNormalizeExtraKeepsUnknownColumns(t *testing.T) {
	n := NewNormalizer(fixedClock)
	review := n.Normalize(models.RawRow{"Rating": 5, "Review": "ok", "Ticket": "T-1", "Sentiment": "positive"}, 0)

	assert.Equal(t, map[string]interface{}{"Ticket": "T-1"}, review.Extra)
}

func TestParseRating(t *testing.T) {
	cases := []struct {
		in   interface{}
		want int
	}{
		{5, 5},
		{4.6, 5},
		{"3", 3},
		{"4 stars", 4},
		{"2.4/5", 2},
		{7, 0},
		{-1, 0},
		{"abc", 0},
		{nil, 0},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, parseRating(c.in), "input %v", c.in)
	}
}

func TestNormalizeDates(t *testing.T) {
	n := NewNormalizer(fixedClock)

	review := n.Normalize(models.RawRow{"Date": 45000.0}, 0)
	assert.Equal(t, "2023-03-15", review.Date.Format("2006-01-02"))

	review = n.Normalize(models.RawRow{"Date": "45000"}, 0)
	assert.Equal(t, "2023-03-15", review.Date.Format("2006-01-02"))

	review = n.Normalize(models.RawRow{"Review Date": "2024-01-02 10:30:00"}, 0)
	assert.Equal(t, time.Date(2024, 1, 2, 10, 30, 0, 0, time.UTC), review.Date)

	review = n.Normalize(models.RawRow{"Date": "not a date"}, 0)
	assert.Equal(t, fixedClock(), review.Date)
}

func TestExcelSerialToTime(t *testing.T) {
	got, ok := ExcelSerialToTime(25569)
	assert.True(t, ok)
	assert.Equal(t, time.Unix(0, 0).UTC(), got)

	got, ok = ExcelSerialToTime(45000.5)
	assert.True(t, ok)
	assert.Equal(t, time.Date(2023, 3, 15, 12, 0, 0, 0, time.UTC), got)

	_, ok = ExcelSerialToTime(1e12)
	assert.False(t, ok)

	// 10000年以降はJSONにできないため不正
	_, ok = ExcelSerialToTime(3000000)
	assert.False(t, ok)
	_, ok = ExcelSerialToTime(2958465) // 9999-12-31
	assert.True(t, ok)
}

func TestNormalizeOutOfRangeDateFallsBackToNow(t *testing.T) {
	n := NewNormalizer(fixedClock)

	for _, v := range []interface{}{"20240315", 20240315.0, 3000000.0} {
		review := n.Normalize(models.RawRow{"Rating": 5, "Date": v}, 0)
		assert.Equal(t, fixedClock(), review.Date, "input %v", v)

		_, err := json.Marshal(review)
		assert.NoError(t, err, "input %v", v)
	}
}

func TestDetectPlatform(t *testing.T) {
	cases := []struct {
		name   string
		row    models.RawRow
		device string
		os     string
		want   string
	}{
		{"app store header", models.RawRow{"App Store Date": 45000}, "", "", models.PlatformIOS},
		{"google play source", models.RawRow{"Source": "Google Play"}, "", "", models.PlatformAndroid},
		{"ios wins over android", models.RawRow{"Source": "iPhone / Android"}, "", "", models.PlatformIOS},
		{"android vendor", nil, "Samsung Galaxy S23", "", models.PlatformAndroid},
		{"apple device", nil, "iPad Pro", "", models.PlatformIOS},
		{"ios version", nil, "Unknown", "16.4", models.PlatformIOS},
		{"android version", nil, "Unknown", "11", models.PlatformAndroid},
		{"old version", nil, "Unknown", "9", models.PlatformUnknown},
		{"nothing", nil, "Unknown", "Unknown", models.PlatformUnknown},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			assert.Equal(t, c.want, DetectPlatform(c.row, c.device, c.os))
		})
	}
}
