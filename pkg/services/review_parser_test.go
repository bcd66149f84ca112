package services

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

func buildWorkbook(t *testing.T, rows ...[]interface{}) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	sheet := f.GetSheetName(0)
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		r := row
		require.NoError(t, f.SetSheetRow(sheet, cell, &r))
	}
	buf, err := f.WriteToBuffer()
	require.NoError(t, err)
	return buf.Bytes()
}

func TestParseSpreadsheetCSV(t *testing.T) {
	data := []byte("\xef\xbb\xbfRating,Review,,Rating\n5,Great,x,4\n,,,\n2,Slow,,\n")

	rows, err := ParseSpreadsheet("reviews.csv", data)
	require.NoError(t, err)
	require.Len(t, rows, 2)

	assert.Equal(t, "5", rows[0]["Rating"])
	assert.Equal(t, "Great", rows[0]["Review"])
	assert.Equal(t, "x", rows[0]["__EMPTY"])
	assert.Equal(t, "4", rows[0]["Rating_1"])

	// 空セルはキー自体を持たない
	_, exists := rows[1]["Rating_1"]
	assert.False(t, exists)
	assert.Equal(t, "Slow", rows[1]["Review"])
}

func TestParseSpreadsheetWorkbook(t *testing.T) {
	data := buildWorkbook(t,
		[]interface{}{"Star Rating", "Review Text", "App Store Date"},
		[]interface{}{5, "Love it!", 45000},
		[]interface{}{1, "Crashes", 45001},
	)

	rows, err := ParseSpreadsheet("export.xlsx", data)
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, "5", rows[0]["Star Rating"])
	assert.Equal(t, "45000", rows[0]["App Store Date"])
	assert.Equal(t, "Crashes", rows[1]["Review Text"])
}

func TestParseSpreadsheetUnknownExtensionFallsBackToCSV(t *testing.T) {
	rows, err := ParseSpreadsheet("reviews", []byte("Rating,Review\n3,Fine\n"))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, "Fine", rows[0]["Review"])
}

func TestParseSpreadsheetInvalid(t *testing.T) {
	_, err := ParseSpreadsheet("broken.xlsx", []byte("not a zip file"))
	require.ErrorIs(t, err, ErrInvalidSpreadsheet)
	assert.Contains(t, err.Error(), "broken.xlsx")
}

func TestParseSpreadsheetEmpty(t *testing.T) {
	rows, err := ParseSpreadsheet("empty.csv", []byte(""))
	require.NoError(t, err)
	assert.Empty(t, rows)
	assert.NotNil(t, rows)
}

func TestHeaderKeys(t *testing.T) {
	keys := headerKeys([]string{"Date", " ", "Date", "", "Date"})
	assert.Equal(t, []string{"Date", "__EMPTY", "Date_1", "__EMPTY_1", "Date_2"}, keys)
}
