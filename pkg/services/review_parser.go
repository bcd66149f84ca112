package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"path/filepath"
	"strings"

	"review-insight-api/pkg/models"

	"github.com/xuri/excelize/v2"
)

// ErrInvalidSpreadsheet ファイル全体が読めない場合のエラー（行単位の不備では返さない）
var ErrInvalidSpreadsheet = errors.New("invalid spreadsheet")

// ParseSpreadsheet は .xlsx/.xls/.csv を読み込み、最初のシートをヘッダー行をキーにした行の配列に変換します。
func ParseSpreadsheet(fileName string, data []byte) ([]models.RawRow, error) {
	var rows [][]string
	var err error

	switch strings.ToLower(filepath.Ext(fileName)) {
	case ".csv":
		rows, err = readCSV(data)
	case ".xlsx", ".xlsm", ".xls":
		rows, err = readWorkbook(data)
	default:
		// 拡張子が不明な場合はExcel -> CSVの順に試す
		rows, err = readWorkbook(data)
		if err != nil {
			rows, err = readCSV(data)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrInvalidSpreadsheet, fileName, err)
	}

	return rowsToRecords(rows), nil
}

// readWorkbook 最初のシートの生のセル値を取得
func readWorkbook(data []byte) ([][]string, error) {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("open excel: %w", err)
	}
	defer func() { _ = f.Close() }()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("no sheets found")
	}

	rows, err := f.GetRows(sheets[0], excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, fmt.Errorf("read sheet %q: %w", sheets[0], err)
	}
	return rows, nil
}

func readCSV(data []byte) ([][]string, error) {
	data = bytes.TrimPrefix(data, []byte("\xef\xbb\xbf"))
	r := csv.NewReader(bytes.NewReader(data))
	r.FieldsPerRecord = -1
	r.LazyQuotes = true
	rows, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}
	return rows, nil
}

// rowsToRecords 先頭行をヘッダーとして各行をRawRowに変換
func rowsToRecords(rows [][]string) []models.RawRow {
	if len(rows) == 0 {
		return []models.RawRow{}
	}

	header := headerKeys(rows[0])
	records := make([]models.RawRow, 0, len(rows)-1)
	for _, row := range rows[1:] {
		rec := make(models.RawRow)
		for i, cell := range row {
			if i >= len(header) {
				break
			}
			if strings.TrimSpace(cell) == "" {
				continue
			}
			rec[header[i]] = cell
		}
		if len(rec) == 0 {
			continue
		}
		records = append(records, rec)
	}
	return records
}

// headerKeys 空のヘッダーは __EMPTY, __EMPTY_1 ...、重複は name_1, name_2 ... にする
func headerKeys(raw []string) []string {
	keys := make([]string, len(raw))
	seen := make(map[string]int)
	for i, h := range raw {
		name := strings.TrimSpace(h)
		if name == "" {
			name = "__EMPTY"
		}
		if n, ok := seen[name]; ok {
			seen[name] = n + 1
			keys[i] = fmt.Sprintf("%s_%d", name, n+1)
			continue
		}
		seen[name] = 0
		keys[i] = name
	}
	return keys
}
