package services

import (
	"encoding/json"
	"fmt"
	"math"
	"regexp"
	"sort"
	"strconv"
	"strings"
	"time"

	"review-insight-api/pkg/models"

	"github.com/araddon/dateparse"
)

// 正規フィールド名
const (
	FieldRating    = "rating"
	FieldTitle     = "title"
	FieldContent   = "content"
	FieldBody      = "body"
	FieldAuthor    = "author"
	FieldDate      = "date"
	FieldVersion   = "version"
	FieldDevice    = "device"
	FieldOS        = "os"
	FieldCountry   = "country"
	FieldLanguage  = "language"
	FieldResponse  = "response"
	FieldSentiment = "sentiment"
)

// FieldAliases 正規フィールドごとの列名候補。先頭から順に評価し、最初に値が入っている列を採用します。
var FieldAliases = map[string][]string{
	FieldRating:    {"Rating", "Star Rating", "Star", "Stars", "Score", "App Store Rating", "User Rating"},
	FieldTitle:     {"Title", "Review Title", "Subject", "Headline"},
	FieldContent:   {"Review", "Review Text", "Content", "Body", "Text", "Comment", "Review Body", "Review Content", "Feedback", "Message"},
	FieldBody:      {"Body", "Review Body"},
	FieldAuthor:    {"Author", "Reviewer", "Reviewer Name", "User Name", "Username", "Nickname", "Name", "User", "Reviewer Nickname", "ReviewerNickname"},
	FieldDate:      {"Date", "Review Date", "Review Submit Date and Time", "Review Last Update Date and Time", "Submission Date", "Created At", "Created", "Last Modified", "Timestamp", "Updated", "App Store Date", "Created Date", "CreatedDate"},
	FieldVersion:   {"Version", "App Version", "App Version Name", "App Version Code", "Build"},
	FieldDevice:    {"Device", "Device Model", "Device Name", "Model", "Hardware"},
	FieldOS:        {"OS", "OS Version", "Android OS Version", "iOS Version", "Platform Version", "Operating System"},
	FieldCountry:   {"Country", "Territory", "Country Code", "Store Country", "Storefront", "Region"},
	FieldLanguage:  {"Language", "Reviewer Language", "Locale", "Lang"},
	FieldResponse:  {"Response", "Developer Response", "Developer Reply Text", "Developer Reply", "Reply Text", "Reply"},
	FieldSentiment: {"Sentiment", "Sentiment Label", "Review Sentiment", "Tone"},
}

// fieldDefaults 値がない場合のデフォルト
var fieldDefaults = map[string]string{
	FieldAuthor:   "Anonymous",
	FieldVersion:  "Unknown",
	FieldDevice:   "Unknown",
	FieldOS:       "Unknown",
	FieldCountry:  "Unknown",
	FieldLanguage: "English",
}

// Excelのシリアル値（1899-12-30起点）とUnixエポックの差（日）
const excelEpochOffsetDays = 25569

var (
	iosRowMarkers     = []string{"app store", "appstore", "ios", "iphone", "ipad", "apple", "itunes"}
	androidRowMarkers = []string{"google play", "googleplay", "play store", "android"}
	androidVendors    = []string{"samsung", "pixel", "lg", "huawei", "oneplus", "motorola"}
	iosDevices        = []string{"iphone", "ipad", "ipod"}

	leadingNumberRe = regexp.MustCompile(`^[-+]?\d+(\.\d+)?`)
	firstNumberRe   = regexp.MustCompile(`\d+(\.\d+)?`)
)

// Normalizer はRawRowを正規化済みのReviewに変換します。
type Normalizer struct {
	now func() time.Time
}

// NewNormalizer 日付が解析できない場合に使う時計を指定して作成（nilなら time.Now）
func NewNormalizer(now func() time.Time) *Normalizer {
	if now == nil {
		now = time.Now
	}
	return &Normalizer{now: now}
}

// Normalize は1行をReviewに変換します。欠損や不正な値はすべてデフォルトで埋め、エラーは返しません。
// 感情・キーワード・カテゴリはここでは設定しません。
func (n *Normalizer) Normalize(row models.RawRow, index int) models.Review {
	keys := sortedKeys(row)
	consumed := make(map[string]bool)

	str := func(field string) string {
		key, v, ok := resolveField(row, keys, FieldAliases[field])
		if !ok {
			return fieldDefaults[field]
		}
		consumed[key] = true
		return toString(v)
	}

	review := models.Review{
		ID:       index,
		Title:    str(FieldTitle),
		Content:  str(FieldContent),
		Author:   str(FieldAuthor),
		Version:  str(FieldVersion),
		Device:   str(FieldDevice),
		OS:       str(FieldOS),
		Country:  str(FieldCountry),
		Language: str(FieldLanguage),
		Response: str(FieldResponse),
	}

	review.Body = str(FieldBody)
	if review.Body == "" {
		review.Body = review.Content
	}

	if key, v, ok := resolveField(row, keys, FieldAliases[FieldRating]); ok {
		consumed[key] = true
		review.Rating = parseRating(v)
	}

	if key, v, ok := resolveField(row, keys, FieldAliases[FieldDate]); ok {
		consumed[key] = true
		review.Date = n.parseDate(v)
	} else {
		review.Date = n.now().UTC()
	}

	if key, _, ok := resolveField(row, keys, FieldAliases[FieldSentiment]); ok {
		consumed[key] = true
	}

	review.Platform = DetectPlatform(row, review.Device, review.OS)

	for _, k := range keys {
		if consumed[k] {
			continue
		}
		if review.Extra == nil {
			review.Extra = make(map[string]interface{})
		}
		review.Extra[k] = row[k]
	}

	return review
}

// resolveField エイリアスを順に評価し、最初に値が入っている列を返します。
// 各エイリアスについて完全一致 -> 大文字小文字・前後空白を無視した一致の順で探します。
func resolveField(row models.RawRow, keys []string, aliases []string) (string, interface{}, bool) {
	for _, alias := range aliases {
		if v, exists := row[alias]; exists && isDefined(v) {
			return alias, v, true
		}
		for _, k := range keys {
			if k == alias {
				continue
			}
			if strings.EqualFold(strings.TrimSpace(k), alias) && isDefined(row[k]) {
				return k, row[k], true
			}
		}
	}
	return "", nil, false
}

func sortedKeys(row models.RawRow) []string {
	keys := make([]string, 0, len(row))
	for k := range row {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

func isDefined(v interface{}) bool {
	switch val := v.(type) {
	case nil:
		return false
	case string:
		return strings.TrimSpace(val) != ""
	default:
		return true
	}
}

func toString(v interface{}) string {
	switch val := v.(type) {
	case nil:
		return ""
	case string:
		return strings.TrimSpace(val)
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 32)
	case json.Number:
		return val.String()
	default:
		return strings.TrimSpace(fmt.Sprint(val))
	}
}

// numericValue 数値型、または数値として完全に解釈できる文字列なら数値を返す
func numericValue(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case int32:
		return float64(val), true
	case json.Number:
		f, err := val.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// parseRating 先頭の数値を読み取り四捨五入。0〜5の範囲外や解釈できない値は0（不明）
func parseRating(v interface{}) int {
	f, ok := numericValue(v)
	if !ok {
		m := leadingNumberRe.FindString(toString(v))
		if m == "" {
			return 0
		}
		f, _ = strconv.ParseFloat(m, 64)
	}
	r := int(math.Round(f))
	if r < 0 || r > 5 {
		return 0
	}
	return r
}

// parseDate 数値はExcelシリアル値、文字列は日付文字列として解釈。失敗時は現在時刻。
func (n *Normalizer) parseDate(v interface{}) time.Time {
	if serial, ok := numericValue(v); ok {
		if t, ok := ExcelSerialToTime(serial); ok {
			return t
		}
		return n.now().UTC()
	}
	if s := toString(v); s != "" {
		if t, err := dateparse.ParseIn(s, time.UTC); err == nil && inJSONYearRange(t) {
			return t.UTC()
		}
	}
	return n.now().UTC()
}

// ExcelSerialToTime Excelのシリアル日付を (serial - 25569) * 86400 * 1000 ミリ秒として変換します。
// 0〜9999年に収まらない値（20240315 のようなYYYYMMDDなど）は不正として扱います。
func ExcelSerialToTime(serial float64) (time.Time, bool) {
	ms := (serial - excelEpochOffsetDays) * 86400 * 1000
	if math.IsNaN(ms) || math.IsInf(ms, 0) || math.Abs(ms) > 8.64e15 {
		return time.Time{}, false
	}
	t := time.UnixMilli(int64(math.Round(ms))).UTC()
	if !inJSONYearRange(t) {
		return time.Time{}, false
	}
	return t, true
}

// inJSONYearRange time.Time.MarshalJSON が扱える年（0〜9999）か
func inJSONYearRange(t time.Time) bool {
	y := t.UTC().Year()
	return y >= 0 && y <= 9999
}

// DetectPlatform 行全体の文字列 -> 端末名 -> OSバージョンの順でプラットフォームを推定します。
// OSバージョンの範囲はiOSとAndroidで重なるため、iOSの判定を先に行います。
func DetectPlatform(row models.RawRow, device, osVersion string) string {
	rowText := stringifyRow(row)
	if containsAny(rowText, iosRowMarkers) {
		return models.PlatformIOS
	}
	if containsAny(rowText, androidRowMarkers) {
		return models.PlatformAndroid
	}

	dev := strings.ToLower(device)
	if containsAny(dev, androidVendors) {
		return models.PlatformAndroid
	}
	if containsAny(dev, iosDevices) {
		return models.PlatformIOS
	}

	if m := firstNumberRe.FindString(osVersion); m != "" {
		if v, err := strconv.ParseFloat(m, 64); err == nil {
			if v >= 13 {
				return models.PlatformIOS
			}
			if v >= 10 && v <= 15 {
				return models.PlatformAndroid
			}
		}
	}
	return models.PlatformUnknown
}

func stringifyRow(row models.RawRow) string {
	b, err := json.Marshal(row)
	if err != nil {
		return strings.ToLower(fmt.Sprint(row))
	}
	return strings.ToLower(string(b))
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
