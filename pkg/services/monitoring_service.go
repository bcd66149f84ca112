package services

import (
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

const (
	maxRequestLogs   = 10000
	maxIngestionLogs = 500
	maxRecentErrors  = 10
)

// LogEntry は単一のリクエストログを表します。
type LogEntry struct {
	Timestamp    time.Time     `json:"timestamp"`
	Path         string        `json:"path"`
	Method       string        `json:"method"`
	StatusCode   int           `json:"statusCode"`
	ResponseTime time.Duration `json:"responseTime"`
}

// IngestionEntry アップロード/インポート1回分の記録
type IngestionEntry struct {
	Timestamp time.Time     `json:"timestamp"`
	Source    string        `json:"source"` // "upload" or "apple"
	FileName  string        `json:"fileName,omitempty"`
	Reviews   int           `json:"reviews"`
	Duration  time.Duration `json:"duration"`
	Error     string        `json:"error,omitempty"`
}

// MonitoringService はAPIリクエストとレビュー取り込みの記録を保持します。
type MonitoringService struct {
	logs       []LogEntry
	ingestions []IngestionEntry
	mu         sync.RWMutex
	now        func() time.Time
}

// NewMonitoringService は新しいMonitoringServiceを生成します。
func NewMonitoringService() *MonitoringService {
	return &MonitoringService{
		logs:       make([]LogEntry, 0),
		ingestions: make([]IngestionEntry, 0),
		now:        time.Now,
	}
}

// LogRequest はリクエストを記録します。古いものから捨てます。
func (s *MonitoringService) LogRequest(entry LogEntry) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.logs = append(s.logs, entry)
	if len(s.logs) > maxRequestLogs {
		s.logs = s.logs[len(s.logs)-maxRequestLogs:]
	}
}

// RecordIngestion 取り込み結果を記録
func (s *MonitoringService) RecordIngestion(entry IngestionEntry) {
	if entry.Timestamp.IsZero() {
		entry.Timestamp = s.now()
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ingestions = append(s.ingestions, entry)
	if len(s.ingestions) > maxIngestionLogs {
		s.ingestions = s.ingestions[len(s.ingestions)-maxIngestionLogs:]
	}
}

// LoggingMiddleware はリクエスト情報を記録するGinミドルウェアです。
func (s *MonitoringService) LoggingMiddleware() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := s.now()

		c.Next()

		// 管理系は記録しない
		path := c.Request.URL.Path
		if strings.HasPrefix(path, "/api/v1/admin") || strings.HasPrefix(path, "/api/v1/monitoring") {
			return
		}
		// パスパラメータ付きのルートはテンプレートで集計する
		if full := c.FullPath(); full != "" {
			path = full
		}

		s.LogRequest(LogEntry{
			Timestamp:    start,
			Path:         path,
			Method:       c.Request.Method,
			StatusCode:   c.Writer.Status(),
			ResponseTime: s.now().Sub(start),
		})
	}
}

// IngestionStats 取り込みの集計
type IngestionStats struct {
	Uploads         int              `json:"uploads"`
	AppleImports    int              `json:"appleImports"`
	Failed          int              `json:"failed"`
	ReviewsIngested int              `json:"reviewsIngested"`
	AvgDurationMs   int64            `json:"avgDurationMs"`
	Recent          []IngestionEntry `json:"recent"`
}

// DashboardData はダッシュボードに表示するための集計済みデータです。
type DashboardData struct {
	RequestsOverTime []map[string]interface{} `json:"requestsOverTime"`
	Endpoints        map[string]int           `json:"endpoints"`
	StatusCodes      []map[string]interface{} `json:"statusCodes"`
	AvgResponseTimes []map[string]interface{} `json:"avgResponseTimes"`
	RecentErrors     []LogEntry               `json:"recentErrors"`
	Ingestion        IngestionStats           `json:"ingestion"`
}

// GetDashboardData は指定された期間（時間）のログを集計してダッシュボード用データを返します。
func (s *MonitoringService) GetDashboardData(periodHours int) DashboardData {
	if periodHours <= 0 {
		periodHours = 24
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	now := s.now().UTC()
	since := now.Add(-time.Duration(periodHours) * time.Hour)

	filtered := make([]LogEntry, 0)
	for _, l := range s.logs {
		if l.Timestamp.After(since) {
			filtered = append(filtered, l)
		}
	}

	// 時間ごとのバケット（古い順）
	requestsOverTime := make([]map[string]interface{}, periodHours)
	bucketIndex := make(map[int64]int, periodHours)
	for i := 0; i < periodHours; i++ {
		t := now.Add(-time.Duration(periodHours-1-i) * time.Hour).Truncate(time.Hour)
		bucketIndex[t.Unix()] = i
		requestsOverTime[i] = map[string]interface{}{"time": t.Format("15:00"), "requests": 0}
	}

	endpoints := make(map[string]int)
	statusCodes := map[string]int{
		"2xx Success":      0,
		"4xx Client Error": 0,
		"5xx Server Error": 0,
	}
	responseTimeSum := make(map[string]time.Duration)

	for _, l := range filtered {
		if i, ok := bucketIndex[l.Timestamp.UTC().Truncate(time.Hour).Unix()]; ok {
			requestsOverTime[i]["requests"] = requestsOverTime[i]["requests"].(int) + 1
		}
		endpoints[l.Path]++
		responseTimeSum[l.Path] += l.ResponseTime

		switch {
		case l.StatusCode >= 200 && l.StatusCode < 300:
			statusCodes["2xx Success"]++
		case l.StatusCode >= 400 && l.StatusCode < 500:
			statusCodes["4xx Client Error"]++
		case l.StatusCode >= 500:
			statusCodes["5xx Server Error"]++
		}
	}

	statusCodesSlice := make([]map[string]interface{}, 0, len(statusCodes))
	for _, name := range []string{"2xx Success", "4xx Client Error", "5xx Server Error"} {
		statusCodesSlice = append(statusCodesSlice, map[string]interface{}{"name": name, "value": statusCodes[name]})
	}

	paths := make([]string, 0, len(responseTimeSum))
	for p := range responseTimeSum {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	avgResponseTimes := make([]map[string]interface{}, 0, len(paths))
	for _, p := range paths {
		avg := responseTimeSum[p].Milliseconds() / int64(endpoints[p])
		avgResponseTimes = append(avgResponseTimes, map[string]interface{}{"endpoint": p, "responseTime": avg})
	}

	recentErrors := make([]LogEntry, 0)
	for i := len(filtered) - 1; i >= 0 && len(recentErrors) < maxRecentErrors; i-- {
		if filtered[i].StatusCode >= 500 {
			recentErrors = append(recentErrors, filtered[i])
		}
	}

	return DashboardData{
		RequestsOverTime: requestsOverTime,
		Endpoints:        endpoints,
		StatusCodes:      statusCodesSlice,
		AvgResponseTimes: avgResponseTimes,
		RecentErrors:     recentErrors,
		Ingestion:        s.ingestionStats(since),
	}
}

func (s *MonitoringService) ingestionStats(since time.Time) IngestionStats {
	stats := IngestionStats{Recent: make([]IngestionEntry, 0)}
	var total time.Duration
	var n int64

	for _, e := range s.ingestions {
		if !e.Timestamp.After(since) {
			continue
		}
		if e.Source == "apple" {
			stats.AppleImports++
		} else {
			stats.Uploads++
		}
		if e.Error != "" {
			stats.Failed++
		} else {
			stats.ReviewsIngested += e.Reviews
		}
		total += e.Duration
		n++
	}
	if n > 0 {
		stats.AvgDurationMs = total.Milliseconds() / n
	}

	for i := len(s.ingestions) - 1; i >= 0 && len(stats.Recent) < maxRecentErrors; i-- {
		if s.ingestions[i].Timestamp.After(since) {
			stats.Recent = append(stats.Recent, s.ingestions[i])
		}
	}
	return stats
}
