package services

import (
	"sort"
	"strings"
	"sync"
	"time"

	"review-insight-api/pkg/models"

	"github.com/google/uuid"
)

// DatasetStore はアップロード/インポートごとの集計結果をプロセス内に保持します。
type DatasetStore struct {
	datasets map[string]*models.Dataset
	mu       sync.RWMutex
}

// NewDatasetStore は新しいDatasetStoreを生成します。
func NewDatasetStore() *DatasetStore {
	return &DatasetStore{
		datasets: make(map[string]*models.Dataset),
	}
}

// Put 集計結果を新しいIDで登録
func (s *DatasetStore) Put(source, fileName string, data *models.AggregatedData) *models.Dataset {
	ds := &models.Dataset{
		ID:        uuid.New().String(),
		Source:    source,
		FileName:  fileName,
		CreatedAt: time.Now().UTC(),
		Data:      data,
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.datasets[ds.ID] = ds
	return ds
}

// Get IDでデータセットを取得
func (s *DatasetStore) Get(id string) (*models.Dataset, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ds, ok := s.datasets[id]
	return ds, ok
}

// List 新しい順に一覧を返す
func (s *DatasetStore) List() []models.DatasetInfo {
	s.mu.RLock()
	defer s.mu.RUnlock()

	infos := make([]models.DatasetInfo, 0, len(s.datasets))
	for _, ds := range s.datasets {
		infos = append(infos, models.DatasetInfo{
			ID:           ds.ID,
			Source:       ds.Source,
			FileName:     ds.FileName,
			CreatedAt:    ds.CreatedAt,
			TotalReviews: ds.Data.Summary.TotalReviews,
			AvgRating:    ds.Data.Summary.AvgRating,
		})
	}
	sort.Slice(infos, func(i, j int) bool {
		return infos[i].CreatedAt.After(infos[j].CreatedAt)
	})
	return infos
}

// Delete 削除。存在しなかった場合はfalse
func (s *DatasetStore) Delete(id string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.datasets[id]; !ok {
		return false
	}
	delete(s.datasets, id)
	return true
}

// FilterReviews トピックフィルタ。条件はすべてAND、文字列の比較は大文字小文字を区別しません。
// キーワードはレビューのキーワードとの完全一致、または本文・タイトルへの部分一致。
func FilterReviews(reviews []models.Review, f models.ReviewFilter) []models.Review {
	keyword := strings.ToLower(strings.TrimSpace(f.Keyword))
	matched := make([]models.Review, 0)

	for _, r := range reviews {
		if f.Category != "" && !strings.EqualFold(r.Category, f.Category) {
			continue
		}
		if f.Platform != "" && !strings.EqualFold(r.Platform, f.Platform) {
			continue
		}
		if f.Sentiment != "" && !strings.EqualFold(r.Sentiment, f.Sentiment) {
			continue
		}
		if f.MinRating > 0 && r.Rating < f.MinRating {
			continue
		}
		if f.MaxRating > 0 && r.Rating > f.MaxRating {
			continue
		}
		if keyword != "" && !reviewMentions(r, keyword) {
			continue
		}
		matched = append(matched, r)
	}
	return matched
}

func reviewMentions(r models.Review, keyword string) bool {
	for _, kw := range r.Keywords {
		if kw == keyword {
			return true
		}
	}
	return strings.Contains(strings.ToLower(r.Content), keyword) ||
		strings.Contains(strings.ToLower(r.Title), keyword)
}
