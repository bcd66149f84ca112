package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"strings"
	"sync"
	"time"

	"review-insight-api/pkg/llm"
	"review-insight-api/pkg/models"

	"github.com/google/uuid"
	qdrant "github.com/qdrant/go-client/qdrant"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
)

const indexUpsertBatch = 64

// ReviewIndex はレビュー本文をQdrantにベクトルとして保存し、チャットの質問に近いレビューを検索します。
type ReviewIndex struct {
	points      qdrant.PointsClient
	collections qdrant.CollectionsClient
	embedder    llm.Embedder
	collection  string

	mu    sync.Mutex
	ready bool
}

// NewReviewIndex QdrantへのgRPCクライアントを作成します。APIキーがあればTLS+APIキー、なければ非TLSで接続。
func NewReviewIndex(embedder llm.Embedder, qdrantURL, qdrantAPIKey, collection string) (*ReviewIndex, error) {
	var dialOpts []grpc.DialOption

	if qdrantAPIKey != "" {
		log.Println("🔐 [レビュー索引] Qdrant Cloud (TLS) への接続を準備します...")
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(credentials.NewTLS(&tls.Config{})))

		authInterceptor := func(ctx context.Context, method string, req, reply interface{}, cc *grpc.ClientConn, invoker grpc.UnaryInvoker, opts ...grpc.CallOption) error {
			ctx = metadata.AppendToOutgoingContext(ctx, "api-key", qdrantAPIKey)
			return invoker(ctx, method, req, reply, cc, opts...)
		}
		dialOpts = append(dialOpts, grpc.WithUnaryInterceptor(authInterceptor))
	} else {
		log.Println("🔓 [レビュー索引] ローカルのQdrant (非TLS) への接続を準備します...")
		dialOpts = append(dialOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	conn, err := grpc.NewClient(qdrantURL, dialOpts...)
	if err != nil {
		return nil, fmt.Errorf("QdrantへのgRPCクライアント作成に失敗: %w", err)
	}

	return newReviewIndex(qdrant.NewPointsClient(conn), qdrant.NewCollectionsClient(conn), embedder, collection), nil
}

func newReviewIndex(points qdrant.PointsClient, collections qdrant.CollectionsClient, embedder llm.Embedder, collection string) *ReviewIndex {
	return &ReviewIndex{
		points:      points,
		collections: collections,
		embedder:    embedder,
		collection:  collection,
	}
}

// IndexReviews 本文のあるレビューを埋め込み、データセットIDをペイロードに付けてUpsertします。
// ポイントIDはデータセットIDとレビューIDから決まるため、再実行しても重複しません。
func (ix *ReviewIndex) IndexReviews(ctx context.Context, datasetID string, reviews []models.Review) (int, error) {
	var batch []*qdrant.PointStruct
	indexed := 0

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		wait := true
		if _, err := ix.points.Upsert(ctx, &qdrant.UpsertPoints{
			CollectionName: ix.collection,
			Points:         batch,
			Wait:           &wait,
		}); err != nil {
			return fmt.Errorf("Qdrantへのレビュー保存に失敗: %w", err)
		}
		indexed += len(batch)
		batch = batch[:0]
		return nil
	}

	for _, r := range reviews {
		text := reviewIndexText(r)
		if text == "" {
			continue
		}

		vector, err := ix.embedder.CreateEmbedding(ctx, text)
		if err != nil {
			return indexed, fmt.Errorf("レビュー %d のベクトル化に失敗: %w", r.ID, err)
		}
		if err := ix.ensureCollection(ctx, uint64(len(vector))); err != nil {
			return indexed, err
		}

		batch = append(batch, &qdrant.PointStruct{
			Id: &qdrant.PointId{
				PointIdOptions: &qdrant.PointId_Uuid{Uuid: reviewPointID(datasetID, r.ID)},
			},
			Vectors: &qdrant.Vectors{
				VectorsOptions: &qdrant.Vectors_Vector{Vector: &qdrant.Vector{Data: vector}},
			},
			Payload: reviewPayload(datasetID, r, text),
		})
		if len(batch) >= indexUpsertBatch {
			if err := flush(); err != nil {
				return indexed, err
			}
		}
	}
	if err := flush(); err != nil {
		return indexed, err
	}

	log.Printf("🧭 [レビュー索引] データセット %s: %d 件をQdrantに保存しました", datasetID, indexed)
	return indexed, nil
}

// Search データセット内で質問に近いレビュー本文を返す
func (ix *ReviewIndex) Search(ctx context.Context, datasetID, query string, topK uint64) ([]string, error) {
	vector, err := ix.embedder.CreateEmbedding(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("クエリテキストのベクトル化に失敗: %w", err)
	}

	withPayload := true
	res, err := ix.points.Search(ctx, &qdrant.SearchPoints{
		CollectionName: ix.collection,
		Vector:         vector,
		Limit:          topK,
		Filter:         datasetFilter(datasetID),
		WithPayload:    &qdrant.WithPayloadSelector{SelectorOptions: &qdrant.WithPayloadSelector_Enable{Enable: withPayload}},
	})
	if err != nil {
		return nil, fmt.Errorf("Qdrantでのレビュー検索に失敗: %w", err)
	}

	texts := make([]string, 0, len(res.GetResult()))
	for _, p := range res.GetResult() {
		if v, ok := p.GetPayload()["text"]; ok && v.GetStringValue() != "" {
			texts = append(texts, v.GetStringValue())
		}
	}
	return texts, nil
}

// DeleteDataset データセットのポイントをまとめて削除
func (ix *ReviewIndex) DeleteDataset(ctx context.Context, datasetID string) error {
	wait := true
	_, err := ix.points.Delete(ctx, &qdrant.DeletePoints{
		CollectionName: ix.collection,
		Wait:           &wait,
		Points: &qdrant.PointsSelector{
			PointsSelectorOneOf: &qdrant.PointsSelector_Filter{Filter: datasetFilter(datasetID)},
		},
	})
	if err != nil {
		return fmt.Errorf("Qdrantからのレビュー削除に失敗: %w", err)
	}
	return nil
}

// ensureCollection コレクションがなければ埋め込みの次元数で作成
func (ix *ReviewIndex) ensureCollection(ctx context.Context, vectorSize uint64) error {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if ix.ready {
		return nil
	}

	listCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	res, err := ix.collections.List(listCtx, &qdrant.ListCollectionsRequest{})
	if err != nil {
		return fmt.Errorf("Qdrantのコレクションリスト取得に失敗: %w", err)
	}
	for _, c := range res.GetCollections() {
		if c.GetName() == ix.collection {
			ix.ready = true
			return nil
		}
	}

	log.Printf("📦 [レビュー索引] コレクション '%s' を作成します (次元数 %d)", ix.collection, vectorSize)
	createCtx, cancelCreate := context.WithTimeout(ctx, 10*time.Second)
	defer cancelCreate()
	_, err = ix.collections.Create(createCtx, &qdrant.CreateCollection{
		CollectionName: ix.collection,
		VectorsConfig: &qdrant.VectorsConfig{
			Config: &qdrant.VectorsConfig_Params{
				Params: &qdrant.VectorParams{
					Size:     vectorSize,
					Distance: qdrant.Distance_Cosine,
				},
			},
		},
	})
	if err != nil {
		return fmt.Errorf("Qdrantのコレクション作成に失敗: %w", err)
	}
	ix.ready = true
	return nil
}

func datasetFilter(datasetID string) *qdrant.Filter {
	return &qdrant.Filter{
		Must: []*qdrant.Condition{
			{
				ConditionOneOf: &qdrant.Condition_Field{
					Field: &qdrant.FieldCondition{
						Key:   "dataset_id",
						Match: &qdrant.Match{MatchValue: &qdrant.Match_Keyword{Keyword: datasetID}},
					},
				},
			},
		},
	}
}

func reviewIndexText(r models.Review) string {
	title := strings.TrimSpace(r.Title)
	content := strings.TrimSpace(r.Content)
	switch {
	case title != "" && content != "":
		return title + "\n" + content
	case content != "":
		return content
	default:
		return title
	}
}

func reviewPointID(datasetID string, reviewID int) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte(fmt.Sprintf("review-insight/%s/%d", datasetID, reviewID))).String()
}

func reviewPayload(datasetID string, r models.Review, text string) map[string]*qdrant.Value {
	fields := map[string]interface{}{
		"dataset_id": datasetID,
		"review_id":  r.ID,
		"rating":     r.Rating,
		"sentiment":  r.Sentiment,
		"category":   r.Category,
		"platform":   r.Platform,
		"text":       text,
	}
	payload := make(map[string]*qdrant.Value, len(fields))
	for k, v := range fields {
		if qv := toQdrantValue(v); qv != nil {
			payload[k] = qv
		}
	}
	return payload
}

// toQdrantValue 型スイッチでqdrant.Valueに変換。未対応の型はnil
func toQdrantValue(value interface{}) *qdrant.Value {
	switch v := value.(type) {
	case string:
		return &qdrant.Value{Kind: &qdrant.Value_StringValue{StringValue: v}}
	case int:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: int64(v)}}
	case int64:
		return &qdrant.Value{Kind: &qdrant.Value_IntegerValue{IntegerValue: v}}
	case float64:
		return &qdrant.Value{Kind: &qdrant.Value_DoubleValue{DoubleValue: v}}
	case bool:
		return &qdrant.Value{Kind: &qdrant.Value_BoolValue{BoolValue: v}}
	}
	return nil
}
