package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/gofrs/uuid/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"

	"job-match-go/internal/config"
	"job-match-go/internal/constants"
	"job-match-go/internal/tracing"
	"job-match-go/internal/types"
)

// 定义Qdrant的专用tracer
var qdrantTracer = otel.Tracer("job-match-go/storage/qdrant")

// QdrantPointIDNamespace 岗位向量点ID的专用命名空间。
// 同一岗位ID总是映射到同一个点ID，保证重复写入幂等。
var QdrantPointIDNamespace = uuid.Must(uuid.FromString("9b1f4c7a-2e85-4d10-b3f6-55c1d08a9e42"))

// JobVectorStore 岗位向量库接口
type JobVectorStore interface {
	// StoreJobVectors 存储岗位向量
	StoreJobVectors(ctx context.Context, jobs []types.JobPosting, embeddings [][]float64) ([]string, error)

	// SearchJobs 按级别过滤搜索相似岗位
	SearchJobs(ctx context.Context, queryVector []float64, levels []types.ExperienceLevel, limit int) ([]JobSearchResult, error)
}

// 确保Qdrant实现了JobVectorStore接口
var _ JobVectorStore = (*Qdrant)(nil)

// Qdrant 提供向量数据库功能
type Qdrant struct {
	endpoint       string
	collectionName string
	vectorSize     int
	distanceMetric string
	httpClient     *http.Client
}

// JobSearchResult 表示一个岗位搜索结果项
type JobSearchResult struct {
	JobID   string                 // 岗位ID
	Score   float64                // 相似度分数
	Payload map[string]interface{} // 载荷数据
}

// QdrantOption 定义Qdrant构造函数选项
type QdrantOption func(*Qdrant)

// WithDistanceMetric 设置距离度量
func WithDistanceMetric(metric string) QdrantOption {
	return func(q *Qdrant) {
		q.distanceMetric = metric
	}
}

// WithHTTPTimeout 设置HTTP客户端超时
func WithHTTPTimeout(timeout time.Duration) QdrantOption {
	return func(q *Qdrant) {
		q.httpClient = &http.Client{Timeout: timeout}
	}
}

// NewQdrant 创建Qdrant客户端
func NewQdrant(cfg *config.QdrantConfig, opts ...QdrantOption) (*Qdrant, error) {
	if cfg == nil {
		return nil, fmt.Errorf("qdrant配置不能为空")
	}

	endpoint := cfg.Endpoint
	if endpoint == "" {
		endpoint = "http://localhost:6333"
	}
	collectionName := cfg.Collection
	if collectionName == "" {
		collectionName = "cached_jobs"
	}
	vectorSize := cfg.Dimension
	if vectorSize <= 0 {
		vectorSize = 1024 // 与阿里云Embedding默认维度一致
	}

	q := &Qdrant{
		endpoint:       endpoint,
		collectionName: collectionName,
		vectorSize:     vectorSize,
		distanceMetric: "Cosine",
		httpClient:     &http.Client{Timeout: 30 * time.Second},
	}
	for _, opt := range opts {
		opt(q)
	}

	if err := q.ensureCollectionExists(context.Background()); err != nil {
		return nil, fmt.Errorf("确保集合 '%s' 存在失败: %w", collectionName, err)
	}

	log.Printf("成功连接到Qdrant服务器: %s，并确保集合 '%s' 存在", endpoint, collectionName)
	return q, nil
}

// ensureCollectionExists 确保向量集合存在，不存在时创建
func (q *Qdrant) ensureCollectionExists(ctx context.Context) error {
	ctx, span := qdrantTracer.Start(ctx, "Qdrant.EnsureCollectionExists",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("db.system", "qdrant"),
		attribute.String("db.operation", "check_collection"),
		attribute.String("db.collection", q.collectionName),
	)

	url := fmt.Sprintf("%s/collections/%s", q.endpoint, q.collectionName)
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeHTTP)
		return fmt.Errorf("创建检查集合请求失败: %w", err)
	}
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := q.httpClient.Do(req)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeHTTP)
		return fmt.Errorf("发送检查集合请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		log.Printf("集合 '%s' 不存在，将创建新集合", q.collectionName)
		return q.createCollection(ctx)
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("检查集合失败，状态码: %d, 响应: %s", resp.StatusCode, string(body))
		tracing.RecordError(span, err, tracing.ErrorTypeHTTP)
		return err
	}

	span.SetStatus(codes.Ok, "")
	return nil
}

// createCollection 创建新的向量集合
func (q *Qdrant) createCollection(ctx context.Context) error {
	ctx, span := qdrantTracer.Start(ctx, "Qdrant.CreateCollection",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("db.system", "qdrant"),
		attribute.String("db.operation", "create_collection"),
		attribute.String("db.collection", q.collectionName),
		attribute.Int("db.vector_size", q.vectorSize),
	)

	createReqBody := map[string]interface{}{
		"vectors": map[string]interface{}{
			"size":     q.vectorSize,
			"distance": q.distanceMetric,
		},
		"optimizers_config": map[string]interface{}{
			"default_segment_number": 2,
		},
	}
	jsonData, err := json.Marshal(createReqBody)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeVectorDB)
		return fmt.Errorf("序列化创建集合请求失败: %w", err)
	}

	url := fmt.Sprintf("%s/collections/%s", q.endpoint, q.collectionName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, url, bytes.NewBuffer(jsonData))
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeHTTP)
		return fmt.Errorf("创建集合请求对象失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := q.httpClient.Do(req)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeHTTP)
		return fmt.Errorf("发送创建集合请求失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		err := fmt.Errorf("创建集合失败，状态码: %d, 响应: %s", resp.StatusCode, string(body))
		tracing.RecordError(span, err, tracing.ErrorTypeHTTP)
		return err
	}

	span.SetStatus(codes.Ok, "")
	log.Printf("已成功创建Qdrant集合: %s，维度: %d", q.collectionName, q.vectorSize)
	return nil
}

// StoreJobVectors 存储岗位向量，点ID由岗位ID确定性派生
func (q *Qdrant) StoreJobVectors(ctx context.Context, jobs []types.JobPosting, embeddings [][]float64) ([]string, error) {
	ctx, span := qdrantTracer.Start(ctx, "Qdrant.StoreJobVectors",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("db.system", "qdrant"),
		attribute.String("db.operation", "store_vectors"),
		attribute.String("db.collection", q.collectionName),
		attribute.Int("vectors.count", len(embeddings)),
	)

	if len(jobs) != len(embeddings) {
		err := fmt.Errorf("jobs数量(%d)与embeddings数量(%d)不匹配", len(jobs), len(embeddings))
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}
	if len(embeddings) == 0 {
		span.SetStatus(codes.Ok, "no vectors to store")
		return []string{}, nil
	}

	points := make([]interface{}, 0, len(jobs))
	ids := make([]string, 0, len(jobs))

	for i, embedding := range embeddings {
		if len(embedding) != q.vectorSize {
			err := fmt.Errorf("向量维度(%d)与配置维度(%d)不匹配", len(embedding), q.vectorSize)
			tracing.RecordError(span, err, tracing.ErrorTypeValidation)
			return nil, err
		}

		job := jobs[i]
		pointID := uuid.NewV5(QdrantPointIDNamespace, "job_id:"+job.ID).String()
		ids = append(ids, pointID)

		payload := map[string]interface{}{
			"job_id":           job.ID,
			"title":            job.Title,
			"company":          job.Company,
			"location":         job.Location,
			"experience_level": string(job.ExperienceLevel),
			"is_remote":        job.IsRemote,
			"description":      truncateString(job.Description, constants.JobDescriptionEmbedBudget),
			"source":           "jsearch",
		}

		points = append(points, map[string]interface{}{
			"id":      pointID,
			"vector":  embedding,
			"payload": payload,
		})
	}

	requestBody := map[string]interface{}{"points": points}
	jsonBody, err := json.Marshal(requestBody)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeVectorDB)
		return nil, fmt.Errorf("序列化请求体失败: %w", err)
	}

	endpoint := fmt.Sprintf("%s/collections/%s/points?wait=true", q.endpoint, q.collectionName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPut, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeHTTP)
		return nil, fmt.Errorf("创建HTTP请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := q.httpClient.Do(req)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeHTTP)
		return nil, fmt.Errorf("执行HTTP请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeHTTP)
		return nil, fmt.Errorf("读取响应体失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("API调用失败，状态码: %d，响应: %s", resp.StatusCode, string(body))
		tracing.RecordError(span, err, tracing.ErrorTypeVectorDB)
		return nil, err
	}

	span.SetStatus(codes.Ok, "")
	return ids, nil
}

// SearchJobs 按查询向量搜索相似岗位，levels非空时按经验级别过滤
func (q *Qdrant) SearchJobs(ctx context.Context, queryVector []float64, levels []types.ExperienceLevel, limit int) ([]JobSearchResult, error) {
	ctx, span := qdrantTracer.Start(ctx, "Qdrant.SearchJobs",
		trace.WithSpanKind(trace.SpanKindClient))
	defer span.End()

	span.SetAttributes(
		attribute.String("db.system", "qdrant"),
		attribute.String("db.operation", "search"),
		attribute.String("db.collection", q.collectionName),
		attribute.Int("search.limit", limit),
	)

	if len(queryVector) != q.vectorSize {
		err := fmt.Errorf("查询向量维度(%d)与配置维度(%d)不匹配", len(queryVector), q.vectorSize)
		tracing.RecordError(span, err, tracing.ErrorTypeValidation)
		return nil, err
	}
	if limit <= 0 {
		limit = constants.DefaultTopK
	}

	searchBody := map[string]interface{}{
		"vector":       queryVector,
		"limit":        limit,
		"with_payload": true,
	}

	if len(levels) > 0 {
		anyLevels := make([]string, 0, len(levels))
		for _, lvl := range levels {
			anyLevels = append(anyLevels, string(lvl))
		}
		searchBody["filter"] = map[string]interface{}{
			"must": []interface{}{
				map[string]interface{}{
					"key":   "experience_level",
					"match": map[string]interface{}{"any": anyLevels},
				},
			},
		}
		span.SetAttributes(attribute.StringSlice("search.levels", anyLevels))
	}

	jsonBody, err := json.Marshal(searchBody)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeVectorDB)
		return nil, fmt.Errorf("序列化搜索请求失败: %w", err)
	}

	endpoint := fmt.Sprintf("%s/collections/%s/points/search", q.endpoint, q.collectionName)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(jsonBody))
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeHTTP)
		return nil, fmt.Errorf("创建搜索请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(req.Header))

	resp, err := q.httpClient.Do(req)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeHTTP)
		return nil, fmt.Errorf("执行搜索请求失败: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeHTTP)
		return nil, fmt.Errorf("读取搜索响应失败: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		err := fmt.Errorf("搜索API调用失败，状态码: %d，响应: %s", resp.StatusCode, string(body))
		tracing.RecordError(span, err, tracing.ErrorTypeVectorDB)
		return nil, err
	}

	var response struct {
		Result []struct {
			ID      interface{}            `json:"id"`
			Score   float64                `json:"score"`
			Payload map[string]interface{} `json:"payload"`
		} `json:"result"`
	}
	if err := json.Unmarshal(body, &response); err != nil {
		tracing.RecordError(span, err, tracing.ErrorTypeVectorDB)
		return nil, fmt.Errorf("解析搜索响应失败: %w", err)
	}

	results := make([]JobSearchResult, 0, len(response.Result))
	for _, item := range response.Result {
		jobID, _ := item.Payload["job_id"].(string)
		results = append(results, JobSearchResult{
			JobID:   jobID,
			Score:   item.Score,
			Payload: item.Payload,
		})
	}

	span.SetAttributes(attribute.Int("search.results", len(results)))
	span.SetStatus(codes.Ok, "")
	return results, nil
}

// truncateString 按字符数截断字符串，不切断多字节字符
func truncateString(s string, maxLen int) string {
	if len(s) <= maxLen {
		return s
	}
	runes := []rune(s)
	if len(runes) <= maxLen {
		return s
	}
	return string(runes[:maxLen])
}
