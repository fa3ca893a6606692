package parser

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"job-match-go/internal/config"
	"job-match-go/internal/constants"
	"job-match-go/internal/tracing"
	"job-match-go/internal/types"
)

var jsearchTracer = otel.Tracer("job-match-go/parser/jsearch")

// 按经验级别追加的搜索词
var levelQuerySuffix = map[types.ExperienceLevel]string{
	types.LevelStudent: "intern OR internship OR student",
	types.LevelEntry:   "junior OR entry level OR graduate",
	types.LevelSenior:  "senior OR lead",
	types.LevelLead:    "lead OR principal OR staff",
}

// JSearchClient JSearch岗位搜索API客户端（RapidAPI）
type JSearchClient struct {
	apiKey     string
	apiHost    string
	baseURL    string
	pages      int
	httpClient *http.Client
	logger     *log.Logger
}

// JSearchOption JSearch客户端构造选项
type JSearchOption func(*JSearchClient)

// WithJSearchHTTPClient 替换底层HTTP客户端，测试时注入
func WithJSearchHTTPClient(client *http.Client) JSearchOption {
	return func(c *JSearchClient) {
		if client != nil {
			c.httpClient = client
		}
	}
}

// WithJSearchLogger 设置日志记录器
func WithJSearchLogger(logger *log.Logger) JSearchOption {
	return func(c *JSearchClient) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// NewJSearchClient 创建JSearch客户端
func NewJSearchClient(cfg *config.JSearchConfig, opts ...JSearchOption) (*JSearchClient, error) {
	if cfg == nil {
		return nil, fmt.Errorf("jsearch配置不能为空")
	}
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("jsearch API密钥未配置")
	}

	timeout := time.Duration(cfg.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}

	pages := cfg.PagesPerFetch
	if pages <= 0 {
		pages = 3
	}

	c := &JSearchClient{
		apiKey:     cfg.APIKey,
		apiHost:    cfg.APIHost,
		baseURL:    cfg.BaseURL,
		pages:      pages,
		httpClient: &http.Client{Timeout: timeout},
		logger:     log.New(os.Stdout, "[JSearch] ", log.LstdFlags),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// BuildQuery 用技能和经验级别构造搜索词。
// 技能取前5个用 OR 连接，级别词作为附加的 OR 组。
// 地区不进搜索词，由抓取请求单独携带。
func BuildQuery(skills []string, level types.ExperienceLevel) string {
	limit := constants.MaxSkillsForQuery
	if len(skills) < limit {
		limit = len(skills)
	}

	query := strings.Join(skills[:limit], " OR ")
	if query == "" {
		query = "software engineer"
	}

	if suffix, ok := levelQuerySuffix[level]; ok {
		query = query + " " + suffix
	}
	return query
}

// jsearchResponse JSearch API响应结构
type jsearchResponse struct {
	Status string            `json:"status"`
	Data   []json.RawMessage `json:"data"`
}

// jsearchJob JSearch返回的单条岗位记录
type jsearchJob struct {
	JobID          string   `json:"job_id"`
	JobTitle       string   `json:"job_title"`
	EmployerName   string   `json:"employer_name"`
	JobCity        string   `json:"job_city"`
	JobState       string   `json:"job_state"`
	JobCountry     string   `json:"job_country"`
	JobDescription string   `json:"job_description"`
	JobEmployment  string   `json:"job_employment_type"`
	JobApplyLink   string   `json:"job_apply_link"`
	JobPostedAt    string   `json:"job_posted_at_datetime_utc"`
	JobMinSalary   *float64 `json:"job_min_salary"`
	JobMaxSalary   *float64 `json:"job_max_salary"`
	JobIsRemote    bool     `json:"job_is_remote"`
	JobHighlights  struct {
		Qualifications []string `json:"Qualifications"`
	} `json:"job_highlights"`
}

// FetchJobs 分页抓取岗位并归一化。
// 单页超时或服务端错误时跳过该页继续；收到限流响应(429)立即停止翻页，
// 返回已取得的结果；无法解析的记录单条跳过。
func (c *JSearchClient) FetchJobs(ctx context.Context, query, location string) ([]types.JobPosting, error) {
	ctx, span := jsearchTracer.Start(ctx, "JSearchClient.FetchJobs")
	defer span.End()
	span.SetAttributes(
		attribute.String("jsearch.query", query),
		attribute.String("jsearch.location", location),
		attribute.Int("jsearch.pages", c.pages),
	)

	var jobs []types.JobPosting
	seen := make(map[string]bool)

	for page := 1; page <= c.pages; page++ {
		records, rateLimited, err := c.fetchPage(ctx, query, location, page)
		if err != nil {
			// 单页失败不中断整体抓取
			c.logger.Printf("第%d页抓取失败，跳过: %v", page, err)
			continue
		}
		if rateLimited {
			c.logger.Printf("触发限流，停止翻页，已取得%d条", len(jobs))
			span.SetAttributes(attribute.Bool("jsearch.rate_limited", true))
			break
		}

		for _, raw := range records {
			job, ok := normalizeJSearchRecord(raw)
			if !ok {
				continue
			}
			if seen[job.ID] {
				continue
			}
			seen[job.ID] = true
			jobs = append(jobs, job)
		}
	}

	span.SetAttributes(attribute.Int("jsearch.jobs_fetched", len(jobs)))
	c.logger.Printf("抓取完成: query=%q, 共%d条岗位", query, len(jobs))
	return jobs, nil
}

// fetchPage 抓取单页，第二个返回值表示是否被限流
func (c *JSearchClient) fetchPage(ctx context.Context, query, location string, page int) ([]json.RawMessage, bool, error) {
	params := url.Values{}
	params.Set("query", query)
	if location != "" {
		params.Set("location", location)
	}
	params.Set("page", fmt.Sprintf("%d", page))
	params.Set("num_pages", "1")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/search?"+params.Encode(), nil)
	if err != nil {
		return nil, false, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.apiHost)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		tracing.RecordError(trace.SpanFromContext(ctx), err, tracing.ErrorTypeExternal)
		return nil, false, fmt.Errorf("请求JSearch失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusTooManyRequests {
		return nil, true, nil
	}
	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return nil, false, fmt.Errorf("JSearch返回状态码 %d: %s", resp.StatusCode, string(body))
	}

	var parsed jsearchResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return nil, false, fmt.Errorf("解析JSearch响应失败: %w", err)
	}
	return parsed.Data, false, nil
}

// normalizeJSearchRecord 将原始记录归一化为内部岗位结构。
// 缺少ID或标题的记录视为无效。
func normalizeJSearchRecord(raw json.RawMessage) (types.JobPosting, bool) {
	var rec jsearchJob
	if err := json.Unmarshal(raw, &rec); err != nil {
		return types.JobPosting{}, false
	}
	if rec.JobID == "" || rec.JobTitle == "" {
		return types.JobPosting{}, false
	}

	description := CleanJobDescription(rec.JobDescription)
	requirements := strings.Join(rec.JobHighlights.Qualifications, "; ")

	job := types.JobPosting{
		ID:              rec.JobID,
		Title:           rec.JobTitle,
		Company:         rec.EmployerName,
		Location:        joinLocation(rec.JobCity, rec.JobState, rec.JobCountry),
		Description:     description,
		Requirements:    requirements,
		EmploymentType:  rec.JobEmployment,
		URL:             rec.JobApplyLink,
		SalaryMin:       rec.JobMinSalary,
		SalaryMax:       rec.JobMaxSalary,
		IsRemote:        rec.JobIsRemote,
		ExperienceLevel: ClassifyJobLevel(rec.JobTitle, description),
	}

	if rec.JobPostedAt != "" {
		if t, err := time.Parse(time.RFC3339, rec.JobPostedAt); err == nil {
			job.PostedAt = t.Format("2006-01-02")
		}
	}

	return job, true
}

// joinLocation 拼接城市/省份/国家，跳过空段
func joinLocation(parts ...string) string {
	var nonEmpty []string
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			nonEmpty = append(nonEmpty, p)
		}
	}
	return strings.Join(nonEmpty, ", ")
}
