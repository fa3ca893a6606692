package processor

import (
	"context"
	"fmt"
	"log"
	"os"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"job-match-go/internal/constants"
	"job-match-go/internal/parser"
	"job-match-go/internal/storage"
	"job-match-go/internal/types"
)

var jobServiceTracer = otel.Tracer("job-match-go/processor/job_service")

// JobMatchService 岗位匹配服务：缓存优先的抓取协调加相似度排序。
// 同一查询指纹在TTL内复用缓存岗位，只刷新查询记录；
// 未命中时抓取、落库、建向量索引后再排序。
type JobMatchService struct {
	components *Components
	settings   *Settings
	ranker     *JobRanker
}

// NewJobMatchService 创建岗位匹配服务
func NewJobMatchService(compOpts []ComponentOpt, setOpts []SettingOpt) (*JobMatchService, error) {
	components := &Components{}
	for _, opt := range compOpts {
		opt(components)
	}

	settings := &Settings{
		TopK:        constants.DefaultTopK,
		JobCacheTTL: constants.DefaultJobCacheTTLDays * 24 * time.Hour,
		Logger:      log.New(os.Stdout, "[JobMatchService] ", log.LstdFlags),
	}
	for _, opt := range setOpts {
		opt(settings)
	}

	if components.Storage == nil || components.Storage.MySQL == nil {
		return nil, fmt.Errorf("岗位匹配服务需要MySQL存储")
	}
	if components.Embedder == nil {
		return nil, ErrEmbedderRequired
	}
	if components.JobSource == nil {
		return nil, ErrJobSourceRequired
	}

	return &JobMatchService{
		components: components,
		settings:   settings,
		ranker:     NewJobRanker(),
	}, nil
}

// MatchResult 一次匹配请求的结果
type MatchResult struct {
	Matches   []types.JobMatch `json:"matches"`
	CacheHit  bool             `json:"cache_hit"`
	JobsFound int              `json:"jobs_found"`
	QueryHash string           `json:"query_hash"`
}

// MatchJobs 为简历画像匹配岗位。
// location为空时使用默认地区，topK<=0时使用默认数量。
func (s *JobMatchService) MatchJobs(ctx context.Context, userID string, profile *types.ResumeProfile, location string, topK int) (*MatchResult, error) {
	ctx, span := jobServiceTracer.Start(ctx, "JobMatchService.MatchJobs")
	defer span.End()

	if profile == nil || len(profile.Skills) == 0 {
		return nil, ErrNoSkillsExtracted
	}
	if location == "" {
		location = s.settings.DefaultLocation
	}
	if topK <= 0 {
		topK = s.settings.TopK
	}

	level := profile.ExperienceLevel.Level
	span.SetAttributes(
		attribute.String("match.level", string(level)),
		attribute.String("match.location", location),
		attribute.Int("match.top_k", topK),
	)

	// 1. 缓存优先获取候选岗位
	jobs, queryHash, cacheHit, err := s.getOrFetchJobs(ctx, profile.Skills, level, location)
	if err != nil {
		return nil, err
	}
	span.SetAttributes(
		attribute.Bool("match.cache_hit", cacheHit),
		attribute.Int("match.jobs_found", len(jobs)),
	)

	result := &MatchResult{
		CacheHit:  cacheHit,
		JobsFound: len(jobs),
		QueryHash: queryHash,
	}
	if len(jobs) == 0 {
		s.logSearch(ctx, userID, profile, location, 0, 0, cacheHit)
		return result, nil
	}

	// 2. 向量化简历和岗位后排序，缓存命中时优先走向量索引
	matches, err := s.rankJobs(ctx, profile, jobs, level, topK, cacheHit)
	if err != nil {
		return nil, err
	}
	result.Matches = matches

	// 3. 记录分析日志，失败不影响结果
	topScore := 0.0
	if len(matches) > 0 {
		topScore = matches[0].MatchScore
	}
	s.logSearch(ctx, userID, profile, location, len(matches), topScore, cacheHit)

	return result, nil
}

// SearchJobs 用存量画像加自由文本搜索词匹配岗位。
// 候选岗位先按搜索词做子串预过滤，再走常规相似度排序。
func (s *JobMatchService) SearchJobs(ctx context.Context, userID, query, location string, topK int) (*MatchResult, error) {
	ctx, span := jobServiceTracer.Start(ctx, "JobMatchService.SearchJobs")
	defer span.End()
	span.SetAttributes(
		attribute.String("search.user_id", userID),
		attribute.String("search.query", query),
	)

	stored, err := s.components.Storage.MySQL.GetUserProfile(ctx, userID)
	if err != nil {
		return nil, NewDatabaseError(userID, err.Error())
	}
	if stored == nil {
		return nil, ErrProfileNotFound
	}

	profile := &types.ResumeProfile{
		Skills:    stored.Skills,
		Projects:  stored.Projects,
		Education: stored.Education,
		ExperienceLevel: types.ExperienceLevelInfo{
			Level:             stored.ExperienceLevel,
			YearsExperience:   stored.YearsExperience,
			IsStudent:         stored.IsStudent,
			SeekingInternship: stored.SeekingInternship,
		},
	}
	if len(profile.Skills) == 0 {
		return nil, ErrNoSkillsExtracted
	}
	if location == "" {
		location = s.settings.DefaultLocation
	}
	if topK <= 0 {
		topK = s.settings.TopK
	}

	jobs, queryHash, cacheHit, err := s.getOrFetchJobs(ctx, profile.Skills, profile.ExperienceLevel.Level, location)
	if err != nil {
		return nil, err
	}
	jobs = filterJobsByQuery(jobs, query)
	span.SetAttributes(
		attribute.Bool("search.cache_hit", cacheHit),
		attribute.Int("search.jobs_after_filter", len(jobs)),
	)

	result := &MatchResult{
		CacheHit:  cacheHit,
		JobsFound: len(jobs),
		QueryHash: queryHash,
	}
	if len(jobs) == 0 {
		s.logSearch(ctx, userID, profile, location, 0, 0, cacheHit)
		return result, nil
	}

	matches, err := s.rankJobs(ctx, profile, jobs, profile.ExperienceLevel.Level, topK, cacheHit)
	if err != nil {
		return nil, err
	}
	result.Matches = matches

	topScore := 0.0
	if len(matches) > 0 {
		topScore = matches[0].MatchScore
	}
	s.logSearch(ctx, userID, profile, location, len(matches), topScore, cacheHit)

	return result, nil
}

// filterJobsByQuery 按搜索词做子串预过滤。
// 搜索词按空白切分，标题或描述命中任一词即保留；空搜索词不过滤。
func filterJobsByQuery(jobs []types.JobPosting, query string) []types.JobPosting {
	terms := strings.Fields(strings.ToLower(query))
	if len(terms) == 0 {
		return jobs
	}

	filtered := make([]types.JobPosting, 0, len(jobs))
	for _, job := range jobs {
		haystack := strings.ToLower(job.Title + " " + job.Description)
		for _, term := range terms {
			if strings.Contains(haystack, term) {
				filtered = append(filtered, job)
				break
			}
		}
	}
	return filtered
}

// getOrFetchJobs 缓存优先取岗位，未命中时走外部抓取并落库
func (s *JobMatchService) getOrFetchJobs(ctx context.Context, skills []string, level types.ExperienceLevel, location string) ([]types.JobPosting, string, bool, error) {
	mysql := s.components.Storage.MySQL
	queryHash := storage.GenerateQueryHash(skills, level, location, constants.MaxSkillsForCacheKey)

	cached, err := mysql.GetNonExpiredJobs(ctx, queryHash)
	if err != nil {
		return nil, queryHash, false, NewDatabaseError("", err.Error())
	}

	if len(cached) > 0 {
		// 命中只刷新查询记录，不动岗位数据
		if err := mysql.TouchSearchQuery(ctx, queryHash); err != nil {
			s.settings.Logger.Printf("刷新查询记录失败: %v", err)
		}
		return cached, queryHash, true, nil
	}

	// 未命中：构造级别增强的搜索词并抓取
	query := parser.BuildQuery(skills, level)
	fetched, err := s.components.JobSource.FetchJobs(ctx, query, location)
	if err != nil {
		return nil, queryHash, false, NewJobFetchError("", err.Error())
	}

	if len(fetched) > 0 {
		if err := mysql.UpsertCachedJobs(ctx, fetched, queryHash, s.settings.JobCacheTTL); err != nil {
			return nil, queryHash, false, NewDatabaseError("", err.Error())
		}
		s.indexFetchedJobs(ctx, fetched)
	}

	if err := mysql.RecordSearchQuery(ctx, queryHash, query, skills, level, location, len(fetched)); err != nil {
		s.settings.Logger.Printf("记录搜索查询失败: %v", err)
	}

	if s.components.Storage.RabbitMQ != nil {
		event := &storage.JobsFetchedEvent{
			QueryHash: queryHash,
			QueryText: query,
			JobCount:  len(fetched),
			FetchedAt: time.Now(),
		}
		if err := s.components.Storage.RabbitMQ.PublishJobsFetched(ctx, event); err != nil {
			s.settings.Logger.Printf("发布岗位抓取事件失败: %v", err)
		}
	}

	return fetched, queryHash, false, nil
}

// indexFetchedJobs 为新抓取的岗位建向量索引和关键词缓存，失败降级为日志
func (s *JobMatchService) indexFetchedJobs(ctx context.Context, jobs []types.JobPosting) {
	if s.components.Storage.Qdrant != nil {
		texts := make([]string, 0, len(jobs))
		for i := range jobs {
			texts = append(texts, BuildJobEmbeddingText(&jobs[i]))
		}
		embeddings, err := s.components.Embedder.EmbedStrings(ctx, texts)
		if err != nil {
			s.settings.Logger.Printf("岗位向量化失败，跳过索引: %v", err)
		} else if _, err := s.components.Storage.Qdrant.StoreJobVectors(ctx, jobs, embeddings); err != nil {
			s.settings.Logger.Printf("写入岗位向量索引失败: %v", err)
		}
	}

	if s.components.Storage.Redis != nil {
		for i := range jobs {
			keywords := parser.ExtractJobKeywords(jobs[i].Title, jobs[i].Description)
			if len(keywords) == 0 {
				continue
			}
			if err := s.components.Storage.Redis.CacheJobKeywords(ctx, jobs[i].ID, keywords, s.settings.JobCacheTTL); err != nil {
				s.settings.Logger.Printf("缓存岗位关键词失败 (job=%s): %v", jobs[i].ID, err)
			}
		}
	}
}

// rankJobs 向量化简历和候选岗位后做相似度排序。
// useIndex为真且向量库可用时优先用索引检索，索引不可用时降级为进程内计算。
func (s *JobMatchService) rankJobs(ctx context.Context, profile *types.ResumeProfile, jobs []types.JobPosting, level types.ExperienceLevel, topK int, useIndex bool) ([]types.JobMatch, error) {
	if useIndex && s.components.Storage.Qdrant != nil {
		matches, err := s.rankJobsWithIndex(ctx, profile, jobs, level, topK)
		if err == nil {
			return matches, nil
		}
		s.settings.Logger.Printf("向量索引检索失败，回退进程内排序: %v", err)
	}

	resumeText := BuildResumeEmbeddingText(profile)
	jobTexts := make([]string, 0, len(jobs))
	for i := range jobs {
		jobTexts = append(jobTexts, BuildJobEmbeddingText(&jobs[i]))
	}

	// 简历文本放在第一条，一次请求完成所有向量化
	allTexts := append([]string{resumeText}, jobTexts...)
	embeddings, err := s.components.Embedder.EmbedStrings(ctx, allTexts)
	if err != nil {
		return nil, NewEmbeddingError("", err.Error())
	}
	if len(embeddings) != len(allTexts) {
		return nil, NewEmbeddingError("", fmt.Sprintf("向量数量不匹配: 期望%d, 实际%d", len(allTexts), len(embeddings)))
	}

	return s.ranker.Rank(embeddings[0], jobs, embeddings[1:], level, topK), nil
}

// rankJobsWithIndex 用向量库检索排序缓存岗位，只需向量化简历一条文本。
// 学生档位分别检索学生岗和初级岗再混合，其它档位按可见级别过滤。
func (s *JobMatchService) rankJobsWithIndex(ctx context.Context, profile *types.ResumeProfile, jobs []types.JobPosting, level types.ExperienceLevel, topK int) ([]types.JobMatch, error) {
	embeddings, err := s.components.Embedder.EmbedStrings(ctx, []string{BuildResumeEmbeddingText(profile)})
	if err != nil {
		return nil, NewEmbeddingError("", err.Error())
	}
	if len(embeddings) != 1 {
		return nil, NewEmbeddingError("", fmt.Sprintf("向量数量不匹配: 期望1, 实际%d", len(embeddings)))
	}
	resumeVector := embeddings[0]

	qdrant := s.components.Storage.Qdrant
	var results []storage.JobSearchResult
	if level == types.LevelStudent {
		studentResults, err := qdrant.SearchJobs(ctx, resumeVector, []types.ExperienceLevel{types.LevelStudent}, 10)
		if err != nil {
			return nil, err
		}
		entryResults, err := qdrant.SearchJobs(ctx, resumeVector, []types.ExperienceLevel{types.LevelEntry}, 5)
		if err != nil {
			return nil, err
		}
		results = append(studentResults, entryResults...)
	} else {
		results, err = qdrant.SearchJobs(ctx, resumeVector, VisibleLevels(level), topK)
		if err != nil {
			return nil, err
		}
	}

	return matchesFromIndex(results, jobs, topK), nil
}

// matchesFromIndex 把向量检索结果映射回本次查询的候选岗位。
// 索引是全局的，不在候选集内的岗位丢弃；结果按分数降序截断到topK。
func matchesFromIndex(results []storage.JobSearchResult, jobs []types.JobPosting, topK int) []types.JobMatch {
	if topK <= 0 {
		topK = constants.DefaultTopK
	}

	candidates := make(map[string]*types.JobPosting, len(jobs))
	for i := range jobs {
		candidates[jobs[i].ID] = &jobs[i]
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})

	seen := make(map[string]bool, len(results))
	matches := make([]types.JobMatch, 0, topK)
	for _, item := range results {
		job, ok := candidates[item.JobID]
		if !ok || seen[item.JobID] {
			continue
		}
		seen[item.JobID] = true
		matches = append(matches, toJobMatch(*job, item.Score))
		if len(matches) == topK {
			break
		}
	}
	return matches
}

// logSearch 记录搜索分析日志
func (s *JobMatchService) logSearch(ctx context.Context, userID string, profile *types.ResumeProfile, location string, resultsCount int, topScore float64, cacheHit bool) {
	err := s.components.Storage.MySQL.LogResumeSearch(ctx, userID, profile.Skills,
		profile.ExperienceLevel.Level, location, resultsCount, topScore, cacheHit)
	if err != nil {
		s.settings.Logger.Printf("记录搜索分析日志失败: %v", err)
	}
}

// CleanupExpired 清理过期的缓存岗位和查询记录
func (s *JobMatchService) CleanupExpired(ctx context.Context) (int64, error) {
	deleted, err := s.components.Storage.MySQL.DeleteExpired(ctx, s.settings.JobCacheTTL)
	if err != nil {
		return 0, err
	}
	if deleted > 0 {
		s.settings.Logger.Printf("清理了%d条过期缓存记录", deleted)
	}
	return deleted, nil
}
