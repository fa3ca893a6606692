package handler

import (
	"context"
	"fmt"

	"job-match-go/internal/config"
	"job-match-go/internal/logger"
	"job-match-go/internal/processor"
	"job-match-go/internal/types"
)

// JobMatchHandler 岗位匹配处理器
type JobMatchHandler struct {
	cfg          *config.Config
	matchService *processor.JobMatchService
}

// NewJobMatchHandler 创建岗位匹配处理器
func NewJobMatchHandler(cfg *config.Config, matchService *processor.JobMatchService) *JobMatchHandler {
	return &JobMatchHandler{
		cfg:          cfg,
		matchService: matchService,
	}
}

// JobMatchRequest 岗位匹配请求
type JobMatchRequest struct {
	UserID   string               `json:"user_id"`
	Profile  *types.ResumeProfile `json:"profile"`
	Location string               `json:"location,omitempty"`
	TopK     int                  `json:"top_k,omitempty"`
}

// JobMatchResponse 岗位匹配响应
type JobMatchResponse struct {
	Matches   []types.JobMatch `json:"matches"`
	CacheHit  bool             `json:"cache_hit"`
	JobsFound int              `json:"jobs_found"`
}

// HandleJobMatch 为简历画像匹配岗位
func (h *JobMatchHandler) HandleJobMatch(ctx context.Context, req *JobMatchRequest) (*JobMatchResponse, error) {
	if req == nil || req.Profile == nil {
		return nil, fmt.Errorf("请求缺少简历画像")
	}
	if len(req.Profile.Skills) == 0 {
		return nil, fmt.Errorf("简历画像中没有技能，无法匹配")
	}

	logger.Info().
		Str("user_id", req.UserID).
		Str("level", string(req.Profile.ExperienceLevel.Level)).
		Int("skills", len(req.Profile.Skills)).
		Str("location", req.Location).
		Msg("开始岗位匹配")

	result, err := h.matchService.MatchJobs(ctx, req.UserID, req.Profile, req.Location, req.TopK)
	if err != nil {
		logger.Error().
			Err(err).
			Str("user_id", req.UserID).
			Msg("岗位匹配失败")
		return nil, err
	}

	logger.Info().
		Str("user_id", req.UserID).
		Bool("cache_hit", result.CacheHit).
		Int("jobs_found", result.JobsFound).
		Int("matches", len(result.Matches)).
		Msg("岗位匹配完成")

	return &JobMatchResponse{
		Matches:   result.Matches,
		CacheHit:  result.CacheHit,
		JobsFound: result.JobsFound,
	}, nil
}

// JobSearchRequest 画像加搜索词的岗位搜索请求
type JobSearchRequest struct {
	UserID   string `json:"user_id"`
	Query    string `json:"query"`
	Location string `json:"location,omitempty"`
	TopK     int    `json:"top_k,omitempty"`
}

// HandleJobSearch 用存量画像结合自由文本搜索词匹配岗位
func (h *JobMatchHandler) HandleJobSearch(ctx context.Context, req *JobSearchRequest) (*JobMatchResponse, error) {
	if req == nil || req.UserID == "" {
		return nil, fmt.Errorf("请求缺少user_id")
	}

	logger.Info().
		Str("user_id", req.UserID).
		Str("query", req.Query).
		Str("location", req.Location).
		Msg("开始岗位搜索")

	result, err := h.matchService.SearchJobs(ctx, req.UserID, req.Query, req.Location, req.TopK)
	if err != nil {
		logger.Error().
			Err(err).
			Str("user_id", req.UserID).
			Msg("岗位搜索失败")
		return nil, err
	}

	logger.Info().
		Str("user_id", req.UserID).
		Bool("cache_hit", result.CacheHit).
		Int("matches", len(result.Matches)).
		Msg("岗位搜索完成")

	return &JobMatchResponse{
		Matches:   result.Matches,
		CacheHit:  result.CacheHit,
		JobsFound: result.JobsFound,
	}, nil
}
