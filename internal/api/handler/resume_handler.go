package handler

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/google/uuid"

	"job-match-go/internal/config"
	"job-match-go/internal/logger"
	"job-match-go/internal/parser"
	"job-match-go/internal/processor"
	"job-match-go/internal/types"
)

// ResumeHandler 简历处理器，负责协调简历的上传和解析流程
type ResumeHandler struct {
	cfg           *config.Config
	resumeService *processor.ResumeService
}

// NewResumeHandler 创建简历处理器
func NewResumeHandler(cfg *config.Config, resumeService *processor.ResumeService) *ResumeHandler {
	return &ResumeHandler{
		cfg:           cfg,
		resumeService: resumeService,
	}
}

// ResumeUploadResponse 简历上传响应
type ResumeUploadResponse struct {
	UserID   string               `json:"user_id"`
	Profile  *types.ResumeProfile `json:"profile"`
	CacheHit bool                 `json:"cache_hit"`
}

// HandleResumeUpload 处理简历文件上传：提取文本、解析并返回画像。
// userID为空时生成随机ID，便于匿名试用。
func (h *ResumeHandler) HandleResumeUpload(ctx context.Context, reader io.Reader, filename, userID string) (*ResumeUploadResponse, error) {
	if userID == "" {
		userID = uuid.NewString()
	}

	logger.Info().
		Str("user_id", userID).
		Str("filename", filename).
		Msg("开始处理简历上传")

	result, err := h.resumeService.ProcessResumeFile(ctx, userID, filename, reader)
	if err != nil {
		if errors.Is(err, parser.ErrInsufficientText) {
			logger.Warn().
				Str("user_id", userID).
				Str("filename", filename).
				Msg("简历文本过短，可能是扫描件")
			return nil, fmt.Errorf("简历文本提取失败，请上传可复制文本的PDF: %w", err)
		}
		logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("简历处理失败")
		return nil, err
	}

	logger.Info().
		Str("user_id", userID).
		Str("text_md5", result.TextMD5).
		Bool("cache_hit", result.CacheHit).
		Int("skills", len(result.Profile.Skills)).
		Msg("简历处理完成")

	return &ResumeUploadResponse{
		UserID:   userID,
		Profile:  result.Profile,
		CacheHit: result.CacheHit,
	}, nil
}

// HandleResumeText 处理直接提交的简历纯文本
func (h *ResumeHandler) HandleResumeText(ctx context.Context, text, userID string) (*ResumeUploadResponse, error) {
	if userID == "" {
		userID = uuid.NewString()
	}

	result, err := h.resumeService.ProcessResumeText(ctx, userID, text)
	if err != nil {
		logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("简历文本解析失败")
		return nil, err
	}

	return &ResumeUploadResponse{
		UserID:   userID,
		Profile:  result.Profile,
		CacheHit: result.CacheHit,
	}, nil
}

// HandleGetProfile 查询已保存的用户画像
func (h *ResumeHandler) HandleGetProfile(ctx context.Context, userID string) (*types.UserProfileData, error) {
	if userID == "" {
		return nil, fmt.Errorf("user_id不能为空")
	}

	profile, err := h.resumeService.GetUserProfile(ctx, userID)
	if err != nil {
		logger.Error().
			Err(err).
			Str("user_id", userID).
			Msg("查询用户画像失败")
		return nil, err
	}
	if profile == nil {
		return nil, fmt.Errorf("用户画像不存在: %s", userID)
	}
	return profile, nil
}
