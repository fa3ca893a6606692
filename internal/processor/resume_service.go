package processor

import (
	"bytes"
	"context"
	"crypto/md5"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"job-match-go/internal/storage"
	"job-match-go/internal/types"
)

var resumeServiceTracer = otel.Tracer("job-match-go/processor/resume_service")

// ResumeService 简历处理服务：提取、解析、缓存、落库、归档。
// 解析结果按文本MD5缓存，相同简历重复上传直接复用。
type ResumeService struct {
	components *Components
	settings   *Settings
}

// NewResumeService 创建简历处理服务
func NewResumeService(compOpts []ComponentOpt, setOpts []SettingOpt) (*ResumeService, error) {
	components := &Components{}
	for _, opt := range compOpts {
		opt(components)
	}

	settings := &Settings{
		Logger: log.New(os.Stdout, "[ResumeService] ", log.LstdFlags),
	}
	for _, opt := range setOpts {
		opt(settings)
	}

	if components.ResumeParser == nil {
		return nil, fmt.Errorf("简历处理服务需要解析器组件")
	}
	if components.Storage == nil {
		return nil, fmt.Errorf("简历处理服务需要存储组件")
	}

	return &ResumeService{
		components: components,
		settings:   settings,
	}, nil
}

// ProcessResult 简历处理结果
type ProcessResult struct {
	Profile  *types.ResumeProfile `json:"profile"`
	TextMD5  string               `json:"text_md5"`
	CacheHit bool                 `json:"cache_hit"`
	// 归档对象键，未启用MinIO时为空
	ArchiveKey string `json:"archive_key,omitempty"`
}

// ProcessResumeFile 处理上传的简历文件：提取文本、解析并归档原件
func (s *ResumeService) ProcessResumeFile(ctx context.Context, userID, filename string, reader io.Reader) (*ProcessResult, error) {
	ctx, span := resumeServiceTracer.Start(ctx, "ResumeService.ProcessResumeFile")
	defer span.End()
	span.SetAttributes(
		attribute.String("resume.user_id", userID),
		attribute.String("resume.filename", filename),
	)

	if s.components.TextExtractor == nil {
		return nil, NewExtractError(userID, "未配置文本提取器")
	}

	data, err := io.ReadAll(reader)
	if err != nil {
		return nil, NewExtractError(userID, err.Error())
	}

	text, err := s.components.TextExtractor.ExtractText(ctx, bytes.NewReader(data), filename)
	if err != nil {
		return nil, NewExtractError(userID, err.Error())
	}

	result, err := s.ProcessResumeText(ctx, userID, text)
	if err != nil {
		return nil, err
	}

	// 归档失败不影响主流程
	if s.components.Storage.MinIO != nil {
		ext := filepath.Ext(filename)
		key, err := s.components.Storage.MinIO.ArchiveResumeBytes(ctx, userID, ext, data)
		if err != nil {
			s.settings.Logger.Printf("归档原始简历失败 (user=%s): %v", userID, err)
		} else {
			result.ArchiveKey = key
		}
	}

	return result, nil
}

// ProcessResumeText 处理简历纯文本：解析画像并持久化。
// 相同文本(MD5一致)在缓存有效期内直接返回缓存结果。
func (s *ResumeService) ProcessResumeText(ctx context.Context, userID, text string) (*ProcessResult, error) {
	ctx, span := resumeServiceTracer.Start(ctx, "ResumeService.ProcessResumeText")
	defer span.End()

	sum := md5.Sum([]byte(text))
	textMD5 := hex.EncodeToString(sum[:])
	span.SetAttributes(attribute.String("resume.text_md5", textMD5))

	// 1. 查解析缓存
	if s.components.Storage.Redis != nil {
		cached, err := s.components.Storage.Redis.GetResumeProfile(ctx, textMD5)
		if err == nil && cached != nil {
			span.SetAttributes(attribute.Bool("resume.cache_hit", true))
			s.settings.Logger.Printf("解析缓存命中: md5=%s", textMD5)
			return &ProcessResult{Profile: cached, TextMD5: textMD5, CacheHit: true}, nil
		}
		if err != nil && !errors.Is(err, storage.ErrNotFound) {
			s.settings.Logger.Printf("读取解析缓存失败: %v", err)
		}
	}

	// 2. 解析
	profile, err := s.components.ResumeParser.Parse(ctx, text)
	if err != nil {
		return nil, NewParseError(userID, err.Error())
	}

	// 3. 回写缓存和去重集合，失败降级
	if s.components.Storage.Redis != nil {
		if err := s.components.Storage.Redis.CacheResumeProfile(ctx, textMD5, profile); err != nil {
			s.settings.Logger.Printf("写入解析缓存失败: %v", err)
		}
		if _, err := s.components.Storage.Redis.MarkResumeProcessed(ctx, textMD5); err != nil {
			s.settings.Logger.Printf("写入去重集合失败: %v", err)
		}
	}

	// 4. 落库用户画像
	if userID != "" && s.components.Storage.MySQL != nil {
		if err := s.saveUserProfile(ctx, userID, profile); err != nil {
			s.settings.Logger.Printf("保存用户画像失败 (user=%s): %v", userID, err)
		}
	}

	// 5. 发布解析完成事件
	if s.components.Storage.RabbitMQ != nil {
		event := &storage.ResumeParsedEvent{
			UserID:          userID,
			TextMD5:         textMD5,
			SkillCount:      len(profile.Skills),
			ProjectCount:    len(profile.Projects),
			ExperienceLevel: profile.ExperienceLevel.Level,
			ParsedAt:        time.Now(),
		}
		if err := s.components.Storage.RabbitMQ.PublishResumeParsed(ctx, event); err != nil {
			s.settings.Logger.Printf("发布简历解析事件失败: %v", err)
		}
	}

	return &ProcessResult{Profile: profile, TextMD5: textMD5}, nil
}

// GetUserProfile 读取已保存的用户画像
func (s *ResumeService) GetUserProfile(ctx context.Context, userID string) (*types.UserProfileData, error) {
	if s.components.Storage.MySQL == nil {
		return nil, ErrDatabaseFailed
	}
	return s.components.Storage.MySQL.GetUserProfile(ctx, userID)
}

// saveUserProfile 将解析画像转换为持久化结构落库
func (s *ResumeService) saveUserProfile(ctx context.Context, userID string, profile *types.ResumeProfile) error {
	data := &types.UserProfileData{
		UserID:            userID,
		Name:              profile.Contact.Name,
		Email:             profile.Contact.Email,
		Phone:             profile.Contact.Phone,
		Skills:            profile.Skills,
		ExperienceLevel:   profile.ExperienceLevel.Level,
		YearsExperience:   profile.ExperienceLevel.YearsExperience,
		IsStudent:         profile.ExperienceLevel.IsStudent,
		SeekingInternship: profile.ExperienceLevel.SeekingInternship,
		Education:         profile.Education,
		Projects:          profile.Projects,
	}
	return s.components.Storage.MySQL.SaveUserProfile(ctx, data)
}
