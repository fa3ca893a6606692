package processor

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/embedding"

	"job-match-go/internal/constants"
	"job-match-go/internal/types"
)

// JobSource 外部岗位来源接口
type JobSource interface {
	// FetchJobs 按搜索词和地区抓取岗位
	FetchJobs(ctx context.Context, query, location string) ([]types.JobPosting, error)
}

// TextEmbedder 文本向量化接口，直接使用eino的Embedder定义
type TextEmbedder = embedding.Embedder

// BuildResumeEmbeddingText 构造简历画像的向量化文本。
// 技能、项目、教育经历各占一段，缺失的段落跳过。
func BuildResumeEmbeddingText(profile *types.ResumeProfile) string {
	var segments []string

	if len(profile.Skills) > 0 {
		segments = append(segments, "Skills: "+strings.Join(profile.Skills, ", "))
	}
	for _, proj := range profile.Projects {
		seg := "Project: " + proj.Title
		if proj.Technologies != "" {
			seg += ". Technologies: " + proj.Technologies
		}
		segments = append(segments, seg)
	}
	for _, edu := range profile.Education {
		if edu.Degree != "" && edu.Institution != "" {
			segments = append(segments, fmt.Sprintf("Education: %s at %s", edu.Degree, edu.Institution))
		}
	}

	return strings.Join(segments, "\n")
}

// BuildJobEmbeddingText 构造岗位的向量化文本，描述超出预算时截断
func BuildJobEmbeddingText(job *types.JobPosting) string {
	description := truncateRunes(job.Description, constants.JobDescriptionEmbedBudget)

	segments := []string{
		"Job Title: " + job.Title,
		"Company: " + job.Company,
		"Location: " + job.Location,
		"Type: " + job.EmploymentType,
		"Description: " + description,
	}
	if job.Requirements != "" {
		segments = append(segments, "Requirements: "+job.Requirements)
	}

	return strings.Join(segments, "\n\n")
}
