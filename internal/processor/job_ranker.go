package processor

import (
	"math"
	"sort"

	"job-match-go/internal/constants"
	"job-match-go/internal/types"
)

// levelAdjacency 非学生档位的可见岗位级别邻接表。
// 候选人只看到与自身档位相邻的岗位，避免推荐明显不匹配的级别。
var levelAdjacency = map[types.ExperienceLevel][]types.ExperienceLevel{
	types.LevelEntry:  {types.LevelEntry, types.LevelMid},
	types.LevelMid:    {types.LevelEntry, types.LevelMid, types.LevelSenior},
	types.LevelSenior: {types.LevelMid, types.LevelSenior, types.LevelLead},
	types.LevelLead:   {types.LevelSenior, types.LevelLead},
}

// VisibleLevels 返回指定档位可见的岗位级别集合。
// 未知档位保守地只返回中级。
func VisibleLevels(level types.ExperienceLevel) []types.ExperienceLevel {
	if level == types.LevelStudent {
		return []types.ExperienceLevel{types.LevelStudent, types.LevelEntry}
	}
	if levels, ok := levelAdjacency[level]; ok {
		return levels
	}
	return []types.ExperienceLevel{types.LevelMid}
}

// scoredJob 带相似度分数的岗位
type scoredJob struct {
	job   types.JobPosting
	score float64
}

// JobRanker 岗位排序引擎，基于余弦相似度和级别过滤
type JobRanker struct{}

// NewJobRanker 创建岗位排序引擎
func NewJobRanker() *JobRanker {
	return &JobRanker{}
}

// Rank 对候选岗位按与简历向量的相似度排序。
// 学生档位混合学生岗和少量初级岗后重新排序；
// 其它档位按邻接表过滤级别，保持相似度序不再重排。
func (r *JobRanker) Rank(resumeVector []float64, jobs []types.JobPosting, jobVectors [][]float64, level types.ExperienceLevel, topK int) []types.JobMatch {
	if topK <= 0 {
		topK = constants.DefaultTopK
	}
	if len(jobs) == 0 || len(jobs) != len(jobVectors) {
		return nil
	}

	normalizedResume := l2Normalize(resumeVector)

	scored := make([]scoredJob, 0, len(jobs))
	for i, job := range jobs {
		score := cosineSimilarity(normalizedResume, l2Normalize(jobVectors[i]))
		scored = append(scored, scoredJob{job: job, score: score})
	}

	// 按相似度降序，分数保留原值（包括负分）
	sort.SliceStable(scored, func(i, j int) bool {
		return scored[i].score > scored[j].score
	})

	var selected []scoredJob
	if level == types.LevelStudent {
		selected = blendForStudent(scored)
	} else {
		visible := make(map[types.ExperienceLevel]bool)
		for _, lvl := range VisibleLevels(level) {
			visible[lvl] = true
		}
		for _, item := range scored {
			if visible[item.job.ExperienceLevel] {
				selected = append(selected, item)
			}
		}
	}

	if len(selected) > topK {
		selected = selected[:topK]
	}

	matches := make([]types.JobMatch, 0, len(selected))
	for _, item := range selected {
		matches = append(matches, toJobMatch(item.job, item.score))
	}
	return matches
}

// blendForStudent 学生档位的混合策略：最多10个学生岗加5个初级岗，
// 合并后按相似度重新排序。
func blendForStudent(scored []scoredJob) []scoredJob {
	var studentJobs, entryJobs []scoredJob
	for _, item := range scored {
		switch item.job.ExperienceLevel {
		case types.LevelStudent:
			if len(studentJobs) < 10 {
				studentJobs = append(studentJobs, item)
			}
		case types.LevelEntry:
			if len(entryJobs) < 5 {
				entryJobs = append(entryJobs, item)
			}
		}
	}

	blended := append(studentJobs, entryJobs...)
	sort.SliceStable(blended, func(i, j int) bool {
		return blended[i].score > blended[j].score
	})
	return blended
}

// l2Normalize 向量L2归一化，零向量原样返回
func l2Normalize(v []float64) []float64 {
	var sum float64
	for _, x := range v {
		sum += x * x
	}
	if sum == 0 {
		return v
	}

	norm := math.Sqrt(sum)
	normalized := make([]float64, len(v))
	for i, x := range v {
		normalized[i] = x / norm
	}
	return normalized
}

// truncateRunes 按字符数截断字符串，不切断多字节字符
func truncateRunes(s string, limit int) string {
	if len(s) <= limit {
		return s
	}
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// cosineSimilarity 计算两个向量的余弦相似度，维度不一致时返回0
func cosineSimilarity(a, b []float64) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += a[i] * b[i]
		normA += a[i] * a[i]
		normB += b[i] * b[i]
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}

// toJobMatch 岗位转匹配结果，描述和要求按字符数截断
func toJobMatch(job types.JobPosting, score float64) types.JobMatch {
	description := truncateRunes(job.Description, constants.MatchDescriptionLimit)
	requirements := truncateRunes(job.Requirements, constants.MatchRequirementsLimit)

	return types.JobMatch{
		ID:              job.ID,
		Title:           job.Title,
		Company:         job.Company,
		Location:        job.Location,
		EmploymentType:  job.EmploymentType,
		ExperienceLevel: job.ExperienceLevel,
		MatchScore:      score,
		URL:             job.URL,
		Description:     description,
		Requirements:    requirements,
	}
}
