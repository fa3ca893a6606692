package processor

import (
	"fmt"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-match-go/internal/types"
)

// makeJob 构造指定级别的测试岗位
func makeJob(id string, level types.ExperienceLevel) types.JobPosting {
	return types.JobPosting{
		ID:              id,
		Title:           "Engineer " + id,
		Company:         "Acme",
		ExperienceLevel: level,
	}
}

// TestRankOrdersByCosineSimilarity 验证按余弦相似度降序排列
func TestRankOrdersByCosineSimilarity(t *testing.T) {
	resume := []float64{1, 0}
	jobs := []types.JobPosting{
		makeJob("low", types.LevelMid),
		makeJob("high", types.LevelMid),
	}
	// low 与简历向量夹角大，high 几乎同向
	vectors := [][]float64{
		{0.4, 0.9},
		{0.9, 0.1},
	}

	matches := NewJobRanker().Rank(resume, jobs, vectors, types.LevelMid, 10)
	require.Len(t, matches, 2)

	assert.Equal(t, "high", matches[0].ID)
	assert.Equal(t, "low", matches[1].ID)
	assert.Greater(t, matches[0].MatchScore, matches[1].MatchScore)
}

// TestRankNormalizesVectors 验证向量模长不影响相似度
func TestRankNormalizesVectors(t *testing.T) {
	resume := []float64{2, 0}
	jobs := []types.JobPosting{makeJob("j1", types.LevelMid)}
	vectors := [][]float64{{100, 0}}

	matches := NewJobRanker().Rank(resume, jobs, vectors, types.LevelMid, 10)
	require.Len(t, matches, 1)
	assert.InDelta(t, 1.0, matches[0].MatchScore, 1e-9, "同向向量无论模长相似度都应为1")
}

// TestRankPreservesNegativeScores 验证负相似度保留原值
func TestRankPreservesNegativeScores(t *testing.T) {
	resume := []float64{1, 0}
	jobs := []types.JobPosting{makeJob("j1", types.LevelMid)}
	vectors := [][]float64{{-1, 0}}

	matches := NewJobRanker().Rank(resume, jobs, vectors, types.LevelMid, 10)
	require.Len(t, matches, 1)
	assert.InDelta(t, -1.0, matches[0].MatchScore, 1e-9)
}

// TestRankLevelAdjacency 验证非学生档位只看到邻接级别的岗位
func TestRankLevelAdjacency(t *testing.T) {
	resume := []float64{1, 0}
	jobs := []types.JobPosting{
		makeJob("student", types.LevelStudent),
		makeJob("entry", types.LevelEntry),
		makeJob("mid", types.LevelMid),
		makeJob("senior", types.LevelSenior),
		makeJob("lead", types.LevelLead),
	}
	vectors := [][]float64{{1, 0}, {1, 0}, {1, 0}, {1, 0}, {1, 0}}

	tests := []struct {
		level    types.ExperienceLevel
		expected []string
	}{
		{types.LevelEntry, []string{"entry", "mid"}},
		{types.LevelMid, []string{"entry", "mid", "senior"}},
		{types.LevelSenior, []string{"mid", "senior", "lead"}},
		{types.LevelLead, []string{"senior", "lead"}},
		{types.ExperienceLevel("unknown"), []string{"mid"}},
	}

	for _, tt := range tests {
		t.Run(string(tt.level), func(t *testing.T) {
			matches := NewJobRanker().Rank(resume, jobs, vectors, tt.level, 10)
			var ids []string
			for _, m := range matches {
				ids = append(ids, m.ID)
			}
			assert.ElementsMatch(t, tt.expected, ids)
		})
	}
}

// TestRankAdjacencyFilterPreservesOrder 验证级别过滤后保持相似度序不重排
func TestRankAdjacencyFilterPreservesOrder(t *testing.T) {
	resume := []float64{1, 0}
	jobs := []types.JobPosting{
		makeJob("mid-low", types.LevelMid),
		makeJob("entry-high", types.LevelEntry),
		makeJob("senior-skip", types.LevelSenior),
		makeJob("mid-high", types.LevelMid),
	}
	vectors := [][]float64{
		{0.2, 0.98},
		{0.95, 0.3},
		{0.99, 0.1},
		{0.9, 0.43},
	}

	matches := NewJobRanker().Rank(resume, jobs, vectors, types.LevelEntry, 10)
	require.Len(t, matches, 3)

	// 高级岗被过滤掉，剩余岗位保持全局相似度序
	assert.Equal(t, "entry-high", matches[0].ID)
	assert.Equal(t, "mid-high", matches[1].ID)
	assert.Equal(t, "mid-low", matches[2].ID)
}

// TestRankStudentBlend 验证学生档位混合学生岗和初级岗并重排
func TestRankStudentBlend(t *testing.T) {
	resume := []float64{1, 0}

	var jobs []types.JobPosting
	var vectors [][]float64
	// 12个学生岗和8个初级岗，分数都高于0.5且交错分布
	for i := 0; i < 12; i++ {
		jobs = append(jobs, makeJob(fmt.Sprintf("student-%d", i), types.LevelStudent))
		vectors = append(vectors, []float64{1, float64(i) * 0.05})
	}
	for i := 0; i < 8; i++ {
		jobs = append(jobs, makeJob(fmt.Sprintf("entry-%d", i), types.LevelEntry))
		vectors = append(vectors, []float64{1, float64(i) * 0.04})
	}

	matches := NewJobRanker().Rank(resume, jobs, vectors, types.LevelStudent, 10)
	require.Len(t, matches, 10, "结果应截断到top_k")

	var hasStudent, hasEntry bool
	for i, m := range matches {
		assert.Greater(t, m.MatchScore, 0.5)
		if i > 0 {
			assert.GreaterOrEqual(t, matches[i-1].MatchScore, m.MatchScore, "混合结果应按相似度降序")
		}
		switch m.ExperienceLevel {
		case types.LevelStudent:
			hasStudent = true
		case types.LevelEntry:
			hasEntry = true
		}
	}
	assert.True(t, hasStudent, "应包含学生岗")
	assert.True(t, hasEntry, "应包含初级岗")
}

// TestRankTruncatesLongFields 验证匹配结果的描述和要求字段截断
func TestRankTruncatesLongFields(t *testing.T) {
	longDesc := make([]byte, 2000)
	for i := range longDesc {
		longDesc[i] = 'd'
	}

	job := makeJob("j1", types.LevelMid)
	job.Description = string(longDesc)
	job.Requirements = string(longDesc)

	matches := NewJobRanker().Rank([]float64{1}, []types.JobPosting{job}, [][]float64{{1}}, types.LevelMid, 10)
	require.Len(t, matches, 1)

	assert.Len(t, matches[0].Description, 500)
	assert.Len(t, matches[0].Requirements, 300)
}

// TestRankMismatchedVectorCount 验证岗位数与向量数不一致时返回空
func TestRankMismatchedVectorCount(t *testing.T) {
	matches := NewJobRanker().Rank([]float64{1}, []types.JobPosting{makeJob("j1", types.LevelMid)}, nil, types.LevelMid, 10)
	assert.Empty(t, matches)
}

// TestRankTruncatesOnRuneBoundary 验证多字节字符不被截断在字节中间
func TestRankTruncatesOnRuneBoundary(t *testing.T) {
	job := makeJob("j1", types.LevelMid)
	job.Description = strings.Repeat("岗", 600)
	job.Requirements = strings.Repeat("位", 400)

	matches := NewJobRanker().Rank([]float64{1}, []types.JobPosting{job}, [][]float64{{1}}, types.LevelMid, 10)
	require.Len(t, matches, 1)

	assert.True(t, utf8.ValidString(matches[0].Description), "截断不应产生非法UTF-8")
	assert.True(t, utf8.ValidString(matches[0].Requirements))
	assert.Equal(t, 500, len([]rune(matches[0].Description)), "描述按字符数截断")
	assert.Equal(t, 300, len([]rune(matches[0].Requirements)), "要求按字符数截断")
}
