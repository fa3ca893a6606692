package processor

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"job-match-go/internal/storage"
	"job-match-go/internal/types"
)

// TestFilterJobsByQuery 验证搜索词子串预过滤
func TestFilterJobsByQuery(t *testing.T) {
	jobs := []types.JobPosting{
		{ID: "j1", Title: "Backend Engineer", Description: "Build Go services"},
		{ID: "j2", Title: "Data Scientist", Description: "Work with Python and ML"},
		{ID: "j3", Title: "Frontend Developer", Description: "React applications"},
	}

	filtered := filterJobsByQuery(jobs, "python backend")
	var ids []string
	for _, job := range filtered {
		ids = append(ids, job.ID)
	}
	assert.Equal(t, []string{"j1", "j2"}, ids, "标题或描述命中任一搜索词即保留")

	assert.Len(t, filterJobsByQuery(jobs, ""), 3, "空搜索词不过滤")
	assert.Empty(t, filterJobsByQuery(jobs, "rust"), "无命中时结果为空")
}

// TestMatchesFromIndex 验证向量检索结果映射回候选岗位集
func TestMatchesFromIndex(t *testing.T) {
	jobs := []types.JobPosting{
		{ID: "j1", Title: "Backend Engineer", ExperienceLevel: types.LevelMid},
		{ID: "j2", Title: "Data Engineer", ExperienceLevel: types.LevelMid},
		{ID: "j3", Title: "Platform Engineer", ExperienceLevel: types.LevelSenior},
	}
	results := []storage.JobSearchResult{
		{JobID: "j2", Score: 0.4},
		{JobID: "j1", Score: 0.9},
		{JobID: "other", Score: 0.99},
		{JobID: "j1", Score: 0.9},
		{JobID: "j3", Score: 0.7},
	}

	matches := matchesFromIndex(results, jobs, 10)
	require.Len(t, matches, 3, "候选集外的岗位应被丢弃，重复岗位去重")
	assert.Equal(t, "j1", matches[0].ID, "结果按分数降序")
	assert.Equal(t, "j3", matches[1].ID)
	assert.Equal(t, "j2", matches[2].ID)
	assert.InDelta(t, 0.9, matches[0].MatchScore, 1e-9)

	matches = matchesFromIndex(results, jobs, 2)
	require.Len(t, matches, 2, "结果应截断到top_k")
	assert.Equal(t, "j1", matches[0].ID)
}
