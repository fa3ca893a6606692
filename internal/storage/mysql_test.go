package storage

import (
	"context"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"job-match-go/internal/storage/models"
	"job-match-go/internal/types"
)

// TestGenerateQueryHashPermutationInvariant 验证指纹对技能顺序和大小写不敏感
func TestGenerateQueryHashPermutationInvariant(t *testing.T) {
	a := GenerateQueryHash([]string{"Python", "SQL"}, types.ExperienceLevel("Mid"), "India", 10)
	b := GenerateQueryHash([]string{"sql", "python"}, types.LevelMid, "india", 10)

	assert.Equal(t, a, b, "技能排列和大小写变化不应改变指纹")
	assert.Len(t, a, 64, "sha256十六进制指纹长度应为64")
}

// TestGenerateQueryHashDistinguishesInputs 验证不同输入产生不同指纹
func TestGenerateQueryHashDistinguishesInputs(t *testing.T) {
	base := GenerateQueryHash([]string{"python"}, types.LevelMid, "india", 10)

	assert.NotEqual(t, base, GenerateQueryHash([]string{"java"}, types.LevelMid, "india", 10), "技能不同")
	assert.NotEqual(t, base, GenerateQueryHash([]string{"python"}, types.LevelSenior, "india", 10), "级别不同")
	assert.NotEqual(t, base, GenerateQueryHash([]string{"python"}, types.LevelMid, "remote", 10), "地区不同")
}

// TestGenerateQueryHashTruncatesSkills 验证超过上限的技能不参与指纹
func TestGenerateQueryHashTruncatesSkills(t *testing.T) {
	// 排序后取前2个：a, b
	a := GenerateQueryHash([]string{"c", "b", "a"}, types.LevelMid, "", 2)
	b := GenerateQueryHash([]string{"a", "b", "z"}, types.LevelMid, "", 2)

	assert.Equal(t, a, b, "截断后尾部技能不应影响指纹")
}

// TestGenerateQueryHashSkipsBlankSkills 验证空白技能项被忽略
func TestGenerateQueryHashSkipsBlankSkills(t *testing.T) {
	a := GenerateQueryHash([]string{"python", "  ", ""}, types.LevelEntry, "", 10)
	b := GenerateQueryHash([]string{"python"}, types.LevelEntry, "", 10)

	assert.Equal(t, a, b)
}

// newTestMySQL 构造基于内存SQLite的存储实例，语义与MySQL实现一致。
// 模型标签里的MySQL默认值表达式SQLite不认，建表用显式DDL。
func newTestMySQL(t *testing.T) *MySQL {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)

	ddl := []string{
		`CREATE TABLE cached_jobs (
			job_id varchar(128) PRIMARY KEY,
			title varchar(255) NOT NULL,
			company varchar(255),
			location varchar(255),
			description text,
			requirements text,
			employment_type varchar(50),
			experience_level varchar(20),
			url varchar(1024),
			posted_date varchar(20),
			salary_min decimal(12,2),
			salary_max decimal(12,2),
			is_remote boolean DEFAULT false,
			keywords_json json,
			query_hash char(64),
			fetched_at datetime,
			expires_at datetime,
			created_at datetime,
			updated_at datetime
		)`,
		`CREATE TABLE search_queries (
			query_hash char(64) PRIMARY KEY,
			query_text varchar(1024),
			experience_level varchar(20),
			location varchar(255),
			skills_json json,
			job_count integer DEFAULT 0,
			query_count integer DEFAULT 1,
			last_fetched_at datetime,
			created_at datetime,
			updated_at datetime
		)`,
	}
	for _, stmt := range ddl {
		require.NoError(t, db.Exec(stmt).Error)
	}

	return &MySQL{db: db}
}

// TestGetNonExpiredJobsFiltersExpired 验证过期缓存岗位不再返回
func TestGetNonExpiredJobsFiltersExpired(t *testing.T) {
	m := newTestMySQL(t)
	ctx := context.Background()

	hash := GenerateQueryHash([]string{"python", "sql"}, types.LevelMid, "india", 10)
	jobs := []types.JobPosting{
		{ID: "j1", Title: "Backend Engineer", Company: "Acme", ExperienceLevel: types.LevelMid},
		{ID: "j2", Title: "Data Engineer", Company: "Beta", ExperienceLevel: types.LevelMid},
	}

	// 1. 以3天TTL写入，应全部可见
	require.NoError(t, m.UpsertCachedJobs(ctx, jobs, hash, 3*24*time.Hour))
	cached, err := m.GetNonExpiredJobs(ctx, hash)
	require.NoError(t, err)
	assert.Len(t, cached, 2)

	// 2. 回拨一条记录的过期时间，该条应被过滤
	require.NoError(t, m.db.Model(&models.CachedJob{}).
		Where("job_id = ?", "j1").
		Update("expires_at", time.Now().Add(-time.Hour)).Error)
	cached, err = m.GetNonExpiredJobs(ctx, hash)
	require.NoError(t, err)
	require.Len(t, cached, 1)
	assert.Equal(t, "j2", cached[0].ID)

	// 3. 全部过期后查询应返回空
	require.NoError(t, m.db.Model(&models.CachedJob{}).
		Where("query_hash = ?", hash).
		Update("expires_at", time.Now().Add(-time.Hour)).Error)
	cached, err = m.GetNonExpiredJobs(ctx, hash)
	require.NoError(t, err)
	assert.Empty(t, cached)
}

// TestDeleteExpiredRemovesBackdatedRows 验证过期清理删除回拨的缓存记录
func TestDeleteExpiredRemovesBackdatedRows(t *testing.T) {
	m := newTestMySQL(t)
	ctx := context.Background()

	hash := GenerateQueryHash([]string{"go"}, types.LevelSenior, "", 10)
	jobs := []types.JobPosting{
		{ID: "j1", Title: "Platform Engineer", ExperienceLevel: types.LevelSenior},
	}
	require.NoError(t, m.UpsertCachedJobs(ctx, jobs, hash, 3*24*time.Hour))
	require.NoError(t, m.db.Model(&models.CachedJob{}).
		Where("query_hash = ?", hash).
		Update("expires_at", time.Now().Add(-time.Minute)).Error)

	deleted, err := m.DeleteExpired(ctx, 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, int64(1), deleted)

	cached, err := m.GetNonExpiredJobs(ctx, hash)
	require.NoError(t, err)
	assert.Empty(t, cached)
}
