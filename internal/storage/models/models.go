package models

import (
	"time"

	"gorm.io/datatypes"
)

// CachedJob 岗位缓存表，按岗位ID幂等写入
type CachedJob struct {
	JobID           string         `gorm:"type:varchar(128);primaryKey"`
	Title           string         `gorm:"type:varchar(255);not null"`
	Company         string         `gorm:"type:varchar(255)"`
	Location        string         `gorm:"type:varchar(255)"`
	Description     string         `gorm:"type:text"`
	Requirements    string         `gorm:"type:text"`
	EmploymentType  string         `gorm:"type:varchar(50)"`
	ExperienceLevel string         `gorm:"type:varchar(20);index:idx_cached_jobs_level"`
	URL             string         `gorm:"type:varchar(1024)"`
	PostedDate      string         `gorm:"type:varchar(20)"`
	SalaryMin       *float64       `gorm:"type:decimal(12,2)"`
	SalaryMax       *float64       `gorm:"type:decimal(12,2)"`
	IsRemote        bool           `gorm:"default:false"`
	KeywordsJSON    datatypes.JSON `gorm:"type:json"`
	QueryHash       string         `gorm:"type:char(64);index:idx_cached_jobs_query_hash"`
	FetchedAt       time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	ExpiresAt       time.Time      `gorm:"type:datetime(6);index:idx_cached_jobs_expires_at"`
	CreatedAt       time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt       time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (CachedJob) TableName() string {
	return "cached_jobs"
}

// SearchQuery 搜索查询记录表，主键为查询指纹
type SearchQuery struct {
	QueryHash       string         `gorm:"type:char(64);primaryKey"`
	QueryText       string         `gorm:"type:varchar(1024)"`
	ExperienceLevel string         `gorm:"type:varchar(20)"`
	Location        string         `gorm:"type:varchar(255)"`
	SkillsJSON      datatypes.JSON `gorm:"type:json"`
	JobCount        int            `gorm:"default:0"`
	QueryCount      int            `gorm:"default:1"` // 命中缓存也计数
	LastFetchedAt   time.Time      `gorm:"type:datetime(6)"`
	CreatedAt       time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt       time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (SearchQuery) TableName() string {
	return "search_queries"
}

// ResumeSearch 简历搜索分析日志表
type ResumeSearch struct {
	ID              uint64         `gorm:"primaryKey;autoIncrement"`
	UserID          string         `gorm:"type:varchar(64);index:idx_resume_searches_user_id"`
	SkillsJSON      datatypes.JSON `gorm:"type:json"`
	ExperienceLevel string         `gorm:"type:varchar(20)"`
	Location        string         `gorm:"type:varchar(255)"`
	ResultsCount    int            `gorm:"default:0"`
	TopScore        float64        `gorm:"default:0"`
	CacheHit        bool           `gorm:"default:false"`
	CreatedAt       time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);index:idx_resume_searches_created_at"`
}

func (ResumeSearch) TableName() string {
	return "resume_searches"
}

// UserProfile 用户画像表，由简历解析结果落库
type UserProfile struct {
	UserID            string         `gorm:"type:varchar(64);primaryKey"`
	Name              string         `gorm:"type:varchar(255)"`
	Email             string         `gorm:"type:varchar(255);index:idx_user_profiles_email"`
	Phone             string         `gorm:"type:varchar(50)"`
	SkillsJSON        datatypes.JSON `gorm:"type:json"`
	ExperienceLevel   string         `gorm:"type:varchar(20)"`
	YearsExperience   int            `gorm:"default:0"`
	IsStudent         bool           `gorm:"default:false"`
	SeekingInternship bool           `gorm:"default:false"`
	EducationJSON     datatypes.JSON `gorm:"type:json"`
	ProjectsJSON      datatypes.JSON `gorm:"type:json"`
	CreatedAt         time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6)"`
	UpdatedAt         time.Time      `gorm:"type:datetime(6);default:CURRENT_TIMESTAMP(6);autoUpdateTime"`
}

func (UserProfile) TableName() string {
	return "user_profiles"
}
