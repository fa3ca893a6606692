package storage

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"sort"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	semconv "go.opentelemetry.io/otel/semconv/v1.21.0"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/datatypes"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
	"gorm.io/gorm/logger"

	"job-match-go/internal/config"
	"job-match-go/internal/storage/models"
	"job-match-go/internal/tracing"
	"job-match-go/internal/types"
)

var mysqlTracer = otel.Tracer("job-match-go/storage/mysql")

// GormTracingPlugin GORM插件，为数据库操作添加OpenTelemetry追踪点
type GormTracingPlugin struct {
	tracer         trace.Tracer
	dbName         string
	disableErrSkip bool
}

// Name 返回插件名称
func (p *GormTracingPlugin) Name() string {
	return "GormOpenTelemetryPlugin"
}

// Initialize 注册GORM回调以启用追踪
func (p *GormTracingPlugin) Initialize(db *gorm.DB) error {
	cb := db.Callback()

	if err := cb.Create().Before("gorm:create").Register("otel:before_create", p.before("CREATE")); err != nil {
		return err
	}
	if err := cb.Create().After("gorm:create").Register("otel:after_create", p.after()); err != nil {
		return err
	}
	if err := cb.Query().Before("gorm:query").Register("otel:before_query", p.before("SELECT")); err != nil {
		return err
	}
	if err := cb.Query().After("gorm:query").Register("otel:after_query", p.after()); err != nil {
		return err
	}
	if err := cb.Update().Before("gorm:update").Register("otel:before_update", p.before("UPDATE")); err != nil {
		return err
	}
	if err := cb.Update().After("gorm:update").Register("otel:after_update", p.after()); err != nil {
		return err
	}
	if err := cb.Delete().Before("gorm:delete").Register("otel:before_delete", p.before("DELETE")); err != nil {
		return err
	}
	if err := cb.Delete().After("gorm:delete").Register("otel:after_delete", p.after()); err != nil {
		return err
	}
	if err := cb.Raw().Before("gorm:raw").Register("otel:before_raw", p.before("RAW")); err != nil {
		return err
	}
	if err := cb.Raw().After("gorm:raw").Register("otel:after_raw", p.after()); err != nil {
		return err
	}

	return nil
}

// before 返回在GORM操作之前执行的回调函数
func (p *GormTracingPlugin) before(operation string) func(db *gorm.DB) {
	return func(db *gorm.DB) {
		if p.disableErrSkip && db.Statement.SkipHooks {
			return
		}

		ctx := db.Statement.Context
		if ctx == nil {
			ctx = context.Background()
		}

		tableName := db.Statement.Table
		if tableName == "" {
			tableName = "unknown"
		}

		spanName := fmt.Sprintf("%s %s", operation, tableName)
		opts := []trace.SpanStartOption{
			trace.WithSpanKind(trace.SpanKindClient),
			trace.WithAttributes(
				semconv.DBSystemMySQL,
				attribute.String("db.name", p.dbName),
				attribute.String("db.operation", operation),
				attribute.String("db.sql.table", tableName),
			),
		}

		newCtx, span := p.tracer.Start(ctx, spanName, opts...)
		db.Statement.Context = context.WithValue(newCtx, "otel-span", span)
	}
}

// after 返回在GORM操作之后执行的回调函数
func (p *GormTracingPlugin) after() func(db *gorm.DB) {
	return func(db *gorm.DB) {
		span, ok := db.Statement.Context.Value("otel-span").(trace.Span)
		if !ok {
			return
		}
		defer span.End()

		span.SetAttributes(attribute.Int64("db.rows_affected", db.Statement.RowsAffected))

		if db.Error != nil {
			if errors.Is(db.Error, gorm.ErrRecordNotFound) {
				// 未命中属于正常业务路径
				span.SetAttributes(attribute.String("error.type", "record_not_found"))
				span.SetStatus(codes.Ok, "record not found")
			} else {
				tracing.RecordError(span, db.Error, tracing.ErrorTypeDB)
			}
		} else {
			span.SetStatus(codes.Ok, "")
		}
	}
}

// NewGormTracingPlugin 创建GORM追踪插件
func NewGormTracingPlugin(dbName string) *GormTracingPlugin {
	return &GormTracingPlugin{
		tracer:         mysqlTracer,
		dbName:         dbName,
		disableErrSkip: true,
	}
}

// MySQL 提供关系数据库功能
type MySQL struct {
	db  *gorm.DB
	cfg *config.MySQLConfig
}

// NewMySQL 创建MySQL客户端并自动迁移表结构
func NewMySQL(cfg *config.MySQLConfig) (*MySQL, error) {
	if cfg == nil {
		return nil, fmt.Errorf("MySQL配置不能为空")
	}

	dsn := fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?charset=utf8mb4&parseTime=True&loc=Local&timeout=%ds&readTimeout=%ds&writeTimeout=%ds",
		cfg.Username, cfg.Password, cfg.Host, cfg.Port, cfg.Database,
		cfg.ConnectTimeoutSeconds, cfg.ReadTimeoutSeconds, cfg.WriteTimeoutSeconds)

	var logLevel logger.LogLevel
	switch cfg.LogLevel {
	case 1:
		logLevel = logger.Silent
	case 2:
		logLevel = logger.Error
	case 3:
		logLevel = logger.Warn
	default:
		logLevel = logger.Info
	}

	gormConfig := &gorm.Config{
		DisableForeignKeyConstraintWhenMigrating: true,
		Logger:                                   logger.Default.LogMode(logLevel),
		PrepareStmt:                              true,
		NowFunc: func() time.Time {
			return time.Now().Local()
		},
	}

	db, err := gorm.Open(mysql.Open(dsn), gormConfig)
	if err != nil {
		return nil, fmt.Errorf("连接MySQL失败: %w", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("获取底层 sql.DB 失败: %w", err)
	}
	sqlDB.SetMaxIdleConns(cfg.MaxIdleConns)
	sqlDB.SetMaxOpenConns(cfg.MaxOpenConns)
	sqlDB.SetConnMaxLifetime(time.Duration(cfg.ConnMaxLifetimeMinutes) * time.Minute)
	sqlDB.SetConnMaxIdleTime(time.Duration(cfg.ConnMaxIdleTimeMinutes) * time.Minute)

	m := &MySQL{db: db, cfg: cfg}

	if err := db.Use(NewGormTracingPlugin(cfg.Database)); err != nil {
		return nil, fmt.Errorf("注册追踪插件失败: %w", err)
	}

	if err := m.autoMigrateSchema(); err != nil {
		sqlDB.Close()
		return nil, fmt.Errorf("自动迁移数据库结构失败: %w", err)
	}

	log.Println("成功连接到MySQL并自动迁移数据库结构")
	return m, nil
}

// autoMigrateSchema 使用GORM自动迁移数据库表结构
func (m *MySQL) autoMigrateSchema() error {
	silentLogger := logger.New(
		log.New(log.Writer(), "", log.LstdFlags),
		logger.Config{
			SlowThreshold:             200 * time.Millisecond,
			LogLevel:                  logger.Silent,
			IgnoreRecordNotFoundError: true,
		},
	)
	silentDB := m.db.Session(&gorm.Session{Logger: silentLogger})

	return silentDB.AutoMigrate(
		&models.CachedJob{},
		&models.SearchQuery{},
		&models.ResumeSearch{},
		&models.UserProfile{},
	)
}

// DB 返回GORM数据库连接实例
func (m *MySQL) DB() *gorm.DB {
	return m.db
}

// Close 关闭数据库连接
func (m *MySQL) Close() error {
	sqlDB, err := m.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.Close()
}

// GenerateQueryHash 生成查询指纹: sha256(排序小写技能|级别|地区)。
// 技能取前N个，排序保证顺序无关，整体小写保证大小写无关。
func GenerateQueryHash(skills []string, level types.ExperienceLevel, location string, maxSkills int) string {
	normalized := make([]string, 0, len(skills))
	for _, s := range skills {
		if s = strings.ToLower(strings.TrimSpace(s)); s != "" {
			normalized = append(normalized, s)
		}
	}
	sort.Strings(normalized)
	if maxSkills > 0 && len(normalized) > maxSkills {
		normalized = normalized[:maxSkills]
	}

	material := strings.Join(normalized, ",") + "|" + strings.ToLower(string(level)) + "|" + strings.ToLower(strings.TrimSpace(location))
	sum := sha256.Sum256([]byte(material))
	return hex.EncodeToString(sum[:])
}

// GetNonExpiredJobs 按查询指纹取出未过期的缓存岗位
func (m *MySQL) GetNonExpiredJobs(ctx context.Context, queryHash string) ([]types.JobPosting, error) {
	var rows []models.CachedJob
	err := m.db.WithContext(ctx).
		Where("query_hash = ? AND expires_at > ?", queryHash, time.Now()).
		Find(&rows).Error
	if err != nil {
		return nil, fmt.Errorf("查询缓存岗位失败: %w", err)
	}

	jobs := make([]types.JobPosting, 0, len(rows))
	for _, row := range rows {
		jobs = append(jobs, cachedJobToPosting(row))
	}
	return jobs, nil
}

// UpsertCachedJobs 按岗位ID幂等写入缓存岗位
func (m *MySQL) UpsertCachedJobs(ctx context.Context, jobs []types.JobPosting, queryHash string, ttl time.Duration) error {
	if len(jobs) == 0 {
		return nil
	}

	now := time.Now()
	rows := make([]models.CachedJob, 0, len(jobs))
	for _, job := range jobs {
		rows = append(rows, models.CachedJob{
			JobID:           job.ID,
			Title:           job.Title,
			Company:         job.Company,
			Location:        job.Location,
			Description:     job.Description,
			Requirements:    job.Requirements,
			EmploymentType:  job.EmploymentType,
			ExperienceLevel: string(job.ExperienceLevel),
			URL:             job.URL,
			PostedDate:      job.PostedAt,
			SalaryMin:       job.SalaryMin,
			SalaryMax:       job.SalaryMax,
			IsRemote:        job.IsRemote,
			QueryHash:       queryHash,
			FetchedAt:       now,
			ExpiresAt:       now.Add(ttl),
		})
	}

	// 同一岗位被不同查询抓到时，以最新一次写入为准
	err := m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "job_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"title", "company", "location", "description", "requirements",
			"employment_type", "experience_level", "url", "posted_date",
			"salary_min", "salary_max", "is_remote", "query_hash", "fetched_at", "expires_at",
		}),
	}).Create(&rows).Error
	if err != nil {
		return fmt.Errorf("写入缓存岗位失败: %w", err)
	}
	return nil
}

// RecordSearchQuery 记录一次抓取型查询（缓存未命中）
func (m *MySQL) RecordSearchQuery(ctx context.Context, queryHash, queryText string, skills []string, level types.ExperienceLevel, location string, jobCount int) error {
	skillsJSON, err := json.Marshal(skills)
	if err != nil {
		return fmt.Errorf("序列化技能列表失败: %w", err)
	}

	row := models.SearchQuery{
		QueryHash:       queryHash,
		QueryText:       queryText,
		ExperienceLevel: string(level),
		Location:        location,
		SkillsJSON:      datatypes.JSON(skillsJSON),
		JobCount:        jobCount,
		QueryCount:      1,
		LastFetchedAt:   time.Now(),
	}

	err = m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "query_hash"}},
		DoUpdates: clause.Assignments(map[string]interface{}{
			"query_text":      queryText,
			"job_count":       jobCount,
			"query_count":     gorm.Expr("query_count + 1"),
			"last_fetched_at": time.Now(),
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("记录搜索查询失败: %w", err)
	}
	return nil
}

// TouchSearchQuery 缓存命中时只更新计数和命中时间，不改动岗位数据
func (m *MySQL) TouchSearchQuery(ctx context.Context, queryHash string) error {
	err := m.db.WithContext(ctx).Model(&models.SearchQuery{}).
		Where("query_hash = ?", queryHash).
		Updates(map[string]interface{}{
			"query_count":     gorm.Expr("query_count + 1"),
			"last_fetched_at": time.Now(),
		}).Error
	if err != nil {
		return fmt.Errorf("更新查询计数失败: %w", err)
	}
	return nil
}

// DeleteExpired 删除过期的缓存岗位和长期未使用的查询记录，返回删除数量
func (m *MySQL) DeleteExpired(ctx context.Context, queryRetention time.Duration) (int64, error) {
	jobResult := m.db.WithContext(ctx).
		Where("expires_at <= ?", time.Now()).
		Delete(&models.CachedJob{})
	if jobResult.Error != nil {
		return 0, fmt.Errorf("删除过期岗位失败: %w", jobResult.Error)
	}

	queryResult := m.db.WithContext(ctx).
		Where("last_fetched_at <= ?", time.Now().Add(-queryRetention)).
		Delete(&models.SearchQuery{})
	if queryResult.Error != nil {
		return jobResult.RowsAffected, fmt.Errorf("删除过期查询记录失败: %w", queryResult.Error)
	}

	return jobResult.RowsAffected + queryResult.RowsAffected, nil
}

// LogResumeSearch 记录一次简历搜索，用于离线分析
func (m *MySQL) LogResumeSearch(ctx context.Context, userID string, skills []string, level types.ExperienceLevel, location string, resultsCount int, topScore float64, cacheHit bool) error {
	skillsJSON, err := json.Marshal(skills)
	if err != nil {
		return fmt.Errorf("序列化技能列表失败: %w", err)
	}

	row := models.ResumeSearch{
		UserID:          userID,
		SkillsJSON:      datatypes.JSON(skillsJSON),
		ExperienceLevel: string(level),
		Location:        location,
		ResultsCount:    resultsCount,
		TopScore:        topScore,
		CacheHit:        cacheHit,
	}
	if err := m.db.WithContext(ctx).Create(&row).Error; err != nil {
		return fmt.Errorf("记录简历搜索日志失败: %w", err)
	}
	return nil
}

// SaveUserProfile 按用户ID幂等写入用户画像
func (m *MySQL) SaveUserProfile(ctx context.Context, data *types.UserProfileData) error {
	if data == nil || data.UserID == "" {
		return fmt.Errorf("用户画像数据不完整")
	}

	skillsJSON, err := json.Marshal(data.Skills)
	if err != nil {
		return fmt.Errorf("序列化技能列表失败: %w", err)
	}
	educationJSON, err := json.Marshal(data.Education)
	if err != nil {
		return fmt.Errorf("序列化教育经历失败: %w", err)
	}
	projectsJSON, err := json.Marshal(data.Projects)
	if err != nil {
		return fmt.Errorf("序列化项目经历失败: %w", err)
	}

	row := models.UserProfile{
		UserID:            data.UserID,
		Name:              data.Name,
		Email:             data.Email,
		Phone:             data.Phone,
		SkillsJSON:        datatypes.JSON(skillsJSON),
		ExperienceLevel:   string(data.ExperienceLevel),
		YearsExperience:   data.YearsExperience,
		IsStudent:         data.IsStudent,
		SeekingInternship: data.SeekingInternship,
		EducationJSON:     datatypes.JSON(educationJSON),
		ProjectsJSON:      datatypes.JSON(projectsJSON),
	}

	err = m.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "user_id"}},
		DoUpdates: clause.AssignmentColumns([]string{
			"name", "email", "phone", "skills_json", "experience_level",
			"years_experience", "is_student", "seeking_internship",
			"education_json", "projects_json",
		}),
	}).Create(&row).Error
	if err != nil {
		return fmt.Errorf("保存用户画像失败: %w", err)
	}
	return nil
}

// GetUserProfile 按用户ID读取用户画像，不存在时返回(nil, nil)
func (m *MySQL) GetUserProfile(ctx context.Context, userID string) (*types.UserProfileData, error) {
	var row models.UserProfile
	err := m.db.WithContext(ctx).Where("user_id = ?", userID).First(&row).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("读取用户画像失败: %w", err)
	}

	data := &types.UserProfileData{
		UserID:            row.UserID,
		Name:              row.Name,
		Email:             row.Email,
		Phone:             row.Phone,
		ExperienceLevel:   types.ExperienceLevel(row.ExperienceLevel),
		YearsExperience:   row.YearsExperience,
		IsStudent:         row.IsStudent,
		SeekingInternship: row.SeekingInternship,
		UpdatedAt:         row.UpdatedAt.Format(time.RFC3339),
	}
	if len(row.SkillsJSON) > 0 {
		if err := json.Unmarshal(row.SkillsJSON, &data.Skills); err != nil {
			return nil, fmt.Errorf("解析技能列表失败: %w", err)
		}
	}
	if len(row.EducationJSON) > 0 {
		if err := json.Unmarshal(row.EducationJSON, &data.Education); err != nil {
			return nil, fmt.Errorf("解析教育经历失败: %w", err)
		}
	}
	if len(row.ProjectsJSON) > 0 {
		if err := json.Unmarshal(row.ProjectsJSON, &data.Projects); err != nil {
			return nil, fmt.Errorf("解析项目经历失败: %w", err)
		}
	}
	return data, nil
}

// cachedJobToPosting 缓存行转岗位结构
func cachedJobToPosting(row models.CachedJob) types.JobPosting {
	return types.JobPosting{
		ID:              row.JobID,
		Title:           row.Title,
		Company:         row.Company,
		Location:        row.Location,
		Description:     row.Description,
		Requirements:    row.Requirements,
		EmploymentType:  row.EmploymentType,
		ExperienceLevel: types.ExperienceLevel(row.ExperienceLevel),
		URL:             row.URL,
		PostedAt:        row.PostedDate,
		SalaryMin:       row.SalaryMin,
		SalaryMax:       row.SalaryMax,
		IsRemote:        row.IsRemote,
	}
}
