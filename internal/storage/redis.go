package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/extra/redisotel/v9"
	"github.com/redis/go-redis/v9"

	"job-match-go/internal/config"
	"job-match-go/internal/constants"
	"job-match-go/internal/types"
)

// ErrNotFound 键不存在时返回，封装底层的 redis.Nil
var ErrNotFound = redis.Nil

// Redis 封装Redis客户端，提供简历画像缓存和去重能力
type Redis struct {
	Client *redis.Client
	config *config.RedisConfig
}

// NewRedisAdapter 创建Redis客户端并校验连通性
func NewRedisAdapter(cfg *config.RedisConfig) (*Redis, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis配置不能为空")
	}
	if cfg.Address == "" {
		return nil, fmt.Errorf("redis地址未配置")
	}

	opt := &redis.Options{
		Addr:     cfg.Address,
		Password: cfg.Password,
		DB:       cfg.DB,

		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,

		DialTimeout:  time.Duration(cfg.DialTimeoutSeconds) * time.Second,
		ReadTimeout:  time.Duration(cfg.ReadTimeoutSeconds) * time.Second,
		WriteTimeout: time.Duration(cfg.WriteTimeoutSeconds) * time.Second,
	}

	client := redis.NewClient(opt)

	// 添加OpenTelemetry钩子, 记录所有Redis操作
	if err := redisotel.InstrumentTracing(client); err != nil {
		return nil, fmt.Errorf("注册Redis OpenTelemetry钩子失败: %w", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("连接Redis失败 (%s): %w", cfg.Address, err)
	}

	return &Redis{Client: client, config: cfg}, nil
}

// Close 关闭Redis连接
func (r *Redis) Close() error {
	if r.Client != nil {
		return r.Client.Close()
	}
	return nil
}

// profileCacheTTL 简历画像缓存过期时间
func (r *Redis) profileCacheTTL() time.Duration {
	if r.config != nil && r.config.ProfileCacheHours > 0 {
		return time.Duration(r.config.ProfileCacheHours) * time.Hour
	}
	return constants.ProfileCacheDuration
}

// CacheResumeProfile 按简历文本MD5缓存解析结果
func (r *Redis) CacheResumeProfile(ctx context.Context, textMD5 string, profile *types.ResumeProfile) error {
	if textMD5 == "" || profile == nil {
		return fmt.Errorf("缓存参数不完整")
	}

	data, err := json.Marshal(profile)
	if err != nil {
		return fmt.Errorf("序列化简历画像失败: %w", err)
	}

	key := fmt.Sprintf(constants.KeyResumeProfile, textMD5)
	if err := r.Client.Set(ctx, key, data, r.profileCacheTTL()).Err(); err != nil {
		return fmt.Errorf("写入简历画像缓存失败: %w", err)
	}
	return nil
}

// GetResumeProfile 按MD5读取缓存的解析结果，未命中返回 ErrNotFound
func (r *Redis) GetResumeProfile(ctx context.Context, textMD5 string) (*types.ResumeProfile, error) {
	key := fmt.Sprintf(constants.KeyResumeProfile, textMD5)
	data, err := r.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("读取简历画像缓存失败: %w", err)
	}

	var profile types.ResumeProfile
	if err := json.Unmarshal(data, &profile); err != nil {
		return nil, fmt.Errorf("解析缓存的简历画像失败: %w", err)
	}
	return &profile, nil
}

// MarkResumeProcessed 将简历MD5加入去重集合，返回是否为新简历
func (r *Redis) MarkResumeProcessed(ctx context.Context, textMD5 string) (bool, error) {
	added, err := r.Client.SAdd(ctx, constants.KeyResumeMD5Set, textMD5).Result()
	if err != nil {
		return false, fmt.Errorf("写入简历去重集合失败: %w", err)
	}
	return added > 0, nil
}

// IsResumeProcessed 检查简历MD5是否已处理过
func (r *Redis) IsResumeProcessed(ctx context.Context, textMD5 string) (bool, error) {
	exists, err := r.Client.SIsMember(ctx, constants.KeyResumeMD5Set, textMD5).Result()
	if err != nil {
		return false, fmt.Errorf("查询简历去重集合失败: %w", err)
	}
	return exists, nil
}

// CacheJobKeywords 缓存岗位的技术关键词
func (r *Redis) CacheJobKeywords(ctx context.Context, jobID string, keywords []string, ttl time.Duration) error {
	data, err := json.Marshal(keywords)
	if err != nil {
		return fmt.Errorf("序列化岗位关键词失败: %w", err)
	}

	key := fmt.Sprintf(constants.KeyJobKeywords, jobID)
	if err := r.Client.Set(ctx, key, data, ttl).Err(); err != nil {
		return fmt.Errorf("写入岗位关键词缓存失败: %w", err)
	}
	return nil
}

// GetJobKeywords 读取岗位关键词，未命中返回 ErrNotFound
func (r *Redis) GetJobKeywords(ctx context.Context, jobID string) ([]string, error) {
	key := fmt.Sprintf(constants.KeyJobKeywords, jobID)
	data, err := r.Client.Get(ctx, key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("读取岗位关键词缓存失败: %w", err)
	}

	var keywords []string
	if err := json.Unmarshal(data, &keywords); err != nil {
		return nil, fmt.Errorf("解析岗位关键词失败: %w", err)
	}
	return keywords, nil
}
