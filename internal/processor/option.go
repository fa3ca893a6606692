package processor

import (
	"log"
	"time"

	"job-match-go/internal/parser"
	"job-match-go/internal/storage"
)

// ComponentOpt 组件选项类型，仅改变 Components 结构体内的字段
type ComponentOpt func(*Components)

// SettingOpt 设置选项类型，仅改变 Settings 结构体内的字段
type SettingOpt func(*Settings)

// Components 处理管线的外部协作组件
type Components struct {
	// 文档文本提取器
	TextExtractor parser.TextExtractor

	// 简历解析器
	ResumeParser *parser.ResumeParser

	// 文本向量化
	Embedder TextEmbedder

	// 外部岗位来源
	JobSource JobSource

	// 存储聚合
	Storage *storage.Storage
}

// Settings 处理管线的行为设置
type Settings struct {
	// 默认返回的匹配数量
	TopK int

	// 岗位缓存TTL
	JobCacheTTL time.Duration

	// 默认搜索地区
	DefaultLocation string

	// 调试模式
	Debug bool

	// 日志记录器
	Logger *log.Logger
}

// ----- 组件选项 -----

// WithcompTextExtractor 设置文本提取器组件
func WithcompTextExtractor(extractor parser.TextExtractor) ComponentOpt {
	return func(c *Components) {
		c.TextExtractor = extractor
	}
}

// WithcompResumeParser 设置简历解析器组件
func WithcompResumeParser(p *parser.ResumeParser) ComponentOpt {
	return func(c *Components) {
		c.ResumeParser = p
	}
}

// WithcompEmbedder 设置向量化组件
func WithcompEmbedder(embedder TextEmbedder) ComponentOpt {
	return func(c *Components) {
		c.Embedder = embedder
	}
}

// WithcompJobSource 设置岗位来源组件
func WithcompJobSource(source JobSource) ComponentOpt {
	return func(c *Components) {
		c.JobSource = source
	}
}

// WithcompStorage 设置存储组件
func WithcompStorage(s *storage.Storage) ComponentOpt {
	return func(c *Components) {
		c.Storage = s
	}
}

// ----- 设置选项 -----

// WithsetTopK 设置默认匹配数量
func WithsetTopK(topK int) SettingOpt {
	return func(s *Settings) {
		if topK > 0 {
			s.TopK = topK
		}
	}
}

// WithsetJobCacheTTL 设置岗位缓存TTL
func WithsetJobCacheTTL(ttl time.Duration) SettingOpt {
	return func(s *Settings) {
		if ttl > 0 {
			s.JobCacheTTL = ttl
		}
	}
}

// WithsetDefaultLocation 设置默认搜索地区
func WithsetDefaultLocation(location string) SettingOpt {
	return func(s *Settings) {
		s.DefaultLocation = location
	}
}

// WithsetDebug 设置调试模式
func WithsetDebug(debug bool) SettingOpt {
	return func(s *Settings) {
		s.Debug = debug
	}
}

// WithsetLogger 设置日志记录器
func WithsetLogger(logger *log.Logger) SettingOpt {
	return func(s *Settings) {
		if logger != nil {
			s.Logger = logger
		}
	}
}
