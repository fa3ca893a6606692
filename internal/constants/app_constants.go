package constants

import "time"

const (
	// DefaultParserVer 当前启用的启发式解析器版本号
	DefaultParserVer = "1.0"

	// MinResumeTextLength 简历文本的最小可用长度（去除空白后）
	MinResumeTextLength = 50

	// ProfileCacheDuration 解析结果缓存的默认过期时间
	ProfileCacheDuration = 24 * time.Hour

	// DefaultJobCacheTTLDays 岗位缓存默认TTL（天）
	DefaultJobCacheTTLDays = 3

	// DefaultTopK 默认返回的匹配岗位数量
	DefaultTopK = 10

	// DefaultReferenceYear 毕业年份推断的默认参考年份
	DefaultReferenceYear = 2026

	// MaxSkillsForQuery 构造外部搜索词时取的技能数上限
	MaxSkillsForQuery = 5

	// MaxSkillsForCacheKey 参与缓存键派生的技能数上限
	MaxSkillsForCacheKey = 10

	// JobDescriptionEmbedBudget 岗位描述参与嵌入的字符预算
	JobDescriptionEmbedBudget = 1000

	// MatchDescriptionLimit 匹配结果中描述字段的截断长度
	MatchDescriptionLimit = 500
	// MatchRequirementsLimit 匹配结果中要求字段的截断长度
	MatchRequirementsLimit = 300
)
