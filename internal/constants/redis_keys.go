package constants

// Redis Key 前缀和格式常量
// 使用统一的命名规范: app:{module}:{entity}:{unique_id}
const (
	// AppPrefix 是所有Redis Key的统一应用前缀
	AppPrefix = "app"

	// ResumeModulePrefix 简历模块
	ResumeModulePrefix = "resume"
	// JobModulePrefix 岗位模块
	JobModulePrefix = "job"

	// EntityProfile 解析后的简历画像实体
	EntityProfile = "profile"
	// EntityDedupSet 去重集合实体
	EntityDedupSet = "dedup_set"
	// EntityKeywords 岗位关键词实体
	EntityKeywords = "keywords"

	// KeyResumeProfile 按简历文本MD5缓存的解析结果 (STRING, JSON)
	// 格式: app:resume:profile:{md5}
	KeyResumeProfile = AppPrefix + ":" + ResumeModulePrefix + ":" + EntityProfile + ":%s"

	// KeyResumeMD5Set 已处理简历文本的MD5集合 (SET)
	// 格式: app:resume:dedup_set
	KeyResumeMD5Set = AppPrefix + ":" + ResumeModulePrefix + ":" + EntityDedupSet

	// KeyJobKeywords 岗位关键词缓存 (STRING, JSON)
	// 格式: app:job:keywords:{jobID}
	KeyJobKeywords = AppPrefix + ":" + JobModulePrefix + ":" + EntityKeywords + ":%s"
)
