package processor

import (
	"errors"
	"fmt"
)

// 定义基础错误类型
var (
	ErrExtractTextFailed = errors.New("提取简历文本失败")
	ErrParseResumeFailed = errors.New("解析简历失败")
	ErrEmbeddingFailed   = errors.New("向量化失败")
	ErrJobFetchFailed    = errors.New("抓取岗位失败")
	ErrCacheFailed       = errors.New("缓存操作失败")
	ErrDatabaseFailed    = errors.New("数据库操作失败")
	ErrNoSkillsExtracted = errors.New("未能从简历中提取到技能")
	ErrProfileNotFound   = errors.New("用户画像不存在")
	ErrEmbedderRequired  = errors.New("未配置向量化组件")
	ErrJobSourceRequired = errors.New("未配置岗位来源")
)

// JobMatchError 包含详细上下文的自定义错误
type JobMatchError struct {
	UserID  string
	Op      string
	BaseErr error
	Detail  string
}

func (e *JobMatchError) Error() string {
	if e.Detail != "" {
		return fmt.Sprintf("%s (操作:%s, 用户:%s): %s", e.BaseErr, e.Op, e.UserID, e.Detail)
	}
	return fmt.Sprintf("%s (操作:%s, 用户:%s)", e.BaseErr, e.Op, e.UserID)
}

func (e *JobMatchError) Unwrap() error {
	return e.BaseErr
}

// Is 实现 errors.Is 接口以支持错误比较
func (e *JobMatchError) Is(target error) bool {
	return errors.Is(e.BaseErr, target)
}

// 错误构造函数
func NewExtractError(userID, detail string) error {
	return &JobMatchError{UserID: userID, Op: "extract", BaseErr: ErrExtractTextFailed, Detail: detail}
}

func NewParseError(userID, detail string) error {
	return &JobMatchError{UserID: userID, Op: "parse", BaseErr: ErrParseResumeFailed, Detail: detail}
}

func NewEmbeddingError(userID, detail string) error {
	return &JobMatchError{UserID: userID, Op: "embed", BaseErr: ErrEmbeddingFailed, Detail: detail}
}

func NewJobFetchError(userID, detail string) error {
	return &JobMatchError{UserID: userID, Op: "fetch", BaseErr: ErrJobFetchFailed, Detail: detail}
}

func NewDatabaseError(userID, detail string) error {
	return &JobMatchError{UserID: userID, Op: "database", BaseErr: ErrDatabaseFailed, Detail: detail}
}
