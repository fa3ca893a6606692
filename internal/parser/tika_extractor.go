package parser

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"os"
	"strings"
	"time"

	"job-match-go/internal/constants"
)

// ErrInsufficientText 提取结果过短（扫描件或空文档）时返回
var ErrInsufficientText = errors.New("提取的文本过短，文档可能是扫描件或空文件")

// TextExtractor 文档文本提取接口
type TextExtractor interface {
	// ExtractText 从文档内容提取纯文本
	ExtractText(ctx context.Context, reader io.Reader, filename string) (string, error)
}

// TikaExtractor 基于Apache Tika服务器的文本提取器，支持PDF/DOCX等格式
type TikaExtractor struct {
	serverURL string
	client    *http.Client
	logger    *log.Logger
}

// TikaOption 配置选项函数
type TikaOption func(*TikaExtractor)

// WithTikaTimeout 配置HTTP客户端超时时间
func WithTikaTimeout(timeout time.Duration) TikaOption {
	return func(e *TikaExtractor) {
		if timeout > 0 {
			e.client.Timeout = timeout
		}
	}
}

// WithTikaLogger 配置自定义日志记录器
func WithTikaLogger(logger *log.Logger) TikaOption {
	return func(e *TikaExtractor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// 确保TikaExtractor实现了TextExtractor接口
var _ TextExtractor = (*TikaExtractor)(nil)

// NewTikaExtractor 创建Tika文本提取器
func NewTikaExtractor(serverURL string, options ...TikaOption) *TikaExtractor {
	e := &TikaExtractor{
		serverURL: strings.TrimRight(serverURL, "/"),
		client:    &http.Client{Timeout: 60 * time.Second},
		logger:    log.New(os.Stderr, "[Tika] ", log.LstdFlags),
	}
	for _, option := range options {
		option(e)
	}
	return e
}

// ExtractText 通过Tika的/tika端点提取纯文本。
// 提取结果去除空白后不足最小长度时返回 ErrInsufficientText。
func (e *TikaExtractor) ExtractText(ctx context.Context, reader io.Reader, filename string) (string, error) {
	startTime := time.Now()
	e.logger.Printf("开始提取文档文本: %s", filename)

	data, err := io.ReadAll(reader)
	if err != nil {
		return "", fmt.Errorf("读取文档内容失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, e.serverURL+"/tika", bytes.NewReader(data))
	if err != nil {
		return "", fmt.Errorf("创建Tika请求失败: %w", err)
	}
	req.Header.Set("Accept", "text/plain")

	resp, err := e.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("请求Tika服务器失败: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("Tika返回状态码 %d: %s", resp.StatusCode, string(body))
	}

	textBytes, err := io.ReadAll(resp.Body)
	if err != nil {
		return "", fmt.Errorf("读取Tika响应失败: %w", err)
	}

	text := string(textBytes)
	if len(strings.TrimSpace(text)) < constants.MinResumeTextLength {
		return "", ErrInsufficientText
	}

	e.logger.Printf("文档提取完成: %s, %d字符 (用时 %.2f秒)", filename, len(text), time.Since(startTime).Seconds())
	return text, nil
}
