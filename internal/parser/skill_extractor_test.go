package parser

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestExtractFromCategoryLines 验证 "分类: 条目列表" 单行式的提取
func TestExtractFromCategoryLines(t *testing.T) {
	text := "Programming Languages: Python, Java, C++\nDeveloper Tools: Git, Docker"

	skills := NewSkillExtractor(nil).Extract(context.Background(), text)

	assert.Contains(t, skills, "python")
	assert.Contains(t, skills, "java")
	assert.Contains(t, skills, "c++")
	assert.Contains(t, skills, "git")
	assert.Contains(t, skills, "docker")
}

// TestExtractFromStandaloneCategoryHeading 验证分类标题独占一行的块式排版
func TestExtractFromStandaloneCategoryHeading(t *testing.T) {
	text := "SKILLS\nPython, AWS, Docker"

	skills := NewSkillExtractor(nil).Extract(context.Background(), text)

	assert.Contains(t, skills, "python")
	assert.Contains(t, skills, "aws")
	assert.Contains(t, skills, "docker")
	assert.NotContains(t, skills, "skills", "分类标题词本身不是技能")
}

// TestExtractFiltersNoise 验证日期、地名和噪声符号被过滤
func TestExtractFiltersNoise(t *testing.T) {
	text := "Skills: Python, August 2023, Karnataka, (misc)\nTools: Git, 2021"

	skills := NewSkillExtractor(nil).Extract(context.Background(), text)

	assert.Contains(t, skills, "python")
	assert.Contains(t, skills, "git")
	assert.NotContains(t, skills, "august 2023")
	assert.NotContains(t, skills, "karnataka")
	assert.NotContains(t, skills, "2021")
	assert.NotContains(t, skills, "(misc)")
}

// TestExtractCamelCaseAndAcronyms 验证CamelCase复合词和技能信号附近的缩写
func TestExtractCamelCaseAndAcronyms(t *testing.T) {
	text := "Implemented vector search with FAISS and OpenCV for image pipelines."

	skills := NewSkillExtractor(nil).Extract(context.Background(), text)

	assert.Contains(t, skills, "faiss")
	assert.Contains(t, skills, "opencv")
}

// TestExtractIsIdempotent 验证同一文本两次提取得到完全一致的有序结果
func TestExtractIsIdempotent(t *testing.T) {
	text := "SKILLS\nPython, TensorFlow, SQL\nExperienced in Docker and Kubernetes.\nImplemented PyTorch models using FAISS."

	extractor := NewSkillExtractor(nil)
	first := extractor.Extract(context.Background(), text)
	second := extractor.Extract(context.Background(), text)

	require.NotEmpty(t, first)
	assert.Equal(t, first, second, "两次提取结果应完全一致")
	assert.IsIncreasing(t, first, "结果应按字典序排序")
}

// stubRecognizer 固定返回预设实体的NER桩
type stubRecognizer struct {
	entities []string
}

func (s stubRecognizer) RecognizeProducts(ctx context.Context, text string) ([]string, error) {
	return s.entities, nil
}

// TestExtractMergesRecognizerEntities 验证外部NER识别的产品实体并入结果
func TestExtractMergesRecognizerEntities(t *testing.T) {
	extractor := NewSkillExtractor(stubRecognizer{entities: []string{"Tableau", "August"}})

	skills := extractor.Extract(context.Background(), "Skills: Python")

	assert.Contains(t, skills, "tableau", "NER实体应并入结果")
	assert.NotContains(t, skills, "august", "NER实体同样要过黑名单")
}

// TestExtractWithContextAttachesSentences 验证技能附带出现句子且每个至多3句
func TestExtractWithContextAttachesSentences(t *testing.T) {
	text := "Skills: Python\nImplemented services using Python. Python powers the pipeline. Deployed Python jobs. Tuned Python scripts."

	result := NewSkillExtractor(nil).ExtractWithContext(context.Background(), text)

	require.Contains(t, result, "python")
	assert.LessOrEqual(t, len(result["python"]), 3, "每个技能至多3句上下文")
	assert.NotEmpty(t, result["python"])
}

// TestSingleCharSkills 验证单字符技能只认 c 和 r
func TestSingleCharSkills(t *testing.T) {
	text := "Programming Languages: C, R, J"

	skills := NewSkillExtractor(nil).Extract(context.Background(), text)

	assert.Contains(t, skills, "c")
	assert.Contains(t, skills, "r")
	assert.NotContains(t, skills, "j")
}
